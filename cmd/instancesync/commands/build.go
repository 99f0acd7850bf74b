package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jra3/instancesync/internal/config"
	"github.com/jra3/instancesync/internal/encode"
	"github.com/jra3/instancesync/internal/engine"
	"github.com/jra3/instancesync/internal/resolve"
	"github.com/jra3/instancesync/internal/snapshot"
	"github.com/jra3/instancesync/internal/tree"
	"github.com/jra3/instancesync/internal/vfs"
	"github.com/spf13/cobra"
)

var (
	buildOutput  string
	buildSchema  string
	buildVerbose bool
)

var buildCmd = &cobra.Command{
	Use:   "build <project>",
	Short: "Build a project file into an output file",
	Long: `build resolves <project> (a *.project.json file or a directory
containing default.project.json) into an instance tree and writes it to
--output, choosing the binary or XML encoding by the output file's
extension.`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "", "output file path (required)")
	buildCmd.Flags().StringVar(&buildSchema, "schema", "", "path to a reflection schema JSON file")
	buildCmd.Flags().BoolVarP(&buildVerbose, "verbose", "v", false, "log the patch applied during the build")
	buildCmd.MarkFlagRequired("output")
}

func runBuild(cmd *cobra.Command, args []string) error {
	projectPath := args[0]

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("build: load config: %w", err)
	}

	enc := encode.ForExtension(filepath.Ext(buildOutput))
	if enc == nil {
		return fmt.Errorf("build: unrecognized output extension %q", filepath.Ext(buildOutput))
	}

	if buildSchema != "" {
		schema, err := resolve.LoadSchemaFile(buildSchema)
		if err != nil {
			return fmt.Errorf("build: %w", err)
		}
		cached := resolve.NewCachedSchema(schema, cfg.Cache.TTL, cfg.Cache.MaxEntries)
		defer cached.Stop()
		snapshot.Schema = cached
	}

	root := filepath.Dir(projectPath)
	fsys := vfs.NewOS(root)
	relProject := filepath.Base(projectPath)

	t, err := engine.Build(fsys, relProject, engine.Options{
		ModuleFileName: cfg.ModuleFileName,
		Verbose:        buildVerbose,
	})
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}

	out, err := os.Create(buildOutput)
	if err != nil {
		return fmt.Errorf("build: create %s: %w", buildOutput, err)
	}
	defer out.Close()

	if err := enc.Encode(out, t, []tree.Id{t.GetRootID()}); err != nil {
		return fmt.Errorf("build: encode: %w", err)
	}
	return nil
}
