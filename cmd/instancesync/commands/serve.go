package commands

import (
	"fmt"
	"os"

	"github.com/jra3/instancesync/internal/manifest"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve <project>",
	Short: "Serve a project for live sync (not implemented)",
	Long: `serve is out of scope for this build: live sync over a network
protocol to a running editor session is not implemented. This stub only
parses servePort/servePlaceIds out of the project file so the CLI surface
is complete.`,
	Args: cobra.ExactArgs(1),
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	proj, err := manifest.Parse(data, args[0])
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}

	fmt.Printf("serve: not implemented (project %q declares servePort=%d, servePlaceIds=%v)\n",
		proj.Name, proj.ServePort, proj.ServePlaceIds)
	return fmt.Errorf("serve: not implemented")
}
