package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jra3/instancesync/internal/luaast"
	"github.com/spf13/cobra"
)

const defaultProjectJSON = `{
  "name": "%s",
  "tree": {
    "$className": "DataModel",
    "ReplicatedStorage": {
      "$className": "ReplicatedStorage",
      "Shared": {
        "$path": "src"
      }
    }
  }
}
`

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Scaffold a starter project",
	Long: `init writes a default.project.json and a src/init.lua into dir
(the current directory if omitted).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("init: %w", err)
	}

	name := filepath.Base(absOrSelf(dir))
	projectPath := filepath.Join(dir, "default.project.json")
	if err := os.WriteFile(projectPath, []byte(fmt.Sprintf(defaultProjectJSON, name)), 0o644); err != nil {
		return fmt.Errorf("init: write %s: %w", projectPath, err)
	}

	srcDir := filepath.Join(dir, "src")
	if err := os.MkdirAll(srcDir, 0o755); err != nil {
		return fmt.Errorf("init: %w", err)
	}

	module := luaast.Return{
		Value: luaast.TableLit{Fields: []luaast.Field{
			{Key: "Name", Value: luaast.StringLit(name)},
		}},
	}
	initLuaPath := filepath.Join(srcDir, "init.lua")
	if err := os.WriteFile(initLuaPath, []byte(module.Render()+"\n"), 0o644); err != nil {
		return fmt.Errorf("init: write %s: %w", initLuaPath, err)
	}

	fmt.Printf("Wrote %s and %s\n", projectPath, initLuaPath)
	return nil
}

func absOrSelf(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return dir
	}
	return abs
}
