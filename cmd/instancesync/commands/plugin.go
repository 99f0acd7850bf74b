package commands

import (
	"fmt"

	"github.com/jra3/instancesync/internal/plugin"
	"github.com/spf13/cobra"
)

var pluginCmd = &cobra.Command{
	Use:   "plugin",
	Short: "Install or uninstall the editor companion plugin",
}

var pluginInstallCmd = &cobra.Command{
	Use:   "install <plugin-file>",
	Short: "Copy a compiled plugin file into the editor's plugin directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := plugin.Install(args[0]); err != nil {
			return fmt.Errorf("plugin install: %w", err)
		}
		fmt.Println("Plugin installed")
		return nil
	},
}

var pluginUninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the installed editor companion plugin",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := plugin.Uninstall(); err != nil {
			return fmt.Errorf("plugin uninstall: %w", err)
		}
		fmt.Println("Plugin uninstalled")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pluginCmd)
	pluginCmd.AddCommand(pluginInstallCmd, pluginUninstallCmd)
}
