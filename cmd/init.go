package cmd

import (
	"github.com/Rana718/fixturegen/internal/config"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.DefaultConfigFile
		if len(args) == 1 {
			path = args[0]
		}
		if err := config.WriteDefault(path); err != nil {
			return err
		}
		color.Green("✅ Wrote %s", path)
		color.Cyan("📝 Set DATABASE_URL (or the variable named by database.url_env) and run 'fixturegen schema'")
		return nil
	},
}
