package cli

import (
	"github.com/pankajredekar/shopadmin/internal/config"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "shopadmin",
	Short: "Back office API for a small shop",
	Long:  "shopadmin serves the admin API for users, categories and products and manages its database schema",
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "path to the config file")
}
