package cli

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/pankajredekar/shopadmin/internal/config"
	"github.com/pankajredekar/shopadmin/internal/utils"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a shopadmin project",
	Long:  "Creates a shopadmin.yml configuration file with a fresh token secret and the image storage directory",
	Run: func(cmd *cobra.Command, args []string) {
		if utils.FileExists(configPath) {
			utils.PrintWarning("%s already exists", configPath)
			return
		}

		cfg, err := initConfig()
		if err != nil {
			utils.PrintError("%v", err)
			os.Exit(1)
		}

		if err := cfg.Write(configPath); err != nil {
			utils.PrintError("%v", err)
			os.Exit(1)
		}

		if err := os.MkdirAll(cfg.StorageDir, 0755); err != nil {
			utils.PrintError("Failed to create storage directory: %v", err)
			os.Exit(1)
		}

		utils.PrintSuccess("Initialized shopadmin project")
		utils.PrintInfo("Created %s", configPath)
		utils.PrintInfo("Created %s directory", cfg.StorageDir)
	},
}

// initConfig returns the default config with a random token secret
func initConfig() (*config.Config, error) {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("failed to generate token secret: %w", err)
	}

	cfg := config.Default()
	cfg.TokenSecret = hex.EncodeToString(secret)
	return cfg, nil
}

func init() {
	rootCmd.AddCommand(initCmd)
}
