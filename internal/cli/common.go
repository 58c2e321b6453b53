package cli

import (
	"os"
	"time"

	"github.com/pankajredekar/shopadmin"
	"github.com/pankajredekar/shopadmin/internal/config"
	"github.com/pankajredekar/shopadmin/internal/database"
	_ "github.com/pankajredekar/shopadmin/internal/migrations"
	"github.com/pankajredekar/shopadmin/internal/runner"
	"github.com/pankajredekar/shopadmin/internal/utils"
	"github.com/pankajredekar/shopadmin/internal/versioner"
	"gorm.io/gorm"
)

// mustLoadConfig loads and validates the config file or exits
func mustLoadConfig() *config.Config {
	if !utils.FileExists(configPath) {
		utils.PrintError("%s not found. Run 'shopadmin init' first", configPath)
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		utils.PrintError("Failed to load config: %v", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		utils.PrintError("Invalid config: %v", err)
		os.Exit(1)
	}

	return cfg
}

// mustConnect opens the database and prepares the migration runner or exits
func mustConnect(cfg *config.Config) (*gorm.DB, *runner.Runner, *versioner.Versioner) {
	db, err := database.Connect(cfg.DatabaseURL, database.Options{
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
	})
	if err != nil {
		utils.PrintError("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	ver := versioner.NewVersioner(db, cfg.MigrationTable)
	if err := ver.Initialize(); err != nil {
		utils.PrintError("Failed to initialize version table: %v", err)
		os.Exit(1)
	}

	return db, runner.NewRunner(db, shopadmin.GetGlobalRegistry(), ver), ver
}
