package cli

import (
	"os"

	"github.com/pankajredekar/shopadmin/internal/database"
	"github.com/pankajredekar/shopadmin/internal/utils"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending migrations",
	Long:  "Applies all schema migrations that haven't been applied yet",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoadConfig()
		db, run, _ := mustConnect(cfg)
		defer database.Close(db)

		pending, err := run.GetPendingMigrations()
		if err != nil {
			utils.PrintError("Failed to get pending migrations: %v", err)
			os.Exit(1)
		}

		if len(pending) == 0 {
			utils.PrintSuccess("No pending migrations")
			return
		}

		utils.PrintInfo("Applying %d migration(s)...", len(pending))

		applied, err := run.Migrate()
		if err != nil {
			utils.PrintError("Failed to apply migrations: %v", err)
			os.Exit(1)
		}

		utils.PrintSuccess("Applied %d migration(s)", applied)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
