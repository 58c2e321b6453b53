package cli

import (
	"os"
	"strconv"

	"github.com/pankajredekar/shopadmin/internal/database"
	"github.com/pankajredekar/shopadmin/internal/utils"
	"github.com/spf13/cobra"
)

var rollbackCmd = &cobra.Command{
	Use:   "rollback [n]",
	Short: "Rollback migrations",
	Long:  "Rolls back the last N migrations (default: 1)",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		n := 1
		if len(args) > 0 {
			var err error
			n, err = strconv.Atoi(args[0])
			if err != nil || n < 1 {
				utils.PrintError("Invalid number: %s", args[0])
				os.Exit(1)
			}
		}

		cfg := mustLoadConfig()
		db, run, ver := mustConnect(cfg)
		defer database.Close(db)

		appliedCount, err := ver.Count()
		if err != nil {
			utils.PrintError("Failed to get applied count: %v", err)
			os.Exit(1)
		}

		if appliedCount == 0 {
			utils.PrintWarning("No migrations to rollback")
			return
		}

		utils.PrintInfo("Rolling back %d migration(s)...", min(int64(n), appliedCount))

		rolledBack, err := run.Rollback(n)
		if err != nil {
			utils.PrintError("Failed to rollback: %v", err)
			os.Exit(1)
		}

		utils.PrintSuccess("Rolled back %d migration(s)", rolledBack)
	},
}

func init() {
	rootCmd.AddCommand(rollbackCmd)
}
