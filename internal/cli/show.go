package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/pankajredekar/shopadmin/internal/database"
	"github.com/pankajredekar/shopadmin/internal/utils"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show migration status",
	Long:  "Shows all applied and pending migrations",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoadConfig()
		db, run, _ := mustConnect(cfg)
		defer database.Close(db)

		statuses, err := run.Status()
		if err != nil {
			utils.PrintError("Failed to get migration status: %v", err)
			os.Exit(1)
		}

		fmt.Println("\n" + strings.Repeat("=", 60))
		fmt.Println("Migration Status")
		fmt.Println(strings.Repeat("=", 60))

		var applied, pending []string
		for _, s := range statuses {
			line := fmt.Sprintf("  %s - %s", s.Version, s.Name)
			if s.Applied {
				applied = append(applied, line+s.AppliedAt.Local().Format("  (2006-01-02 15:04)"))
			} else {
				pending = append(pending, line)
			}
		}

		printSection("✓ Applied Migrations", applied)
		printSection("○ Pending Migrations", pending)
		fmt.Println()
	},
}

func printSection(title string, lines []string) {
	if len(lines) == 0 {
		fmt.Printf("\n%s: (none)\n", title)
		return
	}
	fmt.Printf("\n%s:\n", title)
	for _, l := range lines {
		fmt.Println(l)
	}
}

func init() {
	rootCmd.AddCommand(showCmd)
}
