package cli

import (
	"log"
	"os"

	"github.com/pankajredekar/shopadmin/internal/server"
	"github.com/pankajredekar/shopadmin/internal/utils"
	"github.com/spf13/cobra"
)

var serveMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the admin API",
	Long:  "Serves the /v1/admin API until SIGINT or SIGTERM, then shuts down gracefully",
	Run: func(cmd *cobra.Command, args []string) {
		log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

		cfg := mustLoadConfig()
		db, run, _ := mustConnect(cfg)

		if serveMigrate {
			applied, err := run.Migrate()
			if err != nil {
				utils.PrintError("Failed to apply migrations: %v", err)
				os.Exit(1)
			}
			if applied > 0 {
				utils.PrintInfo("Applied %d migration(s)", applied)
			}
		}

		srv, err := server.NewServer(&server.ServerConfig{App: cfg, DB: db})
		if err != nil {
			utils.PrintError("%v", err)
			os.Exit(1)
		}

		if err := srv.Run(cmd.Context()); err != nil {
			utils.PrintError("%v", err)
			os.Exit(1)
		}
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "apply pending migrations before serving")
	rootCmd.AddCommand(serveCmd)
}
