package root

import (
	"fmt"
	"log/slog"

	"github.com/commercelens/pixel-backend/cmd/migrate"
	"github.com/commercelens/pixel-backend/config"
	"github.com/commercelens/pixel-backend/server"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pixel-backend",
	Short: "First-party tracking pixel ingestion and analytics backend",
}

func GetRootCmd(cfg *config.Config, logger *slog.Logger) *cobra.Command {
	dbURL := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.DB.User,
		cfg.DB.Password,
		cfg.DB.Host,
		cfg.DB.Port,
		cfg.DB.DBName,
		cfg.DB.SSLMode)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Run: func(cmd *cobra.Command, args []string) {
			server.RunServer(cfg, logger)
		},
	})

	rootCmd.AddCommand(migrate.GetMigrateCmd(dbURL))

	return rootCmd
}
