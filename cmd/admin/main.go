// Command admin bootstraps a TraceOps deployment from the shell: schema
// migrations, tenants, users and API keys.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"github.com/traceops/backend/internal/config"
	"github.com/traceops/backend/internal/db"
	"go.uber.org/zap"
)

var (
	cfg *config.Config
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "traceops-admin",
	Short:         "TraceOps administration",
	Long:          "traceops-admin runs migrations and creates tenants, users and API keys directly against the database.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(func() {
		log, _ = zap.NewDevelopment()
		cfg = config.Load()
	})

	rootCmd.PersistentFlags().String("dsn", "", "postgres DSN (default: $POSTGRES_DSN)")
	rootCmd.PersistentFlags().String("output", "table", "output format: table, json")

	rootCmd.AddCommand(migrateCmd, tenantCmd, apiKeyCmd, userCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		pool, err := openPool(cmd)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := db.RunMigrations(cmd.Context(), pool, db.Migrations(), log); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		fmt.Println("migrations applied")
		return nil
	},
}

// openPool connects using --dsn, falling back to the configured DSN.
func openPool(cmd *cobra.Command) (*pgxpool.Pool, error) {
	dsn, _ := cmd.Flags().GetString("dsn")
	if dsn == "" {
		dsn = cfg.PostgresDSN
	}
	pool, err := db.NewPostgresPool(cmd.Context(), dsn, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return pool, nil
}

func jsonOutput(cmd *cobra.Command) bool {
	format, _ := cmd.Flags().GetString("output")
	return format == "json"
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}
