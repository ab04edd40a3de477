package main

import (
	"fmt"

	"healthsure/cmd/bootstrap"
	"healthsure/config"
	"healthsure/internal/infrastructure/database"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	envFile       string
	migrateSteps  int
	migrationsDir string
)

var rootCmd = &cobra.Command{
	Use:           "healthsure",
	Short:         "HealthSure patient and insurance policy administration backend",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (default command)",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or roll back database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withConfig(func(cfg *config.Config) error {
			return database.MigrateUp(database.DSN(cfg.DB), migrationsPath(cfg))
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the last --steps migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withConfig(func(cfg *config.Config) error {
			if err := database.MigrateDown(database.DSN(cfg.DB), migrationsPath(cfg), migrateSteps); err != nil {
				return err
			}
			logrus.Infof("Rolled back %d migration(s)", migrateSteps)
			return nil
		})
	},
}

var expireCmd = &cobra.Command{
	Use:   "expire",
	Short: "Mark ACTIVE policies whose end date has passed as EXPIRED, once",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfigFrom(envFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		app, err := bootstrap.Connect(cfg)
		if err != nil {
			return err
		}
		defer app.Close()

		n, err := app.NewPolicyUsecase().ExpireEnded(cmd.Context())
		if err != nil {
			return err
		}
		app.Log.Infof("Expired %d policies", n)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional env file read before the process environment")

	migrateCmd.PersistentFlags().StringVar(&migrationsDir, "dir", "", "Migrations directory (default: MIGRATIONS_DIR)")
	migrateDownCmd.Flags().IntVar(&migrateSteps, "steps", 1, "Number of migrations to roll back")

	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
	rootCmd.AddCommand(serveCmd, migrateCmd, expireCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigFrom(envFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize application with all dependencies
	app, err := bootstrap.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run()
}

func withConfig(fn func(cfg *config.Config) error) error {
	cfg, err := config.LoadConfigFrom(envFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	bootstrap.SetupLogger(cfg.App.LogLevel)

	return fn(cfg)
}

func migrationsPath(cfg *config.Config) string {
	if migrationsDir != "" {
		return migrationsDir
	}
	return cfg.App.MigrationsDir
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Fatalf("%v", err)
	}
}
