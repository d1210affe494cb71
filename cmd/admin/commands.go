package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/faculty-portal-api/internal/repository"
	"github.com/noah-isme/faculty-portal-api/internal/service"
	"github.com/noah-isme/faculty-portal-api/pkg/config"
	"github.com/noah-isme/faculty-portal-api/pkg/database"
	"github.com/noah-isme/faculty-portal-api/pkg/logger"
)

var (
	migrateDownSteps int

	adminName     string
	adminEmail    string
	adminPassword string
)

var rootCmd = &cobra.Command{
	Use:           "admin",
	Short:         "Maintenance commands for the faculty portal",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or roll back schema migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply every pending migration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(func(db *sqlx.DB, logr *zap.Logger) error {
			return database.MigrateUp(db.DB, logr)
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(func(db *sqlx.DB, logr *zap.Logger) error {
			return database.MigrateDown(db.DB, migrateDownSteps, logr)
		})
	},
}

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an approved admin account, or promote and approve an existing one",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if adminPassword == "" {
			adminPassword = os.Getenv("ADMIN_PASSWORD")
		}
		if adminEmail == "" || adminPassword == "" {
			return errors.New("--email and --password (or ADMIN_PASSWORD) are required")
		}
		return withDatabase(func(db *sqlx.DB, logr *zap.Logger) error {
			accounts := service.NewAccountService(
				repository.NewAccountRepository(db),
				repository.NewAuditRepository(db),
				nil, nil, validator.New(), logr,
			)
			account, created, err := accounts.EnsureAdmin(cmd.Context(), adminName, adminEmail, adminPassword)
			if err != nil {
				return err
			}
			verb := "promoted"
			if created {
				verb = "created"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin %s %s (%s)\n", account.Email, verb, account.ID)
			return nil
		})
	},
}

func init() {
	migrateDownCmd.Flags().IntVar(&migrateDownSteps, "steps", 1, "number of migrations to roll back")
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)

	createAdminCmd.Flags().StringVar(&adminName, "name", "System Admin", "display name")
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "login email")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "login password (defaults to ADMIN_PASSWORD)")

	rootCmd.AddCommand(migrateCmd, createAdminCmd)
}

func withDatabase(fn func(db *sqlx.DB, logr *zap.Logger) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	return fn(db, logr)
}
