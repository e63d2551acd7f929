package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nurpe/contractor-payments/internal/auth"
	"github.com/nurpe/contractor-payments/internal/config"
	"github.com/nurpe/contractor-payments/internal/db"
	"github.com/nurpe/contractor-payments/internal/logger"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "payments-service",
		Short:         "Contractor payments API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runServe(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply database migrations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runMigrate()
			},
		},
		&cobra.Command{
			Use:   "seed",
			Short: "Replace all data with the demo marketplace",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runSeed(cmd.Context())
			},
		},
		newTokenCommand(),
	)
	return root
}

func runMigrate() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.Environment)

	cfg.DB.AutoMigrate = false
	database, err := db.New(cfg, log)
	if err != nil {
		return err
	}
	if err := db.Migrate(database); err != nil {
		return err
	}
	log.Info().Msg("migrations applied")
	return nil
}

func runSeed(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		return err
	}
	if err := db.Seed(ctx, database); err != nil {
		return err
	}
	log.Info().Msg("demo data seeded")
	return nil
}

func newTokenCommand() *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print an admin token signed with JWT_ACCESS_SECRET",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if !cfg.AdminAuthEnabled() {
				return fmt.Errorf("JWT_ACCESS_SECRET is not set")
			}
			token, err := auth.NewParser(cfg.Auth.AccessSecret).Issue(subject, auth.RoleAdmin, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "admin", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
