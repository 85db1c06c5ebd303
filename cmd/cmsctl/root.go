package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"beaconcms.org/internal/config"
	"beaconcms.org/internal/obs"
	"beaconcms.org/internal/store/pg"
)

type app struct {
	stdout     io.Writer
	configPath string
	cfg        config.Config
	store      *pg.Store
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	a := &app{stdout: stdout}
	cmd := &cobra.Command{
		Use:           "cmsctl",
		Short:         "Beacon CMS administration",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.store != nil {
				_ = a.store.Close()
			}
		},
	}
	cmd.PersistentFlags().StringVar(&a.configPath, "config", os.Getenv("BEACON_CONFIG"), "path to a YAML config file")

	cmd.AddCommand(newMigrateCmd(a))
	cmd.AddCommand(newRolesCmd(a))
	cmd.AddCommand(newUsersCmd(a))
	cmd.AddCommand(newSessionsCmd(a))
	return cmd
}

func (a *app) load() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if cfg.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required (set BEACON_DATABASE_DSN)")
	}
	logger, err := obs.NewLogger(cfg.Log.Level, "console")
	if err != nil {
		return err
	}
	obs.SetLogger(logger)

	store, err := pg.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	a.cfg = cfg
	a.store = store
	return nil
}
