package root

import (
	"database/sql"
	"errors"

	"github.com/spf13/cobra"

	"github.com/MRamiBalles/EscapeRoomGame/server/internal/infra/storage"
	"github.com/MRamiBalles/EscapeRoomGame/server/internal/platform/config"
	"github.com/MRamiBalles/EscapeRoomGame/server/internal/platform/logger"
)

var errNoDatabase = errors.New("no database configured (set storage.path, ESCAPE_DB or --db)")

func loadConfig(flags *globalFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.dbPath != "" {
		cfg.Storage.Path = flags.dbPath
	}
	return cfg, nil
}

func openDB(cfg *config.Config) (*sql.DB, func(), error) {
	if cfg.Storage.Path == "" {
		return nil, nil, errNoDatabase
	}
	db, err := storage.InitSQLite(cfg.Storage.Path)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Storage.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.Storage.MaxOpenConns)
	}
	cleanup := func() {
		_ = db.Close()
	}
	return db, cleanup, nil
}

// openStore opens the configured database for one offline command.
func openStore(cmd *cobra.Command, flags *globalFlags) (*storage.Manager, func(), error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, nil, err
	}
	db, cleanup, err := openDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	return storage.NewManager(storage.NewSQLiteStore(db), cliLogger(cmd, flags)), cleanup, nil
}

func cliLogger(cmd *cobra.Command, flags *globalFlags) *logger.Logger {
	if !flags.verbose {
		return logger.Discard()
	}
	return logger.New(cmd.ErrOrStderr(), cmd.ErrOrStderr())
}
