package root

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/MRamiBalles/EscapeRoomGame/server/internal/domain/room"
	"github.com/MRamiBalles/EscapeRoomGame/server/internal/engine"
	"github.com/MRamiBalles/EscapeRoomGame/server/internal/events"
	"github.com/MRamiBalles/EscapeRoomGame/server/internal/infra/quote"
	"github.com/MRamiBalles/EscapeRoomGame/server/internal/infra/storage"
	"github.com/MRamiBalles/EscapeRoomGame/server/internal/network"
	"github.com/MRamiBalles/EscapeRoomGame/server/internal/platform/config"
	"github.com/MRamiBalles/EscapeRoomGame/server/internal/platform/logger"
)

const (
	eventWriteTimeout = 2 * time.Second
	shutdownTimeout   = 5 * time.Second
)

func newServeCmd(flags *globalFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the game server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger.NewLogger())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides the config)")
	return cmd
}

// serve wires the game and blocks until ctx is cancelled.
func serve(ctx context.Context, cfg *config.Config, appLogger *logger.Logger) error {
	var (
		store     storage.Store
		eventRepo storage.EventRepository
	)
	if cfg.Storage.Path != "" {
		appLogger.Info("Initializing SQLite database " + cfg.Storage.Path + "...")
		db, cleanup, err := openDB(cfg)
		if err != nil {
			return err
		}
		defer cleanup()
		store = storage.NewSQLiteStore(db)
		eventRepo = storage.NewSQLiteEventRepository(db)
	} else {
		appLogger.Warn("No storage path configured; progress and scores are kept in memory only")
		store = storage.NewMemoryStore()
		eventRepo = storage.NewMemoryEventRepository()
	}
	manager := storage.NewManager(store, appLogger)
	if !manager.IsAvailable(ctx) {
		appLogger.Warn("Storage probe failed; the game will run without persistence")
	}

	appLogger.Info("Bootstrapping EventLog...")
	eventLog := events.NewEventLog(events.NewStoragePersister(eventRepo, eventWriteTimeout))
	recorder := events.NewRecorder(eventLog, appLogger)

	var quotes engine.QuoteSource
	if cfg.Quote.Enabled {
		svc, err := quote.NewService(quote.NewQuotableProvider(cfg.Quote.URL, cfg.Quote.Timeout), cfg.Quote.CacheSize, appLogger)
		if err != nil {
			return fmt.Errorf("quote service: %w", err)
		}
		quotes = svc
	}

	appLogger.Info("Bootstrapping room engine...")
	catalog := room.DefaultCatalog()
	ctrl := engine.NewController(engine.NewRoomEngine(catalog, appLogger), manager, recorder, quotes, appLogger, engine.Options{
		TickRate:     cfg.Game.TickRate,
		QuoteTimeout: cfg.Quote.Timeout,
	})
	defer ctrl.Close()

	if snap := manager.LoadProgress(ctx); snap != nil {
		appLogger.Infof("Saved progress found at room %d; open #room%d to resume", snap.CurrentRoom, snap.CurrentRoom)
	}

	appLogger.Info("Bootstrapping WebSocket Hub...")
	hub := network.NewHub(ctrl, network.HubOptions{
		BroadcastBuffer: cfg.Server.BroadcastChannelBuffer,
		ClientBuffer:    cfg.Server.ClientSendBuffer,
		ActionInterval:  cfg.Server.ActionInterval,
	}, appLogger)
	go hub.Run(ctx)
	hub.StartEventPoller(ctx, eventLog)

	replay := network.NewReplayHandler(eventLog, eventRepo, recorder, appLogger)
	api := network.NewAPI(hub, manager, catalog, replay, appLogger)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLogger.Info("HTTP API & WS Server listening on " + cfg.Server.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	appLogger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
