package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/danielhkuo/quickly-poll/cliparse"
	"github.com/danielhkuo/quickly-poll/db"
	"github.com/danielhkuo/quickly-poll/kvstore"
	"github.com/danielhkuo/quickly-poll/metrics"
	"github.com/danielhkuo/quickly-poll/polls"
	"github.com/danielhkuo/quickly-poll/router"
)

func main() {
	var err error

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	level, _ := cfg.Level()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	store, err := openStore(ctx, cfg)
	cancel()
	if err != nil {
		slog.Error("storage setup failed", "type", cfg.DatabaseType, "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage ready", "type", cfg.DatabaseType)

	ledger, err := polls.NewLedger(store, cfg.VoteCacheSize)
	if err != nil {
		slog.Error("ledger setup failed", "error", err)
		os.Exit(1)
	}

	m := metrics.New()
	svc := polls.NewService(store, ledger, polls.WithObserver(m))

	if cfg.SeedDemo {
		if err := svc.SeedDemo(context.Background()); err != nil {
			slog.Error("demo seed failed", "error", err)
			os.Exit(1)
		}
	}

	// Create server
	server := http.Server{
		Handler:           router.NewRouter(svc, cfg, m),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal, then let in-flight votes finish
		<-ctrlc
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			server.Close()
		}
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}

func openStore(ctx context.Context, cfg cliparse.Config) (polls.Store, error) {
	switch cfg.DatabaseType {
	case cliparse.DatabaseBolt:
		store, err := kvstore.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return store, nil
	case cliparse.DatabaseSQLite, cliparse.DatabasePostgres:
		store, err := db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}
}
