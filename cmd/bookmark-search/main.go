package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aryannaik/bookmark-search/internal/config"
	"github.com/aryannaik/bookmark-search/internal/engine"
	"github.com/aryannaik/bookmark-search/internal/logging"
	"github.com/aryannaik/bookmark-search/internal/metrics"
	"github.com/aryannaik/bookmark-search/internal/server"
	"github.com/aryannaik/bookmark-search/internal/store"
)

func main() {
	loadOnlyFlag := flag.Bool("load-only", false, "Bulk load the store, print stats and exit (don't start server)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	log, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	if err := run(cfg, log, *loadOnlyFlag); err != nil {
		log.Error("exiting", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger, loadOnly bool) error {
	st, err := store.Open(cfg.StoreBackend, cfg.DataDir)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Error("close store", "err", err)
		}
	}()

	reg := metrics.NewRegistry()
	eng, err := engine.New(st, engine.Options{
		Logger:           log,
		Metrics:          reg,
		SearchLimit:      cfg.SearchLimit,
		SearchMode:       cfg.SearchMode,
		CompactThreshold: cfg.CompactThreshold,
		InboxSize:        cfg.InboxSize,
	})
	if err != nil {
		return err
	}
	defer eng.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := eng.BulkLoad(ctx); err != nil {
		return err
	}

	if loadOnly {
		select {
		case <-eng.Loaded():
		case <-ctx.Done():
			return ctx.Err()
		}
		if err := eng.LoadErr(); err != nil {
			return err
		}
		stats, err := eng.Stats(ctx)
		if err != nil {
			return err
		}
		log.Info("load-only mode: exiting", "cached", stats.Cached, "indexed", stats.Indexed)
		return nil
	}

	srv := server.New(cfg.Port, eng, log, reg)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", "err", err)
			stop()
		}
	}()

	// Background periodic compaction
	ticker := time.NewTicker(cfg.CompactInterval)
	go func() {
		for range ticker.C {
			n, err := eng.Compact(ctx)
			if err != nil {
				log.Error("periodic compaction", "err", err)
				continue
			}
			if n > 0 {
				log.Info("periodic compaction", "purged", n)
			}
		}
	}()

	<-ctx.Done()
	ticker.Stop()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", "err", err)
	}

	log.Info("goodbye")
	return nil
}
