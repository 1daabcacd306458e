package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"pocketapps/internal/config"
	"pocketapps/internal/handlers"
	"pocketapps/internal/logging"
	"pocketapps/internal/rps"
	"pocketapps/internal/store"
)

func main() {
	fs := flag.NewFlagSet("pocketapps", flag.ExitOnError)
	cfg, err := config.Load(fs, os.Args[1:], os.Getenv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pocketapps: %v\n", err)
		os.Exit(2)
	}

	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err := run(cfg, logger); err != nil {
		logger.Fatal("server failed", "err", err)
	}
}

func run(cfg *config.Config, logger *log.Logger) error {
	if err := cfg.EnsureDataDir(); err != nil {
		return err
	}

	tasks, contacts, closer, err := openStores(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer closer.Close()

	h := handlers.New(tasks, contacts, rps.NewScoreboard(nil), logger)

	// Create router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(logging.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	h.Routes(r)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", "http://localhost"+srv.Addr, "backend", cfg.Backend, "data_dir", cfg.DataDir)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

type multiCloser []io.Closer

func (m multiCloser) Close() error {
	var errs []error
	for _, c := range m {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// openStores opens the backend named in cfg. The sqlite backend serves both
// record types from one database.
func openStores(cfg *config.Config, logger *log.Logger) (store.TaskStore, store.ContactStore, io.Closer, error) {
	opts := store.Options{Logger: logger, StableIDs: cfg.StableIDs}

	switch cfg.Backend {
	case config.BackendSQLite:
		s, err := store.NewSQLiteStore(cfg.DBPath, opts)
		if err != nil {
			return nil, nil, nil, err
		}
		return s, s, s, nil

	default:
		tasks, err := store.NewJSONTaskStore(cfg.TasksFile, opts)
		if err != nil {
			return nil, nil, nil, err
		}
		contacts, err := store.NewJSONContactStore(cfg.ContactsFile, opts)
		if err != nil {
			tasks.Close()
			return nil, nil, nil, err
		}
		return tasks, contacts, multiCloser{tasks, contacts}, nil
	}
}
