package main

import (
	"context"
	"fmt"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-formfields/internal/backends"
	"github.com/goliatone/go-formfields/internal/server"
	"github.com/goliatone/go-formfields/pkg/definitions"
)

var (
	serveAddr  string
	serveWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve forms over HTTP",
	Long: `Starts the admin server:

  GET  /forms/{object}/{screen}   render a screen (?item=, ?subtype=, ?renderer=json)
  POST /forms/{object}/{screen}   save a submission
  GET  /choices/{name}            query a datasource (?q=, ?limit=)
  GET  /registry/{object}         list registered entities (?kind=, ?subtype=, ?all=1)

With --watch the definitions directory is reloaded on change.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default FORMFIELDS_ADDR or :8080)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "reload definitions on change")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if cmd.Flags().Changed("addr") {
		cfg.Addr = serveAddr
	}
	if cmd.Flags().Changed("watch") {
		cfg.Watch = serveWatch
	}

	figure.NewFigure("formfields", "small", true).Print()
	fmt.Println()

	opened, err := backends.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer opened.Close()

	srv, err := server.New(
		server.WithBackend(opened.Backend),
		server.WithSourceDB(opened.DB),
		server.WithUsers(cfg.Users),
		server.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	if len(cfg.Users) == 0 {
		logger.Warn("no FORMFIELDS_USERS configured, every request has full capabilities")
	}

	set, err := loadDefinitions()
	if err != nil {
		return err
	}
	if err := srv.Load(ctx, set); err != nil {
		return err
	}

	if cfg.Watch {
		watcher, err := definitions.NewWatcher(cfg.Definitions, func(set *definitions.Set) {
			if err := srv.Load(ctx, set); err != nil {
				logger.Warn("definitions rejected, keeping current registry", zap.Error(err))
			}
		}, definitions.WithWatchLogger(logger))
		if err != nil {
			return err
		}
		if err := watcher.Start(ctx); err != nil {
			return err
		}
		defer watcher.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(cfg.Addr)
	}()
	logger.Info("formfields admin ready", zap.String("addr", cfg.Addr))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
