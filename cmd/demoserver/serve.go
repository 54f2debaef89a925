package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/portailcloud/demoserver/internal/accesslog"
	"github.com/portailcloud/demoserver/internal/page"
	"github.com/portailcloud/demoserver/internal/server"
	"github.com/portailcloud/demoserver/internal/watch"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	setupLogging(cfg.Level)

	renderer, err := page.NewRenderer(cfg.Port)
	if err != nil {
		return err
	}

	var rec server.Recorder
	if cfg.AccessLog != "" {
		al, err := accesslog.Open(cfg.AccessLog)
		if err != nil {
			return err
		}
		defer al.Close()
		rec = al
	}

	slog.Info("demoserver starting", "port", cfg.Port, "root", cfg.Root, "access_log", cfg.AccessLog)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	srv := server.New(server.Options{
		Root:     cfg.Root,
		Renderer: renderer,
		Recorder: rec,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenTCP(cfg.Addr())
	}()

	if cfg.Watch {
		w := watch.New(cfg.Root, nil, nil)
		go func() {
			if err := w.Run(ctx); err != nil {
				slog.Error("static root watcher stopped", "error", err)
			}
		}()
	}

	select {
	case sig := <-sigCh:
		slog.Info("received signal, shutting down", "signal", sig)
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listening on %s: %w", cfg.Addr(), err)
		}
		return nil
	}

	cancel()
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("graceful shutdown incomplete", "error", err)
	}

	slog.Info("demoserver stopped")
	return nil
}
