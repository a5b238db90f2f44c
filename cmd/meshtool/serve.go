package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli"
	"go.uber.org/zap"

	"github.com/Faultbox/meshcast/internal/logger"
	"github.com/Faultbox/meshcast/internal/session"
	"github.com/Faultbox/meshcast/internal/stream"
)

// Serve a headless preview stream until interrupted.
func serve(ctx *cli.Context) error {
	cfg, err := setup(ctx)
	if err != nil {
		return err
	}
	if ctx.IsSet("addr") {
		cfg.Stream.Addr = ctx.String("addr")
	}

	s, err := session.New(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	hub := stream.NewHub()
	defer hub.Close()

	mux := http.NewServeMux()
	mux.Handle(cfg.Stream.Path, hub)
	server := &http.Server{Addr: cfg.Stream.Addr, Handler: mux}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("preview stream listening", zap.String("addr", cfg.Stream.Addr), zap.String("path", cfg.Stream.Path))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	interval := cfg.Stream.Interval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-runCtx.Done():
			logger.Info("shutting down preview stream")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case err, ok := <-serverErr:
			if ok {
				return err
			}
			return nil
		case now := <-ticker.C:
			s.Drain(hub.Controls())
			s.Step(now.Sub(last).Seconds())
			last = now

			if hub.ClientCount() == 0 {
				continue
			}
			frame, err := s.Render()
			if err != nil {
				return err
			}
			if err := hub.Broadcast(frame.RGBA); err != nil {
				logger.Warn("broadcast failed", zap.Error(err))
			}
		}
	}
}
