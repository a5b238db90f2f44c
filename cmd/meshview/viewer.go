package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/meshcast/internal/capture"
	"github.com/Faultbox/meshcast/internal/config"
	"github.com/Faultbox/meshcast/internal/logger"
	"github.com/Faultbox/meshcast/internal/session"
	"github.com/Faultbox/meshcast/internal/stream"
	"github.com/Faultbox/meshcast/internal/window"
)

type viewer struct {
	cfg       *config.Config
	session   *session.Session
	presenter *window.Presenter
	input     *window.Input
	capturer  *capture.Capturer

	hub    *stream.Hub
	server *http.Server

	paused  bool
	running bool
}

func newViewer(cfg *config.Config, serve bool) (*viewer, error) {
	s, err := session.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	p, err := window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Render.Width,
		Height:     cfg.Render.Height,
		Scale:      cfg.Window.Scale,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.FPSLimit == 0,
	})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	v := &viewer{
		cfg:       cfg,
		session:   s,
		presenter: p,
		input:     window.NewInput(),
		capturer:  capture.NewCapturer("screenshots", "meshcast"),
	}

	if serve {
		v.startStream()
	}
	return v, nil
}

func (v *viewer) startStream() {
	v.hub = stream.NewHub()
	mux := http.NewServeMux()
	mux.Handle(v.cfg.Stream.Path, v.hub)
	v.server = &http.Server{Addr: v.cfg.Stream.Addr, Handler: mux}

	go func() {
		logger.Info("preview stream listening", zap.String("addr", v.cfg.Stream.Addr), zap.String("path", v.cfg.Stream.Path))
		if err := v.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("preview stream stopped", zap.Error(err))
		}
	}()
}

// Run is the main loop: input, controls, spin, render, present.
func (v *viewer) Run() error {
	v.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	var minFrame time.Duration
	if v.cfg.Window.FPSLimit > 0 {
		minFrame = time.Second / time.Duration(v.cfg.Window.FPSLimit)
	}

	speeds := window.Speeds{Move: v.cfg.Camera.MoveSpeed, Turn: v.cfg.Camera.TurnSpeed}

	logger.Info("starting viewer loop")

	for v.running {
		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		if v.input.Update() {
			v.running = false
			break
		}

		var shot bool
		for _, event := range v.input.Events() {
			if event.Type != window.EventKeyDown {
				continue
			}
			switch event.Key {
			case sdl.SCANCODE_ESCAPE:
				v.running = false
			case sdl.SCANCODE_P:
				v.paused = !v.paused
			case sdl.SCANCODE_F12:
				shot = true
			}
		}
		if !v.running {
			break
		}

		for _, c := range v.input.Controls(dt, speeds) {
			if err := v.session.Apply(c); err != nil {
				return fmt.Errorf("applying input: %w", err)
			}
		}
		if v.hub != nil {
			v.session.Drain(v.hub.Controls())
		}
		if !v.paused {
			v.session.Step(dt)
		}

		frame, err := v.session.Render()
		if err != nil {
			return fmt.Errorf("render error: %w", err)
		}

		if err := v.presenter.Present(frame.RGBA); err != nil {
			return fmt.Errorf("present error: %w", err)
		}

		if shot {
			if path, err := v.capturer.Capture(frame.RGBA); err != nil {
				logger.Warn("screenshot failed", zap.Error(err))
			} else {
				logger.Info("screenshot saved", zap.String("path", path))
			}
		}

		if v.hub != nil && v.hub.ClientCount() > 0 {
			if err := v.hub.Broadcast(frame.RGBA); err != nil {
				logger.Warn("broadcast failed", zap.Error(err))
			}
		}

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			st := v.session.Stats()
			v.presenter.SetTitle(fmt.Sprintf("%s - %d fps, %.0f%% hits", v.cfg.Window.Title, frameCount, st.HitRatio()*100))
			logger.Debug("fps",
				zap.Int("count", frameCount),
				zap.Duration("render", st.RenderTime),
			)
			frameCount = 0
			fpsTimer = time.Now()
		}

		if minFrame > 0 {
			if elapsed := time.Since(now); elapsed < minFrame {
				time.Sleep(minFrame - elapsed)
			}
		}
	}

	return nil
}

// Close releases the stream, window and renderer.
func (v *viewer) Close() {
	logger.Info("closing viewer")

	if v.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := v.server.Shutdown(ctx); err != nil {
			logger.Warn("stream shutdown", zap.Error(err))
		}
	}
	if v.hub != nil {
		v.hub.Close()
	}
	if v.presenter != nil {
		v.presenter.Close()
	}
	if v.session != nil {
		v.session.Close()
	}
}
