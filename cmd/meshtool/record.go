package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli"
	"go.uber.org/zap"

	"github.com/Faultbox/meshcast/internal/capture"
	"github.com/Faultbox/meshcast/internal/logger"
	"github.com/Faultbox/meshcast/internal/record"
	"github.com/Faultbox/meshcast/internal/session"
)

type frameEvent struct {
	Hits     int     `json:"hits"`
	RenderMs float64 `json:"render_ms"`
}

// Record a spinning mesh.
func recordFrames(ctx *cli.Context) error {
	cfg, err := setup(ctx)
	if err != nil {
		return err
	}

	frames := cfg.Record.Frames
	if ctx.IsSet("frames") {
		frames = ctx.Int("frames")
	}
	if frames < 1 {
		return fmt.Errorf("frames must be at least 1")
	}
	dir := cfg.Record.Dir
	if ctx.IsSet("dir") {
		dir = ctx.String("dir")
	}
	dt := ctx.Float64("dt")

	s, err := session.New(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	w, err := record.NewWriter(dir, cfg.Mesh.Shape, cfg.Render.Width, cfg.Render.Height, time.Now)
	if err != nil {
		return err
	}

	if err := w.AppendEvent(0, "mesh", cfg.Mesh); err != nil {
		w.Close()
		return err
	}

	for i := 0; i < frames; i++ {
		if i > 0 {
			s.Step(dt)
		}
		frame, err := s.Render()
		if err != nil {
			w.Close()
			return err
		}
		st := s.Stats()
		if err := w.AppendFrame(uint64(i), st.RenderTime, frame.RGBA); err != nil {
			w.Close()
			return err
		}
		ev := frameEvent{Hits: st.Hits, RenderMs: float64(st.RenderTime) / float64(time.Millisecond)}
		if err := w.AppendEvent(uint64(i), "frame", ev); err != nil {
			w.Close()
			return err
		}
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("closing recording: %w", err)
	}
	fmt.Printf("recorded %d frames to %s\n", frames, w.Directory())
	return nil
}

// Inspect a recording.
func replayRecording(ctx *cli.Context) error {
	if _, err := setup(ctx); err != nil {
		return err
	}
	if ctx.NArg() != 1 {
		return errors.New("missing recording directory argument")
	}

	r, err := record.Open(ctx.Args().First())
	if err != nil {
		return err
	}
	defer r.Close()

	m := r.Manifest()
	table := newTable("Name", "Created", "Size", "Frames")
	table.Append([]string{m.Name, m.CreatedAt, fmt.Sprintf("%dx%d", m.Width, m.Height), fmt.Sprintf("%d", m.FrameCount)})
	table.Render()

	export := ctx.String("export")
	if export != "" {
		if err := os.MkdirAll(export, 0o755); err != nil {
			return fmt.Errorf("creating export dir: %w", err)
		}
	}

	var (
		count int
		total time.Duration
	)
	for {
		f, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		count++
		total += f.RenderTime

		if export != "" {
			path := filepath.Join(export, fmt.Sprintf("frame_%04d.png", f.Index))
			if err := capture.SavePNG(path, f.Image); err != nil {
				return err
			}
			logger.Debug("frame exported", zap.String("path", path))
		}
	}

	events, err := r.Events()
	if err != nil {
		return err
	}

	summary := newTable("Frames read", "Events", "Avg render time")
	avg := time.Duration(0)
	if count > 0 {
		avg = total / time.Duration(count)
	}
	summary.Append([]string{fmt.Sprintf("%d", count), fmt.Sprintf("%d", len(events)), avg.String()})
	summary.Render()
	return nil
}
