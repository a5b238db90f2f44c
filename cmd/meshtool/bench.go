package main

import (
	"fmt"
	"time"

	"github.com/urfave/cli"
	"go.uber.org/zap"

	"github.com/Faultbox/meshcast/internal/logger"
	"github.com/Faultbox/meshcast/internal/render"
	"github.com/Faultbox/meshcast/internal/scene"
	"github.com/Faultbox/meshcast/internal/session"
)

var defaultPools = []int{1, 2, 4, 8}

type benchResult struct {
	workers int
	avg     time.Duration
	best    time.Duration
	stats   render.FrameStats
}

// Render the same frame repeatedly with different pool sizes.
func benchmark(ctx *cli.Context) error {
	cfg, err := setup(ctx)
	if err != nil {
		return err
	}

	frames := ctx.Int("frames")
	if frames < 1 {
		return fmt.Errorf("frames must be at least 1")
	}
	pools := ctx.IntSlice("pool")
	if len(pools) == 0 {
		pools = defaultPools
	}

	buildStart := time.Now()
	index, err := session.BuildIndex(cfg)
	if err != nil {
		return err
	}
	buildTime := time.Since(buildStart)

	cam := session.CameraFromConfig(cfg)
	sc := scene.New(cam.Limits(), index)
	w, h := cfg.Render.Width, cfg.Render.Height

	results := make([]benchResult, 0, len(pools))
	for _, n := range pools {
		if n < 1 {
			return fmt.Errorf("worker count %d must be at least 1", n)
		}

		r := render.New(n, render.WithBackground(cfg.Render.BackgroundColor()))

		// Warm up the pool before timing.
		if _, err := r.Render(sc, cam, w, h); err != nil {
			r.Close()
			return err
		}

		res := benchResult{workers: n, best: time.Duration(1<<63 - 1)}
		var total time.Duration
		for i := 0; i < frames; i++ {
			if _, err := r.Render(sc, cam, w, h); err != nil {
				r.Close()
				return err
			}
			st := r.Stats()
			total += st.RenderTime
			if st.RenderTime < res.best {
				res.best = st.RenderTime
			}
			res.stats = st
		}
		r.Close()

		res.avg = total / time.Duration(frames)
		results = append(results, res)
		logger.Info("bench pool done", zap.Int("workers", n), zap.Duration("avg", res.avg))
	}

	st := index.Stats()
	fmt.Printf("%s: %d faces, %d nodes, built in %s; %dx%d, %d frames per pool\n",
		index.Source().Name, st.Faces, st.Nodes, buildTime, w, h, frames)

	base := results[0].avg
	table := newTable("Workers", "Avg frame", "Best frame", "Speedup", "Mpix/s")
	for _, res := range results {
		table.Append([]string{
			fmt.Sprintf("%d", res.workers),
			res.avg.String(),
			res.best.String(),
			fmt.Sprintf("%.2fx", float64(base)/float64(res.avg)),
			fmt.Sprintf("%.2f", float64(w*h)/res.avg.Seconds()/1e6),
		})
	}
	table.Render()

	if ctx.Bool("tiles") {
		displayFrameStats(results[len(results)-1].stats, true)
	}
	return nil
}
