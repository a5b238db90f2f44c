package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
	"go.uber.org/zap"

	"github.com/Faultbox/meshcast/internal/capture"
	"github.com/Faultbox/meshcast/internal/logger"
	"github.com/Faultbox/meshcast/internal/octree"
	"github.com/Faultbox/meshcast/internal/render"
	"github.com/Faultbox/meshcast/internal/session"
)

// Render a still frame.
func renderFrame(ctx *cli.Context) error {
	cfg, err := setup(ctx)
	if err != nil {
		return err
	}

	s, err := session.New(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	if spin := ctx.Float64("spin"); spin > 0 {
		s.Step(spin)
	}

	frame, err := s.Render()
	if err != nil {
		return err
	}

	out := ctx.String("out")
	if err := capture.Save(out, frame); err != nil {
		return err
	}
	logger.Info("frame written", zap.String("path", out))

	displayFrameStats(s.Stats(), false)
	return nil
}

// Print octree statistics.
func printStats(ctx *cli.Context) error {
	cfg, err := setup(ctx)
	if err != nil {
		return err
	}

	index, err := session.BuildIndex(cfg)
	if err != nil {
		return err
	}
	if err := index.Root().Check(); err != nil {
		return fmt.Errorf("octree check failed: %w", err)
	}

	st := index.Stats()
	table := newTable("Mesh", "Faces", "Nodes", "Leaves", "Empty leaves", "Max depth", "Max leaf faces", "Avg leaf faces")
	table.Append([]string{
		index.Source().Name,
		fmt.Sprintf("%d", st.Faces),
		fmt.Sprintf("%d", st.Nodes),
		fmt.Sprintf("%d", st.Leaves),
		fmt.Sprintf("%d", st.EmptyLeaves),
		fmt.Sprintf("%d", st.MaxDepth),
		fmt.Sprintf("%d", st.MaxLeafFaces),
		fmt.Sprintf("%.1f", st.AvgLeafFaces()),
	})
	table.Render()

	displayDepthStats(index.Root())
	return nil
}

type depthStat struct {
	nodes, leaves, faces int
	maxRadius            float64
}

func displayDepthStats(root *octree.Node) {
	depths := make(map[int]*depthStat)
	root.Walk(func(n *octree.Node, depth int) {
		d := depths[depth]
		if d == nil {
			d = &depthStat{}
			depths[depth] = d
		}
		d.nodes++
		if n.Leaf {
			d.leaves++
			d.faces += len(n.Faces)
		}
		if n.Radius > d.maxRadius {
			d.maxRadius = n.Radius
		}
	})

	keys := make([]int, 0, len(depths))
	for k := range depths {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	table := newTable("Depth", "Nodes", "Leaves", "Faces", "Max radius")
	for _, k := range keys {
		d := depths[k]
		table.Append([]string{
			fmt.Sprintf("%d", k),
			fmt.Sprintf("%d", d.nodes),
			fmt.Sprintf("%d", d.leaves),
			fmt.Sprintf("%d", d.faces),
			fmt.Sprintf("%.3f", d.maxRadius),
		})
	}
	table.Render()
}

func displayFrameStats(stats render.FrameStats, tiles bool) {
	if tiles {
		table := newTable("Worker", "Columns", "Hits", "Render time")
		for _, t := range stats.Tiles {
			table.Append([]string{
				fmt.Sprintf("%d", t.Index),
				fmt.Sprintf("%d", t.Columns),
				fmt.Sprintf("%d", t.Hits),
				t.RenderTime.String(),
			})
		}
		table.SetFooter([]string{"", "", "TOTAL", stats.RenderTime.String()})
		table.Render()
	}

	table := newTable("Size", "Workers", "Hits", "% of frame", "Render time")
	table.Append([]string{
		fmt.Sprintf("%dx%d", stats.Width, stats.Height),
		fmt.Sprintf("%d", len(stats.Tiles)),
		fmt.Sprintf("%d", stats.Hits),
		fmt.Sprintf("%02.1f %%", stats.HitRatio()*100),
		stats.RenderTime.String(),
	})
	table.Render()
}

func newTable(header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader(header)
	return table
}
