// Package main is the meshcast command line tool: offline rendering,
// index statistics, benchmarks, recording and a headless preview server.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/Faultbox/meshcast/internal/logger"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "meshtool"
	app.Usage = "ray cast triangle meshes through an octree"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Usage: "YAML config file (defaults are used when omitted)",
		},
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "render",
			Usage: "render a single frame to an image file",
			Description: `
Build the configured mesh, index it and render one frame. The output format
follows the file extension: png, jpg, bmp or tiff.`,
			Flags: append(sceneFlags(),
				cli.StringFlag{
					Name:  "out, o",
					Value: "frame.png",
					Usage: "image filename for the rendered frame",
				},
				cli.Float64Flag{
					Name:  "spin",
					Usage: "seconds of configured mesh spin to apply before rendering",
				},
			),
			Action: renderFrame,
		},
		{
			Name:   "stats",
			Usage:  "print octree statistics for the configured mesh",
			Flags:  sceneFlags(),
			Action: printStats,
		},
		{
			Name:  "bench",
			Usage: "measure frame render time across worker counts",
			Flags: append(sceneFlags(),
				cli.IntFlag{
					Name:  "frames, n",
					Value: 10,
					Usage: "frames rendered per worker count",
				},
				cli.IntSliceFlag{
					Name:  "pool",
					Value: &cli.IntSlice{},
					Usage: "worker counts to compare (default 1,2,4,8)",
				},
				cli.BoolFlag{
					Name:  "tiles",
					Usage: "print per-tile statistics of the last frame",
				},
			),
			Action: benchmark,
		},
		{
			Name:  "record",
			Usage: "render a spinning mesh into a compressed recording",
			Flags: append(sceneFlags(),
				cli.IntFlag{
					Name:  "frames, n",
					Usage: "frames to record (default from config)",
				},
				cli.StringFlag{
					Name:  "dir, d",
					Usage: "recordings directory (default from config)",
				},
				cli.Float64Flag{
					Name:  "dt",
					Value: 1.0 / 30,
					Usage: "simulated seconds between frames",
				},
			),
			Action: recordFrames,
		},
		{
			Name:      "replay",
			Usage:     "inspect a recording and optionally export its frames",
			ArgsUsage: "recording_dir",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "export, e",
					Usage: "directory to write every frame to as png",
				},
			},
			Action: replayRecording,
		},
		{
			Name:  "serve",
			Usage: "render continuously and stream frames over websocket",
			Flags: append(sceneFlags(),
				cli.StringFlag{
					Name:  "addr",
					Usage: "listen address (default from config)",
				},
			),
			Action: serve,
		},
	}

	err := app.Run(os.Args)
	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
