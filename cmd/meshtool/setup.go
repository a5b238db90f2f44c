package main

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/Faultbox/meshcast/internal/config"
	"github.com/Faultbox/meshcast/internal/logger"
)

// sceneFlags returns the overrides shared by every command that builds a
// scene. A fresh slice is returned so commands can append to it.
func sceneFlags() []cli.Flag {
	return []cli.Flag{
		cli.IntFlag{Name: "width", Usage: "frame width"},
		cli.IntFlag{Name: "height", Usage: "frame height"},
		cli.IntFlag{Name: "workers", Usage: "render worker count"},
		cli.StringFlag{Name: "mesh", Usage: "procedural mesh: plane, sphere or torus"},
		cli.IntFlag{Name: "segments", Usage: "mesh tessellation segments"},
		cli.StringFlag{Name: "texture", Usage: "texture image path"},
		cli.IntFlag{Name: "leaf", Usage: "octree leaf threshold"},
	}
}

// setup loads the config, applies command flags and starts logging.
func setup(ctx *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	if path := ctx.GlobalString("config"); path != "" {
		loaded, err := config.LoadFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if ctx.IsSet("width") {
		cfg.Render.Width = ctx.Int("width")
	}
	if ctx.IsSet("height") {
		cfg.Render.Height = ctx.Int("height")
	}
	if ctx.IsSet("workers") {
		cfg.Render.Workers = ctx.Int("workers")
	}
	if ctx.IsSet("mesh") {
		cfg.Mesh.Shape = ctx.String("mesh")
	}
	if ctx.IsSet("segments") {
		cfg.Mesh.Segments = ctx.Int("segments")
	}
	if ctx.IsSet("texture") {
		cfg.Mesh.Texture = ctx.String("texture")
	}
	if ctx.IsSet("leaf") {
		cfg.Render.LeafThreshold = ctx.Int("leaf")
	}

	switch {
	case ctx.GlobalBool("vv"):
		cfg.Logging.Level = "debug"
	case ctx.GlobalBool("v"):
		cfg.Logging.Level = "info"
	default:
		cfg.Logging.Level = "warn"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	opts := logger.Options{Level: cfg.Logging.Level, Console: true, JSON: cfg.Logging.JSON}
	if cfg.Logging.LogFile != "" {
		opts.File = logger.DefaultFileConfig(cfg.Logging.LogFile)
	}
	logger.Setup(opts)
	return cfg, nil
}
