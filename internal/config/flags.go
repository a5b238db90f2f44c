package config

import "flag"

var (
	flagConfig   = flag.String("config", "", "Path to config file")
	flagDebug    = flag.Bool("debug", false, "Enable debug logging")
	flagWidth    = flag.Int("width", 0, "Render width in pixels")
	flagHeight   = flag.Int("height", 0, "Render height in pixels")
	flagWorkers  = flag.Int("workers", 0, "Render worker count")
	flagMesh     = flag.String("mesh", "", "Procedural mesh: plane, sphere or torus")
	flagTexture  = flag.String("texture", "", "Texture image path")
	flagSegments = flag.Int("segments", 0, "Mesh tessellation segments")
	flagAddr     = flag.String("addr", "", "Preview stream listen address")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagWidth > 0 {
		cfg.Render.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Render.Height = *flagHeight
	}
	if *flagWorkers > 0 {
		cfg.Render.Workers = *flagWorkers
	}
	if *flagMesh != "" {
		cfg.Mesh.Shape = *flagMesh
	}
	if *flagTexture != "" {
		cfg.Mesh.Texture = *flagTexture
	}
	if *flagSegments > 0 {
		cfg.Mesh.Segments = *flagSegments
	}
	if *flagAddr != "" {
		cfg.Stream.Addr = *flagAddr
	}
}
