// Package config handles renderer configuration loading and management.
package config

// Config holds all engine settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Engine   EngineConfig   `yaml:"engine"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width       int    `yaml:"width"`
	Height      int    `yaml:"height"`
	VSync       bool   `yaml:"vsync"`
	MSAASamples uint32 `yaml:"msaa_samples"` // 1, 2, 4, or 8
	HDR         bool   `yaml:"hdr"`
	Tonemap     string `yaml:"tonemap"` // none, reinhard, reinhard_luminance, aces_fitted, agx, sbdt, tony_mc_mapface, blender_filmic
	Dither      bool   `yaml:"dither"`
}

// EngineConfig holds frame loop settings.
type EngineConfig struct {
	TickRate       float64 `yaml:"tick_rate"`
	FrameLimit     float64 `yaml:"frame_limit"` // 0 = uncapped
	ExtractWorkers int     `yaml:"extract_workers"`
	Profiling      bool    `yaml:"profiling"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:       1280,
			Height:      720,
			VSync:       true,
			MSAASamples: 4,
			HDR:         false,
			Tonemap:     "reinhard_luminance",
			Dither:      true,
		},
		Engine: EngineConfig{
			TickRate:       60,
			FrameLimit:     0,
			ExtractWorkers: 4,
			Profiling:      false,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
