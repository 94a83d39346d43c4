package config

import (
	"os"
	"path/filepath"
	"strings"

	"vttgen/internal/transcribe"
)

const (
	defaultConfigPath    = "~/.config/vttgen/config.toml"
	projectConfigName    = "vttgen.toml"
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOpenAITimeout = 600
	defaultLogFormat     = "console"
	defaultLogLevel      = "warn"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Engine: Engine{
			Backend:     transcribe.BackendFasterWhisper,
			Model:       transcribe.DefaultModel,
			Device:      transcribe.DefaultDevice,
			ComputeType: transcribe.DefaultComputeType,
			BeamSize:    transcribe.DefaultBeamSize,
			VADFilter:   true,
			Python:      transcribe.DefaultPython,
		},
		OpenAI: OpenAI{
			BaseURL:        defaultOpenAIBaseURL,
			Model:          transcribe.DefaultOpenAIModel,
			TimeoutSeconds: defaultOpenAITimeout,
		},
		Cache: Cache{
			Path: defaultCachePath(),
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

func defaultCachePath() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "vttgen", "transcripts.db")
	}
	return "~/.cache/vttgen/transcripts.db"
}
