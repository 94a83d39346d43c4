package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"vttgen/internal/fileutil"
	"vttgen/internal/transcribe"
)

//go:embed sample_config.toml
var sampleConfig string

// Engine contains transcription engine settings.
type Engine struct {
	Backend     string `toml:"backend"`
	Model       string `toml:"model"`
	Device      string `toml:"device"`
	ComputeType string `toml:"compute_type"`
	BeamSize    int    `toml:"beam_size"`
	VADFilter   bool   `toml:"vad_filter"`
	// Language is the default hint; empty means auto-detect.
	Language string `toml:"language"`
	Python   string `toml:"python"`
	// Script replaces the embedded faster-whisper helper when set.
	Script string `toml:"script"`
}

// OpenAI contains settings for the OpenAI-compatible backend.
type OpenAI struct {
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Cache contains transcript cache settings.
type Cache struct {
	Enabled bool   `toml:"enabled"` // Default: false
	Path    string `toml:"path"`    // Default: ~/.cache/vttgen/transcripts.db
}

// Logging contains configuration for stderr log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for vttgen.
type Config struct {
	Engine  Engine  `toml:"engine"`
	OpenAI  OpenAI  `toml:"openai"`
	Cache   Cache   `toml:"cache"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and environment fallbacks applied.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			var strict *toml.StrictMissingError
			if errors.As(err, &strict) {
				return nil, "", false, fmt.Errorf("parse config: %s", strict.String())
			}
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := loadDotEnv(".env"); err != nil {
		return nil, "", false, err
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// loadDotEnv exports variables from path without overriding the environment.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// resolveConfigPath returns the config file to read and whether it exists.
// Without an explicit path the user config wins over ./vttgen.toml; when
// neither exists the user config path is reported.
func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	candidates := make([]string, 0, 2)
	for _, candidate := range []string{defaultConfigPath, projectConfigName} {
		expanded, err := expandPath(candidate)
		if err != nil {
			return "", false, err
		}
		candidates = append(candidates, expanded)
	}
	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true, nil
		}
	}
	return candidates[0], false, nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath resolves "~" and relative paths to an absolute path.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes the commented sample configuration to path, creating
// parent directories.
func CreateSample(path string) error {
	if err := fileutil.EnsureParentDir(path); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// TranscribeConfig returns the engine construction settings.
func (c *Config) TranscribeConfig(logger *slog.Logger) transcribe.Config {
	cfg := transcribe.Config{
		Backend:       c.Engine.Backend,
		Model:         c.Engine.Model,
		Device:        c.Engine.Device,
		ComputeType:   c.Engine.ComputeType,
		Python:        c.Engine.Python,
		Script:        c.Engine.Script,
		OpenAIBaseURL: c.OpenAI.BaseURL,
		OpenAIAPIKey:  c.OpenAI.APIKey,
		OpenAIModel:   c.OpenAI.Model,
		Logger:        logger,
	}
	if c.OpenAI.TimeoutSeconds > 0 {
		cfg.HTTPClient = &http.Client{Timeout: time.Duration(c.OpenAI.TimeoutSeconds) * time.Second}
	}
	return cfg
}
