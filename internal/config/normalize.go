package config

import (
	"fmt"
	"os"
	"strings"

	"vttgen/internal/language"
	"vttgen/internal/transcribe"
)

func (c *Config) normalize() error {
	c.normalizeEngine()
	c.normalizeOpenAI()
	if err := c.normalizeCache(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeEngine() {
	c.Engine.Backend = strings.ToLower(strings.TrimSpace(c.Engine.Backend))
	if c.Engine.Backend == "" {
		c.Engine.Backend = transcribe.BackendFasterWhisper
	}
	c.Engine.Model = strings.TrimSpace(c.Engine.Model)
	if c.Engine.Model == "" {
		c.Engine.Model = transcribe.DefaultModel
	}
	c.Engine.Device = strings.ToLower(strings.TrimSpace(c.Engine.Device))
	if c.Engine.Device == "" {
		c.Engine.Device = transcribe.DefaultDevice
	}
	c.Engine.ComputeType = strings.ToLower(strings.TrimSpace(c.Engine.ComputeType))
	if c.Engine.ComputeType == "" {
		c.Engine.ComputeType = transcribe.DefaultComputeType
	}
	c.Engine.BeamSize = max(1, c.Engine.BeamSize)
	c.Engine.Language = language.Normalize(c.Engine.Language)

	c.Engine.Python = strings.TrimSpace(c.Engine.Python)
	if c.Engine.Python == "" {
		if value, ok := os.LookupEnv("VTTGEN_PYTHON"); ok {
			c.Engine.Python = strings.TrimSpace(value)
		}
	}
	if c.Engine.Python == "" {
		c.Engine.Python = transcribe.DefaultPython
	}
	c.Engine.Script = strings.TrimSpace(c.Engine.Script)
}

func (c *Config) normalizeOpenAI() {
	c.OpenAI.BaseURL = strings.TrimRight(strings.TrimSpace(c.OpenAI.BaseURL), "/")
	if c.OpenAI.BaseURL == "" {
		if value, ok := os.LookupEnv("OPENAI_BASE_URL"); ok {
			c.OpenAI.BaseURL = strings.TrimRight(strings.TrimSpace(value), "/")
		}
	}
	if c.OpenAI.BaseURL == "" {
		c.OpenAI.BaseURL = defaultOpenAIBaseURL
	}
	c.OpenAI.APIKey = strings.TrimSpace(c.OpenAI.APIKey)
	if c.OpenAI.APIKey == "" {
		if value, ok := os.LookupEnv("OPENAI_API_KEY"); ok {
			c.OpenAI.APIKey = strings.TrimSpace(value)
		}
	}
	c.OpenAI.Model = strings.TrimSpace(c.OpenAI.Model)
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = transcribe.DefaultOpenAIModel
	}
	if c.OpenAI.TimeoutSeconds <= 0 {
		c.OpenAI.TimeoutSeconds = defaultOpenAITimeout
	}
}

func (c *Config) normalizeCache() error {
	var err error
	if strings.TrimSpace(c.Cache.Path) == "" {
		c.Cache.Path = defaultCachePath()
	}
	if c.Cache.Path, err = expandPath(strings.TrimSpace(c.Cache.Path)); err != nil {
		return fmt.Errorf("cache.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
