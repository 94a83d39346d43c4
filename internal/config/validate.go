package config

import (
	"fmt"
	"slices"

	"vttgen/internal/transcribe"
)

var (
	validDevices   = []string{"cpu", "cuda", "auto"}
	validLogLevels = []string{"debug", "info", "warn", "warning", "error"}
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateEngine(); err != nil {
		return err
	}
	if err := c.validateOpenAI(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateEngine() error {
	switch c.Engine.Backend {
	case transcribe.BackendFasterWhisper, transcribe.BackendOpenAI:
	default:
		return fmt.Errorf("engine.backend must be %q or %q, got %q",
			transcribe.BackendFasterWhisper, transcribe.BackendOpenAI, c.Engine.Backend)
	}
	if !slices.Contains(validDevices, c.Engine.Device) {
		return fmt.Errorf("engine.device must be one of %v, got %q", validDevices, c.Engine.Device)
	}
	return nil
}

func (c *Config) validateOpenAI() error {
	if c.Engine.Backend != transcribe.BackendOpenAI {
		return nil
	}
	// Self-hosted compatible servers usually run without a key.
	if c.OpenAI.BaseURL == defaultOpenAIBaseURL && c.OpenAI.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = defaultConfigPath
		}
		return fmt.Errorf("openai.api_key is required for %s. Set OPENAI_API_KEY or edit %s (create with 'vttgen config init')", defaultOpenAIBaseURL, defaultPath)
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !slices.Contains(validLogLevels, c.Logging.Level) {
		return fmt.Errorf("logging.level must be one of %v, got %q", validLogLevels, c.Logging.Level)
	}
	return nil
}
