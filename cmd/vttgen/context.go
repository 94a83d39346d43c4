package main

import (
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"vttgen/internal/config"
	"vttgen/internal/logging"
	"vttgen/internal/transcribe"
)

type commandContext struct {
	configFlag    *string
	logLevelFlag  *string
	logFormatFlag *string

	// factory overrides transcribe.NewEngine in tests.
	factory transcribe.Factory

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, logLevelFlag, logFormatFlag *string) *commandContext {
	return &commandContext{
		configFlag:    configFlag,
		logLevelFlag:  logLevelFlag,
		logFormatFlag: logFormatFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// newLogger builds the stderr logger, letting --log-level and --log-format
// win over the config file.
func (c *commandContext) newLogger(cmd *cobra.Command, w io.Writer) (*slog.Logger, error) {
	level := "warn"
	format := "console"
	if cfg, err := c.ensureConfig(); err == nil && cfg != nil {
		level = cfg.Logging.Level
		format = cfg.Logging.Format
	}
	if flag := cmd.Flag("log-level"); flag != nil && flag.Changed && c.logLevelFlag != nil {
		level = *c.logLevelFlag
	}
	if flag := cmd.Flag("log-format"); flag != nil && flag.Changed && c.logFormatFlag != nil {
		format = *c.logFormatFlag
	}
	return logging.New(logging.Options{Level: level, Format: format, Writer: w})
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
