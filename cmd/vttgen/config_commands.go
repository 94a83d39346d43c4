package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"vttgen/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a commented sample configuration",
		Long: "Write a sample vttgen.toml-style configuration. Without --path it goes to\n" +
			"~/.config/vttgen/config.toml, which vttgen reads before ./vttgen.toml.",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := initTarget(targetPath)
			if err != nil {
				return err
			}
			if _, err := os.Stat(target); err == nil && !overwrite {
				return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
			} else if err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("check config path: %w", err)
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Next steps:")
			for _, hint := range initHints() {
				fmt.Fprintf(out, "  - %s\n", hint)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

// initTarget resolves --path, defaulting to the user config location.
func initTarget(path string) (string, error) {
	if path = strings.TrimSpace(path); path == "" {
		defaultPath, err := config.DefaultConfigPath()
		if err != nil {
			return "", fmt.Errorf("determine default config path: %w", err)
		}
		return defaultPath, nil
	}
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}
	return expanded, nil
}

// initHints lists the environment settings the sample leaves open, noting
// the ones already present.
func initHints() []string {
	hints := make([]string, 0, 3)
	if python, ok := os.LookupEnv("VTTGEN_PYTHON"); ok && strings.TrimSpace(python) != "" {
		hints = append(hints, fmt.Sprintf("faster-whisper helper runs with VTTGEN_PYTHON=%s", strings.TrimSpace(python)))
	} else {
		hints = append(hints, "set engine.python or VTTGEN_PYTHON to an interpreter with faster-whisper installed")
	}
	if strings.TrimSpace(os.Getenv("OPENAI_API_KEY")) != "" {
		hints = append(hints, "OPENAI_API_KEY is set; switch engine.backend to \"openai\" to use it")
	} else {
		hints = append(hints, "for backend = \"openai\", set OPENAI_API_KEY or point openai.base_url at a self-hosted server")
	}
	hints = append(hints, "run 'vttgen check' to verify the backend")
	return hints
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Validate configuration file",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if ctx.configFlag != nil {
				path = strings.TrimSpace(*ctx.configFlag)
			}
			_, resolved, exists, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", resolved)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}
