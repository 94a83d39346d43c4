package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"vttgen/internal/config"
	"vttgen/internal/deps"
	"vttgen/internal/preflight"
	"vttgen/internal/transcribe"
)

type checkRow struct {
	Name     string `json:"name"`
	Status   string `json:"status"`
	Detail   string `json:"detail"`
	Optional bool   `json:"optional,omitempty"`
}

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check that the configured transcription backend is usable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			rows := collectChecks(cmd, cfg)

			if asJSON {
				if err := writeJSON(cmd, rows); err != nil {
					return err
				}
			} else {
				renderChecks(cmd, cfg, rows)
			}

			if failed := countFailed(rows); failed > 0 {
				return fmt.Errorf("%d required check(s) failed", failed)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit results as JSON")
	return cmd
}

func renderChecks(cmd *cobra.Command, cfg *config.Config, rows []checkRow) {
	out := cmd.OutOrStdout()
	if cfg.Engine.Backend == transcribe.BackendOpenAI {
		fmt.Fprintf(out, "Backend: %s (model %s at %s)\n", cfg.Engine.Backend, cfg.OpenAI.Model, cfg.OpenAI.BaseURL)
	} else {
		fmt.Fprintf(out, "Backend: %s (model %s, device %s, compute type %s)\n",
			cfg.Engine.Backend, cfg.Engine.Model, cfg.Engine.Device, cfg.Engine.ComputeType)
	}
	table := make([][]string, 0, len(rows))
	for _, row := range rows {
		table = append(table, []string{row.Name, row.Status, row.Detail})
	}
	fmt.Fprintln(out, renderTable([]string{"Check", "Status", "Detail"}, table, nil))
}

func collectChecks(cmd *cobra.Command, cfg *config.Config) []checkRow {
	var requirements []deps.Requirement
	if cfg.Engine.Backend != transcribe.BackendOpenAI {
		requirements = append(requirements, deps.Requirement{
			Name:        "Python",
			Command:     cfg.Engine.Python,
			Description: "Runs the faster-whisper helper",
		})
		if cfg.Engine.Device == transcribe.CUDADevice {
			requirements = append(requirements, deps.Requirement{
				Name:        "nvidia-smi",
				Command:     "nvidia-smi",
				Description: "Reports the CUDA driver",
				Optional:    true,
			})
		}
	}

	var rows []checkRow
	for _, status := range deps.CheckBinaries(requirements) {
		detail := status.Detail
		if status.Description != "" {
			detail = strings.TrimSpace(detail + " (" + status.Description + ")")
		}
		rows = append(rows, checkRow{
			Name:     status.Name,
			Status:   statusLabel(status.Available, status.Optional),
			Detail:   detail,
			Optional: status.Optional,
		})
	}
	for _, result := range preflight.RunAll(cmd.Context(), cfg) {
		rows = append(rows, checkRow{
			Name:   result.Name,
			Status: statusLabel(result.Passed, false),
			Detail: result.Detail,
		})
	}
	return rows
}

func statusLabel(ok, optional bool) string {
	switch {
	case ok:
		return "OK"
	case optional:
		return "Missing (optional)"
	default:
		return "Missing"
	}
}

func countFailed(rows []checkRow) int {
	failed := 0
	for _, row := range rows {
		if row.Status == "Missing" {
			failed++
		}
	}
	return failed
}
