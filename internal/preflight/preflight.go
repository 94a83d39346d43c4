package preflight

import (
	"context"
	"path/filepath"

	"vttgen/internal/config"
	"vttgen/internal/transcribe"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	switch cfg.Engine.Backend {
	case transcribe.BackendOpenAI:
		results = append(results, CheckOpenAI(ctx, cfg.OpenAI.BaseURL, cfg.OpenAI.APIKey))
	default:
		results = append(results, CheckPythonModule(ctx, cfg.Engine.Python, "faster_whisper"))
		if cfg.Engine.Device == transcribe.CUDADevice {
			results = append(results, CheckPythonModule(ctx, cfg.Engine.Python, "ctranslate2"))
		}
	}

	if cfg.Cache.Enabled {
		results = append(results, CheckDirectoryAccess("Cache directory", filepath.Dir(cfg.Cache.Path)))
	}

	return results
}
