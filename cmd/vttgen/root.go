package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"vttgen/internal/cache"
	"vttgen/internal/generate"
	"vttgen/internal/logging"
	"vttgen/internal/metadata"
	"vttgen/internal/transcribe"
)

type generateFlags struct {
	input       string
	output      string
	metaOutput  string
	language    string
	model       string
	device      string
	computeType string
	beamSize    int
	noVADFilter bool
	backend     string
	cache       bool
	progress    bool
}

func newRootCommand() *cobra.Command {
	return newRootCommandWithFactory(nil)
}

func newRootCommandWithFactory(factory transcribe.Factory) *cobra.Command {
	var configFlag, logLevelFlag, logFormatFlag string
	var flags generateFlags

	ctx := newCommandContext(&configFlag, &logLevelFlag, &logFormatFlag)
	ctx.factory = factory

	rootCmd := &cobra.Command{
		Use:   "vttgen --input <media> --output <file.vtt>",
		Short: "Generate WebVTT subtitles from speech with faster-whisper",
		Long: "vttgen transcribes a speech or video file and writes the timed text as a WebVTT\n" +
			"subtitle file. The run metadata is printed as one JSON line on stdout.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, ctx, &flags)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	pf.StringVar(&logLevelFlag, "log-level", "warn", "Log level (debug, info, warn, error)")
	pf.StringVar(&logFormatFlag, "log-format", "console", "Log format (console or json)")

	f := rootCmd.Flags()
	f.StringVar(&flags.input, "input", "", "Input media file path")
	f.StringVar(&flags.output, "output", "", "Output WebVTT file path")
	f.StringVar(&flags.metaOutput, "meta-output", "", "Optional output path for metadata JSON")
	f.StringVar(&flags.language, "language", "", "Optional language code (example: en, ms, ar)")
	f.StringVar(&flags.model, "model", transcribe.DefaultModel, "Whisper model name/path")
	f.StringVar(&flags.device, "device", transcribe.DefaultDevice, "Device to run on (cpu or cuda)")
	f.StringVar(&flags.computeType, "compute-type", transcribe.DefaultComputeType, "Compute type (int8/float16/etc)")
	f.IntVar(&flags.beamSize, "beam-size", transcribe.DefaultBeamSize, "Beam size used for transcription")
	f.BoolVar(&flags.noVADFilter, "no-vad-filter", false, "Disable built-in voice activity detection filter")
	f.StringVar(&flags.backend, "backend", transcribe.BackendFasterWhisper, "Transcription backend (faster-whisper or openai)")
	f.BoolVar(&flags.cache, "cache", false, "Reuse and store transcripts in the local cache")
	f.BoolVar(&flags.progress, "progress", true, "Show a progress bar on interactive terminals")
	_ = rootCmd.MarkFlagRequired("input")
	_ = rootCmd.MarkFlagRequired("output")

	rootCmd.AddCommand(newCheckCommand(ctx))
	rootCmd.AddCommand(newInspectCommand())
	rootCmd.AddCommand(newCacheCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}

func runGenerate(cmd *cobra.Command, ctx *commandContext, flags *generateFlags) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	// Flags win over the config file only when given explicitly.
	changed := cmd.Flags().Changed
	if changed("backend") {
		cfg.Engine.Backend = strings.ToLower(strings.TrimSpace(flags.backend))
	}
	if changed("model") {
		// The openai backend runs the remote model named in [openai].
		if model := strings.TrimSpace(flags.model); cfg.Engine.Backend == transcribe.BackendOpenAI {
			cfg.OpenAI.Model = model
		} else {
			cfg.Engine.Model = model
		}
	}
	if changed("device") {
		cfg.Engine.Device = strings.ToLower(strings.TrimSpace(flags.device))
	}
	if changed("compute-type") {
		cfg.Engine.ComputeType = strings.ToLower(strings.TrimSpace(flags.computeType))
	}
	if changed("beam-size") {
		cfg.Engine.BeamSize = max(1, flags.beamSize)
	}
	if changed("no-vad-filter") {
		cfg.Engine.VADFilter = !flags.noVADFilter
	}
	if changed("language") {
		cfg.Engine.Language = flags.language
	}
	if changed("cache") {
		cfg.Cache.Enabled = flags.cache
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	logger, err := ctx.newLogger(cmd, stderr)
	if err != nil {
		return err
	}
	runCtx := logging.WithRunID(cmd.Context(), uuid.NewString())

	opts := []generate.Option{
		generate.WithLogger(logger),
		generate.WithEngineFactory(ctx.factory),
	}
	if cfg.Cache.Enabled {
		db, err := cache.Open(runCtx, cfg.Cache.Path)
		if err != nil {
			logging.WarnWithContext(logger, "transcript cache unavailable", "cache_open",
				logging.String("path", cfg.Cache.Path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check cache.path or run without --cache"),
				logging.String(logging.FieldImpact, "transcription runs without cache"),
			)
		} else {
			defer db.Close()
			opts = append(opts, generate.WithCache(db))
		}
	}
	if flags.progress {
		if file, ok := stderr.(*os.File); ok && logging.IsTerminal(file) {
			bar := newProgress(file)
			defer bar.finish()
			opts = append(opts, generate.WithInfoObserver(bar.start), generate.WithSegmentObserver(bar.observe))
		}
	}

	svc := generate.NewService(cfg.TranscribeConfig(logger), opts...)
	result, err := svc.Run(runCtx, generate.Request{
		Input:       flags.input,
		Output:      flags.output,
		MetaOutput:  flags.metaOutput,
		Language:    cfg.Engine.Language,
		Model:       cfg.Engine.Model,
		Device:      cfg.Engine.Device,
		ComputeType: cfg.Engine.ComputeType,
		BeamSize:    cfg.Engine.BeamSize,
		NoVADFilter: !cfg.Engine.VADFilter,
	})
	if err != nil {
		return err
	}

	line, err := metadata.Line(result.Metadata)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), line)
	return err
}
