package generate

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"vttgen/internal/cache"
	"vttgen/internal/fileutil"
	"vttgen/internal/language"
	"vttgen/internal/logging"
	"vttgen/internal/metadata"
	"vttgen/internal/subtitles"
	"vttgen/internal/transcribe"
)

// Request describes one generation run. Empty engine fields fall back to the
// service's engine configuration.
type Request struct {
	Input      string
	Output     string
	MetaOutput string

	// Language is a hint; empty requests auto-detection.
	Language    string
	// Model is ignored on the openai backend, which always runs the
	// configured remote model.
	Model       string
	Device      string
	ComputeType string
	// BeamSize is floored at 1.
	BeamSize    int
	NoVADFilter bool
}

// Result is the outcome of a successful run.
type Result struct {
	Metadata metadata.Record
	Cues     []subtitles.Cue
	CacheHit bool
}

// Service generates subtitles with a configured engine.
type Service struct {
	engine     transcribe.Config
	factory    transcribe.Factory
	cache      *cache.DB
	logger     *slog.Logger
	onInfo     func(transcribe.Info)
	observe    subtitles.SegmentObserver
	lockOutput bool
}

// Option configures a Service.
type Option func(*Service)

// WithEngineFactory replaces transcribe.NewEngine.
func WithEngineFactory(factory transcribe.Factory) Option {
	return func(s *Service) {
		if factory != nil {
			s.factory = factory
		}
	}
}

// WithCache enables transcript caching through db.
func WithCache(db *cache.DB) Option {
	return func(s *Service) { s.cache = db }
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithInfoObserver is called once the engine reports transcription info,
// before any segment is consumed.
func WithInfoObserver(fn func(transcribe.Info)) Option {
	return func(s *Service) { s.onInfo = fn }
}

// WithSegmentObserver is called for every segment as it streams.
func WithSegmentObserver(fn subtitles.SegmentObserver) Option {
	return func(s *Service) { s.observe = fn }
}

// WithoutOutputLock disables the advisory lock on the output path.
func WithoutOutputLock() Option {
	return func(s *Service) { s.lockOutput = false }
}

// NewService returns a Service that builds engines from cfg.
func NewService(cfg transcribe.Config, opts ...Option) *Service {
	s := &Service{
		engine:     cfg,
		factory:    transcribe.NewEngine,
		lockOutput: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.NewComponentLogger(s.logger, "generate")
	return s
}

func (s *Service) normalize(req Request) Request {
	req.Input = strings.TrimSpace(req.Input)
	req.Output = strings.TrimSpace(req.Output)
	req.MetaOutput = strings.TrimSpace(req.MetaOutput)
	req.Language = language.Normalize(req.Language)
	if s.backend() == transcribe.BackendOpenAI {
		req.Model = s.engine.RemoteModel()
	} else if req.Model = strings.TrimSpace(req.Model); req.Model == "" {
		req.Model = s.engine.Model
	}
	if req.Model == "" {
		req.Model = transcribe.DefaultModel
	}
	if req.Device = strings.ToLower(strings.TrimSpace(req.Device)); req.Device == "" {
		req.Device = s.engine.Device
	}
	if req.Device == "" {
		req.Device = transcribe.DefaultDevice
	}
	if req.ComputeType = strings.ToLower(strings.TrimSpace(req.ComputeType)); req.ComputeType == "" {
		req.ComputeType = s.engine.ComputeType
	}
	if req.ComputeType == "" {
		req.ComputeType = transcribe.DefaultComputeType
	}
	req.BeamSize = max(1, req.BeamSize)
	return req
}

// Run performs one generation. Files written before a failure are left in
// place.
func (s *Service) Run(ctx context.Context, req Request) (Result, error) {
	req = s.normalize(req)
	logger := logging.WithContext(ctx, s.logger)
	started := time.Now()

	if req.Input == "" || !fileutil.IsRegularFile(req.Input) {
		return Result{}, usageErrorf("Input file does not exist: %s", req.Input)
	}
	if req.Output == "" {
		return Result{}, usageErrorf("Output path is required")
	}
	inputPath, err := filepath.Abs(req.Input)
	if err != nil {
		return Result{}, runtimeError(fmt.Errorf("resolve input path: %w", err))
	}
	outputPath, err := filepath.Abs(req.Output)
	if err != nil {
		return Result{}, runtimeError(fmt.Errorf("resolve output path: %w", err))
	}

	if s.lockOutput {
		if err := fileutil.EnsureParentDir(outputPath); err != nil {
			return Result{}, runtimeError(err)
		}
		lock, err := acquireOutputLock(outputPath)
		if err != nil {
			if KindOf(err) != 0 {
				return Result{}, err
			}
			return Result{}, runtimeError(err)
		}
		defer func() {
			if err := lock.release(); err != nil {
				logging.WarnWithContext(logger, "output lock not released", "output_lock",
					logging.String("path", lock.path),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "delete the .lock file next to the output"),
					logging.String(logging.FieldImpact, "later runs for this output may report it as busy"),
				)
			}
		}()
	}

	opts := transcribe.Options{
		Language:                req.Language,
		BeamSize:                req.BeamSize,
		VADFilter:               !req.NoVADFilter,
		ConditionOnPreviousText: false,
	}.Normalized()
	params := cache.Params{
		Backend:     s.backend(),
		Endpoint:    s.endpoint(),
		Model:       req.Model,
		Device:      req.Device,
		ComputeType: req.ComputeType,
		Language:    opts.Language,
		BeamSize:    opts.BeamSize,
		VADFilter:   opts.VADFilter,
	}

	logger.Info("generating subtitles",
		logging.String("input", inputPath),
		logging.String("output", outputPath),
		logging.String("backend", params.Backend),
		logging.String("model", req.Model),
		logging.String("device", req.Device),
		logging.String("compute_type", req.ComputeType),
		logging.Int("beam_size", opts.BeamSize),
		logging.Bool("vad_filter", opts.VADFilter),
	)

	var (
		cacheKey  string
		inputSize int64
		hit       *cache.Entry
	)
	if s.cache != nil {
		cacheKey, inputSize, hit = s.lookupCache(ctx, logger, inputPath, params)
	}

	var tr *transcribe.Transcription
	if hit != nil {
		logger.Info("using cached transcript",
			logging.String("cache_id", hit.ID),
			logging.String("cached_at", humanize.Time(hit.CreatedAt)),
		)
		tr = hit.Transcription()
	} else {
		tr, err = s.transcribe(ctx, logger, inputPath, req, opts)
		if err != nil {
			return Result{}, err
		}
	}
	defer tr.Close()

	if s.onInfo != nil {
		s.onInfo(tr.Info)
	}

	var recorded []transcribe.Segment
	observe := func(seg transcribe.Segment) {
		if s.cache != nil && hit == nil {
			recorded = append(recorded, seg)
		}
		if s.observe != nil {
			s.observe(seg)
		}
	}
	cues, err := subtitles.BuildCues(tr.Segments, observe)
	if err != nil {
		return Result{}, engineError(err)
	}
	if err := tr.Close(); err != nil {
		return Result{}, engineError(err)
	}

	if err := subtitles.WriteWebVTT(outputPath, cues); err != nil {
		return Result{}, runtimeError(err)
	}

	rec := metadata.Record{
		Language:            tr.Info.Language,
		LanguageProbability: tr.Info.LanguageProbability,
		DurationSeconds:     tr.Info.Duration,
		CueCount:            len(cues),
		Input:               inputPath,
		Output:              outputPath,
		Model:               req.Model,
		Device:              req.Device,
		ComputeType:         req.ComputeType,
	}
	if err := metadata.Write(req.MetaOutput, rec); err != nil {
		return Result{}, runtimeError(err)
	}

	if s.cache != nil && hit == nil && cacheKey != "" {
		s.storeCache(ctx, logger, &cache.Entry{
			Key:       cacheKey,
			Input:     inputPath,
			InputSize: inputSize,
			Params:    params,
			Info:      tr.Info,
			Segments:  recorded,
		})
	}

	logger.Info("subtitles written",
		logging.String("output", outputPath),
		logging.Int("cue_count", len(cues)),
		logging.Bool("cache_hit", hit != nil),
		logging.Duration("elapsed", time.Since(started)),
	)
	return Result{Metadata: rec, Cues: cues, CacheHit: hit != nil}, nil
}

func (s *Service) backend() string {
	backend := strings.ToLower(strings.TrimSpace(s.engine.Backend))
	if backend == "" {
		return transcribe.BackendFasterWhisper
	}
	return backend
}

// endpoint is the API base URL for the openai backend and empty otherwise.
func (s *Service) endpoint() string {
	if s.backend() != transcribe.BackendOpenAI {
		return ""
	}
	return strings.TrimRight(strings.TrimSpace(s.engine.OpenAIBaseURL), "/")
}

func (s *Service) transcribe(ctx context.Context, logger *slog.Logger, inputPath string, req Request, opts transcribe.Options) (*transcribe.Transcription, error) {
	cfg := s.engine
	cfg.Backend = s.backend()
	if cfg.Backend == transcribe.BackendOpenAI {
		cfg.OpenAIModel = req.Model
	} else {
		cfg.Model = req.Model
	}
	cfg.Device = req.Device
	cfg.ComputeType = req.ComputeType
	if cfg.Logger == nil {
		cfg.Logger = logger
	}

	engine, err := s.factory(cfg)
	if err != nil {
		return nil, dependencyError(err)
	}
	tr, err := engine.Transcribe(ctx, inputPath, opts)
	if err != nil {
		_ = engine.Close()
		return nil, engineError(err)
	}
	inner := tr
	return transcribe.NewTranscription(tr.Info, tr.Segments, func() error {
		err := inner.Close()
		if closeErr := engine.Close(); err == nil {
			err = closeErr
		}
		return err
	}), nil
}

func (s *Service) lookupCache(ctx context.Context, logger *slog.Logger, inputPath string, params cache.Params) (string, int64, *cache.Entry) {
	hash, size, err := fileutil.HashFile(inputPath)
	if err != nil {
		logging.WarnWithContext(logger, "input hash failed; cache bypassed", "cache_hash",
			logging.String("input", inputPath),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the input file is readable"),
			logging.String(logging.FieldImpact, "transcript will not be cached"),
		)
		return "", 0, nil
	}
	key := cache.Key(hash, params)
	logger.Debug("cache lookup",
		logging.String("cache_key", key),
		logging.String("input_size", humanize.Bytes(uint64(size))),
	)
	entry, err := s.cache.Lookup(ctx, key)
	if err != nil {
		logging.WarnWithContext(logger, "cache lookup failed", "cache_lookup",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "run 'vttgen cache purge' if the database is corrupt"),
			logging.String(logging.FieldImpact, "engine runs without cache"),
		)
		return key, size, nil
	}
	return key, size, entry
}

func (s *Service) storeCache(ctx context.Context, logger *slog.Logger, entry *cache.Entry) {
	if err := s.cache.Store(ctx, entry); err != nil {
		logging.WarnWithContext(logger, "cache store failed", "cache_store",
			logging.Error(err),
			logging.String(logging.FieldImpact, "next run will transcribe again"),
		)
		return
	}
	logger.Debug("transcript cached", logging.String("cache_id", entry.ID), logging.Int("segments", len(entry.Segments)))
}
