package transcribe

import (
	"log/slog"
	"net/http"
	"strings"
)

// Backend names accepted by NewEngine.
const (
	BackendFasterWhisper = "faster-whisper"
	BackendOpenAI        = "openai"
)

// Engine defaults.
const (
	DefaultModel       = "small"
	DefaultDevice      = "cpu"
	DefaultComputeType = "int8"
	DefaultBeamSize    = 5
	DefaultPython      = "python3"
	DefaultOpenAIModel = "whisper-1"
	CUDADevice         = "cuda"
)

// Config captures the settings an engine is constructed with.
type Config struct {
	// Backend selects the engine implementation.
	Backend string
	// Model is the faster-whisper model name or local model directory.
	Model string
	// Device is "cpu" or "cuda".
	Device string
	// ComputeType is the CTranslate2 precision (int8, float16, ...).
	ComputeType string

	// Python is the interpreter used for the faster-whisper helper.
	Python string
	// Script overrides the embedded helper script.
	Script string

	// OpenAIBaseURL points at an OpenAI-compatible API root ending in /v1.
	OpenAIBaseURL string
	OpenAIAPIKey  string
	// OpenAIModel is the remote model name; DefaultOpenAIModel is used when
	// empty. Model is not sent to the remote API.
	OpenAIModel string
	HTTPClient  *http.Client

	Logger *slog.Logger
}

// RemoteModel returns the model name sent to the OpenAI-compatible API.
func (c Config) RemoteModel() string {
	if model := strings.TrimSpace(c.OpenAIModel); model != "" {
		return model
	}
	return DefaultOpenAIModel
}

func (c Config) model() string {
	if c.Model != "" {
		return c.Model
	}
	return DefaultModel
}

func (c Config) device() string {
	if c.Device != "" {
		return c.Device
	}
	return DefaultDevice
}

func (c Config) computeType() string {
	if c.ComputeType != "" {
		return c.ComputeType
	}
	return DefaultComputeType
}
