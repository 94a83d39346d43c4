package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vttgen/internal/transcribe"
)

type stubEngine struct {
	info     transcribe.Info
	segments []transcribe.Segment
	err      error
	calls    int
	gotOpts  transcribe.Options
	gotCfg   transcribe.Config
}

func (e *stubEngine) Transcribe(_ context.Context, _ string, opts transcribe.Options) (*transcribe.Transcription, error) {
	e.calls++
	e.gotOpts = opts
	if e.err != nil {
		return nil, e.err
	}
	return transcribe.FromSegments(e.info, e.segments), nil
}

func (e *stubEngine) Close() error { return nil }

func newStubEngine() *stubEngine {
	return &stubEngine{
		info: transcribe.Info{
			Language:            transcribe.String("en"),
			LanguageProbability: transcribe.Float(0.91),
			Duration:            transcribe.Float(4),
		},
		segments: []transcribe.Segment{
			{Start: transcribe.Float(0.5), End: transcribe.Float(1.5), Text: " Good morning "},
			{Start: transcribe.Float(2), End: transcribe.Float(3.25), Text: "and welcome"},
		},
	}
}

type cliTestEnv struct {
	baseDir    string
	configPath string
	cachePath  string
	engine     *stubEngine
}

// setupCLITestEnv isolates HOME and the engine environment and writes a config
// file whose cache lives under the test directory.
func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	home := filepath.Join(base, "home")
	if err := os.MkdirAll(home, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", home)
	t.Setenv("XDG_CACHE_HOME", "")
	t.Setenv("VTTGEN_PYTHON", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENAI_BASE_URL", "")

	cachePath := filepath.Join(base, "cache", "transcripts.db")
	configPath := filepath.Join(base, "vttgen-test.toml")
	writeTestConfig(t, configPath, "[cache]\npath = \""+cachePath+"\"\n")

	return &cliTestEnv{
		baseDir:    base,
		configPath: configPath,
		cachePath:  cachePath,
		engine:     newStubEngine(),
	}
}

func writeTestConfig(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func (env *cliTestEnv) writeInput(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(env.baseDir, name)
	if err := os.WriteFile(path, []byte("media bytes for "+name), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	return path
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, string, error) {
	t.Helper()
	factory := func(cfg transcribe.Config) (transcribe.Engine, error) {
		env.engine.gotCfg = cfg
		return env.engine, nil
	}
	cmd := newRootCommandWithFactory(factory)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if env.configPath != "" {
		args = append([]string{"--config", env.configPath}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q\n---\n%s", needle, haystack)
	}
}
