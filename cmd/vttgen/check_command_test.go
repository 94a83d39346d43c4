package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
)

func newModelsServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/models" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[{"id":"whisper-1","object":"model"}]}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCheckOpenAIBackend(t *testing.T) {
	env := setupCLITestEnv(t)
	srv := newModelsServer(t)
	writeTestConfig(t, env.configPath, "[engine]\nbackend = \"openai\"\n\n[openai]\nbase_url = \""+srv.URL+"/v1\"\n")

	out, _, err := runCLI(t, env, "check")
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	requireContains(t, out, "Backend: openai")
	requireContains(t, out, "OpenAI endpoint")
	requireContains(t, out, "1 models")
}

func TestCheckJSONReportsMissingPython(t *testing.T) {
	env := setupCLITestEnv(t)
	missing := filepath.Join(env.baseDir, "no-such-python")
	writeTestConfig(t, env.configPath, "[engine]\npython = \""+missing+"\"\n")

	out, _, err := runCLI(t, env, "check", "--json")
	if err == nil {
		t.Fatal("expected check to fail without python")
	}
	var rows []checkRow
	if jsonErr := json.Unmarshal([]byte(out), &rows); jsonErr != nil {
		t.Fatalf("decode: %v\n%s", jsonErr, out)
	}
	if len(rows) == 0 || rows[0].Name != "Python" || rows[0].Status != "Missing" {
		t.Fatalf("unexpected rows %+v", rows)
	}
}
