package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"vttgen/internal/deps"
)

// CheckPythonModule verifies that python can import module.
func CheckPythonModule(ctx context.Context, python, module string) Result {
	name := "Python module " + module
	python = strings.TrimSpace(python)
	if python == "" {
		return Result{Name: name, Detail: "python interpreter not configured"}
	}
	if _, err := exec.LookPath(python); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("interpreter %q not found", python)}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	script := fmt.Sprintf("import %s as m; print(getattr(m, '__version__', ''))", module)
	out, err := exec.CommandContext(checkCtx, python, "-c", script).CombinedOutput()
	if err != nil {
		if errors.Is(checkCtx.Err(), context.DeadlineExceeded) {
			return Result{Name: name, Detail: "import timed out"}
		}
		return Result{Name: name, Detail: fmt.Sprintf("import failed (%s)", lastLine(string(out), err))}
	}
	version := strings.TrimSpace(string(out))
	if version == "" {
		return Result{Name: name, Passed: true, Detail: "importable"}
	}
	return Result{Name: name, Passed: true, Detail: "version " + version}
}

// CheckOpenAI verifies that an OpenAI-compatible endpoint answers a model
// listing with the configured key.
func CheckOpenAI(ctx context.Context, baseURL, apiKey string) Result {
	const name = "OpenAI endpoint"

	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return Result{Name: name, Detail: "missing base url"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	clientCfg := openai.DefaultConfig(strings.TrimSpace(apiKey))
	clientCfg.BaseURL = base
	clientCfg.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	client := openai.NewClientWithConfig(clientCfg)

	models, err := client.ListModels(checkCtx)
	if err != nil {
		return Result{Name: name, Detail: summarizeOpenAIError(err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d models)", base, len(models.Models))}
}

// CheckDirectoryAccess verifies that files can be created under path. A
// directory that does not exist yet passes when its nearest existing parent
// is writable, since it is created on first use.
func CheckDirectoryAccess(name, path string) Result {
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	target := path
	for {
		if _, err := os.Stat(target); err == nil {
			break
		}
		parent := filepath.Dir(target)
		if parent == target {
			break
		}
		target = parent
	}
	if err := deps.CheckWritableDir(target); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	if target != path {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (created on first use)", path)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

func summarizeOpenAIError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (endpoint unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (endpoint unreachable)"
	}
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}
	switch status {
	case 0:
		return err.Error()
	case http.StatusUnauthorized, http.StatusForbidden:
		return "auth failed (invalid api key)"
	default:
		return fmt.Sprintf("health check failed (%d)", status)
	}
}

func lastLine(output string, err error) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return err.Error()
}
