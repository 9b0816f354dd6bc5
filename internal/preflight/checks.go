package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"nexus/internal/config"
	"nexus/internal/services/embedding"
)

const endpointCheckTimeout = 30 * time.Second

// CheckAPIKey verifies that an embeddings API key is configured.
func CheckAPIKey(settings config.EmbeddingSettings) Result {
	const name = "Embedding API key"
	if settings.APIKey == "" {
		return Result{Name: name, Detail: "missing (set embedding.api_key or OPENAI_API_KEY)"}
	}
	return Result{Name: name, Passed: true, Detail: "configured"}
}

// CheckEmbeddingEndpoint verifies that the embeddings API is reachable and the
// key and model are accepted. It uses a single attempt with no retries.
func CheckEmbeddingEndpoint(ctx context.Context, settings config.EmbeddingSettings) Result {
	const name = "Embedding endpoint"
	if settings.APIKey == "" {
		return Result{Name: name, Detail: "skipped (API key missing)"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, endpointCheckTimeout)
	defer cancel()

	client := embedding.NewClient(embedding.Config{
		APIKey:         settings.APIKey,
		BaseURL:        settings.BaseURL,
		Model:          settings.Model,
		TimeoutSeconds: settings.TimeoutSeconds,
	})
	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeEndpointError(err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s reachable (model %s)", settings.BaseURL, settings.Model)}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckInputFile verifies that the job input, when it names a file, is a readable regular file.
func CheckInputFile(job config.Job) Result {
	const name = "Job input"
	if job.ReadsStdin() {
		return Result{Name: name, Passed: true, Detail: "standard input"}
	}
	info, err := os.Stat(job.Input)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", job.Input, err)}
	}
	if info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is a directory)", job.Input)}
	}
	if err := unix.Access(job.Input, unix.R_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not readable: %v)", job.Input, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d bytes)", job.Input, info.Size())}
}

// summarizeEndpointError produces a human-readable summary for health check failures.
func summarizeEndpointError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (embedding API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (embedding API unreachable)"
	}
	switch embedding.StatusCode(err) {
	case http.StatusUnauthorized, http.StatusForbidden:
		return "auth failed (invalid api key)"
	case http.StatusNotFound:
		return "endpoint or model not found"
	}
	return err.Error()
}
