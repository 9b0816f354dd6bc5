package nexus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"nexus/internal/config"
	"nexus/internal/logging"
	"nexus/internal/services"
)

const lockRetryDelay = 100 * time.Millisecond

// Result is the document written for each run.
type Result struct {
	RunID      string    `json:"run_id"`
	Model      string    `json:"model"`
	Dimensions int       `json:"dimensions"`
	Chunks     int       `json:"chunks"`
	Tokens     int       `json:"tokens"`
	Source     string    `json:"source"`
	Embedding  []float64 `json:"embedding"`
}

func sourceName(job config.Job) string {
	if job.ReadsStdin() {
		return "stdin"
	}
	return filepath.Base(job.Input)
}

func (a *App) readInput(ctx context.Context) (string, error) {
	job := a.cfg.Settings.Job
	if job.ReadsStdin() {
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			return "", services.Wrap(services.ErrValidation, stageRead, "stdin", "read document", err)
		}
		return string(data), nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(job.Input)
	if err != nil {
		return "", services.Wrap(services.ErrConfiguration, stageRead, "job.input", "read document", err)
	}
	return string(data), nil
}

func (a *App) writeResult(ctx context.Context, result Result) error {
	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return services.Wrap(services.ErrTransient, stageWrite, "encode", "", err)
	}
	encoded = append(encoded, '\n')

	job := a.cfg.Settings.Job
	if job.WritesStdout() {
		if _, err := a.stdout.Write(encoded); err != nil {
			return services.Wrap(services.ErrTransient, stageWrite, "stdout", "", err)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(job.Output), 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, stageWrite, "job.output", "create output directory", err)
	}
	lock := flock.New(job.Output + ".lock")
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return services.Wrap(services.ErrTransient, stageWrite, "lock", job.Output, err)
	}
	if !locked {
		return services.Wrap(services.ErrTransient, stageWrite, "lock", fmt.Sprintf("%s is locked by another run", job.Output), nil)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	if err := writeFileAtomic(job.Output, encoded, 0o644); err != nil {
		return services.Wrap(services.ErrTransient, stageWrite, "job.output", job.Output, err)
	}
	logging.WithContext(ctx, a.logger).Debug("result written", logging.String("path", job.Output))
	return nil
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".nexus-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
