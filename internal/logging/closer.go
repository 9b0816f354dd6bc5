package logging

import (
	"errors"
	"log/slog"
	"os"
	"sync"
)

// fileSet owns the log files opened by New.
type fileSet struct {
	once  sync.Once
	files []*os.File
	err   error
}

func (f *fileSet) add(file *os.File) {
	f.files = append(f.files, file)
}

func (f *fileSet) Close() error {
	f.once.Do(func() {
		var errs []error
		for _, file := range f.files {
			if err := file.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		f.err = errors.Join(errs...)
	})
	return f.err
}

// closingHandler carries the files behind a handler through With and WithGroup.
type closingHandler struct {
	slog.Handler
	files *fileSet
}

func (h *closingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &closingHandler{Handler: h.Handler.WithAttrs(attrs), files: h.files}
}

func (h *closingHandler) WithGroup(name string) slog.Handler {
	return &closingHandler{Handler: h.Handler.WithGroup(name), files: h.files}
}

// Close releases the log files opened for logger. Loggers that own no files,
// including nil and NewNop loggers, close as a no-op. Closing twice is safe.
func Close(logger *slog.Logger) error {
	if logger == nil {
		return nil
	}
	if h, ok := logger.Handler().(*closingHandler); ok {
		return h.files.Close()
	}
	return nil
}
