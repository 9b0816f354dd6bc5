package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteText writes text to path, creating parent directories.
func WriteText(t testing.TB, path, text string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// Paragraphs builds a document of count paragraphs, each holding words
// numbered words, separated by blank lines.
func Paragraphs(count, words int) string {
	paras := make([]string, 0, count)
	for p := 0; p < count; p++ {
		fields := make([]string, 0, words)
		for w := 0; w < words; w++ {
			fields = append(fields, "word")
		}
		paras = append(paras, strings.Join(fields, " ")+".")
	}
	return strings.Join(paras, "\n\n")
}
