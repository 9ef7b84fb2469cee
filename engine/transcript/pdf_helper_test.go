package transcript

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/WessleyAI/gradepoint/internal/pdftest"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func writePDF(t *testing.T, d pdftest.Doc) string {
	t.Helper()
	return d.Write(t, "transcript.pdf")
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
