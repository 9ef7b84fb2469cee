package transcript

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/WessleyAI/gradepoint/internal/pdftest"
)

func TestExtract_ReadsAllPages(t *testing.T) {
	path := writePDF(t, pdftest.Doc{Pages: pdftest.SamplePages})
	text, err := NewExtractor(quietLogger()).Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"UNOFFICIAL ACADEMIC TRANSCRIPT", "INSTITUTION CREDIT -Top-", "ENVS 100L UG Environmental Lab 1.000"} {
		if !strings.Contains(text, want) {
			t.Errorf("text missing %q", want)
		}
	}
	if !strings.Contains(text, "Geometry\nIII B+") {
		t.Error("line breaks should be preserved")
	}
}

func TestExtract_NotFound(t *testing.T) {
	_, err := NewExtractor(quietLogger()).Extract(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestExtract_CorruptOrEncrypted(t *testing.T) {
	cases := map[string]string{
		"garbage":    writeFile(t, "garbage.pdf", []byte("this is not a pdf at all, just some bytes\n")),
		"truncated":  writeFile(t, "truncated.pdf", pdftest.Doc{Pages: pdftest.SamplePages}.Bytes()[:200]),
		"encrypted":  writePDF(t, pdftest.Doc{Pages: pdftest.SamplePages, Encrypt: true}),
		"zero pages": writePDF(t, pdftest.Doc{}),
	}
	for name, path := range cases {
		_, err := NewExtractor(quietLogger()).Extract(context.Background(), path)
		if !errors.Is(err, ErrCorruptOrEncrypted) {
			t.Errorf("%s: expected ErrCorruptOrEncrypted, got %v", name, err)
		}
	}
}

func TestExtract_NoText(t *testing.T) {
	path := writePDF(t, pdftest.Doc{Pages: [][]string{{"   "}, {}}})
	_, err := NewExtractor(quietLogger()).Extract(context.Background(), path)
	if !errors.Is(err, ErrNoText) {
		t.Fatalf("expected ErrNoText, got %v", err)
	}
}

func TestExtract_SkipsBrokenPage(t *testing.T) {
	path := writePDF(t, pdftest.Doc{Pages: [][]string{nil, {"ACADEMIC TRANSCRIPT", "page two"}}})
	text, err := NewExtractor(quietLogger()).Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("broken page should be skipped, got %v", err)
	}
	if !strings.Contains(text, "page two") {
		t.Fatalf("expected text from the readable page, got %q", text)
	}
}

func TestExtract_OnlyBrokenPages(t *testing.T) {
	path := writePDF(t, pdftest.Doc{Pages: [][]string{nil}})
	_, err := NewExtractor(quietLogger()).Extract(context.Background(), path)
	if !errors.Is(err, ErrNoText) {
		t.Fatalf("expected ErrNoText, got %v", err)
	}
}

func TestExtract_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	path := writePDF(t, pdftest.Doc{Pages: pdftest.SamplePages})
	if _, err := NewExtractor(quietLogger()).Extract(ctx, path); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestLooksLikeTranscript(t *testing.T) {
	if !looksLikeTranscript("Unofficial academic record") {
		t.Error("ACADEMIC should match case-insensitively")
	}
	if looksLikeTranscript("grocery invoice") {
		t.Error("invoice should not look like a transcript")
	}
}
