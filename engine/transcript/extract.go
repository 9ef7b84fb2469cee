package transcript

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// transcriptKeywords are expected somewhere in a genuine transcript. Their
// absence is only a warning.
var transcriptKeywords = []string{"TRANSCRIPT", "ACADEMIC"}

// Extractor pulls the plain text out of a PDF document, page by page.
type Extractor struct {
	log *slog.Logger
}

// NewExtractor returns an Extractor logging to log (nil → slog.Default()).
func NewExtractor(log *slog.Logger) *Extractor {
	if log == nil {
		log = slog.Default()
	}
	return &Extractor{log: log}
}

// Extract returns the concatenated text of every readable page in the
// document at path. A page that fails to decode is logged and skipped.
func (e *Extractor) Extract(ctx context.Context, path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			e.log.Error("pdf not found", "path", path)
			return "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return "", fmt.Errorf("stat %s: %w", path, err)
	}

	f, r, err := openPDF(path)
	if err != nil {
		e.log.Error("pdf open failed", "path", path, "error", err)
		return "", fmt.Errorf("%w: %v", ErrCorruptOrEncrypted, err)
	}
	defer f.Close()

	if !r.Trailer().Key("Encrypt").IsNull() {
		e.log.Error("pdf is encrypted", "path", path)
		return "", fmt.Errorf("%w: document is encrypted", ErrCorruptOrEncrypted)
	}

	n := r.NumPage()
	if n == 0 {
		e.log.Error("pdf has no pages", "path", path)
		return "", fmt.Errorf("%w: document contains no pages", ErrCorruptOrEncrypted)
	}

	var b strings.Builder
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := pageText(r, i)
		if err != nil {
			e.log.Warn("page extraction failed", "page", i, "error", err)
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(text)
		e.log.Debug("page extracted", "page", i, "chars", len(text))
	}

	text := b.String()
	if strings.TrimSpace(text) == "" {
		e.log.Error("no text extracted", "path", path, "pages", n)
		return "", ErrNoText
	}

	if !looksLikeTranscript(text) {
		e.log.Warn("document may not be a transcript, expected keywords missing", "path", path)
	}
	return text, nil
}

// openPDF guards pdf.Open, which panics on some malformed cross-reference
// tables.
func openPDF(path string) (f *os.File, r *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if f != nil {
				f.Close()
			}
			f, r, err = nil, nil, fmt.Errorf("malformed pdf: %v", rec)
		}
	}()
	return pdf.Open(path)
}

func pageText(r *pdf.Reader, i int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("malformed page: %v", rec)
		}
	}()
	p := r.Page(i)
	if p.V.IsNull() {
		return "", errors.New("page object missing")
	}
	return p.GetPlainText(nil)
}

func looksLikeTranscript(text string) bool {
	upper := strings.ToUpper(text)
	for _, kw := range transcriptKeywords {
		if strings.Contains(upper, kw) {
			return true
		}
	}
	return false
}
