// Package transcript turns a transcript PDF into validated course records.
//
// The pipeline is Extract → Segment → Match → Build → Gate. Per-page and
// per-line failures are absorbed; whole-document failures surface as one
// of the sentinel errors in errors.go.
package transcript

import (
	"context"
	"log/slog"
	"time"

	"github.com/WessleyAI/gradepoint/engine/domain"
	"github.com/WessleyAI/gradepoint/pkg/fn"
)

// MinSectionTextLength is the combined section length below which a
// transcript is suspicious. Falling short only logs a warning.
const MinSectionTextLength = 100

// Config holds the parser's collaborators. Zero values fall back to
// defaults.
type Config struct {
	Logger    *slog.Logger
	Gate      *Gate
	Sanitizer *Sanitizer
}

// Parser runs the transcript pipeline. It keeps no per-call state and is
// safe for concurrent use.
type Parser struct {
	log       *slog.Logger
	extractor *Extractor
	sanitizer *Sanitizer
	gate      Gate

	fromPath fn.Stage[string, []domain.Course]
	fromText fn.Stage[string, []domain.Course]
}

// New builds a Parser from cfg.
func New(cfg Config) *Parser {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	p := &Parser{
		log:       log,
		extractor: NewExtractor(log),
		sanitizer: cfg.Sanitizer,
		gate:      DefaultGate(),
	}
	if p.sanitizer == nil {
		p.sanitizer = defaultSanitizer
	}
	if cfg.Gate != nil {
		p.gate = *cfg.Gate
	}

	extract := fn.TracedStage("transcript.extract", fn.Lift(p.extractor.Extract))
	segment := fn.TracedStage("transcript.segment", fn.MapStage(p.segment))
	build := fn.TracedStage("transcript.build", fn.MapStage(p.build))
	gate := fn.TracedStage("transcript.gate", fn.Lift(p.check))

	p.fromText = fn.Then(segment, fn.Then(build, gate))
	p.fromPath = fn.Then(extract, p.fromText)
	return p
}

// Parse extracts and parses the transcript at path. The file is only read.
func (p *Parser) Parse(ctx context.Context, path string) ([]domain.Course, error) {
	start := time.Now()
	courses, err := p.fromPath(ctx, path).Unwrap()
	if err != nil {
		return nil, err
	}
	p.log.Info("transcript parsed",
		"courses", len(courses),
		"duration", time.Since(start),
	)
	return courses, nil
}

// ParseText runs the pipeline on already extracted text.
func (p *Parser) ParseText(ctx context.Context, text string) ([]domain.Course, error) {
	return p.fromText(ctx, text).Unwrap()
}

func (p *Parser) segment(text string) Sections {
	sections := Segment(text)
	if sections.TotalLen() < MinSectionTextLength {
		p.log.Warn("transcript sections seem unusually short", "chars", sections.TotalLen())
	}
	return sections
}

func (p *Parser) build(sections Sections) Batch {
	var b Batch
	for _, key := range SectionOrder {
		text := sections[key]
		if text == "" {
			continue
		}
		raws := MatchSection(text)
		courses := BuildAll(raws, domain.SourceParsed, p.sanitizer, p.log)
		p.log.Debug("section parsed",
			"section", string(key),
			"candidates", len(raws),
			"courses", len(courses),
		)
		b.Candidates += len(raws)
		b.Records = append(b.Records, courses...)
	}
	return b
}

func (p *Parser) check(_ context.Context, b Batch) ([]domain.Course, error) {
	if err := p.gate.Check(b); err != nil {
		p.log.Warn("transcript rejected", "batch", b.String(), "error", err)
		return nil, err
	}
	return b.Records, nil
}
