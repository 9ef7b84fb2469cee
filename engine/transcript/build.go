package transcript

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/WessleyAI/gradepoint/engine/domain"
	"github.com/WessleyAI/gradepoint/pkg/fn"
)

// Build turns one raw match into a validated course. A missing grade means
// the course is still in progress. Any failure comes back as an Err result
// and never panics. A nil Sanitizer uses the default artifact table.
func Build(raw RawCourse, source domain.Source, s *Sanitizer) fn.Result[domain.Course] {
	units, err := strconv.ParseFloat(raw.Units, 64)
	if err != nil {
		return fn.Err[domain.Course](domain.NewValidationError("units", raw.Units, domain.ErrInvalidUnits))
	}

	if s == nil {
		s = defaultSanitizer
	}
	grade := raw.Grade
	if grade == "" {
		grade = domain.GradeInProgress
	}

	return domain.NewCourse(raw.Subject, raw.Number, s.Clean(raw.Title), units, grade, source)
}

// BuildAll builds every candidate and keeps the ones that validate.
// Dropped candidates are logged at debug level.
func BuildAll(raws []RawCourse, source domain.Source, s *Sanitizer, log *slog.Logger) []domain.Course {
	results := make([]fn.Result[domain.Course], len(raws))
	for i, raw := range raws {
		results[i] = Build(raw, source, s)
	}

	courses, errs := fn.Partition(results)
	for _, err := range errs {
		log.Debug("candidate dropped", "error", err)
	}
	return courses
}

// Batch is the outcome of one parse run, as seen by the quality gate.
type Batch struct {
	Records    []domain.Course
	Candidates int
}

func (b Batch) String() string {
	return fmt.Sprintf("%d records from %d candidates", len(b.Records), b.Candidates)
}
