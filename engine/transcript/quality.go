package transcript

import "fmt"

// DefaultMinQualityRatio is the share of candidates that must survive as
// complete records in strict mode.
const DefaultMinQualityRatio = 0.8

// Gate decides whether a parse run is trustworthy enough to return.
type Gate struct {
	// Strict additionally requires MinRatio of the matched candidates to
	// become complete records. When false any non-empty batch passes.
	Strict   bool
	MinRatio float64
}

// DefaultGate is the strict gate.
func DefaultGate() Gate {
	return Gate{Strict: true, MinRatio: DefaultMinQualityRatio}
}

// Check returns nil when b may be handed to the caller.
func (g Gate) Check(b Batch) error {
	if len(b.Records) == 0 {
		return ErrNoCoursesFound
	}
	if !g.Strict {
		return nil
	}

	complete := 0
	for _, c := range b.Records {
		if c.Subject != "" && c.Number != "" && c.Title != "" {
			complete++
		}
	}
	total := b.Candidates
	if total < len(b.Records) {
		total = len(b.Records)
	}

	ratio := float64(complete) / float64(total)
	if ratio < g.MinRatio {
		return fmt.Errorf("%w: %d/%d courses are valid (%.1f%%)", ErrLowQualityParse, complete, total, ratio*100)
	}
	return nil
}
