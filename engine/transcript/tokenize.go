package transcript

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/WessleyAI/gradepoint/engine/domain"
)

// token is one whitespace-delimited word of a section, with its byte
// offsets and line position.
type token struct {
	text       string
	start, end int
	lineStart  bool
	lineEnd    bool
}

func tokenize(text string) []token {
	var toks []token
	start := -1
	sawNewline := true
	for i, r := range text {
		if unicode.IsSpace(r) {
			if start >= 0 {
				toks = append(toks, token{text: text[start:i], start: start, end: i, lineStart: sawNewline})
				sawNewline = false
				start = -1
			}
			if r == '\n' || r == '\r' {
				sawNewline = true
				if n := len(toks); n > 0 {
					toks[n-1].lineEnd = true
				}
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		toks = append(toks, token{text: text[start:], start: start, end: len(text), lineStart: sawNewline})
	}
	if n := len(toks); n > 0 {
		toks[n-1].lineEnd = true
	}
	return toks
}

var (
	subjectTokenRe = regexp.MustCompile(`^[A-Z]{2,6}$`)
	numberTokenRe  = regexp.MustCompile(`^(\d+[A-Z]*|\d*XX)$`)
	numericTokenRe = regexp.MustCompile(`^[\d.]*\d[\d.]*$`)
)

const undergradMarker = "UG"

func isSubject(s string) bool { return subjectTokenRe.MatchString(s) }
func isNumber(s string) bool  { return numberTokenRe.MatchString(s) }
func isNumeric(s string) bool { return numericTokenRe.MatchString(s) }

// isDecimal is the stricter shape required of units when no grade precedes
// them, so a trailing "II" or "2" in a title is not read as credit hours.
func isDecimal(s string) bool { return isNumeric(s) && strings.Contains(s, ".") }

func isGrade(s string) bool { return domain.IsValidGrade(s) }
