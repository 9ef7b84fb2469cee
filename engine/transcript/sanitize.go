package transcript

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxParsedTitleLength caps a cleaned title. Longer titles are almost
// always several rows run together.
const MaxParsedTitleLength = 100

// Artifact is a boilerplate fragment that PDF extraction leaks into
// titles. Its pattern removes the fragment and everything after it.
type Artifact struct {
	Phrase  string
	pattern *regexp.Regexp
}

// NewArtifact compiles a case-insensitive artifact for phrase.
func NewArtifact(phrase string) Artifact {
	return Artifact{
		Phrase:  phrase,
		pattern: regexp.MustCompile(`(?is)` + regexp.QuoteMeta(phrase) + `.*$`),
	}
}

// DefaultArtifacts is the ordered artifact table for this transcript layout.
var DefaultArtifacts = []Artifact{
	NewArtifact("DO NOT PRINT"),
	NewArtifact("Term Totals"),
	NewArtifact("Attempt Hours"),
	NewArtifact("Passed Hours"),
	NewArtifact("Earned Hours"),
	NewArtifact("GPA Hours"),
	NewArtifact("Quality Points"),
	NewArtifact("Current Term:"),
	NewArtifact("Cumulative:"),
	NewArtifact("Unofficial Transcript"),
	NewArtifact("College:"),
	NewArtifact("Major:"),
	NewArtifact("Academic Standing:"),
	NewArtifact("Subject"),
}

var whitespaceRe = regexp.MustCompile(`\s+`)

var defaultSanitizer = NewSanitizer()

// Sanitizer cleans raw titles. It holds no mutable state and is safe for
// concurrent use.
type Sanitizer struct {
	artifacts []Artifact
	maxLen    int
}

// NewSanitizer returns a Sanitizer applying artifacts in order. With no
// artifacts it uses DefaultArtifacts.
func NewSanitizer(artifacts ...Artifact) *Sanitizer {
	if len(artifacts) == 0 {
		artifacts = DefaultArtifacts
	}
	return &Sanitizer{artifacts: artifacts, maxLen: MaxParsedTitleLength}
}

// Clean strips artifacts, collapses whitespace and truncates. An empty
// result means the title was nothing but boilerplate.
func (s *Sanitizer) Clean(title string) string {
	for _, a := range s.artifacts {
		title = a.pattern.ReplaceAllString(title, "")
	}
	title = strings.TrimSpace(whitespaceRe.ReplaceAllString(title, " "))

	if utf8.RuneCountInString(title) > s.maxLen {
		title = strings.TrimSpace(string([]rune(title)[:s.maxLen]))
	}
	return title
}
