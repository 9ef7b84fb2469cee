// Package domain defines the course record, the grade tables, and the
// validation rules every record must pass. It acts as the validation gate
// between the transcript parser and anything that consumes its output.
package domain

// Source tags where a course record came from.
type Source string

const (
	SourceParsed Source = "parsed"
	SourceManual Source = "manual"
)

// ValidSources is the set of recognised provenance tags.
var ValidSources = map[Source]bool{
	SourceParsed: true,
	SourceManual: true,
}

// Course is a single transcript row. Values are immutable once built:
// use NewCourse to construct and WithTitle to derive a cleaned copy.
type Course struct {
	Subject string  `json:"subject"`
	Number  string  `json:"number"`
	Title   string  `json:"title"`
	Units   float64 `json:"units"`
	Grade   string  `json:"grade"`
	Source  Source  `json:"source"`
}

// Field limits.
const (
	MinSubjectLength = 2
	MaxSubjectLength = 6
	MinUnits         = 0.0
	MaxUnits         = 20.0
	MaxTitleLength   = 200
)

// Special grade markers.
const (
	GradeTransfer   = "TCR"
	GradeInProgress = "IP"
)

// GradePoints maps each standard letter grade to its grade-point value.
var GradePoints = map[string]float64{
	"A+": 4.0,
	"A":  4.0,
	"A-": 3.7,
	"B+": 3.3,
	"B":  3.0,
	"B-": 2.7,
	"C+": 2.3,
	"C":  2.0,
	"C-": 1.7,
	"D+": 1.3,
	"D":  1.0,
	"D-": 0.7,
	"F":  0.0,
}

// NonGPAGrades are valid grades that never enter GPA math.
var NonGPAGrades = map[string]bool{
	"P": true, "S": true, "U": true, "I": true, GradeInProgress: true,
	"W": true, "NR": true, "AU": true, GradeTransfer: true, "NG": true,
}

// IsGPAGrade reports whether g carries grade points.
func IsGPAGrade(g string) bool {
	_, ok := GradePoints[g]
	return ok
}

// IsValidGrade reports whether g is a letter grade or a non-GPA marker.
func IsValidGrade(g string) bool {
	return IsGPAGrade(g) || NonGPAGrades[g]
}
