package domain

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/WessleyAI/gradepoint/pkg/fn"
)

var (
	subjectRegex = regexp.MustCompile(`^[A-Z]{` + strconv.Itoa(MinSubjectLength) + `,` + strconv.Itoa(MaxSubjectLength) + `}$`)
	numberRegex  = regexp.MustCompile(`^(\d+[A-Z]?|\d*XX)$`)
)

// NewCourse validates its fields and returns the built course, or a
// *ValidationError describing the first field that failed.
func NewCourse(subject, number, title string, units float64, grade string, source Source) fn.Result[Course] {
	c := Course{
		Subject: subject,
		Number:  number,
		Title:   title,
		Units:   units,
		Grade:   grade,
		Source:  source,
	}
	if err := ValidateCourse(c); err != nil {
		return fn.Err[Course](err)
	}
	return fn.Ok(c)
}

// WithTitle returns a re-validated copy of c carrying the new title.
func (c Course) WithTitle(title string) fn.Result[Course] {
	return NewCourse(c.Subject, c.Number, title, c.Units, c.Grade, c.Source)
}

// ValidateCourse checks every field of c.
func ValidateCourse(c Course) error {
	if !subjectRegex.MatchString(c.Subject) {
		return NewValidationError("subject", c.Subject, ErrInvalidSubject)
	}
	if !numberRegex.MatchString(c.Number) {
		return NewValidationError("number", c.Number, ErrInvalidNumber)
	}

	if strings.TrimSpace(c.Title) == "" {
		return NewValidationError("title", c.Title, ErrInvalidTitle)
	}
	if utf8.RuneCountInString(c.Title) > MaxTitleLength {
		return NewValidationError("title", c.Title, ErrInvalidTitle)
	}

	if math.IsNaN(c.Units) || c.Units < MinUnits || c.Units > MaxUnits {
		return NewValidationError("units", strconv.FormatFloat(c.Units, 'f', -1, 64), ErrInvalidUnits)
	}

	if !IsValidGrade(c.Grade) {
		return NewValidationError("grade", c.Grade, ErrInvalidGrade)
	}

	if !ValidSources[c.Source] {
		return NewValidationError("source", string(c.Source), ErrInvalidSource)
	}
	return nil
}
