// Package gpa reduces validated course records to a cumulative grade-point
// average.
package gpa

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/WessleyAI/gradepoint/engine/domain"
)

// Precision is the number of decimal places a GPA is rounded to.
const Precision = 2

// Summary is the breakdown behind a GPA figure.
type Summary struct {
	GPA            float64 `json:"gpa"`
	GPAUnits       float64 `json:"gpa_units"`
	QualityPoints  float64 `json:"quality_points"`
	CoursesCounted int     `json:"courses_counted"`
}

// Calculate returns the rounded GPA of courses.
func Calculate(courses []domain.Course) (float64, error) {
	s, err := Summarize(courses)
	if err != nil {
		return 0, err
	}
	return s.GPA, nil
}

// Summarize weighs every letter-graded course with positive units. Courses
// carrying a non-GPA grade or zero units are skipped. An invalid record
// fails the whole call.
func Summarize(courses []domain.Course) (Summary, error) {
	var s Summary
	if len(courses) == 0 {
		return s, nil
	}

	for i, c := range courses {
		if err := domain.ValidateCourse(c); err != nil {
			return Summary{}, fmt.Errorf("gpa: course %d: %w", i, err)
		}
		points, ok := domain.GradePoints[c.Grade]
		if !ok || c.Units <= 0 {
			continue
		}
		s.QualityPoints += points * c.Units
		s.GPAUnits += c.Units
		s.CoursesCounted++
	}

	if s.GPAUnits == 0 {
		return s, nil
	}
	s.GPA = Round(s.QualityPoints/s.GPAUnits, Precision)

	slog.Debug("gpa calculated",
		"courses", s.CoursesCounted,
		"units", s.GPAUnits,
		"quality_points", s.QualityPoints,
		"gpa", s.GPA,
	)
	return s, nil
}

// Round rounds v half away from zero to the given number of decimals.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
