package domain

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func validCourse() Course {
	return Course{
		Subject: "CS",
		Number:  "110",
		Title:   "Intro to Computer Science I",
		Units:   4,
		Grade:   "A+",
		Source:  SourceParsed,
	}
}

func TestValidateCourse_Valid(t *testing.T) {
	cases := []Course{
		validCourse(),
		{Subject: "ENVS", Number: "100L", Title: "Lab", Units: 0, Grade: "NG", Source: SourceParsed},
		{Subject: "MATH", Number: "4XX", Title: "Elective", Units: 3, Grade: "TCR", Source: SourceParsed},
		{Subject: "PHIL", Number: "XX", Title: "Transfer", Units: 2.5, Grade: "P", Source: SourceManual},
		{Subject: "ABCDEF", Number: "101", Title: "Six letters", Units: 20, Grade: "IP", Source: SourceManual},
	}
	for _, c := range cases {
		if err := ValidateCourse(c); err != nil {
			t.Errorf("expected valid for %+v, got %v", c, err)
		}
	}
}

func TestValidateCourse_InvalidSubject(t *testing.T) {
	for _, s := range []string{"cs", "C", "ABCDEFG", "C1", ""} {
		c := validCourse()
		c.Subject = s
		err := ValidateCourse(c)
		if !errors.Is(err, ErrInvalidSubject) {
			t.Errorf("subject %q: expected ErrInvalidSubject, got %v", s, err)
		}
		if !errors.Is(err, ErrInvalidCourse) {
			t.Errorf("subject %q: expected ErrInvalidCourse, got %v", s, err)
		}
	}
}

func TestValidateCourse_InvalidNumber(t *testing.T) {
	for _, n := range []string{"10-1", "", "110LL", "A10", "1.5"} {
		c := validCourse()
		c.Number = n
		if err := ValidateCourse(c); !errors.Is(err, ErrInvalidNumber) {
			t.Errorf("number %q: expected ErrInvalidNumber, got %v", n, err)
		}
	}
}

func TestValidateCourse_InvalidGrade(t *testing.T) {
	for _, g := range []string{"Z", "", "a", "A++", "E"} {
		c := validCourse()
		c.Grade = g
		if err := ValidateCourse(c); !errors.Is(err, ErrInvalidGrade) {
			t.Errorf("grade %q: expected ErrInvalidGrade, got %v", g, err)
		}
	}
}

func TestValidateCourse_InvalidTitle(t *testing.T) {
	for _, title := range []string{"", "   ", strings.Repeat("x", MaxTitleLength+1)} {
		c := validCourse()
		c.Title = title
		if err := ValidateCourse(c); !errors.Is(err, ErrInvalidTitle) {
			t.Errorf("title len %d: expected ErrInvalidTitle, got %v", len(title), err)
		}
	}
}

func TestValidateCourse_InvalidUnits(t *testing.T) {
	for _, u := range []float64{-0.5, 20.5, math.NaN(), math.Inf(1)} {
		c := validCourse()
		c.Units = u
		if err := ValidateCourse(c); !errors.Is(err, ErrInvalidUnits) {
			t.Errorf("units %v: expected ErrInvalidUnits, got %v", u, err)
		}
	}
}

func TestValidateCourse_InvalidSource(t *testing.T) {
	c := validCourse()
	c.Source = "scraped"
	if err := ValidateCourse(c); !errors.Is(err, ErrInvalidSource) {
		t.Errorf("expected ErrInvalidSource, got %v", err)
	}
}

func TestValidSources(t *testing.T) {
	if len(ValidSources) != 2 || !ValidSources[SourceParsed] || !ValidSources[SourceManual] {
		t.Fatalf("unexpected source set: %v", ValidSources)
	}
	for src := range ValidSources {
		c := validCourse()
		c.Source = src
		if err := ValidateCourse(c); err != nil {
			t.Errorf("%q: unexpected error %v", src, err)
		}
	}
	c := validCourse()
	c.Source = ""
	if err := ValidateCourse(c); !errors.Is(err, ErrInvalidSource) {
		t.Errorf("empty source: expected ErrInvalidSource, got %v", err)
	}
}

func TestValidationErrorMessage(t *testing.T) {
	c := validCourse()
	c.Grade = "Z"
	err := ValidateCourse(c)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if ve.Field != "grade" || ve.Value != "Z" {
		t.Errorf("unexpected field/value: %s=%q", ve.Field, ve.Value)
	}
	if !strings.Contains(err.Error(), "grade") {
		t.Errorf("message should name the field: %s", err)
	}
}

func TestNewCourse(t *testing.T) {
	r := NewCourse("CS", "110", "Intro", 4, "A", SourceParsed)
	c, err := r.Unwrap()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Subject != "CS" || c.Number != "110" || c.Title != "Intro" || c.Units != 4 || c.Grade != "A" || c.Source != SourceParsed {
		t.Errorf("unexpected course: %+v", c)
	}

	if NewCourse("cs", "110", "Intro", 4, "A", SourceParsed).IsOk() {
		t.Error("lowercase subject should be rejected")
	}
	if NewCourse("CS", "110", "Intro", 4, "Z", SourceParsed).IsOk() {
		t.Error("grade Z should be rejected")
	}
	if NewCourse("CS", "10-1", "Intro", 4, "A", SourceParsed).IsOk() {
		t.Error("number 10-1 should be rejected")
	}
}

func TestWithTitle_ReturnsCopy(t *testing.T) {
	orig := validCourse()
	cleaned, err := orig.WithTitle("Cleaned").Unwrap()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cleaned.Title != "Cleaned" {
		t.Errorf("expected new title, got %q", cleaned.Title)
	}
	if orig.Title != "Intro to Computer Science I" {
		t.Errorf("original mutated: %q", orig.Title)
	}
	if orig.WithTitle("  ").IsOk() {
		t.Error("blank title should be rejected")
	}
}

func TestGradeTables(t *testing.T) {
	for g := range GradePoints {
		if NonGPAGrades[g] {
			t.Errorf("grade %q is in both tables", g)
		}
		if !IsValidGrade(g) || !IsGPAGrade(g) {
			t.Errorf("letter grade %q should be valid and GPA-bearing", g)
		}
	}
	for g := range NonGPAGrades {
		if !IsValidGrade(g) || IsGPAGrade(g) {
			t.Errorf("marker %q should be valid and non-GPA", g)
		}
	}
	if GradePoints["A-"] != 3.7 || GradePoints["F"] != 0 {
		t.Error("unexpected grade points")
	}
}
