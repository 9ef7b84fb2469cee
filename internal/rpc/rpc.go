// Package rpc defines the NATS subjects and JSON messages served by the
// parse worker.
package rpc

import (
	"github.com/WessleyAI/gradepoint/engine/domain"
	"github.com/WessleyAI/gradepoint/engine/gpa"
)

// Subjects.
const (
	SubjectParse  = "gradepoint.transcript.parse"
	SubjectGPA    = "gradepoint.gpa.calculate"
	SubjectParsed = "gradepoint.transcript.parsed"

	QueueWorkers = "gradepoint-workers"
)

// ParseRequest asks a worker to parse the transcript at Path. The file
// must be readable by the worker and stays owned by the requester.
type ParseRequest struct {
	Path string `json:"path"`
}

// ParseReply carries either the parsed courses with their GPA, or an error
// and its kind.
type ParseReply struct {
	Courses []domain.Course `json:"courses,omitempty"`
	GPA     float64         `json:"gpa"`
	Error   string          `json:"error,omitempty"`
	Kind    string          `json:"kind,omitempty"`
}

// GPARequest asks for the GPA of Courses.
type GPARequest struct {
	Courses []domain.Course `json:"courses"`
}

// GPAReply is the answer to a GPARequest.
type GPAReply struct {
	gpa.Summary
	Error string `json:"error,omitempty"`
}

// ParsedEvent is published after every successful parse. It carries
// counts only; course data is never broadcast.
type ParsedEvent struct {
	Courses int     `json:"courses"`
	GPA     float64 `json:"gpa"`
	Millis  int64   `json:"duration_ms"`
}
