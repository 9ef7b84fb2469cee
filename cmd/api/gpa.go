package main

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/WessleyAI/gradepoint/engine/domain"
	"github.com/WessleyAI/gradepoint/engine/gpa"
	"github.com/WessleyAI/gradepoint/pkg/metrics"
)

// maxGPABody bounds the JSON body of POST /gpa.
const maxGPABody = 1 << 20

// CoursesRequest is the JSON body for POST /api/v1/gpa.
type CoursesRequest struct {
	Courses *[]domain.Course `json:"courses"`
}

func (s *server) handleGPA(w http.ResponseWriter, r *http.Request) {
	var req CoursesRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxGPABody))
	if err := dec.Decode(&req); err != nil {
		s.metrics.ObserveGPA("invalid")
		writeError(w, http.StatusUnprocessableEntity, "invalid request body: "+err.Error())
		return
	}
	if req.Courses == nil {
		s.metrics.ObserveGPA("invalid")
		writeError(w, http.StatusUnprocessableEntity, "courses is required")
		return
	}

	summary, err := gpa.Summarize(*req.Courses)
	if err != nil {
		s.metrics.ObserveGPA("invalid")
		s.log.Error("gpa calculation error", "error", err)
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("Invalid course data provided: %v", err))
		return
	}
	s.metrics.ObserveGPA(metrics.ResultOK)

	s.log.Info("gpa calculated",
		"courses", len(*req.Courses),
		"counted", summary.CoursesCounted,
		"units", summary.GPAUnits,
		"quality_points", summary.QualityPoints,
		"gpa", summary.GPA,
	)
	writeJSON(w, http.StatusOK, summary.GPA)
}
