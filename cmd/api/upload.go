package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/WessleyAI/gradepoint/engine/domain"
	"github.com/WessleyAI/gradepoint/engine/transcript"
	"github.com/WessleyAI/gradepoint/pkg/metrics"
)

// User-facing messages.
const (
	msgNoFile          = "No file provided"
	msgInvalidFileType = "Only PDF files are supported. Please upload a PDF transcript."
	msgEmptyFile       = "Uploaded file is empty"
	msgFileTooLarge    = "File size exceeds maximum limit"
	msgCorruptedPDF    = "PDF file is corrupted or invalid"
	msgInternal        = "Internal server error"
)

var pdfSignature = []byte("%PDF")

// multipartOverhead is allowed on top of the file size limit for the
// multipart envelope.
const multipartOverhead = 1 << 20

// uploadError is a rejected upload with the status to report.
type uploadError struct {
	status int
	msg    string
}

func (e *uploadError) Error() string { return e.msg }

func badUpload(msg string) *uploadError { return &uploadError{status: http.StatusBadRequest, msg: msg} }

func (s *server) tooLarge() *uploadError {
	return &uploadError{
		status: http.StatusRequestEntityTooLarge,
		msg:    fmt.Sprintf("%s (%dMB)", msgFileTooLarge, s.cfg.MaxFileSizeMB),
	}
}

// validateHeader checks the filename and declared MIME type.
func validateHeader(fh *multipart.FileHeader) error {
	if fh == nil || fh.Filename == "" {
		return badUpload(msgNoFile)
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".pdf") {
		return badUpload(msgInvalidFileType)
	}
	if ct := fh.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/pdf") {
		return badUpload(msgInvalidFileType)
	}
	return nil
}

// readUpload reads the file body and checks its size and PDF signature.
func (s *server) readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	ceiling := s.cfg.MaxFileSizeBytes()
	content, err := io.ReadAll(io.LimitReader(f, ceiling+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	switch {
	case len(content) == 0:
		return nil, badUpload(msgEmptyFile)
	case int64(len(content)) > ceiling:
		return nil, s.tooLarge()
	case !bytes.HasPrefix(content, pdfSignature):
		return nil, badUpload(msgCorruptedPDF)
	}
	return content, nil
}

// parseFile writes content to a temporary file, parses it and always
// removes the file.
func (s *server) parseFile(r *http.Request, content []byte) ([]domain.Course, error) {
	tmp, err := os.CreateTemp("", "transcript-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	path := tmp.Name()
	defer func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.log.Warn("temp file cleanup failed", "path", path, "error", err)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close temp file: %w", err)
	}
	return s.parser.Parse(r.Context(), path)
}

func (s *server) handleUpload(w http.ResponseWriter, r *http.Request) {
	limit := s.cfg.MaxFileSizeBytes() + multipartOverhead
	if r.ContentLength > limit {
		s.log.Warn("upload rejected by content length", "bytes", r.ContentLength)
		writeUploadError(w, s.tooLarge())
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeUploadError(w, s.tooLarge())
			return
		}
		writeError(w, http.StatusBadRequest, msgNoFile)
		return
	}
	defer r.MultipartForm.RemoveAll()

	_, fh, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, msgNoFile)
		return
	}
	if err := validateHeader(fh); err != nil {
		s.log.Warn("upload rejected", "file", fh.Filename, "error", err)
		writeUploadError(w, err)
		return
	}
	content, err := s.readUpload(fh)
	if err != nil {
		s.log.Warn("upload rejected", "file", fh.Filename, "error", err)
		writeUploadError(w, err)
		return
	}

	s.metrics.InFlight.Inc()
	start := time.Now()
	courses, err := s.parseFile(r, content)
	s.metrics.InFlight.Dec()
	if err != nil {
		kind := transcript.Kind(err)
		s.metrics.ObserveParse(kind, 0, start)
		status, detail := parseErrorStatus(err)
		level := slog.LevelError
		if transcript.IsUserError(err) {
			level = slog.LevelWarn
		}
		s.log.Log(r.Context(), level, "transcript parse failed", "file", fh.Filename, "kind", kind, "error", err)
		writeError(w, status, detail)
		return
	}
	s.metrics.ObserveParse(metrics.ResultOK, len(courses), start)

	s.log.Info("transcript processed", "file", fh.Filename, "courses", len(courses))
	writeJSON(w, http.StatusOK, courses)
}

func writeUploadError(w http.ResponseWriter, err error) {
	var ue *uploadError
	if errors.As(err, &ue) {
		writeError(w, ue.status, ue.msg)
		return
	}
	writeError(w, http.StatusInternalServerError, msgInternal)
}

// parseErrorStatus maps a parse failure onto a status and user message.
// Failures caused by the document are the client's; the rest are ours.
func parseErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, transcript.ErrNotFound):
		return http.StatusBadRequest, "File not found"
	case transcript.IsUserError(err):
		return http.StatusBadRequest, "Unable to parse transcript: " + err.Error()
	}
	return http.StatusInternalServerError, msgInternal
}
