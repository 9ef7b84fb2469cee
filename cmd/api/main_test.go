package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"strings"
	"testing"

	"github.com/WessleyAI/gradepoint/engine/domain"
	"github.com/WessleyAI/gradepoint/engine/transcript"
	"github.com/WessleyAI/gradepoint/internal/config"
	"github.com/WessleyAI/gradepoint/internal/pdftest"
	"github.com/WessleyAI/gradepoint/pkg/metrics"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubParser records the path it was given and whether the file existed.
type stubParser struct {
	courses  []domain.Course
	err      error
	path     string
	existed  bool
	contents []byte
}

func (p *stubParser) Parse(_ context.Context, path string) ([]domain.Course, error) {
	p.path = path
	data, err := os.ReadFile(path)
	p.existed = err == nil
	p.contents = data
	return p.courses, p.err
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.MaxFileSizeMB = 1
	return cfg
}

func newTestServer(t *testing.T, cfg config.Config, p transcriptParser) (*server, http.Handler) {
	t.Helper()
	t.Setenv("TESTING", "true")
	s := newServer(cfg, p, metrics.NewService(metrics.New()), quietLogger())
	return s, s.routes()
}

type filePart struct {
	field, name, contentType string
	data                     []byte
}

func multipartBody(t *testing.T, parts ...filePart) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, p := range parts {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, p.field, p.name))
		if p.contentType != "" {
			h.Set("Content-Type", p.contentType)
		}
		w, err := mw.CreatePart(h)
		if err != nil {
			t.Fatal(err)
		}
		w.Write(p.data)
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func upload(t *testing.T, h http.Handler, parts ...filePart) *httptest.ResponseRecorder {
	t.Helper()
	body, ct := multipartBody(t, parts...)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func detail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var e errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&e); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return e.Detail
}

func TestHealthEndpoint(t *testing.T) {
	_, h := newTestServer(t, testConfig(), &stubParser{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "healthy" || resp.Version != "1.0.0" || resp.Environment != "development" {
		t.Fatalf("unexpected health: %+v", resp)
	}
}

func TestUpload_ParsesRealPDF(t *testing.T) {
	cfg := testConfig()
	gate := transcript.DefaultGate()
	parser := transcript.New(transcript.Config{Logger: quietLogger(), Gate: &gate})
	_, h := newTestServer(t, cfg, parser)

	pdf := pdftest.Doc{Pages: pdftest.SamplePages}.Bytes()
	rec := upload(t, h, filePart{field: "file", name: "transcript.pdf", contentType: "application/pdf", data: pdf})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var courses []domain.Course
	if err := json.NewDecoder(rec.Body).Decode(&courses); err != nil {
		t.Fatal(err)
	}
	if len(courses) != 8 {
		t.Fatalf("expected 8 courses, got %d", len(courses))
	}
	if courses[2].Subject != "CS" || courses[2].Grade != "A+" || courses[2].Source != domain.SourceParsed {
		t.Fatalf("unexpected course: %+v", courses[2])
	}
}

func TestUpload_RemovesTempFile(t *testing.T) {
	p := &stubParser{courses: []domain.Course{{Subject: "CS", Number: "110", Title: "Intro", Units: 4, Grade: "A", Source: domain.SourceParsed}}}
	_, h := newTestServer(t, testConfig(), p)

	data := []byte("%PDF-1.4 fake body")
	rec := upload(t, h, filePart{field: "file", name: "t.pdf", contentType: "application/pdf", data: data})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !p.existed || !bytes.Equal(p.contents, data) {
		t.Fatal("parser should see the uploaded bytes on disk")
	}
	if _, err := os.Stat(p.path); !os.IsNotExist(err) {
		t.Fatalf("temp file should be removed, stat err = %v", err)
	}
}

func TestUpload_Rejections(t *testing.T) {
	big := append([]byte("%PDF"), bytes.Repeat([]byte("x"), 1<<20)...)
	cases := []struct {
		name   string
		part   filePart
		status int
		detail string
	}{
		{"txt extension", filePart{"file", "notes.txt", "text/plain", []byte("%PDF")}, http.StatusBadRequest, msgInvalidFileType},
		{"image mime", filePart{"file", "scan.pdf", "image/png", []byte("%PDF")}, http.StatusBadRequest, msgInvalidFileType},
		{"empty", filePart{"file", "empty.pdf", "application/pdf", nil}, http.StatusBadRequest, msgEmptyFile},
		{"bad signature", filePart{"file", "fake.pdf", "application/pdf", []byte("hello world")}, http.StatusBadRequest, msgCorruptedPDF},
		{"too large", filePart{"file", "big.pdf", "application/pdf", big}, http.StatusRequestEntityTooLarge, msgFileTooLarge},
		{"wrong field", filePart{"document", "t.pdf", "application/pdf", []byte("%PDF")}, http.StatusBadRequest, msgNoFile},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := &stubParser{}
			_, h := newTestServer(t, testConfig(), p)
			rec := upload(t, h, tc.part)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
			if d := detail(t, rec); !strings.HasPrefix(d, tc.detail) {
				t.Fatalf("expected detail %q, got %q", tc.detail, d)
			}
			if p.path != "" {
				t.Fatal("parser should not run for rejected uploads")
			}
		})
	}
}

func TestUpload_ContentLengthPrecheck(t *testing.T) {
	_, h := newTestServer(t, testConfig(), &stubParser{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", strings.NewReader("x"))
	req.ContentLength = 10 << 20
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rec.Code)
	}
}

func TestUpload_ParseErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
		prefix string
	}{
		{transcript.ErrNoCoursesFound, http.StatusBadRequest, "Unable to parse transcript"},
		{fmt.Errorf("%w: bad xref", transcript.ErrCorruptOrEncrypted), http.StatusBadRequest, "Unable to parse transcript"},
		{transcript.ErrNoText, http.StatusBadRequest, "Unable to parse transcript"},
		{transcript.ErrLowQualityParse, http.StatusBadRequest, "Unable to parse transcript"},
		{fmt.Errorf("open: %w", transcript.ErrNotFound), http.StatusBadRequest, "File not found"},
		{fmt.Errorf("disk on fire"), http.StatusInternalServerError, msgInternal},
	}
	for _, tc := range cases {
		s, h := newTestServer(t, testConfig(), &stubParser{err: tc.err})
		rec := upload(t, h, filePart{"file", "t.pdf", "application/pdf", []byte("%PDF-1.4")})
		if rec.Code != tc.status {
			t.Errorf("%v: expected %d, got %d", tc.err, tc.status, rec.Code)
			continue
		}
		if d := detail(t, rec); !strings.HasPrefix(d, tc.prefix) {
			t.Errorf("%v: unexpected detail %q", tc.err, d)
		}
		if !strings.Contains(s.metrics.Registry().Render(), `gradepoint_parse_total{result="`+transcript.Kind(tc.err)+`"} 1`) {
			t.Errorf("%v: parse failure not counted", tc.err)
		}
	}
}

func postGPA(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/gpa", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGPAEndpoint(t *testing.T) {
	_, h := newTestServer(t, testConfig(), &stubParser{})
	body := `{"courses":[
		{"subject":"CS","number":"110","title":"Intro","units":4,"grade":"A","source":"parsed"},
		{"subject":"MATH","number":"201","title":"Calc","units":3,"grade":"B","source":"manual"},
		{"subject":"PHIL","number":"220","title":"Ethics","units":4,"grade":"W","source":"parsed"},
		{"subject":"ENVS","number":"100L","title":"Lab","units":0,"grade":"A","source":"parsed"}
	]}`
	rec := postGPA(t, h, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got float64
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	// (16 + 9) / 7
	if got != 3.57 {
		t.Fatalf("expected 3.57, got %v", got)
	}
}

func TestGPAEndpoint_EmptyList(t *testing.T) {
	_, h := newTestServer(t, testConfig(), &stubParser{})
	rec := postGPA(t, h, `{"courses":[]}`)
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "0" {
		t.Fatalf("expected 200 with 0, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestGPAEndpoint_InvalidPayloads(t *testing.T) {
	_, h := newTestServer(t, testConfig(), &stubParser{})
	for name, body := range map[string]string{
		"not json":        "not json",
		"missing courses": `{}`,
		"bad grade":       `{"courses":[{"subject":"CS","number":"110","title":"Intro","units":4,"grade":"Z","source":"parsed"}]}`,
		"lowercase":       `{"courses":[{"subject":"cs","number":"110","title":"Intro","units":4,"grade":"A","source":"parsed"}]}`,
		"missing source":  `{"courses":[{"subject":"CS","number":"110","title":"Intro","units":4,"grade":"A"}]}`,
		"empty body":      ``,
	} {
		if rec := postGPA(t, h, body); rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("%s: expected 422, got %d", name, rec.Code)
		}
	}
}

func TestRouting(t *testing.T) {
	_, h := newTestServer(t, testConfig(), &stubParser{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/gpa", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "gradepoint_parses_in_flight") {
		t.Errorf("metrics endpoint: %d %q", rec.Code, rec.Body.String())
	}
}

func TestCORSHeaders(t *testing.T) {
	_, h := newTestServer(t, testConfig(), &stubParser{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") != "http://localhost:3000" {
		t.Fatalf("missing CORS header: %v", rec.Header())
	}
}

func TestGPAEndpoint_RateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitGPA = 2
	s := newServer(cfg, &stubParser{}, metrics.NewService(metrics.New()), quietLogger())
	t.Setenv("TESTING", "false")
	h := s.routes()

	for i := 0; i < 2; i++ {
		if rec := postGPA(t, h, `{"courses":[]}`); rec.Code != http.StatusOK {
			t.Fatalf("call %d: expected 200, got %d", i, rec.Code)
		}
	}
	rec := postGPA(t, h, `{"courses":[]}`)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "60" {
		t.Fatalf("expected Retry-After 60, got %q", rec.Header().Get("Retry-After"))
	}
}
