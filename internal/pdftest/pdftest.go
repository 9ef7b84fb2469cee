// Package pdftest writes small, valid PDF documents for tests. Text is
// laid out one string per line with the standard Helvetica font.
package pdftest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Doc describes a synthetic document. Each page is a list of text
// lines; a page set to nil gets a content stream that fails to decode.
type Doc struct {
	Pages   [][]string
	Encrypt bool
}

var pdfEscaper = strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)

func contentStream(lines []string) string {
	if lines == nil {
		return "BT\n/F1 10 Tf\nTj\nET"
	}
	var b strings.Builder
	b.WriteString("BT\n/F1 10 Tf\n12 TL\n72 720 Td\n")
	for i, l := range lines {
		if i > 0 {
			b.WriteString("T*\n")
		}
		fmt.Fprintf(&b, "(%s) Tj\n", pdfEscaper.Replace(l))
	}
	b.WriteString("ET")
	return b.String()
}

// Bytes renders a minimal PDF 1.4 file with a correct xref table.
func (d Doc) Bytes() []byte {
	kids := make([]string, len(d.Pages))
	for i := range d.Pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	objs := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(d.Pages)),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	}
	for i, lines := range d.Pages {
		content := contentStream(lines)
		objs = append(objs,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, body := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objs)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}

	trailer := fmt.Sprintf("<< /Size %d /Root 1 0 R", len(objs)+1)
	if d.Encrypt {
		trailer += " /Encrypt << /Filter /Unsupported /V 1 /R 2 >>"
	}
	trailer += " >>"
	fmt.Fprintf(&buf, "trailer\n%s\nstartxref\n%d\n%%%%EOF\n", trailer, xref)
	return buf.Bytes()
}

// Write stores d as name in a fresh temporary directory and returns the
// path.
func (d Doc) Write(tb testing.TB, name string) string {
	tb.Helper()
	path := filepath.Join(tb.TempDir(), name)
	if err := os.WriteFile(path, d.Bytes(), 0o600); err != nil {
		tb.Fatalf("write %s: %v", name, err)
	}
	return path
}

// SamplePages is a two-page transcript covering every section, a wrapped
// title, a glued grade and a subtotal row.
var SamplePages = [][]string{
	{
		"UNOFFICIAL ACADEMIC TRANSCRIPT",
		"Student: Jane Doe",
		"TRANSFER CREDIT ACCEPTED BY INSTITUTION -Top-",
		"Fall 2020: City College",
		"MATH 109 UG Precalculus TCR 4.000 0.00",
		"ENGL 1XX UG Composition I TCR 3.000 0.00",
		"INSTITUTION CREDIT -Top-",
		"Term: Fall 2021",
		"CS 110 UG Intro to Computer Science I A+ 4.000 16.00",
		"MATH 201 UG Calculus and Analytic Geometry",
		"III B+ 4.000 13.20",
	},
	{
		"SPAN 101 UG Elementary SpanishA 4.000 16.00",
		"PHIL 220 UG Ethics W 4.000 0.00",
		"Term Totals (Undergraduate) 16.000 45.20",
		"TRANSCRIPT TOTALS (UNDERGRADUATE) -Top-",
		"Total Institution 16.000 45.20",
		"COURSES IN PROGRESS -Top-",
		"Term: Spring 2022",
		"CS 245 UG Data Structures and Algorithms 4.000",
		"ENVS 100L UG Environmental Lab 1.000",
	},
}
