package transcript

import (
	"regexp"
	"strings"
)

// RawCourse is a course-shaped match before validation. Grade is empty
// for a course with no posted grade; QualityPoints is empty when the row
// carries none.
type RawCourse struct {
	Subject       string
	Number        string
	Title         string
	Grade         string
	Units         string
	QualityPoints string
}

const subtotalPhrase = "Term Totals"

// gluedGradeRe finds a grade fused to the preceding title word, as in
// "SpanishA 3.000 12.00".
var gluedGradeRe = regexp.MustCompile(`([a-z])([A-Z]+[+-]?)(\s+[\d.]+\s+[\d.]+)`)

// RepairSpacing separates grades that PDF extraction glued onto titles.
func RepairSpacing(text string) string {
	return gluedGradeRe.ReplaceAllString(text, "${1} ${2}${3}")
}

type matchState int

const (
	seekingCourse matchState = iota
	inTitle
	expectGradeOrUnits
)

// matcher walks the tokens of one section. A course is
// SUBJECT NUMBER [UG] TITLE [GRADE] UNITS [QP]; the title may wrap onto
// following lines and ends at the first recognisable tail.
type matcher struct {
	text  string
	toks  []token
	state matchState

	pos        int // next token to inspect while seeking
	candStart  int // token index of the pending subject
	titleStart int // token index of the first title word
	titleEnd   int // token index one past the last title word
	subject    string
	number     string

	out []RawCourse
}

// MatchSection returns every course-shaped row in section, in document
// order. Subtotal rows that the title swallowed are discarded.
func MatchSection(section string) []RawCourse {
	text := RepairSpacing(section)
	m := &matcher{text: text, toks: tokenize(text)}
	m.run()
	return m.out
}

func (m *matcher) run() {
	for m.state != seekingCourse || m.pos < len(m.toks) {
		switch m.state {
		case seekingCourse:
			m.seek()
		case inTitle:
			m.extendTitle()
		case expectGradeOrUnits:
			m.readTail()
		}
	}
}

// courseStartAt reports whether a subject and number begin at token i.
func (m *matcher) courseStartAt(i int) bool {
	return i+1 < len(m.toks) && isSubject(m.toks[i].text) && isNumber(m.toks[i+1].text)
}

func (m *matcher) seek() {
	if !m.courseStartAt(m.pos) {
		m.pos++
		return
	}
	m.begin(m.pos)
}

func (m *matcher) begin(i int) {
	m.candStart = i
	m.subject = m.toks[i].text
	m.number = m.toks[i+1].text
	m.pos = i + 2
	if m.pos < len(m.toks) && m.toks[m.pos].text == undergradMarker {
		m.pos++
	}
	m.titleStart = m.pos
	m.titleEnd = m.pos
	m.state = inTitle
}

// extendTitle takes the first title word; a title is never empty.
func (m *matcher) extendTitle() {
	if m.titleStart >= len(m.toks) {
		m.abandon()
		return
	}
	m.titleEnd = m.titleStart + 1
	m.state = expectGradeOrUnits
}

// readTail tries to close the candidate at the current token. Tails are
// tried from most to least specific.
func (m *matcher) readTail() {
	i := m.titleEnd
	if i >= len(m.toks) {
		m.abandon()
		return
	}

	if raw, next, ok := m.tailAt(i); ok {
		m.emit(raw)
		m.pos = next
		m.state = seekingCourse
		return
	}

	// A new course on a fresh line means the pending one never had a tail.
	if m.toks[i].lineStart && m.courseStartAt(i) {
		m.begin(i)
		return
	}

	m.titleEnd++
}

// tailAt recognises GRADE UNITS QP, UNITS QP <eol> and UNITS <eol> at
// token i. A graded tail always carries quality points, so a title ending
// in a grade-like word ("Calculus I 4.000") reads as an in-progress row.
func (m *matcher) tailAt(i int) (RawCourse, int, bool) {
	tok := func(k int) (token, bool) {
		if k < len(m.toks) {
			return m.toks[k], true
		}
		return token{}, false
	}
	t0, _ := tok(i)
	t1, ok1 := tok(i + 1)
	t2, ok2 := tok(i + 2)

	raw := RawCourse{Subject: m.subject, Number: m.number}

	switch {
	case isGrade(t0.text) && ok1 && ok2 && isNumeric(t1.text) && isNumeric(t2.text):
		raw.Grade, raw.Units, raw.QualityPoints = t0.text, t1.text, t2.text
		return raw, i + 3, true
	case isDecimal(t0.text) && !t0.lineEnd && ok1 && isNumeric(t1.text) && t1.lineEnd:
		raw.Units, raw.QualityPoints = t0.text, t1.text
		return raw, i + 2, true
	case isDecimal(t0.text) && t0.lineEnd:
		raw.Units = t0.text
		return raw, i + 1, true
	}
	return raw, 0, false
}

func (m *matcher) emit(raw RawCourse) {
	raw.Title = m.text[m.toks[m.titleStart].start:m.toks[m.titleEnd-1].end]
	if strings.Contains(raw.Title, subtotalPhrase) {
		return
	}
	m.out = append(m.out, raw)
}

// abandon drops a candidate that reached the end of the section without a
// tail and rescans from just after its subject.
func (m *matcher) abandon() {
	m.pos = m.candStart + 1
	m.state = seekingCourse
}
