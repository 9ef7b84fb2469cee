package transcript

import (
	"regexp"
	"sort"
	"strings"
)

// SectionKey names one logical zone of a transcript.
type SectionKey string

const (
	SectionTransfer    SectionKey = "transfer_credit"
	SectionInstitution SectionKey = "institution_credit"
	SectionInProgress  SectionKey = "courses_in_progress"
)

// SectionOrder is the order sections are parsed and reported in.
var SectionOrder = []SectionKey{SectionTransfer, SectionInstitution, SectionInProgress}

// Landmark is the literal heading that opens a section.
type Landmark struct {
	Key    SectionKey
	Phrase string
}

// Landmarks locate each section in extracted text.
var Landmarks = []Landmark{
	{SectionTransfer, "TRANSFER CREDIT ACCEPTED BY INSTITUTION"},
	{SectionInstitution, "INSTITUTION CREDIT"},
	{SectionInProgress, "COURSES IN PROGRESS"},
}

const totalsMarker = "TRANSCRIPT TOTALS"

var (
	footerRe = regexp.MustCompile(`© 20\d\d Ellucian`)

	// Headings rendered by the web transcript carry a "-Top-" back link,
	// sometimes wrapped onto the next line; such an occurrence wins over a
	// bare mention.
	anchoredRe = func() map[SectionKey]*regexp.Regexp {
		m := make(map[SectionKey]*regexp.Regexp, len(Landmarks))
		for _, lm := range Landmarks {
			m[lm.Key] = regexp.MustCompile(regexp.QuoteMeta(lm.Phrase) + `\s+.*?-Top-`)
		}
		return m
	}()
)

// Sections maps every SectionKey to its span of text. A section whose
// landmark is absent maps to "".
type Sections map[SectionKey]string

// TotalLen is the combined length of all spans.
func (s Sections) TotalLen() int {
	n := 0
	for _, v := range s {
		n += len(v)
	}
	return n
}

type span struct {
	key        SectionKey
	start, end int
}

// Segment slices text into its transfer, institution and in-progress
// sections. Each span runs from its landmark to the next landmark found;
// the last one stops at the copyright footer when present. A
// "TRANSCRIPT TOTALS" block ends whichever section contains it.
func Segment(text string) Sections {
	out := make(Sections, len(Landmarks))
	var spans []span
	for _, lm := range Landmarks {
		out[lm.Key] = ""
		if pos := locate(text, lm); pos >= 0 {
			spans = append(spans, span{key: lm.Key, start: pos})
		}
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	for i := range spans {
		if i+1 < len(spans) {
			spans[i].end = spans[i+1].start
			continue
		}
		spans[i].end = len(text)
		if loc := footerRe.FindStringIndex(text[spans[i].start:]); loc != nil {
			spans[i].end = spans[i].start + loc[0]
		}
	}

	if t := strings.Index(text, totalsMarker); t >= 0 {
		for i := range spans {
			if spans[i].start < t && t < spans[i].end {
				spans[i].end = t
			}
		}
	}

	for _, s := range spans {
		out[s.key] = text[s.start:s.end]
	}
	return out
}

func locate(text string, lm Landmark) int {
	if loc := anchoredRe[lm.Key].FindStringIndex(text); loc != nil {
		return loc[0]
	}
	return strings.Index(text, lm.Phrase)
}
