package report

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/karolswdev/careplan/internal/plan"
)

// LineKind is the visual treatment chosen for one line of a section.
type LineKind int

const (
	LineText LineKind = iota
	LineItem
	LineDay
	LineEmphasis
)

func (k LineKind) String() string {
	switch k {
	case LineItem:
		return "item"
	case LineDay:
		return "day"
	case LineEmphasis:
		return "emphasis"
	default:
		return "text"
	}
}

// MarshalText encodes the kind by name in JSON output.
func (k LineKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText is the inverse of MarshalText. Unknown names decode as LineText.
func (k *LineKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "item":
		*k = LineItem
	case "day":
		*k = LineDay
	case "emphasis":
		*k = LineEmphasis
	default:
		*k = LineText
	}
	return nil
}

// Span is a run of text inside a line; Bold runs came from **markers**.
type Span struct {
	Text string `json:"text"`
	Bold bool   `json:"bold,omitempty"`
}

// Line is one non-blank line of a section body.
type Line struct {
	Kind  LineKind `json:"kind"`
	Text  string   `json:"text"`
	Spans []Span   `json:"spans"`
}

// Day collects the lines that follow a "Day N" line.
type Day struct {
	Number  int    `json:"number"`
	Heading string `json:"heading"`
	Lines   []Line `json:"lines,omitempty"`
}

// Section is one marker-delimited segment of the plan. Kind and Marker are empty for text
// that came before the first marker.
type Section struct {
	Kind   plan.SectionKind `json:"kind,omitempty"`
	Marker string           `json:"marker,omitempty"`
	Title  string           `json:"title"`
	Lines  []Line           `json:"lines,omitempty"`
	Days   []Day            `json:"days,omitempty"`
}

// Report is a parsed plan.
type Report struct {
	Raw      string    `json:"-"`
	Sections []Section `json:"sections"`
}

// Structured reports whether the plan followed the section format at all.
func (r Report) Structured() bool {
	for _, s := range r.Sections {
		if s.Marker != "" {
			return true
		}
	}
	return false
}

var (
	markerRe = buildMarkerRe()
	dayRe    = regexp.MustCompile(`(?i)^(?:#+\s*)?(?:\*\*)?\s*day\s*(\d+)\b`)
	orderRe  = regexp.MustCompile(`^\d+[.)]\s+`)
)

func buildMarkerRe() *regexp.Regexp {
	alts := make([]string, 0, len(plan.Sections))
	for _, s := range plan.Sections {
		alts = append(alts, regexp.QuoteMeta(plan.BaseMarker(s.Marker)))
	}
	return regexp.MustCompile(`(?:` + strings.Join(alts, "|") + `)\x{FE0F}?`)
}

// Parse splits plan text into sections. It never fails; text that does not follow the
// section format comes back as a single unmarked section.
func Parse(text string) Report {
	rep := Report{Raw: text}
	text = strings.ReplaceAll(text, "\r\n", "\n")

	starts := []int{0}
	for _, loc := range markerRe.FindAllStringIndex(text, -1) {
		start := headingStart(text, loc[0])
		if start > starts[len(starts)-1] {
			starts = append(starts, start)
		}
	}
	for i, start := range starts {
		end := len(text)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		segment := strings.TrimSpace(text[start:end])
		if segment == "" {
			continue
		}
		rep.Sections = append(rep.Sections, parseSection(segment))
	}
	return rep
}

// headingStart moves a split point at pos back to the start of its line when only markdown
// heading or bold markers precede it, as in "### 📅 Study Duration Overview".
func headingStart(text string, pos int) int {
	lineStart := strings.LastIndexByte(text[:pos], '\n') + 1
	if strings.Trim(text[lineStart:pos], headingPrefix) == "" {
		return lineStart
	}
	return pos
}

const headingPrefix = "#* \t"

func parseSection(segment string) Section {
	lines := strings.Split(segment, "\n")
	var sec Section

	head := strings.TrimSpace(lines[0])
	marked := strings.TrimLeft(head, headingPrefix)
	if loc := markerRe.FindStringIndex(marked); loc != nil && loc[0] == 0 {
		sec.Marker = marked[:loc[1]]
		if spec, ok := plan.SectionFor(sec.Marker); ok {
			sec.Kind = spec.Kind
			sec.Title = cleanTitle(marked[loc[1]:])
			if sec.Title == "" {
				sec.Title = spec.Title
			}
		}
	} else {
		sec.Title = cleanTitle(head)
	}

	var day *Day
	for _, raw := range lines[1:] {
		line, ok := classify(raw)
		if !ok {
			continue
		}
		if line.Kind == LineDay {
			sec.Days = append(sec.Days, Day{Number: dayNumber(line.Text), Heading: cleanTitle(line.Text)})
			day = &sec.Days[len(sec.Days)-1]
			continue
		}
		if day != nil {
			day.Lines = append(day.Lines, line)
		} else {
			sec.Lines = append(sec.Lines, line)
		}
	}
	return sec
}

// classify picks the treatment for one line. Blank lines and horizontal rules are dropped.
func classify(raw string) (Line, bool) {
	text := strings.TrimSpace(raw)
	if strings.Trim(text, "-*_ ") == "" {
		return Line{}, false
	}
	switch {
	case dayRe.MatchString(text):
		return newLine(LineDay, text), true
	case strings.HasPrefix(text, "•"):
		return newLine(LineItem, strings.TrimSpace(strings.TrimPrefix(text, "•"))), true
	case strings.HasPrefix(text, "-"), strings.HasPrefix(text, "* "):
		return newLine(LineItem, strings.TrimSpace(text[1:])), true
	case orderRe.MatchString(text):
		return newLine(LineItem, orderRe.ReplaceAllString(text, "")), true
	case len(text) > 4 && strings.HasPrefix(text, "**") && strings.HasSuffix(text, "**"):
		return newLine(LineEmphasis, text), true
	}
	return newLine(LineText, text), true
}

func newLine(kind LineKind, text string) Line {
	return Line{Kind: kind, Text: text, Spans: Spans(text)}
}

// Spans splits text on ** markers. An unmatched trailing ** is kept as literal text.
func Spans(text string) []Span {
	parts := strings.Split(text, "**")
	if len(parts)%2 == 0 {
		last := len(parts) - 1
		parts[last-1] = parts[last-1] + "**" + parts[last]
		parts = parts[:last]
	}
	spans := make([]Span, 0, len(parts))
	for i, p := range parts {
		if p == "" {
			continue
		}
		spans = append(spans, Span{Text: p, Bold: i%2 == 1})
	}
	return spans
}

func dayNumber(text string) int {
	m := dayRe.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

// cleanTitle strips markdown heading and bold markers and a trailing colon.
func cleanTitle(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "# ")
	s = strings.ReplaceAll(s, "**", "")
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ":")
	return strings.TrimSpace(s)
}
