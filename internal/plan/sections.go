package plan

import "strings"

// SectionKind identifies one of the plan sections the model is asked to produce.
type SectionKind string

const (
	SectionOverview   SectionKind = "overview"
	SectionEstimation SectionKind = "estimation"
	SectionDaily      SectionKind = "daily"
	SectionRevision   SectionKind = "revision"
	SectionMotivation SectionKind = "motivation"
	SectionBurnout    SectionKind = "burnout"
	SectionExam       SectionKind = "exam"
)

// SectionSpec describes one section of the requested output format. Marker is the emoji the
// model must start the section heading with; it is also what the report parser splits on.
type SectionSpec struct {
	Kind         SectionKind
	Marker       string
	Title        string
	Instructions []string
}

// Sections is the output format, in the order the model is asked to write it.
var Sections = []SectionSpec{
	{
		Kind:   SectionOverview,
		Marker: "📅",
		Title:  "Study Duration Overview",
		Instructions: []string{
			"- Total days left until the exam",
			"- Number of active study days",
			"- Number of buffer / rest days",
			"- Overall preparation strategy (short sentence)",
		},
	},
	{
		Kind:   SectionEstimation,
		Marker: "⏳",
		Title:  "Smart Time Estimation",
		Instructions: []string{
			"- Each selected chapter with estimated hours",
			"- Mention whether the topic is Easy / Medium / Hard",
			"- Short reason for each time allocation",
		},
	},
	{
		Kind:   SectionDaily,
		Marker: "🗓️",
		Title:  "Daily Study Plan",
		Instructions: []string{
			"Day 1:",
			"- Chapter Name (Paper) (Time)",
			"",
			"... (continue until exam day)",
		},
	},
	{
		Kind:   SectionRevision,
		Marker: "🔁",
		Title:  "Revision Strategy",
		Instructions: []string{
			"- Specific days and topics to revisit.",
			"- Session duration.",
		},
	},
	{
		Kind:   SectionMotivation,
		Marker: "🌱",
		Title:  "Daily Motivation",
		Instructions: []string{
			"- One positive line per day.",
		},
	},
	{
		Kind:   SectionBurnout,
		Marker: "⚠️",
		Title:  "Burnout Prevention Tips",
		Instructions: []string{
			"- Break advice and catch-up strategy.",
		},
	},
	{
		Kind:   SectionExam,
		Marker: "🎯",
		Title:  "Exam-Focused Advice",
		Instructions: []string{
			"- Strategy for last 48 hours.",
			"- Final day mental prep.",
		},
	},
}

// SectionFor returns the spec whose Marker matches marker, ignoring a trailing
// U+FE0F variation selector on either side.
func SectionFor(marker string) (SectionSpec, bool) {
	base := BaseMarker(marker)
	for _, s := range Sections {
		if BaseMarker(s.Marker) == base {
			return s, true
		}
	}
	return SectionSpec{}, false
}

// BaseMarker strips the emoji presentation selector (U+FE0F) that models emit inconsistently.
func BaseMarker(marker string) string {
	for strings.HasSuffix(marker, "\ufe0f") {
		marker = strings.TrimSuffix(marker, "\ufe0f")
	}
	return marker
}
