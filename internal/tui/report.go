package tui

import (
	"fmt"
	"strings"

	"github.com/karolswdev/careplan/internal/plan"
	"github.com/karolswdev/careplan/internal/report"
)

// RenderReport renders a parsed plan for the terminal. A report with no sections is
// printed as its raw text.
func RenderReport(rep report.Report) string {
	if len(rep.Sections) == 0 {
		return rep.Raw
	}
	var b strings.Builder
	for i, sec := range rep.Sections {
		heading := sec.Title
		if sec.Marker != "" {
			heading = sec.Marker + " " + sec.Title
		}
		style := SectionStyle
		if i == 0 {
			style = style.MarginTop(0)
		}
		b.WriteString(style.Render(heading))
		b.WriteString("\n")
		for _, line := range sec.Lines {
			b.WriteString(renderLine(line, "  "))
		}
		for _, day := range sec.Days {
			b.WriteString("  ")
			b.WriteString(DayStyle.Render(day.Heading))
			b.WriteString("\n")
			for _, line := range day.Lines {
				b.WriteString(renderLine(line, "    "))
			}
		}
	}
	return b.String()
}

func renderLine(line report.Line, indent string) string {
	var body strings.Builder
	for _, span := range line.Spans {
		if span.Bold || line.Kind == report.LineEmphasis {
			body.WriteString(BoldStyle.Render(span.Text))
		} else {
			body.WriteString(span.Text)
		}
	}
	switch line.Kind {
	case report.LineItem:
		return indent + CheckedStyle.Render("•") + " " + ItemStyle.Render(body.String()) + "\n"
	case report.LineDay:
		return indent + DayStyle.Render(body.String()) + "\n"
	case report.LineEmphasis:
		return indent + body.String() + "\n"
	default:
		return indent + TextStyle.Render(body.String()) + "\n"
	}
}

// RenderPlanning is the status line shown while a plan is being generated.
func RenderPlanning(provider string, chapters int) string {
	return fmt.Sprintf("%s Building your plan for %d chapter(s) with %s...",
		SpinnerStyle.Render("→"), chapters, SelectedStyle.Render(provider))
}

// RenderFailure renders a failure as a framed message, including the setup steps for a
// missing credential.
func RenderFailure(f plan.Failure) string {
	var b strings.Builder
	b.WriteString(ErrorStyle.Render(f.Title))
	b.WriteString("\n")
	b.WriteString(f.Message)
	for i, step := range f.Steps {
		fmt.Fprintf(&b, "\n  %d. %s", i+1, step)
	}
	if f.Detail != "" {
		b.WriteString("\n\n")
		b.WriteString(HelpStyle.Render(f.Detail))
	}
	return ErrorBoxStyle.Render(b.String())
}
