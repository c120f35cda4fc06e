package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/karolswdev/careplan/internal/plan"
	"github.com/karolswdev/careplan/internal/syllabus"
)

// ErrSelectionAborted is returned when the user quits the selector without submitting.
var ErrSelectionAborted = errors.New("selection aborted")

type step int

const (
	stepChapters step = iota
	stepDetails
)

type field int

const (
	fieldDate field = iota
	fieldHours
	fieldConfidence
	fieldCount
)

// Selector is a two-step Bubble Tea form: pick chapters, then exam details.
type Selector struct {
	catalog   *syllabus.Catalog
	selection *syllabus.Selection
	today     time.Time

	step    step
	subject int
	paper   int
	cursor  int

	date       textinput.Model
	hours      int
	confidence int
	focus      field

	err       string
	submitted bool
	aborted   bool
}

// NewSelector builds a selector over catalog. defaults pre-fills the form (chapters, date,
// hours, confidence); zero fields get the usual defaults.
func NewSelector(catalog *syllabus.Catalog, defaults plan.StudyRequest, today time.Time) *Selector {
	ti := textinput.New()
	ti.Placeholder = plan.DateLayout
	ti.CharLimit = len(plan.DateLayout)
	ti.Prompt = ""
	ti.SetValue(defaults.ExamDate)

	hours := defaults.DailyHours
	if hours == 0 {
		hours = plan.DefaultDailyHours
	}
	confidence := 1
	for i, c := range plan.ConfidenceLevels {
		if c == defaults.Confidence {
			confidence = i
		}
	}

	return &Selector{
		catalog:    catalog,
		selection:  syllabus.NewSelection(defaults.SelectedChapters...),
		today:      today,
		date:       ti,
		hours:      hours,
		confidence: confidence,
	}
}

// Init implements tea.Model.
func (s *Selector) Init() tea.Cmd {
	return textinput.Blink
}

// Request returns the submitted request, or ErrSelectionAborted.
func (s *Selector) Request() (plan.StudyRequest, error) {
	if !s.submitted {
		return plan.StudyRequest{}, ErrSelectionAborted
	}
	return s.request(), nil
}

func (s *Selector) request() plan.StudyRequest {
	return plan.StudyRequest{
		SelectedChapters: s.selection.Items(),
		ExamDate:         strings.TrimSpace(s.date.Value()),
		DailyHours:       s.hours,
		Confidence:       plan.ConfidenceLevels[s.confidence],
	}
}

func (s *Selector) currentSubject() syllabus.Subject {
	return s.catalog.Subjects[s.subject]
}

func (s *Selector) currentPaper() syllabus.Paper {
	return s.currentSubject().Papers[s.paper]
}

// Update implements tea.Model.
func (s *Selector) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		if s.step == stepDetails && s.focus == fieldDate {
			var cmd tea.Cmd
			s.date, cmd = s.date.Update(msg)
			return s, cmd
		}
		return s, nil
	}
	if key.String() == "ctrl+c" {
		s.aborted = true
		return s, tea.Quit
	}
	if s.step == stepChapters {
		return s.updateChapters(key)
	}
	return s.updateDetails(key)
}

func (s *Selector) updateChapters(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "left", "h":
		s.subject = (s.subject + len(s.catalog.Subjects) - 1) % len(s.catalog.Subjects)
		s.paper, s.cursor = 0, 0
	case "right", "l":
		s.subject = (s.subject + 1) % len(s.catalog.Subjects)
		s.paper, s.cursor = 0, 0
	case "tab":
		s.paper = (s.paper + 1) % len(s.currentSubject().Papers)
		s.cursor = 0
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(s.currentPaper().Chapters)-1 {
			s.cursor++
		}
	case " ", "x":
		subj, paper := s.currentSubject(), s.currentPaper()
		s.selection.Toggle(syllabus.SelectedChapter{
			Subject:     subj.Name,
			Paper:       paper.Name,
			ChapterName: paper.Chapters[s.cursor],
		})
		s.err = ""
	case "c":
		s.selection.Clear()
	case "enter":
		s.step = stepDetails
		s.err = ""
		return s, s.setFocus(fieldDate)
	}
	return s, nil
}

func (s *Selector) updateDetails(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "esc":
		s.step = stepChapters
		s.date.Blur()
		return s, nil
	case "tab", "down":
		return s, s.setFocus((s.focus + 1) % fieldCount)
	case "shift+tab", "up":
		return s, s.setFocus((s.focus + fieldCount - 1) % fieldCount)
	case "enter":
		if err := plan.Validate(s.request(), s.today); err != nil {
			s.err = err.Error()
			return s, nil
		}
		s.submitted = true
		return s, tea.Quit
	}

	switch s.focus {
	case fieldDate:
		var cmd tea.Cmd
		s.date, cmd = s.date.Update(key)
		s.err = ""
		return s, cmd
	case fieldHours:
		switch key.String() {
		case "left", "h", "-":
			if s.hours > plan.MinDailyHours {
				s.hours--
			}
		case "right", "l", "+":
			if s.hours < plan.MaxDailyHours {
				s.hours++
			}
		}
	case fieldConfidence:
		switch key.String() {
		case "left", "h":
			if s.confidence > 0 {
				s.confidence--
			}
		case "right", "l":
			if s.confidence < len(plan.ConfidenceLevels)-1 {
				s.confidence++
			}
		}
	}
	return s, nil
}

func (s *Selector) setFocus(f field) tea.Cmd {
	s.focus = f
	if f == fieldDate {
		return s.date.Focus()
	}
	s.date.Blur()
	return nil
}

// View implements tea.Model.
func (s *Selector) View() string {
	if s.submitted || s.aborted {
		return ""
	}
	var b strings.Builder
	b.WriteString(TitleStyle.Render("CarePlan"))
	b.WriteString(HelpStyle.Render(fmt.Sprintf("  %d chapter(s) selected", s.selection.Len())))
	b.WriteString("\n\n")
	if s.step == stepChapters {
		s.viewChapters(&b)
	} else {
		s.viewDetails(&b)
	}
	if s.err != "" {
		b.WriteString("\n")
		b.WriteString(WarningStyle.Render("! " + s.err))
		b.WriteString("\n")
	}
	return b.String()
}

func (s *Selector) viewChapters(b *strings.Builder) {
	tabs := make([]string, 0, len(s.catalog.Subjects))
	for i, subj := range s.catalog.Subjects {
		label := subj.Name
		if n := s.selection.CountBySubject(subj.Name); n > 0 {
			label = fmt.Sprintf("%s (%d)", label, n)
		}
		if i == s.subject {
			tabs = append(tabs, SelectedStyle.Render("["+label+"]"))
		} else {
			tabs = append(tabs, UnselectedStyle.Render(" "+label+" "))
		}
	}
	b.WriteString(strings.Join(tabs, " "))
	b.WriteString("\n")

	papers := make([]string, 0, len(s.currentSubject().Papers))
	for i, p := range s.currentSubject().Papers {
		if i == s.paper {
			papers = append(papers, SelectedStyle.Render(p.Name))
		} else {
			papers = append(papers, UnselectedStyle.Render(p.Name))
		}
	}
	b.WriteString(strings.Join(papers, UnselectedStyle.Render(" | ")))
	b.WriteString("\n\n")

	subj, paper := s.currentSubject(), s.currentPaper()
	for i, ch := range paper.Chapters {
		cursor := "  "
		if i == s.cursor {
			cursor = SelectedStyle.Render("> ")
		}
		box := "[ ]"
		if s.selection.Contains(syllabus.SelectedChapter{Subject: subj.Name, Paper: paper.Name, ChapterName: ch}) {
			box = CheckedStyle.Render("[x]")
		}
		fmt.Fprintf(b, "%s%s %s\n", cursor, box, ch)
	}
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render("←/→ subject • tab paper • ↑/↓ move • space toggle • c clear all • enter continue • ctrl+c quit"))
	b.WriteString("\n")
}

func (s *Selector) viewDetails(b *strings.Builder) {
	label := func(f field, text string) string {
		if s.focus == f {
			return SelectedStyle.Render("> " + text)
		}
		return UnselectedStyle.Render("  " + text)
	}

	b.WriteString(label(fieldDate, "Exam date:  "))
	b.WriteString(s.date.View())
	b.WriteString("\n")

	b.WriteString(label(fieldHours, "Daily hours:"))
	fmt.Fprintf(b, " ◀ %d ▶\n", s.hours)

	b.WriteString(label(fieldConfidence, "Confidence: "))
	for i, c := range plan.ConfidenceLevels {
		if i == s.confidence {
			b.WriteString(" " + SelectedStyle.Render("["+string(c)+"]"))
		} else {
			b.WriteString(" " + UnselectedStyle.Render(string(c)))
		}
	}
	b.WriteString("\n\n")
	b.WriteString(HelpStyle.Render("tab next field • ←/→ adjust • enter build plan • esc back • ctrl+c quit"))
	b.WriteString("\n")
}

// RunSelector runs the selector on in/out and returns the submitted request.
func RunSelector(ctx context.Context, catalog *syllabus.Catalog, defaults plan.StudyRequest, today time.Time, in io.Reader, out io.Writer) (plan.StudyRequest, error) {
	s := NewSelector(catalog, defaults, today)
	p := tea.NewProgram(s, tea.WithContext(ctx), tea.WithInput(in), tea.WithOutput(out))
	if _, err := p.Run(); err != nil {
		return plan.StudyRequest{}, fmt.Errorf("running chapter selector: %w", err)
	}
	return s.Request()
}
