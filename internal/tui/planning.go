package tui

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/karolswdev/careplan/internal/plan"
)

// ErrPlanningAborted is returned when the user presses ctrl+c while a plan is generated.
var ErrPlanningAborted = errors.New("plan generation aborted")

// GenerateFunc produces a plan. It is run once by the Planning model.
type GenerateFunc func(ctx context.Context) (*plan.Result, error)

type planDoneMsg struct {
	result *plan.Result
	err    error
}

// Planning is a Bubble Tea model that shows a spinner while one plan is generated.
type Planning struct {
	ctx      context.Context
	cancel   context.CancelFunc
	spinner  spinner.Model
	generate GenerateFunc
	label    string

	result *plan.Result
	err    error
	done   bool
}

// NewPlanning creates the loading view. label is shown next to the spinner. ctrl+c
// cancels the context handed to generate.
func NewPlanning(ctx context.Context, label string, generate GenerateFunc) *Planning {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle
	ctx, cancel := context.WithCancel(ctx)
	return &Planning{ctx: ctx, cancel: cancel, spinner: s, generate: generate, label: label}
}

// Init implements tea.Model.
func (p *Planning) Init() tea.Cmd {
	run := func() tea.Msg {
		res, err := p.generate(p.ctx)
		return planDoneMsg{result: res, err: err}
	}
	return tea.Batch(p.spinner.Tick, run)
}

// Update implements tea.Model.
func (p *Planning) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case planDoneMsg:
		if p.done {
			return p, nil
		}
		p.result, p.err, p.done = msg.result, msg.err, true
		p.cancel()
		return p, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			p.err, p.done = ErrPlanningAborted, true
			p.cancel()
			return p, tea.Quit
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		return p, cmd
	}
	return p, nil
}

// View implements tea.Model.
func (p *Planning) View() string {
	if p.done {
		return ""
	}
	return fmt.Sprintf("%s %s\n", p.spinner.View(), p.label)
}

// Result returns what the generation produced.
func (p *Planning) Result() (*plan.Result, error) {
	return p.result, p.err
}

// RunPlanning shows a spinner on out until generate returns.
func RunPlanning(ctx context.Context, label string, generate GenerateFunc, in io.Reader, out io.Writer) (*plan.Result, error) {
	m := NewPlanning(ctx, label, generate)
	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithInput(in), tea.WithOutput(out))
	if _, err := p.Run(); err != nil {
		return nil, fmt.Errorf("running progress display: %w", err)
	}
	return m.Result()
}
