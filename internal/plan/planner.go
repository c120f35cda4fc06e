package plan

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/karolswdev/careplan/internal/llm"
	"github.com/rs/zerolog/log"
)

// FallbackPlan is returned as the plan when the model answers with no text.
const FallbackPlan = "I couldn't build your plan. Try selecting fewer chapters or a later date!"

// Result is one generated plan together with the request that produced it.
type Result struct {
	ID          uuid.UUID    `json:"id"`
	Request     StudyRequest `json:"request"`
	Plan        string       `json:"plan"`
	Provider    string       `json:"provider"`
	GeneratedAt time.Time    `json:"generatedAt"`
}

// Planner turns a StudyRequest into a plan with a single model call.
type Planner struct {
	client       llm.Client
	systemPrompt string
	notes        string
	now          func() time.Time
}

// Option configures a Planner.
type Option func(*Planner)

// WithSystemPrompt overrides DefaultSystemPrompt.
func WithSystemPrompt(prompt string) Option {
	return func(p *Planner) { p.systemPrompt = prompt }
}

// WithNotes adds the student's notes to every prompt.
func WithNotes(notes string) Option {
	return func(p *Planner) { p.notes = notes }
}

// WithClock sets the source of "today".
func WithClock(now func() time.Time) Option {
	return func(p *Planner) { p.now = now }
}

// NewPlanner creates a Planner. client may be nil when no credential is configured;
// Generate then fails with llm.ErrAPIKeyMissing.
func NewPlanner(client llm.Client, opts ...Option) *Planner {
	p := &Planner{client: client, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Provider returns the name of the configured client, or "" when there is none.
func (p *Planner) Provider() string {
	if p.client == nil {
		return ""
	}
	return p.client.Name()
}

// Today returns the planner's current date.
func (p *Planner) Today() time.Time {
	return p.now()
}

// Generate validates req, builds the prompt and calls the model once. Validation errors are
// returned before any call is made. An empty answer becomes FallbackPlan. There is no retry.
func (p *Planner) Generate(ctx context.Context, req StudyRequest) (*Result, error) {
	today := p.now()
	if err := Validate(req, today); err != nil {
		log.Debug().Err(err).Msg("Study request rejected")
		return nil, err
	}
	if p.client == nil {
		log.Error().Msg("No LLM client configured")
		return nil, llm.ErrAPIKeyMissing
	}

	prompt := ConstructPrompt(req, p.systemPrompt, p.notes, today)
	log.Debug().Str("full_prompt", prompt).Msg("Constructed study plan prompt")

	text, err := p.client.GenerateStudyPlan(ctx, prompt)
	if errors.Is(err, llm.ErrLLMEmptyResponse) {
		text, err = "", nil
	}
	if err != nil {
		return nil, fmt.Errorf("generating plan with %s: %w", p.client.Name(), err)
	}
	if strings.TrimSpace(text) == "" {
		log.Warn().Str("provider", p.client.Name()).Msg("Model returned no text, using fallback plan")
		text = FallbackPlan
	}

	res := &Result{
		ID:          uuid.New(),
		Request:     req,
		Plan:        text,
		Provider:    p.client.Name(),
		GeneratedAt: today,
	}
	log.Info().Str("id", res.ID.String()).Str("provider", res.Provider).Int("chapters", len(req.SelectedChapters)).Msg("Generated study plan")
	return res, nil
}
