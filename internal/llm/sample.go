package llm

import (
	"context"
	"strings"
	"sync"
)

// samplePlan is a complete, well-formed plan in the requested section format.
const samplePlan = `📅 Study Duration Overview:
- Total days left until the exam: 6
- Active study days: 5
- Buffer / rest days: 1
- Strategy: Tackle the hardest chapters first, then revise in short focused sessions.

⏳ Smart Time Estimation:
- ভেক্টর (1st Paper): 4 hours - **Hard** - many problem types to practise.
- গতিবিদ্যা (1st Paper): 3 hours - Medium - formulas are short but need drilling.
- জৈব রসায়ন (2nd Paper): 5 hours - **Hard** - reactions take time to remember.

🗓️ Daily Study Plan:
**Day 1:**
- ভেক্টর (1st Paper) (2 hours)
- গতিবিদ্যা (1st Paper) (2 hours)
**Day 2:**
- ভেক্টর (1st Paper) (2 hours)
- জৈব রসায়ন (2nd Paper) (2 hours)
**Day 3:**
- জৈব রসায়ন (2nd Paper) (3 hours)
- গতিবিদ্যা (1st Paper) (1 hour)
**Day 4:** Buffer day
- Rest, then catch up on anything unfinished.
**Day 5:**
- Mixed practice questions (4 hours)
**Day 6:**
- Light revision of formulas and reactions (2 hours)

🔁 Revision Strategy:
- Day 5: revisit ভেক্টর and জৈব রসায়ন problem sets.
- Sessions of 45 minutes with 10 minute breaks.

🌱 Daily Motivation:
- Day 1: Every expert was once a beginner.
- Day 2: Small steps every day add up.
- Day 3: You are closer than you think.

⚠️ Burnout Prevention Tips:
- Take a short walk after every second session.
- If you fall behind, move the topic to the buffer day instead of studying late.

🎯 Exam-Focused Advice:
- Last 48 hours: only revise, no new chapters.
- Final day: sleep early and keep your materials ready.
`

// SampleClient returns a fixed plan without calling any service. It backs the "mock" provider.
type SampleClient struct {
	// Plan overrides the built-in sample when set.
	Plan string
	// Err, when set, is returned instead of a plan.
	Err error

	mu      sync.Mutex
	prompts []string
}

// NewSampleClient returns a SampleClient with the built-in plan.
func NewSampleClient() *SampleClient {
	return &SampleClient{}
}

// Name implements llm.Client.
func (s *SampleClient) Name() string { return ProviderMock }

// GenerateStudyPlan implements llm.Client.
func (s *SampleClient) GenerateStudyPlan(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", ErrLLMPromptEmpty
	}
	s.mu.Lock()
	s.prompts = append(s.prompts, prompt)
	s.mu.Unlock()
	if s.Err != nil {
		return "", s.Err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.Plan != "" {
		return s.Plan, nil
	}
	return samplePlan, nil
}

// Prompts returns every prompt received so far.
func (s *SampleClient) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.prompts...)
}
