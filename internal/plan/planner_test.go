package plan

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karolswdev/careplan/internal/llm"
)

func fixedClock() time.Time { return today }

func TestPlanner_Generate(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		client := &llm.SampleClient{Plan: "📅 Study Duration Overview:\n- 6 days"}
		p := NewPlanner(client, WithClock(fixedClock), WithSystemPrompt("Be kind."), WithNotes("Weak at math."))

		res, err := p.Generate(context.Background(), validRequest())
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, res.ID)
		assert.Equal(t, "📅 Study Duration Overview:\n- 6 days", res.Plan)
		assert.Equal(t, llm.ProviderMock, res.Provider)
		assert.Equal(t, today, res.GeneratedAt)
		assert.Equal(t, validRequest(), res.Request)

		prompts := client.Prompts()
		require.Len(t, prompts, 1, "exactly one model call per submission")
		assert.Contains(t, prompts[0], "Be kind.")
		assert.Contains(t, prompts[0], "Weak at math.")
	})

	t.Run("Validation_Failure_Makes_No_Call", func(t *testing.T) {
		client := llm.NewSampleClient()
		p := NewPlanner(client, WithClock(fixedClock))

		req := validRequest()
		req.SelectedChapters = nil
		_, err := p.Generate(context.Background(), req)
		assert.ErrorIs(t, err, ErrNoChapters)

		req = validRequest()
		req.ExamDate = ""
		_, err = p.Generate(context.Background(), req)
		assert.ErrorIs(t, err, ErrNoExamDate)

		assert.Empty(t, client.Prompts())
	})

	t.Run("Nil_Client_Is_Missing_Key", func(t *testing.T) {
		p := NewPlanner(nil, WithClock(fixedClock))
		_, err := p.Generate(context.Background(), validRequest())
		assert.ErrorIs(t, err, llm.ErrAPIKeyMissing)
		assert.Equal(t, llm.FailureCredentialMissing, llm.Classify(err))
		assert.Equal(t, "", p.Provider())
	})

	t.Run("Empty_Text_Uses_Fallback", func(t *testing.T) {
		for _, client := range []*llm.SampleClient{
			{Plan: "   \n"},
			{Err: llm.ErrLLMEmptyResponse},
		} {
			p := NewPlanner(client, WithClock(fixedClock))
			res, err := p.Generate(context.Background(), validRequest())
			require.NoError(t, err)
			assert.Equal(t, FallbackPlan, res.Plan)
		}
	})

	t.Run("Client_Error_Is_Wrapped", func(t *testing.T) {
		boom := errors.New("connection reset")
		client := &llm.SampleClient{Err: boom}
		p := NewPlanner(client, WithClock(fixedClock))
		_, err := p.Generate(context.Background(), validRequest())
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, llm.FailureGeneric, llm.Classify(err))
		assert.Len(t, client.Prompts(), 1, "no retry after a failure")
	})
}
