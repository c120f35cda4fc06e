package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karolswdev/careplan/internal/llm"
	"github.com/karolswdev/careplan/internal/plan"
	"github.com/karolswdev/careplan/internal/syllabus"
)

var today = time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

const (
	vectorKey  = "Physics/1st Paper/ভেক্টর"
	organicKey = "Chemistry/2nd Paper/জৈব রসায়ন"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, client llm.Client, opts Options) *Server {
	t.Helper()
	planner := plan.NewPlanner(client, plan.WithClock(func() time.Time { return today }))
	s, err := NewServer(planner, syllabus.Default(), opts)
	require.NoError(t, err)
	return s
}

func postForm(s *Server, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/plan", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func postJSON(s *Server, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/plan", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func validForm() url.Values {
	return url.Values{
		"chapter":     {vectorKey, organicKey},
		"exam_date":   {"2026-10-20"},
		"daily_hours": {"5"},
		"confidence":  {"high"},
	}
}

const validJSON = `{
  "selectedChapters": [
    {"subject": "Physics", "paper": "1st Paper", "chapterName": "ভেক্টর"}
  ],
  "examDate": "2026-10-20",
  "dailyHours": 4,
  "confidence": "medium"
}`

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	return body
}

func TestForm(t *testing.T) {
	s := newTestServer(t, llm.NewSampleClient(), Options{})

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "ভেক্টর")
	assert.Contains(t, body, "Higher Math")
	assert.Contains(t, body, `min="2026-10-14"`, "exam date cannot be before today")
	assert.Contains(t, body, `value="4"`, "daily hours default to 4")
	assert.Contains(t, body, `value="medium" checked`)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestSubmit(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		client := llm.NewSampleClient()
		s := newTestServer(t, client, Options{})

		w := postForm(s, validForm())

		require.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, "Daily Study Plan")
		assert.Contains(t, body, "window.print()")
		assert.Contains(t, body, `href="/"`, "result page offers Start Over")
		require.Len(t, client.Prompts(), 1, "exactly one model call per submission")
		assert.Contains(t, client.Prompts()[0], "[Physics - 1st Paper: ভেক্টর], [Chemistry - 2nd Paper: জৈব রসায়ন]")
		assert.Contains(t, client.Prompts()[0], "high")
	})

	t.Run("NoChapters", func(t *testing.T) {
		client := llm.NewSampleClient()
		s := newTestServer(t, client, Options{})
		form := validForm()
		form.Del("chapter")

		w := postForm(s, form)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), plan.ErrNoChapters.Error())
		assert.Empty(t, client.Prompts(), "no call is made for an invalid request")
	})

	t.Run("NoDateKeepsSelection", func(t *testing.T) {
		client := llm.NewSampleClient()
		s := newTestServer(t, client, Options{})
		form := validForm()
		form.Set("exam_date", "")

		w := postForm(s, form)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, plan.ErrNoExamDate.Error())
		assert.Contains(t, body, `value="`+vectorKey+`" checked`)
		assert.Contains(t, body, `value="high" checked`)
		assert.Empty(t, client.Prompts())
	})

	t.Run("UnknownChapter", func(t *testing.T) {
		s := newTestServer(t, llm.NewSampleClient(), Options{})
		form := validForm()
		form.Add("chapter", "Physics/1st Paper/Quantum Gravity")

		w := postForm(s, form)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "chapter not found in syllabus")
	})

	t.Run("MissingKey", func(t *testing.T) {
		s := newTestServer(t, nil, Options{})

		w := postForm(s, validForm())

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, "API Key Required")
		assert.Contains(t, body, "careplan config set-key")
	})

	t.Run("InvalidKey", func(t *testing.T) {
		s := newTestServer(t, &llm.SampleClient{Err: fmt.Errorf("gemini: %w", llm.ErrAPIKeyInvalid)}, Options{})

		w := postForm(s, validForm())

		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid API Key")
	})

	t.Run("GenericFailureWithDetails", func(t *testing.T) {
		s := newTestServer(t, &llm.SampleClient{Err: fmt.Errorf("dial tcp: connection refused")}, Options{ShowErrorDetails: true})

		w := postForm(s, validForm())

		assert.Equal(t, http.StatusBadGateway, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, "Connection Failed")
		assert.Contains(t, body, "connection refused")
	})

	t.Run("GenericFailureWithoutDetails", func(t *testing.T) {
		s := newTestServer(t, &llm.SampleClient{Err: fmt.Errorf("dial tcp: connection refused")}, Options{})

		w := postForm(s, validForm())

		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.NotContains(t, w.Body.String(), "connection refused")
	})
}

func TestAPIPlan(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		s := newTestServer(t, llm.NewSampleClient(), Options{})

		w := postJSON(s, validJSON)

		require.Equal(t, http.StatusOK, w.Code)
		var body PlanResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.NotEmpty(t, body.ID)
		assert.Equal(t, llm.ProviderMock, body.Provider)
		assert.NotEmpty(t, body.Plan)
		assert.True(t, body.Report.Structured())
		assert.Contains(t, w.Body.String(), `"kind":"item"`)
	})

	testCases := []struct {
		name       string
		client     llm.Client
		body       string
		expectCode int
		expectErr  string
	}{
		{
			name:       "Malformed_JSON",
			client:     llm.NewSampleClient(),
			body:       `{"selectedChapters": [`,
			expectCode: http.StatusBadRequest,
			expectErr:  ErrorBadRequest,
		},
		{
			name:       "No_Chapters",
			client:     llm.NewSampleClient(),
			body:       `{"examDate": "2026-10-20", "dailyHours": 4, "confidence": "medium"}`,
			expectCode: http.StatusUnprocessableEntity,
			expectErr:  ErrorValidation,
		},
		{
			name:       "Unknown_Chapter",
			client:     llm.NewSampleClient(),
			body:       strings.Replace(validJSON, "ভেক্টর", "Nope", 1),
			expectCode: http.StatusUnprocessableEntity,
			expectErr:  ErrorValidation,
		},
		{
			name:       "Missing_Key",
			client:     nil,
			body:       validJSON,
			expectCode: http.StatusServiceUnavailable,
			expectErr:  ErrorAPIKeyMissing,
		},
		{
			name:       "Invalid_Key",
			client:     &llm.SampleClient{Err: llm.ErrAPIKeyInvalid},
			body:       validJSON,
			expectCode: http.StatusBadGateway,
			expectErr:  ErrorAPIKeyInvalid,
		},
		{
			name:       "Generic_Failure",
			client:     &llm.SampleClient{Err: fmt.Errorf("upstream timeout")},
			body:       validJSON,
			expectCode: http.StatusBadGateway,
			expectErr:  ErrorGenerationFailed,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer(t, tc.client, Options{})

			w := postJSON(s, tc.body)

			assert.Equal(t, tc.expectCode, w.Code)
			body := decodeError(t, w)
			assert.Equal(t, tc.expectErr, body.Error.Code)
			assert.NotEmpty(t, body.Error.Message)
			assert.Equal(t, w.Header().Get(RequestIDHeader), body.RequestID)
		})
	}
}

func TestSyllabusAndHealth(t *testing.T) {
	s := newTestServer(t, llm.NewSampleClient(), Options{})

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/syllabus", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var catalog syllabus.Catalog
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &catalog))
	assert.Equal(t, syllabus.Default().ChapterCount(), catalog.ChapterCount())

	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","provider":"mock","configured":true}`, w.Body.String())
}

func TestRequestIDIsPropagated(t *testing.T) {
	s := newTestServer(t, llm.NewSampleClient(), Options{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

// blockingClient holds every call until release is closed.
type blockingClient struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingClient) Name() string { return "blocking" }

func (b *blockingClient) GenerateStudyPlan(ctx context.Context, prompt string) (string, error) {
	b.started <- struct{}{}
	select {
	case <-b.release:
		return "🎯 Exam-Focused Advice\n- Sleep well", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestInflightLimit(t *testing.T) {
	client := &blockingClient{started: make(chan struct{}, 1), release: make(chan struct{})}
	s := newTestServer(t, client, Options{MaxInflight: 1})

	first := make(chan *httptest.ResponseRecorder, 1)
	go func() { first <- postJSON(s, validJSON) }()
	<-client.started

	w := postJSON(s, validJSON)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, ErrorBusy, decodeError(t, w).Error.Code)

	w = postForm(s, validForm())
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "Too Many Requests")

	close(client.release)
	assert.Equal(t, http.StatusOK, (<-first).Code)

	go func() { <-client.started }()
	assert.Equal(t, http.StatusOK, postJSON(s, validJSON).Code, "slot is released after the first request")
}
