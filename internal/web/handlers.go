package web

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/karolswdev/careplan/internal/llm"
	"github.com/karolswdev/careplan/internal/plan"
	"github.com/karolswdev/careplan/internal/report"
	"github.com/karolswdev/careplan/internal/syllabus"
)

type chapterOption struct {
	Key     string
	Name    string
	Checked bool
}

type paperGroup struct {
	Name     string
	Chapters []chapterOption
}

type subjectSection struct {
	Name   string
	Icon   string
	Papers []paperGroup
	Count  int
}

type formView struct {
	Subjects    []subjectSection
	Selected    int
	ExamDate    string
	MinDate     string
	DailyHours  int
	MinHours    int
	MaxHours    int
	Confidence  string
	Confidences []string
	Error       string
}

type errorView struct {
	Failure      plan.Failure
	StartOverURL string
	RequestID    string
}

func (s *Server) formView(req plan.StudyRequest, errMsg string) formView {
	sel := syllabus.NewSelection(req.SelectedChapters...)
	v := formView{
		Selected:   sel.Len(),
		ExamDate:   req.ExamDate,
		MinDate:    s.planner.Today().Format(plan.DateLayout),
		DailyHours: req.DailyHours,
		MinHours:   plan.MinDailyHours,
		MaxHours:   plan.MaxDailyHours,
		Confidence: string(req.Confidence),
		Error:      errMsg,
	}
	for _, lvl := range plan.ConfidenceLevels {
		v.Confidences = append(v.Confidences, string(lvl))
	}
	for _, subj := range s.catalog.Subjects {
		section := subjectSection{Name: subj.Name, Icon: subj.Icon, Count: sel.CountBySubject(subj.Name)}
		for _, p := range subj.Papers {
			group := paperGroup{Name: p.Name}
			for _, name := range p.Chapters {
				ch := syllabus.SelectedChapter{Subject: subj.Name, Paper: p.Name, ChapterName: name}
				group.Chapters = append(group.Chapters, chapterOption{Key: ch.String(), Name: name, Checked: sel.Contains(ch)})
			}
			section.Papers = append(section.Papers, group)
		}
		v.Subjects = append(v.Subjects, section)
	}
	return v
}

func (s *Server) defaultRequest() plan.StudyRequest {
	return plan.StudyRequest{DailyHours: s.opts.DailyHours, Confidence: s.opts.Confidence}
}

func (s *Server) handleForm(c *gin.Context) {
	c.HTML(http.StatusOK, "form.html", s.formView(s.defaultRequest(), ""))
}

// parseForm builds a request from the posted form. Chapters that cannot be resolved are
// dropped from the request and reported through the returned error.
func (s *Server) parseForm(c *gin.Context) (plan.StudyRequest, error) {
	req := plan.StudyRequest{
		ExamDate:   strings.TrimSpace(c.PostForm("exam_date")),
		Confidence: plan.ConfidenceLevel(strings.ToLower(strings.TrimSpace(c.PostForm("confidence")))),
	}
	if hours, err := strconv.Atoi(strings.TrimSpace(c.PostForm("daily_hours"))); err == nil {
		req.DailyHours = hours
	}

	var firstErr error
	sel := syllabus.NewSelection()
	for _, spec := range c.PostFormArray("chapter") {
		ch, err := s.catalog.Resolve(spec)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if !sel.Contains(ch) {
			sel.Toggle(ch)
		}
	}
	req.SelectedChapters = sel.Items()
	return req, firstErr
}

func (s *Server) handleSubmit(c *gin.Context) {
	req, err := s.parseForm(c)
	if err == nil {
		var res *plan.Result
		res, err = s.generate(c.Request.Context(), req)
		if err == nil {
			s.renderResult(c, res)
			return
		}
	}

	if isInputError(err) {
		c.HTML(http.StatusUnprocessableEntity, "form.html", s.formView(req, err.Error()))
		return
	}

	status, _ := statusFor(err)
	log.Error().Err(err).Str("kind", llm.Classify(err).String()).Str("request_id", requestIDFrom(c)).Msg("Plan generation failed")
	c.HTML(status, "error.html", errorView{
		Failure:      plan.DescribeFailure(err, s.opts.ShowErrorDetails),
		StartOverURL: "/",
		RequestID:    requestIDFrom(c),
	})
}

func (s *Server) renderResult(c *gin.Context, res *plan.Result) {
	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	page := report.Page{
		Provider:     res.Provider,
		GeneratedAt:  res.GeneratedAt,
		ExamDate:     res.Request.ExamDate,
		StartOverURL: "/",
		Standalone:   true,
	}
	if err := report.WriteHTML(c.Writer, report.Parse(res.Plan), page); err != nil {
		log.Error().Err(err).Str("id", res.ID.String()).Msg("Failed to render plan")
	}
}

func (s *Server) rejectPage(c *gin.Context) {
	c.HTML(http.StatusTooManyRequests, "error.html", errorView{
		Failure: plan.Failure{
			Kind:    llm.FailureGeneric,
			Title:   "Too Many Requests",
			Message: ErrServerBusy.Error(),
		},
		StartOverURL: "/",
		RequestID:    requestIDFrom(c),
	})
}

func (s *Server) rejectAPI(c *gin.Context) {
	status, apiErr := newAPIError(ErrServerBusy, false)
	respondError(c, status, apiErr)
}

func (s *Server) handleAPIPlan(c *gin.Context) {
	var req plan.StudyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, &APIError{Code: ErrorBadRequest, Message: "request body must be a JSON study request", Details: err.Error()})
		return
	}

	res, err := s.generate(c.Request.Context(), req)
	if err != nil {
		if !isInputError(err) {
			log.Error().Err(err).Str("request_id", requestIDFrom(c)).Msg("Plan generation failed")
		}
		status, apiErr := newAPIError(err, s.opts.ShowErrorDetails)
		respondError(c, status, apiErr)
		return
	}
	c.JSON(http.StatusOK, newPlanResponse(res))
}

func (s *Server) handleSyllabus(c *gin.Context) {
	c.JSON(http.StatusOK, s.catalog)
}

func (s *Server) handleHealth(c *gin.Context) {
	provider := s.planner.Provider()
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"provider":   provider,
		"configured": provider != "",
	})
}

