package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/karolswdev/careplan/internal/plan"
	"github.com/karolswdev/careplan/internal/report"
	"github.com/karolswdev/careplan/internal/syllabus"
)

//go:embed templates/*.html
var templateFS embed.FS

const shutdownTimeout = 10 * time.Second

// Options configures the web server.
type Options struct {
	// ShowErrorDetails adds the raw provider error to "Connection Failed" pages and API errors.
	ShowErrorDetails bool
	// MaxInflight is the number of plans generated at once; further requests get 429.
	MaxInflight int
	// DailyHours and Confidence pre-fill the form.
	DailyHours int
	Confidence plan.ConfidenceLevel
}

// Server serves the study plan form, the JSON API and the websocket endpoint.
type Server struct {
	planner *plan.Planner
	catalog *syllabus.Catalog
	opts    Options
	limiter *inflightLimiter
	engine  *gin.Engine
}

// NewServer wires the routes. planner must not be nil; a planner without a client still
// serves the form and reports the missing credential on submit.
func NewServer(planner *plan.Planner, catalog *syllabus.Catalog, opts Options) (*Server, error) {
	if catalog == nil {
		catalog = syllabus.Default()
	}
	if opts.DailyHours == 0 {
		opts.DailyHours = plan.DefaultDailyHours
	}
	if opts.Confidence == "" {
		opts.Confidence = plan.ConfidenceMedium
	}

	tmpl, err := loadTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		planner: planner,
		catalog: catalog,
		opts:    opts,
		limiter: newInflightLimiter(opts.MaxInflight),
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestID(), accessLog())
	r.SetHTMLTemplate(tmpl)

	r.GET("/", s.handleForm)
	r.POST("/plan", s.limiter.middleware(s.rejectPage), s.handleSubmit)
	r.GET("/healthz", s.handleHealth)
	r.GET("/ws/plan", s.handlePlanSocket)

	api := r.Group("/api")
	{
		api.GET("/syllabus", s.handleSyllabus)
		api.POST("/plan", s.limiter.middleware(s.rejectAPI), s.handleAPIPlan)
	}

	s.engine = r
	return s, nil
}

func loadTemplates() (*template.Template, error) {
	tmpl, err := report.Templates()
	if err != nil {
		return nil, fmt.Errorf("loading report templates: %w", err)
	}
	tmpl, err = tmpl.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("loading web templates: %w", err)
	}
	return tmpl, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("provider", s.planner.Provider()).Msg("CarePlan web server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("web server: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down web server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("web server shutdown: %w", err)
	}
	return nil
}

// generate checks req against the catalog and runs the planner.
func (s *Server) generate(ctx context.Context, req plan.StudyRequest) (*plan.Result, error) {
	if err := plan.Validate(req, s.planner.Today()); err != nil {
		return nil, err
	}
	for _, ch := range req.SelectedChapters {
		if !s.catalog.Has(ch) {
			return nil, fmt.Errorf("%w: %s", syllabus.ErrUnknownChapter, ch)
		}
	}
	return s.planner.Generate(ctx, req)
}
