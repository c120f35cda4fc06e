package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/karolswdev/careplan/internal/llm"
	"github.com/karolswdev/careplan/internal/plan"
	"github.com/karolswdev/careplan/internal/web"
)

// serveOptions holds the flag values of the serve command.
type serveOptions struct {
	addr        string
	maxInflight int
	showDetails bool
}

func newServeCmd() *cobra.Command {
	opts := &serveOptions{}
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the CarePlan web interface",
		Long: `Starts the web interface: a two-step form for choosing chapters and exam
details, a printable plan page, a JSON API (POST /api/plan, GET /api/syllabus)
and a websocket endpoint (/ws/plan) for clients that want a "planning" status
before the plan arrives. The server stops gracefully on Ctrl+C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, err := GetProvider(cmd.Context())
			if err != nil {
				printConfigHelp(cmd.ErrOrStderr(), err)
				return err
			}
			defer provider.Close()

			srv, addr, err := buildServer(cmd, provider.Config, provider.LLM, opts)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(cmd.OutOrStdout(), "CarePlan is listening on %s (press Ctrl+C to stop)\n", addr)
			return srv.Run(ctx, addr)
		},
	}
	serveCmd.Flags().StringVar(&opts.addr, "addr", "", "Listen address (default from config, :8080)")
	serveCmd.Flags().IntVar(&opts.maxInflight, "max-inflight", 0, "Plans generated at once before answering 429 (default from config)")
	serveCmd.Flags().BoolVar(&opts.showDetails, "show-error-details", false, "Include raw provider errors on error pages and API responses")
	return serveCmd
}

// buildServer loads the configuration and builds the web server. Flags that were set
// override the config values. It returns the server and the address to listen on.
func buildServer(cmd *cobra.Command, cp ConfigProvider, client llm.Client, opts *serveOptions) (*web.Server, string, error) {
	cfgs, err := loadAllConfigs(cp, cmd.ErrOrStderr())
	if err != nil {
		return nil, "", err
	}
	server := cfgs.appConfig.Server

	addr := server.Address
	if opts.addr != "" {
		addr = opts.addr
	}
	if addr == "" {
		addr = ":8080"
	}
	maxInflight := server.MaxInflight
	if cmd.Flags().Changed("max-inflight") {
		maxInflight = opts.maxInflight
	}
	showDetails := server.ShowErrorDetails
	if cmd.Flags().Changed("show-error-details") {
		showDetails = opts.showDetails
	}
	confidence, err := plan.ParseConfidence(cfgs.appConfig.Plan.Confidence)
	if err != nil {
		Log.Warn().Err(err).Msg("Ignoring invalid plan.confidence default")
		confidence = plan.ConfidenceMedium
	}

	if zerolog.GlobalLevel() > zerolog.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	planner := plan.NewPlanner(client,
		plan.WithSystemPrompt(cfgs.systemPrompt),
		plan.WithNotes(cfgs.notes),
	)
	srv, err := web.NewServer(planner, cfgs.catalog, web.Options{
		ShowErrorDetails: showDetails,
		MaxInflight:      maxInflight,
		DailyHours:       cfgs.appConfig.Plan.DailyHours,
		Confidence:       confidence,
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to build web server: %w", err)
	}
	if planner.Provider() == "" {
		Log.Warn().Msg("No LLM API key configured; plan requests will show setup instructions until one is set.")
	}
	Log.Info().Str("addr", addr).Int("max_inflight", maxInflight).Str("provider", cfgs.appConfig.LLM.Provider).Msg("Web server configured")
	return srv, addr, nil
}
