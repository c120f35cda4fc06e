package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/karolswdev/careplan/internal/config"
	"github.com/karolswdev/careplan/internal/llm"
	"github.com/karolswdev/careplan/internal/plan"
	"github.com/karolswdev/careplan/internal/report"
	"github.com/karolswdev/careplan/internal/syllabus"
	"github.com/karolswdev/careplan/internal/tui"
)

// Plan output formats accepted by --format.
const (
	formatText = "text"
	formatHTML = "html"
	formatJSON = "json"
	formatRaw  = "raw"
)

var planFormats = []string{formatText, formatHTML, formatJSON, formatRaw}

// generateOptions holds the flag values of the generate command.
type generateOptions struct {
	chapters    []string
	examDate    string
	hours       int
	confidence  string
	interactive bool
	format      string
	file        string
	showDetails bool
}

// SelectorFunc collects a study request interactively, starting from defaults.
type SelectorFunc func(ctx context.Context, catalog *syllabus.Catalog, defaults plan.StudyRequest, today time.Time, in io.Reader, out io.Writer) (plan.StudyRequest, error)

// ProgressFunc runs generate while showing label as progress on out.
type ProgressFunc func(ctx context.Context, label string, generate tui.GenerateFunc, in io.Reader, out io.Writer) (*plan.Result, error)

// generateCmdRunner holds the dependencies of the generate command.
type generateCmdRunner struct {
	configProvider ConfigProvider
	llmClient      llm.Client
	now            func() time.Time
	selectRequest  SelectorFunc
	showProgress   ProgressFunc
}

func newGenerateCmdRunner(cp ConfigProvider, client llm.Client) *generateCmdRunner {
	return &generateCmdRunner{
		configProvider: cp,
		llmClient:      client,
		now:            time.Now,
		selectRequest:  tui.RunSelector,
		showProgress:   tui.RunPlanning,
	}
}

func newGenerateCmd() *cobra.Command {
	return newGenerateCmdWith(func(cmd *cobra.Command, opts *generateOptions) error {
		provider, err := GetProvider(cmd.Context())
		if err != nil {
			printConfigHelp(cmd.ErrOrStderr(), err)
			return err
		}
		defer provider.Close()
		return newGenerateCmdRunner(provider.Config, provider.LLM).Run(cmd, opts)
	})
}

// newGenerateCmdWith builds the generate command around run.
func newGenerateCmdWith(run func(*cobra.Command, *generateOptions) error) *cobra.Command {
	opts := &generateOptions{}
	generateCmd := &cobra.Command{
		Use:     "generate",
		Aliases: []string{"gen", "plan"},
		Short:   "Generate a study plan for the chosen chapters",
		Long: `Builds a day-by-day study plan for the selected chapters with a single LLM
request. Chapters are given as Subject/Paper/Chapter (see 'careplan syllabus
--specs'), or picked in a terminal form with --interactive.

The plan is printed as styled text by default. Use --format html for a
printable page (open it in a browser and print to PDF), json for the plan
with its parsed sections, or raw for the model's text as-is.`,
		Example: `  careplan generate -c "Physics/1st Paper/Vectors" -c "Chemistry/2nd Paper/Organic Chemistry" --exam-date 2026-11-20
  careplan generate -i
  careplan generate -c "Physics/1st Paper/Vectors" --exam-date 2026-11-20 --format html -f plan.html`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	flags := generateCmd.Flags()
	flags.StringArrayVarP(&opts.chapters, "chapter", "c", nil, "Chapter to cover as Subject/Paper/Chapter (repeatable)")
	flags.StringVar(&opts.examDate, "exam-date", "", "Exam date (YYYY-MM-DD)")
	flags.IntVar(&opts.hours, "hours", plan.DefaultDailyHours, "Daily study hours (1-16, default from config)")
	flags.StringVar(&opts.confidence, "confidence", string(plan.ConfidenceMedium), "Confidence level: low, medium or high (default from config)")
	flags.BoolVarP(&opts.interactive, "interactive", "i", false, "Pick chapters and exam details in a terminal form")
	flags.StringVar(&opts.format, "format", formatText, "Plan output format (text|html|json|raw)")
	flags.StringVarP(&opts.file, "file", "f", "", "Write the plan to this file instead of stdout")
	flags.BoolVar(&opts.showDetails, "show-error-details", false, "Include the underlying error text when generation fails")

	return generateCmd
}

// loadedConfigs holds all configuration the generate command needs.
type loadedConfigs struct {
	appConfig    *config.AppConfig
	systemPrompt string
	notes        string
	catalog      *syllabus.Catalog
}

// printConfigHelp explains a configuration loading failure in user terms.
func printConfigHelp(w io.Writer, err error) {
	switch {
	case errors.Is(err, config.ErrConfigRead), errors.Is(err, config.ErrConfigParse):
		fmt.Fprintln(w, "Error reading or parsing config.yaml. Please check its format and permissions.")
	case errors.Is(err, config.ErrDotEnvRead):
		fmt.Fprintln(w, "Error reading a .env file. Please check its format and permissions.")
	case errors.Is(err, config.ErrConfigDirCreate), errors.Is(err, config.ErrConfigDirStat), errors.Is(err, config.ErrConfigDirNotDir):
		fmt.Fprintln(w, "Error accessing configuration directory. Please check permissions.")
	case errors.Is(err, config.ErrSystemPromptRead):
		fmt.Fprintln(w, "Error reading system_prompt.txt. Please check its permissions.")
	case errors.Is(err, config.ErrContextRead):
		fmt.Fprintln(w, "Error reading context.md. Please check its permissions.")
	case errors.Is(err, syllabus.ErrCatalogRead), errors.Is(err, syllabus.ErrCatalogParse), errors.Is(err, syllabus.ErrCatalogInvalid):
		fmt.Fprintln(w, "Error loading syllabus.yaml. Fix it or remove it to use the built-in syllabus.")
	case errors.Is(err, llm.ErrUnknownProvider):
		fmt.Fprintf(w, "Unsupported llm.provider in config.yaml. Use one of: %s.\n", strings.Join(llm.Providers, ", "))
		return
	default:
		fmt.Fprintln(w, "An unexpected error occurred loading the configuration.")
	}
	fmt.Fprintln(w, "You might need to run 'careplan config init'.")
}

// loadAllConfigs loads all required configuration files.
func loadAllConfigs(cp ConfigProvider, errOut io.Writer) (*loadedConfigs, error) {
	Log.Debug().Msg("Loading all configurations...")
	cfg, err := cp.LoadConfig()
	if err != nil {
		Log.Error().Err(err).Msg("Failed to load main configuration file (config.yaml)")
		printConfigHelp(errOut, err)
		return nil, err
	}

	systemPrompt, err := cp.LoadSystemPrompt()
	if err != nil {
		Log.Error().Err(err).Msg("Failed to load system prompt file (system_prompt.txt)")
		printConfigHelp(errOut, err)
		return nil, err
	}

	notes, err := cp.LoadContext()
	if err != nil {
		Log.Error().Err(err).Msg("Failed to load context file (context.md)")
		printConfigHelp(errOut, err)
		return nil, err
	}

	catalog, err := cp.LoadSyllabus()
	if err != nil {
		Log.Error().Err(err).Msg("Failed to load syllabus catalog")
		printConfigHelp(errOut, err)
		return nil, err
	}

	Log.Debug().Msg("All configurations loaded successfully.")
	return &loadedConfigs{
		appConfig:    cfg,
		systemPrompt: systemPrompt,
		notes:        notes,
		catalog:      catalog,
	}, nil
}

// Run executes the generate command: build the request, make the single model call and
// write the plan in the requested format.
func (r *generateCmdRunner) Run(cmd *cobra.Command, opts *generateOptions) error {
	ctx := cmd.Context()
	errOut := cmd.ErrOrStderr()

	format := strings.ToLower(opts.format)
	if !slices.Contains(planFormats, format) {
		return fmt.Errorf("unsupported plan format %q (expected one of %s)", opts.format, strings.Join(planFormats, ", "))
	}

	cfgs, err := loadAllConfigs(r.configProvider, errOut)
	if err != nil {
		return err
	}

	planner := plan.NewPlanner(r.llmClient,
		plan.WithSystemPrompt(cfgs.systemPrompt),
		plan.WithNotes(cfgs.notes),
		plan.WithClock(r.now),
	)
	today := planner.Today()

	req, err := r.buildRequest(cmd, opts, cfgs, today)
	if errors.Is(err, tui.ErrSelectionAborted) {
		Log.Info().Msg("User aborted chapter selection.")
		fmt.Fprintln(errOut, "Aborted.")
		return nil
	}
	if err != nil {
		return err
	}
	if err := plan.Validate(req, today); err != nil {
		return err
	}

	providerName := planner.Provider()
	if providerName == "" {
		providerName = cfgs.appConfig.LLM.Provider
	}
	generate := func(ctx context.Context) (*plan.Result, error) {
		return planner.Generate(ctx, req)
	}

	var res *plan.Result
	if opts.interactive {
		label := fmt.Sprintf("Building your plan for %d chapter(s) with %s...", len(req.SelectedChapters), providerName)
		res, err = r.showProgress(ctx, label, generate, cmd.InOrStdin(), errOut)
		if errors.Is(err, tui.ErrPlanningAborted) {
			Log.Info().Msg("User aborted plan generation.")
			fmt.Fprintln(errOut, "Aborted.")
			return nil
		}
	} else {
		fmt.Fprintln(errOut, tui.RenderPlanning(providerName, len(req.SelectedChapters)))
		res, err = generate(ctx)
	}
	if err != nil {
		fmt.Fprintln(errOut, tui.RenderFailure(plan.DescribeFailure(err, opts.showDetails)))
		return err
	}

	return writePlan(cmd.OutOrStdout(), errOut, res, format, opts.file)
}

// buildRequest turns the flags into a StudyRequest, falling back to the configured plan
// defaults for hours and confidence. In interactive mode the result pre-fills the form.
func (r *generateCmdRunner) buildRequest(cmd *cobra.Command, opts *generateOptions, cfgs *loadedConfigs, today time.Time) (plan.StudyRequest, error) {
	hours := cfgs.appConfig.Plan.DailyHours
	if cmd.Flags().Changed("hours") || hours == 0 {
		hours = opts.hours
	}
	confidence := cfgs.appConfig.Plan.Confidence
	if cmd.Flags().Changed("confidence") || confidence == "" {
		confidence = opts.confidence
	}
	level, err := plan.ParseConfidence(confidence)
	if err != nil {
		return plan.StudyRequest{}, err
	}

	chapters := make([]syllabus.SelectedChapter, 0, len(opts.chapters))
	for _, spec := range opts.chapters {
		ch, err := cfgs.catalog.Resolve(spec)
		if err != nil {
			return plan.StudyRequest{}, fmt.Errorf("%w (list chapters with 'careplan syllabus --specs')", err)
		}
		chapters = append(chapters, ch)
	}

	req := plan.StudyRequest{
		SelectedChapters: syllabus.NewSelection(chapters...).Items(),
		ExamDate:         strings.TrimSpace(opts.examDate),
		DailyHours:       hours,
		Confidence:       level,
	}
	if !opts.interactive {
		return req, nil
	}
	return r.selectRequest(cmd.Context(), cfgs.catalog, req, today, cmd.InOrStdin(), cmd.ErrOrStderr())
}

// planDocument is the JSON form of a generated plan.
type planDocument struct {
	*plan.Result
	Report report.Report `json:"report"`
}

// writePlan writes res to file, or to out when file is empty.
func writePlan(out, status io.Writer, res *plan.Result, format, file string) (err error) {
	w := out
	if file != "" {
		f, createErr := os.Create(file)
		if createErr != nil {
			return fmt.Errorf("failed to create output file: %w", createErr)
		}
		defer func() {
			if cerr := f.Close(); err == nil && cerr != nil {
				err = fmt.Errorf("failed to close output file: %w", cerr)
			}
		}()
		w = f
	}

	if err := formatPlan(w, res, format); err != nil {
		return err
	}
	if file != "" {
		fmt.Fprintf(status, "Plan written to %s\n", file)
	}
	return nil
}

// formatPlan renders res in one of planFormats.
func formatPlan(w io.Writer, res *plan.Result, format string) error {
	Log.Debug().Str("format", format).Msg("Processing output for generated plan")
	rep := report.Parse(res.Plan)
	switch format {
	case formatRaw:
		_, err := fmt.Fprintln(w, res.Plan)
		return err
	case formatHTML:
		return report.WriteHTML(w, rep, report.Page{
			Provider:    res.Provider,
			GeneratedAt: res.GeneratedAt,
			ExamDate:    res.Request.ExamDate,
			Standalone:  true,
		})
	case formatJSON:
		data, err := json.MarshalIndent(planDocument{Result: res, Report: rep}, "", "  ")
		if err != nil {
			return fmt.Errorf("plan generated (ID: %s), but failed to format result as JSON: %w", res.ID, err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	default:
		_, err := fmt.Fprint(w, tui.RenderReport(rep))
		return err
	}
}
