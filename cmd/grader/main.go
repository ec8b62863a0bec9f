package main

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/noah-isme/discussion-grader/internal/config"
	"github.com/noah-isme/discussion-grader/internal/repository"
	"github.com/noah-isme/discussion-grader/internal/service"
	"github.com/noah-isme/discussion-grader/pkg/ai"
)

var (
	baseDirFlag string
	verboseFlag bool
	quietFlag   bool
)

var rootCmd = &cobra.Command{
	Use:           "grader",
	Short:         "Grade student discussion submissions with an AI model",
	Long:          "grader manages discussion questions and grades student submissions against them using an AI model, storing everything as plain files.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&baseDirFlag, "base-dir", "", "directory holding discussion data (default from config)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "log errors only")

	rootCmd.AddCommand(discussionCmd)
	rootCmd.AddCommand(submissionCmd)
	rootCmd.AddCommand(canvasCmd)
	rootCmd.AddCommand(reportCmd)
}

// app wires configuration, storage, and services for one invocation. The AI
// client is constructed lazily so commands that never grade work without
// credentials.
type app struct {
	cfg         config.Config
	logger      zerolog.Logger
	validate    *validator.Validate
	discussions repository.DiscussionRepository
	submissions repository.SubmissionRepository
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if baseDirFlag != "" {
		cfg.BaseDir = baseDirFlag
	}

	level := zerolog.InfoLevel
	if verboseFlag {
		level = zerolog.DebugLevel
	}
	if quietFlag {
		level = zerolog.ErrorLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
	cfg.AI.Logger = logger

	return &app{
		cfg:         cfg,
		logger:      logger,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		discussions: repository.NewDiscussionRepository(cfg.BaseDir),
		submissions: repository.NewSubmissionRepository(cfg.BaseDir),
	}, nil
}

func (a *app) discussionService() service.DiscussionService {
	return service.NewDiscussionService(a.discussions, a.validate, a.logger)
}

func (a *app) reportService() service.ReportService {
	return service.NewReportService(a.discussions, a.submissions, a.logger)
}

func (a *app) gradingService() (service.GradingService, error) {
	client, err := ai.NewClient(a.cfg.AI)
	if err != nil {
		return nil, err
	}
	return service.NewGradingService(a.discussions, a.submissions, client, a.cfg.AI, a.logger), nil
}

func (a *app) canvasService() (service.CanvasService, error) {
	grader, err := a.gradingService()
	if err != nil {
		return nil, err
	}
	return service.NewCanvasService(a.discussions, grader, a.validate, a.logger), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
