package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/interviewer/internal/capture"
	"github.com/spigell/interviewer/internal/interview"
	"github.com/spigell/interviewer/internal/logger"
	"github.com/spigell/interviewer/internal/report"
	"github.com/spigell/interviewer/internal/resume"
	"github.com/spigell/interviewer/internal/scoring"
	"github.com/spigell/interviewer/internal/session"
	"github.com/spigell/interviewer/internal/storage"
)

const (
	PromptAnswer = "Answer"
	PromptFinish = "Finish interview"
)

var errExit = errors.New("exit requested")

var turnPrompt = promptui.Select{
	Label: "Next?",
	Items: []string{PromptAnswer, PromptFinish},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an interview based on a resume",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("resume", "r", "", "path to the resume (.pdf, .txt or .md)")
	runCmd.Flags().Int("max-questions", 0, "maximum number of questions in the interview")

	viper.BindPFlag("resume", runCmd.Flags().Lookup("resume"))
	viper.BindPFlag("interview.max-questions", runCmd.Flags().Lookup("max-questions"))
}

// interviewRun holds everything one interview needs on the console.
type interviewRun struct {
	machine  *session.Machine
	store    *storage.Store
	capturer capture.Capturer
	speaker  capture.Speaker
	logger   *zap.Logger
}

// run is the main command for the cli.
func run(_ *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the interviewer", zap.String("version", version))

	if config == nil || config.Interview == nil || config.Storage == nil {
		logger.Fatal("config is required")
	}

	resumePath := viper.GetString("resume")
	if resumePath == "" {
		logger.Fatal("resume is required", zap.String("hint", "pass --resume with a .pdf, .txt or .md file"))
	}

	oracle, err := newOracle(ctx, config.AI, logger)
	if err != nil {
		logger.Fatal("creating ai oracle", zap.Error(err))
	}

	budget := config.Interview.MaxQuestions
	if budget <= 0 {
		budget = interview.DefaultBudget
	}

	generator := interview.NewGenerator(oracle, interview.GeneratorConfig{
		Budget:       budget,
		InitialCount: config.Interview.InitialQuestions,
		BatchSize:    config.Interview.AdaptiveBatch,
	}, logger)

	maxLogLength := 0
	if config.AI.Gemini != nil {
		maxLogLength = config.AI.Gemini.MaxLogLength
	}

	r := &interviewRun{
		machine: session.New(session.Deps{
			Questions: generator,
			Scorer:    scoring.NewScorer(oracle, logger, maxLogLength),
			Logger:    logger,
		}, session.Config{Budget: generator.Budget()}),
		store:    storage.NewStore(config.Storage.ResultsDir, logger),
		capturer: capture.NewConsole(),
		speaker:  capture.NewConsoleSpeaker(),
		logger:   logger,
	}

	text, extractErr := resume.Extract(resumePath)
	if err := r.machine.LoadResume(ctx, text, extractErr); err != nil {
		logger.Fatal("loading resume", zap.Error(err), zap.String("path", resumePath))
	}

	logger.Info("generating initial questions")
	if err := r.machine.Start(ctx); err != nil {
		logger.Fatal("starting interview", zap.Error(err))
	}
	r.save()

	if err := r.loop(ctx); err != nil {
		r.save()
		if errors.Is(err, errExit) {
			logger.Info("exiting", zap.String("reason", "interview interrupted, progress saved"))
			return
		}
		logger.Fatal("interview failed", zap.Error(err))
	}

	snap := r.machine.Snapshot()
	fmt.Print(report.Scores(snap.Questions, snap.Scores))
	if snap.Report != nil {
		fmt.Println()
		fmt.Print(report.Final(*snap.Report))
	}

	if path := r.save(); path != "" {
		logger.Info("interview results saved", zap.String("filename", path))
	}
}

func (r *interviewRun) loop(ctx context.Context) error {
	for r.machine.State() == session.StateActive {
		question, ok := r.machine.CurrentQuestion()
		if !ok {
			return fmt.Errorf("no current question in an active session")
		}

		p := r.machine.Progress()
		fmt.Printf("Question %d of %d (up to %d)\n", p.Current, p.Known, p.Budget)

		if err := r.speaker.Speak(ctx, question.Prompt()); err != nil {
			r.logger.Warn("speaking question", zap.Error(err))
		} else {
			r.machine.MarkSpoken()
		}

		_, action, err := turnPrompt.Run()
		if err != nil {
			return fmt.Errorf("%w: %v", errExit, err)
		}

		if err := r.handleAction(ctx, action, p.Current); err != nil {
			return err
		}

		r.save()
	}

	return nil
}

func (r *interviewRun) handleAction(ctx context.Context, action string, number int) error {
	switch action {
	case PromptAnswer:
		answer, err := capture.Answer(ctx, r.capturer, "Your answer")
		if err != nil {
			return fmt.Errorf("%w: %v", errExit, err)
		}

		r.logger.Info("scoring answer")
		score, err := r.machine.SubmitAnswer(ctx, answer)
		if err != nil {
			return fmt.Errorf("submitting answer: %w", err)
		}

		fmt.Print(report.ScoreLine(number, score))
		return nil
	case PromptFinish:
		r.logger.Info("generating final feedback")
		return r.machine.Finish(ctx)
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

// save persists the current snapshot and returns the file path, or "" when
// saving failed. Failures are logged; the interview goes on.
func (r *interviewRun) save() string {
	path, err := r.store.Save(storage.FromSession(r.machine.Snapshot()))
	if err != nil {
		r.logger.Warn("saving interview results", zap.Error(err))
		return ""
	}
	return path
}
