package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/dmt/internal/generator"
	"github.com/verte-zerg/dmt/internal/model"
	"github.com/verte-zerg/dmt/internal/practice"
	"github.com/verte-zerg/dmt/internal/tui"
)

const (
	defaultLevel      = 0
	defaultWords      = 120
	defaultWeakTop    = 8
	defaultWeakFactor = 2.0
	defaultWeakWindow = 20
)

var (
	practiceUser       string
	practiceProctor    string
	practiceLevel      int
	practiceWords      int
	practiceDuration   int
	practiceFocusWeak  bool
	practiceWeakTop    int
	practiceWeakFactor float64
	practiceWeakWindow int
)

func newPracticeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "practice",
		Short: "Proctor a timed reading session in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runPracticeCmd,
	}
	cmd.Flags().StringVar(&practiceUser, "user", "", "email of the reader")
	cmd.Flags().StringVar(&practiceProctor, "proctor", "", "email of the teacher marking the words (default: the reader)")
	cmd.Flags().IntVar(&practiceLevel, "level", defaultLevel, "word level 1-3 (0 = all levels)")
	cmd.Flags().IntVar(&practiceWords, "words", defaultWords, "words per card")
	cmd.Flags().IntVar(&practiceDuration, "duration", 0, "session budget in seconds (default from config)")
	cmd.Flags().BoolVar(&practiceFocusWeak, "focus-weak", false, "bias the card toward misread words")
	cmd.Flags().IntVar(&practiceWeakTop, "weak-top", defaultWeakTop, "number of weak words to focus on")
	cmd.Flags().Float64Var(&practiceWeakFactor, "weak-factor", defaultWeakFactor, "weight factor for weak words")
	cmd.Flags().IntVar(&practiceWeakWindow, "weak-window", defaultWeakWindow, "number of recent sessions to compute weak words")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	settings, fileCfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	applyIntConfig(cmd, "level", &practiceLevel, fileCfg.Practice.Level)
	applyIntConfig(cmd, "words", &practiceWords, fileCfg.Practice.Words)
	applyBoolConfig(cmd, "focus-weak", &practiceFocusWeak, fileCfg.Practice.FocusWeak)
	applyIntConfig(cmd, "weak-top", &practiceWeakTop, fileCfg.Practice.WeakTop)
	applyFloatConfig(cmd, "weak-factor", &practiceWeakFactor, fileCfg.Practice.WeakFactor)
	applyIntConfig(cmd, "weak-window", &practiceWeakWindow, fileCfg.Practice.WeakWindow)

	cfg := model.PracticeConfig{
		UserEmail:       practiceUser,
		Level:           practiceLevel,
		Words:           practiceWords,
		DurationSeconds: practiceDuration,
		FocusWeak:       practiceFocusWeak,
		WeakTop:         practiceWeakTop,
		WeakFactor:      practiceWeakFactor,
		WeakWindow:      practiceWeakWindow,
	}
	if cfg.DurationSeconds == 0 {
		cfg.DurationSeconds = settings.DefaultDuration
	}
	if err := validatePracticeConfig(cfg); err != nil {
		return err
	}

	st, err := openStore(settings)
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := context.Background()
	reader, err := st.GetUserByEmail(ctx, cfg.UserEmail)
	if err != nil {
		return fmt.Errorf("failed to load reader %s: %w", cfg.UserEmail, err)
	}
	actor := reader
	if practiceProctor != "" {
		actor, err = st.GetUserByEmail(ctx, practiceProctor)
		if err != nil {
			return fmt.Errorf("failed to load proctor %s: %w", practiceProctor, err)
		}
		if !actor.Role.CanProctor() {
			return fmt.Errorf("%s is not a teacher or admin", practiceProctor)
		}
	}
	history, err := st.ListSessions(ctx, model.StatsConfig{UserID: reader.ID})
	if err != nil {
		logErrf("failed to load session history: %v\n", err)
	}

	// Structured logs would draw over the alternate screen.
	svc := practice.NewService(st, generator.New(), slog.New(slog.DiscardHandler), practice.Options{
		DefaultDuration: settings.DefaultDuration,
		WeakTop:         cfg.WeakTop,
		WeakFactor:      cfg.WeakFactor,
		WeakWindow:      cfg.WeakWindow,
	})
	out, err := svc.StartSession(ctx, practice.StartSessionInput{
		Actor:           actor,
		UserID:          reader.ID,
		Level:           cfg.Level,
		DurationSeconds: cfg.DurationSeconds,
		CardSize:        cfg.Words,
		FocusWeak:       cfg.FocusWeak,
	})
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	if cfg.FocusWeak && len(history) == 0 {
		logErrln("no sessions yet for weak-word focus; using normal generator")
	}

	m := tui.NewModel(svc, tui.Options{
		Actor:     actor,
		Reader:    reader,
		SessionID: out.Session.ID,
		Card:      out.Card,
		Budget:    time.Duration(out.Session.DurationBudgetSeconds) * time.Second,
		History:   history,
	})
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	if err := m.Err(); err != nil {
		return err
	}
	if rec, ok := m.Result(); ok {
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s: %d correct words, %.1f WPM, %.1f%% accuracy\n",
			reader.Name, rec.CorrectWords, rec.WPM, rec.Accuracy*100); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func validatePracticeConfig(cfg model.PracticeConfig) error {
	if cfg.Level < 0 || cfg.Level > 3 {
		return fmt.Errorf("--level must be between 0 and 3")
	}
	if cfg.Words <= 0 {
		return fmt.Errorf("--words must be > 0")
	}
	if cfg.DurationSeconds <= 0 {
		return fmt.Errorf("--duration must be > 0")
	}
	if cfg.WeakTop < 0 {
		return fmt.Errorf("--weak-top must be >= 0")
	}
	if cfg.WeakFactor < 0 {
		return fmt.Errorf("--weak-factor must be >= 0")
	}
	if cfg.WeakWindow < 0 {
		return fmt.Errorf("--weak-window must be >= 0")
	}
	return nil
}
