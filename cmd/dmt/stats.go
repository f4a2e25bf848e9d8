package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/dmt/internal/model"
	"github.com/verte-zerg/dmt/internal/stats"
)

const (
	defaultCurveWindow = 5
	defaultTopWords    = 10
)

var (
	statsUser        string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsTop         int
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show reading progress for a user",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsUser, "user", "", "email of the reader")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().IntVar(&statsTop, "top", defaultTopWords, "number of misread words to list")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if statsLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}

	settings, _, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	st, err := openStore(settings)
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := context.Background()
	user, err := st.GetUserByEmail(ctx, statsUser)
	if err != nil {
		return fmt.Errorf("failed to load user %s: %w", statsUser, err)
	}
	cfg := model.StatsConfig{
		UserID:      user.ID,
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
		TopWords:    statsTop,
	}
	report, err := stats.BuildReport(ctx, st, cfg)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintf(out, "%s (group %d)\n\n", user.Name, user.SchoolGroup); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return stats.Render(out, report, cfg, 0, stats.ShouldUseColor(os.Stdout))
}
