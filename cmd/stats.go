package cmd

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zafaraftab1/CareerCopilot-AI/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print application statistics and the remaining daily quota",
	Run: func(cmd *cobra.Command, _ []string) {
		stats(cmd)
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded decisions, newest first",
	Run: func(cmd *cobra.Command, _ []string) {
		history(cmd)
	},
}

var markCmd = &cobra.Command{
	Use:   "mark <record-id> <applied|skipped|interview|rejected>",
	Short: "Update the status of a recorded application",
	Args:  cobra.ExactArgs(2),
	Run: func(_ *cobra.Command, args []string) {
		mark(args[0], args[1])
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(markCmd)

	historyCmd.Flags().String("status", "", "only list records with this status")
	historyCmd.Flags().Int("limit", 20, "maximum number of records, 0 lists all")
}

type statsView struct {
	*store.Stats
	DailyLimit     int `json:"daily_limit"`
	RemainingToday int `json:"remaining_today"`
}

func openStore(ctx context.Context, s *session) store.Store {
	st, err := store.Open(ctx, s.config.Store)
	if err != nil {
		s.logger.Fatal("opening the application store", zap.Error(err), zap.String("driver", s.config.Store.Driver))
	}
	return st
}

func stats(cmd *cobra.Command) {
	ctx := context.Background()
	s := newSession()

	st := openStore(ctx, s)
	defer st.Close()

	current, err := st.Stats(ctx, time.Now())
	if err != nil {
		s.logger.Fatal("getting statistics", zap.Error(err))
	}

	view := statsView{
		Stats:          current,
		DailyLimit:     s.gate.DailyLimit,
		RemainingToday: max(s.gate.DailyLimit-current.AppliedToday, 0),
	}

	if err := writeJSON(cmd.OutOrStdout(), view); err != nil {
		s.logger.Fatal("printing statistics", zap.Error(err))
	}
}

func history(cmd *cobra.Command) {
	ctx := context.Background()
	s := newSession()

	opts := store.ListOptions{}
	opts.Limit, _ = cmd.Flags().GetInt("limit")

	if raw, _ := cmd.Flags().GetString("status"); raw != "" {
		status, err := store.ParseStatus(raw)
		if err != nil {
			s.logger.Fatal("parsing status", zap.Error(err))
		}
		opts.Status = status
	}

	st := openStore(ctx, s)
	defer st.Close()

	records, err := st.List(ctx, opts)
	if err != nil {
		s.logger.Fatal("listing records", zap.Error(err))
	}

	if err := writeJSON(cmd.OutOrStdout(), records); err != nil {
		s.logger.Fatal("printing records", zap.Error(err))
	}
}

func mark(rawID, rawStatus string) {
	ctx := context.Background()
	s := newSession()

	id, err := uuid.Parse(rawID)
	if err != nil {
		s.logger.Fatal("parsing record id", zap.Error(err), zap.String("id", rawID))
	}

	status, err := store.ParseStatus(rawStatus)
	if err != nil {
		s.logger.Fatal("parsing status", zap.Error(err))
	}

	st := openStore(ctx, s)
	defer st.Close()

	if err := st.UpdateStatus(ctx, id, status); err != nil {
		s.logger.Fatal("updating status", zap.Error(err), zap.String("id", rawID))
	}

	s.logger.Info("status updated", zap.String("id", rawID), zap.String("status", string(status)))
}
