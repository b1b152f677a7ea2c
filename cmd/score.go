package cmd

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zafaraftab1/CareerCopilot-AI/internal/decision"
	"github.com/zafaraftab1/CareerCopilot-AI/internal/jobs"
	"github.com/zafaraftab1/CareerCopilot-AI/internal/matching"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Print the match result of postings without recording anything",
	Long: `Score a postings file (--postings) or a single description (--description)
against the candidate profile. The verdict ignores the application history and
the daily limit.`,
	Run: func(cmd *cobra.Command, _ []string) {
		score(cmd)
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringP("postings", "p", "", "json file with scraped postings")
	scoreCmd.Flags().String("description", "", "score a single job description")
	scoreCmd.Flags().String("experience", "", "experience requirement of the single description, e.g. \"3-5 years\"")
	addProfileFlags(scoreCmd)
}

type scoreView struct {
	Portal    jobs.Portal `json:"portal,omitempty"`
	PostingID string      `json:"portal_job_id,omitempty"`
	Title     string      `json:"title,omitempty"`
	*matching.Result
	Decision       decision.Decision `json:"decision"`
	DecisionReason decision.Reason   `json:"decision_reason"`
}

func score(cmd *cobra.Command) {
	s := newSession()
	s.overrideProfile(cmd)
	logger := s.logger

	postings, err := scoreInput(cmd, logger)
	if err != nil {
		logger.Fatal("getting postings", zap.Error(err))
	}

	views := make([]scoreView, 0, postings.Len())
	for _, posting := range postings.Items {
		result, err := s.scorer.Score(s.profile, posting)
		if err != nil {
			logger.Fatal("scoring posting", zap.Error(err), zap.Stringer("posting", posting.Key()))
		}

		verdict := s.gate.Decide(decision.Input{Score: result.Score})
		views = append(views, scoreView{
			Portal:         posting.Portal,
			PostingID:      posting.ID,
			Title:          posting.Title,
			Result:         result,
			Decision:       verdict.Decision,
			DecisionReason: verdict.Reason,
		})
	}

	if err := writeJSON(cmd.OutOrStdout(), views); err != nil {
		logger.Fatal("printing results", zap.Error(err))
	}
}

func scoreInput(cmd *cobra.Command, logger *zap.Logger) (*jobs.Postings, error) {
	description, _ := cmd.Flags().GetString("description")
	if strings.TrimSpace(description) != "" {
		experience, _ := cmd.Flags().GetString("experience")
		return &jobs.Postings{Items: []*jobs.Posting{{
			Description:        description,
			ExperienceRequired: experience,
		}}}, nil
	}

	path, _ := cmd.Flags().GetString("postings")
	if strings.TrimSpace(path) == "" {
		logger.Fatal("nothing to score", zap.String("hint", "pass --postings or --description"))
	}
	return getPostings(path, logger)
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
