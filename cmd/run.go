package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/zafaraftab1/CareerCopilot-AI/internal/ai"
	"github.com/zafaraftab1/CareerCopilot-AI/internal/ai/gemini"
	"github.com/zafaraftab1/CareerCopilot-AI/internal/apply"
	"github.com/zafaraftab1/CareerCopilot-AI/internal/decision"
	"github.com/zafaraftab1/CareerCopilot-AI/internal/filtering"
	"github.com/zafaraftab1/CareerCopilot-AI/internal/jobs"
	applog "github.com/zafaraftab1/CareerCopilot-AI/internal/logger"
	"github.com/zafaraftab1/CareerCopilot-AI/internal/matching"
	"github.com/zafaraftab1/CareerCopilot-AI/internal/profile"
	"github.com/zafaraftab1/CareerCopilot-AI/internal/secrets"
	"github.com/zafaraftab1/CareerCopilot-AI/internal/store"
)

const (
	PromptYes                 = "Yes"
	PromptNo                  = "No"
	PromptBack                = "back"
	PromptReportByCompanies   = "Report by companies"
	PromptManualApply         = "Apply postings in manual mode"
	PromptAppendToExcludeFile = "Append all postings to exclude file"
	PromptPostingsToFile      = "Dump postings to file"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "Proceed?",
	Items: []string{PromptYes, PromptNo, PromptReportByCompanies, PromptManualApply, PromptPostingsToFile},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Score postings, decide which ones to apply to and record the decisions",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("postings", "p", "", "json file with scraped postings")
	runCmd.Flags().BoolP("do-not-exclude-applied", "f", false, "do not exclude postings if already applied")
	runCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for confirmation if found suitable postings")
	runCmd.Flags().StringP("exclude-file", "e", "", "special file with postings to exclude. Default is unset.")
	runCmd.Flags().Bool("dry-run", false, "decide and print without recording anything")
	addProfileFlags(runCmd)

	viper.BindPFlag("exclude-file", runCmd.Flags().Lookup("exclude-file"))
	viper.BindPFlag("postings", runCmd.Flags().Lookup("postings"))
}

// session holds everything a command needs once the config is loaded.
type session struct {
	config  *Config
	logger  *zap.Logger
	profile *profile.Profile
	scorer  *matching.Scorer
	gate    *decision.Gate
}

func newSession() *session {
	logger, err := applog.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(redacted(config), "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	p, err := config.loadProfile()
	if err != nil {
		logger.Fatal("loading the candidate profile", zap.Error(err), zap.String("profile_file", config.ProfileFile))
	}

	scorer, err := config.newScorer()
	if err != nil {
		logger.Fatal("building the scorer", zap.Error(err), zap.String("catalog_file", config.CatalogFile))
	}

	gate, err := config.gate()
	if err != nil {
		logger.Fatal("building the decision gate", zap.Error(err))
	}

	return &session{config: config, logger: logger, profile: p, scorer: scorer, gate: gate}
}

// overrideProfile applies the profile flags of cmd to the session profile.
func (s *session) overrideProfile(cmd *cobra.Command) {
	p, err := profileOverrides(cmd, s.profile)
	if err != nil {
		s.logger.Fatal("applying profile overrides", zap.Error(err))
	}
	if p != s.profile {
		s.logger.Info("profile overridden from flags",
			zap.Float64("experience_years", p.ExperienceYears),
			zap.Strings("specializations", p.Specializations),
			zap.Strings("categories", p.Categories()),
		)
	}
	s.profile = p
}

// redacted returns a copy of the config safe to log.
func redacted(c *Config) *Config {
	out := *c
	if out.Store.DSN != "" {
		out.Store.DSN = "<redacted>"
	}
	if c.AI != nil && c.AI.Gemini != nil {
		aiCfg := *c.AI
		gem := *c.AI.Gemini
		if gem.APIKey != "" {
			gem.APIKey = "<redacted>"
		}
		aiCfg.Gemini = &gem
		out.AI = &aiCfg
	}
	return &out
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()
	s := newSession()
	s.overrideProfile(cmd)
	logger, config := s.logger, s.config

	logger.Info("starting the careercopilot",
		zap.String("version", version),
		zap.String("catalog_version", s.scorer.Catalog().Version()),
		zap.Float64("threshold", s.gate.Threshold),
		zap.Int("daily_limit", s.gate.DailyLimit),
	)

	if strings.TrimSpace(config.Postings) == "" {
		logger.Fatal("postings file is required", zap.String("hint", "pass --postings or set the 'postings' key in the configuration file"))
	}

	postings, err := getPostings(config.Postings, logger)
	if err != nil {
		logger.Fatal("getting postings", zap.Error(err))
	}

	if postings.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no postings found"))
		return
	}

	st, err := store.Open(ctx, config.Store)
	if err != nil {
		logger.Fatal("opening the application store", zap.Error(err), zap.String("driver", config.Store.Driver))
	}
	defer st.Close()

	filters := prepareFilters(cmd, st, s)
	logFilters(logger, filters)

	filtered, err := filters.RunFilters(ctx, postings)
	if err != nil {
		logger.Fatal("filtering failed", zap.Error(err))
	}
	postings = filtered

	if postings.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no postings left after filters"))
		return
	}

	writer, err := newMessageWriter(ctx, config.AI, logger)
	if err != nil {
		logger.Warn("skipping AI generated messages", zap.Error(err))
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")

	applier, err := apply.New(apply.Config{
		Message:     config.Apply.Message,
		ExcludeFile: config.ExcludeFile,
		DryRun:      dryRun,
	}, apply.Deps{
		Store:   st,
		Gate:    s.gate,
		Profile: s.profile,
		Writer:  writer,
		Logger:  logger,
	})
	if err != nil {
		logger.Fatal("building the applier", zap.Error(err))
	}

	outcomes, err := applier.Plan(ctx, postings, filters.Results())
	if err != nil {
		logger.Fatal("deciding on postings", zap.Error(err))
	}

	pending := outcomes
	logger.Info("postings decided", zap.Int("apply", countApply(pending)), zap.Int("total", len(pending)))

	autoApprove, _ := cmd.Flags().GetBool("auto-approve")

	for {
		action := PromptYes
		if !autoApprove {
			_, action, err = prompt.Run()
			if err != nil {
				logger.Fatal("exiting", zap.Error(err))
			}
		}

		logger.Info("current list of postings", zap.Int("count", len(pending)))

		pending, err = handleAction(ctx, action, cmd.OutOrStdout(), applier, logger, config, pending)
		if err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(ctx context.Context, action string, out io.Writer, applier *apply.Applier, logger *zap.Logger, config *Config, pending []*apply.Outcome) ([]*apply.Outcome, error) {
	switch action {
	case PromptYes:
		if err := submit(ctx, out, applier, logger, pending); err != nil {
			return pending, err
		}
		return nil, errExit
	case PromptNo:
		logger.Info("exiting", zap.String("reason", "got no from prompt"))
		return pending, errExit
	case PromptManualApply:
		return manualApply(ctx, out, applier, logger, config, pending)
	case PromptReportByCompanies:
		pretty, _ := json.MarshalIndent(postingsOf(pending).ReportByCompany(), "", "  ")
		logger.Info(string(pretty), zap.Int("postings count", len(pending)))
		return pending, nil
	case PromptPostingsToFile:
		filename, err := postingsOf(pending).DumpToTmpFile()
		if err != nil {
			return pending, fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return pending, nil
	default:
		return pending, fmt.Errorf("invalid action: %s", action)
	}
}

func submit(ctx context.Context, out io.Writer, applier *apply.Applier, logger *zap.Logger, outcomes []*apply.Outcome) error {
	summary, err := applier.Submit(ctx, outcomes)
	if err != nil {
		return err
	}

	if err := printOutcomes(out, outcomes); err != nil {
		return err
	}

	logger.Info("successfully processed postings",
		zap.Int("applied", summary.Applied),
		zap.Int("skipped", summary.Skipped),
	)
	return nil
}

func manualApply(ctx context.Context, out io.Writer, applier *apply.Applier, logger *zap.Logger, config *Config, pending []*apply.Outcome) ([]*apply.Outcome, error) {
	for {
		items := make([]string, 0, len(pending)+2)
		for _, o := range pending {
			if o.Decision != decision.Apply {
				continue
			}
			items = append(items, fmt.Sprintf("%s %s / %s / %.1f / %s",
				o.Posting.Key(), o.Posting.Title, o.Posting.Company, o.Score, o.Posting.URL,
			))
		}

		excludeFile := strings.TrimSpace(config.ExcludeFile)
		if excludeFile != "" && len(pending) != 0 {
			items = append(items, PromptAppendToExcludeFile)
		}

		postingPrompt := promptui.Select{
			Label: "Choose a posting and press ENTER",
			Items: append(items, PromptBack),
		}

		_, selected, err := postingPrompt.Run()
		if err != nil {
			return pending, err
		}

		switch selected {
		case PromptBack:
			return pending, nil
		case PromptAppendToExcludeFile:
			if err := postingsOf(pending).ToExcluded("excluded manually").AppendToFile(excludeFile); err != nil {
				return pending, err
			}
			logger.Info("appended to exclude file", zap.String("filename", excludeFile))
			return nil, nil
		default:
			key := strings.Split(selected, " ")[0]

			idx := -1
			for i, o := range pending {
				if o.Posting.Key().String() == key {
					idx = i
					break
				}
			}
			if idx < 0 {
				return pending, fmt.Errorf("there is no such posting %s", key)
			}

			if err := submit(ctx, out, applier, logger, pending[idx:idx+1]); err != nil {
				return pending, err
			}

			pending = append(pending[:idx:idx], pending[idx+1:]...)
		}
	}
}

// outcomeView is the printed form of an outcome.
type outcomeView struct {
	Portal    jobs.Portal `json:"portal"`
	PostingID string      `json:"portal_job_id"`
	Title     string      `json:"title"`
	Company   string      `json:"company"`
	*apply.Outcome
}

func printOutcomes(out io.Writer, outcomes []*apply.Outcome) error {
	views := make([]outcomeView, 0, len(outcomes))
	for _, o := range outcomes {
		views = append(views, outcomeView{
			Portal:    o.Posting.Portal,
			PostingID: o.Posting.ID,
			Title:     o.Posting.Title,
			Company:   o.Posting.Company,
			Outcome:   o,
		})
	}

	return writeJSON(out, views)
}

func postingsOf(outcomes []*apply.Outcome) *jobs.Postings {
	p := &jobs.Postings{Items: make([]*jobs.Posting, 0, len(outcomes))}
	for _, o := range outcomes {
		p.Items = append(p.Items, o.Posting)
	}
	return p
}

func countApply(outcomes []*apply.Outcome) int {
	n := 0
	for _, o := range outcomes {
		if o.Decision == decision.Apply {
			n++
		}
	}
	return n
}

// getPostings loads the postings file. Postings that fail validation are
// logged and skipped.
func getPostings(path string, logger *zap.Logger) (*jobs.Postings, error) {
	postings, rejected, err := jobs.LoadFromFile(path)
	if err != nil {
		return nil, err
	}

	for _, err := range rejected {
		logger.Warn("skipping invalid posting", zap.Error(err))
	}

	logger.Info("getting postings", zap.Int("count", postings.Len()), zap.Int("rejected", len(rejected)))
	return postings, nil
}

func newMessageWriter(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (ai.MessageWriter, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		File:  cfg.Gemini.APIKeyFile,
		Value: cfg.Gemini.APIKey,
		Env:   "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	genLogger := logger.With(
		append(applog.ProviderFields("gemini", cfg.Gemini.Model),
			zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries),
		)...,
	)

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, genLogger)
	if err != nil {
		return nil, err
	}

	writer := gemini.NewWriter(generator, cfg.Gemini.MaxLogLength, genLogger)
	writer.SetPromptOverrides(gemini.PromptOverrides{
		Tone:             cfg.Gemini.Tone,
		UserInstructions: cfg.Gemini.Instructions,
	})

	return writer, nil
}

func prepareFilters(cmd *cobra.Command, st store.Store, s *session) *filtering.Filtering {
	config, logger := s.config, s.logger

	steps := []filtering.Filter{
		filtering.NewDuplicates(logger),
		prepareAppliedHistoryFilter(cmd, st, logger),
		filtering.NewExcludedCompanies(config.Filters.ExcludedCompanies, logger),
		filtering.NewExcludeFile(config.ExcludeFile, logger),
		filtering.NewPreferredLocations(config.Filters.PreferredLocations, logger),
		filtering.NewMatch(&filtering.MatchFilterConfig{
			MinimumScore: config.Filters.MinimumScore,
			Workers:      config.Filters.Workers,
		}, &filtering.MatchFilterDeps{
			Logger:      logger,
			Scorer:      s.scorer,
			Profile:     s.profile,
			ExcludeFile: config.ExcludeFile,
		}),
	}

	return filtering.New(steps, logger)
}

func logFilters(logger *zap.Logger, filters *filtering.Filtering) {
	for _, status := range filters.Describe() {
		logger.Debug("filter configured",
			zap.String("name", status.Name),
			zap.Bool("enabled", status.Enabled),
			zap.String("reason", status.Reason),
			zap.Any("details", status.Details),
		)
	}
}

func prepareAppliedHistoryFilter(cmd *cobra.Command, st store.Store, logger *zap.Logger) filtering.Filter {
	ignore := false
	if cmd != nil {
		flag := cmd.Flag("do-not-exclude-applied")
		if flag != nil && strings.EqualFold(flag.Value.String(), "true") {
			ignore = true
		}
	}

	return filtering.NewAppliedHistory(&filtering.AppliedHistoryConfig{Ignore: ignore}, &filtering.AppliedHistoryDeps{
		History: st,
		Logger:  logger,
	})
}
