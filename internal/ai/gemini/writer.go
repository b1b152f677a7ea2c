package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/zafaraftab1/CareerCopilot-AI/internal/ai"
	"github.com/zafaraftab1/CareerCopilot-AI/internal/jobs"
	"github.com/zafaraftab1/CareerCopilot-AI/internal/logger"
	"github.com/zafaraftab1/CareerCopilot-AI/internal/matching"
	"github.com/zafaraftab1/CareerCopilot-AI/internal/profile"
	"github.com/zafaraftab1/CareerCopilot-AI/internal/utils"
)

//go:embed prompt.md
var promptTemplate string

const (
	systemInstruction       = "You are a careful assistant that writes truthful job application messages and answers in JSON."
	defaultMaxLogLength     = 200
	defaultTone             = "Friendly"
	maxUserInstructionRunes = 500
	maxToneRunes            = 40
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
}

// PromptOverrides customise the generated message.
type PromptOverrides struct {
	Tone             string
	UserInstructions string
}

// Writer composes application messages with Gemini.
type Writer struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
	overrides PromptOverrides
}

var _ ai.MessageWriter = (*Writer)(nil)

func NewWriter(generator contentGenerator, maxLogLength int, logger *zap.Logger) *Writer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Writer{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (w *Writer) SetPromptOverrides(o PromptOverrides) {
	w.overrides = o
}

// Compose generates a message for posting. The match result keeps the model
// from claiming skills the candidate does not have.
func (w *Writer) Compose(ctx context.Context, p *profile.Profile, posting *jobs.Posting, result *matching.Result) (*ai.Message, error) {
	if p == nil {
		return nil, errors.New("profile is required")
	}
	if posting == nil {
		return nil, errors.New("posting is required")
	}
	if result == nil {
		return nil, errors.New("match result is required")
	}

	profileJSON, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal profile payload: %w", err)
	}

	postingJSON, err := json.MarshalIndent(posting, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal posting payload: %w", err)
	}

	matchJSON, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal match payload: %w", err)
	}

	prompt := w.buildPrompt(string(profileJSON), string(postingJSON), string(matchJSON))

	fields := logger.PostingFields(posting)
	w.logger.Debug("gemini generate content request", append(fields,
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, w.maxLogLen)),
	)...)

	raw, err := w.generator.GenerateContent(ctx, systemInstruction, prompt)
	if err != nil {
		return nil, err
	}

	w.logger.Debug("gemini generate content response", append(fields,
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, w.maxLogLen)),
	)...)

	text, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}

	return &ai.Message{Text: text, Raw: raw}, nil
}

func (w *Writer) buildPrompt(profileJSON, postingJSON, matchJSON string) string {
	tone := sanitizeLine(w.overrides.Tone, maxToneRunes)
	if tone == "" {
		tone = defaultTone
	}

	replacer := strings.NewReplacer(
		"{{TONE}}", tone,
		"{{USER_INSTRUCTIONS}}", sanitizeInstructions(w.overrides.UserInstructions),
		"{{PROFILE_JSON}}", profileJSON,
		"{{POSTING_JSON}}", postingJSON,
		"{{MATCH_JSON}}", matchJSON,
	)
	return replacer.Replace(promptTemplate)
}

// sanitizeLine collapses whitespace and neutralises square brackets so user
// input cannot pose as a prompt section header.
func sanitizeLine(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	s = strings.NewReplacer("[", "(", "]", ")").Replace(s)
	if runes := []rune(s); len(runes) > limit {
		s = string(runes[:limit])
	}
	return s
}

func sanitizeInstructions(s string) string {
	s = strings.TrimSpace(s)
	if runes := []rune(s); len(runes) > maxUserInstructionRunes {
		s = string(runes[:maxUserInstructionRunes])
	}

	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = sanitizeLine(line, maxUserInstructionRunes); line != "" {
			lines = append(lines, "  - "+line)
		}
	}
	if len(lines) == 0 {
		return "  - none"
	}
	return strings.Join(lines, "\n")
}

func parseResponse(raw string) (string, error) {
	cleaned := extractJSON(raw)

	var data struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return "", fmt.Errorf("parse gemini response: %w", err)
	}

	message := strings.TrimSpace(data.Message)
	if message == "" {
		return "", errors.New("gemini response has no message")
	}
	return message, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
