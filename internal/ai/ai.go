package ai

import (
	"context"

	"github.com/zafaraftab1/CareerCopilot-AI/internal/jobs"
	"github.com/zafaraftab1/CareerCopilot-AI/internal/matching"
	"github.com/zafaraftab1/CareerCopilot-AI/internal/profile"
)

// Message is a generated application message.
type Message struct {
	Text string
	Raw  string
}

// MessageWriter composes the message sent along with an application.
type MessageWriter interface {
	Compose(ctx context.Context, p *profile.Profile, posting *jobs.Posting, result *matching.Result) (*Message, error)
}
