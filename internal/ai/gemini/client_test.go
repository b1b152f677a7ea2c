package gemini

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

type scriptedReply struct {
	resp *genai.GenerateContentResponse
	err  error
}

// scriptedChats hands out one chat per Create call, replaying replies in order.
type scriptedChats struct {
	mu      sync.Mutex
	replies []scriptedReply
	configs []*genai.GenerateContentConfig
	sent    []string
}

func (s *scriptedChats) Create(_ context.Context, _ string, config *genai.GenerateContentConfig, _ []*genai.Content) (chatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.replies) == 0 {
		return nil, errors.New("no scripted reply left")
	}
	reply := s.replies[0]
	s.replies = s.replies[1:]
	s.configs = append(s.configs, config)
	return &scriptedChat{owner: s, reply: reply}, nil
}

type scriptedChat struct {
	owner *scriptedChats
	reply scriptedReply
}

func (c *scriptedChat) SendMessage(_ context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	c.owner.mu.Lock()
	defer c.owner.mu.Unlock()
	for _, part := range parts {
		c.owner.sent = append(c.owner.sent, part.Text)
	}
	return c.reply.resp, c.reply.err
}

func reply(text string) scriptedReply {
	return scriptedReply{resp: &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
		}},
	}}
}

func failure(code int, message string) scriptedReply {
	return scriptedReply{err: genai.APIError{Code: code, Message: message}}
}

func recordWaits(t *testing.T) *[]time.Duration {
	t.Helper()
	var waits []time.Duration
	original := wait
	wait = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}
	t.Cleanup(func() { wait = original })
	return &waits
}

func TestGenerateContent(t *testing.T) {
	tests := []struct {
		name       string
		replies    []scriptedReply
		maxRetries int
		system     string
		wantOutput string
		wantErr    bool
		wantCalls  int
		wantWaits  []time.Duration
	}{
		{
			name:       "first attempt succeeds",
			replies:    []scriptedReply{reply("  cover message \n")},
			maxRetries: 3,
			system:     "be brief",
			wantOutput: "cover message",
			wantCalls:  1,
		},
		{
			name:       "server error is retried with backoff",
			replies:    []scriptedReply{failure(http.StatusServiceUnavailable, ""), reply("second try")},
			maxRetries: 3,
			system:     "be brief",
			wantOutput: "second try",
			wantCalls:  2,
			wantWaits:  []time.Duration{retryBackoff},
		},
		{
			name:       "retries exhausted",
			replies:    []scriptedReply{failure(http.StatusInternalServerError, ""), failure(http.StatusInternalServerError, "")},
			maxRetries: 2,
			wantErr:    true,
			wantCalls:  2,
			wantWaits:  []time.Duration{retryBackoff},
		},
		{
			name:       "short quota delay is honoured",
			replies:    []scriptedReply{failure(http.StatusTooManyRequests, "Please retry in 4s."), reply("ok")},
			maxRetries: 2,
			wantOutput: "ok",
			wantCalls:  2,
			wantWaits:  []time.Duration{4 * time.Second},
		},
		{
			name:       "long quota delay gives up",
			replies:    []scriptedReply{failure(http.StatusTooManyRequests, "quota exhausted, retry after 90 seconds")},
			maxRetries: 3,
			wantErr:    true,
			wantCalls:  1,
		},
		{
			name:       "client error is not retried",
			replies:    []scriptedReply{failure(http.StatusBadRequest, "bad prompt")},
			maxRetries: 3,
			wantErr:    true,
			wantCalls:  1,
		},
		{
			name:       "empty response is an error",
			replies:    []scriptedReply{reply("   ")},
			maxRetries: 1,
			wantErr:    true,
			wantCalls:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			waits := recordWaits(t)
			chats := &scriptedChats{replies: tt.replies}
			g := &Generator{chats: chats, model: "gemini-test", maxRetries: tt.maxRetries, logger: zap.NewNop()}

			output, err := g.GenerateContent(context.Background(), tt.system, "write a message")
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantOutput, output)
			}

			assert.Len(t, chats.configs, tt.wantCalls)
			assert.Equal(t, tt.wantWaits, *waits)
			for _, text := range chats.sent {
				assert.Equal(t, "write a message", text)
			}
			for _, config := range chats.configs {
				if tt.system == "" {
					assert.Nil(t, config.SystemInstruction)
					continue
				}
				require.NotNil(t, config.SystemInstruction)
				assert.Equal(t, tt.system, config.SystemInstruction.Parts[0].Text)
			}
		})
	}
}

func TestGenerateContentKeepsLastAPIError(t *testing.T) {
	recordWaits(t)
	chats := &scriptedChats{replies: []scriptedReply{
		failure(http.StatusBadGateway, ""),
		failure(http.StatusInternalServerError, "still down"),
	}}
	g := &Generator{chats: chats, model: "gemini-test", maxRetries: 2, logger: zap.NewNop()}

	_, err := g.GenerateContent(context.Background(), "", "hello")

	var apiErr genai.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Code)
}

func TestGenerateContentStopsWhenWaitIsCancelled(t *testing.T) {
	original := wait
	wait = func(context.Context, time.Duration) error { return context.Canceled }
	t.Cleanup(func() { wait = original })

	chats := &scriptedChats{replies: []scriptedReply{failure(http.StatusInternalServerError, ""), reply("never")}}
	g := &Generator{chats: chats, model: "gemini-test", maxRetries: 3, logger: zap.NewNop()}

	_, err := g.GenerateContent(context.Background(), "", "hello")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, chats.configs, 1)
}

func TestGenerateContentRejectsInvalidInput(t *testing.T) {
	g := &Generator{chats: &scriptedChats{}, model: "gemini-test", maxRetries: 1, logger: zap.NewNop()}
	_, err := g.GenerateContent(context.Background(), "sys", "  \n ")
	assert.Error(t, err)

	var uninitialized *Generator
	_, err = uninitialized.GenerateContent(context.Background(), "sys", "hello")
	assert.Error(t, err)
	assert.Empty(t, uninitialized.Model())
}

func TestRetryDelay(t *testing.T) {
	delay, ok := retryDelay(genai.APIError{Code: http.StatusTooManyRequests, Message: "retry in 7.5s"}, 1)
	assert.True(t, ok)
	assert.Equal(t, 7500*time.Millisecond, delay)

	delay, ok = retryDelay(genai.APIError{Code: http.StatusTooManyRequests}, 2)
	assert.True(t, ok)
	assert.Equal(t, 2*retryBackoff, delay)

	_, ok = retryDelay(errors.New("network is unreachable"), 1)
	assert.False(t, ok)
}
