// Package openai provides ChatSession / ChatFactory implementations backed
// by the OpenAI Chat Completions API (streaming + one-shot). Each session
// carries its own conversation history seeded with the dataset's raw content
// as a system message.
package openai

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/openai/openai-go"

	"github.com/hupe1980/datachat/chat"
	"github.com/hupe1980/datachat/core"
)

// Options configure the OpenAI chat adapter. Fields mirror a minimal subset
// of Chat Completion parameters; extend via functional options without
// breaking callers.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
}

// Factory creates dataset-bound sessions on a shared OpenAI client.
type Factory struct {
	client *openai.Client
	opts   Options
}

// NewFactory creates a Factory using the official client with ambient
// credentials.
func NewFactory(optFns ...func(o *Options)) *Factory {
	client := openai.NewClient()
	return NewFactoryFromClient(&client, optFns...)
}

// NewFactoryFromClient creates a Factory from an existing client.
func NewFactoryFromClient(client *openai.Client, optFns ...func(o *Options)) *Factory {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Factory{client: client, opts: opts}
}

// New implements core.ChatFactory; the returned session's history starts
// with a system message embedding the dataset.
func (f *Factory) New(_ context.Context, rawContent string) (core.ChatSession, error) {
	return &Session{
		client:  f.client,
		opts:    f.opts,
		history: []openai.ChatCompletionMessageParamUnion{openai.SystemMessage(chat.SystemPrompt(rawContent))},
	}, nil
}

// Session is a stateful conversation bound to one dataset.
type Session struct {
	client *openai.Client
	opts   Options

	mu      sync.Mutex
	history []openai.ChatCompletionMessageParamUnion
}

// Query implements the one-shot path. Dashboard tasks decode the response
// into validated chart specs; other tasks return the text verbatim.
func (s *Session) Query(ctx context.Context, query string, task core.Task) (*core.AnalysisResult, error) {
	user := openai.UserMessage(taskQuery(query, task))
	params := s.buildParams(s.snapshot(user))

	resp, err := s.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai api error: no choices returned")
	}
	text := resp.Choices[0].Message.Content
	s.remember(user, openai.AssistantMessage(text))

	if task == core.TaskDashboard {
		charts, err := chat.DecodeDashboard(text)
		if err != nil {
			return nil, err
		}
		return &core.AnalysisResult{Kind: core.KindDashboard, Charts: charts}, nil
	}
	return &core.AnalysisResult{Kind: core.KindText, Text: text}, nil
}

// QueryStream implements the streaming path, forwarding text deltas in
// arrival order. The completed reply is folded back into the session history
// so follow-up turns keep conversational context.
func (s *Session) QueryStream(ctx context.Context, query string, task core.Task) (<-chan string, <-chan error) {
	out := make(chan string, 32)
	errCh := make(chan error, 1)

	user := openai.UserMessage(taskQuery(query, task))
	params := s.buildParams(s.snapshot(user))

	go func() {
		defer close(out)
		defer close(errCh)

		stream := s.client.Chat.Completions.NewStreaming(ctx, params)
		var full strings.Builder
		for stream.Next() {
			ck := stream.Current()
			for _, ch := range ck.Choices {
				if ch.Delta.Content == "" {
					continue
				}
				full.WriteString(ch.Delta.Content)
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				case out <- ch.Delta.Content:
				}
			}
		}
		if err := stream.Err(); err != nil {
			errCh <- fmt.Errorf("openai streaming error: %w", err)
			return
		}
		s.remember(user, openai.AssistantMessage(full.String()))
	}()

	return out, errCh
}

func (s *Session) buildParams(messages []openai.ChatCompletionMessageParamUnion) openai.ChatCompletionNewParams {
	return openai.ChatCompletionNewParams{
		Messages:            messages,
		Model:               s.opts.Model,
		Temperature:         openai.Float(s.opts.Temperature),
		MaxCompletionTokens: openai.Int(s.opts.MaxCompletionTokens),
	}
}

// snapshot returns history plus the pending user message without committing
// it; failed turns leave the history untouched so they can be retried.
func (s *Session) snapshot(user openai.ChatCompletionMessageParamUnion) []openai.ChatCompletionMessageParamUnion {
	s.mu.Lock()
	defer s.mu.Unlock()
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(s.history)+1)
	messages = append(messages, s.history...)
	return append(messages, user)
}

func (s *Session) remember(turn ...openai.ChatCompletionMessageParamUnion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, turn...)
}

func taskQuery(query string, task core.Task) string {
	return chat.Instruction(task) + "\n\n" + query
}
