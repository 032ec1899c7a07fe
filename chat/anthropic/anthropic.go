// Package anthropic provides ChatSession / ChatFactory implementations
// backed by the Anthropic Messages API. The dataset context travels as the
// system prompt; each session keeps its own message history.
package anthropic

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/hupe1980/datachat/chat"
	"github.com/hupe1980/datachat/core"
)

// Options configures the Anthropic chat adapter (model id, temperature, max
// tokens, API key).
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Factory creates dataset-bound sessions on a shared Anthropic client.
type Factory struct {
	client *anthropic.Client
	opts   Options
}

// NewFactory creates a Factory using the official client.
func NewFactory(optFns ...func(o *Options)) *Factory {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)

	return &Factory{client: &client, opts: opts}
}

// NewFactoryFromClient creates a Factory from an existing client.
func NewFactoryFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Factory {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Factory{client: client, opts: opts}
}

func defaultOptions() Options {
	return Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
	}
}

// New implements core.ChatFactory.
func (f *Factory) New(_ context.Context, rawContent string) (core.ChatSession, error) {
	return &Session{
		client: f.client,
		opts:   f.opts,
		system: []anthropic.TextBlockParam{{Text: chat.SystemPrompt(rawContent)}},
	}, nil
}

// Session is a stateful conversation bound to one dataset.
type Session struct {
	client *anthropic.Client
	opts   Options
	system []anthropic.TextBlockParam

	mu      sync.Mutex
	history []anthropic.MessageParam
}

// Query implements the one-shot path. Dashboard tasks decode the response
// into validated chart specs; other tasks return the text verbatim.
func (s *Session) Query(ctx context.Context, query string, task core.Task) (*core.AnalysisResult, error) {
	user := anthropic.NewUserMessage(anthropic.NewTextBlock(taskQuery(query, task)))
	params := s.buildParams(s.snapshot(user))

	resp, err := s.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic api error: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.AsText().Text)
		}
	}
	reply := text.String()
	s.remember(user, anthropic.NewAssistantMessage(anthropic.NewTextBlock(reply)))

	if task == core.TaskDashboard {
		charts, err := chat.DecodeDashboard(reply)
		if err != nil {
			return nil, err
		}
		return &core.AnalysisResult{Kind: core.KindDashboard, Charts: charts}, nil
	}
	return &core.AnalysisResult{Kind: core.KindText, Text: reply}, nil
}

// QueryStream implements the streaming path, forwarding content block text
// deltas in arrival order.
func (s *Session) QueryStream(ctx context.Context, query string, task core.Task) (<-chan string, <-chan error) {
	out := make(chan string, 32)
	errCh := make(chan error, 1)

	user := anthropic.NewUserMessage(anthropic.NewTextBlock(taskQuery(query, task)))
	params := s.buildParams(s.snapshot(user))

	go func() {
		defer close(out)
		defer close(errCh)

		stream := s.client.Messages.NewStreaming(ctx, params)
		var full strings.Builder
		for stream.Next() {
			event := stream.Current()
			switch eventVariant := event.AsAny().(type) {
			case anthropic.ContentBlockDeltaEvent:
				switch deltaVariant := eventVariant.Delta.AsAny().(type) {
				case anthropic.TextDelta:
					if deltaVariant.Text == "" {
						continue
					}
					full.WriteString(deltaVariant.Text)
					select {
					case <-ctx.Done():
						errCh <- ctx.Err()
						return
					case out <- deltaVariant.Text:
					}
				}
			}
		}
		if err := stream.Err(); err != nil {
			errCh <- fmt.Errorf("anthropic streaming error: %w", err)
			return
		}
		s.remember(user, anthropic.NewAssistantMessage(anthropic.NewTextBlock(full.String())))
	}()

	return out, errCh
}

func (s *Session) buildParams(messages []anthropic.MessageParam) anthropic.MessageNewParams {
	return anthropic.MessageNewParams{
		Model:       s.opts.Model,
		Messages:    messages,
		System:      s.system,
		MaxTokens:   s.opts.MaxTokens,
		Temperature: anthropic.Float(s.opts.Temperature),
	}
}

// snapshot returns history plus the pending user message without committing
// it; failed turns leave the history untouched so they can be retried.
func (s *Session) snapshot(user anthropic.MessageParam) []anthropic.MessageParam {
	s.mu.Lock()
	defer s.mu.Unlock()
	messages := make([]anthropic.MessageParam, 0, len(s.history)+1)
	messages = append(messages, s.history...)
	return append(messages, user)
}

func (s *Session) remember(turn ...anthropic.MessageParam) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, turn...)
}

func taskQuery(query string, task core.Task) string {
	return chat.Instruction(task) + "\n\n" + query
}
