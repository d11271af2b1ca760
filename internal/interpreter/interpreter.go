// Package interpreter wraps the OpenAI chat-completion API behind the two
// operations the soundscape pipeline needs: streaming fragments for the chat
// surface and one accumulated blob for structured scene generation.
package interpreter

import (
	"context"
	"errors"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"

	"github.com/sonara/soundscape/internal/config"
	"github.com/sonara/soundscape/internal/interpreter/streamutil"
)

// Interpreter holds the one-time-constructed OpenAI client. Model id,
// temperature and max tokens come from static configuration.
type Interpreter struct {
	client openai.Client
	cfg    config.InterpreterConfig
}

// New creates an interpreter using the provided API key and optional base URL.
func New(cfg config.InterpreterConfig) (*Interpreter, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("interpreter: api key required")
	}

	requestOpts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if strings.TrimSpace(cfg.BaseURL) != "" {
		requestOpts = append(requestOpts, option.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")))
	}
	if cfg.Timeout > 0 {
		requestOpts = append(requestOpts, option.WithRequestTimeout(cfg.Timeout))
	}

	return &Interpreter{client: openai.NewClient(requestOpts...), cfg: cfg}, nil
}

// Complete sends the prompt and returns the accumulated model output.
func (i *Interpreter) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := i.client.Chat.Completions.New(ctx, i.buildParams(prompt))
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("interpreter: empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}

// Stream sends the prompt and forwards completion deltas as text fragments.
// A mid-stream upstream failure is delivered as a final "Error: <message>"
// fragment on the same channel, matching the chat surface contract.
func (i *Interpreter) Stream(ctx context.Context, prompt string) (<-chan string, func() error, error) {
	stream := i.client.Chat.Completions.NewStreaming(ctx, i.buildParams(prompt))
	if err := stream.Err(); err != nil {
		stream.Close()
		return nil, nil, err
	}

	forward := func(ctx context.Context, yield streamutil.YieldFunc) {
		for stream.Next() {
			chunk := stream.Current()
			for _, choice := range chunk.Choices {
				if choice.Delta.Content == "" {
					continue
				}
				if !yield(choice.Delta.Content) {
					return
				}
			}
		}
		if err := stream.Err(); err != nil {
			yield("Error: " + err.Error())
		}
	}

	fragments, cancel := streamutil.Forward(ctx, stream.Close, forward)
	return fragments, cancel, nil
}

func (i *Interpreter) buildParams(prompt string) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(i.cfg.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	}
	params.Temperature = param.NewOpt(i.cfg.Temperature)
	if i.cfg.MaxTokens > 0 {
		params.MaxTokens = param.NewOpt(i.cfg.MaxTokens)
	}
	return params
}
