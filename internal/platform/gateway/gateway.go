// Package gateway wraps the hosted AI model gateway behind a small client.
// The gateway speaks the OpenAI chat-completions protocol; this package owns
// the SDK surface (streaming, tool schemas, accumulator-driven tool-call
// detection) so the assistant domain never touches provider types directly.
package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Differentiated upstream failures surfaced to users with distinct messages.
var (
	ErrRateLimited      = errors.New("gateway rate limit exceeded")
	ErrCreditsExhausted = errors.New("gateway credits exhausted")
)

// ToolCall is a completed tool invocation requested by the model.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// ToolSchema declares one callable tool to the model.
type ToolSchema struct {
	Name        string
	Description string
	Parameters  openai.FunctionParameters
}

// TurnResult is the outcome of one streamed model turn.
type TurnResult struct {
	Content   string
	ToolCalls []ToolCall
}

// Client is a thin handle on the gateway connection.
type Client struct {
	api   openai.Client
	model string
}

// NewClient creates a gateway client. baseURL may be empty for the provider
// default; apiKey is required.
func NewClient(baseURL, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gateway API key is required")
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &Client{
		api:   openai.NewClient(opts...),
		model: model,
	}, nil
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

// Exchange accumulates one conversation's worth of gateway messages. Turns
// share the exchange so tool results from the first streamed turn feed the
// follow-up turn.
type Exchange struct {
	client   *Client
	messages []openai.ChatCompletionMessageParamUnion
}

// NewExchange starts an empty exchange.
func (c *Client) NewExchange() *Exchange {
	return &Exchange{client: c}
}

func (e *Exchange) AddSystem(content string) {
	e.messages = append(e.messages, openai.SystemMessage(content))
}

func (e *Exchange) AddUser(content string) {
	e.messages = append(e.messages, openai.UserMessage(content))
}

func (e *Exchange) AddAssistant(content string) {
	e.messages = append(e.messages, openai.AssistantMessage(content))
}

// AddToolResult appends a tool result correlated with a prior tool call.
func (e *Exchange) AddToolResult(callID, content string) {
	e.messages = append(e.messages, openai.ToolMessage(content, callID))
}

// Stream runs one model turn, invoking onDelta for each content fragment as
// it arrives. Completed tool calls are collected via the SDK accumulator and
// returned once the stream ends; when present, the assistant turn is appended
// to the exchange so tool results can be attached for a follow-up turn.
func (e *Exchange) Stream(ctx context.Context, tools []ToolSchema, onDelta func(string)) (*TurnResult, error) {
	params := openai.ChatCompletionNewParams{
		Messages: e.messages,
		Model:    openai.ChatModel(e.client.model),
	}
	if len(tools) > 0 {
		params.Tools = convertTools(tools)
	}

	stream := e.client.api.Chat.Completions.NewStreaming(ctx, params)
	acc := openai.ChatCompletionAccumulator{}
	result := &TurnResult{}

	for stream.Next() {
		chunk := stream.Current()
		acc.AddChunk(chunk)

		if tool, ok := acc.JustFinishedToolCall(); ok {
			result.ToolCalls = append(result.ToolCalls, ToolCall{
				ID:        tool.ID,
				Name:      tool.Name,
				Arguments: tool.Arguments,
			})
		}

		if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
			content := chunk.Choices[0].Delta.Content
			result.Content += content
			if onDelta != nil {
				onDelta(content)
			}
		}
	}

	if err := stream.Err(); err != nil {
		return nil, mapError(err)
	}

	if len(acc.Choices) > 0 {
		e.messages = append(e.messages, acc.Choices[0].Message.ToParam())
	}

	return result, nil
}

func convertTools(tools []ToolSchema) []openai.ChatCompletionToolUnionParam {
	result := make([]openai.ChatCompletionToolUnionParam, len(tools))
	for i, t := range tools {
		result[i] = openai.ChatCompletionFunctionTool(
			openai.FunctionDefinitionParam{
				Name:        t.Name,
				Description: openai.String(t.Description),
				Parameters:  t.Parameters,
			},
		)
	}
	return result
}

// mapError translates SDK errors into the failure taxonomy the proxy exposes:
// 429 and 402 get their own sentinels, everything else passes through for the
// generic unavailable response.
func mapError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 429:
			return fmt.Errorf("%w: %v", ErrRateLimited, err)
		case 402:
			return fmt.Errorf("%w: %v", ErrCreditsExhausted, err)
		}
	}
	return err
}
