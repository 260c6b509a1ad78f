// File path: internal/llm/providers/openai_client.go
package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go"

	"github.com/nicodishanthj/spinyleaf/internal/common"
)

type OpenAIProvider struct {
	client      openai.Client
	chatModel   string
	temperature float64
}

func NewOpenAIProvider(client openai.Client, chatModel string, temperature float64) *OpenAIProvider {
	if strings.TrimSpace(chatModel) == "" {
		chatModel = "gpt-4"
	}
	common.Logger().Info("llm: OpenAI provider configured", "chat_model", chatModel, "temperature", temperature)
	return &OpenAIProvider{client: client, chatModel: chatModel, temperature: temperature}
}

func (o *OpenAIProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	if len(messages) == 0 {
		return "", &PermanentError{Err: errors.New("no messages provided")}
	}
	logger := common.Logger()
	logger.Debug("llm: sending chat completion request", "model", o.chatModel, "messages", len(messages))
	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(o.chatModel),
		Temperature: openai.Float(o.temperature),
	}
	for _, msg := range messages {
		params.Messages = append(params.Messages, toParam(msg))
	}
	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		logger.Error("llm: chat completion failed", "error", err)
		return "", classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned: %w", ErrEmptyCompletion)
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyCompletion
	}
	logger.Debug("llm: chat completion succeeded", "chars", len(content))
	return content, nil
}

func (o *OpenAIProvider) Name() string {
	return "openai"
}

func toParam(msg Message) openai.ChatCompletionMessageParamUnion {
	switch strings.ToLower(msg.Role) {
	case "system":
		return openai.SystemMessage(msg.Content)
	case "assistant":
		return openai.AssistantMessage(msg.Content)
	default:
		return openai.UserMessage(msg.Content)
	}
}

// classify wraps client errors (bad key, bad request, unknown model) as
// permanent. Rate limits, server errors and transport failures stay
// retryable.
func classify(err error) error {
	if errors.Is(err, context.Canceled) {
		return &PermanentError{Err: err}
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		code := apiErr.StatusCode
		if code >= 400 && code < 500 && code != http.StatusTooManyRequests && code != http.StatusRequestTimeout {
			return &PermanentError{Err: err}
		}
	}
	return err
}
