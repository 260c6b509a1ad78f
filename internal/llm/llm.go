// File path: internal/llm/llm.go
package llm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/nicodishanthj/spinyleaf/internal/common"
	"github.com/nicodishanthj/spinyleaf/internal/config"
	"github.com/nicodishanthj/spinyleaf/internal/llm/providers"
)

type Message = providers.Message

type Provider = providers.Provider

var ErrMissingAPIKey = errors.New("llm: OPENAI_API_KEY not set")

// NewProvider builds the configured text-generation provider. There is no
// fallback: a missing API key is an error unless the echo provider was
// chosen explicitly.
func NewProvider(cfg config.LLMConfig) (Provider, error) {
	logger := common.Logger()
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "echo":
		logger.Warn("llm: echo provider selected; narratives will repeat their prompts")
		return providers.NewEchoProvider(), nil
	case "", "openai":
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", cfg.Provider)
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	// Retries are owned by the narrative generator.
	opts := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}
	if cfg.Timeout > 0 {
		logger.Info("llm: configuring OpenAI client with request timeout", "timeout", cfg.Timeout)
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	if endpoint := strings.TrimSpace(cfg.BaseURL); endpoint != "" {
		logger.Info("llm: configuring OpenAI client with custom endpoint", "endpoint", endpoint)
		if !strings.HasSuffix(endpoint, "/") {
			endpoint += "/"
		}
		opts = append(opts, option.WithBaseURL(endpoint))
	} else {
		logger.Debug("llm: using default OpenAI endpoint")
	}
	client := openai.NewClient(opts...)
	logger.Info("llm: OpenAI provider selected")
	return providers.NewOpenAIProvider(client, cfg.Model, cfg.Temperature), nil
}

// IsPermanent reports whether retrying the failed call is pointless.
func IsPermanent(err error) bool {
	var permanent *providers.PermanentError
	return errors.As(err, &permanent)
}
