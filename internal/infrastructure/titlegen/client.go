package titlegen

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"jan-server/services/conversation-api/internal/domain/conversation"
	"jan-server/services/conversation-api/internal/utils/platformerrors"
)

const titleSystemPrompt = "You are a system that provides short, concise chat conversation titles. " +
	"Take the user's messages and produce a 4-word max title. No punctuation. No quotes. " +
	"If insufficient context, output 'New Chat'."

const (
	titleTemperature = 0.9
	titleMaxTokens   = 20
)

// Client asks an OpenAI-compatible chat endpoint for conversation titles.
type Client struct {
	httpClient *resty.Client
	model      string
	apiKey     string
	log        zerolog.Logger
}

// NewClient creates a Resty-backed title generator against baseURL, which
// must point at an OpenAI-compatible API root such as https://host/v1.
func NewClient(baseURL, apiKey, model string, timeout time.Duration, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: resty.New().
			SetBaseURL(strings.TrimRight(strings.TrimSpace(baseURL), "/")).
			SetHeader("Content-Type", "application/json").
			SetTimeout(timeout),
		model:  model,
		apiKey: apiKey,
		log:    log.With().Str("component", "titlegen").Logger(),
	}
}

// SuggestTitle produces a raw title candidate from the given message texts.
// Each text rides as its own user message under the shared system prompt.
func (c *Client) SuggestTitle(ctx context.Context, texts []string) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(texts)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: titleSystemPrompt,
	})
	for _, text := range texts {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: text,
		})
	}

	request := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: titleTemperature,
		MaxTokens:   titleMaxTokens,
	}

	var completion openai.ChatCompletionResponse
	req := c.httpClient.R().
		SetContext(ctx).
		SetBody(request).
		SetResult(&completion)
	if strings.TrimSpace(c.apiKey) != "" {
		req.SetHeader("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	}

	resp, err := req.Post("/chat/completions")
	if err != nil {
		return "", platformerrors.NewError(
			ctx,
			platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeExternal,
			"title completion request failed",
			err,
			"1d70f1ec-4853-4719-b82c-373613d570b0",
		)
	}
	if resp.IsError() {
		return "", platformerrors.NewError(
			ctx,
			platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeExternal,
			fmt.Sprintf("title completion request failed: %s", strings.TrimSpace(resp.String())),
			nil,
			"6873fc56-4440-4117-ab24-024e994324c5",
		)
	}
	if len(completion.Choices) == 0 {
		return "", platformerrors.NewError(
			ctx,
			platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeExternal,
			"title completion returned no choices",
			nil,
			"53ad7236-c79d-4047-83c7-3e3d5a393ff1",
		)
	}

	title := strings.TrimSpace(completion.Choices[0].Message.Content)
	c.log.Debug().Str("model", c.model).Str("title", title).Msg("title suggestion received")
	return title, nil
}

// Ensure interface compliance.
var _ conversation.TitleGenerator = (*Client)(nil)
