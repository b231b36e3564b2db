package brain

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ent0n29/chatterbox/internal/memory"
)

const (
	defaultModel     = "gpt-4o-mini"
	chatTemperature  = 0.7
	chatMaxTokens    = 300
	memoryPromptSize = 5
)

const systemPromptTemplate = `
You are a ChatGPT-like assistant.
Be friendly, helpful, and human.

Past memory:
%s
`

// OpenAIResponder forwards the conversation to the OpenAI chat
// completion API, embedding recent memory into the system prompt.
type OpenAIResponder struct {
	client *openai.Client
	model  string
}

func NewOpenAIResponder(cfg Config) *OpenAIResponder {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}

	return &OpenAIResponder{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
	}
}

func (r *OpenAIResponder) Respond(ctx context.Context, history []Turn, memoryContext []memory.Record) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt(memoryContext),
	})
	for _, turn := range history {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    turn.Role,
			Content: turn.Content,
		})
	}

	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       r.model,
		Messages:    messages,
		Temperature: chatTemperature,
		MaxTokens:   chatMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: empty response")
	}

	return resp.Choices[0].Message.Content, nil
}

// systemPrompt renders up to the five most recent exchanges as
// free-text context under the assistant persona instructions.
func systemPrompt(memoryContext []memory.Record) string {
	if len(memoryContext) > memoryPromptSize {
		memoryContext = memoryContext[len(memoryContext)-memoryPromptSize:]
	}

	lines := make([]string, 0, len(memoryContext))
	for _, rec := range memoryContext {
		lines = append(lines, fmt.Sprintf("User: %s | AI: %s", rec.User, rec.AI))
	}

	return fmt.Sprintf(systemPromptTemplate, strings.Join(lines, "\n"))
}
