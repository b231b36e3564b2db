package brain

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/ent0n29/chatterbox/internal/memory"
)

// Turn is one message in a conversation.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Conversation roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// OfflineNotice is returned when no model backend is configured.
const OfflineNotice = "AI brain offline — but I'm still here "

// Responder produces an assistant reply for a conversation. Errors are
// returned, not absorbed; degradation policy belongs to the caller.
type Responder interface {
	Respond(ctx context.Context, history []Turn, memoryContext []memory.Record) (string, error)
}

// Config controls responder construction.
type Config struct {
	Mode    string
	APIKey  string
	Model   string
	BaseURL string
}

// New builds a responder for the configured mode. In auto mode a
// missing API key degrades to the offline responder instead of failing.
func New(cfg Config) (Responder, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = "auto"
	}

	switch mode {
	case "auto":
		if strings.TrimSpace(cfg.APIKey) == "" {
			log.Printf("brain: no OPENAI_API_KEY, running offline")
			return NewOfflineResponder(), nil
		}
		return NewOpenAIResponder(cfg), nil
	case "openai":
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, errors.New("OPENAI_API_KEY is required for openai mode")
		}
		return NewOpenAIResponder(cfg), nil
	case "offline":
		return NewOfflineResponder(), nil
	case "mock":
		return NewMockResponder(), nil
	default:
		return nil, fmt.Errorf("unsupported brain mode %q", cfg.Mode)
	}
}

// OfflineResponder answers with a fixed notice and never touches the
// network.
type OfflineResponder struct{}

func NewOfflineResponder() *OfflineResponder { return &OfflineResponder{} }

func (r *OfflineResponder) Respond(_ context.Context, _ []Turn, _ []memory.Record) (string, error) {
	return OfflineNotice, nil
}
