package brain

import (
	"context"
	"fmt"
	"strings"

	"github.com/ent0n29/chatterbox/internal/memory"
)

// MockResponder provides deterministic local replies for tests and
// keyless development runs.
type MockResponder struct {
	// Err, when set, is returned instead of a reply.
	Err error
	// Reply, when set, overrides the echo-style default.
	Reply string

	calls int
}

func NewMockResponder() *MockResponder { return &MockResponder{} }

func (r *MockResponder) Respond(ctx context.Context, history []Turn, memoryContext []memory.Record) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	r.calls++
	if r.Err != nil {
		return "", r.Err
	}
	if r.Reply != "" {
		return r.Reply, nil
	}
	return buildMockReply(history, memoryContext), nil
}

// Calls reports how many times Respond ran.
func (r *MockResponder) Calls() int { return r.calls }

func buildMockReply(history []Turn, memoryContext []memory.Record) string {
	base := "I am listening."
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == RoleUser && strings.TrimSpace(history[i].Content) != "" {
			base = strings.TrimSpace(history[i].Content)
			break
		}
	}

	if len(memoryContext) == 0 {
		return fmt.Sprintf("I heard you: %s", base)
	}
	last := memoryContext[len(memoryContext)-1]
	return fmt.Sprintf("I heard you: %s\nI also remember: %s", base, last.User)
}
