package intent

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"strings"
)

// Intent maps trigger patterns to a set of canned responses.
type Intent struct {
	Patterns  []string `json:"patterns"`
	Responses []string `json:"responses"`
}

// Table is the static intent configuration, loaded once at startup.
type Table struct {
	Intents []Intent `json:"intents"`
}

// LoadTable reads the intent table from disk. A missing or corrupt file
// yields an empty table and a non-nil error so the caller can log it;
// serving continues either way.
func LoadTable(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("read intent table: %w", err)
	}
	var table Table
	if err := json.Unmarshal(data, &table); err != nil {
		return Table{}, fmt.Errorf("decode intent table: %w", err)
	}
	return table, nil
}

// Matcher answers scripted intents by case-insensitive substring match.
type Matcher struct {
	table Table
	rng   *rand.Rand
}

// NewMatcher builds a matcher over a table. rng picks among an intent's
// responses; pass a seeded source for deterministic tests, or nil for
// the default source.
func NewMatcher(table Table, rng *rand.Rand) *Matcher {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &Matcher{table: table, rng: rng}
}

// Match returns a canned response for the first intent whose any pattern
// is contained in the message. Iteration order is configuration order;
// first match wins. The second return is false when nothing matched.
func (m *Matcher) Match(message string) (string, bool) {
	msg := strings.ToLower(message)
	for _, intent := range m.table.Intents {
		for _, pattern := range intent.Patterns {
			if pattern == "" {
				continue
			}
			if strings.Contains(msg, strings.ToLower(pattern)) {
				if len(intent.Responses) == 0 {
					// A pattern with no responses cannot answer; let
					// later intents (or the brain) take the message.
					break
				}
				return intent.Responses[m.rng.Intn(len(intent.Responses))], true
			}
		}
	}
	return "", false
}
