package intent

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"
)

func testTable() Table {
	return Table{Intents: []Intent{
		{
			Patterns:  []string{"hello", "hi there"},
			Responses: []string{"Hey!", "Hello friend"},
		},
		{
			Patterns:  []string{"bye"},
			Responses: []string{"See you!"},
		},
	}}
}

func TestMatchCaseInsensitiveSubstring(t *testing.T) {
	m := NewMatcher(testTable(), rand.New(rand.NewSource(1)))

	reply, ok := m.Match("well HELLO to you")
	if !ok {
		t.Fatalf("Match() ok = false, want true")
	}
	if reply != "Hey!" && reply != "Hello friend" {
		t.Fatalf("Match() = %q, want a response from the hello intent", reply)
	}
}

func TestMatchFirstIntentWins(t *testing.T) {
	table := Table{Intents: []Intent{
		{Patterns: []string{"chat"}, Responses: []string{"first"}},
		{Patterns: []string{"chat"}, Responses: []string{"second"}},
	}}
	m := NewMatcher(table, rand.New(rand.NewSource(7)))

	for i := 0; i < 20; i++ {
		reply, ok := m.Match("let's chat")
		if !ok || reply != "first" {
			t.Fatalf("Match() = %q, %v; want %q from the first intent", reply, ok, "first")
		}
	}
}

func TestMatchNoMatch(t *testing.T) {
	m := NewMatcher(testTable(), rand.New(rand.NewSource(1)))

	if reply, ok := m.Match("completely unrelated"); ok {
		t.Fatalf("Match() = %q, %v; want no match", reply, ok)
	}
}

func TestMatchSkipsIntentWithoutResponses(t *testing.T) {
	table := Table{Intents: []Intent{
		{Patterns: []string{"ping"}, Responses: nil},
		{Patterns: []string{"ping"}, Responses: []string{"pong"}},
	}}
	m := NewMatcher(table, rand.New(rand.NewSource(3)))

	reply, ok := m.Match("ping")
	if !ok || reply != "pong" {
		t.Fatalf("Match() = %q, %v; want %q", reply, ok, "pong")
	}
}

func TestMatchSeededSelectionIsDeterministic(t *testing.T) {
	a := NewMatcher(testTable(), rand.New(rand.NewSource(42)))
	b := NewMatcher(testTable(), rand.New(rand.NewSource(42)))

	for i := 0; i < 10; i++ {
		ra, _ := a.Match("hello")
		rb, _ := b.Match("hello")
		if ra != rb {
			t.Fatalf("seeded matchers diverged at pick %d: %q vs %q", i, ra, rb)
		}
	}
}

func TestLoadTable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "intent.json")
	payload := `{"intents":[{"patterns":["hello"],"responses":["hi"]}]}`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write intent.json: %v", err)
	}

	table, err := LoadTable(path)
	if err != nil {
		t.Fatalf("LoadTable() error = %v", err)
	}
	if len(table.Intents) != 1 || len(table.Intents[0].Patterns) != 1 {
		t.Fatalf("LoadTable() = %+v, want one intent with one pattern", table)
	}
}

func TestLoadTableMissingFile(t *testing.T) {
	table, err := LoadTable(filepath.Join(t.TempDir(), "absent.json"))
	if err == nil {
		t.Fatalf("LoadTable() error = nil, want read error")
	}
	if len(table.Intents) != 0 {
		t.Fatalf("LoadTable() intents = %d, want empty table on error", len(table.Intents))
	}
}

func TestLoadTableCorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "intent.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write intent.json: %v", err)
	}

	if _, err := LoadTable(path); err == nil {
		t.Fatalf("LoadTable() error = nil, want decode error")
	}
}
