package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ent0n29/chatterbox/internal/brain"
	"github.com/ent0n29/chatterbox/internal/chat"
)

type echoExchanger struct{}

func (echoExchanger) Exchange(_ context.Context, message string, history []brain.Turn) chat.Result {
	if message == "" {
		return chat.Result{Response: chat.EmptyInputReply, History: history}
	}
	updated := append(append([]brain.Turn{}, history...),
		brain.Turn{Role: brain.RoleUser, Content: message},
		brain.Turn{Role: brain.RoleAssistant, Content: "echo: " + message},
	)
	return chat.Result{Response: "echo: " + message, History: updated}
}

type panicExchanger struct{}

func (panicExchanger) Exchange(context.Context, string, []brain.Turn) chat.Result {
	panic("pipeline exploded")
}

func postChat(t *testing.T, url string, body []byte) (*http.Response, map[string]json.RawMessage) {
	t.Helper()
	res, err := http.Post(url+"/chat", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /chat error = %v", err)
	}
	t.Cleanup(func() { res.Body.Close() })

	var payload map[string]json.RawMessage
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return res, payload
}

func TestChatHappyPath(t *testing.T) {
	srv := New(echoExchanger{}, "mock", "file")
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	body, _ := json.Marshal(map[string]any{
		"message": "hello",
		"history": []map[string]string{{"role": "user", "content": "earlier"}},
	})
	res, payload := postChat(t, ts.URL, body)

	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.StatusCode)
	}
	var response string
	if err := json.Unmarshal(payload["response"], &response); err != nil || response != "echo: hello" {
		t.Fatalf("response = %s, want %q", payload["response"], "echo: hello")
	}
	var history []brain.Turn
	if err := json.Unmarshal(payload["history"], &history); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("history len = %d, want 3", len(history))
	}
}

func TestChatEmptyBodyStillAnswers(t *testing.T) {
	srv := New(echoExchanger{}, "mock", "file")
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	res, payload := postChat(t, ts.URL, nil)

	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.StatusCode)
	}
	var response string
	if err := json.Unmarshal(payload["response"], &response); err != nil || response != chat.EmptyInputReply {
		t.Fatalf("response = %s, want %q", payload["response"], chat.EmptyInputReply)
	}
	if _, ok := payload["history"]; !ok {
		t.Fatalf("success shape must include history: %v", payload)
	}
}

func TestChatMalformedBodyUsesCrashShape(t *testing.T) {
	srv := New(echoExchanger{}, "mock", "file")
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	res, payload := postChat(t, ts.URL, []byte("{this is not json"))

	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200 even on the crash path", res.StatusCode)
	}
	var response string
	if err := json.Unmarshal(payload["response"], &response); err != nil || response != CrashReply {
		t.Fatalf("response = %s, want crash reply", payload["response"])
	}
	if _, ok := payload["history"]; ok {
		t.Fatalf("crash shape must not include a history key: %v", payload)
	}
}

func TestChatTruncatedBodyUsesCrashShape(t *testing.T) {
	srv := New(echoExchanger{}, "mock", "file")
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	res, payload := postChat(t, ts.URL, []byte(`{"message":"hi"`))

	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200 even on the crash path", res.StatusCode)
	}
	var response string
	if err := json.Unmarshal(payload["response"], &response); err != nil || response != CrashReply {
		t.Fatalf("response = %s, want crash reply for truncated body", payload["response"])
	}
	if _, ok := payload["history"]; ok {
		t.Fatalf("crash shape must not include a history key: %v", payload)
	}
}

func TestChatPanicUsesCrashShape(t *testing.T) {
	srv := New(panicExchanger{}, "mock", "file")
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	body, _ := json.Marshal(map[string]string{"message": "boom"})
	res, payload := postChat(t, ts.URL, body)

	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200 even on panic", res.StatusCode)
	}
	var response string
	if err := json.Unmarshal(payload["response"], &response); err != nil || response != CrashReply {
		t.Fatalf("response = %s, want crash reply", payload["response"])
	}
	if _, ok := payload["history"]; ok {
		t.Fatalf("crash shape must not include a history key: %v", payload)
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv := New(echoExchanger{}, "offline", "file")
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	for _, path := range []string{"/healthz", "/readyz"} {
		res, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s error = %v", path, err)
		}
		var payload map[string]any
		if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
		res.Body.Close()
		if res.StatusCode != http.StatusOK {
			t.Fatalf("GET %s status = %d, want 200", path, res.StatusCode)
		}
		if payload["brain_mode"] != "offline" {
			t.Fatalf("%s brain_mode = %v, want offline", path, payload["brain_mode"])
		}
		if payload["memory_backend"] != "file" {
			t.Fatalf("%s memory_backend = %v, want file", path, payload["memory_backend"])
		}
	}
}

func TestCORSAllowsAnyOrigin(t *testing.T) {
	srv := New(echoExchanger{}, "mock", "file")
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/chat", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("preflight error = %v", err)
	}
	defer res.Body.Close()

	if got := res.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("Access-Control-Allow-Origin = %q, want *", got)
	}
}
