package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/cognicore/textsuite/pkg/textsuite/internalerr"
)

type roundTrip func(*http.Request) *http.Response

func (rt roundTrip) RoundTrip(req *http.Request) (*http.Response, error) {
	return rt(req), nil
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func TestParaphraseSendsPrompt(t *testing.T) {
	client := &Client{
		BaseURL: "https://api.test/v1/chat/completions",
		APIKey:  "secret",
		Model:   "gpt-test",
		HTTPClient: &http.Client{
			Transport: roundTrip(func(req *http.Request) *http.Response {
				if got := req.Header.Get("Authorization"); got != "Bearer secret" {
					t.Errorf("Authorization = %q", got)
				}
				var body chatRequest
				if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
					t.Fatalf("decode request: %v", err)
				}
				if body.Model != "gpt-test" || len(body.Messages) != 1 {
					t.Fatalf("unexpected request %+v", body)
				}
				msg := body.Messages[0]
				if msg.Role != RoleUser {
					t.Errorf("role = %s", msg.Role)
				}
				if !strings.HasPrefix(msg.Content, "Please paraphrase the following text while maintaining its original meaning.") {
					t.Errorf("prompt missing instruction: %q", msg.Content)
				}
				if !strings.HasSuffix(msg.Content, ":\n\nThe cat sat.") {
					t.Errorf("prompt should end with the text: %q", msg.Content)
				}
				return jsonResponse(200, `{"choices":[{"message":{"role":"assistant","content":"A cat was sitting."}}]}`)
			}),
		},
	}

	out, err := client.Paraphrase(context.Background(), "The cat sat.")
	if err != nil {
		t.Fatalf("Paraphrase: %v", err)
	}
	if out != "A cat was sitting." {
		t.Errorf("unexpected output %q", out)
	}
}

func TestParaphraseEmptyText(t *testing.T) {
	client := &Client{BaseURL: "https://api.test", Model: "m"}
	_, err := client.Paraphrase(context.Background(), "   ")
	if !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestChatRequiresConfig(t *testing.T) {
	client := &Client{}
	_, err := client.Chat(context.Background(), "sys", "user")
	if !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}

	var nilClient *Client
	if nilClient.Configured() {
		t.Error("nil client should not be configured")
	}
}

func TestChatSystemPrompt(t *testing.T) {
	var got []Message
	client := &Client{
		BaseURL: "https://api.test",
		Model:   "m",
		HTTPClient: &http.Client{Transport: roundTrip(func(req *http.Request) *http.Response {
			var body chatRequest
			json.NewDecoder(req.Body).Decode(&body)
			got = body.Messages
			return jsonResponse(200, `{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`)
		})},
	}

	if _, err := client.Chat(context.Background(), "be brief", "hi"); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Role != RoleSystem || got[1].Content != "hi" {
		t.Errorf("unexpected messages %+v", got)
	}

	if _, err := client.Chat(context.Background(), "", "hi"); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("empty system prompt should be omitted: %+v", got)
	}
}

func TestChatErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"api error", 200, `{"error":{"message":"quota exceeded"}}`, "quota exceeded"},
		{"no choices", 200, `{"choices":[]}`, "empty response"},
		{"bad status", 502, `<html>bad gateway</html>`, "status 502"},
		{"bad json", 200, `not json`, "decode response"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &Client{
				BaseURL: "https://api.test",
				Model:   "m",
				HTTPClient: &http.Client{Transport: roundTrip(func(*http.Request) *http.Response {
					return jsonResponse(tt.status, tt.body)
				})},
			}
			_, err := client.Chat(context.Background(), "", "hi")
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

// echoServer replies with the number of messages it received.
func echoServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body chatRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		last := body.Messages[len(body.Messages)-1].Content
		if last == "fail" {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":{"message":"boom"}}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{
				"role":    "assistant",
				"content": "echo:" + last,
			}}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSessionHistory(t *testing.T) {
	srv := echoServer(t)
	sess := NewSession(&Client{BaseURL: srv.URL, Model: "m"}, "")
	ctx := context.Background()

	reply, err := sess.Send(ctx, "hello")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if reply != "echo:hello" {
		t.Errorf("reply = %q", reply)
	}
	if _, err := sess.Send(ctx, "again"); err != nil {
		t.Fatal(err)
	}

	h := sess.History()
	if len(h) != 4 {
		t.Fatalf("Expected 4 messages, got %d", len(h))
	}
	if h[0].Role != RoleUser || h[1].Role != RoleAssistant || h[3].Content != "echo:again" {
		t.Errorf("unexpected history %+v", h)
	}

	if _, err := sess.Send(ctx, "fail"); err == nil {
		t.Error("expected an error")
	}
	if len(sess.History()) != 4 {
		t.Error("failed exchange should not change history")
	}

	sess.Reset()
	if len(sess.History()) != 0 {
		t.Error("Reset should clear history")
	}
}

func TestSessionEmptyMessage(t *testing.T) {
	sess := NewSession(&Client{BaseURL: "http://unused", Model: "m"}, "")
	if _, err := sess.Send(context.Background(), ""); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestSessions(t *testing.T) {
	srv := echoServer(t)
	sessions, err := NewSessions(&Client{BaseURL: srv.URL, Model: "m"}, "", 2)
	if err != nil {
		t.Fatal(err)
	}

	a := sessions.Get("")
	if a.ID == "" {
		t.Fatal("new session should have an id")
	}
	if sessions.Get(a.ID) != a {
		t.Error("Get should return the existing session")
	}
	if sessions.Get("unknown") == a {
		t.Error("unknown id should start a new session")
	}

	sessions.Get("")
	if sessions.Len() != 2 {
		t.Errorf("Expected 2 live sessions, got %d", sessions.Len())
	}
}

func TestSessionConcurrentSends(t *testing.T) {
	srv := echoServer(t)
	sess := NewSession(&Client{BaseURL: srv.URL, Model: "m"}, "sys")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := sess.Send(context.Background(), "hi"); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()
	if len(sess.History()) != 20 {
		t.Errorf("Expected 20 messages, got %d", len(sess.History()))
	}
}
