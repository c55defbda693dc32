package openai

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bookmate-ai/bookmate-server/pkg/config"
	"github.com/bookmate-ai/bookmate-server/pkg/insights"
	"github.com/goccy/go-json"
	"github.com/openai/openai-go/v3/option"
	"github.com/sirupsen/logrus"
)

type capturedRequest struct {
	Model    string `json:"model"`
	Stream   bool   `json:"stream"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newTestProvider(t *testing.T, handler http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p, err := NewProvider(config.ChatSettings{
		ApiKey:  "sk-test",
		BaseUrl: srv.URL + "/v1/",
	}, logrus.New(), option.WithMaxRetries(0))
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestNewProvider_RequiresKey(t *testing.T) {
	if _, err := NewProvider(config.ChatSettings{}, logrus.New()); err == nil {
		t.Error("expected an error without api key")
	}
}

func TestOpenAIProvider_Complete(t *testing.T) {
	var got capturedRequest
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("unexpected auth header %q", r.Header.Get("Authorization"))
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-4o-mini",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Droupadi Murmu"}}]}`)
	})

	answer, err := p.Complete(context.Background(), "gpt-4o-mini", []insights.ChatMessage{
		{Role: insights.RoleSystem, Content: "be brief"},
		{Role: insights.RoleUser, Content: "Who is the president of India?"},
		{Role: insights.RoleAssistant, Content: "Droupadi Murmu"},
		{Role: insights.RoleUser, Content: "Again?"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if answer != "Droupadi Murmu" {
		t.Errorf("unexpected answer %q", answer)
	}

	if got.Model != "gpt-4o-mini" {
		t.Errorf("unexpected model %q", got.Model)
	}
	roles := make([]string, 0, len(got.Messages))
	for _, m := range got.Messages {
		roles = append(roles, m.Role)
	}
	if strings.Join(roles, ",") != "system,user,assistant,user" {
		t.Errorf("unexpected roles %v", roles)
	}
}

func TestOpenAIProvider_CompleteStream(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		var req capturedRequest
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &req)
		if !req.Stream {
			t.Error("expected a streaming request")
		}

		w.Header().Set("Content-Type", "text/event-stream")
		for _, part := range []string{"Hello", " there", "!"} {
			_, _ = fmt.Fprintf(w, "data: {\"id\":\"c1\",\"object\":\"chat.completion.chunk\",\"created\":1,\"model\":\"m\",\"choices\":[{\"index\":0,\"delta\":{\"content\":%q}}]}\n\n", part)
		}
		_, _ = io.WriteString(w, "data: [DONE]\n\n")
	})

	stream, err := p.CompleteStream(context.Background(), "m", []insights.ChatMessage{{Role: insights.RoleUser, Content: "hi"}})
	if err != nil {
		t.Fatal(err)
	}

	var sb strings.Builder
	for chunk := range stream {
		if chunk.Err != nil {
			t.Fatal(chunk.Err)
		}
		sb.WriteString(chunk.Text)
	}
	if sb.String() != "Hello there!" {
		t.Errorf("unexpected streamed answer %q", sb.String())
	}
}

func TestOpenAIProvider_Error(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"message":"bad key","type":"invalid_request_error"}}`)
	})

	if _, err := p.Complete(context.Background(), "m", []insights.ChatMessage{{Role: insights.RoleUser, Content: "hi"}}); err == nil {
		t.Error("expected an error for a 401 response")
	}
}
