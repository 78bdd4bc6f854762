package toolserver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func builtinServer(t *testing.T, cfg BuiltinConfig) *Server {
	t.Helper()
	s := New("test-tools", "0.0.1")
	require.NoError(t, RegisterBuiltins(s, cfg))
	return s
}

func callBuiltin(t *testing.T, s *Server, name string, args map[string]any) (any, error) {
	t.Helper()
	tool, ok := s.byName[name]
	require.True(t, ok, "builtin %s not registered", name)
	return tool.Handler(context.Background(), args)
}

func TestRegisterBuiltins(t *testing.T) {
	s := builtinServer(t, BuiltinConfig{})

	names := make([]string, 0, len(s.tools))
	for _, tool := range s.tools {
		names = append(names, tool.Name)
	}
	assert.Equal(t, []string{
		"email_process",
		"calendar_schedule",
		"social_post",
		"daily_summary",
		"wikipedia_search",
		"calculate",
	}, names)
}

func TestWebhookTools(t *testing.T) {
	t.Run("posts arguments to the tool's path", func(t *testing.T) {
		var gotPath string
		var gotBody map[string]any
		hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			body, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(body, &gotBody)
			_, _ = w.Write([]byte(`{"queued":true}`))
		}))
		defer hook.Close()

		s := builtinServer(t, BuiltinConfig{WebhookBaseURL: hook.URL, HTTPClient: hook.Client()})
		result, err := callBuiltin(t, s, "email_process", map[string]any{"mode": "summary", "date": "2026-08-31"})
		require.NoError(t, err)

		assert.Equal(t, "/email-process", gotPath)
		assert.Equal(t, map[string]any{"mode": "summary", "date": "2026-08-31"}, gotBody)
		assert.Equal(t, map[string]any{"queued": true}, result)
	})

	t.Run("empty response body reports ok", func(t *testing.T) {
		hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))
		defer hook.Close()

		s := builtinServer(t, BuiltinConfig{WebhookBaseURL: hook.URL, HTTPClient: hook.Client()})
		result, err := callBuiltin(t, s, "daily_summary", map[string]any{})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"status": "ok"}, result)
	})

	t.Run("non-2xx status fails", func(t *testing.T) {
		hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusBadGateway)
		}))
		defer hook.Close()

		s := builtinServer(t, BuiltinConfig{WebhookBaseURL: hook.URL, HTTPClient: hook.Client()})
		_, err := callBuiltin(t, s, "social_post", map[string]any{"platform": "x", "content": "hi"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 502")
	})

	t.Run("missing base URL fails without a request", func(t *testing.T) {
		s := builtinServer(t, BuiltinConfig{})
		_, err := callBuiltin(t, s, "calendar_schedule", map[string]any{
			"title": "standup", "date": "2026-09-01", "time": "09:00",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no webhook base URL")
	})
}

func TestWikipediaSearchTool(t *testing.T) {
	t.Run("returns the top snippet", func(t *testing.T) {
		var gotQuery string
		wiki := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.Query().Get("srsearch")
			assert.Equal(t, "query", r.URL.Query().Get("action"))
			assert.Equal(t, "search", r.URL.Query().Get("list"))
			_, _ = w.Write([]byte(`{"query":{"search":[
				{"title":"Go (programming language)","snippet":"Go is a statically typed language."},
				{"title":"Go (game)","snippet":"Go is a board game."}
			]}}`))
		}))
		defer wiki.Close()

		s := builtinServer(t, BuiltinConfig{WikipediaURL: wiki.URL, HTTPClient: wiki.Client()})
		result, err := callBuiltin(t, s, "wikipedia_search", map[string]any{"query": "golang"})
		require.NoError(t, err)
		assert.Equal(t, "golang", gotQuery)
		assert.Equal(t, "Go is a statically typed language.", result)
	})

	t.Run("no results fails", func(t *testing.T) {
		wiki := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"query":{"search":[]}}`))
		}))
		defer wiki.Close()

		s := builtinServer(t, BuiltinConfig{WikipediaURL: wiki.URL, HTTPClient: wiki.Client()})
		_, err := callBuiltin(t, s, "wikipedia_search", map[string]any{"query": "zzzz"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no results")
	})

	t.Run("empty query fails", func(t *testing.T) {
		s := builtinServer(t, BuiltinConfig{})
		_, err := callBuiltin(t, s, "wikipedia_search", map[string]any{})
		require.Error(t, err)
	})
}

func TestCalculateTool(t *testing.T) {
	s := builtinServer(t, BuiltinConfig{})

	result, err := callBuiltin(t, s, "calculate", map[string]any{"operation": "4 * 7 / 3"})
	require.NoError(t, err)
	assert.InDelta(t, 28.0/3.0, result.(float64), 1e-9)

	_, err = callBuiltin(t, s, "calculate", map[string]any{"operation": "1/0"})
	assert.Error(t, err)
}
