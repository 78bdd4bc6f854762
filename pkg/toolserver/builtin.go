package toolserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultWikipediaURL = "https://en.wikipedia.org/w/api.php"

// BuiltinConfig configures the builtin tool set.
type BuiltinConfig struct {
	// WebhookBaseURL is the base URL where automation webhooks are exposed;
	// each webhook tool posts to one path under it.
	WebhookBaseURL string
	// WikipediaURL overrides the MediaWiki API endpoint.
	WikipediaURL string
	// HTTPClient overrides the default client.
	HTTPClient *http.Client
}

// RegisterBuiltins registers the builtin tool set on a server: the webhook
// automation tools, wikipedia search, and the calculator.
func RegisterBuiltins(s *Server, cfg BuiltinConfig) error {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	wikipediaURL := cfg.WikipediaURL
	if wikipediaURL == "" {
		wikipediaURL = defaultWikipediaURL
	}

	webhook := &webhookForwarder{baseURL: cfg.WebhookBaseURL, client: client}

	tools := []Tool{
		{
			Name:        "email_process",
			Description: "Triggers the workflow responsible for email automation. Example modes: summary, urgent, cleanup",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"mode": {"type": "string", "description": "Processing mode"},
					"date": {"type": "string", "description": "Optional date filter"}
				},
				"required": ["mode"]
			}`),
			Handler: func(ctx context.Context, args map[string]any) (any, error) {
				return webhook.post(ctx, "email-process", map[string]any{
					"mode": args["mode"],
					"date": args["date"],
				})
			},
		},
		{
			Name:        "calendar_schedule",
			Description: "Triggers the workflow that creates calendar events.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"title": {"type": "string", "description": "Event title"},
					"date": {"type": "string", "description": "Event date"},
					"time": {"type": "string", "description": "Event time"}
				},
				"required": ["title", "date", "time"]
			}`),
			Handler: func(ctx context.Context, args map[string]any) (any, error) {
				return webhook.post(ctx, "calendar-schedule", map[string]any{
					"title": args["title"],
					"date":  args["date"],
					"time":  args["time"],
				})
			},
		},
		{
			Name:        "social_post",
			Description: "Triggers the workflow for posting to social platforms.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"platform": {"type": "string", "description": "Target platform"},
					"content": {"type": "string", "description": "Post content"}
				},
				"required": ["platform", "content"]
			}`),
			Handler: func(ctx context.Context, args map[string]any) (any, error) {
				return webhook.post(ctx, "social-post", map[string]any{
					"platform": args["platform"],
					"content":  args["content"],
				})
			},
		},
		{
			Name:        "daily_summary",
			Description: "Triggers a daily automation workflow that can chain other workflows.",
			InputSchema: json.RawMessage(`{"type": "object", "properties": {}}`),
			Handler: func(ctx context.Context, args map[string]any) (any, error) {
				return webhook.post(ctx, "daily-summary", map[string]any{})
			},
		},
		{
			Name:        "wikipedia_search",
			Description: "Searches Wikipedia and returns the snippet of the top result.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"query": {"type": "string", "description": "Search terms"}
				},
				"required": ["query"]
			}`),
			Handler: func(ctx context.Context, args map[string]any) (any, error) {
				query, _ := args["query"].(string)
				return wikipediaSearch(ctx, client, wikipediaURL, query)
			},
		},
		{
			Name:        "calculate",
			Description: "Evaluates an arithmetic expression with + - * / and parentheses.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"operation": {"type": "string", "description": "Arithmetic expression, e.g. 4 * 7 / 3"}
				},
				"required": ["operation"]
			}`),
			Handler: func(ctx context.Context, args map[string]any) (any, error) {
				operation, _ := args["operation"].(string)
				return Evaluate(operation)
			},
		},
	}

	for _, tool := range tools {
		if err := s.Register(tool); err != nil {
			return err
		}
	}
	return nil
}

// webhookForwarder posts tool arguments to one webhook path per tool. Each
// path corresponds to a single remote workflow.
type webhookForwarder struct {
	baseURL string
	client  *http.Client
}

func (w *webhookForwarder) post(ctx context.Context, path string, payload map[string]any) (any, error) {
	if w.baseURL == "" {
		return nil, fmt.Errorf("no webhook base URL configured")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.baseURL+"/"+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return map[string]any{"status": "ok"}, nil
	}

	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("webhook returned non-JSON response: %w", err)
	}
	return decoded, nil
}

// wikipediaSearch queries the MediaWiki search API and returns the top
// result's snippet.
func wikipediaSearch(ctx context.Context, client *http.Client, apiURL, query string) (any, error) {
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srsearch", query)
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wikipedia request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wikipedia returned status %d", resp.StatusCode)
	}

	var decoded struct {
		Query struct {
			Search []struct {
				Title   string `json:"title"`
				Snippet string `json:"snippet"`
			} `json:"search"`
		} `json:"query"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode wikipedia response: %w", err)
	}

	if len(decoded.Query.Search) == 0 {
		return nil, fmt.Errorf("no results for query: %s", query)
	}
	return decoded.Query.Search[0].Snippet, nil
}
