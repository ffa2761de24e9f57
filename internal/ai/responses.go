package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Response is the provider answer in either of its two shapes: a top-level
// convenience text, or a list of structured output items. ExtractText
// normalizes both to a plain string.
type Response struct {
	OutputText string       `json:"output_text"`
	Output     []OutputItem `json:"output"`
}

type OutputItem struct {
	Type    string        `json:"type"`
	Content []ContentItem `json:"content"`
}

type ContentItem struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ResponsesClient talks to the OpenAI Responses API, optionally asking it
// to search the given vector stores before answering.
type ResponsesClient struct {
	httpClient *http.Client
}

func NewResponsesClient(timeout time.Duration) *ResponsesClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &ResponsesClient{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Generate sends the prompt and returns the raw provider response. When
// vectorStoreIDs is empty no file_search tool is requested and the model
// answers from the prompt alone.
func (c *ResponsesClient) Generate(
	ctx context.Context,
	cfg ChatConfig,
	messages []ChatMessage,
	vectorStoreIDs []string,
) (*Response, error) {
	reqBody := map[string]interface{}{
		"model": cfg.Model,
		"input": messages,
	}
	if len(vectorStoreIDs) > 0 {
		reqBody["tools"] = []map[string]interface{}{
			{
				"type":             "file_search",
				"vector_store_ids": vectorStoreIDs,
			},
		}
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal responses request failed: %w", err)
	}

	url := strings.TrimRight(cfg.BaseURL, "/") + "/v1/responses"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("build responses request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("responses request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read responses body failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("responses status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed Response
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse responses json failed: %w", err)
	}
	return &parsed, nil
}

// ExtractText flattens a provider response to plain text. The convenience
// field wins when present; otherwise textual content items are concatenated
// in order. The result is trimmed and may be empty.
func ExtractText(resp *Response) string {
	if resp == nil {
		return ""
	}
	if text := strings.TrimSpace(resp.OutputText); text != "" {
		return text
	}

	var b strings.Builder
	for _, item := range resp.Output {
		for _, content := range item.Content {
			if content.Type != "" && content.Type != "output_text" && content.Type != "text" {
				continue
			}
			b.WriteString(content.Text)
		}
	}
	return strings.TrimSpace(b.String())
}
