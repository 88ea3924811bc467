// Package client provides an HTTP client for the StudyBuddy tutoring service.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"time"
)

// DefaultTimeout bounds every request issued by the client. The upstream
// model call can be slow, so this is generous but finite.
const DefaultTimeout = 30 * time.Second

// Client talks to the StudyBuddy backend API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the given base URL.
// If baseURL is empty, uses the STUDYBUDDY_SERVER_URL env var or defaults to
// localhost:8000. The timeout can be configured via STUDYBUDDY_CLIENT_TIMEOUT.
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = os.Getenv("STUDYBUDDY_SERVER_URL")
	}
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}

	timeout := DefaultTimeout
	if t := os.Getenv("STUDYBUDDY_CLIENT_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			timeout = d
		}
	}

	return NewWithTimeout(baseURL, timeout)
}

// NewWithTimeout creates a client with an explicit request timeout.
func NewWithTimeout(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// BaseURL returns the configured server base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// apiError is the error body the server attaches to non-2xx responses.
type apiError struct {
	Error      string `json:"error"`
	StatusCode int    `json:"status_code"`
	Timestamp  string `json:"timestamp"`
}

// do issues the request and decodes a 2xx JSON body into result.
// Non-2xx responses are converted to errors carrying the server's diagnostic
// when one is present.
func (c *Client) do(req *http.Request, result any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("server error: %s - %s", resp.Status, apiErr.Error)
		}
		return fmt.Errorf("server error: %s", resp.Status)
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}

	return nil
}

// getJSON issues a GET request against path and decodes the response.
func (c *Client) getJSON(ctx context.Context, path string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.do(req, result)
}

// postJSON issues a POST request with a JSON body and decodes the response.
func (c *Client) postJSON(ctx context.Context, path string, payload, result any) error {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, result)
}

// =============================================================================
// HEALTH
// =============================================================================

// HealthStatus is the server's health report.
type HealthStatus struct {
	Status               string `json:"status"`
	Timestamp            string `json:"timestamp"`
	APIConnection        string `json:"api_connection"`
	Model                string `json:"model"`
	RAGAvailable         bool   `json:"rag_available"`
	ConversationMessages int    `json:"conversation_messages"`
}

// Health probes the server. Any error means "disconnected"; the result is
// informational only and never blocks other operations.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var status HealthStatus
	if err := c.getJSON(ctx, "/health", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// =============================================================================
// CHAT
// =============================================================================

// ChatRequest is the payload for one chat turn.
type ChatRequest struct {
	Message string `json:"message"`
	Mode    string `json:"mode"`
	UseRAG  bool   `json:"use_rag"`
}

// ChatResponse is the assistant's reply with turn metadata.
type ChatResponse struct {
	Response           string `json:"response"`
	MessageID          int    `json:"message_id"`
	Mode               string `json:"mode"`
	Model              string `json:"model"`
	Timestamp          string `json:"timestamp"`
	ConversationLength int    `json:"conversation_length"`
	RAGUsed            bool   `json:"rag_used"`
}

// Chat sends one user message and returns the assistant's reply.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	var resp ChatResponse
	if err := c.postJSON(ctx, "/chat", req, &resp); err != nil {
		return nil, err
	}
	if resp.Response == "" {
		return nil, fmt.Errorf("malformed chat response: missing response field")
	}
	return &resp, nil
}

// =============================================================================
// UPLOAD
// =============================================================================

// UploadResult summarizes a document ingestion.
type UploadResult struct {
	Success     bool   `json:"success"`
	Filename    string `json:"filename"`
	ChunksAdded int    `json:"chunks_added"`
	Message     string `json:"message"`
	// Errmsg is set instead of Success on 2xx responses that carry a
	// server-side processing failure.
	Errmsg string `json:"error"`
}

// Upload sends a document to the knowledge base as multipart form data.
func (c *Client) Upload(ctx context.Context, filename string, file io.Reader, description string) (*UploadResult, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("copy file contents: %w", err)
	}
	if description != "" {
		if err := w.WriteField("description", description); err != nil {
			return nil, fmt.Errorf("write description field: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var result UploadResult
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	if result.Errmsg != "" {
		return nil, fmt.Errorf("ingestion failed: %s", result.Errmsg)
	}
	return &result, nil
}

// =============================================================================
// HISTORY
// =============================================================================

// HistoryMessage is one entry of the server-side transcript.
type HistoryMessage struct {
	ID        int    `json:"id"`
	Role      string `json:"role"`
	Message   string `json:"message"`
	Mode      string `json:"mode"`
	Timestamp string `json:"timestamp"`
	Model     string `json:"model,omitempty"`
}

// HistoryPage is a paginated slice of the server-side transcript.
type HistoryPage struct {
	Messages []HistoryMessage `json:"messages"`
	Total    int              `json:"total"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
	HasMore  bool             `json:"has_more"`
}

// History fetches the server-side transcript. mode filters by conversational
// mode when non-empty.
func (c *Client) History(ctx context.Context, limit, offset int, mode string) (*HistoryPage, error) {
	path := fmt.Sprintf("/history?limit=%d&offset=%d", limit, offset)
	if mode != "" {
		path += "&mode=" + mode
	}
	var page HistoryPage
	if err := c.getJSON(ctx, path, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ClearHistory clears the server-side transcript and returns the number of
// removed messages.
func (c *Client) ClearHistory(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/history?confirm=true", nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}

	var result struct {
		Success      bool   `json:"success"`
		Message      string `json:"message"`
		ClearedCount int    `json:"cleared_count"`
	}
	if err := c.do(req, &result); err != nil {
		return 0, err
	}
	return result.ClearedCount, nil
}

// =============================================================================
// FEEDBACK AND STATS
// =============================================================================

// Feedback rates a previous assistant response.
type Feedback struct {
	Rating    int    `json:"rating"`
	Comment   string `json:"comment,omitempty"`
	MessageID int    `json:"message_id,omitempty"`
}

// SubmitFeedback sends a rating for an assistant response.
func (c *Client) SubmitFeedback(ctx context.Context, fb Feedback) error {
	if fb.Rating < 1 || fb.Rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5, got %d", fb.Rating)
	}
	var result struct {
		Success bool `json:"success"`
	}
	return c.postJSON(ctx, "/feedback", fb, &result)
}

// RAGStats describes the server's knowledge-base state.
type RAGStats struct {
	Status         string `json:"status"`
	EmbeddingModel string `json:"embedding_model"`
	CollectionName string `json:"collection_name"`
	ChunkSize      int    `json:"chunk_size"`
	SearchResults  int    `json:"search_results"`
}

// GetRAGStats fetches knowledge-base statistics.
func (c *Client) GetRAGStats(ctx context.Context) (*RAGStats, error) {
	var stats RAGStats
	if err := c.getJSON(ctx, "/rag/stats", &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
