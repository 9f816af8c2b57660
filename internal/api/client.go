package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/etouchhq/insure-chat/internal/domain"
)

// ClientConfig holds configuration for the backend client.
type ClientConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
}

// DefaultClientConfig returns the default client configuration.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL:        "http://localhost:8000",
		RequestTimeout: 30 * time.Second,
	}
}

// Client talks to the conversational-agent backend over JSON/HTTP.
type Client struct {
	baseURL string
	httpc   *http.Client
	logger  *slog.Logger
}

// NewClient creates a backend client. A nil logger falls back to the
// default slog logger.
func NewClient(cfg ClientConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultClientConfig().BaseURL
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultClientConfig().RequestTimeout
	}
	return &Client{
		baseURL: cfg.BaseURL,
		httpc:   &http.Client{Timeout: cfg.RequestTimeout},
		logger:  logger,
	}
}

// StartSession opens a new conversation and returns the backend-assigned
// session id plus an optional greeting.
func (c *Client) StartSession(ctx context.Context) (*StartSessionResponse, error) {
	var out StartSessionResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/chat/session/start", nil, &out); err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	return &out, nil
}

// SendTurn submits one user turn and returns the agent's reply.
func (c *Client) SendTurn(ctx context.Context, req *TurnRequest) (*TurnResponse, error) {
	var out TurnResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/chat/message", req, &out); err != nil {
		return nil, fmt.Errorf("send turn: %w", err)
	}
	return &out, nil
}

// SessionInfo fetches the administrative view of a session.
func (c *Client) SessionInfo(ctx context.Context, sessionID string) (*domain.SessionInfo, error) {
	var out domain.SessionInfo
	if err := c.doJSON(ctx, http.MethodGet, "/api/chat/session/"+sessionID, nil, &out); err != nil {
		return nil, fmt.Errorf("session info: %w", err)
	}
	return &out, nil
}

// History fetches the stored transcript of a session.
func (c *Client) History(ctx context.Context, sessionID string) (*HistoryResponse, error) {
	var out HistoryResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/chat/session/"+sessionID+"/history", nil, &out); err != nil {
		return nil, fmt.Errorf("session history: %w", err)
	}
	return &out, nil
}

// ResetSession tells the backend to discard a session.
func (c *Client) ResetSession(ctx context.Context, sessionID string) error {
	var out struct {
		Message string `json:"message"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/chat/session/"+sessionID+"/reset", nil, &out); err != nil {
		return fmt.Errorf("reset session: %w", err)
	}
	return nil
}

// Health checks backend component health.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/chat/health", nil, &out); err != nil {
		return nil, fmt.Errorf("health check: %w", err)
	}
	return &out, nil
}

// SyncFormData pushes the locally collected form sections for a session.
func (c *Client) SyncFormData(ctx context.Context, req *SyncFormDataRequest) (*SyncFormDataResponse, error) {
	var out SyncFormDataResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/agent/sync-form-data", req, &out); err != nil {
		return nil, fmt.Errorf("sync form data: %w", err)
	}
	return &out, nil
}

// SessionData pulls the authoritative form state for a session.
func (c *Client) SessionData(ctx context.Context, sessionID string) (*SessionDataResponse, error) {
	var out SessionDataResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/agent/session-data/"+sessionID, nil, &out); err != nil {
		return nil, fmt.Errorf("session data: %w", err)
	}
	return &out, nil
}

// UploadDocument uploads one document as multipart form data and returns
// the backend's stored file path.
func (c *Client) UploadDocument(ctx context.Context, file io.Reader, filename, documentType, sessionID string) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("create multipart file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("copy file contents: %w", err)
	}
	if err := writer.WriteField("document_type", documentType); err != nil {
		return "", fmt.Errorf("write document_type field: %w", err)
	}
	if err := writer.WriteField("session_id", sessionID); err != nil {
		return "", fmt.Errorf("write session_id field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/documents/upload", &body)
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload document: %w", err)
	}
	defer closeBody(resp.Body, c.logger)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", readHTTPError(resp)
	}

	var out UploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	return out.FilePath, nil
}

// doJSON performs one JSON request/response cycle against the backend.
func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer closeBody(resp.Body, c.logger)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return readHTTPError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}

func readHTTPError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &HTTPError{Status: resp.StatusCode, Body: string(bytes.TrimSpace(raw))}
}

func closeBody(body io.ReadCloser, logger *slog.Logger) {
	if err := body.Close(); err != nil {
		logger.Warn("failed to close response body", "error", err)
	}
}
