// Package gatewayclient is the overlay's HTTP client for the inference
// gateway.
package gatewayclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/eleven-am/snapsolve/internal/dto"
	"github.com/gabriel-vasile/mimetype"
)

const (
	DefaultURL     = "http://localhost:3000"
	formField      = "screenshot"
	maxReplyBytes  = 1 << 20
	defaultTimeout = 90 * time.Second
)

// Error is a non-2xx reply from the gateway. Message is the gateway's own
// client-safe error text.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("gateway returned %d: %s", e.StatusCode, e.Message)
}

func (e *Error) UserMessage() string {
	if e.Message == "" {
		return http.StatusText(e.StatusCode)
	}
	return e.Message
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Solve uploads the image at path as the screenshot form field.
func (c *Client) Solve(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, formField, filepath.Base(path)))
	h.Set("Content-Type", mimetype.Detect(data).String())
	part, err := w.CreatePart(h)
	if err != nil {
		return "", fmt.Errorf("create form part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("write form part: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close form: %w", err)
	}

	var resp dto.SolveResponse
	if err := c.do(ctx, http.MethodPost, "/api/solve", w.FormDataContentType(), body, &resp); err != nil {
		return "", err
	}
	return resp.Solution, nil
}

func (c *Client) Ask(ctx context.Context, question string) (string, error) {
	payload, err := json.Marshal(dto.AskRequest{Question: question})
	if err != nil {
		return "", fmt.Errorf("marshal question: %w", err)
	}

	var resp dto.AskResponse
	if err := c.do(ctx, http.MethodPost, "/api/ask", "application/json", bytes.NewReader(payload), &resp); err != nil {
		return "", err
	}
	return resp.Answer, nil
}

// Health calls the gateway liveness endpoint.
func (c *Client) Health(ctx context.Context) error {
	var resp map[string]string
	return c.do(ctx, http.MethodGet, "/health", "", nil, &resp)
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr dto.ErrorResponse
		_ = json.Unmarshal(data, &apiErr)
		return &Error{StatusCode: resp.StatusCode, Message: apiErr.Error}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
