package inference

import (
	"context"
	"net/http"
	"strings"

	"github.com/eleven-am/snapsolve/internal/normalize"
)

// ResponsesClient submits image references to the Responses endpoint. The
// body is returned unparsed beyond normalize.Parse because its shape is not
// stable across provider revisions.
type ResponsesClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	detail     string
}

func NewResponsesClient(cfg Config) *ResponsesClient {
	cfg = cfg.withDefaults()

	return &ResponsesClient{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.VisionModel,
		detail:     cfg.Detail,
	}
}

type responsesRequest struct {
	Model string           `json:"model"`
	Input []responsesInput `json:"input"`
}

type responsesInput struct {
	Role    string          `json:"role"`
	Content []responsesPart `json:"content"`
}

type responsesPart struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

func (c *ResponsesClient) DescribeImage(ctx context.Context, prompt, imageURL string) (normalize.Payload, error) {
	payload := responsesRequest{
		Model: c.model,
		Input: []responsesInput{
			{
				Role: "user",
				Content: []responsesPart{
					{Type: "input_text", Text: prompt},
					{Type: "input_image", ImageURL: imageURL, Detail: c.detail},
				},
			},
		},
	}

	body, err := postJSON(ctx, c.httpClient, c.baseURL+"/responses", c.apiKey, payload)
	if err != nil {
		return normalize.Payload{}, err
	}
	return normalize.Parse(body), nil
}
