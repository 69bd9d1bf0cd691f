package inference

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/eleven-am/snapsolve/internal/normalize"
	"github.com/sashabaranov/go-openai"
)

// Client talks to an OpenAI-compatible chat completions endpoint. It serves
// both plain questions and images embedded as data URIs.
type Client struct {
	api         *openai.Client
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	textModel   string
	visionModel string
	detail      openai.ImageURLDetail
}

func NewClient(cfg Config) *Client {
	cfg = cfg.withDefaults()

	httpClient := &http.Client{Timeout: cfg.Timeout}
	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = cfg.BaseURL
	oc.HTTPClient = httpClient

	return &Client{
		api:         openai.NewClientWithConfig(oc),
		httpClient:  httpClient,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		textModel:   cfg.TextModel,
		visionModel: cfg.VisionModel,
		detail:      openai.ImageURLDetail(cfg.Detail),
	}
}

// Complete sends question as a single-turn conversation and returns the text
// of the top choice.
func (c *Client) Complete(ctx context.Context, question string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.textModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: question},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}

// DescribeImage asks the vision model to answer prompt about the image at
// imageURL, which may be a public URL or a data URI. The reply is not decoded
// into go-openai's message type: providers return content as strings, part
// lists or single tagged objects, and only the normalizer accepts all three.
func (c *Client) DescribeImage(ctx context.Context, prompt, imageURL string) (normalize.Payload, error) {
	req := openai.ChatCompletionRequest{
		Model: c.visionModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: prompt},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    imageURL,
							Detail: c.detail,
						},
					},
				},
			},
		},
	}

	body, err := postJSON(ctx, c.httpClient, c.baseURL+"/chat/completions", c.apiKey, req)
	if err != nil {
		return normalize.Payload{}, fmt.Errorf("vision completion: %w", err)
	}
	return normalize.Parse(body), nil
}
