package solver

import (
	"context"
	"fmt"
	"strings"

	"github.com/eleven-am/snapsolve/internal/normalize"
)

type Strategy string

const (
	StrategyEmbed  Strategy = "embed"
	StrategyUpload Strategy = "upload"
)

func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrategyEmbed:
		return StrategyEmbed, nil
	case StrategyUpload:
		return StrategyUpload, nil
	default:
		return "", fmt.Errorf("unknown image strategy %q", s)
	}
}

type TextCompleter interface {
	Complete(ctx context.Context, question string) (string, error)
}

// ImageDescriber sends prompt plus one image reference (URL or data URI) to a
// vision model and returns the raw payload for normalization.
type ImageDescriber interface {
	DescribeImage(ctx context.Context, prompt, imageURL string) (normalize.Payload, error)
}

type ObjectStore interface {
	Put(ctx context.Context, filename string, data []byte, contentType string) (string, error)
}

type ImageSubmitter interface {
	Submit(ctx context.Context, req ImageRequest) (normalize.Payload, error)
	Strategy() Strategy
}

type EmbedSubmitter struct {
	describer ImageDescriber
	prompt    string
}

func NewEmbedSubmitter(describer ImageDescriber, prompt string) *EmbedSubmitter {
	if prompt == "" {
		prompt = DefaultPrompt
	}
	return &EmbedSubmitter{describer: describer, prompt: prompt}
}

func (s *EmbedSubmitter) Submit(ctx context.Context, req ImageRequest) (normalize.Payload, error) {
	return s.describer.DescribeImage(ctx, s.prompt, DataURI(req.MimeType, req.Data))
}

func (s *EmbedSubmitter) Strategy() Strategy { return StrategyEmbed }

type UploadSubmitter struct {
	store     ObjectStore
	describer ImageDescriber
	prompt    string
}

func NewUploadSubmitter(store ObjectStore, describer ImageDescriber, prompt string) *UploadSubmitter {
	if prompt == "" {
		prompt = DefaultPrompt
	}
	return &UploadSubmitter{store: store, describer: describer, prompt: prompt}
}

func (s *UploadSubmitter) Submit(ctx context.Context, req ImageRequest) (normalize.Payload, error) {
	url, err := s.store.Put(ctx, req.Filename, req.Data, req.MimeType)
	if err != nil {
		return normalize.Payload{}, fmt.Errorf("upload image: %w", err)
	}
	return s.describer.DescribeImage(ctx, s.prompt, url)
}

func (s *UploadSubmitter) Strategy() Strategy { return StrategyUpload }
