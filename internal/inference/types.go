package inference

import (
	"errors"
	"fmt"
	"time"
)

const (
	DefaultBaseURL     = "https://api.openai.com/v1"
	DefaultTextModel   = "gpt-4o"
	DefaultVisionModel = "gpt-4o-mini"
	DefaultDetail      = "auto"
	defaultTimeout     = 60 * time.Second
)

var ErrEmptyCompletion = errors.New("completion contained no text")

type Config struct {
	APIKey      string
	BaseURL     string
	TextModel   string
	VisionModel string
	Detail      string
	Timeout     time.Duration
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.TextModel == "" {
		c.TextModel = DefaultTextModel
	}
	if c.VisionModel == "" {
		c.VisionModel = DefaultVisionModel
	}
	if c.Detail == "" {
		c.Detail = DefaultDetail
	}
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
	return c
}

// StatusError is returned when the provider answers with a non-2xx status.
// Body is kept for server-side logging only.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("provider returned status %d: %s", e.StatusCode, e.Body)
}
