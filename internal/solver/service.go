package solver

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/eleven-am/snapsolve/internal/normalize"
	"github.com/go-playground/validator/v10"
)

const defaultTimeout = 60 * time.Second

type Service struct {
	completer TextCompleter
	submitter ImageSubmitter
	validate  *validator.Validate
	timeout   time.Duration
	logger    *slog.Logger
}

func NewService(completer TextCompleter, submitter ImageSubmitter, timeout time.Duration, logger *slog.Logger) *Service {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Service{
		completer: completer,
		submitter: submitter,
		validate:  validator.New(),
		timeout:   timeout,
		logger:    logger,
	}
}

func (s *Service) Strategy() Strategy {
	return s.submitter.Strategy()
}

// AnswerText returns either the completion text or an error, never both.
// Provider failures are logged and collapsed into ErrAnswerFailed.
func (s *Service) AnswerText(ctx context.Context, question string) (string, error) {
	req, err := newTextRequest(s.validate, question)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	answer, err := s.completer.Complete(ctx, req.Question)
	if err != nil {
		s.logger.Error("text completion failed", "error", err)
		return "", ErrAnswerFailed
	}
	return answer, nil
}

func (s *Service) SolveImage(ctx context.Context, data []byte, mimeType, filename string) (string, error) {
	req, err := newImageRequest(s.validate, data, mimeType, filename)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	payload, err := s.submitter.Submit(ctx, req)
	if err != nil {
		s.logger.Error("image submission failed",
			"strategy", s.submitter.Strategy(),
			"mime_type", req.MimeType,
			"bytes", len(req.Data),
			"error", err)
		return "", ErrSolveFailed
	}

	s.logger.Debug("image solved",
		"strategy", s.submitter.Strategy(),
		"content_kind", payload.Content.Kind.String(),
		"latency_ms", time.Since(start).Milliseconds())

	return normalize.Text(payload), nil
}

// SolveFile solves the image at path and removes the file afterwards on every
// exit path. The caller hands over ownership of path.
func (s *Service) SolveFile(ctx context.Context, path, mimeType, filename string) (string, error) {
	defer s.remove(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrNoFile
		}
		s.logger.Error("failed to read upload", "path", path, "error", err)
		return "", ErrSolveFailed
	}

	if filename == "" {
		filename = filepath.Base(path)
	}
	return s.SolveImage(ctx, data, mimeType, filename)
}

func (s *Service) remove(path string) {
	if err := RemoveFile(path); err != nil {
		s.logger.Warn("failed to remove temp file", "path", path, "error", err)
	}
}

// RemoveFile deletes path, treating an already missing file as success.
func RemoveFile(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
