package capture

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/eleven-am/snapsolve/internal/delivery"
	"github.com/gabriel-vasile/mimetype"
)

const (
	tempPrefix     = "snapsolve-"
	defaultTimeout = 60 * time.Second
)

var ErrOutsideCaptureDir = errors.New("path is not a capture file")

type Config struct {
	Dir     string
	Timeout time.Duration
}

type userMessager interface {
	UserMessage() string
}

type Trigger struct {
	screen  Screen
	solver  Solver
	pub     delivery.Publisher
	dir     string
	timeout time.Duration
	logger  *slog.Logger

	wg sync.WaitGroup
}

func NewTrigger(screen Screen, solver Solver, pub delivery.Publisher, cfg Config, logger *slog.Logger) (*Trigger, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "snapsolve")
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve capture dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create capture dir: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Trigger{
		screen:  screen,
		solver:  solver,
		pub:     pub,
		dir:     dir,
		timeout: timeout,
		logger:  logger.With("component", "capture"),
	}, nil
}

func (t *Trigger) Dir() string {
	return t.dir
}

// CaptureAndSubmit grabs the screen and runs the pipeline. It returns the
// request id once a terminal notification has been published.
func (t *Trigger) CaptureAndSubmit(ctx context.Context) string {
	return t.run(ctx, "", SourceHotkey, func() ([]byte, string) {
		data, err := t.screen.Capture(ctx)
		if err != nil {
			t.logger.Error("screen capture failed", "error", err)
			return nil, msgCaptureFailed
		}
		return data, ""
	})
}

// SubmitBytes runs the pipeline for an image buffer handed over by the UI.
func (t *Trigger) SubmitBytes(ctx context.Context, data []byte, source Source) string {
	return t.run(ctx, "", source, func() ([]byte, string) {
		return data, ""
	})
}

// SubmitDrop is SubmitBytes for a dropped buffer whose request id was chosen
// by the UI.
func (t *Trigger) SubmitDrop(ctx context.Context, id string, data []byte) string {
	return t.run(ctx, id, SourceDrop, func() ([]byte, string) {
		return data, ""
	})
}

// SubmitFile runs the pipeline for an image on disk. The original file is
// copied and left in place.
func (t *Trigger) SubmitFile(ctx context.Context, path string) string {
	return t.SubmitPath(ctx, "", path)
}

func (t *Trigger) SubmitPath(ctx context.Context, id, path string) string {
	return t.run(ctx, id, SourceFile, func() ([]byte, string) {
		data, err := os.ReadFile(path)
		if err != nil {
			t.logger.Error("failed to read image file", "path", path, "error", err)
			return nil, msgReadFailed
		}
		return data, ""
	})
}

// Go runs fn on its own goroutine and tracks it for Wait.
func (t *Trigger) Go(fn func()) {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		fn()
	}()
}

func (t *Trigger) Wait() {
	t.wg.Wait()
}

func (t *Trigger) run(ctx context.Context, id string, source Source, acquire func() ([]byte, string)) string {
	tracker := delivery.NewTracker(t.pub, delivery.KindSolve, id, t.logger)
	defer tracker.Close(ctx)

	req := Request{ID: tracker.ID(), Source: source, CreatedAt: time.Now()}
	logger := t.logger.With("request_id", req.ID, "source", source)

	data, failure := acquire()
	if failure != "" {
		tracker.Fail(ctx, failure)
		return req.ID
	}
	if len(data) == 0 {
		tracker.Fail(ctx, msgEmptyImage)
		return req.ID
	}
	req.Data = data

	path, err := t.writeTemp(data)
	if err != nil {
		logger.Error("failed to write temp file", "error", err)
		tracker.Fail(ctx, msgSaveFailed)
		return req.ID
	}
	req.Path = path
	defer t.remove(logger, path)

	tracker.Captured(ctx, path)

	solveCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	solution, err := t.solver.Solve(solveCtx, path)
	if err != nil {
		logger.Error("solve failed", "path", path, "error", err)
		tracker.Fail(ctx, failureMessage(err))
		return req.ID
	}

	logger.Info("solution received", "latency_ms", time.Since(req.CreatedAt).Milliseconds())
	tracker.Resolve(ctx, solution)
	return req.ID
}

func failureMessage(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return msgTimedOut
	}
	var um userMessager
	if errors.As(err, &um) {
		return um.UserMessage()
	}
	return msgSolveFailed
}

// tempExt names the temp file after the sniffed image format. Unrecognized
// bytes keep the screenshot default.
func tempExt(data []byte) string {
	mt := mimetype.Detect(data)
	if strings.HasPrefix(mt.String(), "image/") && mt.Extension() != "" {
		return mt.Extension()
	}
	return ".png"
}

func (t *Trigger) writeTemp(data []byte) (string, error) {
	f, err := os.CreateTemp(t.dir, fmt.Sprintf("%s%d-*%s", tempPrefix, time.Now().UnixNano(), tempExt(data)))
	if err != nil {
		return "", err
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

func (t *Trigger) remove(logger *slog.Logger, path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("failed to remove temp file", "path", path, "error", err)
	}
}

// ReadFile serves the UI's read-file request. Only capture temp files are
// readable.
func (t *Trigger) ReadFile(path string) ([]byte, error) {
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return nil, ErrOutsideCaptureDir
	}
	if filepath.Dir(abs) != t.dir || !strings.HasPrefix(filepath.Base(abs), tempPrefix) {
		return nil, ErrOutsideCaptureDir
	}
	return os.ReadFile(abs)
}
