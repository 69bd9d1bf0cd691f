package desktop

import (
	"bytes"
	"context"
	"fmt"
	"image/png"

	"github.com/kbinani/screenshot"
)

// Screen grabs one display and encodes it as PNG.
type Screen struct {
	display int
}

func NewScreen(display int) *Screen {
	return &Screen{display: display}
}

func (s *Screen) Capture(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil, fmt.Errorf("no active displays")
	}
	if s.display < 0 || s.display >= n {
		return nil, fmt.Errorf("display %d out of range (have %d)", s.display, n)
	}

	img, err := screenshot.CaptureDisplay(s.display)
	if err != nil {
		return nil, fmt.Errorf("capture display %d: %w", s.display, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
