package pipeline

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/eleven-am/cascade-detect/internal/detect"
	"github.com/eleven-am/cascade-detect/internal/media"
)

type mockClassifier struct {
	mu    sync.Mutex
	rects []image.Rectangle
	err   error
	calls int
}

func (m *mockClassifier) DetectMultiScale(gray *image.Gray, p detect.Params) ([]image.Rectangle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	out := make([]image.Rectangle, len(m.rects))
	copy(out, m.rects)
	return out, nil
}

func fixed(rects ...image.Rectangle) *mockClassifier {
	return &mockClassifier{rects: rects}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func grayPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{128, 128, 128, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

type fakeSource struct {
	info   media.StreamInfo
	frames int
	read   int
	err    error
	closed bool
}

func (f *fakeSource) Info() media.StreamInfo { return f.info }

func (f *fakeSource) Next() (image.Image, error) {
	if f.err != nil && f.read == f.frames/2 {
		return nil, f.err
	}
	if f.read >= f.frames {
		return nil, io.EOF
	}
	f.read++
	img := image.NewRGBA(image.Rect(0, 0, f.info.Width, f.info.Height))
	for i := range img.Pix {
		img.Pix[i] = 90
	}
	return img, nil
}

func (f *fakeSource) Close() error {
	f.closed = true
	return nil
}

type fakeSink struct {
	frames []image.Image
	closes int
	err    error
}

func (f *fakeSink) Write(frame image.Image) error {
	if f.err != nil {
		return f.err
	}
	f.frames = append(f.frames, frame)
	return nil
}

func (f *fakeSink) Close() error {
	f.closes++
	return nil
}

type fakeCodec struct {
	source  *fakeSource
	sink    *fakeSink
	openErr error
	info    media.StreamInfo
}

func (c *fakeCodec) Open(path string) (media.FrameSource, error) {
	if c.openErr != nil {
		return nil, c.openErr
	}
	return c.source, nil
}

func (c *fakeCodec) Create(path string, info media.StreamInfo) (media.FrameSink, error) {
	if info.Width <= 0 || info.Height <= 0 {
		return nil, errors.New("bad dimensions")
	}
	c.info = info
	return c.sink, nil
}
