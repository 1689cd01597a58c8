package opencv

import (
	"fmt"
	"image"
	"io"
	"sync"

	"github.com/eleven-am/cascade-detect/internal/media"
	"gocv.io/x/gocv"
)

const (
	DefaultFourCC = "mp4v"
	DefaultFPS    = 25.0
)

// Codec reads and writes video containers through OpenCV.
type Codec struct {
	FourCC     string
	DefaultFPS float64
}

func NewCodec() *Codec {
	return &Codec{FourCC: DefaultFourCC, DefaultFPS: DefaultFPS}
}

func (c *Codec) Open(path string) (media.FrameSource, error) {
	capture, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open video: %v", media.ErrDecode, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("%w: unrecognized video container", media.ErrDecode)
	}

	info := media.StreamInfo{
		Width:      int(capture.Get(gocv.VideoCaptureFrameWidth)),
		Height:     int(capture.Get(gocv.VideoCaptureFrameHeight)),
		FPS:        capture.Get(gocv.VideoCaptureFPS),
		FrameCount: int(capture.Get(gocv.VideoCaptureFrameCount)),
	}
	if info.Width <= 0 || info.Height <= 0 {
		capture.Close()
		return nil, fmt.Errorf("%w: zero dimension %dx%d", media.ErrDecode, info.Width, info.Height)
	}

	return &source{capture: capture, frame: gocv.NewMat(), info: info}, nil
}

func (c *Codec) Create(path string, info media.StreamInfo) (media.FrameSink, error) {
	if info.Width <= 0 || info.Height <= 0 {
		return nil, fmt.Errorf("%w: zero dimension %dx%d", media.ErrEncode, info.Width, info.Height)
	}

	fps := info.FPS
	if fps <= 0 {
		fps = c.DefaultFPS
	}

	writer, err := gocv.VideoWriterFile(path, c.FourCC, fps, info.Width, info.Height, true)
	if err != nil {
		return nil, fmt.Errorf("%w: create writer: %v", media.ErrEncode, err)
	}
	if !writer.IsOpened() {
		writer.Close()
		return nil, fmt.Errorf("%w: destination %s is not writable", media.ErrEncode, path)
	}

	return &sink{writer: writer}, nil
}

type source struct {
	capture *gocv.VideoCapture
	frame   gocv.Mat
	info    media.StreamInfo
	once    sync.Once
	err     error
}

func (s *source) Info() media.StreamInfo {
	return s.info
}

func (s *source) Next() (image.Image, error) {
	if ok := s.capture.Read(&s.frame); !ok || s.frame.Empty() {
		return nil, io.EOF
	}
	img, err := s.frame.ToImage()
	if err != nil {
		return nil, fmt.Errorf("%w: frame to image: %v", media.ErrDecode, err)
	}
	return img, nil
}

func (s *source) Close() error {
	s.once.Do(func() {
		s.frame.Close()
		s.err = s.capture.Close()
	})
	return s.err
}

type sink struct {
	writer *gocv.VideoWriter
	once   sync.Once
	err    error
}

func (s *sink) Write(frame image.Image) error {
	mat, err := gocv.ImageToMatRGB(frame)
	if err != nil {
		return fmt.Errorf("%w: image to mat: %v", media.ErrEncode, err)
	}
	defer mat.Close()

	if err := s.writer.Write(mat); err != nil {
		return fmt.Errorf("%w: write frame: %v", media.ErrEncode, err)
	}
	return nil
}

func (s *sink) Close() error {
	s.once.Do(func() {
		s.err = s.writer.Close()
	})
	return s.err
}
