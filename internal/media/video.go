package media

import "image"

type StreamInfo struct {
	Width      int
	Height     int
	FPS        float64
	FrameCount int
}

// FrameSource yields decoded frames in temporal order. Next returns io.EOF once
// the stream is exhausted. Close releases the underlying file handle.
type FrameSource interface {
	Info() StreamInfo
	Next() (image.Image, error)
	Close() error
}

// FrameSink appends frames to an output container. Close finalizes the file.
type FrameSink interface {
	Write(frame image.Image) error
	Close() error
}

type VideoCodec interface {
	Open(path string) (FrameSource, error)
	Create(path string, info StreamInfo) (FrameSink, error)
}
