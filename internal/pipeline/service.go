package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"runtime"
	"sync/atomic"

	"github.com/eleven-am/cascade-detect/internal/annotate"
	"github.com/eleven-am/cascade-detect/internal/detect"
	"github.com/eleven-am/cascade-detect/internal/dto"
	"github.com/eleven-am/cascade-detect/internal/media"
	"github.com/eleven-am/cascade-detect/internal/report"
	"golang.org/x/sync/semaphore"
)

type Config struct {
	Dispatcher    *detect.Dispatcher
	Codec         media.VideoCodec
	VideoPolicy   report.VideoPolicy
	JPEGQuality   int
	MaxConcurrent int
	Logger        *slog.Logger
}

type ImageResult struct {
	JPEG       []byte
	Width      int
	Height     int
	Regions    []detect.Region
	Detections []string
}

type OverlayResult struct {
	Boxes      []dto.Box
	Colors     []string
	Detections []string
}

type VideoResult struct {
	Frames     int
	Info       media.StreamInfo
	Totals     report.Counts
	Detections []string
}

type Service struct {
	dispatcher *detect.Dispatcher
	codec      media.VideoCodec
	policy     report.VideoPolicy
	quality    int
	sem        *semaphore.Weighted
	logger     *slog.Logger

	active int64
	total  uint64
}

func NewService(cfg Config) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	quality := cfg.JPEGQuality
	if quality <= 0 || quality > 100 {
		quality = media.DefaultJPEGQuality
	}
	limit := cfg.MaxConcurrent
	if limit <= 0 {
		limit = runtime.NumCPU()
	}
	policy := cfg.VideoPolicy
	if policy == "" {
		policy = report.PolicyTotals
	}

	return &Service{
		dispatcher: cfg.Dispatcher,
		codec:      cfg.Codec,
		policy:     policy,
		quality:    quality,
		sem:        semaphore.NewWeighted(int64(limit)),
		logger:     logger.With("component", "pipeline"),
	}
}

func (s *Service) ActiveJobs() int64 {
	return atomic.LoadInt64(&s.active)
}

func (s *Service) TotalJobs() uint64 {
	return atomic.LoadUint64(&s.total)
}

func (s *Service) admit(ctx context.Context) (func(), error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("admit job: %w", err)
	}
	atomic.AddInt64(&s.active, 1)
	atomic.AddUint64(&s.total, 1)
	return func() {
		atomic.AddInt64(&s.active, -1)
		s.sem.Release(1)
	}, nil
}

// ProcessImage decodes data, burns the detections into the raster and
// returns it JPEG encoded.
func (s *Service) ProcessImage(ctx context.Context, job *Job, data []byte) (*ImageResult, error) {
	release, err := s.admit(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	img, err := media.DecodeImage(data)
	if err != nil {
		return nil, err
	}
	if err := job.Advance(StateDecoded); err != nil {
		return nil, err
	}

	regions, err := s.detect(job, detect.ToGray(img))
	if err != nil {
		return nil, err
	}
	if err := job.Advance(StateDetected); err != nil {
		return nil, err
	}

	annotate.Draw(img, regions)
	if err := job.Advance(StateAnnotated); err != nil {
		return nil, err
	}

	out, err := media.EncodeJPEG(img, s.quality)
	if err != nil {
		return nil, err
	}
	if err := job.Advance(StateEncoded); err != nil {
		return nil, err
	}

	b := img.Bounds()
	return &ImageResult{
		JPEG:       out,
		Width:      b.Dx(),
		Height:     b.Dy(),
		Regions:    regions,
		Detections: report.Summarize(job.Category, regions),
	}, nil
}

// Overlay detects on data and returns the rectangles for client-side drawing.
// The raster is left untouched.
func (s *Service) Overlay(ctx context.Context, job *Job, data []byte) (*OverlayResult, error) {
	release, err := s.admit(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	img, err := media.DecodeImage(data)
	if err != nil {
		return nil, err
	}
	if err := job.Advance(StateDecoded); err != nil {
		return nil, err
	}

	regions, err := s.detect(job, detect.ToGray(img))
	if err != nil {
		return nil, err
	}
	if err := job.Advance(StateDetected); err != nil {
		return nil, err
	}

	boxes, colors := annotate.Overlay(regions)
	if err := job.Advance(StateAnnotated); err != nil {
		return nil, err
	}

	return &OverlayResult{
		Boxes:      boxes,
		Colors:     colors,
		Detections: report.Summarize(job.Category, regions),
	}, nil
}

// ProcessVideo reads inPath frame by frame and writes the annotated frames to
// outPath in their original order.
func (s *Service) ProcessVideo(ctx context.Context, job *Job, inPath, outPath string) (*VideoResult, error) {
	if s.codec == nil {
		return nil, fmt.Errorf("%w: no video codec configured", media.ErrDecode)
	}

	release, err := s.admit(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	src, err := s.codec.Open(inPath)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	if err := job.Advance(StateDecoded); err != nil {
		return nil, err
	}

	info := src.Info()
	sink, err := s.codec.Create(outPath, info)
	if err != nil {
		return nil, err
	}
	defer sink.Close()

	summary := report.NewVideoSummary(s.policy, job.Category)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		frame, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", summary.Frames(), err)
		}

		rgba := media.ToRGBA(frame)
		regions, err := s.detect(job, detect.ToGray(rgba))
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", summary.Frames(), err)
		}
		annotate.Draw(rgba, regions)

		if err := sink.Write(rgba); err != nil {
			return nil, fmt.Errorf("frame %d: %w", summary.Frames(), err)
		}
		summary.AddFrame(regions)
	}

	if err := job.Advance(StateAnnotated); err != nil {
		return nil, err
	}
	if err := sink.Close(); err != nil {
		return nil, fmt.Errorf("%w: finalize video: %v", media.ErrEncode, err)
	}
	if err := job.Advance(StateEncoded); err != nil {
		return nil, err
	}

	s.logger.Debug("video processed", "job_id", job.ID, "frames", summary.Frames(), "source_frames", info.FrameCount, "fps", info.FPS)

	return &VideoResult{
		Frames:     summary.Frames(),
		Info:       info,
		Totals:     summary.Totals(),
		Detections: summary.Lines(),
	}, nil
}

func (s *Service) detect(job *Job, gray *image.Gray) ([]detect.Region, error) {
	regions, err := s.dispatcher.DetectGray(gray, job.Category)
	if err == nil {
		return regions, nil
	}
	if errors.Is(err, detect.ErrClassifierUnavailable) && !s.dispatcher.Strict(job.Category) {
		if job.markDegraded() {
			s.logger.Warn("classifier unavailable, returning empty detections",
				"job_id", job.ID, "category", string(job.Category), "error", err)
		}
		return nil, nil
	}
	return nil, err
}
