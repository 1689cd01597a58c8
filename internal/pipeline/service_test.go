package pipeline

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	"reflect"
	"testing"

	"github.com/eleven-am/cascade-detect/internal/annotate"
	"github.com/eleven-am/cascade-detect/internal/detect"
	"github.com/eleven-am/cascade-detect/internal/media"
	"github.com/eleven-am/cascade-detect/internal/report"
)

func newService(models detect.Models, policy detect.FallbackPolicy, codec media.VideoCodec, vp report.VideoPolicy) *Service {
	return NewService(Config{
		Dispatcher:    detect.NewDispatcher(models, policy, testLogger()),
		Codec:         codec,
		VideoPolicy:   vp,
		MaxConcurrent: 2,
		Logger:        testLogger(),
	})
}

func TestProcessImage_SolidGrayFace(t *testing.T) {
	svc := newService(detect.Models{Face: fixed(), Eye: fixed()}, detect.FallbackSubstitute, nil, report.PolicyTotals)
	job := NewJob(detect.CategoryFace, testLogger())

	res, err := svc.ProcessImage(context.Background(), job, grayPNG(t, 100, 100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.Regions) != 0 {
		t.Errorf("expected no regions, got %d", len(res.Regions))
	}
	if want := []string{"No faces or eyes detected."}; !reflect.DeepEqual(res.Detections, want) {
		t.Errorf("got %v, want %v", res.Detections, want)
	}
	if job.State() != StateEncoded {
		t.Errorf("expected encoded, got %s", job.State())
	}

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(res.JPEG))
	if err != nil {
		t.Fatalf("output is not a jpeg: %v", err)
	}
	if cfg.Width != 100 || cfg.Height != 100 {
		t.Errorf("expected 100x100, got %dx%d", cfg.Width, cfg.Height)
	}
}

func TestProcessImage_FaceAndEyes(t *testing.T) {
	face := image.Rect(20, 20, 60, 60)
	svc := newService(detect.Models{
		Face: fixed(face),
		Eye:  fixed(image.Rect(5, 5, 15, 15), image.Rect(25, 5, 35, 15)),
	}, detect.FallbackSubstitute, nil, report.PolicyTotals)
	job := NewJob(detect.CategoryFace, testLogger())

	res, err := svc.ProcessImage(context.Background(), job, grayPNG(t, 100, 100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"Detected 1 face(s) and 2 eye(s)."}; !reflect.DeepEqual(res.Detections, want) {
		t.Errorf("got %v, want %v", res.Detections, want)
	}
	for _, r := range res.Regions {
		if r.Kind == detect.KindEye && !r.Rect.In(face) {
			t.Errorf("eye %v outside face %v", r.Rect, face)
		}
	}
}

func TestProcessImage_DecodeError(t *testing.T) {
	svc := newService(detect.Models{Face: fixed()}, detect.FallbackSubstitute, nil, report.PolicyTotals)
	job := NewJob(detect.CategoryFace, testLogger())

	_, err := svc.ProcessImage(context.Background(), job, []byte("not an image"))
	if !errors.Is(err, media.ErrDecode) {
		t.Errorf("expected ErrDecode, got %v", err)
	}
	if job.State() != StateReceived {
		t.Errorf("expected job to stay received, got %s", job.State())
	}
}

func TestProcessImage_MissingModelDegrades(t *testing.T) {
	svc := newService(detect.Models{}, detect.FallbackSubstitute, nil, report.PolicyTotals)
	job := NewJob(detect.CategoryPedestrian, testLogger())

	res, err := svc.ProcessImage(context.Background(), job, grayPNG(t, 40, 40))
	if err != nil {
		t.Fatalf("expected degraded success, got %v", err)
	}
	if want := []string{"No pedestrians detected."}; !reflect.DeepEqual(res.Detections, want) {
		t.Errorf("got %v, want %v", res.Detections, want)
	}
}

func TestProcessImage_StrictVehicleFails(t *testing.T) {
	svc := newService(detect.Models{Face: fixed()}, detect.FallbackFail, nil, report.PolicyTotals)
	job := NewJob(detect.CategoryVehicle, testLogger())

	_, err := svc.ProcessImage(context.Background(), job, grayPNG(t, 40, 40))
	if !errors.Is(err, detect.ErrClassifierUnavailable) {
		t.Errorf("expected ErrClassifierUnavailable, got %v", err)
	}
}

func TestProcessImage_ClassifierError(t *testing.T) {
	svc := newService(detect.Models{Pedestrian: &mockClassifier{err: errors.New("cascade exploded")}}, detect.FallbackSubstitute, nil, report.PolicyTotals)
	job := NewJob(detect.CategoryPedestrian, testLogger())

	_, err := svc.ProcessImage(context.Background(), job, grayPNG(t, 40, 40))
	if err == nil {
		t.Fatal("expected error")
	}
	if job.State() != StateDecoded {
		t.Errorf("expected decoded, got %s", job.State())
	}
}

func TestProcessImage_CanceledContext(t *testing.T) {
	svc := NewService(Config{
		Dispatcher:    detect.NewDispatcher(detect.Models{Face: fixed()}, detect.FallbackSubstitute, testLogger()),
		MaxConcurrent: 1,
		Logger:        testLogger(),
	})

	hold, err := svc.admit(context.Background())
	if err != nil {
		t.Fatalf("admit: %v", err)
	}
	defer hold()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = svc.ProcessImage(ctx, NewJob(detect.CategoryFace, testLogger()), grayPNG(t, 10, 10))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if svc.ActiveJobs() != 1 {
		t.Errorf("expected 1 active job, got %d", svc.ActiveJobs())
	}
}

func TestOverlay_VehicleBoxes(t *testing.T) {
	svc := newService(detect.Models{Vehicle: fixed(image.Rect(10, 20, 50, 40))}, detect.FallbackSubstitute, nil, report.PolicyTotals)
	job := NewJob(detect.CategoryVehicle, testLogger())

	res, err := svc.Overlay(context.Background(), job, grayPNG(t, 80, 80))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.Boxes) < 1 {
		t.Fatal("expected at least one box")
	}
	if len(res.Colors) != len(res.Boxes) {
		t.Fatalf("expected %d colors, got %d", len(res.Boxes), len(res.Colors))
	}
	for _, c := range res.Colors {
		if c != annotate.Tag(detect.KindVehicle) {
			t.Errorf("expected vehicle tag, got %s", c)
		}
	}
	b := res.Boxes[0]
	if b.X != 10 || b.Y != 20 || b.Width != 40 || b.Height != 20 {
		t.Errorf("unexpected box %+v", b)
	}
	if want := []string{"Detected 1 vehicle(s)."}; !reflect.DeepEqual(res.Detections, want) {
		t.Errorf("got %v, want %v", res.Detections, want)
	}
}

func TestProcessVideo_PreservesFrameCount(t *testing.T) {
	src := &fakeSource{info: media.StreamInfo{Width: 32, Height: 24, FPS: 24, FrameCount: 10}, frames: 10}
	sink := &fakeSink{}
	codec := &fakeCodec{source: src, sink: sink}
	svc := newService(detect.Models{Pedestrian: fixed()}, detect.FallbackSubstitute, codec, report.PolicyTotals)
	job := NewJob(detect.CategoryPedestrian, testLogger())

	res, err := svc.ProcessVideo(context.Background(), job, "in.mp4", "out.mp4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(sink.frames) != 10 || res.Frames != 10 {
		t.Errorf("expected 10 frames written, got %d (reported %d)", len(sink.frames), res.Frames)
	}
	want := []string{"Processed 10 frames.", "Detected 0 pedestrian instances."}
	if !reflect.DeepEqual(res.Detections, want) {
		t.Errorf("got %v, want %v", res.Detections, want)
	}
	if codec.info.FPS != 24 || codec.info.Width != 32 || codec.info.Height != 24 {
		t.Errorf("sink created with %+v", codec.info)
	}
	if !src.closed {
		t.Error("expected source to be closed")
	}
	if sink.closes == 0 {
		t.Error("expected sink to be closed")
	}
	if job.State() != StateEncoded {
		t.Errorf("expected encoded, got %s", job.State())
	}
}

func TestProcessVideo_Totals(t *testing.T) {
	src := &fakeSource{info: media.StreamInfo{Width: 32, Height: 24, FPS: 25, FrameCount: 3}, frames: 3}
	codec := &fakeCodec{source: src, sink: &fakeSink{}}
	models := detect.Models{Vehicle: fixed(image.Rect(1, 1, 10, 10), image.Rect(12, 4, 30, 20))}
	svc := newService(models, detect.FallbackSubstitute, codec, report.PolicyTotals)
	job := NewJob(detect.CategoryVehicle, testLogger())

	res, err := svc.ProcessVideo(context.Background(), job, "in.mp4", "out.mp4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Totals[detect.KindVehicle] != 6 {
		t.Errorf("expected 6 vehicles across 3 frames, got %d", res.Totals[detect.KindVehicle])
	}
	want := []string{"Processed 3 frames.", "Detected 6 vehicle instances."}
	if !reflect.DeepEqual(res.Detections, want) {
		t.Errorf("got %v, want %v", res.Detections, want)
	}
}

func TestProcessVideo_PerFrame(t *testing.T) {
	src := &fakeSource{info: media.StreamInfo{Width: 32, Height: 32, FPS: 30}, frames: 2}
	codec := &fakeCodec{source: src, sink: &fakeSink{}}
	svc := newService(detect.Models{Face: fixed(image.Rect(0, 0, 10, 10))}, detect.FallbackSubstitute, codec, report.PolicyPerFrame)
	job := NewJob(detect.CategoryVehicle, testLogger())

	res, err := svc.ProcessVideo(context.Background(), job, "in.mp4", "out.mp4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"Frame 0: Detected 1 vehicle(s).", "Frame 1: Detected 1 vehicle(s)."}
	if !reflect.DeepEqual(res.Detections, want) {
		t.Errorf("got %v, want %v", res.Detections, want)
	}
}

func TestProcessVideo_OpenError(t *testing.T) {
	codec := &fakeCodec{openErr: media.ErrDecode}
	svc := newService(detect.Models{Pedestrian: fixed()}, detect.FallbackSubstitute, codec, report.PolicyTotals)

	_, err := svc.ProcessVideo(context.Background(), NewJob(detect.CategoryPedestrian, testLogger()), "in.mp4", "out.mp4")
	if !errors.Is(err, media.ErrDecode) {
		t.Errorf("expected ErrDecode, got %v", err)
	}
	if svc.ActiveJobs() != 0 {
		t.Errorf("expected admission released, got %d active", svc.ActiveJobs())
	}
}

func TestProcessVideo_MidStreamFailureClosesHandles(t *testing.T) {
	boom := errors.New("corrupt packet")
	src := &fakeSource{info: media.StreamInfo{Width: 16, Height: 16, FPS: 25}, frames: 6, err: boom}
	sink := &fakeSink{}
	codec := &fakeCodec{source: src, sink: sink}
	svc := newService(detect.Models{Pedestrian: fixed()}, detect.FallbackSubstitute, codec, report.PolicyTotals)

	_, err := svc.ProcessVideo(context.Background(), NewJob(detect.CategoryPedestrian, testLogger()), "in.mp4", "out.mp4")
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped read error, got %v", err)
	}
	if !src.closed || sink.closes == 0 {
		t.Error("expected source and sink to be closed on failure")
	}
}

func TestProcessVideo_WriteError(t *testing.T) {
	src := &fakeSource{info: media.StreamInfo{Width: 16, Height: 16, FPS: 25}, frames: 3}
	sink := &fakeSink{err: media.ErrEncode}
	svc := newService(detect.Models{Pedestrian: fixed()}, detect.FallbackSubstitute, &fakeCodec{source: src, sink: sink}, report.PolicyTotals)

	_, err := svc.ProcessVideo(context.Background(), NewJob(detect.CategoryPedestrian, testLogger()), "in.mp4", "out.mp4")
	if !errors.Is(err, media.ErrEncode) {
		t.Errorf("expected ErrEncode, got %v", err)
	}
}
