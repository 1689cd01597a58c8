package detect

import (
	"errors"
	"image"
	"image/color"
	"io"
	"log/slog"
	"sync"
	"testing"
)

type mockClassifier struct {
	mu     sync.Mutex
	detect func(gray *image.Gray) []image.Rectangle
	err    error
	params []Params
	bounds []image.Rectangle
}

func (m *mockClassifier) DetectMultiScale(gray *image.Gray, p Params) ([]image.Rectangle, error) {
	m.mu.Lock()
	m.params = append(m.params, p)
	m.bounds = append(m.bounds, gray.Bounds())
	m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	if m.detect == nil {
		return nil, nil
	}
	return m.detect(gray), nil
}

func fixed(rects ...image.Rectangle) *mockClassifier {
	return &mockClassifier{detect: func(*image.Gray) []image.Rectangle { return rects }}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func solidImage(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestParseCategory(t *testing.T) {
	cases := map[string]Category{
		"":           CategoryFace,
		"face":       CategoryFace,
		"Pedestrian": CategoryPedestrian,
		" vehicle ":  CategoryVehicle,
	}
	for in, want := range cases {
		got, err := ParseCategory(in)
		if err != nil {
			t.Errorf("ParseCategory(%q) error: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseCategory(%q) = %s, want %s", in, got, want)
		}
	}

	if _, err := ParseCategory("cat"); !errors.Is(err, ErrUnknownCategory) {
		t.Errorf("expected ErrUnknownCategory, got %v", err)
	}
}

func TestDispatcher_FaceUsesFaceParams(t *testing.T) {
	face := fixed(image.Rect(10, 10, 50, 50))
	eye := fixed()
	d := NewDispatcher(Models{Face: face, Eye: eye}, FallbackSubstitute, testLogger())

	if _, err := d.Detect(solidImage(100, 100, color.Gray{128}), CategoryFace); err != nil {
		t.Fatalf("Detect error: %v", err)
	}

	if len(face.params) != 1 || face.params[0] != FaceParams {
		t.Errorf("expected face params %+v, got %+v", FaceParams, face.params)
	}
	if len(eye.params) != 1 || eye.params[0] != EyeParams {
		t.Errorf("expected eye params %+v, got %+v", EyeParams, eye.params)
	}
	if eye.bounds[0] != image.Rect(0, 0, 40, 40) {
		t.Errorf("eye pass should see a zero-origin crop of the face, got %v", eye.bounds[0])
	}
}

func TestDispatcher_EyesTranslatedIntoFace(t *testing.T) {
	faces := []image.Rectangle{image.Rect(10, 20, 60, 70), image.Rect(100, 100, 140, 140)}
	face := fixed(faces...)
	eye := fixed(image.Rect(5, 5, 15, 15), image.Rect(30, 5, 45, 15))
	d := NewDispatcher(Models{Face: face, Eye: eye}, FallbackSubstitute, testLogger())

	regions, err := d.Detect(solidImage(200, 200, color.White), CategoryFace)
	if err != nil {
		t.Fatalf("Detect error: %v", err)
	}

	var parent image.Rectangle
	faceCount, eyeCount := 0, 0
	for _, r := range regions {
		switch r.Kind {
		case KindFace:
			parent = r.Rect
			faceCount++
		case KindEye:
			eyeCount++
			if !r.Rect.In(parent) {
				t.Errorf("eye %v lies outside its face %v", r.Rect, parent)
			}
		}
	}

	if faceCount != 2 {
		t.Errorf("expected 2 faces, got %d", faceCount)
	}
	if eyeCount != 4 {
		t.Errorf("expected 4 eyes, got %d", eyeCount)
	}
	if regions[1].Rect != image.Rect(15, 25, 25, 35) {
		t.Errorf("expected first eye translated to (15,25)-(25,35), got %v", regions[1].Rect)
	}
}

func TestDispatcher_EyeClippedToFace(t *testing.T) {
	face := fixed(image.Rect(0, 0, 20, 20))
	eye := fixed(image.Rect(15, 15, 40, 40))
	d := NewDispatcher(Models{Face: face, Eye: eye}, FallbackSubstitute, testLogger())

	regions, err := d.Detect(solidImage(50, 50, color.White), CategoryFace)
	if err != nil {
		t.Fatalf("Detect error: %v", err)
	}
	if len(regions) != 2 {
		t.Fatalf("expected face and eye, got %d regions", len(regions))
	}
	if regions[1].Rect != image.Rect(15, 15, 20, 20) {
		t.Errorf("expected eye clipped to face, got %v", regions[1].Rect)
	}
}

func TestDispatcher_MissingEyeModel(t *testing.T) {
	d := NewDispatcher(Models{Face: fixed(image.Rect(0, 0, 10, 10))}, FallbackSubstitute, testLogger())

	regions, err := d.Detect(solidImage(20, 20, color.White), CategoryFace)
	if err != nil {
		t.Fatalf("Detect error: %v", err)
	}
	if len(regions) != 1 || regions[0].Kind != KindFace {
		t.Errorf("expected a single face region, got %+v", regions)
	}
}

func TestDispatcher_PedestrianParams(t *testing.T) {
	ped := fixed(image.Rect(1, 1, 5, 9))
	d := NewDispatcher(Models{Pedestrian: ped}, FallbackSubstitute, testLogger())

	regions, err := d.Detect(solidImage(20, 20, color.White), CategoryPedestrian)
	if err != nil {
		t.Fatalf("Detect error: %v", err)
	}
	if len(regions) != 1 || regions[0].Kind != KindPedestrian {
		t.Fatalf("expected one pedestrian region, got %+v", regions)
	}
	if ped.params[0] != BodyParams {
		t.Errorf("expected body params %+v, got %+v", BodyParams, ped.params[0])
	}
}

func TestDispatcher_VehicleSubstitutesFace(t *testing.T) {
	face := fixed(image.Rect(2, 2, 8, 8))
	d := NewDispatcher(Models{Face: face}, FallbackSubstitute, testLogger())

	if !d.Substituted() {
		t.Error("expected substitution to be reported")
	}

	regions, err := d.Detect(solidImage(10, 10, color.White), CategoryVehicle)
	if err != nil {
		t.Fatalf("Detect error: %v", err)
	}
	if len(regions) != 1 || regions[0].Kind != KindVehicle {
		t.Errorf("substituted detections keep the vehicle label, got %+v", regions)
	}
	if face.params[0] != BodyParams {
		t.Errorf("substituted classifier should run with vehicle params, got %+v", face.params[0])
	}
}

func TestDispatcher_VehicleEmptyPolicy(t *testing.T) {
	d := NewDispatcher(Models{Face: fixed()}, FallbackEmpty, testLogger())

	if d.Substituted() {
		t.Error("empty policy must not substitute")
	}
	_, err := d.Detect(solidImage(10, 10, color.White), CategoryVehicle)
	if !errors.Is(err, ErrClassifierUnavailable) {
		t.Errorf("expected ErrClassifierUnavailable, got %v", err)
	}
	if d.Strict(CategoryVehicle) {
		t.Error("empty policy should not be strict")
	}
}

func TestDispatcher_VehicleFailPolicy(t *testing.T) {
	d := NewDispatcher(Models{Face: fixed()}, FallbackFail, testLogger())

	if !d.Strict(CategoryVehicle) {
		t.Error("fail policy should be strict for vehicles")
	}
	if d.Strict(CategoryFace) {
		t.Error("fail policy only applies to vehicles")
	}
}

func TestDispatcher_ClassifierError(t *testing.T) {
	boom := errors.New("boom")
	d := NewDispatcher(Models{Pedestrian: &mockClassifier{err: boom}}, FallbackSubstitute, testLogger())

	_, err := d.Detect(solidImage(10, 10, color.White), CategoryPedestrian)
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped classifier error, got %v", err)
	}
}

func TestDispatcher_MissingFaceModel(t *testing.T) {
	d := NewDispatcher(Models{}, FallbackSubstitute, testLogger())

	_, err := d.Detect(solidImage(10, 10, color.White), CategoryFace)
	if !errors.Is(err, ErrClassifierUnavailable) {
		t.Errorf("expected ErrClassifierUnavailable, got %v", err)
	}
	if d.Substituted() {
		t.Error("nothing to substitute without a face model")
	}
}

func TestDispatcher_RectsClippedToRaster(t *testing.T) {
	d := NewDispatcher(Models{Pedestrian: fixed(image.Rect(-5, -5, 5, 5), image.Rect(50, 50, 60, 60))}, FallbackSubstitute, testLogger())

	regions, err := d.Detect(solidImage(20, 20, color.White), CategoryPedestrian)
	if err != nil {
		t.Fatalf("Detect error: %v", err)
	}
	if len(regions) != 1 {
		t.Fatalf("expected out-of-bounds rect to be dropped, got %+v", regions)
	}
	if regions[0].Rect != image.Rect(0, 0, 5, 5) {
		t.Errorf("expected clipped rect, got %v", regions[0].Rect)
	}
}

func TestDispatcher_Loaded(t *testing.T) {
	d := NewDispatcher(Models{Face: fixed(), Eye: fixed()}, FallbackSubstitute, testLogger())
	loaded := d.Loaded()

	if !loaded[KindFace] || !loaded[KindEye] {
		t.Error("face and eye should be loaded")
	}
	if loaded[KindPedestrian] || loaded[KindVehicle] {
		t.Error("pedestrian and vehicle should not be loaded")
	}
}
