package detect

import "image"

// Params are the multi-scale tuning knobs handed to a cascade classifier.
type Params struct {
	ScaleFactor  float64
	MinNeighbors int
}

var (
	FaceParams = Params{ScaleFactor: 1.3, MinNeighbors: 5}
	EyeParams  = Params{ScaleFactor: 1.1, MinNeighbors: 3}
	BodyParams = Params{ScaleFactor: 1.1, MinNeighbors: 3}
)

// Classifier scans a single-channel raster and returns candidate rectangles in
// the raster's own coordinate space. Implementations must be safe for concurrent use.
type Classifier interface {
	DetectMultiScale(gray *image.Gray, p Params) ([]image.Rectangle, error)
}

// Models is the process-wide set of loaded classifiers. A nil entry means the
// model failed to load at startup.
type Models struct {
	Face       Classifier
	Eye        Classifier
	Pedestrian Classifier
	Vehicle    Classifier
}

type FallbackPolicy string

const (
	FallbackSubstitute FallbackPolicy = "substitute"
	FallbackEmpty      FallbackPolicy = "empty"
	FallbackFail       FallbackPolicy = "fail"
)

func ParseFallbackPolicy(s string) FallbackPolicy {
	switch FallbackPolicy(s) {
	case FallbackEmpty:
		return FallbackEmpty
	case FallbackFail:
		return FallbackFail
	default:
		return FallbackSubstitute
	}
}
