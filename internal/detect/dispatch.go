package detect

import (
	"fmt"
	"image"
	"log/slog"
)

// Dispatcher routes a raster to the classifiers registered for a category.
// It holds no per-request state and can be shared across goroutines.
type Dispatcher struct {
	models      Models
	vehicle     Classifier
	substituted bool
	policy      FallbackPolicy
	logger      *slog.Logger
}

func NewDispatcher(models Models, policy FallbackPolicy, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{
		models:  models,
		vehicle: models.Vehicle,
		policy:  policy,
		logger:  logger.With("component", "detector-dispatch"),
	}

	if d.vehicle == nil && policy == FallbackSubstitute && models.Face != nil {
		d.logger.Warn("vehicle classifier unavailable, substituting face classifier")
		d.vehicle = models.Face
		d.substituted = true
	}

	return d
}

// Detect converts img to intensity and runs the classifiers for cat.
func (d *Dispatcher) Detect(img image.Image, cat Category) ([]Region, error) {
	return d.DetectGray(ToGray(img), cat)
}

func (d *Dispatcher) DetectGray(gray *image.Gray, cat Category) ([]Region, error) {
	switch cat {
	case CategoryFace:
		return d.detectFaces(gray)
	case CategoryPedestrian:
		return d.detectSingle(gray, d.models.Pedestrian, KindPedestrian, BodyParams)
	case CategoryVehicle:
		return d.detectSingle(gray, d.vehicle, KindVehicle, BodyParams)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, cat)
	}
}

// Strict reports whether a missing classifier for cat must fail the request
// instead of degrading to an empty detection set.
func (d *Dispatcher) Strict(cat Category) bool {
	return cat == CategoryVehicle && d.policy == FallbackFail
}

// Substituted reports whether vehicle detection runs on the face classifier.
func (d *Dispatcher) Substituted() bool {
	return d.substituted
}

// Loaded reports which models are available, keyed by kind.
func (d *Dispatcher) Loaded() map[Kind]bool {
	return map[Kind]bool{
		KindFace:       d.models.Face != nil,
		KindEye:        d.models.Eye != nil,
		KindPedestrian: d.models.Pedestrian != nil,
		KindVehicle:    d.models.Vehicle != nil,
	}
}

func (d *Dispatcher) detectFaces(gray *image.Gray) ([]Region, error) {
	if d.models.Face == nil {
		return nil, fmt.Errorf("%w: %s", ErrClassifierUnavailable, KindFace)
	}

	faces, err := d.models.Face.DetectMultiScale(gray, FaceParams)
	if err != nil {
		return nil, fmt.Errorf("face classifier: %w", err)
	}

	bounds := gray.Bounds()
	regions := make([]Region, 0, len(faces)*3)
	for _, face := range faces {
		face = face.Intersect(bounds)
		if face.Empty() {
			continue
		}
		regions = append(regions, Region{Kind: KindFace, Rect: face})

		if d.models.Eye == nil {
			continue
		}

		eyes, err := d.models.Eye.DetectMultiScale(Crop(gray, face), EyeParams)
		if err != nil {
			return nil, fmt.Errorf("eye classifier: %w", err)
		}
		for _, eye := range eyes {
			eye = eye.Add(face.Min).Intersect(face)
			if eye.Empty() {
				continue
			}
			regions = append(regions, Region{Kind: KindEye, Rect: eye})
		}
	}

	return regions, nil
}

func (d *Dispatcher) detectSingle(gray *image.Gray, c Classifier, kind Kind, p Params) ([]Region, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: %s", ErrClassifierUnavailable, kind)
	}

	rects, err := c.DetectMultiScale(gray, p)
	if err != nil {
		return nil, fmt.Errorf("%s classifier: %w", kind, err)
	}

	bounds := gray.Bounds()
	regions := make([]Region, 0, len(rects))
	for _, r := range rects {
		r = r.Intersect(bounds)
		if r.Empty() {
			continue
		}
		regions = append(regions, Region{Kind: kind, Rect: r})
	}
	return regions, nil
}
