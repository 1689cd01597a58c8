package cascade

import (
	"fmt"
	"image"
	"os"

	"github.com/eleven-am/cascade-detect/internal/detect"
	pigo "github.com/esimov/pigo/core"
)

const (
	pigoMinSize      = 20
	pigoShiftFactor  = 0.1
	pigoIoUThreshold = 0.2
	pigoMinQuality   = 5.0
)

// Pigo is a pure-Go face finder. It has no neighbor threshold of its own, so
// clustered detections are filtered by score instead.
type Pigo struct {
	path       string
	classifier *pigo.Pigo
}

func LoadPigo(path string) (*Pigo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pigo cascade: %w", err)
	}

	classifier, err := pigo.NewPigo().Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("unpack pigo cascade: %w", err)
	}

	return &Pigo{path: path, classifier: classifier}, nil
}

func (p *Pigo) DetectMultiScale(gray *image.Gray, prm detect.Params) ([]image.Rectangle, error) {
	bounds := gray.Bounds()
	cols, rows := bounds.Dx(), bounds.Dy()
	if cols == 0 || rows == 0 {
		return nil, nil
	}

	params := pigo.CascadeParams{
		MinSize:     pigoMinSize,
		MaxSize:     max(cols, rows),
		ShiftFactor: pigoShiftFactor,
		ScaleFactor: prm.ScaleFactor,
		ImageParams: pigo.ImageParams{
			Pixels: gray.Pix,
			Rows:   rows,
			Cols:   cols,
			Dim:    gray.Stride,
		},
	}

	dets := p.classifier.RunCascade(params, 0.0)
	dets = p.classifier.ClusterDetections(dets, pigoIoUThreshold)

	rects := make([]image.Rectangle, 0, len(dets))
	for _, det := range dets {
		if det.Q < pigoMinQuality {
			continue
		}
		half := det.Scale / 2
		r := image.Rect(det.Col-half, det.Row-half, det.Col+half, det.Row+half).Intersect(bounds)
		if !r.Empty() {
			rects = append(rects, r)
		}
	}
	return rects, nil
}

func (p *Pigo) Path() string {
	return p.path
}
