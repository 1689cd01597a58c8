package cascade

import (
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/eleven-am/cascade-detect/internal/detect"
	"gocv.io/x/gocv"
)

// OpenCV wraps a pool of identical Haar cascades loaded from one XML model.
// Each in-flight detection borrows its own copy.
type OpenCV struct {
	path string
	pool chan *gocv.CascadeClassifier
	all  []*gocv.CascadeClassifier
}

func LoadOpenCV(path string, copies int) (*OpenCV, error) {
	if copies < 1 {
		copies = 1
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("cascade %s: %w", path, err)
	}

	o := &OpenCV{
		path: path,
		pool: make(chan *gocv.CascadeClassifier, copies),
	}
	for i := 0; i < copies; i++ {
		c := gocv.NewCascadeClassifier()
		if !c.Load(path) {
			c.Close()
			o.Close()
			return nil, fmt.Errorf("cascade %s: load failed", path)
		}
		o.all = append(o.all, &c)
		o.pool <- &c
	}
	return o, nil
}

func (o *OpenCV) DetectMultiScale(gray *image.Gray, p detect.Params) ([]image.Rectangle, error) {
	mat, err := gocv.ImageGrayToMatGray(gray)
	if err != nil {
		return nil, fmt.Errorf("gray to mat: %w", err)
	}
	defer mat.Close()

	c := <-o.pool
	defer func() { o.pool <- c }()

	return c.DetectMultiScaleWithParams(mat, p.ScaleFactor, p.MinNeighbors, 0, image.Point{}, image.Point{}), nil
}

func (o *OpenCV) Path() string {
	return o.path
}

func (o *OpenCV) Close() error {
	var errs []error
	for _, c := range o.all {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	o.all = nil
	return errors.Join(errs...)
}
