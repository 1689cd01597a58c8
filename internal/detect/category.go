package detect

import (
	"errors"
	"fmt"
	"image"
	"strings"
)

var (
	ErrUnknownCategory       = errors.New("unknown detection category")
	ErrClassifierUnavailable = errors.New("classifier unavailable")
)

type Category string

const (
	CategoryFace       Category = "face"
	CategoryPedestrian Category = "pedestrian"
	CategoryVehicle    Category = "vehicle"
)

// ParseCategory maps a form value onto a Category. An empty value selects face.
func ParseCategory(s string) (Category, error) {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case "", CategoryFace:
		return CategoryFace, nil
	case CategoryPedestrian:
		return CategoryPedestrian, nil
	case CategoryVehicle:
		return CategoryVehicle, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
}

func (c Category) String() string {
	return string(c)
}

// Kind labels a single detected region. The face category yields both face and eye kinds.
type Kind string

const (
	KindFace       Kind = "face"
	KindEye        Kind = "eye"
	KindPedestrian Kind = "pedestrian"
	KindVehicle    Kind = "vehicle"
)

type Region struct {
	Kind Kind
	Rect image.Rectangle
}
