package annotate

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/eleven-am/cascade-detect/internal/detect"
	"github.com/eleven-am/cascade-detect/internal/dto"
)

const (
	Thickness    = 2
	overlayAlpha = 0.8
)

var (
	Magenta = color.RGBA{R: 255, G: 0, B: 255, A: 255}
	Yellow  = color.RGBA{R: 255, G: 255, B: 0, A: 255}
	Cyan    = color.RGBA{R: 0, G: 255, B: 255, A: 255}
	Green   = color.RGBA{R: 0, G: 255, B: 0, A: 255}
)

var palette = map[detect.Kind]color.RGBA{
	detect.KindFace:       Magenta,
	detect.KindEye:        Yellow,
	detect.KindPedestrian: Cyan,
	detect.KindVehicle:    Green,
}

// Color returns the outline color for kind. Unknown kinds draw in white.
func Color(kind detect.Kind) color.RGBA {
	if c, ok := palette[kind]; ok {
		return c
	}
	return color.RGBA{R: 255, G: 255, B: 255, A: 255}
}

// Tag is the CSS color string a client uses to draw kind over a live frame.
func Tag(kind detect.Kind) string {
	c := Color(kind)
	return cssRGBA(c.R, c.G, c.B)
}

// Draw burns a Thickness-wide outline for every region into dst.
func Draw(dst draw.Image, regions []detect.Region) {
	for _, r := range regions {
		Outline(dst, r.Rect, Color(r.Kind), Thickness)
	}
}

// Outline strokes the inside edge of r, clipped to dst.
func Outline(dst draw.Image, r image.Rectangle, c color.Color, thickness int) {
	r = r.Intersect(dst.Bounds())
	if r.Empty() {
		return
	}
	t := min(thickness, r.Dx(), r.Dy())
	src := image.NewUniform(c)

	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+t),
		image.Rect(r.Min.X, r.Max.Y-t, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+t, r.Max.Y),
		image.Rect(r.Max.X-t, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(dst, e, src, image.Point{}, draw.Src)
	}
}

// Overlay returns the regions as client-side boxes with parallel color tags,
// leaving the raster untouched.
func Overlay(regions []detect.Region) ([]dto.Box, []string) {
	boxes := make([]dto.Box, 0, len(regions))
	colors := make([]string, 0, len(regions))
	for _, r := range regions {
		boxes = append(boxes, dto.Box{
			X:      r.Rect.Min.X,
			Y:      r.Rect.Min.Y,
			Width:  r.Rect.Dx(),
			Height: r.Rect.Dy(),
		})
		colors = append(colors, Tag(r.Kind))
	}
	return boxes, colors
}

func cssRGBA(r, g, b uint8) string {
	return fmt.Sprintf("rgba(%d, %d, %d, %g)", r, g, b, overlayAlpha)
}
