package detect

import (
	"image"
	"image/draw"

	pigo "github.com/esimov/pigo/core"
)

// ToGray converts a color raster into a zero-origin intensity raster.
func ToGray(img image.Image) *image.Gray {
	b := img.Bounds()
	src := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(src, src.Bounds(), img, b.Min, draw.Src)

	cols, rows := b.Dx(), b.Dy()
	return &image.Gray{
		Pix:    pigo.RgbToGrayscale(src),
		Stride: cols,
		Rect:   image.Rect(0, 0, cols, rows),
	}
}

// Crop copies r out of gray into a new zero-origin raster.
func Crop(gray *image.Gray, r image.Rectangle) *image.Gray {
	r = r.Intersect(gray.Bounds())
	dst := image.NewGray(image.Rect(0, 0, r.Dx(), r.Dy()))
	for y := 0; y < r.Dy(); y++ {
		srcOff := gray.PixOffset(r.Min.X, r.Min.Y+y)
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+r.Dx()], gray.Pix[srcOff:srcOff+r.Dx()])
	}
	return dst
}
