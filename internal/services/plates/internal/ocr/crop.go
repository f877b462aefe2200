package ocr

import (
	"image"
	"image/draw"
)

const (
	DefaultAspect = 2.0
	cropFraction  = 0.92
)

// CropRect centres a rectangle of the given aspect ratio (width/height) in a w x h frame.
// It is bounded by 92% of the frame width unless that would exceed 92% of the frame height.
func CropRect(w, h int, aspect float64) image.Rectangle {
	if aspect <= 0 {
		aspect = DefaultAspect
	}

	cw := float64(w) * cropFraction
	ch := cw / aspect
	if ch > float64(h)*cropFraction {
		ch = float64(h) * cropFraction
		cw = ch * aspect
	}

	iw, ih := int(cw), int(ch)
	x0 := (w - iw) / 2
	y0 := (h - ih) / 2
	return image.Rect(x0, y0, x0+iw, y0+ih)
}

// Crop copies the CropRect region of img into a new image anchored at the origin.
func Crop(img image.Image, aspect float64) image.Image {
	b := img.Bounds()
	r := CropRect(b.Dx(), b.Dy(), aspect).Add(b.Min)

	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(out, out.Bounds(), img, r.Min, draw.Src)
	return out
}
