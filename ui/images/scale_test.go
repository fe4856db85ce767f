package images

import (
	"bytes"
	"image"
	"image/png"
	"testing"
)

func TestScaleTo_ExactSizeAndFlatColor(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for i := 0; i < len(src.Pix); i += 4 {
		src.Pix[i], src.Pix[i+1], src.Pix[i+2], src.Pix[i+3] = 10, 200, 30, 255
	}
	dst := ScaleTo(src, 13, 7)
	if dst.Bounds().Dx() != 13 || dst.Bounds().Dy() != 7 {
		t.Fatalf("unexpected size %v", dst.Bounds())
	}
	c := dst.RGBAAt(6, 3)
	if absDiff(c.R, 10) > 1 || absDiff(c.G, 200) > 1 || absDiff(c.B, 30) > 1 || c.A != 255 {
		t.Fatalf("flat color changed: %v", c)
	}
	if tiny := ScaleTo(src, 0, -4); tiny.Bounds().Dx() != 1 || tiny.Bounds().Dy() != 1 {
		t.Fatalf("sizes below one must clamp, got %v", tiny.Bounds())
	}
}

func TestEncodePNG(t *testing.T) {
	if EncodePNG(nil) != nil {
		t.Fatalf("nil image should encode to nil")
	}
	data := EncodePNG(image.NewGray(image.Rect(0, 0, 3, 2)))
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 3 || img.Bounds().Dy() != 2 {
		t.Fatalf("unexpected bounds %v", img.Bounds())
	}
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}
