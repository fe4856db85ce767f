package codec

import (
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	_ "golang.org/x/image/webp"

	"github.com/soocke/clickmask-go/domain/segment"
)

// Mask pixel intensities.
const (
	Foreground uint8 = 255
	Background uint8 = 0
)

// Decode reads an image file. EXIF orientation is applied so the pixels match
// what other viewers show.
func Decode(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, segment.CodecError("decode", errors.Wrapf(err, "open %s", path))
	}
	if img.Bounds().Empty() {
		return nil, segment.CodecError("decode", errors.Errorf("%s has no pixels", path))
	}
	return img, nil
}

// DecodeReader decodes an image stream in any registered format.
func DecodeReader(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, segment.CodecError("decode", err)
	}
	return img, nil
}

// MaskImage renders a mask as a two-level gray image.
func MaskImage(m *segment.Mask) *image.Gray {
	if m == nil {
		return nil
	}
	out := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		row := out.Pix[y*out.Stride : y*out.Stride+m.Width]
		for x := range row {
			if m.Bits[y*m.Width+x] {
				row[x] = Foreground
			} else {
				row[x] = Background
			}
		}
	}
	return out
}

// MaskFromImage thresholds img into a mask: pixels brighter than half intensity
// (or more than half opaque for images with alpha) are foreground.
func MaskFromImage(img image.Image) *segment.Mask {
	if img == nil {
		return nil
	}
	b := img.Bounds()
	m := segment.NewMask(b.Dx(), b.Dy())
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := img.At(b.Min.X+x, b.Min.Y+y)
			g := color.GrayModel.Convert(c).(color.Gray)
			_, _, _, a := c.RGBA()
			m.Bits[y*m.Width+x] = g.Y > 127 && a > 0x7fff
		}
	}
	return m
}

// maskFormat resolves a lossless output format from the file extension.
func maskFormat(path string) (imaging.Format, error) {
	f, err := imaging.FormatFromFilename(path)
	if err != nil {
		return 0, errors.Errorf("unsupported mask extension %q", filepath.Ext(path))
	}
	switch f {
	case imaging.PNG, imaging.BMP, imaging.TIFF:
		return f, nil
	default:
		return 0, errors.Errorf("%s is lossy or palette based, use .png", strings.ToUpper(f.String()))
	}
}

// WriteMask encodes m as a single channel 255/0 raster at path. The file is
// written beside the destination and renamed into place, so a failure leaves
// nothing at path.
func WriteMask(path string, m *segment.Mask) (err error) {
	if m == nil || len(m.Bits) == 0 {
		return segment.ErrNoMaskAvailable
	}
	format, err := maskFormat(path)
	if err != nil {
		return segment.CodecError("encode", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".mask-*.tmp")
	if err != nil {
		return segment.CodecError("encode", errors.Wrap(err, "create temp"))
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			err = multierr.Append(err, ignoreMissing(os.Remove(tmpName)))
		}
	}()
	if encErr := imaging.Encode(tmp, MaskImage(m), format); encErr != nil {
		return segment.CodecError("encode", multierr.Append(errors.Wrap(encErr, "encode mask"), tmp.Close()))
	}
	if closeErr := tmp.Close(); closeErr != nil {
		return segment.CodecError("encode", errors.Wrap(closeErr, "close temp"))
	}
	if renameErr := os.Rename(tmpName, path); renameErr != nil {
		return segment.CodecError("encode", errors.Wrapf(renameErr, "rename to %s", path))
	}
	return nil
}

func ignoreMissing(err error) error {
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// SuggestedMaskName derives the default save name "mask_<basename>.png".
func SuggestedMaskName(source string) string {
	base := filepath.Base(source)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "mask.png"
	}
	return "mask_" + base + ".png"
}
