package imageanneal

import (
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/disintegration/imaging"
)

// ImageFormat names one of the fixed enumerated channel layouts a
// LosslessImage can hold (spec.md §3).
type ImageFormat int

const (
	FormatRgba8 ImageFormat = iota
	FormatRgba16
	FormatRgba16x2
	FormatRgba8x2
	FormatRgba8x3
	FormatRgba8x4
	FormatRgba16Rgba8
	FormatRgba16Rgba8x2
)

// String names each variant the way spec.md error text embeds it.
func (f ImageFormat) String() string {
	switch f {
	case FormatRgba8:
		return "Rgba8"
	case FormatRgba16:
		return "Rgba16"
	case FormatRgba16x2:
		return "Rgba16x2"
	case FormatRgba8x2:
		return "Rgba8x2"
	case FormatRgba8x3:
		return "Rgba8x3"
	case FormatRgba8x4:
		return "Rgba8x4"
	case FormatRgba16Rgba8:
		return "Rgba16Rgba8"
	case FormatRgba16Rgba8x2:
		return "Rgba16Rgba8x2"
	default:
		return "unknown"
	}
}

// channelsPerPixel is the number of 8-bit channel-units the GPU-resident
// storage texture uses per pixel for this format; compound formats (two or
// three images packed side by side) multiply a single Rgba8/Rgba16 unit.
func (f ImageFormat) channelsPerPixel() int {
	switch f {
	case FormatRgba8:
		return 4
	case FormatRgba16:
		return 4
	case FormatRgba16x2:
		return 8
	case FormatRgba8x2:
		return 8
	case FormatRgba8x3:
		return 12
	case FormatRgba8x4:
		return 16
	case FormatRgba16Rgba8:
		return 8
	case FormatRgba16Rgba8x2:
		return 12
	default:
		return 0
	}
}

// bytesPerChannelUnit is 1 for an 8-bit Rgba8-shaped unit, 2 for Rgba16.
func (f ImageFormat) bytesPerChannelUnit() int {
	switch f {
	case FormatRgba16, FormatRgba16x2:
		return 2
	default:
		return 1
	}
}

// LosslessImage is a 2D image in one of ImageFormat's fixed channel
// layouts; unlike VectorField/DisplacementGoal it carries arbitrary
// sample data rather than displacements (spec.md §3).
type LosslessImage struct {
	Dimensions ImageDimensions
	Format     ImageFormat
	Pixels     []byte
}

// NewLosslessImage allocates a zeroed image of the given format and
// dimensions.
func NewLosslessImage(dims ImageDimensions, format ImageFormat) LosslessImage {
	size := dims.Count() * format.channelsPerPixel() * format.bytesPerChannelUnit()
	return LosslessImage{Dimensions: dims, Format: format, Pixels: make([]byte, size)}
}

// Validate reports an InvalidInputFormatError if the image's byte length
// does not match its declared format and dimensions.
func (img LosslessImage) Validate() error {
	want := img.Dimensions.Count() * img.Format.channelsPerPixel() * img.Format.bytesPerChannelUnit()
	if len(img.Pixels) != want {
		return &InvalidInputFormatError{
			Expected: img.Format.String(),
			Actual:   "a buffer of mismatched length",
		}
	}
	return nil
}

// EncodePNG writes an Rgba8 or Rgba16 LosslessImage out as PNG, truecolor
// with alpha, matching the on-disk depth the variant declares (spec.md
// §6's "Image file format"). Rgba8 goes through imaging's encoder, the
// same library esimov-caire uses for its image I/O; Rgba16 bypasses it
// because imaging's decode path always narrows to 8 bits per channel,
// which would silently throw away the precision this format exists to
// keep, so it round-trips through image/png directly. Compound
// multi-image formats are not representable as a single PNG.
func (img LosslessImage) EncodePNG(w io.Writer) error {
	switch img.Format {
	case FormatRgba8:
		rgba := image.NewNRGBA(image.Rect(0, 0, img.Dimensions.Width(), img.Dimensions.Height()))
		copy(rgba.Pix, img.Pixels)
		return imaging.Encode(w, rgba, imaging.PNG)
	case FormatRgba16:
		rgba := image.NewNRGBA64(image.Rect(0, 0, img.Dimensions.Width(), img.Dimensions.Height()))
		copy(rgba.Pix, img.Pixels)
		return png.Encode(w, rgba)
	default:
		return &InvalidInputFormatError{Expected: "Rgba8 or Rgba16", Actual: img.Format.String()}
	}
}

// DecodeLosslessImagePNG reads a PNG and classifies it into an Rgba8 or
// Rgba16 LosslessImage by its on-disk bit depth. The bit depth is only
// inspected when r is an io.ReadSeeker: 16-bit sources read that way go
// through image/png to preserve precision. Everything else, including a
// 16-bit source behind a plain io.Reader, is decoded with imaging.Decode
// and normalized to straight-alpha 8-bit NRGBA with imaging.Clone.
func DecodeLosslessImagePNG(r io.Reader) (LosslessImage, error) {
	if peeker, ok := r.(io.ReadSeeker); ok {
		var ihdr [26]byte
		if _, err := io.ReadFull(peeker, ihdr[:]); err == nil {
			if _, err := peeker.Seek(0, io.SeekStart); err != nil {
				return LosslessImage{}, err
			}
			if ihdrBitDepth(ihdr[:]) == 16 {
				return decodeRgba16PNG(peeker)
			}
		} else if _, serr := peeker.Seek(0, io.SeekStart); serr != nil {
			return LosslessImage{}, serr
		}
	}

	decoded, err := imaging.Decode(r)
	if err != nil {
		return LosslessImage{}, err
	}
	bounds := decoded.Bounds()
	dims, err := NewImageDimensions(bounds.Dx(), bounds.Dy())
	if err != nil {
		return LosslessImage{}, err
	}
	return LosslessImage{Dimensions: dims, Format: FormatRgba8, Pixels: imaging.Clone(decoded).Pix}, nil
}

// ihdrBitDepth reads the bit-depth byte out of a PNG's leading signature
// plus IHDR chunk (8 bytes signature, 4 length, 4 "IHDR", 4 width, 4
// height, 1 bit depth), returning 0 if head is too short or not a PNG.
func ihdrBitDepth(head []byte) int {
	if len(head) < 25 || head[0] != 0x89 || head[1] != 'P' || head[2] != 'N' || head[3] != 'G' {
		return 0
	}
	return int(head[24])
}

func decodeRgba16PNG(r io.Reader) (LosslessImage, error) {
	decoded, err := png.Decode(r)
	if err != nil {
		return LosslessImage{}, err
	}
	bounds := decoded.Bounds()
	dims, err := NewImageDimensions(bounds.Dx(), bounds.Dy())
	if err != nil {
		return LosslessImage{}, err
	}
	switch px := decoded.(type) {
	case *image.NRGBA64:
		return LosslessImage{Dimensions: dims, Format: FormatRgba16, Pixels: append([]byte(nil), px.Pix...)}, nil
	case *image.RGBA64:
		return LosslessImage{Dimensions: dims, Format: FormatRgba16, Pixels: straightenRGBA64(px)}, nil
	default:
		return LosslessImage{}, &InvalidInputFormatError{
			Expected: "Rgba16 truecolor+alpha PNG",
			Actual:   "unsupported 16-bit PNG color model",
		}
	}
}

// straightenRGBA64 converts a premultiplied-alpha image.RGBA64 buffer to
// the straight-alpha NRGBA64 byte layout this module stores.
func straightenRGBA64(src *image.RGBA64) []byte {
	bounds := src.Bounds()
	out := make([]byte, 0, bounds.Dx()*bounds.Dy()*8)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := src.At(x, y).RGBA()
			n := color.NRGBA64Model.Convert(color.RGBA64{
				R: uint16(r), G: uint16(g), B: uint16(b), A: uint16(a),
			}).(color.NRGBA64)
			out = append(out,
				byte(n.R>>8), byte(n.R), byte(n.G>>8), byte(n.G),
				byte(n.B>>8), byte(n.B), byte(n.A>>8), byte(n.A))
		}
	}
	return out
}
