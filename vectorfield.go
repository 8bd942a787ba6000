package imageanneal

import (
	"encoding/binary"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
)

// VectorFieldEntry is a single per-pixel (Δx, Δy) displacement, the common
// representation shared by permutations and displacement goals.
type VectorFieldEntry struct {
	DeltaX, DeltaY int16
}

// IdentityEntry is the zero displacement.
var IdentityEntry = VectorFieldEntry{}

// VectorField is a row-major, width*height slice of entries plus the
// dimensions they were built from.
type VectorField struct {
	Dimensions ImageDimensions
	Entries    []VectorFieldEntry
}

// NewIdentityVectorField builds a VectorField whose every entry is the zero
// displacement.
func NewIdentityVectorField(dims ImageDimensions) VectorField {
	return VectorField{Dimensions: dims, Entries: make([]VectorFieldEntry, dims.Count())}
}

// At returns the entry at (x, y).
func (v VectorField) At(x, y int) (VectorFieldEntry, error) {
	idx, err := v.Dimensions.LinearIndex(x, y)
	if err != nil {
		return VectorFieldEntry{}, err
	}
	return v.Entries[idx], nil
}

// Set assigns the entry at (x, y).
func (v VectorField) Set(x, y int, e VectorFieldEntry) error {
	idx, err := v.Dimensions.LinearIndex(x, y)
	if err != nil {
		return err
	}
	v.Entries[idx] = e
	return nil
}

// IsIdentity reports whether every entry is the zero displacement.
func (v VectorField) IsIdentity() bool {
	for _, e := range v.Entries {
		if e != IdentityEntry {
			return false
		}
	}
	return true
}

// bytesPerEntry is the packed size of one VectorFieldEntry: two i16
// components, four bytes total.
const bytesPerEntry = 4

// EncodeBigEndian packs the vector field into the on-disk byte layout:
// four bytes per pixel, [Δx_hi, Δx_lo, Δy_hi, Δy_lo], each component a
// big-endian two's-complement i16 (spec.md §6).
func (v VectorField) EncodeBigEndian() []byte {
	out := make([]byte, len(v.Entries)*bytesPerEntry)
	for i, e := range v.Entries {
		binary.BigEndian.PutUint16(out[i*bytesPerEntry:], uint16(e.DeltaX))
		binary.BigEndian.PutUint16(out[i*bytesPerEntry+2:], uint16(e.DeltaY))
	}
	return out
}

// DecodeBigEndian unpacks a VectorField from the on-disk byte layout
// EncodeBigEndian produces.
func DecodeBigEndian(dims ImageDimensions, data []byte) (VectorField, error) {
	want := dims.Count() * bytesPerEntry
	if len(data) != want {
		return VectorField{}, &InvalidInputFormatError{
			Expected: fmt.Sprintf("%d bytes for %s", want, dims),
			Actual:   fmt.Sprintf("%d bytes", len(data)),
		}
	}
	entries := make([]VectorFieldEntry, dims.Count())
	for i := range entries {
		entries[i] = VectorFieldEntry{
			DeltaX: int16(binary.BigEndian.Uint16(data[i*bytesPerEntry:])),
			DeltaY: int16(binary.BigEndian.Uint16(data[i*bytesPerEntry+2:])),
		}
	}
	return VectorField{Dimensions: dims, Entries: entries}, nil
}

// EncodeNativeEndian packs the vector field the way it is stored in a GPU
// storage texture: native-endian i16 components, matching how the
// teacher's Queue.WriteBuffer/ReadBuffer move raw bytes without an implied
// byte order of their own.
func (v VectorField) EncodeNativeEndian() []byte {
	out := make([]byte, len(v.Entries)*bytesPerEntry)
	for i, e := range v.Entries {
		binary.NativeEndian.PutUint16(out[i*bytesPerEntry:], uint16(e.DeltaX))
		binary.NativeEndian.PutUint16(out[i*bytesPerEntry+2:], uint16(e.DeltaY))
	}
	return out
}

// EncodePNG writes the field out as an 8-bit truecolor+alpha PNG whose
// raw per-pixel bytes are EncodeBigEndian's layout (spec.md §6's
// "depth 8" maps/permutations/displacement goals variant): this is the
// same Rgba8 NRGBA byte shape LosslessImage.EncodePNG produces, just
// reinterpreted as packed deltas rather than sample data.
func (v VectorField) EncodePNG(w io.Writer) error {
	rgba := image.NewNRGBA(image.Rect(0, 0, v.Dimensions.Width(), v.Dimensions.Height()))
	copy(rgba.Pix, v.EncodeBigEndian())
	return imaging.Encode(w, rgba, imaging.PNG)
}

// DecodeVectorFieldPNG reads an 8-bit truecolor+alpha PNG and reinterprets
// its raw NRGBA bytes as a big-endian-packed VectorField.
func DecodeVectorFieldPNG(r io.Reader) (VectorField, error) {
	decoded, err := imaging.Decode(r)
	if err != nil {
		return VectorField{}, err
	}
	bounds := decoded.Bounds()
	dims, err := NewImageDimensions(bounds.Dx(), bounds.Dy())
	if err != nil {
		return VectorField{}, err
	}
	return DecodeBigEndian(dims, imaging.Clone(decoded).Pix)
}

// DecodeNativeEndian is the inverse of EncodeNativeEndian.
func DecodeNativeEndian(dims ImageDimensions, data []byte) (VectorField, error) {
	want := dims.Count() * bytesPerEntry
	if len(data) != want {
		return VectorField{}, &InvalidInputFormatError{
			Expected: fmt.Sprintf("%d bytes for %s", want, dims),
			Actual:   fmt.Sprintf("%d bytes", len(data)),
		}
	}
	entries := make([]VectorFieldEntry, dims.Count())
	for i := range entries {
		entries[i] = VectorFieldEntry{
			DeltaX: int16(binary.NativeEndian.Uint16(data[i*bytesPerEntry:])),
			DeltaY: int16(binary.NativeEndian.Uint16(data[i*bytesPerEntry+2:])),
		}
	}
	return VectorField{Dimensions: dims, Entries: entries}, nil
}
