package imageanneal

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestLosslessImageValidateRejectsMismatchedLength(t *testing.T) {
	dims := mustDims(t, 2, 2)
	img := LosslessImage{Dimensions: dims, Format: FormatRgba8, Pixels: make([]byte, 3)}
	if err := img.Validate(); err == nil {
		t.Fatal("expected validation error for mismatched buffer length")
	}
}

func TestNewLosslessImageValidates(t *testing.T) {
	dims := mustDims(t, 4, 3)
	img := NewLosslessImage(dims, FormatRgba16x2)
	if err := img.Validate(); err != nil {
		t.Fatalf("freshly allocated image failed validation: %v", err)
	}
	if len(img.Pixels) != 4*3*8*2 {
		t.Errorf("len(Pixels) = %d, want %d", len(img.Pixels), 4*3*8*2)
	}
}

func TestLosslessImageRgba8PNGRoundTrip(t *testing.T) {
	dims := mustDims(t, 2, 2)
	img := NewLosslessImage(dims, FormatRgba8)
	for i := range img.Pixels {
		img.Pixels[i] = byte(i * 17)
	}
	// Force full alpha so imaging's straight-alpha round trip is lossless.
	for p := 0; p < dims.Count(); p++ {
		img.Pixels[p*4+3] = 255
	}

	var buf bytes.Buffer
	if err := img.EncodePNG(&buf); err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}

	decoded, err := DecodeLosslessImagePNG(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("DecodeLosslessImagePNG: %v", err)
	}
	if decoded.Format != FormatRgba8 {
		t.Fatalf("decoded format = %v, want Rgba8", decoded.Format)
	}
	if !bytes.Equal(decoded.Pixels, img.Pixels) {
		t.Errorf("round trip mismatch: got %v, want %v", decoded.Pixels, img.Pixels)
	}
}

func TestLosslessImageRgba16PNGRoundTrip(t *testing.T) {
	dims := mustDims(t, 2, 1)
	img := NewLosslessImage(dims, FormatRgba16)
	for i := range img.Pixels {
		img.Pixels[i] = byte(i + 1)
	}
	for p := 0; p < dims.Count(); p++ {
		img.Pixels[p*8+6] = 0xff
		img.Pixels[p*8+7] = 0xff
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "goal.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := img.EncodePNG(f); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	rf, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer rf.Close()

	decoded, err := DecodeLosslessImagePNG(rf)
	if err != nil {
		t.Fatalf("DecodeLosslessImagePNG: %v", err)
	}
	if decoded.Format != FormatRgba16 {
		t.Fatalf("decoded format = %v, want Rgba16", decoded.Format)
	}
	if !bytes.Equal(decoded.Pixels, img.Pixels) {
		t.Errorf("round trip mismatch: got %v, want %v", decoded.Pixels, img.Pixels)
	}
}
