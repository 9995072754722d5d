package tex

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/ulikunitz/xz/lzma"

	"github.com/Rohan200220/sc-extract/internal/encode"
	"github.com/Rohan200220/sc-extract/internal/errs"
)

// packTex wraps payload in a full texture container: 26 preamble bytes
// followed by an LZMA stream with the game's shortened 9-byte header.
func packTex(t *testing.T, payload []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	w, err := lzma.WriterConfig{
		SizeInHeader: true,
		Size:         int64(len(payload)),
	}.NewWriter(&buf)
	if err != nil {
		t.Fatalf("lzma.NewWriter: %v", err)
	}
	if _, err := w.Write(payload); err != nil {
		t.Fatalf("lzma write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("lzma close: %v", err)
	}

	full := buf.Bytes()
	out := make([]byte, 0, 26+len(full)-4)
	out = append(out, make([]byte, 26)...)
	out = append(out, full[:9]...)
	out = append(out, full[13:]...)
	return out
}

// subImage assembles one sub-image block.
func subImage(fileType uint8, subType uint8, width, height uint16, pixelData []byte) []byte {
	var b bytes.Buffer
	b.WriteByte(fileType)
	binary.Write(&b, binary.LittleEndian, uint32(5+len(pixelData)))
	b.WriteByte(subType)
	binary.Write(&b, binary.LittleEndian, width)
	binary.Write(&b, binary.LittleEndian, height)
	b.Write(pixelData)
	return b.Bytes()
}

func decodePNG(t *testing.T, path string) image.Image {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	img, err := encode.DecodeImage(data, "png")
	if err != nil {
		t.Fatalf("decoding %s: %v", path, err)
	}
	return img
}

func TestProcessSingleSubImage(t *testing.T) {
	pixelData := []byte{
		1, 2, 3, 4, 5, 6, 7, 8,
		9, 10, 11, 12, 13, 14, 15, 16,
	}
	data := packTex(t, subImage(1, 0, 2, 2, pixelData))

	outDir := t.TempDir()
	if err := Process(data, "test_tex.sc", outDir, true, nil); err != nil {
		t.Fatalf("Process: %v", err)
	}

	img := decodePNG(t, filepath.Join(outDir, "test_tex.png"))
	want := [][4]uint8{
		{1, 2, 3, 4}, {5, 6, 7, 8},
		{9, 10, 11, 12}, {13, 14, 15, 16},
	}
	for i, w := range want {
		x, y := i%2, i/2
		r, g, b, a := img.At(x, y).RGBA()
		got := [4]uint8{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), uint8(a >> 8)}
		if got != w {
			t.Errorf("pixel (%d,%d) = %v, want %v", x, y, got, w)
		}
	}
}

func TestProcessMultipleSubImages(t *testing.T) {
	payload := append(
		subImage(1, 10, 1, 1, []byte{0x10}),
		subImage(1, 10, 1, 1, []byte{0x20})...,
	)
	data := packTex(t, payload)

	outDir := t.TempDir()
	if err := Process(data, "multi_tex.sc", outDir, true, nil); err != nil {
		t.Fatalf("Process: %v", err)
	}

	// First sub-image has no underscore, the second one.
	for _, name := range []string{"multi_tex.png", "multi_tex_.png"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("expected output %s: %v", name, err)
		}
	}
}

func TestProcessUnknownSubTypeAbandonsSubImage(t *testing.T) {
	// The first sub-image declares the unrecognized sub-type 9; decoding
	// aborts before consuming pixel data, so the second block starts
	// immediately after the header of the first.
	payload := append(
		subImage(1, 9, 1, 1, nil),
		subImage(1, 10, 1, 1, []byte{0x7f})...,
	)
	data := packTex(t, payload)

	outDir := t.TempDir()
	if err := Process(data, "bad_tex.sc", outDir, true, nil); err != nil {
		t.Fatalf("Process: %v", err)
	}

	img := decodePNG(t, filepath.Join(outDir, "bad_tex.png"))
	r, _, _, a := img.At(0, 0).RGBA()
	if r>>8 != 127 || a>>8 != 127 {
		t.Errorf("pixel = (r=%d a=%d), want (127, 127)", r>>8, a>>8)
	}
}

func TestProcessSkipsForeignBlocks(t *testing.T) {
	var payload bytes.Buffer
	// A block with a type outside {1, 24, 27, 28} is skipped wholesale.
	payload.WriteByte(42)
	binary.Write(&payload, binary.LittleEndian, uint32(3))
	payload.Write([]byte{0xde, 0xad, 0xbe})
	payload.Write(subImage(1, 10, 1, 1, []byte{0x55}))

	outDir := t.TempDir()
	if err := Process(packTex(t, payload.Bytes()), "skip_tex.sc", outDir, true, nil); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "skip_tex.png")); err != nil {
		t.Errorf("expected output after skipping foreign block: %v", err)
	}
}

func TestProcessTooShort(t *testing.T) {
	err := Process(make([]byte, 34), "short_tex.sc", t.TempDir(), true, nil)
	if !errors.Is(err, errs.ErrDecompression) {
		t.Errorf("Process(short) error = %v, want ErrDecompression", err)
	}
}

func TestProcessDeterministic(t *testing.T) {
	data := packTex(t, subImage(1, 4, 1, 1, []byte{0x00, 0xf8}))

	first := t.TempDir()
	second := t.TempDir()
	if err := Process(data, "red_tex.sc", first, true, nil); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if err := Process(data, "red_tex.sc", second, true, nil); err != nil {
		t.Fatalf("Process: %v", err)
	}

	a, err := os.ReadFile(filepath.Join(first, "red_tex.png"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(filepath.Join(second, "red_tex.png"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("decoding the same container twice produced different PNGs")
	}
}

func TestAdjustPixelsDeinterleaves(t *testing.T) {
	// A 64x2 raster spans two 32-wide blocks. In stream order the first
	// 64 pixels belong to the left block (two rows of 32), the next 64 to
	// the right block.
	width, height := 64, 2
	pixels := make([][4]uint8, 0, width*height)
	for i := 0; i < width*height; i++ {
		pixels = append(pixels, [4]uint8{uint8(i), uint8(i >> 8), 0, 255})
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	adjustPixels(img, pixels, width, height)

	tests := []struct {
		x, y int
		want uint8
	}{
		{0, 0, 0},    // block 0, row 0 start
		{31, 0, 31},  // block 0, row 0 end
		{0, 1, 32},   // block 0, row 1 start
		{32, 0, 64},  // block 1, row 0 start
		{63, 1, 127}, // block 1, row 1 end
	}
	for _, tt := range tests {
		off := img.PixOffset(tt.x, tt.y)
		if img.Pix[off] != tt.want {
			t.Errorf("pixel (%d,%d) = %d, want %d", tt.x, tt.y, img.Pix[off], tt.want)
		}
	}
}

func TestAdjustPixelsTruncatedEdgeBlocks(t *testing.T) {
	// 40x40: 2x2 blocks, right and bottom blocks truncated to 8 pixels.
	width, height := 40, 40
	pixels := make([][4]uint8, 0, width*height)
	for i := 0; i < width*height; i++ {
		pixels = append(pixels, [4]uint8{uint8(i), uint8(i >> 8), 0, 255})
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	adjustPixels(img, pixels, width, height)

	// Stream order: block (0,0) has 32x32 = 1024 pixels, so the first
	// pixel of block (1,0) (at x=32, y=0) is pixel 1024.
	off := img.PixOffset(32, 0)
	if got := int(img.Pix[off]) | int(img.Pix[off+1])<<8; got != 1024 {
		t.Errorf("pixel (32,0) index = %d, want 1024", got)
	}
	// Block (1,0) is 8 wide and 32 tall = 256 pixels; block (0,1) starts
	// at 1024+256 = 1280 at coordinate (0,32).
	off = img.PixOffset(0, 32)
	if got := int(img.Pix[off]) | int(img.Pix[off+1])<<8; got != 1280 {
		t.Errorf("pixel (0,32) index = %d, want 1280", got)
	}
}
