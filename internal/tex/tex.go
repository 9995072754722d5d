// Package tex decodes the game's compressed texture containers into image
// files.
//
// A container holds one or more sub-images. Each sub-image declares a
// file type, a pixel sub-type and its dimensions; the pixel data follows
// row-major. File types 27 and 28 store their pixels in 32x32 blocks and
// need a de-interleaving pass after decoding.
package tex

import (
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/Rohan200220/sc-extract/internal/compress"
	"github.com/Rohan200220/sc-extract/internal/encode"
	"github.com/Rohan200220/sc-extract/internal/errs"
	"github.com/Rohan200220/sc-extract/internal/stream"
)

// headerSkip is the size of the container preamble preceding the LZMA
// stream.
const headerSkip = 26

// blockSize is the interleave block dimension for file types 27 and 28.
const blockSize = 32

// Process decodes raw texture container data and writes one image file
// per sub-image into outDir.
//
// The first sub-image is named after the file stem; every further one gets
// an extra underscore appended, matching the names the sprite pipeline
// expects for its sheets.
//
// A sub-image with an unrecognized pixel sub-type is abandoned and logged;
// the remaining sub-images are still extracted. parallelize only controls
// the per-file progress output.
func Process(data []byte, fileName, outDir string, parallelize bool, enc encode.Encoder) error {
	if len(data) < 35 {
		return fmt.Errorf("%w: size of file is too small", errs.ErrDecompression)
	}

	decompressed, err := compress.Decompress(data[headerSkip:])
	if err != nil {
		return err
	}

	if enc == nil {
		enc = &encode.PNGEncoder{}
	}

	if !parallelize {
		fmt.Printf("\nExtracting %s image(s)...\n", fileName)
	}

	r := stream.NewReader(decompressed)
	stem := filepath.Join(outDir, strings.ReplaceAll(fileName, ".sc", ""))
	picCount := 0

main:
	for r.Len() > 0 {
		fileType := r.ReadU8()
		fileSize := r.ReadU32()

		switch fileType {
		case 1, 24, 27, 28:
		default:
			r.ReadBytes(int(fileSize))
			continue
		}

		subType := r.ReadU8()
		width := int(r.ReadU16())
		height := int(r.ReadU16())

		fmt.Printf("file_type: %d, file_size: %d, sub_type: %d, width: %d, height: %d\n",
			fileType, fileSize, subType, width, height)

		img := image.NewNRGBA(image.Rect(0, 0, width, height))
		pixels := make([][4]uint8, 0, width*height)

		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				quad, err := convertPixel(r, subType)
				if err != nil {
					log.Printf("%v", err)
					continue main
				}
				pixels = append(pixels, quad)

				off := img.PixOffset(x, y)
				img.Pix[off+0] = quad[0]
				img.Pix[off+1] = quad[1]
				img.Pix[off+2] = quad[2]
				img.Pix[off+3] = quad[3]
			}
		}

		if fileType == 27 || fileType == 28 {
			adjustPixels(img, pixels, width, height)
		}

		out, err := enc.Encode(img)
		if err != nil {
			return fmt.Errorf("%w: failed to save image: %v", errs.ErrIO, err)
		}
		path := stem + strings.Repeat("_", picCount) + enc.FileExtension()
		if err := os.WriteFile(path, out, 0o644); err != nil {
			return fmt.Errorf("%w: failed to save image: %v", errs.ErrIO, err)
		}

		picCount++
	}

	return nil
}

// adjustPixels rewrites the raster so that the stream-ordered pixels land
// at their block-local coordinates: the stream is a sequence of 32x32
// row-major blocks, themselves laid out row-major. Blocks on the right and
// bottom edges are truncated to the image bounds.
func adjustPixels(img *image.NRGBA, pixels [][4]uint8, width, height int) {
	hLimit := (height + blockSize - 1) / blockSize
	wLimit := (width + blockSize - 1) / blockSize

	i := 0
	for bh := 0; bh < hLimit; bh++ {
		for bw := 0; bw < wLimit; bw++ {
			for y := bh * blockSize; y < (bh+1)*blockSize && y < height; y++ {
				for x := bw * blockSize; x < (bw+1)*blockSize && x < width; x++ {
					quad := pixels[i]
					off := img.PixOffset(x, y)
					img.Pix[off+0] = quad[0]
					img.Pix[off+1] = quad[1]
					img.Pix[off+2] = quad[2]
					img.Pix[off+3] = quad[3]
					i++
				}
			}
		}
	}
}
