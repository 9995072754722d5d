package tex

import (
	"fmt"

	"github.com/Rohan200220/sc-extract/internal/errs"
	"github.com/Rohan200220/sc-extract/internal/stream"
)

// convertPixel reads one packed pixel from the stream and expands it to an
// RGBA quad. The bit layouts are those of the game's texture formats;
// deviations change colors.
//
// Recognized pixel types: 0, 1 (RGBA8888), 2 (RGBA4444), 3 (RGBA5551),
// 4 (RGB565), 6 (LA88) and 10 (8-bit gray). Anything else fails with
// errs.ErrUnknownPixel and consumes no bytes.
func convertPixel(r *stream.Reader, pixelType uint8) ([4]uint8, error) {
	switch pixelType {
	case 0, 1:
		p := r.ReadBytes(4)
		return [4]uint8{p[0], p[1], p[2], p[3]}, nil
	case 2:
		p := r.ReadU16()
		return [4]uint8{
			uint8(((p >> 12) & 0xF) << 4),
			uint8(((p >> 8) & 0xF) << 4),
			uint8(((p >> 4) & 0xF) << 4),
			uint8((p & 0xF) << 4),
		}, nil
	case 3:
		// The alpha extraction masks a full byte before shifting, which
		// diverges from standard RGBA5551. Kept as the game produces it.
		p := r.ReadU16()
		return [4]uint8{
			uint8(((p >> 11) & 0x1F) << 3),
			uint8(((p >> 6) & 0x1F) << 3),
			uint8(((p >> 1) & 0x1F) << 3),
			uint8((p & 0xFF) << 7),
		}, nil
	case 4:
		p := r.ReadU16()
		return [4]uint8{
			uint8(((p >> 11) & 0x1F) << 3),
			uint8(((p >> 5) & 0x3F) << 2),
			uint8((p & 0x1F) << 3),
			// Alpha channel must always be 255 for type 4.
			255,
		}, nil
	case 6:
		p := r.ReadU16()
		l := uint8(p >> 8)
		return [4]uint8{l, l, l, uint8(p & 0xFF)}, nil
	case 10:
		p := r.ReadU8()
		return [4]uint8{p, p, p, p}, nil
	default:
		return [4]uint8{}, fmt.Errorf("%w: unknown pixel type (%d)", errs.ErrUnknownPixel, pixelType)
	}
}
