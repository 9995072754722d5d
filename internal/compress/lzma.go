// Package compress decompresses the LZMA streams found in the game's
// asset packs.
//
// The packs carry a shortened LZMA header: the classic 13-byte header with
// the uncompressed size truncated from eight bytes to four. Reconstructing
// a standard stream is a matter of re-inserting the four high size bytes
// (always zero) before handing the data to the LZMA reader.
package compress

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ulikunitz/xz/lzma"

	"github.com/Rohan200220/sc-extract/internal/errs"
)

// headerLen is the length of the shortened header: one properties byte,
// a four-byte dictionary size, and a four-byte uncompressed size.
const headerLen = 9

// Decompress reconstructs a standard LZMA stream from raw asset-pack data
// and decompresses it.
func Decompress(raw []byte) ([]byte, error) {
	if len(raw) < headerLen {
		return nil, fmt.Errorf("%w: size of file is too small", errs.ErrDecompression)
	}

	fixed := make([]byte, 0, len(raw)+4)
	fixed = append(fixed, raw[:headerLen]...)
	fixed = append(fixed, 0, 0, 0, 0)
	fixed = append(fixed, raw[headerLen:]...)

	r, err := lzma.NewReader(bytes.NewReader(fixed))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decompress file: %v", errs.ErrDecompression, err)
	}

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decompress file: %v", errs.ErrDecompression, err)
	}
	return out, nil
}
