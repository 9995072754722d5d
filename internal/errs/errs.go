// Package errs defines the error kinds shared by the extractors.
//
// Callers distinguish failures with errors.Is against these sentinels;
// context is attached by wrapping with fmt.Errorf and %w.
package errs

import "errors"

var (
	// ErrUnknownPixel is returned when a texture uses a pixel encoding
	// outside the recognized set.
	ErrUnknownPixel = errors.New("unknown pixel")

	// ErrDecompression is returned when LZMA rejects a stream or the
	// input is too short to carry a compressed payload.
	ErrDecompression = errors.New("decompression failed")

	// ErrIO is returned when reading or writing files fails.
	ErrIO = errors.New("io error")

	// ErrOther covers miscellaneous failures, such as missing companion
	// sheet images.
	ErrOther = errors.New("extraction error")
)
