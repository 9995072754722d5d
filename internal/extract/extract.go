// Package extract dispatches raw asset-pack files to the right decoder
// and implements the trivial csv path.
package extract

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Rohan200220/sc-extract/internal/compress"
	"github.com/Rohan200220/sc-extract/internal/encode"
	"github.com/Rohan200220/sc-extract/internal/errs"
	"github.com/Rohan200220/sc-extract/internal/sc"
	"github.com/Rohan200220/sc-extract/internal/tex"
)

// FileType identifies one of the recognized asset-pack formats.
type FileType int

const (
	// TypeCSV is an LZMA-compressed table.
	TypeCSV FileType = iota
	// TypeSC is an extracted (already unwrapped) sprite-description
	// binary.
	TypeSC
	// TypeTex is a compressed texture container.
	TypeTex
)

func (t FileType) String() string {
	switch t {
	case TypeCSV:
		return "csv"
	case TypeSC:
		return "sc"
	case TypeTex:
		return "tex"
	default:
		return "unknown"
	}
}

// ParseFileType converts a string flag value to a FileType.
func ParseFileType(s string) (FileType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return TypeCSV, nil
	case "sc":
		return TypeSC, nil
	case "tex":
		return TypeTex, nil
	default:
		return 0, fmt.Errorf("file type must be one of csv, sc and tex")
	}
}

// Config carries the settings shared by all extraction calls.
type Config struct {
	// OutDir receives extracted files. Sprite extraction creates a
	// per-file subdirectory beneath it.
	OutDir string

	// PNGDir is where sprite extraction looks for previously extracted
	// texture sheets.
	PNGDir string

	// Parallel marks whether files are processed in parallel; it only
	// controls the per-file progress output.
	Parallel bool

	// Encoder selects the texture output format. nil means PNG.
	Encoder encode.Encoder
}

// DetectType sniffs the file type from its name and leading bytes.
// Files that carry no extension are treated as extracted sc binaries.
// With filter set, common error-prone files are rejected outright.
func DetectType(data []byte, path string, filter bool) (FileType, bool) {
	name := filepath.Base(path)

	if filter && (name == ".DS_Store" || name == "quickbms") {
		return 0, false
	}

	switch {
	case len(data) == 0:
		return 0, false
	case filepath.Ext(name) == "":
		return TypeSC, true
	case data[0] == 'S' && strings.HasSuffix(name, "_tex.sc"):
		return TypeTex, true
	case len(data) >= 2 && bytes.Equal(data[:2], []byte{0x5d, 0x00}) && strings.HasSuffix(name, ".csv"):
		return TypeCSV, true
	default:
		return 0, false
	}
}

// ProcessTex extracts a compressed texture container into cfg.OutDir.
func ProcessTex(data []byte, fileName string, cfg Config) error {
	return tex.Process(data, fileName, cfg.OutDir, cfg.Parallel, cfg.Encoder)
}

// ProcessSC composites the sprites of an extracted sc binary into
// cfg.OutDir/<fileName>_out, reading sheets from cfg.PNGDir.
func ProcessSC(data []byte, fileName string, cfg Config) error {
	outDir := filepath.Join(cfg.OutDir, fileName+"_out")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("%w: unable to create %s: %v", errs.ErrIO, outDir, err)
	}
	return sc.Process(data, fileName, outDir, cfg.PNGDir, cfg.Parallel)
}

// ProcessCSV decompresses a csv table and writes it under its own name
// into cfg.OutDir.
func ProcessCSV(data []byte, fileName string, cfg Config) error {
	decompressed, err := compress.Decompress(data)
	if err != nil {
		return err
	}

	fmt.Printf("\nExtracting %s file...\n", fileName)

	if err := os.WriteFile(filepath.Join(cfg.OutDir, fileName), decompressed, 0o644); err != nil {
		return fmt.Errorf("%w: unable to write %s: %v", errs.ErrIO, fileName, err)
	}
	return nil
}
