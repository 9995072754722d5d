package extract

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ulikunitz/xz/lzma"

	"github.com/Rohan200220/sc-extract/internal/errs"
)

func TestDetectType(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		path   string
		filter bool
		want   FileType
		ok     bool
	}{
		{"tex by magic and suffix", []byte("SC..."), "ui_tex.sc", true, TypeTex, true},
		{"csv by magic and suffix", []byte{0x5d, 0x00, 1, 2}, "cards.csv", true, TypeCSV, true},
		{"sc without extension", []byte{1, 2, 3}, "ui", true, TypeSC, true},
		{"empty data", nil, "ui", true, 0, false},
		{"wrong tex magic", []byte("XC.."), "ui_tex.sc", true, 0, false},
		{"csv magic but wrong suffix", []byte{0x5d, 0x00}, "cards.bin", true, 0, false},
		{"filtered DS_Store", []byte{1}, ".DS_Store", true, 0, false},
		{"filtered quickbms", []byte{1}, "quickbms", true, 0, false},
		{"filter disabled keeps no-ext file", []byte{1}, "quickbms", false, TypeSC, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DetectType(tt.data, tt.path, tt.filter)
			if ok != tt.ok {
				t.Fatalf("DetectType() ok = %v, want %v", ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("DetectType() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseFileType(t *testing.T) {
	for _, tt := range []struct {
		in   string
		want FileType
	}{
		{"csv", TypeCSV},
		{"SC", TypeSC},
		{" tex ", TypeTex},
	} {
		got, err := ParseFileType(tt.in)
		if err != nil {
			t.Fatalf("ParseFileType(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseFileType(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := ParseFileType("bin"); err == nil {
		t.Error("ParseFileType(bin) expected error")
	}
}

func TestProcessCSVRoundTrip(t *testing.T) {
	payload := []byte("id,name\n1,archer\n2,giant\n")

	var buf bytes.Buffer
	w, err := lzma.WriterConfig{
		SizeInHeader: true,
		Size:         int64(len(payload)),
	}.NewWriter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write(payload); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	full := buf.Bytes()
	packed := append(append([]byte{}, full[:9]...), full[13:]...)

	outDir := t.TempDir()
	if err := ProcessCSV(packed, "units.csv", Config{OutDir: outDir}); err != nil {
		t.Fatalf("ProcessCSV: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(outDir, "units.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("csv output = %q, want %q", got, payload)
	}
}

func TestProcessCSVBadStream(t *testing.T) {
	err := ProcessCSV(bytes.Repeat([]byte{0xfe}, 32), "bad.csv", Config{OutDir: t.TempDir()})
	if !errors.Is(err, errs.ErrDecompression) {
		t.Errorf("ProcessCSV error = %v, want ErrDecompression", err)
	}
}

func TestTrackerSummary(t *testing.T) {
	tr := NewTracker(6)
	tr.Extracted(TypeTex)
	tr.Extracted(TypeTex)
	tr.Extracted(TypeSC)
	tr.Failed()
	tr.Skipped()
	tr.Skipped()

	got := tr.Summary()
	for _, want := range []string{"2 tex", "1 sc", "1 failed", "2 skipped"} {
		if !bytes.Contains([]byte(got), []byte(want)) {
			t.Errorf("Summary() = %q, missing %q", got, want)
		}
	}
	if bytes.Contains([]byte(got), []byte("csv")) {
		t.Errorf("Summary() = %q, should omit formats with zero files", got)
	}
}

func TestTrackerSummaryEmptyRun(t *testing.T) {
	tr := NewTracker(2)
	tr.Skipped()
	tr.Skipped()

	if got := tr.Summary(); !bytes.Contains([]byte(got), []byte("nothing extracted")) {
		t.Errorf("Summary() = %q, want it to report nothing extracted", got)
	}
}

func TestProcessSCCreatesOutputDir(t *testing.T) {
	outDir := t.TempDir()

	// Minimal header: no sheets, no sprites.
	data := make([]byte, 19)
	if err := ProcessSC(data, "empty", Config{OutDir: outDir, PNGDir: t.TempDir(), Parallel: true}); err != nil {
		t.Fatalf("ProcessSC: %v", err)
	}

	info, err := os.Stat(filepath.Join(outDir, "empty_out"))
	if err != nil {
		t.Fatal(err)
	}
	if !info.IsDir() {
		t.Error("expected empty_out to be a directory")
	}
}
