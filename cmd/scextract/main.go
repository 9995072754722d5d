// Command scextract extracts graphics and data from the asset packs of a
// family of mobile games: compressed texture containers (_tex.sc),
// extracted sprite-description binaries (.sc) and compressed tables
// (.csv).
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/Rohan200220/sc-extract/internal/encode"
	"github.com/Rohan200220/sc-extract/internal/extract"
)

// Set via -ldflags at build time.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	var (
		outDirFlag   string
		pngDirFlag   string
		kindFlag     string
		format       string
		quality      int
		parallelize  bool
		deleteSource bool
		noFilter     bool
		verbose      bool
		showVersion  bool
	)

	flag.StringVar(&outDirFlag, "out", "", "Directory where an extracts folder is created (default: input directory)")
	flag.StringVar(&pngDirFlag, "png", "", "Directory with extracted _tex.sc images, needed for .sc files (default: source file's directory)")
	flag.StringVar(&kindFlag, "type", "", "Only extract this file type: csv, sc or tex (default: all)")
	flag.StringVar(&format, "format", "png", "Texture output format: png, jpeg, webp")
	flag.IntVar(&quality, "quality", 85, "JPEG/WebP quality 1-100")
	flag.BoolVar(&parallelize, "parallel", false, "Extract files in parallel")
	flag.BoolVar(&deleteSource, "delete", false, "Delete source files after successful extraction")
	flag.BoolVar(&noFilter, "no-filter", false, "Disable filtering of common error-prone files (.DS_Store, quickbms)")
	flag.BoolVar(&verbose, "verbose", false, "Verbose progress output")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: scextract [flags] [path]\n\n")
		fmt.Fprintf(os.Stderr, "Extract graphics and data from game asset packs.\n")
		fmt.Fprintf(os.Stderr, "path is a file or a directory of files to extract (default: current directory).\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("scextract %s (commit %s, built %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	path := flag.Arg(0)
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			log.Fatalf("Expected to access the current directory: %v", err)
		}
		path = cwd
	}

	info, err := os.Stat(path)
	if err != nil {
		log.Fatalf("Stat %s: %v", path, err)
	}

	var kind *extract.FileType
	if kindFlag != "" {
		k, err := extract.ParseFileType(kindFlag)
		if err != nil {
			log.Fatalf("Type filter: %v", err)
		}
		kind = &k
	}

	enc, err := encode.NewEncoder(format, quality)
	if err != nil {
		log.Fatalf("Encoder: %v", err)
	}

	outDir := outDirFlag
	if outDir == "" {
		if info.IsDir() {
			outDir = path
		} else {
			outDir = filepath.Dir(path)
		}
	}
	outDir = filepath.Join(outDir, "extracts")

	createdOut := false
	if _, err := os.Stat(outDir); os.IsNotExist(err) {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			log.Fatalf("Creating %s: %v", outDir, err)
		}
		createdOut = true
	}

	cfg := extract.Config{
		OutDir:   outDir,
		PNGDir:   pngDirFlag,
		Parallel: parallelize,
		Encoder:  enc,
	}

	if info.IsDir() {
		extractDir(path, cfg, kind, !noFilter, deleteSource, parallelize, verbose)
	} else {
		processFile(path, cfg, kind, !noFilter, deleteSource)
	}

	if createdOut {
		// Fails if the directory is not empty; that is fine.
		_ = os.Remove(outDir)
	}

	fmt.Println("\nExtraction finished!")
}

// outcome classifies what processFile did with one file.
type outcome int

const (
	// outcomeSkipped marks an unreadable or unrecognized file.
	outcomeSkipped outcome = iota
	// outcomeFiltered marks a recognized file excluded by -type.
	outcomeFiltered
	outcomeExtracted
	outcomeFailed
)

// extractDir runs every file of dir through the extractors. With
// parallelize one worker per CPU is used and a progress tracker is drawn;
// otherwise files are processed one by one.
func extractDir(dir string, cfg extract.Config, kind *extract.FileType, filter, deleteSource, parallelize, verbose bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Fatalf("Failed to read contents of %s: %v", dir, err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}

	concurrency := 1
	if parallelize {
		concurrency = runtime.NumCPU()
	}
	if verbose {
		log.Printf("Extracting %d file(s) with %d worker(s)", len(files), concurrency)
	}

	var tracker *extract.Tracker
	if parallelize {
		tracker = extract.NewTracker(len(files))
	}

	var foundOne atomic.Bool
	jobs := make(chan string, concurrency*2)
	var wg sync.WaitGroup

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				fileType, res := processFile(path, cfg, kind, filter, deleteSource)
				if res != outcomeSkipped {
					foundOne.Store(true)
				}
				if tracker == nil {
					continue
				}
				switch res {
				case outcomeExtracted:
					tracker.Extracted(fileType)
				case outcomeFailed:
					tracker.Failed()
				default:
					tracker.Skipped()
				}
			}
		}()
	}

	for _, f := range files {
		jobs <- f
	}
	close(jobs)
	wg.Wait()
	if tracker != nil {
		tracker.Finish()
	}

	if !foundOne.Load() {
		log.Fatal("No valid `_tex.sc`, `.sc` or `.csv` file in the given directory!")
	}
}

// processFile sniffs and extracts a single file. Extraction errors are
// printed and the source file is kept.
func processFile(path string, cfg extract.Config, kind *extract.FileType, filter, deleteSource bool) (extract.FileType, outcome) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, outcomeSkipped
	}

	fileType, ok := extract.DetectType(data, path, filter)
	if !ok {
		return 0, outcomeSkipped
	}
	if kind != nil && *kind != fileType {
		return fileType, outcomeFiltered
	}

	fileName := filepath.Base(path)

	switch fileType {
	case extract.TypeTex:
		err = extract.ProcessTex(data, fileName, cfg)
	case extract.TypeCSV:
		err = extract.ProcessCSV(data, fileName, cfg)
	case extract.TypeSC:
		if cfg.PNGDir == "" {
			cfg.PNGDir = filepath.Dir(path)
		}
		err = extract.ProcessSC(data, fileName, cfg)
	}

	if err != nil {
		log.Printf("%v: %s", err, path)
		// Keep the source when extraction failed.
		return fileType, outcomeFailed
	}

	if deleteSource {
		if err := os.Remove(path); err != nil {
			log.Printf("Failed to remove file: %s", path)
		}
	}
	return fileType, outcomeExtracted
}
