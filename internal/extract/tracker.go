package extract

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Tracker reports the progress of a batch extraction on stderr and keeps
// per-format tallies for the run summary: how many textures, sprite files
// and tables were extracted, and how many files failed or were skipped.
//
// Workers call exactly one of Extracted, Failed or Skipped per file. The
// bar is redrawn in place on those events, rate-limited so many small csv
// files do not flood the terminal.
type Tracker struct {
	total int64

	done      atomic.Int64
	failed    atomic.Int64
	skipped   atomic.Int64
	perFormat [3]atomic.Int64 // indexed by FileType

	start time.Time

	mu       sync.Mutex
	lastDraw time.Time
}

// NewTracker starts tracking a batch of total files.
func NewTracker(total int) *Tracker {
	return &Tracker{total: int64(total), start: time.Now()}
}

// Extracted records a successfully extracted file of the given type.
func (t *Tracker) Extracted(ft FileType) {
	if ft >= 0 && int(ft) < len(t.perFormat) {
		t.perFormat[ft].Add(1)
	}
	t.advance()
}

// Failed records a recognized file whose extraction errored.
func (t *Tracker) Failed() {
	t.failed.Add(1)
	t.advance()
}

// Skipped records a file that was not recognized or was filtered out.
func (t *Tracker) Skipped() {
	t.skipped.Add(1)
	t.advance()
}

// Finish draws the final bar state and prints the run summary.
func (t *Tracker) Finish() {
	t.mu.Lock()
	t.draw()
	t.mu.Unlock()
	fmt.Fprintf(os.Stderr, "\n%s\n", t.Summary())
}

// Summary describes the finished run, e.g.
// "2 sc, 4 tex extracted, 1 failed, 3 skipped in 12s".
func (t *Tracker) Summary() string {
	var counts []string
	for ft := TypeCSV; ft <= TypeTex; ft++ {
		if n := t.perFormat[ft].Load(); n > 0 {
			counts = append(counts, fmt.Sprintf("%d %s", n, ft))
		}
	}

	s := "nothing extracted"
	if len(counts) > 0 {
		s = strings.Join(counts, ", ") + " extracted"
	}
	if n := t.failed.Load(); n > 0 {
		s += fmt.Sprintf(", %d failed", n)
	}
	if n := t.skipped.Load(); n > 0 {
		s += fmt.Sprintf(", %d skipped", n)
	}
	return fmt.Sprintf("%s in %s", s, time.Since(t.start).Truncate(time.Second))
}

func (t *Tracker) advance() {
	t.done.Add(1)

	t.mu.Lock()
	defer t.mu.Unlock()
	if time.Since(t.lastDraw) < 100*time.Millisecond {
		return
	}
	t.lastDraw = time.Now()
	t.draw()
}

func (t *Tracker) draw() {
	done := t.done.Load()

	const width = 24
	filled := 0
	if t.total > 0 {
		filled = int(float64(done) / float64(t.total) * width)
	}
	if filled > width {
		filled = width
	}
	bar := strings.Repeat("=", filled) + strings.Repeat("-", width-filled)

	fmt.Fprintf(os.Stderr, "\r[%s] %d/%d  tex %d  sc %d  csv %d\033[K",
		bar, done, t.total,
		t.perFormat[TypeTex].Load(),
		t.perFormat[TypeSC].Load(),
		t.perFormat[TypeCSV].Load())
}
