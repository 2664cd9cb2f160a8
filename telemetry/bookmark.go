package telemetry

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkHeavyLoadEntered BookmarkType = "heavy_load_entered"
	BookmarkHeavyLoadCleared BookmarkType = "heavy_load_cleared"
	BookmarkPopulationCap    BookmarkType = "population_cap"
	BookmarkSpawnBurst       BookmarkType = "spawn_burst"
	BookmarkFieldDrained     BookmarkType = "field_drained"
	BookmarkSteadyField      BookmarkType = "steady_field"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int64        `csv:"tick"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in the stats stream.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	heavyLoad int
	maxBoxes  int

	prev        *WindowStats
	steadyCount int // consecutive windows with a steady population
	liveScratch []float64
}

// NewBookmarkDetector creates a detector with the given history size and
// population limits.
func NewBookmarkDetector(historySize, heavyLoad, maxBoxes int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for steady field detection
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
		heavyLoad:   heavyLoad,
		maxBoxes:    maxBoxes,
	}
}

// SetLimits updates the population thresholds after a config change.
func (bd *BookmarkDetector) SetLimits(heavyLoad, maxBoxes int) {
	bd.heavyLoad = heavyLoad
	bd.maxBoxes = maxBoxes
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if bd.prev != nil {
		for _, check := range []func(WindowStats) *Bookmark{
			bd.checkHeavyLoad,
			bd.checkPopulationCap,
			bd.checkSpawnBurst,
			bd.checkFieldDrained,
			bd.checkSteadyField,
		} {
			if b := check(stats); b != nil {
				bookmarks = append(bookmarks, *b)
			}
		}
	}

	bd.addToHistory(stats)
	prev := stats
	bd.prev = &prev

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// getHistory returns the stored windows, oldest first.
func (bd *BookmarkDetector) getHistory() []WindowStats {
	if !bd.historyFull {
		return bd.history[:bd.historyIdx]
	}
	out := make([]WindowStats, 0, bd.historySize)
	out = append(out, bd.history[bd.historyIdx:]...)
	return append(out, bd.history[:bd.historyIdx]...)
}

func (bd *BookmarkDetector) checkHeavyLoad(stats WindowStats) *Bookmark {
	was := bd.prev.Live > bd.heavyLoad
	is := stats.Live > bd.heavyLoad
	switch {
	case is && !was:
		return &Bookmark{
			Type:        BookmarkHeavyLoadEntered,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("%d live boxes above %d, %d ticks skipped", stats.Live, bd.heavyLoad, stats.SkippedTicks),
		}
	case was && !is:
		return &Bookmark{
			Type:        BookmarkHeavyLoadCleared,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Population fell to %d from %d", stats.Live, bd.prev.Live),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkPopulationCap(stats WindowStats) *Bookmark {
	if stats.Live >= bd.maxBoxes && bd.prev.Live < bd.maxBoxes {
		return &Bookmark{
			Type:        BookmarkPopulationCap,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Population reached the cap of %d", bd.maxBoxes),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkSpawnBurst(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total int
	for _, h := range history {
		total += h.Spawned
	}
	avg := float64(total) / float64(len(history))
	if avg == 0 {
		return nil
	}

	if float64(stats.Spawned) > avg*2.0 && stats.Spawned >= 20 {
		return &Bookmark{
			Type:        BookmarkSpawnBurst,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Spawned %d is %.1fx average (%.1f)", stats.Spawned, float64(stats.Spawned)/avg, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkFieldDrained(stats WindowStats) *Bookmark {
	if stats.Live == 0 && bd.prev.Live >= 10 {
		return &Bookmark{
			Type:        BookmarkFieldDrained,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Field emptied from %d boxes", bd.prev.Live),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkSteadyField(stats WindowStats) *Bookmark {
	if stats.Live < 10 {
		bd.steadyCount = 0
		return nil
	}

	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	// Current window plus the three before it
	bd.liveScratch = bd.liveScratch[:0]
	for _, h := range history[len(history)-3:] {
		bd.liveScratch = append(bd.liveScratch, float64(h.Live))
	}
	bd.liveScratch = append(bd.liveScratch, float64(stats.Live))

	mean, variance := stat.PopMeanVariance(bd.liveScratch, nil)
	if mean > 0 && variance/(mean*mean) < 0.04 { // CV < 0.2
		bd.steadyCount++
	} else {
		bd.steadyCount = 0
	}

	if bd.steadyCount == 5 { // trigger exactly once per steady run
		return &Bookmark{
			Type:        BookmarkSteadyField,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Population steady around %.0f boxes over 5+ windows", mean),
		}
	}
	return nil
}
