package pinfield

import (
	"log/slog"
	"time"
)

// debugStats holds per-rebuild timing and marker metrics.
// Only logged when the annotator is in debug mode.
type debugStats struct {
	rebuildTime time.Duration
	pinCount    int
	badgeCount  int
	markerCount int
	distance    float64
}

// countBadges counts clusters drawn as a count badge.
func countBadges(clusters []Cluster) int {
	n := 0
	for i := range clusters {
		if len(clusters[i].Pins) > 1 {
			n++
		}
	}
	return n
}

// debugLog writes marker rebuild stats at debug level.
func (a *Annotator) debugLog(stats debugStats) {
	if !a.debug {
		return
	}
	a.log.Debug("markers rebuilt",
		slog.Duration("took", stats.rebuildTime),
		slog.Int("pins", stats.pinCount),
		slog.Int("badges", stats.badgeCount),
		slog.Int("markers", stats.markerCount),
		slog.Float64("distance", stats.distance),
		slog.Int("floor", a.state.ActiveFloor),
	)
}
