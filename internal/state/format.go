package state

import (
	"math"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/five82/lookout/internal/device"
)

const defaultDetectionLabel = "object"

// FormatDetection renders one detection as "label confidence source track:id".
// Missing parts are skipped; a missing label reads "object".
func FormatDetection(d device.Detection) string {
	label := defaultDetectionLabel
	if d.Label != nil {
		label = *d.Label
	}
	parts := []string{label}
	if d.Confidence != nil {
		parts = append(parts, FormatConfidence(*d.Confidence))
	}
	if src := strings.TrimSpace(d.Source); src != "" {
		parts = append(parts, src)
	}
	if tid := strings.TrimSpace(string(d.Track)); tid != "" {
		parts = append(parts, "track:"+tid)
	}
	return strings.Join(lo.Compact(parts), " ")
}

// FormatDetections renders the detection panel, one line per item.
func FormatDetections(items []device.Detection) []string {
	return lo.Map(items, func(d device.Detection, _ int) string {
		return FormatDetection(d)
	})
}

// FormatConfidence rounds to two decimals and drops trailing zeros (0.80 -> 0.8).
func FormatConfidence(c float64) string {
	if math.IsNaN(c) || math.IsInf(c, 0) {
		return ""
	}
	return strconv.FormatFloat(math.Round(c*100)/100, 'f', -1, 64)
}

// RunLabel is the text of the run-state pill.
func RunLabel(s Snapshot) string {
	switch {
	case !s.HasStatus:
		return "unknown"
	case s.Running:
		return "running"
	default:
		return "stopped"
	}
}
