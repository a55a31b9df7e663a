package uihelpers

import (
	"path/filepath"
)

// summaryPanelWidth is the space reserved left of the chart grid for the summary text.
const summaryPanelWidth = 300

// ComputeChartDimensions returns the size of one cell of the 2x2 chart grid for a window width.
// A zero or tiny width (headless runs, first layout pass) yields the minimum size.
func ComputeChartDimensions(winW float32) (int, int) {
	w := (int(winW*0.95) - summaryPanelWidth - 24) / 2
	if w < 480 {
		w = 480
	}
	if w > 900 {
		w = 900
	}
	h := int(float32(w) * 0.62)
	if h < 300 {
		h = 300
	}
	if h > 520 {
		h = 520
	}
	return w, h
}

// ComputeOptionColumns returns how many checkbox group boxes sit side by side:
// three on a wide window, one stacked column when narrow.
func ComputeOptionColumns(winW float32) int {
	if winW > 0 && winW < 760 {
		return 1
	}
	return 3
}

// TruncatePath shortens p to about n characters, always keeping the file name.
func TruncatePath(p string, n int) string {
	if len(p) <= n {
		return p
	}
	base := filepath.Base(p)
	if len(base)+4 >= n {
		return "..." + base
	}
	dir := filepath.Dir(p)
	left := n - len(base) - 4
	if left <= 0 {
		return "..." + base
	}
	if len(dir) > left {
		dir = dir[:left]
	}
	return dir + "/..." + base
}
