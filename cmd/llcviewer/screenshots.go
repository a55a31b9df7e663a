package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jennifer-xuyi/llp-tools/cmd/llcviewer/uihelpers"
	"github.com/jennifer-xuyi/llp-tools/src/analysis"
	"github.com/jennifer-xuyi/llp-tools/src/applog"
	"github.com/jennifer-xuyi/llp-tools/src/charts"
	"github.com/jennifer-xuyi/llp-tools/src/dataset"
	"github.com/jennifer-xuyi/llp-tools/src/preset"
	"github.com/jennifer-xuyi/llp-tools/src/selection"
)

// RunScreenshotsMode renders the four charts for a preset (or the empty selection) and writes
// them as PNGs under outDir together with summary.txt. It runs headlessly without a window.
func RunScreenshotsMode(filePath, presetsPath, presetName, outDir string) error {
	if filePath == "" {
		filePath = dataset.DefaultPath
	}
	tbl, err := dataset.Load(filePath)
	if err != nil {
		return err
	}
	if err := checkPresetFlag(presetName, presetsPath); err != nil {
		return err
	}
	var sel selection.Selection
	if presetName != "" {
		f, err := preset.Load(presetsPath)
		if err != nil {
			return err
		}
		if sel, err = f.Lookup(presetName); err != nil {
			return err
		}
	}
	st := &uiState{filePath: filePath, table: tbl, sel: sel}
	st.snapshot = analysis.Aggregate(tbl, sel)

	// Without a window chartSize falls back to the minimum cell size.
	cw, ch := chartSize(st)
	paths, err := charts.WritePNGs(outDir, st.snapshot, cw, ch)
	if err != nil {
		return err
	}
	summary := fmt.Sprintf("File: %s\nSelection: %s\nRows: %d of %d\n\n%s",
		uihelpers.TruncatePath(filePath, 80), sel, st.snapshot.Rows, tbl.Len(), charts.Summary(st.snapshot))
	sp := filepath.Join(outDir, "summary.txt")
	if err := os.WriteFile(sp, []byte(summary), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", sp, err)
	}
	applog.Infof("[viewer] wrote %d charts and %s", len(paths), sp)
	return nil
}

// checkPresetFlag rejects -preset when there is no presets file to look it up in.
func checkPresetFlag(presetName, presetsPath string) error {
	if presetName != "" && presetsPath == "" {
		return fmt.Errorf("-preset %q needs -presets", presetName)
	}
	return nil
}
