package main

import (
	"fmt"
	"image"

	fyne "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"github.com/jennifer-xuyi/llp-tools/cmd/llcviewer/uihelpers"
	"github.com/jennifer-xuyi/llp-tools/src/analysis"
	"github.com/jennifer-xuyi/llp-tools/src/applog"
	"github.com/jennifer-xuyi/llp-tools/src/charts"
	"github.com/jennifer-xuyi/llp-tools/src/dataset"
	"github.com/jennifer-xuyi/llp-tools/src/preset"
	"github.com/jennifer-xuyi/llp-tools/src/selection"
)

// uiState owns every piece of mutable UI state. All methods run on the fyne event goroutine.
type uiState struct {
	app    fyne.App
	window fyne.Window

	filePath    string
	presetsPath string

	table    *dataset.Table
	presets  *preset.File
	sel      selection.Selection
	snapshot analysis.Snapshot

	// widgets
	categoryChecks [selection.NumCategories]*widget.Check
	padChecks      [selection.NumPADStatuses]*widget.Check
	diabetesChecks [selection.NumDiabetesStatuses]*widget.Check
	summary        *widget.RichText
	rowsLabel      *widget.Label
	fileLabel      *widget.Label
	chartImgs      [4]*canvas.Image
}

func (s *uiState) setCategory(c selection.Category, on bool) {
	if s.sel.HasCategory(c) == on {
		return
	}
	s.sel.SetCategory(c, on)
	s.selectionChanged()
}

func (s *uiState) setPAD(p selection.PADStatus, on bool) {
	if s.sel.HasPAD(p) == on {
		return
	}
	s.sel.SetPAD(p, on)
	s.selectionChanged()
}

func (s *uiState) setDiabetes(d selection.DiabetesStatus, on bool) {
	if s.sel.HasDiabetes(d) == on {
		return
	}
	s.sel.SetDiabetes(d, on)
	s.selectionChanged()
}

func (s *uiState) selectionChanged() {
	applog.Debugf("[viewer] selection changed: %s", s.sel)
	s.recompute()
}

// applySelection replaces the whole selection (presets, clear) and redraws once.
// s.sel is assigned first so the checkbox callbacks fired by SetChecked see no change.
func (s *uiState) applySelection(sel selection.Selection) {
	s.sel = sel
	for _, c := range selection.AllCategories() {
		if chk := s.categoryChecks[c]; chk != nil {
			chk.SetChecked(sel.HasCategory(c))
		}
	}
	for _, p := range selection.AllPADStatuses() {
		if chk := s.padChecks[p]; chk != nil {
			chk.SetChecked(sel.HasPAD(p))
		}
	}
	for _, d := range selection.AllDiabetesStatuses() {
		if chk := s.diabetesChecks[d]; chk != nil {
			chk.SetChecked(sel.HasDiabetes(d))
		}
	}
	s.recompute()
}

func (s *uiState) applyPreset(name string) error {
	sel, err := s.presets.Lookup(name)
	if err != nil {
		return err
	}
	applog.Infof("[viewer] preset %q: %s", name, sel)
	s.applySelection(sel)
	return nil
}

// recompute rebuilds the snapshot from scratch and redraws everything that shows it.
func (s *uiState) recompute() {
	s.snapshot = analysis.Aggregate(s.table, s.sel)
	s.updateSummary()
	redrawCharts(s)
}

func (s *uiState) updateSummary() {
	if s.summary != nil {
		s.summary.ParseMarkdown(charts.SummaryMarkdown(s.snapshot))
	}
	if s.rowsLabel != nil {
		s.rowsLabel.SetText(fmt.Sprintf("%d of %d rows", s.snapshot.Rows, s.table.Len()))
	}
}

// setTable swaps in a newly loaded workbook and recomputes with the current selection.
func (s *uiState) setTable(t *dataset.Table) {
	s.table = t
	s.filePath = t.Path
	if s.fileLabel != nil {
		s.fileLabel.SetText(uihelpers.TruncatePath(s.filePath, 60))
	}
	s.recompute()
}

// chartSize computes the size of one chart cell from the current window width.
func chartSize(s *uiState) (int, int) {
	if s == nil || s.window == nil || s.window.Canvas() == nil {
		return uihelpers.ComputeChartDimensions(0)
	}
	return uihelpers.ComputeChartDimensions(s.window.Canvas().Size().Width)
}

// renderCharts draws the four horizon charts for the current snapshot. Render failures are
// logged and replaced by blank images.
func renderCharts(s *uiState) []image.Image {
	cw, ch := chartSize(s)
	imgs := make([]image.Image, 0, 4)
	for _, hz := range charts.AllHorizons() {
		img, err := charts.RenderHorizon(hz, s.snapshot, cw, ch)
		if err != nil {
			applog.Warnf("[viewer] %v; showing blank fallback", err)
		}
		imgs = append(imgs, img)
	}
	return imgs
}

func redrawCharts(s *uiState) {
	imgs := renderCharts(s)
	cw, ch := chartSize(s)
	for i, c := range s.chartImgs {
		if c == nil {
			continue
		}
		c.Image = imgs[i]
		c.SetMinSize(fyne.NewSize(float32(cw), float32(ch)))
		c.Refresh()
	}
}
