package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"os"
	"time"

	fyne "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"github.com/jennifer-xuyi/llp-tools/cmd/llcviewer/uihelpers"
	"github.com/jennifer-xuyi/llp-tools/src/applog"
	"github.com/jennifer-xuyi/llp-tools/src/charts"
	"github.com/jennifer-xuyi/llp-tools/src/dataset"
	"github.com/jennifer-xuyi/llp-tools/src/preset"
	"github.com/jennifer-xuyi/llp-tools/src/selection"
)

const windowTitle = "Classification LLC X PAD X Diabetes"

func main() {
	var fileFlag, presetsFlag, presetFlag, outDir, logLevel string
	var screenshots bool
	flag.StringVar(&fileFlag, "file", dataset.DefaultPath, "Path to the statistics workbook (sheet srcdata)")
	flag.StringVar(&presetsFlag, "presets", "", "Optional YAML file with named filter presets")
	flag.StringVar(&presetFlag, "preset", "", "Preset to apply at startup (requires -presets)")
	flag.BoolVar(&screenshots, "screenshots", false, "Render the four charts to -out and exit without opening a window")
	flag.StringVar(&outDir, "out", "screenshots", "Output directory for -screenshots")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug|info|warn|error)")
	flag.Parse()
	if !applog.SetLogLevel(logLevel) {
		fmt.Fprintf(os.Stderr, "unknown -log-level %q\n", logLevel)
		os.Exit(2)
	}

	if screenshots {
		if err := RunScreenshotsMode(fileFlag, presetsFlag, presetFlag, outDir); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	a := app.NewWithID("com.llp.llcviewer")
	explicit := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
	filePath, presetsPath := loadPrefs(a.Preferences(), fileFlag, explicit["file"], presetsFlag, explicit["presets"])
	if err := checkPresetFlag(presetFlag, presetsPath); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}

	// The workbook is required; nothing useful can be shown without it.
	tbl, err := dataset.Load(filePath)
	if err != nil && filePath != fileFlag {
		applog.Warnf("[viewer] last opened workbook unavailable (%v); using %s", err, fileFlag)
		filePath = fileFlag
		tbl, err = dataset.Load(filePath)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
	var presets *preset.File
	if presetsPath != "" {
		if presets, err = preset.Load(presetsPath); err != nil {
			if explicit["presets"] || presetFlag != "" {
				fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
				os.Exit(1)
			}
			applog.Warnf("[viewer] remembered presets not loaded: %v", err)
			presetsPath = ""
		}
	}

	w := a.NewWindow(windowTitle)
	w.Resize(fyne.NewSize(1300, 950))

	state := &uiState{
		app:         a,
		window:      w,
		filePath:    filePath,
		presetsPath: presetsPath,
		table:       tbl,
		presets:     presets,
	}
	w.SetContent(buildUI(state))
	buildMenus(state)
	watchResize(state)
	savePrefs(state)

	if presetFlag != "" {
		if err := state.applyPreset(presetFlag); err != nil {
			fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
			os.Exit(1)
		}
	} else {
		state.recompute()
	}
	w.ShowAndRun()
}

// buildUI creates the option groups, the summary panel and the chart grid.
func buildUI(state *uiState) fyne.CanvasObject {
	var llcBox, padBox, dmBox []fyne.CanvasObject
	for _, c := range selection.AllCategories() {
		c := c
		chk := widget.NewCheck(c.String(), func(on bool) { state.setCategory(c, on) })
		state.categoryChecks[c] = chk
		llcBox = append(llcBox, chk)
	}
	for _, p := range selection.AllPADStatuses() {
		p := p
		chk := widget.NewCheck(p.String(), func(on bool) { state.setPAD(p, on) })
		state.padChecks[p] = chk
		padBox = append(padBox, chk)
	}
	for _, d := range selection.AllDiabetesStatuses() {
		d := d
		chk := widget.NewCheck(d.String(), func(on bool) { state.setDiabetes(d, on) })
		state.diabetesChecks[d] = chk
		dmBox = append(dmBox, chk)
	}
	var winW float32
	if state.window != nil && state.window.Canvas() != nil {
		winW = state.window.Canvas().Size().Width
	}
	options := container.NewGridWithColumns(uihelpers.ComputeOptionColumns(winW),
		widget.NewCard("LLC", "", container.NewVBox(llcBox...)),
		widget.NewCard("PAD", "", container.NewVBox(padBox...)),
		widget.NewCard("Diabetes", "", container.NewVBox(dmBox...)),
	)

	state.summary = widget.NewRichTextFromMarkdown(charts.SummaryMarkdown(state.snapshot))
	state.summary.Wrapping = fyne.TextWrapWord
	state.rowsLabel = widget.NewLabel("")
	state.fileLabel = widget.NewLabel(uihelpers.TruncatePath(state.filePath, 60))

	cw, ch := chartSize(state)
	cells := make([]fyne.CanvasObject, 0, len(state.chartImgs))
	for i := range state.chartImgs {
		img := canvas.NewImageFromImage(charts.Blank(cw, ch))
		img.FillMode = canvas.ImageFillContain
		img.SetMinSize(fyne.NewSize(float32(cw), float32(ch)))
		state.chartImgs[i] = img
		cells = append(cells, img)
	}
	grid := container.NewGridWithColumns(2, cells...)

	summaryPanel := container.NewVBox(state.summary, widget.NewSeparator(), state.rowsLabel)
	results := widget.NewCard("Results", "", container.NewBorder(nil, nil, summaryPanel, nil, container.NewScroll(grid)))
	status := container.NewHBox(widget.NewLabel("File:"), state.fileLabel)
	return container.NewBorder(options, status, nil, nil, results)
}

// buildMenus wires the File and Presets menus plus keyboard shortcuts.
func buildMenus(state *uiState) {
	if state == nil || state.window == nil {
		return
	}
	var exports []*fyne.MenuItem
	for i, hz := range charts.AllHorizons() {
		i, hz := i, hz
		exports = append(exports, fyne.NewMenuItem("Export "+hz.Title()+"…", func() {
			exportChartPNG(state, state.chartImgs[i], hz.FileName())
		}))
	}
	fileItems := []*fyne.MenuItem{
		fyne.NewMenuItem("Open…", func() { openFileDialog(state) }),
		fyne.NewMenuItem("Reload", func() { reload(state) }),
		fyne.NewMenuItemSeparator(),
	}
	fileItems = append(fileItems, exports...)
	fileItems = append(fileItems,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { state.window.Close() }),
	)
	fileMenu := fyne.NewMenu("File", fileItems...)

	var presetItems []*fyne.MenuItem
	for _, name := range state.presets.Names() {
		name := name
		presetItems = append(presetItems, fyne.NewMenuItem(name, func() {
			if err := state.applyPreset(name); err != nil {
				dialog.ShowError(err, state.window)
			}
		}))
	}
	if len(presetItems) > 0 {
		presetItems = append(presetItems, fyne.NewMenuItemSeparator())
	}
	presetItems = append(presetItems,
		fyne.NewMenuItem("Load Presets File…", func() { openPresetsDialog(state) }),
		fyne.NewMenuItem("Clear Selection", func() { state.applySelection(selection.Selection{}) }),
	)
	presetMenu := fyne.NewMenu("Presets", presetItems...)
	state.window.SetMainMenu(fyne.NewMainMenu(fileMenu, presetMenu))

	canv := state.window.Canvas()
	if canv != nil {
		for _, mod := range []fyne.KeyModifier{fyne.KeyModifierSuper, fyne.KeyModifierControl} {
			canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyO, Modifier: mod}, func(fyne.Shortcut) { openFileDialog(state) })
			canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyR, Modifier: mod}, func(fyne.Shortcut) { reload(state) })
			canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyW, Modifier: mod}, func(fyne.Shortcut) { state.window.Close() })
		}
	}
}

// watchResize redraws the charts when the window width changes so they scale with it.
func watchResize(state *uiState) {
	w := state.window
	if w.Canvas() == nil {
		return
	}
	prevW := int(w.Canvas().Size().Width)
	done := make(chan struct{})
	w.SetOnClosed(func() { close(done) })
	go func() {
		t := time.NewTicker(300 * time.Millisecond)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				c := w.Canvas()
				if c == nil {
					continue
				}
				curW := int(c.Size().Width)
				if curW != prevW {
					prevW = curW
					fyne.Do(func() { redrawCharts(state) })
				}
			}
		}
	}()
}

func openFileDialog(state *uiState) {
	d := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil || rc == nil {
			return
		}
		path := rc.URI().Path()
		rc.Close()
		loadWorkbook(state, path)
	}, state.window)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".xlsx"}))
	d.Show()
}

func openPresetsDialog(state *uiState) {
	d := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil || rc == nil {
			return
		}
		path := rc.URI().Path()
		rc.Close()
		f, err := preset.Load(path)
		if err != nil {
			dialog.ShowError(err, state.window)
			return
		}
		state.presets = f
		state.presetsPath = path
		savePrefs(state)
		buildMenus(state)
		applog.Infof("[viewer] loaded %d presets from %s", len(f.Presets), path)
	}, state.window)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".yaml", ".yml"}))
	d.Show()
}

func reload(state *uiState) { loadWorkbook(state, state.filePath) }

// loadWorkbook replaces the table. Unlike startup, a failure here keeps the current table.
func loadWorkbook(state *uiState, path string) {
	tbl, err := dataset.Load(path)
	if err != nil {
		applog.Errorf("[viewer] %v", err)
		if state.window != nil {
			dialog.ShowError(err, state.window)
		}
		return
	}
	state.setTable(tbl)
	savePrefs(state)
}

func exportChartPNG(state *uiState, img *canvas.Image, defaultName string) {
	if img == nil || img.Image == nil {
		dialog.ShowInformation("Export", "No chart to export.", state.window)
		return
	}
	src := img.Image
	fs := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil || wc == nil {
			return
		}
		defer wc.Close()
		if err := encodePNG(wc, src); err != nil {
			dialog.ShowError(err, state.window)
		}
	}, state.window)
	fs.SetFileName(defaultName)
	fs.Show()
}

func encodePNG(w fyne.URIWriteCloser, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("export %s: %w", w.URI().Name(), err)
	}
	return nil
}

// loadPrefs returns the workbook and presets paths to open: a flag given on the command line
// wins, otherwise the path remembered by savePrefs, otherwise the flag default.
func loadPrefs(prefs fyne.Preferences, file string, fileSet bool, presets string, presetsSet bool) (string, string) {
	if prefs == nil {
		return file, presets
	}
	if !fileSet {
		if f := prefs.StringWithFallback("lastFile", file); f != "" {
			file = f
		}
	}
	if !presetsSet {
		presets = prefs.StringWithFallback("presetsPath", presets)
	}
	return file, presets
}

// savePrefs remembers the workbook and presets paths for the next run. The selection is not
// stored: every run starts with nothing checked.
func savePrefs(state *uiState) {
	if state == nil || state.app == nil {
		return
	}
	prefs := state.app.Preferences()
	prefs.SetString("lastFile", state.filePath)
	prefs.SetString("presetsPath", state.presetsPath)
}
