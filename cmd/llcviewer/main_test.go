package main

import (
	"bytes"
	"image"
	_ "image/png" // register PNG decoder
	"os"
	"path/filepath"
	"strings"
	"testing"

	fyne "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/test"

	"github.com/jennifer-xuyi/llp-tools/src/charts"
	"github.com/jennifer-xuyi/llp-tools/src/dataset"
	"github.com/jennifer-xuyi/llp-tools/src/preset"
	"github.com/jennifer-xuyi/llp-tools/src/selection"
)

func testRows() []dataset.Row {
	return []dataset.Row{
		{LLC: "1. Gangrene", PAD: "PAD", Diabetes: "Diabetes", Discharges: 8, Days: 80, DischargesAndDS: 10, MajorDuring: 2, Major1Yr: 3},
		{LLC: "1. Gangrene", PAD: "WO PAD", Diabetes: "Diabetes", HINFlag: dataset.UniqueHINFlag, DischargesAndDS: 5, UniquePatientsIPDS: 4, EDVisits: 20, UniquePatientsED: 10, MajorAmp1Yr: 2},
		{LLC: "3. Skin Ulcer, Foot", PAD: "PAD", Diabetes: "WO Diabetes", DischargesAndDS: 7, MinorDuring: 1},
	}
}

func newTestState(t *testing.T) *uiState {
	t.Helper()
	a := test.NewTempApp(t)
	w := a.NewWindow(windowTitle)
	st := &uiState{app: a, window: w, filePath: "mem.xlsx", table: dataset.NewTable(testRows())}
	w.SetContent(buildUI(st))
	return st
}

func TestEmptySelectionShowsNoRows(t *testing.T) {
	st := newTestState(t)
	st.recompute()
	if st.snapshot.Rows != 0 {
		t.Fatalf("empty selection should match nothing, got %d rows", st.snapshot.Rows)
	}
	if got := st.rowsLabel.Text; got != "0 of 3 rows" {
		t.Fatalf("rows label = %q", got)
	}
}

func TestTapCheckboxRecomputes(t *testing.T) {
	st := newTestState(t)
	st.recompute()

	test.Tap(st.categoryChecks[selection.Gangrene])
	if !st.sel.HasCategory(selection.Gangrene) {
		t.Fatalf("tapping the checkbox should update the selection")
	}
	if st.snapshot.Rows != 2 {
		t.Fatalf("want 2 gangrene rows, got %d", st.snapshot.Rows)
	}
	if st.snapshot.DischargesAndDS != 15 {
		t.Fatalf("discharges_and_ds = %v want 15", st.snapshot.DischargesAndDS)
	}

	test.Tap(st.padChecks[selection.PAD])
	if st.snapshot.Rows != 1 {
		t.Fatalf("gangrene+PAD: want 1 row, got %d", st.snapshot.Rows)
	}
	if !strings.Contains(st.rowsLabel.Text, "1 of 3") {
		t.Fatalf("rows label = %q", st.rowsLabel.Text)
	}
}

func TestToggleRoundTripRestoresSnapshot(t *testing.T) {
	st := newTestState(t)
	st.setCategory(selection.Gangrene, true)
	before := st.snapshot

	st.setDiabetes(selection.WithoutDiabetes, true)
	st.setDiabetes(selection.WithoutDiabetes, false)
	if st.snapshot != before {
		t.Fatalf("on->off should restore the snapshot\nbefore %+v\nafter  %+v", before, st.snapshot)
	}
}

func TestApplySelectionSyncsCheckboxes(t *testing.T) {
	st := newTestState(t)
	var sel selection.Selection
	sel.SetCategory(selection.SkinUlcerFoot, true)
	sel.SetDiabetes(selection.WithoutDiabetes, true)
	st.applySelection(sel)

	if !st.categoryChecks[selection.SkinUlcerFoot].Checked || st.categoryChecks[selection.Gangrene].Checked {
		t.Fatalf("category checkboxes not synced")
	}
	if !st.diabetesChecks[selection.WithoutDiabetes].Checked {
		t.Fatalf("diabetes checkbox not synced")
	}
	if st.sel != sel {
		t.Fatalf("selection changed while syncing: %s", st.sel)
	}
	if st.snapshot.Rows != 1 {
		t.Fatalf("want 1 row, got %d", st.snapshot.Rows)
	}

	st.applySelection(selection.Selection{})
	if st.categoryChecks[selection.SkinUlcerFoot].Checked || st.snapshot.Rows != 0 {
		t.Fatalf("clear should uncheck everything and empty the result")
	}
}

func TestApplyPreset(t *testing.T) {
	st := newTestState(t)
	f, err := preset.Parse([]byte("presets:\n  - name: gangrene\n    llc: [\"1\"]\n"))
	if err != nil {
		t.Fatalf("parse presets: %v", err)
	}
	st.presets = f
	if err := st.applyPreset("gangrene"); err != nil {
		t.Fatalf("applyPreset: %v", err)
	}
	if st.snapshot.Rows != 2 || !st.categoryChecks[selection.Gangrene].Checked {
		t.Fatalf("preset not applied: rows=%d", st.snapshot.Rows)
	}
	if err := st.applyPreset("missing"); err == nil {
		t.Fatalf("expected error for unknown preset")
	}
}

func TestRenderChartsAlwaysFour(t *testing.T) {
	st := &uiState{table: dataset.NewTable(testRows())}
	st.recompute() // no widgets: must not panic
	imgs := renderCharts(st)
	if len(imgs) != 4 {
		t.Fatalf("want 4 charts, got %d", len(imgs))
	}
	wantW, wantH := chartSize(nil)
	for i, img := range imgs {
		if img == nil {
			t.Fatalf("chart %d is nil", i)
		}
		if b := img.Bounds(); b.Dx() != wantW || b.Dy() != wantH {
			t.Fatalf("chart %d size %dx%d want %dx%d", i, b.Dx(), b.Dy(), wantW, wantH)
		}
	}
}

func TestSetTableKeepsSelection(t *testing.T) {
	st := newTestState(t)
	st.setCategory(selection.SkinUlcerFoot, true)
	if st.snapshot.Rows != 1 {
		t.Fatalf("want 1 row, got %d", st.snapshot.Rows)
	}
	tbl := dataset.NewTable(append(testRows(), testRows()[2]))
	tbl.Path = "/tmp/other.xlsx"
	st.setTable(tbl)
	if st.snapshot.Rows != 2 {
		t.Fatalf("after reload want 2 rows, got %d", st.snapshot.Rows)
	}
	if st.fileLabel.Text != "/tmp/other.xlsx" {
		t.Fatalf("file label = %q", st.fileLabel.Text)
	}
}

func TestLoadWorkbookFailureKeepsTable(t *testing.T) {
	st := &uiState{table: dataset.NewTable(testRows())}
	loadWorkbook(st, filepath.Join(t.TempDir(), "missing.xlsx"))
	if st.table.Len() != 3 {
		t.Fatalf("failed load should keep the current table")
	}
}

func TestRunScreenshotsMode(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.xlsx")
	if err := dataset.WriteWorkbook(src, testRows()); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	presets := filepath.Join(dir, "presets.yaml")
	if err := os.WriteFile(presets, []byte("presets:\n  - name: all-pad\n    pad: [PAD]\n"), 0o644); err != nil {
		t.Fatalf("write presets: %v", err)
	}
	out := filepath.Join(dir, "out")
	if err := RunScreenshotsMode(src, presets, "all-pad", out); err != nil {
		t.Fatalf("RunScreenshotsMode: %v", err)
	}
	wantW, _ := chartSize(nil)
	for _, name := range []string{"during.png", "within_1yr.png", "within_3yr.png", "within_5yr.png"} {
		f, err := os.Open(filepath.Join(out, name))
		if err != nil {
			t.Fatalf("open %s: %v", name, err)
		}
		img, _, err := image.Decode(f)
		f.Close()
		if err != nil {
			t.Fatalf("decode %s: %v", name, err)
		}
		if img.Bounds().Dx() != wantW {
			t.Fatalf("%s width %d want %d", name, img.Bounds().Dx(), wantW)
		}
	}
	summary, err := os.ReadFile(filepath.Join(out, "summary.txt"))
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	if !strings.Contains(string(summary), "Rows: 2 of 3") {
		t.Fatalf("unexpected summary:\n%s", summary)
	}

	if err := RunScreenshotsMode(src, "", "all-pad", out); err == nil {
		t.Fatalf("expected error when -preset is given without -presets")
	}
}

func TestPrefsRememberPaths(t *testing.T) {
	a := test.NewTempApp(t)
	prefs := a.Preferences()

	// nothing stored yet: flag defaults win
	file, presets := loadPrefs(prefs, dataset.DefaultPath, false, "", false)
	if file != dataset.DefaultPath || presets != "" {
		t.Fatalf("fresh prefs: got %q, %q", file, presets)
	}

	savePrefs(&uiState{app: a, filePath: "/data/last.xlsx", presetsPath: "/data/presets.yaml"})

	file, presets = loadPrefs(prefs, dataset.DefaultPath, false, "", false)
	if file != "/data/last.xlsx" || presets != "/data/presets.yaml" {
		t.Fatalf("remembered paths not used: got %q, %q", file, presets)
	}

	// explicit flags override what was remembered
	file, presets = loadPrefs(prefs, "/cli/src.xlsx", true, "/cli/p.yaml", true)
	if file != "/cli/src.xlsx" || presets != "/cli/p.yaml" {
		t.Fatalf("explicit flags ignored: got %q, %q", file, presets)
	}
}

func TestLoadWorkbookRemembersPath(t *testing.T) {
	a := test.NewTempApp(t)
	src := filepath.Join(t.TempDir(), "src.xlsx")
	if err := dataset.WriteWorkbook(src, testRows()); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	st := &uiState{app: a, table: dataset.NewTable(nil)}
	loadWorkbook(st, src)
	if st.table.Len() != 3 {
		t.Fatalf("want 3 rows, got %d", st.table.Len())
	}
	if file, _ := loadPrefs(a.Preferences(), dataset.DefaultPath, false, "", false); file != src {
		t.Fatalf("next start would open %q, want %q", file, src)
	}
}

func TestPresetFlagNeedsPresetsFile(t *testing.T) {
	err := checkPresetFlag("gangrene", "")
	if err == nil || !strings.Contains(err.Error(), "needs -presets") {
		t.Fatalf("want a -presets error, got %v", err)
	}
	if err := checkPresetFlag("gangrene", "p.yaml"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := checkPresetFlag("", ""); err != nil {
		t.Fatalf("no preset requested: %v", err)
	}
}

// memWriter is an in-memory export target.
type memWriter struct {
	bytes.Buffer
	uri fyne.URI
}

func (m *memWriter) Close() error  { return nil }
func (m *memWriter) URI() fyne.URI { return m.uri }

func TestEncodePNGWritesDecodableImage(t *testing.T) {
	wc := &memWriter{uri: storage.NewFileURI("/tmp/during.png")}
	if err := encodePNG(wc, charts.Blank(40, 30)); err != nil {
		t.Fatalf("encodePNG: %v", err)
	}
	img, format, err := image.Decode(&wc.Buffer)
	if err != nil || format != "png" {
		t.Fatalf("decode: format=%q err=%v", format, err)
	}
	if b := img.Bounds(); b.Dx() != 40 || b.Dy() != 30 {
		t.Fatalf("size %dx%d want 40x30", b.Dx(), b.Dy())
	}
}
