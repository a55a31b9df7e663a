package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/jennifer-xuyi/llp-tools/src/dataset"
)

func writeSource(t *testing.T) string {
	t.Helper()
	rows := []dataset.Row{
		{LLC: "1. Gangrene", PAD: "PAD", Diabetes: "Diabetes", Discharges: 8, Days: 80, DischargesAndDS: 10, MajorDuring: 2},
		{LLC: "3. Skin Ulcer, Foot", PAD: "WO PAD", Diabetes: "WO Diabetes, Gangrene NEC", HINFlag: dataset.UniqueHINFlag, DischargesAndDS: 5, UniquePatientsIPDS: 5, EDVisits: 20, UniquePatientsED: 10},
	}
	p := filepath.Join(t.TempDir(), "src.xlsx")
	if err := dataset.WriteWorkbook(p, rows); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return p
}

func TestSplitLabels(t *testing.T) {
	cases := []struct {
		in    string
		known func(string) bool
		want  []string
	}{
		{"", isCategory, nil},
		{"1,3", isCategory, []string{"1", "3"}},
		{"1. Gangrene, 3. Skin Ulcer, Foot", isCategory, []string{"1. Gangrene", "3. Skin Ulcer, Foot"}},
		{"WO Diabetes, Gangrene NEC,Diabetes", isDiabetes, []string{"WO Diabetes, Gangrene NEC", "Diabetes"}},
		{"PAD, bogus", isPAD, []string{"PAD", "bogus"}},
	}
	for _, c := range cases {
		if got := splitLabels(c.in, c.known); !reflect.DeepEqual(got, c.want) {
			t.Fatalf("splitLabels(%q) = %q want %q", c.in, got, c.want)
		}
	}
}

func TestRun_TextReport(t *testing.T) {
	src := writeSource(t)
	var out, errb bytes.Buffer
	code := run([]string{"-file", src, "-llc", "1,3"}, &out, &errb)
	if code != exitOK {
		t.Fatalf("exit %d, stderr: %s", code, errb.String())
	}
	s := out.String()
	for _, want := range []string{"Rows: 2 of 2", "Discharges & Day Surgeries: 15", "ALOS: 10", "ED Visits per Patient: 2.0", "major_during"} {
		if !strings.Contains(s, want) {
			t.Fatalf("output missing %q:\n%s", want, s)
		}
	}
}

func TestRun_JSONReport(t *testing.T) {
	src := writeSource(t)
	var out, errb bytes.Buffer
	code := run([]string{"-file", src, "-diabetes", "WO Diabetes, Gangrene NEC", "-format", "json"}, &out, &errb)
	if code != exitOK {
		t.Fatalf("exit %d, stderr: %s", code, errb.String())
	}
	var r report
	if err := json.Unmarshal(out.Bytes(), &r); err != nil {
		t.Fatalf("decode: %v\n%s", err, out.String())
	}
	if r.Snapshot.Rows != 1 || r.TotalRows != 2 {
		t.Fatalf("rows=%d total=%d", r.Snapshot.Rows, r.TotalRows)
	}
	if len(r.Diabetes) != 1 || r.Diabetes[0] != "WO Diabetes, Gangrene NEC" {
		t.Fatalf("diabetes = %q", r.Diabetes)
	}
	if r.Metrics["ed_visits_per_pat"] != 2 {
		t.Fatalf("ed_visits_per_pat = %v", r.Metrics["ed_visits_per_pat"])
	}
	if len(r.Metrics) != 28 {
		t.Fatalf("want 28 metrics, got %d", len(r.Metrics))
	}
}

func TestRun_EmptySelection(t *testing.T) {
	src := writeSource(t)
	var out, errb bytes.Buffer
	if code := run([]string{"-file", src}, &out, &errb); code != exitOK {
		t.Fatalf("exit %d", code)
	}
	if !strings.Contains(out.String(), "Rows: 0 of 2") || !strings.Contains(out.String(), "nothing matches") {
		t.Fatalf("unexpected output:\n%s", out.String())
	}
}

func TestRun_ExitCodes(t *testing.T) {
	src := writeSource(t)
	cases := []struct {
		name string
		args []string
		want int
	}{
		{"unknown label", []string{"-file", src, "-pad", "maybe"}, exitUsage},
		{"unknown format", []string{"-file", src, "-format", "xml"}, exitUsage},
		{"bad flag", []string{"-nope"}, exitUsage},
		{"preset without file", []string{"-file", src, "-preset", "x"}, exitUsage},
		{"missing workbook", []string{"-file", filepath.Join(t.TempDir(), "missing.xlsx"), "-llc", "1"}, exitErr},
	}
	for _, c := range cases {
		var out, errb bytes.Buffer
		if got := run(c.args, &out, &errb); got != c.want {
			t.Fatalf("%s: exit %d want %d (stderr: %s)", c.name, got, c.want, errb.String())
		}
	}
}

func TestRun_PresetAndOutputs(t *testing.T) {
	src := writeSource(t)
	dir := t.TempDir()
	presets := filepath.Join(dir, "presets.yaml")
	if err := os.WriteFile(presets, []byte("presets:\n  - name: pad\n    pad: [PAD]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	pngDir := filepath.Join(dir, "png")
	export := filepath.Join(dir, "filtered.xlsx")
	var out, errb bytes.Buffer
	code := run([]string{"-file", src, "-presets", presets, "-preset", "pad", "-png-dir", pngDir, "-png-width", "600", "-png-height", "400", "-export", export}, &out, &errb)
	if code != exitOK {
		t.Fatalf("exit %d, stderr: %s", code, errb.String())
	}
	for _, name := range []string{"during.png", "within_1yr.png", "within_3yr.png", "within_5yr.png"} {
		if _, err := os.Stat(filepath.Join(pngDir, name)); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}
	tbl, err := dataset.Load(export)
	if err != nil {
		t.Fatalf("load export: %v", err)
	}
	if tbl.Len() != 1 {
		t.Fatalf("export rows = %d want 1", tbl.Len())
	}

	var out2 bytes.Buffer
	if code := run([]string{"-file", src, "-presets", presets, "-preset", "other"}, &out2, &errb); code != exitUsage {
		t.Fatalf("unknown preset: exit %d want %d", code, exitUsage)
	}
}
