package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jennifer-xuyi/llp-tools/src/analysis"
	"github.com/jennifer-xuyi/llp-tools/src/applog"
	"github.com/jennifer-xuyi/llp-tools/src/charts"
	"github.com/jennifer-xuyi/llp-tools/src/dataset"
	"github.com/jennifer-xuyi/llp-tools/src/preset"
	"github.com/jennifer-xuyi/llp-tools/src/selection"
)

const (
	exitOK    = 0
	exitErr   = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type report struct {
	File      string             `json:"file"`
	LLC       []string           `json:"llc"`
	PAD       []string           `json:"pad"`
	Diabetes  []string           `json:"diabetes"`
	TotalRows int                `json:"total_rows"`
	Snapshot  analysis.Snapshot  `json:"snapshot"`
	Metrics   map[string]float64 `json:"metrics"`
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("llcreport", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var file, llc, pad, dm, presetsPath, presetName, format, pngDir, export, logLevel string
	var width, height int
	fs.StringVar(&file, "file", dataset.DefaultPath, "Path to the statistics workbook (sheet srcdata)")
	fs.StringVar(&llc, "llc", "", "Comma-separated LLC labels or option numbers (e.g. 1,3)")
	fs.StringVar(&pad, "pad", "", "Comma-separated PAD labels (PAD, WO PAD)")
	fs.StringVar(&dm, "diabetes", "", "Comma-separated diabetes labels")
	fs.StringVar(&presetsPath, "presets", "", "YAML presets file")
	fs.StringVar(&presetName, "preset", "", "Preset name; combined with -llc/-pad/-diabetes")
	fs.StringVar(&format, "format", "text", "Output format: text|json")
	fs.StringVar(&pngDir, "png-dir", "", "Also write the four charts as PNGs into this directory")
	fs.IntVar(&width, "png-width", 900, "Chart width for -png-dir")
	fs.IntVar(&height, "png-height", 520, "Chart height for -png-dir")
	fs.StringVar(&export, "export", "", "Write the matching rows to this .xlsx file")
	fs.StringVar(&logLevel, "log-level", "warn", "Log level (debug|info|warn|error)")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	applog.SetOutput(stderr)
	if !applog.SetLogLevel(logLevel) {
		fmt.Fprintf(stderr, "unknown -log-level %q\n", logLevel)
		return exitUsage
	}
	if format != "text" && format != "json" {
		fmt.Fprintf(stderr, "unknown -format %q (want text or json)\n", format)
		return exitUsage
	}

	sel, err := buildSelection(llc, pad, dm, presetsPath, presetName)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		var ule *selection.UnknownLabelError
		if errors.As(err, &ule) || errors.Is(err, preset.ErrUnknownPreset) || errors.Is(err, errUsage) {
			return exitUsage
		}
		return exitErr
	}

	start := time.Now()
	tbl, err := dataset.Load(file)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitErr
	}
	rows := analysis.Filter(tbl, sel)
	snap := analysis.Summarize(rows)
	applog.TimeTrack(start, "load+aggregate")
	applog.Infof("[report] %s: %d of %d rows", sel, snap.Rows, tbl.Len())

	if export != "" {
		if err := dataset.WriteWorkbook(export, rows); err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return exitErr
		}
		applog.Infof("[report] wrote %d rows to %s", len(rows), export)
	}
	if pngDir != "" {
		paths, err := charts.WritePNGs(pngDir, snap, width, height)
		if err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return exitErr
		}
		applog.Infof("[report] wrote %d charts to %s", len(paths), pngDir)
	}

	if format == "json" {
		r := report{
			File:      file,
			LLC:       nonNil(sel.Categories()),
			PAD:       nonNil(sel.PADStatuses()),
			Diabetes:  nonNil(sel.DiabetesStatuses()),
			TotalRows: tbl.Len(),
			Snapshot:  snap,
			Metrics:   snap.Map(),
		}
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(r); err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return exitErr
		}
		return exitOK
	}

	fmt.Fprintf(stdout, "File: %s\n", file)
	fmt.Fprintf(stdout, "Selection: %s\n", sel)
	fmt.Fprintf(stdout, "Rows: %d of %d\n\n", snap.Rows, tbl.Len())
	if sel.Empty() {
		fmt.Fprintln(stdout, "No options selected; nothing matches.")
		fmt.Fprintln(stdout)
	}
	fmt.Fprint(stdout, charts.Summary(snap))
	fmt.Fprintln(stdout)
	fmt.Fprint(stdout, charts.MetricsTable(snap))
	return exitOK
}

var errUsage = errors.New("usage")

// buildSelection merges the preset (if any) with the label flags.
func buildSelection(llc, pad, dm, presetsPath, presetName string) (selection.Selection, error) {
	var sel selection.Selection
	if presetName != "" {
		if presetsPath == "" {
			return sel, fmt.Errorf("%w: -preset needs -presets", errUsage)
		}
		f, err := preset.Load(presetsPath)
		if err != nil {
			return sel, err
		}
		if sel, err = f.Lookup(presetName); err != nil {
			return sel, err
		}
	}
	extra, err := selection.FromLabels(
		splitLabels(llc, isCategory),
		splitLabels(pad, isPAD),
		splitLabels(dm, isDiabetes),
	)
	if err != nil {
		return selection.Selection{}, err
	}
	for _, c := range selection.AllCategories() {
		if extra.HasCategory(c) {
			sel.SetCategory(c, true)
		}
	}
	for _, p := range selection.AllPADStatuses() {
		if extra.HasPAD(p) {
			sel.SetPAD(p, true)
		}
	}
	for _, d := range selection.AllDiabetesStatuses() {
		if extra.HasDiabetes(d) {
			sel.SetDiabetes(d, true)
		}
	}
	return sel, nil
}

func isCategory(s string) bool {
	_, err := selection.FromLabels([]string{s}, nil, nil)
	return err == nil
}

func isPAD(s string) bool {
	_, ok := selection.ParsePADStatus(s)
	return ok
}

func isDiabetes(s string) bool {
	_, ok := selection.ParseDiabetesStatus(s)
	return ok
}

// splitLabels splits a comma-separated flag value. Some labels contain a comma themselves
// ("3. Skin Ulcer, Foot"), so at each position the longest run of parts forming a known label
// wins; an unknown part is kept alone and rejected later.
func splitLabels(v string, known func(string) bool) []string {
	var parts []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	var out []string
	for i := 0; i < len(parts); {
		n := 1
		for j := len(parts); j > i+1; j-- {
			if known(strings.Join(parts[i:j], ", ")) {
				n = j - i
				break
			}
		}
		out = append(out, strings.Join(parts[i:i+n], ", "))
		i += n
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
