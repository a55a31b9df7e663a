// Package dataset loads the pre-computed LLC x PAD x Diabetes statistics workbook.
//
// The workbook is read once; the resulting Table is never mutated.
package dataset

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jennifer-xuyi/llp-tools/src/applog"
)

// DefaultPath is the workbook looked up relative to the working directory.
const DefaultPath = "llc_pad_diabetes_w_amps_10yrs.xlsx"

// SheetName is the sheet holding the source rows.
const SheetName = "srcdata"

// UniqueHINFlag marks rows whose unique-patient counters are per-patient and safe to sum.
const UniqueHINFlag = "Unique HIN"

// ErrMissingColumn is returned when a required column is absent from the header row.
var ErrMissingColumn = errors.New("missing required column")

// Row is one (LLC x PAD x Diabetes x HIN flag) record. Counters are float64 as stored in the sheet.
type Row struct {
	LLC      string
	PAD      string
	Diabetes string
	HINFlag  string

	// Inpatient & day surgery
	Discharges         float64
	Days               float64
	DischargesAndDS    float64
	UniquePatientsIPDS float64

	// Emergency department
	EDVisits         float64
	UniquePatientsED float64

	// Procedures during the discharge episode
	MajorDuring float64
	MinorDuring float64
	LPRDuring   float64

	// Procedures after an inpatient/day-surgery episode
	Major1Yr, Minor1Yr, LPR1Yr float64
	Major3Yr, Minor3Yr, LPR3Yr float64
	Major5Yr, Minor5Yr, LPR5Yr float64

	// Procedures after an ED visit
	MajorAmp1Yr, MinorAmp1Yr, LowerPR1Yr float64
	MajorAmp3Yr, MinorAmp3Yr, LowerPR3Yr float64
	MajorAmp5Yr, MinorAmp5Yr, LowerPR5Yr float64
}

// UniqueHIN reports whether the row carries per-patient unique counts.
func (r Row) UniqueHIN() bool { return strings.TrimSpace(r.HINFlag) == UniqueHINFlag }

// Table is the immutable source table.
type Table struct {
	Path string
	rows []Row
}

// NewTable wraps rows in a Table. The slice is copied.
func NewTable(rows []Row) *Table {
	cp := make([]Row, len(rows))
	copy(cp, rows)
	return &Table{rows: cp}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Rows calls fn for every row in sheet order.
func (t *Table) Rows(fn func(Row)) {
	if t == nil {
		return
	}
	for _, r := range t.rows {
		fn(r)
	}
}

// Slice returns a copy of all rows.
func (t *Table) Slice() []Row {
	if t == nil {
		return nil
	}
	out := make([]Row, len(t.rows))
	copy(out, t.rows)
	return out
}

// column binds a header name to the Row field it fills.
type column struct {
	name  string
	text  func(*Row) *string
	value func(*Row) *float64
}

func textCol(name string, f func(*Row) *string) column { return column{name: name, text: f} }
func numCol(name string, f func(*Row) *float64) column { return column{name: name, value: f} }

var columns = []column{
	textCol("psg_llc", func(r *Row) *string { return &r.LLC }),
	textCol("psg_pad", func(r *Row) *string { return &r.PAD }),
	textCol("psg_diabetes", func(r *Row) *string { return &r.Diabetes }),
	textCol("hin_flag", func(r *Row) *string { return &r.HINFlag }),
	numCol("discharges", func(r *Row) *float64 { return &r.Discharges }),
	numCol("days", func(r *Row) *float64 { return &r.Days }),
	numCol("discharges_and_ds", func(r *Row) *float64 { return &r.DischargesAndDS }),
	numCol("unique_patients_ip_ds", func(r *Row) *float64 { return &r.UniquePatientsIPDS }),
	numCol("ed_v", func(r *Row) *float64 { return &r.EDVisits }),
	numCol("unique_patients_ed", func(r *Row) *float64 { return &r.UniquePatientsED }),
	numCol("major_during", func(r *Row) *float64 { return &r.MajorDuring }),
	numCol("minor_during", func(r *Row) *float64 { return &r.MinorDuring }),
	numCol("lpr_during", func(r *Row) *float64 { return &r.LPRDuring }),
	numCol("major_1yr", func(r *Row) *float64 { return &r.Major1Yr }),
	numCol("minor_1yr", func(r *Row) *float64 { return &r.Minor1Yr }),
	numCol("lpr_1yr", func(r *Row) *float64 { return &r.LPR1Yr }),
	numCol("major_3yr", func(r *Row) *float64 { return &r.Major3Yr }),
	numCol("minor_3yr", func(r *Row) *float64 { return &r.Minor3Yr }),
	numCol("lpr_3yr", func(r *Row) *float64 { return &r.LPR3Yr }),
	numCol("major_5yr", func(r *Row) *float64 { return &r.Major5Yr }),
	numCol("minor_5yr", func(r *Row) *float64 { return &r.Minor5Yr }),
	numCol("lpr_5yr", func(r *Row) *float64 { return &r.LPR5Yr }),
	numCol("major_amp_1yr", func(r *Row) *float64 { return &r.MajorAmp1Yr }),
	numCol("minor_amp_1yr", func(r *Row) *float64 { return &r.MinorAmp1Yr }),
	numCol("lower_pr_1yr", func(r *Row) *float64 { return &r.LowerPR1Yr }),
	numCol("major_amp_3yr", func(r *Row) *float64 { return &r.MajorAmp3Yr }),
	numCol("minor_amp_3yr", func(r *Row) *float64 { return &r.MinorAmp3Yr }),
	numCol("lower_pr_3yr", func(r *Row) *float64 { return &r.LowerPR3Yr }),
	numCol("major_amp_5yr", func(r *Row) *float64 { return &r.MajorAmp5Yr }),
	numCol("minor_amp_5yr", func(r *Row) *float64 { return &r.MinorAmp5Yr }),
	numCol("lower_pr_5yr", func(r *Row) *float64 { return &r.LowerPR5Yr }),
}

// RequiredColumns returns the header names the loader expects, in canonical order.
func RequiredColumns() []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = c.name
	}
	return out
}

// Load reads the srcdata sheet of the workbook at path.
// A missing file, sheet or required column is an error; callers treat it as fatal.
func Load(path string) (*Table, error) {
	defer applog.TimeTrack(time.Now(), "load "+path)
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	if idx, err := f.GetSheetIndex(SheetName); err != nil || idx < 0 {
		return nil, fmt.Errorf("workbook %s: sheet %q not found", path, SheetName)
	}
	raw, err := f.GetRows(SheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", SheetName, err)
	}
	t, err := parseRows(raw)
	if err != nil {
		return nil, fmt.Errorf("workbook %s: %w", path, err)
	}
	t.Path = path
	applog.Infof("loaded %d rows from %s (sheet %s)", t.Len(), path, SheetName)
	return t, nil
}

// parseRows converts raw sheet cells (header first) into a Table.
func parseRows(raw [][]string) (*Table, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: header row is empty", ErrMissingColumn)
	}
	index := map[string]int{}
	for i, h := range raw[0] {
		h = strings.TrimSpace(h)
		if _, dup := index[h]; !dup && h != "" {
			index[h] = i
		}
	}
	var missing []string
	for _, c := range columns {
		if _, ok := index[c.name]; !ok {
			missing = append(missing, c.name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}

	rows := make([]Row, 0, len(raw)-1)
	for ri, cells := range raw[1:] {
		if blankRow(cells) {
			continue
		}
		var r Row
		for _, c := range columns {
			ci := index[c.name]
			cell := ""
			if ci < len(cells) {
				cell = strings.TrimSpace(cells[ci])
			}
			if c.text != nil {
				*c.text(&r) = cell
				continue
			}
			if cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				name, _ := excelize.CoordinatesToCellName(ci+1, ri+2)
				return nil, fmt.Errorf("cell %s (%s): %q is not numeric", name, c.name, cell)
			}
			// every column is a count or a sum of counts
			if v < 0 {
				name, _ := excelize.CoordinatesToCellName(ci+1, ri+2)
				return nil, fmt.Errorf("cell %s (%s): %q is negative", name, c.name, cell)
			}
			*c.value(&r) = v
		}
		rows = append(rows, r)
	}
	return &Table{rows: rows}, nil
}

func blankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
