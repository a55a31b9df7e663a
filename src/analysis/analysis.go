// Package analysis filters the source table by a selection and aggregates the matching rows
// into a Snapshot of summary ratios.
//
// Aggregate is a pure function of (table, selection); the viewer owns the only mutable state.
package analysis

import (
	"github.com/jennifer-xuyi/llp-tools/src/dataset"
	"github.com/jennifer-xuyi/llp-tools/src/selection"
)

// Outcomes holds the three procedure rates for one horizon and care setting.
type Outcomes struct {
	Major float64 `json:"major"`
	Minor float64 `json:"minor"`
	LPR   float64 `json:"lpr"`
}

// Snapshot is the full set of derived statistics for one selection. It is rebuilt from scratch
// on every selection change; a selection matching no rows yields the zero Snapshot.
type Snapshot struct {
	Rows int `json:"rows"`

	// Inpatient & day surgery
	DischargesAndDS       float64  `json:"discharges_and_ds"`
	ALOS                  float64  `json:"alos"`
	DischargesAndDSPerPat float64  `json:"discharges_and_ds_per_pat"`
	UniquePatientsIPDS    float64  `json:"unique_patients_ip_ds"`
	During                Outcomes `json:"during"`
	IPDS1Yr               Outcomes `json:"ip_ds_1yr"`
	IPDS3Yr               Outcomes `json:"ip_ds_3yr"`
	IPDS5Yr               Outcomes `json:"ip_ds_5yr"`

	// Emergency department
	EDVisits         float64  `json:"ed_v"`
	UniquePatientsED float64  `json:"unique_patients_ed"`
	EDVisitsPerPat   float64  `json:"ed_visits_per_pat"`
	ED1Yr            Outcomes `json:"ed_1yr"`
	ED3Yr            Outcomes `json:"ed_3yr"`
	ED5Yr            Outcomes `json:"ed_5yr"`
}

// Filter returns the rows matching sel, in table order.
// A dimension with nothing checked does not constrain; nothing checked at all matches nothing.
func Filter(t *dataset.Table, sel selection.Selection) []dataset.Row {
	if sel.Empty() {
		return nil
	}
	var out []dataset.Row
	t.Rows(func(r dataset.Row) {
		if sel.Matches(r.LLC, r.PAD, r.Diabetes) {
			out = append(out, r)
		}
	})
	return out
}

// Aggregate filters t by sel and summarizes the result.
func Aggregate(t *dataset.Table, sel selection.Selection) Snapshot {
	return Summarize(Filter(t, sel))
}

// sums accumulates every counter column over a row set.
type sums struct {
	discharges, days, dischargesAndDS, edVisits float64
	uniqueIPDS, uniqueED                        float64
	uniqueRows                                  int

	during              [3]float64
	ipds1, ipds3, ipds5 [3]float64
	ed1, ed3, ed5       [3]float64
}

func (s *sums) add(r dataset.Row) {
	s.discharges += r.Discharges
	s.days += r.Days
	s.dischargesAndDS += r.DischargesAndDS
	s.edVisits += r.EDVisits
	// unique-patient counts only add up across rows that count each patient once
	if r.UniqueHIN() {
		s.uniqueRows++
		s.uniqueIPDS += r.UniquePatientsIPDS
		s.uniqueED += r.UniquePatientsED
	}
	addTriple(&s.during, r.MajorDuring, r.MinorDuring, r.LPRDuring)
	addTriple(&s.ipds1, r.Major1Yr, r.Minor1Yr, r.LPR1Yr)
	addTriple(&s.ipds3, r.Major3Yr, r.Minor3Yr, r.LPR3Yr)
	addTriple(&s.ipds5, r.Major5Yr, r.Minor5Yr, r.LPR5Yr)
	addTriple(&s.ed1, r.MajorAmp1Yr, r.MinorAmp1Yr, r.LowerPR1Yr)
	addTriple(&s.ed3, r.MajorAmp3Yr, r.MinorAmp3Yr, r.LowerPR3Yr)
	addTriple(&s.ed5, r.MajorAmp5Yr, r.MinorAmp5Yr, r.LowerPR5Yr)
}

func addTriple(dst *[3]float64, major, minor, lpr float64) {
	dst[0] += major
	dst[1] += minor
	dst[2] += lpr
}

// ratio divides num by den, returning 0 unless den is strictly positive.
func ratio(num, den float64) float64 {
	if den > 0 {
		return num / den
	}
	return 0
}

func rates(t [3]float64, den float64) Outcomes {
	if den <= 0 {
		return Outcomes{}
	}
	return Outcomes{Major: t[0] / den, Minor: t[1] / den, LPR: t[2] / den}
}

// Summarize aggregates an already filtered row set.
func Summarize(rows []dataset.Row) Snapshot {
	if len(rows) == 0 {
		return Snapshot{}
	}
	var s sums
	for _, r := range rows {
		s.add(r)
	}
	snap := Snapshot{
		Rows:            len(rows),
		DischargesAndDS: s.dischargesAndDS,
		ALOS:            ratio(s.days, s.discharges),
		EDVisits:        s.edVisits,
	}
	if s.uniqueRows > 0 {
		snap.UniquePatientsIPDS = s.uniqueIPDS
		snap.UniquePatientsED = s.uniqueED
	}
	snap.DischargesAndDSPerPat = ratio(s.dischargesAndDS, snap.UniquePatientsIPDS)
	snap.EDVisitsPerPat = ratio(s.edVisits, snap.UniquePatientsED)

	snap.During = rates(s.during, s.dischargesAndDS)
	snap.IPDS1Yr = rates(s.ipds1, s.dischargesAndDS)
	snap.IPDS3Yr = rates(s.ipds3, s.dischargesAndDS)
	snap.IPDS5Yr = rates(s.ipds5, s.dischargesAndDS)

	snap.ED1Yr = rates(s.ed1, s.edVisits)
	snap.ED3Yr = rates(s.ed3, s.edVisits)
	snap.ED5Yr = rates(s.ed5, s.edVisits)
	return snap
}
