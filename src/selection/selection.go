// Package selection holds the three checkbox dimensions used to filter the source table.
//
// Each dimension is a small enumerated type whose String form is the exact label used in the
// spreadsheet. A Selection is a comparable value: copying it snapshots the checkbox state.
package selection

import (
	"fmt"
	"strings"
)

// Category is the limb-level complication (LLC) grouping.
type Category int

const (
	Gangrene Category = iota
	OsteomyelitisFoot
	SkinUlcerFoot
	OsteomyelitisLowerLimb
	SkinUlcerLowerLimb
	CellulitisLowerLimb
	CellulitisToe

	NumCategories = int(CellulitisToe) + 1
)

var categoryLabels = [NumCategories]string{
	"1. Gangrene",
	"2. Osteomyelitis, Foot",
	"3. Skin Ulcer, Foot",
	"4. Osteomyelitis, Lower Limb",
	"5. Skin Ulcer, Lower Limb",
	"6. Cellulitis, Lower Limb",
	"7. Cellulitis, Toe",
}

func (c Category) String() string {
	if c < 0 || int(c) >= NumCategories {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryLabels[c]
}

// PADStatus is the peripheral arterial disease grouping.
type PADStatus int

const (
	PAD PADStatus = iota
	WithoutPAD

	NumPADStatuses = int(WithoutPAD) + 1
)

var padLabels = [NumPADStatuses]string{"PAD", "WO PAD"}

func (p PADStatus) String() string {
	if p < 0 || int(p) >= NumPADStatuses {
		return fmt.Sprintf("PADStatus(%d)", int(p))
	}
	return padLabels[p]
}

// DiabetesStatus is the diabetes grouping.
type DiabetesStatus int

const (
	Diabetes DiabetesStatus = iota
	WithoutDiabetes
	WithoutDiabetesGangreneNEC

	NumDiabetesStatuses = int(WithoutDiabetesGangreneNEC) + 1
)

var diabetesLabels = [NumDiabetesStatuses]string{"Diabetes", "WO Diabetes", "WO Diabetes, Gangrene NEC"}

func (d DiabetesStatus) String() string {
	if d < 0 || int(d) >= NumDiabetesStatuses {
		return fmt.Sprintf("DiabetesStatus(%d)", int(d))
	}
	return diabetesLabels[d]
}

// AllCategories returns every category in display order.
func AllCategories() []Category {
	out := make([]Category, NumCategories)
	for i := range out {
		out[i] = Category(i)
	}
	return out
}

// AllPADStatuses returns every PAD status in display order.
func AllPADStatuses() []PADStatus {
	return []PADStatus{PAD, WithoutPAD}
}

// AllDiabetesStatuses returns every diabetes status in display order.
func AllDiabetesStatuses() []DiabetesStatus {
	return []DiabetesStatus{Diabetes, WithoutDiabetes, WithoutDiabetesGangreneNEC}
}

// UnknownLabelError reports a label that is not an option of its dimension.
type UnknownLabelError struct {
	Dimension string
	Label     string
}

func (e *UnknownLabelError) Error() string {
	return fmt.Sprintf("unknown %s option %q", e.Dimension, e.Label)
}

// ParseCategory maps a label to its category. Surrounding whitespace is ignored.
func ParseCategory(label string) (Category, bool) {
	l := strings.TrimSpace(label)
	for i, s := range categoryLabels {
		if s == l {
			return Category(i), true
		}
	}
	return 0, false
}

// ParsePADStatus maps a label to its PAD status.
func ParsePADStatus(label string) (PADStatus, bool) {
	l := strings.TrimSpace(label)
	for i, s := range padLabels {
		if s == l {
			return PADStatus(i), true
		}
	}
	return 0, false
}

// ParseDiabetesStatus maps a label to its diabetes status.
func ParseDiabetesStatus(label string) (DiabetesStatus, bool) {
	l := strings.TrimSpace(label)
	for i, s := range diabetesLabels {
		if s == l {
			return DiabetesStatus(i), true
		}
	}
	return 0, false
}

// Selection is the checked state of every option. The zero value has nothing checked.
type Selection struct {
	categories [NumCategories]bool
	pad        [NumPADStatuses]bool
	diabetes   [NumDiabetesStatuses]bool
}

func (s *Selection) SetCategory(c Category, on bool)       { s.categories[c] = on }
func (s *Selection) SetPAD(p PADStatus, on bool)           { s.pad[p] = on }
func (s *Selection) SetDiabetes(d DiabetesStatus, on bool) { s.diabetes[d] = on }

func (s *Selection) ToggleCategory(c Category)       { s.categories[c] = !s.categories[c] }
func (s *Selection) TogglePAD(p PADStatus)           { s.pad[p] = !s.pad[p] }
func (s *Selection) ToggleDiabetes(d DiabetesStatus) { s.diabetes[d] = !s.diabetes[d] }

func (s Selection) HasCategory(c Category) bool       { return s.categories[c] }
func (s Selection) HasPAD(p PADStatus) bool           { return s.pad[p] }
func (s Selection) HasDiabetes(d DiabetesStatus) bool { return s.diabetes[d] }

// Categories returns the checked category labels in display order.
func (s Selection) Categories() []string { return checked(s.categories[:], categoryLabels[:]) }

// PADStatuses returns the checked PAD labels in display order.
func (s Selection) PADStatuses() []string { return checked(s.pad[:], padLabels[:]) }

// DiabetesStatuses returns the checked diabetes labels in display order.
func (s Selection) DiabetesStatuses() []string { return checked(s.diabetes[:], diabetesLabels[:]) }

func checked(flags []bool, labels []string) []string {
	var out []string
	for i, on := range flags {
		if on {
			out = append(out, labels[i])
		}
	}
	return out
}

func anySet(flags []bool) bool {
	for _, on := range flags {
		if on {
			return true
		}
	}
	return false
}

// Empty reports whether no option of any dimension is checked.
func (s Selection) Empty() bool {
	return !anySet(s.categories[:]) && !anySet(s.pad[:]) && !anySet(s.diabetes[:])
}

// Matches reports whether a row with the given labels passes the selection.
// An unchecked dimension imposes no constraint, except that a fully unchecked
// selection matches nothing.
func (s Selection) Matches(llc, pad, diabetes string) bool {
	if s.Empty() {
		return false
	}
	return dimensionMatches(s.categories[:], categoryLabels[:], llc) &&
		dimensionMatches(s.pad[:], padLabels[:], pad) &&
		dimensionMatches(s.diabetes[:], diabetesLabels[:], diabetes)
}

func dimensionMatches(flags []bool, labels []string, v string) bool {
	if !anySet(flags) {
		return true
	}
	v = strings.TrimSpace(v)
	for i, on := range flags {
		if on && labels[i] == v {
			return true
		}
	}
	return false
}

// String renders the selection as "LLC=[..] PAD=[..] Diabetes=[..]" for logs.
func (s Selection) String() string {
	return fmt.Sprintf("LLC=[%s] PAD=[%s] Diabetes=[%s]",
		strings.Join(s.Categories(), "; "),
		strings.Join(s.PADStatuses(), "; "),
		strings.Join(s.DiabetesStatuses(), "; "))
}

// FromLabels builds a selection from label lists. A category may also be given by its
// 1-based option number ("3" for "3. Skin Ulcer, Foot").
func FromLabels(llc, pad, diabetes []string) (Selection, error) {
	var s Selection
	for _, l := range llc {
		c, ok := ParseCategory(l)
		if !ok {
			c, ok = categoryByNumber(l)
		}
		if !ok {
			return Selection{}, &UnknownLabelError{Dimension: "LLC", Label: l}
		}
		s.SetCategory(c, true)
	}
	for _, l := range pad {
		p, ok := ParsePADStatus(l)
		if !ok {
			return Selection{}, &UnknownLabelError{Dimension: "PAD", Label: l}
		}
		s.SetPAD(p, true)
	}
	for _, l := range diabetes {
		d, ok := ParseDiabetesStatus(l)
		if !ok {
			return Selection{}, &UnknownLabelError{Dimension: "Diabetes", Label: l}
		}
		s.SetDiabetes(d, true)
	}
	return s, nil
}

func categoryByNumber(v string) (Category, bool) {
	v = strings.TrimSpace(v)
	for i, s := range categoryLabels {
		if strings.HasPrefix(s, v+". ") {
			return Category(i), true
		}
	}
	return 0, false
}
