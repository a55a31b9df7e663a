package charts

import (
	"fmt"
	"strings"

	"github.com/jennifer-xuyi/llp-tools/src/analysis"
)

type summaryLine struct {
	label string
	value func(analysis.Snapshot) float64
	prec  int
}

var (
	ipdsLines = []summaryLine{
		{"Discharges & Day Surgeries", func(s analysis.Snapshot) float64 { return s.DischargesAndDS }, 0},
		{"ALOS", func(s analysis.Snapshot) float64 { return s.ALOS }, 0},
		{"Unique Patients", func(s analysis.Snapshot) float64 { return s.UniquePatientsIPDS }, 0},
		{"Discharges or Day Surgeries per Patient", func(s analysis.Snapshot) float64 { return s.DischargesAndDSPerPat }, 1},
	}
	edLines = []summaryLine{
		{"ED Visits", func(s analysis.Snapshot) float64 { return s.EDVisits }, 0},
		{"Unique ED Patients", func(s analysis.Snapshot) float64 { return s.UniquePatientsED }, 0},
		{"ED Visits per Patient", func(s analysis.Snapshot) float64 { return s.EDVisitsPerPat }, 1},
	}
)

func (l summaryLine) format(s analysis.Snapshot) string {
	return fmt.Sprintf("%.*f", l.prec, l.value(s))
}

// Summary renders the summary panel as plain text.
func Summary(s analysis.Snapshot) string {
	var b strings.Builder
	b.WriteString("Inpatient & Day Surgery\n")
	for _, l := range ipdsLines {
		fmt.Fprintf(&b, "  %s: %s\n", l.label, l.format(s))
	}
	b.WriteString("\nED\n")
	for _, l := range edLines {
		fmt.Fprintf(&b, "  %s: %s\n", l.label, l.format(s))
	}
	return b.String()
}

// SummaryMarkdown renders the summary panel for a rich-text widget.
func SummaryMarkdown(s analysis.Snapshot) string {
	var b strings.Builder
	b.WriteString("*Inpatient & Day Surgery*\n\n")
	for _, l := range ipdsLines {
		fmt.Fprintf(&b, "%s: **%s**\n\n", l.label, l.format(s))
	}
	b.WriteString("---\n\n*ED*\n\n")
	for _, l := range edLines {
		fmt.Fprintf(&b, "%s: **%s**\n\n", l.label, l.format(s))
	}
	return b.String()
}

// MetricsTable lists every metric, one per line, ratios as percentages.
func MetricsTable(s analysis.Snapshot) string {
	var b strings.Builder
	for _, m := range s.Metrics() {
		fmt.Fprintf(&b, "%-28s %s\n", m.Name, formatMetric(m))
	}
	return b.String()
}

func formatMetric(m analysis.Metric) string {
	switch m.Name {
	case "discharges_and_ds", "unique_patients_ip_ds", "ed_v", "unique_patients_ed", "alos":
		return fmt.Sprintf("%.0f", m.Value)
	case "discharges_and_ds_per_pat", "ed_visits_per_pat":
		return fmt.Sprintf("%.1f", m.Value)
	default:
		return fmt.Sprintf("%.4f (%s)", m.Value, Percent(m.Value))
	}
}
