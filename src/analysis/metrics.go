package analysis

// Metric is one named value of a Snapshot.
type Metric struct {
	Name  string
	Value float64
}

// metricNames lists every snapshot metric in display order.
var metricNames = []string{
	"discharges_and_ds", "alos", "discharges_and_ds_per_pat", "unique_patients_ip_ds",
	"major_during", "minor_during", "lpr_during",
	"major_1yr", "minor_1yr", "lpr_1yr",
	"major_3yr", "minor_3yr", "lpr_3yr",
	"major_5yr", "minor_5yr", "lpr_5yr",
	"ed_v", "unique_patients_ed", "ed_visits_per_pat",
	"major_amp_1yr", "minor_amp_1yr", "lower_pr_1yr",
	"major_amp_3yr", "minor_amp_3yr", "lower_pr_3yr",
	"major_amp_5yr", "minor_amp_5yr", "lower_pr_5yr",
}

// MetricNames returns the metric names in display order.
func MetricNames() []string {
	out := make([]string, len(metricNames))
	copy(out, metricNames)
	return out
}

func (s Snapshot) values() []float64 {
	return []float64{
		s.DischargesAndDS, s.ALOS, s.DischargesAndDSPerPat, s.UniquePatientsIPDS,
		s.During.Major, s.During.Minor, s.During.LPR,
		s.IPDS1Yr.Major, s.IPDS1Yr.Minor, s.IPDS1Yr.LPR,
		s.IPDS3Yr.Major, s.IPDS3Yr.Minor, s.IPDS3Yr.LPR,
		s.IPDS5Yr.Major, s.IPDS5Yr.Minor, s.IPDS5Yr.LPR,
		s.EDVisits, s.UniquePatientsED, s.EDVisitsPerPat,
		s.ED1Yr.Major, s.ED1Yr.Minor, s.ED1Yr.LPR,
		s.ED3Yr.Major, s.ED3Yr.Minor, s.ED3Yr.LPR,
		s.ED5Yr.Major, s.ED5Yr.Minor, s.ED5Yr.LPR,
	}
}

// Metrics returns every metric of the snapshot, always the full set, in display order.
func (s Snapshot) Metrics() []Metric {
	vals := s.values()
	out := make([]Metric, len(metricNames))
	for i, n := range metricNames {
		out[i] = Metric{Name: n, Value: vals[i]}
	}
	return out
}

// Map returns the metrics keyed by name.
func (s Snapshot) Map() map[string]float64 {
	vals := s.values()
	out := make(map[string]float64, len(metricNames))
	for i, n := range metricNames {
		out[n] = vals[i]
	}
	return out
}

// Get returns the named metric.
func (s Snapshot) Get(name string) (float64, bool) {
	for i, n := range metricNames {
		if n == name {
			return s.values()[i], true
		}
	}
	return 0, false
}
