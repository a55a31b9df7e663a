// Package charts renders a Snapshot as the dashboard's four procedure-probability bar charts.
package charts

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/jennifer-xuyi/llp-tools/src/analysis"
)

// Horizon is the time window of one chart.
type Horizon int

const (
	During Horizon = iota
	OneYear
	ThreeYears
	FiveYears
)

// AllHorizons returns the charts in dashboard order (top-left to bottom-right).
func AllHorizons() []Horizon { return []Horizon{During, OneYear, ThreeYears, FiveYears} }

// Title is the chart heading.
func (h Horizon) Title() string {
	switch h {
	case OneYear:
		return "Probability of Procedure Within 1YR"
	case ThreeYears:
		return "Probability of Procedure Within 3YRS"
	case FiveYears:
		return "Probability of Procedure Within 5YRS"
	default:
		return "Probability of Procedure During Discharge"
	}
}

// FileName is the PNG name used by exports.
func (h Horizon) FileName() string {
	switch h {
	case OneYear:
		return "within_1yr.png"
	case ThreeYears:
		return "within_3yr.png"
	case FiveYears:
		return "within_5yr.png"
	default:
		return "during.png"
	}
}

// Grouped reports whether the chart compares IP & day surgery against ED.
func (h Horizon) Grouped() bool { return h != During }

// Outcomes returns the inpatient/day-surgery rates and, for grouped charts, the ED rates.
func (h Horizon) Outcomes(s analysis.Snapshot) (ipds analysis.Outcomes, ed analysis.Outcomes) {
	switch h {
	case OneYear:
		return s.IPDS1Yr, s.ED1Yr
	case ThreeYears:
		return s.IPDS3Yr, s.ED3Yr
	case FiveYears:
		return s.IPDS5Yr, s.ED5Yr
	default:
		return s.During, analysis.Outcomes{}
	}
}

// colors returns the IP & DS and ED bar colors of a horizon.
func (h Horizon) colors() (drawing.Color, drawing.Color) {
	switch h {
	case OneYear:
		return drawing.ColorFromHex("3182bd"), drawing.ColorFromHex("b22222")
	case ThreeYears:
		return drawing.ColorFromHex("9ecae1"), drawing.ColorFromHex("feb24c")
	case FiveYears:
		return drawing.ColorFromHex("deebf7"), drawing.ColorFromHex("ffeda0")
	default:
		return drawing.ColorFromHex("8dd3c7"), drawing.ColorFromHex("8dd3c7")
	}
}

var procedures = []string{"Major Amputation", "Minor Amputation", "Lower Peripheral Revascularization"}

const (
	SettingIPDS = "IP & Day Surgery"
	SettingED   = "ED"
)

// Bar is one rendered bar.
type Bar struct {
	Procedure string
	Setting   string
	Value     float64
}

// Bars lists the bars of a horizon chart in drawing order: for grouped charts each procedure
// contributes an IP & DS bar followed by an ED bar.
func (h Horizon) Bars(s analysis.Snapshot) []Bar {
	ipds, ed := h.Outcomes(s)
	ipv := []float64{ipds.Major, ipds.Minor, ipds.LPR}
	edv := []float64{ed.Major, ed.Minor, ed.LPR}
	var out []Bar
	for i, p := range procedures {
		out = append(out, Bar{Procedure: p, Setting: SettingIPDS, Value: ipv[i]})
		if h.Grouped() {
			out = append(out, Bar{Procedure: p, Setting: SettingED, Value: edv[i]})
		}
	}
	return out
}

// Percent formats a probability as a whole percentage ("13%").
func Percent(v float64) string { return fmt.Sprintf("%.0f%%", v*100) }

func barLabel(b Bar, grouped bool) string {
	if !grouped {
		return fmt.Sprintf("%s %s", b.Procedure, Percent(b.Value))
	}
	short := b.Procedure
	switch b.Procedure {
	case procedures[0]:
		short = "Major"
	case procedures[1]:
		short = "Minor"
	case procedures[2]:
		short = "LPR"
	}
	return fmt.Sprintf("%s %s %s", short, b.Setting, Percent(b.Value))
}

func percentTicks() []chart.Tick {
	ticks := make([]chart.Tick, 0, 6)
	for i := 0; i <= 5; i++ {
		v := float64(i) * 0.2
		ticks = append(ticks, chart.Tick{Value: v, Label: Percent(v)})
	}
	return ticks
}

// RenderHorizon draws one chart at w x h pixels. On a render failure it returns a blank
// image together with the error so callers can log and still show something.
func RenderHorizon(hz Horizon, s analysis.Snapshot, w, h int) (image.Image, error) {
	ipCol, edCol := hz.colors()
	bars := hz.Bars(s)
	values := make([]chart.Value, len(bars))
	for i, b := range bars {
		col := ipCol
		if b.Setting == SettingED {
			col = edCol
		}
		values[i] = chart.Value{
			Label: barLabel(b, hz.Grouped()),
			Value: b.Value,
			Style: chart.Style{FillColor: col, StrokeColor: col.WithAlpha(255), StrokeWidth: 1},
		}
	}
	barWidth := (w - 120) / (len(values) * 2)
	if barWidth < 12 {
		barWidth = 12
	}
	bc := chart.BarChart{
		Title:      hz.Title(),
		Width:      w,
		Height:     h,
		BarWidth:   barWidth,
		BarSpacing: barWidth,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		YAxis: chart.YAxis{
			Name:  "Probability of Procedure",
			Range: &chart.ContinuousRange{Min: 0, Max: 1},
			Ticks: percentTicks(),
		},
		Bars: values,
	}
	var buf bytes.Buffer
	if err := bc.Render(chart.PNG, &buf); err != nil {
		return blank(w, h), fmt.Errorf("render %s: %w", hz.FileName(), err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return blank(w, h), fmt.Errorf("decode %s: %w", hz.FileName(), err)
	}
	if hz.Grouped() {
		img = drawLegend(img, []legendEntry{{SettingIPDS, ipCol}, {SettingED, edCol}})
	}
	if s.Rows == 0 {
		img = drawHint(img, "No rows match the current selection. Check at least one option.")
	}
	return img, nil
}

// RenderAll draws the four charts in dashboard order. The first error is returned; every
// slot still holds an image.
func RenderAll(s analysis.Snapshot, w, h int) ([]image.Image, error) {
	var firstErr error
	out := make([]image.Image, 0, 4)
	for _, hz := range AllHorizons() {
		img, err := RenderHorizon(hz, s, w, h)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		out = append(out, img)
	}
	return out, firstErr
}

// WritePNGs renders the four charts into dir and returns the written paths.
func WritePNGs(dir string, s analysis.Snapshot, w, h int) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create out dir: %w", err)
	}
	var paths []string
	for _, hz := range AllHorizons() {
		img, err := RenderHorizon(hz, s, w, h)
		if err != nil {
			return paths, err
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return paths, fmt.Errorf("png encode %s: %w", hz.FileName(), err)
		}
		p := filepath.Join(dir, hz.FileName())
		if err := os.WriteFile(p, buf.Bytes(), 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", p, err)
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// Blank returns a white placeholder image.
func Blank(w, h int) image.Image { return blank(w, h) }

func blank(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}
	return img
}
