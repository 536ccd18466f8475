// Package charts renders the results-page charts to PNG for export.
package charts

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/jamesruggles/secuscan/internal/model"
	"github.com/jamesruggles/secuscan/internal/report"
)

var (
	// ErrNoData means the report behind a chart is absent or empty.
	ErrNoData       = errors.New("no data for chart")
	ErrUnknownChart = errors.New("unknown chart")
)

const (
	width  = 800
	height = 420
)

var (
	colorPrimary   = hex("#10b981")
	colorSecondary = hex("#3b82f6")
	colorPurple    = hex("#a855f7")
)

var protocolPalette = []string{"#3b82f6", "#10b981", "#f97316", "#a855f7", "#eab308", "#ef4444", "#06b6d4", "#64748b"}

func hex(s string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(s, "#"))
}

// Render draws chartID for r as a PNG image.
func Render(r model.ScanResult, chartID string) ([]byte, error) {
	switch chartID {
	case report.ChartSeverity:
		return severity(r.Vulnerabilities)
	case report.ChartServerHealth:
		return serverHealth(r.ServerHealth)
	case report.ChartLoadTest:
		return loadTest(r.LoadTestResults)
	case report.ChartWebVitals:
		return webVitals(r.PerformanceReport)
	case report.ChartTopology:
		return topology(r.Topology)
	case report.ChartJMeterLatency:
		return jmeterSeries(r.JMeterReport, "Latency (ms)", colorSecondary, func(s model.JMeterSample) float64 { return s.Latency })
	case report.ChartJMeterThroughput:
		return jmeterSeries(r.JMeterReport, "Throughput (req/s)", colorPrimary, func(s model.JMeterSample) float64 { return s.Throughput })
	case report.ChartProtocols:
		return protocols(r.ForensicsReport)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownChart, chartID)
	}
}

// Available lists, in capture order, the charts r has data for.
func Available(r model.ScanResult) []string {
	var ids []string
	for _, id := range report.ChartIDs {
		if hasData(r, id) {
			ids = append(ids, id)
		}
	}
	return ids
}

func hasData(r model.ScanResult, chartID string) bool {
	switch chartID {
	case report.ChartSeverity:
		return len(report.OrderedHistogram(r.Vulnerabilities)) > 0
	case report.ChartServerHealth:
		return r.ServerHealth != nil
	case report.ChartLoadTest:
		return len(r.LoadTestResults) > 0
	case report.ChartWebVitals:
		return len(report.PerformanceChartData(r.PerformanceReport)) > 0
	case report.ChartTopology:
		return !r.Topology.Empty()
	case report.ChartJMeterLatency, report.ChartJMeterThroughput:
		return r.JMeterReport != nil && len(r.JMeterReport.Samples) > 0
	case report.ChartProtocols:
		return r.ForensicsReport != nil && slices.ContainsFunc(r.ForensicsReport.ProtocolStats, func(p model.ProtocolStat) bool {
			return p.Percent > 0
		})
	}
	return false
}

func render(draw func(chart.RendererProvider, io.Writer) error) ([]byte, error) {
	var buf bytes.Buffer
	if err := draw(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("rendering chart: %w", err)
	}
	return buf.Bytes(), nil
}

func severity(vulns []model.Vulnerability) ([]byte, error) {
	hist := report.OrderedHistogram(vulns)
	if len(hist) == 0 {
		return nil, ErrNoData
	}
	values := make([]chart.Value, 0, len(hist))
	for _, h := range hist {
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s (%d)", h.Severity, h.Count),
			Value: float64(h.Count),
			Style: chart.Style{FillColor: hex(h.Severity.Color()), StrokeColor: drawing.ColorWhite},
		})
	}
	pie := chart.PieChart{Title: "Sévérité des Failles", Width: height, Height: height, Values: values}
	return render(pie.Render)
}

func serverHealth(h *model.ServerHealth) ([]byte, error) {
	if h == nil {
		return nil, ErrNoData
	}
	bars := chart.BarChart{
		Title:    "Charge Serveur (%)",
		Width:    width,
		Height:   height,
		BarWidth: 120,
		YAxis:    chart.YAxis{Range: &chart.ContinuousRange{Min: 0, Max: 100}},
		Bars: []chart.Value{
			{Label: fmt.Sprintf("CPU %g%%", h.CPUUsage), Value: h.CPUUsage, Style: chart.Style{FillColor: colorSecondary, StrokeColor: colorSecondary}},
			{Label: fmt.Sprintf("RAM %g%%", h.RAMUsage), Value: h.RAMUsage, Style: chart.Style{FillColor: colorPurple, StrokeColor: colorPurple}},
		},
	}
	return render(bars.Render)
}

func webVitals(p *model.PerformanceReport) ([]byte, error) {
	points := report.PerformanceChartData(p)
	if len(points) == 0 {
		return nil, ErrNoData
	}
	bars := make([]chart.Value, 0, len(points))
	top := 0.0
	for _, pt := range points {
		top = math.Max(top, pt.DurationMS)
		bars = append(bars, chart.Value{
			Label: pt.Name,
			Value: pt.DurationMS,
			Style: chart.Style{FillColor: colorPurple, StrokeColor: colorPurple},
		})
	}
	c := chart.BarChart{
		Title:    "Web Vitals (ms)",
		Width:    width,
		Height:   height,
		BarWidth: 60,
		YAxis:    chart.YAxis{Range: &chart.ContinuousRange{Min: 0, Max: ceiling(top)}},
		Bars:     bars,
	}
	return render(c.Render)
}

func loadTest(points []model.LoadTestPoint) ([]byte, error) {
	if len(points) == 0 {
		return nil, ErrNoData
	}
	xs := make([]float64, len(points))
	latency := make([]float64, len(points))
	rps := make([]float64, len(points))
	topLatency, topRPS := 0.0, 0.0
	for i, p := range points {
		xs[i] = float64(i)
		latency[i] = p.Latency
		rps[i] = p.RequestsPerSecond
		topLatency = math.Max(topLatency, p.Latency)
		topRPS = math.Max(topRPS, p.RequestsPerSecond)
	}

	c := chart.Chart{
		Title:  "Test de Charge",
		Width:  width,
		Height: height,
		XAxis:  chart.XAxis{Range: &chart.ContinuousRange{Min: 0, Max: math.Max(1, float64(len(points)-1))}},
		YAxis: chart.YAxis{
			Name:  "Latency (ms)",
			Range: &chart.ContinuousRange{Min: 0, Max: ceiling(topLatency)},
		},
		YAxisSecondary: chart.YAxis{
			Name:  "Req/s",
			Range: &chart.ContinuousRange{Min: 0, Max: ceiling(topRPS)},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Latency",
				XValues: xs,
				YValues: latency,
				Style:   chart.Style{StrokeColor: colorSecondary, StrokeWidth: 2},
			},
			chart.ContinuousSeries{
				Name:    "Req/s",
				XValues: xs,
				YValues: rps,
				YAxis:   chart.YAxisSecondary,
				Style:   chart.Style{StrokeColor: colorPrimary, StrokeWidth: 2},
			},
		},
	}
	c.Elements = []chart.Renderable{chart.Legend(&c)}
	return render(c.Render)
}

func jmeterSeries(j *model.JMeterReport, name string, color drawing.Color, value func(model.JMeterSample) float64) ([]byte, error) {
	if j == nil || len(j.Samples) == 0 {
		return nil, ErrNoData
	}
	xs := make([]float64, len(j.Samples))
	ys := make([]float64, len(j.Samples))
	top := 0.0
	for i, s := range j.Samples {
		xs[i] = float64(i)
		ys[i] = value(s)
		top = math.Max(top, ys[i])
	}
	c := chart.Chart{
		Title:  name,
		Width:  width,
		Height: height,
		XAxis:  chart.XAxis{Range: &chart.ContinuousRange{Min: 0, Max: math.Max(1, float64(len(xs)-1))}},
		YAxis:  chart.YAxis{Range: &chart.ContinuousRange{Min: 0, Max: ceiling(top)}},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    name,
				XValues: xs,
				YValues: ys,
				Style:   chart.Style{StrokeColor: color, StrokeWidth: 2, FillColor: color.WithAlpha(48)},
			},
		},
	}
	return render(c.Render)
}

func protocols(f *model.ForensicsReport) ([]byte, error) {
	if f == nil {
		return nil, ErrNoData
	}
	var values []chart.Value
	for i, ps := range f.ProtocolStats {
		if ps.Percent <= 0 {
			continue
		}
		c := hex(protocolPalette[i%len(protocolPalette)])
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s %g%%", ps.Protocol, ps.Percent),
			Value: ps.Percent,
			Style: chart.Style{FillColor: c, StrokeColor: drawing.ColorWhite},
		})
	}
	if len(values) == 0 {
		return nil, ErrNoData
	}
	pie := chart.PieChart{Title: "Protocoles", Width: height, Height: height, Values: values}
	return render(pie.Render)
}

// ceiling leaves headroom above the largest value and never returns a
// zero-height range.
func ceiling(top float64) float64 {
	if top <= 0 {
		return 1
	}
	return top * 1.1
}
