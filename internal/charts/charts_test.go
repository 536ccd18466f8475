package charts

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesruggles/secuscan/internal/model"
	"github.com/jamesruggles/secuscan/internal/report"
)

func populated() model.ScanResult {
	return model.ScanResult{
		Vulnerabilities: []model.Vulnerability{
			{Severity: model.SeverityCritical},
			{Severity: model.SeverityLow},
		},
		ServerHealth: &model.ServerHealth{CPUUsage: 42, RAMUsage: 63},
		LoadTestResults: []model.LoadTestPoint{
			{Time: "00:00", RequestsPerSecond: 100, Latency: 80},
			{Time: "00:10", RequestsPerSecond: 250, Latency: 140},
		},
		PerformanceReport: &model.PerformanceReport{Metrics: []model.PerformanceMetric{
			{Name: "LCP", Value: "2.5s"},
			{Name: "TTFB", Value: "300ms"},
		}},
		Topology: &model.Topology{
			Nodes: []model.TopologyNode{
				{ID: "inet", Label: "Internet", Type: "internet", Status: "active"},
				{ID: "fw", Label: "FW-01", Type: "firewall", Status: "active"},
				{ID: "db", Label: "DB", Type: "database", Status: "inactive"},
			},
			Links: []model.TopologyLink{{Source: "inet", Target: "fw"}, {Source: "fw", Target: "db"}, {Source: "fw", Target: "ghost"}},
		},
		JMeterReport: &model.JMeterReport{Samples: []model.JMeterSample{
			{Latency: 100, Throughput: 40},
			{Latency: 120, Throughput: 55},
			{Latency: 90, Throughput: 60},
		}},
		ForensicsReport: &model.ForensicsReport{ProtocolStats: []model.ProtocolStat{
			{Protocol: "TCP", Percent: 70},
			{Protocol: "UDP", Percent: 30},
			{Protocol: "ICMP", Percent: 0},
		}},
	}
}

func TestRenderEveryChart(t *testing.T) {
	r := populated()
	for _, id := range report.ChartIDs {
		t.Run(id, func(t *testing.T) {
			data, err := Render(r, id)
			require.NoError(t, err)
			_, err = png.DecodeConfig(bytes.NewReader(data))
			assert.NoError(t, err)
		})
	}
}

func TestRenderWithoutDataReturnsErrNoData(t *testing.T) {
	empty := model.ScanResult{Topology: &model.Topology{}}
	for _, id := range report.ChartIDs {
		_, err := Render(empty, id)
		assert.ErrorIs(t, err, ErrNoData, id)
	}
}

func TestRenderSinglePointSeries(t *testing.T) {
	r := model.ScanResult{
		LoadTestResults: []model.LoadTestPoint{{Time: "00:00"}},
		JMeterReport:    &model.JMeterReport{Samples: []model.JMeterSample{{}}},
	}
	_, err := Render(r, report.ChartLoadTest)
	assert.NoError(t, err)
	_, err = Render(r, report.ChartJMeterLatency)
	assert.NoError(t, err)
}

func TestAvailable(t *testing.T) {
	assert.Equal(t, report.ChartIDs, Available(populated()))
	assert.Empty(t, Available(model.ScanResult{Topology: &model.Topology{}}))

	r := model.ScanResult{ServerHealth: &model.ServerHealth{}}
	assert.Equal(t, []string{report.ChartServerHealth}, Available(r))
}

func TestRenderUnknownChart(t *testing.T) {
	_, err := Render(model.ScanResult{}, "chart-nope")
	assert.ErrorIs(t, err, ErrUnknownChart)
}

func TestLayoutTopologyTiers(t *testing.T) {
	pos := layoutTopology(populated().Topology, 500, 100)
	assert.Less(t, pos["inet"].x, pos["fw"].x)
	assert.Less(t, pos["fw"].x, pos["db"].x)
}
