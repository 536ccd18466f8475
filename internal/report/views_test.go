package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesruggles/secuscan/internal/model"
)

func TestBuildViewsEmptyResult(t *testing.T) {
	v := BuildViews(model.ScanResult{ID: "1", TargetURL: "example.com"})

	sections := v.Sections()
	require.Len(t, sections, 8)
	ids := make([]string, len(sections))
	for i, s := range sections {
		ids[i] = s.ID
	}
	assert.Equal(t, []string{"overview", "infrastructure", "network", "topology", "traffic", "ids", "automation", "load-test"}, ids)

	assert.True(t, v.Overview.Available)
	for _, s := range sections[1:] {
		assert.False(t, s.Available, s.ID)
		assert.NotEmpty(t, s.EmptyMessage, s.ID)
	}
	assert.Equal(t, "Aucun rapport JMeter disponible pour ce scan.", v.LoadTest.EmptyMessage)
	assert.NotNil(t, v.Overview.OpenPorts)
	assert.NotNil(t, v.Traffic.Packets)
	assert.Equal(t, "Aucun actif connecté.", v.Overview.AssetsEmpty)
}

func TestBuildViewsPopulated(t *testing.T) {
	assets := make([]model.ConnectedAsset, 7)
	r := model.ScanResult{
		ID:              "1",
		OverallScore:    91,
		ConnectedAssets: assets,
		ServerHealth:    &model.ServerHealth{CPUUsage: 20, RAMUsage: 40},
		PacketCapture: []model.NetworkPacket{
			{No: 1, Protocol: "TLSv1.2"},
			{No: 2, Protocol: "ICMP"},
		},
		JMeterReport: &model.JMeterReport{Summary: model.JMeterSummary{P90: 10}},
		Topology:     &model.Topology{Nodes: []model.TopologyNode{{ID: "fw"}}},
	}

	v := BuildViews(r)
	assert.Equal(t, BandGood, v.Overview.Band)
	assert.Len(t, v.Overview.Assets, 5)
	assert.Equal(t, 2, v.Overview.MoreAssets)
	assert.True(t, v.Infrastructure.Available)
	assert.Empty(t, v.Infrastructure.HealthEmpty)
	assert.Equal(t, "Aucune donnée de test de charge.", v.Infrastructure.LoadTestEmpty)
	assert.True(t, v.Network.Available)
	assert.True(t, v.Topology.Available)
	assert.Equal(t, "Fingerprint non disponible.", v.Topology.FingerprintEmpty)
	require.Len(t, v.Traffic.Packets, 2)
	assert.Equal(t, PacketTLS, v.Traffic.Packets[0].Category)
	assert.Equal(t, PacketNeutral, v.Traffic.Packets[1].Category)
	assert.True(t, v.LoadTest.Available)
	assert.Len(t, v.LoadTest.Percentiles, 3)
	assert.False(t, v.IDS.Available)
	assert.False(t, v.Automation.Available)
}

func TestBuildViewsEmptyTopologyIsUnavailable(t *testing.T) {
	v := BuildViews(model.ScanResult{Topology: &model.Topology{}})
	assert.False(t, v.Topology.Available)
}
