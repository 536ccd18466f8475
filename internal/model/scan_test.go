package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanRequestValid(t *testing.T) {
	tests := []struct {
		name string
		req  ScanRequest
		want bool
	}{
		{"valid", ScanRequest{Target: "example.com", Tools: []ToolType{ToolNmap}}, true},
		{"empty target", ScanRequest{Target: "", Tools: []ToolType{ToolNmap}}, false},
		{"blank target", ScanRequest{Target: "   ", Tools: []ToolType{ToolNmap}}, false},
		{"no tools", ScanRequest{Target: "example.com"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.req.Valid())
		})
	}
}

func TestLanguageNormalize(t *testing.T) {
	assert.Equal(t, LangEnglish, Language("EN").Normalize())
	assert.Equal(t, LangArabic, Language("ar").Normalize())
	assert.Equal(t, LangFrench, Language("").Normalize())
	assert.Equal(t, LangFrench, Language("de").Normalize())
}

func TestSeverityDecodesLegacyLabels(t *testing.T) {
	var vulns []Vulnerability
	raw := `[{"severity":"CRITIQUE"},{"severity":"ÉLEVÉE"},{"severity":"moyenne"},{"severity":"FAIBLE"},{"severity":"INFO"},{"severity":"HIGH"}]`
	require.NoError(t, json.Unmarshal([]byte(raw), &vulns))

	got := make([]Severity, 0, len(vulns))
	for _, v := range vulns {
		got = append(got, v.Severity)
	}
	assert.Equal(t, []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo, SeverityHigh}, got)
}

func TestSeverityKeepsUnknownLabel(t *testing.T) {
	var v Vulnerability
	require.NoError(t, json.Unmarshal([]byte(`{"severity":"URGENT"}`), &v))
	assert.Equal(t, Severity("URGENT"), v.Severity)
	assert.Equal(t, 0, v.Severity.Weight())
}

func TestMergeOverKeepsAbsentMembers(t *testing.T) {
	base := ScanResult{
		ID:         "1",
		TargetURL:  "example.com",
		TargetIP:   "...",
		Status:     StatusRunning,
		AIAnalysis: "pending",
		Topology:   &Topology{},
		OpenPorts:  []OpenPort{},
	}
	score := 72.0
	analysis := "done"
	p := PartialResult{
		OverallScore: &score,
		AIAnalysis:   &analysis,
		ServerHealth: &ServerHealth{CPUUsage: 40},
	}

	out := p.MergeOver(base)
	assert.Equal(t, 72.0, out.OverallScore)
	assert.Equal(t, "done", out.AIAnalysis)
	assert.Equal(t, "...", out.TargetIP)
	assert.NotNil(t, out.Topology)
	assert.NotNil(t, out.ServerHealth)
	assert.Nil(t, out.JMeterReport)
	assert.Equal(t, "pending", base.AIAnalysis, "base must not be modified")
}

func TestPartialResultNullMembersStayAbsent(t *testing.T) {
	var p PartialResult
	require.NoError(t, json.Unmarshal([]byte(`{"openPorts":[],"jmeterReport":null,"globalPing":null}`), &p))
	assert.NotNil(t, p.OpenPorts)
	assert.Empty(t, p.OpenPorts)
	assert.Nil(t, p.JMeterReport)
	assert.Nil(t, p.GlobalPing)
}
