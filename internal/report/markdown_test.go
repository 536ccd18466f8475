package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesruggles/secuscan/internal/model"
)

func TestMarkdownSections(t *testing.T) {
	r := model.ScanResult{
		ID:           "1714564800000",
		TargetURL:    "example.com",
		Timestamp:    time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Status:       model.StatusCompleted,
		OverallScore: 72,
		ToolsUsed:    []model.ToolType{model.ToolNmap},
		AIAnalysis:   "Two issues found.",
		OpenPorts:    []model.OpenPort{{Port: 443, Service: "https", State: model.PortOpen}},
		Vulnerabilities: []model.Vulnerability{
			{Name: "Weak | cipher", Severity: model.SeverityMedium, ToolDetected: "Nmap", Remediation: "Disable RC4"},
		},
	}

	md := Markdown(r)
	assert.Contains(t, md, "# Security Audit Report: example.com")
	assert.Contains(t, md, "**Score:** 72/100")
	assert.Contains(t, md, "| MEDIUM | 1 |")
	assert.Contains(t, md, `Weak \| cipher`)
	assert.Contains(t, md, "| 443 | https | - | open |")
	assert.Contains(t, md, "- **Weak | cipher:** Disable RC4")
	assert.NotContains(t, md, "## Server Health")
	assert.NotContains(t, md, "## Load Test")
}

func TestSaveMarkdown(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	path, err := SaveMarkdown(dir, model.ScanResult{TargetURL: "Example.com"}, now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "secuscan-example.com-20240501-120000.md"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "No vulnerabilities recorded.")
}
