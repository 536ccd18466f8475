package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jamesruggles/secuscan/internal/model"
)

func mdCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// Markdown renders a summary of one scan. Absent reports are left out.
func Markdown(r model.ScanResult) string {
	var b strings.Builder

	title := r.TargetURL
	if r.ProjectName != "" {
		title = r.ProjectName + " (" + r.TargetURL + ")"
	}
	fmt.Fprintf(&b, "# Security Audit Report: %s\n\n", title)
	fmt.Fprintf(&b, "**Scan:** %s  \n", r.ID)
	fmt.Fprintf(&b, "**Date:** %s  \n", r.Timestamp.Format("January 2, 2006 15:04:05 MST"))
	fmt.Fprintf(&b, "**Status:** %s  \n", r.Status)
	fmt.Fprintf(&b, "**Score:** %g/100  \n", r.OverallScore)
	if r.TargetIP != "" {
		fmt.Fprintf(&b, "**IP:** `%s`  \n", r.TargetIP)
	}
	b.WriteString("**Generated by:** SecuScan Pro\n\n")

	b.WriteString("## AI Analysis\n\n")
	if r.AIAnalysis != "" {
		b.WriteString(r.AIAnalysis)
		b.WriteString("\n\n")
	} else {
		b.WriteString("No analysis available.\n\n")
	}

	b.WriteString("## Tools\n\n")
	for _, t := range r.ToolsUsed {
		fmt.Fprintf(&b, "- %s\n", t)
	}
	b.WriteString("\n")

	b.WriteString("## Vulnerabilities\n\n")
	if hist := OrderedHistogram(r.Vulnerabilities); len(hist) > 0 {
		b.WriteString("| Severity | Count |\n")
		b.WriteString("|---|---|\n")
		for _, h := range hist {
			fmt.Fprintf(&b, "| %s | %d |\n", h.Severity, h.Count)
		}
		b.WriteString("\n")

		b.WriteString("| Severity | Name | Tool | Description |\n")
		b.WriteString("|---|---|---|---|\n")
		for _, v := range TopVulnerabilities(r.Vulnerabilities, -1) {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", v.Severity, mdCell(v.Name), mdCell(v.ToolDetected), mdCell(truncate(v.Description, 100)))
		}
		b.WriteString("\n")

		b.WriteString("### Remediation\n\n")
		for _, v := range r.Vulnerabilities {
			if v.Remediation == "" {
				continue
			}
			fmt.Fprintf(&b, "- **%s:** %s\n", v.Name, strings.ReplaceAll(v.Remediation, "\n", " "))
		}
		b.WriteString("\n")
	} else {
		b.WriteString("No vulnerabilities recorded.\n\n")
	}

	if len(r.OpenPorts) > 0 {
		b.WriteString("## Open Ports\n\n")
		b.WriteString("| Port | Service | Version | State |\n")
		b.WriteString("|---|---|---|---|\n")
		for _, p := range r.OpenPorts {
			version := p.Version
			if version == "" {
				version = "-"
			}
			fmt.Fprintf(&b, "| %d | %s | %s | %s |\n", p.Port, mdCell(p.Service), mdCell(version), p.State)
		}
		b.WriteString("\n")
	}

	if len(r.ConnectedAssets) > 0 {
		b.WriteString("## Connected Assets\n\n")
		b.WriteString("| Hostname | IP | Type | Location |\n")
		b.WriteString("|---|---|---|---|\n")
		for _, a := range r.ConnectedAssets {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", mdCell(a.Hostname), a.IP, a.Type, mdCell(a.Location))
		}
		b.WriteString("\n")
	}

	if h := r.ServerHealth; h != nil {
		b.WriteString("## Server Health\n\n")
		fmt.Fprintf(&b, "- CPU: %g%%\n- RAM: %g%%\n- OS: %s\n- Uptime: %s\n\n", h.CPUUsage, h.RAMUsage, h.OS, h.Uptime)
	}

	if p := r.PerformanceReport; p != nil {
		fmt.Fprintf(&b, "## Web Performance (%g/100)\n\n", p.OverallScore)
		b.WriteString("| Metric | Value | Score |\n")
		b.WriteString("|---|---|---|\n")
		for _, m := range p.Metrics {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", mdCell(m.Name), mdCell(m.Value), m.Score)
		}
		b.WriteString("\n")
	}

	if len(r.SecurityHeaders) > 0 {
		b.WriteString("## Security Headers\n\n")
		b.WriteString("| Header | Status | Value |\n")
		b.WriteString("|---|---|---|\n")
		for _, h := range r.SecurityHeaders {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", mdCell(h.Name), h.Status, mdCell(truncate(h.Value, 60)))
		}
		b.WriteString("\n")
	}

	if j := r.JMeterReport; j != nil {
		fmt.Fprintf(&b, "## Load Test: %s\n\n", j.TestPlanName)
		s := j.Summary
		fmt.Fprintf(&b, "- Samples: %d\n- Average latency: %gms\n- Error rate: %g%%\n- Throughput: %g req/s\n", s.TotalSamples, s.AverageLatency, s.ErrorPct, s.Throughput)
		for _, p := range Percentiles(&s) {
			fmt.Fprintf(&b, "- %s: %s\n", p.Label, p.Text)
		}
		b.WriteString("\n")
	}

	if ids := r.IDSReport; ids != nil {
		b.WriteString("## Intrusion Detection\n\n")
		fmt.Fprintf(&b, "%d alert(s), %d blocked (high %d, medium %d, low %d).\n\n",
			ids.TotalAlerts, ids.BlockedCount, ids.AlertsByPriority.High, ids.AlertsByPriority.Medium, ids.AlertsByPriority.Low)
	}

	return b.String()
}

// SaveMarkdown writes the summary into dir and returns the file path.
func SaveMarkdown(dir string, r model.ScanResult, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}
	path := filepath.Join(dir, MarkdownFilename(r, now))
	if err := os.WriteFile(path, []byte(Markdown(r)), 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}

func MarkdownFilename(r model.ScanResult, now time.Time) string {
	name := strings.ReplaceAll(strings.ToLower(r.TargetURL), "/", "-")
	return fmt.Sprintf("secuscan-%s-%s.md", name, now.Format("20060102-150405"))
}
