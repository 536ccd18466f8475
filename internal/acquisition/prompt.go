package acquisition

import (
	"fmt"
	"strings"

	"github.com/jamesruggles/secuscan/internal/enrich"
	"github.com/jamesruggles/secuscan/internal/model"
)

func languageDirective(lang model.Language) string {
	switch lang.Normalize() {
	case model.LangArabic:
		return "IMPORTANT: Provide all text content (aiAnalysis, description, remediation, vulnerability names) in ARABIC. Use professional cybersecurity terminology in Arabic."
	case model.LangEnglish:
		return "IMPORTANT: Provide all text content in ENGLISH."
	default:
		return "IMPORTANT: Provide all text content (aiAnalysis, description, remediation) in FRENCH."
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

func toolList(tools []model.ToolType) string {
	names := make([]string, len(tools))
	for i, t := range tools {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

// SystemInstruction is the per-scan instruction handed to the model.
func SystemInstruction(req model.ScanRequest, info enrich.Info) string {
	intensity := req.Intensity
	if intensity == "" {
		intensity = model.IntensityNormal
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are 'SecuScan Pro', an elite cybersecurity and infrastructure monitoring engine, inspired by the NetBox data model (DCIM/IPAM).\n")
	fmt.Fprintf(&b, "Your goal is to generate a JSON report that simulates a deep technical audit of a target: %s.\n\n", req.Target)
	fmt.Fprintf(&b, "%s\n\n", languageDirective(req.Language))
	fmt.Fprintf(&b, "REAL DATA DETECTED (USE THIS):\n")
	fmt.Fprintf(&b, "- Resolved IP: %s\n", info.IP)
	fmt.Fprintf(&b, "- Location: %s, %s\n", orUnknown(info.Geo.City), orUnknown(info.Geo.Country))
	fmt.Fprintf(&b, "- ISP: %s\n\n", orUnknown(info.Geo.Connection.ISP))
	fmt.Fprintf(&b, "The user has selected these tools: %s.\n", toolList(req.Tools))
	fmt.Fprintf(&b, "Scan intensity: %s.\n\n", intensity)
	b.WriteString(sectionRules)
	return b.String()
}

// UserPrompt is the content message sent alongside the instruction.
func UserPrompt(req model.ScanRequest, info enrich.Info) string {
	return fmt.Sprintf("Perform scan on %s using tools: %s. Real IP: %s. Suggest NetBox DCIM/IPAM mapping.",
		req.Target, toolList(req.Tools), info.IP)
}

const sectionRules = `GENERATE DATA FOR THE FOLLOWING SECTIONS BASED ON SELECTED TOOLS:

1. SECURITY (Nmap, Nikto, OpenVAS):
   - Find realistic open ports and vulnerabilities.
   - If 'OpenVAS' is selected, include at least 3-5 vulnerabilities.
   - Provide remediation steps that follow NIST/OWASP standards.
   - Severity must be one of CRITICAL, HIGH, MEDIUM, LOW, INFO.

2. INFRASTRUCTURE & HEALTH (Server Health, Google Lighthouse):
   - Generate 'serverHealth' object (CPU/RAM).
   - Generate 'performanceReport' with web vitals (LCP, FCP, TTFB, TBT, Speed Index) as strings with units, e.g. "1.2s" or "350ms".
   - ALWAYS Generate 'loadTestResults' array for charts (latency vs req/sec).

3. NETWORK & TOPOLOGY (NetBox-style):
   - Generate 'topology' object.
   - Generate 'deviceFingerprint' (OS, Device Type).
   - Generate 'connectedAssets'.
   - IMPORTANT: In the AI analysis, suggest where these assets would fit in a NetBox inventory (e.g. "Asset X should be placed in Site HQ, VLAN 100, Rack A12").

4. FUNCTIONAL & AUTOMATION:
   - If 'Selenium' selected: Generate 'seleniumReport'.
   - If 'JMeter' selected: Generate 'jmeterReport' with summary percentiles and time-series samples.

5. PACKET ANALYSIS & FORENSICS (WIRESHARK & DPI):
   - Generate packetCapture and forensicsReport if tools selected.
   - Use Deep Packet Inspection (DPI) signatures to identify specific software versions.

6. INTRUSION DETECTION (SNORT / SURICATA):
   - Generate idsReport with realistic alerts if tool selected.

IMPORTANT: Be technical, concise, and realistic. Return ONLY raw JSON.
`
