package report

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/jamesruggles/secuscan/internal/model"
)

// SeverityHistogram counts vulnerabilities per severity. Severities with
// no findings have no key.
func SeverityHistogram(vulns []model.Vulnerability) map[model.Severity]int {
	counts := make(map[model.Severity]int)
	for _, v := range vulns {
		counts[v.Severity]++
	}
	return counts
}

// SeverityCount is one histogram bucket, for callers that need a stable
// order.
type SeverityCount struct {
	Severity model.Severity `json:"severity"`
	Count    int            `json:"count"`
}

// OrderedHistogram returns the histogram from most to least severe, with
// unknown labels last in name order.
func OrderedHistogram(vulns []model.Vulnerability) []SeverityCount {
	counts := SeverityHistogram(vulns)
	out := make([]SeverityCount, 0, len(counts))
	for _, sev := range model.Severities {
		if n, ok := counts[sev]; ok {
			out = append(out, SeverityCount{sev, n})
			delete(counts, sev)
		}
	}
	var rest []model.Severity
	for sev := range counts {
		rest = append(rest, sev)
	}
	slices.Sort(rest)
	for _, sev := range rest {
		out = append(out, SeverityCount{sev, counts[sev]})
	}
	return out
}

var webVitals = []string{"LCP", "FCP", "TTFB", "TBT", "FID", "Speed Index"}

// VitalPoint is one bar of the web-vitals chart.
type VitalPoint struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration"`
	Display    string  `json:"display"`
}

// PerformanceChartData selects the time-based web vitals and converts
// their display values to milliseconds.
func PerformanceChartData(p *model.PerformanceReport) []VitalPoint {
	if p == nil {
		return []VitalPoint{}
	}
	points := []VitalPoint{}
	for _, m := range p.Metrics {
		if !isWebVital(m.Name) {
			continue
		}
		points = append(points, VitalPoint{Name: m.Name, DurationMS: ParseDuration(m.Value), Display: m.Value})
	}
	return points
}

func isWebVital(name string) bool {
	for _, v := range webVitals {
		if strings.Contains(name, v) {
			return true
		}
	}
	return false
}

// ParseDuration converts "500ms" to 500 and "1.2s" to 1200. Anything else
// is 0.
func ParseDuration(value string) float64 {
	v := strings.TrimSpace(value)
	switch {
	case strings.HasSuffix(v, "ms"):
		return parseNumber(strings.TrimSuffix(v, "ms"))
	case strings.HasSuffix(v, "s"):
		return parseNumber(strings.TrimSuffix(v, "s")) * 1000
	default:
		return 0
	}
}

func parseNumber(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

// PortsCSV renders the open ports. Fields are not quoted, so a comma in a
// service or version shifts the columns of that row.
func PortsCSV(ports []model.OpenPort) string {
	rows := make([]string, 0, len(ports)+1)
	rows = append(rows, "Port,Service,Version,State")
	for _, p := range ports {
		rows = append(rows, fmt.Sprintf("%d,%s,%s,%s", p.Port, p.Service, p.Version, p.State))
	}
	return strings.Join(rows, "\n")
}

func PortsCSVFilename(target string, now time.Time) string {
	return fmt.Sprintf("ports_%s_%d.csv", target, now.UnixMilli())
}

// PacketCategory is the display class of a captured packet row.
type PacketCategory string

const (
	PacketHTTP    PacketCategory = "http"
	PacketTLS     PacketCategory = "tls"
	PacketDNS     PacketCategory = "dns"
	PacketTCP     PacketCategory = "tcp"
	PacketUDP     PacketCategory = "udp"
	PacketNeutral PacketCategory = "neutral"
)

// ClassifyPacket maps a protocol label to its display class. Application
// protocols are checked first so "HTTP/TCP" reads as HTTP.
func ClassifyPacket(protocol string) PacketCategory {
	p := strings.ToUpper(protocol)
	switch {
	case strings.Contains(p, "HTTP"):
		return PacketHTTP
	case strings.Contains(p, "TLS"), strings.Contains(p, "SSL"):
		return PacketTLS
	case strings.Contains(p, "DNS"):
		return PacketDNS
	case strings.Contains(p, "TCP"):
		return PacketTCP
	case strings.Contains(p, "UDP"):
		return PacketUDP
	default:
		return PacketNeutral
	}
}

// Color is the row tint used in the packet table.
func (c PacketCategory) Color() string {
	switch c {
	case PacketHTTP:
		return "#22c55e"
	case PacketTLS:
		return "#a855f7"
	case PacketDNS:
		return "#3b82f6"
	case PacketTCP:
		return "#64748b"
	case PacketUDP:
		return "#06b6d4"
	default:
		return "#94a3b8"
	}
}

type PercentileDisplay struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Text  string  `json:"text"`
}

func Percentiles(s *model.JMeterSummary) []PercentileDisplay {
	if s == nil {
		return []PercentileDisplay{}
	}
	return []PercentileDisplay{
		{"90th pct", s.P90, fmt.Sprintf("%gms", s.P90)},
		{"95th pct", s.P95, fmt.Sprintf("%gms", s.P95)},
		{"99th pct", s.P99, fmt.Sprintf("%gms", s.P99)},
	}
}

// Split is a used/free gauge.
type Split struct {
	Used float64 `json:"used"`
	Free float64 `json:"free"`
}

type Load struct {
	CPU Split `json:"cpu"`
	RAM Split `json:"ram"`
}

// ServerLoad reports nil when no server health was generated.
func ServerLoad(h *model.ServerHealth) *Load {
	if h == nil {
		return nil
	}
	return &Load{
		CPU: Split{Used: h.CPUUsage, Free: 100 - h.CPUUsage},
		RAM: Split{Used: h.RAMUsage, Free: 100 - h.RAMUsage},
	}
}

// TopVulnerabilities returns the n most severe findings. Ties keep their
// input order.
func TopVulnerabilities(vulns []model.Vulnerability, n int) []model.Vulnerability {
	sorted := slices.Clone(vulns)
	slices.SortStableFunc(sorted, func(a, b model.Vulnerability) int {
		return b.Severity.Weight() - a.Severity.Weight()
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

type ScoreBand string

const (
	BandGood    ScoreBand = "good"
	BandWarning ScoreBand = "warning"
	BandDanger  ScoreBand = "danger"
)

func BandFor(score float64) ScoreBand {
	switch {
	case score > 80:
		return BandGood
	case score > 50:
		return BandWarning
	default:
		return BandDanger
	}
}
