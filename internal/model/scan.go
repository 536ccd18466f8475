package model

import (
	"strings"
	"time"
)

// Status is the lifecycle state of a scan record.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

type Intensity string

const (
	IntensityQuick  Intensity = "quick"
	IntensityNormal Intensity = "normal"
	IntensityDeep   Intensity = "deep"
)

// Language steers the generated narrative and the lifecycle messages.
type Language string

const (
	LangFrench  Language = "fr"
	LangEnglish Language = "en"
	LangArabic  Language = "ar"
)

// Normalize maps unknown or empty values to French, the dashboard default.
func (l Language) Normalize() Language {
	switch Language(strings.ToLower(string(l))) {
	case LangEnglish:
		return LangEnglish
	case LangArabic:
		return LangArabic
	default:
		return LangFrench
	}
}

// ScanRequest is what the user asked for. It is not modified after Submit.
type ScanRequest struct {
	ProjectName string     `json:"projectName,omitempty"`
	Target      string     `json:"target"`
	Tools       []ToolType `json:"tools"`
	Intensity   Intensity  `json:"intensity,omitempty"`
	Language    Language   `json:"language,omitempty"`
}

// Valid reports whether the request satisfies the submit precondition:
// a non-blank target and at least one tool.
func (r ScanRequest) Valid() bool {
	return strings.TrimSpace(r.Target) != "" && len(r.Tools) > 0
}

type PortState string

const (
	PortOpen     PortState = "open"
	PortFiltered PortState = "filtered"
	PortClosed   PortState = "closed"
)

type OpenPort struct {
	Port    int       `json:"port"`
	Service string    `json:"service"`
	Version string    `json:"version,omitempty"`
	State   PortState `json:"state"`
}

type Vulnerability struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Severity     Severity `json:"severity"`
	Description  string   `json:"description"`
	Remediation  string   `json:"remediation"`
	ToolDetected string   `json:"toolDetected"`
}

type AssetType string

const (
	AssetPrimary      AssetType = "Primary"
	AssetSubdomain    AssetType = "Subdomain"
	AssetMailServer   AssetType = "Mail Server"
	AssetLoadBalancer AssetType = "Load Balancer"
	AssetCDN          AssetType = "CDN"
	AssetDatabase     AssetType = "Database"
)

type ConnectedAsset struct {
	IP       string    `json:"ip"`
	Hostname string    `json:"hostname"`
	Type     AssetType `json:"type"`
	Location string    `json:"location"`
}

// ScanResult is the persisted record for one scan. Every optional report is
// a nil-able member and may be absent even when its tool was requested.
type ScanResult struct {
	ID              string           `json:"id"`
	ProjectName     string           `json:"projectName,omitempty"`
	TargetURL       string           `json:"targetUrl"`
	TargetIP        string           `json:"targetIp"`
	Timestamp       time.Time        `json:"timestamp"`
	Status          Status           `json:"status"`
	OverallScore    float64          `json:"overallScore"`
	ToolsUsed       []ToolType       `json:"toolsUsed"`
	OpenPorts       []OpenPort       `json:"openPorts"`
	ConnectedAssets []ConnectedAsset `json:"connectedAssets"`
	Vulnerabilities []Vulnerability  `json:"vulnerabilities"`
	AIAnalysis      string           `json:"aiAnalysis"`

	PerformanceReport *PerformanceReport `json:"performanceReport,omitempty"`
	ServerHealth      *ServerHealth      `json:"serverHealth,omitempty"`
	NetworkStats      *NetworkStats      `json:"networkStats,omitempty"`
	SecurityHeaders   []SecurityHeader   `json:"securityHeaders,omitempty"`
	LoadTestResults   []LoadTestPoint    `json:"loadTestResults,omitempty"`
	Topology          *Topology          `json:"topology,omitempty"`
	DeviceFingerprint *DeviceFingerprint `json:"deviceFingerprint,omitempty"`
	GlobalPing        []GlobalPingRegion `json:"globalPing,omitempty"`
	SeleniumReport    []SeleniumScenario `json:"seleniumReport,omitempty"`
	JMeterReport      *JMeterReport      `json:"jmeterReport,omitempty"`
	PacketCapture     []NetworkPacket    `json:"packetCapture,omitempty"`
	ForensicsReport   *ForensicsReport   `json:"forensicsReport,omitempty"`
	IDSReport         *IDSReport         `json:"idsReport,omitempty"`
}

// PartialResult is what report acquisition returns. A nil member means the
// generator produced nothing for it and the placeholder value is kept.
type PartialResult struct {
	ID              *string          `json:"id,omitempty"`
	ProjectName     *string          `json:"projectName,omitempty"`
	TargetURL       *string          `json:"targetUrl,omitempty"`
	TargetIP        *string          `json:"targetIp,omitempty"`
	Status          *Status          `json:"status,omitempty"`
	OverallScore    *float64         `json:"overallScore,omitempty"`
	ToolsUsed       []ToolType       `json:"toolsUsed,omitempty"`
	OpenPorts       []OpenPort       `json:"openPorts,omitempty"`
	ConnectedAssets []ConnectedAsset `json:"connectedAssets,omitempty"`
	Vulnerabilities []Vulnerability  `json:"vulnerabilities,omitempty"`
	AIAnalysis      *string          `json:"aiAnalysis,omitempty"`

	PerformanceReport *PerformanceReport `json:"performanceReport,omitempty"`
	ServerHealth      *ServerHealth      `json:"serverHealth,omitempty"`
	NetworkStats      *NetworkStats      `json:"networkStats,omitempty"`
	SecurityHeaders   []SecurityHeader   `json:"securityHeaders,omitempty"`
	LoadTestResults   []LoadTestPoint    `json:"loadTestResults,omitempty"`
	Topology          *Topology          `json:"topology,omitempty"`
	DeviceFingerprint *DeviceFingerprint `json:"deviceFingerprint,omitempty"`
	GlobalPing        []GlobalPingRegion `json:"globalPing,omitempty"`
	SeleniumReport    []SeleniumScenario `json:"seleniumReport,omitempty"`
	JMeterReport      *JMeterReport      `json:"jmeterReport,omitempty"`
	PacketCapture     []NetworkPacket    `json:"packetCapture,omitempty"`
	ForensicsReport   *ForensicsReport   `json:"forensicsReport,omitempty"`
	IDSReport         *IDSReport         `json:"idsReport,omitempty"`
}

// MergeOver returns base with every present member of p copied over it.
// It is a shallow merge: nested reports are replaced, not combined.
func (p PartialResult) MergeOver(base ScanResult) ScanResult {
	out := base
	if p.ID != nil {
		out.ID = *p.ID
	}
	if p.ProjectName != nil {
		out.ProjectName = *p.ProjectName
	}
	if p.TargetURL != nil {
		out.TargetURL = *p.TargetURL
	}
	if p.TargetIP != nil {
		out.TargetIP = *p.TargetIP
	}
	if p.Status != nil {
		out.Status = *p.Status
	}
	if p.OverallScore != nil {
		out.OverallScore = *p.OverallScore
	}
	if p.ToolsUsed != nil {
		out.ToolsUsed = p.ToolsUsed
	}
	if p.OpenPorts != nil {
		out.OpenPorts = p.OpenPorts
	}
	if p.ConnectedAssets != nil {
		out.ConnectedAssets = p.ConnectedAssets
	}
	if p.Vulnerabilities != nil {
		out.Vulnerabilities = p.Vulnerabilities
	}
	if p.AIAnalysis != nil {
		out.AIAnalysis = *p.AIAnalysis
	}
	if p.PerformanceReport != nil {
		out.PerformanceReport = p.PerformanceReport
	}
	if p.ServerHealth != nil {
		out.ServerHealth = p.ServerHealth
	}
	if p.NetworkStats != nil {
		out.NetworkStats = p.NetworkStats
	}
	if p.SecurityHeaders != nil {
		out.SecurityHeaders = p.SecurityHeaders
	}
	if p.LoadTestResults != nil {
		out.LoadTestResults = p.LoadTestResults
	}
	if p.Topology != nil {
		out.Topology = p.Topology
	}
	if p.DeviceFingerprint != nil {
		out.DeviceFingerprint = p.DeviceFingerprint
	}
	if p.GlobalPing != nil {
		out.GlobalPing = p.GlobalPing
	}
	if p.SeleniumReport != nil {
		out.SeleniumReport = p.SeleniumReport
	}
	if p.JMeterReport != nil {
		out.JMeterReport = p.JMeterReport
	}
	if p.PacketCapture != nil {
		out.PacketCapture = p.PacketCapture
	}
	if p.ForensicsReport != nil {
		out.ForensicsReport = p.ForensicsReport
	}
	if p.IDSReport != nil {
		out.IDSReport = p.IDSReport
	}
	return out
}
