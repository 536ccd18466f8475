package report

import "github.com/jamesruggles/secuscan/internal/model"

// Section is the common header of every results view. When Available is
// false the view renders EmptyMessage instead of its content.
type Section struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Available    bool   `json:"available"`
	EmptyMessage string `json:"emptyMessage,omitempty"`
}

// Section ids, in tab order.
const (
	SectionOverview       = "overview"
	SectionInfrastructure = "infrastructure"
	SectionNetwork        = "network"
	SectionTopology       = "topology"
	SectionTraffic        = "traffic"
	SectionIDS            = "ids"
	SectionAutomation     = "automation"
	SectionLoadTest       = "load-test"
)

const overviewAssetLimit = 5

type OverviewView struct {
	Section
	Score           float64                  `json:"score"`
	Band            ScoreBand                `json:"band"`
	Analysis        string                   `json:"analysis"`
	Histogram       []SeverityCount          `json:"histogram"`
	Vulnerabilities []model.Vulnerability    `json:"vulnerabilities"`
	OpenPorts       []model.OpenPort         `json:"openPorts"`
	Assets          []model.ConnectedAsset   `json:"assets"`
	MoreAssets      int                      `json:"moreAssets"`
	AssetsEmpty     string                   `json:"assetsEmpty,omitempty"`
	Performance     *model.PerformanceReport `json:"performance,omitempty"`
}

type InfrastructureView struct {
	Section
	Health        *model.ServerHealth       `json:"health,omitempty"`
	HealthEmpty   string                    `json:"healthEmpty,omitempty"`
	Load          *Load                     `json:"load,omitempty"`
	LoadTest      []model.LoadTestPoint     `json:"loadTest"`
	LoadTestEmpty string                    `json:"loadTestEmpty,omitempty"`
	Vitals        []VitalPoint              `json:"vitals"`
	Metrics       []model.PerformanceMetric `json:"metrics"`
}

type NetworkView struct {
	Section
	Stats       *model.NetworkStats    `json:"stats,omitempty"`
	Assets      []model.ConnectedAsset `json:"assets"`
	AssetsEmpty string                 `json:"assetsEmpty,omitempty"`
	Headers     []model.SecurityHeader `json:"headers"`
}

type TopologyView struct {
	Section
	Topology         *model.Topology          `json:"topology,omitempty"`
	Fingerprint      *model.DeviceFingerprint `json:"fingerprint,omitempty"`
	FingerprintEmpty string                   `json:"fingerprintEmpty,omitempty"`
	GlobalPing       []model.GlobalPingRegion `json:"globalPing"`
	GlobalPingEmpty  string                   `json:"globalPingEmpty,omitempty"`
}

// PacketRow is a captured packet with its display class.
type PacketRow struct {
	model.NetworkPacket
	Category PacketCategory `json:"category"`
	Color    string         `json:"color"`
}

type TrafficView struct {
	Section
	Packets   []PacketRow            `json:"packets"`
	Forensics *model.ForensicsReport `json:"forensics,omitempty"`
}

type IDSView struct {
	Section
	Report *model.IDSReport `json:"report,omitempty"`
}

type AutomationView struct {
	Section
	Scenarios []model.SeleniumScenario `json:"scenarios"`
}

type LoadTestView struct {
	Section
	Report      *model.JMeterReport `json:"report,omitempty"`
	Percentiles []PercentileDisplay `json:"percentiles"`
}

// Views is the full tabbed results page for one scan.
type Views struct {
	ScanID         string             `json:"scanId"`
	Target         string             `json:"target"`
	Status         model.Status       `json:"status"`
	Overview       OverviewView       `json:"overview"`
	Infrastructure InfrastructureView `json:"infrastructure"`
	Network        NetworkView        `json:"network"`
	Topology       TopologyView       `json:"topology"`
	Traffic        TrafficView        `json:"traffic"`
	IDS            IDSView            `json:"ids"`
	Automation     AutomationView     `json:"automation"`
	LoadTest       LoadTestView       `json:"loadTest"`
}

// Sections lists the section headers in tab order.
func (v Views) Sections() []Section {
	return []Section{
		v.Overview.Section,
		v.Infrastructure.Section,
		v.Network.Section,
		v.Topology.Section,
		v.Traffic.Section,
		v.IDS.Section,
		v.Automation.Section,
		v.LoadTest.Section,
	}
}

func section(id, title string, available bool, empty string) Section {
	s := Section{ID: id, Title: title, Available: available}
	if !available {
		s.EmptyMessage = empty
	}
	return s
}

func emptyUnless(ok bool, msg string) string {
	if ok {
		return ""
	}
	return msg
}

// BuildViews derives every results section from r. r is not modified and
// any optional report may be absent.
func BuildViews(r model.ScanResult) Views {
	return Views{
		ScanID:         r.ID,
		Target:         r.TargetURL,
		Status:         r.Status,
		Overview:       overviewView(r),
		Infrastructure: infrastructureView(r),
		Network:        networkView(r),
		Topology:       topologyView(r),
		Traffic:        trafficView(r),
		IDS:            idsView(r),
		Automation:     automationView(r),
		LoadTest:       loadTestView(r),
	}
}

func overviewView(r model.ScanResult) OverviewView {
	assets := r.ConnectedAssets
	more := 0
	if len(assets) > overviewAssetLimit {
		more = len(assets) - overviewAssetLimit
		assets = assets[:overviewAssetLimit]
	}
	return OverviewView{
		Section:         section(SectionOverview, "Overview", true, ""),
		Score:           r.OverallScore,
		Band:            BandFor(r.OverallScore),
		Analysis:        r.AIAnalysis,
		Histogram:       OrderedHistogram(r.Vulnerabilities),
		Vulnerabilities: nonNil(r.Vulnerabilities),
		OpenPorts:       nonNil(r.OpenPorts),
		Assets:          nonNil(assets),
		MoreAssets:      more,
		AssetsEmpty:     emptyUnless(len(r.ConnectedAssets) > 0, "Aucun actif connecté."),
		Performance:     r.PerformanceReport,
	}
}

func infrastructureView(r model.ScanResult) InfrastructureView {
	available := r.ServerHealth != nil || r.PerformanceReport != nil || len(r.LoadTestResults) > 0
	v := InfrastructureView{
		Section:       section(SectionInfrastructure, "Infrastructure", available, "Données d'infrastructure non disponibles."),
		Health:        r.ServerHealth,
		HealthEmpty:   emptyUnless(r.ServerHealth != nil, "Données non disponibles"),
		Load:          ServerLoad(r.ServerHealth),
		LoadTest:      nonNil(r.LoadTestResults),
		LoadTestEmpty: emptyUnless(len(r.LoadTestResults) > 0, "Aucune donnée de test de charge."),
		Vitals:        PerformanceChartData(r.PerformanceReport),
		Metrics:       []model.PerformanceMetric{},
	}
	if r.PerformanceReport != nil {
		v.Metrics = nonNil(r.PerformanceReport.Metrics)
	}
	return v
}

func networkView(r model.ScanResult) NetworkView {
	available := r.NetworkStats != nil || len(r.ConnectedAssets) > 0 || len(r.SecurityHeaders) > 0
	return NetworkView{
		Section:     section(SectionNetwork, "Network", available, "Données réseau non disponibles."),
		Stats:       r.NetworkStats,
		Assets:      nonNil(r.ConnectedAssets),
		AssetsEmpty: emptyUnless(len(r.ConnectedAssets) > 0, "Aucun actif connecté détecté."),
		Headers:     nonNil(r.SecurityHeaders),
	}
}

func topologyView(r model.ScanResult) TopologyView {
	available := !r.Topology.Empty() || r.DeviceFingerprint != nil || len(r.GlobalPing) > 0
	return TopologyView{
		Section:          section(SectionTopology, "Topology", available, "Topologie non disponible."),
		Topology:         r.Topology,
		Fingerprint:      r.DeviceFingerprint,
		FingerprintEmpty: emptyUnless(r.DeviceFingerprint != nil, "Fingerprint non disponible."),
		GlobalPing:       nonNil(r.GlobalPing),
		GlobalPingEmpty:  emptyUnless(len(r.GlobalPing) > 0, "Ping mondial non disponible."),
	}
}

func trafficView(r model.ScanResult) TrafficView {
	rows := make([]PacketRow, 0, len(r.PacketCapture))
	for _, p := range r.PacketCapture {
		c := ClassifyPacket(p.Protocol)
		rows = append(rows, PacketRow{NetworkPacket: p, Category: c, Color: c.Color()})
	}
	available := len(rows) > 0 || r.ForensicsReport != nil
	return TrafficView{
		Section:   section(SectionTraffic, "Traffic", available, "Aucune capture réseau disponible."),
		Packets:   rows,
		Forensics: r.ForensicsReport,
	}
}

func idsView(r model.ScanResult) IDSView {
	return IDSView{
		Section: section(SectionIDS, "IDS", r.IDSReport != nil, "Aucun rapport IDS disponible."),
		Report:  r.IDSReport,
	}
}

func automationView(r model.ScanResult) AutomationView {
	return AutomationView{
		Section:   section(SectionAutomation, "Automation", len(r.SeleniumReport) > 0, "Aucun rapport Selenium disponible."),
		Scenarios: nonNil(r.SeleniumReport),
	}
}

func loadTestView(r model.ScanResult) LoadTestView {
	v := LoadTestView{
		Section:     section(SectionLoadTest, "Load Test", r.JMeterReport != nil, "Aucun rapport JMeter disponible pour ce scan."),
		Report:      r.JMeterReport,
		Percentiles: []PercentileDisplay{},
	}
	if r.JMeterReport != nil {
		v.Percentiles = Percentiles(&r.JMeterReport.Summary)
	}
	return v
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
