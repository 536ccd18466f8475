package model

type PerformanceMetric struct {
	Name        string `json:"name"`
	Value       string `json:"value"`
	Score       string `json:"score"`
	Description string `json:"description"`
}

type PerformanceOpportunity struct {
	Title       string `json:"title"`
	Savings     string `json:"savings"`
	Description string `json:"description"`
}

type PerformanceReport struct {
	OverallScore  float64                  `json:"overallScore"`
	Metrics       []PerformanceMetric      `json:"metrics"`
	Opportunities []PerformanceOpportunity `json:"opportunities,omitempty"`
}

type ServerHealth struct {
	CPUUsage float64 `json:"cpuUsage"`
	RAMUsage float64 `json:"ramUsage"`
	Uptime   string  `json:"uptime"`
	OS       string  `json:"os"`
}

type NetworkStats struct {
	Ping           float64  `json:"ping"`
	PacketLoss     float64  `json:"packetLoss"`
	DNSProvider    string   `json:"dnsProvider"`
	Traceroute     []string `json:"traceroute"`
	WhoisRegistrar string   `json:"whoisRegistrar,omitempty"`
	WhoisDate      string   `json:"whoisDate,omitempty"`
}

type SecurityHeader struct {
	Name           string `json:"name"`
	Value          string `json:"value"`
	Status         string `json:"status"`
	Recommendation string `json:"recommendation,omitempty"`
}

type LoadTestPoint struct {
	Time              string  `json:"time"`
	RequestsPerSecond float64 `json:"requestsPerSecond"`
	Latency           float64 `json:"latency"`
	Errors            float64 `json:"errors"`
}

type TopologyNode struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Type   string `json:"type"`
	Status string `json:"status"`
}

type TopologyLink struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

type Topology struct {
	Nodes []TopologyNode `json:"nodes"`
	Links []TopologyLink `json:"links"`
}

// Empty reports whether the graph has nothing to draw.
func (t *Topology) Empty() bool {
	return t == nil || len(t.Nodes) == 0
}

type DeviceFingerprint struct {
	OS         string  `json:"os"`
	OSFamily   string  `json:"osFamily,omitempty"`
	DeviceType string  `json:"deviceType"`
	Confidence float64 `json:"confidence"`
	Details    string  `json:"details,omitempty"`
}

type GlobalPingRegion struct {
	Region   string  `json:"region"`
	Location string  `json:"location"`
	Latency  float64 `json:"latency"`
	Status   string  `json:"status"`
}

type SeleniumStep struct {
	StepNumber     int    `json:"stepNumber"`
	Action         string `json:"action"`
	ExpectedResult string `json:"expectedResult"`
	ActualResult   string `json:"actualResult"`
	Status         string `json:"status"`
	ScreenshotStub bool   `json:"screenshotStub,omitempty"`
}

type SeleniumScenario struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Duration    string         `json:"duration"`
	Status      string         `json:"status"`
	Steps       []SeleniumStep `json:"steps"`
}

type JMeterSample struct {
	Timestamp     string  `json:"timestamp"`
	ActiveThreads int     `json:"activeThreads"`
	Latency       float64 `json:"latency"`
	Throughput    float64 `json:"throughput"`
	ErrorRate     float64 `json:"errorRate"`
}

type JMeterSummary struct {
	TotalSamples   int     `json:"totalSamples"`
	AverageLatency float64 `json:"averageLatency"`
	MinLatency     float64 `json:"minLatency"`
	MaxLatency     float64 `json:"maxLatency"`
	StdDev         float64 `json:"stdDev"`
	ErrorPct       float64 `json:"errorPct"`
	Throughput     float64 `json:"throughput"`
	P90            float64 `json:"p90"`
	P95            float64 `json:"p95"`
	P99            float64 `json:"p99"`
}

type JMeterReport struct {
	TestPlanName string         `json:"testPlanName"`
	Duration     string         `json:"duration"`
	Summary      JMeterSummary  `json:"summary"`
	Samples      []JMeterSample `json:"samples"`
}

type PacketDetails struct {
	Frame       string `json:"frame"`
	Ethernet    string `json:"ethernet"`
	IP          string `json:"ip"`
	Transport   string `json:"transport"`
	Application string `json:"application,omitempty"`
}

type NetworkPacket struct {
	No          int            `json:"no"`
	Time        string         `json:"time"`
	Source      string         `json:"source"`
	Destination string         `json:"destination"`
	Protocol    string         `json:"protocol"`
	Length      int            `json:"length"`
	Info        string         `json:"info"`
	HexDump     string         `json:"hexDump,omitempty"`
	Details     *PacketDetails `json:"details,omitempty"`
}

type ProtocolStat struct {
	Protocol string  `json:"protocol"`
	Percent  float64 `json:"percent"`
	Packets  int     `json:"packets"`
	Bytes    int64   `json:"bytes"`
}

type ExpertInfo struct {
	Severity string `json:"severity"`
	Group    string `json:"group"`
	Protocol string `json:"protocol"`
	Summary  string `json:"summary"`
}

type ReconstructedStream struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags,omitempty"`
}

type ForensicsReport struct {
	ProtocolStats        []ProtocolStat        `json:"protocolStats"`
	ExpertIssues         []ExpertInfo          `json:"expertIssues"`
	ReconstructedStreams []ReconstructedStream `json:"reconstructedStreams"`
}

type IDSAlert struct {
	Timestamp      string `json:"timestamp"`
	SID            string `json:"sid"`
	Signature      string `json:"signature"`
	Classification string `json:"classification"`
	Priority       int    `json:"priority"`
	Protocol       string `json:"protocol"`
	SourceIP       string `json:"sourceIp"`
	SourcePort     int    `json:"sourcePort"`
	DestIP         string `json:"destIp"`
	DestPort       int    `json:"destPort"`
	Action         string `json:"action"`
}

type AlertsByPriority struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

type IDSReport struct {
	TotalAlerts      int              `json:"totalAlerts"`
	AlertsByPriority AlertsByPriority `json:"alertsByPriority"`
	BlockedCount     int              `json:"blockedCount"`
	Alerts           []IDSAlert       `json:"alerts"`
}
