package report

import (
	"fmt"
	"strconv"

	"github.com/jamesruggles/secuscan/internal/model"
)

// Chart ids shared by the results page, the chart renderer and the PDF.
const (
	ChartSeverity         = "chart-severity"
	ChartServerHealth     = "chart-server-health"
	ChartLoadTest         = "chart-load-test"
	ChartWebVitals        = "chart-web-vitals"
	ChartTopology         = "chart-topology"
	ChartJMeterLatency    = "chart-jmeter-latency"
	ChartJMeterThroughput = "chart-jmeter-throughput"
	ChartProtocols        = "chart-protocols"
)

// ChartIDs is the capture order used before export.
var ChartIDs = []string{
	ChartSeverity,
	ChartServerHealth,
	ChartLoadTest,
	ChartWebVitals,
	ChartTopology,
	ChartJMeterLatency,
	ChartJMeterThroughput,
	ChartProtocols,
}

// Snapshots maps a chart id to its PNG image. Missing charts are left out
// of the document.
type Snapshots map[string][]byte

// MaxPacketRows caps the packet table of the traffic section.
const MaxPacketRows = 30

const descriptionLimit = 80

type blockKind int

const (
	blockHeading blockKind = iota
	blockSubheading
	blockParagraph
	blockImage
	blockTable
)

type table struct {
	header []string
	// widths are fractions of the content width.
	widths []float64
	rows   [][]string
}

type block struct {
	kind    blockKind
	text    string
	chartID string
	image   []byte
	table   *table
}

// PlannedSection is one top-level part of the exported document.
type PlannedSection struct {
	Name   string
	blocks []block
}

// Tables returns how many tables the section lays out.
func (s PlannedSection) Tables() int {
	n := 0
	for _, b := range s.blocks {
		if b.kind == blockTable {
			n++
		}
	}
	return n
}

// Images returns the chart ids embedded in the section.
func (s PlannedSection) Images() []string {
	var ids []string
	for _, b := range s.blocks {
		if b.kind == blockImage {
			ids = append(ids, b.chartID)
		}
	}
	return ids
}

func (s PlannedSection) rows(tableIdx int) int {
	n := 0
	for _, b := range s.blocks {
		if b.kind != blockTable {
			continue
		}
		if n == tableIdx {
			return len(b.table.rows)
		}
		n++
	}
	return -1
}

// Plan is the laid-out-independent content of a PDF export.
type Plan struct {
	Target    string
	Timestamp string
	Score     string
	Sections  []PlannedSection
}

// Section returns the planned section with the given name.
func (p Plan) Section(name string) (PlannedSection, bool) {
	for _, s := range p.Sections {
		if s.Name == name {
			return s, true
		}
	}
	return PlannedSection{}, false
}

// Section names of the exported document, in order.
const (
	PDFAnalysis        = "analysis"
	PDFSeverity        = "severity"
	PDFVulnerabilities = "vulnerabilities"
	PDFInfrastructure  = "infrastructure"
	PDFNetwork         = "network"
	PDFSelenium        = "selenium"
	PDFJMeter          = "jmeter"
	PDFTraffic         = "traffic"
)

func (s *PlannedSection) heading(text string) {
	s.blocks = append(s.blocks, block{kind: blockHeading, text: text})
}

func (s *PlannedSection) subheading(text string) {
	s.blocks = append(s.blocks, block{kind: blockSubheading, text: text})
}

func (s *PlannedSection) paragraph(text string) {
	s.blocks = append(s.blocks, block{kind: blockParagraph, text: text})
}

// image adds the snapshot for chartID if one was captured.
func (s *PlannedSection) image(snaps Snapshots, chartID string) {
	if img := snaps[chartID]; len(img) > 0 {
		s.blocks = append(s.blocks, block{kind: blockImage, chartID: chartID, image: img})
	}
}

func (s *PlannedSection) table(t *table) {
	s.blocks = append(s.blocks, block{kind: blockTable, table: t})
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// PlanPDF decides which sections and blocks the export contains. Sections
// without source data are not planned at all.
func PlanPDF(r model.ScanResult, snaps Snapshots) Plan {
	p := Plan{
		Target:    r.TargetURL,
		Timestamp: r.Timestamp.Format("02/01/2006 15:04:05"),
		Score:     num(r.OverallScore) + "/100",
	}

	analysis := PlannedSection{Name: PDFAnalysis}
	analysis.heading("Résumé de l'Analyse IA")
	analysis.paragraph(r.AIAnalysis)
	p.Sections = append(p.Sections, analysis)

	if len(r.Vulnerabilities) > 0 {
		sev := PlannedSection{Name: PDFSeverity}
		sev.heading("Statistiques Vulnérabilités")
		sev.image(snaps, ChartSeverity)
		for _, h := range OrderedHistogram(r.Vulnerabilities) {
			sev.paragraph(fmt.Sprintf("%s: %d", h.Severity, h.Count))
		}
		p.Sections = append(p.Sections, sev)
	}

	vulns := PlannedSection{Name: PDFVulnerabilities}
	vulns.heading("Détail des Vulnérabilités")
	if len(r.Vulnerabilities) == 0 {
		vulns.paragraph("Aucune vulnérabilité détectée.")
	} else {
		t := &table{header: []string{"Sévérité", "Nom", "Outil", "Description"}, widths: []float64{0.13, 0.27, 0.15, 0.45}}
		for _, v := range r.Vulnerabilities {
			t.rows = append(t.rows, []string{string(v.Severity), v.Name, v.ToolDetected, truncate(v.Description, descriptionLimit)})
		}
		vulns.table(t)
	}
	p.Sections = append(p.Sections, vulns)

	if r.ServerHealth != nil || r.PerformanceReport != nil || len(r.LoadTestResults) > 0 {
		p.Sections = append(p.Sections, planInfrastructure(r, snaps))
	}
	if !r.Topology.Empty() || len(r.OpenPorts) > 0 || len(r.ConnectedAssets) > 0 || len(r.SecurityHeaders) > 0 {
		p.Sections = append(p.Sections, planNetwork(r, snaps))
	}
	if len(r.SeleniumReport) > 0 {
		p.Sections = append(p.Sections, planSelenium(r))
	}
	if r.JMeterReport != nil {
		p.Sections = append(p.Sections, planJMeter(r.JMeterReport, snaps))
	}
	if len(r.PacketCapture) > 0 || r.ForensicsReport != nil {
		p.Sections = append(p.Sections, planTraffic(r, snaps))
	}
	return p
}

func planInfrastructure(r model.ScanResult, snaps Snapshots) PlannedSection {
	s := PlannedSection{Name: PDFInfrastructure}
	s.heading("Infrastructure & Performance")
	if h := r.ServerHealth; h != nil {
		s.image(snaps, ChartServerHealth)
		s.paragraph(fmt.Sprintf("CPU: %s%%   RAM: %s%%   OS: %s   Uptime: %s", num(h.CPUUsage), num(h.RAMUsage), h.OS, h.Uptime))
	}
	if len(r.LoadTestResults) > 0 {
		s.image(snaps, ChartLoadTest)
	}
	if perf := r.PerformanceReport; perf != nil {
		s.image(snaps, ChartWebVitals)
		if len(perf.Metrics) > 0 {
			t := &table{header: []string{"Métrique", "Valeur", "Score"}, widths: []float64{0.5, 0.25, 0.25}}
			for _, m := range perf.Metrics {
				t.rows = append(t.rows, []string{m.Name, m.Value, m.Score})
			}
			s.table(t)
		}
	}
	return s
}

func planNetwork(r model.ScanResult, snaps Snapshots) PlannedSection {
	s := PlannedSection{Name: PDFNetwork}
	s.heading("Réseau & Topologie")
	if !r.Topology.Empty() {
		s.image(snaps, ChartTopology)
	}
	if len(r.OpenPorts) > 0 {
		s.subheading("Ports Ouverts")
		t := &table{header: []string{"Port", "Service", "État", "Version"}, widths: []float64{0.15, 0.35, 0.2, 0.3}}
		for _, p := range r.OpenPorts {
			version := p.Version
			if version == "" {
				version = "-"
			}
			t.rows = append(t.rows, []string{strconv.Itoa(p.Port), p.Service, string(p.State), version})
		}
		s.table(t)
	}
	if len(r.ConnectedAssets) > 0 {
		s.subheading("Actifs Connectés & IPs")
		t := &table{header: []string{"Hostname", "IP", "Type", "Localisation"}, widths: []float64{0.35, 0.2, 0.2, 0.25}}
		for _, a := range r.ConnectedAssets {
			t.rows = append(t.rows, []string{a.Hostname, a.IP, string(a.Type), a.Location})
		}
		s.table(t)
	}
	if len(r.SecurityHeaders) > 0 {
		s.subheading("En-têtes de Sécurité")
		t := &table{header: []string{"En-tête", "Statut", "Valeur"}, widths: []float64{0.35, 0.15, 0.5}}
		for _, h := range r.SecurityHeaders {
			t.rows = append(t.rows, []string{h.Name, h.Status, h.Value})
		}
		s.table(t)
	}
	return s
}

func planSelenium(r model.ScanResult) PlannedSection {
	s := PlannedSection{Name: PDFSelenium}
	s.heading("Automatisation (Selenium)")
	for _, sc := range r.SeleniumReport {
		s.subheading(fmt.Sprintf("%s (%s, %s)", sc.Name, sc.Status, sc.Duration))
		if sc.Description != "" {
			s.paragraph(sc.Description)
		}
		t := &table{header: []string{"#", "Action", "Attendu", "Obtenu", "Statut"}, widths: []float64{0.06, 0.28, 0.27, 0.27, 0.12}}
		for _, st := range sc.Steps {
			t.rows = append(t.rows, []string{strconv.Itoa(st.StepNumber), st.Action, st.ExpectedResult, st.ActualResult, st.Status})
		}
		s.table(t)
	}
	return s
}

func planJMeter(j *model.JMeterReport, snaps Snapshots) PlannedSection {
	s := PlannedSection{Name: PDFJMeter}
	s.heading("JMeter Load Test: " + j.TestPlanName)
	s.image(snaps, ChartJMeterLatency)
	s.image(snaps, ChartJMeterThroughput)
	sum := j.Summary
	t := &table{header: []string{"Indicateur", "Valeur"}, widths: []float64{0.5, 0.5}}
	t.rows = [][]string{
		{"Échantillons", strconv.Itoa(sum.TotalSamples)},
		{"Latence moyenne", num(sum.AverageLatency) + " ms"},
		{"Latence min / max", num(sum.MinLatency) + " / " + num(sum.MaxLatency) + " ms"},
		{"Écart type", num(sum.StdDev) + " ms"},
		{"Erreurs", num(sum.ErrorPct) + " %"},
		{"Débit", num(sum.Throughput) + " req/s"},
	}
	for _, pct := range Percentiles(&sum) {
		t.rows = append(t.rows, []string{pct.Label, pct.Text})
	}
	s.table(t)
	return s
}

func planTraffic(r model.ScanResult, snaps Snapshots) PlannedSection {
	s := PlannedSection{Name: PDFTraffic}
	s.heading("Analyse du Trafic")
	if f := r.ForensicsReport; f != nil {
		s.image(snaps, ChartProtocols)
		if len(f.ProtocolStats) > 0 {
			t := &table{header: []string{"Protocole", "%", "Paquets", "Octets"}, widths: []float64{0.4, 0.2, 0.2, 0.2}}
			for _, ps := range f.ProtocolStats {
				t.rows = append(t.rows, []string{ps.Protocol, num(ps.Percent), strconv.Itoa(ps.Packets), strconv.FormatInt(ps.Bytes, 10)})
			}
			s.table(t)
		}
	}
	if len(r.PacketCapture) > 0 {
		packets := r.PacketCapture
		if len(packets) > MaxPacketRows {
			packets = packets[:MaxPacketRows]
		}
		t := &table{header: []string{"No", "Temps", "Source", "Destination", "Proto", "Long.", "Info"}, widths: []float64{0.06, 0.1, 0.16, 0.16, 0.09, 0.08, 0.35}}
		for _, pk := range packets {
			t.rows = append(t.rows, []string{strconv.Itoa(pk.No), pk.Time, pk.Source, pk.Destination, pk.Protocol, strconv.Itoa(pk.Length), pk.Info})
		}
		s.table(t)
	}
	return s
}
