package tools

import (
	"strings"

	"github.com/jamesruggles/secuscan/internal/model"
)

type Category string

const (
	CategorySecurity       Category = "security"
	CategoryWeb            Category = "web"
	CategoryNetwork        Category = "network"
	CategoryInfrastructure Category = "infrastructure"
	CategoryAutomation     Category = "automation"
	CategoryTraffic        Category = "traffic"
)

// ToolStatus is one entry of the module grid shown on the dashboard.
type ToolStatus struct {
	Name     model.ToolType `json:"name"`
	Category Category       `json:"category"`
	Report   string         `json:"report,omitempty"`
	Active   bool           `json:"active"`
}

var catalog = []struct {
	tool     model.ToolType
	category Category
	report   string
}{
	{model.ToolNmap, CategorySecurity, "openPorts"},
	{model.ToolNikto, CategorySecurity, "vulnerabilities"},
	{model.ToolOpenVAS, CategorySecurity, "vulnerabilities"},
	{model.ToolOWASPZAP, CategorySecurity, "vulnerabilities"},
	{model.ToolSQLMap, CategorySecurity, "vulnerabilities"},
	{model.ToolWPScan, CategoryWeb, "vulnerabilities"},
	{model.ToolSSLLabs, CategoryWeb, "securityHeaders"},
	{model.ToolWhatWeb, CategoryWeb, "deviceFingerprint"},
	{model.ToolWappalyzer, CategoryWeb, "deviceFingerprint"},
	{model.ToolGobuster, CategoryWeb, "vulnerabilities"},
	{model.ToolLighthouse, CategoryWeb, "performanceReport"},
	{model.ToolPing, CategoryNetwork, "networkStats"},
	{model.ToolTraceroute, CategoryNetwork, "networkStats"},
	{model.ToolWhois, CategoryNetwork, "networkStats"},
	{model.ToolHeaders, CategoryWeb, "securityHeaders"},
	{model.ToolServerHealth, CategoryInfrastructure, "serverHealth"},
	{model.ToolTopology, CategoryNetwork, "topology"},
	{model.ToolGlobalPing, CategoryNetwork, "globalPing"},
	{model.ToolSelenium, CategoryAutomation, "seleniumReport"},
	{model.ToolJMeter, CategoryAutomation, "jmeterReport"},
	{model.ToolWireshark, CategoryTraffic, "packetCapture"},
	{model.ToolForensics, CategoryTraffic, "forensicsReport"},
	{model.ToolSnortSuricata, CategoryTraffic, "idsReport"},
}

// Catalog lists every selectable tool. All of them are simulated, so every
// entry reports itself active.
func Catalog() []ToolStatus {
	statuses := make([]ToolStatus, 0, len(catalog))
	for _, c := range catalog {
		statuses = append(statuses, ToolStatus{
			Name:     c.tool,
			Category: c.category,
			Report:   c.report,
			Active:   true,
		})
	}
	return statuses
}

// Lookup resolves a tool by exact name, falling back to a case-insensitive
// match so CLI input like "nmap" works.
func Lookup(name string) (model.ToolType, bool) {
	name = strings.TrimSpace(name)
	for _, c := range catalog {
		if string(c.tool) == name {
			return c.tool, true
		}
	}
	for _, c := range catalog {
		if strings.EqualFold(string(c.tool), name) {
			return c.tool, true
		}
	}
	return "", false
}

// ParseList splits a comma-separated tool list, keeping selection order and
// dropping duplicates. Unknown names are returned separately.
func ParseList(list string) ([]model.ToolType, []string) {
	var (
		selected []model.ToolType
		unknown  []string
	)
	seen := make(map[model.ToolType]bool)
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		tool, ok := Lookup(part)
		if !ok {
			unknown = append(unknown, part)
			continue
		}
		if seen[tool] {
			continue
		}
		seen[tool] = true
		selected = append(selected, tool)
	}
	return selected, unknown
}
