package model

// ToolType names a capability the user can select. Selecting one only
// steers acquisition; it does not guarantee the matching report is present.
type ToolType string

const (
	ToolNmap          ToolType = "Nmap"
	ToolNikto         ToolType = "Nikto"
	ToolOpenVAS       ToolType = "OpenVAS"
	ToolOWASPZAP      ToolType = "OWASP ZAP"
	ToolSQLMap        ToolType = "SQLMap"
	ToolWPScan        ToolType = "WpScan"
	ToolSSLLabs       ToolType = "SSL Labs"
	ToolWhatWeb       ToolType = "WhatWeb"
	ToolWappalyzer    ToolType = "Wappalyzer"
	ToolGobuster      ToolType = "Gobuster"
	ToolLighthouse    ToolType = "Google Lighthouse"
	ToolPing          ToolType = "Ping / Latency"
	ToolTraceroute    ToolType = "Traceroute"
	ToolWhois         ToolType = "Whois Info"
	ToolHeaders       ToolType = "Security Headers"
	ToolServerHealth  ToolType = "Server Health (Simulated)"
	ToolTopology      ToolType = "Network Topology"
	ToolGlobalPing    ToolType = "Global Ping / Outage"
	ToolSelenium      ToolType = "Selenium Automation"
	ToolJMeter        ToolType = "Apache JMeter"
	ToolWireshark     ToolType = "Wireshark Traffic Analysis"
	ToolForensics     ToolType = "Network Forensics / DPI"
	ToolSnortSuricata ToolType = "Snort / Suricata (IDS/IPS)"
)
