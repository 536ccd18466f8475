package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
	SeverityInfo     Severity = "INFO"
)

// Severities lists every level from most to least severe.
var Severities = []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo}

// French labels written by older dashboard builds.
var legacySeverities = map[string]Severity{
	"CRITIQUE": SeverityCritical,
	"ÉLEVÉE":   SeverityHigh,
	"ELEVEE":   SeverityHigh,
	"MOYENNE":  SeverityMedium,
	"FAIBLE":   SeverityLow,
}

// ParseSeverity accepts canonical and legacy labels, case-insensitively.
func ParseSeverity(s string) (Severity, error) {
	up := strings.ToUpper(strings.TrimSpace(s))
	for _, sev := range Severities {
		if up == string(sev) {
			return sev, nil
		}
	}
	if sev, ok := legacySeverities[up]; ok {
		return sev, nil
	}
	return "", fmt.Errorf("unknown severity %q", s)
}

// Weight orders severities for sorting; unknown values weigh 0.
func (s Severity) Weight() int {
	switch s {
	case SeverityCritical:
		return 5
	case SeverityHigh:
		return 4
	case SeverityMedium:
		return 3
	case SeverityLow:
		return 2
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}

// Color is the display colour used by charts and tables.
func (s Severity) Color() string {
	switch s {
	case SeverityCritical:
		return "#ef4444"
	case SeverityHigh:
		return "#f97316"
	case SeverityMedium:
		return "#eab308"
	case SeverityLow:
		return "#3b82f6"
	default:
		return "#94a3b8"
	}
}

func (s *Severity) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	sev, err := ParseSeverity(raw)
	if err != nil {
		// Keep unknown labels verbatim so they still render.
		*s = Severity(raw)
		return nil
	}
	*s = sev
	return nil
}
