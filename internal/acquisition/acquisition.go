// Package acquisition fabricates scan report content by prompting a
// generative model with the scan request and a strict response schema.
package acquisition

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jamesruggles/secuscan/internal/enrich"
	"github.com/jamesruggles/secuscan/internal/model"
)

// Generator produces report content for a request. An empty vulnerability
// list is a valid result; errors are reserved for transport or parse
// failures.
type Generator interface {
	GenerateReport(ctx context.Context, req model.ScanRequest) (*model.PartialResult, error)
}

// Enricher contextualizes a target before prompting. It must not fail.
type Enricher interface {
	Lookup(ctx context.Context, target string) enrich.Info
}

var ErrEmptyResponse = errors.New("no response from model")

// StripFences removes markdown code fences the model sometimes wraps
// around its JSON.
func StripFences(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}

// ParseReport decodes model output into a partial result and fills the
// list members the dashboard always expects with empty lists.
func ParseReport(text string) (*model.PartialResult, error) {
	clean := StripFences(text)
	if clean == "" {
		return nil, ErrEmptyResponse
	}

	var p model.PartialResult
	if err := json.Unmarshal([]byte(clean), &p); err != nil {
		return nil, fmt.Errorf("parse model response: %w", err)
	}

	if p.ConnectedAssets == nil {
		p.ConnectedAssets = []model.ConnectedAsset{}
	}
	if p.Vulnerabilities == nil {
		p.Vulnerabilities = []model.Vulnerability{}
	}
	if p.LoadTestResults == nil {
		p.LoadTestResults = []model.LoadTestPoint{}
	}
	if p.SecurityHeaders == nil {
		p.SecurityHeaders = []model.SecurityHeader{}
	}
	if p.GlobalPing == nil {
		p.GlobalPing = []model.GlobalPingRegion{}
	}
	if p.PacketCapture == nil {
		p.PacketCapture = []model.NetworkPacket{}
	}
	return &p, nil
}
