package charts

import (
	"bytes"
	"fmt"

	"github.com/fogleman/gg"

	"github.com/jamesruggles/secuscan/internal/model"
)

// Nodes are laid out left to right by network tier.
var tiers = map[string]int{
	"internet":      0,
	"firewall":      1,
	"load_balancer": 2,
	"server":        3,
	"database":      4,
}

const nodeRadius = 20.0

type point struct{ x, y float64 }

func tierOf(nodeType string) int {
	if t, ok := tiers[nodeType]; ok {
		return t
	}
	return tiers["server"]
}

func layoutTopology(t *model.Topology, w, h float64) map[string]point {
	columns := make(map[int][]string)
	maxTier := 0
	for _, n := range t.Nodes {
		tier := tierOf(n.Type)
		columns[tier] = append(columns[tier], n.ID)
		maxTier = max(maxTier, tier)
	}

	pos := make(map[string]point, len(t.Nodes))
	colW := w / float64(maxTier+1)
	for tier, ids := range columns {
		rowH := h / float64(len(ids)+1)
		for i, id := range ids {
			pos[id] = point{x: colW*float64(tier) + colW/2, y: rowH * float64(i+1)}
		}
	}
	return pos
}

func topology(t *model.Topology) ([]byte, error) {
	if t.Empty() {
		return nil, ErrNoData
	}
	dc := gg.NewContext(width, height)
	dc.SetHexColor("#0f172a")
	dc.Clear()

	pos := layoutTopology(t, width, height)

	dc.SetHexColor("#475569")
	dc.SetLineWidth(2)
	for _, l := range t.Links {
		a, okA := pos[l.Source]
		b, okB := pos[l.Target]
		if !okA || !okB {
			continue
		}
		dc.DrawLine(a.x, a.y, b.x, b.y)
		dc.Stroke()
	}

	for _, n := range t.Nodes {
		p := pos[n.ID]
		if n.Status == "inactive" {
			dc.SetHexColor("#64748b")
		} else {
			dc.SetHexColor("#10b981")
		}
		dc.DrawCircle(p.x, p.y, nodeRadius)
		dc.Fill()

		dc.SetHexColor("#e2e8f0")
		label := n.Label
		if label == "" {
			label = n.ID
		}
		dc.DrawStringAnchored(label, p.x, p.y+nodeRadius+12, 0.5, 0.5)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encoding topology: %w", err)
	}
	return buf.Bytes(), nil
}
