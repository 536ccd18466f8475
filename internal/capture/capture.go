// Package capture collects chart snapshots for the PDF export.
package capture

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jamesruggles/secuscan/internal/charts"
	"github.com/jamesruggles/secuscan/internal/model"
	"github.com/jamesruggles/secuscan/internal/report"
)

// Source produces the PNG image of one chart of a scan.
type Source interface {
	Capture(ctx context.Context, r model.ScanResult, chartID string) ([]byte, error)
}

// Static renders charts in-process.
type Static struct{}

func (Static) Capture(_ context.Context, r model.ScanResult, chartID string) ([]byte, error) {
	return charts.Render(r, chartID)
}

// All captures every export chart in order, one at a time. A chart that
// fails is logged and left out of the result.
func All(ctx context.Context, src Source, r model.ScanResult) report.Snapshots {
	snaps := make(report.Snapshots)
	for _, id := range report.ChartIDs {
		if err := ctx.Err(); err != nil {
			slog.Warn("chart capture interrupted", "scan_id", r.ID, "error", err)
			break
		}
		img, err := src.Capture(ctx, r, id)
		switch {
		case errors.Is(err, charts.ErrNoData):
			slog.Debug("no data for chart", "scan_id", r.ID, "chart", id)
			continue
		case err != nil:
			slog.Warn("chart capture failed", "scan_id", r.ID, "chart", id, "error", err)
			continue
		case len(img) == 0:
			slog.Warn("chart capture returned no image", "scan_id", r.ID, "chart", id)
			continue
		}
		snaps[id] = img
	}
	return snaps
}
