package capture

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesruggles/secuscan/internal/charts"
	"github.com/jamesruggles/secuscan/internal/model"
	"github.com/jamesruggles/secuscan/internal/report"
)

type scriptedSource struct {
	calls  []string
	images map[string][]byte
	errs   map[string]error
}

func (s *scriptedSource) Capture(_ context.Context, _ model.ScanResult, chartID string) ([]byte, error) {
	s.calls = append(s.calls, chartID)
	if err := s.errs[chartID]; err != nil {
		return nil, err
	}
	return s.images[chartID], nil
}

func TestAllCapturesInOrderAndSkipsFailures(t *testing.T) {
	src := &scriptedSource{
		images: map[string][]byte{
			report.ChartSeverity: []byte("png-1"),
			report.ChartLoadTest: []byte("png-2"),
		},
		errs: map[string]error{
			report.ChartServerHealth: errors.New("rasterization failed"),
			report.ChartTopology:     charts.ErrNoData,
		},
	}

	snaps := All(context.Background(), src, model.ScanResult{ID: "1"})
	assert.Equal(t, report.ChartIDs, src.calls)
	assert.Equal(t, report.Snapshots{
		report.ChartSeverity: []byte("png-1"),
		report.ChartLoadTest: []byte("png-2"),
	}, snaps)
}

func TestAllStopsWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := &scriptedSource{}
	assert.Empty(t, All(ctx, src, model.ScanResult{}))
	assert.Empty(t, src.calls)
}

func TestStaticRendersCharts(t *testing.T) {
	r := model.ScanResult{Vulnerabilities: []model.Vulnerability{{Severity: model.SeverityHigh}}}
	snaps := All(context.Background(), Static{}, r)
	assert.Contains(t, snaps, report.ChartSeverity)
	assert.NotContains(t, snaps, report.ChartJMeterLatency)
}

func TestBrowserReportURL(t *testing.T) {
	b := NewBrowser("http://127.0.0.1:8080/", "", 0)
	assert.Equal(t, "http://127.0.0.1:8080/report/42", b.ReportURL("42"))
}

func findChrome(t *testing.T) string {
	for _, name := range []string{"google-chrome", "chromium", "chromium-browser", "headless-shell"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	t.Skip("no chrome binary available")
	return ""
}

func TestBrowserCapturesNodeAndReportsMissing(t *testing.T) {
	chrome := findChrome(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body><div id="chart-severity" style="width:200px;height:100px;background:#10b981"></div></body></html>`))
	}))
	defer srv.Close()

	b := NewBrowser(srv.URL, chrome, 20*time.Second)
	defer b.Close()

	img, err := b.Capture(context.Background(), model.ScanResult{ID: "1"}, report.ChartSeverity)
	if err != nil && errors.Is(err, errBrowserStart) {
		t.Skipf("environment cannot run chrome: %v", err)
	}
	require.NoError(t, err)
	assert.NotEmpty(t, img)

	_, err = b.Capture(context.Background(), model.ScanResult{ID: "1"}, report.ChartTopology)
	assert.ErrorIs(t, err, ErrNodeMissing)
}

func TestPageKeyChangesWhenScanCompletes(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	running := model.ScanResult{ID: "1", Status: model.StatusRunning, Timestamp: start}
	done := running
	done.Status = model.StatusCompleted
	done.Timestamp = start.Add(30 * time.Second)

	assert.Equal(t, pageKey(running), pageKey(running))
	assert.NotEqual(t, pageKey(running), pageKey(done))
}

func TestBrowserReloadsCompletedScan(t *testing.T) {
	chrome := findChrome(t)
	var completed atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		if !completed.Load() {
			w.Write([]byte(`<html><body><p>running</p></body></html>`))
			return
		}
		w.Write([]byte(`<html><body><div id="chart-severity" style="width:200px;height:100px;background:#10b981"></div></body></html>`))
	}))
	defer srv.Close()

	b := NewBrowser(srv.URL, chrome, 20*time.Second)
	defer b.Close()

	scan := model.ScanResult{ID: "1", Status: model.StatusRunning, Timestamp: time.Now()}
	_, err := b.Capture(context.Background(), scan, report.ChartSeverity)
	if err != nil && errors.Is(err, errBrowserStart) {
		t.Skipf("environment cannot run chrome: %v", err)
	}
	require.ErrorIs(t, err, ErrNodeMissing)

	completed.Store(true)
	scan.Status = model.StatusCompleted
	scan.Timestamp = scan.Timestamp.Add(time.Second)
	img, err := b.Capture(context.Background(), scan, report.ChartSeverity)
	require.NoError(t, err)
	assert.NotEmpty(t, img)
}
