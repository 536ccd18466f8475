package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesruggles/secuscan/internal/config"
	"github.com/jamesruggles/secuscan/internal/history"
	"github.com/jamesruggles/secuscan/internal/model"
	"github.com/jamesruggles/secuscan/internal/report"
	"github.com/jamesruggles/secuscan/internal/scanner"
	"github.com/jamesruggles/secuscan/internal/tools"
)

// stubGenerator waits for release, when set, then returns partial.
type stubGenerator struct {
	release chan struct{}
	partial *model.PartialResult
}

func (g *stubGenerator) GenerateReport(ctx context.Context, _ model.ScanRequest) (*model.PartialResult, error) {
	if g.release != nil {
		<-g.release
	}
	return g.partial, nil
}

func samplePartial() *model.PartialResult {
	ip := "93.184.216.34"
	score := 72.0
	analysis := "Surface d'attaque modérée."
	return &model.PartialResult{
		TargetIP:     &ip,
		OverallScore: &score,
		AIAnalysis:   &analysis,
		OpenPorts: []model.OpenPort{
			{Port: 443, Service: "https", Version: "nginx 1.25", State: model.PortOpen},
			{Port: 22, Service: "ssh", State: model.PortFiltered},
		},
		Vulnerabilities: []model.Vulnerability{
			{Name: "Missing HSTS", Severity: model.SeverityMedium, Description: "No HSTS header.", ToolDetected: "Security Headers"},
		},
		ServerHealth: &model.ServerHealth{CPUUsage: 35, RAMUsage: 60, Uptime: "12 days", OS: "Linux"},
	}
}

type fixture struct {
	srv  *Server
	orch *scanner.Orchestrator
	http *httptest.Server
}

func newFixture(t *testing.T, gen *stubGenerator) *fixture {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 8080, PublicURL: "https://scan.example.com"},
	}
	orch := scanner.New(history.NewStore(history.NewMemoryKV(), "secuscan_history"), gen, nil)
	srv, err := New(cfg, orch, nil)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
	})
	return &fixture{srv: srv, orch: orch, http: ts}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			rd = strings.NewReader(b)
		default:
			data, err := json.Marshal(b)
			require.NoError(t, err)
			rd = bytes.NewReader(data)
		}
	}
	req, err := http.NewRequest(method, f.http.URL+path, rd)
	require.NoError(t, err)
	resp, err := f.http.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func readAll(t *testing.T, resp *http.Response) []byte {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return data
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

// completed submits a scan and waits for it to be reconciled.
func (f *fixture) completed(t *testing.T) string {
	t.Helper()
	resp := f.do(t, http.MethodPost, "/api/scans", model.ScanRequest{
		ProjectName: "Audit",
		Target:      "example.com",
		Tools:       []model.ToolType{model.ToolNmap, model.ToolServerHealth},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := decode[map[string]string](t, resp)["id"]
	require.NotEmpty(t, id)
	f.orch.Wait()
	return id
}

func TestCreateScanRejectsBadRequests(t *testing.T) {
	f := newFixture(t, &stubGenerator{partial: samplePartial()})

	tests := []struct {
		name string
		body any
	}{
		{"invalid json", "{"},
		{"missing target", model.ScanRequest{Tools: []model.ToolType{model.ToolNmap}}},
		{"blank target", model.ScanRequest{Target: "   ", Tools: []model.ToolType{model.ToolNmap}}},
		{"no tools", model.ScanRequest{Target: "example.com"}},
		{"unknown tool", model.ScanRequest{Target: "example.com", Tools: []model.ToolType{"Metasploit"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := f.do(t, http.MethodPost, "/api/scans", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.NotEmpty(t, decode[map[string]string](t, resp)["error"])
		})
	}
	assert.Empty(t, f.orch.List())
}

func TestScanRunsThenCompletes(t *testing.T) {
	gen := &stubGenerator{release: make(chan struct{}), partial: samplePartial()}
	f := newFixture(t, gen)

	resp := f.do(t, http.MethodPost, "/api/scans", map[string]any{
		"target": " example.com ",
		"tools":  []string{"nmap"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := decode[map[string]string](t, resp)["id"]

	running := decode[model.ScanResult](t, f.do(t, http.MethodGet, "/api/scans/"+id, nil))
	assert.Equal(t, model.StatusRunning, running.Status)
	assert.Equal(t, "example.com", running.TargetURL)
	assert.Equal(t, []model.ToolType{model.ToolNmap}, running.ToolsUsed)

	close(gen.release)
	f.orch.Wait()

	done := decode[model.ScanResult](t, f.do(t, http.MethodGet, "/api/scans/"+id, nil))
	assert.Equal(t, model.StatusCompleted, done.Status)
	assert.Equal(t, "93.184.216.34", done.TargetIP)
	assert.Equal(t, 72.0, done.OverallScore)

	list := decode[[]model.ScanResult](t, f.do(t, http.MethodGet, "/api/scans", nil))
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)
}

func TestUnknownScanIsNotFound(t *testing.T) {
	f := newFixture(t, &stubGenerator{partial: samplePartial()})

	for _, path := range []string{
		"/api/scans/404",
		"/api/scans/404/views",
		"/api/scans/404/share",
		"/api/scans/404/export/csv",
		"/charts/404/chart-severity.png",
		"/report/404",
	} {
		resp := f.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}
	resp := f.do(t, http.MethodDelete, "/api/scans/404", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteScan(t *testing.T) {
	f := newFixture(t, &stubGenerator{partial: samplePartial()})
	keep := f.completed(t)
	drop := f.completed(t)

	resp := f.do(t, http.MethodDelete, "/api/scans/"+drop, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	list := decode[[]model.ScanResult](t, f.do(t, http.MethodGet, "/api/scans", nil))
	require.Len(t, list, 1)
	assert.Equal(t, keep, list[0].ID)
}

func TestRefreshReturnsHistory(t *testing.T) {
	f := newFixture(t, &stubGenerator{partial: samplePartial()})
	id := f.completed(t)

	resp := f.do(t, http.MethodPost, "/api/scans/refresh", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[[]model.ScanResult](t, resp)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)
}

func TestViewsAndShare(t *testing.T) {
	f := newFixture(t, &stubGenerator{partial: samplePartial()})
	id := f.completed(t)

	views := decode[report.Views](t, f.do(t, http.MethodGet, "/api/scans/"+id+"/views", nil))
	assert.Equal(t, id, views.ScanID)
	assert.True(t, views.Infrastructure.Available)
	assert.False(t, views.IDS.Available)
	assert.NotEmpty(t, views.IDS.EmptyMessage)

	share := decode[map[string]string](t, f.do(t, http.MethodGet, "/api/scans/"+id+"/share", nil))
	assert.Equal(t, "https://scan.example.com/report/"+id, share["url"])
}

func TestExports(t *testing.T) {
	f := newFixture(t, &stubGenerator{partial: samplePartial()})
	id := f.completed(t)

	t.Run("csv", func(t *testing.T) {
		resp := f.do(t, http.MethodGet, "/api/scans/"+id+"/export/csv", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Content-Disposition"), `filename="ports_example.com_`)
		assert.Equal(t, "Port,Service,Version,State\n443,https,nginx 1.25,open\n22,ssh,,filtered", string(readAll(t, resp)))
	})

	t.Run("markdown", func(t *testing.T) {
		resp := f.do(t, http.MethodGet, "/api/scans/"+id+"/export/markdown", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Content-Disposition"), "secuscan-")
		assert.Contains(t, string(readAll(t, resp)), "Audit (example.com)")
	})

	t.Run("pdf", func(t *testing.T) {
		resp := f.do(t, http.MethodGet, "/api/scans/"+id+"/export/pdf", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
		assert.Contains(t, resp.Header.Get("Content-Disposition"), `filename="SecuScan_Report_`+id+`.pdf"`)
		assert.True(t, bytes.HasPrefix(readAll(t, resp), []byte("%PDF")))
	})

	t.Run("unknown format", func(t *testing.T) {
		resp := f.do(t, http.MethodGet, "/api/scans/"+id+"/export/docx", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestChartImages(t *testing.T) {
	f := newFixture(t, &stubGenerator{partial: samplePartial()})
	id := f.completed(t)

	resp := f.do(t, http.MethodGet, "/charts/"+id+"/chart-server-health.png", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(readAll(t, resp), []byte("\x89PNG")))

	resp = f.do(t, http.MethodGet, "/charts/"+id+"/chart-topology.png", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPages(t *testing.T) {
	f := newFixture(t, &stubGenerator{partial: samplePartial()})
	id := f.completed(t)

	dashboard := string(readAll(t, f.do(t, http.MethodGet, "/", nil)))
	assert.Contains(t, dashboard, "Apache JMeter")

	hist := string(readAll(t, f.do(t, http.MethodGet, "/history", nil)))
	assert.Contains(t, hist, `data-scan-id="`+id+`"`)
	assert.Contains(t, hist, "Missing HSTS")

	resp := f.do(t, http.MethodGet, "/report/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := string(readAll(t, resp))
	assert.Contains(t, page, `id="chart-severity"`)
	assert.Contains(t, page, `id="chart-server-health"`)
	assert.NotContains(t, page, `id="chart-topology"`)
	assert.Contains(t, page, "Aucun rapport IDS disponible.")

	css := f.do(t, http.MethodGet, "/static/app.css", nil)
	assert.Equal(t, http.StatusOK, css.StatusCode)
}

func TestToolsCatalogue(t *testing.T) {
	f := newFixture(t, &stubGenerator{partial: samplePartial()})

	catalog := decode[[]tools.ToolStatus](t, f.do(t, http.MethodGet, "/api/tools", nil))
	assert.Len(t, catalog, len(tools.Catalog()))
}

func TestMiddlewareHeaders(t *testing.T) {
	f := newFixture(t, &stubGenerator{partial: samplePartial()})

	resp := f.do(t, http.MethodGet, "/api/tools", nil)
	assert.NotEmpty(t, resp.Header.Get(requestIDHeader))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))

	req, err := http.NewRequest(http.MethodGet, f.http.URL+"/api/tools", nil)
	require.NoError(t, err)
	req.Header.Set(requestIDHeader, "trace-123")
	resp, err = f.http.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "trace-123", resp.Header.Get(requestIDHeader))
}

func TestRecoveryMiddleware(t *testing.T) {
	h := recoveryMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func readEvent(t *testing.T, ctx context.Context, conn *websocket.Conn) scanner.ScanEvent {
	t.Helper()
	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	var ev scanner.ScanEvent
	require.NoError(t, json.Unmarshal(data, &ev))
	return ev
}

func TestWebSocketDeliversStatusEvents(t *testing.T) {
	gen := &stubGenerator{release: make(chan struct{}), partial: samplePartial()}
	f := newFixture(t, gen)

	resp := f.do(t, http.MethodPost, "/api/scans", model.ScanRequest{Target: "example.com", Tools: []model.ToolType{model.ToolNmap}})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := decode[map[string]string](t, resp)["id"]

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(f.http.URL, "http") + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(`{"scan_id":"`+id+`"}`)))

	current := readEvent(t, ctx, conn)
	assert.Equal(t, id, current.ScanID)
	assert.Equal(t, model.StatusRunning, current.Status)
	assert.False(t, current.Done)
	assert.Equal(t, 1, f.srv.hub.Subscribers(id))

	close(gen.release)

	final := readEvent(t, ctx, conn)
	assert.Equal(t, id, final.ScanID)
	assert.Equal(t, model.StatusCompleted, final.Status)
	assert.True(t, final.Done)
}

func TestWebSocketRejectsBadSubscribe(t *testing.T) {
	f := newFixture(t, &stubGenerator{partial: samplePartial()})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(f.http.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(`{}`)))
	_, _, err = conn.Read(ctx)
	assert.Equal(t, websocket.StatusInvalidFramePayloadData, websocket.CloseStatus(err))
}

func TestHubBroadcastWithoutSubscribers(t *testing.T) {
	h := NewHub()
	assert.NotPanics(t, func() {
		h.Broadcast("1", scanner.ScanEvent{ScanID: "1", Status: model.StatusRunning})
	})
	assert.Zero(t, h.Subscribers("1"))
}

func TestOriginPatterns(t *testing.T) {
	assert.Equal(t, []string{"localhost:5173", "dash.example.com"}, originPatterns([]string{"http://localhost:5173", "https://dash.example.com/", ""}))
}
