package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"

	"github.com/jamesruggles/secuscan/internal/capture"
	"github.com/jamesruggles/secuscan/internal/charts"
	"github.com/jamesruggles/secuscan/internal/model"
	"github.com/jamesruggles/secuscan/internal/report"
	"github.com/jamesruggles/secuscan/internal/scanner"
	"github.com/jamesruggles/secuscan/internal/tools"
)

type pageData struct {
	ActivePage string
	Tools      []tools.ToolStatus
	History    []model.ScanResult
	Scan       *model.ScanResult
	Views      *report.Views
	Charts     map[string]bool
}

func (s *Server) renderPage(w http.ResponseWriter, page string, data pageData) {
	tmpl, ok := s.pages[page]
	if !ok {
		http.Error(w, "page not found", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "layout.html", data); err != nil {
		slog.Error("template render error", "page", page, "error", err)
		http.Error(w, "render error", http.StatusInternalServerError)
	}
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, "dashboard.html", pageData{
		ActivePage: "dashboard",
		Tools:      tools.Catalog(),
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	scans := s.orch.List()
	slices.Reverse(scans)
	s.renderPage(w, "history.html", pageData{ActivePage: "history", History: scans})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	scan, ok := s.orch.Get(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	views := report.BuildViews(scan)
	available := make(map[string]bool)
	for _, id := range charts.Available(scan) {
		available[id] = true
	}
	s.renderPage(w, "report.html", pageData{
		ActivePage: "history",
		Scan:       &scan,
		Views:      &views,
		Charts:     available,
	})
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	scan, ok := s.orch.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, scanner.ErrNotFound.Error())
		return
	}
	img, err := charts.Render(scan, chi.URLParam(r, "chart"))
	switch {
	case errors.Is(err, charts.ErrNoData), errors.Is(err, charts.ErrUnknownChart):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case err != nil:
		slog.Error("render chart", "scan_id", scan.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "chart rendering failed")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(img)
}

// --- API Handlers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleAPITools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, tools.Catalog())
}

func (s *Server) handleAPIListScans(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.orch.List())
}

func (s *Server) handleAPICreateScan(w http.ResponseWriter, r *http.Request) {
	var req model.ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	selected := make([]model.ToolType, 0, len(req.Tools))
	for _, t := range req.Tools {
		tool, ok := tools.Lookup(string(t))
		if !ok {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown tool %q", t))
			return
		}
		selected = append(selected, tool)
	}
	req.Tools = selected

	id, err := s.orch.Submit(r.Context(), req)
	switch {
	case errors.Is(err, scanner.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		slog.Error("submit scan", "target", req.Target, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleAPIRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.orch.Refresh(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.orch.List())
}

// scan loads the scan named by the {id} route parameter, writing a 404
// when it does not exist.
func (s *Server) scan(w http.ResponseWriter, r *http.Request) (model.ScanResult, bool) {
	scan, ok := s.orch.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, scanner.ErrNotFound.Error())
	}
	return scan, ok
}

func (s *Server) handleAPIGetScan(w http.ResponseWriter, r *http.Request) {
	if scan, ok := s.scan(w, r); ok {
		writeJSON(w, http.StatusOK, scan)
	}
}

func (s *Server) handleAPIDeleteScan(w http.ResponseWriter, r *http.Request) {
	err := s.orch.Remove(r.Context(), chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, scanner.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

func (s *Server) handleAPIViews(w http.ResponseWriter, r *http.Request) {
	if scan, ok := s.scan(w, r); ok {
		writeJSON(w, http.StatusOK, report.BuildViews(scan))
	}
}

func (s *Server) handleAPIShare(w http.ResponseWriter, r *http.Request) {
	if scan, ok := s.scan(w, r); ok {
		writeJSON(w, http.StatusOK, map[string]string{"url": s.cfg.BaseURL() + "/report/" + scan.ID})
	}
}

func attachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func (s *Server) handleAPIExport(w http.ResponseWriter, r *http.Request) {
	scan, ok := s.scan(w, r)
	if !ok {
		return
	}

	switch format := chi.URLParam(r, "format"); format {
	case "csv":
		attachment(w, "text/csv; charset=utf-8", report.PortsCSVFilename(scan.TargetURL, s.now()), []byte(report.PortsCSV(scan.OpenPorts)))
	case "markdown":
		attachment(w, "text/markdown; charset=utf-8", report.MarkdownFilename(scan, s.now()), []byte(report.Markdown(scan)))
	case "pdf":
		snaps := capture.All(r.Context(), s.source, scan)
		data, err := report.ExportPDF(scan, snaps)
		if err != nil {
			slog.Error("export pdf", "scan_id", scan.ID, "error", err)
			writeError(w, http.StatusInternalServerError, "pdf export failed")
			return
		}
		slog.Info("pdf exported", "scan_id", scan.ID, "charts", len(snaps), "bytes", len(data))
		attachment(w, "application/pdf", report.PDFFilename(scan), data)
	default:
		writeError(w, http.StatusBadRequest, "format must be 'csv', 'markdown' or 'pdf'")
	}
}
