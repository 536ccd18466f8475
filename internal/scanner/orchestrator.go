// Package scanner owns the scan history and drives each scan through
// running to completed or failed.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jamesruggles/secuscan/internal/acquisition"
	"github.com/jamesruggles/secuscan/internal/history"
	"github.com/jamesruggles/secuscan/internal/model"
)

var (
	ErrInvalidRequest = errors.New("a target and at least one tool are required")
	ErrNotFound       = errors.New("scan not found")
	ErrNotRunning     = errors.New("scan is not running")
)

// ScanEvent is pushed to subscribers on every status transition.
type ScanEvent struct {
	ScanID    string       `json:"scan_id"`
	Status    model.Status `json:"status"`
	Timestamp time.Time    `json:"timestamp"`
	Message   string       `json:"message,omitempty"`
	Done      bool         `json:"done,omitempty"`
}

// Broadcaster delivers scan events to connected clients.
type Broadcaster interface {
	Broadcast(scanID string, event ScanEvent)
}

type nopBroadcaster struct{}

func (nopBroadcaster) Broadcast(string, ScanEvent) {}

// Orchestrator keeps an in-memory mirror of the persisted history. Every
// mutation rewrites the whole history through the store.
type Orchestrator struct {
	store       *history.Store
	gen         acquisition.Generator
	broadcaster Broadcaster
	now         func() time.Time

	mu     sync.Mutex
	scans  []model.ScanResult
	langs  map[string]model.Language
	lastID int64

	wg sync.WaitGroup
}

func New(store *history.Store, gen acquisition.Generator, broadcaster Broadcaster) *Orchestrator {
	if broadcaster == nil {
		broadcaster = nopBroadcaster{}
	}
	return &Orchestrator{
		store:       store,
		gen:         gen,
		broadcaster: broadcaster,
		now:         time.Now,
		scans:       []model.ScanResult{},
		langs:       make(map[string]model.Language),
	}
}

// SetBroadcaster replaces the event sink. The server installs its hub
// after the orchestrator has been created.
func (o *Orchestrator) SetBroadcaster(b Broadcaster) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if b == nil {
		b = nopBroadcaster{}
	}
	o.broadcaster = b
}

// Refresh replaces the mirror with the persisted history.
func (o *Orchestrator) Refresh(ctx context.Context) error {
	scans, err := o.store.Load(ctx)
	if err != nil {
		return err
	}
	o.mu.Lock()
	o.scans = scans
	o.mu.Unlock()
	return nil
}

// Submit records a running placeholder for req, persists it and starts
// acquisition in the background. It returns as soon as the placeholder is
// stored.
func (o *Orchestrator) Submit(ctx context.Context, req model.ScanRequest) (string, error) {
	if !req.Valid() {
		return "", ErrInvalidRequest
	}
	req.Target = strings.TrimSpace(req.Target)
	req.Tools = slices.Clone(req.Tools)
	req.Language = req.Language.Normalize()

	o.mu.Lock()
	now := o.now()
	id := o.nextID(now)
	placeholder := model.ScanResult{
		ID:              id,
		ProjectName:     req.ProjectName,
		TargetURL:       req.Target,
		TargetIP:        "...",
		Timestamp:       now,
		Status:          model.StatusRunning,
		ToolsUsed:       slices.Clone(req.Tools),
		OpenPorts:       []model.OpenPort{},
		ConnectedAssets: []model.ConnectedAsset{},
		Vulnerabilities: []model.Vulnerability{},
		AIAnalysis:      InProgressMessage(req.Language),
		Topology:        &model.Topology{Nodes: []model.TopologyNode{}, Links: []model.TopologyLink{}},
		SecurityHeaders: []model.SecurityHeader{},
		LoadTestResults: []model.LoadTestPoint{},
		GlobalPing:      []model.GlobalPingRegion{},
	}
	o.scans = append(o.scans, placeholder)
	if err := o.store.Save(ctx, o.scans); err != nil {
		o.scans = o.scans[:len(o.scans)-1]
		o.mu.Unlock()
		return "", fmt.Errorf("persist new scan: %w", err)
	}
	o.langs[id] = req.Language
	broadcaster := o.broadcaster
	o.mu.Unlock()

	slog.Info("scan submitted", "scan_id", id, "target", req.Target, "tools", len(req.Tools))
	broadcaster.Broadcast(id, ScanEvent{ScanID: id, Status: model.StatusRunning, Timestamp: now, Message: placeholder.AIAnalysis})

	o.wg.Add(1)
	go o.acquire(context.WithoutCancel(ctx), id, req)
	return id, nil
}

// nextID returns the millisecond timestamp of now, bumped past the last
// issued id so two submissions in the same millisecond stay distinct.
func (o *Orchestrator) nextID(now time.Time) string {
	ms := now.UnixMilli()
	if ms <= o.lastID {
		ms = o.lastID + 1
	}
	o.lastID = ms
	return strconv.FormatInt(ms, 10)
}

func (o *Orchestrator) acquire(ctx context.Context, id string, req model.ScanRequest) {
	defer o.wg.Done()

	start := time.Now()
	partial, err := o.generate(ctx, req)
	if err != nil {
		slog.Error("scan acquisition failed", "scan_id", id, "error", err)
	} else {
		slog.Info("scan acquisition finished", "scan_id", id, "duration", time.Since(start))
	}

	if err := o.Reconcile(ctx, id, partial, err); err != nil {
		slog.Warn("reconcile scan", "scan_id", id, "error", err)
	}
}

func (o *Orchestrator) generate(ctx context.Context, req model.ScanRequest) (p *model.PartialResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			p, err = nil, fmt.Errorf("generator panic: %v", r)
		}
	}()
	p, err = o.gen.GenerateReport(ctx, req)
	if err == nil && p == nil {
		err = acquisition.ErrEmptyResponse
	}
	return p, err
}

// Reconcile applies the acquisition outcome to a running scan. On success
// the partial result is merged over the placeholder and the identity fields
// are restored; on failure the scan is marked failed with a fixed message.
func (o *Orchestrator) Reconcile(ctx context.Context, id string, partial *model.PartialResult, acqErr error) error {
	o.mu.Lock()
	idx := o.indexOf(id)
	if idx < 0 {
		o.mu.Unlock()
		return fmt.Errorf("reconcile %s: %w", id, ErrNotFound)
	}
	current := o.scans[idx]
	if current.Status != model.StatusRunning {
		o.mu.Unlock()
		return fmt.Errorf("reconcile %s: %w", id, ErrNotRunning)
	}

	now := o.now()
	lang := o.langs[id]
	var next model.ScanResult
	if acqErr != nil || partial == nil {
		next = current
		next.Status = model.StatusFailed
		next.Timestamp = now
		next.AIAnalysis = FailureMessage(lang)
	} else {
		next = partial.MergeOver(current)
		next.ID = current.ID
		next.ProjectName = current.ProjectName
		next.TargetURL = current.TargetURL
		next.ToolsUsed = current.ToolsUsed
		next.Timestamp = now
		next.Status = model.StatusCompleted
		next.Vulnerabilities = assignVulnerabilityIDs(next.Vulnerabilities, now)
	}

	o.scans[idx] = next
	delete(o.langs, id)
	saveErr := o.store.Save(ctx, o.scans)
	broadcaster := o.broadcaster
	o.mu.Unlock()

	broadcaster.Broadcast(id, ScanEvent{ScanID: id, Status: next.Status, Timestamp: now, Done: true})
	if saveErr != nil {
		return fmt.Errorf("persist scan %s: %w", id, saveErr)
	}
	slog.Info("scan reconciled", "scan_id", id, "status", next.Status)
	return nil
}

func assignVulnerabilityIDs(vulns []model.Vulnerability, now time.Time) []model.Vulnerability {
	out := make([]model.Vulnerability, len(vulns))
	for i, v := range vulns {
		v.ID = fmt.Sprintf("vuln-%d-%d", now.UnixMilli(), i)
		out[i] = v
	}
	return out
}

// Remove deletes one scan from the history.
func (o *Orchestrator) Remove(ctx context.Context, id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	idx := o.indexOf(id)
	if idx < 0 {
		return ErrNotFound
	}
	removed := o.scans[idx]
	o.scans = slices.Delete(slices.Clone(o.scans), idx, idx+1)
	if err := o.store.Save(ctx, o.scans); err != nil {
		o.scans = slices.Insert(o.scans, idx, removed)
		return fmt.Errorf("persist removal: %w", err)
	}
	delete(o.langs, id)
	slog.Info("scan removed", "scan_id", id)
	return nil
}

// List returns the history in submission order.
func (o *Orchestrator) List() []model.ScanResult {
	o.mu.Lock()
	defer o.mu.Unlock()
	return slices.Clone(o.scans)
}

func (o *Orchestrator) Get(id string) (model.ScanResult, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	idx := o.indexOf(id)
	if idx < 0 {
		return model.ScanResult{}, false
	}
	return o.scans[idx], true
}

// Wait blocks until every in-flight acquisition has been reconciled.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

func (o *Orchestrator) indexOf(id string) int {
	return slices.IndexFunc(o.scans, func(s model.ScanResult) bool { return s.ID == id })
}
