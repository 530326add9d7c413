// Package server implements the HTTP observability endpoint for snaprefd.
// It serves /healthz for liveness probes, /readyz for readiness probes and
// /metrics for Prometheus scrapes.
package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// ReadinessChecker is an interface for components that can report their
// readiness. The cache registers one so /readyz reflects whether a first
// generation has been installed and how stale it is.
type ReadinessChecker interface {
	// Name returns the name of the component for display in health status.
	Name() string

	// CheckReady returns nil if the component is ready, or an error
	// describing why it is not.
	CheckReady(ctx context.Context) error
}

// HealthStatus represents the health check response.
type HealthStatus struct {
	Status string                 `json:"status"`
	Checks map[string]CheckResult `json:"checks,omitempty"`
}

// CheckResult represents the result of a single readiness check.
type CheckResult struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// DefaultReadinessTimeout is the default timeout for readiness checks.
const DefaultReadinessTimeout = 5 * time.Second

// Observability is the HTTP server behind the metrics address.
type Observability struct {
	mu               sync.RWMutex
	addr             string
	boundAddr        string
	server           *http.Server
	logger           *logrus.Entry
	shutDown         atomic.Bool
	readinessChecks  []ReadinessChecker
	readinessTimeout time.Duration
}

// NewObservability creates an observability server listening on addr.
func NewObservability(addr string, logger *logrus.Entry) *Observability {
	if logger == nil {
		logger = logrus.StandardLogger().WithField("component", "server")
	}
	return &Observability{
		addr:             addr,
		logger:           logger,
		readinessTimeout: DefaultReadinessTimeout,
	}
}

// RegisterReadinessCheck registers a component for readiness checking.
// The component is checked on each /readyz request.
func (o *Observability) RegisterReadinessCheck(checker ReadinessChecker) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.readinessChecks = append(o.readinessChecks, checker)
}

// SetShuttingDown marks the server as shutting down; /healthz then returns 503.
func (o *Observability) SetShuttingDown() {
	o.shutDown.Store(true)
}

// Start starts the HTTP server.
func (o *Observability) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", o.handleHealthz)
	mux.HandleFunc("/readyz", o.handleReadyz)
	mux.Handle("/metrics", promhttp.Handler())

	o.server = &http.Server{
		Addr:         o.addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second, // accommodates readiness checks
	}

	ln, err := net.Listen("tcp", o.addr)
	if err != nil {
		return err
	}

	o.mu.Lock()
	o.boundAddr = ln.Addr().String()
	o.mu.Unlock()

	o.logger.WithField("addr", ln.Addr().String()).Info("observability server listening")

	go func() {
		if err := o.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			o.logger.WithError(err).Error("observability server error")
		}
	}()

	return nil
}

// Addr returns the actual bound address of the server, or the configured
// address if the server hasn't started yet.
func (o *Observability) Addr() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.boundAddr != "" {
		return o.boundAddr
	}
	return o.addr
}

// Close shuts down the server.
func (o *Observability) Close() error {
	if o.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return o.server.Shutdown(ctx)
}

// handleHealthz handles the /healthz liveness endpoint.
func (o *Observability) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	status := HealthStatus{Status: "ok"}
	if o.shutDown.Load() {
		status.Status = "shutting_down"
	}

	writeStatus(w, r, status)
}

// handleReadyz handles the /readyz readiness endpoint. Every registered
// checker must pass for a 200.
func (o *Observability) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	o.mu.RLock()
	checkers := make([]ReadinessChecker, len(o.readinessChecks))
	copy(checkers, o.readinessChecks)
	timeout := o.readinessTimeout
	o.mu.RUnlock()

	status := HealthStatus{
		Status: "ready",
		Checks: make(map[string]CheckResult, len(checkers)),
	}
	for _, checker := range checkers {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		err := checker.CheckReady(ctx)
		cancel()

		result := CheckResult{Healthy: err == nil}
		if err != nil {
			result.Message = err.Error()
			status.Status = "not_ready"
		}
		status.Checks[checker.Name()] = result
	}

	writeStatus(w, r, status)
}

func writeStatus(w http.ResponseWriter, r *http.Request, status HealthStatus) {
	w.Header().Set("Content-Type", "application/json")
	if status.Status != "ok" && status.Status != "ready" {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	if r.Method != http.MethodHead {
		json.NewEncoder(w).Encode(status)
	}
}
