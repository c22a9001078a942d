// Package health provides readiness state tracking and HTTP health check handlers.
package health

import (
	"encoding/json"
	"net/http"
	"sync"
)

// The server starts in the starting state, becomes ready once a storage
// backend is bound, and drains while shutting down.
const (
	stateStarting = "starting"
	stateReady    = "ready"
	stateDraining = "draining"
)

// Checker tracks readiness and the storage backend the process bound at
// startup. It is safe for concurrent use.
type Checker struct {
	mu      sync.RWMutex
	state   string
	backend string
}

// NewChecker creates a Checker in the starting state.
func NewChecker() *Checker {
	return &Checker{state: stateStarting}
}

// SetReady transitions to the ready state, recording which backend was bound.
func (c *Checker) SetReady(backend string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = stateReady
	c.backend = backend
}

// SetDraining transitions to the draining state.
func (c *Checker) SetDraining() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = stateDraining
}

// IsReady returns true when the state is ready.
func (c *Checker) IsReady() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state == stateReady
}

// status is the JSON body returned by health endpoints.
type status struct {
	Status  string `json:"status"`
	Storage string `json:"storage,omitempty"`
}

func (c *Checker) snapshot() status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return status{Status: c.state, Storage: c.backend}
}

// LivenessHandler returns an http.HandlerFunc that always responds 200 OK.
// Use this for a livenessProbe (/healthz).
func (*Checker) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, status{Status: "ok"})
	}
}

// ReadinessHandler returns an http.HandlerFunc that responds 200 once a
// storage backend is bound and 503 while starting or draining.
// Use this for a readinessProbe (/readyz).
func (c *Checker) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		snap := c.snapshot()
		if snap.Status == stateReady {
			writeJSON(w, http.StatusOK, snap)
			return
		}
		writeJSON(w, http.StatusServiceUnavailable, snap)
	}
}

func writeJSON(w http.ResponseWriter, code int, v status) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
