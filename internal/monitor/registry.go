// Package monitor renders swing analyses as charts: an ECharts HTML
// page for browsing a session, and gonum/plot PNGs for offline
// inspection of the pipeline stages.
package monitor

import (
	"sync"

	"github.com/banshee-data/swing.report/internal/imu"
)

// Registry caches full analyses in memory, keyed by session ID.
// Intermediate series are never persisted, so charts can only be
// rendered for sessions analysed by this process.
type Registry struct {
	mu       sync.RWMutex
	analyses map[string]*imu.Analysis
}

func NewRegistry() *Registry {
	return &Registry{analyses: make(map[string]*imu.Analysis)}
}

// Put stores the analysis for a session.
func (r *Registry) Put(sessionID string, a *imu.Analysis) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.analyses[sessionID] = a
}

// Get returns the cached analysis for a session, or nil.
func (r *Registry) Get(sessionID string) *imu.Analysis {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.analyses[sessionID]
}
