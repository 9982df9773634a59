// Package cache keeps the most recent analysis per document so the
// dashboard's repeat queries don't re-run the full probe pipeline.
package cache

import (
	"context"
	"sync"
	"time"

	"veridian/diligence-api/internal/domain"
)

// Cache stores one recent AnalysisResult per document.
type Cache interface {
	Get(ctx context.Context, document string) (*domain.AnalysisResult, bool)
	Set(ctx context.Context, document string, res *domain.AnalysisResult)
}

// Noop is the disabled cache.
type Noop struct{}

func (Noop) Get(context.Context, string) (*domain.AnalysisResult, bool) { return nil, false }
func (Noop) Set(context.Context, string, *domain.AnalysisResult)       {}

// ─── In-memory backend ───────────────────────────────────────────────────────

type memoryEntry struct {
	res       *domain.AnalysisResult
	expiresAt time.Time
}

// Memory is a TTL cache for single-process deployments.
type Memory struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]memoryEntry
}

// NewMemory creates a memory cache with the given TTL.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{ttl: ttl, entries: make(map[string]memoryEntry)}
}

func (m *Memory) Get(_ context.Context, document string) (*domain.AnalysisResult, bool) {
	m.mu.RLock()
	e, ok := m.entries[document]
	m.mu.RUnlock()
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.res, true
}

func (m *Memory) Set(_ context.Context, document string, res *domain.AnalysisResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[document] = memoryEntry{res: res, expiresAt: time.Now().Add(m.ttl)}
}
