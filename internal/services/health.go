package services

import (
	"context"
	"database/sql"
	"log"
	"sync"
	"time"
)

// HealthService decides whether the platform runs in normal or
// degraded mode. The database probe result is cached so request
// handlers can consult it without adding a round trip per request;
// while the cache is fresh every caller sees the same answer.
type HealthService struct {
	db       *sql.DB
	cacheTTL time.Duration
	timeout  time.Duration
	now      func() time.Time // injectable for tests

	mu        sync.Mutex
	lastProbe time.Time
	healthy   bool
	probed    bool
}

// NewHealthService creates a health governor with a 30 second probe cache
func NewHealthService(db *sql.DB) *HealthService {
	return &HealthService{
		db:       db,
		cacheTTL: 30 * time.Second,
		timeout:  5 * time.Second,
		now:      time.Now,
	}
}

// DatabaseAvailable reports whether the database answered its last
// probe. With no database configured at all it is always false.
func (s *HealthService) DatabaseAvailable() bool {
	if s.db == nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.probed && s.now().Sub(s.lastProbe) < s.cacheTTL {
		return s.healthy
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	err := s.db.PingContext(ctx)
	healthy := err == nil
	if !healthy {
		log.Printf("⚠️ Database health probe failed: %v", err)
	}
	if s.probed && healthy != s.healthy {
		if healthy {
			log.Printf("✅ Database connectivity restored")
		} else {
			log.Printf("⚠️ Entering degraded mode: database unreachable")
		}
	}

	s.healthy = healthy
	s.probed = true
	s.lastProbe = s.now()
	return s.healthy
}

// MarkUnavailable records a mid-request connectivity failure so
// subsequent requests degrade immediately instead of waiting out the
// probe cache.
func (s *HealthService) MarkUnavailable() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.healthy || !s.probed {
		log.Printf("⚠️ Entering degraded mode: database unreachable")
	}
	s.healthy = false
	s.probed = true
	s.lastProbe = s.now()
}

// Status is the health endpoint payload
type Status struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Mode     string `json:"mode"`
	Time     string `json:"timestamp"`
}

// Report summarizes current health for the health endpoint. The
// service reports ok even when degraded: the process is up and
// serving, just without durable storage.
func (s *HealthService) Report() Status {
	st := Status{Status: "ok", Time: s.now().UTC().Format(time.RFC3339)}
	if s.DatabaseAvailable() {
		st.Database = "connected"
		st.Mode = "normal"
	} else {
		st.Database = "disconnected"
		st.Mode = "degraded"
	}
	return st
}
