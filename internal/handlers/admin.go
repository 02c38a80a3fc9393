package handlers

import (
	"context"
	"net/http"
	"strconv"

	"dandiya-ticketing-platform/internal/services"
)

// CacheInvalidator drops cached responses after a write that changes
// what the dashboard endpoints would return
type CacheInvalidator interface {
	Invalidate(ctx context.Context)
}

// AdminHandler serves the operations dashboard API
type AdminHandler struct {
	admin *services.AdminService
	cache CacheInvalidator
}

// NewAdminHandler creates a new admin handler. cache may be nil when
// response caching is disabled.
func NewAdminHandler(admin *services.AdminService, cache CacheInvalidator) *AdminHandler {
	return &AdminHandler{admin: admin, cache: cache}
}

// DashboardStats handles GET /api/admin/dashboard-stats
func (h *AdminHandler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	result, err := h.admin.DashboardStats()
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, http.StatusOK, map[string]interface{}{
		"stats": result.Stats,
		"mock":  result.Mock,
	})
}

// Bookings handles GET /api/admin/bookings?limit=N
func (h *AdminHandler) Bookings(w http.ResponseWriter, r *http.Request) {
	result, err := h.admin.RecentBookings(queryInt(r, "limit", 0))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, http.StatusOK, map[string]interface{}{
		"bookings": result.Bookings,
		"mock":     result.Mock,
	})
}

// ChartData handles GET /api/admin/chart-data?days=N
func (h *AdminHandler) ChartData(w http.ResponseWriter, r *http.Request) {
	result, err := h.admin.ChartData(queryInt(r, "days", 0))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, http.StatusOK, map[string]interface{}{
		"chart": result.Points,
		"mock":  result.Mock,
	})
}

// RecentScans handles GET /api/admin/recent-scans?limit=N
func (h *AdminHandler) RecentScans(w http.ResponseWriter, r *http.Request) {
	result, err := h.admin.RecentScans(queryInt(r, "limit", 0))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, http.StatusOK, map[string]interface{}{
		"scans": result.Scans,
		"mock":  result.Mock,
	})
}

// ScanAttempts handles GET /api/admin/scans?limit=N
func (h *AdminHandler) ScanAttempts(w http.ResponseWriter, r *http.Request) {
	result, err := h.admin.ScanAttempts(queryInt(r, "limit", 0))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, http.StatusOK, map[string]interface{}{
		"attempts": result.Attempts,
		"mock":     result.Mock,
	})
}

// ClearFallback handles POST /api/admin/fallback/clear. Operators use
// it after an outage once the in-memory records have been reconciled
// into the database.
func (h *AdminHandler) ClearFallback(w http.ResponseWriter, r *http.Request) {
	dropped := h.admin.ClearFallback()
	if h.cache != nil {
		h.cache.Invalidate(r.Context())
	}
	respondOK(w, http.StatusOK, map[string]interface{}{"dropped": dropped})
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
