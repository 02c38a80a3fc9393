package services

import (
	"time"

	"dandiya-ticketing-platform/internal/models"
	"dandiya-ticketing-platform/internal/monitoring"
	"dandiya-ticketing-platform/internal/repositories"
)

// AdminStore interface for dashboard data operations
type AdminStore interface {
	GetDashboardStats() (*repositories.DashboardStats, error)
	ListRecent(limit int) ([]*repositories.BookingListing, error)
	GetChartData(days int) ([]repositories.ChartPoint, error)
}

// ScanFeedStore interface for the admin scan feeds
type ScanFeedStore interface {
	ListRecentScans(limit int) ([]*repositories.RecentScan, error)
}

// AdminService serves the operations dashboard. Reads degrade
// gracefully: when the database is unreachable the answer comes from
// the fallback store with the payload flagged mock. Any other store
// failure is surfaced to the caller.
type AdminService struct {
	bookings AdminStore
	scanFeed ScanFeedStore
	scans    *repositories.ScanRepository
	fallback *repositories.FallbackStore
	health   *HealthService
}

// NewAdminService creates a new admin service
func NewAdminService(bookings AdminStore, scanFeed ScanFeedStore, scans *repositories.ScanRepository, fallback *repositories.FallbackStore, health *HealthService) *AdminService {
	return &AdminService{
		bookings: bookings,
		scanFeed: scanFeed,
		scans:    scans,
		fallback: fallback,
		health:   health,
	}
}

// StatsResult wraps dashboard numbers with the mock flag
type StatsResult struct {
	Stats *repositories.DashboardStats `json:"stats"`
	Mock  bool                         `json:"mock,omitempty"`
}

// DashboardStats returns aggregate numbers for the dashboard
func (s *AdminService) DashboardStats() (*StatsResult, error) {
	if s.health.DatabaseAvailable() {
		stats, err := s.bookings.GetDashboardStats()
		if err == nil {
			return &StatsResult{Stats: stats}, nil
		}
		if !repositories.IsConnectivityError(err) {
			return nil, err
		}
		s.health.MarkUnavailable()
	}

	monitoring.DegradedRequests.WithLabelValues("admin_stats").Inc()
	return &StatsResult{Stats: s.fallbackStats(), Mock: true}, nil
}

func (s *AdminService) fallbackStats() *repositories.DashboardStats {
	stats := &repositories.DashboardStats{}
	for _, b := range s.fallback.Bookings() {
		stats.TotalBookings++
		stats.TotalTickets += b.NumTickets
		switch b.Status {
		case models.BookingConfirmed:
			stats.TotalRevenue += b.FinalAmount
		case models.BookingPending:
			stats.PendingBookings++
		}
	}
	return stats
}

// BookingsResult wraps a booking listing with the mock flag
type BookingsResult struct {
	Bookings []*repositories.BookingListing `json:"bookings"`
	Mock     bool                           `json:"mock,omitempty"`
}

// RecentBookings lists the latest bookings with their primary contact
func (s *AdminService) RecentBookings(limit int) (*BookingsResult, error) {
	if limit < 1 || limit > 500 {
		limit = 100
	}

	if s.health.DatabaseAvailable() {
		listings, err := s.bookings.ListRecent(limit)
		if err == nil {
			return &BookingsResult{Bookings: listings}, nil
		}
		if !repositories.IsConnectivityError(err) {
			return nil, err
		}
		s.health.MarkUnavailable()
	}

	monitoring.DegradedRequests.WithLabelValues("admin_bookings").Inc()

	listings := make([]*repositories.BookingListing, 0)
	for i, b := range s.fallback.Bookings() {
		if i >= limit {
			break
		}
		listing := &repositories.BookingListing{
			Booking:       b,
			FullName:      "N/A",
			Email:         "N/A",
			Phone:         "N/A",
			Quantity:      b.NumTickets,
			PaymentStatus: "pending",
		}
		if primary := models.PrimaryUser(b.Users); primary != nil {
			listing.FullName = primary.Name
			listing.Email = primary.Email
			listing.Phone = primary.Phone
		}
		listings = append(listings, listing)
	}
	return &BookingsResult{Bookings: listings, Mock: true}, nil
}

// ChartResult wraps chart points with the mock flag
type ChartResult struct {
	Points []repositories.ChartPoint `json:"points"`
	Mock   bool                      `json:"mock,omitempty"`
}

// ChartData returns per-day booking counts for the dashboard chart
func (s *AdminService) ChartData(days int) (*ChartResult, error) {
	if days < 1 || days > 90 {
		days = 14
	}

	if s.health.DatabaseAvailable() {
		points, err := s.bookings.GetChartData(days)
		if err == nil {
			return &ChartResult{Points: points}, nil
		}
		if !repositories.IsConnectivityError(err) {
			return nil, err
		}
		s.health.MarkUnavailable()
	}

	monitoring.DegradedRequests.WithLabelValues("admin_chart").Inc()

	counts := make(map[string]int)
	for _, b := range s.fallback.Bookings() {
		day := b.CreatedAt.Format("2006-01-02")
		counts[day]++
	}
	points := make([]repositories.ChartPoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := time.Now().AddDate(0, 0, -i).Format("2006-01-02")
		points = append(points, repositories.ChartPoint{Date: day, Bookings: counts[day]})
	}
	return &ChartResult{Points: points, Mock: true}, nil
}

// ScansResult wraps the scan feed with the mock flag
type ScansResult struct {
	Scans []*repositories.RecentScan `json:"scans"`
	Mock  bool                       `json:"mock,omitempty"`
}

// RecentScans lists the latest admissions
func (s *AdminService) RecentScans(limit int) (*ScansResult, error) {
	if limit < 1 || limit > 500 {
		limit = 50
	}

	if s.health.DatabaseAvailable() {
		scans, err := s.scanFeed.ListRecentScans(limit)
		if err == nil {
			return &ScansResult{Scans: scans}, nil
		}
		if !repositories.IsConnectivityError(err) {
			return nil, err
		}
		s.health.MarkUnavailable()
	}

	monitoring.DegradedRequests.WithLabelValues("admin_scans").Inc()
	return &ScansResult{Scans: []*repositories.RecentScan{}, Mock: true}, nil
}

// AttemptsResult wraps scan attempt rows with the mock flag
type AttemptsResult struct {
	Attempts []*models.QRScan `json:"attempts"`
	Mock     bool             `json:"mock,omitempty"`
}

// ScanAttempts lists the attempt audit rows, repeats included
func (s *AdminService) ScanAttempts(limit int) (*AttemptsResult, error) {
	if limit < 1 || limit > 500 {
		limit = 50
	}

	if s.health.DatabaseAvailable() {
		attempts, err := s.scans.ListRecent(limit)
		if err == nil {
			return &AttemptsResult{Attempts: attempts}, nil
		}
		if !repositories.IsConnectivityError(err) {
			return nil, err
		}
		s.health.MarkUnavailable()
	}

	monitoring.DegradedRequests.WithLabelValues("admin_scans").Inc()
	return &AttemptsResult{Attempts: []*models.QRScan{}, Mock: true}, nil
}

// ClearFallback empties the in-memory fallback store and reports what
// was dropped.
func (s *AdminService) ClearFallback() repositories.FallbackStats {
	return s.fallback.Clear()
}
