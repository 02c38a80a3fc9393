package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dandiya-ticketing-platform/internal/models"
	"dandiya-ticketing-platform/internal/repositories"
)

type mockAdminStore struct {
	statsFn func() (*repositories.DashboardStats, error)
	listFn  func(limit int) ([]*repositories.BookingListing, error)
	chartFn func(days int) ([]repositories.ChartPoint, error)
}

func (m *mockAdminStore) GetDashboardStats() (*repositories.DashboardStats, error) {
	return m.statsFn()
}

func (m *mockAdminStore) ListRecent(limit int) ([]*repositories.BookingListing, error) {
	return m.listFn(limit)
}

func (m *mockAdminStore) GetChartData(days int) ([]repositories.ChartPoint, error) {
	return m.chartFn(days)
}

type mockScanFeedStore struct {
	scans []*repositories.RecentScan
	err   error
}

func (m *mockScanFeedStore) ListRecentScans(limit int) ([]*repositories.RecentScan, error) {
	return m.scans, m.err
}

func seedFallbackBooking(fallback *repositories.FallbackStore, id models.ID, status models.BookingStatus, tickets int, amount int64) {
	fallback.StoreBooking(&models.Booking{
		ID:          id,
		NumTickets:  tickets,
		PassType:    models.PassCouple,
		Status:      status,
		TotalAmount: amount,
		FinalAmount: amount,
		CreatedAt:   time.Now(),
	})
}

func TestDashboardStatsFromDatabase(t *testing.T) {
	store := &mockAdminStore{
		statsFn: func() (*repositories.DashboardStats, error) {
			return &repositories.DashboardStats{TotalBookings: 12, TotalRevenue: 8400}, nil
		},
	}
	svc := NewAdminService(store, &mockScanFeedStore{}, nil, repositories.NewFallbackStore(), healthyHealth(t))

	result, err := svc.DashboardStats()
	require.NoError(t, err)
	assert.False(t, result.Mock)
	assert.Equal(t, 12, result.Stats.TotalBookings)
	assert.Equal(t, int64(8400), result.Stats.TotalRevenue)
}

func TestDashboardStatsDegraded(t *testing.T) {
	fallback := repositories.NewFallbackStore()
	seedFallbackBooking(fallback, 1, models.BookingConfirmed, 2, 1398)
	seedFallbackBooking(fallback, 2, models.BookingPending, 6, 1800)

	svc := NewAdminService(nil, nil, nil, fallback, degradedHealth())

	result, err := svc.DashboardStats()
	require.NoError(t, err)
	assert.True(t, result.Mock)
	assert.Equal(t, 2, result.Stats.TotalBookings)
	assert.Equal(t, 8, result.Stats.TotalTickets)
	assert.Equal(t, int64(1398), result.Stats.TotalRevenue)
	assert.Equal(t, 1, result.Stats.PendingBookings)
}

func TestDashboardStatsConnectivityFailureDegrades(t *testing.T) {
	store := &mockAdminStore{
		statsFn: func() (*repositories.DashboardStats, error) {
			return nil, fmt.Errorf("query stats: connection refused")
		},
	}
	health := healthyHealth(t)
	svc := NewAdminService(store, &mockScanFeedStore{}, nil, repositories.NewFallbackStore(), health)

	result, err := svc.DashboardStats()
	require.NoError(t, err)
	assert.True(t, result.Mock)
	assert.False(t, health.DatabaseAvailable())
}

func TestAdminReadsSurfaceQueryErrors(t *testing.T) {
	// A broken query is not an outage: it must reach the caller, not
	// get papered over with mock data.
	queryErr := fmt.Errorf("failed to list bookings: pq: column reference \"status\" is ambiguous")
	store := &mockAdminStore{
		statsFn: func() (*repositories.DashboardStats, error) { return nil, queryErr },
		listFn:  func(limit int) ([]*repositories.BookingListing, error) { return nil, queryErr },
		chartFn: func(days int) ([]repositories.ChartPoint, error) { return nil, queryErr },
	}
	health := healthyHealth(t)
	svc := NewAdminService(store, &mockScanFeedStore{}, nil, repositories.NewFallbackStore(), health)

	_, err := svc.DashboardStats()
	assert.ErrorIs(t, err, queryErr)

	_, err = svc.RecentBookings(10)
	assert.ErrorIs(t, err, queryErr)

	_, err = svc.ChartData(7)
	assert.ErrorIs(t, err, queryErr)

	assert.True(t, health.DatabaseAvailable(), "a query error must not flip the health state")
}

func TestRecentBookingsDegraded(t *testing.T) {
	fallback := repositories.NewFallbackStore()
	seedFallbackBooking(fallback, 77, models.BookingPending, 4, 2796)
	fallback.StoreUser(&models.BookingUser{
		ID:        1,
		BookingID: 77,
		Name:      "Ravi Shah",
		Email:     "ravi@example.com",
		Phone:     "9876543210",
		IsPrimary: true,
	})

	svc := NewAdminService(nil, nil, nil, fallback, degradedHealth())

	result, err := svc.RecentBookings(10)
	require.NoError(t, err)
	assert.True(t, result.Mock)
	require.Len(t, result.Bookings, 1)
	assert.Equal(t, "Ravi Shah", result.Bookings[0].FullName)
	assert.Equal(t, 4, result.Bookings[0].Quantity)
	assert.Equal(t, "pending", result.Bookings[0].PaymentStatus)
}

func TestRecentBookingsDegradedWithoutContact(t *testing.T) {
	fallback := repositories.NewFallbackStore()
	seedFallbackBooking(fallback, 5, models.BookingPending, 2, 1398)

	svc := NewAdminService(nil, nil, nil, fallback, degradedHealth())

	result, err := svc.RecentBookings(10)
	require.NoError(t, err)
	require.Len(t, result.Bookings, 1)
	assert.Equal(t, "N/A", result.Bookings[0].FullName)
	assert.Equal(t, "N/A", result.Bookings[0].Email)
}

func TestRecentBookingsLimitClamped(t *testing.T) {
	fallback := repositories.NewFallbackStore()
	for i := 1; i <= 3; i++ {
		seedFallbackBooking(fallback, models.ID(i), models.BookingPending, 1, 399)
	}

	svc := NewAdminService(nil, nil, nil, fallback, degradedHealth())

	result, err := svc.RecentBookings(2)
	require.NoError(t, err)
	assert.Len(t, result.Bookings, 2)

	// Out-of-range limits fall back to the default
	result, err = svc.RecentBookings(-1)
	require.NoError(t, err)
	assert.Len(t, result.Bookings, 3)
}

func TestChartDataDegraded(t *testing.T) {
	fallback := repositories.NewFallbackStore()
	seedFallbackBooking(fallback, 1, models.BookingConfirmed, 2, 1398)
	seedFallbackBooking(fallback, 2, models.BookingConfirmed, 2, 1398)

	svc := NewAdminService(nil, nil, nil, fallback, degradedHealth())

	result, err := svc.ChartData(7)
	require.NoError(t, err)
	assert.True(t, result.Mock)
	require.Len(t, result.Points, 7)

	today := result.Points[len(result.Points)-1]
	assert.Equal(t, time.Now().Format("2006-01-02"), today.Date)
	assert.Equal(t, 2, today.Bookings)
}

func TestScanFeedsDegraded(t *testing.T) {
	svc := NewAdminService(nil, nil, nil, repositories.NewFallbackStore(), degradedHealth())

	scans, err := svc.RecentScans(10)
	require.NoError(t, err)
	assert.True(t, scans.Mock)
	assert.Empty(t, scans.Scans)

	attempts, err := svc.ScanAttempts(10)
	require.NoError(t, err)
	assert.True(t, attempts.Mock)
	assert.Empty(t, attempts.Attempts)
}

func TestRecentScansFromDatabase(t *testing.T) {
	feed := &mockScanFeedStore{scans: []*repositories.RecentScan{
		{TicketNumber: "abc-123", UserName: "Guest", Status: "scanned"},
	}}
	svc := NewAdminService(&mockAdminStore{}, feed, nil, repositories.NewFallbackStore(), healthyHealth(t))

	result, err := svc.RecentScans(10)
	require.NoError(t, err)
	assert.False(t, result.Mock)
	require.Len(t, result.Scans, 1)
	assert.Equal(t, "abc-123", result.Scans[0].TicketNumber)
}

func TestClearFallbackReportsDropped(t *testing.T) {
	fallback := repositories.NewFallbackStore()
	seedFallbackBooking(fallback, 9, models.BookingPending, 2, 1398)

	svc := NewAdminService(nil, nil, nil, fallback, degradedHealth())

	dropped := svc.ClearFallback()
	assert.Equal(t, 1, dropped.Bookings)
	assert.Empty(t, fallback.Bookings())
}
