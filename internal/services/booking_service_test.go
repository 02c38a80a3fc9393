package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dandiya-ticketing-platform/internal/models"
	"dandiya-ticketing-platform/internal/pricing"
	"dandiya-ticketing-platform/internal/repositories"
)

// healthyHealth returns a governor whose cached probe says the
// database is up, without ever touching the network.
func healthyHealth(t *testing.T) *HealthService {
	t.Helper()
	svc := NewHealthService(dummyDB(t))
	svc.probed = true
	svc.healthy = true
	svc.lastProbe = time.Now()
	return svc
}

// degradedHealth returns a governor with no database at all
func degradedHealth() *HealthService {
	return NewHealthService(nil)
}

type mockBookingStore struct {
	createFn  func(bookingDate time.Time, numTickets int, passType models.PassType, ticketType string, price pricing.Breakdown) (*models.Booking, error)
	getByIDFn func(id models.ID) (*models.Booking, error)
}

func (m *mockBookingStore) Create(bookingDate time.Time, numTickets int, passType models.PassType, ticketType string, price pricing.Breakdown) (*models.Booking, error) {
	return m.createFn(bookingDate, numTickets, passType, ticketType, price)
}

func (m *mockBookingStore) GetByID(id models.ID) (*models.Booking, error) {
	return m.getByIDFn(id)
}

type mockUserStore struct {
	createFn       func(bookingID models.ID, name, email, phone string, isPrimary bool) (*models.BookingUser, error)
	getByBookingFn func(bookingID models.ID) ([]*models.BookingUser, error)
}

func (m *mockUserStore) Create(bookingID models.ID, name, email, phone string, isPrimary bool) (*models.BookingUser, error) {
	return m.createFn(bookingID, name, email, phone, isPrimary)
}

func (m *mockUserStore) GetByBooking(bookingID models.ID) ([]*models.BookingUser, error) {
	if m.getByBookingFn == nil {
		return nil, nil
	}
	return m.getByBookingFn(bookingID)
}

func TestBookingServiceCreateBookingPersists(t *testing.T) {
	store := &mockBookingStore{
		createFn: func(bookingDate time.Time, numTickets int, passType models.PassType, ticketType string, price pricing.Breakdown) (*models.Booking, error) {
			assert.Equal(t, models.PassCouple, passType)
			assert.Equal(t, 2, numTickets)
			assert.Equal(t, int64(1398), price.TotalAmount)
			return &models.Booking{ID: 77, PassType: passType, NumTickets: numTickets, Status: models.BookingPending}, nil
		},
	}
	svc := NewBookingService(store, &mockUserStore{}, repositories.NewFallbackStore(), healthyHealth(t))

	booking, err := svc.CreateBooking(&models.BookingCreateRequest{
		BookingDate: "2025-09-27",
		NumTickets:  2,
		PassType:    models.PassCouple,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ID(77), booking.ID)
	assert.False(t, booking.IsMock)
}

func TestBookingServiceCreateBookingValidation(t *testing.T) {
	svc := NewBookingService(&mockBookingStore{}, &mockUserStore{}, repositories.NewFallbackStore(), degradedHealth())

	_, err := svc.CreateBooking(&models.BookingCreateRequest{})
	require.Error(t, err)
	assert.True(t, models.IsValidation(err))
	assert.Contains(t, err.Error(), "booking_date")
	assert.Contains(t, err.Error(), "num_tickets")
	assert.Contains(t, err.Error(), "pass_type")
}

func TestBookingServiceFallsBackWhenDegraded(t *testing.T) {
	fallback := repositories.NewFallbackStore()
	svc := NewBookingService(&mockBookingStore{}, &mockUserStore{}, fallback, degradedHealth())

	booking, err := svc.CreateBooking(&models.BookingCreateRequest{
		BookingDate: "2025-09-27",
		NumTickets:  6,
		PassType:    models.PassCouple,
	})
	require.NoError(t, err)
	assert.True(t, booking.IsMock)
	assert.True(t, booking.BulkDiscountApplied)
	assert.Equal(t, int64(1800), booking.TotalAmount)
	assert.Greater(t, int64(booking.ID), int64(1_000_000_000_000), "fallback id should be a millisecond timestamp")

	stored, err := fallback.GetBooking(booking.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.ID, stored.ID)
}

func TestBookingServiceGetBookingChecksFallbackOnMiss(t *testing.T) {
	fallback := repositories.NewFallbackStore()
	fallback.StoreBooking(&models.Booking{ID: 123, PassType: models.PassFemale})

	store := &mockBookingStore{
		getByIDFn: func(id models.ID) (*models.Booking, error) {
			return nil, models.ErrBookingNotFound
		},
	}
	svc := NewBookingService(store, &mockUserStore{}, fallback, healthyHealth(t))

	booking, err := svc.GetBooking(123)
	require.NoError(t, err)
	assert.True(t, booking.IsMock)

	_, err = svc.GetBooking(999)
	assert.ErrorIs(t, err, models.ErrBookingNotFound)
}

func TestBookingServiceAddUserToFallbackBooking(t *testing.T) {
	fallback := repositories.NewFallbackStore()
	fallback.StoreBooking(&models.Booking{ID: 555})

	svc := NewBookingService(&mockBookingStore{}, &mockUserStore{}, fallback, degradedHealth())

	user, err := svc.AddUser(&models.UserCreateRequest{
		BookingID: "555",
		Name:      "Asha Patel",
		Email:     "asha@example.com",
		Phone:     "9876543210",
		IsPrimary: true,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ID(555), user.BookingID)

	users := fallback.UsersByBooking(555)
	require.Len(t, users, 1)
	assert.Equal(t, "Asha Patel", users[0].Name)
}

func TestBookingServiceAddUserRejectsBadBookingID(t *testing.T) {
	svc := NewBookingService(&mockBookingStore{}, &mockUserStore{}, repositories.NewFallbackStore(), degradedHealth())

	_, err := svc.AddUser(&models.UserCreateRequest{BookingID: "not-a-number", Name: "X"})
	require.Error(t, err)
	assert.True(t, models.IsValidation(err))
}
