package services

import (
	"fmt"
	"log"
	"time"

	"dandiya-ticketing-platform/internal/models"
	"dandiya-ticketing-platform/internal/monitoring"
	"dandiya-ticketing-platform/internal/pricing"
	"dandiya-ticketing-platform/internal/repositories"
)

// BookingStore interface for booking data operations
type BookingStore interface {
	Create(bookingDate time.Time, numTickets int, passType models.PassType, ticketType string, price pricing.Breakdown) (*models.Booking, error)
	GetByID(id models.ID) (*models.Booking, error)
}

// UserStore interface for attendee data operations
type UserStore interface {
	Create(bookingID models.ID, name, email, phone string, isPrimary bool) (*models.BookingUser, error)
	GetByBooking(bookingID models.ID) ([]*models.BookingUser, error)
}

// BookingService creates bookings and attaches attendees. When the
// database is unreachable the flow does not stop: the booking is held
// in the in-process fallback store, flagged as mock, so the customer
// can still pay and receive tickets.
type BookingService struct {
	bookings BookingStore
	users    UserStore
	fallback *repositories.FallbackStore
	health   *HealthService
}

// NewBookingService creates a new booking service
func NewBookingService(bookings BookingStore, users UserStore, fallback *repositories.FallbackStore, health *HealthService) *BookingService {
	return &BookingService{
		bookings: bookings,
		users:    users,
		fallback: fallback,
		health:   health,
	}
}

// CreateBooking prices and persists a new booking
func (s *BookingService) CreateBooking(req *models.BookingCreateRequest) (*models.Booking, error) {
	bookingDate, err := req.Validate()
	if err != nil {
		return nil, err
	}

	price, err := pricing.Calculate(req.PassType, req.NumTickets)
	if err != nil {
		return nil, err
	}

	ticketType := req.TicketType
	if ticketType == "" {
		ticketType = string(req.PassType)
	}

	if s.health.DatabaseAvailable() {
		booking, err := s.bookings.Create(bookingDate, req.NumTickets, req.PassType, ticketType, price)
		if err == nil {
			monitoring.BookingsCreated.WithLabelValues(string(req.PassType), "database").Inc()
			return booking, nil
		}
		if !repositories.IsConnectivityError(err) {
			return nil, err
		}
		s.health.MarkUnavailable()
		log.Printf("⚠️ Booking insert failed with connectivity error, falling back: %v", err)
	}

	return s.createFallbackBooking(bookingDate, req, ticketType, price), nil
}

// createFallbackBooking synthesizes a booking in process memory.
// The millisecond timestamp id mirrors what clients already handle
// for offline bookings.
func (s *BookingService) createFallbackBooking(bookingDate time.Time, req *models.BookingCreateRequest, ticketType string, price pricing.Breakdown) *models.Booking {
	now := time.Now()
	booking := &models.Booking{
		ID:                  models.ID(now.UnixMilli()),
		BookingDate:         bookingDate,
		NumTickets:          req.NumTickets,
		PassType:            req.PassType,
		TicketType:          ticketType,
		Status:              models.BookingPending,
		TotalAmount:         price.TotalAmount,
		DiscountAmount:      price.Savings,
		FinalAmount:         price.TotalAmount,
		BulkDiscountApplied: price.DiscountApplied,
		OriginalTicketPrice: price.BasePrice,
		DiscountedPrice:     price.FinalPrice,
		CreatedAt:           now,
		UpdatedAt:           now,
		IsMock:              true,
	}
	s.fallback.StoreBooking(booking)
	monitoring.BookingsCreated.WithLabelValues(string(req.PassType), "fallback").Inc()
	log.Printf("📦 Fallback booking %d stored in memory (%s x%d)", booking.ID, booking.PassType, booking.NumTickets)
	return booking
}

// GetBooking retrieves a booking from the database or, in degraded
// mode, from the fallback store.
func (s *BookingService) GetBooking(id models.ID) (*models.Booking, error) {
	if s.health.DatabaseAvailable() {
		booking, err := s.bookings.GetByID(id)
		if err == nil {
			return booking, nil
		}
		if !repositories.IsConnectivityError(err) {
			// Durable store says not found; a fallback booking may
			// still exist under this id.
			if fb, fbErr := s.fallback.GetBooking(id); fbErr == nil {
				return fb, nil
			}
			return nil, err
		}
		s.health.MarkUnavailable()
	}

	return s.fallback.GetBooking(id)
}

// AddUser validates and attaches an attendee to a booking
func (s *BookingService) AddUser(req *models.UserCreateRequest) (*models.BookingUser, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	bookingID, err := models.ParseID(req.BookingID)
	if err != nil {
		return nil, &models.ValidationError{
			Fields:  []string{"booking_id"},
			Message: fmt.Sprintf("booking_id must be numeric (got %q)", req.BookingID),
		}
	}

	booking, err := s.GetBooking(bookingID)
	if err != nil {
		return nil, err
	}

	if booking.IsMock || !s.health.DatabaseAvailable() {
		return s.addFallbackUser(bookingID, req), nil
	}

	user, err := s.users.Create(bookingID, req.Name, req.Email, req.Phone, req.IsPrimary)
	if err == nil {
		return user, nil
	}
	if !repositories.IsConnectivityError(err) {
		return nil, err
	}
	s.health.MarkUnavailable()
	log.Printf("⚠️ Attendee insert failed with connectivity error, falling back: %v", err)
	return s.addFallbackUser(bookingID, req), nil
}

func (s *BookingService) addFallbackUser(bookingID models.ID, req *models.UserCreateRequest) *models.BookingUser {
	user := &models.BookingUser{
		ID:        models.ID(time.Now().UnixMilli()),
		BookingID: bookingID,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		IsPrimary: req.IsPrimary,
		CreatedAt: time.Now(),
	}
	s.fallback.StoreUser(user)
	return user
}

// GetUsers returns the attendees for a booking from whichever store
// holds them.
func (s *BookingService) GetUsers(bookingID models.ID) ([]*models.BookingUser, error) {
	if s.health.DatabaseAvailable() {
		users, err := s.users.GetByBooking(bookingID)
		if err == nil && len(users) > 0 {
			return users, nil
		}
		if err != nil && repositories.IsConnectivityError(err) {
			s.health.MarkUnavailable()
		} else if err != nil {
			return nil, err
		}
	}

	return s.fallback.UsersByBooking(bookingID), nil
}
