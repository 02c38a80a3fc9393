package repositories

import (
	"sort"
	"sync"
	"time"

	"dandiya-ticketing-platform/internal/models"
)

// FallbackStore keeps bookings created while the database is
// unreachable so the purchase flow can keep moving. Everything here is
// process-local and lost on restart; rows are flagged with
// _isMockBooking so callers and operators can tell them apart from
// durable data.
type FallbackStore struct {
	mu       sync.RWMutex
	bookings map[models.ID]*models.Booking
	users    map[models.ID][]*models.BookingUser
	payments map[models.ID][]*models.Payment
	qrCodes  map[models.ID][]*models.QRCode
}

// NewFallbackStore creates an empty fallback store
func NewFallbackStore() *FallbackStore {
	return &FallbackStore{
		bookings: make(map[models.ID]*models.Booking),
		users:    make(map[models.ID][]*models.BookingUser),
		payments: make(map[models.ID][]*models.Payment),
		qrCodes:  make(map[models.ID][]*models.QRCode),
	}
}

// StoreBooking saves or replaces a booking by id and marks it as mock
func (s *FallbackStore) StoreBooking(b *models.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *b
	copied.IsMock = true
	s.bookings[copied.ID] = &copied
}

// GetBooking returns a stored booking or ErrBookingNotFound
func (s *FallbackStore) GetBooking(id models.ID) (*models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, models.ErrBookingNotFound
	}
	copied := *b
	return &copied, nil
}

// UpdateBookingStatus applies a status change to a stored booking
func (s *FallbackStore) UpdateBookingStatus(id models.ID, status models.BookingStatus, finalAmount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return models.ErrBookingNotFound
	}
	b.Status = status
	if finalAmount > 0 {
		b.FinalAmount = finalAmount
	}
	b.UpdatedAt = time.Now()
	return nil
}

// StoreUser appends an attendee to a stored booking, replacing any
// existing entry with the same id.
func (s *FallbackStore) StoreUser(u *models.BookingUser) {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *u
	users := s.users[copied.BookingID]
	for i, existing := range users {
		if existing.ID == copied.ID {
			users[i] = &copied
			return
		}
	}
	s.users[copied.BookingID] = append(users, &copied)
}

// UsersByBooking returns the attendees stored for a booking
func (s *FallbackStore) UsersByBooking(bookingID models.ID) []*models.BookingUser {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := s.users[bookingID]
	out := make([]*models.BookingUser, 0, len(users))
	for _, u := range users {
		copied := *u
		out = append(out, &copied)
	}
	return out
}

// StorePayment appends a payment record, replacing by id
func (s *FallbackStore) StorePayment(p *models.Payment) {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *p
	payments := s.payments[copied.BookingID]
	for i, existing := range payments {
		if existing.ID == copied.ID {
			payments[i] = &copied
			return
		}
	}
	s.payments[copied.BookingID] = append(payments, &copied)
}

// LatestPayment returns the most recently stored payment for a booking
func (s *FallbackStore) LatestPayment(bookingID models.ID) (*models.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payments := s.payments[bookingID]
	if len(payments) == 0 {
		return nil, models.ErrNoPaymentForBooking
	}
	copied := *payments[len(payments)-1]
	return &copied, nil
}

// StoreQRCode appends an issued ticket, replacing by ticket number
func (s *FallbackStore) StoreQRCode(qr *models.QRCode) {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *qr
	codes := s.qrCodes[copied.BookingID]
	for i, existing := range codes {
		if existing.TicketNumber == copied.TicketNumber {
			codes[i] = &copied
			return
		}
	}
	s.qrCodes[copied.BookingID] = append(codes, &copied)
}

// MarkQRUsed consumes an in-memory ticket. The check and the flip
// happen under one lock so a repeat scan cannot slip through.
func (s *FallbackStore) MarkQRUsed(bookingID models.ID, ticketNumber, usedBy string) (*models.QRCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, qr := range s.qrCodes[bookingID] {
		if qr.TicketNumber != ticketNumber {
			continue
		}
		if qr.IsUsed {
			return nil, models.ErrTicketAlreadyUsed
		}
		now := time.Now()
		qr.IsUsed = true
		qr.UsedAt = &now
		qr.UsedBy = usedBy
		copied := *qr
		return &copied, nil
	}
	return nil, models.ErrTicketNotFound
}

// QRCodesByBooking returns the tickets stored for a booking
func (s *FallbackStore) QRCodesByBooking(bookingID models.ID) []*models.QRCode {
	s.mu.RLock()
	defer s.mu.RUnlock()

	codes := s.qrCodes[bookingID]
	out := make([]*models.QRCode, 0, len(codes))
	for _, qr := range codes {
		copied := *qr
		out = append(out, &copied)
	}
	return out
}

// Bookings returns every stored booking with its attendees attached,
// newest first.
func (s *FallbackStore) Bookings() []*models.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Booking, 0, len(s.bookings))
	for id, b := range s.bookings {
		copied := *b
		for _, u := range s.users[id] {
			uc := *u
			copied.Users = append(copied.Users, &uc)
		}
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// FallbackStats summarizes what currently sits in the fallback store
type FallbackStats struct {
	Bookings int `json:"bookings"`
	Users    int `json:"users"`
	Payments int `json:"payments"`
	QRCodes  int `json:"qr_codes"`
}

// Stats counts the stored rows per category
func (s *FallbackStore) Stats() FallbackStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := FallbackStats{Bookings: len(s.bookings)}
	for _, users := range s.users {
		stats.Users += len(users)
	}
	for _, payments := range s.payments {
		stats.Payments += len(payments)
	}
	for _, codes := range s.qrCodes {
		stats.QRCodes += len(codes)
	}
	return stats
}

// Clear drops everything in the store and returns what was dropped
func (s *FallbackStore) Clear() FallbackStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := FallbackStats{Bookings: len(s.bookings)}
	for _, users := range s.users {
		stats.Users += len(users)
	}
	for _, payments := range s.payments {
		stats.Payments += len(payments)
	}
	for _, codes := range s.qrCodes {
		stats.QRCodes += len(codes)
	}

	s.bookings = make(map[models.ID]*models.Booking)
	s.users = make(map[models.ID][]*models.BookingUser)
	s.payments = make(map[models.ID][]*models.Payment)
	s.qrCodes = make(map[models.ID][]*models.QRCode)
	return stats
}
