package models

import (
	"errors"
	"fmt"
	"time"
)

// PassType categorizes a ticket and determines its base price.
type PassType string

const (
	PassFemale PassType = "female"
	PassCouple PassType = "couple"
	PassKids   PassType = "kids"
	PassFamily PassType = "family"
	PassMale   PassType = "male"
)

// ValidPassTypes lists every pass type the booking schema accepts.
var ValidPassTypes = []PassType{PassFemale, PassCouple, PassKids, PassFamily, PassMale}

// IsValidPassType reports whether p is one of the five schema pass types.
func IsValidPassType(p PassType) bool {
	for _, v := range ValidPassTypes {
		if v == p {
			return true
		}
	}
	return false
}

// BookingStatus represents the lifecycle state of a booking
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// Booking represents a ticket booking in the system
type Booking struct {
	ID                  ID            `json:"id" db:"id"`
	BookingDate         time.Time     `json:"booking_date" db:"booking_date"`
	NumTickets          int           `json:"num_tickets" db:"num_tickets"`
	PassType            PassType      `json:"pass_type" db:"pass_type"`
	TicketType          string        `json:"ticket_type" db:"ticket_type"`
	Status              BookingStatus `json:"status" db:"status"`
	TotalAmount         int64         `json:"total_amount" db:"total_amount"` // Integer rupees
	DiscountAmount      int64         `json:"discount_amount" db:"discount_amount"`
	FinalAmount         int64         `json:"final_amount" db:"final_amount"`
	BulkDiscountApplied bool          `json:"bulk_discount_applied" db:"bulk_discount_applied"`
	OriginalTicketPrice int64         `json:"original_ticket_price" db:"original_ticket_price"`
	DiscountedPrice     int64         `json:"discounted_price" db:"discounted_price"`
	PaymentID           string        `json:"payment_id,omitempty" db:"payment_id"`
	CreatedAt           time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at" db:"updated_at"`

	// IsMock marks a synthetic booking produced while the store was
	// unreachable. Never persisted.
	IsMock bool `json:"_isMockBooking,omitempty" db:"-"`

	// Users is populated on read paths that join contacts in.
	Users []*BookingUser `json:"users,omitempty" db:"-"`
}

// BookingCreateRequest represents the data needed to create a booking
type BookingCreateRequest struct {
	BookingDate string   `json:"booking_date"`
	NumTickets  int      `json:"num_tickets"`
	PassType    PassType `json:"pass_type"`
	TicketType  string   `json:"ticket_type"`
}

// Validate validates booking creation data and returns the parsed
// booking date on success.
func (req *BookingCreateRequest) Validate() (time.Time, error) {
	var missing []string
	if req.BookingDate == "" {
		missing = append(missing, "booking_date")
	}
	if req.NumTickets == 0 {
		missing = append(missing, "num_tickets")
	}
	if req.PassType == "" {
		missing = append(missing, "pass_type")
	}
	if len(missing) > 0 {
		return time.Time{}, &ValidationError{
			Fields:  missing,
			Message: fmt.Sprintf("The following fields are required: %s", joinFields(missing)),
		}
	}

	if !IsValidPassType(req.PassType) {
		return time.Time{}, &ValidationError{
			Fields:  []string{"pass_type"},
			Message: fmt.Sprintf("pass_type must be one of: female, couple, kids, family, male (got %q)", req.PassType),
		}
	}

	if req.NumTickets < 1 {
		return time.Time{}, &ValidationError{
			Fields:  []string{"num_tickets"},
			Message: "num_tickets must be a positive integer",
		}
	}

	parsed, err := parseBookingDate(req.BookingDate)
	if err != nil {
		return time.Time{}, &ValidationError{
			Fields:  []string{"booking_date"},
			Message: fmt.Sprintf("booking_date must be a valid date (got %q)", req.BookingDate),
		}
	}

	return parsed, nil
}

// CanTransitionTo reports whether the status change is allowed.
// Pending bookings move to confirmed or cancelled; both end states are
// terminal.
func (b *Booking) CanTransitionTo(next BookingStatus) bool {
	if b.Status != BookingPending {
		return false
	}
	return next == BookingConfirmed || next == BookingCancelled
}

// Validate checks booking invariants
func (b *Booking) Validate() error {
	if b.NumTickets < 1 {
		return errors.New("num_tickets must be at least 1")
	}
	if !IsValidPassType(b.PassType) {
		return fmt.Errorf("invalid pass_type: %s", b.PassType)
	}
	if b.FinalAmount != b.TotalAmount-b.DiscountAmount {
		return errors.New("final_amount must equal total_amount minus discount_amount")
	}
	switch b.Status {
	case BookingPending, BookingConfirmed, BookingCancelled:
	default:
		return fmt.Errorf("invalid status: %s", b.Status)
	}
	return nil
}

func parseBookingDate(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %s", s)
}

func joinFields(fields []string) string {
	out := ""
	for i, f := range fields {
		if i > 0 {
			out += ", "
		}
		out += f
	}
	return out
}
