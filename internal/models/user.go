package models

import (
	"regexp"
	"time"
)

// BookingUser is a ticket holder or contact attached to a booking.
// The primary user (at most one per booking) is the notification target.
type BookingUser struct {
	ID        ID        `json:"id" db:"id"`
	BookingID ID        `json:"booking_id" db:"booking_id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Phone     string    `json:"phone" db:"phone"`
	IsPrimary bool      `json:"is_primary" db:"is_primary"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// UserCreateRequest represents the data needed to attach a user to a booking
type UserCreateRequest struct {
	BookingID string `json:"booking_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	IsPrimary bool   `json:"is_primary"`
}

var userEmailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Validate validates user creation data
func (req *UserCreateRequest) Validate() error {
	var missing []string
	if req.BookingID == "" {
		missing = append(missing, "booking_id")
	}
	if req.Name == "" {
		missing = append(missing, "name")
	}
	if len(missing) > 0 {
		return &ValidationError{
			Fields:  missing,
			Message: "The following fields are required: " + joinFields(missing),
		}
	}

	if req.Email != "" && !userEmailRegex.MatchString(req.Email) {
		return &ValidationError{
			Fields:  []string{"email"},
			Message: "email format is invalid",
		}
	}

	return nil
}

// PrimaryUser returns the designated contact for a set of booking users:
// the first user flagged primary, else the first user, else nil.
func PrimaryUser(users []*BookingUser) *BookingUser {
	for _, u := range users {
		if u.IsPrimary {
			return u
		}
	}
	if len(users) > 0 {
		return users[0]
	}
	return nil
}
