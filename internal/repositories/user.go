package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"dandiya-ticketing-platform/internal/models"
)

// UserRepository handles booking contact data operations
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create attaches a ticket holder to a booking
func (r *UserRepository) Create(bookingID models.ID, name, email, phone string, isPrimary bool) (*models.BookingUser, error) {
	query := `
		INSERT INTO booking_users (booking_id, name, email, phone, is_primary, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, booking_id, name, COALESCE(email, ''), COALESCE(phone, ''), is_primary, created_at`

	user := &models.BookingUser{}
	err := r.db.QueryRow(query, bookingID, name, email, phone, isPrimary, time.Now()).Scan(
		&user.ID,
		&user.BookingID,
		&user.Name,
		&user.Email,
		&user.Phone,
		&user.IsPrimary,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to add user to booking %d: %w", bookingID, err)
	}

	return user, nil
}

// GetByBooking returns every user attached to a booking, primary first
func (r *UserRepository) GetByBooking(bookingID models.ID) ([]*models.BookingUser, error) {
	query := `
		SELECT id, booking_id, name, COALESCE(email, ''), COALESCE(phone, ''), is_primary, created_at
		FROM booking_users
		WHERE booking_id = $1
		ORDER BY is_primary DESC, id ASC`

	rows, err := r.db.Query(query, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get users for booking %d: %w", bookingID, err)
	}
	defer rows.Close()

	var users []*models.BookingUser
	for rows.Next() {
		u := &models.BookingUser{}
		err := rows.Scan(&u.ID, &u.BookingID, &u.Name, &u.Email, &u.Phone, &u.IsPrimary, &u.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking user: %w", err)
		}
		users = append(users, u)
	}

	return users, rows.Err()
}
