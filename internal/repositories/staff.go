package repositories

import (
	"database/sql"
	"fmt"

	"dandiya-ticketing-platform/internal/models"
)

// StaffRepository handles staff account data operations
type StaffRepository struct {
	db *sql.DB
}

// NewStaffRepository creates a new staff repository
func NewStaffRepository(db *sql.DB) *StaffRepository {
	return &StaffRepository{db: db}
}

// GetByEmail retrieves a staff account by email
func (r *StaffRepository) GetByEmail(email string) (*models.Staff, error) {
	query := `
		SELECT id, email, password_hash, name, role, created_at
		FROM staff
		WHERE email = $1`

	s := &models.Staff{}
	err := r.db.QueryRow(query, email).Scan(&s.ID, &s.Email, &s.PasswordHash, &s.Name, &s.Role, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get staff by email: %w", err)
	}

	return s, nil
}

// Create inserts a staff account, ignoring duplicates by email
func (r *StaffRepository) Create(staff *models.Staff) error {
	query := `
		INSERT INTO staff (email, password_hash, name, role, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (email) DO NOTHING`

	if _, err := r.db.Exec(query, staff.Email, staff.PasswordHash, staff.Name, staff.Role); err != nil {
		return fmt.Errorf("failed to create staff %s: %w", staff.Email, err)
	}

	return nil
}
