package models

import "time"

// StaffRole determines what a verifier-app account may do
type StaffRole string

const (
	RoleAdmin StaffRole = "admin"
	RoleStaff StaffRole = "staff"
)

// Staff is a verifier-app account (gate staff or admin)
type Staff struct {
	ID           ID        `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Name         string    `json:"name" db:"name"`
	Role         StaffRole `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
