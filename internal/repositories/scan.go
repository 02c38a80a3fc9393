package repositories

import (
	"database/sql"
	"fmt"

	"dandiya-ticketing-platform/internal/models"
)

// ScanRepository records every verification attempt, accepted or not
type ScanRepository struct {
	db *sql.DB
}

// NewScanRepository creates a new scan repository
func NewScanRepository(db *sql.DB) *ScanRepository {
	return &ScanRepository{db: db}
}

// Record upserts an attempt row for a ticket number. Repeat attempts
// bump the counter and overwrite the last result, so rejected re-scans
// of an already used ticket stay visible in the audit trail.
func (r *ScanRepository) Record(bookingID models.ID, ticketNumber string, result models.ScanResult) error {
	query := `
		INSERT INTO qr_scans (booking_id, ticket_number, used_at, attempts, last_result, last_attempt_at)
		VALUES ($1, $2, NOW(), 1, $3, NOW())
		ON CONFLICT (ticket_number) DO UPDATE
		SET attempts = qr_scans.attempts + 1,
			last_result = EXCLUDED.last_result,
			last_attempt_at = NOW()`

	if _, err := r.db.Exec(query, bookingID, ticketNumber, result); err != nil {
		return fmt.Errorf("failed to record scan for ticket %s: %w", ticketNumber, err)
	}

	return nil
}

// ListRecent returns the latest attempt rows, most recent attempt first
func (r *ScanRepository) ListRecent(limit int) ([]*models.QRScan, error) {
	query := `
		SELECT id, booking_id, ticket_number, used_at, attempts, last_result, last_attempt_at
		FROM qr_scans
		ORDER BY last_attempt_at DESC
		LIMIT $1`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list scans: %w", err)
	}
	defer rows.Close()

	var scans []*models.QRScan
	for rows.Next() {
		s := &models.QRScan{}
		if err := rows.Scan(&s.ID, &s.BookingID, &s.TicketNumber, &s.UsedAt, &s.Attempts, &s.LastResult, &s.LastAttemptAt); err != nil {
			return nil, fmt.Errorf("failed to scan attempt row: %w", err)
		}
		scans = append(scans, s)
	}

	return scans, rows.Err()
}
