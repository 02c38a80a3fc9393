package repositories

import (
	"database/sql"
	"fmt"

	"dandiya-ticketing-platform/internal/models"
)

// MessageLogRepository is the notification audit trail
type MessageLogRepository struct {
	db *sql.DB
}

// NewMessageLogRepository creates a new message log repository
func NewMessageLogRepository(db *sql.DB) *MessageLogRepository {
	return &MessageLogRepository{db: db}
}

// Append records one delivery attempt. Audit writes never fail the
// caller's flow, so errors are returned for logging only.
func (r *MessageLogRepository) Append(log *models.MessageLog) error {
	query := `
		INSERT INTO message_logs (booking_id, user_id, message_type, provider, status, cost_amount, error_message, sent_at)
		VALUES ($1, NULLIF($2, 0), $3, $4, $5, $6, NULLIF($7, ''), NOW())`

	_, err := r.db.Exec(query, log.BookingID, log.UserID, log.Channel, log.Provider, log.Status, log.CostAmount, log.ErrorMessage)
	if err != nil {
		return fmt.Errorf("failed to append message log for booking %d: %w", log.BookingID, err)
	}

	return nil
}

