package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"dandiya-ticketing-platform/internal/models"
)

// QRCodeRepository handles issued ticket data operations
type QRCodeRepository struct {
	db *sql.DB
}

// NewQRCodeRepository creates a new QR code repository
func NewQRCodeRepository(db *sql.DB) *QRCodeRepository {
	return &QRCodeRepository{db: db}
}

const qrColumns = `id, booking_id, COALESCE(user_id, 0), ticket_number, qr_data,
	COALESCE(qr_code_url, ''), expiry_date, is_used, used_at, COALESCE(used_by, ''), created_at`

func scanQRCode(row interface{ Scan(...interface{}) error }) (*models.QRCode, error) {
	qr := &models.QRCode{}
	err := row.Scan(
		&qr.ID,
		&qr.BookingID,
		&qr.UserID,
		&qr.TicketNumber,
		&qr.QRData,
		&qr.QRCodeURL,
		&qr.ExpiryDate,
		&qr.IsUsed,
		&qr.UsedAt,
		&qr.UsedBy,
		&qr.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return qr, nil
}

// Create persists one issued ticket
func (r *QRCodeRepository) Create(qr *models.QRCode) (*models.QRCode, error) {
	query := `
		INSERT INTO qr_codes (booking_id, user_id, ticket_number, qr_data, qr_code_url, expiry_date, is_used, created_at)
		VALUES ($1, NULLIF($2, 0), $3, $4, $5, $6, false, $7)
		RETURNING ` + qrColumns

	created, err := scanQRCode(r.db.QueryRow(
		query,
		qr.BookingID,
		qr.UserID,
		qr.TicketNumber,
		qr.QRData,
		qr.QRCodeURL,
		qr.ExpiryDate,
		time.Now(),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create qr code for booking %d: %w", qr.BookingID, err)
	}

	return created, nil
}

// TicketDetails is a ticket joined with its booking and holder context
// for the verification surface.
type TicketDetails struct {
	*models.QRCode
	PassType      models.PassType      `json:"pass_type"`
	BookingDate   time.Time            `json:"booking_date"`
	BookingStatus models.BookingStatus `json:"booking_status"`
	UserName      string               `json:"user_name"`
	UserEmail     string               `json:"user_email,omitempty"`
	UserPhone     string               `json:"user_phone,omitempty"`
}

// GetByTicketNumber retrieves a ticket with booking and holder context
func (r *QRCodeRepository) GetByTicketNumber(ticketNumber string) (*TicketDetails, error) {
	query := `
		SELECT qr.id, qr.booking_id, COALESCE(qr.user_id, 0), qr.ticket_number, qr.qr_data,
			COALESCE(qr.qr_code_url, ''), qr.expiry_date, qr.is_used, qr.used_at,
			COALESCE(qr.used_by, ''), qr.created_at,
			b.pass_type, b.booking_date, b.status,
			COALESCE(u.name, ''), COALESCE(u.email, ''), COALESCE(u.phone, '')
		FROM qr_codes qr
		JOIN bookings b ON qr.booking_id = b.id
		LEFT JOIN booking_users u ON qr.user_id = u.id
		WHERE qr.ticket_number = $1`

	qr := &models.QRCode{}
	details := &TicketDetails{QRCode: qr}
	err := r.db.QueryRow(query, ticketNumber).Scan(
		&qr.ID, &qr.BookingID, &qr.UserID, &qr.TicketNumber, &qr.QRData,
		&qr.QRCodeURL, &qr.ExpiryDate, &qr.IsUsed, &qr.UsedAt,
		&qr.UsedBy, &qr.CreatedAt,
		&details.PassType, &details.BookingDate, &details.BookingStatus,
		&details.UserName, &details.UserEmail, &details.UserPhone,
	)
	if err == sql.ErrNoRows {
		return nil, models.ErrTicketNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket %s: %w", ticketNumber, err)
	}

	return details, nil
}

// MarkUsed flips a ticket's used flag exactly once. The update is a
// single conditional statement so two simultaneous scans cannot both
// succeed; when zero rows match, a follow-up read distinguishes
// models.ErrTicketAlreadyUsed from models.ErrTicketNotFound.
func (r *QRCodeRepository) MarkUsed(ticketNumber, usedBy string) (*models.QRCode, error) {
	query := `
		UPDATE qr_codes
		SET is_used = true, used_at = NOW(), used_by = $2
		WHERE ticket_number = $1 AND is_used = false
		RETURNING ` + qrColumns

	qr, err := scanQRCode(r.db.QueryRow(query, ticketNumber, usedBy))
	if err == nil {
		return qr, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to mark ticket %s used: %w", ticketNumber, err)
	}

	// Zero rows: the ticket is either unknown or already used
	var isUsed bool
	err = r.db.QueryRow(`SELECT is_used FROM qr_codes WHERE ticket_number = $1`, ticketNumber).Scan(&isUsed)
	if err == sql.ErrNoRows {
		return nil, models.ErrTicketNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check ticket %s state: %w", ticketNumber, err)
	}
	if isUsed {
		return nil, models.ErrTicketAlreadyUsed
	}
	return nil, models.ErrTicketNotFound
}

// GetByBooking returns every ticket issued for a booking
func (r *QRCodeRepository) GetByBooking(bookingID models.ID) ([]*models.QRCode, error) {
	query := `SELECT ` + qrColumns + ` FROM qr_codes WHERE booking_id = $1 ORDER BY id ASC`

	rows, err := r.db.Query(query, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get qr codes for booking %d: %w", bookingID, err)
	}
	defer rows.Close()

	var codes []*models.QRCode
	for rows.Next() {
		qr, err := scanQRCode(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan qr code: %w", err)
		}
		codes = append(codes, qr)
	}

	return codes, rows.Err()
}

// RecentScan is one scanned ticket for the admin recent-scans feed
type RecentScan struct {
	ID           models.ID  `json:"id"`
	TicketNumber string     `json:"ticket_number"`
	Status       string     `json:"status"`
	CreatedAt    *time.Time `json:"created_at"`
	UserName     string     `json:"user_name"`
	BookingID    models.ID  `json:"booking_id"`
}

// ListRecentScans returns the latest used tickets, newest scan first
func (r *QRCodeRepository) ListRecentScans(limit int) ([]*RecentScan, error) {
	query := `
		SELECT qr.id, qr.ticket_number, qr.used_at, COALESCE(u.name, 'Guest'), qr.booking_id
		FROM qr_codes qr
		LEFT JOIN booking_users u ON qr.user_id = u.id
		WHERE qr.is_used AND qr.used_at IS NOT NULL
		ORDER BY qr.used_at DESC
		LIMIT $1`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent scans: %w", err)
	}
	defer rows.Close()

	var scans []*RecentScan
	for rows.Next() {
		s := &RecentScan{Status: "scanned"}
		if err := rows.Scan(&s.ID, &s.TicketNumber, &s.CreatedAt, &s.UserName, &s.BookingID); err != nil {
			return nil, fmt.Errorf("failed to scan recent scan row: %w", err)
		}
		scans = append(scans, s)
	}

	return scans, rows.Err()
}

