package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"dandiya-ticketing-platform/internal/models"
	"dandiya-ticketing-platform/internal/pricing"
)

// BookingRepository handles booking data operations
type BookingRepository struct {
	db *sql.DB
}

// NewBookingRepository creates a new booking repository
func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `id, booking_date, num_tickets, pass_type, ticket_type, status,
	total_amount, discount_amount, final_amount, bulk_discount_applied,
	original_ticket_price, discounted_price, COALESCE(payment_id, ''), created_at, updated_at`

func scanBooking(row interface{ Scan(...interface{}) error }) (*models.Booking, error) {
	b := &models.Booking{}
	err := row.Scan(
		&b.ID,
		&b.BookingDate,
		&b.NumTickets,
		&b.PassType,
		&b.TicketType,
		&b.Status,
		&b.TotalAmount,
		&b.DiscountAmount,
		&b.FinalAmount,
		&b.BulkDiscountApplied,
		&b.OriginalTicketPrice,
		&b.DiscountedPrice,
		&b.PaymentID,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Create inserts a pending booking priced by the given breakdown
func (r *BookingRepository) Create(bookingDate time.Time, numTickets int, passType models.PassType, ticketType string, price pricing.Breakdown) (*models.Booking, error) {
	query := `
		INSERT INTO bookings (
			booking_date, num_tickets, pass_type, ticket_type, status,
			total_amount, discount_amount, final_amount, bulk_discount_applied,
			original_ticket_price, discounted_price, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)
		RETURNING ` + bookingColumns

	now := time.Now()
	booking, err := scanBooking(r.db.QueryRow(
		query,
		bookingDate,
		numTickets,
		passType,
		ticketType,
		models.BookingPending,
		price.TotalAmount,
		price.Savings,
		price.TotalAmount,
		price.DiscountApplied,
		price.BasePrice,
		price.FinalPrice,
		now,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	return booking, nil
}

// GetByID retrieves a booking by ID
func (r *BookingRepository) GetByID(id models.ID) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, models.ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking %d: %w", id, err)
	}

	return booking, nil
}

// GetPricingInputs returns the stored pass type and quantity for
// server-side repricing. Client-supplied amounts are never trusted.
func (r *BookingRepository) GetPricingInputs(id models.ID) (models.PassType, int, error) {
	var passType models.PassType
	var numTickets int

	err := r.db.QueryRow(`SELECT pass_type, num_tickets FROM bookings WHERE id = $1`, id).
		Scan(&passType, &numTickets)
	if err == sql.ErrNoRows {
		return "", 0, models.ErrBookingNotFound
	}
	if err != nil {
		return "", 0, fmt.Errorf("failed to get booking pricing inputs: %w", err)
	}

	return passType, numTickets, nil
}

// Confirm flips a booking to confirmed and sets its amounts from the
// captured payment.
func (r *BookingRepository) Confirm(id models.ID, amount int64, paymentID string) (*models.Booking, error) {
	query := `
		UPDATE bookings
		SET status = $1, total_amount = $2, final_amount = $2, payment_id = $3, updated_at = $4
		WHERE id = $5
		RETURNING ` + bookingColumns

	booking, err := scanBooking(r.db.QueryRow(query, models.BookingConfirmed, amount, paymentID, time.Now(), id))
	if err == sql.ErrNoRows {
		return nil, models.ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to confirm booking %d: %w", id, err)
	}

	return booking, nil
}

// UpdatePaymentRef stores a payment reference on the booking for
// convenience. Best-effort: callers log and continue on failure.
func (r *BookingRepository) UpdatePaymentRef(id models.ID, paymentID string) error {
	_, err := r.db.Exec(`UPDATE bookings SET payment_id = $1, updated_at = $2 WHERE id = $3`,
		paymentID, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update booking payment ref: %w", err)
	}
	return nil
}

// BookingListing is a booking row flattened with its primary contact
// for the admin table.
type BookingListing struct {
	*models.Booking
	FullName      string `json:"full_name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Quantity      int    `json:"quantity"`
	PaymentStatus string `json:"payment_status"`
}

// ListRecent returns the latest bookings with contact and payment
// state flattened in, newest first.
func (r *BookingRepository) ListRecent(limit int) ([]*BookingListing, error) {
	// Columns are b.-qualified here: the lateral payments join also
	// exposes a status column, so the bare names from bookingColumns
	// would be ambiguous.
	query := `
		SELECT b.id, b.booking_date, b.num_tickets, b.pass_type, b.ticket_type, b.status,
			b.total_amount, b.discount_amount, b.final_amount, b.bulk_discount_applied,
			b.original_ticket_price, b.discounted_price, COALESCE(b.payment_id, ''), b.created_at, b.updated_at,
			COALESCE(u.name, 'N/A'), COALESCE(u.email, 'N/A'), COALESCE(u.phone, 'N/A'),
			COALESCE(p.status, 'pending')
		FROM bookings b
		LEFT JOIN LATERAL (
			SELECT name, email, phone FROM booking_users
			WHERE booking_id = b.id ORDER BY is_primary DESC, id ASC LIMIT 1
		) u ON true
		LEFT JOIN LATERAL (
			SELECT status FROM payments
			WHERE booking_id = b.id ORDER BY created_at DESC LIMIT 1
		) p ON true
		ORDER BY b.created_at DESC
		LIMIT $1`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	var listings []*BookingListing
	for rows.Next() {
		b := &models.Booking{}
		l := &BookingListing{Booking: b}
		err := rows.Scan(
			&b.ID, &b.BookingDate, &b.NumTickets, &b.PassType, &b.TicketType, &b.Status,
			&b.TotalAmount, &b.DiscountAmount, &b.FinalAmount, &b.BulkDiscountApplied,
			&b.OriginalTicketPrice, &b.DiscountedPrice, &b.PaymentID, &b.CreatedAt, &b.UpdatedAt,
			&l.FullName, &l.Email, &l.Phone, &l.PaymentStatus,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking listing: %w", err)
		}
		l.Quantity = b.NumTickets
		listings = append(listings, l)
	}

	return listings, rows.Err()
}

// DashboardStats aggregates the numbers the admin dashboard shows
type DashboardStats struct {
	TotalBookings   int   `json:"totalBookings"`
	TotalTickets    int   `json:"totalTickets"`
	TotalRevenue    int64 `json:"totalRevenue"`
	TotalScans      int   `json:"totalScans"`
	ScannedTickets  int   `json:"scannedTickets"`
	FailedScans     int   `json:"failedScans"`
	PendingBookings int   `json:"pendingBookings"`
	TodayBookings   int   `json:"todayBookings"`
	TodayRevenue    int64 `json:"todayRevenue"`
	TodayScans      int   `json:"todayScans"`
	ActiveStaff     int   `json:"activeStaff"`
}

// GetDashboardStats computes the admin dashboard aggregates
func (r *BookingRepository) GetDashboardStats() (*DashboardStats, error) {
	stats := &DashboardStats{}
	today := time.Now().Truncate(24 * time.Hour)

	query := `
		SELECT
			(SELECT COUNT(*) FROM bookings),
			(SELECT COALESCE(SUM(final_amount), 0) FROM bookings),
			(SELECT COUNT(*) FROM qr_codes WHERE is_used),
			(SELECT COUNT(*) FROM bookings WHERE status = 'pending'),
			(SELECT COUNT(*) FROM bookings WHERE booking_date >= $1),
			(SELECT COALESCE(SUM(final_amount), 0) FROM bookings WHERE booking_date >= $1),
			(SELECT COUNT(*) FROM qr_codes WHERE is_used AND used_at >= $1),
			(SELECT COUNT(*) FROM qr_codes WHERE NOT is_used AND expiry_date < NOW()),
			(SELECT COUNT(*) FROM staff)`

	err := r.db.QueryRow(query, today).Scan(
		&stats.TotalBookings,
		&stats.TotalRevenue,
		&stats.TotalScans,
		&stats.PendingBookings,
		&stats.TodayBookings,
		&stats.TodayRevenue,
		&stats.TodayScans,
		&stats.FailedScans,
		&stats.ActiveStaff,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compute dashboard stats: %w", err)
	}

	stats.TotalTickets = stats.TotalBookings
	stats.ScannedTickets = stats.TotalScans

	return stats, nil
}

// ChartPoint is one day of booking volume and revenue
type ChartPoint struct {
	Date     string `json:"date"`
	Bookings int    `json:"bookings"`
	Revenue  int64  `json:"revenue"`
}

// GetChartData returns per-day booking counts and revenue for the last
// N days, oldest first.
func (r *BookingRepository) GetChartData(days int) ([]ChartPoint, error) {
	since := time.Now().AddDate(0, 0, -days)

	query := `
		SELECT booking_date::date, COUNT(id), COALESCE(SUM(final_amount), 0)
		FROM bookings
		WHERE booking_date >= $1
		GROUP BY booking_date::date
		ORDER BY booking_date::date ASC`

	rows, err := r.db.Query(query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get chart data: %w", err)
	}
	defer rows.Close()

	var points []ChartPoint
	for rows.Next() {
		var p ChartPoint
		var day time.Time
		if err := rows.Scan(&day, &p.Bookings, &p.Revenue); err != nil {
			return nil, fmt.Errorf("failed to scan chart point: %w", err)
		}
		p.Date = day.Format("2006-01-02")
		points = append(points, p)
	}

	return points, rows.Err()
}
