package services

import (
	"log"
	"time"

	"dandiya-ticketing-platform/internal/models"
	"dandiya-ticketing-platform/internal/monitoring"
	"dandiya-ticketing-platform/internal/repositories"
)

// TicketLookupStore interface for gate-side ticket operations
type TicketLookupStore interface {
	GetByTicketNumber(ticketNumber string) (*repositories.TicketDetails, error)
	MarkUsed(ticketNumber, usedBy string) (*models.QRCode, error)
}

// ScanAuditStore interface for scan attempt records
type ScanAuditStore interface {
	Record(bookingID models.ID, ticketNumber string, result models.ScanResult) error
}

// ScanService backs the gate scanner: it resolves scanned payloads to
// tickets, enforces single admission, and keeps an audit row per
// attempt. In degraded mode scanned payloads are trusted on their own
// content so the gate keeps moving.
type ScanService struct {
	tickets  TicketLookupStore
	scans    ScanAuditStore
	fallback *repositories.FallbackStore
	health   *HealthService
}

// NewScanService creates a new scan service
func NewScanService(tickets TicketLookupStore, scans ScanAuditStore, fallback *repositories.FallbackStore, health *HealthService) *ScanService {
	return &ScanService{
		tickets:  tickets,
		scans:    scans,
		fallback: fallback,
		health:   health,
	}
}

// VerifyResult is the scanner's answer for one ticket
type VerifyResult struct {
	Valid        bool                 `json:"valid"`
	Reason       string               `json:"reason,omitempty"`
	TicketNumber string               `json:"ticket_number"`
	PassType     models.PassType      `json:"pass_type,omitempty"`
	BookingID    models.ID            `json:"booking_id,omitempty"`
	UserName     string               `json:"user_name,omitempty"`
	BookingDate  *time.Time           `json:"booking_date,omitempty"`
	IsUsed       bool                 `json:"is_used"`
	UsedAt       *time.Time           `json:"used_at,omitempty"`
	UsedBy       string               `json:"used_by,omitempty"`
	Status       models.BookingStatus `json:"booking_status,omitempty"`
	Mock         bool                 `json:"mock,omitempty"`
}

// Verify resolves scanned QR content without consuming the ticket
func (s *ScanService) Verify(data string) (*VerifyResult, error) {
	payload := models.DecodeTicketPayload(data)

	if !s.health.DatabaseAvailable() {
		if result := s.lookupFallback(payload); result != nil {
			return result, nil
		}
		return s.verifyDegraded(payload), nil
	}

	details, err := s.tickets.GetByTicketNumber(payload.TicketNumber)
	if err == models.ErrTicketNotFound {
		// Tickets issued during an outage only exist in memory
		if result := s.lookupFallback(payload); result != nil {
			return result, nil
		}
		return nil, err
	}
	if err != nil {
		if repositories.IsConnectivityError(err) {
			s.health.MarkUnavailable()
			return s.verifyDegraded(payload), nil
		}
		return nil, err
	}

	result := &VerifyResult{
		TicketNumber: details.TicketNumber,
		PassType:     details.PassType,
		BookingID:    details.BookingID,
		UserName:     details.UserName,
		IsUsed:       details.IsUsed,
		UsedAt:       details.UsedAt,
		UsedBy:       details.UsedBy,
		Status:       details.BookingStatus,
	}
	bookingDate := details.BookingDate
	result.BookingDate = &bookingDate

	switch {
	case details.IsUsed:
		result.Reason = "ticket already used"
	case details.BookingStatus != models.BookingConfirmed:
		result.Reason = "booking not confirmed"
	case time.Now().After(details.ExpiryDate):
		result.Reason = "ticket expired"
	default:
		result.Valid = true
	}

	return result, nil
}

// MarkUsed consumes a ticket for admission. The flip is atomic: of
// two simultaneous scans exactly one succeeds and the other is
// recorded as a rejected repeat attempt.
func (s *ScanService) MarkUsed(data, staffName string) (*VerifyResult, error) {
	payload := models.DecodeTicketPayload(data)

	if !s.health.DatabaseAvailable() {
		return s.markUsedDegraded(payload, staffName)
	}

	qr, err := s.tickets.MarkUsed(payload.TicketNumber, staffName)
	switch err {
	case nil:
		s.recordScan(qr.BookingID, payload.TicketNumber, models.ScanAccepted)
		monitoring.TicketScans.WithLabelValues("accepted").Inc()
		return &VerifyResult{
			Valid:        true,
			TicketNumber: qr.TicketNumber,
			BookingID:    qr.BookingID,
			IsUsed:       true,
			UsedAt:       qr.UsedAt,
			UsedBy:       qr.UsedBy,
		}, nil

	case models.ErrTicketAlreadyUsed:
		details, derr := s.tickets.GetByTicketNumber(payload.TicketNumber)
		if derr == nil {
			s.recordScan(details.BookingID, payload.TicketNumber, models.ScanRejected)
		}
		monitoring.TicketScans.WithLabelValues("rejected").Inc()
		return nil, err

	case models.ErrTicketNotFound:
		return s.markUsedFallback(payload, staffName, err)

	default:
		if repositories.IsConnectivityError(err) {
			s.health.MarkUnavailable()
			result := s.verifyDegraded(payload)
			result.IsUsed = true
			result.UsedBy = staffName
			monitoring.TicketScans.WithLabelValues("accepted").Inc()
			return result, nil
		}
		return nil, err
	}
}

// markUsedDegraded admits a ticket while no store can be consulted.
// Tickets issued during the outage live in the fallback store and are
// consumed there, so a repeat scan is still rejected; anything older
// is admitted on the payload's own content.
func (s *ScanService) markUsedDegraded(payload models.TicketPayload, staffName string) (*VerifyResult, error) {
	if bookingID, err := models.ParseID(payload.BookingID); err == nil {
		qr, err := s.fallback.MarkQRUsed(bookingID, payload.TicketNumber, staffName)
		switch err {
		case nil:
			monitoring.TicketScans.WithLabelValues("accepted").Inc()
			log.Printf("🎫 Degraded mode admission for ticket %s by %s (not durably recorded)", payload.TicketNumber, staffName)
			return &VerifyResult{
				Valid:        true,
				TicketNumber: qr.TicketNumber,
				BookingID:    qr.BookingID,
				IsUsed:       true,
				UsedAt:       qr.UsedAt,
				UsedBy:       qr.UsedBy,
				Mock:         true,
			}, nil
		case models.ErrTicketAlreadyUsed:
			monitoring.TicketScans.WithLabelValues("rejected").Inc()
			return nil, err
		}
	}

	result := s.verifyDegraded(payload)
	result.IsUsed = true
	result.UsedBy = staffName
	monitoring.TicketScans.WithLabelValues("accepted").Inc()
	log.Printf("🎫 Degraded mode admission for ticket %s by %s (not durably recorded)", payload.TicketNumber, staffName)
	return result, nil
}

// markUsedFallback admits a ticket issued during an outage after the
// database came back. The ticket only exists in process memory, but
// the attempt is still audited since the database is reachable.
func (s *ScanService) markUsedFallback(payload models.TicketPayload, staffName string, notFound error) (*VerifyResult, error) {
	bookingID, err := models.ParseID(payload.BookingID)
	if err != nil {
		monitoring.TicketScans.WithLabelValues("rejected").Inc()
		return nil, notFound
	}

	qr, merr := s.fallback.MarkQRUsed(bookingID, payload.TicketNumber, staffName)
	switch merr {
	case nil:
		s.recordScan(bookingID, payload.TicketNumber, models.ScanAccepted)
		monitoring.TicketScans.WithLabelValues("accepted").Inc()
		return &VerifyResult{
			Valid:        true,
			TicketNumber: qr.TicketNumber,
			BookingID:    qr.BookingID,
			IsUsed:       true,
			UsedAt:       qr.UsedAt,
			UsedBy:       qr.UsedBy,
			Mock:         true,
		}, nil
	case models.ErrTicketAlreadyUsed:
		s.recordScan(bookingID, payload.TicketNumber, models.ScanRejected)
		monitoring.TicketScans.WithLabelValues("rejected").Inc()
		return nil, merr
	default:
		monitoring.TicketScans.WithLabelValues("rejected").Inc()
		return nil, notFound
	}
}

func (s *ScanService) recordScan(bookingID models.ID, ticketNumber string, result models.ScanResult) {
	if err := s.scans.Record(bookingID, ticketNumber, result); err != nil {
		log.Printf("⚠️ Failed to record scan for ticket %s: %v", ticketNumber, err)
	}
}

// lookupFallback finds a ticket that only exists in process memory
func (s *ScanService) lookupFallback(payload models.TicketPayload) *VerifyResult {
	bookingID, err := models.ParseID(payload.BookingID)
	if err != nil {
		return nil
	}
	for _, qr := range s.fallback.QRCodesByBooking(bookingID) {
		if qr.TicketNumber != payload.TicketNumber {
			continue
		}
		result := &VerifyResult{
			TicketNumber: qr.TicketNumber,
			BookingID:    qr.BookingID,
			IsUsed:       qr.IsUsed,
			UsedAt:       qr.UsedAt,
			UsedBy:       qr.UsedBy,
			Mock:         true,
		}
		if qr.IsUsed {
			result.Reason = "ticket already used"
		} else {
			result.Valid = true
		}
		return result
	}
	return nil
}

// verifyDegraded trusts the payload's own content when no store can
// be consulted. The result is flagged mock so the scanner UI can show
// the operator it is running blind.
func (s *ScanService) verifyDegraded(payload models.TicketPayload) *VerifyResult {
	result := &VerifyResult{
		Valid:        true,
		TicketNumber: payload.TicketNumber,
		PassType:     models.PassType(payload.PassType),
		Mock:         true,
	}
	if id, err := models.ParseID(payload.BookingID); err == nil {
		result.BookingID = id
	}
	return result
}
