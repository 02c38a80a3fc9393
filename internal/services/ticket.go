package services

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"dandiya-ticketing-platform/internal/models"
	"dandiya-ticketing-platform/internal/repositories"
)

// ticketValidityDays is how long issued passes stay scannable
const ticketValidityDays = 30

// QRStore interface for issued ticket data operations
type QRStore interface {
	Create(qr *models.QRCode) (*models.QRCode, error)
	GetByBooking(bookingID models.ID) ([]*models.QRCode, error)
}

// TicketService issues passes for confirmed bookings: one QR ticket
// per seat, plus a PDF document published for download and WhatsApp
// delivery. Rendering or publishing failures never void the tickets
// themselves.
type TicketService struct {
	qrCodes  QRStore
	qr       *QRService
	pdf      *PDFService
	storage  StorageService
	fallback *repositories.FallbackStore
	health   *HealthService
}

// NewTicketService creates a new ticket issuance service
func NewTicketService(qrCodes QRStore, qr *QRService, pdf *PDFService, storage StorageService, fallback *repositories.FallbackStore, health *HealthService) *TicketService {
	return &TicketService{
		qrCodes:  qrCodes,
		qr:       qr,
		pdf:      pdf,
		storage:  storage,
		fallback: fallback,
		health:   health,
	}
}

// IssueResult is what ticket issuance hands to the notification flow
type IssueResult struct {
	Tickets  []*models.QRCode
	PDFBytes []byte
	PDFURL   string
}

// IssueTickets creates one ticket per seat on the booking. Tickets
// are persisted individually; a storage outage mid-issue moves the
// remainder to the fallback store rather than failing the batch.
func (s *TicketService) IssueTickets(booking *models.Booking, users []*models.BookingUser) (*IssueResult, error) {
	if booking.NumTickets < 1 {
		return nil, fmt.Errorf("booking %d has no seats to issue", booking.ID)
	}

	expiry := time.Now().AddDate(0, 0, ticketValidityDays)
	primary := models.PrimaryUser(users)

	tickets := make([]*models.QRCode, 0, booking.NumTickets)
	for i := 0; i < booking.NumTickets; i++ {
		ticketNumber := uuid.New().String()

		payload := s.qr.BuildPayload(ticketNumber, booking.ID, booking.PassType, booking.BookingDate)
		encoded, err := payload.Encode()

		var imageURL string
		if err != nil {
			log.Printf("⚠️ Payload encoding failed for ticket %s, issuing with placeholder: %v", ticketNumber, err)
			encoded = ticketNumber
			imageURL = s.qr.PlaceholderURL(ticketNumber)
		} else {
			imageURL = s.qr.ImageURL(encoded)
		}

		qr := &models.QRCode{
			BookingID:    booking.ID,
			TicketNumber: ticketNumber,
			QRData:       encoded,
			QRCodeURL:    imageURL,
			ExpiryDate:   expiry,
			CreatedAt:    time.Now(),
		}

		// The holder slot is best effort: seat i maps to attendee i
		// when one was registered.
		if i < len(users) {
			qr.UserID = users[i].ID
		}

		tickets = append(tickets, s.persistTicket(booking, qr))
	}

	result := &IssueResult{Tickets: tickets}

	pdfBytes, err := s.pdf.GenerateTicketsPDF(booking, primary, tickets)
	if err != nil {
		log.Printf("⚠️ Ticket PDF rendering failed for booking %d: %v", booking.ID, err)
		return result, nil
	}
	result.PDFBytes = pdfBytes

	key := fmt.Sprintf("tickets/booking-%d.pdf", booking.ID)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	url, err := s.storage.Upload(ctx, key, bytes.NewReader(pdfBytes), "application/pdf", int64(len(pdfBytes)))
	if err != nil {
		log.Printf("⚠️ Ticket PDF publishing failed for booking %d: %v", booking.ID, err)
		return result, nil
	}
	result.PDFURL = url

	return result, nil
}

func (s *TicketService) persistTicket(booking *models.Booking, qr *models.QRCode) *models.QRCode {
	if booking.IsMock || !s.health.DatabaseAvailable() {
		s.fallback.StoreQRCode(qr)
		return qr
	}

	created, err := s.qrCodes.Create(qr)
	if err == nil {
		return created
	}
	if repositories.IsConnectivityError(err) {
		s.health.MarkUnavailable()
	}
	log.Printf("⚠️ Ticket insert failed for booking %d, keeping in memory: %v", booking.ID, err)
	s.fallback.StoreQRCode(qr)
	return qr
}

// TicketsForBooking returns issued tickets from whichever store holds them
func (s *TicketService) TicketsForBooking(booking *models.Booking) ([]*models.QRCode, error) {
	if !booking.IsMock && s.health.DatabaseAvailable() {
		tickets, err := s.qrCodes.GetByBooking(booking.ID)
		if err == nil && len(tickets) > 0 {
			return tickets, nil
		}
		if err != nil && repositories.IsConnectivityError(err) {
			s.health.MarkUnavailable()
		} else if err != nil {
			return nil, err
		}
	}

	return s.fallback.QRCodesByBooking(booking.ID), nil
}
