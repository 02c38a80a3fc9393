package services

import (
	"fmt"
	"net/url"
	"time"

	"dandiya-ticketing-platform/internal/models"
)

// QRService builds ticket payloads and scannable image URLs.
// Images come from the qrserver.com render endpoint so clients can
// embed them directly; when even payload encoding fails the ticket is
// still issued with a placeholder image.
type QRService struct {
	imageSize int
}

// NewQRService creates a new QR generation service
func NewQRService() *QRService {
	return &QRService{imageSize: 300}
}

// BuildPayload assembles the scannable content for one ticket
func (s *QRService) BuildPayload(ticketNumber string, bookingID models.ID, passType models.PassType, eventDate time.Time) models.TicketPayload {
	return models.TicketPayload{
		TicketNumber: ticketNumber,
		BookingID:    fmt.Sprintf("%d", int64(bookingID)),
		PassType:     string(passType),
		EventDate:    eventDate.Format("2006-01-02"),
	}
}

// ImageURL returns a render URL for the encoded payload
func (s *QRService) ImageURL(encodedPayload string) string {
	return fmt.Sprintf(
		"https://api.qrserver.com/v1/create-qr-code/?size=%dx%d&data=%s",
		s.imageSize, s.imageSize, url.QueryEscape(encodedPayload),
	)
}

// PlaceholderURL is used when payload encoding fails; the ticket
// number alone is still scannable.
func (s *QRService) PlaceholderURL(ticketNumber string) string {
	return fmt.Sprintf(
		"https://api.qrserver.com/v1/create-qr-code/?size=%dx%d&data=%s",
		s.imageSize, s.imageSize, url.QueryEscape(ticketNumber),
	)
}
