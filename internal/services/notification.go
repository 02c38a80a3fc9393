package services

import (
	"log"
	"time"

	"dandiya-ticketing-platform/internal/models"
	"dandiya-ticketing-platform/internal/monitoring"
)

// MessageLogStore interface for the notification audit trail
type MessageLogStore interface {
	Append(log *models.MessageLog) error
}

// EmailSender delivers issued tickets over email and reports the
// provider's message id when it has one
type EmailSender interface {
	Provider() string
	SendTicketEmail(booking *models.Booking, user *models.BookingUser, tickets []*models.QRCode, pdfBytes []byte) (string, error)
}

// WhatsAppSender delivers the ticket link over WhatsApp
type WhatsAppSender interface {
	Provider() string
	SendTicketMessage(booking *models.Booking, user *models.BookingUser, pdfURL string) error
}

// NotificationService fans a confirmed booking out to its delivery
// channels. Email and WhatsApp run independently: one failing never
// stops the other, and neither failing ever fails the booking flow.
// Every attempt lands in the audit trail.
type NotificationService struct {
	email    EmailSender
	whatsapp WhatsAppSender
	logs     MessageLogStore
	health   *HealthService
}

// NewNotificationService creates a new notification dispatcher
func NewNotificationService(email EmailSender, whatsapp WhatsAppSender, logs MessageLogStore, health *HealthService) *NotificationService {
	return &NotificationService{
		email:    email,
		whatsapp: whatsapp,
		logs:     logs,
		health:   health,
	}
}

// DispatchReport summarizes one notification fan-out
type DispatchReport struct {
	EmailSent    bool   `json:"email_sent"`
	EmailError   string `json:"email_error,omitempty"`
	WhatsAppSent bool   `json:"whatsapp_sent"`
	WhatsAppErr  string `json:"whatsapp_error,omitempty"`
}

// SendTicketNotifications delivers the issued tickets to the booking's
// primary contact over every channel that has an address for them.
func (s *NotificationService) SendTicketNotifications(booking *models.Booking, users []*models.BookingUser, issued *IssueResult) DispatchReport {
	var report DispatchReport

	primary := models.PrimaryUser(users)
	if primary == nil {
		log.Printf("⚠️ No contact registered for booking %d, skipping notifications", booking.ID)
		report.EmailError = "no contact registered"
		report.WhatsAppErr = "no contact registered"
		return report
	}

	if primary.Email != "" {
		providerID, err := s.email.SendTicketEmail(booking, primary, issued.Tickets, issued.PDFBytes)
		report.EmailSent = err == nil
		if err != nil {
			report.EmailError = err.Error()
			log.Printf("⚠️ Email delivery failed for booking %d: %v", booking.ID, err)
		} else if providerID != "" {
			log.Printf("📧 Email for booking %d accepted by %s, message id %s", booking.ID, s.email.Provider(), providerID)
		}
		s.audit(booking.ID, primary.ID, models.ChannelEmail, s.email.Provider(), err)
		monitoring.NotificationAttempts.WithLabelValues(string(models.ChannelEmail), outcome(err)).Inc()
	} else {
		report.EmailError = "no email on file"
	}

	if primary.Phone != "" {
		err := s.whatsapp.SendTicketMessage(booking, primary, issued.PDFURL)
		report.WhatsAppSent = err == nil
		if err != nil {
			report.WhatsAppErr = err.Error()
			log.Printf("⚠️ WhatsApp delivery failed for booking %d: %v", booking.ID, err)
		}
		s.audit(booking.ID, primary.ID, models.ChannelWhatsApp, s.whatsapp.Provider(), err)
		monitoring.NotificationAttempts.WithLabelValues(string(models.ChannelWhatsApp), outcome(err)).Inc()
	} else {
		report.WhatsAppErr = "no phone on file"
	}

	return report
}

// audit appends a delivery attempt row. In degraded mode there is no
// durable audit trail; the attempt is logged and dropped.
func (s *NotificationService) audit(bookingID, userID models.ID, channel models.MessageChannel, provider string, sendErr error) {
	entry := &models.MessageLog{
		BookingID: bookingID,
		UserID:    userID,
		Channel:   channel,
		Provider:  provider,
		Status:    models.MessageSent,
		SentAt:    time.Now(),
	}
	if sendErr != nil {
		entry.Status = models.MessageFailed
		entry.ErrorMessage = truncate(sendErr.Error(), 255)
	}

	if !s.health.DatabaseAvailable() {
		log.Printf("📝 Degraded mode, message log not persisted: booking=%d channel=%s status=%s", bookingID, channel, entry.Status)
		return
	}
	if err := s.logs.Append(entry); err != nil {
		log.Printf("⚠️ Failed to append message log for booking %d: %v", bookingID, err)
	}
}

func outcome(err error) string {
	if err != nil {
		return "failed"
	}
	return "sent"
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
