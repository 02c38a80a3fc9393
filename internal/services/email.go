package services

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"mime/quotedprintable"
	"net/http"
	"net/smtp"
	"time"

	"dandiya-ticketing-platform/internal/config"
	"dandiya-ticketing-platform/internal/models"
)

// EmailService sends booking confirmations. Resend is the primary
// provider; plain SMTP is the fallback when only SMTP credentials are
// configured. With neither configured it runs in mock mode and logs
// the message instead of sending.
type EmailService struct {
	resend    config.ResendConfig
	smtp      config.EmailConfig
	eventName string
	client    *http.Client
}

// NewEmailService creates a new email service
func NewEmailService(resend config.ResendConfig, smtpCfg config.EmailConfig, eventName string) *EmailService {
	if resend.APIKey == "" && smtpCfg.SMTPHost == "" {
		log.Printf("⚠️ No email provider configured - email service running in mock mode")
	}

	return &EmailService{
		resend:    resend,
		smtp:      smtpCfg,
		eventName: eventName,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Provider names the transport a delivery went through, for audit rows
func (s *EmailService) Provider() string {
	if s.resend.APIKey != "" {
		return "resend"
	}
	if s.smtp.SMTPHost != "" {
		return "smtp"
	}
	return "mock"
}

type resendEmailRequest struct {
	From        string             `json:"from"`
	To          []string           `json:"to"`
	Subject     string             `json:"subject"`
	HTML        string             `json:"html,omitempty"`
	Attachments []resendAttachment `json:"attachments,omitempty"`
}

type resendAttachment struct {
	Filename string `json:"filename"`
	Content  string `json:"content"` // base64
}

type resendEmailResponse struct {
	ID string `json:"id"`
}

type resendErrorResponse struct {
	Message string `json:"message"`
	Name    string `json:"name"`
}

// SendTicketEmail delivers the confirmation email with the ticket PDF
// attached. Returns the provider message id when one is available.
func (s *EmailService) SendTicketEmail(booking *models.Booking, user *models.BookingUser, tickets []*models.QRCode, pdfBytes []byte) (string, error) {
	if user == nil || user.Email == "" {
		return "", fmt.Errorf("no recipient email for booking %d", booking.ID)
	}

	subject := fmt.Sprintf("Your %s Tickets - Booking #%d", s.eventName, booking.ID)
	html := s.buildTicketHTML(booking, user, tickets)

	switch s.Provider() {
	case "resend":
		return s.sendViaResend(user.Email, subject, html, pdfBytes, booking.ID)
	case "smtp":
		return "", s.sendViaSMTP(user.Email, subject, html, pdfBytes, booking.ID)
	default:
		log.Printf("📧 Mock email to %s: %s (%d tickets, %d byte PDF)", user.Email, subject, len(tickets), len(pdfBytes))
		return "mock_email_" + fmt.Sprint(booking.ID), nil
	}
}

func (s *EmailService) sendViaResend(to, subject, html string, pdfBytes []byte, bookingID models.ID) (string, error) {
	from := s.resend.FromEmail
	if s.resend.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.resend.FromName, s.resend.FromEmail)
	}

	req := resendEmailRequest{
		From:    from,
		To:      []string{to},
		Subject: subject,
		HTML:    html,
	}
	if len(pdfBytes) > 0 {
		req.Attachments = []resendAttachment{{
			Filename: fmt.Sprintf("tickets-%d.pdf", bookingID),
			Content:  base64.StdEncoding.EncodeToString(pdfBytes),
		}}
	}

	jsonData, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal email request: %w", err)
	}

	httpReq, err := http.NewRequest("POST", "https://api.resend.com/emails", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create email request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+s.resend.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to send email request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read email response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr resendErrorResponse
		if err := json.Unmarshal(bodyBytes, &apiErr); err == nil && apiErr.Message != "" {
			return "", fmt.Errorf("resend rejected email (%s): %s", apiErr.Name, apiErr.Message)
		}
		return "", fmt.Errorf("resend rejected email with status %d", resp.StatusCode)
	}

	var emailResp resendEmailResponse
	if err := json.Unmarshal(bodyBytes, &emailResp); err != nil {
		return "", fmt.Errorf("failed to decode email response: %w", err)
	}

	log.Printf("📧 Email sent to %s via Resend (id %s)", to, emailResp.ID)
	return emailResp.ID, nil
}

func (s *EmailService) sendViaSMTP(to, subject, html string, pdfBytes []byte, bookingID models.ID) error {
	var msg bytes.Buffer
	writer := multipart.NewWriter(&msg)

	headers := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: multipart/mixed; boundary=%s\r\n\r\n",
		s.smtp.FromEmail, to, subject, writer.Boundary())

	htmlHeader := make(map[string][]string)
	htmlHeader["Content-Type"] = []string{"text/html; charset=UTF-8"}
	htmlHeader["Content-Transfer-Encoding"] = []string{"quoted-printable"}
	htmlPart, err := writer.CreatePart(htmlHeader)
	if err != nil {
		return fmt.Errorf("failed to create email body part: %w", err)
	}
	qp := quotedprintable.NewWriter(htmlPart)
	if _, err := qp.Write([]byte(html)); err != nil {
		return fmt.Errorf("failed to write email body: %w", err)
	}
	qp.Close()

	if len(pdfBytes) > 0 {
		attachHeader := make(map[string][]string)
		attachHeader["Content-Type"] = []string{"application/pdf"}
		attachHeader["Content-Transfer-Encoding"] = []string{"base64"}
		attachHeader["Content-Disposition"] = []string{fmt.Sprintf(`attachment; filename="tickets-%d.pdf"`, bookingID)}
		attachPart, err := writer.CreatePart(attachHeader)
		if err != nil {
			return fmt.Errorf("failed to create attachment part: %w", err)
		}
		if _, err := attachPart.Write([]byte(base64.StdEncoding.EncodeToString(pdfBytes))); err != nil {
			return fmt.Errorf("failed to write attachment: %w", err)
		}
	}
	writer.Close()

	addr := fmt.Sprintf("%s:%d", s.smtp.SMTPHost, s.smtp.SMTPPort)
	auth := smtp.PlainAuth("", s.smtp.SMTPUser, s.smtp.SMTPPassword, s.smtp.SMTPHost)

	full := append([]byte(headers), msg.Bytes()...)
	if err := smtp.SendMail(addr, auth, s.smtp.FromEmail, []string{to}, full); err != nil {
		return fmt.Errorf("failed to send email via SMTP: %w", err)
	}

	log.Printf("📧 Email sent to %s via SMTP", to)
	return nil
}

func (s *EmailService) buildTicketHTML(booking *models.Booking, user *models.BookingUser, tickets []*models.QRCode) string {
	var b bytes.Buffer

	fmt.Fprintf(&b, `<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<title>Your Tickets</title>
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #D97706; color: white; padding: 20px; text-align: center; }
		.ticket { border: 1px dashed #D97706; padding: 16px; margin: 16px 0; }
		.footer { text-align: center; padding: 20px; color: #666; font-size: 12px; }
	</style>
</head>
<body>
<div class="container">
	<div class="header"><h1>%s</h1></div>
	<p>Hi %s,</p>
	<p>Your booking #%d is confirmed! Amount paid: Rs. %d for %d ticket(s).</p>
`, s.eventName, user.Name, booking.ID, booking.FinalAmount, booking.NumTickets)

	for i, t := range tickets {
		fmt.Fprintf(&b, `	<div class="ticket">
		<h3>Pass %d</h3>
		<p>Ticket Number: <strong>%s</strong></p>
		<p><img src="%s" alt="QR code" width="200" height="200"></p>
		<p>Valid until %s</p>
	</div>
`, i+1, t.TicketNumber, t.QRCodeURL, t.ExpiryDate.Format("January 2, 2006"))
	}

	fmt.Fprintf(&b, `	<p>Please present the QR codes at the venue gate. Your PDF tickets are attached.</p>
	<div class="footer">See you on %s!</div>
</div>
</body>
</html>`, booking.BookingDate.Format("Monday, January 2, 2006"))

	return b.String()
}
