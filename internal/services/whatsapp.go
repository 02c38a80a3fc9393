package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"dandiya-ticketing-platform/internal/config"
	"dandiya-ticketing-platform/internal/models"
)

// WhatsAppService sends booking confirmations over WhatsApp through
// the AiSensy campaign API. Without an API key it runs in mock mode.
type WhatsAppService struct {
	config    config.WhatsAppConfig
	eventName string
	client    *http.Client
	baseURL   string
}

// NewWhatsAppService creates a new WhatsApp service
func NewWhatsAppService(cfg config.WhatsAppConfig, eventName string) *WhatsAppService {
	if cfg.APIKey == "" {
		log.Printf("⚠️ AiSensy API key not configured - WhatsApp service running in mock mode")
	}

	return &WhatsAppService{
		config:    cfg,
		eventName: eventName,
		client:    &http.Client{Timeout: 30 * time.Second},
		baseURL:   "https://backend.aisensy.com/campaign/t1/api/v2",
	}
}

// MockMode reports whether the service is running without an API key
func (s *WhatsAppService) MockMode() bool {
	return s.config.APIKey == ""
}

// Provider names the transport for audit rows
func (s *WhatsAppService) Provider() string {
	if s.MockMode() {
		return "mock"
	}
	return "aisensy"
}

type aisensyRequest struct {
	APIKey         string            `json:"apiKey"`
	CampaignName   string            `json:"campaignName"`
	Destination    string            `json:"destination"`
	UserName       string            `json:"userName"`
	TemplateParams []string          `json:"templateParams"`
	Media          *aisensyMedia     `json:"media,omitempty"`
	Attributes     map[string]string `json:"attributes,omitempty"`
}

type aisensyMedia struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// SendTicketMessage delivers the booking confirmation with the ticket
// document linked as media. pdfURL may be empty when publishing
// failed; the message then goes out without the attachment.
func (s *WhatsAppService) SendTicketMessage(booking *models.Booking, user *models.BookingUser, pdfURL string) error {
	if user == nil || user.Phone == "" {
		return fmt.Errorf("no recipient phone for booking %d", booking.ID)
	}

	destination := normalizePhone(user.Phone)

	if s.MockMode() {
		log.Printf("💬 Mock WhatsApp to %s: booking #%d confirmed (%d tickets, media %q)",
			destination, booking.ID, booking.NumTickets, pdfURL)
		return nil
	}

	req := aisensyRequest{
		APIKey:       s.config.APIKey,
		CampaignName: s.config.CampaignName,
		Destination:  destination,
		UserName:     s.config.SenderName,
		TemplateParams: []string{
			user.Name,
			s.eventName,
			fmt.Sprintf("%d", booking.ID),
			fmt.Sprintf("%d", booking.NumTickets),
			booking.BookingDate.Format("2 Jan 2006"),
		},
	}
	if pdfURL != "" {
		req.Media = &aisensyMedia{
			URL:      pdfURL,
			Filename: fmt.Sprintf("tickets-%d.pdf", booking.ID),
		}
	}

	jsonData, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal WhatsApp request: %w", err)
	}

	httpReq, err := http.NewRequest("POST", s.baseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create WhatsApp request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send WhatsApp request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read WhatsApp response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("aisensy rejected message with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	log.Printf("💬 WhatsApp sent to %s for booking #%d", destination, booking.ID)
	return nil
}

// normalizePhone strips formatting and prefixes the Indian country
// code when a bare 10-digit number comes in.
func normalizePhone(phone string) string {
	cleaned := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)

	if len(cleaned) == 10 {
		return "91" + cleaned
	}
	return cleaned
}
