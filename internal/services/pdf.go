package services

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"dandiya-ticketing-platform/internal/models"
)

// PDFService renders the ticket document attached to confirmation
// emails and published for WhatsApp delivery. The document is
// assembled by hand as a minimal single-page PDF so no rendering
// dependency is needed.
type PDFService struct {
	eventName string
}

// NewPDFService creates a new PDF service
func NewPDFService(eventName string) *PDFService {
	return &PDFService{eventName: eventName}
}

// GenerateTicketsPDF renders one document covering every ticket of a booking
func (s *PDFService) GenerateTicketsPDF(booking *models.Booking, primary *models.BookingUser, tickets []*models.QRCode) ([]byte, error) {
	var buffer bytes.Buffer

	buffer.WriteString("%PDF-1.4\n")

	// Object 1: Catalog
	buffer.WriteString("1 0 obj\n<<\n/Type /Catalog\n/Pages 2 0 R\n>>\nendobj\n\n")

	// Object 2: Pages
	buffer.WriteString("2 0 obj\n<<\n/Type /Pages\n/Kids [3 0 R]\n/Count 1\n>>\nendobj\n\n")

	content := s.buildContent(booking, primary, tickets)
	contentStream := s.formatContentForPDF(content)

	// Object 3: Page
	buffer.WriteString("3 0 obj\n<<\n/Type /Page\n/Parent 2 0 R\n/MediaBox [0 0 612 792]\n")
	buffer.WriteString("/Contents 4 0 R\n/Resources <<\n/Font <<\n/F1 5 0 R\n/F2 6 0 R\n>>\n>>\n>>\nendobj\n\n")

	// Object 4: Content stream
	buffer.WriteString(fmt.Sprintf("4 0 obj\n<<\n/Length %d\n>>\nstream\n", len(contentStream)))
	buffer.WriteString(contentStream)
	buffer.WriteString("\nendstream\nendobj\n\n")

	// Objects 5 and 6: fonts
	buffer.WriteString("5 0 obj\n<<\n/Type /Font\n/Subtype /Type1\n/BaseFont /Helvetica\n>>\nendobj\n\n")
	buffer.WriteString("6 0 obj\n<<\n/Type /Font\n/Subtype /Type1\n/BaseFont /Helvetica-Bold\n>>\nendobj\n\n")

	buffer.WriteString("xref\n0 7\n")
	buffer.WriteString("0000000000 65535 f \n")
	buffer.WriteString("0000000010 00000 n \n")
	buffer.WriteString("0000000079 00000 n \n")
	buffer.WriteString("0000000136 00000 n \n")
	buffer.WriteString("0000000301 00000 n \n")
	buffer.WriteString("0000000380 00000 n \n")
	buffer.WriteString("0000000459 00000 n \n")

	buffer.WriteString("trailer\n<<\n/Size 7\n/Root 1 0 R\n>>\nstartxref\n538\n%%EOF\n")

	return buffer.Bytes(), nil
}

func (s *PDFService) buildContent(booking *models.Booking, primary *models.BookingUser, tickets []*models.QRCode) string {
	var content strings.Builder

	content.WriteString(strings.ToUpper(s.eventName) + "\n")
	content.WriteString(strings.Repeat("=", len(s.eventName)) + "\n\n")

	content.WriteString("BOOKING DETAILS\n")
	content.WriteString("---------------\n")
	content.WriteString(fmt.Sprintf("Booking ID: %d\n", booking.ID))
	content.WriteString(fmt.Sprintf("Event Date: %s\n", booking.BookingDate.Format("Monday, January 2, 2006")))
	content.WriteString(fmt.Sprintf("Pass Type: %s\n", s.passTypeDisplay(booking.PassType)))
	content.WriteString(fmt.Sprintf("Tickets: %d\n", booking.NumTickets))
	content.WriteString(fmt.Sprintf("Amount Paid: Rs. %d\n", booking.FinalAmount))
	if booking.BulkDiscountApplied {
		content.WriteString(fmt.Sprintf("Bulk Discount: Rs. %d saved\n", booking.DiscountAmount))
	}
	if primary != nil {
		content.WriteString(fmt.Sprintf("Booked By: %s\n", primary.Name))
		if primary.Email != "" {
			content.WriteString(fmt.Sprintf("Email: %s\n", primary.Email))
		}
	}
	content.WriteString("\n")

	content.WriteString("YOUR PASSES\n")
	content.WriteString("-----------\n\n")

	for i, ticket := range tickets {
		content.WriteString(fmt.Sprintf("PASS #%d\n", i+1))
		content.WriteString(fmt.Sprintf("Ticket Number: %s\n", ticket.TicketNumber))
		content.WriteString(fmt.Sprintf("Valid Until: %s\n", ticket.ExpiryDate.Format("January 2, 2006")))
		content.WriteString(fmt.Sprintf("Scan Code:\n%s\n", s.qrRepresentation(ticket.TicketNumber)))

		if i < len(tickets)-1 {
			content.WriteString("\n" + strings.Repeat("-", 40) + "\n\n")
		}
	}

	content.WriteString("\n\nENTRY INSTRUCTIONS\n")
	content.WriteString("==================\n")
	content.WriteString("• Present this pass at the venue gate for scanning\n")
	content.WriteString("• Each pass admits its holder once; re-entry needs a fresh scan approval\n")
	content.WriteString("• Passes are non-transferable\n")
	content.WriteString(fmt.Sprintf("• Generated on: %s\n", time.Now().Format("January 2, 2006 at 3:04 PM")))

	return content.String()
}

func (s *PDFService) formatContentForPDF(content string) string {
	var stream strings.Builder

	stream.WriteString("BT\n")
	stream.WriteString("/F2 16 Tf\n")
	stream.WriteString("50 750 Td\n")

	lines := strings.Split(content, "\n")
	currentFont := "F2"
	currentSize := 16

	for _, line := range lines {
		switch {
		case strings.Contains(line, "BOOKING DETAILS") ||
			strings.Contains(line, "YOUR PASSES") ||
			strings.Contains(line, "ENTRY INSTRUCTIONS"):
			if currentFont != "F2" || currentSize != 14 {
				stream.WriteString("/F2 14 Tf\n")
				currentFont, currentSize = "F2", 14
			}
		case strings.HasPrefix(line, "PASS #"):
			if currentFont != "F2" || currentSize != 12 {
				stream.WriteString("/F2 12 Tf\n")
				currentFont, currentSize = "F2", 12
			}
		default:
			if currentFont != "F1" || currentSize != 10 {
				stream.WriteString("/F1 10 Tf\n")
				currentFont, currentSize = "F1", 10
			}
		}

		stream.WriteString(fmt.Sprintf("(%s) Tj\n", s.escapePDFString(line)))
		if line == "" {
			stream.WriteString("0 -8 Td\n")
		} else {
			stream.WriteString("0 -12 Td\n")
		}
	}

	stream.WriteString("ET\n")
	return stream.String()
}

// qrRepresentation draws a deterministic block pattern for a ticket
// number. The real scannable image lives at the ticket's image URL;
// this is only the printable stand-in.
func (s *PDFService) qrRepresentation(ticketNumber string) string {
	hash := 0
	for _, char := range ticketNumber {
		hash = hash*31 + int(char)
	}
	if hash < 0 {
		hash = -hash
	}

	var qr strings.Builder
	qr.WriteString("+" + strings.Repeat("-", 20) + "+\n")
	for i := 0; i < 8; i++ {
		qr.WriteString("|")
		for j := 0; j < 20; j++ {
			if (hash+i*20+j)%3 == 0 {
				qr.WriteString("#")
			} else {
				qr.WriteString(" ")
			}
		}
		qr.WriteString("|\n")
	}
	qr.WriteString("+" + strings.Repeat("-", 20) + "+")
	return qr.String()
}

func (s *PDFService) passTypeDisplay(passType models.PassType) string {
	switch passType {
	case models.PassFemale:
		return "Female Pass"
	case models.PassCouple:
		return "Couple Pass"
	case models.PassKids:
		return "Kids Pass"
	case models.PassFamily:
		return "Family Pass (4 members)"
	case models.PassMale:
		return "Male Pass"
	default:
		return string(passType)
	}
}

func (s *PDFService) escapePDFString(str string) string {
	str = strings.ReplaceAll(str, "\\", "\\\\")
	str = strings.ReplaceAll(str, "(", "\\(")
	str = strings.ReplaceAll(str, ")", "\\)")
	str = strings.ReplaceAll(str, "\r", "")
	return str
}
