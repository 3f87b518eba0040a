package tickets

import (
	"fmt"

	"ms-registration/internal/logger"
	"ms-registration/internal/models"
	qr_generator "ms-registration/internal/tickets/qr_generator"
	"ms-registration/internal/tickets/template"
)

// TicketService issues QR tickets and printable passes.
type TicketService struct {
	QR     *qr_generator.QRGenerator
	Pass   *template.TicketPassGenerator
	Logger *logger.Logger
}

func NewTicketService(qr *qr_generator.QRGenerator, pass *template.TicketPassGenerator, log *logger.Logger) *TicketService {
	return &TicketService{QR: qr, Pass: pass, Logger: log}
}

// IssueTicket produces the QR ticket bound to a user id. The PNG may lack
// the brand logo when the asset cannot be read; that is never an error.
func (s *TicketService) IssueTicket(userID string) (*models.Ticket, error) {
	pngBytes, err := s.QR.GenerateTicketPNG(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ticket for user %s: %w", userID, err)
	}

	return &models.Ticket{
		UserID: userID,
		Link:   s.QR.Link(userID),
		PNG:    pngBytes,
	}, nil
}

// RenderPass produces the printable PDF pass for a registered user.
func (s *TicketService) RenderPass(user models.User) ([]byte, error) {
	ticket, err := s.IssueTicket(user.ID)
	if err != nil {
		return nil, err
	}

	pdfBytes, err := s.Pass.Generate(user, ticket.PNG)
	if err != nil {
		return nil, fmt.Errorf("failed to render pass for user %s: %w", user.ID, err)
	}
	return pdfBytes, nil
}
