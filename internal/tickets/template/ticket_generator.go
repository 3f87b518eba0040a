package template

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/signintech/gopdf"

	"ms-registration/internal/models"
)

// TicketPassGenerator renders a printable A4 pass with the registrant's
// details and their check-in QR code.
type TicketPassGenerator struct{}

func NewTicketPassGenerator() *TicketPassGenerator {
	return &TicketPassGenerator{}
}

func (g *TicketPassGenerator) Generate(user models.User, qrCode []byte) ([]byte, error) {
	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	pdf.AddPage()

	err := pdf.AddTTFFont("dejavu", "./fonts/DejaVuSans.ttf")
	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}

	err = pdf.SetFont("dejavu", "", 14)
	if err != nil {
		return nil, fmt.Errorf("failed to set font: %w", err)
	}

	addHeader(pdf)

	pdf.SetY(60)
	addRegistrantInfo(pdf, user)

	if len(qrCode) > 0 {
		pdf.SetY(pdf.GetY() + 20)
		addQRCode(pdf, qrCode)
	}

	pdf.SetY(260)
	addFooter(pdf)

	var buf bytes.Buffer
	err = pdf.Write(&buf)
	if err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}

	return buf.Bytes(), nil
}

func addHeader(pdf *gopdf.GoPdf) {
	pdf.SetX(40)
	pdf.SetY(30)
	pdf.Cell(nil, "EVENT PASS")
}

func addRegistrantInfo(pdf *gopdf.GoPdf, user models.User) {
	info := []struct {
		Label string
		Value string
	}{
		{"Name", user.Name},
		{"Email", user.Email},
		{"Registrant ID", user.ID},
		{"Checked In", fmt.Sprintf("%v", user.Present)},
	}

	for _, item := range info {
		pdf.Cell(nil, item.Label+": "+item.Value)
		pdf.Br(20)
	}
}

func addQRCode(pdf *gopdf.GoPdf, qrCode []byte) {
	img, err := png.Decode(bytes.NewReader(qrCode))
	if err != nil {
		pdf.Cell(nil, "Failed to load QR code")
		return
	}

	rect := &gopdf.Rect{W: 150, H: 150}
	err = pdf.ImageFrom(img, 100, pdf.GetY(), rect)
	if err != nil {
		pdf.Cell(nil, "Failed to draw QR code")
	}
}

func addFooter(pdf *gopdf.GoPdf) {
	pdf.SetX(50)
	pdf.Cell(nil, "Show this pass or the QR from your email at the entrance.")
}
