package qr_generator

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	"image/png"
	"os"

	"github.com/skip2/go-qrcode"
	xdraw "golang.org/x/image/draw"
)

const (
	qrSize   = 600
	logoSize = 220
	logoPad  = 5
)

// QRGenerator renders branded check-in tickets. The QR encodes the
// verification URL at the highest error-correction level so the centered
// logo overlay does not make the code unscannable.
type QRGenerator struct {
	baseURL  string
	logoPath string
}

func NewQRGenerator(baseURL, logoPath string) *QRGenerator {
	return &QRGenerator{baseURL: baseURL, logoPath: logoPath}
}

// Link returns the verification URL bound to a user id. The exact format is
// part of the wire contract: printed tickets resolve against the frontend.
func (g *QRGenerator) Link(userID string) string {
	return fmt.Sprintf("%s/congratulations?id=%s", g.baseURL, userID)
}

// GenerateTicketPNG returns the PNG ticket for a user id. A missing or
// unreadable logo degrades to the plain QR code; ticket issuance never fails
// solely because branding is unavailable.
func (g *QRGenerator) GenerateTicketPNG(userID string) ([]byte, error) {
	qr, err := qrcode.New(g.Link(userID), qrcode.Highest)
	if err != nil {
		return nil, fmt.Errorf("failed to build QR code: %w", err)
	}

	canvas := image.NewRGBA(image.Rect(0, 0, qrSize, qrSize))
	draw.Draw(canvas, canvas.Bounds(), qr.Image(qrSize), image.Point{}, draw.Src)

	if logo, err := g.loadLogo(); err == nil {
		overlayLogo(canvas, logo)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("failed to encode ticket PNG: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *QRGenerator) loadLogo() (image.Image, error) {
	f, err := os.Open(g.logoPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	logo, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	return logo, nil
}

// overlayLogo paints an opaque white backing square, then the scaled logo,
// centered over the QR modules.
func overlayLogo(canvas *image.RGBA, logo image.Image) {
	x := (qrSize - logoSize) / 2
	y := (qrSize - logoSize) / 2

	backing := image.Rect(x-logoPad, y-logoPad, x+logoSize+logoPad, y+logoSize+logoPad)
	draw.Draw(canvas, backing, &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	scaled := image.NewRGBA(image.Rect(0, 0, logoSize, logoSize))
	xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), logo, logo.Bounds(), xdraw.Over, nil)

	target := image.Rect(x, y, x+logoSize, y+logoSize)
	draw.Draw(canvas, target, scaled, image.Point{}, draw.Over)
}
