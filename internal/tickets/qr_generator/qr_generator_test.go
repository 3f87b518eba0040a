package qr_generator_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	qr_generator "ms-registration/internal/tickets/qr_generator"
)

func TestLinkFormat(t *testing.T) {
	qrGen := qr_generator.NewQRGenerator("https://example.com", "")

	link := qrGen.Link("user-123")
	expected := "https://example.com/congratulations?id=user-123"
	if link != expected {
		t.Errorf("Expected %s, got %s", expected, link)
	}
}

func TestGenerateTicketPNG(t *testing.T) {
	qrGen := qr_generator.NewQRGenerator("https://example.com", "")

	pngBytes, err := qrGen.GenerateTicketPNG("user-123")
	if err != nil {
		t.Fatalf("Failed to generate ticket: %v", err)
	}
	if len(pngBytes) == 0 {
		t.Fatal("Generated ticket is empty")
	}

	img, err := png.Decode(bytes.NewReader(pngBytes))
	if err != nil {
		t.Fatalf("Ticket is not a valid PNG: %v", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() != 600 || bounds.Dy() != 600 {
		t.Errorf("Expected a 600x600 ticket, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestGenerateTicketPNGWithMissingLogo(t *testing.T) {
	// A missing logo must degrade to a plain QR, never fail generation.
	qrGen := qr_generator.NewQRGenerator("https://example.com", "./no/such/logo.jpg")

	pngBytes, err := qrGen.GenerateTicketPNG("user-123")
	if err != nil {
		t.Fatalf("Expected fallback to plain QR, got error: %v", err)
	}

	if _, err := png.Decode(bytes.NewReader(pngBytes)); err != nil {
		t.Fatalf("Fallback ticket is not a valid PNG: %v", err)
	}
}

func TestGenerateTicketPNGWithLogoOverlay(t *testing.T) {
	logoPath := filepath.Join(t.TempDir(), "logo.png")
	writeTestLogo(t, logoPath)

	plain := qr_generator.NewQRGenerator("https://example.com", "")
	branded := qr_generator.NewQRGenerator("https://example.com", logoPath)

	plainBytes, err := plain.GenerateTicketPNG("user-123")
	if err != nil {
		t.Fatalf("Failed to generate plain ticket: %v", err)
	}

	brandedBytes, err := branded.GenerateTicketPNG("user-123")
	if err != nil {
		t.Fatalf("Failed to generate branded ticket: %v", err)
	}

	if bytes.Equal(plainBytes, brandedBytes) {
		t.Error("Expected the logo overlay to change the ticket image")
	}

	img, err := png.Decode(bytes.NewReader(brandedBytes))
	if err != nil {
		t.Fatalf("Branded ticket is not a valid PNG: %v", err)
	}

	// The center pixel sits inside the logo overlay and must carry the
	// logo fill, not a black QR module.
	center := img.At(300, 300)
	r, g, b, _ := center.RGBA()
	if r == 0 && g == 0 && b == 0 {
		t.Error("Expected the logo to cover the center of the QR code")
	}
}

func TestDifferentUsersGetDifferentTickets(t *testing.T) {
	qrGen := qr_generator.NewQRGenerator("https://example.com", "")

	first, err := qrGen.GenerateTicketPNG("user-1")
	if err != nil {
		t.Fatalf("Failed to generate first ticket: %v", err)
	}
	second, err := qrGen.GenerateTicketPNG("user-2")
	if err != nil {
		t.Fatalf("Failed to generate second ticket: %v", err)
	}

	if bytes.Equal(first, second) {
		t.Error("Tickets for different users should encode different payloads")
	}
}

func writeTestLogo(t *testing.T, path string) {
	t.Helper()

	logo := image.NewRGBA(image.Rect(0, 0, 64, 64))
	green := color.RGBA{R: 0, G: 98, B: 65, A: 255}
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			logo.Set(x, y, green)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create logo file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, logo); err != nil {
		t.Fatalf("Failed to encode logo: %v", err)
	}
}
