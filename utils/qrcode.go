package utils

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
)

const ticketQRSize = 300

// TicketContent is what a booking ticket QR code encodes
func TicketContent(bookingID string) string {
	return fmt.Sprintf("homelyeats://booking/%s", bookingID)
}

// GenerateTicketQRCode renders the ticket for bookingID as a base64 PNG data URL
func GenerateTicketQRCode(bookingID string) (string, error) {
	qrCode, err := qr.Encode(TicketContent(bookingID), qr.M, qr.Auto)
	if err != nil {
		return "", err
	}

	qrCode, err = barcode.Scale(qrCode, ticketQRSize, ticketQRSize)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, qrCode); err != nil {
		return "", err
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
