package share

import (
	"fmt"

	"github.com/skip2/go-qrcode"

	"github.com/quartetgames/quartet/internal/game"
)

// QR renders the puzzle's deep link as a terminal-printable QR block,
// for handing a puzzle to a phone.
func QR(kind game.Kind, date game.Date) (string, error) {
	q, err := qrcode.New(deepURL(kind, date), qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("building qr code: %w", err)
	}
	return q.ToSmallString(false), nil
}

// QRPNG renders the deep link as a PNG of the given pixel size.
func QRPNG(kind game.Kind, date game.Date, size int) ([]byte, error) {
	data, err := qrcode.Encode(deepURL(kind, date), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encoding qr code: %w", err)
	}
	return data, nil
}
