package entrycode

import (
	"encoding/base64"
	"encoding/json"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/ciaapp/seat-reservation/internal/model"
)

// qrSize is the pixel width/height of rendered QR images.
const qrSize = 256

// QRCodePNG mints the entry code for a seat state and renders the full
// admission payload as a base64-encoded PNG QR image, ready to embed in
// a JSON response or an email.
func (c *Codec) QRCodePNG(seatCode string, status model.SeatStatus, isHalfPrice bool) (string, error) {
	payload := Payload{
		SeatCode:    seatCode,
		Status:      string(status),
		IsHalfPrice: isHalfPrice,
		Hash:        c.Mint(seatCode, status, isHalfPrice),
	}
	content, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	png, err := qrcode.Encode(string(content), qrcode.Medium, qrSize)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(png), nil
}
