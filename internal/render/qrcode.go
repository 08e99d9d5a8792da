package render

import (
	"image"

	"github.com/skip2/go-qrcode"
)

const defaultQRCodeSizePx = 256

// GenerateQRCodeImage returns a QR code image for the given payload drawn
// in the theme colours. If payload is empty, it returns (nil, nil).
func GenerateQRCodeImage(payload string, sizePx int) (image.Image, error) {
	if payload == "" {
		return nil, nil
	}
	if sizePx <= 0 {
		sizePx = defaultQRCodeSizePx
	}

	qrCode, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return nil, err
	}
	qrCode.ForegroundColor = Foreground
	qrCode.BackgroundColor = Background
	qrCode.DisableBorder = true

	return qrCode.Image(sizePx), nil
}

// QRCache regenerates the code only when the payload or size changes.
type QRCache struct {
	payload string
	size    int
	img     image.Image
}

func (c *QRCache) Image(payload string, sizePx int) (image.Image, error) {
	if c.img != nil && payload == c.payload && sizePx == c.size {
		return c.img, nil
	}
	img, err := GenerateQRCodeImage(payload, sizePx)
	if err != nil {
		return nil, err
	}
	c.payload, c.size, c.img = payload, sizePx, img
	return img, nil
}
