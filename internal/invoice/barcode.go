package invoice

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
)

// barcodePNG encodes content as a Code128 PNG, two pixels per module.
func barcodePNG(content string, height int) ([]byte, error) {
	bc, err := code128.Encode(content)
	if err != nil {
		return nil, fmt.Errorf("code128: %w", err)
	}
	scaled, err := barcode.Scale(bc, bc.Bounds().Dx()*2, height)
	if err != nil {
		return nil, fmt.Errorf("scale barcode: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return nil, fmt.Errorf("encode barcode: %w", err)
	}
	return buf.Bytes(), nil
}
