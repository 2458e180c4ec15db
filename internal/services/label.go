package services

import (
	"fmt"

	"github.com/skip2/go-qrcode"

	"inventory_back_end/internal/models"
)

const defaultLabelSize = 256

// RenderLabel produit l'étiquette PNG d'un produit : un QR code portant SKU et nom.
func RenderLabel(p models.Product, size int) ([]byte, error) {
	if size <= 0 {
		size = defaultLabelSize
	}
	content := fmt.Sprintf("SKU:%s\nNAME:%s\nCATEGORY:%s", p.SKU, p.Name, p.Category)
	return qrcode.Encode(content, qrcode.Medium, size)
}
