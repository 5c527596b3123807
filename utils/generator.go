package utils

import (
	"math/rand"
	"time"

	"github.com/anjiri1684/tutor_scheduler/models"
	"gorm.io/gorm"
)

const invoiceReferenceLength = 8
const letterBytes = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateUniqueInvoiceReference returns an "INV-" code not yet used by
// any invoice visible to tx.
func GenerateUniqueInvoiceReference(tx *gorm.DB) (string, error) {
	seededRand := rand.New(rand.NewSource(time.Now().UnixNano()))

	for {
		b := make([]byte, invoiceReferenceLength)
		for i := range b {
			b[i] = letterBytes[seededRand.Intn(len(letterBytes))]
		}
		code := "INV-" + string(b)

		var count int64
		if err := tx.Model(&models.Invoice{}).Where("reference = ?", code).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return code, nil
		}
	}
}
