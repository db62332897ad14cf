package checkout

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CheckoutRequest struct {
	Lines []CartLine `json:"lines"`
}

// POST /api/checkout
// Hata eşlemesi: validation → 400, ürün yok → 404, yetersiz stok → 422
// (shortfall listesiyle), eşzamanlılık çakışması → 409 (retry edilebilir).
// Başarısız her durumda veritabanı çağrıdan önceki haliyle kalır.
func CheckoutHandler(db *gorm.DB) fiber.Handler {
	engine := NewEngine(db)

	return func(c *fiber.Ctx) error {
		var body CheckoutRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		result, err := engine.Checkout(body.Lines)
		if err != nil {
			var insufficient *InsufficientStockError
			switch {
			case IsValidation(err):
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			case IsNotFound(err):
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			case errors.As(err, &insufficient):
				return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
					"error":      "Yetersiz stok, satış yapılamadı",
					"shortfalls": insufficient.Shortfalls,
				})
			case IsConcurrencyConflict(err):
				return fiber.NewError(fiber.StatusConflict, err.Error())
			}
			log.Println("Checkout hatası:", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Satış tamamlanamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(result)
	}
}
