package catalog

import (
	"errors"
	"fmt"
	"strings"

	"lokanta-backend/internal/audit"
	"lokanta-backend/internal/auth"
	"lokanta-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type SetIngredientRequest struct {
	RawMaterialID uint    `json:"raw_material_id"`
	QuantityUsed  float64 `json:"quantity_used"`
}

type IngredientResponse struct {
	ID              uint    `json:"id"`
	RawMaterialID   uint    `json:"raw_material_id"`
	RawMaterialName string  `json:"raw_material_name"`
	Unit            string  `json:"unit"`
	QuantityUsed    float64 `json:"quantity_used"`
	CostPerUnit     float64 `json:"cost_per_unit"`
}

func toIngredientResponse(row *models.ProductIngredient) IngredientResponse {
	return IngredientResponse{
		ID:              row.ID,
		RawMaterialID:   row.RawMaterialID,
		RawMaterialName: row.RawMaterial.Name,
		Unit:            row.RawMaterial.Unit,
		QuantityUsed:    row.QuantityUsed,
		CostPerUnit:     row.RawMaterial.CostPerUnit,
	}
}

// GET /api/products/:id/ingredients
func ListIngredientsHandler(db *gorm.DB) fiber.Handler {
	store := NewStore(db)
	return func(c *fiber.Ctx) error {
		productID, err := parseIDParam(c)
		if err != nil {
			return err
		}

		if _, err := store.GetProduct(productID); err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}

		rows, err := store.IngredientsOf(productID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Reçete okunamadı")
		}

		resp := make([]IngredientResponse, 0, len(rows))
		for _, row := range rows {
			resp = append(resp, toIngredientResponse(&row))
		}
		return c.JSON(resp)
	}
}

// PUT /api/admin/products/:id/ingredients (sadece admin)
// Aynı hammadde tekrar gönderilirse miktar güncellenir (yeni satır açılmaz)
// ve manufacturing_cost yeniden hesaplanır.
func SetIngredientHandler(db *gorm.DB) fiber.Handler {
	store := NewStore(db)
	return func(c *fiber.Ctx) error {
		productID, err := parseIDParam(c)
		if err != nil {
			return err
		}

		var body SetIngredientRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}
		if body.RawMaterialID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "raw_material_id zorunlu")
		}
		if body.QuantityUsed <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "quantity_used pozitif olmalı")
		}

		row, err := store.SetIngredient(productID, body.RawMaterialID, body.QuantityUsed)
		if err != nil {
			if strings.Contains(err.Error(), "bulunamadı") {
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Reçete güncellenemedi")
		}

		if userID, userName, uerr := auth.CurrentUser(c, db); uerr == nil {
			_ = audit.WriteLog(db, audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "product_ingredient",
				EntityID:    row.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Reçete güncellendi: ürün %d, hammadde %d → %.3f", productID, body.RawMaterialID, body.QuantityUsed),
				Before:      nil,
				After:       row,
			})
		}

		// Güncel maliyeti de dön
		product, err := store.GetProduct(productID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün okunamadı")
		}

		return c.JSON(fiber.Map{
			"ingredient":         row,
			"manufacturing_cost": product.ManufacturingCost,
		})
	}
}

// DELETE /api/admin/products/:id/ingredients/:materialId (sadece admin)
func RemoveIngredientHandler(db *gorm.DB) fiber.Handler {
	store := NewStore(db)
	return func(c *fiber.Ctx) error {
		productID, err := parseIDParam(c)
		if err != nil {
			return err
		}

		var materialID uint
		if _, err := fmt.Sscan(c.Params("materialId"), &materialID); err != nil || materialID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz hammadde ID")
		}

		if err := store.RemoveIngredient(productID, materialID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Reçete satırı bulunamadı")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Reçete satırı silinemedi")
		}

		if userID, userName, uerr := auth.CurrentUser(c, db); uerr == nil {
			_ = audit.WriteLog(db, audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "product_ingredient",
				EntityID:    productID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Reçeteden çıkarıldı: ürün %d, hammadde %d", productID, materialID),
			})
		}

		return c.JSON(fiber.Map{"message": "Reçete satırı silindi"})
	}
}
