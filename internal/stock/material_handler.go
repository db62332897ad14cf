package stock

import (
	"fmt"
	"strings"

	"lokanta-backend/internal/audit"
	"lokanta-backend/internal/auth"
	"lokanta-backend/internal/catalog"
	"lokanta-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CreateRawMaterialRequest struct {
	Name              string  `json:"name"`
	QuantityAvailable float64 `json:"quantity_available"`
	Unit              string  `json:"unit"`
	CostPerUnit       float64 `json:"cost_per_unit"`
	LowStockThreshold float64 `json:"low_stock_threshold"`
}

type UpdateRawMaterialRequest struct {
	Name              *string  `json:"name"`
	QuantityAvailable *float64 `json:"quantity_available"`
	Unit              *string  `json:"unit"`
	CostPerUnit       *float64 `json:"cost_per_unit"`
	LowStockThreshold *float64 `json:"low_stock_threshold"`
}

func parseMaterialID(c *fiber.Ctx) (uint, error) {
	var id uint
	if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Geçersiz ID")
	}
	return id, nil
}

// GET /api/raw-materials
func ListRawMaterialsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var materials []models.RawMaterial
		if err := db.Order("name asc").Find(&materials).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Hammaddeler listelenemedi")
		}
		return c.JSON(materials)
	}
}

// GET /api/raw-materials/low-stock
// Kritik eşiğin altındaki hammaddeler, miktarı en düşük olandan başlayarak.
func LowStockHandler(db *gorm.DB) fiber.Handler {
	ledger := NewLedger(db)
	return func(c *fiber.Ctx) error {
		materials, err := ledger.LowStock()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kritik stok sorgusu başarısız")
		}
		return c.JSON(fiber.Map{
			"count": len(materials),
			"items": materials,
		})
	}
}

// POST /api/admin/raw-materials (sadece admin)
func CreateRawMaterialHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateRawMaterialRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		body.Name = strings.TrimSpace(body.Name)
		body.Unit = strings.TrimSpace(body.Unit)

		if body.Name == "" || body.Unit == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Name ve unit zorunlu")
		}
		if body.QuantityAvailable < 0 || body.CostPerUnit < 0 || body.LowStockThreshold < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Miktar, birim fiyat ve eşik negatif olamaz")
		}

		material := models.RawMaterial{
			Name:              body.Name,
			QuantityAvailable: body.QuantityAvailable,
			Unit:              body.Unit,
			CostPerUnit:       body.CostPerUnit,
			LowStockThreshold: body.LowStockThreshold,
		}
		if err := db.Create(&material).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Hammadde oluşturulamadı (isim kullanımda olabilir)")
		}

		if userID, userName, err := auth.CurrentUser(c, db); err == nil {
			_ = audit.WriteLog(db, audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "raw_material",
				EntityID:    material.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Hammadde eklendi: %s - %.2f %s", material.Name, material.QuantityAvailable, material.Unit),
				After:       material,
			})
		}

		return c.Status(fiber.StatusCreated).JSON(material)
	}
}

// PUT /api/admin/raw-materials/:id (sadece admin)
// quantity_available buradan elle düzeltilebilir (sayım farkı, yeni mal
// girişi). Satış kaynaklı düşümler ise yalnızca checkout'un koşullu düşümü
// üzerinden gider. cost_per_unit değişirse bu hammaddeyi kullanan ürünlerin
// manufacturing_cost değerleri yeniden hesaplanır.
func UpdateRawMaterialHandler(db *gorm.DB) fiber.Handler {
	catalogStore := catalog.NewStore(db)
	return func(c *fiber.Ctx) error {
		id, err := parseMaterialID(c)
		if err != nil {
			return err
		}

		var body UpdateRawMaterialRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		var material models.RawMaterial
		if err := db.First(&material, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Hammadde bulunamadı")
		}
		before := material

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Name boş olamaz")
			}
			material.Name = name
		}
		if body.Unit != nil {
			unit := strings.TrimSpace(*body.Unit)
			if unit == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Unit boş olamaz")
			}
			material.Unit = unit
		}
		if body.QuantityAvailable != nil {
			if *body.QuantityAvailable < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Miktar negatif olamaz")
			}
			material.QuantityAvailable = *body.QuantityAvailable
		}
		if body.CostPerUnit != nil {
			if *body.CostPerUnit < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Birim fiyat negatif olamaz")
			}
			material.CostPerUnit = *body.CostPerUnit
		}
		if body.LowStockThreshold != nil {
			if *body.LowStockThreshold < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Eşik negatif olamaz")
			}
			material.LowStockThreshold = *body.LowStockThreshold
		}

		if err := db.Save(&material).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Hammadde güncellenemedi")
		}

		// Birim fiyat değiştiyse türetilmiş maliyetleri tazele
		if body.CostPerUnit != nil && *body.CostPerUnit != before.CostPerUnit {
			if err := catalogStore.RecomputeCostsUsingMaterial(material.ID); err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Ürün maliyetleri güncellenemedi")
			}
		}

		if userID, userName, uerr := auth.CurrentUser(c, db); uerr == nil {
			_ = audit.WriteLog(db, audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "raw_material",
				EntityID:    material.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Hammadde güncellendi: %s", material.Name),
				Before:      before,
				After:       material,
			})
		}

		return c.JSON(material)
	}
}

// DELETE /api/admin/raw-materials/:id (sadece admin)
// Herhangi bir reçetede kullanılıyorsa silinemez.
func DeleteRawMaterialHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseMaterialID(c)
		if err != nil {
			return err
		}

		var material models.RawMaterial
		if err := db.First(&material, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Hammadde bulunamadı")
		}

		var usage int64
		db.Model(&models.ProductIngredient{}).Where("raw_material_id = ?", id).Count(&usage)
		if usage > 0 {
			return fiber.NewError(fiber.StatusConflict, fmt.Sprintf("Hammadde %d ürünün reçetesinde kullanılıyor, önce reçetelerden çıkarın", usage))
		}

		if err := db.Delete(&models.RawMaterial{}, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Hammadde silinemedi")
		}

		if userID, userName, uerr := auth.CurrentUser(c, db); uerr == nil {
			_ = audit.WriteLog(db, audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "raw_material",
				EntityID:    id,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Hammadde silindi: %s", material.Name),
				Before:      material,
			})
		}

		return c.JSON(fiber.Map{"message": "Hammadde silindi"})
	}
}
