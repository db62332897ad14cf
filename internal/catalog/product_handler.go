package catalog

import (
	"fmt"
	"strings"

	"lokanta-backend/internal/audit"
	"lokanta-backend/internal/auth"
	"lokanta-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ProductResponse struct {
	ID                uint    `json:"id"`
	Name              string  `json:"name"`
	ManufacturingCost float64 `json:"manufacturing_cost"`
	SellingPrice      float64 `json:"selling_price"`
	SellCount         uint64  `json:"sell_count"`
	PhotoPath         string  `json:"photo_path"`
}

type CreateProductRequest struct {
	Name         string  `json:"name"`
	SellingPrice float64 `json:"selling_price"`
	PhotoPath    string  `json:"photo_path"` // Opsiyonel
}

type UpdateProductRequest struct {
	Name         *string  `json:"name"`
	SellingPrice *float64 `json:"selling_price"`
	PhotoPath    *string  `json:"photo_path"`
}

func toProductResponse(p *models.Product) ProductResponse {
	return ProductResponse{
		ID:                p.ID,
		Name:              p.Name,
		ManufacturingCost: p.ManufacturingCost,
		SellingPrice:      p.SellingPrice,
		SellCount:         p.SellCount,
		PhotoPath:         p.PhotoPath,
	}
}

func parseIDParam(c *fiber.Ctx) (uint, error) {
	var id uint
	if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Geçersiz ID")
	}
	return id, nil
}

// GET /api/products (tüm authenticated kullanıcılar görebilir)
func ListProductsHandler(db *gorm.DB) fiber.Handler {
	store := NewStore(db)
	return func(c *fiber.Ctx) error {
		products, err := store.ListProducts()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürünler listelenemedi")
		}

		res := make([]ProductResponse, 0, len(products))
		for i := range products {
			res = append(res, toProductResponse(&products[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/products/:id (reçetesiyle birlikte)
func GetProductHandler(db *gorm.DB) fiber.Handler {
	store := NewStore(db)
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c)
		if err != nil {
			return err
		}

		product, err := store.GetProduct(id)
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}

		rows, err := store.IngredientsOf(id)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Reçete okunamadı")
		}

		ingredients := make([]IngredientResponse, 0, len(rows))
		for _, row := range rows {
			ingredients = append(ingredients, toIngredientResponse(&row))
		}

		return c.JSON(fiber.Map{
			"product":     toProductResponse(product),
			"ingredients": ingredients,
		})
	}
}

// POST /api/admin/products (sadece admin)
func CreateProductHandler(db *gorm.DB) fiber.Handler {
	store := NewStore(db)
	return func(c *fiber.Ctx) error {
		var body CreateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Name zorunlu")
		}
		if body.SellingPrice < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Satış fiyatı negatif olamaz")
		}

		product := models.Product{
			Name:         body.Name,
			SellingPrice: body.SellingPrice,
			PhotoPath:    strings.TrimSpace(body.PhotoPath),
		}
		if err := store.CreateProduct(&product); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün oluşturulamadı (isim kullanımda olabilir)")
		}

		// Audit log
		if userID, userName, err := auth.CurrentUser(c, db); err == nil {
			_ = audit.WriteLog(db, audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "product",
				EntityID:    product.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Ürün oluşturuldu: %s (%.2f TL)", product.Name, product.SellingPrice),
				Before:      nil,
				After:       product,
			})
		}

		return c.Status(fiber.StatusCreated).JSON(toProductResponse(&product))
	}
}

// PUT /api/admin/products/:id (sadece admin)
// manufacturing_cost buradan güncellenemez; reçeteden türetilir.
func UpdateProductHandler(db *gorm.DB) fiber.Handler {
	store := NewStore(db)
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c)
		if err != nil {
			return err
		}

		var body UpdateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		product, err := store.GetProduct(id)
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}
		before := *product

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Name boş olamaz")
			}
			product.Name = name
		}
		if body.SellingPrice != nil {
			if *body.SellingPrice < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Satış fiyatı negatif olamaz")
			}
			product.SellingPrice = *body.SellingPrice
		}
		if body.PhotoPath != nil {
			product.PhotoPath = strings.TrimSpace(*body.PhotoPath)
		}

		if err := store.SaveProduct(product); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün güncellenemedi")
		}

		if userID, userName, err := auth.CurrentUser(c, db); err == nil {
			_ = audit.WriteLog(db, audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "product",
				EntityID:    product.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Ürün güncellendi: %s", product.Name),
				Before:      before,
				After:       product,
			})
		}

		return c.JSON(toProductResponse(product))
	}
}

// DELETE /api/admin/products/:id (sadece admin)
func DeleteProductHandler(db *gorm.DB) fiber.Handler {
	store := NewStore(db)
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c)
		if err != nil {
			return err
		}

		product, err := store.GetProduct(id)
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}

		if err := store.DeleteProduct(id); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün silinemedi")
		}

		if userID, userName, err := auth.CurrentUser(c, db); err == nil {
			_ = audit.WriteLog(db, audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "product",
				EntityID:    id,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Ürün silindi: %s", product.Name),
				Before:      product,
				After:       nil,
			})
		}

		return c.JSON(fiber.Map{"message": "Ürün silindi"})
	}
}
