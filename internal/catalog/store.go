package catalog

import (
	"errors"
	"fmt"

	"lokanta-backend/internal/models"

	"gorm.io/gorm"
)

// Store: Ürün kataloğu ve reçete (bill of materials) erişim katmanı.
// Checkout engine'e ResolveProducts/IngredientsForProducts sağlar,
// admin handler'larına CRUD sağlar. Handle dışarıdan verilir; WithTx ile
// aktif transaction'a bağlanabilir.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// WithTx aynı store'u verilen transaction üzerinde çalışacak şekilde döndürür.
func (s *Store) WithTx(tx *gorm.DB) *Store {
	return &Store{db: tx}
}

// ResolveProducts verilen ID'lere karşılık gelen ürünleri döndürür.
// Bulunamayan ID'ler sonuçta yer almaz; eksik kontrolü çağırana aittir.
func (s *Store) ResolveProducts(ids []uint) ([]models.Product, error) {
	var products []models.Product
	if err := s.db.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("ürünler okunamadı: %w", err)
	}
	return products, nil
}

// IngredientsForProducts verilen ürünlerin tüm reçete satırlarını döndürür.
func (s *Store) IngredientsForProducts(ids []uint) ([]models.ProductIngredient, error) {
	var rows []models.ProductIngredient
	if err := s.db.Where("product_id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("reçeteler okunamadı: %w", err)
	}
	return rows, nil
}

func (s *Store) GetProduct(id uint) (*models.Product, error) {
	var product models.Product
	if err := s.db.First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *Store) ListProducts() ([]models.Product, error) {
	var products []models.Product
	if err := s.db.Order("name asc").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (s *Store) CreateProduct(p *models.Product) error {
	return s.db.Create(p).Error
}

func (s *Store) SaveProduct(p *models.Product) error {
	return s.db.Save(p).Error
}

// DeleteProduct ürünü reçetesiyle birlikte siler. Geçmiş satış kayıtları
// (Sales Journal) dokunulmadan kalır.
func (s *Store) DeleteProduct(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.ProductIngredient{}, "product_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Product{}, "id = ?", id).Error
	})
}

func (s *Store) IngredientsOf(productID uint) ([]models.ProductIngredient, error) {
	var rows []models.ProductIngredient
	if err := s.db.Preload("RawMaterial").Where("product_id = ?", productID).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// SetIngredient reçeteye hammadde ekler veya mevcut satırın miktarını
// günceller ((product, raw_material) ikilisi tekil). Yazımdan sonra
// ürünün manufacturing_cost değeri aynı transaction içinde yeniden
// hesaplanır.
func (s *Store) SetIngredient(productID, rawMaterialID uint, quantityUsed float64) (*models.ProductIngredient, error) {
	if quantityUsed <= 0 {
		return nil, errors.New("quantity_used pozitif olmalı")
	}

	var row models.ProductIngredient
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, "id = ?", productID).Error; err != nil {
			return fmt.Errorf("ürün bulunamadı (ID: %d)", productID)
		}
		var material models.RawMaterial
		if err := tx.First(&material, "id = ?", rawMaterialID).Error; err != nil {
			return fmt.Errorf("hammadde bulunamadı (ID: %d)", rawMaterialID)
		}

		// Aynı ikili varsa güncelle, yoksa oluştur
		err := tx.Where("product_id = ? AND raw_material_id = ?", productID, rawMaterialID).First(&row).Error
		switch {
		case err == nil:
			row.QuantityUsed = quantityUsed
			if err := tx.Save(&row).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			row = models.ProductIngredient{
				ProductID:     productID,
				RawMaterialID: rawMaterialID,
				QuantityUsed:  quantityUsed,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		default:
			return err
		}

		return recomputeManufacturingCost(tx, productID)
	})
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// RemoveIngredient reçeteden hammaddeyi çıkarır ve maliyeti yeniden hesaplar.
func (s *Store) RemoveIngredient(productID, rawMaterialID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.ProductIngredient{}, "product_id = ? AND raw_material_id = ?", productID, rawMaterialID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return recomputeManufacturingCost(tx, productID)
	})
}

// recomputeManufacturingCost = Σ quantity_used × cost_per_unit
// (yazım anındaki güncel reçete satırları üzerinden)
func recomputeManufacturingCost(tx *gorm.DB, productID uint) error {
	var cost float64
	err := tx.Model(&models.ProductIngredient{}).
		Select("COALESCE(SUM(product_ingredients.quantity_used * raw_materials.cost_per_unit), 0)").
		Joins("JOIN raw_materials ON raw_materials.id = product_ingredients.raw_material_id").
		Where("product_ingredients.product_id = ?", productID).
		Scan(&cost).Error
	if err != nil {
		return err
	}

	return tx.Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("manufacturing_cost", cost).Error
}

// RecomputeManufacturingCost dışarıdan (ör. hammadde birim fiyatı
// değiştiğinde) maliyet güncellemesi için.
func (s *Store) RecomputeManufacturingCost(productID uint) error {
	return recomputeManufacturingCost(s.db, productID)
}

// RecomputeCostsUsingMaterial bir hammaddeyi kullanan tüm ürünlerin
// maliyetini günceller (cost_per_unit değişikliği sonrası).
func (s *Store) RecomputeCostsUsingMaterial(rawMaterialID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var productIDs []uint
		if err := tx.Model(&models.ProductIngredient{}).
			Where("raw_material_id = ?", rawMaterialID).
			Distinct().
			Pluck("product_id", &productIDs).Error; err != nil {
			return err
		}
		for _, pid := range productIDs {
			if err := recomputeManufacturingCost(tx, pid); err != nil {
				return err
			}
		}
		return nil
	})
}
