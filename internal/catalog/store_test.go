package catalog

import (
	"testing"

	"lokanta-backend/internal/database"
	"lokanta-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func seedMaterial(t *testing.T, db *gorm.DB, name string, costPerUnit float64) *models.RawMaterial {
	t.Helper()
	m := &models.RawMaterial{Name: name, QuantityAvailable: 100, Unit: "kg", CostPerUnit: costPerUnit}
	require.NoError(t, db.Create(m).Error)
	return m
}

func seedProduct(t *testing.T, db *gorm.DB, name string) *models.Product {
	t.Helper()
	p := &models.Product{Name: name, SellingPrice: 20}
	require.NoError(t, db.Create(p).Error)
	return p
}

func productCost(t *testing.T, db *gorm.DB, id uint) float64 {
	t.Helper()
	var p models.Product
	require.NoError(t, db.First(&p, "id = ?", id).Error)
	return p.ManufacturingCost
}

func TestSetIngredientRecomputesManufacturingCost(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db)
	un := seedMaterial(t, db, "Un", 2)
	yag := seedMaterial(t, db, "Yağ", 8)
	p := seedProduct(t, db, "Poğaça")

	_, err := store.SetIngredient(p.ID, un.ID, 3)
	require.NoError(t, err)
	assert.InDelta(t, 6, productCost(t, db, p.ID), 1e-9) // 3×2

	_, err = store.SetIngredient(p.ID, yag.ID, 0.5)
	require.NoError(t, err)
	assert.InDelta(t, 10, productCost(t, db, p.ID), 1e-9) // 6 + 0.5×8
}

func TestSetIngredientReplacesExistingRow(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db)
	un := seedMaterial(t, db, "Un", 2)
	p := seedProduct(t, db, "Poğaça")

	_, err := store.SetIngredient(p.ID, un.ID, 3)
	require.NoError(t, err)

	// Aynı (ürün, hammadde) ikilisi: yeni satır değil, miktar güncellemesi
	row, err := store.SetIngredient(p.ID, un.ID, 5)
	require.NoError(t, err)
	assert.InDelta(t, 5, row.QuantityUsed, 1e-9)

	var count int64
	require.NoError(t, db.Model(&models.ProductIngredient{}).
		Where("product_id = ?", p.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	assert.InDelta(t, 10, productCost(t, db, p.ID), 1e-9) // 5×2
}

func TestSetIngredientRejectsNonPositiveQuantity(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db)
	un := seedMaterial(t, db, "Un", 2)
	p := seedProduct(t, db, "Poğaça")

	_, err := store.SetIngredient(p.ID, un.ID, 0)
	assert.Error(t, err)
	_, err = store.SetIngredient(p.ID, un.ID, -1)
	assert.Error(t, err)
}

func TestRemoveIngredientRecomputesCost(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db)
	un := seedMaterial(t, db, "Un", 2)
	yag := seedMaterial(t, db, "Yağ", 8)
	p := seedProduct(t, db, "Poğaça")

	_, err := store.SetIngredient(p.ID, un.ID, 3)
	require.NoError(t, err)
	_, err = store.SetIngredient(p.ID, yag.ID, 1)
	require.NoError(t, err)

	require.NoError(t, store.RemoveIngredient(p.ID, yag.ID))
	assert.InDelta(t, 6, productCost(t, db, p.ID), 1e-9)

	// Olmayan satırı silmek ErrRecordNotFound döner
	assert.ErrorIs(t, store.RemoveIngredient(p.ID, yag.ID), gorm.ErrRecordNotFound)
}

func TestRecomputeCostsUsingMaterial(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db)
	un := seedMaterial(t, db, "Un", 2)
	p1 := seedProduct(t, db, "Poğaça")
	p2 := seedProduct(t, db, "Simit")
	p3 := seedProduct(t, db, "Ayran") // un kullanmıyor

	_, err := store.SetIngredient(p1.ID, un.ID, 3)
	require.NoError(t, err)
	_, err = store.SetIngredient(p2.ID, un.ID, 1)
	require.NoError(t, err)

	// Birim fiyat 2 → 4: unu kullanan her ürünün maliyeti değişir
	require.NoError(t, db.Model(&models.RawMaterial{}).Where("id = ?", un.ID).
		UpdateColumn("cost_per_unit", 4).Error)
	require.NoError(t, store.RecomputeCostsUsingMaterial(un.ID))

	assert.InDelta(t, 12, productCost(t, db, p1.ID), 1e-9)
	assert.InDelta(t, 4, productCost(t, db, p2.ID), 1e-9)
	assert.InDelta(t, 0, productCost(t, db, p3.ID), 1e-9)
}

func TestResolveProductsMissingIDsAbsent(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db)
	p := seedProduct(t, db, "Çay")

	products, err := store.ResolveProducts([]uint{p.ID, 9999})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, p.ID, products[0].ID)
}

func TestIngredientsForProductsSpansProducts(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db)
	un := seedMaterial(t, db, "Un", 2)
	p1 := seedProduct(t, db, "Poğaça")
	p2 := seedProduct(t, db, "Simit")

	_, err := store.SetIngredient(p1.ID, un.ID, 3)
	require.NoError(t, err)
	_, err = store.SetIngredient(p2.ID, un.ID, 1)
	require.NoError(t, err)

	rows, err := store.IngredientsForProducts([]uint{p1.ID, p2.ID})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestDeleteProductRemovesIngredientsKeepsSales(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db)
	un := seedMaterial(t, db, "Un", 2)
	p := seedProduct(t, db, "Poğaça")
	_, err := store.SetIngredient(p.ID, un.ID, 3)
	require.NoError(t, err)

	sale := models.Sale{ReceiptNo: "r-1", ProductID: p.ID, Quantity: 1, TotalPrice: 20, TotalProfit: 14}
	require.NoError(t, db.Create(&sale).Error)

	require.NoError(t, store.DeleteProduct(p.ID))

	var ingredientCount, saleCount int64
	require.NoError(t, db.Model(&models.ProductIngredient{}).Where("product_id = ?", p.ID).Count(&ingredientCount).Error)
	require.NoError(t, db.Model(&models.Sale{}).Where("product_id = ?", p.ID).Count(&saleCount).Error)
	assert.Equal(t, int64(0), ingredientCount)
	assert.Equal(t, int64(1), saleCount) // satış defteri dokunulmadan kalır
}
