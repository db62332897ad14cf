package stock

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

func seedMaterial(t *testing.T, db *gorm.DB, name string, available, threshold float64) *models.RawMaterial {
	t.Helper()
	m := &models.RawMaterial{
		Name:              name,
		QuantityAvailable: available,
		Unit:              "kg",
		LowStockThreshold: threshold,
	}
	require.NoError(t, db.Create(m).Error)
	return m
}

func quantityOf(t *testing.T, db *gorm.DB, id uint) float64 {
	t.Helper()
	var m models.RawMaterial
	require.NoError(t, db.First(&m, "id = ?", id).Error)
	return m.QuantityAvailable
}

func TestConditionalDecrement(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db)
	m := seedMaterial(t, db, "Un", 10, 0)

	// Yeterliyken düşer
	affected, err := ledger.ConditionalDecrement(m.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	assert.InDelta(t, 6, quantityOf(t, db, m.ID), 1e-9)

	// Tam miktar: sıfıra iner, yine geçer
	affected, err = ledger.ConditionalDecrement(m.ID, 6)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	assert.InDelta(t, 0, quantityOf(t, db, m.ID), 1e-9)

	// Stok kalmadı: 0 satır, miktar değişmez — negatife asla inmez
	affected, err = ledger.ConditionalDecrement(m.ID, 0.001)
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)
	assert.InDelta(t, 0, quantityOf(t, db, m.ID), 1e-9)
}

func TestConditionalDecrementInsufficientLeavesQuantity(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db)
	m := seedMaterial(t, db, "Süt", 3, 0)

	affected, err := ledger.ConditionalDecrement(m.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)
	assert.InDelta(t, 3, quantityOf(t, db, m.ID), 1e-9)
}

func TestQuantitiesFor(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db)
	un := seedMaterial(t, db, "Un", 10, 0)
	sut := seedMaterial(t, db, "Süt", 2.5, 0)

	quantities, err := ledger.QuantitiesFor([]uint{un.ID, sut.ID, 9999})
	require.NoError(t, err)
	assert.Len(t, quantities, 2)
	assert.InDelta(t, 10, quantities[un.ID], 1e-9)
	assert.InDelta(t, 2.5, quantities[sut.ID], 1e-9)
}

func TestLowStockOrderedAscending(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db)

	seedMaterial(t, db, "Un", 10, 5)      // eşiğin üstünde, listede yok
	tuz := seedMaterial(t, db, "Tuz", 1, 3)
	sut := seedMaterial(t, db, "Süt", 0.5, 2)
	seedMaterial(t, db, "Şeker", 4, 4)    // eşiğe eşit, listede yok (katı <)

	items, err := ledger.LowStock()
	require.NoError(t, err)
	require.Len(t, items, 2)

	// Miktarı en düşük olan başta
	assert.Equal(t, sut.ID, items[0].ID)
	assert.Equal(t, tuz.ID, items[1].ID)
}
