package report

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lokanta-backend/internal/database"
	"lokanta-backend/internal/models"

	"github.com/gofiber/fiber/v2"
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

func seedSale(t *testing.T, db *gorm.DB, productID uint, qty int, price, profit float64, at time.Time) {
	t.Helper()
	sale := models.Sale{
		ReceiptNo:   "test",
		ProductID:   productID,
		Quantity:    qty,
		TotalPrice:  price,
		TotalProfit: profit,
	}
	require.NoError(t, db.Create(&sale).Error)
	// CreatedAt'i istenen güne çek (gorm otomatik now yazar)
	require.NoError(t, db.Model(&models.Sale{}).Where("id = ?", sale.ID).
		UpdateColumn("created_at", at).Error)
}

func TestMonthlySalesSummary(t *testing.T) {
	db := newTestDB(t)

	kofte := models.Product{Name: "Köfte", SellingPrice: 30}
	ayran := models.Product{Name: "Ayran", SellingPrice: 5}
	require.NoError(t, db.Create(&kofte).Error)
	require.NoError(t, db.Create(&ayran).Error)

	loc := time.Now().Location()
	day1 := time.Date(2025, 12, 3, 12, 0, 0, 0, loc)
	day2 := time.Date(2025, 12, 5, 19, 30, 0, 0, loc)
	otherMonth := time.Date(2025, 11, 30, 12, 0, 0, 0, loc)

	seedSale(t, db, kofte.ID, 2, 60, 36, day1)
	seedSale(t, db, ayran.ID, 3, 15, 9, day1)
	seedSale(t, db, kofte.ID, 1, 30, 18, day2)
	seedSale(t, db, kofte.ID, 5, 150, 90, otherMonth) // ay dışı, sayılmaz

	app := fiber.New()
	app.Get("/api/sales/summary/monthly", MonthlySalesSummaryHandler(db))

	req := httptest.NewRequest(http.MethodGet, "/api/sales/summary/monthly?year=2025&month=12", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var summary MonthlySalesSummaryResponse
	require.NoError(t, json.Unmarshal(raw, &summary))

	assert.Equal(t, 3, summary.SaleCount)
	assert.Equal(t, 6, summary.TotalItems)
	assert.InDelta(t, 105, summary.TotalBill, 1e-9)
	assert.InDelta(t, 63, summary.TotalProfit, 1e-9)
	require.Len(t, summary.Days, 2)
	assert.Equal(t, "2025-12-03", summary.Days[0].Date)
	assert.Equal(t, 5, summary.Days[0].ItemCount)

	// Adetler eşit (3'er) → isim sırasına göre Ayran önde
	require.Len(t, summary.BestSellers, 2)
	assert.Equal(t, "Ayran", summary.BestSellers[0].ProductName)
}

func TestMonthlySummaryRejectsBadParams(t *testing.T) {
	db := newTestDB(t)
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
			}
			return c.SendStatus(fiber.StatusInternalServerError)
		},
	})
	app.Get("/api/sales/summary/monthly", MonthlySalesSummaryHandler(db))

	for _, query := range []string{"", "?year=2025", "?year=2025&month=13", "?year=1999&month=1"} {
		req := httptest.NewRequest(http.MethodGet, "/api/sales/summary/monthly"+query, nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, "query: %q", query)
	}
}
