package report

import (
	"fmt"
	"sort"
	"time"

	"lokanta-backend/internal/audit"
	"lokanta-backend/internal/auth"
	"lokanta-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type SaleResponse struct {
	ID          uint    `json:"id"`
	ReceiptNo   string  `json:"receipt_no"`
	ProductID   uint    `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	TotalPrice  float64 `json:"total_price"`
	TotalProfit float64 `json:"total_profit"`
	CreatedAt   string  `json:"created_at"`
}

type DailyTotals struct {
	Date        string  `json:"date"`
	SaleCount   int     `json:"sale_count"`
	ItemCount   int     `json:"item_count"`
	TotalBill   float64 `json:"total_bill"`
	TotalProfit float64 `json:"total_profit"`
}

type BestSeller struct {
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	ItemCount   int    `json:"item_count"`
}

type MonthlySalesSummaryResponse struct {
	Year        int           `json:"year"`
	Month       int           `json:"month"`
	Days        []DailyTotals `json:"days"`
	TotalBill   float64       `json:"total_bill"`
	TotalProfit float64       `json:"total_profit"`
	TotalItems  int           `json:"total_items"`
	SaleCount   int           `json:"sale_count"`
	BestSellers []BestSeller  `json:"best_sellers"`
}

// -----------------------------------
// Yardımcı: year/month parametrelerini çöz
// -----------------------------------

func parseYearMonth(c *fiber.Ctx) (int, int, error) {
	yearStr := c.Query("year")
	monthStr := c.Query("month")
	if yearStr == "" || monthStr == "" {
		return 0, 0, fiber.NewError(fiber.StatusBadRequest, "year ve month zorunlu")
	}

	var year, month int
	if _, err := fmt.Sscan(yearStr, &year); err != nil || year < 2000 {
		return 0, 0, fiber.NewError(fiber.StatusBadRequest, "year geçersiz")
	}
	if _, err := fmt.Sscan(monthStr, &month); err != nil || month < 1 || month > 12 {
		return 0, 0, fiber.NewError(fiber.StatusBadRequest, "month geçersiz")
	}
	return year, month, nil
}

func monthBounds(year, month int) (time.Time, time.Time) {
	loc := time.Now().Location()
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	next := first.AddDate(0, 1, 0)
	return first, next
}

func salesOfMonth(db *gorm.DB, year, month int) ([]models.Sale, error) {
	first, next := monthBounds(year, month)
	var sales []models.Sale
	err := db.
		Preload("Product").
		Where("created_at >= ? AND created_at < ?", first, next).
		Order("created_at asc").
		Find(&sales).Error
	return sales, err
}

// GET /api/sales?from=2025-12-01&to=2025-12-31&product_id=3
func ListSalesHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := db.Model(&models.Sale{}).Preload("Product")

		if fromStr := c.Query("from"); fromStr != "" {
			from, err := time.Parse("2006-01-02", fromStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "from formatı 'YYYY-MM-DD' olmalı")
			}
			dbq = dbq.Where("created_at >= ?", from)
		}
		if toStr := c.Query("to"); toStr != "" {
			to, err := time.Parse("2006-01-02", toStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "to formatı 'YYYY-MM-DD' olmalı")
			}
			dbq = dbq.Where("created_at < ?", to.AddDate(0, 0, 1)) // gün sonu dahil
		}
		if pidStr := c.Query("product_id"); pidStr != "" {
			var pid uint
			if _, err := fmt.Sscan(pidStr, &pid); err == nil && pid > 0 {
				dbq = dbq.Where("product_id = ?", pid)
			}
		}

		var sales []models.Sale
		if err := dbq.Order("created_at DESC").Find(&sales).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Satışlar listelenemedi")
		}

		resp := make([]SaleResponse, 0, len(sales))
		for _, s := range sales {
			resp = append(resp, SaleResponse{
				ID:          s.ID,
				ReceiptNo:   s.ReceiptNo,
				ProductID:   s.ProductID,
				ProductName: s.Product.Name,
				Quantity:    s.Quantity,
				TotalPrice:  s.TotalPrice,
				TotalProfit: s.TotalProfit,
				CreatedAt:   s.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}
		return c.JSON(resp)
	}
}

// GET /api/sales/summary/monthly?year=2025&month=12
// Günlük kırılım + ay toplamları + en çok satanlar
func MonthlySalesSummaryHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		year, month, err := parseYearMonth(c)
		if err != nil {
			return err
		}

		sales, err := salesOfMonth(db, year, month)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Satışlar okunamadı")
		}

		resp := MonthlySalesSummaryResponse{
			Year:  year,
			Month: month,
			Days:  make([]DailyTotals, 0),
		}

		dayIndex := make(map[string]int)
		sellerTotals := make(map[uint]*BestSeller)
		for _, s := range sales {
			day := s.CreatedAt.Format("2006-01-02")
			idx, ok := dayIndex[day]
			if !ok {
				idx = len(resp.Days)
				dayIndex[day] = idx
				resp.Days = append(resp.Days, DailyTotals{Date: day})
			}
			resp.Days[idx].SaleCount++
			resp.Days[idx].ItemCount += s.Quantity
			resp.Days[idx].TotalBill += s.TotalPrice
			resp.Days[idx].TotalProfit += s.TotalProfit

			resp.SaleCount++
			resp.TotalItems += s.Quantity
			resp.TotalBill += s.TotalPrice
			resp.TotalProfit += s.TotalProfit

			if seller, ok := sellerTotals[s.ProductID]; ok {
				seller.ItemCount += s.Quantity
			} else {
				sellerTotals[s.ProductID] = &BestSeller{
					ProductID:   s.ProductID,
					ProductName: s.Product.Name,
					ItemCount:   s.Quantity,
				}
			}
		}

		resp.BestSellers = make([]BestSeller, 0, len(sellerTotals))
		for _, seller := range sellerTotals {
			resp.BestSellers = append(resp.BestSellers, *seller)
		}
		// En çok satandan aza
		sort.Slice(resp.BestSellers, func(i, j int) bool {
			if resp.BestSellers[i].ItemCount != resp.BestSellers[j].ItemCount {
				return resp.BestSellers[i].ItemCount > resp.BestSellers[j].ItemCount
			}
			return resp.BestSellers[i].ProductName < resp.BestSellers[j].ProductName
		})

		return c.JSON(resp)
	}
}

// DELETE /api/admin/sales/:id (sadece admin)
// Satış kayıtları normalde değiştirilemez; tek istisna bu idari silme ve
// audit log'a yazılır. Stok geri İADE EDİLMEZ (quantity_available'a
// checkout dışından yazmak yasak).
func DeleteSaleHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var id uint
		if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz ID")
		}

		var sale models.Sale
		if err := db.First(&sale, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Satış kaydı bulunamadı")
		}

		if err := db.Delete(&models.Sale{}, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Satış kaydı silinemedi")
		}

		if userID, userName, err := auth.CurrentUser(c, db); err == nil {
			_ = audit.WriteLog(db, audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "sale",
				EntityID:    id,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Satış kaydı silindi: fiş %s, %.2f TL", sale.ReceiptNo, sale.TotalPrice),
				Before:      sale,
			})
		}

		return c.JSON(fiber.Map{"message": "Satış kaydı silindi"})
	}
}
