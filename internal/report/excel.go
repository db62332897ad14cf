package report

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// GET /api/sales/export/monthly?year=2025&month=12
// Ayın satış defterini Excel olarak indirir (muhasebeye gönderilen format).
func ExportMonthlySalesHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		year, month, err := parseYearMonth(c)
		if err != nil {
			return err
		}

		sales, err := salesOfMonth(db, year, month)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Satışlar okunamadı")
		}

		f := excelize.NewFile()
		defer f.Close()

		sheet := "Satışlar"
		f.SetSheetName("Sheet1", sheet)

		headers := []string{"Tarih", "Fiş No", "Ürün", "Adet", "Tutar", "Kâr"}
		for i, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			f.SetCellValue(sheet, cell, h)
		}

		totalBill := 0.0
		totalProfit := 0.0
		totalItems := 0
		for rowIdx, s := range sales {
			row := rowIdx + 2
			f.SetCellValue(sheet, fmt.Sprintf("A%d", row), s.CreatedAt.Format("2006-01-02 15:04:05"))
			f.SetCellValue(sheet, fmt.Sprintf("B%d", row), s.ReceiptNo)
			f.SetCellValue(sheet, fmt.Sprintf("C%d", row), s.Product.Name)
			f.SetCellValue(sheet, fmt.Sprintf("D%d", row), s.Quantity)
			f.SetCellValue(sheet, fmt.Sprintf("E%d", row), s.TotalPrice)
			f.SetCellValue(sheet, fmt.Sprintf("F%d", row), s.TotalProfit)
			totalBill += s.TotalPrice
			totalProfit += s.TotalProfit
			totalItems += s.Quantity
		}

		// Toplam satırı
		totalRow := len(sales) + 2
		f.SetCellValue(sheet, fmt.Sprintf("C%d", totalRow), "TOPLAM")
		f.SetCellValue(sheet, fmt.Sprintf("D%d", totalRow), totalItems)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", totalRow), totalBill)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", totalRow), totalProfit)

		buf, err := f.WriteToBuffer()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Excel dosyası oluşturulamadı")
		}

		filename := fmt.Sprintf("satislar-%04d-%02d.xlsx", year, month)
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
		return c.Send(buf.Bytes())
	}
}
