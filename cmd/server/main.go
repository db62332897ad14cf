package main

import (
	"log"
	"strings"

	"lokanta-backend/internal/audit"
	"lokanta-backend/internal/auth"
	"lokanta-backend/internal/catalog"
	"lokanta-backend/internal/checkout"
	"lokanta-backend/internal/config"
	"lokanta-backend/internal/database"
	"lokanta-backend/internal/models"
	"lokanta-backend/internal/report"
	"lokanta-backend/internal/stock"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("Veritabanı başlatılamadı: %v", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Beklenmeyen sunucu hatası",
			})
		},
	})

	// CORS origins'i virgülle ayrılmış string'den array'e çevir
	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(db, cfg))
	api.Post("/auth/login", auth.LoginHandler(db, cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler(db))

	// Admin routes
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleAdmin))

	// Kasiyer hesapları
	adminRoutes.Post("/cashiers", auth.CreateCashierHandler(db))

	// Ürün yönetimi
	adminRoutes.Post("/products", catalog.CreateProductHandler(db))
	adminRoutes.Put("/products/:id", catalog.UpdateProductHandler(db))
	adminRoutes.Delete("/products/:id", catalog.DeleteProductHandler(db))

	// Reçete yönetimi (manufacturing_cost buradan türetilir)
	adminRoutes.Put("/products/:id/ingredients", catalog.SetIngredientHandler(db))
	adminRoutes.Delete("/products/:id/ingredients/:materialId", catalog.RemoveIngredientHandler(db))

	// Hammadde yönetimi
	adminRoutes.Post("/raw-materials", stock.CreateRawMaterialHandler(db))
	adminRoutes.Put("/raw-materials/:id", stock.UpdateRawMaterialHandler(db))
	adminRoutes.Delete("/raw-materials/:id", stock.DeleteRawMaterialHandler(db))

	// Satış kaydı silme (idari; stok iade edilmez)
	adminRoutes.Delete("/sales/:id", report.DeleteSaleHandler(db))

	// Audit logs
	adminRoutes.Get("/audit-logs", audit.ListAuditLogsHandler(db))

	// Ortak (auth gerektiren) route'lar

	// Katalog
	protected.Get("/products", catalog.ListProductsHandler(db))
	protected.Get("/products/:id", catalog.GetProductHandler(db))
	protected.Get("/products/:id/ingredients", catalog.ListIngredientsHandler(db))

	// Stok
	protected.Get("/raw-materials", stock.ListRawMaterialsHandler(db))
	protected.Get("/raw-materials/low-stock", stock.LowStockHandler(db))

	// Kasa (checkout)
	protected.Post("/checkout", checkout.CheckoutHandler(db))

	// Raporlama
	protected.Get("/sales", report.ListSalesHandler(db))
	protected.Get("/sales/summary/monthly", report.MonthlySalesSummaryHandler(db))
	protected.Get("/sales/export/monthly", report.ExportMonthlySalesHandler(db))

	log.Println("Server çalışıyor port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
