package database

import (
	"fmt"
	"log"

	"lokanta-backend/internal/config"
	"lokanta-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open veritabanı bağlantısını açar, migration'ları çalıştırır ve handle'ı
// döndürür. Bağlantı bilinçli olarak paket-global tutulmuyor: checkout
// engine dahil herkes *gorm.DB'yi parametre olarak alır, böylece test
// ortamında farklı bir veritabanı geçirilebilir.
func Open(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("veritabanına bağlanılamadı: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Veritabanı bağlantısı başarılı. Migration tamamlandı.")
	return db, nil
}

// Migrate şema migration'larını çalıştırır. Testler sqlite üzerinde de
// aynı fonksiyonu kullanır.
func Migrate(db *gorm.DB) error {
	// sell_count kolonu sonradan eklendi; eski kayıtlarda NULL kalmasın
	// (AutoMigrate default'u sadece yeni tabloya uygular)
	if db.Migrator().HasTable(&models.Product{}) && db.Migrator().HasColumn(&models.Product{}, "sell_count") {
		if err := db.Exec("UPDATE products SET sell_count = 0 WHERE sell_count IS NULL").Error; err != nil {
			log.Printf("sell_count backfill hatası (devam ediliyor): %v", err)
		}
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.RawMaterial{},
		&models.Product{},
		&models.ProductIngredient{},
		&models.Sale{},
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("AutoMigrate hatası: %w", err)
	}

	return nil
}
