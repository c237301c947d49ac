package migrate

import (
	"shophub/internal/customers/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func Run(db *gorm.DB, log *zap.Logger) {
	log.Info("Запуск миграции базы данных (customers)...")
	if err := db.AutoMigrate(&models.Customer{}); err != nil {
		log.Fatal("Ошибка миграции базы данных", zap.Error(err))
	}

	checks := []string{
		`ALTER TABLE customers DROP CONSTRAINT IF EXISTS chk_customers_email;
		 ALTER TABLE customers ADD CONSTRAINT chk_customers_email CHECK (email <> '');`,
		`CREATE INDEX IF NOT EXISTS idx_customers_name ON customers (name);`,
	}
	for _, q := range checks {
		if err := db.Exec(q).Error; err != nil {
			log.Fatal("Ошибка применения ограничений", zap.Error(err))
		}
	}

	log.Info("Миграция базы данных (customers) успешно завершена")
}
