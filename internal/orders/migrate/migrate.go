package migrate

import (
	"shophub/internal/orders/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Run выполняет миграции схемы сервиса заказов: автосоздание таблиц
// плюс ограничения целостности, которые AutoMigrate не покрывает.
func Run(db *gorm.DB, log *zap.Logger) {
	log.Info("Запуск миграции базы данных (orders)...")
	err := db.AutoMigrate(
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.IdempotencyKey{},
	)
	if err != nil {
		log.Fatal("Ошибка миграции базы данных", zap.Error(err))
	}

	checks := []string{
		`ALTER TABLE products DROP CONSTRAINT IF EXISTS chk_products_stock;
		 ALTER TABLE products ADD CONSTRAINT chk_products_stock CHECK (stock >= 0);`,
		`ALTER TABLE products DROP CONSTRAINT IF EXISTS chk_products_price;
		 ALTER TABLE products ADD CONSTRAINT chk_products_price CHECK (price_cents >= 0);`,
		`ALTER TABLE orders DROP CONSTRAINT IF EXISTS chk_orders_status;
		 ALTER TABLE orders ADD CONSTRAINT chk_orders_status CHECK (status IN ('CREATED','CONFIRMED','CANCELED'));`,
		`ALTER TABLE orders DROP CONSTRAINT IF EXISTS chk_orders_total;
		 ALTER TABLE orders ADD CONSTRAINT chk_orders_total CHECK (total_cents >= 0);`,
		`ALTER TABLE order_items DROP CONSTRAINT IF EXISTS chk_order_items_qty;
		 ALTER TABLE order_items ADD CONSTRAINT chk_order_items_qty CHECK (qty > 0);`,
		`ALTER TABLE order_items DROP CONSTRAINT IF EXISTS chk_order_items_price;
		 ALTER TABLE order_items ADD CONSTRAINT chk_order_items_price CHECK (unit_price_cents >= 0 AND subtotal_cents >= 0);`,
		`CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders (status, created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_order_items_product ON order_items (product_id);`,
	}
	for _, q := range checks {
		if err := db.Exec(q).Error; err != nil {
			log.Fatal("Ошибка применения ограничений", zap.Error(err))
		}
	}

	log.Info("Миграция базы данных (orders) успешно завершена")
}
