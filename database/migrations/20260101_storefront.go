package migrations

import (
	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/migration"
)

func init() {
	migration.Register("20260101000000_create_catalog_tables", &CreateCatalogTables{})
	migration.Register("20260101000001_create_users_tables", &CreateUsersTables{})
	migration.Register("20260101000002_create_cart_table", &CreateCartTable{})
	migration.Register("20260101000003_create_orders_tables", &CreateOrdersTables{})
}

// -------- 0001: categories, products --------

type CreateCatalogTables struct{}

func (m *CreateCatalogTables) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Category{}, &models.Product{})
}

func (m *CreateCatalogTables) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("products", "categories")
}

// -------- 0002: users, auth_credentials --------

type CreateUsersTables struct{}

func (m *CreateUsersTables) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{}, &models.Credential{})
}

func (m *CreateUsersTables) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("auth_credentials", "users")
}

// -------- 0003: cart --------

type CreateCartTable struct{}

func (m *CreateCartTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.CartItem{})
}

func (m *CreateCartTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("cart")
}

// -------- 0004: orders, order_items --------

type CreateOrdersTables struct{}

func (m *CreateOrdersTables) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Order{}, &models.OrderItem{})
}

func (m *CreateOrdersTables) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("order_items", "orders")
}
