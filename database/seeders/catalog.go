package seeders

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
)

func init() {
	Register("catalog", SeedCatalog)
}

// DemoCategories and DemoProducts are the demo catalog. The memory backend
// loads the same rows at startup.
func DemoCategories() []models.Category {
	return []models.Category{
		{Name: "electronics", Description: "Phones, audio and accessories"},
		{Name: "home", Description: "Furniture and decor"},
		{Name: "kitchen", Description: "Cookware and tableware"},
		{Name: "books", Description: "Fiction and non-fiction"},
	}
}

func DemoProducts() []models.Product {
	p := func(name, desc, category, price string, stock int) models.Product {
		return models.Product{
			Name:        name,
			Description: desc,
			Category:    category,
			Price:       decimal.RequireFromString(price),
			Stock:       stock,
			IsActive:    true,
		}
	}
	return []models.Product{
		p("Wireless Earbuds", "Bluetooth 5.3 with charging case", "electronics", "299.00", 120),
		p("USB-C Charger", "65W fast charger", "electronics", "129.00", 300),
		p("Desk Lamp", "Warm white LED, dimmable", "home", "89.90", 60),
		p("Linen Cushion", "45x45cm, washable cover", "home", "59.00", 80),
		p("Stoneware Mug", "350ml, dishwasher safe", "kitchen", "19.90", 500),
		p("Chef Knife", "20cm stainless steel", "kitchen", "159.00", 40),
		p("The Go Programming Language", "Donovan and Kernighan", "books", "79.00", 25),
	}
}

// SeedCatalog inserts the demo catalog, skipping rows whose name exists.
func SeedCatalog(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, c := range DemoCategories() {
			c := c
			if err := tx.Where(models.Category{Name: c.Name}).FirstOrCreate(&c).Error; err != nil {
				return err
			}
		}
		for _, p := range DemoProducts() {
			p := p
			if err := tx.Where(models.Product{Name: p.Name}).FirstOrCreate(&p).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
