package models

import (
	"fmt"

	"gorm.io/gorm"
)

// ImportTables lists the relations the importer writes, in fk-safe
// creation order.
var ImportTables = []string{"users", "products", "orders", "order_items"}

// Migrate creates or updates the four import tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&User{}, &Product{}, &Order{}, &OrderItem{}); err != nil {
		return fmt.Errorf("failed to migrate order tables: %w", err)
	}
	return nil
}
