package models

import (
	"time"
)

const (
	// DefaultPassword is persisted when the source document omits the
	// user's password element.
	DefaultPassword = "default_password"

	// DefaultDescription is persisted when the source document omits a
	// product's description element.
	DefaultDescription = "default_description"
)

// User is a customer deduplicated by email across imports.
// Attributes are first-write-wins: once a row exists for an email,
// later imports never touch its other fields.
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"size:255" json:"name"`
	Email    string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password string `gorm:"size:255" json:"-"`

	Orders []Order `gorm:"foreignKey:UserID" json:"orders,omitempty"`
}

// Product is a catalogue entry deduplicated by name across imports.
type Product struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Name        string  `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Price       float64 `gorm:"type:decimal(18,2);check:price >= 0" json:"price"`
	Description string  `gorm:"size:255" json:"description"`

	OrderItems []OrderItem `gorm:"foreignKey:ProductID" json:"-"`
}

// Order keeps the identifier supplied by the source document. The ID
// column is autoincrement for ordinary writes, but the importer writes
// explicit values into it (see feature/orders/importer).
type Order struct {
	ID     uint      `gorm:"primaryKey" json:"id"`
	UserID uint      `gorm:"not null;index" json:"user_id"`
	Date   time.Time `json:"date"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// OrderItem is a line of an order referencing a resolved product.
type OrderItem struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	OrderID   uint `gorm:"not null;index" json:"order_id"`
	ProductID uint `gorm:"not null;index" json:"product_id"`
	Quantity  int  `gorm:"not null;check:quantity > 0" json:"quantity"`
}

// ImportOrder is the as-parsed, not-yet-reconciled shape of one order.
// It is produced by the parser, consumed by the importer and never
// persisted. RegDate stays a string until the importer validates it.
type ImportOrder struct {
	OrderID int
	RegDate string
	User    ImportUser
	Items   []ImportItem
}

// ImportUser carries the user fields of one parsed order. An empty
// Password means the element was absent from the document.
type ImportUser struct {
	Name     string
	Email    string
	Password string
}

// ImportItem carries one parsed product reference with its quantity.
// An empty Description means the element was absent from the document.
type ImportItem struct {
	Name        string
	Price       float64
	Description string
	Quantity    int
}
