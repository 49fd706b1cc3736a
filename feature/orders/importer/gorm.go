package importer

import (
	"context"
	"errors"
	"fmt"

	"order-importer/feature/orders/models"

	"gorm.io/gorm"
)

// GormStore opens import transactions on a GORM connection.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a durable store backed by db.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Begin opens a database transaction scoped to one import batch.
func (s *GormStore) Begin(ctx context.Context) (Tx, error) {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to begin import transaction: %w", tx.Error)
	}
	return &gormTx{tx: tx}, nil
}

type gormTx struct {
	tx     *gorm.DB
	staged []*models.Order
}

func (t *gormTx) UserByEmail(email string) (*models.User, error) {
	var user models.User
	err := t.tx.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user by email: %w", err)
	}
	return &user, nil
}

func (t *gormTx) AddUser(user *models.User) error {
	if err := t.tx.Create(user).Error; err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (t *gormTx) ProductByName(name string) (*models.Product, error) {
	var product models.Product
	err := t.tx.Where("name = ?", name).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up product by name: %w", err)
	}
	return &product, nil
}

func (t *gormTx) AddProduct(product *models.Product) error {
	if err := t.tx.Create(product).Error; err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

func (t *gormTx) AddOrder(order *models.Order) error {
	t.staged = append(t.staged, order)
	return nil
}

// Flush inserts every staged order. Items ride along through the GORM
// association, which also fills in their OrderID and item IDs.
func (t *gormTx) Flush() error {
	for _, order := range t.staged {
		if err := t.tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to insert order %d: %w", order.ID, err)
		}
	}
	t.staged = nil
	return nil
}

// SetOrderIdentity toggles explicit primary key writes on the orders
// table. Only SQL Server gates identity columns; MySQL and SQLite
// accept explicit autoincrement values natively, so the toggle is a
// supported no-op there.
func (t *gormTx) SetOrderIdentity(enabled bool) error {
	if t.tx.Dialector.Name() != "sqlserver" {
		return nil
	}
	state := "OFF"
	if enabled {
		state = "ON"
	}
	if err := t.tx.Exec("SET IDENTITY_INSERT orders " + state).Error; err != nil {
		return fmt.Errorf("failed to set IDENTITY_INSERT %s: %w", state, err)
	}
	return nil
}

func (t *gormTx) Commit() error {
	return t.tx.Commit().Error
}

func (t *gormTx) Rollback() error {
	return t.tx.Rollback().Error
}
