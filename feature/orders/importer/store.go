package importer

import (
	"context"

	"order-importer/feature/orders/models"
)

// Repository is the storage capability the engine reconciles against.
// Lookups are by natural key; Add* inserts must be visible to later
// lookups inside the same transaction so orders later in a batch reuse
// rows created by earlier ones.
type Repository interface {
	// UserByEmail returns the user with the given email, or (nil, nil)
	// when no such row exists.
	UserByEmail(email string) (*models.User, error)

	// AddUser inserts the user immediately and assigns its ID.
	AddUser(user *models.User) error

	// ProductByName returns the product with the given name, or
	// (nil, nil) when no such row exists.
	ProductByName(name string) (*models.Product, error)

	// AddProduct inserts the product immediately and assigns its ID.
	AddProduct(product *models.Product) error

	// AddOrder stages an order (with its items) for insertion on Flush.
	AddOrder(order *models.Order) error

	// Flush inserts all staged orders.
	Flush() error
}

// Tx is one import-scoped unit of work. It is acquired per Reconcile
// call and released (committed or rolled back) before the call returns.
type Tx interface {
	Repository

	// SetOrderIdentity enables or disables explicit writes to the
	// orders primary key column. Stores whose autoincrement accepts
	// explicit values natively treat this as a supported no-op.
	SetOrderIdentity(enabled bool) error

	Commit() error
	Rollback() error
}

// Store opens import transactions. Implementations: GormStore (durable)
// and MemoryStore (tests, dry runs).
type Store interface {
	Begin(ctx context.Context) (Tx, error)
}
