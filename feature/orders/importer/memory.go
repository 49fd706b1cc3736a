package importer

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"order-importer/feature/orders/models"
)

// MemoryStore is an in-memory Store. It backs the engine tests and the
// importer's dry-run mode, enforcing the same natural-key and primary-key
// constraints a relational schema would.
type MemoryStore struct {
	mu sync.Mutex

	usersByEmail   map[string]*models.User
	productsByName map[string]*models.Product
	orders         map[uint]models.Order

	nextUserID    uint
	nextProductID uint
	nextItemID    uint
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		usersByEmail:   make(map[string]*models.User),
		productsByName: make(map[string]*models.Product),
		orders:         make(map[uint]models.Order),
		nextUserID:     1,
		nextProductID:  1,
		nextItemID:     1,
	}
}

// Begin opens a unit of work layered over the committed state. Writes
// stay in the overlay until Commit; Rollback discards them.
func (s *MemoryStore) Begin(ctx context.Context) (Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &memoryTx{
		store:          s,
		usersByEmail:   make(map[string]*models.User),
		productsByName: make(map[string]*models.Product),
	}, nil
}

// Users returns the committed users sorted by ID.
func (s *MemoryStore) Users() []models.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]models.User, 0, len(s.usersByEmail))
	for _, u := range s.usersByEmail {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users
}

// Products returns the committed products sorted by ID.
func (s *MemoryStore) Products() []models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	products := make([]models.Product, 0, len(s.productsByName))
	for _, p := range s.productsByName {
		products = append(products, *p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products
}

// Orders returns the committed orders sorted by ID.
func (s *MemoryStore) Orders() []models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders := make([]models.Order, 0, len(s.orders))
	for _, o := range s.orders {
		orders = append(orders, o)
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID < orders[j].ID })
	return orders
}

type memoryTx struct {
	store *MemoryStore

	usersByEmail   map[string]*models.User
	productsByName map[string]*models.Product
	staged         []*models.Order
	done           bool
}

func (t *memoryTx) UserByEmail(email string) (*models.User, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	if u, ok := t.usersByEmail[email]; ok {
		copy := *u
		return &copy, nil
	}
	if u, ok := t.store.usersByEmail[email]; ok {
		copy := *u
		return &copy, nil
	}
	return nil, nil
}

func (t *memoryTx) AddUser(user *models.User) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	if _, ok := t.usersByEmail[user.Email]; ok {
		return fmt.Errorf("duplicate user email %q", user.Email)
	}
	if _, ok := t.store.usersByEmail[user.Email]; ok {
		return fmt.Errorf("duplicate user email %q", user.Email)
	}

	user.ID = t.store.nextUserID
	t.store.nextUserID++

	copy := *user
	t.usersByEmail[user.Email] = &copy
	return nil
}

func (t *memoryTx) ProductByName(name string) (*models.Product, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	if p, ok := t.productsByName[name]; ok {
		copy := *p
		return &copy, nil
	}
	if p, ok := t.store.productsByName[name]; ok {
		copy := *p
		return &copy, nil
	}
	return nil, nil
}

func (t *memoryTx) AddProduct(product *models.Product) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	if _, ok := t.productsByName[product.Name]; ok {
		return fmt.Errorf("duplicate product name %q", product.Name)
	}
	if _, ok := t.store.productsByName[product.Name]; ok {
		return fmt.Errorf("duplicate product name %q", product.Name)
	}

	product.ID = t.store.nextProductID
	t.store.nextProductID++

	copy := *product
	t.productsByName[product.Name] = &copy
	return nil
}

func (t *memoryTx) AddOrder(order *models.Order) error {
	t.staged = append(t.staged, order)
	return nil
}

// Flush assigns item identifiers and checks primary key collisions for
// the staged orders, mirroring what the database would do on insert.
func (t *memoryTx) Flush() error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	seen := make(map[uint]struct{})
	for _, order := range t.staged {
		if _, ok := t.store.orders[order.ID]; ok {
			return fmt.Errorf("duplicate order id %d", order.ID)
		}
		if _, ok := seen[order.ID]; ok {
			return fmt.Errorf("duplicate order id %d", order.ID)
		}
		seen[order.ID] = struct{}{}

		for i := range order.Items {
			order.Items[i].ID = t.store.nextItemID
			order.Items[i].OrderID = order.ID
			t.store.nextItemID++
		}
	}
	return nil
}

func (t *memoryTx) SetOrderIdentity(enabled bool) error {
	// Explicit order ids are always accepted here.
	return nil
}

func (t *memoryTx) Commit() error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	if t.done {
		return fmt.Errorf("transaction already finished")
	}
	t.done = true

	for email, u := range t.usersByEmail {
		t.store.usersByEmail[email] = u
	}
	for name, p := range t.productsByName {
		t.store.productsByName[name] = p
	}
	for _, order := range t.staged {
		t.store.orders[order.ID] = *order
	}
	return nil
}

func (t *memoryTx) Rollback() error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	if t.done {
		return nil
	}
	t.done = true
	t.usersByEmail = nil
	t.productsByName = nil
	t.staged = nil
	return nil
}
