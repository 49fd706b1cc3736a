package importer

import (
	"context"
	"fmt"
	"time"

	"order-importer/feature/orders/models"

	"go.uber.org/zap"
)

// dateFormats are the accepted reg_date layouts, tried in order.
var dateFormats = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02.01.2006",
}

// Engine reconciles parsed import batches into a Store. One engine
// serves any store implementation; the environment (durable vs
// in-memory) is chosen at construction only.
type Engine struct {
	store  Store
	logger *zap.Logger
}

// NewEngine creates a reconciliation engine on top of store.
func NewEngine(store Store, logger *zap.Logger) *Engine {
	return &Engine{store: store, logger: logger}
}

// Reconcile imports one batch atomically. Users and products are
// resolved by natural key (email, name) and created on first reference;
// orders keep their caller-supplied ids. Any failure rolls the whole
// batch back and returns a single error; on success the committed
// orders are returned in input order.
//
// Batches sharing natural keys must not run concurrently against the
// same store; callers serialize Reconcile invocations.
func (e *Engine) Reconcile(ctx context.Context, batch []models.ImportOrder) ([]models.Order, error) {
	if len(batch) == 0 {
		e.logger.Info("Import batch is empty, nothing to reconcile")
		return []models.Order{}, nil
	}

	tx, err := e.store.Begin(ctx)
	if err != nil {
		return nil, err
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		// Cleanup after a failure. Neither step may mask the primary
		// error, so both are only logged.
		if idErr := tx.SetOrderIdentity(false); idErr != nil {
			e.logger.Warn("Failed to restore order identity assignment", zap.Error(idErr))
		}
		if rbErr := tx.Rollback(); rbErr != nil {
			e.logger.Warn("Failed to roll back import transaction", zap.Error(rbErr))
		}
	}()

	if err := tx.SetOrderIdentity(true); err != nil {
		return nil, fmt.Errorf("failed to suspend order identity assignment: %w", err)
	}

	staged := make([]*models.Order, 0, len(batch))
	for i, imp := range batch {
		order, err := e.reconcileOrder(tx, imp)
		if err != nil {
			return nil, fmt.Errorf("order %d (position %d): %w", imp.OrderID, i, err)
		}
		staged = append(staged, order)
	}

	if err := tx.Flush(); err != nil {
		return nil, err
	}
	if err := tx.SetOrderIdentity(false); err != nil {
		return nil, fmt.Errorf("failed to restore order identity assignment: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit import transaction: %w", err)
	}
	committed = true

	orders := make([]models.Order, 0, len(staged))
	for _, order := range staged {
		orders = append(orders, *order)
	}

	e.logger.Info("Import batch committed", zap.Int("orders", len(orders)))
	return orders, nil
}

// reconcileOrder resolves one parsed order against the transaction and
// stages the resulting row.
func (e *Engine) reconcileOrder(tx Tx, imp models.ImportOrder) (*models.Order, error) {
	if imp.OrderID <= 0 {
		return nil, fmt.Errorf("order id must be positive, got %d", imp.OrderID)
	}

	date, err := parseOrderDate(imp.RegDate)
	if err != nil {
		return nil, err
	}

	user, err := e.resolveUser(tx, imp.User)
	if err != nil {
		return nil, err
	}

	items := make([]models.OrderItem, 0, len(imp.Items))
	for _, item := range imp.Items {
		product, err := e.resolveProduct(tx, item)
		if err != nil {
			return nil, err
		}
		items = append(items, models.OrderItem{
			ProductID: product.ID,
			Quantity:  item.Quantity,
		})
	}

	order := &models.Order{
		ID:     uint(imp.OrderID),
		UserID: user.ID,
		Date:   date,
		Items:  items,
	}
	if err := tx.AddOrder(order); err != nil {
		return nil, err
	}
	return order, nil
}

// resolveUser finds the user by email or creates it. Existing rows are
// never updated, even when the input disagrees with stored attributes.
func (e *Engine) resolveUser(tx Tx, imp models.ImportUser) (*models.User, error) {
	user, err := tx.UserByEmail(imp.Email)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	password := imp.Password
	if password == "" {
		password = models.DefaultPassword
	}

	user = &models.User{
		Name:     imp.Name,
		Email:    imp.Email,
		Password: password,
	}
	if err := tx.AddUser(user); err != nil {
		return nil, err
	}

	e.logger.Debug("Created user", zap.String("email", user.Email), zap.Uint("id", user.ID))
	return user, nil
}

// resolveProduct finds the product by name or creates it, applying the
// description default.
func (e *Engine) resolveProduct(tx Tx, imp models.ImportItem) (*models.Product, error) {
	product, err := tx.ProductByName(imp.Name)
	if err != nil {
		return nil, err
	}
	if product != nil {
		return product, nil
	}

	description := imp.Description
	if description == "" {
		description = models.DefaultDescription
	}

	product = &models.Product{
		Name:        imp.Name,
		Price:       imp.Price,
		Description: description,
	}
	if err := tx.AddProduct(product); err != nil {
		return nil, err
	}

	e.logger.Debug("Created product", zap.String("name", product.Name), zap.Uint("id", product.ID))
	return product, nil
}

// parseOrderDate validates the registration date carried by the parser.
// A malformed date fails the whole batch, not just this order.
func parseOrderDate(value string) (time.Time, error) {
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable reg_date %q", value)
}
