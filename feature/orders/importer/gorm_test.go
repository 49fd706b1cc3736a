package importer

import (
	"context"
	"errors"
	"testing"

	"order-importer/core/database"
	"order-importer/feature/orders/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupSQLiteDB(t *testing.T) *gorm.DB {
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))
	return db
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func TestGormStore_Scenario(t *testing.T) {
	db := setupSQLiteDB(t)
	engine := NewEngine(NewGormStore(db), zap.NewNop())

	orders, err := engine.Reconcile(context.Background(), scenarioBatch())
	require.NoError(t, err)
	require.Len(t, orders, 1)

	var userCount, productCount, orderCount, itemCount int64
	db.Model(&models.User{}).Count(&userCount)
	db.Model(&models.Product{}).Count(&productCount)
	db.Model(&models.Order{}).Count(&orderCount)
	db.Model(&models.OrderItem{}).Count(&itemCount)
	assert.Equal(t, int64(1), userCount)
	assert.Equal(t, int64(1), productCount)
	assert.Equal(t, int64(1), orderCount)
	assert.Equal(t, int64(1), itemCount)

	var order models.Order
	require.NoError(t, db.Preload("Items").First(&order, 1).Error)
	assert.Equal(t, uint(1), order.ID)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.Items[0].Quantity)

	var user models.User
	require.NoError(t, db.First(&user, order.UserID).Error)
	assert.Equal(t, "john@x.com", user.Email)
	assert.Equal(t, models.DefaultPassword, user.Password)

	var product models.Product
	require.NoError(t, db.First(&product, order.Items[0].ProductID).Error)
	assert.Equal(t, "P1", product.Name)
	assert.Equal(t, models.DefaultDescription, product.Description)
}

func TestGormStore_CrossBatchDedup(t *testing.T) {
	db := setupSQLiteDB(t)
	engine := NewEngine(NewGormStore(db), zap.NewNop())

	_, err := engine.Reconcile(context.Background(), scenarioBatch())
	require.NoError(t, err)

	second := scenarioBatch()
	second[0].OrderID = 2
	second[0].User.Name = "Someone Else" // must not overwrite the stored name
	_, err = engine.Reconcile(context.Background(), second)
	require.NoError(t, err)

	var userCount, productCount, orderCount int64
	db.Model(&models.User{}).Count(&userCount)
	db.Model(&models.Product{}).Count(&productCount)
	db.Model(&models.Order{}).Count(&orderCount)
	assert.Equal(t, int64(1), userCount)
	assert.Equal(t, int64(1), productCount)
	assert.Equal(t, int64(2), orderCount)

	var user models.User
	require.NoError(t, db.Where("email = ?", "john@x.com").First(&user).Error)
	assert.Equal(t, "John Doe", user.Name)
}

func TestGormStore_IdPreservation(t *testing.T) {
	db := setupSQLiteDB(t)

	// An order already in the store with a higher autoincrement id.
	seedUser := models.User{Name: "Seed", Email: "seed@x.com", Password: "x"}
	require.NoError(t, db.Create(&seedUser).Error)
	require.NoError(t, db.Create(&models.Order{ID: 50, UserID: seedUser.ID}).Error)

	engine := NewEngine(NewGormStore(db), zap.NewNop())
	orders, err := engine.Reconcile(context.Background(), scenarioBatch())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, uint(1), orders[0].ID)

	var order models.Order
	require.NoError(t, db.First(&order, 1).Error)
	assert.Equal(t, uint(1), order.ID)
}

func TestGormStore_AtomicityBadDate(t *testing.T) {
	db := setupSQLiteDB(t)
	engine := NewEngine(NewGormStore(db), zap.NewNop())

	batch := []models.ImportOrder{
		{
			OrderID: 1,
			RegDate: "2024-08-22",
			User:    models.ImportUser{Name: "A", Email: "a@x.com"},
			Items:   []models.ImportItem{{Name: "P1", Price: 1, Quantity: 1}},
		},
		{
			OrderID: 2,
			RegDate: "never",
			User:    models.ImportUser{Name: "B", Email: "b@x.com"},
			Items:   []models.ImportItem{{Name: "P2", Price: 2, Quantity: 1}},
		},
	}

	_, err := engine.Reconcile(context.Background(), batch)
	require.Error(t, err)

	// The user and product flushed for the first order are rolled back.
	var userCount, productCount, orderCount, itemCount int64
	db.Model(&models.User{}).Count(&userCount)
	db.Model(&models.Product{}).Count(&productCount)
	db.Model(&models.Order{}).Count(&orderCount)
	db.Model(&models.OrderItem{}).Count(&itemCount)
	assert.Zero(t, userCount)
	assert.Zero(t, productCount)
	assert.Zero(t, orderCount)
	assert.Zero(t, itemCount)
}

func TestGormTx_UserByEmail(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewGormStore(db)

	mock.ExpectBegin()
	rows := sqlmock.NewRows([]string{"id", "name", "email", "password"}).
		AddRow(7, "John Doe", "john@x.com", "secret")
	mock.ExpectQuery("SELECT \\* FROM `users` WHERE email = \\?").WillReturnRows(rows)
	mock.ExpectRollback()

	tx, err := store.Begin(context.Background())
	require.NoError(t, err)

	user, err := tx.UserByEmail("john@x.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, uint(7), user.ID)
	assert.Equal(t, "John Doe", user.Name)

	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormTx_UserByEmail_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewGormStore(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `users` WHERE email = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password"}))
	mock.ExpectRollback()

	tx, err := store.Begin(context.Background())
	require.NoError(t, err)

	user, err := tx.UserByEmail("nobody@x.com")
	require.NoError(t, err)
	assert.Nil(t, user)

	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEngine_RollbackOnInsertFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	engine := NewEngine(NewGormStore(db), zap.NewNop())

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `users` WHERE email = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password"}))
	mock.ExpectExec("INSERT INTO `users`").
		WillReturnError(errors.New("Duplicate entry 'john@x.com' for key 'email'"))
	mock.ExpectRollback()

	_, err := engine.Reconcile(context.Background(), scenarioBatch())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert user")
	assert.NoError(t, mock.ExpectationsWereMet())
}
