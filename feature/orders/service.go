package orders

import (
	"context"
	"errors"
	"fmt"

	"order-importer/core/storage"
	"order-importer/feature/orders/importer"
	"order-importer/feature/orders/models"
	"order-importer/feature/orders/parser"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service orchestrates the import pipeline: fetch a document, parse it,
// reconcile the batch. It also answers read queries for the HTTP surface.
type Service struct {
	parser *parser.Parser
	engine *importer.Engine
	client storage.Client
	bucket string
	db     *gorm.DB
	logger *zap.Logger
}

// NewService creates a new orders service.
func NewService(client storage.Client, bucket string, logger *zap.Logger, db *gorm.DB) *Service {
	return &Service{
		parser: parser.NewParser(logger),
		engine: importer.NewEngine(importer.NewGormStore(db), logger),
		client: client,
		bucket: bucket,
		db:     db,
		logger: logger,
	}
}

// ImportFile imports the order document at a local path. A missing or
// malformed document yields zero imported orders, not an error.
func (s *Service) ImportFile(ctx context.Context, path string) ([]models.Order, error) {
	batch := s.parser.ParseFile(path)
	return s.reconcile(ctx, batch, path)
}

// ImportObject imports an order document stored in the bucket.
func (s *Service) ImportObject(ctx context.Context, objectName string) ([]models.Order, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order document %q: %w", objectName, err)
	}
	defer obj.Close()

	batch := s.parser.Parse(obj, objectName)
	return s.reconcile(ctx, batch, objectName)
}

func (s *Service) reconcile(ctx context.Context, batch []models.ImportOrder, source string) ([]models.Order, error) {
	orders, err := s.engine.Reconcile(ctx, batch)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Orders imported",
		zap.String("source", source),
		zap.Int("parsed", len(batch)),
		zap.Int("imported", len(orders)),
	)
	return orders, nil
}

// ListOrders returns all committed orders with their items.
func (s *Service) ListOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := s.db.WithContext(ctx).Preload("Items").Order("id").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// GetOrder returns one order by its id, or (nil, nil) when absent.
func (s *Service) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Preload("Items").First(&order, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order %d: %w", id, err)
	}
	return &order, nil
}
