package cmd

import (
	"context"
	"fmt"

	"order-importer/core/config"
	"order-importer/core/database"
	"order-importer/core/logger"
	"order-importer/core/storage"
	"order-importer/feature/orders"
	"order-importer/feature/orders/importer"
	"order-importer/feature/orders/models"
	"order-importer/feature/orders/parser"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for the import command
	importFile   string
	importObject string
	dryRunImport bool
	skipMigrate  bool
)

// importCmd reconciles one order document into the database.
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import an order XML document into the database",
	Long: `Import parses an order XML document and reconciles it into the database
as one atomic batch.

Users are deduplicated by email and products by name; existing rows are never
updated. Order ids are taken verbatim from the document. On any failure the
whole batch is rolled back and the command exits non-zero.

Examples:
  # Import a local file
  order-importer import --file order.xml

  # Import a document from the storage bucket
  order-importer import --object inbox/order.xml

  # Validate a document against an empty in-memory store
  order-importer import --file order.xml --dry-run`,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importFile, "file", "order.xml", "Path of the order XML document")
	importCmd.Flags().StringVar(&importObject, "object", "", "Object name of the document in the storage bucket (overrides --file)")
	importCmd.Flags().BoolVar(&dryRunImport, "dry-run", false, "Reconcile against an in-memory store, leaving the database untouched")
	importCmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "Do not auto-migrate the import tables before importing")

	RootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()

	if dryRunImport {
		return runDryImport(ctx, l)
	}

	// Connect to database
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if !skipMigrate {
		if err := models.Migrate(db); err != nil {
			return err
		}
	}

	// Preflight: the import tables must carry the expected columns.
	if err := database.VerifyImportSchema(db); err != nil {
		return err
	}

	var client storage.Client
	if importObject != "" {
		client, err = storage.NewClient(cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to connect to storage: %w", err)
		}
	}

	svc := orders.NewService(client, cfg.Storage.Bucket, l, db)

	var committed []models.Order
	if importObject != "" {
		committed, err = svc.ImportObject(ctx, importObject)
	} else {
		committed, err = svc.ImportFile(ctx, importFile)
	}
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	l.Info("Orders successfully added to the database", zap.Int("count", len(committed)))
	return nil
}

// runDryImport parses the document and reconciles it against a fresh
// in-memory store, reporting what a real import would create.
func runDryImport(ctx context.Context, l *zap.Logger) error {
	p := parser.NewParser(l)

	var batch []models.ImportOrder
	if importObject != "" {
		return fmt.Errorf("--dry-run supports local files only, use --file")
	}
	batch = p.ParseFile(importFile)

	store := importer.NewMemoryStore()
	engine := importer.NewEngine(store, l)

	committed, err := engine.Reconcile(ctx, batch)
	if err != nil {
		return fmt.Errorf("dry-run reconciliation failed: %w", err)
	}

	l.Info("Dry-run complete, no changes were made",
		zap.Int("orders", len(committed)),
		zap.Int("users", len(store.Users())),
		zap.Int("products", len(store.Products())),
	)
	return nil
}
