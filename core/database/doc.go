// Package database handles database connections and schema inspection.
//
// It provides a wrapper around GORM (Go Object Relational Mapping) to properly
// configure MySQL connections based on the application's configuration, with a
// sqlite driver available for local runs and tests.
//
// # Connect
//
// The Connect function establishes a connection for the configured driver and
// verifies it with a ping (MySQL) before handing it out.
//
// # Schema Inspection
//
// The package includes tools to inspect the database schema. VerifyImportSchema
// uses them as a preflight for the order importer: it confirms the users,
// products, orders and order_items tables carry the columns the import engine
// reads and writes.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	if err := database.VerifyImportSchema(db); err != nil { ... }
package database
