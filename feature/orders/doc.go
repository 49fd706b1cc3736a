// Package orders implements the order import feature.
//
// It ingests order XML documents (from a local file or the storage
// bucket), parses them into candidate orders and reconciles each batch
// into the relational store atomically. Users are deduplicated by
// email, products by name; order ids are taken verbatim from the
// document.
//
// # Components
//
//   - parser: XML document -> []models.ImportOrder (never fails hard).
//   - importer: the reconciliation engine and its stores (the core).
//   - Service: fetch + parse + reconcile orchestration and read queries.
//   - Handler: HTTP endpoints for triggering imports and reading orders.
//   - Loader: registers the feature with the application.
//
// # HTTP Endpoints
//
//   - POST /orders/import?object=... : import a document from storage.
//   - GET  /orders                   : list committed orders with items.
//   - GET  /orders/:id               : get one order.
package orders
