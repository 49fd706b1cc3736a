// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client to provide a simplified interface for the
// operations the order importer needs: fetching order XML documents, checking
// and creating the document bucket, uploading documents and listing them. The
// abstraction supports both AWS S3 and self-hosted MinIO instances.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, making it easy
// to mock storage interactions for unit testing (see core/storage/mocks).
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	obj, err := client.GetObject(ctx, bucket, "inbox/order.xml", minio.GetObjectOptions{})
package storage
