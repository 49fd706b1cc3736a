// Package server holds the HTTP server configuration.
//
// While the main application entry point handles the server startup, this package
// defines the configuration structure for server settings (port, API key).
//
// It is primarily consumed by the core/config package, which embeds the server
// settings into the application configuration.
package server
