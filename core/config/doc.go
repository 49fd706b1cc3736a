// Package config provides configuration management for the order importer.
//
// It utilizes Viper for loading configuration from environment variables and an
// optional .env file, with defaults taken from struct tags.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings,
// divided into subsections:
//   - Server: HTTP server settings (port, API key)
//   - Database: MySQL (or sqlite) connection details
//   - Storage: S3/MinIO credentials and the order document bucket
//   - Log: Logging level and format
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
