// Package config provides configuration management for the underwriting
// service.
//
// Configuration is a YAML document with six sections: server, catalog,
// engine, documents, audit and telemetry.
//
// # Configuration Loading
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("config.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention UNDERWRITER_SECTION_FIELD.
// For example:
//
//   - UNDERWRITER_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - UNDERWRITER_CATALOG_RULES_PATH overrides catalog.rules_path
//   - UNDERWRITER_DOCUMENTS_POSTGRES_PASSWORD overrides documents.postgres.password
//   - UNDERWRITER_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// # Configuration Precedence
//
// Values are applied in the following order (later overrides earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// Switches that default to true (audit.enabled, engine.recover_panics and
// others) are set before the file is decoded, so an explicit false in the
// file is honoured.
//
// # Singleton Pattern
//
//	if err := config.Initialize("config.yaml"); err != nil {
//		log.Fatal(err)
//	}
//	cfg := config.GetConfig()
//
// Tests should prefer passing an explicit *Config.
package config
