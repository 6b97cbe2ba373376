// Package config provides centralized configuration management for bodylab.
// It loads configuration from multiple sources, validates it, and exposes a
// type-safe struct to the rest of the application.
//
// # Configuration Sources
//
// Sources are applied in order, later ones overriding earlier ones:
//
//	1. Default values (Default)
//	2. YAML configuration file (optional, passed to Load)
//	3. .env file in the working directory (optional)
//	4. Environment variables (highest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern BODYLAB_<SECTION>_<KEY>:
//
//	BODYLAB_SERVER_PORT=8080
//	BODYLAB_LOGGING_LEVEL=debug
//	BODYLAB_SECURITY_ALLOWED_ORIGINS=http://localhost:3000,https://example.com
//	BODYLAB_REQUEST_BODY_MAX_BYTES=65536
//	BODYLAB_TELEMETRY_METRICS_ENABLED=false
//
// # Validation
//
// Validation uses struct tags checked by go-playground/validator, so ranges
// and enumerations live next to the field they constrain.
//
// # Usage
//
//	cfg, err := config.Load("configs/bodylab.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
