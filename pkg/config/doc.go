// Package config loads application configuration from environment variables
// into tagged structs.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11: the
// default .env file is picked up once per process when present, named .env
// files can be loaded explicitly, and structs are populated from `env` field
// tags with `envDefault` fallbacks and `required` enforcement.
//
// # Usage
//
//	type ServerConfig struct {
//	    Addr            string        `env:"SERVER_ADDR" envDefault:":8080"`
//	    ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10s"`
//	}
//
//	var cfg ServerConfig
//	if err := config.Load(&cfg); err != nil {
//	    log.Fatalf("config: %v", err)
//	}
//
// MustLoad panics instead of returning an error, for configuration the
// process cannot run without. Sentinel errors ErrParsingConfig,
// ErrNilPointer and ErrLoadingEnvFile compare with errors.Is.
package config
