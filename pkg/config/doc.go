// Package config loads service configuration from environment variables.
//
// It wraps github.com/joho/godotenv, which reads optional .env files into the
// process environment, and github.com/caarlos0/env/v11, which parses the
// environment into a struct using `env` and `envDefault` field tags:
//
//	type Config struct {
//	    MaxActiveUsers int           `env:"TENANTDB_MAX_ACTIVE_USERS" envDefault:"100"`
//	    SweepInterval  time.Duration `env:"TENANTDB_SWEEP_INTERVAL" envDefault:"60s"`
//	}
//
//	if err := config.LoadEnv(); err != nil { // ./.env, if present
//	    return err
//	}
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//	    return err
//	}
//
// time.Duration fields take Go duration strings ("5m", "300000ms"); a bare
// integer is read as milliseconds, so "300000" is five minutes.
//
// Nested structs are parsed recursively, so a service config can embed the
// config structs of the packages it wires together.
//
// Errors wrap ErrParsingConfig, ErrLoadingEnvFile or ErrNilPointer and can be
// tested with errors.Is.
package config
