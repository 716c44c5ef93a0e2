// Package config loads process configuration from environment variables.
//
// It combines github.com/joho/godotenv, which applies .env files to the
// process environment, with github.com/caarlos0/env/v11, which parses the
// environment into structs annotated with `env` and `envDefault` tags.
//
// Each struct type is parsed once and cached, so packages can call Load for
// the same type without re-reading the environment:
//
//	if err := config.LoadEnv("/etc/sessiond/.env"); err != nil {
//	    return err
//	}
//
//	var cfg session.Config
//	if err := config.Load(&cfg); err != nil {
//	    return err
//	}
//
// Variables already present in the environment always win over .env files.
// Tests that change the environment call Reset to force a fresh parse.
package config
