// Package config provides type-safe environment variable loading with caching
// using Go generics. Each configuration type is loaded once and cached for
// subsequent calls.
//
// The package automatically loads .env files on first use and uses the
// caarlos0/env library for parsing environment variables into struct fields.
//
// Basic usage:
//
//	import "github.com/openlims/authsession/core/config"
//
//	var cfg session.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//
//	// or, during start-up
//	var pgCfg pg.Config
//	config.MustLoad(&pgCfg)
//
// # Caching Behavior
//
// Each configuration type is loaded only once per application lifetime:
//
//	var a session.Config
//	config.Load(&a) // reads the environment
//
//	var b session.Config
//	config.Load(&b) // copies the cached value, a == b
//
// Different types are cached independently. Tests that change the environment
// call Reset between loads.
package config
