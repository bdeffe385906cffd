// Package config loads typed configuration structs from environment
// variables.
//
// Each component of the gateway declares its own Config struct with `env`
// tags and loads it through the generic Load function. A `.env` file in the
// working directory is picked up automatically on first use, which keeps
// local development close to how the process runs in a container.
//
// Loading is cached per struct type: the environment is parsed once and
// every subsequent Load call for the same type returns the cached copy, so
// packages can load their config independently without coordination.
//
// Example:
//
//	type RedisConfig struct {
//		URL string `env:"REDIS_URL,required"`
//	}
//
//	var cfg RedisConfig
//	if err := config.Load(&cfg); err != nil {
//		// missing or malformed environment
//	}
//
// MustLoad panics on failure and is intended for process startup paths
// where a missing required variable must prevent the server from binding
// a listener at all.
package config
