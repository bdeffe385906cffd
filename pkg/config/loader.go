package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// cache stores one parsed configuration value per struct type so repeated
// Load calls across packages observe the same immutable snapshot.
type cache struct {
	mu     sync.RWMutex
	values map[string]any
	onces  map[string]*sync.Once
}

var (
	loaded = &cache{
		values: make(map[string]any),
		onces:  make(map[string]*sync.Once),
	}

	dotenvOnce sync.Once
)

// Load parses environment variables into v based on its `env` field tags.
//
// The first call in the process attempts to load a .env file from the
// working directory; a missing file is not an error. Each distinct struct
// type is parsed exactly once and cached, so a later Load for the same type
// returns the cached value even if the environment changed in between.
func Load[T any](v *T) error {
	dotenvOnce.Do(func() {
		// A .env file is a development convenience only.
		_ = godotenv.Load()
	})
	if v == nil {
		return ErrNilPointer
	}

	key := typeKey[T]()

	loaded.mu.RLock()
	if cached, ok := loaded.values[key]; ok {
		*v = cached.(T)
		loaded.mu.RUnlock()
		return nil
	}
	loaded.mu.RUnlock()

	loaded.mu.Lock()
	once, ok := loaded.onces[key]
	if !ok {
		once = new(sync.Once)
		loaded.onces[key] = once
	}
	loaded.mu.Unlock()

	var parseErr error
	once.Do(func() {
		if err := env.Parse(v); err != nil {
			parseErr = errors.Join(ErrParsingConfig, err)
			return
		}
		loaded.mu.Lock()
		loaded.values[key] = *v
		loaded.mu.Unlock()
	})
	if parseErr != nil {
		return parseErr
	}

	// Concurrent callers that lost the once race read the cached copy here.
	loaded.mu.RLock()
	defer loaded.mu.RUnlock()
	if cached, ok := loaded.values[key]; ok {
		*v = cached.(T)
		return nil
	}
	return ErrConfigNotLoaded
}

// MustLoad is Load for configuration the process cannot start without.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}

func typeKey[T any]() string {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		return fmt.Sprintf("%T", *new(T))
	}
	return t.String()
}
