package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrParsingConfig wraps errors from the environment parser.
var ErrParsingConfig = errors.New("failed to parse configuration")

var (
	dotenvOnce sync.Once
	cache      sync.Map // reflect.Type -> any
	mu         sync.Mutex
)

// LoadEnvFile loads the named dotenv files into the process environment
// without overriding variables that are already set. Missing files are
// skipped. With no arguments it loads ".env".
func LoadEnvFile(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("%w: %v", ErrParsingConfig, err)
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrParsingConfig, p, err)
		}
	}
	return nil
}

// Load fills cfg from the environment. The first call for a given type
// parses the environment; later calls copy the cached value.
func Load[T any](cfg *T) error {
	dotenvOnce.Do(func() { _ = LoadEnvFile() })

	typ := reflect.TypeFor[T]()
	if v, ok := cache.Load(typ); ok {
		*cfg = v.(T)
		return nil
	}

	mu.Lock()
	defer mu.Unlock()

	if v, ok := cache.Load(typ); ok {
		*cfg = v.(T)
		return nil
	}

	var parsed T
	if err := env.Parse(&parsed); err != nil {
		return fmt.Errorf("%w: %v", ErrParsingConfig, err)
	}
	cache.Store(typ, parsed)
	*cfg = parsed
	return nil
}

// MustLoad is Load that panics on error.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}
