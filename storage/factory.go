package storage

import (
	"context"
	"fmt"

	"github.com/kbukum/scribe/logger"
)

// Factory creates a Storage implementation from config.
type Factory func(ctx context.Context, cfg Config, log *logger.Logger) (Storage, error)

var factories = make(map[string]Factory)

// RegisterFactory registers a storage backend factory for the given provider name.
// Backend packages call this from an init function.
func RegisterFactory(name string, f Factory) {
	factories[name] = f
}

// New creates the Storage selected by cfg.Provider. The backend package must
// be imported (e.g. _ "github.com/kbukum/scribe/storage/local") so its
// factory is registered.
func New(ctx context.Context, cfg Config, log *logger.Logger) (Storage, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	f, ok := factories[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("storage: unsupported provider %q (not registered)", cfg.Provider)
	}

	l := log.WithComponent("storage")
	l.Info("initializing storage", logger.Fields("provider", cfg.Provider))
	return f(ctx, cfg, l)
}
