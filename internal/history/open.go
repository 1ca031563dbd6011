package history

import (
	"fmt"

	"go.uber.org/zap"
)

// Open builds a Store for the configured backend name.
func Open(backend, path string, logger *zap.Logger) (Store, error) {
	switch backend {
	case "memory":
		return NewMemoryStore(), nil
	case "bolt":
		return NewBoltStore(path)
	case "sqlite":
		return NewGormStore(path, logger)
	default:
		return nil, fmt.Errorf("unknown history backend %q", backend)
	}
}
