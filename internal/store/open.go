package store

import (
	"context"

	"github.com/samber/oops"
)

// Backend names accepted by Open.
const (
	BackendFile     = "file"
	BackendBolt     = "bolt"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Settings selects and configures a backend.
type Settings struct {
	Backend string
	Dir     string
	DSN     string
}

// Open returns the backend named by s.Backend. An empty name means file.
func Open(ctx context.Context, s Settings) (KV, error) {
	switch s.Backend {
	case BackendFile, "":
		return NewFile(s.Dir)
	case BackendBolt:
		return NewBolt(s.Dir)
	case BackendPostgres:
		return OpenSQL(ctx, s.DSN)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, oops.In("store").With("backend", s.Backend).Errorf("unknown backend %q", s.Backend)
	}
}
