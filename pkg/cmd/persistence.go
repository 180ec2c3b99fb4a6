// Package cmd provides common initialization helpers shared by the
// command-line binaries.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/persistence"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/persistence/memory"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/persistence/postgresql"
)

// NewPersistence picks the storage engine from the database URL scheme.
// postgres:// and postgresql:// select PostgreSQL; memory:// selects the
// in-memory engine used for local development and tests.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	scheme, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return nil, fmt.Errorf("database URL %q has no scheme", databaseURL)
	}

	switch scheme {
	case "postgres", "postgresql":
		return postgresql.NewPersistence(ctx, logger, databaseURL)
	case "memory":
		return memory.NewPersistence(), nil
	default:
		return nil, fmt.Errorf("unsupported persistence provider: %s", scheme)
	}
}
