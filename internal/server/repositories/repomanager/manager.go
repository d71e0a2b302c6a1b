// Package repomanager wires credential repositories to their backing store
// and owns that store's lifecycle (migrations, seeding, shutdown).
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/sentinel/internal/server/models"
	"github.com/dmitrijs2005/sentinel/internal/server/repositories/credentials"
)

// RepositoryManager vends the credential repository and reports whether
// the backing store is reachable.
type RepositoryManager interface {
	Credentials() credentials.Repository
	Ping(ctx context.Context) error
	Close() error
}

// New picks a backend: an empty dsn keeps records in memory, otherwise the
// PostgreSQL database at dsn is migrated and seeded with records.
func New(ctx context.Context, dsn string, records []models.CredentialRecord) (RepositoryManager, error) {
	if dsn == "" {
		return NewInMemoryRepositoryManager(records)
	}
	return OpenPostgres(ctx, dsn, records)
}
