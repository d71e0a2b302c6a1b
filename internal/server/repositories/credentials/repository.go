// Package credentials implements the credential store: read-only lookup of
// CredentialRecords by username, backed by memory or PostgreSQL.
package credentials

import (
	"context"

	"github.com/dmitrijs2005/sentinel/internal/server/models"
)

// Repository looks up credential records. Unknown usernames yield
// common.ErrorNotFound; any other error is an infrastructure failure.
// Usernames are case-sensitive.
type Repository interface {
	Lookup(ctx context.Context, username string) (*models.CredentialRecord, error)
}
