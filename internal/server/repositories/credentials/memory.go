package credentials

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/sentinel/internal/common"
	"github.com/dmitrijs2005/sentinel/internal/server/models"
)

// MemoryRepository is an immutable in-memory credential store built once
// from seed records. It needs no locking because nothing writes to it after
// construction.
type MemoryRepository struct {
	records map[string]models.CredentialRecord
}

// NewMemoryRepository indexes records by username. Empty and duplicate
// usernames are rejected.
func NewMemoryRepository(records []models.CredentialRecord) (*MemoryRepository, error) {
	m := make(map[string]models.CredentialRecord, len(records))
	for _, r := range records {
		if r.Username == "" {
			return nil, fmt.Errorf("%w: empty username", common.ErrorValidation)
		}
		if _, exists := m[r.Username]; exists {
			return nil, fmt.Errorf("%w: username %q", common.ErrorAlreadyExists, r.Username)
		}
		r.PasswordHash = append([]byte(nil), r.PasswordHash...)
		m[r.Username] = r
	}
	return &MemoryRepository{records: m}, nil
}

// Lookup returns a copy of the record so callers cannot mutate the store.
func (r *MemoryRepository) Lookup(_ context.Context, username string) (*models.CredentialRecord, error) {
	rec, ok := r.records[username]
	if !ok {
		return nil, common.ErrorNotFound
	}
	rec.PasswordHash = append([]byte(nil), rec.PasswordHash...)
	return &rec, nil
}

// Len returns the number of stored records.
func (r *MemoryRepository) Len() int {
	return len(r.records)
}
