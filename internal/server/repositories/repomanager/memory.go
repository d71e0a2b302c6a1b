package repomanager

import (
	"context"

	"github.com/dmitrijs2005/sentinel/internal/server/models"
	"github.com/dmitrijs2005/sentinel/internal/server/repositories/credentials"
)

// InMemoryRepositoryManager serves credentials from the immutable
// in-memory store.
type InMemoryRepositoryManager struct {
	credentials *credentials.MemoryRepository
}

func NewInMemoryRepositoryManager(records []models.CredentialRecord) (*InMemoryRepositoryManager, error) {
	repo, err := credentials.NewMemoryRepository(records)
	if err != nil {
		return nil, err
	}
	return &InMemoryRepositoryManager{credentials: repo}, nil
}

func (m *InMemoryRepositoryManager) Credentials() credentials.Repository {
	return m.credentials
}

func (m *InMemoryRepositoryManager) Ping(context.Context) error {
	return nil
}

func (m *InMemoryRepositoryManager) Close() error {
	return nil
}
