package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/sentinel/internal/common"
	"github.com/dmitrijs2005/sentinel/internal/dbx"
	"github.com/dmitrijs2005/sentinel/internal/server/models"
)

// PostgresRepository reads credential records from the credentials table.
// Operators may flip the disabled column at runtime; Lookup always reads
// the current row.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Lookup(ctx context.Context, username string) (*models.CredentialRecord, error) {
	query :=
		`SELECT username, password_hash, disabled, display_name, email FROM credentials
		 WHERE username = $1
		 `

	rec := &models.CredentialRecord{}
	var hash string
	err := r.db.QueryRowContext(ctx, query, username).
		Scan(&rec.Username, &hash, &rec.Disabled, &rec.DisplayName, &rec.Email)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	rec.PasswordHash = []byte(hash)
	return rec, nil
}

// Seed inserts records that are not present yet. Existing rows are left
// untouched so an operator's changes survive restarts.
func (r *PostgresRepository) Seed(ctx context.Context, records []models.CredentialRecord) (int64, error) {
	query :=
		`INSERT INTO credentials (username, password_hash, disabled, display_name, email)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (username) DO NOTHING
		 `

	var inserted int64
	for _, rec := range records {
		if rec.Username == "" {
			return inserted, fmt.Errorf("%w: empty username", common.ErrorValidation)
		}
		res, err := r.db.ExecContext(ctx, query,
			rec.Username, string(rec.PasswordHash), rec.Disabled, rec.DisplayName, rec.Email)
		if err != nil {
			return inserted, fmt.Errorf("db error: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return inserted, fmt.Errorf("db error: %w", err)
		}
		inserted += n
	}
	return inserted, nil
}
