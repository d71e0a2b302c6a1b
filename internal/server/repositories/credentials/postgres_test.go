package credentials

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/dmitrijs2005/sentinel/internal/common"
	"github.com/dmitrijs2005/sentinel/internal/server/models"
)

const lookupQuery = `(?s)^SELECT\s+username,\s*password_hash,\s*disabled,\s*display_name,\s*email\s+FROM\s+credentials\s+WHERE\s+username\s*=\s*\$1\s*$`

const seedQuery = `(?s)^INSERT\s+INTO\s+credentials\s*\(username,\s*password_hash,\s*disabled,\s*display_name,\s*email\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5\)\s*ON\s+CONFLICT\s+\(username\)\s+DO\s+NOTHING\s*$`

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestLookup_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"username", "password_hash", "disabled", "display_name", "email"}).
		AddRow("alice", "$2a$04$hash", false, "Alice", "alice@example.com")
	mock.ExpectQuery(lookupQuery).WithArgs("alice").WillReturnRows(rows)

	got, err := repo.Lookup(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Lookup error: %v", err)
	}
	if got.Username != "alice" || string(got.PasswordHash) != "$2a$04$hash" || got.Disabled {
		t.Fatalf("unexpected record: %+v", got)
	}
	if got.DisplayName != "Alice" || got.Email != "alice@example.com" {
		t.Fatalf("descriptive fields not scanned: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestLookup_Disabled(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"username", "password_hash", "disabled", "display_name", "email"}).
		AddRow("bob", "h", true, "", "")
	mock.ExpectQuery(lookupQuery).WithArgs("bob").WillReturnRows(rows)

	got, err := repo.Lookup(context.Background(), "bob")
	if err != nil {
		t.Fatalf("Lookup error: %v", err)
	}
	if !got.Disabled {
		t.Fatalf("expected disabled record")
	}
}

func TestLookup_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(lookupQuery).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	_, err := repo.Lookup(context.Background(), "ghost")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestLookup_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(lookupQuery).WithArgs("alice").WillReturnError(errors.New("db down"))

	_, err := repo.Lookup(context.Background(), "alice")
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
	if errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("db failure must not look like a missing user")
	}
}

func TestSeed_InsertsAndCounts(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(seedQuery).
		WithArgs("admin", "h1", false, "Admin", "").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(seedQuery).
		WithArgs("old", "h2", true, "", "").
		WillReturnResult(sqlmock.NewResult(0, 0))

	n, err := repo.Seed(context.Background(), []models.CredentialRecord{
		{Username: "admin", PasswordHash: []byte("h1"), DisplayName: "Admin"},
		{Username: "old", PasswordHash: []byte("h2"), Disabled: true},
	})
	if err != nil {
		t.Fatalf("Seed error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 inserted row, got %d", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSeed_Errors(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	if _, err := repo.Seed(context.Background(), []models.CredentialRecord{{Username: ""}}); !errors.Is(err, common.ErrorValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	mock.ExpectExec(seedQuery).WillReturnError(errors.New("constraint"))
	_, err := repo.Seed(context.Background(), []models.CredentialRecord{{Username: "x", PasswordHash: []byte("h")}})
	if err == nil || !regexp.MustCompile(`db error: .*constraint`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}
