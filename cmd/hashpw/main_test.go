package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/sentinel/internal/server/auth"
	"github.com/dmitrijs2005/sentinel/internal/server/repositories/credentials"
)

func stdinWith(t *testing.T, content string) *os.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stdin")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	f, err := os.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestRun_HashFromStdin(t *testing.T) {
	var out, errOut bytes.Buffer

	err := run([]string{"-cost", "4"}, stdinWith(t, "admin123\n"), &out, &errOut)
	require.NoError(t, err)

	hash := strings.TrimSpace(out.String())
	ok, err := auth.VerifyPassword([]byte(hash), "admin123")
	require.NoError(t, err)
	assert.True(t, ok)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, 4, cost)
	assert.Empty(t, errOut.String())
}

func TestRun_SeedRecord(t *testing.T) {
	var out, errOut bytes.Buffer

	err := run([]string{"-cost", "4", "-user", "ops"}, stdinWith(t, "secret"), &out, &errOut)
	require.NoError(t, err)

	records, err := credentials.ParseSeed(&out)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "ops", records[0].Username)

	ok, err := auth.VerifyPassword(records[0].PasswordHash, "secret")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRun_LongPasswordWarns(t *testing.T) {
	var out, errOut bytes.Buffer

	err := run([]string{"-cost", "4"}, stdinWith(t, strings.Repeat("x", 80)+"\n"), &out, &errOut)
	require.NoError(t, err)
	assert.Contains(t, errOut.String(), "only the first 72 are used")
}

func TestRun_Errors(t *testing.T) {
	var out, errOut bytes.Buffer

	assert.Error(t, run(nil, stdinWith(t, "\n"), &out, &errOut), "empty password")
	assert.Error(t, run(nil, stdinWith(t, ""), &out, &errOut), "no input")
	assert.Error(t, run([]string{"-cost", "99"}, stdinWith(t, "pw\n"), &out, &errOut), "cost out of range")
	assert.Error(t, run([]string{"-nope"}, stdinWith(t, "pw\n"), &out, &errOut), "unknown flag")
}

func TestRun_Terminal(t *testing.T) {
	origIs, origRead := isTerminal, readPassword
	t.Cleanup(func() { isTerminal, readPassword = origIs, origRead })

	isTerminal = func(int) bool { return true }
	readPassword = func(int) ([]byte, error) { return []byte("from-tty"), nil }

	var out, errOut bytes.Buffer
	require.NoError(t, run([]string{"-cost", "4", "-user", "tty"}, stdinWith(t, ""), &out, &errOut))
	assert.Contains(t, errOut.String(), "Password: ")

	var recs []credentials.SeedRecord
	require.NoError(t, json.Unmarshal(out.Bytes(), &recs))
	ok, err := auth.VerifyPassword([]byte(recs[0].PasswordHash), "from-tty")
	require.NoError(t, err)
	assert.True(t, ok)
}
