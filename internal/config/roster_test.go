package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrvim/shrvimd/internal/manager"
)

func TestLoadRosterMissingFileIsEmpty(t *testing.T) {
	entries, err := LoadRoster(filepath.Join(t.TempDir(), "missing.txt"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSaveThenLoadRosterRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.txt")
	entries := []RosterEntry{
		{Identity: "bob", Nickname: "Bob", Authority: manager.Readonly},
		{Identity: "alice", Nickname: "Alice", Authority: manager.Readwrite},
	}

	require.NoError(t, SaveRoster(path, entries))

	loaded, err := LoadRoster(path)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "alice", loaded[0].Identity, "save sorts by identity")
	assert.Equal(t, "bob", loaded[1].Identity)
}

func TestLoadRosterRejectsMalformedLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.txt")
	require.NoError(t, os.WriteFile(path, []byte("alice Alice\n"), 0o644))

	_, err := LoadRoster(path)
	assert.Error(t, err)
}

func TestAuthorityFromStringRejectsUnknownToken(t *testing.T) {
	_, err := AuthorityFromString("XX")
	assert.Error(t, err)
}
