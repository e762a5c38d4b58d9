package manager

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrvim/shrvimd/internal/chain"
)

func newTestManager(initialText string) *Manager {
	return New(chain.New(initialText, nil, nil))
}

func TestAddUserThenAddAgainFails(t *testing.T) {
	m := newTestManager("hello world")
	require.NoError(t, m.AddUser("alice", "Alice", Readwrite))
	assert.ErrorIs(t, m.AddUser("alice", "Alice", Readwrite), ErrAlreadyExists)
}

func TestDeleteUserUnknownFails(t *testing.T) {
	m := newTestManager("x")
	assert.ErrorIs(t, m.DeleteUser("ghost"), ErrNotFound)
}

func TestResetUserPreservesAuthorityAndNickname(t *testing.T) {
	m := newTestManager("x")
	require.NoError(t, m.AddUser("alice", "Alice", Readwrite))

	_, _, err := m.UpdateUserText("alice", 3, map[string]int{".": 1}, "xy")
	require.NoError(t, err)

	require.NoError(t, m.ResetUser("alice"))

	info := m.GetUsersInfo(nil, false)["alice"]
	assert.Equal(t, Readwrite, info.Authority)
	assert.Equal(t, "Alice", info.Nickname)
	assert.Equal(t, Unknown, info.Mode)
	assert.Empty(t, info.Cursors)
}

func TestGetUsersInfoFiltersOfflineAndExcluded(t *testing.T) {
	m := newTestManager("x")
	require.NoError(t, m.AddUser("alice", "Alice", Readwrite))
	require.NoError(t, m.AddUser("bob", "Bob", Readwrite))

	_, _, err := m.UpdateUserText("alice", 1, nil, "x")
	require.NoError(t, err)

	online := m.GetUsersInfo([]string{"alice"}, true)
	_, aliceIncluded := online["alice"]
	_, bobIncluded := online["bob"]
	assert.False(t, aliceIncluded, "excluded identity must not appear")
	assert.False(t, bobIncluded, "bob never synced, so is offline (Mode == Unknown)")
}

func TestUpdateUserTextScenarioS1(t *testing.T) {
	m := newTestManager("hello world")
	require.NoError(t, m.AddUser("a", "A", Readwrite))
	require.NoError(t, m.AddUser("b", "B", Readwrite))

	// A fresh baseline holds empty text; an empty first sync moves each
	// user onto a commit holding "hello world".
	_, _, err := m.UpdateUserText("a", 1, nil, "")
	require.NoError(t, err)
	_, _, err = m.UpdateUserText("b", 1, nil, "")
	require.NoError(t, err)

	_, textA, err := m.UpdateUserText("a", 1, map[string]int{".": 5}, "HELLO world")
	require.NoError(t, err)
	assert.Equal(t, "HELLO world", textA)

	infoB, textB, err := m.UpdateUserText("b", 1, map[string]int{".": 11}, "hello WORLD")
	require.NoError(t, err)
	assert.Equal(t, "HELLO WORLD", textB)
	assert.Equal(t, 11, infoB.Cursors["."])
}

func TestUpdateUserTextCopiesAreIndependent(t *testing.T) {
	m := newTestManager("x")
	require.NoError(t, m.AddUser("a", "A", Readwrite))

	info, _, err := m.UpdateUserText("a", 1, map[string]int{".": 0}, "y")
	require.NoError(t, err)

	info.Cursors["."] = 999
	fresh := m.GetUsersInfo(nil, false)["a"]
	assert.NotEqual(t, 999, fresh.Cursors["."])
}
