package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrvim/shrvimd/internal/chain"
	"github.com/shrvim/shrvimd/internal/manager"
	"github.com/shrvim/shrvimd/internal/protocol"
)

func newTestSetup(t *testing.T, initialText string) *manager.Manager {
	t.Helper()
	return manager.New(chain.New(initialText, nil, nil))
}

func TestDispatchBadRequestMissingIdentity(t *testing.T) {
	mgr := newTestSetup(t, "x")
	resp := Dispatch(mgr, protocol.Request{})
	assert.Equal(t, "Bad request.", resp.Error)
}

func TestDispatchInvalidIdentity(t *testing.T) {
	mgr := newTestSetup(t, "x")
	resp := Dispatch(mgr, protocol.Request{Identity: "ghost"})
	assert.Equal(t, "Invalid identity.", resp.Error)
}

func TestDispatchBye(t *testing.T) {
	mgr := newTestSetup(t, "x")
	require.NoError(t, mgr.AddUser("a", "A", manager.Readwrite))

	resp := Dispatch(mgr, protocol.Request{Identity: "a", Bye: true})
	assert.Empty(t, resp.Error)
	assert.Empty(t, resp.Text)
}

func TestDispatchScenarioS3Init(t *testing.T) {
	mgr := newTestSetup(t, "server text")
	require.NoError(t, mgr.AddUser("a", "A", manager.Readwrite))

	resp := Dispatch(mgr, protocol.Request{
		Identity: "a",
		Init:     true,
		Text:     "garbage the client had locally",
		Cursors:  map[string]int{".": 40},
	})

	assert.Empty(t, resp.Error)
	assert.Equal(t, "server text", resp.Text)
}

func TestDispatchScenarioS4Readonly(t *testing.T) {
	mgr := newTestSetup(t, "unchanged")
	require.NoError(t, mgr.AddUser("r", "Reader", manager.Readonly))

	resp := Dispatch(mgr, protocol.Request{
		Identity: "r",
		Text:     "tampered text",
		Cursors:  map[string]int{".": 2},
	})

	assert.Empty(t, resp.Error)
	assert.Equal(t, "unchanged", resp.Text)
}

func TestDispatchSyncReturnsOthers(t *testing.T) {
	mgr := newTestSetup(t, "hello")
	require.NoError(t, mgr.AddUser("a", "A", manager.Readwrite))
	require.NoError(t, mgr.AddUser("b", "B", manager.Readwrite))

	_ = Dispatch(mgr, protocol.Request{Identity: "a", Text: "hello", Mode: 1})

	resp := Dispatch(mgr, protocol.Request{Identity: "b", Text: "hello", Mode: 2})
	assert.Empty(t, resp.Error)
	require.Len(t, resp.Others, 1)
	assert.Equal(t, "A", resp.Others[0].Nickname)
}
