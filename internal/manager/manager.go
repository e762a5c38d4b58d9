// Package manager implements the User/Text Manager: it maps user
// identity to UserInfo, owns the Commit Chain, and serializes every
// mutation behind a single lock.
package manager

import (
	"errors"
	"sync"
	"time"

	"github.com/shrvim/shrvimd/internal/chain"
)

// HistoryRecorder is the optional audit-log hook a Manager calls after
// every successful commit. The Manager discards any error Record
// returns without logging it; a failed record never affects the commit.
type HistoryRecorder interface {
	Record(commitID int, identity, text string, at time.Time) error
}

// Authority governs whether a user's edits are committed or discarded
// in favor of their current baseline text.
type Authority int

const (
	Readonly Authority = iota
	Readwrite
)

// Unknown is the sentinel Mode value meaning "never synced this
// session".
const Unknown = -1

var (
	// ErrAlreadyExists is returned by AddUser for an identity already
	// registered.
	ErrAlreadyExists = errors.New("manager: user already exists")
	// ErrNotFound is returned by DeleteUser/ResetUser for an identity
	// that is not registered.
	ErrNotFound = errors.New("manager: user not found")
)

// UserInfo is the per-user mutable record the manager tracks.
type UserInfo struct {
	Authority    Authority
	Nickname     string
	Mode         int
	Cursors      map[string]int
	LastCommitID int
}

func (u UserInfo) copy() UserInfo {
	cursors := make(map[string]int, len(u.Cursors))
	for k, v := range u.Cursors {
		cursors[k] = v
	}
	u.Cursors = cursors
	return u
}

// Manager owns the users map and the Commit Chain. Every public method
// takes mu for its entire body; ResetUser relies on that to call the
// unexported delete-then-add helpers within a single critical section,
// standing in for the reentrant lock the original design assumes (Go
// has no native reentrant mutex).
type Manager struct {
	mu      sync.Mutex
	users   map[string]UserInfo
	chain   *chain.Chain
	history HistoryRecorder
}

// New constructs a Manager backed by the given Commit Chain.
func New(c *chain.Chain) *Manager {
	return &Manager{
		users: make(map[string]UserInfo),
		chain: c,
	}
}

// SetHistoryRecorder wires an optional audit-log sink. Passing nil
// disables history recording.
func (m *Manager) SetHistoryRecorder(h HistoryRecorder) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = h
}

// AddUser registers a new user with a fresh chain baseline.
func (m *Manager) AddUser(identity, nickname string, authority Authority) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.addUserLocked(identity, nickname, authority)
}

func (m *Manager) addUserLocked(identity, nickname string, authority Authority) error {
	if _, exists := m.users[identity]; exists {
		return ErrAlreadyExists
	}
	m.users[identity] = UserInfo{
		Authority:    authority,
		Nickname:     nickname,
		Mode:         Unknown,
		Cursors:      make(map[string]int),
		LastCommitID: m.chain.NewBaseline(),
	}
	return nil
}

// DeleteUser drops a user's baseline commit and removes them from the
// manager.
func (m *Manager) DeleteUser(identity string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteUserLocked(identity)
}

func (m *Manager) deleteUserLocked(identity string) error {
	user, ok := m.users[identity]
	if !ok {
		return ErrNotFound
	}
	m.chain.Delete(user.LastCommitID)
	delete(m.users, identity)
	return nil
}

// ResetUser atomically deletes and re-adds a user, preserving authority
// and nickname while clearing mode, cursors, and allocating a fresh
// baseline.
func (m *Manager) ResetUser(identity string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[identity]
	if !ok {
		return ErrNotFound
	}
	if err := m.deleteUserLocked(identity); err != nil {
		return err
	}
	return m.addUserLocked(identity, user.Nickname, user.Authority)
}

// GetUsersInfo returns a filtered, deep-copied snapshot of the users
// map: without excludes the listed identities, mustOnline additionally
// excludes users whose Mode is still Unknown.
func (m *Manager) GetUsersInfo(without []string, mustOnline bool) map[string]UserInfo {
	m.mu.Lock()
	defer m.mu.Unlock()

	excluded := make(map[string]bool, len(without))
	for _, id := range without {
		excluded[id] = true
	}

	out := make(map[string]UserInfo, len(m.users))
	for identity, user := range m.users {
		if excluded[identity] {
			continue
		}
		if mustOnline && user.Mode == Unknown {
			continue
		}
		out[identity] = user.copy()
	}
	return out
}

// GetUserText returns the text of the user's current baseline commit.
func (m *Manager) GetUserText(identity string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[identity]
	if !ok {
		return "", ErrNotFound
	}
	return m.chain.GetText(user.LastCommitID), nil
}

// UpdateUserText is the core sync operation: rebase the user's edit
// into the chain's head, update the user's own cursors and baseline,
// then advance every other user's cursors across the new head.
func (m *Manager) UpdateUserText(identity string, mode int, cursors map[string]int, newText string) (UserInfo, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[identity]
	if !ok {
		return UserInfo{}, "", ErrNotFound
	}

	names := make([]string, 0, len(cursors))
	positions := make([]int, 0, len(cursors))
	for name, pos := range cursors {
		names = append(names, name)
		positions = append(positions, pos)
	}

	newID, rebasedText, rebasedPositions := m.chain.Commit(user.LastCommitID, newText, positions)

	if m.history != nil {
		// Best-effort, never allowed to affect the in-memory chain's
		// authority over reconciliation (spec §4.8 enrichment).
		_ = m.history.Record(newID, identity, rebasedText, time.Now())
	}

	updated := UserInfo{
		Authority:    user.Authority,
		Nickname:     user.Nickname,
		Mode:         mode,
		Cursors:      make(map[string]int, len(names)),
		LastCommitID: newID,
	}
	for i, name := range names {
		updated.Cursors[name] = rebasedPositions[i]
	}
	m.users[identity] = updated

	for otherIdentity, other := range m.users {
		if otherIdentity == identity {
			continue
		}
		otherNames := make([]string, 0, len(other.Cursors))
		otherPositions := make([]int, 0, len(other.Cursors))
		for name, pos := range other.Cursors {
			otherNames = append(otherNames, name)
			otherPositions = append(otherPositions, pos)
		}
		newPositions := m.chain.UpdateCursors(otherPositions)
		newCursors := make(map[string]int, len(otherNames))
		for i, name := range otherNames {
			newCursors[name] = newPositions[i]
		}
		other.Cursors = newCursors
		m.users[otherIdentity] = other
	}

	return updated.copy(), rebasedText, nil
}
