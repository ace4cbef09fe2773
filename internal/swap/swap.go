// Package swap temporarily substitutes troops in external slot collections
// (such as a settlement's recruitment slots) and restores them exactly.
package swap

import (
	"errors"
	"log/slog"

	"github.com/talgya/warband/internal/troops"
)

// ErrSessionMisuse is logged when Restore runs with nothing to restore.
var ErrSessionMisuse = errors.New("restore without an active swap")

// Slots is an external, index-addressable collection of troop references.
// Its length may change between a swap and its restore.
type Slots interface {
	Key() string
	Len() int
	Get(i int) *troops.Troop
	Set(i int, t *troops.Troop)
}

// Replacer picks the troop to show in slot i. ok=false leaves the slot as is.
type Replacer func(i int, current *troops.Troop) (replacement *troops.Troop, ok bool)

// Snapshot holds the pre-swap reference of every slot of one collection.
type Snapshot struct {
	Key   string
	slots Slots
	refs  []*troops.Troop
}

// Len is the number of recorded positions.
func (s *Snapshot) Len() int { return len(s.refs) }

// Session is the Idle/Active state machine for a single outstanding swap.
type Session struct {
	active *Snapshot
}

// Active reports whether a snapshot is held.
func (s *Session) Active() bool { return s.active != nil }

// Current returns the held snapshot, or nil when idle.
func (s *Session) Current() *Snapshot { return s.active }

// BeginSwap records every slot of c, then writes replacements into it. An
// active swap is restored first so views never layer. It returns how many
// slots changed.
func (s *Session) BeginSwap(c Slots, replace Replacer) int {
	if s.active != nil {
		slog.Debug("swap already active, restoring first", "collection", s.active.Key, "next", c.Key())
		s.Restore()
	}

	n := c.Len()
	snap := &Snapshot{Key: c.Key(), slots: c, refs: make([]*troops.Troop, n)}
	for i := 0; i < n; i++ {
		snap.refs[i] = c.Get(i)
	}
	s.active = snap

	changed := 0
	for i := 0; i < n; i++ {
		cur := snap.refs[i]
		if cur == nil {
			continue
		}
		next, ok := replace(i, cur)
		if !ok || next == nil || next == cur {
			continue
		}
		c.Set(i, next)
		changed++
	}
	return changed
}

// Restore writes the recorded references back into every position that
// still exists and returns to idle. It returns how many slots were written;
// calling it while idle is a logged no-op.
func (s *Session) Restore() int {
	snap := s.active
	if snap == nil {
		slog.Debug("swap restore ignored", "error", ErrSessionMisuse)
		return 0
	}
	s.active = nil

	n := min(len(snap.refs), snap.slots.Len())
	for i := 0; i < n; i++ {
		snap.slots.Set(i, snap.refs[i])
	}
	if n < len(snap.refs) {
		slog.Debug("swap collection shrank before restore",
			"collection", snap.Key, "recorded", len(snap.refs), "restored", n)
	}
	return n
}

// Set keeps one independent Session per collection key.
type Set struct {
	sessions map[string]*Session
}

// NewSet returns an empty session set.
func NewSet() *Set {
	return &Set{sessions: make(map[string]*Session)}
}

// BeginSwap starts a swap on c, restoring any earlier swap of the same key.
func (st *Set) BeginSwap(c Slots, replace Replacer) int {
	sess, ok := st.sessions[c.Key()]
	if !ok {
		sess = &Session{}
		st.sessions[c.Key()] = sess
	}
	return sess.BeginSwap(c, replace)
}

// Restore restores the swap held for key.
func (st *Set) Restore(key string) int {
	sess, ok := st.sessions[key]
	if !ok {
		slog.Debug("swap restore ignored", "collection", key, "error", ErrSessionMisuse)
		return 0
	}
	n := sess.Restore()
	delete(st.sessions, key)
	return n
}

// RestoreAll restores every active swap, e.g. before a save.
func (st *Set) RestoreAll() int {
	n := 0
	for key := range st.sessions {
		n += st.Restore(key)
	}
	return n
}

// Active reports whether key has an outstanding swap.
func (st *Set) Active(key string) bool {
	sess, ok := st.sessions[key]
	return ok && sess.Active()
}

// Len is the number of outstanding swaps.
func (st *Set) Len() int { return len(st.sessions) }

// Array is a simple Slots over a troop slice.
type Array struct {
	ID    string
	Items []*troops.Troop
}

func (a *Array) Key() string                { return a.ID }
func (a *Array) Len() int                   { return len(a.Items) }
func (a *Array) Get(i int) *troops.Troop    { return a.Items[i] }
func (a *Array) Set(i int, t *troops.Troop) { a.Items[i] = t }
