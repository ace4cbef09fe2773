// Package roster provides troop stacks, an in-memory party roster and the
// mutations that swap troops inside a roster without losing counts.
package roster

import (
	"slices"

	"github.com/talgya/warband/internal/troops"
)

// Stack aggregates the men of one troop in a roster.
type Stack struct {
	Troop   *troops.Troop
	Total   int
	Wounded int
	XP      int
}

// Healthy is the number of unwounded men.
func (s Stack) Healthy() int { return s.Total - s.Wounded }

// Roster is a mutable ordered collection of stacks.
//
// Add applies deltas to the troop's stack, creating it when absent, and
// clamps the results so no count goes negative and wounded never exceeds
// total. A stack whose total reaches zero disappears.
type Roster interface {
	Stacks() []Stack
	Add(t *troops.Troop, total, wounded, xp int)
	RemoveAll(t *troops.Troop)
}

// SameTroop reports whether a and b refer to the same troop. Two nil
// references are the same.
func SameTroop(a, b *troops.Troop) bool {
	if a == b {
		return true
	}
	return a != nil && b != nil && a.ID == b.ID
}

// Find returns the stack of t in r.
func Find(r Roster, t *troops.Troop) (Stack, bool) {
	for _, s := range r.Stacks() {
		if SameTroop(s.Troop, t) {
			return s, true
		}
	}
	return Stack{}, false
}

// TotalMen sums Total over every stack.
func TotalMen(r Roster) int {
	n := 0
	for _, s := range r.Stacks() {
		n += s.Total
	}
	return n
}

// Party is an in-memory Roster.
type Party struct {
	stacks []Stack
}

// NewParty builds a party from raw stacks, kept exactly as given.
func NewParty(stacks ...Stack) *Party {
	return &Party{stacks: slices.Clone(stacks)}
}

// Stacks returns a copy of the stacks in roster order.
func (p *Party) Stacks() []Stack { return slices.Clone(p.stacks) }

// Len is the number of stacks.
func (p *Party) Len() int { return len(p.stacks) }

func (p *Party) index(t *troops.Troop) int {
	return slices.IndexFunc(p.stacks, func(s Stack) bool { return SameTroop(s.Troop, t) })
}

// Add implements Roster.
func (p *Party) Add(t *troops.Troop, total, wounded, xp int) {
	i := p.index(t)
	if i < 0 {
		if total <= 0 {
			return
		}
		p.stacks = append(p.stacks, Stack{Troop: t})
		i = len(p.stacks) - 1
	}
	s := &p.stacks[i]
	s.Total = max(s.Total+total, 0)
	s.Wounded = min(max(s.Wounded+wounded, 0), s.Total)
	s.XP = max(s.XP+xp, 0)
	if s.Total == 0 {
		p.stacks = slices.Delete(p.stacks, i, i+1)
	}
}

// RemoveAll implements Roster.
func (p *Party) RemoveAll(t *troops.Troop) {
	p.stacks = slices.DeleteFunc(p.stacks, func(s Stack) bool { return SameTroop(s.Troop, t) })
}
