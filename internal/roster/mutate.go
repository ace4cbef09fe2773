package roster

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/talgya/warband/internal/troops"
)

var (
	ErrInvalidReference = errors.New("invalid troop reference")
	ErrInvalidCount     = errors.New("invalid stack count")
)

// Option adjusts how ReplaceStack moves wounded men and experience.
type Option func(*transfer)

type transfer struct {
	explicit bool
	wounded  int
	xp       int
}

// WithTransfer moves exactly wounded men and xp experience instead of a
// proportional share. Both are capped by what the source stack holds.
func WithTransfer(wounded, xp int) Option {
	return func(t *transfer) {
		t.explicit = true
		t.wounded = wounded
		t.xp = xp
	}
}

// ReplaceStack turns count men of from into to. By default the moved men
// take a proportional (rounded down) share of from's wounded and experience.
// The roster is left untouched when any precondition fails.
func ReplaceStack(r Roster, from, to *troops.Troop, count int, opts ...Option) error {
	if from == nil || from.ID == "" || to == nil || to.ID == "" {
		return fmt.Errorf("replace %v with %v: %w", from, to, ErrInvalidReference)
	}
	if count <= 0 {
		return fmt.Errorf("replace %d of %s: %w", count, from.ID, ErrInvalidCount)
	}
	src, ok := Find(r, from)
	if !ok || src.Total < count {
		return fmt.Errorf("replace %d of %s, have %d: %w", count, from.ID, src.Total, ErrInvalidCount)
	}
	if SameTroop(from, to) {
		return nil
	}

	var tr transfer
	for _, opt := range opts {
		opt(&tr)
	}
	wounded, xp := tr.wounded, tr.xp
	if !tr.explicit {
		wounded = src.Wounded * count / src.Total
		xp = src.XP * count / src.Total
	}
	wounded = min(max(wounded, 0), count, src.Wounded)
	xp = min(max(xp, 0), src.XP)

	// Both steps run back to back; nothing else touches r in between.
	r.Add(to, count, wounded, xp)
	r.Add(from, -count, -wounded, -xp)
	return nil
}

// Normalize clamps wounded into [0, total] and experience into [0, ∞), and
// removes stacks that have no troop or no men. Several stacks of one troop
// are merged into a single clamped stack. It returns how many stacks were
// changed or removed.
func Normalize(r Roster) int {
	fixed := mergeDuplicates(r)
	for _, s := range r.Stacks() {
		switch {
		case s.Troop == nil || s.Troop.ID == "":
			r.RemoveAll(s.Troop)
			fixed++
			continue
		case s.Total <= 0:
			r.RemoveAll(s.Troop)
			fixed++
			continue
		}
		dw, dx := 0, 0
		if s.Wounded < 0 {
			dw = -s.Wounded
		} else if s.Wounded > s.Total {
			dw = s.Total - s.Wounded
		}
		if s.XP < 0 {
			dx = -s.XP
		}
		if dw != 0 || dx != 0 {
			r.Add(s.Troop, 0, dw, dx)
			fixed++
		}
	}
	if fixed > 0 {
		slog.Debug("roster normalized", "fixed", fixed)
	}
	return fixed
}

// mergeDuplicates folds every troop held in more than one stack into one.
// Add and RemoveAll address a troop, not a position, so per-stack fixes are
// only sound once each troop has a single stack.
func mergeDuplicates(r Roster) int {
	var order []string
	groups := make(map[string][]Stack)
	for _, s := range r.Stacks() {
		if s.Troop == nil || s.Troop.ID == "" {
			continue
		}
		if _, seen := groups[s.Troop.ID]; !seen {
			order = append(order, s.Troop.ID)
		}
		groups[s.Troop.ID] = append(groups[s.Troop.ID], s)
	}

	merged := 0
	for _, id := range order {
		g := groups[id]
		if len(g) < 2 {
			continue
		}
		var sum Stack
		for _, s := range g {
			if s.Total <= 0 {
				continue
			}
			sum.Total += s.Total
			sum.Wounded += min(max(s.Wounded, 0), s.Total)
			sum.XP += max(s.XP, 0)
		}
		r.RemoveAll(g[0].Troop)
		r.Add(g[0].Troop, sum.Total, sum.Wounded, sum.XP)
		merged += len(g) - 1
		slog.Debug("duplicate roster stacks merged", "troop", id, "stacks", len(g), "men", sum.Total)
	}
	return merged
}

// Report summarizes a SanitizeInvalidStacks pass.
type Report struct {
	Replaced   int // stacks moved onto a fallback troop
	Dropped    int // stacks removed without fallback
	DroppedMen int
}

// SanitizeInvalidStacks replaces every stack whose troop fails isValid with
// fallbackFor(troop). A stack without a valid fallback is dropped and its
// men are discarded. Each stack is visited once, so the pass always ends.
func SanitizeInvalidStacks(r Roster, isValid func(*troops.Troop) bool, fallbackFor func(*troops.Troop) *troops.Troop) Report {
	var rep Report
	for _, s := range r.Stacks() {
		if isValid(s.Troop) {
			continue
		}
		var fb *troops.Troop
		if fallbackFor != nil {
			fb = fallbackFor(s.Troop)
		}
		r.RemoveAll(s.Troop)

		if fb == nil || fb == s.Troop || !isValid(fb) {
			rep.Dropped++
			rep.DroppedMen += max(s.Total, 0)
			slog.Warn("invalid roster stack dropped",
				"troop", s.Troop,
				"men", s.Total,
				"error", ErrInvalidReference,
			)
			continue
		}
		r.Add(fb, s.Total, s.Wounded, s.XP)
		rep.Replaced++
		slog.Info("invalid roster stack replaced", "troop", s.Troop, "fallback", fb.ID, "men", s.Total)
	}
	return rep
}
