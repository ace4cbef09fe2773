// Package troops provides the troop data model shared by native content and
// custom faction trees: skills, loadouts, computed formation and the
// upgrade links that make up a tree.
package troops

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

// MaxBranches is the fan-out of a regular upgrade node.
const MaxBranches = 2

var (
	ErrBranchFull = errors.New("troop already has two upgrade targets")
	ErrHasParent  = errors.New("troop is already an upgrade target")
	ErrCycle      = errors.New("upgrade link would create a cycle")
)

// Troop is a logical troop, native or custom. A custom troop is owned by
// exactly one tree; its upgrade links form a rooted binary tree.
type Troop struct {
	ID        string
	Name      string
	Tier      int
	Culture   string
	Female    bool
	Skills    map[string]int
	Equipment []Loadout

	// VanillaID names the native troop a custom node was derived from.
	// Empty for native troops.
	VanillaID string

	formation Formation
	parent    *Troop
	children  []*Troop
}

// New creates a troop and derives its formation from equipment.
func New(id, name string, tier int, skills map[string]int, equipment ...Loadout) *Troop {
	if skills == nil {
		skills = make(map[string]int)
	}
	t := &Troop{
		ID:        id,
		Name:      name,
		Tier:      tier,
		Skills:    skills,
		Equipment: equipment,
	}
	t.Refresh()
	return t
}

// CloneTroop copies the logical fields of src into a fresh, unlinked troop
// with the given id. Upgrade links are not copied.
func CloneTroop(src *Troop, id string) *Troop {
	t := &Troop{
		ID:        id,
		Name:      src.Name,
		Tier:      src.Tier,
		Culture:   src.Culture,
		Female:    src.Female,
		Skills:    maps.Clone(src.Skills),
		VanillaID: src.Origin(),
	}
	if t.Skills == nil {
		t.Skills = make(map[string]int)
	}
	t.Equipment = make([]Loadout, len(src.Equipment))
	for i, l := range src.Equipment {
		t.Equipment[i] = l.Clone()
	}
	t.Refresh()
	return t
}

// Origin is the native troop id this troop stands for: VanillaID for custom
// troops, ID for native ones.
func (t *Troop) Origin() string {
	if t.VanillaID != "" {
		return t.VanillaID
	}
	return t.ID
}

// Refresh recomputes properties derived from equipment. Call after any
// equipment change.
func (t *Troop) Refresh() {
	battle, ok := t.BattleLoadout()
	if !ok {
		t.formation = FormationInfantry
		return
	}
	t.formation = formationOf(battle.mounted(), battle.ranged())
}

// Formation returns the cached formation class.
func (t *Troop) Formation() Formation { return t.formation }

// IsMounted reports whether the primary battle loadout has a horse.
func (t *Troop) IsMounted() bool {
	return t.formation == FormationCavalry || t.formation == FormationHorseArcher
}

// IsRanged reports whether the primary battle loadout carries a ranged weapon.
func (t *Troop) IsRanged() bool {
	return t.formation == FormationRanged || t.formation == FormationHorseArcher
}

// BattleLoadout returns the first non-civilian loadout.
func (t *Troop) BattleLoadout() (Loadout, bool) {
	for _, l := range t.Equipment {
		if !l.Civilian {
			return l, true
		}
	}
	return Loadout{}, false
}

// SetEquipment replaces every loadout and refreshes derived properties.
func (t *Troop) SetEquipment(loadouts []Loadout) {
	t.Equipment = loadouts
	t.Refresh()
}

// WeaponClasses returns the sorted set of weapon-class tags equipped across
// all battle loadouts.
func (t *Troop) WeaponClasses() []string {
	set := make(map[string]struct{})
	for _, l := range t.Equipment {
		if l.Civilian {
			continue
		}
		for s, it := range l.Items {
			if it != nil && it.Class != "" && isWeaponSlot(s) {
				set[it.Class] = struct{}{}
			}
		}
	}
	return slices.Sorted(maps.Keys(set))
}

// Parent returns the troop that upgrades into t, or nil.
func (t *Troop) Parent() *Troop { return t.parent }

// Children returns the upgrade targets of t.
func (t *Troop) Children() []*Troop { return slices.Clone(t.children) }

// IsLeaf reports whether t has no upgrade targets.
func (t *Troop) IsLeaf() bool { return len(t.children) == 0 }

// AddChild attaches c as an upgrade target of t.
func (t *Troop) AddChild(c *Troop) error {
	switch {
	case c == nil:
		return fmt.Errorf("add child to %s: nil troop", t.ID)
	case len(t.children) >= MaxBranches:
		return fmt.Errorf("add child %s to %s: %w", c.ID, t.ID, ErrBranchFull)
	case c.parent != nil:
		return fmt.Errorf("add child %s to %s: %w", c.ID, t.ID, ErrHasParent)
	}
	for a := t; a != nil; a = a.parent {
		if a == c {
			return fmt.Errorf("add child %s to %s: %w", c.ID, t.ID, ErrCycle)
		}
	}
	c.parent = t
	t.children = append(t.children, c)
	return nil
}

// Detach removes every upgrade link below and above t.
func (t *Troop) Detach() {
	if p := t.parent; p != nil {
		p.children = slices.DeleteFunc(p.children, func(c *Troop) bool { return c == t })
	}
	t.parent = nil
	for _, c := range t.children {
		c.parent = nil
	}
	t.children = nil
}

// Valid reports whether t is a usable roster reference.
func Valid(t *Troop) bool {
	return t != nil && t.ID != "" && t.Name != "" && t.Tier >= 0
}

// LevelForTier maps a tier to the character level stored in saves.
func LevelForTier(tier int) int {
	if tier < 0 {
		tier = 0
	}
	return tier*5 + 1
}

// TierForLevel is the inverse of LevelForTier.
func TierForLevel(level int) int {
	if level < 1 {
		return 0
	}
	return (level - 1) / 5
}

func (t *Troop) String() string {
	if t == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s (%s, tier %d)", t.Name, t.ID, t.Tier)
}
