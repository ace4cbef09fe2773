package troops

import (
	"maps"
	"slices"
)

// Slot is an equipment position on a loadout.
type Slot string

const (
	SlotWeapon0 Slot = "weapon0"
	SlotWeapon1 Slot = "weapon1"
	SlotWeapon2 Slot = "weapon2"
	SlotWeapon3 Slot = "weapon3"
	SlotHead    Slot = "head"
	SlotBody    Slot = "body"
	SlotLeg     Slot = "leg"
	SlotGloves  Slot = "gloves"
	SlotCape    Slot = "cape"
	SlotHorse   Slot = "horse"
	SlotHarness Slot = "harness"
)

// WeaponSlots are the slots whose item classes count as weapon-class tags.
var WeaponSlots = []Slot{SlotWeapon0, SlotWeapon1, SlotWeapon2, SlotWeapon3}

// AllSlots in display order.
var AllSlots = []Slot{
	SlotWeapon0, SlotWeapon1, SlotWeapon2, SlotWeapon3,
	SlotHead, SlotBody, SlotLeg, SlotGloves, SlotCape,
	SlotHorse, SlotHarness,
}

// ValidSlot reports whether s is a known slot.
func ValidSlot(s Slot) bool { return slices.Contains(AllSlots, s) }

func isWeaponSlot(s Slot) bool { return slices.Contains(WeaponSlots, s) }

// rangedClasses put a troop into a ranged formation when equipped.
var rangedClasses = map[string]bool{
	"Bow":      true,
	"Crossbow": true,
	"Sling":    true,
}

// Item is a piece of native equipment. Items are shared, never mutated.
type Item struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Class string `yaml:"class"` // weapon class tag, "Horse", or armour class
	Tier  int    `yaml:"tier"`
}

// Loadout is one equipment set of a troop.
type Loadout struct {
	Civilian bool
	Items    map[Slot]*Item
}

// NewLoadout returns an empty battle or civilian loadout.
func NewLoadout(civilian bool) Loadout {
	return Loadout{Civilian: civilian, Items: make(map[Slot]*Item)}
}

// Get returns the item in slot s, or nil.
func (l Loadout) Get(s Slot) *Item { return l.Items[s] }

// Set places item in slot s; a nil item clears the slot.
func (l *Loadout) Set(s Slot, item *Item) {
	if l.Items == nil {
		l.Items = make(map[Slot]*Item)
	}
	if item == nil {
		delete(l.Items, s)
		return
	}
	l.Items[s] = item
}

// IsEmpty reports whether no slot holds an item.
func (l Loadout) IsEmpty() bool { return len(l.Items) == 0 }

// Clone copies the slot map. Items themselves are shared.
func (l Loadout) Clone() Loadout {
	return Loadout{Civilian: l.Civilian, Items: maps.Clone(l.Items)}
}

// Slots returns the occupied slots in display order.
func (l Loadout) Slots() []Slot {
	out := make([]Slot, 0, len(l.Items))
	for _, s := range AllSlots {
		if l.Items[s] != nil {
			out = append(out, s)
		}
	}
	return out
}

func (l Loadout) mounted() bool { return l.Items[SlotHorse] != nil }

func (l Loadout) ranged() bool {
	for _, s := range WeaponSlots {
		if it := l.Items[s]; it != nil && rangedClasses[it.Class] {
			return true
		}
	}
	return false
}

// Formation is the battle formation class derived from equipment.
type Formation uint8

const (
	FormationInfantry Formation = iota
	FormationRanged
	FormationCavalry
	FormationHorseArcher
)

func (f Formation) String() string {
	switch f {
	case FormationRanged:
		return "ranged"
	case FormationCavalry:
		return "cavalry"
	case FormationHorseArcher:
		return "horse_archer"
	}
	return "infantry"
}

func formationOf(mounted, ranged bool) Formation {
	switch {
	case mounted && ranged:
		return FormationHorseArcher
	case mounted:
		return FormationCavalry
	case ranged:
		return FormationRanged
	}
	return FormationInfantry
}
