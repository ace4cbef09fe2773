package troops

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	sword  = &Item{ID: "sword_t2", Name: "Arming Sword", Class: "Sword", Tier: 2}
	shield = &Item{ID: "heater_shield", Name: "Heater Shield", Class: "Shield", Tier: 2}
	bow    = &Item{ID: "hunting_bow", Name: "Hunting Bow", Class: "Bow", Tier: 1}
	arrows = &Item{ID: "arrows", Name: "Arrows", Class: "Arrow", Tier: 1}
	horse  = &Item{ID: "rouncey", Name: "Rouncey", Class: "Horse", Tier: 2}
	tunic  = &Item{ID: "tunic", Name: "Tunic", Class: "BodyArmor", Tier: 1}
)

func loadout(civilian bool, items map[Slot]*Item) Loadout {
	l := NewLoadout(civilian)
	for s, it := range items {
		l.Set(s, it)
	}
	return l
}

func TestFormationDerivedFromBattleLoadout(t *testing.T) {
	tests := []struct {
		name     string
		items    map[Slot]*Item
		want     Formation
		mounted  bool
		rangedOK bool
	}{
		{"infantry", map[Slot]*Item{SlotWeapon0: sword, SlotWeapon1: shield}, FormationInfantry, false, false},
		{"archer", map[Slot]*Item{SlotWeapon0: bow, SlotWeapon1: arrows}, FormationRanged, false, true},
		{"cavalry", map[Slot]*Item{SlotWeapon0: sword, SlotHorse: horse}, FormationCavalry, true, false},
		{"horse archer", map[Slot]*Item{SlotWeapon0: bow, SlotHorse: horse}, FormationHorseArcher, true, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tr := New("t", "T", 2, nil,
				loadout(true, map[Slot]*Item{SlotBody: tunic, SlotHorse: horse}),
				loadout(false, tc.items),
			)
			assert.Equal(t, tc.want, tr.Formation())
			assert.Equal(t, tc.mounted, tr.IsMounted())
			assert.Equal(t, tc.rangedOK, tr.IsRanged())
		})
	}
}

func TestWeaponClassesIgnoresCivilianAndArmour(t *testing.T) {
	tr := New("t", "T", 2, nil,
		loadout(false, map[Slot]*Item{SlotWeapon0: sword, SlotWeapon1: shield, SlotBody: tunic}),
		loadout(false, map[Slot]*Item{SlotWeapon0: sword, SlotWeapon2: bow}),
		loadout(true, map[Slot]*Item{SlotWeapon0: &Item{ID: "knife", Class: "Dagger"}}),
	)
	assert.Equal(t, []string{"Bow", "Shield", "Sword"}, tr.WeaponClasses())
}

func TestCloneTroopCopiesFieldsNotLinks(t *testing.T) {
	src := New("vlandian_recruit", "Recruit", 1, map[string]int{"OneHanded": 20},
		loadout(false, map[Slot]*Item{SlotWeapon0: sword}))
	src.Culture = "vlandia"
	child := New("vlandian_footman", "Footman", 2, nil)
	require.NoError(t, src.AddChild(child))

	c := CloneTroop(src, "custom.clan.basic.")
	assert.Equal(t, "vlandian_recruit", c.VanillaID)
	assert.Equal(t, "vlandia", c.Culture)
	assert.Equal(t, src.Skills, c.Skills)
	assert.True(t, c.IsLeaf())
	assert.Nil(t, c.Parent())

	c.Skills["OneHanded"] = 99
	c.Equipment[0].Set(SlotWeapon1, shield)
	assert.Equal(t, 20, src.Skills["OneHanded"])
	assert.Nil(t, src.Equipment[0].Get(SlotWeapon1))

	again := CloneTroop(c, "custom.kingdom.basic.")
	assert.Equal(t, "vlandian_recruit", again.VanillaID, "clone of a clone keeps the native origin")
}

func TestAddChildInvariants(t *testing.T) {
	root := New("r", "Root", 1, nil)
	a := New("a", "A", 2, nil)
	b := New("b", "B", 2, nil)
	c := New("c", "C", 2, nil)

	require.NoError(t, root.AddChild(a))
	require.NoError(t, root.AddChild(b))
	assert.True(t, errors.Is(root.AddChild(c), ErrBranchFull))
	assert.True(t, errors.Is(b.AddChild(a), ErrHasParent))
	assert.True(t, errors.Is(a.AddChild(root), ErrCycle))
	assert.Equal(t, root, a.Parent())
	assert.Len(t, root.Children(), 2)

	b.Detach()
	assert.Len(t, root.Children(), 1)
	assert.Nil(t, b.Parent())
}

func TestLevelTierRoundTrip(t *testing.T) {
	for tier := 0; tier <= 7; tier++ {
		assert.Equal(t, tier, TierForLevel(LevelForTier(tier)))
	}
	assert.Equal(t, 16, LevelForTier(3))
}

func TestValid(t *testing.T) {
	assert.False(t, Valid(nil))
	assert.False(t, Valid(&Troop{ID: "x"}))
	assert.True(t, Valid(New("x", "X", 1, nil)))
}
