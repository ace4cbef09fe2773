package match

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/warband/internal/troops"
)

var (
	sword  = &troops.Item{ID: "sword", Class: "Sword"}
	shield = &troops.Item{ID: "shield", Class: "Shield"}
	spear  = &troops.Item{ID: "spear", Class: "Polearm"}
	bow    = &troops.Item{ID: "bow", Class: "Bow"}
	arrows = &troops.Item{ID: "arrows", Class: "Arrow"}
	horse  = &troops.Item{ID: "horse", Class: "Horse"}
)

func troop(id string, tier int, skills map[string]int, items map[troops.Slot]*troops.Item) *troops.Troop {
	l := troops.NewLoadout(false)
	for s, it := range items {
		l.Set(s, it)
	}
	return troops.New(id, id, tier, skills, l)
}

// line builds a small custom tree with two tier-3 nodes: a mounted sword user
// and a foot archer.
func line(t *testing.T) *troops.Troop {
	t.Helper()
	root := troop("custom.clan.basic.", 1, map[string]int{"OneHanded": 20}, map[troops.Slot]*troops.Item{troops.SlotWeapon0: spear})
	foot := troop("custom.clan.basic.0", 2, map[string]int{"OneHanded": 50}, map[troops.Slot]*troops.Item{troops.SlotWeapon0: sword})
	bowman := troop("custom.clan.basic.1", 2, map[string]int{"Bow": 50}, map[troops.Slot]*troops.Item{troops.SlotWeapon0: bow})
	rider := troop("custom.clan.basic.00", 3, map[string]int{"OneHanded": 90, "Riding": 80},
		map[troops.Slot]*troops.Item{troops.SlotWeapon0: sword, troops.SlotWeapon1: shield, troops.SlotHorse: horse})
	archer := troop("custom.clan.basic.10", 3, map[string]int{"Bow": 90, "OneHanded": 30},
		map[troops.Slot]*troops.Item{troops.SlotWeapon0: bow, troops.SlotWeapon1: arrows})
	require.NoError(t, root.AddChild(foot))
	require.NoError(t, root.AddChild(bowman))
	require.NoError(t, foot.AddChild(rider))
	require.NoError(t, bowman.AddChild(archer))
	return root
}

func TestPickMountedSwordsman(t *testing.T) {
	ref := troops.Profile{
		ID:      "vlandian_cavalry",
		Tier:    3,
		Mounted: true,
		Weapons: []string{"Sword", "Shield"},
		Skills:  map[string]int{"OneHanded": 80},
	}
	root := line(t)

	ranked := Rank(ref, collect(root))
	require.Len(t, ranked, 2)
	assert.Equal(t, "custom.clan.basic.00", ranked[0].Troop.ID)
	assert.GreaterOrEqual(t, ranked[0].Score-ranked[1].Score, WeightMounted)

	best, err := Pick(ref, root)
	require.NoError(t, err)
	assert.Equal(t, ranked[0], best)
	// mounted + ranged + female + jaccard 1.0 + cosine 1.0
	assert.Equal(t, WeightMounted+WeightRanged+WeightFemale+2*SimilarityScale, best.Score)
}

func TestPickTierFilter(t *testing.T) {
	root := line(t)
	for tier := 1; tier <= 3; tier++ {
		c, err := Pick(troops.Profile{Tier: tier}, root)
		require.NoError(t, err)
		assert.Equal(t, tier, c.Troop.Tier)
	}
	_, err := Pick(troops.Profile{Tier: 6}, root)
	assert.True(t, errors.Is(err, ErrNoMatch))
	_, err = Pick(troops.Profile{Tier: 1}, nil)
	assert.True(t, errors.Is(err, ErrNoMatch))
}

func TestTieBreakByID(t *testing.T) {
	a := troop("custom.clan.basic.01", 2, nil, nil)
	b := troop("custom.clan.basic.10", 2, nil, nil)
	ref := troops.Profile{Tier: 2}
	require.Equal(t, Score(ref, a.Profile()), Score(ref, b.Profile()))

	for _, pool := range [][]*troops.Troop{{a, b}, {b, a}} {
		c, err := Best(ref, pool)
		require.NoError(t, err)
		assert.Equal(t, "custom.clan.basic.01", c.Troop.ID)
	}
}

func TestDeterministicUnderShuffle(t *testing.T) {
	root := line(t)
	extra := []*troops.Troop{
		troop("custom.kingdom.basic.0", 2, map[string]int{"OneHanded": 50}, map[troops.Slot]*troops.Item{troops.SlotWeapon0: sword}),
		troop("custom.kingdom.basic.1", 2, map[string]int{"OneHanded": 50}, map[troops.Slot]*troops.Item{troops.SlotWeapon0: sword}),
	}
	pool := append(collect(root), extra...)
	ref := troops.Profile{Tier: 2, Weapons: []string{"Sword"}, Skills: map[string]int{"OneHanded": 40}}

	want, err := Best(ref, pool)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
		got, err := Best(ref, pool)
		require.NoError(t, err)
		assert.Equal(t, want.Troop.ID, got.Troop.ID)
		assert.Equal(t, want.Score, got.Score)
	}
	assert.Equal(t, "custom.clan.basic.0", want.Troop.ID)
}

func TestExcludeAndPickEach(t *testing.T) {
	root := line(t)
	ref := troops.Profile{Tier: 3, Mounted: true, Weapons: []string{"Sword"}}

	c, err := Pick(ref, root, "custom.clan.basic.00")
	require.NoError(t, err)
	assert.Equal(t, "custom.clan.basic.10", c.Troop.ID)

	picks := PickEach(ref, root, root)
	assert.Equal(t, "custom.clan.basic.00", picks[0].Troop.ID)
	assert.Equal(t, "custom.clan.basic.10", picks[1].Troop.ID)

	picks = PickEach(ref, root, root, root)
	assert.Nil(t, picks[2].Troop, "third pick has nothing left")
}

func TestSimilarities(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
		want float64
	}{
		{"empty", nil, nil, 0},
		{"one empty", []string{"Sword"}, nil, 0},
		{"identical", []string{"Sword", "Shield"}, []string{"Shield", "Sword"}, 1},
		{"half", []string{"Sword", "Shield"}, []string{"Sword"}, 0.5},
		{"third", []string{"Sword", "Shield"}, []string{"Sword", "Bow"}, 1.0 / 3},
	}
	for _, tc := range tests {
		assert.InDelta(t, tc.want, Jaccard(tc.a, tc.b), 1e-9, tc.name)
	}

	assert.Equal(t, 0.0, Cosine(nil, map[string]int{"Bow": 10}))
	assert.Equal(t, 0.0, Cosine(map[string]int{"Bow": 10}, map[string]int{"Riding": 10}))
	assert.InDelta(t, 1.0, Cosine(map[string]int{"Bow": 10, "Riding": 5}, map[string]int{"Bow": 20, "Riding": 10}), 1e-9)
	assert.InDelta(t, 0.96, Cosine(map[string]int{"A": 3, "B": 4}, map[string]int{"A": 4, "B": 3}), 1e-9)
	assert.Equal(t, 333, scaled(1.0/3))
	assert.Equal(t, 1000, scaled(1))
}

func collect(root *troops.Troop) []*troops.Troop {
	var out []*troops.Troop
	var walk func(*troops.Troop)
	walk = func(n *troops.Troop) {
		out = append(out, n)
		for _, c := range n.Children() {
			walk(c)
		}
	}
	walk(root)
	return out
}
