package engine

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/warband/internal/catalog"
	"github.com/talgya/warband/internal/ident"
	"github.com/talgya/warband/internal/persistence"
	"github.com/talgya/warband/internal/social"
)

func TestBusOrderAndNesting(t *testing.T) {
	bus := NewBus()
	var got []string
	bus.Subscribe("a", func(Event) {
		got = append(got, "a1")
		bus.Publish(Event{Kind: "b"})
	})
	bus.Subscribe("a", func(Event) { got = append(got, "a2") })
	bus.Subscribe("b", func(Event) { got = append(got, "b") })
	bus.SubscribeAll(func(e Event) { got = append(got, "all:"+string(e.Kind)) })

	bus.Publish(Event{Kind: "a"})
	assert.Equal(t, []string{"a1", "b", "all:b", "a2", "all:a"}, got)
	assert.Len(t, bus.Recent(10), 2)

	var nilBus *Bus
	assert.NotPanics(t, func() { nilBus.Publish(Event{Kind: "a"}) })
}

func TestBusRecentIsBounded(t *testing.T) {
	bus := NewBus()
	for i := range maxRecent + 5 {
		bus.Publish(Event{Kind: "tick", Count: i})
	}
	recent := bus.Recent(maxRecent * 2)
	require.Len(t, recent, maxRecent)
	assert.Equal(t, 5, recent[0].Count)
	assert.Equal(t, maxRecent+4, recent[len(recent)-1].Count)
}

func TestSimTime(t *testing.T) {
	tests := []struct {
		tick uint64
		want string
	}{
		{0, "Spring Day 1, 00:00 Year 1"},
		{TicksPerDay*22 + 5, "Summer Day 2, 05:00 Year 1"},
		{TicksPerDay * DaysPerSeason * SeasonsPerYear, "Spring Day 1, 00:00 Year 2"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SimTime(tt.tick))
	}
}

func TestEngineAdvanceSchedule(t *testing.T) {
	e := NewEngine()
	var hours, days, weeks int
	e.OnHour = func(uint64) { hours++ }
	e.OnDay = func(uint64) { days++ }
	e.OnWeek = func(uint64) { weeks++ }

	e.Advance(TicksPerWeek * 2)
	assert.Equal(t, TicksPerWeek*2, hours)
	assert.Equal(t, 14, days)
	assert.Equal(t, 2, weeks)
	assert.Equal(t, uint64(TicksPerWeek*2), e.Tick)
}

func TestSimulationSession(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)
	st, err := persistence.Open(filepath.Join(t.TempDir(), "sim.db"))
	require.NoError(t, err)
	defer st.Close()

	factions := social.SeedFactions("highland", "steppe", "highland", "steppe")
	setts := SeedSettlements(cat, factions)
	require.Len(t, setts, 4)
	assert.Len(t, setts[0].Notables, 2)

	bus := NewBus()
	c := NewCampaign(cat, bus)
	sim := NewSimulation(c, bus, factions, setts, 7)
	sim.Store = st
	require.NoError(t, c.Start())

	e := NewEngine()
	e.OnHour = sim.TickHour
	e.OnDay = sim.TickDay
	e.OnWeek = sim.TickWeek
	e.Advance(TicksPerWeek * 2)

	assert.Equal(t, 14, sim.Stats.Parties)
	assert.Equal(t, 2, sim.Stats.Saves)
	assert.Zero(t, sim.Stats.SaveErrors)

	for _, p := range sim.Parties {
		for _, s := range p.Members.Stacks() {
			assert.True(t, c.validTroop(s.Troop), "party %s holds %s", p.ID, s.Troop)
		}
		if _, ok := c.factions[p.OwnerID].Scope(); !ok {
			for _, s := range p.Members.Stacks() {
				assert.False(t, ident.IsCustom(s.Troop.ID), "npc party %s converted", p.ID)
			}
		}
	}

	loaded := NewCampaign(cat, nil)
	gaps, err := loaded.AfterLoad(st)
	require.NoError(t, err)
	assert.Zero(t, gaps)
	assert.Equal(t, c.Registry.Len(), loaded.Registry.Len())
}
