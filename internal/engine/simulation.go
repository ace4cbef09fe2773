// Simulation drives a scripted campaign session: parties spawn, the player
// visits settlements, rosters are sanitized and the campaign is saved.
package engine

import (
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/talgya/warband/internal/catalog"
	"github.com/talgya/warband/internal/ident"
	"github.com/talgya/warband/internal/persistence"
	"github.com/talgya/warband/internal/roster"
	"github.com/talgya/warband/internal/social"
	"github.com/talgya/warband/internal/tree"
	"github.com/talgya/warband/internal/troops"
)

const maxParties = 200

// Simulation holds the session's world state and publishes host events.
type Simulation struct {
	Campaign    *Campaign
	Bus         *Bus
	Store       *persistence.Store // nil disables saving
	Factions    []*social.Faction
	Settlements []*social.Settlement
	Parties     []*social.Party
	LastTick    uint64

	Stats SimStats

	rng      *rand.Rand
	visiting *social.Settlement
	nextID   int
}

// SimStats tracks aggregate session statistics.
type SimStats struct {
	Parties          int `json:"parties"`
	Men              int `json:"men"`
	CustomMen        int `json:"custom_men"`
	PartiesConverted int `json:"parties_converted"`
	MenConverted     int `json:"men_converted"`
	SlotsSwapped     int `json:"slots_swapped"`
	SlotsRestored    int `json:"slots_restored"`
	StacksSanitized  int `json:"stacks_sanitized"`
	Saves            int `json:"saves"`
	SaveErrors       int `json:"save_errors"`
}

// NewSimulation attaches c to bus and records outcome statistics.
func NewSimulation(c *Campaign, bus *Bus, factions []*social.Faction, setts []*social.Settlement, seed uint64) *Simulation {
	c.AddFactions(factions...)
	c.Attach(bus)
	sim := &Simulation{
		Campaign:    c,
		Bus:         bus,
		Factions:    factions,
		Settlements: setts,
		rng:         rand.New(rand.NewPCG(seed, seed+400)),
	}
	bus.SubscribeAll(sim.record)
	return sim
}

func (s *Simulation) record(e Event) {
	switch e.Kind {
	case EventPartyConverted:
		s.Stats.PartiesConverted++
		s.Stats.MenConverted += e.Count
	case EventVolunteersSwapped:
		s.Stats.SlotsSwapped += e.Count
	case EventVolunteersRestored:
		s.Stats.SlotsRestored += e.Count
	case EventRosterSanitized:
		s.Stats.StacksSanitized += e.Count
	case EventSaved:
		s.Stats.Saves++
	}
}

// SeedSettlements creates one town per faction whose two notables offer
// volunteers from the faction culture's basic line.
func SeedSettlements(cat *catalog.Catalog, factions []*social.Faction) []*social.Settlement {
	var out []*social.Settlement
	for _, f := range factions {
		cul, ok := cat.Culture(f.Culture)
		if !ok {
			slog.Warn("faction culture unknown, no settlement seeded", "faction", f.ID, "culture", f.Culture)
			continue
		}
		var line []*troops.Troop
		for n := range tree.Walk(cul.Root(ident.KindBasic)) {
			line = append(line, n)
		}
		if len(line) == 0 {
			continue
		}

		st := &social.Settlement{
			ID:      social.SettlementID(string(f.ID) + "_town"),
			Name:    f.Name + " Town",
			Culture: f.Culture,
			OwnerID: f.ID,
		}
		for n := range 2 {
			vols := make([]*troops.Troop, social.VolunteerSlots)
			for i := range vols {
				vols[i] = line[(n*social.VolunteerSlots+i)%len(line)]
			}
			st.AddNotable(fmt.Sprintf("%s_notable_%d", st.ID, n), fmt.Sprintf("Notable %d of %s", n+1, st.Name), vols...)
		}
		out = append(out, st)
	}
	return out
}

// TickHour alternates between entering a random settlement and leaving it.
func (s *Simulation) TickHour(tick uint64) {
	s.LastTick = tick
	if s.visiting != nil {
		s.Bus.Publish(Event{Kind: EventSettlementLeft, Settlement: s.visiting})
		s.visiting = nil
		return
	}
	if len(s.Settlements) == 0 || s.rng.IntN(6) != 0 {
		return
	}
	s.visiting = s.Settlements[s.rng.IntN(len(s.Settlements))]
	s.Bus.Publish(Event{Kind: EventSettlementEntered, Settlement: s.visiting})
}

// TickDay spawns a party, sanitizes every roster and logs a daily report.
func (s *Simulation) TickDay(tick uint64) {
	s.spawnParty()
	for _, p := range s.Parties {
		s.Bus.Publish(Event{Kind: EventPartySanitize, Party: p})
	}
	s.updateStats()

	slog.Info("daily report",
		"tick", tick,
		"time", SimTime(tick),
		"parties", s.Stats.Parties,
		"men", s.Stats.Men,
		"custom_men", s.Stats.CustomMen,
		"men_converted", s.Stats.MenConverted,
		"slots_swapped", s.Stats.SlotsSwapped,
		"stacks_sanitized", s.Stats.StacksSanitized,
	)
}

// TickWeek saves the campaign.
func (s *Simulation) TickWeek(tick uint64) {
	if err := s.Save(); err != nil {
		slog.Error("weekly save failed", "tick", tick, "error", err)
	}
	if len(s.Parties) > maxParties {
		s.Parties = s.Parties[len(s.Parties)-maxParties:]
	}
}

// Save writes the campaign through Store when one is set.
func (s *Simulation) Save() error {
	if s.Store == nil {
		return nil
	}
	// Views are restored by the save; the visit ends with it.
	s.visiting = nil
	if err := s.Campaign.BeforeSave(s.Store); err != nil {
		s.Stats.SaveErrors++
		return err
	}
	return nil
}

func (s *Simulation) spawnParty() {
	if len(s.Factions) == 0 {
		return
	}
	owner := s.Factions[s.rng.IntN(len(s.Factions))]
	cul, ok := s.Campaign.Catalog.Culture(owner.Culture)
	if !ok {
		return
	}
	var pool []*troops.Troop
	for _, k := range ident.Kinds {
		for n := range tree.Walk(cul.Root(k)) {
			pool = append(pool, n)
		}
	}
	if len(pool) == 0 {
		return
	}

	s.nextID++
	p := social.NewParty(fmt.Sprintf("party_%d", s.nextID), fmt.Sprintf("%s Warband %d", owner.Name, s.nextID), owner.ID, owner.Culture)
	for range 3 {
		t := pool[s.rng.IntN(len(pool))]
		men := 5 + s.rng.IntN(16)
		p.Members.Add(t, men, s.rng.IntN(men/3+1), s.rng.IntN(100)*men)
	}

	// A stale copy of a custom troop stands in for a reference the host
	// kept across a reload; sanitation must repair it.
	if scope, ok := owner.Scope(); ok && s.rng.IntN(10) == 0 {
		if f, ok := s.Campaign.Registry.Faction(scope); ok {
			if nodes := f.Troops(); len(nodes) > 0 {
				live := nodes[s.rng.IntN(len(nodes))]
				p.Members.Add(troops.CloneTroop(live, live.ID), 3, 0, 0)
			}
		}
	}

	s.Parties = append(s.Parties, p)
	s.Bus.Publish(Event{Kind: EventPartyCreated, Party: p})
}

func (s *Simulation) updateStats() {
	men, custom := 0, 0
	for _, p := range s.Parties {
		for _, st := range p.Members.Stacks() {
			men += st.Total
			if st.Troop != nil && ident.IsCustom(st.Troop.ID) {
				custom += st.Total
			}
		}
	}
	s.Stats.Parties = len(s.Parties)
	s.Stats.Men = men
	s.Stats.CustomMen = custom
}

// MenOf sums the men of every party owned by owner.
func (s *Simulation) MenOf(owner social.FactionID) int {
	n := 0
	for _, p := range s.Parties {
		if p.OwnerID == owner {
			n += roster.TotalMen(p.Members)
		}
	}
	return n
}
