// Package social provides factions, settlements, notables and parties.
package social

import (
	"github.com/talgya/warband/internal/roster"
	"github.com/talgya/warband/internal/troops"
)

// VolunteerSlots is the fixed number of recruitment slots per notable.
const VolunteerSlots = 6

// SettlementID is a unique identifier for a settlement.
type SettlementID string

// Notable is a settlement personality offering volunteers for recruitment.
type Notable struct {
	ID         string
	Name       string
	Volunteers [VolunteerSlots]*troops.Troop
}

// Settlement is a town, castle or village with volunteer-offering notables.
type Settlement struct {
	ID       SettlementID
	Name     string
	Culture  string
	OwnerID  FactionID
	Notables []*Notable
}

// AddNotable appends a notable holding the given volunteers; extra
// volunteers beyond the slot count are ignored.
func (s *Settlement) AddNotable(id, name string, volunteers ...*troops.Troop) *Notable {
	n := &Notable{ID: id, Name: name}
	copy(n.Volunteers[:], volunteers)
	s.Notables = append(s.Notables, n)
	return n
}

// Volunteers exposes every notable's slots of s as one flat collection,
// notable by notable. Removing a notable shrinks it.
func Volunteers(s *Settlement) *VolunteerView {
	return &VolunteerView{s: s}
}

// VolunteerView adapts a settlement's volunteer slots to an indexed
// collection keyed by settlement id.
type VolunteerView struct {
	s *Settlement
}

func (v *VolunteerView) Key() string { return "volunteers:" + string(v.s.ID) }

func (v *VolunteerView) Len() int { return len(v.s.Notables) * VolunteerSlots }

func (v *VolunteerView) Get(i int) *troops.Troop {
	return v.s.Notables[i/VolunteerSlots].Volunteers[i%VolunteerSlots]
}

func (v *VolunteerView) Set(i int, t *troops.Troop) {
	v.s.Notables[i/VolunteerSlots].Volunteers[i%VolunteerSlots] = t
}

// Party is a mobile party with an owner and a member roster.
type Party struct {
	ID      string
	Name    string
	OwnerID FactionID
	Culture string
	Members *roster.Party
}

// NewParty creates an empty party.
func NewParty(id, name string, owner FactionID, culture string) *Party {
	return &Party{ID: id, Name: name, OwnerID: owner, Culture: culture, Members: roster.NewParty()}
}
