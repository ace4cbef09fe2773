// Factions: clans and kingdoms, the owners of parties and settlements.
package social

import "github.com/talgya/warband/internal/ident"

// FactionID is a unique identifier for a faction.
type FactionID string

// FactionKind categorizes a faction.
type FactionKind uint8

const (
	FactionClan FactionKind = iota
	FactionKingdom
)

func (k FactionKind) String() string {
	if k == FactionKingdom {
		return "kingdom"
	}
	return "clan"
}

// Faction is a clan or kingdom. Only the player's clan and kingdom own
// custom troop trees.
type Faction struct {
	ID      FactionID   `json:"id"`
	Name    string      `json:"name"`
	Kind    FactionKind `json:"kind"`
	Culture string      `json:"culture"`
	Player  bool        `json:"player"`
}

// Scope returns the custom tree scope a player faction owns.
func (f *Faction) Scope() (ident.Scope, bool) {
	if f == nil || !f.Player {
		return 0, false
	}
	if f.Kind == FactionKingdom {
		return ident.ScopeKingdom, true
	}
	return ident.ScopeClan, true
}

// Well-known faction ids of a campaign.
const (
	PlayerClanID    FactionID = "player_clan"
	PlayerKingdomID FactionID = "player_kingdom"
)

// SeedFactions creates the player clan and kingdom plus one NPC clan per
// listed culture.
func SeedFactions(clanCulture, kingdomCulture string, npcCultures ...string) []*Faction {
	out := []*Faction{
		{ID: PlayerClanID, Name: "Player Clan", Kind: FactionClan, Culture: clanCulture, Player: true},
		{ID: PlayerKingdomID, Name: "Player Kingdom", Kind: FactionKingdom, Culture: kingdomCulture, Player: true},
	}
	for _, c := range npcCultures {
		out = append(out, &Faction{
			ID:      FactionID("clan_" + c),
			Name:    "House of " + c,
			Kind:    FactionClan,
			Culture: c,
		})
	}
	return out
}
