package engine

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/warband/internal/catalog"
	"github.com/talgya/warband/internal/ident"
	"github.com/talgya/warband/internal/match"
	"github.com/talgya/warband/internal/persistence"
	"github.com/talgya/warband/internal/roster"
	"github.com/talgya/warband/internal/social"
	"github.com/talgya/warband/internal/swap"
	"github.com/talgya/warband/internal/tree"
	"github.com/talgya/warband/internal/troops"
)

// Campaign metadata keys.
const (
	MetaCampaignID = "campaign_id"
	MetaSavedAt    = "saved_at"
)

func cultureMetaKey(s ident.Scope) string { return s.String() + "_culture" }

// Campaign owns the custom troop trees of the player's factions for one
// campaign session and reacts to host events.
type Campaign struct {
	ID       uuid.UUID
	Catalog  *catalog.Catalog
	Registry *tree.Registry
	Bus      *Bus

	factions map[social.FactionID]*social.Faction
	swaps    *swap.Set
	started  bool
}

// NewCampaign creates an idle campaign. bus may be nil.
func NewCampaign(cat *catalog.Catalog, bus *Bus) *Campaign {
	return &Campaign{
		Catalog:  cat,
		Registry: tree.NewRegistry(),
		Bus:      bus,
		factions: make(map[social.FactionID]*social.Faction),
		swaps:    swap.NewSet(),
	}
}

// AddFactions makes factions known as owners of parties and settlements.
func (c *Campaign) AddFactions(fs ...*social.Faction) {
	for _, f := range fs {
		c.factions[f.ID] = f
	}
}

// Faction looks up a known faction.
func (c *Campaign) Faction(id social.FactionID) (*social.Faction, bool) {
	f, ok := c.factions[id]
	return f, ok
}

// Started reports whether custom trees are live.
func (c *Campaign) Started() bool { return c.started }

// Attach subscribes the campaign's host-event handlers to b and makes b
// the destination of outcome events.
func (c *Campaign) Attach(b *Bus) {
	c.Bus = b
	b.Subscribe(EventPartyCreated, func(e Event) {
		if e.Party != nil {
			c.OnPartyCreated(e.Party)
		}
	})
	b.Subscribe(EventSettlementEntered, func(e Event) {
		if e.Settlement != nil {
			c.OnSettlementEntered(e.Settlement)
		}
	})
	b.Subscribe(EventSettlementLeft, func(e Event) {
		if e.Settlement != nil {
			c.OnSettlementLeft(e.Settlement)
		}
	})
	b.Subscribe(EventPartySanitize, func(e Event) {
		if e.Party != nil {
			c.OnPartySanitize(e.Party)
		}
	})
}

// scopeOf maps an owning faction to the custom scope whose trees are live.
func (c *Campaign) scopeOf(owner social.FactionID) (ident.Scope, bool) {
	if !c.started {
		return 0, false
	}
	scope, ok := c.factions[owner].Scope()
	if !ok {
		return 0, false
	}
	if _, live := c.Registry.Faction(scope); !live {
		return 0, false
	}
	return scope, true
}

// Start derives fresh custom trees for the player factions. Only the listed
// scopes get trees; none listed means every player faction.
func (c *Campaign) Start(scopes ...ident.Scope) error {
	var derived []*tree.Faction
	for _, f := range c.sortedFactions() {
		scope, ok := f.Scope()
		if !ok || (len(scopes) > 0 && !slices.Contains(scopes, scope)) {
			continue
		}
		culture, ok := c.Catalog.Culture(f.Culture)
		if !ok {
			return fmt.Errorf("start campaign: faction %s: unknown culture %q", f.ID, f.Culture)
		}
		derived = append(derived, tree.Derive(scope, culture.Source()))
	}

	c.resetSwaps()
	c.Registry.Rebuild(derived...)
	c.ID = uuid.New()
	c.started = true

	slog.Info("campaign started", "id", c.ID, "factions", len(derived), "troops", c.Registry.Len())
	c.Bus.Publish(Event{Kind: EventCampaignStarted, Count: c.Registry.Len(), Description: c.ID.String()})
	return nil
}

// Teardown restores outstanding swaps and drops every custom tree.
func (c *Campaign) Teardown() {
	restored := c.swaps.RestoreAll()
	c.Registry.Clear()
	c.started = false
	slog.Info("campaign ended", "id", c.ID, "restored_slots", restored)
	c.Bus.Publish(Event{Kind: EventCampaignEnded, Description: c.ID.String()})
}

// resetSwaps puts back every volunteer shown from the current trees before
// they are replaced, so no slot is left pointing at a dropped node.
func (c *Campaign) resetSwaps() {
	if restored := c.swaps.RestoreAll(); restored > 0 {
		slog.Debug("volunteer swaps restored before rebuild", "slots", restored)
	}
	c.swaps = swap.NewSet()
}

func (c *Campaign) sortedFactions() []*social.Faction {
	out := make([]*social.Faction, 0, len(c.factions))
	for _, f := range c.factions {
		out = append(out, f)
	}
	slices.SortFunc(out, func(a, b *social.Faction) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return out
}

// Substitute picks the custom troop of scope that stands in for t. It
// returns false when t is already one of scope's troops or nothing matches,
// in which case the caller keeps t.
func (c *Campaign) Substitute(scope ident.Scope, t *troops.Troop) (*troops.Troop, bool) {
	f, ok := c.Registry.Faction(scope)
	if !ok || t == nil || c.Registry.Owns(scope, t) {
		return nil, false
	}

	kind, role := c.placement(t)
	if role != ident.RoleNone {
		if leaf := f.Leaf(kind, role); leaf != nil {
			return leaf, true
		}
	}

	root := f.Root(kind)
	if root == nil {
		return nil, false
	}
	cand, err := match.Pick(t.Profile(), root)
	if err != nil {
		slog.Debug("no custom substitute, keeping troop",
			"troop", t.ID, "scope", scope, "kind", kind, "error", err)
		return nil, false
	}
	return cand.Troop, true
}

// placement decides which line and role a foreign troop maps onto: custom
// troops keep their own, native troops follow membership in their culture's
// trees.
func (c *Campaign) placement(t *troops.Troop) (ident.Kind, ident.Role) {
	if p, ok := ident.Decode(t.ID); ok {
		return p.Kind, p.Role
	}
	cultures := c.Catalog.Cultures()
	if own, ok := c.Catalog.Culture(t.Culture); ok {
		cultures = append([]*catalog.Culture{own}, cultures...)
	}
	for _, cul := range cultures {
		if kind, role, ok := cul.RoleOf(t); ok {
			return kind, role
		}
		if kind, ok := cul.KindOf(t); ok {
			return kind, ident.RoleNone
		}
	}
	return ident.KindBasic, ident.RoleNone
}

// OnPartyCreated converts every stack of a player-owned party to its custom
// substitute. It returns the number of men converted.
func (c *Campaign) OnPartyCreated(p *social.Party) int {
	scope, ok := c.scopeOf(p.OwnerID)
	if !ok {
		return 0
	}
	converted := 0
	for _, s := range p.Members.Stacks() {
		sub, ok := c.Substitute(scope, s.Troop)
		if !ok || roster.SameTroop(sub, s.Troop) {
			continue
		}
		if err := roster.ReplaceStack(p.Members, s.Troop, sub, s.Total); err != nil {
			slog.Warn("party stack not converted", "party", p.ID, "troop", s.Troop, "error", err)
			continue
		}
		converted += s.Total
	}
	if converted > 0 {
		slog.Debug("party converted", "party", p.ID, "scope", scope, "men", converted)
		c.Bus.Publish(Event{Kind: EventPartyConverted, Party: p, Count: converted})
	}
	return converted
}

// OnSettlementEntered shows a player-owned settlement's volunteers as
// custom troops. It returns the number of slots swapped.
func (c *Campaign) OnSettlementEntered(s *social.Settlement) int {
	scope, ok := c.scopeOf(s.OwnerID)
	if !ok {
		return 0
	}
	changed := c.swaps.BeginSwap(social.Volunteers(s), func(_ int, cur *troops.Troop) (*troops.Troop, bool) {
		return c.Substitute(scope, cur)
	})
	c.Bus.Publish(Event{Kind: EventVolunteersSwapped, Settlement: s, Count: changed})
	return changed
}

// OnSettlementLeft restores the volunteers swapped on entry.
func (c *Campaign) OnSettlementLeft(s *social.Settlement) int {
	key := social.Volunteers(s).Key()
	if !c.swaps.Active(key) {
		return 0
	}
	n := c.swaps.Restore(key)
	c.Bus.Publish(Event{Kind: EventVolunteersRestored, Settlement: s, Count: n})
	return n
}

// OnPartySanitize replaces or drops stacks whose troop no longer resolves.
func (c *Campaign) OnPartySanitize(p *social.Party) roster.Report {
	rep := roster.SanitizeInvalidStacks(p.Members, c.validTroop, func(t *troops.Troop) *troops.Troop {
		return c.fallbackFor(p.Culture, t)
	})
	if rep.Replaced+rep.Dropped > 0 {
		c.Bus.Publish(Event{
			Kind:        EventRosterSanitized,
			Party:       p,
			Count:       rep.Replaced + rep.Dropped,
			Description: fmt.Sprintf("replaced %d, dropped %d (%d men)", rep.Replaced, rep.Dropped, rep.DroppedMen),
		})
	}
	return rep
}

// validTroop accepts native troops the catalog knows and live custom nodes.
func (c *Campaign) validTroop(t *troops.Troop) bool {
	if !troops.Valid(t) {
		return false
	}
	if ident.IsCustom(t.ID) {
		live, ok := c.Registry.Lookup(t.ID)
		return ok && live == t
	}
	_, ok := c.Catalog.Troop(t.ID)
	return ok
}

// fallbackFor picks a replacement for an invalid troop: the live node with
// the same custom id, else the best match of the highest tier not above the
// troop's within the culture's native trees, else the last-resort troop.
func (c *Campaign) fallbackFor(culture string, t *troops.Troop) *troops.Troop {
	if t != nil && ident.IsCustom(t.ID) {
		if live, ok := c.Registry.Lookup(t.ID); ok {
			return live
		}
	}

	cul, ok := c.Catalog.Culture(culture)
	if !ok && t != nil {
		cul, ok = c.Catalog.Culture(t.Culture)
	}
	if ok {
		var pool []*troops.Troop
		for _, k := range ident.Kinds {
			for n := range tree.Walk(cul.Root(k)) {
				pool = append(pool, n)
			}
		}
		ref := troops.Profile{}
		if t != nil {
			ref = t.Profile()
		}
		for tier := max(ref.Tier, 0); tier >= 0; tier-- {
			ref.Tier = tier
			if cand, err := match.Best(ref, pool); err == nil {
				return cand.Troop
			}
		}
	}
	return c.Catalog.LastResort()
}

// BeforeSave restores outstanding swaps and writes every faction's trees
// and the campaign metadata through st.
func (c *Campaign) BeforeSave(st *persistence.Store) error {
	if restored := c.swaps.RestoreAll(); restored > 0 {
		slog.Debug("volunteer swaps restored before save", "slots", restored)
	}

	var tops []*troops.Troop
	meta := map[string]string{
		MetaCampaignID: c.ID.String(),
		MetaSavedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	for _, f := range c.Registry.Factions() {
		tops = append(tops, f.Tops()...)
		meta[cultureMetaKey(f.Scope)] = f.Culture
	}
	records := persistence.SaveAll(tops)

	if err := st.SaveCampaign(records, meta); err != nil {
		return fmt.Errorf("before save: %w", err)
	}
	c.Bus.Publish(Event{Kind: EventSaved, Count: len(records)})
	return nil
}

// AfterLoad rebuilds the registry from the records in st. It returns the
// number of records that loaded with gaps; gaps never fail the load.
func (c *Campaign) AfterLoad(st *persistence.Store) (int, error) {
	records, err := st.LoadRoots()
	if err != nil {
		return 0, fmt.Errorf("after load: %w", err)
	}

	c.resetSwaps()
	c.Registry.Clear()
	_, gaps := persistence.LoadAll(records, c.Catalog, c.Registry)

	if raw, err := st.GetMeta(MetaCampaignID); err == nil {
		if id, err := uuid.Parse(raw); err == nil {
			c.ID = id
		}
	}
	for _, f := range c.Registry.Factions() {
		if culture, err := st.GetMeta(cultureMetaKey(f.Scope)); err == nil && culture != "" {
			f.Culture = culture
		}
	}
	c.started = true

	slog.Info("custom troop trees loaded",
		"id", c.ID,
		"roots", len(records),
		"troops", c.Registry.Len(),
		"gaps", gaps,
	)
	c.Bus.Publish(Event{Kind: EventLoaded, Count: c.Registry.Len()})
	return gaps, nil
}
