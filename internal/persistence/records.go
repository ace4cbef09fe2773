// Package persistence saves custom troop trees as flat root records and
// rebuilds the live trees from them on load.
package persistence

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/talgya/warband/internal/ident"
	"github.com/talgya/warband/internal/troops"
)

// ErrPersistenceGap marks a saved reference that no longer resolves.
var ErrPersistenceGap = errors.New("saved reference no longer resolves")

// Record is the serializable form of one node and, recursively, its subtree.
type Record struct {
	ID        string   `json:"id"`
	VanillaID string   `json:"vanilla_id"`
	Name      string   `json:"name"`
	Level     int      `json:"level"`
	Culture   string   `json:"culture,omitempty"`
	Female    bool     `json:"female,omitempty"`
	Skills    string   `json:"skills"`
	Equipment []string `json:"equipment,omitempty"`
	Children  []Record `json:"children,omitempty"`
}

// Resolver looks up native content while loading.
type Resolver interface {
	Troop(id string) (*troops.Troop, bool)
	Item(id string) (*troops.Item, bool)
}

// Registrar receives every rebuilt node.
type Registrar interface {
	Register(t *troops.Troop) bool
}

// SaveTree produces the record of root and its whole subtree.
func SaveTree(root *troops.Troop) Record {
	rec := Record{
		ID:        root.ID,
		VanillaID: root.VanillaID,
		Name:      root.Name,
		Level:     troops.LevelForTier(root.Tier),
		Culture:   root.Culture,
		Female:    root.Female,
		Skills:    EncodeSkills(root.Skills),
	}
	for _, l := range root.Equipment {
		rec.Equipment = append(rec.Equipment, EncodeLoadout(l))
	}
	for _, c := range root.Children() {
		rec.Children = append(rec.Children, SaveTree(c))
	}
	return rec
}

// SaveAll produces one record per top of every given tree.
func SaveAll(tops []*troops.Troop) []Record {
	out := make([]Record, 0, len(tops))
	for _, t := range tops {
		out = append(out, SaveTree(t))
	}
	return out
}

// LoadTree rebuilds the node described by rec and its subtree, registering
// every node with reg. The node is always returned; problems that were
// worked around (unresolvable vanilla troops, unknown items, bad ids) are
// reported in the error, which wraps ErrPersistenceGap where applicable.
func LoadTree(rec Record, res Resolver, reg Registrar) (*troops.Troop, error) {
	var errs []error
	node := loadNode(rec, res, &errs)

	for _, cr := range rec.Children {
		child, err := LoadTree(cr, res, reg)
		if err != nil {
			errs = append(errs, err)
		}
		if err := node.AddChild(child); err != nil {
			errs = append(errs, fmt.Errorf("relink %s: %w", cr.ID, err))
		}
	}

	if reg != nil && !reg.Register(node) {
		errs = append(errs, fmt.Errorf("register %q: %w", rec.ID, ident.ErrInvalidIdentity))
	}
	return node, errors.Join(errs...)
}

func loadNode(rec Record, res Resolver, errs *[]error) *troops.Troop {
	tier := troops.TierForLevel(rec.Level)

	vanilla, ok := res.Troop(rec.VanillaID)
	if !ok {
		*errs = append(*errs, fmt.Errorf("troop %s: vanilla %q: %w", rec.ID, rec.VanillaID, ErrPersistenceGap))
		slog.Warn("custom troop lost its vanilla source, loading empty",
			"troop", rec.ID, "vanilla", rec.VanillaID)
		node := troops.New(rec.ID, rec.Name, tier, nil)
		node.VanillaID = rec.VanillaID
		node.Culture = rec.Culture
		node.Female = rec.Female
		return node
	}

	node := troops.CloneTroop(vanilla, rec.ID)
	node.VanillaID = rec.VanillaID
	if rec.Name != "" {
		node.Name = rec.Name
	}
	node.Tier = tier
	node.Female = rec.Female
	if rec.Culture != "" {
		node.Culture = rec.Culture
	}

	skills, err := DecodeSkills(rec.Skills)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("troop %s: %w", rec.ID, err))
	}
	node.Skills = skills

	loadouts := make([]troops.Loadout, 0, len(rec.Equipment))
	for _, code := range rec.Equipment {
		l, err := DecodeLoadout(code, res.Item)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("troop %s: %w: %w", rec.ID, ErrPersistenceGap, err))
			if l.Items == nil {
				continue
			}
		}
		loadouts = append(loadouts, l)
	}
	node.SetEquipment(loadouts)
	return node
}

// LoadAll rebuilds every record, logging and continuing past gaps. It never
// fails as a whole; the returned count is the number of records with gaps.
func LoadAll(records []Record, res Resolver, reg Registrar) ([]*troops.Troop, int) {
	tops := make([]*troops.Troop, 0, len(records))
	gaps := 0
	for _, rec := range records {
		top, err := LoadTree(rec, res, reg)
		if err != nil {
			gaps++
			slog.Warn("custom tree loaded with gaps", "root", rec.ID, "error", err)
		}
		tops = append(tops, top)
	}
	return tops, gaps
}
