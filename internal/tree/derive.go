package tree

import (
	"log/slog"

	"github.com/talgya/warband/internal/ident"
	"github.com/talgya/warband/internal/troops"
)

// Source names the native troops a faction's custom trees are copied from.
type Source struct {
	Culture string
	Roots   map[ident.Kind]*troops.Troop
	Leaves  map[ident.Kind]map[ident.Role]*troops.Troop
}

// Derive builds a fresh faction by cloning the native trees of src node by
// node. Each clone's id encodes its branch path from the root.
func Derive(scope ident.Scope, src Source) *Faction {
	f := NewFaction(scope, src.Culture)
	for _, kind := range ident.Kinds {
		if native := src.Roots[kind]; native != nil {
			f.roots[kind] = deriveNode(native, scope, kind, ident.Path{})
		}
		for _, role := range ident.Roles {
			native := src.Leaves[kind][role]
			if native == nil {
				continue
			}
			leaf := troops.CloneTroop(native, ident.RoleID(scope, kind, role))
			f.leaves[leafKey{kind, role}] = leaf
		}
	}
	slog.Info("custom trees derived",
		"scope", scope,
		"culture", src.Culture,
		"troops", len(f.Troops()),
	)
	return f
}

func deriveNode(native *troops.Troop, scope ident.Scope, kind ident.Kind, path ident.Path) *troops.Troop {
	node := troops.CloneTroop(native, ident.Encode(scope, kind, ident.RoleNone, path))
	for i, nc := range native.Children() {
		if i >= troops.MaxBranches {
			slog.Warn("native troop has more upgrade targets than a custom tree holds",
				"troop", native.ID, "dropped", nc.ID)
			continue
		}
		childPath, ok := path.Child(uint8(i))
		if !ok {
			slog.Warn("native tree deeper than custom path allows", "troop", native.ID)
			break
		}
		if err := node.AddChild(deriveNode(nc, scope, kind, childPath)); err != nil {
			slog.Warn("custom tree link rejected", "troop", node.ID, "error", err)
		}
	}
	return node
}
