package tree

import (
	"log/slog"

	"github.com/talgya/warband/internal/ident"
	"github.com/talgya/warband/internal/troops"
)

type leafKey struct {
	kind ident.Kind
	role ident.Role
}

// Faction holds the custom trees of one owning scope: a basic and an elite
// upgrade line plus retinue and militia leaves for each.
type Faction struct {
	Scope   ident.Scope
	Culture string

	roots  [2]*troops.Troop
	leaves map[leafKey]*troops.Troop
}

// NewFaction returns an empty faction for scope.
func NewFaction(scope ident.Scope, culture string) *Faction {
	return &Faction{Scope: scope, Culture: culture, leaves: make(map[leafKey]*troops.Troop)}
}

// Root returns the root of the kind's upgrade line, or nil.
func (f *Faction) Root(kind ident.Kind) *troops.Troop {
	if int(kind) >= len(f.roots) {
		return nil
	}
	return f.roots[kind]
}

// Leaf returns a retinue or militia troop, or nil.
func (f *Faction) Leaf(kind ident.Kind, role ident.Role) *troops.Troop {
	return f.leaves[leafKey{kind, role}]
}

// Place installs a root or role leaf according to its id. Nodes inside an
// upgrade line and foreign ids are rejected.
func (f *Faction) Place(t *troops.Troop) bool {
	p, ok := ident.Decode(t.ID)
	if !ok || p.Scope != f.Scope {
		return false
	}
	switch {
	case p.IsRole():
		f.leaves[leafKey{p.Kind, p.Role}] = t
	case p.IsRoot():
		f.roots[p.Kind] = t
	default:
		return false
	}
	return true
}

// Tops returns every root and leaf in a fixed order. These are the records a
// save holds for the faction.
func (f *Faction) Tops() []*troops.Troop {
	var out []*troops.Troop
	for _, k := range ident.Kinds {
		if r := f.roots[k]; r != nil {
			out = append(out, r)
		}
		for _, role := range ident.Roles {
			if l := f.leaves[leafKey{k, role}]; l != nil {
				out = append(out, l)
			}
		}
	}
	return out
}

// Troops returns every node of the faction, tops first in pre-order.
func (f *Faction) Troops() []*troops.Troop {
	var out []*troops.Troop
	for _, top := range f.Tops() {
		for n := range Walk(top) {
			out = append(out, n)
		}
	}
	return out
}

// Registry indexes the custom trees of every player faction. It is rebuilt
// wholesale on campaign start and load, and cleared on teardown.
type Registry struct {
	factions map[ident.Scope]*Faction
	index    map[string]*troops.Troop
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	r := &Registry{}
	r.Clear()
	return r
}

// Clear drops every tree.
func (r *Registry) Clear() {
	r.factions = make(map[ident.Scope]*Faction)
	r.index = make(map[string]*troops.Troop)
}

// Rebuild replaces the registry contents with the given factions.
func (r *Registry) Rebuild(factions ...*Faction) {
	r.Clear()
	for _, f := range factions {
		if f == nil {
			continue
		}
		r.factions[f.Scope] = f
		for _, n := range f.Troops() {
			r.index[n.ID] = n
		}
	}
	slog.Debug("troop registry rebuilt", "factions", len(r.factions), "troops", len(r.index))
}

// Register indexes a single node, creating its faction on first use and
// placing it when it is a root or role leaf.
func (r *Registry) Register(t *troops.Troop) bool {
	p, ok := ident.Decode(t.ID)
	if !ok {
		return false
	}
	f, exists := r.factions[p.Scope]
	if !exists {
		f = NewFaction(p.Scope, t.Culture)
		r.factions[p.Scope] = f
	}
	if f.Culture == "" {
		f.Culture = t.Culture
	}
	f.Place(t)
	r.index[t.ID] = t
	return true
}

// Lookup resolves a custom id.
func (r *Registry) Lookup(id string) (*troops.Troop, bool) {
	t, ok := r.index[id]
	return t, ok
}

// Faction returns the trees owned by scope.
func (r *Registry) Faction(scope ident.Scope) (*Faction, bool) {
	f, ok := r.factions[scope]
	return f, ok
}

// Factions returns every faction in scope order.
func (r *Registry) Factions() []*Faction {
	var out []*Faction
	for _, s := range ident.Scopes {
		if f, ok := r.factions[s]; ok {
			out = append(out, f)
		}
	}
	return out
}

// Root returns the root of a scope's upgrade line.
func (r *Registry) Root(scope ident.Scope, kind ident.Kind) (*troops.Troop, bool) {
	f, ok := r.factions[scope]
	if !ok || f.Root(kind) == nil {
		return nil, false
	}
	return f.Root(kind), true
}

// Leaf returns a scope's retinue or militia troop.
func (r *Registry) Leaf(scope ident.Scope, kind ident.Kind, role ident.Role) (*troops.Troop, bool) {
	f, ok := r.factions[scope]
	if !ok || f.Leaf(kind, role) == nil {
		return nil, false
	}
	return f.Leaf(kind, role), true
}

// Owns reports whether t is a live node of scope's trees.
func (r *Registry) Owns(scope ident.Scope, t *troops.Troop) bool {
	if t == nil {
		return false
	}
	p, ok := ident.Decode(t.ID)
	if !ok || p.Scope != scope {
		return false
	}
	live, ok := r.index[t.ID]
	return ok && live == t
}

// Len is the number of indexed custom troops.
func (r *Registry) Len() int { return len(r.index) }
