// Package ident encodes and decodes custom troop identifiers.
//
// An identifier has the shape "custom.<scope>.<kind>.<tail>" where tail is a
// fixed role token (retinue, melee-militia, ranged-militia) or a path over
// {0,1} naming the upgrade branches taken from the kind's root. The root has
// an empty path, so its id ends with the separator.
package ident

import (
	"errors"
	"fmt"
	"strings"
)

// Prefix marks an identifier as belonging to a custom troop tree.
const Prefix = "custom"

const sep = "."

// ErrInvalidIdentity is returned by Parse for strings outside the grammar.
var ErrInvalidIdentity = errors.New("not a custom troop id")

// Scope names the faction that owns a custom tree.
type Scope uint8

const (
	ScopeClan Scope = iota
	ScopeKingdom
)

// Scopes lists every owning scope in a fixed order.
var Scopes = []Scope{ScopeClan, ScopeKingdom}

func (s Scope) String() string {
	switch s {
	case ScopeClan:
		return "clan"
	case ScopeKingdom:
		return "kingdom"
	}
	return fmt.Sprintf("scope(%d)", uint8(s))
}

// ParseScope is the inverse of Scope.String.
func ParseScope(s string) (Scope, bool) {
	switch s {
	case "clan":
		return ScopeClan, true
	case "kingdom":
		return ScopeKingdom, true
	}
	return 0, false
}

// Kind selects one of the two parallel upgrade lines.
type Kind uint8

const (
	KindBasic Kind = iota
	KindElite
)

// Kinds lists both upgrade lines in a fixed order.
var Kinds = []Kind{KindBasic, KindElite}

func (k Kind) String() string {
	switch k {
	case KindBasic:
		return "basic"
	case KindElite:
		return "elite"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "basic":
		return KindBasic, true
	case "elite":
		return KindElite, true
	}
	return 0, false
}

// Role is a special leaf-only position outside the binary upgrade path.
type Role uint8

const (
	RoleNone Role = iota
	RoleRetinue
	RoleMeleeMilitia
	RoleRangedMilitia
)

// Roles lists every special role in a fixed order.
var Roles = []Role{RoleRetinue, RoleMeleeMilitia, RoleRangedMilitia}

func (r Role) String() string {
	switch r {
	case RoleNone:
		return ""
	case RoleRetinue:
		return "retinue"
	case RoleMeleeMilitia:
		return "melee-militia"
	case RoleRangedMilitia:
		return "ranged-militia"
	}
	return fmt.Sprintf("role(%d)", uint8(r))
}

// IsMilitia reports whether r is one of the two militia roles.
func (r Role) IsMilitia() bool {
	return r == RoleMeleeMilitia || r == RoleRangedMilitia
}

// ParseRole is the inverse of Role.String for the special roles.
func ParseRole(s string) (Role, bool) {
	switch s {
	case "retinue":
		return RoleRetinue, true
	case "melee-militia":
		return RoleMeleeMilitia, true
	case "ranged-militia":
		return RoleRangedMilitia, true
	}
	return RoleNone, false
}

// Parts is the decoded form of a custom troop identifier.
type Parts struct {
	Scope Scope
	Kind  Kind
	Role  Role
	Path  Path
}

// IsRole reports whether the parts name a retinue or militia leaf.
func (p Parts) IsRole() bool { return p.Role != RoleNone }

// IsRoot reports whether the parts name the root of an upgrade line.
func (p Parts) IsRoot() bool { return p.Role == RoleNone && p.Path.Len() == 0 }

// ID encodes the parts back into an identifier.
func (p Parts) ID() string { return Encode(p.Scope, p.Kind, p.Role, p.Path) }

// Encode builds the identifier for a node. A non-empty role wins over path,
// which is then ignored.
func Encode(scope Scope, kind Kind, role Role, path Path) string {
	var b strings.Builder
	b.Grow(len(Prefix) + 24 + path.Len())
	b.WriteString(Prefix)
	b.WriteString(sep)
	b.WriteString(scope.String())
	b.WriteString(sep)
	b.WriteString(kind.String())
	b.WriteString(sep)
	if role != RoleNone {
		b.WriteString(role.String())
	} else {
		path.appendTo(&b)
	}
	return b.String()
}

// RootID is shorthand for the id of a kind's root node.
func RootID(scope Scope, kind Kind) string {
	return Encode(scope, kind, RoleNone, Path{})
}

// RoleID is shorthand for the id of a role leaf.
func RoleID(scope Scope, kind Kind, role Role) string {
	return Encode(scope, kind, role, Path{})
}

// Decode parses id. ok is false for any string this package did not produce.
func Decode(id string) (p Parts, ok bool) {
	rest, found := strings.CutPrefix(id, Prefix+sep)
	if !found {
		return Parts{}, false
	}
	scopeTok, rest, found := strings.Cut(rest, sep)
	if !found {
		return Parts{}, false
	}
	kindTok, tail, found := strings.Cut(rest, sep)
	if !found {
		return Parts{}, false
	}
	if p.Scope, ok = ParseScope(scopeTok); !ok {
		return Parts{}, false
	}
	if p.Kind, ok = ParseKind(kindTok); !ok {
		return Parts{}, false
	}
	if role, isRole := ParseRole(tail); isRole {
		p.Role = role
		return p, true
	}
	if p.Path, ok = ParsePath(tail); !ok {
		return Parts{}, false
	}
	return p, true
}

// Parse is Decode with an error for callers that want one.
func Parse(id string) (Parts, error) {
	p, ok := Decode(id)
	if !ok {
		return Parts{}, fmt.Errorf("%q: %w", id, ErrInvalidIdentity)
	}
	return p, nil
}

// IsCustom is a cheap "is this one of ours" guard.
func IsCustom(id string) bool {
	_, ok := Decode(id)
	return ok
}

// ParentID strips the last branch from id. Roots, role leaves and foreign ids
// have no computable parent.
func ParentID(id string) (string, bool) {
	p, ok := Decode(id)
	if !ok || p.IsRole() {
		return "", false
	}
	parent, ok := p.Path.Parent()
	if !ok {
		return "", false
	}
	p.Path = parent
	return p.ID(), true
}

// ChildIDs returns the ids of both upgrade branches below id, or nil for role
// leaves, foreign ids and nodes at MaxDepth.
func ChildIDs(id string) []string {
	p, ok := Decode(id)
	if !ok || p.IsRole() || p.Path.Len() >= MaxDepth {
		return nil
	}
	out := make([]string, 0, 2)
	for _, branch := range []uint8{0, 1} {
		c := p
		c.Path, _ = p.Path.Child(branch)
		out = append(out, c.ID())
	}
	return out
}
