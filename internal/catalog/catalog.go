// Package catalog loads native game content (items, vanilla troops and
// cultures) and answers troop, item and culture lookups.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/talgya/warband/internal/ident"
	"github.com/talgya/warband/internal/persistence"
	"github.com/talgya/warband/internal/tree"
	"github.com/talgya/warband/internal/troops"
)

//go:embed default.yaml
var defaultContent []byte

type fileLoadout struct {
	Civilian bool              `yaml:"civilian"`
	Items    map[string]string `yaml:"items"`
}

type fileTroop struct {
	ID        string         `yaml:"id"`
	Name      string         `yaml:"name"`
	Tier      int            `yaml:"tier"`
	Culture   string         `yaml:"culture"`
	Female    bool           `yaml:"female"`
	Skills    map[string]int `yaml:"skills"`
	Equipment []fileLoadout  `yaml:"equipment"`
	Upgrades  []string       `yaml:"upgrades"`
}

type fileCulture struct {
	ID        string                       `yaml:"id"`
	Name      string                       `yaml:"name"`
	BasicRoot string                       `yaml:"basic_root"`
	EliteRoot string                       `yaml:"elite_root"`
	Leaves    map[string]map[string]string `yaml:"leaves"`
}

type file struct {
	LastResort string         `yaml:"last_resort"`
	Items      []*troops.Item `yaml:"items"`
	Troops     []fileTroop    `yaml:"troops"`
	Cultures   []fileCulture  `yaml:"cultures"`
}

// Culture is a native culture with its basic and elite troop trees.
type Culture struct {
	ID   string
	Name string

	roots  map[ident.Kind]*troops.Troop
	leaves map[ident.Kind]map[ident.Role]*troops.Troop
}

// Root returns the native root of the kind's tree.
func (c *Culture) Root(kind ident.Kind) *troops.Troop { return c.roots[kind] }

// Leaf returns the native source of a retinue or militia role.
func (c *Culture) Leaf(kind ident.Kind, role ident.Role) *troops.Troop {
	return c.leaves[kind][role]
}

// Source describes the culture's trees for custom tree derivation.
func (c *Culture) Source() tree.Source {
	return tree.Source{Culture: c.ID, Roots: c.roots, Leaves: c.leaves}
}

// KindOf reports which native tree of the culture contains t.
func (c *Culture) KindOf(t *troops.Troop) (ident.Kind, bool) {
	for _, k := range ident.Kinds {
		if tree.Contains(c.roots[k], t) {
			return k, true
		}
	}
	return 0, false
}

// RoleOf reports whether t is one of the culture's retinue or militia sources.
func (c *Culture) RoleOf(t *troops.Troop) (ident.Kind, ident.Role, bool) {
	if t == nil {
		return 0, ident.RoleNone, false
	}
	for _, k := range ident.Kinds {
		for _, r := range ident.Roles {
			if l := c.leaves[k][r]; l != nil && l.ID == t.ID {
				return k, r, true
			}
		}
	}
	return 0, ident.RoleNone, false
}

// Catalog holds every native item, troop and culture.
type Catalog struct {
	items      map[string]*troops.Item
	troops     map[string]*troops.Troop
	cultures   map[string]*Culture
	order      []string
	lastResort *troops.Troop
}

// Default returns the embedded content.
func Default() (*Catalog, error) {
	return Parse(defaultContent)
}

// Load reads content from a YAML file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	cat, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("loading catalog %s: %w", path, err)
	}
	return cat, nil
}

// Parse builds a catalog from YAML content and links every upgrade tree.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	cat := &Catalog{
		items:    make(map[string]*troops.Item, len(f.Items)),
		troops:   make(map[string]*troops.Troop, len(f.Troops)),
		cultures: make(map[string]*Culture, len(f.Cultures)),
	}
	var errs []error

	for _, it := range f.Items {
		if strings.TrimSpace(it.ID) == "" {
			errs = append(errs, fmt.Errorf("item with empty id"))
			continue
		}
		if !persistence.ValidItemID(it.ID) {
			errs = append(errs, fmt.Errorf("item %q: id must not contain any of %q", it.ID, "|,="))
			continue
		}
		if _, dup := cat.items[it.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate item: %s", it.ID))
			continue
		}
		cat.items[it.ID] = it
	}

	for _, ft := range f.Troops {
		if strings.TrimSpace(ft.ID) == "" {
			errs = append(errs, fmt.Errorf("troop with empty id"))
			continue
		}
		if ident.IsCustom(ft.ID) {
			errs = append(errs, fmt.Errorf("troop %s: native troops cannot use custom ids", ft.ID))
			continue
		}
		if _, dup := cat.troops[ft.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate troop: %s", ft.ID))
			continue
		}
		t, err := cat.buildTroop(ft)
		if err != nil {
			errs = append(errs, err)
		}
		cat.troops[ft.ID] = t
	}

	for _, ft := range f.Troops {
		parent, ok := cat.troops[ft.ID]
		if !ok {
			continue
		}
		for _, up := range ft.Upgrades {
			child, ok := cat.troops[up]
			if !ok {
				errs = append(errs, fmt.Errorf("troop %s: unknown upgrade %s", ft.ID, up))
				continue
			}
			if err := parent.AddChild(child); err != nil {
				errs = append(errs, err)
			}
		}
	}

	for _, fc := range f.Cultures {
		c, err := cat.buildCulture(fc)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		cat.cultures[c.ID] = c
		cat.order = append(cat.order, c.ID)
	}

	if f.LastResort != "" {
		lr, ok := cat.troops[f.LastResort]
		if !ok {
			errs = append(errs, fmt.Errorf("unknown last resort troop: %s", f.LastResort))
		}
		cat.lastResort = lr
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	return cat, nil
}

func (cat *Catalog) buildTroop(ft fileTroop) (*troops.Troop, error) {
	var errs []error
	loadouts := make([]troops.Loadout, 0, len(ft.Equipment))
	for _, fl := range ft.Equipment {
		l := troops.NewLoadout(fl.Civilian)
		for slot, itemID := range fl.Items {
			if !troops.ValidSlot(troops.Slot(slot)) {
				errs = append(errs, fmt.Errorf("troop %s: unknown slot %s", ft.ID, slot))
				continue
			}
			it, ok := cat.items[itemID]
			if !ok {
				errs = append(errs, fmt.Errorf("troop %s: unknown item %s", ft.ID, itemID))
				continue
			}
			l.Set(troops.Slot(slot), it)
		}
		loadouts = append(loadouts, l)
	}
	for name := range ft.Skills {
		if !persistence.ValidSkillName(name) {
			errs = append(errs, fmt.Errorf("troop %s: skill %q must not contain any of %q", ft.ID, name, ":;"))
		}
	}
	t := troops.New(ft.ID, ft.Name, ft.Tier, ft.Skills, loadouts...)
	t.Culture = ft.Culture
	t.Female = ft.Female
	return t, errors.Join(errs...)
}

func (cat *Catalog) buildCulture(fc fileCulture) (*Culture, error) {
	if strings.TrimSpace(fc.ID) == "" {
		return nil, fmt.Errorf("culture with empty id")
	}
	c := &Culture{
		ID:     fc.ID,
		Name:   fc.Name,
		roots:  make(map[ident.Kind]*troops.Troop),
		leaves: make(map[ident.Kind]map[ident.Role]*troops.Troop),
	}
	for kind, id := range map[ident.Kind]string{ident.KindBasic: fc.BasicRoot, ident.KindElite: fc.EliteRoot} {
		if id == "" {
			continue
		}
		t, ok := cat.troops[id]
		if !ok {
			return nil, fmt.Errorf("culture %s: unknown %s root %s", fc.ID, kind, id)
		}
		if t.Parent() != nil {
			return nil, fmt.Errorf("culture %s: %s root %s is an upgrade target", fc.ID, kind, id)
		}
		c.roots[kind] = t
	}
	for kindTok, roles := range fc.Leaves {
		kind, ok := ident.ParseKind(kindTok)
		if !ok {
			return nil, fmt.Errorf("culture %s: unknown kind %s", fc.ID, kindTok)
		}
		for roleTok, id := range roles {
			role, ok := ident.ParseRole(roleTok)
			if !ok {
				return nil, fmt.Errorf("culture %s: unknown role %s", fc.ID, roleTok)
			}
			t, ok := cat.troops[id]
			if !ok {
				return nil, fmt.Errorf("culture %s: unknown %s %s troop %s", fc.ID, kind, role, id)
			}
			if c.leaves[kind] == nil {
				c.leaves[kind] = make(map[ident.Role]*troops.Troop)
			}
			c.leaves[kind][role] = t
		}
	}
	return c, nil
}

// Troop resolves a native troop id.
func (cat *Catalog) Troop(id string) (*troops.Troop, bool) {
	t, ok := cat.troops[id]
	return t, ok
}

// Item resolves an item id.
func (cat *Catalog) Item(id string) (*troops.Item, bool) {
	it, ok := cat.items[id]
	return it, ok
}

// Culture resolves a culture id.
func (cat *Catalog) Culture(id string) (*Culture, bool) {
	c, ok := cat.cultures[id]
	return c, ok
}

// Cultures returns every culture in file order.
func (cat *Catalog) Cultures() []*Culture {
	out := make([]*Culture, 0, len(cat.order))
	for _, id := range cat.order {
		out = append(out, cat.cultures[id])
	}
	return out
}

// Troops returns every native troop sorted by id.
func (cat *Catalog) Troops() []*troops.Troop {
	out := make([]*troops.Troop, 0, len(cat.troops))
	for _, t := range cat.troops {
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b *troops.Troop) int { return strings.Compare(a.ID, b.ID) })
	return out
}

// LastResort is the always-present troop used when no fallback matches.
func (cat *Catalog) LastResort() *troops.Troop { return cat.lastResort }
