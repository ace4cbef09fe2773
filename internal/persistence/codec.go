package persistence

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/talgya/warband/internal/troops"
)

// Separators of the skill and loadout codes. Names and ids containing them
// would not decode back to themselves.
const (
	skillSeparators   = ":;"
	loadoutSeparators = "|,="
)

// ValidSkillName reports whether name survives EncodeSkills.
func ValidSkillName(name string) bool {
	return name != "" && !strings.ContainsAny(name, skillSeparators)
}

// ValidItemID reports whether id survives EncodeLoadout.
func ValidItemID(id string) bool {
	return id != "" && !strings.ContainsAny(id, loadoutSeparators)
}

// EncodeSkills writes a skill map as "skill:value;skill:value" sorted by name.
func EncodeSkills(skills map[string]int) string {
	var b strings.Builder
	for i, name := range slices.Sorted(maps.Keys(skills)) {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(name)
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(skills[name]))
	}
	return b.String()
}

// DecodeSkills reads EncodeSkills output. Malformed entries are skipped and
// reported in the returned error; well-formed entries are always kept.
func DecodeSkills(s string) (map[string]int, error) {
	out := make(map[string]int)
	if s == "" {
		return out, nil
	}
	var errs []error
	for _, part := range strings.Split(s, ";") {
		name, val, ok := strings.Cut(part, ":")
		if !ok || name == "" {
			errs = append(errs, fmt.Errorf("skill entry %q: missing name or value", part))
			continue
		}
		n, err := strconv.Atoi(val)
		if err != nil {
			errs = append(errs, fmt.Errorf("skill entry %q: %w", part, err))
			continue
		}
		out[name] = n
	}
	return out, errors.Join(errs...)
}

const (
	battleTag   = "B"
	civilianTag = "C"
)

// EncodeLoadout writes a loadout as "B|slot=item,slot=item" (C for civilian),
// slots in display order.
func EncodeLoadout(l troops.Loadout) string {
	var b strings.Builder
	if l.Civilian {
		b.WriteString(civilianTag)
	} else {
		b.WriteString(battleTag)
	}
	b.WriteByte('|')
	for i, s := range l.Slots() {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(string(s))
		b.WriteByte('=')
		b.WriteString(l.Items[s].ID)
	}
	return b.String()
}

// DecodeLoadout reads EncodeLoadout output, resolving item ids with item.
// Unknown slots and items are left empty and reported in the error.
func DecodeLoadout(code string, item func(id string) (*troops.Item, bool)) (troops.Loadout, error) {
	tag, body, ok := strings.Cut(code, "|")
	if !ok || (tag != battleTag && tag != civilianTag) {
		return troops.Loadout{}, fmt.Errorf("loadout code %q: bad header", code)
	}
	l := troops.NewLoadout(tag == civilianTag)
	if body == "" {
		return l, nil
	}
	var errs []error
	for _, part := range strings.Split(body, ",") {
		slot, id, ok := strings.Cut(part, "=")
		if !ok || !troops.ValidSlot(troops.Slot(slot)) {
			errs = append(errs, fmt.Errorf("loadout entry %q: bad slot", part))
			continue
		}
		it, ok := item(id)
		if !ok {
			errs = append(errs, fmt.Errorf("loadout entry %q: unknown item", part))
			continue
		}
		l.Set(troops.Slot(slot), it)
	}
	return l, errors.Join(errs...)
}
