package troops

import "maps"

// Profile is the flat view of a troop used for matching. Host troops that
// are not modelled as a Troop can be described by filling one directly.
type Profile struct {
	ID      string
	Tier    int
	Mounted bool
	Ranged  bool
	Female  bool
	Weapons []string
	Skills  map[string]int
}

// Profile captures the matching-relevant view of t.
func (t *Troop) Profile() Profile {
	return Profile{
		ID:      t.ID,
		Tier:    t.Tier,
		Mounted: t.IsMounted(),
		Ranged:  t.IsRanged(),
		Female:  t.Female,
		Weapons: t.WeaponClasses(),
		Skills:  maps.Clone(t.Skills),
	}
}
