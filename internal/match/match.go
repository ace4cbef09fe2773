// Package match selects the node of a custom tree that best stands in for an
// arbitrary reference troop.
package match

import (
	"errors"
	"math"
	"sort"

	"github.com/talgya/warband/internal/tree"
	"github.com/talgya/warband/internal/troops"
)

// Signal weights. The boolean traits form a strict preference order; the two
// similarity signals (0–SimilarityScale each) only separate candidates that
// already agree on the traits.
const (
	WeightMounted   = 1_000_000
	WeightRanged    = 100_000
	WeightFemale    = 10_000
	SimilarityScale = 1000
)

// ErrNoMatch means no candidate of the reference tier exists. Callers leave
// the original troop unchanged.
var ErrNoMatch = errors.New("no troop of matching tier")

// Candidate is a scored node, produced only while answering a query.
type Candidate struct {
	Troop *troops.Troop
	Score int
}

// Pick returns the best node below root for ref. Troops whose ids are listed
// in exclude are never picked.
func Pick(ref troops.Profile, root *troops.Troop, exclude ...string) (Candidate, error) {
	var pool []*troops.Troop
	for n := range tree.Walk(root) {
		pool = append(pool, n)
	}
	return Best(ref, pool, exclude...)
}

// PickEach picks once per root, adding every pick to the exclusion set of the
// following picks. Roots without a match yield a zero Candidate at their index.
func PickEach(ref troops.Profile, roots ...*troops.Troop) []Candidate {
	out := make([]Candidate, len(roots))
	var exclude []string
	for i, root := range roots {
		c, err := Pick(ref, root, exclude...)
		if err != nil {
			continue
		}
		out[i] = c
		exclude = append(exclude, c.Troop.ID)
	}
	return out
}

// Best selects among an explicit candidate pool. The result depends only on
// the pool's contents, not its order.
func Best(ref troops.Profile, pool []*troops.Troop, exclude ...string) (Candidate, error) {
	ranked := Rank(ref, pool, exclude...)
	if len(ranked) == 0 {
		return Candidate{}, ErrNoMatch
	}
	return ranked[0], nil
}

// Rank scores every eligible candidate and orders them best first: higher
// score, then ascending id.
func Rank(ref troops.Profile, pool []*troops.Troop, exclude ...string) []Candidate {
	skip := make(map[string]bool, len(exclude))
	for _, id := range exclude {
		skip[id] = true
	}
	var out []Candidate
	for _, n := range pool {
		if n == nil || n.Tier != ref.Tier || skip[n.ID] {
			continue
		}
		out = append(out, Candidate{Troop: n, Score: Score(ref, n.Profile())})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Troop.ID < out[j].Troop.ID
	})
	return out
}

// Score sums the weighted signals for one candidate.
func Score(ref, cand troops.Profile) int {
	score := 0
	if cand.Mounted == ref.Mounted {
		score += WeightMounted
	}
	if cand.Ranged == ref.Ranged {
		score += WeightRanged
	}
	if cand.Female == ref.Female {
		score += WeightFemale
	}
	score += scaled(Jaccard(ref.Weapons, cand.Weapons))
	score += scaled(Cosine(ref.Skills, cand.Skills))
	return score
}

func scaled(sim float64) int {
	return int(math.Round(sim * SimilarityScale))
}

// Jaccard is |a∩b| / |a∪b| over two tag sets. Empty sets give 0.
func Jaccard(a, b []string) float64 {
	set := make(map[string]uint8, len(a)+len(b))
	for _, s := range a {
		set[s] |= 1
	}
	for _, s := range b {
		set[s] |= 2
	}
	if len(set) == 0 {
		return 0
	}
	inter := 0
	for _, m := range set {
		if m == 3 {
			inter++
		}
	}
	return float64(inter) / float64(len(set))
}

// Cosine compares two skill vectors restricted to the skills both define.
// It is 0 if either restricted vector has zero length.
func Cosine(a, b map[string]int) float64 {
	var dot, na, nb float64
	for name, av := range a {
		bv, ok := b[name]
		if !ok {
			continue
		}
		x, y := float64(av), float64(bv)
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
