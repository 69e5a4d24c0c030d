package kvp

import (
	"cmp"
	"slices"
)

// Compare orders pairs for field emission. When both pairs carry a tier,
// High sorts before everything else and Medium before Low or unknown tiers.
// Remaining ties break on the value box (y, x, height, width) and then on
// the key box in the same order.
func Compare(a, b *Pair) int {
	if a.Tier != "" && b.Tier != "" {
		if c := tierRank(a, TierHigh, b); c != 0 {
			return c
		}
		if c := tierRank(a, TierMedium, b); c != 0 {
			return c
		}
	}
	return cmp.Or(
		cmp.Compare(a.ValueY, b.ValueY),
		cmp.Compare(a.ValueX, b.ValueX),
		cmp.Compare(a.ValueHeight, b.ValueHeight),
		cmp.Compare(a.ValueWidth, b.ValueWidth),
		cmp.Compare(a.KeyY, b.KeyY),
		cmp.Compare(a.KeyX, b.KeyX),
		cmp.Compare(a.KeyHeight, b.KeyHeight),
		cmp.Compare(a.KeyWidth, b.KeyWidth),
	)
}

func tierRank(a *Pair, tier string, b *Pair) int {
	switch inA, inB := a.HasTier(tier), b.HasTier(tier); {
	case inA && !inB:
		return -1
	case inB && !inA:
		return 1
	}
	return 0
}

// Sort orders pairs in place with Compare. Equal pairs keep their input order.
func Sort(pairs []*Pair) {
	slices.SortStableFunc(pairs, Compare)
}
