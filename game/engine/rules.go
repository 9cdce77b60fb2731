package engine

// collisionOutcome reports which side of a collision is eliminated.
// At least one of the two fields is always true.
type collisionOutcome struct {
	attackerRemoved bool
	defenderRemoved bool
}

// Beats reports whether type a eliminates type b under the configured cyclic
// dominance order. With n types, the type at index i beats the types in the
// half-cycle following it: b at index j loses to a when (j-i) mod n is in
// 1..n/2. For the default three-type cycle this is exactly "each type beats
// its successor".
func (c *GameConfig) Beats(a, b MonsterType) bool {
	ia, ib := c.typeIndex(a), c.typeIndex(b)
	if ia < 0 || ib < 0 || ia == ib {
		return false
	}
	n := len(c.MonsterTypes)
	diff := ((ib - ia) % n + n) % n
	// Even cycle lengths leave the opposite type unresolved; that pair is
	// treated as mutual elimination, like equal types.
	if n%2 == 0 && diff == n/2 {
		return false
	}
	return diff <= n/2
}

// resolveCollision applies the elimination rules to an attacker moving onto a
// defender's cell. Equal types (and unresolved even-cycle pairs) destroy both
// monsters; otherwise exactly one side is removed.
func resolveCollision(c *GameConfig, attacker, defender MonsterType) collisionOutcome {
	switch {
	case c.Beats(attacker, defender):
		return collisionOutcome{defenderRemoved: true}
	case c.Beats(defender, attacker):
		return collisionOutcome{attackerRemoved: true}
	default:
		return collisionOutcome{attackerRemoved: true, defenderRemoved: true}
	}
}
