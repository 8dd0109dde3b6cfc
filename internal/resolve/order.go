package resolve

// NextPriority assigns a non-colliding priority for a logic rule.
//
// existing holds the priorities of the form's enabled rules as they are in
// the store; taken holds priorities already assigned to rules being
// inserted in the same pass. Deleting a rule in the same pass does not
// free its priority: freed values are never reused within a pass.
//
// With no desired value (desired <= 0) the assignment is max+1, or 1 when
// no priority exists anywhere. A desired value that collides is
// incremented until free, preserving relative order intent; it is never
// decremented.
//
// Pure with respect to its inputs: the same inputs always produce the
// same assignment.
func NextPriority(existing, taken []int, desired int) int {
	used := make(map[int]bool, len(existing)+len(taken))
	max := 0
	for _, p := range existing {
		used[p] = true
		if p > max {
			max = p
		}
	}
	for _, p := range taken {
		used[p] = true
		if p > max {
			max = p
		}
	}

	if desired <= 0 {
		return max + 1
	}
	p := desired
	for used[p] {
		p++
	}
	return p
}

// NextPosition assigns the next ordering position in a collection:
// max+1 over existing and in-batch positions, or 1 when empty. Positions
// are never renumbered on delete or deactivate; gaps are acceptable.
func NextPosition(existing, taken []int) int {
	max := 0
	for _, p := range existing {
		if p > max {
			max = p
		}
	}
	for _, p := range taken {
		if p > max {
			max = p
		}
	}
	return max + 1
}
