package resolver

// Tally returns the target with the highest vote count. Distinct targets are
// ranked by the order in which they first appear when scanning the ballots in
// voter slot order; on a tie the earliest of them wins. ok is false when no
// ballots were cast.
func Tally(ballots []Ballot) (target string, count int, ok bool) {
	counts := make(map[string]int)
	var seen []string
	for _, b := range ballots {
		if _, exists := counts[b.TargetID]; !exists {
			seen = append(seen, b.TargetID)
		}
		counts[b.TargetID]++
	}

	for _, id := range seen {
		if counts[id] > count {
			target, count = id, counts[id]
		}
	}
	return target, count, count > 0
}

// QuorumReached reports whether every current roster member has voted.
func QuorumReached(voters, rosterSize int) bool {
	return rosterSize > 0 && voters >= rosterSize
}

// NextTurn returns the id following current in join order, wrapping around.
// An unknown current id hands the turn to the first player.
func NextTurn(order []string, current string) string {
	if len(order) == 0 {
		return ""
	}
	for i, id := range order {
		if id == current {
			return order[(i+1)%len(order)]
		}
	}
	return order[0]
}

// Answer is the reply to "is your celebrity a <asked>?".
func Answer(hiddenCategory, asked string) bool {
	return hiddenCategory == asked
}

// Categorized is anything in the identity pool that has an id and a category.
type Categorized interface {
	GetID() string
	GetCategory() string
}

// Eliminate returns the ids of every pool entry in category, in pool order.
func Eliminate[T Categorized](pool []T, category string) []string {
	var ids []string
	for _, c := range pool {
		if c.GetCategory() == category {
			ids = append(ids, c.GetID())
		}
	}
	return ids
}

// Guess reports whether guess names the hidden identity.
func Guess(guess, hidden string) bool {
	return hidden != "" && guess == hidden
}
