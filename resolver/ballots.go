// Package resolver holds the pure decision functions used by the game state
// machines: vote tallying, quorum, turn order and guess evaluation.
package resolver

// Ballot is a single (voter, target) pair.
type Ballot struct {
	VoterID  string `json:"voterId"`
	TargetID string `json:"targetId"`
}

// Ballots is an ordered voter -> target mapping. A voter keeps the slot of
// their first vote when they change it, so iteration order is stable for the
// whole round.
type Ballots struct {
	order   []string
	targets map[string]string
}

func NewBallots() *Ballots {
	return &Ballots{targets: make(map[string]string)}
}

// Cast records or overwrites the vote of voterID.
func (b *Ballots) Cast(voterID, targetID string) {
	if _, ok := b.targets[voterID]; !ok {
		b.order = append(b.order, voterID)
	}
	b.targets[voterID] = targetID
}

// Remove drops the ballot cast by voterID, if any.
func (b *Ballots) Remove(voterID string) bool {
	if _, ok := b.targets[voterID]; !ok {
		return false
	}
	delete(b.targets, voterID)
	for i, id := range b.order {
		if id == voterID {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	return true
}

// RemoveTarget drops every ballot naming targetID and returns the voters who
// lost their vote.
func (b *Ballots) RemoveTarget(targetID string) []string {
	var voters []string
	for _, voter := range b.order {
		if b.targets[voter] == targetID {
			voters = append(voters, voter)
		}
	}
	for _, voter := range voters {
		b.Remove(voter)
	}
	return voters
}

// Target returns the current vote of voterID.
func (b *Ballots) Target(voterID string) (string, bool) {
	t, ok := b.targets[voterID]
	return t, ok
}

// Len is the number of distinct voters.
func (b *Ballots) Len() int {
	return len(b.order)
}

// Clear empties the round.
func (b *Ballots) Clear() {
	b.order = nil
	b.targets = make(map[string]string)
}

// List returns the ballots in voter slot order.
func (b *Ballots) List() []Ballot {
	list := make([]Ballot, 0, len(b.order))
	for _, voter := range b.order {
		list = append(list, Ballot{VoterID: voter, TargetID: b.targets[voter]})
	}
	return list
}
