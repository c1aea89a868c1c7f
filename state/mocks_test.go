package state

import "fmt"

type sentMessage struct {
	to      string // empty for broadcasts
	except  string
	msgID   uint16
	payload any
}

// mockRoom is a RoomContext that records every notification.
type mockRoom struct {
	id     string
	roster *Roster
	rand   Rand
	sent   []sentMessage
	ended  []Outcome
}

func newMockRoom(players ...string) *mockRoom {
	r := &mockRoom{id: "ABCDE", roster: NewRoster(), rand: &seqRand{}}
	for _, id := range players {
		r.roster.Add(&Player{ID: id, Name: "name-" + id})
	}
	return r
}

func (r *mockRoom) GetID() string      { return r.id }
func (r *mockRoom) GetRoster() *Roster { return r.roster }
func (r *mockRoom) GetRand() Rand      { return r.rand }

func (r *mockRoom) Broadcast(msgID uint16, payload any) error {
	r.sent = append(r.sent, sentMessage{msgID: msgID, payload: payload})
	return nil
}

func (r *mockRoom) SendTo(playerID string, msgID uint16, payload any) error {
	r.sent = append(r.sent, sentMessage{to: playerID, msgID: msgID, payload: payload})
	return nil
}

func (r *mockRoom) SendExcept(playerID string, msgID uint16, payload any) error {
	r.sent = append(r.sent, sentMessage{except: playerID, msgID: msgID, payload: payload})
	return nil
}

func (r *mockRoom) EndGame(outcome Outcome) {
	r.ended = append(r.ended, outcome)
}

// join adds a player the way room.Room does.
func (r *mockRoom) join(g Game, id string) *Player {
	p := &Player{ID: id, Name: "name-" + id}
	r.roster.Add(p)
	g.OnJoin(r, p)
	return p
}

func (r *mockRoom) leave(g Game, id string) {
	p, _ := r.roster.Remove(id)
	g.OnLeave(r, p)
}

func (r *mockRoom) last(msgID uint16) (sentMessage, bool) {
	for i := len(r.sent) - 1; i >= 0; i-- {
		if r.sent[i].msgID == msgID {
			return r.sent[i], true
		}
	}
	return sentMessage{}, false
}

func (r *mockRoom) count(msgID uint16) int {
	n := 0
	for _, m := range r.sent {
		if m.msgID == msgID {
			n++
		}
	}
	return n
}

// seqRand replays values in order, each reduced modulo n.
type seqRand struct {
	values []int
	next   int
}

func (s *seqRand) Intn(n int) int {
	if n <= 0 {
		panic(fmt.Sprintf("invalid argument to Intn: %d", n))
	}
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.next%len(s.values)]
	s.next++
	return v % n
}
