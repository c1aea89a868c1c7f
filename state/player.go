package state

// Role of a player in the impostor game.
type Role string

const (
	RoleNone     Role = ""
	RoleCrewmate Role = "crewmate"
	RoleImpostor Role = "impostor"
)

// Player is a member of a room, keyed by connection id.
type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role,omitempty"`
}

// GetID implements resolver lookups and broadcast targeting.
func (p *Player) GetID() string {
	return p.ID
}

// Roster is an ordered id -> player mapping. Iteration follows join order.
type Roster struct {
	order   []string
	players map[string]*Player
}

func NewRoster() *Roster {
	return &Roster{players: make(map[string]*Player)}
}

// Add appends p. It returns false if the id is already present.
func (r *Roster) Add(p *Player) bool {
	if _, exists := r.players[p.ID]; exists {
		return false
	}
	r.order = append(r.order, p.ID)
	r.players[p.ID] = p
	return true
}

// Remove deletes id and returns the removed player.
func (r *Roster) Remove(id string) (*Player, bool) {
	p, exists := r.players[id]
	if !exists {
		return nil, false
	}
	delete(r.players, id)
	for i, pid := range r.order {
		if pid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return p, true
}

func (r *Roster) Get(id string) (*Player, bool) {
	p, exists := r.players[id]
	return p, exists
}

func (r *Roster) Has(id string) bool {
	_, exists := r.players[id]
	return exists
}

func (r *Roster) Len() int {
	return len(r.order)
}

// At returns the i-th player in join order.
func (r *Roster) At(i int) *Player {
	return r.players[r.order[i]]
}

// IDs returns a copy of the join order.
func (r *Roster) IDs() []string {
	ids := make([]string, len(r.order))
	copy(ids, r.order)
	return ids
}

// Players returns the players in join order.
func (r *Roster) Players() []*Player {
	list := make([]*Player, 0, len(r.order))
	for _, id := range r.order {
		list = append(list, r.players[id])
	}
	return list
}

// View copies the roster for serialization. Roles are included only when
// withRoles is set.
func (r *Roster) View(withRoles bool) []Player {
	list := make([]Player, 0, len(r.order))
	for _, id := range r.order {
		p := *r.players[id]
		if !withRoles {
			p.Role = RoleNone
		}
		list = append(list, p)
	}
	return list
}
