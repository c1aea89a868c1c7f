package session

import (
	"sort"
	"sync"
)

// Index maps a connection to the room it is currently in, and a room code
// back to its connections. A connection is bound to at most one room.
type Index struct {
	roomOf  map[string]string
	members map[string]map[string]struct{}
	mutex   sync.RWMutex
}

func NewIndex() *Index {
	return &Index{
		roomOf:  make(map[string]string),
		members: make(map[string]map[string]struct{}),
	}
}

// Bind records that connID belongs to code, moving it out of any previous
// room. It returns the previous room code, or "" if there was none.
func (i *Index) Bind(connID, code string) string {
	i.mutex.Lock()
	defer i.mutex.Unlock()

	previous := i.roomOf[connID]
	if previous == code {
		return previous
	}
	if previous != "" {
		i.detach(connID, previous)
	}
	i.roomOf[connID] = code
	if i.members[code] == nil {
		i.members[code] = make(map[string]struct{})
	}
	i.members[code][connID] = struct{}{}
	return previous
}

// Unbind forgets connID and returns the room it was bound to.
func (i *Index) Unbind(connID string) (string, bool) {
	i.mutex.Lock()
	defer i.mutex.Unlock()

	code, ok := i.roomOf[connID]
	if !ok {
		return "", false
	}
	i.detach(connID, code)
	return code, true
}

// UnbindFrom unbinds connID only while it is still bound to code.
func (i *Index) UnbindFrom(connID, code string) bool {
	i.mutex.Lock()
	defer i.mutex.Unlock()

	if i.roomOf[connID] != code {
		return false
	}
	i.detach(connID, code)
	return true
}

func (i *Index) RoomOf(connID string) (string, bool) {
	i.mutex.RLock()
	defer i.mutex.RUnlock()
	code, ok := i.roomOf[connID]
	return code, ok
}

// Members returns the connections bound to code, sorted.
func (i *Index) Members(code string) []string {
	i.mutex.RLock()
	defer i.mutex.RUnlock()

	ids := make([]string, 0, len(i.members[code]))
	for id := range i.members[code] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// must hold mutex
func (i *Index) detach(connID, code string) {
	delete(i.roomOf, connID)
	if set, ok := i.members[code]; ok {
		delete(set, connID)
		if len(set) == 0 {
			delete(i.members, code)
		}
	}
}
