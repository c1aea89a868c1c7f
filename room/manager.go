package room

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/wfunc/partyserver/logger"
	"github.com/wfunc/partyserver/state"
)

const (
	DefaultCodeLength = 5
	codeAlphabet      = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	maxCodeAttempts   = 100
)

// Options configure the rooms a Manager creates.
type Options struct {
	CodeLength int
	Game       state.Options
}

// Manager 管理所有房间
type Manager struct {
	rooms map[string]*Room
	mutex sync.RWMutex
	env   Env
	opts  Options
}

// NewRoomManager 创建一个新的房间管理器
func NewRoomManager(env Env, opts Options) *Manager {
	if env.Rand == nil {
		env.Rand = state.DefaultRand
	}
	if opts.CodeLength <= 0 {
		opts.CodeLength = DefaultCodeLength
	}
	return &Manager{
		rooms: make(map[string]*Room),
		env:   env,
		opts:  opts,
	}
}

// CreateRoom registers a new room under a code unique among active rooms.
func (m *Manager) CreateRoom(variant state.Variant) (*Room, error) {
	game, err := state.NewGame(variant, m.opts.Game)
	if err != nil {
		return nil, err
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := m.generateCode()
		if _, exists := m.rooms[code]; exists {
			continue
		}
		room := NewRoom(code, game, m.env)
		m.rooms[code] = room
		logger.Log.Infof("Room %s created (%s)", code, variant)
		return room, nil
	}
	return nil, fmt.Errorf("no free room code after %d attempts: %w", maxCodeAttempts, state.ErrServer)
}

func (m *Manager) generateCode() string {
	var sb strings.Builder
	sb.Grow(m.opts.CodeLength)
	for i := 0; i < m.opts.CodeLength; i++ {
		sb.WriteByte(codeAlphabet[m.env.Rand.Intn(len(codeAlphabet))])
	}
	return sb.String()
}

// GetRoom 从管理器中获取一个房间
func (m *Manager) GetRoom(code string) (*Room, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	room, exists := m.rooms[code]
	return room, exists
}

// RemoveRoom closes and unregisters a room. Unknown codes are ignored.
func (m *Manager) RemoveRoom(code string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if room, exists := m.rooms[code]; exists {
		room.Close()
		delete(m.rooms, code)
		logger.Log.Infof("Room %s deleted", code)
	}
}

// Count 活跃房间数
func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.rooms)
}

// Codes returns the active room codes, sorted.
func (m *Manager) Codes() []string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	codes := make([]string, 0, len(m.rooms))
	for code := range m.rooms {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// CloseAll shuts down every room, used on server shutdown.
func (m *Manager) CloseAll() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for code, room := range m.rooms {
		room.Close()
		delete(m.rooms, code)
	}
}
