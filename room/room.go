// room/room.go
package room

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/wfunc/partyserver/logger"
	"github.com/wfunc/partyserver/models"
	"github.com/wfunc/partyserver/network"
	"github.com/wfunc/partyserver/state"
)

const (
	inboxSize     = 64
	recordTimeout = 5 * time.Second
)

// Env bundles the collaborators every room needs.
type Env struct {
	Broadcaster Broadcaster
	Membership  Membership
	Recorder    Recorder // optional
	Rand        state.Rand
}

type command struct {
	fn   func(*Room) error
	done chan error
}

// Room 是游戏房间的核心结构
//
// All state below the exported fields is owned by the room's goroutine and
// must only be touched from inside Do.
type Room struct {
	Code      string
	Game      state.Game
	CreatedAt time.Time

	roster    *state.Roster
	leaving   *state.Player // set while the game reacts to a departure
	env       Env
	closed    bool
	inbox     chan command
	closeChan chan struct{}
	closeOnce sync.Once
}

// NewRoom 创建一个新房间并启动它的处理协程
func NewRoom(code string, game state.Game, env Env) *Room {
	if env.Rand == nil {
		env.Rand = state.DefaultRand
	}
	r := &Room{
		Code:      code,
		Game:      game,
		CreatedAt: time.Now(),
		roster:    state.NewRoster(),
		env:       env,
		inbox:     make(chan command, inboxSize),
		closeChan: make(chan struct{}),
	}
	go r.loop()
	return r
}

// Do runs fn on the room's goroutine and returns its error. Calls are applied
// one at a time in arrival order. Once the room is closed Do returns
// state.ErrRoomNotFound without running fn.
func (r *Room) Do(fn func(*Room) error) error {
	cmd := command{fn: fn, done: make(chan error, 1)}
	select {
	case r.inbox <- cmd:
	case <-r.closeChan:
		return state.ErrRoomNotFound
	}

	select {
	case err := <-cmd.done:
		return err
	case <-r.closeChan:
		select {
		case err := <-cmd.done:
			return err
		default:
			return state.ErrRoomNotFound
		}
	}
}

// loop 是房间的主循环，串行执行所有命令
func (r *Room) loop() {
	for {
		select {
		case cmd := <-r.inbox:
			cmd.done <- r.exec(cmd.fn)
		case <-r.closeChan:
			return
		}
	}
}

func (r *Room) exec(fn func(*Room) error) (err error) {
	if r.closed {
		return state.ErrRoomNotFound
	}
	defer func() {
		if rec := recover(); rec != nil {
			logger.Log.Errorf("Recovered panic in room %s: %v", r.Code, rec)
			err = state.ErrServer
		}
	}()
	return fn(r)
}

// Close 关闭房间，停止主循环
func (r *Room) Close() {
	r.closeOnce.Do(func() { close(r.closeChan) })
}

// --- 实现 state.RoomContext 接口 ---

func (r *Room) GetID() string {
	return r.Code
}

func (r *Room) GetRoster() *state.Roster {
	return r.roster
}

func (r *Room) GetRand() state.Rand {
	return r.env.Rand
}

// Broadcast sends a message to every connection bound to the room.
func (r *Room) Broadcast(msgID uint16, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Log.Errorf("Error marshalling %s for room %s: %v", network.MsgName(msgID), r.Code, err)
		return err
	}
	return r.env.Broadcaster.BroadcastToRoom(r.Code, msgID, data)
}

func (r *Room) SendTo(playerID string, msgID uint16, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return r.env.Broadcaster.SendTo(playerID, msgID, data)
}

func (r *Room) SendExcept(playerID string, msgID uint16, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return r.env.Broadcaster.BroadcastExcept(r.Code, playerID, msgID, data)
}

// GameEndedPayload is broadcast when a game finishes.
type GameEndedPayload struct {
	Code    string        `json:"code"`
	Variant state.Variant `json:"variant"`
	state.Outcome
}

// EndGame announces the outcome and archives it in the background.
func (r *Room) EndGame(outcome state.Outcome) {
	logger.Log.Infof("Game ended in room %s: winner=%s reason=%s", r.Code, outcome.Winner, outcome.Reason)
	r.Broadcast(network.MsgTypeGameEnded, GameEndedPayload{
		Code:    r.Code,
		Variant: r.Game.Variant(),
		Outcome: outcome,
	})

	if r.env.Recorder == nil {
		return
	}
	record := r.buildRecord(outcome)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()
		if err := r.env.Recorder.SaveGameRecord(ctx, record); err != nil {
			logger.Log.Errorf("Failed to archive game of room %s: %v", r.Code, err)
		}
	}()
}

func (r *Room) buildRecord(outcome state.Outcome) *models.GameRecord {
	winners := make(map[string]bool, len(outcome.WinnerIDs))
	for _, id := range outcome.WinnerIDs {
		winners[id] = true
	}

	present := r.roster.Players()
	if r.leaving != nil {
		present = append(present, r.leaving)
	}
	players := make([]models.PlayerInfo, 0, len(present))
	for _, p := range present {
		result := models.OutcomeLose
		if winners[p.ID] {
			result = models.OutcomeWin
		}
		players = append(players, models.PlayerInfo{
			PlayerID: p.ID,
			Name:     p.Name,
			Role:     string(p.Role),
			Outcome:  result,
		})
	}

	return &models.GameRecord{
		RoomCode:  r.Code,
		Variant:   string(r.Game.Variant()),
		Winner:    outcome.Winner,
		Reason:    outcome.Reason,
		Players:   players,
		Reveal:    outcome.Reveal,
		CreatedAt: time.Now(),
	}
}

// --- 房间核心逻辑，均需在 Do 中调用 ---

// PlayerPayload is sent with playerJoined and playerLeft.
type PlayerPayload struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
}

// Join adds a player. Joining a room the player is already in is a no-op.
func (r *Room) Join(playerID, name string) error {
	if r.roster.Has(playerID) {
		r.env.Membership.Bind(playerID, r.Code)
		return nil
	}
	if capacity := r.Game.Capacity(); capacity > 0 && r.roster.Len() >= capacity {
		return state.ErrRoomFull
	}

	p := &state.Player{ID: playerID, Name: name}
	r.roster.Add(p)
	r.env.Membership.Bind(playerID, r.Code)

	r.Broadcast(network.MsgTypePlayerJoined, PlayerPayload{PlayerID: p.ID, Name: p.Name})
	r.Game.OnJoin(r, p)
	r.BroadcastUpdate()
	return nil
}

// Leave removes a player. It returns true when the roster is now empty;
// the room is then closed to further commands and must be removed from
// the registry.
func (r *Room) Leave(playerID string) bool {
	p, ok := r.roster.Remove(playerID)
	if !ok {
		return false
	}
	r.env.Membership.UnbindFrom(playerID, r.Code)

	if r.roster.Len() == 0 {
		r.closed = true
		return true
	}

	r.leaving = p
	r.Game.OnLeave(r, p)
	r.leaving = nil
	r.Broadcast(network.MsgTypePlayerLeft, PlayerPayload{PlayerID: p.ID, Name: p.Name})
	r.BroadcastUpdate()
	return false
}

// Apply hands a game action from playerID to the room's state machine.
func (r *Room) Apply(playerID string, action state.Action) error {
	if !r.roster.Has(playerID) {
		return state.ErrPlayerNotInRoom
	}
	return r.Game.HandleAction(r, playerID, action)
}

// Snapshot is the public state of a room. Roles are never included.
type Snapshot struct {
	Code      string         `json:"code"`
	Variant   state.Variant  `json:"variant"`
	Phase     state.Phase    `json:"phase"`
	Players   []state.Player `json:"players"`
	Game      any            `json:"game"`
	CreatedAt time.Time      `json:"createdAt"`
}

func (r *Room) Snapshot() Snapshot {
	return Snapshot{
		Code:      r.Code,
		Variant:   r.Game.Variant(),
		Phase:     r.Game.Phase(),
		Players:   r.roster.View(false),
		Game:      r.Game.View(),
		CreatedAt: r.CreatedAt,
	}
}

// BroadcastUpdate sends the current snapshot to the whole room.
func (r *Room) BroadcastUpdate() {
	r.Broadcast(network.MsgTypeRoomUpdate, r.Snapshot())
}
