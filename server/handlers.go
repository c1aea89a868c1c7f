package server

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/wfunc/partyserver/logger"
	"github.com/wfunc/partyserver/network"
	"github.com/wfunc/partyserver/room"
	"github.com/wfunc/partyserver/session"
	"github.com/wfunc/partyserver/state"
)

var errMalformedPayload = state.InvalidParameters("Malformed payload")

// handlePacket is the error boundary for one inbound event: every failure,
// panics included, is reported to the sender only.
func (s *GameServer) handlePacket(sess *session.Session, packet *network.Packet) {
	start := time.Now()
	s.monitor.IncMessagesReceived(network.MsgName(packet.MsgID))

	defer func() {
		if rec := recover(); rec != nil {
			logger.Log.Errorf("Recovered panic handling %s from %s: %v", network.MsgName(packet.MsgID), sess.GetID(), rec)
			s.sendError(sess, state.ErrServer)
		}
		s.monitor.ObserveMessageLatency(time.Since(start))
	}()

	var err error
	switch packet.MsgID {
	case network.MsgTypeHeartbeat:
	case network.MsgTypeCreateRoom:
		err = s.handleCreateRoom(sess, packet.Data)
	case network.MsgTypeJoinRoom:
		err = s.handleJoinRoom(sess, packet.Data)
	case network.MsgTypeLeaveRoom:
		err = s.handleLeaveRoom(sess)
	default:
		err = s.handleGameAction(sess, packet.MsgID, packet.Data)
	}

	if err != nil {
		s.sendError(sess, err)
	}
}

func decode(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errMalformedPayload
	}
	return nil
}

// handleCreateRoom 创建房间并让创建者加入
func (s *GameServer) handleCreateRoom(sess *session.Session, data []byte) error {
	var req network.CreateRoomRequest
	if err := decode(data, &req); err != nil {
		return err
	}
	if req.PlayerName == "" {
		return state.InvalidParameters("Invalid create parameters")
	}
	variant := state.Variant(req.Variant)
	if variant == "" {
		variant = state.VariantImpostor
	}

	r, err := s.roomManager.CreateRoom(variant)
	if err != nil {
		return err
	}
	s.monitor.IncRoomsCreated(string(variant))
	logger.Log.Infof("Session %s created room %s", sess.GetID(), r.Code)

	if err := s.reply(sess, network.MsgTypeRoomCreated, network.RoomCreatedResponse{Code: r.Code}); err != nil {
		s.roomManager.RemoveRoom(r.Code)
		return err
	}
	if err := s.joinRoom(sess, r, req.PlayerName); err != nil {
		s.roomManager.RemoveRoom(r.Code)
		return err
	}
	return nil
}

func (s *GameServer) handleJoinRoom(sess *session.Session, data []byte) error {
	var req network.JoinRoomRequest
	if err := decode(data, &req); err != nil {
		return err
	}
	if req.Code == "" || req.PlayerName == "" {
		return state.InvalidParameters("Invalid join parameters")
	}

	r, exists := s.roomManager.GetRoom(strings.ToUpper(req.Code))
	if !exists {
		return state.ErrRoomNotFound
	}
	return s.joinRoom(sess, r, req.PlayerName)
}

// joinRoom adds the session to r, then leaves the room it was in before, if any.
func (s *GameServer) joinRoom(sess *session.Session, r *room.Room, name string) error {
	previous, _ := s.index.RoomOf(sess.GetID())

	if err := r.Do(func(r *room.Room) error { return r.Join(sess.GetID(), name) }); err != nil {
		return err
	}
	logger.Log.Infof("Session %s joined room %s", sess.GetID(), r.Code)

	if previous != "" && previous != r.Code {
		s.removeFromRoom(sess.GetID(), previous)
	}
	return nil
}

func (s *GameServer) handleLeaveRoom(sess *session.Session) error {
	code, ok := s.index.Unbind(sess.GetID())
	if !ok {
		return state.ErrPlayerNotInRoom
	}
	s.removeFromRoom(sess.GetID(), code)
	return nil
}

// disconnect unbinds the index before anything else so the cleanup holds
// even when the room is already gone.
func (s *GameServer) disconnect(sess *session.Session) {
	code, ok := s.index.Unbind(sess.GetID())
	if !ok {
		return
	}
	s.removeFromRoom(sess.GetID(), code)
}

// removeFromRoom drops connID from the roster and deletes the room once empty.
func (s *GameServer) removeFromRoom(connID, code string) {
	r, exists := s.roomManager.GetRoom(code)
	if !exists {
		return
	}

	var empty bool
	err := r.Do(func(r *room.Room) error {
		empty = r.Leave(connID)
		return nil
	})
	if err != nil {
		logger.Log.Warnf("Removing %s from room %s: %v", connID, code, err)
		return
	}
	if empty {
		s.roomManager.RemoveRoom(code)
	}
}

// actionFor maps a message id to the game action it carries.
func actionFor(msgID uint16, req network.ActionRequest) (state.Action, bool) {
	switch msgID {
	case network.MsgTypeStartGame:
		return state.StartGame{}, true
	case network.MsgTypeCompleteTask:
		return state.CompleteTask{Task: req.Task}, true
	case network.MsgTypeSabotage:
		return state.Sabotage{System: req.System}, true
	case network.MsgTypeCallMeeting:
		return state.CallMeeting{}, true
	case network.MsgTypeVote:
		return state.CastVote{TargetID: req.TargetID}, true
	case network.MsgTypeChooseCelebrity:
		return state.ChooseCelebrity{CelebrityID: req.CelebrityID}, true
	case network.MsgTypeAskQuestion:
		return state.AskQuestion{Category: req.Category}, true
	case network.MsgTypeMakeGuess:
		return state.MakeGuess{CelebrityID: req.CelebrityID}, true
	default:
		return nil, false
	}
}

func (s *GameServer) handleGameAction(sess *session.Session, msgID uint16, data []byte) error {
	var req network.ActionRequest
	if err := decode(data, &req); err != nil {
		return err
	}
	action, ok := actionFor(msgID, req)
	if !ok {
		logger.Log.Infof("Unknown message type: %d", msgID)
		return state.ErrUnsupportedAction
	}

	code := strings.ToUpper(req.Code)
	if code == "" {
		bound, ok := s.index.RoomOf(sess.GetID())
		if !ok {
			return state.ErrPlayerNotInRoom
		}
		code = bound
	}

	r, exists := s.roomManager.GetRoom(code)
	if !exists {
		return state.ErrRoomNotFound
	}
	return r.Do(func(r *room.Room) error { return r.Apply(sess.GetID(), action) })
}

func (s *GameServer) reply(sess *session.Session, msgID uint16, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return sess.Send(msgID, data)
}

func errorResponse(err error) network.ErrorResponse {
	var gameErr *state.Error
	if errors.As(err, &gameErr) && gameErr.Kind != state.KindServerError {
		return network.ErrorResponse{Code: gameErr.Kind, Message: gameErr.Message}
	}
	return network.ErrorResponse{Code: state.KindServerError, Message: state.ErrServer.Message}
}

// sendError reports err to the originating connection only.
func (s *GameServer) sendError(sess *session.Session, err error) {
	resp := errorResponse(err)
	if resp.Code == state.KindServerError {
		logger.Log.Errorf("Session %s: %v", sess.GetID(), err)
	} else {
		logger.Log.Debugf("Session %s: %s", sess.GetID(), resp.Message)
	}
	s.monitor.IncErrors(resp.Code)

	if err := s.reply(sess, network.MsgTypeServerError, resp); err != nil {
		logger.Log.Warnf("Failed to send error to %s: %v", sess.GetID(), err)
	}
}
