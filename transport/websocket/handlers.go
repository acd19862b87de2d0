package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-socket/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-socket/internal/entity"
	"github.com/rocketscienceinc/tictactoe-socket/internal/events"
)

const (
	roomFullMessage     = "Room is full please choose another room to play!"
	roomFailureMessage  = "Could not join the room, please try again!"
	opponentLeftMessage = "Your opponent left the game. Waiting for another player to join!"
)

func (that *Server) handleJoinGame(ctx context.Context, sess *session, payload json.RawMessage) error {
	log := that.logger.With("method", "handleJoinGame", "playerID", sess.playerID)

	var req entity.JoinRoom
	if err := entity.DecodePayload(payload, &req); err != nil {
		return that.sendJoinError(sess, err.Error())
	}

	if sess.gameRoom != "" && sess.gameRoom != req.RoomID {
		that.leaveGameRoom(ctx, sess)
	}

	room, started, err := that.uRoom.JoinGame(ctx, req.RoomID, sess.playerID)
	if errors.Is(err, apperror.ErrRoomFull) {
		log.Info("room is full", "roomID", req.RoomID)
		return that.sendJoinError(sess, roomFullMessage)
	}

	if err != nil {
		_ = that.sendJoinError(sess, roomFailureMessage)
		return fmt.Errorf("failed to join game: %w", err)
	}

	sess.gameRoom = room.ID
	that.hub.join(gameKey(room.ID), sess.playerID, sess.conn)

	if err = sess.conn.Emit(events.RoomJoined, entity.RoomJoined{RoomID: room.ID}); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	log.Info("player joined room", "roomID", room.ID, "players", len(room.Players), "started", started)

	if started {
		return that.startGame(room)
	}

	return nil
}

// startGame - tells every connection in the room its symbol; x moves first.
func (that *Server) startGame(room *entity.Room) error {
	var errs []error

	for _, m := range that.hub.members(gameKey(room.ID)) {
		player, ok := room.Player(m.playerID)
		if !ok {
			continue
		}

		start := entity.StartGame{
			Start:  player.Symbol == room.Turn,
			Symbol: player.Symbol,
		}

		if err := m.conn.Emit(events.StartGame, start); err != nil {
			errs = append(errs, fmt.Errorf("player %s: %w", m.playerID, err))
		}
	}

	return errors.Join(errs...)
}

func (that *Server) handleUpdateGame(ctx context.Context, sess *session, payload json.RawMessage) error {
	if sess.gameRoom == "" {
		return apperror.ErrNotInRoom
	}

	var req entity.GameUpdate
	if err := entity.DecodePayload(payload, &req); err != nil {
		return err
	}

	room, move, err := that.uRoom.UpdateGame(ctx, sess.gameRoom, sess.playerID, req.Matrix)
	if err != nil {
		return fmt.Errorf("dropping update: %w", err)
	}

	that.logger.Debug("move accepted", "method", "handleUpdateGame",
		"roomID", room.ID, "playerID", sess.playerID, "row", move.Row, "column", move.Column, "symbol", move.Symbol)

	return that.hub.broadcast(gameKey(room.ID), sess.conn, events.OnGameUpdate, room.Board)
}

func (that *Server) handleGameWin(ctx context.Context, sess *session, payload json.RawMessage) error {
	if sess.gameRoom == "" {
		return apperror.ErrNotInRoom
	}

	var req entity.GameWin
	if err := entity.DecodePayload(payload, &req); err != nil {
		return err
	}

	room, err := that.uRoom.FinishGame(ctx, sess.gameRoom, sess.playerID)
	if err != nil {
		return fmt.Errorf("dropping game result: %w", err)
	}

	that.logger.Info("game over", "method", "handleGameWin", "roomID", room.ID, "winner", room.Winner)

	return that.hub.broadcast(gameKey(room.ID), sess.conn, events.OnGameWin, req.Message)
}

func (that *Server) handleJoinChat(ctx context.Context, sess *session, payload json.RawMessage) error {
	var req entity.JoinChat
	if err := entity.DecodePayload(payload, &req); err != nil {
		return err
	}

	history, err := that.uChat.JoinChat(ctx, req.RoomID)
	if err != nil {
		return fmt.Errorf("failed to join chat: %w", err)
	}

	if sess.chatRoom != "" && sess.chatRoom != req.RoomID {
		that.hub.leave(chatKey(sess.chatRoom), sess.conn)
	}

	sess.chatRoom = req.RoomID
	that.hub.join(chatKey(req.RoomID), sess.playerID, sess.conn)

	return sess.conn.Emit(events.ChatJoined, entity.ChatJoined{RoomID: req.RoomID, History: history})
}

func (that *Server) handleMessage(ctx context.Context, sess *session, payload json.RawMessage) error {
	if sess.chatRoom == "" {
		return apperror.ErrNotInRoom
	}

	var req entity.SendMessage
	if err := entity.DecodePayload(payload, &req); err != nil {
		return err
	}

	message, err := that.uChat.Send(ctx, sess.chatRoom, sess.playerID, req.Message)
	if err != nil {
		return fmt.Errorf("failed to send chat message: %w", err)
	}

	return that.hub.broadcast(chatKey(sess.chatRoom), sess.conn, events.OnMessage, message)
}

func (that *Server) handleDisconnect(ctx context.Context, sess *session) {
	log := that.logger.With("method", "handleDisconnect", "playerID", sess.playerID)

	that.leaveGameRoom(ctx, sess)

	if sess.chatRoom != "" {
		that.hub.leave(chatKey(sess.chatRoom), sess.conn)
		sess.chatRoom = ""
	}

	log.Info("player disconnected")
}

func (that *Server) leaveGameRoom(ctx context.Context, sess *session) {
	if sess.gameRoom == "" {
		return
	}

	roomID := sess.gameRoom
	sess.gameRoom = ""

	that.hub.leave(gameKey(roomID), sess.conn)

	room, err := that.uRoom.LeaveGame(ctx, roomID, sess.playerID)
	if err != nil {
		that.logger.Error("failed to leave game", "roomID", roomID, "playerID", sess.playerID, "error", err)
		return
	}

	if room == nil || room.IsEmpty() {
		return
	}

	// whoever stays is back to waiting for an opponent
	notice := entity.RoomJoined{RoomID: room.ID, Message: opponentLeftMessage}
	if err = that.hub.broadcast(gameKey(roomID), nil, events.RoomJoined, notice); err != nil {
		that.logger.Error("failed to notify remaining player", "roomID", roomID, "error", err)
	}
}

func (that *Server) sendJoinError(sess *session, message string) error {
	if err := sess.conn.Emit(events.RoomJoinError, entity.RoomJoinError{Error: message}); err != nil {
		return fmt.Errorf("failed to send join error: %w", err)
	}

	return nil
}
