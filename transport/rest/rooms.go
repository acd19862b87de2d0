package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rocketscienceinc/tictactoe-socket/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-socket/internal/entity"
	"github.com/rocketscienceinc/tictactoe-socket/internal/events"
)

// roomResponse - a room without player ids, which double as session cookies.
type roomResponse struct {
	ID      string        `json:"id"`
	Status  string        `json:"status"`
	Players int           `json:"players"`
	Board   entity.Board  `json:"board"`
	Turn    entity.Symbol `json:"turn"`
	Winner  entity.Symbol `json:"winner"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type roomHandler struct {
	logger *slog.Logger
	uRoom  uRoom
}

func newRoomHandler(logger *slog.Logger, uRoom uRoom) *roomHandler {
	return &roomHandler{
		logger: logger,
		uRoom:  uRoom,
	}
}

func (that *roomHandler) GetRoom(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "GetRoom")

	roomID := mux.Vars(r)["roomID"]

	room, err := that.uRoom.GetRoom(r.Context(), roomID)
	if errors.Is(err, apperror.ErrRoomNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "room not found"})
		return
	}

	if err != nil {
		log.Error("failed to get room", "roomID", roomID, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, roomResponse{
		ID:      room.ID,
		Status:  room.Status,
		Players: len(room.Players),
		Board:   room.Board,
		Turn:    room.Turn,
		Winner:  room.Winner,
	})
}

// eventsHandler - the socket event registry, so clients can check they speak the same names.
func eventsHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, events.Registry())
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
