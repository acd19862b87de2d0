package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-socket/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-socket/internal/entity"
	"github.com/rocketscienceinc/tictactoe-socket/internal/events"
)

var errRedisDown = errors.New("redis down")

type stubRooms struct {
	room *entity.Room
	err  error
}

func (that stubRooms) GetRoom(context.Context, string) (*entity.Room, error) {
	return that.room, that.err
}

func serve(t *testing.T, rooms uRoom, method, target string) *httptest.ResponseRecorder {
	t.Helper()

	router := NewRouter(slog.New(slog.NewTextHandler(io.Discard, nil)), rooms)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, target, nil))

	return rec
}

func TestPing(t *testing.T) {
	// When: /ping is requested
	rec := serve(t, stubRooms{}, http.MethodGet, "/ping")

	// Then: pong
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
}

func TestEvents(t *testing.T) {
	// When: /events is requested
	rec := serve(t, stubRooms{}, http.MethodGet, "/events")

	// Then: the whole registry is returned
	require.Equal(t, http.StatusOK, rec.Code)

	var registry map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &registry))
	assert.Len(t, registry, len(events.All()))
	assert.Equal(t, "on_game_update", registry["on_game_update"])
}

func TestGetRoom(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		// Given: a running room
		room := entity.NewRoom("lobby")
		_, err := room.Join("alice")
		require.NoError(t, err)
		_, err = room.Join("bob")
		require.NoError(t, err)

		// When: the room is requested
		rec := serve(t, stubRooms{room: room}, http.MethodGet, "/rooms/lobby")

		// Then: its state is returned without player ids
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, rec.Body.String(), "alice")

		var resp roomResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "lobby", resp.ID)
		assert.Equal(t, entity.StatusOngoing, resp.Status)
		assert.Equal(t, 2, resp.Players)
		assert.Equal(t, entity.X, resp.Turn)
	})

	t.Run("NotFound", func(t *testing.T) {
		rec := serve(t, stubRooms{err: apperror.ErrRoomNotFound}, http.MethodGet, "/rooms/missing")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("StorageError", func(t *testing.T) {
		rec := serve(t, stubRooms{err: errRedisDown}, http.MethodGet, "/rooms/lobby")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("WrongMethod", func(t *testing.T) {
		rec := serve(t, stubRooms{}, http.MethodPost, "/rooms/lobby")

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}
