package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/DoyleJ11/quiz-buzzer-backend/internal/engine"
	"github.com/DoyleJ11/quiz-buzzer-backend/internal/lobby"
	"github.com/DoyleJ11/quiz-buzzer-backend/internal/results"
	"github.com/DoyleJ11/quiz-buzzer-backend/internal/ws"
)

type fakeLister struct {
	wins  []results.Win
	err   error
	limit int
}

func (f *fakeLister) Recent(_ context.Context, limit int) ([]results.Win, error) {
	f.limit = limit
	return f.wins, f.err
}

func newRouter(t *testing.T, store results.Lister, publicURL string) http.Handler {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	log := zaptest.NewLogger(t)
	lb := lobby.NewLobby(ctx, engine.NewSession(nil), log, nil)
	return SetupRoutes(Deps{
		Lobby:     lb,
		WS:        ws.Options{PingInterval: -1},
		Results:   store,
		PublicURL: publicURL,
		Log:       log,
	})
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealthz(t *testing.T) {
	rec := get(newRouter(t, nil, ""), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestMetricsExposed(t *testing.T) {
	rec := get(newRouter(t, nil, ""), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "quiz_connections")
}

func TestJoinQR(t *testing.T) {
	h := newRouter(t, nil, "https://quiz.example.com/")

	rec := get(h, "/qr")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "\x89PNG", rec.Body.String()[:4])

	rec = get(h, "/qr?size=5000")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = get(newRouter(t, nil, ""), "/qr?size=128")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRecentResults(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		rec := get(newRouter(t, nil, ""), "/results")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("lists wins", func(t *testing.T) {
		at := time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)
		store := &fakeLister{wins: []results.Win{{ID: 1, Winner: "Alice", Score: 10, TargetScore: 10, WonAt: at}}}
		rec := get(newRouter(t, store, ""), "/results?limit=5")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 5, store.limit)

		var body struct {
			Wins []results.Win `json:"wins"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Wins, 1)
		assert.Equal(t, "Alice", body.Wins[0].Winner)
		assert.True(t, at.Equal(body.Wins[0].WonAt))
	})

	t.Run("empty is an empty list", func(t *testing.T) {
		rec := get(newRouter(t, &fakeLister{}, ""), "/results")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"wins":[]}`, rec.Body.String())
	})

	t.Run("bad limit", func(t *testing.T) {
		rec := get(newRouter(t, &fakeLister{}, ""), "/results?limit=abc")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("store error", func(t *testing.T) {
		rec := get(newRouter(t, &fakeLister{err: errors.New("db down")}, ""), "/results")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestWSRequiresUpgrade(t *testing.T) {
	rec := get(newRouter(t, nil, ""), "/ws")
	assert.NotEqual(t, http.StatusSwitchingProtocols, rec.Code)
	assert.GreaterOrEqual(t, rec.Code, 400)
}
