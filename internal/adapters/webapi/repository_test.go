package webapi

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kiryu-dev/tic-tac-toe-web/internal/adapters/memory"
	"github.com/kiryu-dev/tic-tac-toe-web/internal/domain"
	"github.com/kiryu-dev/tic-tac-toe-web/internal/engine"
	"github.com/kiryu-dev/tic-tac-toe-web/internal/transport/ws"
	"github.com/kiryu-dev/tic-tac-toe-web/internal/usecase/hub"
)

func newServer(t *testing.T) string {
	t.Helper()
	h := hub.New(memory.New(), hub.Options{AIDelay: time.Hour, SessionTTL: time.Minute}, zap.NewNop())
	srv := httptest.NewServer(ws.New(":0", h, zap.NewNop()).Handler())
	t.Cleanup(func() {
		srv.Close()
		h.Stop()
	})
	return srv.URL
}

func TestSelectMove(t *testing.T) {
	addr := newServer(t)
	board := domain.NewBoard()
	board[0], board[1] = domain.X, domain.X
	board[3], board[4] = domain.O, domain.O

	choice, err := New().SelectMove(context.Background(), addr, board, domain.X, domain.O)
	require.NoError(t, err)
	assert.Equal(t, engine.Choice{Index: 2, Score: 1}, choice)
}

func TestSelectMoveOnFinishedGame(t *testing.T) {
	addr := newServer(t)
	board := domain.NewBoard()
	board[0], board[1], board[2] = domain.X, domain.X, domain.X
	board[3], board[4] = domain.O, domain.O

	_, err := New().SelectMove(context.Background(), addr, board, domain.O, domain.X)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "game is already over")
}

func TestHealthCheck(t *testing.T) {
	addr := newServer(t)
	resp, err := New().HealthCheck(context.Background(), addr)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, domain.HubStats{}, resp.HubStats)
}

func TestUnreachableServer(t *testing.T) {
	_, err := New().HealthCheck(context.Background(), "http://127.0.0.1:1")
	assert.Error(t, err)
}
