package ws

import (
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/kiryu-dev/tic-tac-toe-web/internal/domain"
	"github.com/kiryu-dev/tic-tac-toe-web/internal/engine"
	"github.com/kiryu-dev/tic-tac-toe-web/pkg/utils"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

func (s *server) index(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Execute(w, nil); err != nil {
		s.logger.Warn("render index page", zap.Error(err))
	}
}

func clientKey(r *http.Request) string {
	if key := strings.TrimSpace(r.Header.Get(domain.ClientKeyHeader)); key != "" {
		return key
	}
	if key := strings.TrimSpace(r.URL.Query().Get(domain.ClientKeyQuery)); key != "" {
		return key
	}
	return uuid.NewString()
}

func (s *server) serveWs(w http.ResponseWriter, r *http.Request) {
	key := clientKey(r)
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade connection", zap.Error(err))
		return
	}
	client := newClient(conn, key)
	defer client.Close()
	s.logger.Info("new connection", zap.String("client", key))
	if err := s.hub.Handle(r.Context(), client); err != nil {
		s.logger.Error(err.Error(), zap.String("client", key))
	}
	s.logger.Info("connection closed", zap.String("client", key))
}

type healthResponse struct {
	Status string `json:"status"`
	domain.HubStats
}

func (s *server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	writeJson(w, http.StatusOK, healthResponse{Status: "ok", HubStats: s.hub.Stats()}, s.logger)
}

const maxMoveBodySize = 1 << 10

type selectMoveRequest struct {
	Board    []domain.Cell `json:"board"`
	Opponent domain.Cell   `json:"opponent"`
	Other    domain.Cell   `json:"other"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// selectMove answers which cell opponent should take next on the posted board.
func (s *server) selectMove(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxMoveBodySize))
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeJson(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "request body too large"}, s.logger)
		return
	}
	var req selectMoveRequest
	if err == nil {
		err = utils.Json.Unmarshal(data, &req)
	}
	if err != nil {
		writeJson(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"}, s.logger)
		return
	}
	if len(req.Board) != domain.BoardSize {
		writeJson(w, http.StatusBadRequest, errorResponse{Error: "board must have 9 cells"}, s.logger)
		return
	}
	if !req.Opponent.IsMark() || !req.Other.IsMark() || req.Opponent == req.Other {
		writeJson(w, http.StatusBadRequest, errorResponse{Error: "opponent and other must be distinct marks"}, s.logger)
		return
	}
	var board domain.Board
	copy(board[:], req.Board)
	if engine.Result(board).IsTerminal() {
		writeJson(w, http.StatusConflict, errorResponse{Error: "game is already over"}, s.logger)
		return
	}
	writeJson(w, http.StatusOK, engine.SelectMove(board, req.Opponent, req.Other), s.logger)
}

func writeJson(w http.ResponseWriter, status int, v any, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := utils.Json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("encode response", zap.Error(err))
	}
}
