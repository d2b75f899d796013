package game

import (
	"sync"
	"time"

	"github.com/kiryu-dev/tic-tac-toe-web/internal/domain"
	"github.com/kiryu-dev/tic-tac-toe-web/internal/engine"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	humanMark = domain.X
	aiMark    = domain.O
)

// Listener receives a snapshot after every change of a session. It is called without the session lock held.
type Listener func(state domain.State)

// Session is the authoritative state of one player's board: turn, mode, result and scores.
// It schedules the automated opponent in single player mode.
type Session struct {
	mu       sync.Mutex
	board    domain.Board
	xNext    bool
	mode     domain.Mode
	winner   domain.GameResult
	scores   domain.Scores
	aiDelay  time.Duration
	epoch    uint64
	timer    *time.Timer
	listener Listener
	closed   bool
	logger   *zap.Logger
}

func NewSession(profile domain.Profile, aiDelay time.Duration, logger *zap.Logger) *Session {
	if !profile.Mode.Valid() {
		profile.Mode = domain.SinglePlayer
	}
	return &Session{
		board:   domain.NewBoard(),
		xNext:   true,
		mode:    profile.Mode,
		scores:  profile.Scores,
		aiDelay: aiDelay,
		logger:  logger,
	}
}

// SetListener replaces the change listener; nil detaches it.
func (s *Session) SetListener(listener Listener) {
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()
}

// Click applies the current player's mark at position.
func (s *Session) Click(position int) error {
	s.mu.Lock()
	if err := s.validateClick(position); err != nil {
		s.mu.Unlock()
		return err
	}
	s.applyMoveLocked(position, s.currentMarkLocked())
	s.scheduleLocked()
	state, listener := s.snapshotLocked(), s.listener
	s.mu.Unlock()
	notify(listener, state)
	return nil
}

func (s *Session) validateClick(position int) error {
	switch {
	case s.closed:
		return ErrClosed
	case position < 0 || position >= domain.BoardSize:
		return errors.WithMessagef(ErrOutOfRange, "position %d", position)
	case s.winner.IsTerminal():
		return ErrGameOver
	case s.mode == domain.SinglePlayer && !s.xNext:
		return ErrNotYourTurn
	case s.board[position].IsMark():
		return errors.WithMessagef(ErrOccupied, "position %d", position)
	}
	return nil
}

// Restart clears the board and keeps the scores. A pending automated move is dropped.
func (s *Session) Restart() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.resetLocked()
	state, listener := s.snapshotLocked(), s.listener
	s.mu.Unlock()
	notify(listener, state)
	return nil
}

// ChangeMode switches the play mode, resetting scores and the board. Selecting the current mode does nothing.
func (s *Session) ChangeMode(mode domain.Mode) error {
	if !mode.Valid() {
		return errors.WithMessagef(ErrUnknownMode, "%q", mode)
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.mode == mode {
		s.mu.Unlock()
		return nil
	}
	s.mode = mode
	s.scores = domain.Scores{}
	s.resetLocked()
	state, listener := s.snapshotLocked(), s.listener
	s.mu.Unlock()
	notify(listener, state)
	return nil
}

// Close cancels a pending automated move and rejects further changes.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.listener = nil
	s.cancelLocked()
}

func (s *Session) Snapshot() domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) Profile() domain.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.Profile{Mode: s.mode, Scores: s.scores}
}

func (s *Session) currentMarkLocked() domain.Cell {
	if s.xNext {
		return domain.X
	}
	return domain.O
}

func (s *Session) applyMoveLocked(position int, mark domain.Cell) {
	s.board[position] = mark
	s.xNext = !s.xNext
	s.winner = engine.Result(s.board)
	if s.winner.IsTerminal() {
		s.scores.Record(s.winner)
		s.logger.Info("round finished",
			zap.Stringer("result", s.winner),
			zap.Any("scores", s.scores),
		)
	}
}

func (s *Session) resetLocked() {
	s.cancelLocked()
	s.board = domain.NewBoard()
	s.xNext = true
	s.winner = domain.NoResult
}

func (s *Session) aiTurnLocked() bool {
	return !s.closed && s.mode == domain.SinglePlayer && !s.winner.IsTerminal() && !s.xNext
}

func (s *Session) scheduleLocked() {
	if !s.aiTurnLocked() {
		return
	}
	s.cancelLocked()
	epoch := s.epoch
	s.timer = time.AfterFunc(s.aiDelay, func() {
		s.playAI(epoch)
	})
}

// cancelLocked invalidates every automated move scheduled so far.
func (s *Session) cancelLocked() {
	s.epoch++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Session) playAI(epoch uint64) {
	s.mu.Lock()
	if epoch != s.epoch || !s.aiTurnLocked() {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	choice := engine.SelectMove(s.board, aiMark, humanMark)
	if choice.Index < 0 || s.board[choice.Index].IsMark() {
		s.logger.Warn("automated move rejected", zap.Int("position", choice.Index))
		s.mu.Unlock()
		return
	}
	s.logger.Debug("automated move", zap.Int("position", choice.Index), zap.Int("score", choice.Score))
	s.applyMoveLocked(choice.Index, aiMark)
	state, listener := s.snapshotLocked(), s.listener
	s.mu.Unlock()
	notify(listener, state)
}

func (s *Session) snapshotLocked() domain.State {
	active := !s.winner.IsTerminal() && len(engine.OpenCells(s.board)) > 0
	return domain.State{
		Board:  s.board,
		XNext:  s.xNext,
		Mode:   s.mode,
		Winner: s.winner,
		Active: active,
		Scores: s.scores,
		Status: statusText(s.winner, active, s.mode, s.xNext),
	}
}

func notify(listener Listener, state domain.State) {
	if listener != nil {
		listener(state)
	}
}
