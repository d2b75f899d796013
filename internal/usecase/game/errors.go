package game

import (
	"github.com/pkg/errors"
)

var (
	ErrOutOfRange  = errors.New("cell position is out of range")
	ErrOccupied    = errors.New("cell is already occupied")
	ErrGameOver    = errors.New("game is over")
	ErrNotYourTurn = errors.New("not your turn")
	ErrUnknownMode = errors.New("unknown play mode")
	ErrClosed      = errors.New("session is closed")
)
