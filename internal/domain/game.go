package domain

import (
	"github.com/pkg/errors"
)

var ErrUnknownCell = errors.New("unknown cell value")

type Cell byte

const (
	None = Cell(' ')
	X    = Cell('X')
	O    = Cell('O')
)

const BoardSize = 9

// Board is the 3x3 grid in row-major order: 0,1,2 is the top row, 6,7,8 the bottom one.
type Board [BoardSize]Cell

func NewBoard() Board {
	var board Board
	for i := range board {
		board[i] = None
	}
	return board
}

// Opposite returns the other mark. None stays None.
func (c Cell) Opposite() Cell {
	switch c {
	case X:
		return O
	case O:
		return X
	default:
		return None
	}
}

func (c Cell) IsMark() bool {
	return c == X || c == O
}

func (c Cell) String() string {
	if c.IsMark() {
		return string(rune(c))
	}
	return ""
}

func (c Cell) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}

func (c *Cell) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `null`, `""`, `" "`:
		*c = None
	case `"X"`, `"x"`:
		*c = X
	case `"O"`, `"o"`:
		*c = O
	default:
		return errors.WithMessagef(ErrUnknownCell, "%s", data)
	}
	return nil
}

type GameResult byte

const (
	NoResult = GameResult(iota)
	WinX
	WinO
	Tie
)

func (r GameResult) IsTerminal() bool {
	return r != NoResult
}

// Winner returns the winning mark, None for a tie or an unfinished game.
func (r GameResult) Winner() Cell {
	switch r {
	case WinX:
		return X
	case WinO:
		return O
	default:
		return None
	}
}

func (r GameResult) String() string {
	switch r {
	case WinX:
		return "X"
	case WinO:
		return "O"
	case Tie:
		return "tie"
	default:
		return ""
	}
}

func (r GameResult) MarshalJSON() ([]byte, error) {
	return []byte(`"` + r.String() + `"`), nil
}

func (r *GameResult) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `null`, `""`:
		*r = NoResult
	case `"X"`:
		*r = WinX
	case `"O"`:
		*r = WinO
	case `"tie"`:
		*r = Tie
	default:
		return errors.Errorf("unknown game result %s", data)
	}
	return nil
}

type Mode string

const (
	SinglePlayer = Mode("single")
	TwoPlayer    = Mode("two")
)

func (m Mode) Valid() bool {
	return m == SinglePlayer || m == TwoPlayer
}

// Scores is the tally of finished rounds; it survives restarts and is reset on mode change.
type Scores struct {
	X   int `json:"X"`
	O   int `json:"O"`
	Tie int `json:"tie"`
}

// Record counts one finished round. NoResult is ignored.
func (s *Scores) Record(result GameResult) {
	switch result {
	case WinX:
		s.X++
	case WinO:
		s.O++
	case Tie:
		s.Tie++
	}
}

// State is a read-only snapshot of a session, sent to clients on every change.
type State struct {
	Board  Board      `json:"board"`
	XNext  bool       `json:"xNext"`
	Mode   Mode       `json:"mode"`
	Winner GameResult `json:"winner"`
	Active bool       `json:"active"`
	Scores Scores     `json:"scores"`
	Status string     `json:"status"`
}

// Profile is the part of a session that outlives it.
type Profile struct {
	Mode   Mode   `json:"mode"`
	Scores Scores `json:"scores"`
}

func DefaultProfile() Profile {
	return Profile{Mode: SinglePlayer}
}
