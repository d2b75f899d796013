package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiryu-dev/tic-tac-toe-web/internal/domain"
)

const (
	x = domain.X
	o = domain.O
	n = domain.None
)

func TestDetectWinner(t *testing.T) {
	tests := []struct {
		name  string
		board domain.Board
		want  domain.Cell
	}{
		{
			name:  "empty board",
			board: domain.NewBoard(),
			want:  n,
		},
		{
			name: "top row X",
			board: domain.Board{
				x, x, x,
				o, o, n,
				n, n, n,
			},
			want: x,
		},
		{
			name: "middle column O",
			board: domain.Board{
				x, o, n,
				n, o, x,
				x, o, n,
			},
			want: o,
		},
		{
			name: "anti-diagonal O",
			board: domain.Board{
				x, x, o,
				n, o, n,
				o, n, x,
			},
			want: o,
		},
		{
			name: "full board without a line",
			board: domain.Board{
				x, o, x,
				x, o, o,
				o, x, x,
			},
			want: n,
		},
		{
			name: "two in a row is not a win",
			board: domain.Board{
				x, x, n,
				o, o, n,
				n, n, n,
			},
			want: n,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectWinner(tt.board))
		})
	}
}

func TestDetectWinnerEveryLine(t *testing.T) {
	for _, mark := range []domain.Cell{x, o} {
		for _, line := range lines {
			board := domain.NewBoard()
			for _, idx := range line {
				board[idx] = mark
			}
			assert.Equal(t, mark, DetectWinner(board), "line %v", line)
		}
	}
}

func TestDetectWinnerIgnoresMixedLines(t *testing.T) {
	for _, line := range lines {
		board := domain.NewBoard()
		board[line[0]] = x
		board[line[1]] = o
		board[line[2]] = x
		assert.Equal(t, n, DetectWinner(board), "line %v", line)
	}
}

func TestDetectWinnerDoesNotMutate(t *testing.T) {
	board := domain.Board{
		x, x, x,
		o, o, n,
		n, n, n,
	}
	before := board
	DetectWinner(board)
	OpenCells(board)
	IsFull(board)
	require.Equal(t, before, board)
}

func TestOpenCells(t *testing.T) {
	board := domain.Board{
		x, n, o,
		n, x, n,
		o, n, n,
	}
	assert.Equal(t, []int{1, 3, 5, 7, 8}, OpenCells(board))
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8}, OpenCells(domain.NewBoard()))
}

func TestFullBoardWithoutWinnerIsTie(t *testing.T) {
	board := domain.Board{
		x, o, x,
		x, o, o,
		o, x, x,
	}
	assert.Equal(t, n, DetectWinner(board))
	assert.True(t, IsFull(board))
	assert.Empty(t, OpenCells(board))
	assert.Equal(t, domain.Tie, Result(board))
}

func TestResult(t *testing.T) {
	assert.Equal(t, domain.NoResult, Result(domain.NewBoard()))
	assert.Equal(t, domain.WinX, Result(domain.Board{
		x, o, o,
		n, x, n,
		n, n, x,
	}))
	assert.Equal(t, domain.WinO, Result(domain.Board{
		x, x, o,
		x, o, n,
		o, n, n,
	}))
	// the last move may fill the board and complete a line
	assert.Equal(t, domain.WinX, Result(domain.Board{
		x, o, x,
		o, x, o,
		o, x, x,
	}))
}

// Every board reachable by alternating play, X first, stopping at terminal positions.
func reachableBoards() []domain.Board {
	seen := make(map[domain.Board]struct{})
	var out []domain.Board
	var walk func(board domain.Board, mover domain.Cell)
	walk = func(board domain.Board, mover domain.Cell) {
		if _, ok := seen[board]; ok {
			return
		}
		seen[board] = struct{}{}
		out = append(out, board)
		if Result(board).IsTerminal() {
			return
		}
		for _, idx := range OpenCells(board) {
			next := board
			next[idx] = mover
			walk(next, mover.Opposite())
		}
	}
	walk(domain.NewBoard(), x)
	return out
}

func TestEvaluatorInvariantsOnReachableBoards(t *testing.T) {
	boards := reachableBoards()
	require.Len(t, boards, 5478)
	for _, board := range boards {
		marks := 0
		for _, cell := range board {
			if cell.IsMark() {
				marks++
			}
		}
		open := OpenCells(board)
		require.Equal(t, domain.BoardSize, len(open)+marks)
		require.Equal(t, len(open) == 0, IsFull(board))
		for i := 1; i < len(open); i++ {
			require.Less(t, open[i-1], open[i])
		}
	}
}
