package engine

import (
	"github.com/kiryu-dev/tic-tac-toe-web/internal/domain"
)

// Lines are checked rows first, then columns, then diagonals.
var lines = [8][3]uint8{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// DetectWinner returns the mark that fills one of the eight lines, or domain.None.
func DetectWinner(board domain.Board) domain.Cell {
	for _, line := range lines {
		first := board[line[0]]
		if !first.IsMark() {
			continue
		}
		if board[line[1]] == first && board[line[2]] == first {
			return first
		}
	}
	return domain.None
}

// OpenCells returns the indexes of empty cells in ascending order.
func OpenCells(board domain.Board) []int {
	open := make([]int, 0, domain.BoardSize)
	for i, cell := range board {
		if !cell.IsMark() {
			open = append(open, i)
		}
	}
	return open
}

func IsFull(board domain.Board) bool {
	for _, cell := range board {
		if !cell.IsMark() {
			return false
		}
	}
	return true
}

// Result derives the game result from the board. A completed line wins even on a full board.
func Result(board domain.Board) domain.GameResult {
	switch DetectWinner(board) {
	case domain.X:
		return domain.WinX
	case domain.O:
		return domain.WinO
	}
	if IsFull(board) {
		return domain.Tie
	}
	return domain.NoResult
}
