package engine

import (
	"github.com/kiryu-dev/tic-tac-toe-web/internal/domain"
)

const (
	winScore  = 1
	lossScore = -1
	tieScore  = 0
)

// NoMove is the Index of a Choice made on an already terminal board.
const NoMove = -1

type Choice struct {
	Index int `json:"index"`
	Score int `json:"score"`
}

// SelectMove searches the whole remaining game tree and picks the best cell for opponent to play next.
// Score is +1 when opponent can force a win, -1 when other can, 0 for a forced tie.
// Among equally scored moves the lowest index wins.
//
// The board must not be terminal: on a decided board the returned Index is NoMove.
func SelectMove(board domain.Board, opponent, other domain.Cell) Choice {
	switch DetectWinner(board) {
	case opponent:
		return Choice{Index: NoMove, Score: winScore}
	case other:
		return Choice{Index: NoMove, Score: lossScore}
	}
	open := OpenCells(board)
	if len(open) == 0 {
		return Choice{Index: NoMove, Score: tieScore}
	}
	best := Choice{Index: NoMove, Score: lossScore - 1}
	for _, idx := range open {
		next := board
		next[idx] = opponent
		/* the reply is searched from other's side, so its score is negated back */
		score := -SelectMove(next, other, opponent).Score
		if score > best.Score {
			best = Choice{Index: idx, Score: score}
		}
		if score == winScore {
			break
		}
	}
	if best.Index == NoMove {
		best.Index = open[0]
	}
	return best
}
