package game

import (
	"github.com/kiryu-dev/tic-tac-toe-web/internal/domain"
)

const (
	TieStatus           = "It's a tie!"
	HumanWinStatus      = "You win!"
	AIWinStatus         = "AI wins!"
	PlayerOneWinStatus  = "Player 1 wins!"
	PlayerTwoWinStatus  = "Player 2 wins!"
	HumanTurnStatus     = "Your turn"
	AITurnStatus        = "AI's turn"
	PlayerOneTurnStatus = "Player 1's turn"
	PlayerTwoTurnStatus = "Player 2's turn"
)

func statusText(winner domain.GameResult, active bool, mode domain.Mode, xNext bool) string {
	single := mode == domain.SinglePlayer
	switch winner {
	case domain.Tie:
		return TieStatus
	case domain.WinX:
		if single {
			return HumanWinStatus
		}
		return PlayerOneWinStatus
	case domain.WinO:
		if single {
			return AIWinStatus
		}
		return PlayerTwoWinStatus
	}
	if !active {
		return ""
	}
	switch {
	case single && xNext:
		return HumanTurnStatus
	case single:
		return AITurnStatus
	case xNext:
		return PlayerOneTurnStatus
	default:
		return PlayerTwoTurnStatus
	}
}
