package entity

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/edwintcloud/tictactoe/internal/apperror"
	"github.com/edwintcloud/tictactoe/internal/engine"
)

const (
	StatusFinished = "finished"
	StatusOngoing  = "ongoing"
	StatusWaiting  = "waiting"

	PlayerTie = "-"
)

const (
	PrivateType = "private"
	PublicType  = "public"
	WithBotType = "bot"
)

var ErrUnknownGameStatus = errors.New("unknown game status")

type Game struct {
	ID      string       `json:"id"`
	Board   engine.Board `json:"board"`
	Winner  string       `json:"winner"`
	Status  string       `json:"status"`
	Turn    engine.Mark  `json:"player_turn"`
	Players []*Player    `json:"players,omitempty"`
	Type    string       `json:"type,omitempty"`
}

func NewGame(id, gameType string) *Game {
	board := engine.InitialState()

	return &Game{
		ID:     id,
		Board:  board,
		Turn:   engine.CurrentPlayer(board),
		Status: StatusWaiting,
		Type:   gameType,
	}
}

// DetermineGameResult returns the winning mark, PlayerTie for a draw, or "" while the game continues.
func (that *Game) DetermineGameResult() string {
	if winner, ok := engine.Winner(that.Board); ok {
		return winner.String()
	}

	if engine.IsTerminal(that.Board) {
		return PlayerTie
	}

	return ""
}

func (that *Game) UpdateGameState() {
	switch result := that.DetermineGameResult(); result {
	// one player wins or tie
	case engine.X.String(), engine.O.String(), PlayerTie:
		that.Winner = result
		that.Status = StatusFinished
		that.Turn = 0
	// game continue
	default:
		that.Status = StatusOngoing
	}
}

func (that *Game) MakeTurn(playerMark engine.Mark, action engine.Action) error {
	if that.Turn != playerMark {
		return apperror.ErrNotYourTurn
	}

	board, err := engine.ApplyAction(that.Board, action)
	if err != nil {
		return fmt.Errorf("failed to apply action: %w", err)
	}

	that.Board = board
	that.Turn = engine.CurrentPlayer(board)

	that.UpdateGameState()

	return nil
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Game) IsOngoing() bool {
	return that.Status == StatusOngoing
}

func (that *Game) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Game) ConfirmOngoingState() error {
	switch {
	case that.IsWaiting():
		return apperror.ErrGameIsNotStarted
	case that.IsFinished():
		return apperror.ErrGameFinished
	case that.IsOngoing():
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownGameStatus, that.Status)
	}
}

func (that *Game) IsWithBot() bool {
	return that.Type == WithBotType
}

func (that *Game) IsPrivate() bool {
	return that.Type == PrivateType
}

func (that *Game) IsPublic() bool {
	return that.Type == PublicType
}

// IsKnownType reports whether gameType is one of the supported game types.
func IsKnownType(gameType string) bool {
	switch gameType {
	case WithBotType, PrivateType, PublicType:
		return true
	default:
		return false
	}
}

// GetRandomMarks returns the human's mark first and the bot's second.
func (that *Game) GetRandomMarks() (engine.Mark, engine.Mark) {
	if rand.Intn(2) == 0 { //nolint: gosec // it's ok
		return engine.X, engine.O
	}
	return engine.O, engine.X
}

// BotPlayer returns the bot seated in the game, if any.
func (that *Game) BotPlayer() (*Player, bool) {
	for _, player := range that.Players {
		if player.IsBot() {
			return player, true
		}
	}

	return nil, false
}
