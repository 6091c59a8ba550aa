package apperror

import "errors"

var (
	ErrGameFinished      = errors.New("game is already finished")
	ErrGameIsNotStarted  = errors.New("game is not started")
	ErrNotYourTurn       = errors.New("it's not your turn")
	ErrGameAlreadyExists = errors.New("game already exists")
	ErrNoActiveGames     = errors.New("no active games")
	ErrUnknownGameType   = errors.New("unknown game type")
)
