package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/edwintcloud/tictactoe/internal/engine"
	"github.com/edwintcloud/tictactoe/internal/entity"
	"github.com/edwintcloud/tictactoe/internal/repository"
)

var (
	ErrBotNotFound      = errors.New("bot player not found")
	ErrNoAvailableMoves = errors.New("no available moves")
)

type BotService interface {
	SuggestMove(ctx context.Context, board engine.Board) (engine.Action, error)
	MakeTurn(ctx context.Context, game *entity.Game) error
}

type moveCache interface {
	Get(ctx context.Context, board engine.Board) (engine.Action, error)
	Set(ctx context.Context, board engine.Board, action engine.Action) error
}

type botService struct {
	logger    *slog.Logger
	moveCache moveCache
}

func NewBotService(logger *slog.Logger, moveCache moveCache) BotService {
	return &botService{
		logger:    logger,
		moveCache: moveCache,
	}
}

// SuggestMove returns the optimal action for the player to move on board.
// Cache failures only cost a search.
func (that *botService) SuggestMove(ctx context.Context, board engine.Board) (engine.Action, error) {
	log := that.logger.With("method", "SuggestMove", "board", board.Key())

	if engine.IsTerminal(board) {
		return engine.Action{}, ErrNoAvailableMoves
	}

	action, err := that.moveCache.Get(ctx, board)
	switch {
	case err == nil:
		log.Debug("move cache hit", "action", action.String())
		return action, nil
	case errors.Is(err, repository.ErrMoveNotCached):
	default:
		log.Warn("failed to read move cache", "error", err)
	}

	action, ok := engine.Minimax(board)
	if !ok {
		return engine.Action{}, ErrNoAvailableMoves
	}

	if err = that.moveCache.Set(ctx, board, action); err != nil {
		log.Warn("failed to write move cache", "error", err)
	}

	log.Debug("move searched", "action", action.String())

	return action, nil
}

func (that *botService) MakeTurn(ctx context.Context, game *entity.Game) error {
	botPlayer, ok := game.BotPlayer()
	if !ok {
		return ErrBotNotFound
	}

	action, err := that.SuggestMove(ctx, game.Board)
	if err != nil {
		return fmt.Errorf("bot failed to choose a move: %w", err)
	}

	if err = game.MakeTurn(botPlayer.Mark, action); err != nil {
		return fmt.Errorf("bot failed to make turn: %w", err)
	}

	return nil
}
