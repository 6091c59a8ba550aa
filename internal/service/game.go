package service

import (
	"context"
	"fmt"

	"github.com/edwintcloud/tictactoe/internal/apperror"
	"github.com/edwintcloud/tictactoe/internal/engine"
	"github.com/edwintcloud/tictactoe/internal/entity"
	"github.com/google/uuid"
)

type GameService interface {
	CreateGame(ctx context.Context, player *entity.Player, gameType string) (*entity.Game, *entity.Player, error)
	UpdateGame(ctx context.Context, game *entity.Game) error
	DeleteGame(ctx context.Context, gameID string) error

	GetGameByID(ctx context.Context, id string) (*entity.Game, error)
	GetWaitingPublicGame(ctx context.Context) (*entity.Game, error)
}

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error

	GetWaitingPublicGame(ctx context.Context) (*entity.Game, error)
}

type gameService struct {
	gameRepo gameRepo
}

func NewGameService(gameRepo gameRepo) GameService {
	return &gameService{
		gameRepo: gameRepo,
	}
}

// CreateGame stores a new game with player seated as X.
func (that *gameService) CreateGame(ctx context.Context, player *entity.Player, gameType string) (*entity.Game, *entity.Player, error) {
	if !entity.IsKnownType(gameType) {
		return nil, nil, fmt.Errorf("%w: %q", apperror.ErrUnknownGameType, gameType)
	}

	gameID := uuid.NewString()
	game := entity.NewGame(gameID, gameType)

	player.GameID = gameID
	player.Mark = engine.X

	game.Players = []*entity.Player{player}
	if err := that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return nil, nil, fmt.Errorf("failed to create game from storage: %w", err)
	}

	return game, player, nil
}

func (that *gameService) GetGameByID(ctx context.Context, id string) (*entity.Game, error) {
	game, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve game from storage: %w", err)
	}

	return game, nil
}

func (that *gameService) GetWaitingPublicGame(ctx context.Context) (*entity.Game, error) {
	game, err := that.gameRepo.GetWaitingPublicGame(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve waiting public game from storage: %w", err)
	}

	return game, nil
}

func (that *gameService) UpdateGame(ctx context.Context, game *entity.Game) error {
	if err := that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	return nil
}

func (that *gameService) DeleteGame(ctx context.Context, gameID string) error {
	if err := that.gameRepo.DeleteByID(ctx, gameID); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	return nil
}
