package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/edwintcloud/tictactoe/internal/apperror"
	"github.com/edwintcloud/tictactoe/internal/entity"
	"github.com/redis/go-redis/v9"
)

// waitingPublicGamesKey is a sorted set of waiting public game IDs scored by creation time.
const waitingPublicGamesKey = "games:public:waiting"

var ErrGameNotFound = errors.New("game not found")

type GameRepository interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error

	GetWaitingPublicGame(ctx context.Context) (*entity.Game, error)
}

type dbGame struct {
	client *redis.Client
}

func NewGameRepository(client *redis.Client) GameRepository {
	return &dbGame{
		client: client,
	}
}

// CreateOrUpdate stores the game and keeps the waiting public games index in step with it.
func (that *dbGame) CreateOrUpdate(ctx context.Context, game *entity.Game) error {
	gameJSON, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("could not marshal game: %w", err)
	}

	_, err = that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, gameKey(game.ID), gameJSON, 0)

		switch {
		case game.IsPublic() && game.IsWaiting():
			pipe.ZAddNX(ctx, waitingPublicGamesKey, redis.Z{
				Score:  float64(time.Now().UnixNano()),
				Member: game.ID,
			})
		case game.IsPublic():
			pipe.ZRem(ctx, waitingPublicGamesKey, game.ID)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set game: %w", err)
	}

	return nil
}

func (that *dbGame) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	response, err := that.client.Get(ctx, gameKey(id)).Result()

	if errors.Is(err, redis.Nil) {
		return &entity.Game{}, ErrGameNotFound
	}

	if err != nil {
		return &entity.Game{}, fmt.Errorf("failed to get game by id: %w", err)
	}

	var existingGame entity.Game
	if err = json.Unmarshal([]byte(response), &existingGame); err != nil {
		return &entity.Game{}, fmt.Errorf("failed to unmarshal game: %w", err)
	}

	return &existingGame, nil
}

func (that *dbGame) DeleteByID(ctx context.Context, id string) error {
	var deleted *redis.IntCmd

	_, err := that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		deleted = pipe.Del(ctx, gameKey(id))
		pipe.ZRem(ctx, waitingPublicGamesKey, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete game by ID: %w", err)
	}

	if deleted.Val() == 0 {
		return ErrGameNotFound
	}

	return nil
}

// GetWaitingPublicGame returns the oldest public game still waiting for a second player.
// Index entries whose game is gone are dropped on the way.
func (that *dbGame) GetWaitingPublicGame(ctx context.Context) (*entity.Game, error) {
	for {
		ids, err := that.client.ZRange(ctx, waitingPublicGamesKey, 0, 0).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to read waiting public games: %w", err)
		}

		if len(ids) == 0 {
			return nil, apperror.ErrNoActiveGames
		}

		game, err := that.GetByID(ctx, ids[0])
		switch {
		case errors.Is(err, ErrGameNotFound):
		case err != nil:
			return nil, err
		case game.IsPublic() && game.IsWaiting():
			return game, nil
		}

		if err = that.client.ZRem(ctx, waitingPublicGamesKey, ids[0]).Err(); err != nil {
			return nil, fmt.Errorf("failed to drop stale waiting game: %w", err)
		}
	}
}

func gameKey(id string) string {
	return "game:" + id
}
