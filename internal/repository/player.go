package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/edwintcloud/tictactoe/internal/entity"
	"github.com/redis/go-redis/v9"
)

var (
	ErrPlayerNotFound     = errors.New("player not found")
	ErrInconsistentPlayer = errors.New("inconsistent player")
)

type PlayerRepository interface {
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)
}

type dbPlayer struct {
	client *redis.Client
}

func NewPlayerRepository(client *redis.Client) PlayerRepository {
	return &dbPlayer{
		client: client,
	}
}

// CreateOrUpdate stores the player as JSON. An unseated player has no mark and no game ID,
// so both are left out of the record.
func (that *dbPlayer) CreateOrUpdate(ctx context.Context, player *entity.Player) error {
	if player.GameID == "" && player.Mark != 0 {
		return fmt.Errorf("%w: player %s has mark %s without a game", ErrInconsistentPlayer, player.ID, player.Mark)
	}

	playerJSON, err := json.Marshal(player)
	if err != nil {
		return fmt.Errorf("failed to marshal player: %w", err)
	}

	err = that.client.Set(ctx, playerKey(player.ID), playerJSON, 0).Err()
	if err != nil {
		return fmt.Errorf("failed to set player: %w", err)
	}

	return nil
}

func (that *dbPlayer) GetByID(ctx context.Context, id string) (*entity.Player, error) {
	response, err := that.client.Get(ctx, playerKey(id)).Result()

	if errors.Is(err, redis.Nil) {
		return &entity.Player{}, ErrPlayerNotFound
	}

	if err != nil {
		return &entity.Player{}, fmt.Errorf("failed to get player by ID: %w", err)
	}

	var existingPlayer entity.Player
	if err = json.Unmarshal([]byte(response), &existingPlayer); err != nil {
		return &entity.Player{}, fmt.Errorf("failed to unmarshal player: %w", err)
	}

	return &existingPlayer, nil
}

func playerKey(id string) string {
	return "player:" + id
}
