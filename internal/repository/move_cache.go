package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/edwintcloud/tictactoe/internal/engine"
	"github.com/redis/go-redis/v9"
)

var (
	ErrMoveNotCached  = errors.New("move not cached")
	ErrCorruptedEntry = errors.New("corrupted move cache entry")
)

// MoveCache stores the searched move for a board, keyed by engine.Board.Key.
type MoveCache interface {
	Get(ctx context.Context, board engine.Board) (engine.Action, error)
	Set(ctx context.Context, board engine.Board, action engine.Action) error
}

type dbMoveCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewMoveCache returns a Redis-backed cache. A zero ttl keeps entries forever.
func NewMoveCache(client *redis.Client, ttl time.Duration) MoveCache {
	return &dbMoveCache{
		client: client,
		ttl:    ttl,
	}
}

func (that *dbMoveCache) Get(ctx context.Context, board engine.Board) (engine.Action, error) {
	response, err := that.client.Get(ctx, moveKey(board)).Result()

	if errors.Is(err, redis.Nil) {
		return engine.Action{}, ErrMoveNotCached
	}

	if err != nil {
		return engine.Action{}, fmt.Errorf("failed to get move: %w", err)
	}

	action, err := decodeAction(response)
	if err != nil {
		return engine.Action{}, fmt.Errorf("board %s: %w", board.Key(), err)
	}

	return action, nil
}

func (that *dbMoveCache) Set(ctx context.Context, board engine.Board, action engine.Action) error {
	value := fmt.Sprintf("%d,%d", action.Row, action.Col)

	if err := that.client.Set(ctx, moveKey(board), value, that.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set move: %w", err)
	}

	return nil
}

func moveKey(board engine.Board) string {
	return "move:" + board.Key()
}

func decodeAction(value string) (engine.Action, error) {
	rowRaw, colRaw, ok := strings.Cut(value, ",")
	if !ok {
		return engine.Action{}, fmt.Errorf("%w: %q", ErrCorruptedEntry, value)
	}

	row, err := strconv.Atoi(rowRaw)
	if err != nil {
		return engine.Action{}, fmt.Errorf("%w: %q", ErrCorruptedEntry, value)
	}

	col, err := strconv.Atoi(colRaw)
	if err != nil {
		return engine.Action{}, fmt.Errorf("%w: %q", ErrCorruptedEntry, value)
	}

	action := engine.Action{Row: row, Col: col}
	if !action.Valid() {
		return engine.Action{}, fmt.Errorf("%w: %q", ErrCorruptedEntry, value)
	}

	return action, nil
}
