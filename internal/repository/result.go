package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/edwintcloud/tictactoe/internal/entity"
	"github.com/edwintcloud/tictactoe/internal/repository/storage"
)

var ErrGameNotFinished = errors.New("game is not finished")

// Stats aggregates archived results.
type Stats struct {
	XWins int `json:"x_wins"`
	OWins int `json:"o_wins"`
	Ties  int `json:"ties"`
	Total int `json:"total"`
}

type ResultRepository interface {
	Save(ctx context.Context, game *entity.Game) error
	Stats(ctx context.Context) (*Stats, error)
}

type dbResult struct {
	storage *storage.Storage
}

func NewResultRepository(storage *storage.Storage) ResultRepository {
	return &dbResult{
		storage: storage,
	}
}

// Save archives a finished game. Saving the same game twice keeps the latest row.
func (that *dbResult) Save(ctx context.Context, game *entity.Game) error {
	if !game.IsFinished() {
		return fmt.Errorf("%w: game id %s", ErrGameNotFinished, game.ID)
	}

	query := `INSERT OR REPLACE INTO results (game_id, game_type, winner, board, finished_at) VALUES (?, ?, ?, ?, ?)`

	_, err := that.storage.Connection.ExecContext(ctx, query,
		game.ID, game.Type, game.Winner, game.Board.Key(), time.Now().UTC().Unix())
	if err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}

	return nil
}

func (that *dbResult) Stats(ctx context.Context) (*Stats, error) {
	rows, err := that.storage.Connection.QueryContext(ctx, `SELECT winner, COUNT(*) FROM results GROUP BY winner`)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	stats := &Stats{}
	for rows.Next() {
		var (
			winner string
			count  int
		)

		if err = rows.Scan(&winner, &count); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}

		switch winner {
		case "X":
			stats.XWins = count
		case "O":
			stats.OWins = count
		case entity.PlayerTie:
			stats.Ties = count
		}
		stats.Total += count
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read results: %w", err)
	}

	return stats, nil
}
