package usecase

import (
	"context"
	"fmt"

	"github.com/edwintcloud/tictactoe/internal/engine"
	"github.com/edwintcloud/tictactoe/internal/entity"
	"github.com/edwintcloud/tictactoe/internal/repository"
)

type GameUseCase interface {
	GetOrCreatePlayer(ctx context.Context, playerID string) (*entity.Player, error)

	GetOrCreateGame(ctx context.Context, playerID, gameType string) (*entity.Game, error)
	JoinGame(ctx context.Context, gameID, playerID string) (*entity.Game, error)

	MakeTurn(ctx context.Context, playerID string, action engine.Action) (*entity.Game, error)
	Hint(ctx context.Context, playerID string) (engine.Action, error)

	Analyze(ctx context.Context, board engine.Board) (*Analysis, error)
	Stats(ctx context.Context) (*repository.Stats, error)
}

// Analysis describes a position and the optimal reply in it.
type Analysis struct {
	Player   engine.Mark    `json:"player"`
	Terminal bool           `json:"terminal"`
	Winner   engine.Mark    `json:"winner,omitempty"`
	Utility  int            `json:"utility"`
	Value    int            `json:"value"`
	Action   *engine.Action `json:"action,omitempty"`
}

type playerService interface {
	CreatePlayer(ctx context.Context) (*entity.Player, error)
	GetPlayerByID(ctx context.Context, id string) (*entity.Player, error)
}

type gamePlayService interface {
	GetOrCreateGame(ctx context.Context, player *entity.Player, gameType string) (*entity.Game, error)
	JoinGameByID(ctx context.Context, gameID, playerID string) (*entity.Game, error)
	JoinWaitingPublicGame(ctx context.Context, playerID string) (*entity.Game, error)
	MakeTurn(ctx context.Context, playerID string, action engine.Action) (*entity.Game, error)
	Hint(ctx context.Context, playerID string) (engine.Action, error)
	CleanupGame(ctx context.Context, game *entity.Game)
}

type botService interface {
	SuggestMove(ctx context.Context, board engine.Board) (engine.Action, error)
}

type resultRepo interface {
	Stats(ctx context.Context) (*repository.Stats, error)
}

type gameUseCase struct {
	playerService   playerService
	gamePlayService gamePlayService
	botService      botService
	resultRepo      resultRepo
}

func NewGameUseCase(
	playerService playerService,
	gamePlayService gamePlayService,
	botService botService,
	resultRepo resultRepo,
) GameUseCase {
	return &gameUseCase{
		playerService:   playerService,
		gamePlayService: gamePlayService,
		botService:      botService,
		resultRepo:      resultRepo,
	}
}

func (that *gameUseCase) GetOrCreatePlayer(ctx context.Context, playerID string) (*entity.Player, error) {
	if playerID == "" {
		player, err := that.playerService.CreatePlayer(ctx)
		if err != nil {
			return nil, fmt.Errorf("could not create player: %w", err)
		}

		return player, nil
	}

	player, err := that.playerService.GetPlayerByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	return player, nil
}

func (that *gameUseCase) GetOrCreateGame(ctx context.Context, playerID, gameType string) (*entity.Game, error) {
	player, err := that.playerService.GetPlayerByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	game, err := that.gamePlayService.GetOrCreateGame(ctx, player, gameType)
	if err != nil {
		return nil, fmt.Errorf("failed to get game state: %w", err)
	}

	return game, nil
}

// JoinGame seats the player in gameID. An empty gameID matches the player into a public game.
func (that *gameUseCase) JoinGame(ctx context.Context, gameID, playerID string) (*entity.Game, error) {
	if gameID == "" {
		game, err := that.gamePlayService.JoinWaitingPublicGame(ctx, playerID)
		if err != nil {
			return nil, fmt.Errorf("failed to join public game: %w", err)
		}

		return game, nil
	}

	game, err := that.gamePlayService.JoinGameByID(ctx, gameID, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to game: %w", err)
	}

	return game, nil
}

// MakeTurn plays a turn and cleans the game up once it is finished.
// The finished game is still returned so callers can show the result.
func (that *gameUseCase) MakeTurn(ctx context.Context, playerID string, action engine.Action) (*entity.Game, error) {
	game, err := that.gamePlayService.MakeTurn(ctx, playerID, action)
	if err != nil {
		return nil, fmt.Errorf("failed to make turn: %w", err)
	}

	if game.IsFinished() {
		that.gamePlayService.CleanupGame(ctx, game)
	}

	return game, nil
}

func (that *gameUseCase) Hint(ctx context.Context, playerID string) (engine.Action, error) {
	action, err := that.gamePlayService.Hint(ctx, playerID)
	if err != nil {
		return engine.Action{}, fmt.Errorf("failed to get hint: %w", err)
	}

	return action, nil
}

// Analyze reports the state of an arbitrary board and the optimal action for the player to move.
func (that *gameUseCase) Analyze(ctx context.Context, board engine.Board) (*Analysis, error) {
	analysis := &Analysis{
		Player:   engine.CurrentPlayer(board),
		Terminal: engine.IsTerminal(board),
		Utility:  engine.Utility(board),
		Value:    engine.Value(board),
	}

	if winner, ok := engine.Winner(board); ok {
		analysis.Winner = winner
	}

	if analysis.Terminal {
		return analysis, nil
	}

	action, err := that.botService.SuggestMove(ctx, board)
	if err != nil {
		return nil, fmt.Errorf("failed to suggest move: %w", err)
	}

	analysis.Action = &action

	return analysis, nil
}

func (that *gameUseCase) Stats(ctx context.Context) (*repository.Stats, error) {
	stats, err := that.resultRepo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	return stats, nil
}
