package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/edwintcloud/tictactoe/internal/apperror"
	"github.com/edwintcloud/tictactoe/internal/engine"
	"github.com/edwintcloud/tictactoe/internal/entity"
)

var ErrPlayerNotInGame = errors.New("player is not in a game")

type GamePlayService interface {
	JoinGameByID(ctx context.Context, gameID, playerID string) (*entity.Game, error)
	JoinWaitingPublicGame(ctx context.Context, playerID string) (*entity.Game, error)

	GetOrCreateGame(ctx context.Context, player *entity.Player, gameType string) (*entity.Game, error)
	CleanupGame(ctx context.Context, game *entity.Game)

	MakeTurn(ctx context.Context, playerID string, action engine.Action) (*entity.Game, error)
	Hint(ctx context.Context, playerID string) (engine.Action, error)
}

type resultArchive interface {
	Save(ctx context.Context, game *entity.Game) error
}

type gamePlayService struct {
	logger *slog.Logger

	playerService PlayerService
	gameService   GameService
	botService    BotService
	resultArchive resultArchive
}

func NewGamePlayService(
	logger *slog.Logger,
	playerService PlayerService,
	gameService GameService,
	botService BotService,
	resultArchive resultArchive,
) GamePlayService {
	return &gamePlayService{
		logger:        logger,
		playerService: playerService,
		gameService:   gameService,
		botService:    botService,
		resultArchive: resultArchive,
	}
}

// MakeTurn plays action for the player and, in bot games, the bot's reply.
func (that *gamePlayService) MakeTurn(ctx context.Context, playerID string, action engine.Action) (*entity.Game, error) {
	player, game, err := that.playerGame(ctx, playerID)
	if err != nil {
		return nil, err
	}

	if err = game.ConfirmOngoingState(); err != nil {
		return game, err
	}

	if err = game.MakeTurn(player.Mark, action); err != nil {
		return game, fmt.Errorf("failed to make turn: %w", err)
	}

	if !game.IsFinished() && game.IsWithBot() {
		if err = that.botService.MakeTurn(ctx, game); err != nil {
			return nil, fmt.Errorf("bot failed to make turn: %w", err)
		}
	}

	if err = that.gameService.UpdateGame(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	return game, nil
}

// Hint returns the optimal action for the player's current position.
func (that *gamePlayService) Hint(ctx context.Context, playerID string) (engine.Action, error) {
	player, game, err := that.playerGame(ctx, playerID)
	if err != nil {
		return engine.Action{}, err
	}

	if err = game.ConfirmOngoingState(); err != nil {
		return engine.Action{}, err
	}

	if game.Turn != player.Mark {
		return engine.Action{}, apperror.ErrNotYourTurn
	}

	action, err := that.botService.SuggestMove(ctx, game.Board)
	if err != nil {
		return engine.Action{}, fmt.Errorf("failed to suggest move: %w", err)
	}

	return action, nil
}

func (that *gamePlayService) JoinGameByID(ctx context.Context, gameID, playerID string) (*entity.Game, error) {
	game, err := that.gameService.GetGameByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	player, err := that.playerService.GetPlayerByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	return that.seatOpponent(ctx, game, player)
}

// JoinWaitingPublicGame seats the player in the oldest public game waiting for an opponent,
// or opens a new public game when none is waiting. A seated player gets their game back.
func (that *gamePlayService) JoinWaitingPublicGame(ctx context.Context, playerID string) (*entity.Game, error) {
	player, err := that.playerService.GetPlayerByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	if player.GameID != "" {
		game, err := that.gameService.GetGameByID(ctx, player.GameID)
		if err != nil {
			return nil, fmt.Errorf("failed to get game: %w", err)
		}

		return game, nil
	}

	game, err := that.gameService.GetWaitingPublicGame(ctx)
	if errors.Is(err, apperror.ErrNoActiveGames) {
		game, err = that.createGame(ctx, player, entity.PublicType)
		if err != nil {
			return nil, fmt.Errorf("failed to create public game: %w", err)
		}

		return game, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get waiting public game: %w", err)
	}

	return that.seatOpponent(ctx, game, player)
}

// seatOpponent adds player as O to a waiting two-player game and starts it.
func (that *gamePlayService) seatOpponent(ctx context.Context, game *entity.Game, player *entity.Player) (*entity.Game, error) {
	if player.GameID == game.ID {
		return game, nil
	}

	if player.GameID != "" {
		return nil, fmt.Errorf("%w: player %s is already in game %s", apperror.ErrGameAlreadyExists, player.ID, player.GameID)
	}

	if game.IsWithBot() || len(game.Players) >= 2 || !game.IsWaiting() {
		return nil, fmt.Errorf("%w: game id %s", apperror.ErrGameAlreadyExists, game.ID)
	}

	player.GameID = game.ID
	player.Mark = engine.O
	if err := that.playerService.UpdatePlayer(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to update player: %w", err)
	}

	game.Status = entity.StatusOngoing
	game.Players = append(game.Players, player)
	if err := that.gameService.UpdateGame(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	return game, nil
}

func (that *gamePlayService) GetOrCreateGame(ctx context.Context, player *entity.Player, gameType string) (*entity.Game, error) {
	if player.GameID == "" {
		game, err := that.createGame(ctx, player, gameType)
		if err != nil {
			return nil, fmt.Errorf("failed to create new game: %w", err)
		}

		return game, nil
	}

	game, err := that.gameService.GetGameByID(ctx, player.GameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

func (that *gamePlayService) createGame(ctx context.Context, player *entity.Player, gameType string) (*entity.Game, error) {
	game, updatedPlayer, err := that.gameService.CreateGame(ctx, player, gameType)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	if err = that.playerService.UpdatePlayer(ctx, updatedPlayer); err != nil {
		return nil, fmt.Errorf("failed to update player: %w", err)
	}

	if game.IsWithBot() {
		if err = that.addBotToGame(ctx, game); err != nil {
			return nil, fmt.Errorf("failed to add bot to game: %w", err)
		}
	}

	return game, nil
}

func (that *gamePlayService) addBotToGame(ctx context.Context, game *entity.Game) error {
	playerMark, botMark := game.GetRandomMarks()
	botPlayer := entity.NewBotPlayer(game.ID, botMark)

	for _, player := range game.Players {
		player.Mark = playerMark
		if err := that.playerService.UpdatePlayer(ctx, player); err != nil {
			return fmt.Errorf("failed to update player: %w", err)
		}
	}

	game.Players = append(game.Players, botPlayer)
	game.Status = entity.StatusOngoing

	if botMark == game.Turn {
		if err := that.botService.MakeTurn(ctx, game); err != nil {
			return fmt.Errorf("bot failed to make first turn: %w", err)
		}
	}

	if err := that.gameService.UpdateGame(ctx, game); err != nil {
		return fmt.Errorf("failed to update game with bot: %w", err)
	}

	return nil
}

// CleanupGame archives a finished game, deletes it and frees its human players.
func (that *gamePlayService) CleanupGame(ctx context.Context, game *entity.Game) {
	log := that.logger.With("method", "CleanupGame", "gameID", game.ID)

	if game.IsFinished() {
		if err := that.resultArchive.Save(ctx, game); err != nil {
			log.Error("failed to archive result", "error", err)
		}
	}

	if err := that.gameService.DeleteGame(ctx, game.ID); err != nil {
		log.Error("failed to delete game", "error", err)
	}

	for _, player := range game.Players {
		if player.IsBot() {
			continue
		}

		detached := *player
		detached.GameID = ""
		detached.Mark = 0
		if err := that.playerService.UpdatePlayer(ctx, &detached); err != nil {
			log.Error("failed to update", "player", player.ID, "error", err)
		}
	}

	log.Info("game cleaned up", "winner", game.Winner)
}

func (that *gamePlayService) playerGame(ctx context.Context, playerID string) (*entity.Player, *entity.Game, error) {
	player, err := that.playerService.GetPlayerByID(ctx, playerID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	if player.GameID == "" {
		return nil, nil, fmt.Errorf("%w: player id %s", ErrPlayerNotInGame, playerID)
	}

	game, err := that.gameService.GetGameByID(ctx, player.GameID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	return player, game, nil
}
