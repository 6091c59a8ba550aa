package entity

import (
	"encoding/json"
	"testing"

	"github.com/edwintcloud/tictactoe/internal/apperror"
	"github.com/edwintcloud/tictactoe/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseBoard(t *testing.T, key string) engine.Board {
	t.Helper()

	board, err := engine.ParseBoard(key)
	require.NoError(t, err)

	return board
}

func TestGameStatusMethods(t *testing.T) {
	t.Run("IsFinished returns true when game status is finished", func(t *testing.T) {
		// Given: a game with StatusFinished
		game := &Game{Status: StatusFinished}

		// Then: it should be finished only
		assert.True(t, game.IsFinished())
		assert.False(t, game.IsOngoing())
		assert.False(t, game.IsWaiting())
	})

	t.Run("IsOngoing returns true when game status is ongoing", func(t *testing.T) {
		game := &Game{Status: StatusOngoing}

		assert.True(t, game.IsOngoing())
	})

	t.Run("IsWaiting returns true when game status is waiting", func(t *testing.T) {
		game := &Game{Status: StatusWaiting}

		assert.True(t, game.IsWaiting())
	})
}

func TestGame_ConfirmOngoingState(t *testing.T) {
	t.Run("Returns nil when game is ongoing", func(t *testing.T) {
		game := &Game{Status: StatusOngoing}

		assert.NoError(t, game.ConfirmOngoingState())
	})

	t.Run("Returns ErrGameIsNotStarted when game is waiting", func(t *testing.T) {
		game := &Game{Status: StatusWaiting}

		assert.ErrorIs(t, game.ConfirmOngoingState(), apperror.ErrGameIsNotStarted)
	})

	t.Run("Returns ErrGameFinished when game is finished", func(t *testing.T) {
		game := &Game{Status: StatusFinished}

		assert.ErrorIs(t, game.ConfirmOngoingState(), apperror.ErrGameFinished)
	})

	t.Run("Returns error for unknown game status", func(t *testing.T) {
		// Given: a game with unknown status
		game := &Game{Status: "unknown"}

		// When: checking if the game is active
		err := game.ConfirmOngoingState()

		// Then: it should return an error
		require.ErrorIs(t, err, ErrUnknownGameStatus)
		assert.Contains(t, err.Error(), "unknown")
	})
}

func TestGame_DetermineGameResult(t *testing.T) {
	tests := []struct {
		name   string
		board  string
		result string
	}{
		{name: "Returns X when player X wins", board: "XXXOO....", result: "X"},
		{name: "Returns O when player O wins", board: "XX.OOOX..", result: "O"},
		{name: "Returns PlayerTie when the game is a tie", board: "XOXXOOOXX", result: PlayerTie},
		{name: "Returns empty result when the game is ongoing", board: "XO..X...O", result: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given: a game with the board
			game := &Game{Board: parseBoard(t, tt.board)}

			// When: determining the game result
			result := game.DetermineGameResult()

			// Then: it should match
			assert.Equal(t, tt.result, result)
		})
	}
}

func TestGame_UpdateGameState(t *testing.T) {
	t.Run("Updates game state when player X wins", func(t *testing.T) {
		// Given: a game where player X has a winning combination
		game := &Game{
			Board:  parseBoard(t, "XXXOO...."),
			Status: StatusOngoing,
			Turn:   engine.O,
		}

		// When: updating the game state
		game.UpdateGameState()

		// Then: the game should be finished with player X as the winner
		assert.Equal(t, StatusFinished, game.Status)
		assert.Equal(t, "X", game.Winner)
		assert.Zero(t, game.Turn)
	})

	t.Run("Updates game state when the game is a tie", func(t *testing.T) {
		game := &Game{
			Board:  parseBoard(t, "XOXXOOOXX"),
			Status: StatusOngoing,
			Turn:   engine.O,
		}

		game.UpdateGameState()

		assert.Equal(t, StatusFinished, game.Status)
		assert.Equal(t, PlayerTie, game.Winner)
		assert.Zero(t, game.Turn)
	})

	t.Run("Game remains ongoing when there is no winner or tie", func(t *testing.T) {
		game := &Game{
			Board:  parseBoard(t, "XO..X...."),
			Status: StatusOngoing,
			Turn:   engine.O,
		}

		game.UpdateGameState()

		assert.Equal(t, StatusOngoing, game.Status)
		assert.Empty(t, game.Winner)
		assert.Equal(t, engine.O, game.Turn)
	})
}

func TestGame_MakeTurn(t *testing.T) {
	t.Run("Successful Turn", func(t *testing.T) {
		// Given: A new game
		game := NewGame("123", PrivateType)
		game.Status = StatusOngoing

		// When: Player X makes a valid turn
		err := game.MakeTurn(engine.X, engine.Action{Row: 0, Col: 0})
		require.NoError(t, err)

		// Then: The game state should reflect the turn and player turn should switch
		expectedGame := &Game{
			ID:     "123",
			Board:  parseBoard(t, "X........"),
			Turn:   engine.O,
			Status: StatusOngoing,
			Type:   PrivateType,
		}

		require.Equal(t, expectedGame, game)
	})

	t.Run("Error on Cell Already Occupied", func(t *testing.T) {
		// Given: A game where the corner is occupied by player X
		game := NewGame("123", PrivateType)
		game.Status = StatusOngoing
		require.NoError(t, game.MakeTurn(engine.X, engine.Action{Row: 0, Col: 0}))

		// When: Player O tries to make a move to the same cell
		err := game.MakeTurn(engine.O, engine.Action{Row: 0, Col: 0})

		// Then: An ErrInvalidAction error should be returned
		require.ErrorIs(t, err, engine.ErrInvalidAction)

		// And: The game state should remain unchanged
		assert.Equal(t, "X........", game.Board.Key())
		assert.Equal(t, engine.O, game.Turn)
		assert.Equal(t, StatusOngoing, game.Status)
	})

	t.Run("Error on Playing Out of Turn", func(t *testing.T) {
		// Given: A new game where it's player X's turn
		game := NewGame("123", PrivateType)
		game.Status = StatusOngoing

		// When: Player O tries to make a move
		err := game.MakeTurn(engine.O, engine.Action{Row: 0, Col: 1})

		// Then: An ErrNotYourTurn error should be returned and nothing changes
		require.ErrorIs(t, err, apperror.ErrNotYourTurn)
		assert.Equal(t, engine.InitialState(), game.Board)
		assert.Equal(t, engine.X, game.Turn)
	})

	t.Run("Error on Off-Board Action", func(t *testing.T) {
		game := NewGame("123", PrivateType)
		game.Status = StatusOngoing

		err := game.MakeTurn(engine.X, engine.Action{Row: 3, Col: -1})

		assert.ErrorIs(t, err, engine.ErrInvalidAction)
		assert.Equal(t, engine.InitialState(), game.Board)
	})

	t.Run("Winning turn finishes the game", func(t *testing.T) {
		// Given: X is one move away from the top row
		game := NewGame("123", PrivateType)
		game.Status = StatusOngoing
		game.Board = parseBoard(t, "XX.OO....")

		// When: X completes the row
		err := game.MakeTurn(engine.X, engine.Action{Row: 0, Col: 2})

		// Then: the game is finished with X as the winner
		require.NoError(t, err)
		assert.True(t, game.IsFinished())
		assert.Equal(t, "X", game.Winner)
		assert.Zero(t, game.Turn)
	})
}

func TestGame_JSON(t *testing.T) {
	// Given: a game in progress
	game := NewGame("123", WithBotType)
	game.Board = parseBoard(t, "X...O....")
	game.Turn = engine.X

	// When: encoding and decoding it
	data, err := json.Marshal(game)
	require.NoError(t, err)

	var decoded Game
	require.NoError(t, json.Unmarshal(data, &decoded))

	// Then: board and turn are written as marks
	assert.Contains(t, string(data), `"board":[["X","",""],["","O",""],["","",""]]`)
	assert.Contains(t, string(data), `"player_turn":"X"`)
	assert.Equal(t, *game, decoded)
}

func TestNewBotPlayer(t *testing.T) {
	// When: a bot joins a game
	bot := NewBotPlayer("123", engine.O)

	// Then: it is marked as a bot and seated in the game
	assert.True(t, bot.IsBot())
	assert.Equal(t, "123", bot.GameID)
	assert.Equal(t, engine.O, bot.Mark)

	game := &Game{Players: []*Player{{ID: "human"}, bot}}
	found, ok := game.BotPlayer()
	require.True(t, ok)
	assert.Same(t, bot, found)
}

func TestGameTypes(t *testing.T) {
	for _, gameType := range []string{WithBotType, PrivateType, PublicType} {
		assert.True(t, IsKnownType(gameType), gameType)
	}

	for _, gameType := range []string{"", "ranked", "Public"} {
		assert.False(t, IsKnownType(gameType), gameType)
	}

	game := NewGame("g1", PublicType)
	assert.True(t, game.IsPublic())
	assert.False(t, game.IsPrivate())
	assert.False(t, game.IsWithBot())
}
