package service

import (
	"context"
	"testing"

	"github.com/edwintcloud/tictactoe/internal/apperror"
	"github.com/edwintcloud/tictactoe/internal/engine"
	"github.com/edwintcloud/tictactoe/internal/entity"
	"github.com/edwintcloud/tictactoe/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// memPlayerRepo and memGameRepo store copies, like the Redis repositories do.
type memPlayerRepo map[string]entity.Player

func (that memPlayerRepo) CreateOrUpdate(_ context.Context, player *entity.Player) error {
	that[player.ID] = *player
	return nil
}

func (that memPlayerRepo) GetByID(_ context.Context, id string) (*entity.Player, error) {
	player, ok := that[id]
	if !ok {
		return &entity.Player{}, repository.ErrPlayerNotFound
	}
	return &player, nil
}

type memGameRepo map[string]entity.Game

func (that memGameRepo) CreateOrUpdate(_ context.Context, game *entity.Game) error {
	stored := *game
	stored.Players = make([]*entity.Player, 0, len(game.Players))
	for _, player := range game.Players {
		copied := *player
		stored.Players = append(stored.Players, &copied)
	}
	that[game.ID] = stored
	return nil
}

func (that memGameRepo) GetByID(_ context.Context, id string) (*entity.Game, error) {
	game, ok := that[id]
	if !ok {
		return &entity.Game{}, repository.ErrGameNotFound
	}
	return &game, nil
}

func (that memGameRepo) DeleteByID(_ context.Context, id string) error {
	if _, ok := that[id]; !ok {
		return repository.ErrGameNotFound
	}
	delete(that, id)
	return nil
}

func (that memGameRepo) GetWaitingPublicGame(_ context.Context) (*entity.Game, error) {
	for _, game := range that {
		if game.IsPublic() && game.IsWaiting() {
			return &game, nil
		}
	}
	return nil, apperror.ErrNoActiveGames
}

type gamePlayFixture struct {
	players memPlayerRepo
	games   memGameRepo
	archive *mockResultArchive
	service GamePlayService
}

func newGamePlayFixture() *gamePlayFixture {
	cache := &mockMoveCache{}
	cache.On("Get", mock.Anything, mock.Anything).Return(engine.Action{}, repository.ErrMoveNotCached)
	cache.On("Set", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	fixture := &gamePlayFixture{
		players: memPlayerRepo{},
		games:   memGameRepo{},
		archive: &mockResultArchive{},
	}

	fixture.service = NewGamePlayService(
		testLogger(),
		NewPlayerService(fixture.players),
		NewGameService(fixture.games),
		NewBotService(testLogger(), cache),
		fixture.archive,
	)

	return fixture
}

func (that *gamePlayFixture) newPlayer(t *testing.T, id string) *entity.Player {
	t.Helper()

	player := &entity.Player{ID: id}
	require.NoError(t, that.players.CreateOrUpdate(context.Background(), player))

	return player
}

func TestGamePlayService_BotGame(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates a bot game and lets the bot open when it plays X", func(t *testing.T) {
		// Given: a player without a game
		fixture := newGamePlayFixture()
		player := fixture.newPlayer(t, "human")

		// When: a bot game is created
		game, err := fixture.service.GetOrCreateGame(ctx, player, entity.WithBotType)

		// Then: the game is ongoing, has a bot, and it is the human's turn
		require.NoError(t, err)
		assert.True(t, game.IsOngoing())
		require.Len(t, game.Players, 2)

		bot, ok := game.BotPlayer()
		require.True(t, ok)
		assert.NotEqual(t, bot.Mark, player.Mark)
		assert.Equal(t, player.Mark, game.Turn)

		stored, err := fixture.players.GetByID(ctx, "human")
		require.NoError(t, err)
		assert.Equal(t, game.ID, stored.GameID)
		assert.Equal(t, player.Mark, stored.Mark)
	})

	t.Run("Returns the existing game for a seated player", func(t *testing.T) {
		fixture := newGamePlayFixture()
		player := fixture.newPlayer(t, "human")

		created, err := fixture.service.GetOrCreateGame(ctx, player, entity.WithBotType)
		require.NoError(t, err)

		again, err := fixture.service.GetOrCreateGame(ctx, player, entity.WithBotType)

		require.NoError(t, err)
		assert.Equal(t, created.ID, again.ID)
	})

	t.Run("Optimal bot never loses to hinted play", func(t *testing.T) {
		// Given: a bot game
		fixture := newGamePlayFixture()
		fixture.archive.On("Save", mock.Anything, mock.Anything).Return(nil).Once()
		player := fixture.newPlayer(t, "human")

		game, err := fixture.service.GetOrCreateGame(ctx, player, entity.WithBotType)
		require.NoError(t, err)

		// When: the human follows hints until the game ends
		for !game.IsFinished() {
			action, err := fixture.service.Hint(ctx, "human")
			require.NoError(t, err)

			game, err = fixture.service.MakeTurn(ctx, "human", action)
			require.NoError(t, err)
		}

		// Then: optimal play on both sides draws
		assert.Equal(t, entity.PlayerTie, game.Winner)

		// And: cleanup archives the result and frees the player
		fixture.service.CleanupGame(ctx, game)

		fixture.archive.AssertExpectations(t)
		assert.Empty(t, fixture.games)

		stored, err := fixture.players.GetByID(ctx, "human")
		require.NoError(t, err)
		assert.Empty(t, stored.GameID)
		assert.Zero(t, stored.Mark)
	})
}

func TestGamePlayService_PrivateGame(t *testing.T) {
	ctx := context.Background()

	newGame := func(t *testing.T) (*gamePlayFixture, *entity.Game) {
		t.Helper()

		fixture := newGamePlayFixture()
		host := fixture.newPlayer(t, "host")
		fixture.newPlayer(t, "guest")

		game, err := fixture.service.GetOrCreateGame(ctx, host, entity.PrivateType)
		require.NoError(t, err)
		require.True(t, game.IsWaiting())

		return fixture, game
	}

	t.Run("Second player joins as O", func(t *testing.T) {
		fixture, game := newGame(t)

		// When: the guest joins by ID
		joined, err := fixture.service.JoinGameByID(ctx, game.ID, "guest")

		// Then: the game starts and the guest plays O
		require.NoError(t, err)
		assert.True(t, joined.IsOngoing())
		require.Len(t, joined.Players, 2)
		assert.Equal(t, engine.O, joined.Players[1].Mark)
	})

	t.Run("Third player cannot join", func(t *testing.T) {
		fixture, game := newGame(t)
		fixture.newPlayer(t, "late")

		_, err := fixture.service.JoinGameByID(ctx, game.ID, "guest")
		require.NoError(t, err)

		_, err = fixture.service.JoinGameByID(ctx, game.ID, "late")

		assert.ErrorIs(t, err, apperror.ErrGameAlreadyExists)
	})

	t.Run("Turn before the guest joins is rejected", func(t *testing.T) {
		fixture, _ := newGame(t)

		_, err := fixture.service.MakeTurn(ctx, "host", engine.Action{Row: 1, Col: 1})

		assert.ErrorIs(t, err, apperror.ErrGameIsNotStarted)
	})

	t.Run("Players alternate and invalid actions are rejected", func(t *testing.T) {
		fixture, game := newGame(t)
		_, err := fixture.service.JoinGameByID(ctx, game.ID, "guest")
		require.NoError(t, err)

		// When: the host plays, then the guest plays the same cell
		_, err = fixture.service.MakeTurn(ctx, "host", engine.Action{Row: 1, Col: 1})
		require.NoError(t, err)

		_, err = fixture.service.MakeTurn(ctx, "host", engine.Action{Row: 0, Col: 0})
		require.ErrorIs(t, err, apperror.ErrNotYourTurn)

		_, err = fixture.service.MakeTurn(ctx, "guest", engine.Action{Row: 1, Col: 1})
		require.ErrorIs(t, err, engine.ErrInvalidAction)

		// Then: the stored game only has the host's mark
		stored, err := fixture.games.GetByID(ctx, game.ID)
		require.NoError(t, err)
		assert.Equal(t, "....X....", stored.Board.Key())
		assert.Equal(t, engine.O, stored.Turn)
	})

	t.Run("Hint is only given on the player's turn", func(t *testing.T) {
		fixture, game := newGame(t)
		_, err := fixture.service.JoinGameByID(ctx, game.ID, "guest")
		require.NoError(t, err)

		_, err = fixture.service.Hint(ctx, "guest")

		assert.ErrorIs(t, err, apperror.ErrNotYourTurn)
	})
}

func TestGamePlayService_PublicGame(t *testing.T) {
	ctx := context.Background()

	t.Run("Matches two players into one public game", func(t *testing.T) {
		// Given: two players and no waiting public game
		fixture := newGamePlayFixture()
		fixture.newPlayer(t, "first")
		fixture.newPlayer(t, "second")

		// When: the first player asks for a public game
		opened, err := fixture.service.JoinWaitingPublicGame(ctx, "first")

		// Then: a public game is opened and waits with the first player as X
		require.NoError(t, err)
		assert.True(t, opened.IsPublic())
		assert.True(t, opened.IsWaiting())
		require.Len(t, opened.Players, 1)
		assert.Equal(t, engine.X, opened.Players[0].Mark)

		// When: the second player asks for a public game
		joined, err := fixture.service.JoinWaitingPublicGame(ctx, "second")

		// Then: they are seated as O in the same game, which starts
		require.NoError(t, err)
		assert.Equal(t, opened.ID, joined.ID)
		assert.True(t, joined.IsOngoing())
		require.Len(t, joined.Players, 2)
		assert.Equal(t, engine.O, joined.Players[1].Mark)

		stored, err := fixture.players.GetByID(ctx, "second")
		require.NoError(t, err)
		assert.Equal(t, opened.ID, stored.GameID)
	})

	t.Run("Started public games are not matched again", func(t *testing.T) {
		fixture := newGamePlayFixture()
		for _, id := range []string{"first", "second", "third"} {
			fixture.newPlayer(t, id)
		}

		first, err := fixture.service.JoinWaitingPublicGame(ctx, "first")
		require.NoError(t, err)
		_, err = fixture.service.JoinWaitingPublicGame(ctx, "second")
		require.NoError(t, err)

		third, err := fixture.service.JoinWaitingPublicGame(ctx, "third")

		require.NoError(t, err)
		assert.NotEqual(t, first.ID, third.ID)
		assert.True(t, third.IsWaiting())
	})

	t.Run("Seated player gets their own game back", func(t *testing.T) {
		fixture := newGamePlayFixture()
		fixture.newPlayer(t, "first")

		opened, err := fixture.service.JoinWaitingPublicGame(ctx, "first")
		require.NoError(t, err)

		again, err := fixture.service.JoinWaitingPublicGame(ctx, "first")

		require.NoError(t, err)
		assert.Equal(t, opened.ID, again.ID)
		assert.Len(t, fixture.games, 1)
	})
}

func TestGamePlayService_JoinWhileSeatedElsewhere(t *testing.T) {
	ctx := context.Background()

	// Given: two hosts, each waiting in their own private game
	fixture := newGamePlayFixture()
	first := fixture.newPlayer(t, "first")
	second := fixture.newPlayer(t, "second")

	firstGame, err := fixture.service.GetOrCreateGame(ctx, first, entity.PrivateType)
	require.NoError(t, err)
	secondGame, err := fixture.service.GetOrCreateGame(ctx, second, entity.PrivateType)
	require.NoError(t, err)

	// When: the second host tries to join the first game
	_, err = fixture.service.JoinGameByID(ctx, firstGame.ID, "second")

	// Then: the join is refused and both games are untouched
	require.ErrorIs(t, err, apperror.ErrGameAlreadyExists)

	stored, err := fixture.players.GetByID(ctx, "second")
	require.NoError(t, err)
	assert.Equal(t, secondGame.ID, stored.GameID)

	storedGame, err := fixture.games.GetByID(ctx, firstGame.ID)
	require.NoError(t, err)
	assert.True(t, storedGame.IsWaiting())
	assert.Len(t, storedGame.Players, 1)
}

func TestGamePlayService_PlayerWithoutGame(t *testing.T) {
	fixture := newGamePlayFixture()
	fixture.newPlayer(t, "idle")

	_, err := fixture.service.MakeTurn(context.Background(), "idle", engine.Action{})

	assert.ErrorIs(t, err, ErrPlayerNotInGame)
}
