package service

import (
	"context"

	"github.com/edwintcloud/tictactoe/internal/engine"
	"github.com/edwintcloud/tictactoe/internal/entity"
	"github.com/stretchr/testify/mock"
)

type mockPlayerRepo struct {
	mock.Mock
}

func (that *mockPlayerRepo) CreateOrUpdate(ctx context.Context, player *entity.Player) error {
	args := that.Called(ctx, player)
	return args.Error(0)
}

func (that *mockPlayerRepo) GetByID(ctx context.Context, id string) (*entity.Player, error) {
	args := that.Called(ctx, id)
	return args.Get(0).(*entity.Player), args.Error(1)
}

type mockGameRepo struct {
	mock.Mock
}

func (that *mockGameRepo) CreateOrUpdate(ctx context.Context, game *entity.Game) error {
	args := that.Called(ctx, game)
	return args.Error(0)
}

func (that *mockGameRepo) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	args := that.Called(ctx, id)
	return args.Get(0).(*entity.Game), args.Error(1)
}

func (that *mockGameRepo) DeleteByID(ctx context.Context, id string) error {
	args := that.Called(ctx, id)
	return args.Error(0)
}

func (that *mockGameRepo) GetWaitingPublicGame(ctx context.Context) (*entity.Game, error) {
	args := that.Called(ctx)
	return args.Get(0).(*entity.Game), args.Error(1)
}

type mockMoveCache struct {
	mock.Mock
}

func (that *mockMoveCache) Get(ctx context.Context, board engine.Board) (engine.Action, error) {
	args := that.Called(ctx, board)
	return args.Get(0).(engine.Action), args.Error(1)
}

func (that *mockMoveCache) Set(ctx context.Context, board engine.Board, action engine.Action) error {
	args := that.Called(ctx, board, action)
	return args.Error(0)
}

type mockResultArchive struct {
	mock.Mock
}

func (that *mockResultArchive) Save(ctx context.Context, game *entity.Game) error {
	args := that.Called(ctx, game)
	return args.Error(0)
}
