package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/edwintcloud/tictactoe/internal/apperror"
	"github.com/edwintcloud/tictactoe/internal/engine"
	"github.com/edwintcloud/tictactoe/internal/entity"
	"github.com/edwintcloud/tictactoe/internal/repository"
	"github.com/edwintcloud/tictactoe/internal/service"
	"github.com/edwintcloud/tictactoe/internal/usecase"
	"github.com/go-chi/chi/v5"
)

type gameUseCase interface {
	GetOrCreatePlayer(ctx context.Context, playerID string) (*entity.Player, error)

	GetOrCreateGame(ctx context.Context, playerID, gameType string) (*entity.Game, error)
	JoinGame(ctx context.Context, gameID, playerID string) (*entity.Game, error)

	MakeTurn(ctx context.Context, playerID string, action engine.Action) (*entity.Game, error)
	Hint(ctx context.Context, playerID string) (engine.Action, error)

	Analyze(ctx context.Context, board engine.Board) (*usecase.Analysis, error)
	Stats(ctx context.Context) (*repository.Stats, error)
}

type Handlers interface {
	Solve(w http.ResponseWriter, r *http.Request)
	Stats(w http.ResponseWriter, r *http.Request)

	CreatePlayer(w http.ResponseWriter, r *http.Request)
	Hint(w http.ResponseWriter, r *http.Request)

	CreateGame(w http.ResponseWriter, r *http.Request)
	JoinGame(w http.ResponseWriter, r *http.Request)
	MakeTurn(w http.ResponseWriter, r *http.Request)
}

type solveRequest struct {
	Board *engine.Board `json:"board"`
}

type createGameRequest struct {
	PlayerID string `json:"player_id"`
	Type     string `json:"type"`
}

type joinGameRequest struct {
	PlayerID string `json:"player_id"`
}

type turnRequest struct {
	PlayerID string `json:"player_id"`
	Row      *int   `json:"row"`
	Col      *int   `json:"col"`
}

type hintResponse struct {
	Action engine.Action `json:"action"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type handlers struct {
	logger      *slog.Logger
	gameUseCase gameUseCase
}

func NewHandlers(logger *slog.Logger, gameUseCase gameUseCase) Handlers {
	return &handlers{
		logger:      logger,
		gameUseCase: gameUseCase,
	}
}

func (that *handlers) Solve(w http.ResponseWriter, r *http.Request) {
	var req solveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	if req.Board == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "board is required"})
		return
	}

	if err := req.Board.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	analysis, err := that.gameUseCase.Analyze(r.Context(), *req.Board)
	if err != nil {
		that.writeError(w, "Solve", err)
		return
	}

	writeJSON(w, http.StatusOK, analysis)
}

func (that *handlers) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := that.gameUseCase.Stats(r.Context())
	if err != nil {
		that.writeError(w, "Stats", err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func (that *handlers) CreatePlayer(w http.ResponseWriter, r *http.Request) {
	player, err := that.gameUseCase.GetOrCreatePlayer(r.Context(), "")
	if err != nil {
		that.writeError(w, "CreatePlayer", err)
		return
	}

	writeJSON(w, http.StatusCreated, player)
}

func (that *handlers) Hint(w http.ResponseWriter, r *http.Request) {
	action, err := that.gameUseCase.Hint(r.Context(), chi.URLParam(r, "playerID"))
	if err != nil {
		that.writeError(w, "Hint", err)
		return
	}

	writeJSON(w, http.StatusOK, hintResponse{Action: action})
}

func (that *handlers) CreateGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PlayerID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "player_id is required"})
		return
	}

	if req.Type == "" {
		req.Type = entity.WithBotType
	}

	game, err := that.gameUseCase.GetOrCreateGame(r.Context(), req.PlayerID, req.Type)
	if err != nil {
		that.writeError(w, "CreateGame", err)
		return
	}

	writeJSON(w, http.StatusOK, game)
}

// JoinGame seats the player in the game from the path, or matches them into a public game when the path has none.
func (that *handlers) JoinGame(w http.ResponseWriter, r *http.Request) {
	var req joinGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PlayerID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "player_id is required"})
		return
	}

	game, err := that.gameUseCase.JoinGame(r.Context(), chi.URLParam(r, "gameID"), req.PlayerID)
	if err != nil {
		that.writeError(w, "JoinGame", err)
		return
	}

	writeJSON(w, http.StatusOK, game)
}

func (that *handlers) MakeTurn(w http.ResponseWriter, r *http.Request) {
	var req turnRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil || req.PlayerID == "" || req.Row == nil || req.Col == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "player_id, row and col are required"})
		return
	}

	game, err := that.gameUseCase.MakeTurn(r.Context(), req.PlayerID, engine.Action{Row: *req.Row, Col: *req.Col})
	if err != nil {
		that.writeError(w, "MakeTurn", err)
		return
	}

	writeJSON(w, http.StatusOK, game)
}

func (that *handlers) writeError(w http.ResponseWriter, method string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		that.logger.Error("request failed", "method", method, "error", err)
		writeJSON(w, status, errorResponse{Error: http.StatusText(status)})
		return
	}

	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrInvalidAction):
		return http.StatusUnprocessableEntity
	case errors.Is(err, engine.ErrInvalidBoard),
		errors.Is(err, apperror.ErrUnknownGameType):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrPlayerNotFound),
		errors.Is(err, repository.ErrGameNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrNotYourTurn),
		errors.Is(err, apperror.ErrGameFinished),
		errors.Is(err, apperror.ErrGameIsNotStarted),
		errors.Is(err, apperror.ErrGameAlreadyExists),
		errors.Is(err, service.ErrPlayerNotInGame),
		errors.Is(err, service.ErrNoAvailableMoves),
		errors.Is(err, apperror.ErrNoActiveGames):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
