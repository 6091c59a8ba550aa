package websocket

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/edwintcloud/tictactoe/internal/entity"
)

const errNotConnected = "connect first"

func (that *Server) handleConnect(ctx context.Context, msg *Message, conn *connection) error {
	log := that.logger.With("method", "handleConnect")

	payloadReq, err := decodePayload(msg)
	if err != nil {
		return that.sendError(conn, msg.Action, err.Error())
	}

	playerID := ""
	if payloadReq.Player != nil {
		playerID = payloadReq.Player.ID
	}

	if conn.playerID != "" && playerID != conn.playerID {
		return that.sendError(conn, msg.Action, "already connected as another player")
	}

	player, err := that.gameUseCase.GetOrCreatePlayer(ctx, playerID)
	if err != nil {
		log.Error("failed to create or get player", "error", err)
		return that.sendError(conn, msg.Action, "failed to get or create a player")
	}

	conn.playerID = player.ID
	that.register(player.ID, conn)

	log.Info("successfully connected player", "playerID", player.ID)

	return conn.send(msg.Action, Payload{Player: player})
}

func (that *Server) handleNewGame(ctx context.Context, msg *Message, conn *connection) error {
	log := that.logger.With("method", "handleNewGame")

	if conn.playerID == "" {
		return that.sendError(conn, msg.Action, errNotConnected)
	}

	payloadReq, err := decodePayload(msg)
	if err != nil {
		return that.sendError(conn, msg.Action, err.Error())
	}

	gameType := entity.WithBotType
	if payloadReq.Game != nil && payloadReq.Game.Type != "" {
		gameType = payloadReq.Game.Type
	}

	game, err := that.gameUseCase.GetOrCreateGame(ctx, conn.playerID, gameType)
	if err != nil {
		log.Error("failed to create or get game", "playerID", conn.playerID, "error", err)
		return that.sendError(conn, msg.Action, err.Error())
	}

	that.broadcast(msg.Action, game)

	return nil
}

// handleJoinGame seats the player in the requested game, or matches them into a public game when no ID is given.
func (that *Server) handleJoinGame(ctx context.Context, msg *Message, conn *connection) error {
	log := that.logger.With("method", "handleJoinGame")

	if conn.playerID == "" {
		return that.sendError(conn, msg.Action, errNotConnected)
	}

	payloadReq, err := decodePayload(msg)
	if err != nil {
		return that.sendError(conn, msg.Action, err.Error())
	}

	gameID := ""
	if payloadReq.Game != nil {
		gameID = payloadReq.Game.ID
	}

	game, err := that.gameUseCase.JoinGame(ctx, gameID, conn.playerID)
	if err != nil {
		log.Error("failed to join game", "gameID", gameID, "error", err)
		if gameID == "" {
			return that.sendError(conn, msg.Action, err.Error())
		}
		return that.sendError(conn, msg.Action, fmt.Sprintf("game %s: %v", gameID, err))
	}

	that.broadcast(msg.Action, game)

	log.Info("player joined game", "playerID", conn.playerID, "gameID", game.ID)

	return nil
}

func (that *Server) handleGameTurn(ctx context.Context, msg *Message, conn *connection) error {
	log := that.logger.With("method", "handleGameTurn")

	if conn.playerID == "" {
		return that.sendError(conn, msg.Action, errNotConnected)
	}

	payloadReq, err := decodePayload(msg)
	if err != nil {
		return that.sendError(conn, msg.Action, err.Error())
	}

	if payloadReq.Action == nil {
		return that.sendError(conn, msg.Action, "action is required")
	}

	game, err := that.gameUseCase.MakeTurn(ctx, conn.playerID, *payloadReq.Action)
	if err != nil {
		log.Warn("failed to make turn", "playerID", conn.playerID, "error", err)
		return that.sendError(conn, msg.Action, err.Error())
	}

	that.broadcast(msg.Action, game)

	if game.IsFinished() {
		log.Info("game finished", "gameID", game.ID, "winner", game.Winner)
	}

	return nil
}

func (that *Server) handleHint(ctx context.Context, msg *Message, conn *connection) error {
	if conn.playerID == "" {
		return that.sendError(conn, msg.Action, errNotConnected)
	}

	action, err := that.gameUseCase.Hint(ctx, conn.playerID)
	if err != nil {
		return that.sendError(conn, msg.Action, err.Error())
	}

	return conn.send(msg.Action, Payload{Action: &action})
}

// broadcast sends the game to every connected human player seated in it.
func (that *Server) broadcast(action string, game *entity.Game) {
	log := that.logger.With("method", "broadcast", "gameID", game.ID)

	for _, player := range game.Players {
		if player.IsBot() {
			continue
		}

		conn, ok := that.lookup(player.ID)
		if !ok {
			log.Warn("connection not found for player", "playerID", player.ID)
			continue
		}

		if err := conn.send(action, Payload{Player: player, Game: game}); err != nil {
			log.Error("failed to send game update", "playerID", player.ID, "error", err)
		}
	}
}

func (that *Server) sendError(conn *connection, action, errorMsg string) error {
	if err := conn.send(action, Payload{Error: errorMsg}); err != nil {
		return fmt.Errorf("failed to send error response: %w", err)
	}

	return nil
}

func decodePayload(msg *Message) (*Payload, error) {
	var payload Payload
	if len(msg.Payload) == 0 {
		return &payload, nil
	}

	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return nil, fmt.Errorf("invalid payload: %w", err)
	}

	return &payload, nil
}
