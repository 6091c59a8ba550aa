package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/edwintcloud/tictactoe/internal/engine"
	"github.com/edwintcloud/tictactoe/internal/entity"
	"github.com/gorilla/websocket"
)

const shutdownTimeout = 5 * time.Second

type gameUseCase interface {
	GetOrCreatePlayer(ctx context.Context, playerID string) (*entity.Player, error)

	GetOrCreateGame(ctx context.Context, playerID, gameType string) (*entity.Game, error)
	JoinGame(ctx context.Context, gameID, playerID string) (*entity.Game, error)

	MakeTurn(ctx context.Context, playerID string, action engine.Action) (*entity.Game, error)
	Hint(ctx context.Context, playerID string) (engine.Action, error)
}

type handlerFunc func(ctx context.Context, msg *Message, conn *connection) error

type Server struct {
	logger      *slog.Logger
	gameUseCase gameUseCase
	upgrader    websocket.Upgrader

	handlers map[string]handlerFunc

	connections      map[string]*connection
	connectionsMutex sync.RWMutex
}

func New(logger *slog.Logger, gameUseCase gameUseCase) *Server {
	server := &Server{
		logger:      logger.With("component", "websocket"),
		gameUseCase: gameUseCase,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},

		handlers:    make(map[string]handlerFunc),
		connections: make(map[string]*connection),
	}

	server.handlers["connect"] = server.handleConnect
	server.handlers["game:new"] = server.handleNewGame
	server.handlers["game:join"] = server.handleJoinGame
	server.handlers["game:turn"] = server.handleGameTurn
	server.handlers["game:hint"] = server.handleHint

	return server
}

// Handler serves the WebSocket endpoint at /ws.
func (that *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", that.serveWS)

	return mux
}

// Start serves WebSocket clients on port until ctx is canceled.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
		that.closeAll()
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "serveWS")

	ws, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	conn := newConnection(ws)
	defer func() {
		that.handleDisconnect(conn)
		_ = conn.close()
	}()

	done := make(chan struct{})
	defer close(done)
	go conn.keepAlive(done)

	log.Info("WebSocket connection established", "remote", r.RemoteAddr)

	that.handleMessages(r.Context(), conn)
}

// handleMessages processes messages from the client until the connection fails.
func (that *Server) handleMessages(ctx context.Context, conn *connection) {
	log := that.logger.With("method", "handleMessages")

	_ = conn.conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.conn.SetPongHandler(func(string) error {
		return conn.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, body, err := conn.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("error reading message", "error", err)
			}
			return
		}

		_ = conn.conn.SetReadDeadline(time.Now().Add(pongWait))

		var message Message
		if err = json.Unmarshal(body, &message); err != nil {
			log.Warn("failed to unmarshal message", "error", err)
			_ = that.sendError(conn, "", "malformed message")
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Warn("unknown action", "action", message.Action)
			_ = that.sendError(conn, message.Action, "unknown action")
			continue
		}

		if err = handler(ctx, &message, conn); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

func (that *Server) register(playerID string, conn *connection) {
	that.connectionsMutex.Lock()
	that.connections[playerID] = conn
	that.connectionsMutex.Unlock()
}

func (that *Server) lookup(playerID string) (*connection, bool) {
	that.connectionsMutex.RLock()
	defer that.connectionsMutex.RUnlock()

	conn, ok := that.connections[playerID]

	return conn, ok
}

func (that *Server) handleDisconnect(conn *connection) {
	that.connectionsMutex.Lock()
	defer that.connectionsMutex.Unlock()

	for playerID, registered := range that.connections {
		if registered == conn {
			delete(that.connections, playerID)
			that.logger.Info("player disconnected", "playerID", playerID)
		}
	}
}

func (that *Server) closeAll() {
	that.connectionsMutex.RLock()
	defer that.connectionsMutex.RUnlock()

	for _, conn := range that.connections {
		_ = conn.close()
	}
}
