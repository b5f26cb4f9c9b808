package play

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	gameHandler "github.com/zhouzirui/trust-tavern/backend/internal/handler/game"
	"github.com/zhouzirui/trust-tavern/backend/internal/middleware"
	"github.com/zhouzirui/trust-tavern/backend/internal/model/game"
	"github.com/zhouzirui/trust-tavern/backend/internal/service/commentary"
	gameService "github.com/zhouzirui/trust-tavern/backend/internal/service/game"
	"github.com/zhouzirui/trust-tavern/backend/pkg/utils"
)

const (
	readTimeout  = 60 * time.Second
	pingInterval = 54 * time.Second
	writeTimeout = 10 * time.Second
)

// WebSocketHandler lets a client play a game over a single websocket.
type WebSocketHandler struct {
	gameSvc       *gameService.Service
	commentarySvc *commentary.Service
	upgrader      websocket.Upgrader
}

// NewWebSocketHandler 创建WebSocket处理器，commentarySvc 可以为 nil。
func NewWebSocketHandler(gameSvc *gameService.Service, commentarySvc *commentary.Service) *WebSocketHandler {
	return &WebSocketHandler{
		gameSvc:       gameSvc,
		commentarySvc: commentarySvc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes 注册WebSocket路由，调用方负责身份校验。
func (h *WebSocketHandler) RegisterRoutes(r chi.Router) {
	r.Get("/games/{gameID}/ws", h.handleWebSocket)
}

type inboundMessage struct {
	Type   string          `json:"type"`
	GameID string          `json:"gameId"`
	Data   json.RawMessage `json:"data"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	GameID    string      `json:"gameId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// connection serialises writes; gorilla allows one concurrent writer.
type connection struct {
	conn    *websocket.Conn
	gameID  string
	writeMu sync.Mutex
}

func (c *connection) send(msgType string, data interface{}) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	msg := outgoingMessage{Type: msgType, GameID: c.gameID, Data: data, Timestamp: time.Now().Unix()}
	if err := c.conn.WriteJSON(msg); err != nil {
		log.Printf("[ws] write %s failed for game=%s: %v", msgType, c.gameID, err)
	}
}

func (c *connection) sendError(message string) {
	c.send("error", map[string]string{"message": message})
}

func (c *connection) ping() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
}

func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	account, _ := middleware.AccountFrom(r.Context())
	gameID := chi.URLParam(r, "gameID")

	snap, err := h.gameSvc.Snapshot(r.Context(), account.ID, gameID)
	if err != nil {
		utils.RespondError(w, gameHandler.StatusFor(err), err.Error())
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	events, unsubscribe, err := h.gameSvc.Subscribe(ctx, account.ID, gameID)
	if err != nil {
		log.Printf("[ws] subscribe failed for game=%s: %v", gameID, err)
		return
	}
	defer unsubscribe()

	c := &connection{conn: conn, gameID: gameID}
	log.Printf("[ws] new connection for game=%s", gameID)

	conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	go h.forwardEvents(ctx, c, events)
	go h.pingLoop(ctx, c)

	c.send("connected", snap)

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[ws] read error for game=%s: %v", gameID, err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(readTimeout))

		if msg.GameID != "" && msg.GameID != gameID {
			c.sendError("game mismatch")
			continue
		}
		h.handleMessage(ctx, c, account.ID, &msg)
	}
}

func (h *WebSocketHandler) handleMessage(ctx context.Context, c *connection, accountID string, msg *inboundMessage) {
	switch msg.Type {
	case "role":
		var payload struct {
			Role string `json:"role"`
		}
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			c.sendError("invalid role payload")
			return
		}
		role, err := game.ParseRole(payload.Role)
		if err != nil {
			c.sendError("role must be Trustor or Trustee")
			return
		}
		if _, err := h.gameSvc.ChooseRole(ctx, accountID, c.gameID, role); err != nil {
			c.sendError(err.Error())
		}
	case "submit":
		var payload struct {
			Amount json.RawMessage `json:"amount"`
		}
		if len(msg.Data) > 0 {
			if err := json.Unmarshal(msg.Data, &payload); err != nil {
				c.sendError("invalid submit payload")
				return
			}
		}
		record, snap, err := h.gameSvc.SubmitRound(ctx, accountID, c.gameID, gameHandler.AmountInput(payload.Amount))
		if err != nil {
			c.sendError(err.Error())
			return
		}
		h.sendCommentary(ctx, c, accountID, snap.Role, record)
	case "reset":
		if _, err := h.gameSvc.Reset(ctx, accountID, c.gameID); err != nil {
			c.sendError(err.Error())
		}
	case "snapshot":
		snap, err := h.gameSvc.Snapshot(ctx, accountID, c.gameID)
		if err != nil {
			c.sendError(err.Error())
			return
		}
		c.send(string(game.EventSnapshot), snap)
	default:
		c.sendError("unsupported message type: " + msg.Type)
	}
}

func (h *WebSocketHandler) sendCommentary(ctx context.Context, c *connection, accountID string, role game.Role, record game.RoundRecord) {
	if !h.commentarySvc.Enabled() {
		return
	}
	p, err := h.gameSvc.Persona(ctx, accountID, c.gameID)
	if err != nil {
		return
	}
	text, err := h.commentarySvc.Comment(ctx, p, role, record)
	if err != nil {
		log.Printf("[ws] commentary failed for game=%s: %v", c.gameID, err)
		return
	}
	if text != "" {
		c.send("commentary", map[string]any{"round": record.RoundNumber, "persona": p.Name, "text": text})
	}
}

func (h *WebSocketHandler) forwardEvents(ctx context.Context, c *connection, events <-chan game.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			c.send(string(event.Type), event)
		}
	}
}

// pingLoop 定期发送ping消息
func (h *WebSocketHandler) pingLoop(ctx context.Context, c *connection) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.ping(); err != nil {
				return
			}
		}
	}
}
