package stream

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	gameHandler "github.com/zhouzirui/trust-tavern/backend/internal/handler/game"
	"github.com/zhouzirui/trust-tavern/backend/internal/middleware"
	"github.com/zhouzirui/trust-tavern/backend/internal/model/game"
	gameService "github.com/zhouzirui/trust-tavern/backend/internal/service/game"
	"github.com/zhouzirui/trust-tavern/backend/pkg/utils"
)

const heartbeatInterval = 15 * time.Second

// Handler streams game events to the browser via Server-Sent Events.
type Handler struct {
	gameSvc   *gameService.Service
	heartbeat time.Duration
}

// New creates a new stream handler
func New(gameSvc *gameService.Service) *Handler {
	return &Handler{gameSvc: gameSvc, heartbeat: heartbeatInterval}
}

// RegisterRoutes mounts the event stream; callers apply account checks.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/games/{gameID}/events", h.handleEvents)
}

func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	account, _ := middleware.AccountFrom(r.Context())
	gameID := chi.URLParam(r, "gameID")
	ctx := r.Context()

	snap, err := h.gameSvc.Snapshot(ctx, account.ID, gameID)
	if err != nil {
		utils.RespondError(w, gameHandler.StatusFor(err), err.Error())
		return
	}
	events, cancel, err := h.gameSvc.Subscribe(ctx, account.ID, gameID)
	if err != nil {
		utils.RespondError(w, gameHandler.StatusFor(err), err.Error())
		return
	}
	defer cancel()

	utils.SetupSSEHeaders(w)
	w.WriteHeader(http.StatusOK)

	log.Printf("[sse] opening event stream for game=%s", gameID)
	if err := utils.SendSSEEvent(w, flusher, string(game.EventSnapshot), game.Event{Type: game.EventSnapshot, GameID: gameID, Snapshot: snap}); err != nil {
		log.Printf("[sse] %v", err)
		return
	}

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("[sse] closing event stream for game=%s", gameID)
			return
		case <-ticker.C:
			if err := utils.SendSSEComment(w, flusher, "heartbeat"); err != nil {
				log.Printf("[sse] %v", err)
				return
			}
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := utils.SendSSEEvent(w, flusher, string(event.Type), event); err != nil {
				log.Printf("[sse] %v", err)
				return
			}
		}
	}
}
