package game

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/trust-tavern/backend/internal/engine"
	"github.com/zhouzirui/trust-tavern/backend/internal/middleware"
	"github.com/zhouzirui/trust-tavern/backend/internal/model/game"
	"github.com/zhouzirui/trust-tavern/backend/internal/service/commentary"
	gameService "github.com/zhouzirui/trust-tavern/backend/internal/service/game"
	"github.com/zhouzirui/trust-tavern/backend/pkg/utils"
)

// Handler 对局服务的HTTP处理器
type Handler struct {
	gameSvc       *gameService.Service
	commentarySvc *commentary.Service
}

// New 创建对局处理器，commentarySvc 可以为 nil。
func New(gameSvc *gameService.Service, commentarySvc *commentary.Service) *Handler {
	return &Handler{
		gameSvc:       gameSvc,
		commentarySvc: commentarySvc,
	}
}

// RegisterRoutes 注册对局相关的路由，调用方负责挂载身份校验中间件。
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/games", h.handleCreateGame)
	r.Get("/games", h.handleListGames)
	r.Get("/games/{gameID}", h.handleGetGame)
	r.Post("/games/{gameID}/role", h.handleChooseRole)
	r.Post("/games/{gameID}/rounds", h.handleSubmitRound)
	r.Post("/games/{gameID}/reset", h.handleReset)
}

type roundResponse struct {
	Record     game.RoundView `json:"record"`
	Snapshot   game.Snapshot  `json:"snapshot"`
	Commentary string         `json:"commentary,omitempty"`
}

func (h *Handler) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	account, _ := middleware.AccountFrom(r.Context())

	g, snap, err := h.gameSvc.CreateGame(r.Context(), account)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusCreated, map[string]any{
		"game":     g,
		"snapshot": snap,
	})
}

func (h *Handler) handleListGames(w http.ResponseWriter, r *http.Request) {
	account, _ := middleware.AccountFrom(r.Context())
	utils.RespondJSON(w, http.StatusOK, h.gameSvc.ListGames(r.Context(), account.ID))
}

func (h *Handler) handleGetGame(w http.ResponseWriter, r *http.Request) {
	account, _ := middleware.AccountFrom(r.Context())

	snap, err := h.gameSvc.Snapshot(r.Context(), account.ID, chi.URLParam(r, "gameID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, snap)
}

func (h *Handler) handleChooseRole(w http.ResponseWriter, r *http.Request) {
	account, _ := middleware.AccountFrom(r.Context())

	var payload struct {
		Role string `json:"role"`
	}
	if err := utils.DecodeJSON(w, r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	role, err := game.ParseRole(payload.Role)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "role must be Trustor or Trustee")
		return
	}

	snap, err := h.gameSvc.ChooseRole(r.Context(), account.ID, chi.URLParam(r, "gameID"), role)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, snap)
}

func (h *Handler) handleSubmitRound(w http.ResponseWriter, r *http.Request) {
	account, _ := middleware.AccountFrom(r.Context())
	gameID := chi.URLParam(r, "gameID")

	var payload struct {
		Amount json.RawMessage `json:"amount"`
	}
	if err := utils.DecodeJSON(w, r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, snap, err := h.gameSvc.SubmitRound(r.Context(), account.ID, gameID, AmountInput(payload.Amount))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	resp := roundResponse{
		Record:   record.View(snap.Phase == game.PhaseComplete),
		Snapshot: snap,
	}
	if h.commentarySvc.Enabled() {
		resp.Commentary = h.comment(r, account.ID, gameID, snap.Role, record)
	}

	utils.RespondJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	account, _ := middleware.AccountFrom(r.Context())

	snap, err := h.gameSvc.Reset(r.Context(), account.ID, chi.URLParam(r, "gameID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, snap)
}

// comment is best effort; a failing model never fails the round.
func (h *Handler) comment(r *http.Request, accountID, gameID string, role game.Role, record game.RoundRecord) string {
	p, err := h.gameSvc.Persona(r.Context(), accountID, gameID)
	if err != nil {
		return ""
	}
	text, err := h.commentarySvc.Comment(r.Context(), p, role, record)
	if err != nil {
		log.Printf("[game] commentary failed for game=%s: %v", gameID, err)
		return ""
	}
	return text
}

// AmountInput turns a JSON number or string into raw contribution input.
// Numbers are written out in full so 1e3 reads as 1000.
func AmountInput(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return ""
}

// StatusFor maps service and engine errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, gameService.ErrGameNotFound):
		return http.StatusNotFound
	case errors.Is(err, gameService.ErrAccountRequired):
		return http.StatusUnauthorized
	case errors.Is(err, engine.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, engine.ErrInvalidRole):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondServiceError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		log.Printf("[game] internal error: %v", err)
		message = "internal error"
	}
	utils.RespondError(w, status, message)
}
