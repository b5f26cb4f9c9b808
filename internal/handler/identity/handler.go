package identity

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/trust-tavern/backend/internal/middleware"
	"github.com/zhouzirui/trust-tavern/backend/internal/service/identity"
	"github.com/zhouzirui/trust-tavern/backend/pkg/utils"
)

// connectFailed is the only notice players see for a failed connection.
const connectFailed = "wallet connection rejected or failed"

// Handler 钱包身份的HTTP处理器
type Handler struct {
	provider identity.Provider
}

// New 创建身份处理器
func New(provider identity.Provider) *Handler {
	return &Handler{provider: provider}
}

// RegisterRoutes 注册无需登录的身份路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/identity/connect", h.handleConnect)
}

// RegisterAccountRoutes 注册需要已连接账户的路由
func (h *Handler) RegisterAccountRoutes(r chi.Router) {
	r.Get("/identity/me", h.handleMe)
}

func (h *Handler) handleConnect(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Address string `json:"address"`
	}
	if err := utils.DecodeJSON(w, r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	account, err := h.provider.Connect(r.Context(), payload.Address)
	if err != nil {
		log.Printf("[identity] connect failed: %v", err)
		utils.RespondError(w, http.StatusUnauthorized, connectFailed)
		return
	}

	utils.RespondJSON(w, http.StatusOK, account)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	account, ok := middleware.AccountFrom(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, connectFailed)
		return
	}
	utils.RespondJSON(w, http.StatusOK, account)
}
