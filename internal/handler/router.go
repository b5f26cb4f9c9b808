package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	gameHandler "github.com/zhouzirui/trust-tavern/backend/internal/handler/game"
	identityHandler "github.com/zhouzirui/trust-tavern/backend/internal/handler/identity"
	"github.com/zhouzirui/trust-tavern/backend/internal/handler/persona"
	"github.com/zhouzirui/trust-tavern/backend/internal/handler/play"
	"github.com/zhouzirui/trust-tavern/backend/internal/handler/stream"
	middlewarePkg "github.com/zhouzirui/trust-tavern/backend/internal/middleware"
	personaModel "github.com/zhouzirui/trust-tavern/backend/internal/model/persona"
	"github.com/zhouzirui/trust-tavern/backend/internal/service/commentary"
	gameService "github.com/zhouzirui/trust-tavern/backend/internal/service/game"
	"github.com/zhouzirui/trust-tavern/backend/internal/service/identity"
	"github.com/zhouzirui/trust-tavern/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services. commentarySvc may be nil.
func NewRouter(personas personaModel.Store, identitySvc *identity.Service, gameSvc *gameService.Service, commentarySvc *commentary.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	personaHandler := persona.New(personas)
	idHandler := identityHandler.New(identitySvc)
	gamesHandler := gameHandler.New(gameSvc, commentarySvc)
	streamHandler := stream.New(gameSvc)
	wsHandler := play.NewWebSocketHandler(gameSvc, commentarySvc)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]any{
			"status":     "ok",
			"commentary": commentarySvc.Enabled(),
		})
	})

	r.Route("/api", func(api chi.Router) {
		personaHandler.RegisterRoutes(api)
		idHandler.RegisterRoutes(api)

		// 以下路由需要已连接的钱包
		api.Group(func(authed chi.Router) {
			authed.Use(middlewarePkg.RequireAccount(identitySvc))

			idHandler.RegisterAccountRoutes(authed)
			gamesHandler.RegisterRoutes(authed)
			streamHandler.RegisterRoutes(authed)
			wsHandler.RegisterRoutes(authed)
		})
	})

	return r
}
