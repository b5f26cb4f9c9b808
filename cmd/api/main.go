package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/zhouzirui/trust-tavern/backend/internal/config"
	"github.com/zhouzirui/trust-tavern/backend/internal/handler"
	"github.com/zhouzirui/trust-tavern/backend/internal/model/persona"
	"github.com/zhouzirui/trust-tavern/backend/internal/service/commentary"
	"github.com/zhouzirui/trust-tavern/backend/internal/service/game"
	"github.com/zhouzirui/trust-tavern/backend/internal/service/identity"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	personaStore := persona.NewMemoryStore(persona.Seed())

	identityService, err := identity.NewService(identity.Config{
		SigningKey: []byte(cfg.Identity.SigningKey),
		Issuer:     cfg.Identity.Issuer,
		TTL:        cfg.Identity.TokenTTL,
	})
	if err != nil {
		log.Fatalf("failed to initialize identity service: %v", err)
	}
	if cfg.Identity.SigningKey == "" {
		log.Println("IDENTITY_SIGNING_KEY 未配置，使用临时密钥，重启后令牌失效")
	}

	gameService := game.NewService(personaStore)

	var commentaryService *commentary.Service
	if cfg.AI.Enabled() {
		commentaryService, err = newCommentary(ctx, cfg.AI)
		if err != nil {
			log.Printf("warning: failed to initialize commentary: %v", err)
			log.Println("continuing without persona commentary - 请检查 Ark 模型相关环境变量")
		} else {
			log.Println("persona commentary initialized successfully")
		}
	} else {
		log.Println("Ark 凭证未配置，跳过角色点评功能")
	}

	router := handler.NewRouter(personaStore, identityService, gameService, commentaryService)

	startServer(ctx, cfg.Server, router)
}

func newCommentary(ctx context.Context, aiCfg config.AIConfig) (*commentary.Service, error) {
	chatModel, err := aiCfg.NewChatModel(ctx)
	if err != nil {
		return nil, err
	}
	return commentary.NewService(ctx, chatModel)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Trust Tavern backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
