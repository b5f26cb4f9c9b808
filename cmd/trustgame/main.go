package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/zhouzirui/trust-tavern/backend/internal/config"
	"github.com/zhouzirui/trust-tavern/backend/internal/model/persona"
	"github.com/zhouzirui/trust-tavern/backend/internal/random"
	"github.com/zhouzirui/trust-tavern/backend/internal/service/game"
	"github.com/zhouzirui/trust-tavern/backend/internal/service/identity"
)

func main() {
	address := flag.String("address", "", "钱包地址 (0x 开头的 40 位十六进制)，留空则交互输入")
	seed := flag.Int64("seed", 0, "随机种子，0 表示使用系统随机源")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("[WARN] 无法加载 .env，改用系统环境变量: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("配置加载失败: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	identitySvc, err := identity.NewService(identity.Config{
		SigningKey: []byte(cfg.Identity.SigningKey),
		Issuer:     cfg.Identity.Issuer,
		TTL:        cfg.Identity.TokenTTL,
	})
	if err != nil {
		log.Fatalf("identity init failed: %v", err)
	}

	var opts []game.Option
	if *seed != 0 {
		opts = append(opts, game.WithSourceFactory(func() (random.Source, error) {
			return random.NewSeeded(*seed), nil
		}))
	}
	gameSvc := game.NewService(persona.NewMemoryStore(persona.Seed()), opts...)

	c := newClient(os.Stdin, os.Stdout, identitySvc, gameSvc)
	if err := c.run(ctx, *address); err != nil {
		log.Fatalf("trust game: %v", err)
	}
}
