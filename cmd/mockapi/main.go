package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/logger"
	"storefront/internal/mockapi"
	"storefront/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	addr := flag.String("addr", ":8080", "listen address")
	seed := flag.Bool("seed", false, "create seller@example.com and client@example.com (password: password123)")
	debug := flag.Bool("debug", false, "debug logging and gin debug mode")
	flag.Parse()

	if err := logger.Init(logger.Config{Production: !*debug, Debug: *debug}); err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()
	if !*debug {
		gin.SetMode(gin.ReleaseMode)
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	srv, err := mockapi.New(mockapi.Options{Secret: []byte(secret)})
	if err != nil {
		log.Fatal(err)
	}

	if *seed {
		for _, acc := range []struct {
			email string
			name  string
			role  session.Role
		}{
			{"seller@example.com", "Demo Seller", session.RoleSeller},
			{"client@example.com", "Demo Client", session.RoleClient},
		} {
			if _, err := srv.Seed(acc.email, "password123", acc.name, acc.role); err != nil {
				log.Fatal(err)
			}
			logger.L().Info("seeded account", zap.String("email", acc.email), zap.String("role", string(acc.role)))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx, *addr); err != nil {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}
