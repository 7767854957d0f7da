package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "autoshop/docs" // swagger docs

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"autoshop/internal/auth"
	"autoshop/internal/cache"
	"autoshop/internal/config"
	"autoshop/internal/db"
	"autoshop/internal/handler"
	"autoshop/internal/repository"
	"autoshop/internal/router"
	"autoshop/internal/service"
)

// @title Auto Shop API
// @version 1.0
// @description Auto shop backend: customers, mechanics, inventory and service tickets with JWT authentication.
// @host localhost:8080
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warnf("load .env: %v", err)
	}
	cfg := config.Load()

	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(logLevel(cfg.LogLevel))
	e.Use(middleware.RequestID())

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		e.Logger.Fatalf("database init: %v", err)
	}

	if cfg.ResetDB {
		e.Logger.Warn("RESET_DB=true detected, dropping all tables...")
		for _, table := range db.Tables() {
			if err := gormDB.Migrator().DropTable(table); err != nil {
				e.Logger.Warnf("failed to drop table (may not exist): %v", err)
			}
		}
	}

	if err := db.Migrate(gormDB); err != nil {
		e.Logger.Fatalf("migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 2*time.Second)
	if err := cacheClient.Ping(pingCtx); err != nil {
		e.Logger.Warnf("redis unavailable at %s, caching disabled: %v", cfg.RedisAddr, err)
	}
	cancelPing()

	repos := repository.New(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.TokenTTL)
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	authService := service.NewAuthService(repos.Users, jwtService, hasher, tokenStore)
	userService := service.NewUserService(repos, hasher, cacheClient)
	mechanicService := service.NewMechanicService(repos)
	inventoryService := service.NewInventoryService(repos)
	ticketService := service.NewTicketService(repos)

	router.Register(e, cfg, cacheClient, authService, router.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Users:     handler.NewUserHandler(userService),
		Mechanics: handler.NewMechanicHandler(mechanicService),
		Inventory: handler.NewInventoryHandler(inventoryService),
		Tickets:   handler.NewTicketHandler(ticketService),
	})

	e.Logger.Infof("Swagger documentation available at: %s", swaggerURL(cfg))

	go func() {
		addr := ":" + cfg.ServerPort
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.Logger.Fatalf("server start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		e.Logger.Errorf("shutdown: %v", err)
	}
}

// SWAGGER_HOST may already include a scheme.
func swaggerURL(cfg *config.Config) string {
	host := cfg.SwaggerHost
	if host == "" {
		host = "localhost:" + cfg.ServerPort
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return fmt.Sprintf("%s/swagger/index.html", host)
}

func logLevel(name string) log.Lvl {
	switch strings.ToLower(name) {
	case "debug":
		return log.DEBUG
	case "warn":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}
