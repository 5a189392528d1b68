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

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"loans-service/internal/adapter/cache"
	"loans-service/internal/adapter/client"
	httpadp "loans-service/internal/adapter/http"
	idemp "loans-service/internal/adapter/middleware"
	"loans-service/internal/adapter/repository/mysql"
	"loans-service/internal/config"
	infracache "loans-service/internal/infrastructure/cache"
	"loans-service/internal/infrastructure/db"
	"loans-service/internal/infrastructure/tracing"
	"loans-service/internal/usecase/loan"
)

const serviceName = "loans-service"

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, serviceName, cfg.OTelEndpoint, cfg.OTelEnabled)
	if err != nil {
		log.Fatalf("tracing: %v", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Printf("tracing shutdown: %v", err)
		}
	}()

	gdb, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		log.Fatalf("mysql: %v", err)
	}
	if cfg.AutoMigrate {
		if err := db.Migrate(gdb); err != nil {
			log.Fatalf("migrate: %v", err)
		}
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		log.Fatalf("mysql: %v", err)
	}

	var rdb *redis.Client
	if cfg.IdempEnabled || cfg.PatronCacheTTL > 0 {
		rdb, err = infracache.OpenRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer rdb.Close()
	}

	patrons := cache.NewPatronDirectory(client.NewPatronClient(cfg.PatronsURL, cfg.CollaboratorTimeout), rdb, cfg.PatronCacheTTL)
	books := client.NewCatalogClient(cfg.CatalogURL, cfg.CollaboratorTimeout)
	fines := client.NewFineClient(cfg.FinesURL, cfg.CollaboratorTimeout)

	uc := loan.NewUsecase(
		mysql.NewLoanRepository(gdb),
		mysql.NewGormUoW(gdb),
		patrons, books, fines,
		loan.WithCompensation(cfg.CompensatePartial),
	)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.JSONSerializer = httpadp.JSONSerializer{}
	e.Use(middleware.Logger(), middleware.Recover())

	// routes
	e.GET("/health", httpadp.NewHandler(sqlDB).Health)

	var mw []echo.MiddlewareFunc
	if cfg.IdempEnabled {
		mw = append(mw, idemp.IdempotencyMiddleware(rdb, cfg.IdempTTL()))
	}
	httpadp.NewLoanHandler(uc).Register(e.Group("/api/v1/patrons/:patron_id/loans", mw...))

	go func() {
		addr := ":" + cfg.AppPort
		log.Printf("listening on %s", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(sctx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
}
