package main

import (
	"context"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/assistralabs/assistra/internal/config"
	"github.com/assistralabs/assistra/internal/infra/database"
	"github.com/assistralabs/assistra/internal/infra/ratelimit"
	"github.com/assistralabs/assistra/internal/infra/repository"
	"github.com/assistralabs/assistra/internal/infra/telemetry"
	"github.com/assistralabs/assistra/internal/present/rest"
	"github.com/assistralabs/assistra/internal/present/rest/middleware"
	"github.com/assistralabs/assistra/internal/service"
	"github.com/assistralabs/assistra/internal/usecase"
	"github.com/assistralabs/assistra/token"
	"github.com/assistralabs/assistra/wallet"
)

func main() {
	configPath := "config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	conf, err := config.Load(configPath)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	if conf.Server.EnableTrace {
		shutdown, err := telemetry.Setup(context.Background(), "assistra", conf.Server.TraceEndpoint)
		if err != nil {
			panic("failed to setup tracing: " + err.Error())
		}
		defer shutdown(context.Background())
	}

	db, err := database.NewPostgres(conf.Server.PostgresDsn)
	if err != nil {
		panic("failed to connect database")
	}
	if err := database.MigratePostgres(db); err != nil {
		panic("failed to migrate database")
	}

	var challenges usecase.ChallengeStore
	if conf.Server.RedisAddr != "" {
		rdb, err := database.NewRedis(conf.Server.RedisAddr, conf.Server.RedisPassword, conf.Server.RedisDB)
		if err != nil {
			panic("failed to connect redis: " + err.Error())
		}
		challenges = repository.NewRedisChallengeStore(rdb)
	} else {
		challenges = repository.NewMemoryChallengeStore()
	}

	var limiter *ratelimit.Limiter
	if conf.Server.MemcachedAddr != "" {
		mc := database.NewMemcached(conf.Server.MemcachedAddr)
		limiter = ratelimit.New(mc, conf.Server.AuthRateLimit, time.Minute)
	}

	identityRepo := repository.NewIdentityRepository(db)
	tenantRepo := repository.NewTenantRepository(db)

	issuer := token.NewIssuer(
		[]byte(conf.Service.TokenSecret),
		conf.Service.FQDN,
		time.Duration(conf.Service.TokenTTLMinutes)*time.Minute,
	)

	identityUC := usecase.NewIdentityUsecase(challenges, identityRepo, wallet.Registry(), conf.Service.FQDN)
	tenantUC := usecase.NewTenantUsecase(tenantRepo, conf.Service.TrialDays)
	access := service.NewAccessService(issuer, identityRepo, tenantRepo)
	authMiddleware := middleware.NewAuthMiddleware(access)

	e := echo.New()
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	if conf.Server.EnableTrace {
		e.Use(otelecho.Middleware("assistra"))
	}

	handler := rest.NewHandler(identityUC, tenantUC, issuer, authMiddleware, limiter)
	handler.RegisterRoutes(e)

	e.Logger.Fatal(e.Start(conf.Server.Listen))
}
