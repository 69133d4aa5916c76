package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"hotel_booking/internal/adapters/auth"
	server "hotel_booking/internal/adapters/http_server"
	"hotel_booking/internal/adapters/observability"
	redisad "hotel_booking/internal/adapters/redis"
	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
	"hotel_booking/internal/shared"
	mongostore "hotel_booking/internal/storage/mongo"
	mysqlstore "hotel_booking/internal/storage/mysql"
)

//go:generate swag init -g cmd/api/main.go -d ../../ -o ../../docs --parseInternal

// @title       Hotel Booking API
// @version     1.0
// @description Hotels, bookings and accounts for the hotel booking service.
// @BasePath    /api/v1
//
// @securityDefinitions.apikey Bearer
// @in   header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT.
//
// @securityDefinitions.apikey CookieAuth
// @in   cookie
// @name token
func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// store
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("store", cfg.Store).Msg("store init failed")
	}
	defer closeStore()

	// rate limiter: shared across replicas when redis is configured
	var limiter domain.RateLimiter
	if cfg.RedisAddr != "" {
		rl := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, cfg.RateLimitMax, cfg.RateLimitWindow)
		defer rl.Close()
		if err := rl.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("redis ping failed; requests pass while it is down")
		}
		limiter = rl
	} else {
		limiter = server.NewMemoryLimiter(cfg.RateLimitMax, cfg.RateLimitWindow)
	}

	// services
	tokens, err := auth.NewJWT(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("token manager init failed")
	}
	authSvc := app.NewAuthService(store, tokens, auth.NewBcrypt(0))
	if cfg.AdminEmail != "" {
		if err := authSvc.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Fatal().Err(err).Msg("admin bootstrap failed")
		}
	}

	// http
	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, observability.MetricsHandler(reg))

	srv := server.New(server.Options{CORSOrigins: cfg.CORSOrigins, TrustProxy: cfg.TrustProxy})
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Hotels:       app.NewHotelService(store, store, cfg.PageMaxLimit),
		Bookings:     app.NewBookingService(store, store, cfg.BookingQuota),
		Auth:         authSvc,
		Limiter:      limiter,
		CookieSecure: cfg.CookieSecure,
	})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("store", cfg.Store).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// openStore connects the configured backend and returns it with its closer.
func openStore(ctx context.Context, cfg shared.Config) (domain.Store, func(), error) {
	switch cfg.Store {
	case shared.StoreMongo:
		cl, err := mongostore.NewClient(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		db, err := cl.DB(cfg.MongoDB)
		if err != nil {
			return nil, nil, err
		}
		repo := mongostore.New(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			return nil, nil, err
		}
		log.Info().Str("db", cfg.MongoDB).Msg("mongo connection ok")
		return repo, func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = cl.Close(closeCtx)
		}, nil

	default:
		if cfg.MigrateOnStart {
			if err := mysqlstore.MigrateUp(cfg.MySQLDSN); err != nil {
				return nil, nil, err
			}
			log.Info().Msg("migrations applied")
		}
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		db.SetMaxOpenConns(25)
		db.SetConnMaxIdleTime(5 * time.Minute)
		log.Info().Msg("database connection ok")
		return mysqlstore.New(db), func() { db.Close() }, nil
	}
}
