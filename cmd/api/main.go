package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/ahsrafiq/glass-chat-craft/internal/compose"
	"github.com/ahsrafiq/glass-chat-craft/internal/config"
	"github.com/ahsrafiq/glass-chat-craft/internal/db"
	"github.com/ahsrafiq/glass-chat-craft/internal/email"
	apihttp "github.com/ahsrafiq/glass-chat-craft/internal/http"
	"github.com/ahsrafiq/glass-chat-craft/internal/repository"
	"github.com/ahsrafiq/glass-chat-craft/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Ping(ctx, pool); err != nil {
		logger.Fatal("db ping", zap.Error(err))
	}

	userRepo := repository.NewPgUserRepository(pool)
	brandRepo := repository.NewPgBrandRepository(pool)
	draftRepo := repository.NewPgDraftRepository(pool)
	revisionRepo := repository.NewPgRevisionRepository(pool)
	feedbackRepo := repository.NewPgFeedbackRepository(pool)

	var composer compose.Composer
	switch {
	case cfg.ComposeFnURL != "":
		composer = compose.NewFunctionClient(cfg.ComposeFnURL)
		logger.Info("using compose function", zap.String("url", cfg.ComposeFnURL))
	case cfg.OpenAIAPIKey != "":
		composer, err = compose.NewOpenAIComposer(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
		if err != nil {
			logger.Fatal("openai composer init failed", zap.Error(err))
		}
		logger.Info("using openai composer", zap.String("model", cfg.OpenAIModel))
	default:
		composer = compose.NewTemplateComposer()
		logger.Info("using template composer")
	}

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	var (
		otpLimiter  service.OTPRateLimiter
		tokenStore  service.RefreshTokenStore
		redisClient *redis.Client
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			otpLimiter = service.NewRedisOTPRateLimiter(redisClient, 10*time.Minute, 3)
			tokenStore = service.NewRedisRefreshTokenStore(redisClient)
		}
		cancel()
	}

	jwtSvc := service.NewJWTServiceWithStore(
		cfg.JWTSecret,
		time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute,
		time.Duration(cfg.JWTRefreshTTLMinutes)*time.Minute,
		tokenStore,
	)
	if cfg.JWTSecret == "" {
		logger.Warn("jwt secret not configured")
	}

	userSvc := service.NewUserService(logger, userRepo, emailSender, otpLimiter)
	brandSvc := service.NewBrandService(brandRepo)
	draftSvc := service.NewDraftService(logger, composer, draftRepo, brandRepo, revisionRepo, feedbackRepo, emailSender)

	userHandler := apihttp.NewUserHandler(logger, userSvc, jwtSvc)
	brandHandler := apihttp.NewBrandHandler(logger, brandSvc)
	draftHandler := apihttp.NewDraftHandler(logger, draftSvc)
	router := apihttp.NewRouter(logger, jwtSvc, userHandler, brandHandler, draftHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
