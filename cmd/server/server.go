package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/thereayou/groupchat/internal/config"
	"github.com/thereayou/groupchat/internal/database"
	"github.com/thereayou/groupchat/internal/handlers"
	"github.com/thereayou/groupchat/internal/services"
	"github.com/thereayou/groupchat/internal/websocket"
	"github.com/thereayou/groupchat/pkg/auth"
	"github.com/thereayou/groupchat/pkg/storage"
	"golang.org/x/sync/errgroup"
)

type Server struct {
	Config     config.Config
	Router     *gin.Engine
	DB         *database.Database
	Redis      *redis.Client
	Hub        *websocket.Hub
	JWTManager *auth.JWTManager
	Revoker    auth.TokenRevoker
}

// Handlers обработчики, которые подключает APIEndpoints
type Handlers struct {
	Auth      *handlers.AuthHandler
	Contacts  *handlers.ContactHandler
	Groups    *handlers.GroupHandler
	Messages  *handlers.HTTPMessageHandler
	Uploads   *handlers.UploadHandler
	WebSocket *handlers.WebSocketHandler
}

// LoadEnv подхватывает .env.local или .env, если они есть
func LoadEnv() {
	if err := godotenv.Load(".env.local"); err != nil {
		if err := godotenv.Load(); err != nil {
			log.Debug().Msg(".env not found, using environment variables")
		}
	}
}

// SetupLogger настраивает глобальный zerolog
func SetupLogger(cfg config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func NewServer(ctx context.Context, cfg config.Config) (*Server, error) {
	gin.SetMode(cfg.GinMode)

	db, err := database.Connect(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("database connect failed: %w", err)
	}

	var (
		rdb     *redis.Client
		revoker auth.TokenRevoker
	)
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		rdb = redis.NewClient(redisOpts)
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis connect failed: %w", err)
		}
		revoker = auth.NewRedisRevoker(rdb)
	} else {
		log.Warn().Msg("REDIS_URL is not set, revoked tokens are kept in memory")
		revoker = auth.NewMemoryRevoker()
	}

	accessMgr := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTTL)
	refreshMgr := auth.NewJWTManager(cfg.Auth.RefreshSecret, cfg.Auth.RefreshTTL)

	var presigner storage.Presigner
	if cfg.Upload.Enabled() {
		p, err := storage.NewMinioPresigner(ctx, cfg.Upload.Endpoint, cfg.Upload.AccessKey,
			cfg.Upload.SecretKey, cfg.Upload.Bucket, cfg.Upload.UseSSL)
		if err != nil {
			return nil, fmt.Errorf("object storage: %w", err)
		}
		presigner = p
	} else {
		log.Warn().Msg("MINIO_ENDPOINT is not set, uploads are disabled")
	}

	hub := websocket.NewHub()

	authSvc := services.NewAuthService(db, accessMgr, refreshMgr, revoker)
	contactSvc := services.NewContactService(db)
	groupSvc := services.NewGroupService(db, hub)
	membershipSvc := services.NewMembershipService(db, hub)
	messageSvc := services.NewMessageService(db)
	uploadSvc := services.NewUploadService(db, presigner, cfg.Upload.URLTTL)

	wsOpts := websocket.ClientOptions{
		SendBuffer:      cfg.WS.SendBuffer,
		EventsPerSecond: cfg.WS.EventsPerSecond,
		EventBurst:      cfg.WS.EventBurst,
	}
	h := Handlers{
		Auth:     handlers.NewAuthHandler(authSvc),
		Contacts: handlers.NewContactHandler(contactSvc),
		Groups:   handlers.NewGroupHandler(groupSvc, membershipSvc),
		Messages: handlers.NewHTTPMessageHandler(messageSvc),
		Uploads:  handlers.NewUploadHandler(uploadSvc),
		WebSocket: handlers.NewWebSocketHandler(hub,
			handlers.NewMessageHandler(hub, messageSvc, membershipSvc), wsOpts, cfg.CORS.AllowedOrigins),
	}

	router := gin.New()
	APIEndpoints(router, cfg, h, accessMgr, revoker)

	return &Server{
		Config:     cfg,
		Router:     router,
		DB:         db,
		Redis:      rdb,
		Hub:        hub,
		JWTManager: accessMgr,
		Revoker:    revoker,
	}, nil
}

// Run обслуживает HTTP и websocket до отмены ctx, затем закрывает все по порядку
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.Config.Port,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.Hub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.Config.ShutdownTimeout)
		defer cancel()

		log.Info().Msg("shutting down")
		s.Hub.Shutdown()
		return srv.Shutdown(shutdownCtx)
	})

	err := g.Wait()

	if s.Redis != nil {
		if cerr := s.Redis.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("redis close failed")
		}
	}
	if cerr := s.DB.Close(); cerr != nil {
		log.Warn().Err(cerr).Msg("database close failed")
	}
	return err
}
