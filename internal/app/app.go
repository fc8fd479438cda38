// Package app connects the stores and builds the service graph shared by the
// server and the seed command.
package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/UniqBrio/UniqBrio-sub014/internal/cache"
	"github.com/UniqBrio/UniqBrio-sub014/internal/config"
	"github.com/UniqBrio/UniqBrio-sub014/internal/repository"
	"github.com/UniqBrio/UniqBrio-sub014/internal/service"
	"github.com/UniqBrio/UniqBrio-sub014/internal/transport/ws"
)

type App struct {
	Mongo *mongo.Client
	Redis *redis.Client

	SessionRepo repository.SessionRepo
	RecordRepo  repository.RecordRepo
	StudentRepo repository.StudentRepo

	SessionCache     cache.SessionCache
	IdempotencyCache cache.IdempotencyCache

	WSHub    *ws.Hub
	Auth     *service.AuthService
	Sessions *service.SessionService
	Reminder *service.ReminderService
}

// New connects to MongoDB and Redis, ensures indexes and wires the services
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		mongoClient.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	log.Println("Connected to MongoDB")

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisURI})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		mongoClient.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}
	log.Println("Connected to Redis")

	db := mongoClient.Database(cfg.MongoDB)

	a := &App{
		Mongo:            mongoClient,
		Redis:            rdb,
		SessionRepo:      repository.NewSessionRepo(db),
		RecordRepo:       repository.NewRecordRepo(db),
		StudentRepo:      repository.NewStudentRepo(db),
		SessionCache:     cache.NewSessionCache(rdb),
		IdempotencyCache: cache.NewIdempotencyCache(rdb),
		WSHub:            ws.NewHub(),
	}
	a.SessionRepo.EnsureIndexes(ctx)
	a.RecordRepo.EnsureIndexes(ctx)

	a.Auth, err = service.NewAuthService(cfg)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}

	notifier := service.NewNotifier(a.StudentRepo, service.NewMailer(cfg.SMTP), a.WSHub)
	a.Sessions = service.NewSessionService(
		a.SessionRepo,
		a.RecordRepo,
		repository.NewTransactor(mongoClient),
		a.SessionCache,
		cache.NewSlotLock(rdb, cfg.LockTTL),
		notifier,
	)
	a.Reminder = service.NewReminderService(
		a.SessionRepo,
		a.StudentRepo,
		cache.NewReminderCache(rdb),
		notifier,
		cfg.ReminderOffsets,
		cfg.ReminderInterval,
	)

	return a, nil
}

// Close releases the store connections
func (a *App) Close(ctx context.Context) {
	if err := a.Redis.Close(); err != nil {
		log.Printf("Warning: Redis close: %v", err)
	}
	if err := a.Mongo.Disconnect(ctx); err != nil {
		log.Printf("Warning: MongoDB disconnect: %v", err)
	}
}
