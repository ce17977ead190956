package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"amoura/backend/internal/api/handler"
	"amoura/backend/internal/chathub"
	"amoura/backend/internal/config"
	"amoura/backend/internal/logger"
	"amoura/backend/internal/models"
	"amoura/backend/internal/notices"
	"amoura/backend/internal/report"
	"amoura/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupDependencies(cfg *config.Config) (*gorm.DB, *redis.Client) {
	// 1. PostgreSQL
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	// 2. Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	// Перевірка з'єднання Redis
	ctx := context.Background()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	// 3. Міграції (Створення таблиць)
	err = db.AutoMigrate(
		&models.Member{},
		&models.ChatRoom{},
		&models.ChatHistory{},
		&models.RoomEvent{},
		&models.Report{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	zap.L().Info("database and redis connections established, migrations complete")
	return db, rdb
}

func main() {
	cfg := config.Load()
	if err := logger.Init(cfg); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zap.L().Sync()
	zap.L().Info("starting amoura backend", zap.String("addr", cfg.Addr))

	// 1. Ініціалізація залежностей
	db, rdb := setupDependencies(cfg)
	s := storage.NewStorageService(db, rdb)

	// 2. Ініціалізація Chat Hub, Matcher та Announcer
	hub := chathub.NewManagerService(s)
	matcher := chathub.NewMatcherService(hub, s)
	localizer := notices.NewLocalizer()
	announcer := chathub.NewAnnouncer(s, localizer, "en")
	reports := report.NewService(s)

	// 3. Запуск основних Goroutines
	go hub.Run()       // Головний диспетчер
	go matcher.Run()   // Сервіс пошуку
	go announcer.Run() // Таймлайн міні-івентів

	// 4. Налаштування Gin та роутингу
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(logger.GinLogger(), logger.GinRecovery())
	h := handler.NewHandler(hub, s, reports, cfg)

	// Роути
	r.POST("/auth/token", h.IssueToken) // Реєстрація пристрою та видача JWT
	r.GET("/ws", h.ServeWebSocket)      // WebSocket Upgrade

	auth := r.Group("/", h.AuthRequired())
	auth.POST("/matching/join", h.JoinMatching)
	auth.GET("/chat-room/:id", h.GetRoom)
	auth.GET("/room-event/chat-room/:id", h.GetRoomEvents)
	auth.POST("/room-event", h.CreateRoomEvent)
	auth.POST("/report", h.CreateReport)

	// Запуск HTTP-сервера
	server := &http.Server{
		Addr:           cfg.Addr,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Fatal(server.ListenAndServe())
}
