package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"go.uber.org/zap"

	"github.com/RoshiniVenkateswaran/Swapy-sub000/internal/config"
	"github.com/RoshiniVenkateswaran/Swapy-sub000/internal/db"
	applog "github.com/RoshiniVenkateswaran/Swapy-sub000/internal/logger"
	"github.com/RoshiniVenkateswaran/Swapy-sub000/internal/matching"
	"github.com/RoshiniVenkateswaran/Swapy-sub000/internal/memstore"
	mongostore "github.com/RoshiniVenkateswaran/Swapy-sub000/internal/mongo"
	"github.com/RoshiniVenkateswaran/Swapy-sub000/internal/repository"
	"github.com/RoshiniVenkateswaran/Swapy-sub000/internal/services/listing"
	"github.com/RoshiniVenkateswaran/Swapy-sub000/internal/services/match"
	"github.com/RoshiniVenkateswaran/Swapy-sub000/internal/services/trade"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Загружаем конфигурацию
	cfg := config.LoadConfig()

	sugar, err := applog.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("❌ Ошибка при создании логгера: %v", err)
	}
	defer sugar.Sync()

	// Инициализируем хранилище
	store, err := openStore(cfg, sugar)
	if err != nil {
		sugar.Fatalw("❌ Ошибка при инициализации хранилища", "driver", cfg.StoreDriver, "error", err)
	}

	// Создаём экземпляр Fiber
	app := fiber.New(fiber.Config{
		AppName:      "Swapy API",
		ErrorHandler: errorHandler,
	})

	// Добавляем middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowCredentials: false,
	}))

	app.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "store": cfg.StoreDriver})
	})

	// Создаём сервисы
	matchingConfig := matching.Config{
		MaxValueRatio:     cfg.MatchingConfig.MaxValueRatio,
		MinScore:          cfg.MatchingConfig.MinScore,
		ResultCap:         cfg.MatchingConfig.ResultCap,
		MaxDepth:          cfg.MatchingConfig.ChainMaxDepth,
		PoolLimit:         cfg.MatchingConfig.ChainPoolLimit,
		ScarcityWeighting: cfg.MatchingConfig.ScarcityWeighting,
	}
	matcher := matching.NewService(store, store, matchingConfig, sugar.Named("matching"))

	listingService := listing.NewListingService(cfg, store, sugar.Named("listing"))
	matchService := match.NewMatchService(cfg, matcher)
	tradeService := trade.NewTradeService(cfg, store, store, matcher, sugar.Named("trade"))

	// Регистрируем маршруты
	items := listingService.SetupRoutes(app)
	matchService.SetupRoutes(items)
	tradeService.SetupRoutes(app)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Запускаем сервер
	go func() {
		sugar.Infow("✅ Swapy API запущен", "port", cfg.Port, "store", cfg.StoreDriver)
		if err := app.Listen(":" + cfg.Port); err != nil {
			sugar.Errorw("❌ Сервер остановлен с ошибкой", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	sugar.Infow("Остановка сервера")

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		sugar.Warnw("⚠️ Сервер не остановился вовремя", "error", err)
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := store.Close(closeCtx); err != nil {
		sugar.Warnw("⚠️ Ошибка при закрытии хранилища", "error", err)
	}
}

// openStore подключает хранилище по STORE_DRIVER и готовит схему
func openStore(cfg *config.Config, sugar *zap.SugaredLogger) (repository.Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		if err := db.InitDB(cfg); err != nil {
			return nil, err
		}
		if err := db.EnsureSchema(ctx, db.Pool); err != nil {
			db.CloseDB()
			return nil, err
		}
		return db.NewStore(db.Pool), nil

	case config.StoreDriverMongo:
		client, err := mongostore.NewMongoClient(cfg.MongoConfig.URI)
		if err != nil {
			return nil, err
		}
		store := mongostore.NewStore(client, cfg.MongoConfig.Database)
		if err := store.EnsureIndexes(ctx); err != nil {
			_ = store.Close(ctx)
			return nil, err
		}
		return store, nil

	case config.StoreDriverMemory:
		sugar.Warnw("⚠️ Используется хранилище в памяти, данные не сохранятся после перезапуска")
		return memstore.New(), nil
	}

	return nil, fmt.Errorf("неизвестный драйвер хранилища %q", cfg.StoreDriver)
}

// errorHandler обрабатывает ошибки Fiber
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	// Проверяем, является ли ошибка из Fiber
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	// Отправляем ошибку в JSON
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
