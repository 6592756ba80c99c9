package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	logger_adapter "saved-cart-service/internal/adapters/logger"
	platform_client "saved-cart-service/internal/adapters/platform"
	postgres_adapter "saved-cart-service/internal/adapters/postgres"
	rabbitmq_adapter "saved-cart-service/internal/adapters/rabbitmq"
	"saved-cart-service/internal/adapters/rest"
	"saved-cart-service/internal/configs"
	"saved-cart-service/internal/core/port"
	"saved-cart-service/internal/core/usecase"
	fluentlogger "saved-cart-service/pkg/fluent_logger"
	"saved-cart-service/pkg/postgres"
	"saved-cart-service/pkg/rabbitmq/rabbitmq_common"
	"saved-cart-service/pkg/rabbitmq/rabbitmq_producer"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/jackc/pgx/v5/pgxpool"
)

type App struct {
	config    *configs.AppConfig
	dbPool    *pgxpool.Pool
	apiServer *rest.Server

	fluentClient *fluent.Fluent
	rabbitMgr    *rabbitmq_common.ConnectionManager
	producer     *rabbitmq_producer.Publisher
	logger       port.LoggerPort
}

func NewApp() (*App, error) {
	appConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}

	// --- 1. ИНИЦИАЛИЗАЦИЯ ЛОГГЕРОВ ---
	var activeLoggers []port.LoggerPort

	slogCfg := logger_adapter.SlogConfig{
		Level:    parseLogLevel(appConfig.StdoutLogger.Level),
		IsJSON:   false, // текстовый формат
		UseColor: true,
	}
	stdoutLogger := logger_adapter.NewSlogAdapter(slogCfg)
	activeLoggers = append(activeLoggers, stdoutLogger)

	// Добавляем Fluent Bit логгер, если он включен в конфигурации
	var fluentClient *fluent.Fluent
	if appConfig.FluentBit.Enabled {
		fluentClient, err = fluentlogger.NewClient(fluentlogger.Config{
			Host:      appConfig.FluentBit.Host,
			Port:      appConfig.FluentBit.Port,
			TagPrefix: appConfig.AppName,
		})
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit client", err, nil)
			return nil, fmt.Errorf("failed to create fluentbit client: %w", err)
		}

		fluentAdapter, err := logger_adapter.NewFluentLoggerAdapter(fluentClient, parseLogLevel(appConfig.FluentBit.Level))
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit adapter", err, nil)
			fluentClient.Close()
			return nil, err
		}
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	// Создаем наш композитный логгер
	multiLogger, err := logger_adapter.NewMultiloggerAdapter(activeLoggers...)
	if err != nil {
		return nil, fmt.Errorf("failed to create multi-logger: %w", err)
	}

	// --- 2. БАЗОВЫЙ ЛОГГЕР ПРИЛОЖЕНИЯ С КОНТЕКСТОМ ---
	baseLogger := multiLogger.WithFields(port.Fields{
		"service_name": appConfig.AppName,
	})

	appLogger := baseLogger.WithFields(port.Fields{"component": "app"})
	appLogger.Info("Logger system initialized", port.Fields{
		"active_loggers": len(activeLoggers), "fluent_enabled": appConfig.FluentBit.Enabled,
	})

	// --- 3. НИЗКОУРОВНЕВЫЕ ЗАВИСИМОСТИ ---
	dbPool, err := postgres.NewClient(context.Background(), postgres.Config{DatabaseURL: appConfig.Database.URL})
	if err != nil {
		appLogger.Error("Failed to connect to PostgreSQL", err, nil)
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	appLogger.Info("Successfully connected to PostgreSQL pool!", nil)

	cartRepository, err := postgres_adapter.NewPostgresCartRepository(dbPool)
	if err != nil {
		appLogger.Error("Failed to create postgres cart repository", err, nil)
		dbPool.Close()
		return nil, fmt.Errorf("failed to create postgres cart repository: %w", err)
	}

	sessionClient := platform_client.NewSessionClient(appConfig.Platform.SessionServiceURL)

	// RabbitMQ опционален: без AMQP_URL события жизненного цикла не публикуются
	var rabbitMgr *rabbitmq_common.ConnectionManager
	var producer *rabbitmq_producer.Publisher
	var lifecyclePublisher port.LifecycleEventPublisherPort
	if appConfig.Rabbit.URL != "" {
		rabbitLogger := &rabbitLoggerBridge{logger: appLogger.WithFields(port.Fields{"component": "rabbitmq"})}

		rabbitMgr, err = rabbitmq_common.GetManager(appConfig.Rabbit.URL, rabbitLogger)
		if err != nil {
			appLogger.Error("Failed to connect to RabbitMQ", err, nil)
			dbPool.Close()
			return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}

		producer, err = rabbitmq_producer.NewPublisher(rabbitmq_producer.PublisherConfig{
			Config:                   rabbitmq_common.Config{URL: appConfig.Rabbit.URL},
			ExchangeName:             appConfig.Rabbit.ExchangeName,
			ExchangeType:             "topic",
			DurableExchange:          true,
			DeclareExchangeIfMissing: true,
			Logger:                   rabbitLogger,
		}, rabbitMgr)
		if err != nil {
			appLogger.Error("Failed to create RabbitMQ producer", err, nil)
			dbPool.Close()
			return nil, fmt.Errorf("failed to create RabbitMQ producer: %w", err)
		}

		lifecyclePublisher, err = rabbitmq_adapter.NewLifecyclePublisher(producer)
		if err != nil {
			appLogger.Error("Failed to create lifecycle publisher", err, nil)
			dbPool.Close()
			return nil, err
		}
	} else {
		appLogger.Warn("AMQP_URL is not set, lifecycle events will not be published", nil)
	}
	appLogger.Info("All persistence and service adapters initialized.", nil)

	// --- 4. USE CASES (ядро бизнес-логики) ---
	saveCartUseCase := usecase.NewSaveCartUseCase(cartRepository)
	retrieveCartUseCase := usecase.NewRetrieveCartUseCase(cartRepository)
	purgeShopCartsUseCase := usecase.NewPurgeShopCartsUseCase(cartRepository, lifecyclePublisher)
	redactCustomerUseCase := usecase.NewRedactCustomerUseCase(cartRepository)

	// --- 5. REST API Server ---
	cartHandler := rest.NewCartHandler(saveCartUseCase, retrieveCartUseCase)
	sessionMiddleware := rest.NewSessionMiddleware(sessionClient)

	webhookHandler := rest.NewWebhookHandler(appConfig.Platform.WebhookSecret)
	webhookHandler.Register("app/uninstalled", func(ctx context.Context, shop string, payload []byte) error {
		// Магазин берем из заголовка, payload - подстраховка
		if shop == "" {
			var event struct {
				ShopDomain string `json:"shop_domain"`
			}
			if err := json.Unmarshal(payload, &event); err != nil {
				return fmt.Errorf("failed to parse app/uninstalled payload: %w", err)
			}
			shop = event.ShopDomain
		}
		_, err := purgeShopCartsUseCase.Execute(ctx, shop)
		return err
	})
	webhookHandler.Register("customers/redact", func(ctx context.Context, shop string, payload []byte) error {
		var event struct {
			Customer struct {
				ID json.Number `json:"id"`
			} `json:"customer"`
		}
		if err := json.Unmarshal(payload, &event); err != nil {
			return fmt.Errorf("failed to parse customers/redact payload: %w", err)
		}
		return redactCustomerUseCase.Execute(ctx, event.Customer.ID.String())
	})

	apiServer := rest.NewServer(
		appConfig.Rest.PORT,
		appConfig.Rest.AllowedOrigins,
		cartHandler,
		webhookHandler,
		sessionMiddleware,
		baseLogger,
	)
	appLogger.Info("REST API server configured.", nil)

	// --- 6. Собираем приложение ---
	application := &App{
		config:    appConfig,
		dbPool:    dbPool,
		apiServer: apiServer,

		fluentClient: fluentClient,
		rabbitMgr:    rabbitMgr,
		producer:     producer,
		logger:       appLogger,
	}

	return application, nil
}

// Run запускает все компоненты приложения и управляет их жизненным циклом.
func (a *App) Run() error {
	// Единый контекст приложения для управления graceful shutdown
	appCtx, cancelApp := context.WithCancel(context.Background())

	defer func() {
		a.logger.Info("Shutdown sequence initiated...", nil)

		if a.apiServer != nil {
			if err := a.apiServer.Stop(context.Background()); err != nil {
				a.logger.Error("Error during API server shutdown", err, nil)
			}
		}

		if a.producer != nil {
			if err := a.producer.Close(); err != nil {
				a.logger.Error("Error closing RabbitMQ producer", err, nil)
			}
		}
		if a.rabbitMgr != nil {
			if err := a.rabbitMgr.Close(); err != nil {
				a.logger.Error("Error closing RabbitMQ connection", err, nil)
			}
		}

		if a.dbPool != nil {
			a.dbPool.Close()
			a.logger.Info("PostgreSQL pool closed.", nil)
		}

		a.logger.Info("Application shut down gracefully.", nil)

		if a.fluentClient != nil {
			if err := a.fluentClient.Close(); err != nil {
				// Пишем в stdout, так как fluent может быть уже недоступен
				fmt.Printf("ERROR: Error closing fluent client: %v\n", err)
			}
		}
	}()

	a.logger.Info("Application is starting...", nil)

	serverErrors := make(chan error, 1)
	go func() {
		a.logger.Info("Starting HTTP server...", port.Fields{"port": a.config.Rest.PORT})
		if err := a.apiServer.Start(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	// Ожидание сигнала на завершение или ошибки от одного из компонентов
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	a.logger.Info("Application running. Waiting for signals or server error...", nil)
	select {
	case receivedSignal := <-quit:
		a.logger.Warn("Received OS signal, shutting down...", port.Fields{"signal": receivedSignal.String()})
	case <-appCtx.Done():
		a.logger.Warn("Context was cancelled unexpectedly, shutting down...", nil)
	case err := <-serverErrors:
		a.logger.Error("Server failed to start, shutting down", err, nil)
	}

	// Инициируем graceful shutdown, отменяя главный контекст
	cancelApp()

	return nil
}

// rabbitLoggerBridge адаптирует LoggerPort к контракту pkg/rabbitmq.
type rabbitLoggerBridge struct {
	logger port.LoggerPort
}

func (b *rabbitLoggerBridge) Debug(msg string, kv ...any) { b.logger.Debug(msg, kvToFields(kv)) }
func (b *rabbitLoggerBridge) Info(msg string, kv ...any)  { b.logger.Info(msg, kvToFields(kv)) }
func (b *rabbitLoggerBridge) Error(err error, msg string, kv ...any) {
	b.logger.Error(msg, err, kvToFields(kv))
}

// kvToFields собирает пары ключ-значение в Fields.
func kvToFields(kv []any) port.Fields {
	if len(kv) == 0 {
		return nil
	}
	fields := make(port.Fields, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		fields[key] = kv[i+1]
	}
	return fields
}

func parseLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		// Возвращаем безопасное значение по умолчанию и логируем предупреждение
		log.Printf("Warning: Unknown log level '%s'. Defaulting to 'info'.", levelStr)
		return slog.LevelInfo
	}
}
