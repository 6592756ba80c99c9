package rest

import (
	"context"
	"fmt"
	"net/http"

	core_port "saved-cart-service/internal/core/port"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Server - наш REST API сервер.
type Server struct {
	httpServer *http.Server
	logger     core_port.LoggerPort
}

// NewServer создает новый экземпляр сервера.
//
// Порядок композиции принципиален: сессионный middleware вешается на группу
// /api ДО регистрации маршрутов корзины, чтобы ни один путь к данным
// покупателя не оказался перед проверкой сессии. Вебхуки стоят отдельно -
// их аутентифицирует HMAC-подпись, а не сессия.
func NewServer(
	port string,
	allowedOrigins []string,
	cartHandler *CartHandler,
	webhookHandler *WebhookHandler,
	sessionMiddleware *SessionMiddleware,
	baseLogger core_port.LoggerPort,
) *Server {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RealIP, LoggerMiddleware(baseLogger), middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		// Запросы приходят из checkout-расширения, т.е. с чужого origin
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Trace-ID"},
		AllowCredentials: true,
		MaxAge:           300, // 5 минут
	}))

	// Вебхуки платформы: вне сессионной группы, подлинность - HMAC
	r.Post("/api/webhooks", webhookHandler.HandleWebhook)

	// Все маршруты данных корзины - только за проверенной сессией
	r.Route("/api", func(r chi.Router) {
		r.Use(sessionMiddleware.ValidateSession)

		r.Get("/retrieve-cart", cartHandler.RetrieveCart)
		r.Post("/save-cart", cartHandler.SaveCart)
	})

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	return &Server{
		httpServer: srv,
		logger:     baseLogger,
	}
}

// Start запускает HTTP-сервер.
func (s *Server) Start() error {
	s.logger.Info("Starting REST API server", core_port.Fields{"address": s.httpServer.Addr})
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("Could not start server", err, nil)
		return fmt.Errorf("could not start server: %w", err)
	}
	return nil
}

// Stop корректно останавливает сервер.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping REST API server...", nil)
	return s.httpServer.Shutdown(ctx)
}
