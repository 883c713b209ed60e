package main

import (
	"log"
	"net/http"

	"mealmart-be/internal/config"
	"mealmart-be/internal/db"
	"mealmart-be/internal/logger"
	"mealmart-be/internal/middleware"
	"mealmart-be/internal/order"
	"mealmart-be/internal/payment"
	"mealmart-be/internal/payment/webhook"
	"mealmart-be/internal/restaurant"
	"mealmart-be/internal/user"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config.LoadConfig()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := db.InitDB(cfg)
	defer database.Close()

	userRepo := user.NewRepository(database)
	userSvc := user.NewService(userRepo)

	restaurantRepo := restaurant.NewRepository(database)
	restaurantSvc := restaurant.NewService(restaurantRepo)

	gateway := payment.NewStripeGateway(cfg.StripeSecretKey)

	orderRepo := order.NewRepository(database)
	orderSvc := order.NewService(orderRepo, restaurantRepo, gateway, cfg.FrontendURL)

	userHandler := user.NewHandler(userSvc)
	restaurantHandler := restaurant.NewHandler(restaurantSvc)
	orderHandler := order.NewHandler(orderSvc)
	webhookHandler := webhook.NewHandler(orderSvc, cfg.StripeWebhookSecret)

	authMw := middleware.NewAuthMiddleware(cfg.JWTSecret, userSvc)

	r := chi.NewRouter()
	r.Use(logger.RequestIDMiddleware)
	r.Use(logger.LoggingMiddleware)
	r.Use(middleware.RateLimitMiddleware)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", promhttp.Handler())

	// Public restaurant browsing
	r.Get("/api/restaurant/{restaurantId}", restaurantHandler.GetRestaurant)
	r.Get("/api/restaurant/search/{city}", restaurantHandler.SearchRestaurants)

	// Profile; create needs only a verified token, the record may not exist yet
	r.With(authMw.RequireToken).Post("/api/my/user", userHandler.CreateCurrentUser)
	r.With(authMw.RequirePrincipal).Get("/api/my/user", userHandler.GetCurrentUser)
	r.With(authMw.RequirePrincipal).Put("/api/my/user", userHandler.UpdateCurrentUser)

	// Restaurant management
	r.Group(func(r chi.Router) {
		r.Use(authMw.RequirePrincipal)
		r.Post("/api/my/restaurant", restaurantHandler.CreateMyRestaurant)
		r.Get("/api/my/restaurant", restaurantHandler.GetMyRestaurant)
		r.Put("/api/my/restaurant", restaurantHandler.UpdateMyRestaurant)
		r.Get("/api/my/restaurant/order", orderHandler.GetMyRestaurantOrders)
	})

	// Orders and checkout
	r.With(authMw.RequirePrincipal).Post("/checkout", orderHandler.CreateCheckout)
	r.With(authMw.RequirePrincipal).Patch("/order/{orderId}/status", orderHandler.UpdateStatus)
	r.With(authMw.RequirePrincipal).Get("/api/order", orderHandler.GetMyOrders)

	// Gateway webhook; trust is signature-based, no bearer token
	r.Post("/checkout/webhook", webhookHandler.HandleWebhook)

	log.Printf("server running at http://localhost:%s/", cfg.AppPort)
	log.Fatal(http.ListenAndServe(":"+cfg.AppPort, r))
}
