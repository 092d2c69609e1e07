package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/spotroute/backend/internal/pkg/config"
	"github.com/spotroute/backend/internal/pkg/database"
	"github.com/spotroute/backend/internal/pkg/health"
	"github.com/spotroute/backend/internal/pkg/logger"
	"github.com/spotroute/backend/internal/pkg/middleware"
	natspkg "github.com/spotroute/backend/internal/pkg/nats"

	authhandler "github.com/spotroute/backend/services/auth/handler/http"
	authrepo "github.com/spotroute/backend/services/auth/repository"
	authuc "github.com/spotroute/backend/services/auth/usecase"
	bookinggw "github.com/spotroute/backend/services/bookings/gateway"
	bookinghandler "github.com/spotroute/backend/services/bookings/handler/http"
	bookingrepo "github.com/spotroute/backend/services/bookings/repository"
	bookinguc "github.com/spotroute/backend/services/bookings/usecase"
	notificationhandler "github.com/spotroute/backend/services/notifications/handler/http"
	notificationrepo "github.com/spotroute/backend/services/notifications/repository"
	notificationuc "github.com/spotroute/backend/services/notifications/usecase"
	paymentgw "github.com/spotroute/backend/services/payments/gateway"
	paymenthandler "github.com/spotroute/backend/services/payments/handler/http"
	paymentrepo "github.com/spotroute/backend/services/payments/repository"
	paymentuc "github.com/spotroute/backend/services/payments/usecase"
	ridehandler "github.com/spotroute/backend/services/rides/handler/http"
	riderepo "github.com/spotroute/backend/services/rides/repository"
	rideuc "github.com/spotroute/backend/services/rides/usecase"
	routehandler "github.com/spotroute/backend/services/routes/handler/http"
	routerepo "github.com/spotroute/backend/services/routes/repository"
	routeuc "github.com/spotroute/backend/services/routes/usecase"
)

func main() {
	cfg := config.InitConfig(".env")

	zapLogger, err := logger.NewZapLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zapLogger.Close()
	logger.SetGlobalLogger(zapLogger)

	postgres, err := database.NewPostgresClient(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to postgres", logger.Err(err))
	}
	defer postgres.Close()
	db := postgres.GetDB()

	redisClient, err := database.NewRedisClient(cfg.Redis)
	if err != nil {
		zapLogger.Fatal("Failed to connect to redis", logger.Err(err))
	}
	defer redisClient.Close()

	natsClient, err := natspkg.NewClient(cfg.NATS.URL)
	if err != nil {
		zapLogger.Fatal("Failed to connect to NATS", logger.Err(err))
	}
	defer natsClient.Close()

	// Repositories
	userRepo := authrepo.NewUserRepository(cfg, db)
	routeRepo := routerepo.NewRouteRepository(cfg, db)
	rideRepo := riderepo.NewRideRepository(cfg, db)
	bookingRepo := bookingrepo.NewBookingRepository(cfg, db)
	paymentRepo := paymentrepo.NewPaymentRepository(cfg, db)
	notificationRepo := notificationrepo.NewNotificationRepository(cfg, db)

	// Gateways
	bookingGW := bookinggw.NewBookingGW(natsClient)
	paymentGW := paymentgw.NewPaymentGW(natsClient)

	// Usecases
	authUC := authuc.NewAuthUC(cfg, userRepo)
	routeUC := routeuc.NewRouteUC(routeRepo)
	rideUC := rideuc.NewRideUC(cfg, rideRepo)
	bookingUC := bookinguc.NewBookingUC(cfg, bookingRepo, bookingGW)
	paymentUC := paymentuc.NewPaymentUC(cfg, paymentRepo, paymentGW, redisClient)

	notificationUC := notificationuc.NewNotificationUC(notificationRepo)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.RequestIDMiddleware())
	e.Use(middleware.PanicRecoveryMiddleware(zapLogger))
	e.Use(logger.ZapEchoMiddleware(zapLogger))

	healthSvc := health.NewService(zapLogger)
	healthSvc.AddChecker("postgres", health.CheckerFunc(postgres.Ping))
	healthSvc.AddChecker("redis", health.CheckerFunc(redisClient.Ping))
	healthSvc.AddChecker("nats", health.CheckerFunc(func(ctx context.Context) error {
		if !natsClient.IsConnected() {
			return fmt.Errorf("nats connection is down")
		}
		return nil
	}))
	health.RegisterEndpoints(e, cfg.App.Name, cfg.App.Version, healthSvc)

	public := e.Group("/api/v1")
	authed := e.Group("/api/v1", middleware.JWTAuthMiddleware(cfg.JWT))

	authhandler.NewAuthHandler(authUC).RegisterRoutes(public, authed)
	routehandler.NewRouteHandler(routeUC).RegisterRoutes(authed)
	ridehandler.NewRideHandler(rideUC).RegisterRoutes(authed)
	bookinghandler.NewBookingHandler(bookingUC).RegisterRoutes(authed)
	paymenthandler.NewPaymentHandler(paymentUC).RegisterRoutes(public, authed)
	notificationhandler.NewNotificationHandler(notificationUC).RegisterRoutes(authed)

	e.Server.ReadTimeout = time.Duration(cfg.Server.ReadTimeout) * time.Second
	e.Server.WriteTimeout = time.Duration(cfg.Server.WriteTimeout) * time.Second

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		zapLogger.Info("Starting server",
			logger.String("app", cfg.App.Name),
			logger.String("addr", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Server stopped unexpectedly", logger.Err(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		zapLogger.Error("Graceful shutdown failed", logger.Err(err))
	}
}
