package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"casamar/config"
	"casamar/database"
	paymentRepo "casamar/database/repository/payment"
	recordsRepo "casamar/database/repository/records"
	retryRepo "casamar/database/repository/retry"
	"casamar/handlers"
	"casamar/middleware"
	"casamar/routes"
	"casamar/services/booking"
	"casamar/services/notify"
	"casamar/services/payment"
	"casamar/services/pms"
	"casamar/services/recovery"
	"casamar/services/rooms"
	"casamar/utils"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	stripe.Key = config.AppConfig.StripeKey

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	cardRepo := paymentRepo.NewMongoCardRepo()
	transferRepo := paymentRepo.NewMongoTransferRepo()
	stateRepo := retryRepo.NewMongoStateRepo()
	archiveRepo := recordsRepo.NewMongoArchiveRepo()

	// services.
	pmsClient := pms.NewHTTPClient(logger)
	oracle := &rooms.Oracle{PMS: pmsClient, Logger: logger}

	cardService := payment.NewCardService(cardRepo, &payment.StripeIntentVerifier{Logger: logger}, logger)
	transferService := payment.NewTransferService(transferRepo, logger)

	bookingService := &booking.DefaultTransactionService{
		Oracle:   oracle,
		Card:     cardService,
		Transfer: transferService,
		PMS:      pmsClient,
		Archive:  archiveRepo,
		Logger:   logger,
	}

	machine := &recovery.Machine{
		States:   stateRepo,
		Booking:  bookingService,
		Archive:  archiveRepo,
		Notifier: notify.NewWebhookSender(config.AppConfig.NotifyWebhookURL, logger),
		Schedule: recovery.NewAsynqScheduler(),
		Policy:   recovery.DefaultPolicy(),
		Logger:   logger,
	}

	// Recovery workers: queue consumer plus the poll-loop backstop, and a
	// startup requeue so in-flight recoveries survive restarts.
	recovery.InitRecoveryWorker(machine)
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()
	if err := machine.RequeuePending(rootCtx); err != nil {
		logger.Sugar().Errorf("main: failed to requeue pending recoveries: %v", err)
	}
	machine.StartPollLoop(rootCtx, time.Duration(config.AppConfig.RecoveryPollSeconds)*time.Second)

	toolHandler := handlers.NewToolHandler(bookingService, machine, archiveRepo, logger)
	routes.RegisterRoutes(router, toolHandler)

	utils.StartHealthMonitor(utils.GetCacheClient(), database.MongoClient)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	rootCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
