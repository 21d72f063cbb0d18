package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Sem-Five-Project/edimy/config"
	"github.com/Sem-Five-Project/edimy/cron"
	"github.com/Sem-Five-Project/edimy/database"
	bookingRepoPkg "github.com/Sem-Five-Project/edimy/database/repository/booking"
	slotRepoPkg "github.com/Sem-Five-Project/edimy/database/repository/slot"
	studentRepoPkg "github.com/Sem-Five-Project/edimy/database/repository/student"
	tutorRepoPkg "github.com/Sem-Five-Project/edimy/database/repository/tutor"
	"github.com/Sem-Five-Project/edimy/handlers"
	"github.com/Sem-Five-Project/edimy/middleware"
	"github.com/Sem-Five-Project/edimy/routes"
	"github.com/Sem-Five-Project/edimy/services/booking"
	"github.com/Sem-Five-Project/edimy/services/meeting"
	"github.com/Sem-Five-Project/edimy/services/payment"
	"github.com/Sem-Five-Project/edimy/services/student"
	"github.com/Sem-Five-Project/edimy/services/tutor"
	"github.com/Sem-Five-Project/edimy/utils"
)

func main() {
	config.LoadConfig()
	utils.InitializeLogger()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitSessionCache()
	utils.InitAuthCache()

	cloudinaryStorageService, err := utils.Cloudinary()
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize cloudinary storage service: %v", err)
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	slotRepo := slotRepoPkg.NewMongoSlotRepo()
	tutorRepo := tutorRepoPkg.NewMongoTutorRepo()
	bookingRepo := bookingRepoPkg.NewMongoBookingRepo()
	studentRepo := studentRepoPkg.NewMongoStudentRepo()

	// services.
	studentService := &student.DefaultStudentService{
		Repo:      studentRepo,
		AuthCache: utils.GetAuthCacheClient(),
	}
	tutorService := &tutor.DefaultTutorService{
		Repo:    tutorRepo,
		Storage: cloudinaryStorageService,
	}

	taskClient := cron.NewTaskClient()
	lockTTL := time.Duration(config.AppConfig.SlotLockTTLSeconds) * time.Second
	sessionTTL := time.Duration(config.AppConfig.SessionTTLMinutes) * time.Minute

	zoomClient := meeting.NewZoomClient(
		config.AppConfig.ZoomAccountID,
		config.AppConfig.ZoomClientID,
		config.AppConfig.ZoomClientSecret,
	)

	flowService := &booking.DefaultBookingFlowService{
		Sessions: booking.NewRedisSessionStore(utils.GetSessionCacheClient(), sessionTTL),
		Flow:     booking.NewFSM(),
		Locks:    booking.NewSlotLockService(slotRepo, taskClient, lockTTL, logger),
		Timers:   booking.NewReservationTimers(),
		Tutors:   tutorRepo,
		Slots:    slotRepo,
		Bookings: bookingRepo,
		Meetings: zoomClient,
		Logger:   logger,
	}

	payhereClient := payment.NewPayHereClient(
		config.AppConfig.PayHereMerchantID,
		config.AppConfig.PayHereSecret,
		config.AppConfig.PayHereCurrency,
		config.AppConfig.PaymentReturnURL,
		config.AppConfig.PaymentCancelURL,
		config.AppConfig.PaymentNotifyURL,
	)

	// Background reclamation: deferred release tasks plus the expiry sweep.
	cron.InitReleaseWorker(flowService)
	cron.InitExpirySweep(slotRepo)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		StudentRepo: studentRepo,
		AuthCache:   utils.GetAuthCacheClient(),
		Students:    handlers.NewStudentHandler(studentService, logger),
		Tutors:      handlers.NewTutorHandler(tutorService, slotRepo, logger),
		Booking:     handlers.NewBookingHandler(flowService, studentRepo, bookingRepo, payhereClient, logger),
	}

	routes.RegisterRoutes(router, handlerBundle)

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

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
