package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"dandiya-ticketing-platform/internal/config"
	"dandiya-ticketing-platform/internal/database"
	"dandiya-ticketing-platform/internal/handlers"
	"dandiya-ticketing-platform/internal/middleware"
	"dandiya-ticketing-platform/internal/models"
	"dandiya-ticketing-platform/internal/repositories"
	"dandiya-ticketing-platform/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize database connection. A failed connection is not
	// fatal: the server starts in degraded mode and serves from the
	// in-memory fallback store until the database comes back.
	var sqlDB *sql.DB
	db, err := database.NewConnection(database.Config{
		URL:      cfg.Database.URL,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		log.Printf("⚠️ Failed to connect to database: %v", err)
		log.Println("⚠️ Starting in degraded mode with in-memory fallback store")
	} else {
		defer db.Close()
		sqlDB = db.DB
		log.Println("✅ Database connection established")

		if err := db.RunMigrations(); err != nil {
			log.Printf("⚠️ Migrations failed: %v", err)
		}
	}

	// Redis is optional; without it the admin read cache is skipped
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		log.Printf("✅ Redis response cache enabled (%s)", cfg.Redis.Addr)
	}

	// Initialize repositories
	bookingRepo := repositories.NewBookingRepository(sqlDB)
	userRepo := repositories.NewUserRepository(sqlDB)
	paymentRepo := repositories.NewPaymentRepository(sqlDB)
	qrCodeRepo := repositories.NewQRCodeRepository(sqlDB)
	scanRepo := repositories.NewScanRepository(sqlDB)
	messageLogRepo := repositories.NewMessageLogRepository(sqlDB)
	staffRepo := repositories.NewStaffRepository(sqlDB)
	fallbackStore := repositories.NewFallbackStore()

	// Initialize services
	healthService := services.NewHealthService(sqlDB)

	serverBaseURL := fmt.Sprintf("http://%s:%s", cfg.Server.Host, cfg.Server.Port)
	storageService := services.NewStorageService(cfg.Storage, serverBaseURL)

	razorpayService := services.NewRazorpayService(cfg.Razorpay)
	emailService := services.NewEmailService(cfg.Resend, cfg.Email, cfg.Event.Name)
	whatsappService := services.NewWhatsAppService(cfg.WhatsApp, cfg.Event.Name)

	bookingService := services.NewBookingService(bookingRepo, userRepo, fallbackStore, healthService)
	ticketService := services.NewTicketService(qrCodeRepo, services.NewQRService(), services.NewPDFService(cfg.Event.Name), storageService, fallbackStore, healthService)
	notificationService := services.NewNotificationService(emailService, whatsappService, messageLogRepo, healthService)
	paymentService := services.NewPaymentService(paymentRepo, bookingRepo, razorpayService, ticketService, notificationService, fallbackStore, healthService, cfg.Razorpay.Currency)
	scanService := services.NewScanService(qrCodeRepo, scanRepo, fallbackStore, healthService)
	adminService := services.NewAdminService(bookingRepo, qrCodeRepo, scanRepo, fallbackStore, healthService)
	authService := services.NewAuthService(staffRepo, healthService, cfg.Auth)

	authService.SeedDemoAccounts()

	authMiddleware := middleware.NewAuthMiddleware(cfg.Auth.JWTSecret)
	cacheMiddleware := middleware.NewCacheMiddleware(redisClient, time.Duration(cfg.Redis.CacheTTL)*time.Second)

	// Initialize handlers
	bookingHandler := handlers.NewBookingHandler(bookingService, paymentService, scanService)
	qrHandler := handlers.NewQRHandler(scanService)
	adminHandler := handlers.NewAdminHandler(adminService, cacheMiddleware)
	authHandler := handlers.NewAuthHandler(authService)
	healthHandler := handlers.NewHealthHandler(healthService)

	// Initialize router
	r := chi.NewRouter()
	r.Use(middleware.RecoveryMiddleware)
	r.Use(middleware.LoggingMiddleware)
	r.Use(middleware.CORSMiddleware(middleware.DefaultCORSConfig()))

	r.Get("/api/health", healthHandler.Health)
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/api/auth/login", authHandler.Login)

	r.Route("/api/bookings", func(r chi.Router) {
		r.Post("/create", bookingHandler.CreateBooking)
		r.Post("/add-users", bookingHandler.AddUser)
		r.Post("/create-payment", bookingHandler.CreatePayment)
		r.Post("/confirm-payment", bookingHandler.ConfirmPayment)
		r.Post("/qr-details", bookingHandler.QRDetails)
		r.Post("/mark-used", bookingHandler.MarkUsed)
		r.Post("/resend-notifications", bookingHandler.ResendNotifications)
		r.Get("/{id}", bookingHandler.GetBooking)
	})

	r.Route("/api/qr", func(r chi.Router) {
		r.Post("/verify", qrHandler.Verify)
		r.With(authMiddleware.RequireAuth).Post("/mark-used", qrHandler.MarkUsed)
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(authMiddleware.RequireAuth)

		r.With(cacheMiddleware.Cache).Get("/dashboard-stats", adminHandler.DashboardStats)
		r.With(cacheMiddleware.Cache).Get("/bookings", adminHandler.Bookings)
		r.With(cacheMiddleware.Cache).Get("/chart-data", adminHandler.ChartData)
		r.Get("/recent-scans", adminHandler.RecentScans)
		r.Get("/scans", adminHandler.ScanAttempts)
		r.With(authMiddleware.RequireRole(models.RoleAdmin)).Post("/fallback/clear", adminHandler.ClearFallback)
	})

	// Locally stored ticket PDFs are served straight from disk
	if local, ok := storageService.(*services.LocalStorageService); ok {
		r.Handle("/tickets/files/*", http.StripPrefix("/tickets/files/", http.FileServer(http.Dir(local.BasePath()))))
	}

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("🎫 Server starting on http://%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start:", err)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("⚠️ Forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
