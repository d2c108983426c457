package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	attachRecordingHandler "github.com/m04kA/SMC-SessionBookingService/internal/api/handlers/attach_recording"
	attachReviewHandler "github.com/m04kA/SMC-SessionBookingService/internal/api/handlers/attach_review"
	cancelBookingHandler "github.com/m04kA/SMC-SessionBookingService/internal/api/handlers/cancel_booking"
	createBookingHandler "github.com/m04kA/SMC-SessionBookingService/internal/api/handlers/create_booking"
	getBookingHandler "github.com/m04kA/SMC-SessionBookingService/internal/api/handlers/get_booking"
	getAvailabilityHandler "github.com/m04kA/SMC-SessionBookingService/internal/api/handlers/get_session_availability"
	getUserBookingsHandler "github.com/m04kA/SMC-SessionBookingService/internal/api/handlers/get_user_bookings"
	payBookingHandler "github.com/m04kA/SMC-SessionBookingService/internal/api/handlers/pay_booking"
	rescheduleBookingHandler "github.com/m04kA/SMC-SessionBookingService/internal/api/handlers/reschedule_booking"
	sessionEventsHandler "github.com/m04kA/SMC-SessionBookingService/internal/api/handlers/session_events"
	transitionHandler "github.com/m04kA/SMC-SessionBookingService/internal/api/handlers/transition_booking"
	"github.com/m04kA/SMC-SessionBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-SessionBookingService/internal/config"
	"github.com/m04kA/SMC-SessionBookingService/internal/infra/locker"
	bookingRepo "github.com/m04kA/SMC-SessionBookingService/internal/infra/storage/booking"
	catalogServiceClient "github.com/m04kA/SMC-SessionBookingService/internal/integrations/catalogservice"
	"github.com/m04kA/SMC-SessionBookingService/internal/integrations/stripegateway"
	videoServiceClient "github.com/m04kA/SMC-SessionBookingService/internal/integrations/videoservice"
	bookingsService "github.com/m04kA/SMC-SessionBookingService/internal/service/bookings"
	"github.com/m04kA/SMC-SessionBookingService/internal/service/payment"
	"github.com/m04kA/SMC-SessionBookingService/internal/service/sessionevents"
	createBookingUC "github.com/m04kA/SMC-SessionBookingService/internal/usecase/create_booking"
	getAvailabilityUC "github.com/m04kA/SMC-SessionBookingService/internal/usecase/get_session_availability"
	payBookingUC "github.com/m04kA/SMC-SessionBookingService/internal/usecase/pay_booking"
	"github.com/m04kA/SMC-SessionBookingService/pkg/logger"
	"github.com/m04kA/SMC-SessionBookingService/pkg/metrics"
	"github.com/m04kA/SMC-SessionBookingService/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию
	configPath := "config.toml"
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		configPath = p
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-SessionBookingService...")
	log.Info("Configuration loaded from %s", configPath)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Метрики (nil-safe: при выключенных метриках методы ничего не делают)
	var metricsCollector *metrics.Metrics
	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName, prometheus.DefaultRegisterer)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	if err := db.PingContext(ctx); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Блокировки попыток оплаты: Redis для нескольких инстансов, иначе память процесса
	var attemptLocker payBookingUC.AttemptLocker
	if cfg.Redis.Addr != "" {
		redisLocker, err := locker.NewRedisLocker(ctx, locker.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
		if err != nil {
			log.Fatal("Failed to connect to redis: %v", err)
		}
		defer redisLocker.Close()
		attemptLocker = redisLocker
		log.Info("Payment attempt locks backed by redis at %s", cfg.Redis.Addr)
	} else {
		attemptLocker = locker.NewMemoryLocker()
		log.Warn("Redis is not configured, payment attempt locks are process-local")
	}

	sessionLocation, err := time.LoadLocation(cfg.Session.Location)
	if err != nil {
		log.Fatal("Failed to load session location %q: %v", cfg.Session.Location, err)
	}

	// Инициализируем интеграционных клиентов
	catalogClient := catalogServiceClient.NewClient(
		cfg.CatalogService.URL,
		time.Duration(cfg.CatalogService.Timeout)*time.Second,
		log,
	)
	videoClient := videoServiceClient.NewClient(
		cfg.VideoService.URL,
		time.Duration(cfg.VideoService.Timeout)*time.Second,
		cfg.VideoService.SigningKey,
		cfg.VideoService.ServiceName,
		log,
	)
	gateway := stripegateway.New(stripegateway.Config{
		SecretKey: cfg.Payment.StripeSecretKey,
		ReturnURL: cfg.Payment.ReturnURL,
		APIURL:    cfg.Payment.APIURL,
	}, log)
	log.Info("Integration clients initialized (CatalogService=%s, VideoService=%s)",
		cfg.CatalogService.URL, cfg.VideoService.URL)

	// Шина событий видеосессий и трекер состояния
	bus := sessionevents.NewBus(cfg.Session.EventBuffer, metricsCollector, log)
	defer bus.Close()
	tracker := sessionevents.NewTracker()
	trackerEvents, unsubscribe := bus.Subscribe(0)
	defer unsubscribe()
	go tracker.Run(ctx, trackerEvents)

	// Репозиторий и транзакции
	bookingRepository := bookingRepo.NewRepository(db)
	txMgr := txmanager.NewTransactionManager(db)

	// Инициализируем сервисы
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		txMgr,
		gateway,
		videoClient,
		bus,
		metricsCollector,
		log,
	)
	paymentEngine := payment.NewEngine(gateway, cfg.Payment.MaxActionRetries, metricsCollector, log)

	// Инициализируем use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		catalogClient,
		txMgr,
		log,
	)
	payBookingUseCase := payBookingUC.NewUseCase(
		bookingSvc,
		paymentEngine,
		attemptLocker,
		cfg.Payment.AttemptTTLDuration(),
		metricsCollector,
		log,
	)
	getAvailabilityUseCase := getAvailabilityUC.NewUseCase(
		bookingSvc,
		tracker,
		sessionLocation,
		log,
	)

	// Инициализируем handlers
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	getUserBookings := getUserBookingsHandler.NewHandler(bookingSvc, log)
	acceptBooking := transitionHandler.NewAcceptHandler(bookingSvc.Approve, log)
	rejectBooking := transitionHandler.NewRejectHandler(bookingSvc.Reject, log)
	completeBooking := transitionHandler.NewCompleteHandler(bookingSvc.Complete, log)
	rescheduleBooking := rescheduleBookingHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	payBooking := payBookingHandler.NewHandler(payBookingUseCase, log)
	getAvailability := getAvailabilityHandler.NewHandler(getAvailabilityUseCase, log)
	attachReview := attachReviewHandler.NewHandler(bookingSvc, log)
	attachRecording := attachRecordingHandler.NewHandler(bookingSvc, log)
	sessionEvents := sessionEventsHandler.NewHandler(bookingSvc, bus, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID)

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/users/{userId}/bookings", getUserBookings.Handle).Methods(http.MethodGet)

	// --- Переходы статусов ---
	protected.HandleFunc("/bookings/{bookingId}/accept", acceptBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId}/reject", rejectBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId}/reschedule", rescheduleBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId}/complete", completeBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)

	// --- Оплата (ограничение частоты на пользователя) ---
	payLimiter := middleware.NewRateLimiter(cfg.Payment.RateLimitRPS, cfg.Payment.RateLimitBurst)
	protected.Handle("/bookings/{bookingId}/pay", payLimiter.Middleware(http.HandlerFunc(payBooking.Handle))).
		Methods(http.MethodPost)

	// --- Видеосессия ---
	protected.HandleFunc("/bookings/{bookingId}/availability", getAvailability.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}/session-events", sessionEvents.Handle).Methods(http.MethodPost)

	// --- Артефакты завершённой сессии ---
	protected.HandleFunc("/bookings/{bookingId}/review", attachReview.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/bookings/{bookingId}/recording", attachRecording.Handle).Methods(http.MethodPut)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	// Останавливаем трекер после того, как обработчики перестали публиковать события
	stop()

	log.Info("Server stopped gracefully")
}
