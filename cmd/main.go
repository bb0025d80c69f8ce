package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/courtside-dev/stadium-booking/internal/config"
	"github.com/courtside-dev/stadium-booking/internal/db"
	"github.com/courtside-dev/stadium-booking/internal/model"
	"github.com/courtside-dev/stadium-booking/internal/mq"
	"github.com/courtside-dev/stadium-booking/internal/obs"
	"github.com/courtside-dev/stadium-booking/internal/repository"
	"github.com/courtside-dev/stadium-booking/internal/service"
	"github.com/courtside-dev/stadium-booking/internal/storage"
	"github.com/courtside-dev/stadium-booking/internal/transport/rest"
)

func main() {
	ctx := context.Background()

	// 1. Загружаем конфиг из env.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// 2. Подключаемся к БД через GORM.
	gormDB, err := db.NewGormDB(cfg.DB)
	if err != nil {
		log.Fatalf("init db: %v", err)
	}

	// 3. Миграции моделей.
	if err := model.AutoMigrate(gormDB); err != nil {
		log.Fatalf("auto migrate: %v", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatalf("sql DB: %v", err)
	}
	defer sqlDB.Close()

	// 4. Трассировка (опционально, по OTLP endpoint).
	if cfg.OTLPEndpoint != "" {
		shutdownTracer, err := obs.InitTracer(ctx, "stadium-booking", cfg.OTLPEndpoint)
		if err != nil {
			log.Fatalf("init tracer: %v", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownTracer(shutdownCtx)
		}()
	}

	// 5. Публикация событий брони (опционально, по RABBIT_URL).
	var pub service.EventPublisher
	if cfg.RabbitURL != "" {
		rabbit, err := mq.NewPublisher(cfg.RabbitURL, cfg.BookingExchange)
		if err != nil {
			log.Fatalf("init rabbitmq: %v", err)
		}
		defer rabbit.Close()
		pub = rabbit
	}

	// 6. Репозитории (реализации на GORM).
	bookingRepo := repository.NewGormBookingRepository(gormDB)
	courtRepo := repository.NewGormCourtRepository(gormDB)
	userRepo := repository.NewGormUserRepository(gormDB)

	// 7. Сервисы ядра.
	bookingSvc := service.NewBookingService(bookingRepo, pub)
	identitySvc := service.NewIdentityService(
		userRepo,
		[]byte(cfg.JWTSecret),
		time.Duration(cfg.JWTExpireMin)*time.Minute,
	)

	// 8. Хранилище слипов оплаты.
	slips, err := storage.NewLocalSlipStore(cfg.SlipDir)
	if err != nil {
		log.Fatalf("init slip store: %v", err)
	}

	// 9. HTTP-сервер.
	handler := rest.NewHandler(bookingSvc, identitySvc, courtRepo, slips)
	router := rest.SetupRouter(handler, identitySvc)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	log.Printf("stadium-booking HTTP server listening on %s", cfg.HTTPAddr)

	// 10. Запускаем сервер в горутине.
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http serve: %v", err)
		}
	}()

	// 11. Грейсфул-шатдаун по сигналу.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
