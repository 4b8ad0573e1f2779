package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"

	notifsvc "prop_manager/internal/api/notification/service"
	"prop_manager/internal/cache"
	"prop_manager/internal/database"
	"prop_manager/internal/global"
	"prop_manager/internal/logger"
	"prop_manager/internal/worker"
)

// initLogger khởi tạo logger cho toàn bộ ứng dụng
func initLogger() {
	if err := logger.Init(nil); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	log := logger.GetAppLogger()
	log.Info("Logger system initialized successfully")
}

// startCleanupWorker khởi chạy worker purge notification đã soft-delete
func startCleanupWorker(ctx context.Context) {
	log := logger.GetAppLogger()
	cfg := global.ServerConfig

	notifService, err := notifsvc.NewNotificationService(cfg.Notification_ExpiryDays)
	if err != nil {
		log.WithError(err).Error("Failed to create notification service, continuing without cleanup worker")
		return
	}

	cleanupWorker := worker.NewNotificationCleanupWorker(
		notifService,
		time.Duration(cfg.Notification_CleanupMinutes)*time.Minute,
		cfg.Notification_RetentionDays,
	)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.WithFields(map[string]interface{}{
					"panic": r,
				}).Error("🧹 [NOTIFICATION_CLEANUP] Worker goroutine panic")
			}
		}()
		cleanupWorker.Start(ctx)
	}()
}

// shutdown đóng các kết nối ngoài theo thứ tự ngược với khởi tạo
func shutdown(app *fiber.App) {
	log := logger.GetAppLogger()

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.WithError(err).Error("Fiber shutdown error")
	}

	// Đóng toàn bộ subscription pub/sub còn mở
	if count, err := global.RegistryPubSub.ClearAll(func(ps *redis.PubSub) error {
		return ps.Close()
	}); err != nil {
		log.WithError(err).Error("Failed to close pubsub subscriptions")
	} else if count > 0 {
		log.Infof("Closed %d pubsub subscriptions", count)
	}

	if err := cache.CloseInstance(global.Redis_Client); err != nil {
		log.WithError(err).Error("Failed to close redis connection")
	}
	if err := database.CloseInstance(global.MongoDB_Session); err != nil {
		log.WithError(err).Error("Failed to close mongodb connection")
	}

	log.Info("Server stopped")
}

// Hàm main
func main() {
	// Khởi tạo logger
	initLogger()

	// Khởi tạo các biến toàn cục (config, MongoDB, Redis, validator)
	InitGlobal()

	// Khởi tạo registry collection
	InitRegistry()

	log := logger.GetAppLogger()

	// Context điều khiển vòng đời các background worker
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Worker purge notification đã soft-delete
	startCleanupWorker(ctx)

	// Khởi tạo Fiber app
	app, err := InitFiberApp()
	if err != nil {
		log.Fatalf("Failed to initialize fiber app: %v", err)
	}

	// Bắt tín hiệu dừng để shutdown gọn
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-stop
		log.Info("Shutdown signal received...")
		cancel()
		shutdown(app)
	}()

	address := global.ServerConfig.Address
	log.WithFields(map[string]interface{}{
		"address":  address,
		"protocol": "HTTP",
	}).Info("Starting Fiber server...")

	if err := app.Listen(address, fiber.ListenConfig{}); err != nil {
		log.Fatalf("Error in Fiber Listen: %v", err)
	}
}
