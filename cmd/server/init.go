package main

import (
	"context"

	"github.com/sirupsen/logrus"

	"prop_manager/config"
	"prop_manager/internal/cache"
	"prop_manager/internal/database"
	"prop_manager/internal/global"
)

// InitGlobal khởi tạo các biến toàn cục theo thứ tự phụ thuộc:
// tên collection -> validator -> config -> MongoDB -> Redis.
func InitGlobal() {
	initColNames()
	initValidator()
	initConfig()
	initDatabaseMongoDB()
	initRedis()
}

// initColNames khởi tạo tên các collection trong database
func initColNames() {
	global.MongoDB_ColNames.Notifications = "notifications"
	logrus.Info("Initialized collection names")
}

// initValidator khởi tạo validator với các custom validator (no_xss, cuid, exists)
func initValidator() {
	global.InitValidator()
	logrus.Info("Initialized validator")
}

// initConfig khởi tạo cấu hình server từ env
func initConfig() {
	global.ServerConfig = config.NewConfig()
	if global.ServerConfig == nil {
		logrus.Fatalf("Failed to initialize config: config is nil")
	}
	logrus.Info("Initialized server config")
}

// initDatabaseMongoDB khởi tạo kết nối MongoDB và các index của notification store
func initDatabaseMongoDB() {
	var err error
	global.MongoDB_Session, err = database.GetInstance(global.ServerConfig)
	if err != nil {
		logrus.Fatalf("Failed to get database instance: %v", err)
	}
	logrus.Info("Connected to MongoDB")

	dbName := global.ServerConfig.MongoDB_DBName
	if err := database.CreateNotificationIndexes(context.TODO(), global.MongoDB_Session.Database(dbName)); err != nil {
		logrus.Fatalf("Failed to create notification indexes: %v", err)
	}
	logrus.Info("Created notification indexes")
}

// initRedis khởi tạo kết nối Redis cho tầng pub/sub channel
func initRedis() {
	var err error
	global.Redis_Client, err = cache.GetInstance(global.ServerConfig)
	if err != nil {
		logrus.Fatalf("Failed to get redis instance: %v", err)
	}
	logrus.Info("Connected to Redis")
}
