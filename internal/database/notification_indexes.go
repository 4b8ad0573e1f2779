// Package database - Index cho collection notifications (unique, TTL, compound).
package database

import (
	"context"
	"strings"

	"prop_manager/internal/global"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateNotificationIndexes tạo các index cho collection notifications.
// Gọi một lần khi khởi động server, sau khi đăng ký collections vào registry.
func CreateNotificationIndexes(ctx context.Context, db *mongo.Database) error {
	notifications := db.Collection(global.MongoDB_ColNames.Notifications)

	// nuid: unique: định danh công khai của notification
	if _, err := notifications.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "nuid", Value: 1}},
		Options: options.Index().SetName("notification_nuid").SetUnique(true),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// expiresAt: TTL: MongoDB tự xóa document khi quá hạn
	if _, err := notifications.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expiresAt", Value: 1}},
		Options: options.Index().SetName("notification_expires_ttl").SetExpireAfterSeconds(0),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// (cuid, recipient, isRead): truy vấn danh sách và đếm unread theo user
	if _, err := notifications.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "cuid", Value: 1},
			{Key: "recipient", Value: 1},
			{Key: "isRead", Value: 1},
		},
		Options: options.Index().SetName("notification_cuid_recipient_read"),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// (cuid, resourceInfo.resourceName, resourceInfo.resourceId): tra cứu theo resource
	if _, err := notifications.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "cuid", Value: 1},
			{Key: "resourceInfo.resourceName", Value: 1},
			{Key: "resourceInfo.resourceId", Value: 1},
		},
		Options: options.Index().SetName("notification_cuid_resource").SetSparse(true),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// deletedAt: cleanup worker quét theo thời điểm soft-delete
	if _, err := notifications.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "deletedAt", Value: 1}},
		Options: options.Index().SetName("notification_deleted_at").SetSparse(true),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	return nil
}

func isIndexExistsError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "already exists") || strings.Contains(s, "duplicate")
}
