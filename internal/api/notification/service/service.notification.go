// Package notifsvc chứa logic nghiệp vụ của domain Notification.
package notifsvc

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	basemodels "prop_manager/internal/api/base/models"
	basesvc "prop_manager/internal/api/base/service"
	notifmodels "prop_manager/internal/api/notification/models"
	"prop_manager/internal/common"
	"prop_manager/internal/global"
)

// ListFilter là các filter tùy chọn khi truy vấn notification của user.
// Type và Priority nhận scalar hoặc list (list chuyển thành $in).
type ListFilter struct {
	Types      []string
	IsRead     *bool
	Priorities []string
}

// NotificationService là cấu trúc chứa các phương thức liên quan đến Notification
type NotificationService struct {
	*basesvc.BaseServiceMongoImpl[notifmodels.Notification]
	expiryDays int
}

// NewNotificationService tạo mới NotificationService.
// Collection được lấy từ registry, expiryDays là số ngày mặc định trước khi notification hết hạn.
func NewNotificationService(expiryDays int) (*NotificationService, error) {
	collection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Notifications)
	if !exist {
		return nil, fmt.Errorf("failed to get notifications collection: %v", common.ErrNotFound)
	}

	if expiryDays <= 0 {
		expiryDays = notifmodels.DefaultExpiryDays
	}

	return &NotificationService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[notifmodels.Notification](collection),
		expiryDays:           expiryDays,
	}, nil
}

// applyDefaults gán các giá trị mặc định trước khi insert: nuid, priority, expiresAt.
// NUID chỉ sinh khi chưa có, và không bao giờ thay đổi sau đó.
func (s *NotificationService) applyDefaults(n *notifmodels.Notification) {
	if n.NUID == "" {
		n.NUID = uuid.NewString()
	}
	if n.Priority == "" {
		n.Priority = notifmodels.PriorityMedium
	}
	if n.ExpiresAt.IsZero() {
		n.ExpiresAt = time.Now().Add(time.Duration(s.expiryDays) * 24 * time.Hour)
	}
}

// Create validate, gán mặc định và ghi một notification vào store.
// Trả về document đã lưu (bao gồm nuid đã sinh).
func (s *NotificationService) Create(ctx context.Context, n notifmodels.Notification) (notifmodels.Notification, error) {
	s.applyDefaults(&n)
	if err := n.Validate(); err != nil {
		return n, err
	}
	return s.InsertOne(ctx, n)
}

// BulkCreate validate và ghi nhiều notification trong một lần InsertMany.
// Không có rollback chéo giữa các document, lỗi validate của bất kỳ document nào
// sẽ chặn toàn bộ batch trước khi chạm vào store.
func (s *NotificationService) BulkCreate(ctx context.Context, ns []notifmodels.Notification) ([]notifmodels.Notification, error) {
	if len(ns) == 0 {
		return nil, common.ErrRequiredField
	}

	for i := range ns {
		s.applyDefaults(&ns[i])
		if err := ns[i].Validate(); err != nil {
			return nil, common.NewError(
				common.ErrCodeValidationInput,
				fmt.Sprintf("Notification thứ %d không hợp lệ: %s", i+1, err.Error()),
				common.StatusBadRequest,
				nil,
			)
		}
	}

	return s.InsertMany(ctx, ns)
}

// visibilityFilter xây dựng filter khả kiến của một user trong một tenant:
// (individual AND recipient=user) OR announcement, loại trừ document đã soft-delete.
func (s *NotificationService) visibilityFilter(userID primitive.ObjectID, cuid string) bson.M {
	return bson.M{
		"cuid": cuid,
		"$or": []bson.M{
			{
				"recipientType": notifmodels.RecipientTypeIndividual,
				"recipient":     userID,
			},
			{
				"recipientType": notifmodels.RecipientTypeAnnouncement,
			},
		},
		"deletedAt": nil,
	}
}

// applyListFilter gắn thêm các filter tùy chọn (type/isRead/priority) vào filter cơ sở
func applyListFilter(filter bson.M, lf *ListFilter) bson.M {
	if lf == nil {
		return filter
	}
	if len(lf.Types) == 1 {
		filter["type"] = lf.Types[0]
	} else if len(lf.Types) > 1 {
		filter["type"] = bson.M{"$in": lf.Types}
	}
	if lf.IsRead != nil {
		filter["isRead"] = *lf.IsRead
	}
	if len(lf.Priorities) == 1 {
		filter["priority"] = lf.Priorities[0]
	} else if len(lf.Priorities) > 1 {
		filter["priority"] = bson.M{"$in": lf.Priorities}
	}
	return filter
}

// FindForUser trả về danh sách notification khả kiến của user, phân trang,
// sắp xếp mới nhất trước. Thêm _id vào sort key để thứ tự ổn định khi createdAt trùng nhau.
func (s *NotificationService) FindForUser(ctx context.Context, userID primitive.ObjectID, cuid string, lf *ListFilter, page, limit int64) (*basemodels.PaginateResult[notifmodels.Notification], error) {
	if !global.IsValidCuid(cuid) {
		return nil, common.ErrInvalidCuid
	}

	filter := applyListFilter(s.visibilityFilter(userID, cuid), lf)
	opts := options.Find().SetSort(bson.D{
		{Key: "createdAt", Value: -1},
		{Key: "_id", Value: -1},
	})

	return s.FindWithPagination(ctx, filter, page, limit, opts)
}

// GetUnreadCount đếm số notification chưa đọc khả kiến của user
func (s *NotificationService) GetUnreadCount(ctx context.Context, userID primitive.ObjectID, cuid string, lf *ListFilter) (int64, error) {
	if !global.IsValidCuid(cuid) {
		return 0, common.ErrInvalidCuid
	}

	filter := applyListFilter(s.visibilityFilter(userID, cuid), lf)
	filter["isRead"] = false

	return s.CountDocuments(ctx, filter)
}

// GetUnreadCountByType đếm số notification chưa đọc theo từng loại bằng một aggregation $group.
// Kết quả luôn chứa đủ mọi loại đã khai báo, loại không có notification nào sẽ có count = 0.
func (s *NotificationService) GetUnreadCountByType(ctx context.Context, userID primitive.ObjectID, cuid string) (map[string]int64, error) {
	if !global.IsValidCuid(cuid) {
		return nil, common.ErrInvalidCuid
	}

	filter := s.visibilityFilter(userID, cuid)
	filter["isRead"] = false

	cursor, err := s.Collection().Aggregate(ctx, []bson.M{
		{"$match": filter},
		{"$group": bson.M{
			"_id":   "$type",
			"count": bson.M{"$sum": 1},
		}},
	})
	if err != nil {
		return nil, common.ConvertMongoError(err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Type  string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, common.ConvertMongoError(err)
	}

	// Zero-fill toàn bộ loại đã khai báo
	result := make(map[string]int64, len(notifmodels.AllTypes))
	for _, t := range notifmodels.AllTypes {
		result[t] = 0
	}
	for _, row := range rows {
		result[row.Type] = row.Count
	}

	return result, nil
}

// MarkAsRead đánh dấu một notification là đã đọc, scoped theo tenant. Idempotent:
// chỉ cập nhật khi isRead còn là false nên readAt chỉ được gán đúng một lần. Gọi lại
// trên notification đã đọc vẫn trả về document hiện tại, không lỗi.
func (s *NotificationService) MarkAsRead(ctx context.Context, id primitive.ObjectID, cuid string) (notifmodels.Notification, error) {
	var zero notifmodels.Notification
	if !global.IsValidCuid(cuid) {
		return zero, common.ErrInvalidCuid
	}

	now := time.Now()
	updated, err := s.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "cuid": cuid, "isRead": false, "deletedAt": nil},
		bson.M{"$set": bson.M{
			"isRead":    true,
			"readAt":    now,
			"updatedAt": now.UnixMilli(),
		}},
		nil,
	)
	if err == nil {
		return updated, nil
	}
	if err != common.ErrNotFound {
		return updated, err
	}

	// Không match: hoặc đã đọc rồi (trả về nguyên trạng), hoặc không tồn tại trong tenant
	return s.FindOne(ctx, bson.M{"_id": id, "cuid": cuid, "deletedAt": nil}, nil)
}

// MarkAllAsReadForUser đánh dấu toàn bộ notification chưa đọc khả kiến của user là đã đọc.
// Trả về số document đã cập nhật.
func (s *NotificationService) MarkAllAsReadForUser(ctx context.Context, userID primitive.ObjectID, cuid string) (int64, error) {
	if !global.IsValidCuid(cuid) {
		return 0, common.ErrInvalidCuid
	}

	filter := s.visibilityFilter(userID, cuid)
	filter["isRead"] = false

	now := time.Now()
	return s.UpdateMany(ctx, filter, bson.M{"$set": bson.M{
		"isRead":    true,
		"readAt":    now,
		"updatedAt": now.UnixMilli(),
	}}, nil)
}

// FindByResource trả về các notification gắn với một tài nguyên cụ thể, scoped theo tenant
func (s *NotificationService) FindByResource(ctx context.Context, resourceName string, resourceID string, cuid string) ([]notifmodels.Notification, error) {
	if !global.IsValidCuid(cuid) {
		return nil, common.ErrInvalidCuid
	}

	filter := bson.M{
		"cuid":                      cuid,
		"resourceInfo.resourceName": resourceName,
		"resourceInfo.resourceId":   resourceID,
		"deletedAt":                 nil,
	}
	opts := options.Find().SetSort(bson.D{
		{Key: "createdAt", Value: -1},
		{Key: "_id", Value: -1},
	})

	return s.Find(ctx, filter, opts)
}

// FindByNuid tra cứu notification theo định danh công khai, scoped theo tenant.
// Trả về common.ErrNotFound nếu không tồn tại hoặc đã soft-delete.
func (s *NotificationService) FindByNuid(ctx context.Context, nuid string, cuid string) (notifmodels.Notification, error) {
	var zero notifmodels.Notification
	if !global.IsValidCuid(cuid) {
		return zero, common.ErrInvalidCuid
	}

	return s.FindOne(ctx, bson.M{"nuid": nuid, "cuid": cuid, "deletedAt": nil}, nil)
}

// SoftDeleteByNuid đánh dấu xóa notification theo nuid (gán deletedAt).
// Document sẽ bị loại khỏi mọi truy vấn đọc và được purge bởi cleanup worker.
func (s *NotificationService) SoftDeleteByNuid(ctx context.Context, nuid string, cuid string) (bool, error) {
	if !global.IsValidCuid(cuid) {
		return false, common.ErrInvalidCuid
	}

	// Dùng UpdateMany để nhận ModifiedCount trực tiếp: update làm document
	// rời khỏi filter (deletedAt không còn nil) nên không thể đọc lại theo filter cũ.
	modified, err := s.UpdateMany(ctx,
		bson.M{"nuid": nuid, "cuid": cuid, "deletedAt": nil},
		bson.M{"$set": bson.M{"deletedAt": time.Now()}},
		nil,
	)
	if err != nil {
		return false, err
	}
	return modified > 0, nil
}

// DeleteByNuid xóa cứng notification theo nuid, scoped theo tenant.
// Trả về true nếu có document bị xóa.
func (s *NotificationService) DeleteByNuid(ctx context.Context, nuid string, cuid string) (bool, error) {
	if !global.IsValidCuid(cuid) {
		return false, common.ErrInvalidCuid
	}

	count, err := s.DeleteMany(ctx, bson.M{"nuid": nuid, "cuid": cuid})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CleanupCutoff tính mốc thời gian cắt cho việc purge notification đã soft-delete
func CleanupCutoff(olderThanDays int, now time.Time) time.Time {
	if olderThanDays <= 0 {
		olderThanDays = notifmodels.DefaultExpiryDays
	}
	return now.Add(-time.Duration(olderThanDays) * 24 * time.Hour)
}

// Cleanup xóa cứng các notification đã soft-delete quá olderThanDays ngày.
// Trả về số document đã purge. Notification hết hạn theo expiresAt do TTL index
// của MongoDB tự xử lý, không thuộc trách nhiệm của hàm này.
func (s *NotificationService) Cleanup(ctx context.Context, olderThanDays int) (int64, error) {
	cutoff := CleanupCutoff(olderThanDays, time.Now())
	return s.DeleteMany(ctx, bson.M{
		"deletedAt": bson.M{"$ne": nil, "$lt": cutoff},
	})
}
