// Package notifsvc - Test các thao tác chạm store qua mock deployment của mongo driver:
// kiểm tra command gửi đi (scope tenant, filter purge) và xử lý kết quả write.
package notifsvc

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	basesvc "prop_manager/internal/api/base/service"
	notifmodels "prop_manager/internal/api/notification/models"
	"prop_manager/internal/common"
)

func newMockStoreService(mt *mtest.T) *NotificationService {
	return &NotificationService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[notifmodels.Notification](mt.Coll),
		expiryDays:           30,
	}
}

func mockNamespace(mt *mtest.T) string {
	return mt.Coll.Database().Name() + "." + mt.Coll.Name()
}

func TestSoftDeleteByNuid_Store(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("write được ack thì trả về thành công", func(mt *mtest.T) {
		s := newMockStoreService(mt)

		// Update thành công làm document rời khỏi filter (deletedAt hết nil),
		// nên kết quả phải dựa trên write ack chứ không phải đọc lại theo filter cũ
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		deleted, err := s.SoftDeleteByNuid(context.Background(), "nuid-1", "tenant-01")
		if err != nil {
			t.Fatalf("soft delete thành công không được trả về lỗi, có: %v", err)
		}
		if !deleted {
			t.Error("update đã modify một document thì phải trả về true")
		}

		evt := mt.GetStartedEvent()
		if evt == nil || evt.CommandName != "update" {
			t.Fatalf("phải gửi command update, có: %+v", evt)
		}
		filter := evt.Command.Lookup("updates", "0", "q")
		if got := filter.Document().Lookup("nuid").StringValue(); got != "nuid-1" {
			t.Errorf("filter phải chứa nuid, có: %q", got)
		}
		if got := filter.Document().Lookup("cuid").StringValue(); got != "tenant-01" {
			t.Errorf("filter phải scope theo cuid, có: %q", got)
		}
	})

	mt.Run("không match document nào thì trả về false không lỗi", func(mt *mtest.T) {
		s := newMockStoreService(mt)

		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		deleted, err := s.SoftDeleteByNuid(context.Background(), "nuid-khong-ton-tai", "tenant-01")
		if err != nil {
			t.Fatalf("nuid không tồn tại không phải là lỗi, có: %v", err)
		}
		if deleted {
			t.Error("không modify document nào thì phải trả về false")
		}
	})
}

func TestMarkAsRead_Store(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("query update phải scope theo tenant", func(mt *mtest.T) {
		s := newMockStoreService(mt)
		id := primitive.NewObjectID()

		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "value", Value: bson.D{
				{Key: "_id", Value: id},
				{Key: "nuid", Value: "nuid-1"},
				{Key: "cuid", Value: "tenant-01"},
				{Key: "recipientType", Value: notifmodels.RecipientTypeIndividual},
				{Key: "title", Value: "Bảo trì"},
				{Key: "message", Value: "Lịch bảo trì thang máy"},
				{Key: "type", Value: notifmodels.TypeMaintenance},
				{Key: "priority", Value: notifmodels.PriorityMedium},
				{Key: "isRead", Value: true},
			}},
		))

		updated, err := s.MarkAsRead(context.Background(), id, "tenant-01")
		if err != nil {
			t.Fatalf("mark as read thất bại: %v", err)
		}
		if !updated.IsRead {
			t.Error("notification trả về phải ở trạng thái đã đọc")
		}

		evt := mt.GetStartedEvent()
		if evt == nil || evt.CommandName != "findAndModify" {
			t.Fatalf("phải gửi command findAndModify, có: %+v", evt)
		}
		if got := evt.Command.Lookup("query", "cuid").StringValue(); got != "tenant-01" {
			t.Errorf("query phải chứa cuid của tenant, có: %q", got)
		}
		if evt.Command.Lookup("query", "_id").IsZero() {
			t.Error("query phải chứa _id của notification")
		}
	})

	mt.Run("đã đọc trước đó thì fallback đọc lại cũng scope theo tenant", func(mt *mtest.T) {
		s := newMockStoreService(mt)
		id := primitive.NewObjectID()
		ns := mockNamespace(mt)

		// findAndModify không match (value null), sau đó find trả về document đã đọc
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
				{Key: "_id", Value: id},
				{Key: "nuid", Value: "nuid-1"},
				{Key: "cuid", Value: "tenant-01"},
				{Key: "recipientType", Value: notifmodels.RecipientTypeIndividual},
				{Key: "title", Value: "Bảo trì"},
				{Key: "message", Value: "Lịch bảo trì thang máy"},
				{Key: "type", Value: notifmodels.TypeMaintenance},
				{Key: "priority", Value: notifmodels.PriorityMedium},
				{Key: "isRead", Value: true},
			}),
		)

		result, err := s.MarkAsRead(context.Background(), id, "tenant-01")
		if err != nil {
			t.Fatalf("gọi lại trên notification đã đọc phải idempotent, có lỗi: %v", err)
		}
		if !result.IsRead {
			t.Error("phải trả về document hiện tại với isRead true")
		}

		mt.GetStartedEvent() // findAndModify
		evt := mt.GetStartedEvent()
		if evt == nil || evt.CommandName != "find" {
			t.Fatalf("fallback phải là command find, có: %+v", evt)
		}
		if got := evt.Command.Lookup("filter", "cuid").StringValue(); got != "tenant-01" {
			t.Errorf("filter fallback phải chứa cuid, có: %q", got)
		}
	})

	mt.Run("không tồn tại trong tenant thì trả về not found", func(mt *mtest.T) {
		s := newMockStoreService(mt)
		ns := mockNamespace(mt)

		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch),
		)

		_, err := s.MarkAsRead(context.Background(), primitive.NewObjectID(), "tenant-khac")
		if err != common.ErrNotFound {
			t.Errorf("notification của tenant khác phải trả về ErrNotFound, có: %v", err)
		}
	})
}

func TestMarkAsRead_CuidKhongHopLe(t *testing.T) {
	s := newTestService()

	_, err := s.MarkAsRead(context.Background(), primitive.NewObjectID(), "bad cuid!")
	if err != common.ErrInvalidCuid {
		t.Errorf("cuid sai định dạng phải bị chặn trước khi chạm store, có: %v", err)
	}
}

func TestFindByNuid_Store(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("tra cứu theo nuid trong phạm vi tenant", func(mt *mtest.T) {
		s := newMockStoreService(mt)
		ns := mockNamespace(mt)

		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "nuid", Value: "nuid-1"},
			{Key: "cuid", Value: "tenant-01"},
			{Key: "recipientType", Value: notifmodels.RecipientTypeAnnouncement},
			{Key: "title", Value: "Thông báo chung"},
			{Key: "message", Value: "Nội dung"},
			{Key: "type", Value: notifmodels.TypeAnnouncement},
			{Key: "priority", Value: notifmodels.PriorityHigh},
		}))

		found, err := s.FindByNuid(context.Background(), "nuid-1", "tenant-01")
		if err != nil {
			t.Fatalf("tra cứu thất bại: %v", err)
		}
		if found.NUID != "nuid-1" {
			t.Errorf("nuid không khớp, có: %q", found.NUID)
		}

		evt := mt.GetStartedEvent()
		if evt == nil || evt.CommandName != "find" {
			t.Fatalf("phải gửi command find, có: %+v", evt)
		}
		if got := evt.Command.Lookup("filter", "cuid").StringValue(); got != "tenant-01" {
			t.Errorf("filter phải scope theo cuid, có: %q", got)
		}
		if evt.Command.Lookup("filter", "deletedAt").IsZero() {
			t.Error("filter phải loại document đã soft-delete")
		}
	})

	mt.Run("không tồn tại thì trả về not found", func(mt *mtest.T) {
		s := newMockStoreService(mt)
		ns := mockNamespace(mt)

		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := s.FindByNuid(context.Background(), "nuid-khong-ton-tai", "tenant-01")
		if err != common.ErrNotFound {
			t.Errorf("phải trả về ErrNotFound, có: %v", err)
		}
	})
}

func TestFindForUser_Store(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("query gửi đi mang đủ điều kiện khả kiến", func(mt *mtest.T) {
		s := newMockStoreService(mt)
		userID := primitive.NewObjectID()
		ns := mockNamespace(mt)

		// Hai notification cá nhân cho hai user khác nhau: store chỉ trả về
		// notification của đúng user trong query, ở đây mô phỏng kết quả đó
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "n", Value: int32(1)}}),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
				{Key: "_id", Value: primitive.NewObjectID()},
				{Key: "nuid", Value: "nuid-u1"},
				{Key: "cuid", Value: "tenant-01"},
				{Key: "recipientType", Value: notifmodels.RecipientTypeIndividual},
				{Key: "recipient", Value: userID},
				{Key: "title", Value: "Dành riêng cho bạn"},
				{Key: "message", Value: "Nội dung"},
				{Key: "type", Value: notifmodels.TypeMessage},
				{Key: "priority", Value: notifmodels.PriorityMedium},
			}),
		)

		page, err := s.FindForUser(context.Background(), userID, "tenant-01", nil, 1, 10)
		if err != nil {
			t.Fatalf("truy vấn thất bại: %v", err)
		}
		if page.Total != 1 || len(page.Items) != 1 {
			t.Fatalf("user phải thấy đúng 1 notification, có total=%d items=%d", page.Total, len(page.Items))
		}
		if page.Items[0].Recipient == nil || *page.Items[0].Recipient != userID {
			t.Error("notification trả về phải thuộc về đúng user truy vấn")
		}

		mt.GetStartedEvent() // aggregate của count
		evt := mt.GetStartedEvent()
		if evt == nil || evt.CommandName != "find" {
			t.Fatalf("phải gửi command find, có: %+v", evt)
		}
		if got := evt.Command.Lookup("filter", "cuid").StringValue(); got != "tenant-01" {
			t.Errorf("filter phải scope theo cuid, có: %q", got)
		}
		if evt.Command.Lookup("filter", "$or").IsZero() {
			t.Error("filter phải có nhánh $or cá nhân/announcement để mỗi user chỉ thấy phần của mình")
		}
	})
}

func TestCleanup_Store(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("chỉ purge document soft-delete quá hạn", func(mt *mtest.T) {
		s := newMockStoreService(mt)

		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: int32(2)}))

		before := time.Now()
		purged, err := s.Cleanup(context.Background(), 30)
		if err != nil {
			t.Fatalf("cleanup thất bại: %v", err)
		}
		if purged != 2 {
			t.Errorf("số document purge phải theo kết quả delete, có: %d", purged)
		}

		evt := mt.GetStartedEvent()
		if evt == nil || evt.CommandName != "delete" {
			t.Fatalf("phải gửi command delete, có: %+v", evt)
		}

		filter := evt.Command.Lookup("deletes", "0", "q").Document()
		if filter.Lookup("deletedAt", "$ne").IsZero() {
			t.Error("filter phải loại trừ document chưa soft-delete")
		}
		cutoff := filter.Lookup("deletedAt", "$lt").Time()
		want := CleanupCutoff(30, before)
		if diff := cutoff.Sub(want); diff < -time.Minute || diff > time.Minute {
			t.Errorf("mốc cắt phải là 30 ngày trước hiện tại, có %v (lệch %v)", cutoff, diff)
		}
	})
}
