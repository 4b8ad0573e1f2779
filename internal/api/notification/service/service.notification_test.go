// Package notifsvc - Test xây dựng filter khả kiến, gán mặc định và mốc cleanup.
package notifsvc

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	basesvc "prop_manager/internal/api/base/service"
	notifmodels "prop_manager/internal/api/notification/models"
)

func newTestService() *NotificationService {
	// Collection nil là đủ cho các test không chạm vào store
	return &NotificationService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[notifmodels.Notification](nil),
		expiryDays:           30,
	}
}

func TestVisibilityFilter_ScopeTenantVaUser(t *testing.T) {
	s := newTestService()
	userID := primitive.NewObjectID()

	filter := s.visibilityFilter(userID, "tenant-01")

	if filter["cuid"] != "tenant-01" {
		t.Errorf("filter phải scope theo cuid, có: %v", filter["cuid"])
	}
	if filter["deletedAt"] != nil {
		t.Errorf("filter phải loại trừ document soft-delete, có: %v", filter["deletedAt"])
	}

	or, ok := filter["$or"].([]bson.M)
	if !ok || len(or) != 2 {
		t.Fatalf("filter phải có $or 2 nhánh, có: %v", filter["$or"])
	}
	if or[0]["recipientType"] != notifmodels.RecipientTypeIndividual || or[0]["recipient"] != userID {
		t.Errorf("nhánh individual phải khớp recipient=user, có: %v", or[0])
	}
	if or[1]["recipientType"] != notifmodels.RecipientTypeAnnouncement {
		t.Errorf("nhánh announcement sai: %v", or[1])
	}
	if _, hasRecipient := or[1]["recipient"]; hasRecipient {
		t.Error("nhánh announcement không được ràng buộc recipient")
	}
}

func TestApplyListFilter_ScalarVaList(t *testing.T) {
	// Một giá trị: dùng equality trực tiếp
	filter := applyListFilter(bson.M{}, &ListFilter{Types: []string{"payment"}})
	if filter["type"] != "payment" {
		t.Errorf("filter type đơn phải là equality, có: %v", filter["type"])
	}

	// Nhiều giá trị: chuyển thành $in
	filter = applyListFilter(bson.M{}, &ListFilter{Types: []string{"payment", "task"}})
	in, ok := filter["type"].(bson.M)
	if !ok {
		t.Fatalf("filter type nhiều giá trị phải là $in, có: %v", filter["type"])
	}
	values, ok := in["$in"].([]string)
	if !ok || len(values) != 2 {
		t.Errorf("$in phải chứa 2 giá trị, có: %v", in["$in"])
	}

	// isRead
	isRead := false
	filter = applyListFilter(bson.M{}, &ListFilter{IsRead: &isRead})
	if filter["isRead"] != false {
		t.Errorf("filter isRead sai: %v", filter["isRead"])
	}

	// Priority nhiều giá trị
	filter = applyListFilter(bson.M{}, &ListFilter{Priorities: []string{"high", "urgent"}})
	if _, ok := filter["priority"].(bson.M); !ok {
		t.Errorf("filter priority nhiều giá trị phải là $in, có: %v", filter["priority"])
	}

	// Filter nil không thay đổi gì
	filter = applyListFilter(bson.M{"cuid": "t"}, nil)
	if len(filter) != 1 {
		t.Errorf("filter nil không được thêm điều kiện, có: %v", filter)
	}
}

func TestApplyDefaults(t *testing.T) {
	s := newTestService()

	n := notifmodels.Notification{}
	s.applyDefaults(&n)

	if n.NUID == "" {
		t.Error("applyDefaults phải sinh nuid")
	}
	if n.Priority != notifmodels.PriorityMedium {
		t.Errorf("priority mặc định phải là medium, có: %q", n.Priority)
	}
	if n.ExpiresAt.IsZero() {
		t.Error("applyDefaults phải gán expiresAt")
	}

	// expiresAt xấp xỉ now + 30 ngày
	want := time.Now().Add(30 * 24 * time.Hour)
	if diff := n.ExpiresAt.Sub(want); diff < -time.Minute || diff > time.Minute {
		t.Errorf("expiresAt lệch quá xa mốc 30 ngày: %v", diff)
	}
}

func TestApplyDefaults_KhongGhiDeNuid(t *testing.T) {
	s := newTestService()

	n := notifmodels.Notification{NUID: "nuid-co-san", Priority: notifmodels.PriorityUrgent}
	s.applyDefaults(&n)

	if n.NUID != "nuid-co-san" {
		t.Errorf("nuid đã có không được ghi đè, có: %q", n.NUID)
	}
	if n.Priority != notifmodels.PriorityUrgent {
		t.Errorf("priority đã có không được ghi đè, có: %q", n.Priority)
	}
}

func TestApplyDefaults_NuidDuyNhat(t *testing.T) {
	s := newTestService()

	n1 := notifmodels.Notification{}
	n2 := notifmodels.Notification{}
	s.applyDefaults(&n1)
	s.applyDefaults(&n2)

	if n1.NUID == n2.NUID {
		t.Errorf("hai lần applyDefaults sinh cùng nuid: %q", n1.NUID)
	}
}

func TestCleanupCutoff(t *testing.T) {
	now := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	cutoff := CleanupCutoff(30, now)
	want := now.Add(-30 * 24 * time.Hour)
	if !cutoff.Equal(want) {
		t.Errorf("CleanupCutoff(30) = %v, muốn %v", cutoff, want)
	}

	// Giá trị không hợp lệ rơi về mặc định 30 ngày
	cutoff = CleanupCutoff(0, now)
	if !cutoff.Equal(want) {
		t.Errorf("CleanupCutoff(0) phải dùng mặc định 30 ngày, có: %v", cutoff)
	}
	cutoff = CleanupCutoff(-5, now)
	if !cutoff.Equal(want) {
		t.Errorf("CleanupCutoff(-5) phải dùng mặc định 30 ngày, có: %v", cutoff)
	}
}
