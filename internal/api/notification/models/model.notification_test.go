// Package models - Test ràng buộc validate và các hàm dẫn xuất của Notification.
package models

import (
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func validNotification() Notification {
	recipient := primitive.NewObjectID()
	return Notification{
		CUID:          "tenant-01",
		RecipientType: RecipientTypeIndividual,
		Recipient:     &recipient,
		Title:         "Hóa đơn mới",
		Message:       "Hóa đơn tháng 9 đã được tạo",
		Type:          TypePayment,
		Priority:      PriorityMedium,
	}
}

func TestValidate_HopLe(t *testing.T) {
	n := validNotification()
	if err := n.Validate(); err != nil {
		t.Fatalf("notification hợp lệ nhưng Validate trả về lỗi: %v", err)
	}
}

func TestValidate_IndividualThieuRecipient(t *testing.T) {
	n := validNotification()
	n.Recipient = nil
	if err := n.Validate(); err == nil {
		t.Fatal("notification individual không có recipient phải bị từ chối")
	}
}

func TestValidate_AnnouncementCoRecipient(t *testing.T) {
	n := validNotification()
	n.RecipientType = RecipientTypeAnnouncement
	if err := n.Validate(); err == nil {
		t.Fatal("notification announcement có recipient phải bị từ chối")
	}
}

func TestValidate_AnnouncementKhongRecipient(t *testing.T) {
	n := validNotification()
	n.RecipientType = RecipientTypeAnnouncement
	n.Recipient = nil
	if err := n.Validate(); err != nil {
		t.Fatalf("notification announcement không recipient phải hợp lệ, lỗi: %v", err)
	}
}

func TestValidate_ThieuTruongBatBuoc(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(n *Notification)
	}{
		{"thiếu cuid", func(n *Notification) { n.CUID = "" }},
		{"thiếu title", func(n *Notification) { n.Title = "" }},
		{"thiếu message", func(n *Notification) { n.Message = "" }},
		{"thiếu type", func(n *Notification) { n.Type = "" }},
	}

	for _, tc := range cases {
		n := validNotification()
		tc.mutate(&n)
		if err := n.Validate(); err == nil {
			t.Errorf("%s: Validate phải trả về lỗi", tc.name)
		}
	}
}

func TestValidate_GioiHanDoDai(t *testing.T) {
	n := validNotification()
	n.Title = strings.Repeat("a", MaxTitleLength+1)
	if err := n.Validate(); err == nil {
		t.Error("title vượt giới hạn phải bị từ chối")
	}

	n = validNotification()
	n.Title = strings.Repeat("a", MaxTitleLength)
	if err := n.Validate(); err != nil {
		t.Errorf("title đúng giới hạn phải hợp lệ, lỗi: %v", err)
	}

	n = validNotification()
	n.Message = strings.Repeat("b", MaxMessageLength+1)
	if err := n.Validate(); err == nil {
		t.Error("message vượt giới hạn phải bị từ chối")
	}
}

func TestValidate_EnumKhongHopLe(t *testing.T) {
	n := validNotification()
	n.Type = "email"
	if err := n.Validate(); err == nil {
		t.Error("type ngoài enum phải bị từ chối")
	}

	n = validNotification()
	n.Priority = "critical"
	if err := n.Validate(); err == nil {
		t.Error("priority ngoài enum phải bị từ chối")
	}

	n = validNotification()
	n.RecipientType = "broadcast"
	if err := n.Validate(); err == nil {
		t.Error("recipientType ngoài enum phải bị từ chối")
	}
}

func TestIsExpired(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	if IsExpired(now.Add(time.Hour), now) {
		t.Error("expiresAt trong tương lai không được coi là hết hạn")
	}
	if !IsExpired(now.Add(-time.Hour), now) {
		t.Error("expiresAt trong quá khứ phải coi là hết hạn")
	}
	if !IsExpired(now, now) {
		t.Error("expiresAt đúng thời điểm now phải coi là hết hạn")
	}
	if IsExpired(time.Time{}, now) {
		t.Error("expiresAt zero nghĩa là không có hạn, không được coi là hết hạn")
	}
}

func TestTimeAgo(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		createdAt time.Time
		want      string
	}{
		{now.Add(-30 * time.Second), "vừa xong"},
		{now.Add(-5 * time.Minute), "5 phút trước"},
		{now.Add(-2 * time.Hour), "2 giờ trước"},
		{now.Add(-3 * 24 * time.Hour), "3 ngày trước"},
	}

	for _, tc := range cases {
		got := TimeAgo(tc.createdAt.UnixMilli(), now)
		if got != tc.want {
			t.Errorf("TimeAgo(%v) = %q, muốn %q", tc.createdAt, got, tc.want)
		}
	}

	// Tính thuần túy: cùng input cho cùng output
	first := TimeAgo(now.Add(-time.Hour).UnixMilli(), now)
	second := TimeAgo(now.Add(-time.Hour).UnixMilli(), now)
	if first != second {
		t.Errorf("TimeAgo không thuần túy: %q != %q", first, second)
	}
}

func TestAllTypes_DuMoiLoai(t *testing.T) {
	seen := make(map[string]bool)
	for _, typ := range AllTypes {
		if seen[typ] {
			t.Errorf("loại %q xuất hiện hai lần trong AllTypes", typ)
		}
		seen[typ] = true
	}
	if len(AllTypes) != 9 {
		t.Errorf("AllTypes có %d loại, muốn 9", len(AllTypes))
	}
}
