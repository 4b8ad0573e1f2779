// Package models - Notification thuộc domain Notification.
package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"prop_manager/internal/common"
	"prop_manager/internal/utility"
)

// Loại người nhận của notification
const (
	RecipientTypeIndividual   = "individual"   // Gửi cho một user cụ thể
	RecipientTypeAnnouncement = "announcement" // Gửi cho toàn bộ tenant
)

// Loại notification
const (
	TypeAnnouncement = "announcement"
	TypeMaintenance  = "maintenance"
	TypeProperty     = "property"
	TypeMessage      = "message"
	TypeComment      = "comment"
	TypePayment      = "payment"
	TypeSystem       = "system"
	TypeTask         = "task"
	TypeUser         = "user"
)

// AllTypes liệt kê toàn bộ loại notification, dùng cho zero-fill khi đếm theo type
var AllTypes = []string{
	TypeAnnouncement,
	TypeMaintenance,
	TypeProperty,
	TypeMessage,
	TypeComment,
	TypePayment,
	TypeSystem,
	TypeTask,
	TypeUser,
}

// Mức độ ưu tiên
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Giới hạn độ dài nội dung
const (
	MaxTitleLength   = 200
	MaxMessageLength = 500
)

// DefaultExpiryDays là số ngày mặc định trước khi notification hết hạn
const DefaultExpiryDays = 30

// ResourceInfo mô tả tài nguyên liên quan đến notification (property, lease, invoice...)
type ResourceInfo struct {
	ResourceName string                 `json:"resourceName" bson:"resourceName"`
	ResourceUID  string                 `json:"resourceUid,omitempty" bson:"resourceUid,omitempty"`
	ResourceID   string                 `json:"resourceId,omitempty" bson:"resourceId,omitempty"`
	Extra        map[string]interface{} `json:"extra,omitempty" bson:"extra,omitempty"`
}

// Notification là notification của một tenant, gửi cho một user (individual)
// hoặc toàn bộ tenant (announcement).
// NUID là định danh công khai (uuid), bất biến sau khi tạo.
type Notification struct {
	ID            primitive.ObjectID     `json:"id,omitempty" bson:"_id,omitempty"`
	NUID          string                 `json:"nuid" bson:"nuid" index:"unique"`
	CUID          string                 `json:"cuid" bson:"cuid" index:"single:1,compound:noti_cuid_recipient_read"`
	RecipientType string                 `json:"recipientType" bson:"recipientType"`
	Recipient     *primitive.ObjectID    `json:"recipient,omitempty" bson:"recipient,omitempty" index:"compound:noti_cuid_recipient_read"`
	TargetRoles   []string               `json:"targetRoles,omitempty" bson:"targetRoles,omitempty"`
	TargetVendor  string                 `json:"targetVendor,omitempty" bson:"targetVendor,omitempty"`
	Title         string                 `json:"title" bson:"title" maxLength:"200"`
	Message       string                 `json:"message" bson:"message" maxLength:"500"`
	Type          string                 `json:"type" bson:"type"`
	Priority      string                 `json:"priority" bson:"priority" default:"medium"`
	ResourceInfo  *ResourceInfo          `json:"resourceInfo,omitempty" bson:"resourceInfo,omitempty"`
	IsRead        bool                   `json:"isRead" bson:"isRead" index:"compound:noti_cuid_recipient_read"`
	ReadAt        *time.Time             `json:"readAt,omitempty" bson:"readAt,omitempty"`
	DeletedAt     *time.Time             `json:"deletedAt,omitempty" bson:"deletedAt,omitempty"`
	ExpiresAt     time.Time              `json:"expiresAt" bson:"expiresAt"`
	Metadata      map[string]interface{} `json:"metadata,omitempty" bson:"metadata,omitempty"`
	ActionURL     string                 `json:"actionUrl,omitempty" bson:"actionUrl,omitempty"`
	Author        *primitive.ObjectID    `json:"author,omitempty" bson:"author,omitempty"`
	CreatedAt     int64                  `json:"createdAt" bson:"createdAt"`
	UpdatedAt     int64                  `json:"updatedAt" bson:"updatedAt"`
}

// validTypes và validPriorities dùng tra cứu nhanh khi validate
var validTypes = func() map[string]struct{} {
	m := make(map[string]struct{}, len(AllTypes))
	for _, t := range AllTypes {
		m[t] = struct{}{}
	}
	return m
}()

var validPriorities = map[string]struct{}{
	PriorityLow:    {},
	PriorityMedium: {},
	PriorityHigh:   {},
	PriorityUrgent: {},
}

// Validate kiểm tra tính hợp lệ của notification trước khi ghi vào store.
// Ràng buộc quan trọng nhất: recipient bắt buộc khi và chỉ khi recipientType là individual.
func (n *Notification) Validate() error {
	if n.CUID == "" {
		return common.ErrInvalidCuid
	}
	if n.Title == "" || n.Message == "" || n.Type == "" {
		return common.ErrRequiredField
	}
	if len(n.Title) > MaxTitleLength {
		return common.NewError(
			common.ErrCodeValidationInput,
			fmt.Sprintf("Title vượt quá %d ký tự", MaxTitleLength),
			common.StatusBadRequest,
			nil,
		)
	}
	if len(n.Message) > MaxMessageLength {
		return common.NewError(
			common.ErrCodeValidationInput,
			fmt.Sprintf("Message vượt quá %d ký tự", MaxMessageLength),
			common.StatusBadRequest,
			nil,
		)
	}
	if _, ok := validTypes[n.Type]; !ok {
		return common.NewError(
			common.ErrCodeValidationInput,
			fmt.Sprintf("Loại notification không hợp lệ: %s", n.Type),
			common.StatusBadRequest,
			nil,
		)
	}
	if n.Priority != "" {
		if _, ok := validPriorities[n.Priority]; !ok {
			return common.NewError(
				common.ErrCodeValidationInput,
				fmt.Sprintf("Mức độ ưu tiên không hợp lệ: %s", n.Priority),
				common.StatusBadRequest,
				nil,
			)
		}
	}

	switch n.RecipientType {
	case RecipientTypeIndividual:
		if n.Recipient == nil || n.Recipient.IsZero() {
			return common.ErrRecipientRequired
		}
	case RecipientTypeAnnouncement:
		if n.Recipient != nil && !n.Recipient.IsZero() {
			return common.ErrRecipientForbidden
		}
	default:
		return common.NewError(
			common.ErrCodeValidationInput,
			fmt.Sprintf("Loại người nhận không hợp lệ: %s", n.RecipientType),
			common.StatusBadRequest,
			nil,
		)
	}

	return nil
}

// IsExpired kiểm tra notification đã hết hạn tại thời điểm now hay chưa
func IsExpired(expiresAt time.Time, now time.Time) bool {
	if expiresAt.IsZero() {
		return false
	}
	return !expiresAt.After(now)
}

// TimeAgo trả về chuỗi mô tả thời gian tương đối từ lúc tạo notification đến now
func TimeAgo(createdAtMilli int64, now time.Time) string {
	return utility.TimeAgo(time.UnixMilli(createdAtMilli), now)
}
