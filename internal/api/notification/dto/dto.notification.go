// Package notifdto chứa các input/output DTO cho domain Notification (tầng transport).
package notifdto

// ResourceInfoInput mô tả tài nguyên liên quan trong request tạo notification
type ResourceInfoInput struct {
	ResourceName string                 `json:"resourceName" validate:"required"`
	ResourceUID  string                 `json:"resourceUid,omitempty"`
	ResourceID   string                 `json:"resourceId,omitempty"`
	Extra        map[string]interface{} `json:"extra,omitempty"`
}

// NotificationCreateInput dùng cho tạo notification.
// CUID không nằm trong body, được lấy từ tenant context middleware.
type NotificationCreateInput struct {
	RecipientType string                 `json:"recipientType" validate:"required,oneof=individual announcement"`
	Recipient     string                 `json:"recipient,omitempty"`
	TargetRoles   []string               `json:"targetRoles,omitempty"`
	TargetVendor  string                 `json:"targetVendor,omitempty"`
	Title         string                 `json:"title" validate:"required" maxLength:"200"`
	Message       string                 `json:"message" validate:"required" maxLength:"500"`
	Type          string                 `json:"type" validate:"required"`
	Priority      string                 `json:"priority,omitempty" validate:"omitempty,oneof=low medium high urgent"`
	ResourceInfo  *ResourceInfoInput     `json:"resourceInfo,omitempty"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
	ActionURL     string                 `json:"actionUrl,omitempty"`
	Author        string                 `json:"author,omitempty"`
}

// NotificationBulkCreateInput dùng cho tạo nhiều notification trong một request
type NotificationBulkCreateInput struct {
	Notifications []NotificationCreateInput `json:"notifications" validate:"required,min=1,dive"`
}

// NotificationListQuery là các filter cho danh sách notification của user
type NotificationListQuery struct {
	Type     string `query:"type"`
	IsRead   string `query:"isRead"`
	Priority string `query:"priority"`
}

// NuidParams chứa tham số nuid trên URI
type NuidParams struct {
	NUID string `uri:"nuid" validate:"required"`
}

// IDParams chứa tham số id trên URI
type IDParams struct {
	ID string `uri:"id" validate:"required"`
}

// ResourceParams chứa tham số tra cứu theo tài nguyên trên URI
type ResourceParams struct {
	ResourceName string `uri:"resourceName" validate:"required"`
	ResourceID   string `uri:"resourceId" validate:"required"`
}
