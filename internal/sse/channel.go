// Package sse cung cấp tầng channel cho real-time notification:
// sinh tên channel theo tenant/user và phân phối message qua Redis pub/sub.
package sse

import (
	"fmt"

	"prop_manager/internal/global"
)

// Phân vùng announcement của một tenant
const (
	AnnouncementGeneral = "general"
	AnnouncementUrgent  = "urgent"
	AnnouncementSystem  = "system"
)

// GeneratePersonalChannel sinh tên channel cá nhân của một user trong một tenant.
// Hàm thuần túy: cùng input luôn cho cùng output, không chạm vào store.
func GeneratePersonalChannel(userID string, cuid string) string {
	return fmt.Sprintf("notifications:%s:user:%s", cuid, userID)
}

// GenerateAnnouncementChannels sinh 3 channel announcement cố định của một tenant:
// general, urgent và system.
func GenerateAnnouncementChannels(cuid string) []string {
	return []string{
		fmt.Sprintf("notifications:%s:announcement:%s", cuid, AnnouncementGeneral),
		fmt.Sprintf("notifications:%s:announcement:%s", cuid, AnnouncementUrgent),
		fmt.Sprintf("notifications:%s:announcement:%s", cuid, AnnouncementSystem),
	}
}

// ValidateCuid kiểm tra định dạng cuid, không truy cập store
func ValidateCuid(cuid string) bool {
	return global.IsValidCuid(cuid)
}
