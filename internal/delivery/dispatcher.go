// Package delivery điều phối việc giao notification: ghi vào store rồi
// publish lên các channel real-time tương ứng.
package delivery

import (
	"context"

	"github.com/google/uuid"

	notifmodels "prop_manager/internal/api/notification/models"
	notifsvc "prop_manager/internal/api/notification/service"
	"prop_manager/internal/logger"
	"prop_manager/internal/sse"
	"prop_manager/internal/utility"
)

// Dispatcher giao notification theo hai bước: persist qua NotificationService
// (nguồn sự thật bền vững) rồi publish lên channel (best-effort, at-most-once).
// Lỗi publish chỉ được ghi log, không bao giờ làm hỏng việc tạo notification.
type Dispatcher struct {
	service *notifsvc.NotificationService
	cache   *sse.SseCache
}

// NewDispatcher tạo mới Dispatcher
func NewDispatcher(service *notifsvc.NotificationService, cache *sse.SseCache) *Dispatcher {
	return &Dispatcher{
		service: service,
		cache:   cache,
	}
}

// DeriveChannels xác định các channel nhận notification:
//   - individual: channel cá nhân của recipient
//   - announcement: một trong ba phân vùng, chọn theo priority/type
//     (urgent -> urgent, type system -> system, còn lại -> general)
func DeriveChannels(n notifmodels.Notification) []string {
	if n.RecipientType == notifmodels.RecipientTypeIndividual && n.Recipient != nil {
		return []string{sse.GeneratePersonalChannel(n.Recipient.Hex(), n.CUID)}
	}

	channels := sse.GenerateAnnouncementChannels(n.CUID)
	switch {
	case n.Priority == notifmodels.PriorityUrgent:
		return []string{channels[1]}
	case n.Type == notifmodels.TypeSystem:
		return []string{channels[2]}
	default:
		return []string{channels[0]}
	}
}

// publish đẩy notification đã lưu lên các channel dẫn xuất
func (d *Dispatcher) publish(ctx context.Context, n notifmodels.Notification) {
	log := logger.GetAppLogger()
	msg := sse.Message{
		ID:        uuid.NewString(),
		Event:     "notification",
		Data:      n,
		Timestamp: utility.UnixMilliNow(),
	}

	for _, channel := range DeriveChannels(n) {
		result := d.cache.PublishToChannel(ctx, channel, msg)
		if !result.Success {
			log.WithFields(map[string]interface{}{
				"nuid":    n.NUID,
				"cuid":    n.CUID,
				"channel": channel,
				"error":   result.Error,
			}).Warn("🔔 Publish notification thất bại, store vẫn là nguồn sự thật")
		}
	}
}

// Dispatch tạo một notification và push real-time cho các client đang kết nối
func (d *Dispatcher) Dispatch(ctx context.Context, n notifmodels.Notification) (notifmodels.Notification, error) {
	created, err := d.service.Create(ctx, n)
	if err != nil {
		return created, err
	}

	d.publish(ctx, created)
	return created, nil
}

// DispatchBulk tạo nhiều notification trong một batch rồi fan-out từng document
func (d *Dispatcher) DispatchBulk(ctx context.Context, ns []notifmodels.Notification) ([]notifmodels.Notification, error) {
	created, err := d.service.BulkCreate(ctx, ns)
	if err != nil {
		return created, err
	}

	for _, n := range created {
		d.publish(ctx, n)
	}
	return created, nil
}
