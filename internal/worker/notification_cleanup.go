// Package worker chứa các background worker chạy định kỳ.
package worker

import (
	"context"
	"time"

	notifsvc "prop_manager/internal/api/notification/service"
	"prop_manager/internal/logger"
)

// Giá trị mặc định của cleanup worker
const (
	DefaultCleanupInterval = 6 * time.Hour
	DefaultRetentionDays   = 30
)

// NotificationCleanupWorker worker purge các notification đã soft-delete quá hạn giữ.
// Notification hết hạn theo expiresAt do TTL index của MongoDB tự xử lý,
// worker này chỉ phụ trách các document người dùng đã xóa.
type NotificationCleanupWorker struct {
	service       *notifsvc.NotificationService
	interval      time.Duration // Khoảng thời gian giữa các lần chạy
	retentionDays int           // Số ngày giữ document đã soft-delete
}

// NewNotificationCleanupWorker tạo mới NotificationCleanupWorker
// Tham số:
//   - interval: Khoảng thời gian giữa các lần chạy (mặc định: 6 giờ)
//   - retentionDays: Số ngày giữ document đã soft-delete (mặc định: 30 ngày)
func NewNotificationCleanupWorker(service *notifsvc.NotificationService, interval time.Duration, retentionDays int) *NotificationCleanupWorker {
	if interval < time.Minute {
		interval = DefaultCleanupInterval
	}
	if retentionDays <= 0 {
		retentionDays = DefaultRetentionDays
	}

	return &NotificationCleanupWorker{
		service:       service,
		interval:      interval,
		retentionDays: retentionDays,
	}
}

// Interval trả về khoảng thời gian giữa các lần chạy
func (w *NotificationCleanupWorker) Interval() time.Duration {
	return w.interval
}

// RetentionDays trả về số ngày giữ document đã soft-delete
func (w *NotificationCleanupWorker) RetentionDays() int {
	return w.retentionDays
}

// Start chạy worker trong vòng lặp cho đến khi ctx bị cancel.
// Mỗi lần chạy có guard recover, panic không làm dừng worker.
func (w *NotificationCleanupWorker) Start(ctx context.Context) {
	log := logger.GetAppLogger()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log.WithFields(map[string]interface{}{
		"interval":      w.interval.String(),
		"retentionDays": w.retentionDays,
	}).Info("🧹 [NOTIFICATION_CLEANUP] Starting Notification Cleanup Worker...")

	for {
		select {
		case <-ctx.Done():
			log.Info("🧹 [NOTIFICATION_CLEANUP] Notification Cleanup Worker stopped")
			return
		case <-ticker.C:
			func() {
				defer func() {
					if r := recover(); r != nil {
						log.WithFields(map[string]interface{}{
							"panic": r,
						}).Error("🧹 [NOTIFICATION_CLEANUP] Panic khi purge notification, sẽ tiếp tục ở lần chạy tiếp theo")
					}
				}()

				purgedCount, err := w.service.Cleanup(ctx, w.retentionDays)
				if err != nil {
					log.WithError(err).Error("🧹 [NOTIFICATION_CLEANUP] Lỗi khi purge notification đã soft-delete")
					return
				}

				if purgedCount > 0 {
					log.WithFields(map[string]interface{}{
						"purgedCount":   purgedCount,
						"retentionDays": w.retentionDays,
					}).Info("🧹 [NOTIFICATION_CLEANUP] Đã purge notification quá hạn giữ")
				}
				// purgedCount = 0 thì không log để giảm noise
			}()
		}
	}
}
