// Package worker - Test giá trị mặc định của cleanup worker.
package worker

import (
	"testing"
	"time"
)

func TestNewNotificationCleanupWorker_MacDinh(t *testing.T) {
	w := NewNotificationCleanupWorker(nil, 0, 0)

	if w.Interval() != DefaultCleanupInterval {
		t.Errorf("interval không hợp lệ phải rơi về mặc định 6 giờ, có: %v", w.Interval())
	}
	if w.RetentionDays() != DefaultRetentionDays {
		t.Errorf("retentionDays không hợp lệ phải rơi về mặc định 30 ngày, có: %d", w.RetentionDays())
	}
}

func TestNewNotificationCleanupWorker_GiaTriTuyChinh(t *testing.T) {
	w := NewNotificationCleanupWorker(nil, 2*time.Hour, 7)

	if w.Interval() != 2*time.Hour {
		t.Errorf("interval = %v, muốn 2 giờ", w.Interval())
	}
	if w.RetentionDays() != 7 {
		t.Errorf("retentionDays = %d, muốn 7", w.RetentionDays())
	}
}

func TestNewNotificationCleanupWorker_IntervalQuaNgan(t *testing.T) {
	w := NewNotificationCleanupWorker(nil, 10*time.Second, 30)
	if w.Interval() != DefaultCleanupInterval {
		t.Errorf("interval dưới 1 phút phải rơi về mặc định, có: %v", w.Interval())
	}
}
