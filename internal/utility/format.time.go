package utility

import (
	"fmt"
	"time"
)

// TimeAgo trả về chuỗi mô tả khoảng thời gian từ t đến now.
// Ví dụ: "vừa xong", "5 phút trước", "2 giờ trước", "3 ngày trước".
func TimeAgo(t time.Time, now time.Time) string {
	d := now.Sub(t)
	if d < 0 {
		d = 0
	}

	switch {
	case d < time.Minute:
		return "vừa xong"
	case d < time.Hour:
		return fmt.Sprintf("%d phút trước", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%d giờ trước", int(d.Hours()))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%d ngày trước", int(d.Hours()/24))
	case d < 365*24*time.Hour:
		return fmt.Sprintf("%d tháng trước", int(d.Hours()/(24*30)))
	default:
		return fmt.Sprintf("%d năm trước", int(d.Hours()/(24*365)))
	}
}

// UnixMilliNow trả về thời điểm hiện tại theo Unix milliseconds.
// Dùng cho các trường createdAt/updatedAt của model.
func UnixMilliNow() int64 {
	return time.Now().UnixMilli()
}
