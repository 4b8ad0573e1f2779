package notifhdl

import (
	"bufio"
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/valyala/fasthttp"

	basehdl "prop_manager/internal/api/base/handler"
	"prop_manager/internal/api/middleware"
	"prop_manager/internal/logger"
	"prop_manager/internal/sse"
)

// streamBufferSize là kích thước buffer message cho mỗi kết nối SSE.
// Buffer đầy thì message bị drop (at-most-once), client tự đối soát lại
// qua danh sách và unread-count khi reconnect.
const streamBufferSize = 64

// heartbeatInterval là chu kỳ gửi comment ping giữ kết nối SSE
const heartbeatInterval = 15 * time.Second

// HandleStream xử lý GET /notification/stream: phiên SSE của một user.
// Luồng kết nối: sinh channel cá nhân + announcement, lưu channel list,
// subscribe pub/sub rồi stream message về client. Khi ngắt kết nối thì
// unsubscribe và dọn bookkeeping.
func (h *NotificationHandler) HandleStream(c fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}

	cuid := middleware.CuidFromContext(c)
	userIDHex := userID.Hex()

	channels := append(
		[]string{sse.GeneratePersonalChannel(userIDHex, cuid)},
		sse.GenerateAnnouncementChannels(cuid)...,
	)

	ctx := context.Background()
	if result := h.cache.StoreUserChannels(ctx, userIDHex, cuid, channels); !result.Success {
		basehdl.HandleResponse(c, nil, fmt.Errorf("%s", result.Error))
		return nil
	}
	for _, channel := range channels {
		h.cache.AddUserToChannel(ctx, channel, userIDHex, cuid)
	}

	// Bridge từ pub/sub callback sang stream writer, buffer đầy thì drop
	messages := make(chan string, streamBufferSize)
	result := h.cache.SubscribeToChannels(ctx, channels, cuid, func(channel string, payload string) {
		select {
		case messages <- payload:
		default:
		}
	})
	if !result.Success {
		// Subscribe thất bại thì gỡ toàn bộ bookkeeping vừa ghi, kể cả subscriber set
		h.cache.ReleaseUserChannels(ctx, userIDHex, cuid, channels)
		basehdl.HandleResponse(c, nil, fmt.Errorf("%s", result.Error))
		return nil
	}
	subscriptionKey, _ := result.Data.(string)

	log := logger.GetAppLogger()
	log.WithFields(map[string]interface{}{
		"userId": userIDHex,
		"cuid":   cuid,
	}).Info("🔔 Mở kết nối SSE")

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer func() {
			// Chỉ hủy phiên của chính kết nối này, các tab khác của user vẫn chạy
			h.cache.UnsubscribeByKey(subscriptionKey)
			h.cache.ReleaseUserChannels(ctx, userIDHex, cuid, channels)
			log.WithFields(map[string]interface{}{
				"userId": userIDHex,
				"cuid":   cuid,
			}).Info("🔔 Đóng kết nối SSE")
		}()

		heartbeat := time.NewTicker(heartbeatInterval)
		defer heartbeat.Stop()

		for {
			select {
			case payload := <-messages:
				if _, err := fmt.Fprintf(w, "event: notification\ndata: %s\n\n", payload); err != nil {
					return
				}
			case <-heartbeat.C:
				if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
					return
				}
			}
			// Flush lỗi nghĩa là client đã ngắt kết nối
			if err := w.Flush(); err != nil {
				return
			}
		}
	}))

	return nil
}
