// Package router đăng ký các route thuộc domain Notification.
package router

import (
	"github.com/gofiber/fiber/v3"

	"prop_manager/internal/api/middleware"
	notifhdl "prop_manager/internal/api/notification/handler"
)

// Register đăng ký tất cả route notification lên v1.
// Toàn bộ route nằm sau tenant context middleware, route đọc/stream yêu cầu cả user context.
// Các route tĩnh (unread-count, read-all, stream...) phải đăng ký trước route /:nuid.
func Register(v1 fiber.Router, handler *notifhdl.NotificationHandler) {
	group := v1.Group("/notification",
		middleware.TenantContextMiddleware(),
		middleware.UserContextMiddleware(),
	)

	group.Get("/", handler.HandleList)
	group.Get("/stream", handler.HandleStream)
	group.Get("/unread-count", handler.HandleUnreadCount)
	group.Get("/unread-count/by-type", handler.HandleUnreadCountByType)
	group.Get("/resource/:resourceName/:resourceId", handler.HandleFindByResource)

	group.Post("/", handler.HandleCreate)
	group.Post("/bulk", handler.HandleBulkCreate)

	group.Patch("/read-all", handler.HandleMarkAllAsRead)
	group.Patch("/:id/read", handler.HandleMarkAsRead)

	group.Get("/:nuid", handler.HandleFindByNuid)
	group.Delete("/:nuid", handler.HandleSoftDelete)
}
