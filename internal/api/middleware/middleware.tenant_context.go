// Package middleware chứa các Fiber middleware dùng chung cho API.
package middleware

import (
	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"

	basehdl "prop_manager/internal/api/base/handler"
	"prop_manager/internal/common"
	"prop_manager/internal/global"
)

// TenantContextMiddleware đọc tenant ID (cuid) từ header X-Tenant-ID,
// validate định dạng rồi lưu vào context. Mọi route notification đều yêu cầu
// tenant context hợp lệ, request thiếu hoặc sai định dạng bị chặn tại đây
// trước khi chạm vào store.
func TenantContextMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		cuid := c.Get("X-Tenant-ID")
		if !global.IsValidCuid(cuid) {
			basehdl.HandleResponse(c, nil, common.ErrInvalidCuid)
			return nil
		}

		c.Locals("cuid", cuid)
		return c.Next()
	}
}

// UserContextMiddleware đọc user ID từ header X-User-ID và lưu vào context.
// Header sai định dạng ObjectID bị từ chối; header rỗng được cho qua để các
// route producer (tạo notification từ hệ thống) không bắt buộc user context.
func UserContextMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		userIDStr := c.Get("X-User-ID")
		if userIDStr == "" {
			return c.Next()
		}

		userID, err := primitive.ObjectIDFromHex(userIDStr)
		if err != nil {
			basehdl.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationFormat,
				"User ID không đúng định dạng",
				common.StatusBadRequest,
				nil,
			))
			return nil
		}

		c.Locals("user_id", userID)
		return c.Next()
	}
}

// CuidFromContext lấy cuid đã được TenantContextMiddleware validate
func CuidFromContext(c fiber.Ctx) string {
	if cuid, ok := c.Locals("cuid").(string); ok {
		return cuid
	}
	return ""
}

// UserIDFromContext lấy user ID đã được UserContextMiddleware parse.
// Trả về false nếu request không có user context.
func UserIDFromContext(c fiber.Ctx) (primitive.ObjectID, bool) {
	if userID, ok := c.Locals("user_id").(primitive.ObjectID); ok {
		return userID, true
	}
	return primitive.NilObjectID, false
}
