// Package notifhdl xử lý các HTTP request của domain Notification.
package notifhdl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"

	basehdl "prop_manager/internal/api/base/handler"
	basemodels "prop_manager/internal/api/base/models"
	"prop_manager/internal/api/middleware"
	notifdto "prop_manager/internal/api/notification/dto"
	notifmodels "prop_manager/internal/api/notification/models"
	notifsvc "prop_manager/internal/api/notification/service"
	"prop_manager/internal/common"
	"prop_manager/internal/delivery"
	"prop_manager/internal/sse"
)

// NotificationHandler xử lý các request liên quan đến Notification
type NotificationHandler struct {
	*basehdl.BaseHandler[notifmodels.Notification]
	service    *notifsvc.NotificationService
	dispatcher *delivery.Dispatcher
	cache      *sse.SseCache
}

// NewNotificationHandler tạo mới NotificationHandler
func NewNotificationHandler(service *notifsvc.NotificationService, dispatcher *delivery.Dispatcher, cache *sse.SseCache) *NotificationHandler {
	return &NotificationHandler{
		BaseHandler: basehdl.NewBaseHandler[notifmodels.Notification](service),
		service:     service,
		dispatcher:  dispatcher,
		cache:       cache,
	}
}

// requireUser lấy user ID từ context, trả lỗi nếu request thiếu user context
func requireUser(c fiber.Ctx) (primitive.ObjectID, error) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return primitive.NilObjectID, common.NewError(
			common.ErrCodeValidationInput,
			"Thiếu header X-User-ID",
			common.StatusBadRequest,
			nil,
		)
	}
	return userID, nil
}

// parseListFilter đọc các filter tùy chọn từ query string.
// type và priority nhận giá trị đơn hoặc danh sách phân tách bằng dấu phẩy.
func parseListFilter(q notifdto.NotificationListQuery) *notifsvc.ListFilter {
	lf := &notifsvc.ListFilter{}
	hasFilter := false

	if q.Type != "" {
		lf.Types = strings.Split(q.Type, ",")
		hasFilter = true
	}
	if q.Priority != "" {
		lf.Priorities = strings.Split(q.Priority, ",")
		hasFilter = true
	}
	if q.IsRead != "" {
		if isRead, err := strconv.ParseBool(q.IsRead); err == nil {
			lf.IsRead = &isRead
			hasFilter = true
		}
	}

	if !hasFilter {
		return nil
	}
	return lf
}

// toModel chuyển create input thành model, gắn cuid từ tenant context
func toModel(input notifdto.NotificationCreateInput, cuid string) (notifmodels.Notification, error) {
	n := notifmodels.Notification{
		CUID:          cuid,
		RecipientType: input.RecipientType,
		TargetRoles:   input.TargetRoles,
		TargetVendor:  input.TargetVendor,
		Title:         input.Title,
		Message:       input.Message,
		Type:          input.Type,
		Priority:      input.Priority,
		Metadata:      input.Metadata,
		ActionURL:     input.ActionURL,
	}

	if input.Recipient != "" {
		recipient, err := primitive.ObjectIDFromHex(input.Recipient)
		if err != nil {
			return n, common.NewError(
				common.ErrCodeValidationFormat,
				"Recipient không đúng định dạng",
				common.StatusBadRequest,
				nil,
			)
		}
		n.Recipient = &recipient
	}

	if input.Author != "" {
		author, err := primitive.ObjectIDFromHex(input.Author)
		if err != nil {
			return n, common.NewError(
				common.ErrCodeValidationFormat,
				"Author không đúng định dạng",
				common.StatusBadRequest,
				nil,
			)
		}
		n.Author = &author
	}

	if input.ResourceInfo != nil {
		n.ResourceInfo = &notifmodels.ResourceInfo{
			ResourceName: input.ResourceInfo.ResourceName,
			ResourceUID:  input.ResourceInfo.ResourceUID,
			ResourceID:   input.ResourceInfo.ResourceID,
			Extra:        input.ResourceInfo.Extra,
		}
	}

	return n, nil
}

// HandleList xử lý GET /notification: danh sách notification khả kiến của user
func (h *NotificationHandler) HandleList(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		userID, err := requireUser(c)
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		var query notifdto.NotificationListQuery
		if err := c.Bind().Query(&query); err != nil {
			basehdl.HandleResponse(c, nil, common.ErrInvalidFormat)
			return nil
		}

		page, limit := h.ParsePagination(c)
		result, err := h.service.FindForUser(c.Context(), userID, middleware.CuidFromContext(c), parseListFilter(query), page, limit)
		basehdl.HandleResponse(c, result, err)
		return nil
	})
}

// HandleUnreadCount xử lý GET /notification/unread-count
func (h *NotificationHandler) HandleUnreadCount(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		userID, err := requireUser(c)
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		var query notifdto.NotificationListQuery
		if err := c.Bind().Query(&query); err != nil {
			basehdl.HandleResponse(c, nil, common.ErrInvalidFormat)
			return nil
		}

		count, err := h.service.GetUnreadCount(c.Context(), userID, middleware.CuidFromContext(c), parseListFilter(query))
		basehdl.HandleResponse(c, basemodels.CountResult{Count: count}, err)
		return nil
	})
}

// HandleUnreadCountByType xử lý GET /notification/unread-count/by-type
func (h *NotificationHandler) HandleUnreadCountByType(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		userID, err := requireUser(c)
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		counts, err := h.service.GetUnreadCountByType(c.Context(), userID, middleware.CuidFromContext(c))
		basehdl.HandleResponse(c, counts, err)
		return nil
	})
}

// HandleFindByResource xử lý GET /notification/resource/:resourceName/:resourceId
func (h *NotificationHandler) HandleFindByResource(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		var params notifdto.ResourceParams
		if err := h.ParseRequestParams(c, &params); err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		notifications, err := h.service.FindByResource(c.Context(), params.ResourceName, params.ResourceID, middleware.CuidFromContext(c))
		basehdl.HandleResponse(c, notifications, err)
		return nil
	})
}

// HandleFindByNuid xử lý GET /notification/:nuid
func (h *NotificationHandler) HandleFindByNuid(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		var params notifdto.NuidParams
		if err := h.ParseRequestParams(c, &params); err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		notification, err := h.service.FindByNuid(c.Context(), params.NUID, middleware.CuidFromContext(c))
		basehdl.HandleResponse(c, notification, err)
		return nil
	})
}

// HandleCreate xử lý POST /notification: tạo notification và push real-time
func (h *NotificationHandler) HandleCreate(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		var input notifdto.NotificationCreateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		n, err := toModel(input, middleware.CuidFromContext(c))
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		created, err := h.dispatcher.Dispatch(c.Context(), n)
		basehdl.HandleResponse(c, created, err)
		return nil
	})
}

// HandleBulkCreate xử lý POST /notification/bulk
func (h *NotificationHandler) HandleBulkCreate(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		var input notifdto.NotificationBulkCreateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		cuid := middleware.CuidFromContext(c)
		ns := make([]notifmodels.Notification, 0, len(input.Notifications))
		for i, item := range input.Notifications {
			n, err := toModel(item, cuid)
			if err != nil {
				basehdl.HandleResponse(c, nil, common.NewError(
					common.ErrCodeValidationInput,
					fmt.Sprintf("Notification thứ %d không hợp lệ", i+1),
					common.StatusBadRequest,
					nil,
				))
				return nil
			}
			ns = append(ns, n)
		}

		created, err := h.dispatcher.DispatchBulk(c.Context(), ns)
		basehdl.HandleResponse(c, created, err)
		return nil
	})
}

// HandleMarkAsRead xử lý PATCH /notification/:id/read
func (h *NotificationHandler) HandleMarkAsRead(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		var params notifdto.IDParams
		if err := h.ParseRequestParams(c, &params); err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		id, err := primitive.ObjectIDFromHex(params.ID)
		if err != nil {
			basehdl.HandleResponse(c, nil, common.ErrInvalidFormat)
			return nil
		}

		notification, err := h.service.MarkAsRead(c.Context(), id, middleware.CuidFromContext(c))
		basehdl.HandleResponse(c, notification, err)
		return nil
	})
}

// HandleMarkAllAsRead xử lý PATCH /notification/read-all
func (h *NotificationHandler) HandleMarkAllAsRead(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		userID, err := requireUser(c)
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		modifiedCount, err := h.service.MarkAllAsReadForUser(c.Context(), userID, middleware.CuidFromContext(c))
		basehdl.HandleResponse(c, basemodels.ModifiedResult{ModifiedCount: modifiedCount}, err)
		return nil
	})
}

// HandleSoftDelete xử lý DELETE /notification/:nuid.
// Xóa phía người dùng là soft delete, document được purge sau bởi cleanup worker.
func (h *NotificationHandler) HandleSoftDelete(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		var params notifdto.NuidParams
		if err := h.ParseRequestParams(c, &params); err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		deleted, err := h.service.SoftDeleteByNuid(c.Context(), params.NUID, middleware.CuidFromContext(c))
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}
		if !deleted {
			basehdl.HandleResponse(c, nil, common.ErrNotFound)
			return nil
		}

		basehdl.HandleResponse(c, fiber.Map{"deleted": true}, nil)
		return nil
	})
}
