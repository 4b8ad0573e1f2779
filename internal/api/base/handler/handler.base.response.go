package basehdl

import (
	"fmt"
	"runtime/debug"

	"github.com/gofiber/fiber/v3"

	"prop_manager/internal/common"
	"prop_manager/internal/logger"
)

// JSONResponse gửi response dạng JSON với charset UTF-8
func JSONResponse(c fiber.Ctx, statusCode int, data interface{}) error {
	c.Set("Content-Type", "application/json; charset=utf-8")
	return c.Status(statusCode).JSON(data)
}

// SafeHandler bọc handler với cơ chế recover panic.
// Khi panic xảy ra, ghi log stack trace và trả về lỗi hệ thống thay vì làm sập server.
func SafeHandler(c fiber.Ctx, handler func() error) error {
	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				log := logger.GetErrorLogger()
				log.WithFields(map[string]interface{}{
					"path":   c.Path(),
					"method": c.Method(),
					"panic":  fmt.Sprintf("%v", r),
					"stack":  string(debug.Stack()),
				}).Error("🚨 Panic trong handler")

				err = common.NewError(
					common.ErrCodeInternalServer,
					common.MsgInternalError,
					common.StatusInternalServerError,
					nil,
				)
			}
		}()
		err = handler()
	}()

	if err != nil {
		HandleResponse(c, nil, err)
		return nil
	}
	return nil
}

// HandleResponse xử lý và chuẩn hóa response trả về cho client.
// Nếu err khác nil, trả về response lỗi với mã lỗi và thông báo tương ứng.
// Nếu không, trả về response thành công với dữ liệu.
func HandleResponse(c fiber.Ctx, data interface{}, err error) {
	if err != nil {
		// Chuyển đổi lỗi về dạng chuẩn của hệ thống
		var customErr *common.Error
		if e, ok := err.(*common.Error); ok {
			customErr = e
		} else {
			converted := common.NewError(
				common.ErrCodeInternalServer,
				err.Error(),
				common.StatusInternalServerError,
				nil,
			)
			customErr = converted.(*common.Error)
		}

		_ = JSONResponse(c, customErr.StatusCode, fiber.Map{
			"code":    customErr.Code.Code,
			"message": customErr.Message,
			"details": customErr.Details,
			"status":  "error",
		})
		return
	}

	_ = JSONResponse(c, common.StatusOK, fiber.Map{
		"code":    common.StatusOK,
		"message": common.MsgSuccess,
		"data":    data,
		"status":  "success",
	})
}
