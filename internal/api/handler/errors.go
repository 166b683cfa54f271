package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperr "classroom-timetable/pkg/errors"
	"classroom-timetable/pkg/response"
	"classroom-timetable/pkg/validator"
)

// handleError 将业务错误映射为 HTTP 响应
// 业务错误按 Kind 决定状态码并原样返回业务码与原因；
// 内部错误只返回通用提示，细节已由 Service 层记录日志
func handleError(c *gin.Context, err error) {
	_ = c.Error(err)

	e, ok := apperr.As(err)
	if !ok {
		response.InternalError(c)
		return
	}
	switch e.Kind {
	case apperr.KindInternal:
		response.InternalError(c)
	case apperr.KindIntegrity:
		// 操作已回滚，返回可读原因但不暴露底层错误
		response.Error(c, http.StatusInternalServerError, e.Code, e.Message)
	default:
		response.Error(c, e.Kind.HTTPStatus(), e.Code, e.Message)
	}
}

// handleBindError 请求体 / 查询参数绑定失败
func handleBindError(c *gin.Context, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		response.Error(c, http.StatusRequestEntityTooLarge, 10005, "Request body too large")
		return
	}
	response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "Validation failed", validator.FormatValidationError(err))
}
