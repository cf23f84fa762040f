package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/socialhub/pkg/logger"
)

// Response 失败响应体；成功响应为 {"success": true, ...payload}
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Success 200，payload 字段平铺到顶层
func Success(c *gin.Context, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		if k == "success" {
			continue
		}
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

func Fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, Response{Success: false, Error: msg})
}

func BadRequest(c *gin.Context, msg string) { Fail(c, http.StatusBadRequest, msg) }

func NotFound(c *gin.Context, msg string) { Fail(c, http.StatusNotFound, msg) }

func Unauthorized(c *gin.Context, msg string) { Fail(c, http.StatusUnauthorized, msg) }

func TooManyRequests(c *gin.Context, msg string) { Fail(c, http.StatusTooManyRequests, msg) }

// InternalError 500，不向客户端泄露内部错误
func InternalError(c *gin.Context, err error) {
	logger.Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	_ = c.Error(err)
	Fail(c, http.StatusInternalServerError, "Server error")
}
