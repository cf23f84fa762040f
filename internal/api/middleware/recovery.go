package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/socialhub/pkg/logger"
	"github.com/d60-Lab/socialhub/pkg/response"
)

// Recovery 捕获 panic 并上报 Sentry；未初始化 Sentry 时只记日志
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				hub := sentry.CurrentHub().Clone()
				hub.Scope().SetRequest(c.Request)
				hub.Recover(r)
				hub.Flush(2 * time.Second)
				logger.Error("panic recovered", zap.String("path", c.Request.URL.Path), zap.Any("panic", r))
				response.Fail(c, http.StatusInternalServerError, "Server error")
			}
		}()
		c.Next()
	}
}

// ReportErrors 把处理链中记录的 500 错误上报 Sentry
func ReportErrors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if c.Writer.Status() < http.StatusInternalServerError || len(c.Errors) == 0 {
			return
		}
		hub := sentry.CurrentHub().Clone()
		hub.Scope().SetRequest(c.Request)
		hub.Scope().SetTag("route", c.FullPath())
		for _, e := range c.Errors {
			hub.CaptureException(fmt.Errorf("%s %s: %w", c.Request.Method, c.FullPath(), e.Err))
		}
	}
}
