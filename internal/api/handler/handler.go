package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/d60-Lab/socialhub/internal/api/middleware"
	"github.com/d60-Lab/socialhub/internal/chat"
	"github.com/d60-Lab/socialhub/internal/service"
	"github.com/d60-Lab/socialhub/pkg/auth"
	"github.com/d60-Lab/socialhub/pkg/response"
)

// Handler 聚合全部 HTTP 处理函数
type Handler struct {
	users          service.UserService
	friends        service.FriendshipService
	posts          service.PostService
	likes          service.LikeService
	chat           *chat.Hub
	tokens         auth.Provider
	maxAvatarBytes int64
}

func NewHandler(
	users service.UserService,
	friends service.FriendshipService,
	posts service.PostService,
	likes service.LikeService,
	hub *chat.Hub,
	tokens auth.Provider,
	maxAvatarBytes int64,
) *Handler {
	if maxAvatarBytes <= 0 {
		maxAvatarBytes = 5 << 20
	}
	return &Handler{
		users:          users,
		friends:        friends,
		posts:          posts,
		likes:          likes,
		chat:           hub,
		tokens:         tokens,
		maxAvatarBytes: maxAvatarBytes,
	}
}

// fail 按错误分类映射状态码；冲突沿用 400
func fail(c *gin.Context, err error) {
	var appErr *service.Error
	if !errors.As(err, &appErr) || appErr.Message == "" {
		response.InternalError(c, err)
		return
	}
	switch appErr.Kind {
	case service.KindValidation, service.KindConflict:
		response.BadRequest(c, appErr.Message)
	case service.KindNotFound:
		response.NotFound(c, appErr.Message)
	case service.KindUnauthenticated:
		response.Unauthorized(c, appErr.Message)
	default:
		response.InternalError(c, err)
	}
}

// bindError 把 validator 的字段错误转成一句可读的提示
func bindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		response.BadRequest(c, "Invalid request body")
		return
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "email":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid email", fe.Field()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	response.BadRequest(c, strings.Join(msgs, "; "))
}

// caller 取鉴权中间件写入的身份；路由未挂 Auth 时视为未登录
func caller(c *gin.Context) (auth.Identity, bool) {
	id, ok := middleware.Identity(c)
	if !ok {
		response.Unauthorized(c, "Access denied, token missing!")
	}
	return id, ok
}
