package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/socialhub/pkg/auth"
	"github.com/d60-Lab/socialhub/pkg/response"
)

const identityKey = "identity"

// Auth 校验 Bearer 令牌，把身份声明放入上下文。
// 浏览器的 WebSocket 握手无法设置请求头，此时允许用 ?token= 传递。
func Auth(p auth.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := auth.BearerToken(c.GetHeader("Authorization"))
		if token == "" && c.IsWebsocket() {
			token = c.Query("token")
		}
		if token == "" {
			response.Unauthorized(c, "Access denied, token missing!")
			return
		}
		id, err := p.Verify(token)
		if err != nil {
			response.Unauthorized(c, "Invalid token")
			return
		}
		c.Set(identityKey, *id)
		c.Next()
	}
}

// Identity 取当前调用方；未经过 Auth 时 ok 为 false
func Identity(c *gin.Context) (auth.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return auth.Identity{}, false
	}
	id, ok := v.(auth.Identity)
	return id, ok
}
