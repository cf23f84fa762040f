package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/d60-Lab/socialhub/internal/chat"
	"github.com/d60-Lab/socialhub/internal/service"
	"github.com/d60-Lab/socialhub/pkg/logger"
	"github.com/d60-Lab/socialhub/pkg/response"
)

const heartbeatInterval = 25 * time.Second

type chatMessageRequest struct {
	Text string `json:"text"`
}

// chatEvent 把房间广播映射为客户端事件名与载荷
func chatEvent(m chat.Message) (string, any) {
	if m.Kind == chat.KindJoin {
		return "user_joined", gin.H{"room": m.Room, "user": m.Sender}
	}
	return "receive_message", m
}

func chatFail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, chat.ErrEmptyText):
		response.BadRequest(c, service.ErrEmptyMessage.Message)
	case errors.Is(err, chat.ErrInvalidRoom):
		response.BadRequest(c, "Invalid room")
	default:
		response.InternalError(c, err)
	}
}

// SendMessage 向房间广播
// @Summary 发送聊天消息（不持久化）
// @Tags 聊天
// @Accept json
// @Produce json
// @Security Bearer
// @Param room path string true "房间"
// @Param request body chatMessageRequest true "消息"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v2/chat/{room}/messages [post]
func (h *Handler) SendMessage(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	var req chatMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	msg, err := h.chat.Publish(c.Request.Context(), c.Param("room"), chat.Sender{ID: id.ID, Name: id.Name}, req.Text)
	if err != nil {
		chatFail(c, err)
		return
	}
	response.Success(c, gin.H{"message": "Message sent", "data": msg})
}

// StreamRoom 以 SSE 推送房间消息：有人加入时推 user_joined，每条消息一个 receive_message
// @Summary 订阅聊天室
// @Tags 聊天
// @Produce text/event-stream
// @Security Bearer
// @Param room path string true "房间"
// @Router /api/v2/chat/{room}/stream [get]
func (h *Handler) StreamRoom(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	room := c.Param("room")
	ctx := c.Request.Context()
	msgs, closeSub, err := h.chat.Subscribe(ctx, room)
	if err != nil {
		chatFail(c, err)
		return
	}
	defer closeSub()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Writer.Flush()
	if err := h.chat.Join(ctx, room, chat.Sender{ID: id.ID, Name: id.Name}); err != nil {
		logger.Warn("chat join broadcast failed", zap.String("room", room), zap.Error(err))
	}

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case m, ok := <-msgs:
			if !ok {
				return false
			}
			c.SSEvent(chatEvent(m))
			return true
		case <-ticker.C:
			c.SSEvent("ping", time.Now().Unix())
			return true
		}
	})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// 跨域由 CORS 配置与令牌共同约束
	CheckOrigin: func(r *http.Request) bool { return true },
}

// socketFrame 服务端推送帧，event 取值与 SSE 事件名一致
type socketFrame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// ChatSocket 双向聊天：客户端发送 {"text": ...}，服务端推送 user_joined / receive_message
// @Summary 聊天室 WebSocket
// @Tags 聊天
// @Security Bearer
// @Param room path string true "房间"
// @Param token query string false "握手无法带请求头时的令牌"
// @Router /api/v2/chat/{room}/ws [get]
func (h *Handler) ChatSocket(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	room := c.Param("room")
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	msgs, closeSub, err := h.chat.Subscribe(ctx, room)
	if err != nil {
		chatFail(c, err)
		return
	}
	defer closeSub()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	sender := chat.Sender{ID: id.ID, Name: id.Name}
	// 读循环：客户端断开时取消订阅
	go func() {
		defer cancel()
		for {
			var in chatMessageRequest
			if err := conn.ReadJSON(&in); err != nil {
				return
			}
			if _, err := h.chat.Publish(ctx, room, sender, in.Text); err != nil && !errors.Is(err, chat.ErrEmptyText) {
				logger.Warn("chat publish failed", zap.String("room", room), zap.Error(err))
			}
		}
	}()

	if err := h.chat.Join(ctx, room, sender); err != nil {
		logger.Warn("chat join broadcast failed", zap.String("room", room), zap.Error(err))
	}
	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
			return
		case m, ok := <-msgs:
			if !ok {
				return
			}
			event, data := chatEvent(m)
			if err := conn.WriteJSON(socketFrame{Event: event, Data: data}); err != nil {
				return
			}
		}
	}
}
