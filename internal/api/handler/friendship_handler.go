package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/socialhub/pkg/response"
)

type friendRequest struct {
	FriendID string `json:"friendId"`
}

// ListFriends 当前用户的好友
// @Summary 好友列表
// @Tags 好友
// @Produce json
// @Security Bearer
// @Success 200 {object} response.Response
// @Router /api/v2/friendship/friends [get]
func (h *Handler) ListFriends(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	friends, err := h.friends.ListFriends(c.Request.Context(), id.ID)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"friends": friends})
}

// AddFriend 添加好友（无向）
// @Summary 添加好友
// @Tags 好友
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body friendRequest true "好友ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v2/friendship/add [post]
func (h *Handler) AddFriend(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	var req friendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	friend, err := h.friends.Add(c.Request.Context(), id.ID, req.FriendID)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"message": "Friend added successfully", "friend": friend})
}

// RemoveFriend 删除好友，任一方向的关系都会被删除
// @Summary 删除好友
// @Tags 好友
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body friendRequest true "好友ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v2/friendship/remove [post]
func (h *Handler) RemoveFriend(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	var req friendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	friend, err := h.friends.Remove(c.Request.Context(), id.ID, req.FriendID)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"message": "Friend removed successfully", "friend": friend})
}
