package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/socialhub/internal/cache"
	"github.com/d60-Lab/socialhub/internal/service"
	"github.com/d60-Lab/socialhub/pkg/response"
)

type createPostRequest struct {
	Content string `json:"content"`
}

type commentRequest struct {
	Content string `json:"content"`
	PostID  string `json:"postId"`
}

type toggleLikeRequest struct {
	ID       string `json:"id"`
	LikeType string `json:"likeType"`
}

// CreatePost 发帖
// @Summary 发布帖子
// @Tags 帖子
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body createPostRequest true "帖子内容"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v2/posts/create [post]
func (h *Handler) CreatePost(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	post, err := h.posts.CreatePost(c.Request.Context(), id.ID, req.Content)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"message": "Post created successfully", "post": post})
}

// ListPosts 按时间倒序分页
// @Summary 帖子流
// @Tags 帖子
// @Produce json
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(5) maximum(100)
// @Success 200 {object} response.Response
// @Router /api/v2/posts [get]
func (h *Handler) ListPosts(c *gin.Context) {
	// 无法解析的参数按默认值处理
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	posts, err := h.posts.ListPosts(c.Request.Context(), page, limit)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"data": gin.H{"posts": posts}})
}

// AddComment 评论
// @Summary 发表评论
// @Tags 帖子
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body commentRequest true "评论"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v2/comments [post]
func (h *Handler) AddComment(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	comment, err := h.posts.AddComment(c.Request.Context(), req.PostID, cache.Author{ID: id.ID, Name: id.Name}, req.Content)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"message": "Comment added successfully", "comment": comment})
}

// ToggleLike 点赞或取消点赞
// @Summary 翻转帖子或评论的点赞
// @Tags 帖子
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body toggleLikeRequest true "目标与类型（post | comment）"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v2/likes/toggle [post]
func (h *Handler) ToggleLike(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	var req toggleLikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	kind, err := service.ParseLikeKind(req.LikeType)
	if err != nil {
		fail(c, err)
		return
	}
	res, err := h.likes.Toggle(c.Request.Context(), kind, req.ID, id.ID)
	if err != nil {
		fail(c, err)
		return
	}

	data := gin.H{"userId": res.UserID, "type": string(res.Kind), "liked": res.Liked}
	msg := "Post like toggled"
	if res.Kind == service.LikeComment {
		msg = "Comment like toggled"
		data["likeable"] = res.Comment
		data["postId"] = res.PostID
	} else {
		data["likeable"] = res.Post
	}
	response.Success(c, gin.H{"message": msg, "data": data})
}
