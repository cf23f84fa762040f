package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/socialhub/internal/model"
	"github.com/d60-Lab/socialhub/internal/service"
	"github.com/d60-Lab/socialhub/pkg/auth"
	"github.com/d60-Lab/socialhub/pkg/response"
)

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password" binding:"omitempty,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type editRequest struct {
	Name            *string `json:"name"`
	Password        *string `json:"password" binding:"omitempty,max=72"`
	ConfirmPassword *string `json:"confirmPassword"`
}

func (h *Handler) issue(c *gin.Context, u *model.User) (string, bool) {
	token, err := h.tokens.Issue(auth.Identity{ID: u.ID, Name: u.Name, Email: u.Email})
	if err != nil {
		response.InternalError(c, err)
		return "", false
	}
	return token, true
}

// Signup 注册
// @Summary 注册并签发令牌
// @Tags 用户
// @Accept json
// @Produce json
// @Param request body signupRequest true "注册信息"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/v2/users/signup [post]
func (h *Handler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	u, err := h.users.Signup(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	token, ok := h.issue(c, u)
	if !ok {
		return
	}
	response.Success(c, gin.H{
		"message": "Signup successful",
		"token":   token,
		"user":    service.ProfileView{ID: u.ID, Name: u.Name, Email: u.Email},
	})
}

// Login 登录
// @Summary 邮箱密码登录
// @Tags 用户
// @Accept json
// @Produce json
// @Param request body loginRequest true "登录信息"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /api/v2/users/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Unauthorized(c, service.ErrInvalidCredentials.Message)
		return
	}
	u, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	token, ok := h.issue(c, u)
	if !ok {
		return
	}
	response.Success(c, gin.H{
		"message": "Login successful",
		"token":   token,
		"user":    service.ProfileView{ID: u.ID, Name: u.Name, Email: u.Email},
	})
}

// SearchUsers 按名称搜索
// @Summary 名称子串搜索（忽略大小写，不分页）
// @Tags 用户
// @Produce json
// @Security Bearer
// @Param text query string true "搜索词"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v2/users/search [get]
func (h *Handler) SearchUsers(c *gin.Context) {
	users, err := h.users.Search(c.Request.Context(), c.Query("text"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"data": gin.H{"users": users}})
}

// GetProfile 公开资料
// @Summary 按 id 查询用户资料
// @Tags 用户
// @Produce json
// @Param id path string true "用户ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v2/user/{id} [get]
func (h *Handler) GetProfile(c *gin.Context) {
	p, err := h.users.Profile(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"user": p})
}

// EditProfile 修改名称或密码，成功后重新签发令牌
// @Summary 修改资料
// @Tags 用户
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body editRequest true "修改项"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v2/users/edit [post]
func (h *Handler) EditProfile(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	var req editRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	u, err := h.users.Update(c.Request.Context(), id.ID, service.UserPatch{
		Name:            req.Name,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		fail(c, err)
		return
	}
	token, ok := h.issue(c, u)
	if !ok {
		return
	}
	response.Success(c, gin.H{
		"message": "Profile updated successfully",
		"token":   token,
		"user":    service.NewUserView(u),
	})
}

// UploadAvatar 上传头像
// @Summary 上传头像（multipart 字段 profilePicture）
// @Tags 用户
// @Accept mpfd
// @Produce json
// @Security Bearer
// @Param profilePicture formData file true "PNG 或 JPEG"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v2/users/avatar [post]
func (h *Handler) UploadAvatar(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	fh, err := c.FormFile("profilePicture")
	if err != nil {
		response.BadRequest(c, "profilePicture is required")
		return
	}
	if fh.Size > h.maxAvatarBytes {
		response.BadRequest(c, "File too large")
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	defer f.Close()

	u, err := h.users.UploadAvatar(c.Request.Context(), id.ID, fh.Filename, fh.Header.Get("Content-Type"), f, fh.Size)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"message": "Avatar uploaded successfully", "user": service.NewUserView(u)})
}
