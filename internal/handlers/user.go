package handlers

import (
	"pms/internal/middleware"
	"pms/internal/models"
	"pms/internal/services"
	"pms/pkg/pagination"
	"pms/pkg/response"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	service *services.UserService
}

func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{
		service: service,
	}
}

// ========== 基础CRUD方法 ==========

// Create 创建用户
func (h *UserHandler) Create(c *gin.Context) {
	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	user, err := h.service.Create(c.Request.Context(), req.Username, req.Email, req.Password, req.IsSuperuser)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Created(c, user)
}

// GetByID 获取用户
func (h *UserHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	user, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, user)
}

// GetAll 获取用户列表
func (h *UserHandler) GetAll(c *gin.Context) {
	page := pagination.ParsePageParams(c)

	users, total, err := h.service.List(c.Request.Context(), c.Query("keyword"), page)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	respondPage(c, users, page, total)
}

// ========== 快捷操作 ==========

// Activate 启用用户
func (h *UserHandler) Activate(c *gin.Context) {
	h.setActive(c, true)
}

// Deactivate 禁用用户
func (h *UserHandler) Deactivate(c *gin.Context) {
	h.setActive(c, false)
}

func (h *UserHandler) setActive(c *gin.Context, active bool) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	// 不能禁用自己
	if identity, ok := middleware.GetIdentity(c); ok && !active && identity.UserID == id {
		response.BadRequest(c, "不能禁用当前登录的用户")
		return
	}

	user, err := h.service.SetActive(c.Request.Context(), id, active)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, user)
}

// ResetPassword 重置密码
func (h *UserHandler) ResetPassword(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), id, req.Password); err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "密码已重置", nil)
}
