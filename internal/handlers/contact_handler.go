package handlers

import (
	"context"

	"pms/internal/models"
	"pms/internal/services"
	"pms/pkg/pagination"
	"pms/pkg/response"

	"github.com/gin-gonic/gin"
)

type ContactHandler struct {
	service *services.ContactService
}

func NewContactHandler(service *services.ContactService) *ContactHandler {
	return &ContactHandler{
		service: service,
	}
}

// Create 创建联系人
func (h *ContactHandler) Create(c *gin.Context) {
	var req models.CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	contact, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Created(c, contact)
}

// GetByID 获取联系人详情
func (h *ContactHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	contact, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, contact)
}

// Update 更新联系人（PUT 与 PATCH 都按部分更新处理）
func (h *ContactHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req models.UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	contact, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, contact)
}

// Delete 删除联系人
func (h *ContactHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "联系人已删除", nil)
}

// List 联系人列表
func (h *ContactHandler) List(c *gin.Context) {
	h.list(c, h.service.List)
}

// ListLandlords 房东列表
func (h *ContactHandler) ListLandlords(c *gin.Context) {
	h.list(c, h.service.ListLandlords)
}

// ListTenants 租户列表
func (h *ContactHandler) ListTenants(c *gin.Context) {
	h.list(c, h.service.ListTenants)
}

type contactLister func(ctx context.Context, filter models.ContactFilter, page *pagination.PageParams) ([]models.Contact, int64, error)

func (h *ContactHandler) list(c *gin.Context, lister contactLister) {
	page := pagination.ParsePageParams(c)
	filter := models.ContactFilter{
		ContactType: models.ContactType(c.Query("contact_type")),
		Search:      c.Query("search"),
		Ordering:    c.Query("ordering"),
	}

	contacts, total, err := lister(c.Request.Context(), filter, page)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	respondPage(c, contacts, page, total)
}
