package handlers

import (
	"context"

	"pms/internal/models"
	"pms/internal/services"
	"pms/pkg/pagination"
	"pms/pkg/response"

	"github.com/gin-gonic/gin"
)

type UnitHandler struct {
	service *services.UnitService
}

func NewUnitHandler(service *services.UnitService) *UnitHandler {
	return &UnitHandler{
		service: service,
	}
}

// Create 创建单元
func (h *UnitHandler) Create(c *gin.Context) {
	var req models.CreateUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	unit, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Created(c, unit)
}

// GetByID 获取单元详情
func (h *UnitHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	unit, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, unit)
}

// Update 更新单元
func (h *UnitHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req models.UpdateUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	unit, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, unit)
}

// Delete 删除单元
func (h *UnitHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "单元已删除", nil)
}

// List 单元列表
func (h *UnitHandler) List(c *gin.Context) {
	h.list(c, h.service.List)
}

// ListVacant 空置单元
func (h *UnitHandler) ListVacant(c *gin.Context) {
	h.list(c, h.service.ListVacant)
}

// ListOccupied 已占用单元
func (h *UnitHandler) ListOccupied(c *gin.Context) {
	h.list(c, h.service.ListOccupied)
}

type unitLister func(ctx context.Context, filter models.UnitFilter, page *pagination.PageParams) ([]models.Unit, int64, error)

func (h *UnitHandler) list(c *gin.Context, lister unitLister) {
	page := pagination.ParsePageParams(c)
	filter := models.UnitFilter{
		Status:   models.UnitStatus(c.Query("status")),
		Type:     models.UnitType(c.Query("type")),
		OwnerID:  queryUint(c, "owner"),
		Search:   c.Query("search"),
		Ordering: c.Query("ordering"),
	}

	units, total, err := lister(c.Request.Context(), filter, page)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	respondPage(c, units, page, total)
}
