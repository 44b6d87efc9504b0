package handlers

import (
	"pms/internal/models"
	"pms/internal/services"
	"pms/pkg/pagination"
	"pms/pkg/response"

	"github.com/gin-gonic/gin"
)

type LeaseHandler struct {
	service *services.LeaseService
}

func NewLeaseHandler(service *services.LeaseService) *LeaseHandler {
	return &LeaseHandler{
		service: service,
	}
}

// Create 创建租约，同时将单元标记为已占用
func (h *LeaseHandler) Create(c *gin.Context) {
	var req models.CreateLeaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	lease, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Created(c, newLeaseResponse(lease))
}

// GetByID 获取租约详情
func (h *LeaseHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	lease, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, newLeaseResponse(lease))
}

// Update 更新租约
func (h *LeaseHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req models.UpdateLeaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	lease, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, newLeaseResponse(lease))
}

// Terminate 终止租约
func (h *LeaseHandler) Terminate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	lease, err := h.service.Terminate(c.Request.Context(), id)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "租约已终止", newLeaseResponse(lease))
}

// Delete 删除租约
func (h *LeaseHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "租约已删除", nil)
}

// List 租约列表
func (h *LeaseHandler) List(c *gin.Context) {
	page := pagination.ParsePageParams(c)
	filter := models.LeaseFilter{
		UnitID:           queryUint(c, "unit"),
		TenantID:         queryUint(c, "tenant"),
		LandlordID:       queryUint(c, "landlord"),
		PaymentFrequency: models.PaymentFrequency(c.Query("payment_frequency")),
		Active:           queryBool(c, "active"),
		Search:           c.Query("search"),
		Ordering:         c.Query("ordering"),
	}

	leases, total, err := h.service.List(c.Request.Context(), filter, page)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	respondPage(c, newLeaseResponses(leases), page, total)
}
