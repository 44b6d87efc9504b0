package handlers

import (
	"pms/internal/services"
	"pms/pkg/response"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	service *services.DashboardService
}

func NewDashboardHandler(service *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		service: service,
	}
}

// Dashboard 仪表盘统计
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	summary, err := h.service.Summarize(c.Request.Context())
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, summary)
}

// Summary 原始计数和样例关系
func (h *DashboardHandler) Summary(c *gin.Context) {
	counts, err := h.service.Counts(c.Request.Context())
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, counts)
}
