package handlers

import (
	"strconv"
	"strings"

	"pms/internal/models"
	"pms/pkg/pagination"
	"pms/pkg/response"

	"github.com/gin-gonic/gin"
)

// parseID 解析路径中的 :id，失败时直接写入400响应
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		response.BadRequest(c, "ID格式错误")
		return 0, false
	}
	return uint(id), true
}

// queryUint 解析可选的数字查询参数，非法值视为未设置
func queryUint(c *gin.Context, key string) uint {
	v, err := strconv.ParseUint(strings.TrimSpace(c.Query(key)), 10, 32)
	if err != nil {
		return 0
	}
	return uint(v)
}

// queryBool 解析可选的布尔查询参数
func queryBool(c *gin.Context, key string) *bool {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}

// ========== 租约响应 ==========

// LeaseResponse 租约输出，日期统一为 YYYY-MM-DD
type LeaseResponse struct {
	*models.Lease
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	IsActive  bool   `json:"is_active"`
}

func newLeaseResponse(lease *models.Lease) *LeaseResponse {
	if lease == nil {
		return nil
	}
	return &LeaseResponse{
		Lease:     lease,
		StartDate: lease.Start().Format(models.DateLayout),
		EndDate:   lease.EndDate().Format(models.DateLayout),
		IsActive:  lease.IsActive(),
	}
}

func newLeaseResponses(leases []models.Lease) []*LeaseResponse {
	out := make([]*LeaseResponse, 0, len(leases))
	for i := range leases {
		out = append(out, newLeaseResponse(&leases[i]))
	}
	return out
}

func respondPage(c *gin.Context, data interface{}, page *pagination.PageParams, total int64) {
	response.SuccessWithPage(c, data, pagination.NewPageInfo(page.Page, page.PageSize, total))
}
