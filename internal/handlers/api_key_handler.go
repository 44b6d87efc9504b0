package handlers

import (
	"time"

	"pms/internal/models"
	"pms/internal/services"
	"pms/pkg/response"

	"github.com/gin-gonic/gin"
)

type APIKeyHandler struct {
	service *services.APIKeyService
}

func NewAPIKeyHandler(service *services.APIKeyService) *APIKeyHandler {
	return &APIKeyHandler{
		service: service,
	}
}

// apiKeyView 列表中只显示密钥前缀
type apiKeyView struct {
	ID         uint       `json:"id"`
	Name       string     `json:"name"`
	Key        string     `json:"key"`
	IsActive   bool       `json:"is_active"`
	LastUsedAt *time.Time `json:"last_used_at"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Create 生成API密钥，完整密钥只在此处返回一次
func (h *APIKeyHandler) Create(c *gin.Context) {
	var req models.CreateAPIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	key, err := h.service.Create(c.Request.Context(), req.Name)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Created(c, key)
}

// List API密钥列表
func (h *APIKeyHandler) List(c *gin.Context) {
	keys, err := h.service.List(c.Request.Context())
	if err != nil {
		response.HandleError(c, err)
		return
	}

	views := make([]apiKeyView, 0, len(keys))
	for i := range keys {
		k := &keys[i]
		views = append(views, apiKeyView{
			ID:         k.ID,
			Name:       k.Name,
			Key:        k.Masked(),
			IsActive:   k.IsActive,
			LastUsedAt: k.LastUsedAt,
			CreatedAt:  k.CreatedAt,
		})
	}
	response.Success(c, views)
}

// Revoke 停用API密钥
func (h *APIKeyHandler) Revoke(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.Revoke(c.Request.Context(), id); err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "API密钥已停用", nil)
}
