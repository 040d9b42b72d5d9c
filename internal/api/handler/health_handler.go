package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"schedule-visualizer/backend/internal/dto"
)

// PingFunc 存储后端连通性检查；内存后端为 nil
type PingFunc func(ctx context.Context) error

// HealthHandler 健康检查
type HealthHandler struct {
	driver string
	ping   PingFunc
}

// NewHealthHandler 创建 HealthHandler
func NewHealthHandler(driver string, ping PingFunc) *HealthHandler {
	return &HealthHandler{driver: driver, ping: ping}
}

// Health GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	if h.ping != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, dto.HealthResponse{Status: "degraded", Storage: h.driver})
			return
		}
	}
	c.JSON(http.StatusOK, dto.HealthResponse{Status: "ok", Storage: h.driver})
}
