package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	pkgerrors "schedule-visualizer/backend/pkg/errors"
	"schedule-visualizer/backend/pkg/response"
)

// ContextKeyWorkspaceID 工作区认证中间件注入的上下文键
const ContextKeyWorkspaceID = "workspace_id"

// MustGetWorkspaceID 从 Gin 上下文中安全提取 workspace_id。
// 如果认证中间件未正确注入，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetWorkspaceID(c *gin.Context) (string, bool) {
	v, exists := c.Get(ContextKeyWorkspaceID)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// respondUnexpected 未映射的错误：存储不可用返回 503，其余 500
func respondUnexpected(c *gin.Context, err error) {
	if errors.Is(err, pkgerrors.ErrStoreUnavailable) {
		response.ServiceUnavailable(c, "存储服务暂不可用，请稍后重试")
		return
	}
	response.InternalError(c)
}
