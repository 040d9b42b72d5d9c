package handler

import (
	"github.com/gin-gonic/gin"

	"schedule-visualizer/backend/internal/service"
	"schedule-visualizer/backend/pkg/response"
)

// WorkspaceHandler 工作区模块 HTTP 处理器
type WorkspaceHandler struct {
	workspaceSvc service.WorkspaceService
}

// NewWorkspaceHandler 创建 WorkspaceHandler
func NewWorkspaceHandler(workspaceSvc service.WorkspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{workspaceSvc: workspaceSvc}
}

// CreateWorkspace 创建匿名工作区并签发令牌
// POST /api/v1/workspaces
func (h *WorkspaceHandler) CreateWorkspace(c *gin.Context) {
	resp, err := h.workspaceSvc.Create(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.Created(c, resp)
}
