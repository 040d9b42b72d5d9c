package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"schedule-visualizer/backend/internal/dto"
	"schedule-visualizer/backend/internal/service"
	"schedule-visualizer/backend/pkg/response"
)

// ScheduleHandler 已保存课表模块 HTTP 处理器
type ScheduleHandler struct {
	scheduleSvc service.SavedScheduleService
}

// NewScheduleHandler 创建 ScheduleHandler
func NewScheduleHandler(scheduleSvc service.SavedScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleSvc: scheduleSvc}
}

// ListSchedules 快照列表
// GET /api/v1/schedules
func (h *ScheduleHandler) ListSchedules(c *gin.Context) {
	workspaceID, ok := MustGetWorkspaceID(c)
	if !ok {
		return
	}

	list, err := h.scheduleSvc.List(c.Request.Context(), workspaceID)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}
	response.OK(c, gin.H{"list": list})
}

// GetSchedule 快照详情
// GET /api/v1/schedules/:id
func (h *ScheduleHandler) GetSchedule(c *gin.Context) {
	workspaceID, ok := MustGetWorkspaceID(c)
	if !ok {
		return
	}

	schedule, err := h.scheduleSvc.Get(c.Request.Context(), workspaceID, c.Param("id"))
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}
	response.OK(c, schedule)
}

// SaveSchedule 将当前课程列表保存为命名快照
// POST /api/v1/schedules
func (h *ScheduleHandler) SaveSchedule(c *gin.Context) {
	var req dto.SaveScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	workspaceID, ok := MustGetWorkspaceID(c)
	if !ok {
		return
	}

	schedule, err := h.scheduleSvc.Save(c.Request.Context(), workspaceID, &req)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}
	response.Created(c, schedule)
}

// LoadSchedule 用快照替换当前课程列表
// POST /api/v1/schedules/:id/load
func (h *ScheduleHandler) LoadSchedule(c *gin.Context) {
	workspaceID, ok := MustGetWorkspaceID(c)
	if !ok {
		return
	}

	resp, err := h.scheduleSvc.Load(c.Request.Context(), workspaceID, c.Param("id"))
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}
	response.OK(c, resp)
}

// DeleteSchedule 删除快照
// DELETE /api/v1/schedules/:id
func (h *ScheduleHandler) DeleteSchedule(c *gin.Context) {
	workspaceID, ok := MustGetWorkspaceID(c)
	if !ok {
		return
	}

	if err := h.scheduleSvc.Delete(c.Request.Context(), workspaceID, c.Param("id")); err != nil {
		h.handleScheduleError(c, err)
		return
	}
	response.OK(c, nil)
}

// BuildSchedule 课表拼装
// POST /api/v1/schedules/build
func (h *ScheduleHandler) BuildSchedule(c *gin.Context) {
	var req dto.BuildScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	workspaceID, ok := MustGetWorkspaceID(c)
	if !ok {
		return
	}

	resp, err := h.scheduleSvc.Build(c.Request.Context(), workspaceID, &req)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}
	response.Created(c, resp)
}

// ExportSchedules 导出全部快照
// GET /api/v1/schedules/export?format=json|yaml
func (h *ScheduleHandler) ExportSchedules(c *gin.Context) {
	workspaceID, ok := MustGetWorkspaceID(c)
	if !ok {
		return
	}

	doc, err := h.scheduleSvc.Export(c.Request.Context(), workspaceID)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	body, contentType, filename, err := service.EncodeExport(doc, c.DefaultQuery("format", service.ExportFormatJSON))
	if err != nil {
		response.InternalError(c)
		return
	}
	response.Attachment(c, filename, contentType, body)
}

// ImportSchedules 导入快照文件
// POST /api/v1/schedules/import
//
// multipart/form-data 的 file 字段，或直接以 JSON / YAML 作为请求体
func (h *ScheduleHandler) ImportSchedules(c *gin.Context) {
	workspaceID, ok := MustGetWorkspaceID(c)
	if !ok {
		return
	}

	var reader io.Reader = c.Request.Body
	if file, _, err := c.Request.FormFile("file"); err == nil {
		defer file.Close()
		reader = file
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
		return
	}
	if len(data) == 0 {
		response.BadRequest(c, 21101, "导入内容为空")
		return
	}

	resp, err := h.scheduleSvc.Import(c.Request.Context(), workspaceID, data)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}
	response.Created(c, resp)
}

func (h *ScheduleHandler) handleScheduleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrScheduleNotFound):
		response.NotFound(c, 21001, "课表快照不存在")
	case errors.Is(err, service.ErrScheduleNameRequired):
		response.BadRequest(c, 21002, "快照名称不能为空")
	case errors.Is(err, service.ErrScheduleNameExists):
		response.Conflict(c, 21003, "已存在同名快照，可选择覆盖")
	case errors.Is(err, service.ErrScheduleNoCourses):
		response.BadRequest(c, 21004, "当前课程列表为空，无法保存")
	case errors.Is(err, service.ErrScheduleExportEmpty):
		response.NotFound(c, 21005, "没有可导出的快照")
	case errors.Is(err, service.ErrBuildEmpty):
		response.Error(c, http.StatusUnprocessableEntity, 21201, "拼装结果为空")
	case errors.Is(err, service.ErrBuildNoTarget):
		response.BadRequest(c, 21202, "请填写快照名称或选择设为当前课表")
	case errors.Is(err, service.ErrImportInvalidFormat):
		response.ErrorWithDetails(c, http.StatusBadRequest, 21102, "导入文件格式无效", err.Error())
	case errors.Is(err, service.ErrImportNoValidSchedules):
		response.Error(c, http.StatusUnprocessableEntity, 21103, "导入文件中没有有效的快照")
	default:
		respondUnexpected(c, err)
	}
}
