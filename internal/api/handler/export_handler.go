package handler

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"schedule-visualizer/backend/internal/dto"
	"schedule-visualizer/backend/internal/service"
	"schedule-visualizer/backend/pkg/response"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeICS  = "text/calendar; charset=utf-8"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportXLSX 导出周课表为 Excel
// GET /api/v1/export/timetable.xlsx?source=current
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	workspaceID, ok := MustGetWorkspaceID(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportTimetableXLSX(c.Request.Context(), workspaceID, c.DefaultQuery("source", dto.CurrentSource))
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, contentTypeXLSX, buf.Bytes())
}

// ExportICS 导出周课表为 iCalendar
// GET /api/v1/export/timetable.ics?source=current&start=2025-06-02
func (h *ExportHandler) ExportICS(c *gin.Context) {
	workspaceID, ok := MustGetWorkspaceID(c)
	if !ok {
		return
	}

	var termStart time.Time
	if raw := c.Query("start"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.BadRequest(c, 10001, "start 格式应为 YYYY-MM-DD")
			return
		}
		termStart = t
	}

	body, filename, err := h.exportSvc.ExportICS(c.Request.Context(), workspaceID, c.DefaultQuery("source", dto.CurrentSource), termStart)
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	response.Attachment(c, filename, contentTypeICS, body)
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrScheduleNotFound):
		response.NotFound(c, 23001, "课表快照不存在")
	case errors.Is(err, service.ErrExportNoCourses):
		response.BadRequest(c, 23002, "课表为空，无法导出")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		respondUnexpected(c, err)
	}
}
