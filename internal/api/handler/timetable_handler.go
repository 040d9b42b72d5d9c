package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"schedule-visualizer/backend/internal/dto"
	"schedule-visualizer/backend/internal/service"
	"schedule-visualizer/backend/pkg/response"
)

// TimetableHandler 周视图模块 Handler
type TimetableHandler struct {
	svc service.TimetableService
}

// NewTimetableHandler 创建 TimetableHandler 实例
func NewTimetableHandler(svc service.TimetableService) *TimetableHandler {
	return &TimetableHandler{svc: svc}
}

// GetTimetable 周视图
// GET /api/v1/timetable?source=current|<scheduleId>
func (h *TimetableHandler) GetTimetable(c *gin.Context) {
	workspaceID, ok := MustGetWorkspaceID(c)
	if !ok {
		return
	}

	resp, err := h.svc.Get(c.Request.Context(), workspaceID, c.DefaultQuery("source", dto.CurrentSource))
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, resp)
}

// CheckConflicts 冲突检查
// POST /api/v1/timetable/conflicts
func (h *TimetableHandler) CheckConflicts(c *gin.Context) {
	var req dto.ConflictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	workspaceID, ok := MustGetWorkspaceID(c)
	if !ok {
		return
	}

	resp, err := h.svc.Conflicts(c.Request.Context(), workspaceID, &req)
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, resp)
}

func handleTimetableError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrScheduleNotFound):
		response.NotFound(c, 22001, "课表快照不存在")
	case errors.Is(err, service.ErrConflictSecondRequired):
		response.BadRequest(c, 22002, "需要指定第二个课表或候选课程")
	case errors.Is(err, service.ErrCourseInvalid):
		response.ErrorWithDetails(c, http.StatusBadRequest, 22003, "候选课程信息无效", err.Error())
	default:
		respondUnexpected(c, err)
	}
}
