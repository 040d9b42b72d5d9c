package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"schedule-visualizer/backend/internal/dto"
	"schedule-visualizer/backend/internal/service"
	"schedule-visualizer/backend/pkg/response"
)

// CourseHandler 课程模块 HTTP 处理器（文本解析 + 当前课程列表维护）
type CourseHandler struct {
	courseSvc service.CourseService
	fetcher   service.ICSFetcher
}

// NewCourseHandler 创建 CourseHandler
func NewCourseHandler(courseSvc service.CourseService, fetcher service.ICSFetcher) *CourseHandler {
	return &CourseHandler{courseSvc: courseSvc, fetcher: fetcher}
}

// Preview 解析文本但不写入
// POST /api/v1/parse
func (h *CourseHandler) Preview(c *gin.Context) {
	var req dto.ParseTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	response.OK(c, h.courseSvc.Preview(req.Text))
}

// ImportText 解析粘贴文本并写入当前课程列表
// POST /api/v1/courses/parse
func (h *CourseHandler) ImportText(c *gin.Context) {
	h.importText(c, h.courseSvc.ImportText)
}

// ImportRecognized 解析 OCR 识别文本并写入当前课程列表
// POST /api/v1/courses/ocr
func (h *CourseHandler) ImportRecognized(c *gin.Context) {
	h.importText(c, h.courseSvc.ImportRecognized)
}

type importFunc func(ctx context.Context, workspaceID string, req *dto.ParseTextRequest) (*dto.ImportCoursesResponse, error)

func (h *CourseHandler) importText(c *gin.Context, fn importFunc) {
	var req dto.ParseTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	workspaceID, ok := MustGetWorkspaceID(c)
	if !ok {
		return
	}

	resp, err := fn(c.Request.Context(), workspaceID, &req)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}
	response.Created(c, resp)
}

// ImportICS 导入 iCalendar 课表
// POST /api/v1/courses/ics
//
// 支持两种方式：
//   - 文件上传: multipart/form-data, field="file"
//   - URL 导入: application/json, body={"url": "...", "replace": false}
func (h *CourseHandler) ImportICS(c *gin.Context) {
	workspaceID, ok := MustGetWorkspaceID(c)
	if !ok {
		return
	}

	// 文件上传
	file, _, err := c.Request.FormFile("file")
	if err == nil {
		defer file.Close()
		replace, _ := strconv.ParseBool(c.PostForm("replace"))
		resp, err := h.courseSvc.ImportICS(c.Request.Context(), workspaceID, file, replace)
		if err != nil {
			h.handleCourseError(c, err)
			return
		}
		response.Created(c, resp)
		return
	}

	// URL 导入
	var req dto.ImportICSRequest
	if err := c.ShouldBind(&req); err != nil || req.URL == "" {
		response.BadRequest(c, 20100, "请上传 ICS 文件或提供 ICS URL")
		return
	}

	body, err := h.fetcher.Fetch(c.Request.Context(), req.URL)
	if err != nil {
		// 不回传底层错误，避免暴露内网探测结果
		if errors.Is(err, service.ErrICSURLInvalid) {
			response.BadRequest(c, 20104, "ICS URL 无效")
			return
		}
		response.BadRequest(c, 20101, "ICS URL 获取失败")
		return
	}
	defer body.Close()

	resp, err := h.courseSvc.ImportICS(c.Request.Context(), workspaceID, body, req.Replace)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}
	response.Created(c, resp)
}

// ListCourses 当前课程列表
// GET /api/v1/courses
func (h *CourseHandler) ListCourses(c *gin.Context) {
	workspaceID, ok := MustGetWorkspaceID(c)
	if !ok {
		return
	}

	resp, err := h.courseSvc.List(c.Request.Context(), workspaceID)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}
	response.OK(c, resp)
}

// CreateCourse 手动添加课程
// POST /api/v1/courses
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req dto.CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	workspaceID, ok := MustGetWorkspaceID(c)
	if !ok {
		return
	}

	course, err := h.courseSvc.Create(c.Request.Context(), workspaceID, &req)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}
	response.Created(c, course)
}

// UpdateCourse 修改课程
// PUT /api/v1/courses/:id
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "课程ID不能为空")
		return
	}

	var req dto.CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	workspaceID, ok := MustGetWorkspaceID(c)
	if !ok {
		return
	}

	course, err := h.courseSvc.Update(c.Request.Context(), workspaceID, id, &req)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}
	response.OK(c, course)
}

// DeleteCourse 删除单条课程
// DELETE /api/v1/courses/:id
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "课程ID不能为空")
		return
	}

	workspaceID, ok := MustGetWorkspaceID(c)
	if !ok {
		return
	}

	if err := h.courseSvc.Delete(c.Request.Context(), workspaceID, id); err != nil {
		h.handleCourseError(c, err)
		return
	}
	response.OK(c, nil)
}

// ClearCourses 清空当前课程列表
// DELETE /api/v1/courses
func (h *CourseHandler) ClearCourses(c *gin.Context) {
	workspaceID, ok := MustGetWorkspaceID(c)
	if !ok {
		return
	}

	if err := h.courseSvc.Clear(c.Request.Context(), workspaceID); err != nil {
		h.handleCourseError(c, err)
		return
	}
	response.OK(c, nil)
}

// handleCourseError 将 Service 层错误映射为 HTTP 响应
func (h *CourseHandler) handleCourseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrParseNoCourses):
		response.Error(c, http.StatusUnprocessableEntity, 20001, err.Error())
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 20002, "课程记录不存在")
	case errors.Is(err, service.ErrCourseInvalid):
		response.ErrorWithDetails(c, http.StatusBadRequest, 20003, "课程信息无效", err.Error())
	case errors.Is(err, service.ErrICSParseFailed):
		response.ErrorWithDetails(c, http.StatusBadRequest, 20102, "ICS 文件解析失败", err.Error())
	case errors.Is(err, service.ErrICSEmpty):
		response.Error(c, http.StatusUnprocessableEntity, 20103, err.Error())
	default:
		respondUnexpected(c, err)
	}
}
