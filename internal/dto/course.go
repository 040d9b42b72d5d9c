package dto

import (
	"fmt"
	"regexp"
	"strings"

	"schedule-visualizer/backend/internal/model"
	"schedule-visualizer/backend/internal/parser"
)

// ── 文本解析 ──

// ParseTextRequest 粘贴文本 / OCR 识别文本
type ParseTextRequest struct {
	Text string `json:"text" binding:"required,max=200000"`
	// Replace 为 true 时替换当前课程列表，否则追加
	Replace bool `json:"replace"`
}

// ParseResponse 解析预览（不落库）
type ParseResponse struct {
	Format          parser.Format         `json:"format"`
	Count           int                   `json:"count"`
	MissingSections bool                  `json:"missing_sections"`
	UsedFallback    bool                  `json:"used_fallback"`
	Sessions        []model.CourseSession `json:"sessions"`
}

// NewParseResponse 由解析结果构造响应
func NewParseResponse(res parser.Result) *ParseResponse {
	return &ParseResponse{
		Format:          res.Format,
		Count:           len(res.Sessions),
		MissingSections: res.MissingSections,
		UsedFallback:    res.UsedFallback,
		Sessions:        res.Sessions,
	}
}

// ImportCoursesResponse 解析并写入当前课程列表的结果
type ImportCoursesResponse struct {
	Format          parser.Format         `json:"format"`
	Added           int                   `json:"added"`
	Total           int                   `json:"total"`
	MissingSections bool                  `json:"missing_sections"`
	UsedFallback    bool                  `json:"used_fallback"`
	Courses         []model.CourseSession `json:"courses"`
}

// ── 手动维护 ──

var reClock = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// CourseRequest 手动新增 / 修改课程
type CourseRequest struct {
	Code      string   `json:"code" binding:"required,max=20"`
	Section   string   `json:"section" binding:"omitempty,max=30"`
	Title     string   `json:"title" binding:"omitempty,max=200"`
	Days      []string `json:"days" binding:"required,min=1,max=7"`
	StartTime string   `json:"startTime" binding:"required"`
	EndTime   string   `json:"endTime" binding:"required"`
	Room      string   `json:"room" binding:"omitempty,max=50"`
}

// Normalize 清洗字段并校验：星期必须为已知代码，时间归一化为 HH:MM 且开始早于结束
func (r *CourseRequest) Normalize() error {
	r.Code = strings.ToUpper(strings.Join(strings.Fields(r.Code), ""))
	r.Section = strings.TrimSpace(r.Section)
	r.Title = strings.TrimSpace(r.Title)
	r.Room = strings.TrimSpace(r.Room)
	if r.Code == "" {
		return fmt.Errorf("课程代码不能为空")
	}

	days := make([]string, 0, len(r.Days))
	seen := make(map[string]bool)
	for _, d := range r.Days {
		d = strings.ToUpper(strings.TrimSpace(d))
		if !model.IsDayCode(d) {
			return fmt.Errorf("无效的星期代码: %q", d)
		}
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	r.Days = days

	r.StartTime = parser.NormalizeTime(r.StartTime)
	r.EndTime = parser.NormalizeTime(r.EndTime)
	if !reClock.MatchString(r.StartTime) || !reClock.MatchString(r.EndTime) {
		return fmt.Errorf("时间格式无效，应为 HH:MM 或 h:mm AM/PM")
	}
	if r.StartTime >= r.EndTime {
		return fmt.Errorf("开始时间必须早于结束时间")
	}
	return nil
}

// ToSession 转为上课记录（不含 ID）
func (r *CourseRequest) ToSession() model.CourseSession {
	return model.CourseSession{
		Code:      r.Code,
		Section:   r.Section,
		Title:     r.Title,
		Days:      append([]string{}, r.Days...),
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Room:      r.Room,
	}
}

// CourseListResponse 当前课程列表
type CourseListResponse struct {
	Courses           []model.CourseSession `json:"courses"`
	CourseCount       int                   `json:"course_count"`
	UniqueCourseCount int                   `json:"unique_course_count"`
}

// ImportICSRequest 通过 URL 导入日历（webcal:// 亦可）
type ImportICSRequest struct {
	URL     string `json:"url" form:"url"`
	Replace bool   `json:"replace" form:"replace"`
}

// ImportICSResponse 日历导入结果
type ImportICSResponse struct {
	Added   int                   `json:"added"`
	Total   int                   `json:"total"`
	Courses []model.CourseSession `json:"courses"`
}
