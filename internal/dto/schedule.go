package dto

import (
	"schedule-visualizer/backend/internal/model"
	"schedule-visualizer/backend/internal/timetable"
)

// ── 已保存课表 DTO ──

// CurrentSource 代表当前课程列表的伪课表 ID
const CurrentSource = "current"

// SaveScheduleRequest 将当前课程列表保存为命名快照
type SaveScheduleRequest struct {
	Name string `json:"name" binding:"required,max=100"`
	// Replace 为 true 时覆盖同名（不区分大小写）快照
	Replace bool `json:"replace"`
}

// ScheduleSummary 快照列表项（不含课程明细）
type ScheduleSummary struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	CreatedAt         string  `json:"created_at"`
	ImportedAt        *string `json:"imported_at,omitempty"`
	CourseCount       int     `json:"course_count"`
	UniqueCourseCount int     `json:"unique_course_count"`
}

// NewScheduleSummary 由快照构造列表项
func NewScheduleSummary(s *model.SavedSchedule) ScheduleSummary {
	out := ScheduleSummary{
		ID:                s.ID.String(),
		Name:              s.Name,
		CreatedAt:         s.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		CourseCount:       s.CourseCount,
		UniqueCourseCount: s.UniqueCourseCount,
	}
	if s.ImportedAt != nil {
		v := s.ImportedAt.Format("2006-01-02T15:04:05Z07:00")
		out.ImportedAt = &v
	}
	return out
}

// LoadScheduleResponse 加载快照后的当前课程列表
type LoadScheduleResponse struct {
	Name    string                `json:"name"`
	Courses []model.CourseSession `json:"courses"`
}

// ── 课表拼装 ──

// CoursePick 从某个课表中挑选一门课（可限定教学班）
type CoursePick struct {
	// ScheduleID 为快照 ID，或 "current" 表示当前课程列表
	ScheduleID string `json:"schedule_id" binding:"required"`
	Code       string `json:"code" binding:"required,max=20"`
	Section    string `json:"section" binding:"omitempty,max=30"`
}

// CourseRef 按 代码（+班级）指定课程
type CourseRef struct {
	Code    string `json:"code" binding:"required,max=20"`
	Section string `json:"section" binding:"omitempty,max=30"`
}

// BuildScheduleRequest 拼装课表请求
//
// 以 Base（可选，快照 ID 或 "current"）为起点，先移除 Remove 中的课程，再按顺序合并 Picks。
type BuildScheduleRequest struct {
	Name         string       `json:"name" binding:"omitempty,max=100"`
	Base         string       `json:"base"`
	Remove       []CourseRef  `json:"remove" binding:"omitempty,max=50,dive"`
	Picks        []CoursePick `json:"picks" binding:"omitempty,max=50,dive"`
	Replace      bool         `json:"replace"`
	UseAsCurrent bool         `json:"use_as_current"`
}

// BuildScheduleResponse 拼装结果
type BuildScheduleResponse struct {
	Courses   []model.CourseSession `json:"courses"`
	Saved     *model.SavedSchedule  `json:"saved,omitempty"`
	Conflicts []timetable.Conflict  `json:"conflicts"`
}

// ── 导入导出 ──

// ImportSchedulesResponse 快照导入结果
type ImportSchedulesResponse struct {
	Imported int               `json:"imported"`
	Renamed  []string          `json:"renamed"`
	Total    int               `json:"total"`
	Items    []ScheduleSummary `json:"items"`
}

// ── 冲突检查 ──

// ConflictRequest 比较两个课表，或检查单门候选课程
type ConflictRequest struct {
	First  string `json:"first" binding:"required"`
	Second string `json:"second" binding:"omitempty"`
	// Candidate 非空时检查该课程与 First 的冲突，忽略 Second
	Candidate *CourseRequest `json:"candidate"`
}

// ConflictResponse 冲突列表
type ConflictResponse struct {
	HasConflict bool                 `json:"has_conflict"`
	Conflicts   []timetable.Conflict `json:"conflicts"`
}
