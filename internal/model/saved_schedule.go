package model

import "time"

// SavedSchedule 命名课表快照
type SavedSchedule struct {
	ID                ID              `json:"id" yaml:"id"`
	Name              string          `json:"name" yaml:"name"`
	Courses           []CourseSession `json:"courses" yaml:"courses"`
	CreatedAt         time.Time       `json:"createdAt" yaml:"createdAt"`
	CourseCount       int             `json:"courseCount" yaml:"courseCount"`
	UniqueCourseCount int             `json:"uniqueCourses" yaml:"uniqueCourses"`
	ImportedAt        *time.Time      `json:"importedAt,omitempty" yaml:"importedAt,omitempty"`
}

// NewSavedSchedule 以当前课程列表创建快照（课程深拷贝）
func NewSavedSchedule(name string, courses []CourseSession, now time.Time) SavedSchedule {
	return SavedSchedule{
		ID:                NewID(),
		Name:              name,
		Courses:           CloneSessions(courses),
		CreatedAt:         now,
		CourseCount:       len(courses),
		UniqueCourseCount: UniqueCodeCount(courses),
	}
}

// ExportVersion 导出文件格式版本
const ExportVersion = "1.0"

// ExportDocument 快照导出文件
type ExportDocument struct {
	ExportedAt time.Time       `json:"exportedAt" yaml:"exportedAt"`
	Version    string          `json:"version"    yaml:"version"`
	Schedules  []SavedSchedule `json:"schedules"  yaml:"schedules"`
}
