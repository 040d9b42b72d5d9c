package dto

import (
	"schedule-visualizer/backend/internal/model"
	"schedule-visualizer/backend/internal/timetable"
)

// TimetableResponse 周视图
type TimetableResponse struct {
	Source     string                  `json:"source"`
	StartHour  int                     `json:"start_hour"`
	EndHour    int                     `json:"end_hour"`
	Days       []string                `json:"days"`
	Slots      []timetable.Slot        `json:"slots"`
	Placements []timetable.Placement   `json:"placements"`
	Unplaced   []model.ID              `json:"unplaced"`
	Legend     []timetable.LegendEntry `json:"legend"`
	TotalHours float64                 `json:"total_hours"`
	Conflicts  []timetable.Conflict    `json:"conflicts"`
}
