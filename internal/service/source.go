package service

import (
	"context"
	"fmt"
	"strings"

	"schedule-visualizer/backend/internal/dto"
	"schedule-visualizer/backend/internal/model"
	"schedule-visualizer/backend/internal/repository"
)

// loadSource 按来源读取课程：空串或 "current" 为当前课程列表，否则为快照 ID
func loadSource(ctx context.Context, repo *repository.Repository, workspaceID, source string) ([]model.CourseSession, string, error) {
	source = strings.TrimSpace(source)
	if source == "" || source == dto.CurrentSource {
		courses, err := repo.Course.List(ctx, workspaceID)
		if err != nil {
			return nil, "", fmt.Errorf("读取课程列表失败: %w", err)
		}
		return courses, dto.CurrentSource, nil
	}

	schedules, err := repo.SavedSchedule.List(ctx, workspaceID)
	if err != nil {
		return nil, "", fmt.Errorf("读取快照列表失败: %w", err)
	}
	idx := findSchedule(schedules, source)
	if idx < 0 {
		return nil, "", ErrScheduleNotFound
	}
	return model.CloneSessions(schedules[idx].Courses), schedules[idx].Name, nil
}

// findSchedule 按 ID（字符串比较）查找快照下标
func findSchedule(schedules []model.SavedSchedule, id string) int {
	for i := range schedules {
		if schedules[i].ID.String() == id {
			return i
		}
	}
	return -1
}
