package repository

import (
	"context"

	"schedule-visualizer/backend/internal/model"
	"schedule-visualizer/backend/pkg/kvstore"
)

// SavedScheduleRepository 工作区已保存课表（快照）列表
type SavedScheduleRepository interface {
	List(ctx context.Context, workspaceID string) ([]model.SavedSchedule, error)
	Replace(ctx context.Context, workspaceID string, schedules []model.SavedSchedule) error
	Clear(ctx context.Context, workspaceID string) error
}

type savedScheduleRepo struct {
	store kvstore.Store
	keys  keySpace
}

// NewSavedScheduleRepo 创建 SavedScheduleRepository 实例
func NewSavedScheduleRepo(store kvstore.Store, prefix string) SavedScheduleRepository {
	return &savedScheduleRepo{store: store, keys: keySpace{prefix: prefix}}
}

func (r *savedScheduleRepo) List(ctx context.Context, workspaceID string) ([]model.SavedSchedule, error) {
	schedules := make([]model.SavedSchedule, 0)
	if err := loadJSON(ctx, r.store, r.keys.key(workspaceID, KeySavedSchedules), &schedules); err != nil {
		return nil, err
	}
	if schedules == nil {
		schedules = make([]model.SavedSchedule, 0)
	}
	return schedules, nil
}

func (r *savedScheduleRepo) Replace(ctx context.Context, workspaceID string, schedules []model.SavedSchedule) error {
	if schedules == nil {
		schedules = make([]model.SavedSchedule, 0)
	}
	return saveJSON(ctx, r.store, r.keys.key(workspaceID, KeySavedSchedules), schedules)
}

func (r *savedScheduleRepo) Clear(ctx context.Context, workspaceID string) error {
	return r.store.Delete(ctx, r.keys.key(workspaceID, KeySavedSchedules))
}
