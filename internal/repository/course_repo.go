package repository

import (
	"context"

	"schedule-visualizer/backend/internal/model"
	"schedule-visualizer/backend/pkg/kvstore"
)

// CourseRepository 工作区当前课程列表
type CourseRepository interface {
	List(ctx context.Context, workspaceID string) ([]model.CourseSession, error)
	// Replace 整体覆盖课程列表（列表作为一个 JSON 值存储）
	Replace(ctx context.Context, workspaceID string, courses []model.CourseSession) error
	Clear(ctx context.Context, workspaceID string) error
}

type courseRepo struct {
	store kvstore.Store
	keys  keySpace
}

// NewCourseRepo 创建 CourseRepository 实例
func NewCourseRepo(store kvstore.Store, prefix string) CourseRepository {
	return &courseRepo{store: store, keys: keySpace{prefix: prefix}}
}

func (r *courseRepo) List(ctx context.Context, workspaceID string) ([]model.CourseSession, error) {
	courses := make([]model.CourseSession, 0)
	if err := loadJSON(ctx, r.store, r.keys.key(workspaceID, KeyCourses), &courses); err != nil {
		return nil, err
	}
	if courses == nil {
		courses = make([]model.CourseSession, 0)
	}
	return courses, nil
}

func (r *courseRepo) Replace(ctx context.Context, workspaceID string, courses []model.CourseSession) error {
	if courses == nil {
		courses = make([]model.CourseSession, 0)
	}
	return saveJSON(ctx, r.store, r.keys.key(workspaceID, KeyCourses), courses)
}

func (r *courseRepo) Clear(ctx context.Context, workspaceID string) error {
	return r.store.Delete(ctx, r.keys.key(workspaceID, KeyCourses))
}
