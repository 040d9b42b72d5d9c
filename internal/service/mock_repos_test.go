package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"schedule-visualizer/backend/internal/model"
	"schedule-visualizer/backend/internal/repository"
	"schedule-visualizer/backend/pkg/kvstore"
)

// ── 测试辅助 ──

const testWorkspace = "ws-test"

var errStoreDown = errors.New("store down")

// failingStore 所有操作都失败的存储
type failingStore struct{}

func (failingStore) Get(context.Context, string) ([]byte, error) { return nil, errStoreDown }
func (failingStore) Set(context.Context, string, []byte) error   { return errStoreDown }
func (failingStore) Delete(context.Context, string) error        { return errStoreDown }

func newTestRepo() *repository.Repository {
	return repository.NewRepository(kvstore.NewMemory(), "ws")
}

// fixedClock 固定时间，便于断言 createdAt / importedAt
func fixedClock() time.Time {
	return time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
}

func seedCourses(t *testing.T, repo *repository.Repository, courses ...model.CourseSession) {
	t.Helper()
	if err := repo.Course.Replace(context.Background(), testWorkspace, courses); err != nil {
		t.Fatalf("写入课程失败: %v", err)
	}
}

func seedSchedules(t *testing.T, repo *repository.Repository, schedules ...model.SavedSchedule) {
	t.Helper()
	if err := repo.SavedSchedule.Replace(context.Background(), testWorkspace, schedules); err != nil {
		t.Fatalf("写入快照失败: %v", err)
	}
}

func session(id, code, section string, days []string, start, end, room string) model.CourseSession {
	return model.CourseSession{
		ID:        model.ID(id),
		Code:      code,
		Section:   section,
		Title:     code + " title",
		Days:      days,
		StartTime: start,
		EndTime:   end,
		Room:      room,
	}
}

func snapshot(id, name string, courses ...model.CourseSession) model.SavedSchedule {
	sc := model.NewSavedSchedule(name, courses, fixedClock())
	sc.ID = model.ID(id)
	return sc
}

func newFailingRepo() *repository.Repository {
	return repository.NewRepository(failingStore{}, "ws")
}
