//go:build integration

package repository_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"schedule-visualizer/backend/internal/model"
	"schedule-visualizer/backend/internal/repository"
	"schedule-visualizer/backend/pkg/database"
	"schedule-visualizer/backend/pkg/kvstore"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

// 运行方式: go test -tags=integration ./internal/repository/...

var testRepo *repository.Repository

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "schedviz-repo")
	if err != nil {
		fmt.Fprintf(os.Stderr, "创建临时目录失败: %v\n", err)
		os.Exit(1)
	}

	db, err := database.NewSQLite(filepath.Join(dir, "repo.db"), zap.NewNop())
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法打开测试数据库: %v\n", err)
		os.Exit(1)
	}
	testRepo = repository.NewRepository(kvstore.NewGorm(db), "it")

	code := m.Run()
	database.Close(db)
	os.RemoveAll(dir)
	os.Exit(code)
}

// ═══════════════════════════════════════════════════════════
// Course / SavedSchedule
// ═══════════════════════════════════════════════════════════

func TestIntegration_CourseList(t *testing.T) {
	ctx := context.Background()
	courses := []model.CourseSession{
		{ID: "1", Code: "CS101", Section: "G1", Days: []string{"M", "W"}, StartTime: "08:00", EndTime: "09:30", Room: "NGE101"},
		{ID: "2", Code: "MATH201", Days: []string{}, IsTBA: true},
	}
	if err := testRepo.Course.Replace(ctx, "ws-a", courses); err != nil {
		t.Fatalf("写入失败: %v", err)
	}

	got, err := testRepo.Course.List(ctx, "ws-a")
	if err != nil {
		t.Fatalf("读取失败: %v", err)
	}
	if len(got) != 2 || got[0].Room != "NGE101" || !got[1].IsTBA {
		t.Errorf("读回内容不一致：%+v", got)
	}

	other, err := testRepo.Course.List(ctx, "ws-b")
	if err != nil || len(other) != 0 {
		t.Errorf("其他工作区应为空，实际 %v / %v", other, err)
	}

	if err := testRepo.Course.Clear(ctx, "ws-a"); err != nil {
		t.Fatalf("清空失败: %v", err)
	}
	got, _ = testRepo.Course.List(ctx, "ws-a")
	if len(got) != 0 {
		t.Errorf("清空后期望 0 条，实际 %d", len(got))
	}
}

func TestIntegration_SavedSchedules(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	sc := model.NewSavedSchedule("Plan A", []model.CourseSession{
		{ID: "1", Code: "CS101", Days: []string{"M"}, StartTime: "08:00", EndTime: "09:00"},
	}, now)

	if err := testRepo.SavedSchedule.Replace(ctx, "ws-a", []model.SavedSchedule{sc}); err != nil {
		t.Fatalf("写入失败: %v", err)
	}
	got, err := testRepo.SavedSchedule.List(ctx, "ws-a")
	if err != nil {
		t.Fatalf("读取失败: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Plan A" || !got[0].CreatedAt.Equal(now) {
		t.Errorf("读回快照不一致：%+v", got)
	}
}
