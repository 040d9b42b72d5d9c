package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"schedule-visualizer/backend/config"
	"schedule-visualizer/backend/pkg/jwt"
)

func TestWorkspaceService_Create(t *testing.T) {
	repo := newTestRepo()
	mgr := jwt.NewManager(&config.AuthConfig{JWTSecret: "test-secret-key-for-unit-testing", WorkspaceTokenTTL: time.Hour})
	svc := NewWorkspaceService(repo, mgr, zap.NewNop())

	resp, err := svc.Create(context.Background())
	if err != nil {
		t.Fatalf("Create 失败: %v", err)
	}
	if resp.WorkspaceID == "" || resp.Token == "" {
		t.Fatalf("期望返回工作区 ID 与令牌，实际 %+v", resp)
	}
	if resp.ExpiresIn != 3600 {
		t.Errorf("期望有效期 3600 秒，实际 %d", resp.ExpiresIn)
	}

	claims, err := mgr.ParseToken(resp.Token)
	if err != nil {
		t.Fatalf("令牌应可解析: %v", err)
	}
	if claims.WorkspaceID != resp.WorkspaceID {
		t.Errorf("令牌中的工作区 ID 不一致: %s vs %s", claims.WorkspaceID, resp.WorkspaceID)
	}

	courses, err := repo.Course.List(context.Background(), resp.WorkspaceID)
	if err != nil || len(courses) != 0 {
		t.Errorf("新工作区课程列表应为空，实际 %v / %v", courses, err)
	}
}

func TestWorkspaceService_Create_StoreDown(t *testing.T) {
	repo := newFailingRepo()
	mgr := jwt.NewManager(&config.AuthConfig{JWTSecret: "test-secret-key-for-unit-testing"})
	svc := NewWorkspaceService(repo, mgr, zap.NewNop())

	if _, err := svc.Create(context.Background()); err == nil {
		t.Error("存储不可用时应返回错误")
	}
}
