package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"schedule-visualizer/backend/internal/dto"
	"schedule-visualizer/backend/internal/model"
	"schedule-visualizer/backend/internal/repository"
	"schedule-visualizer/backend/pkg/jwt"
)

// ── 工作区模块业务错误 ──

var (
	ErrWorkspaceTokenFailed = errors.New("工作区令牌签发失败")
)

// WorkspaceService 匿名工作区：每个浏览器会话对应一个工作区，持有一份当前课程列表与快照集合
type WorkspaceService interface {
	// Create 创建工作区并签发令牌
	Create(ctx context.Context) (*dto.WorkspaceTokenResponse, error)
}

type workspaceService struct {
	repo   *repository.Repository
	jwtMgr *jwt.Manager
	logger *zap.Logger
}

// NewWorkspaceService 创建 WorkspaceService 实例
func NewWorkspaceService(repo *repository.Repository, jwtMgr *jwt.Manager, logger *zap.Logger) WorkspaceService {
	return &workspaceService{repo: repo, jwtMgr: jwtMgr, logger: logger}
}

func (s *workspaceService) Create(ctx context.Context) (*dto.WorkspaceTokenResponse, error) {
	workspaceID := model.NewID().String()

	token, expiresAt, err := s.jwtMgr.GenerateWorkspaceToken(workspaceID)
	if err != nil {
		s.logger.Error("签发工作区令牌失败", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrWorkspaceTokenFailed, err)
	}

	// 初始化为空列表，后续读取无需区分"未创建"与"为空"
	if err := s.repo.Course.Replace(ctx, workspaceID, []model.CourseSession{}); err != nil {
		return nil, fmt.Errorf("初始化课程列表失败: %w", err)
	}
	if err := s.repo.SavedSchedule.Replace(ctx, workspaceID, []model.SavedSchedule{}); err != nil {
		return nil, fmt.Errorf("初始化快照列表失败: %w", err)
	}

	s.logger.Info("工作区已创建", zap.String("workspace_id", workspaceID))
	return &dto.WorkspaceTokenResponse{
		WorkspaceID: workspaceID,
		Token:       token,
		ExpiresAt:   expiresAt.Format(time.RFC3339),
		ExpiresIn:   int(s.jwtMgr.TTL().Seconds()),
	}, nil
}
