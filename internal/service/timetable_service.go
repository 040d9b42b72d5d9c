package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"schedule-visualizer/backend/internal/dto"
	"schedule-visualizer/backend/internal/repository"
	"schedule-visualizer/backend/internal/timetable"
)

// ── 周视图模块业务错误 ──

var (
	ErrConflictSecondRequired = errors.New("需要指定第二个课表或候选课程")
)

// ── TimetableService 接口 ──────────────────────────────────
//
// 设计说明：
//   - 只读：网格、图例、学时、冲突均由 internal/timetable 计算
//   - 来源为 "current"（当前课程列表）或快照 ID
// ─────────────────────────────────────────────────────────────

// TimetableService 周视图业务接口
type TimetableService interface {
	// Get 周视图（网格 + 图例 + 每周学时 + 内部冲突）
	Get(ctx context.Context, workspaceID, source string) (*dto.TimetableResponse, error)
	// Conflicts 比较两个课表，或检查候选课程与课表的冲突
	Conflicts(ctx context.Context, workspaceID string, req *dto.ConflictRequest) (*dto.ConflictResponse, error)
}

type timetableService struct {
	repo   *repository.Repository
	grid   timetable.GridOptions
	logger *zap.Logger
}

// NewTimetableService 创建 TimetableService 实例
func NewTimetableService(repo *repository.Repository, grid timetable.GridOptions, logger *zap.Logger) TimetableService {
	return &timetableService{repo: repo, grid: grid, logger: logger}
}

func (s *timetableService) Get(ctx context.Context, workspaceID, source string) (*dto.TimetableResponse, error) {
	courses, name, err := loadSource(ctx, s.repo, workspaceID, source)
	if err != nil {
		return nil, err
	}

	g := timetable.BuildGrid(courses, s.grid)
	resp := &dto.TimetableResponse{
		Source:     name,
		StartHour:  g.Slots[0].Hour,
		EndHour:    g.Slots[len(g.Slots)-1].Hour + 1,
		Days:       g.Days,
		Slots:      g.Slots,
		Placements: g.Placements,
		Unplaced:   g.Unplaced,
		Legend:     timetable.Legend(courses),
		TotalHours: timetable.TotalHours(courses),
		Conflicts:  selfConflicts(courses),
	}
	if len(g.Unplaced) > 0 {
		s.logger.Debug("部分记录无法放置到网格",
			zap.String("workspace_id", workspaceID),
			zap.Int("unplaced", len(g.Unplaced)))
	}
	return resp, nil
}

func (s *timetableService) Conflicts(ctx context.Context, workspaceID string, req *dto.ConflictRequest) (*dto.ConflictResponse, error) {
	first, _, err := loadSource(ctx, s.repo, workspaceID, req.First)
	if err != nil {
		return nil, err
	}

	var conflicts []timetable.Conflict
	switch {
	case req.Candidate != nil:
		if err := req.Candidate.Normalize(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCourseInvalid, err)
		}
		candidate := req.Candidate.ToSession()
		conflicts = make([]timetable.Conflict, 0)
		// 候选课程可能跨多天，逐天报告
		for _, day := range candidate.Days {
			single := candidate.Clone()
			single.Days = []string{day}
			if c, ok := timetable.FindConflict(single, first); ok {
				conflicts = append(conflicts, c)
			}
		}
	case req.Second != "":
		second, _, err := loadSource(ctx, s.repo, workspaceID, req.Second)
		if err != nil {
			return nil, err
		}
		conflicts = timetable.Conflicts(first, second)
	default:
		return nil, ErrConflictSecondRequired
	}

	return &dto.ConflictResponse{HasConflict: len(conflicts) > 0, Conflicts: conflicts}, nil
}
