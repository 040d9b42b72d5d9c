package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"schedule-visualizer/backend/config"
	"schedule-visualizer/backend/internal/dto"
	"schedule-visualizer/backend/internal/model"
	"schedule-visualizer/backend/internal/parser"
	"schedule-visualizer/backend/internal/repository"
)

// ── 课程模块业务错误 ──

var (
	ErrParseNoCourses = errors.New("未识别到任何课程，请检查文本格式或手动添加")
	ErrCourseNotFound = errors.New("课程记录不存在")
	ErrCourseInvalid  = errors.New("课程信息无效")
	ErrICSParseFailed = errors.New("ICS 文件解析失败")
	ErrICSEmpty       = errors.New("ICS 文件中未发现有效课程事件")
)

// ── CourseService 接口 ──────────────────────────────────────
//
// 设计说明：
//   - 解析引擎无状态；当前课程列表由本服务通过 repository 维护
//   - 导入默认追加，replace=true 时整体替换
//   - 同一工作区的"读取 → 修改 → 写回"由 WorkspaceLocks 串行化
// ─────────────────────────────────────────────────────────────

// CourseService 课程模块业务接口
type CourseService interface {
	// Preview 解析文本但不写入
	Preview(text string) *dto.ParseResponse
	// ImportText 解析粘贴文本并写入当前课程列表
	ImportText(ctx context.Context, workspaceID string, req *dto.ParseTextRequest) (*dto.ImportCoursesResponse, error)
	// ImportRecognized 解析 OCR 识别文本并写入当前课程列表
	ImportRecognized(ctx context.Context, workspaceID string, req *dto.ParseTextRequest) (*dto.ImportCoursesResponse, error)
	// ImportICS 导入 iCalendar 文件
	ImportICS(ctx context.Context, workspaceID string, reader io.Reader, replace bool) (*dto.ImportICSResponse, error)
	// List 当前课程列表
	List(ctx context.Context, workspaceID string) (*dto.CourseListResponse, error)
	// Create 手动添加课程
	Create(ctx context.Context, workspaceID string, req *dto.CourseRequest) (*model.CourseSession, error)
	// Update 修改课程
	Update(ctx context.Context, workspaceID, id string, req *dto.CourseRequest) (*model.CourseSession, error)
	// Delete 删除单条课程
	Delete(ctx context.Context, workspaceID, id string) error
	// Clear 清空当前课程列表
	Clear(ctx context.Context, workspaceID string) error
}

type courseService struct {
	repo   *repository.Repository
	locks  *WorkspaceLocks
	loc    *time.Location
	logger *zap.Logger
}

// NewCourseService 创建 CourseService 实例
func NewCourseService(repo *repository.Repository, locks *WorkspaceLocks, cal config.CalendarConfig, logger *zap.Logger) CourseService {
	loc, err := time.LoadLocation(cal.Timezone)
	if err != nil {
		loc = time.UTC
	}
	return &courseService{repo: repo, locks: locks, loc: loc, logger: logger}
}

// ════════════════════════════════════════════════════════════
// 文本解析
// ════════════════════════════════════════════════════════════

func (s *courseService) Preview(text string) *dto.ParseResponse {
	res := parser.Parse(text)
	s.logger.Info("解析预览",
		zap.String("format", string(res.Format)),
		zap.Int("count", len(res.Sessions)),
		zap.Bool("fallback", res.UsedFallback))
	return dto.NewParseResponse(res)
}

func (s *courseService) ImportText(ctx context.Context, workspaceID string, req *dto.ParseTextRequest) (*dto.ImportCoursesResponse, error) {
	return s.importResult(ctx, workspaceID, parser.Parse(req.Text), req.Replace)
}

func (s *courseService) ImportRecognized(ctx context.Context, workspaceID string, req *dto.ParseTextRequest) (*dto.ImportCoursesResponse, error) {
	return s.importResult(ctx, workspaceID, parser.ParseRecognized(req.Text), req.Replace)
}

// importResult 将解析结果追加（或替换）到当前课程列表；零条记录不修改列表
func (s *courseService) importResult(ctx context.Context, workspaceID string, res parser.Result, replace bool) (*dto.ImportCoursesResponse, error) {
	if len(res.Sessions) == 0 {
		s.logger.Info("解析结果为空",
			zap.String("workspace_id", workspaceID),
			zap.String("format", string(res.Format)))
		return nil, ErrParseNoCourses
	}

	courses, err := s.mutate(ctx, workspaceID, func(current []model.CourseSession) ([]model.CourseSession, error) {
		if replace {
			return res.Sessions, nil
		}
		return append(current, res.Sessions...), nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("课程已导入",
		zap.String("workspace_id", workspaceID),
		zap.String("format", string(res.Format)),
		zap.Int("added", len(res.Sessions)),
		zap.Int("total", len(courses)),
		zap.Bool("replace", replace))
	return &dto.ImportCoursesResponse{
		Format:          res.Format,
		Added:           len(res.Sessions),
		Total:           len(courses),
		MissingSections: res.MissingSections,
		UsedFallback:    res.UsedFallback,
		Courses:         courses,
	}, nil
}

// ════════════════════════════════════════════════════════════
// ImportICS：导入 iCalendar
// ════════════════════════════════════════════════════════════

func (s *courseService) ImportICS(ctx context.Context, workspaceID string, reader io.Reader, replace bool) (*dto.ImportICSResponse, error) {
	sessions, err := ParseICS(reader, s.loc)
	if err != nil {
		s.logger.Warn("ICS 解析失败", zap.String("workspace_id", workspaceID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrICSParseFailed, err)
	}
	if len(sessions) == 0 {
		return nil, ErrICSEmpty
	}
	for i := range sessions {
		sessions[i].ID = model.NewID()
	}

	courses, err := s.mutate(ctx, workspaceID, func(current []model.CourseSession) ([]model.CourseSession, error) {
		if replace {
			return sessions, nil
		}
		return append(current, sessions...), nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("ICS 课程已导入",
		zap.String("workspace_id", workspaceID),
		zap.Int("added", len(sessions)),
		zap.Int("total", len(courses)))
	return &dto.ImportICSResponse{Added: len(sessions), Total: len(courses), Courses: courses}, nil
}

// ════════════════════════════════════════════════════════════
// 手动维护
// ════════════════════════════════════════════════════════════

func (s *courseService) List(ctx context.Context, workspaceID string) (*dto.CourseListResponse, error) {
	courses, err := s.repo.Course.List(ctx, workspaceID)
	if err != nil {
		s.logger.Error("读取课程列表失败", zap.String("workspace_id", workspaceID), zap.Error(err))
		return nil, err
	}
	return &dto.CourseListResponse{
		Courses:           courses,
		CourseCount:       len(courses),
		UniqueCourseCount: model.UniqueCodeCount(courses),
	}, nil
}

func (s *courseService) Create(ctx context.Context, workspaceID string, req *dto.CourseRequest) (*model.CourseSession, error) {
	if err := req.Normalize(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCourseInvalid, err)
	}
	session := req.ToSession()
	session.ID = model.NewID()

	if _, err := s.mutate(ctx, workspaceID, func(current []model.CourseSession) ([]model.CourseSession, error) {
		return append(current, session), nil
	}); err != nil {
		return nil, err
	}

	s.logger.Info("手动添加课程",
		zap.String("workspace_id", workspaceID),
		zap.String("code", session.Code),
		zap.String("id", session.ID.String()))
	return &session, nil
}

func (s *courseService) Update(ctx context.Context, workspaceID, id string, req *dto.CourseRequest) (*model.CourseSession, error) {
	if err := req.Normalize(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCourseInvalid, err)
	}

	var updated model.CourseSession
	_, err := s.mutate(ctx, workspaceID, func(current []model.CourseSession) ([]model.CourseSession, error) {
		idx := findCourse(current, id)
		if idx < 0 {
			return nil, ErrCourseNotFound
		}
		updated = req.ToSession()
		updated.ID = current[idx].ID
		current[idx] = updated
		return current, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *courseService) Delete(ctx context.Context, workspaceID, id string) error {
	_, err := s.mutate(ctx, workspaceID, func(current []model.CourseSession) ([]model.CourseSession, error) {
		idx := findCourse(current, id)
		if idx < 0 {
			return nil, ErrCourseNotFound
		}
		return append(current[:idx], current[idx+1:]...), nil
	})
	return err
}

func (s *courseService) Clear(ctx context.Context, workspaceID string) error {
	unlock := s.locks.Lock(workspaceID)
	defer unlock()

	if err := s.repo.Course.Replace(ctx, workspaceID, []model.CourseSession{}); err != nil {
		s.logger.Error("清空课程列表失败", zap.String("workspace_id", workspaceID), zap.Error(err))
		return err
	}
	s.logger.Info("课程列表已清空", zap.String("workspace_id", workspaceID))
	return nil
}

// ── 辅助函数 ──

// mutate 在工作区锁内读取、修改并写回课程列表
func (s *courseService) mutate(ctx context.Context, workspaceID string, fn func([]model.CourseSession) ([]model.CourseSession, error)) ([]model.CourseSession, error) {
	unlock := s.locks.Lock(workspaceID)
	defer unlock()

	current, err := s.repo.Course.List(ctx, workspaceID)
	if err != nil {
		s.logger.Error("读取课程列表失败", zap.String("workspace_id", workspaceID), zap.Error(err))
		return nil, err
	}
	next, err := fn(current)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Course.Replace(ctx, workspaceID, next); err != nil {
		s.logger.Error("写入课程列表失败", zap.String("workspace_id", workspaceID), zap.Error(err))
		return nil, err
	}
	return next, nil
}

// findCourse 按 ID（字符串比较）查找课程下标
func findCourse(courses []model.CourseSession, id string) int {
	for i := range courses {
		if courses[i].ID.String() == id {
			return i
		}
	}
	return -1
}
