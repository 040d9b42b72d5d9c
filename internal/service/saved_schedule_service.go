package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"schedule-visualizer/backend/internal/dto"
	"schedule-visualizer/backend/internal/model"
	"schedule-visualizer/backend/internal/repository"
	"schedule-visualizer/backend/internal/timetable"
)

// ── 快照模块业务错误 ──

var (
	ErrScheduleNotFound       = errors.New("课表快照不存在")
	ErrScheduleNameRequired   = errors.New("快照名称不能为空")
	ErrScheduleNameExists     = errors.New("已存在同名快照")
	ErrScheduleNoCourses      = errors.New("当前课程列表为空，无法保存")
	ErrScheduleExportEmpty    = errors.New("没有可导出的快照")
	ErrImportInvalidFormat    = errors.New("导入文件格式无效：缺少 schedules 数组")
	ErrImportNoValidSchedules = errors.New("导入文件中没有有效的快照")
	ErrBuildEmpty             = errors.New("拼装结果为空")
	ErrBuildNoTarget          = errors.New("拼装结果需要保存名称或设为当前课表")
)

// importedSuffix 导入重名时追加的后缀
const importedSuffix = " (imported)"

// 导出格式
const (
	ExportFormatJSON = "json"
	ExportFormatYAML = "yaml"
)

// ── SavedScheduleService 接口 ───────────────────────────────
//
// 设计说明：
//   - 快照保存当前课程列表的深拷贝，与之后的修改互不影响
//   - 同名（不区分大小写）保存需显式 replace，覆盖后置于列表最前
//   - 导入按名称（区分大小写）去重，重名追加 " (imported)" 直到唯一，追加到列表末尾
//   - 拼装：从多个课表挑选 代码+班级，合并去重后保存为新快照或设为当前课表
// ─────────────────────────────────────────────────────────────

// SavedScheduleService 快照模块业务接口
type SavedScheduleService interface {
	List(ctx context.Context, workspaceID string) ([]dto.ScheduleSummary, error)
	Get(ctx context.Context, workspaceID, id string) (*model.SavedSchedule, error)
	// Save 将当前课程列表保存为命名快照
	Save(ctx context.Context, workspaceID string, req *dto.SaveScheduleRequest) (*model.SavedSchedule, error)
	// Load 用快照替换当前课程列表
	Load(ctx context.Context, workspaceID, id string) (*dto.LoadScheduleResponse, error)
	Delete(ctx context.Context, workspaceID, id string) error
	// Build 拼装课表
	Build(ctx context.Context, workspaceID string, req *dto.BuildScheduleRequest) (*dto.BuildScheduleResponse, error)
	// Export 导出全部快照
	Export(ctx context.Context, workspaceID string) (*model.ExportDocument, error)
	// Import 导入快照文件（JSON 或 YAML）
	Import(ctx context.Context, workspaceID string, data []byte) (*dto.ImportSchedulesResponse, error)
}

type savedScheduleService struct {
	repo   *repository.Repository
	locks  *WorkspaceLocks
	now    func() time.Time
	logger *zap.Logger
}

// NewSavedScheduleService 创建 SavedScheduleService 实例
func NewSavedScheduleService(repo *repository.Repository, locks *WorkspaceLocks, logger *zap.Logger) SavedScheduleService {
	return &savedScheduleService{repo: repo, locks: locks, now: time.Now, logger: logger}
}

func (s *savedScheduleService) List(ctx context.Context, workspaceID string) ([]dto.ScheduleSummary, error) {
	schedules, err := s.repo.SavedSchedule.List(ctx, workspaceID)
	if err != nil {
		s.logger.Error("读取快照列表失败", zap.String("workspace_id", workspaceID), zap.Error(err))
		return nil, err
	}
	return summarize(schedules), nil
}

func (s *savedScheduleService) Get(ctx context.Context, workspaceID, id string) (*model.SavedSchedule, error) {
	schedules, err := s.repo.SavedSchedule.List(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	idx := findSchedule(schedules, id)
	if idx < 0 {
		return nil, ErrScheduleNotFound
	}
	return &schedules[idx], nil
}

// ════════════════════════════════════════════════════════════
// Save / Load / Delete
// ════════════════════════════════════════════════════════════

func (s *savedScheduleService) Save(ctx context.Context, workspaceID string, req *dto.SaveScheduleRequest) (*model.SavedSchedule, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrScheduleNameRequired
	}

	unlock := s.locks.Lock(workspaceID)
	defer unlock()

	courses, err := s.repo.Course.List(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if len(courses) == 0 {
		return nil, ErrScheduleNoCourses
	}

	schedules, err := s.repo.SavedSchedule.List(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if idx := findScheduleByName(schedules, name); idx >= 0 {
		if !req.Replace {
			return nil, ErrScheduleNameExists
		}
		schedules = append(schedules[:idx], schedules[idx+1:]...)
	}

	snapshot := model.NewSavedSchedule(name, courses, s.now())
	schedules = append([]model.SavedSchedule{snapshot}, schedules...)
	if err := s.repo.SavedSchedule.Replace(ctx, workspaceID, schedules); err != nil {
		s.logger.Error("写入快照列表失败", zap.String("workspace_id", workspaceID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("快照已保存",
		zap.String("workspace_id", workspaceID),
		zap.String("name", name),
		zap.Int("courses", snapshot.CourseCount),
		zap.Bool("replace", req.Replace))
	return &snapshot, nil
}

func (s *savedScheduleService) Load(ctx context.Context, workspaceID, id string) (*dto.LoadScheduleResponse, error) {
	unlock := s.locks.Lock(workspaceID)
	defer unlock()

	schedules, err := s.repo.SavedSchedule.List(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	idx := findSchedule(schedules, id)
	if idx < 0 {
		return nil, ErrScheduleNotFound
	}

	courses := model.CloneSessions(schedules[idx].Courses)
	if err := s.repo.Course.Replace(ctx, workspaceID, courses); err != nil {
		s.logger.Error("写入课程列表失败", zap.String("workspace_id", workspaceID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("快照已加载为当前课表",
		zap.String("workspace_id", workspaceID),
		zap.String("name", schedules[idx].Name))
	return &dto.LoadScheduleResponse{Name: schedules[idx].Name, Courses: courses}, nil
}

func (s *savedScheduleService) Delete(ctx context.Context, workspaceID, id string) error {
	unlock := s.locks.Lock(workspaceID)
	defer unlock()

	schedules, err := s.repo.SavedSchedule.List(ctx, workspaceID)
	if err != nil {
		return err
	}
	idx := findSchedule(schedules, id)
	if idx < 0 {
		return ErrScheduleNotFound
	}
	name := schedules[idx].Name
	schedules = append(schedules[:idx], schedules[idx+1:]...)
	if err := s.repo.SavedSchedule.Replace(ctx, workspaceID, schedules); err != nil {
		return err
	}

	s.logger.Info("快照已删除", zap.String("workspace_id", workspaceID), zap.String("name", name))
	return nil
}

// ════════════════════════════════════════════════════════════
// Build：拼装课表
// ════════════════════════════════════════════════════════════
//
// 流程：
//   1. 以 base 课表为起点（可选），移除 remove 中的课程
//   2. 按挑选顺序从来源课表（快照或 "current"）合并 代码+班级 的全部记录
//   3. 有名称时保存为新快照（追加到列表末尾，重名规则同 Save）
//   4. use_as_current 时替换当前课程列表

func (s *savedScheduleService) Build(ctx context.Context, workspaceID string, req *dto.BuildScheduleRequest) (*dto.BuildScheduleResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" && !req.UseAsCurrent {
		return nil, ErrBuildNoTarget
	}

	unlock := s.locks.Lock(workspaceID)
	defer unlock()

	built := make([]model.CourseSession, 0)
	if strings.TrimSpace(req.Base) != "" {
		base, _, err := loadSource(ctx, s.repo, workspaceID, req.Base)
		if err != nil {
			return nil, err
		}
		built = base
	}
	for _, ref := range req.Remove {
		built = timetable.RemoveCourse(built, strings.ToUpper(strings.TrimSpace(ref.Code)), strings.TrimSpace(ref.Section))
	}
	for _, pick := range req.Picks {
		source, _, err := loadSource(ctx, s.repo, workspaceID, pick.ScheduleID)
		if err != nil {
			return nil, err
		}
		code := strings.ToUpper(strings.TrimSpace(pick.Code))
		built = timetable.MergeCourse(built, [][]model.CourseSession{source}, code, strings.TrimSpace(pick.Section))
	}
	if len(built) == 0 {
		return nil, ErrBuildEmpty
	}
	// 合并结果来自不同课表，重新分配 ID 避免重复
	for i := range built {
		built[i].ID = model.NewID()
	}

	resp := &dto.BuildScheduleResponse{Courses: built}

	if name != "" {
		schedules, err := s.repo.SavedSchedule.List(ctx, workspaceID)
		if err != nil {
			return nil, err
		}
		if idx := findScheduleByName(schedules, name); idx >= 0 {
			if !req.Replace {
				return nil, ErrScheduleNameExists
			}
			schedules = append(schedules[:idx], schedules[idx+1:]...)
		}
		snapshot := model.NewSavedSchedule(name, built, s.now())
		schedules = append(schedules, snapshot)
		if err := s.repo.SavedSchedule.Replace(ctx, workspaceID, schedules); err != nil {
			return nil, err
		}
		resp.Saved = &snapshot
	}

	if req.UseAsCurrent {
		if err := s.repo.Course.Replace(ctx, workspaceID, model.CloneSessions(built)); err != nil {
			return nil, err
		}
	}

	resp.Conflicts = selfConflicts(built)
	s.logger.Info("课表已拼装",
		zap.String("workspace_id", workspaceID),
		zap.String("name", name),
		zap.Int("picks", len(req.Picks)),
		zap.Int("courses", len(built)),
		zap.Int("conflicts", len(resp.Conflicts)),
		zap.Bool("use_as_current", req.UseAsCurrent))
	return resp, nil
}

// ════════════════════════════════════════════════════════════
// Export / Import
// ════════════════════════════════════════════════════════════

func (s *savedScheduleService) Export(ctx context.Context, workspaceID string) (*model.ExportDocument, error) {
	schedules, err := s.repo.SavedSchedule.List(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if len(schedules) == 0 {
		return nil, ErrScheduleExportEmpty
	}
	return &model.ExportDocument{
		ExportedAt: s.now().UTC(),
		Version:    model.ExportVersion,
		Schedules:  schedules,
	}, nil
}

// EncodeExport 按格式编码导出文件，返回内容、Content-Type 与建议文件名
func EncodeExport(doc *model.ExportDocument, format string) ([]byte, string, string, error) {
	date := doc.ExportedAt.Format("2006-01-02")
	switch format {
	case ExportFormatYAML:
		out, err := yaml.Marshal(doc)
		if err != nil {
			return nil, "", "", fmt.Errorf("%w: %v", ErrExportGenerateFail, err)
		}
		return out, "application/yaml", fmt.Sprintf("schedules_export_%s.yaml", date), nil
	default:
		out, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, "", "", fmt.Errorf("%w: %v", ErrExportGenerateFail, err)
		}
		return out, "application/json", fmt.Sprintf("schedules_export_%s.json", date), nil
	}
}

func (s *savedScheduleService) Import(ctx context.Context, workspaceID string, data []byte) (*dto.ImportSchedulesResponse, error) {
	entries, err := decodeImportEntries(data)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(workspaceID)
	defer unlock()

	schedules, err := s.repo.SavedSchedule.List(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	names := make(map[string]bool, len(schedules))
	for _, sc := range schedules {
		names[sc.Name] = true
	}

	now := s.now()
	resp := &dto.ImportSchedulesResponse{Renamed: make([]string, 0), Items: make([]dto.ScheduleSummary, 0)}
	for _, raw := range entries {
		sc, ok := decodeImportEntry(raw)
		if !ok {
			continue
		}
		if names[sc.Name] {
			resp.Renamed = append(resp.Renamed, sc.Name)
			for names[sc.Name] {
				sc.Name += importedSuffix
			}
		}
		names[sc.Name] = true
		sc.ID = model.NewID()
		importedAt := now
		sc.ImportedAt = &importedAt

		schedules = append(schedules, sc)
		resp.Items = append(resp.Items, dto.NewScheduleSummary(&sc))
	}
	if len(resp.Items) == 0 {
		return nil, ErrImportNoValidSchedules
	}

	if err := s.repo.SavedSchedule.Replace(ctx, workspaceID, schedules); err != nil {
		s.logger.Error("写入快照列表失败", zap.String("workspace_id", workspaceID), zap.Error(err))
		return nil, err
	}
	resp.Imported = len(resp.Items)
	resp.Total = len(schedules)

	s.logger.Info("快照已导入",
		zap.String("workspace_id", workspaceID),
		zap.Int("imported", resp.Imported),
		zap.Int("renamed", len(resp.Renamed)))
	return resp, nil
}

// decodeImportEntries 取出 schedules 数组；JSON 失败时按 YAML 解析
func decodeImportEntries(data []byte) ([]json.RawMessage, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		var generic map[string]interface{}
		if yerr := yaml.Unmarshal(data, &generic); yerr != nil || generic == nil {
			return nil, ErrImportInvalidFormat
		}
		converted, cerr := json.Marshal(generic)
		if cerr != nil {
			return nil, ErrImportInvalidFormat
		}
		if err := json.Unmarshal(converted, &doc); err != nil {
			return nil, ErrImportInvalidFormat
		}
	}

	raw, ok := doc["schedules"]
	if !ok {
		return nil, ErrImportInvalidFormat
	}
	var entries []json.RawMessage
	if !bytes.HasPrefix(bytes.TrimSpace(raw), []byte("[")) {
		return nil, ErrImportInvalidFormat
	}
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, ErrImportInvalidFormat
	}
	return entries, nil
}

// decodeImportEntry 名称非空且 courses 存在（允许空数组）才视为有效
func decodeImportEntry(raw json.RawMessage) (model.SavedSchedule, bool) {
	var probe struct {
		Name    *string         `json:"name"`
		Courses json.RawMessage `json:"courses"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return model.SavedSchedule{}, false
	}
	if probe.Name == nil || *probe.Name == "" {
		return model.SavedSchedule{}, false
	}
	if len(probe.Courses) == 0 || string(bytes.TrimSpace(probe.Courses)) == "null" {
		return model.SavedSchedule{}, false
	}

	var sc model.SavedSchedule
	if err := json.Unmarshal(raw, &sc); err != nil {
		return model.SavedSchedule{}, false
	}
	if sc.Courses == nil {
		sc.Courses = make([]model.CourseSession, 0)
	}
	return sc, true
}

// ── 辅助函数 ──

// findScheduleByName 不区分大小写按名称查找
func findScheduleByName(schedules []model.SavedSchedule, name string) int {
	for i := range schedules {
		if strings.EqualFold(schedules[i].Name, name) {
			return i
		}
	}
	return -1
}

func summarize(schedules []model.SavedSchedule) []dto.ScheduleSummary {
	out := make([]dto.ScheduleSummary, 0, len(schedules))
	for i := range schedules {
		out = append(out, dto.NewScheduleSummary(&schedules[i]))
	}
	return out
}

// selfConflicts 列表内部两两冲突（每对只报一次）
func selfConflicts(sessions []model.CourseSession) []timetable.Conflict {
	out := make([]timetable.Conflict, 0)
	for i := range sessions {
		out = append(out, timetable.Conflicts(sessions[i:i+1], sessions[i+1:])...)
	}
	return out
}
