package service

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"strings"
	"testing"

	"go.uber.org/zap"

	"schedule-visualizer/backend/internal/dto"
	"schedule-visualizer/backend/internal/repository"
)

func setupTestSavedScheduleService() (*savedScheduleService, *repository.Repository) {
	repo := newTestRepo()
	svc := NewSavedScheduleService(repo, NewWorkspaceLocks(), zap.NewNop()).(*savedScheduleService)
	svc.now = fixedClock
	return svc, repo
}

// ── Save ──

func TestSavedScheduleService_Save(t *testing.T) {
	svc, repo := setupTestSavedScheduleService()
	ctx := context.Background()
	seedCourses(t, repo,
		session("a", "CS101", "A", []string{"M"}, "08:00", "09:00", "R1"),
		session("b", "CS101", "A", []string{"W"}, "08:00", "09:00", "R1"),
		session("c", "IT332", "G1", []string{"TH"}, "08:00", "10:00", "R2"),
	)

	saved, err := svc.Save(ctx, testWorkspace, &dto.SaveScheduleRequest{Name: " Plan A "})
	if err != nil {
		t.Fatalf("Save 失败: %v", err)
	}
	if saved.Name != "Plan A" || saved.CourseCount != 3 || saved.UniqueCourseCount != 2 {
		t.Errorf("快照统计错误：%+v", saved)
	}
	if !saved.CreatedAt.Equal(fixedClock()) {
		t.Errorf("期望 createdAt=%v，实际 %v", fixedClock(), saved.CreatedAt)
	}

	// 快照与当前列表互不影响
	seedCourses(t, repo, session("z", "ENG101", "", []string{"F"}, "10:00", "11:00", ""))
	got, _ := svc.Get(ctx, testWorkspace, saved.ID.String())
	if len(got.Courses) != 3 {
		t.Errorf("修改当前列表不应影响快照，实际 %d 条", len(got.Courses))
	}
}

func TestSavedScheduleService_Save_Validation(t *testing.T) {
	svc, _ := setupTestSavedScheduleService()
	ctx := context.Background()

	if _, err := svc.Save(ctx, testWorkspace, &dto.SaveScheduleRequest{Name: "   "}); !errors.Is(err, ErrScheduleNameRequired) {
		t.Errorf("期望 ErrScheduleNameRequired，实际 %v", err)
	}
	if _, err := svc.Save(ctx, testWorkspace, &dto.SaveScheduleRequest{Name: "Empty"}); !errors.Is(err, ErrScheduleNoCourses) {
		t.Errorf("期望 ErrScheduleNoCourses，实际 %v", err)
	}
}

func TestSavedScheduleService_Save_NameCollision(t *testing.T) {
	svc, repo := setupTestSavedScheduleService()
	ctx := context.Background()
	seedSchedules(t, repo,
		snapshot("s1", "Other", session("x", "PE101", "", []string{"S"}, "07:00", "09:00", "")),
		snapshot("s2", "Plan A", session("y", "CS101", "", []string{"M"}, "08:00", "09:00", "")),
	)
	seedCourses(t, repo, session("a", "IT332", "G1", []string{"TH"}, "08:00", "10:00", "R2"))

	if _, err := svc.Save(ctx, testWorkspace, &dto.SaveScheduleRequest{Name: "plan a"}); !errors.Is(err, ErrScheduleNameExists) {
		t.Fatalf("同名（不区分大小写）期望 ErrScheduleNameExists，实际 %v", err)
	}

	saved, err := svc.Save(ctx, testWorkspace, &dto.SaveScheduleRequest{Name: "plan a", Replace: true})
	if err != nil {
		t.Fatalf("Save(replace) 失败: %v", err)
	}

	list, _ := repo.SavedSchedule.List(ctx, testWorkspace)
	if len(list) != 2 {
		t.Fatalf("覆盖后期望 2 个快照，实际 %d", len(list))
	}
	if list[0].ID != saved.ID || list[0].Name != "plan a" || list[1].ID != "s1" {
		t.Errorf("覆盖的快照应置于最前：%s, %s", list[0].Name, list[1].Name)
	}
}

// ── Load / Delete ──

func TestSavedScheduleService_LoadAndDelete(t *testing.T) {
	svc, repo := setupTestSavedScheduleService()
	ctx := context.Background()
	seedSchedules(t, repo, snapshot("s1", "Plan A",
		session("a", "CS101", "A", []string{"M", "W"}, "08:00", "09:00", "R1")))
	seedCourses(t, repo, session("z", "ENG101", "", []string{"F"}, "10:00", "11:00", ""))

	resp, err := svc.Load(ctx, testWorkspace, "s1")
	if err != nil {
		t.Fatalf("Load 失败: %v", err)
	}
	if resp.Name != "Plan A" || len(resp.Courses) != 1 || resp.Courses[0].Code != "CS101" {
		t.Errorf("加载结果错误：%+v", resp)
	}

	current, _ := repo.Course.List(ctx, testWorkspace)
	if len(current) != 1 || current[0].Code != "CS101" {
		t.Errorf("加载应替换当前课程列表：%+v", current)
	}

	// 修改当前列表后快照不变
	current[0].Days[0] = "F"
	_ = repo.Course.Replace(ctx, testWorkspace, current)
	sc, _ := svc.Get(ctx, testWorkspace, "s1")
	if sc.Courses[0].Days[0] != "M" {
		t.Error("加载必须深拷贝快照")
	}

	if _, err := svc.Load(ctx, testWorkspace, "nope"); !errors.Is(err, ErrScheduleNotFound) {
		t.Errorf("期望 ErrScheduleNotFound，实际 %v", err)
	}

	if err := svc.Delete(ctx, testWorkspace, "s1"); err != nil {
		t.Fatalf("Delete 失败: %v", err)
	}
	if err := svc.Delete(ctx, testWorkspace, "s1"); !errors.Is(err, ErrScheduleNotFound) {
		t.Errorf("重复删除期望 ErrScheduleNotFound，实际 %v", err)
	}
	summaries, _ := svc.List(ctx, testWorkspace)
	if len(summaries) != 0 {
		t.Errorf("删除后期望为空，实际 %d", len(summaries))
	}
}

// ── Build ──

func TestSavedScheduleService_Build(t *testing.T) {
	svc, repo := setupTestSavedScheduleService()
	ctx := context.Background()
	seedSchedules(t, repo,
		snapshot("s1", "Morning",
			session("a1", "CS101", "A", []string{"M"}, "08:00", "09:00", "R1"),
			session("a2", "CS101", "A", []string{"W"}, "08:00", "09:00", "R1"),
			session("a3", "CS101", "B", []string{"T"}, "08:00", "09:00", "R1")),
		snapshot("s2", "Afternoon",
			session("b1", "IT332", "G1", []string{"M"}, "08:30", "10:00", "R2"),
			session("b2", "MATH201", "", []string{"F"}, "13:00", "14:00", "R3")),
	)
	seedCourses(t, repo, session("c1", "PE101", "", []string{"S"}, "07:00", "09:00", "Field"))

	resp, err := svc.Build(ctx, testWorkspace, &dto.BuildScheduleRequest{
		Name: "Mixed",
		Picks: []dto.CoursePick{
			{ScheduleID: "s1", Code: "cs101", Section: "A"},
			{ScheduleID: "s2", Code: "IT332"},
			{ScheduleID: dto.CurrentSource, Code: "PE101"},
		},
	})
	if err != nil {
		t.Fatalf("Build 失败: %v", err)
	}
	if len(resp.Courses) != 4 {
		t.Fatalf("期望 4 条记录（CS101-A ×2、IT332、PE101），实际 %d", len(resp.Courses))
	}
	if resp.Saved == nil || resp.Saved.Name != "Mixed" || resp.Saved.UniqueCourseCount != 3 {
		t.Errorf("拼装结果应保存为新快照：%+v", resp.Saved)
	}
	if len(resp.Conflicts) != 1 || resp.Conflicts[0].Day != "M" {
		t.Errorf("期望周一 CS101 与 IT332 冲突 1 处，实际 %+v", resp.Conflicts)
	}

	list, _ := repo.SavedSchedule.List(ctx, testWorkspace)
	if len(list) != 3 || list[2].Name != "Mixed" {
		t.Errorf("拼装快照应追加到末尾：%d", len(list))
	}
	current, _ := repo.Course.List(ctx, testWorkspace)
	if len(current) != 1 {
		t.Error("未设 use_as_current 时不应修改当前课程列表")
	}
}

func TestSavedScheduleService_Build_BaseRemoveUseAsCurrent(t *testing.T) {
	svc, repo := setupTestSavedScheduleService()
	ctx := context.Background()
	seedSchedules(t, repo,
		snapshot("s1", "Morning",
			session("a1", "CS101", "A", []string{"M"}, "08:00", "09:00", "R1"),
			session("a2", "ENG101", "", []string{"T"}, "10:00", "11:00", "R1")),
		snapshot("s2", "Alt",
			session("b1", "ENG101", "", []string{"W"}, "15:00", "16:00", "R4")),
	)

	resp, err := svc.Build(ctx, testWorkspace, &dto.BuildScheduleRequest{
		Base:         "s1",
		Remove:       []dto.CourseRef{{Code: "ENG101"}},
		Picks:        []dto.CoursePick{{ScheduleID: "s2", Code: "ENG101"}},
		UseAsCurrent: true,
	})
	if err != nil {
		t.Fatalf("Build 失败: %v", err)
	}
	if resp.Saved != nil {
		t.Error("未提供名称时不应保存快照")
	}

	current, _ := repo.Course.List(ctx, testWorkspace)
	if len(current) != 2 {
		t.Fatalf("期望当前列表 2 条，实际 %d", len(current))
	}
	if current[1].Code != "ENG101" || !slices.Equal(current[1].Days, []string{"W"}) {
		t.Errorf("ENG101 应被替换为 Alt 中的时间：%+v", current[1])
	}
	if current[0].ID == "a1" {
		t.Error("拼装结果应重新分配 ID")
	}
}

func TestSavedScheduleService_Build_Errors(t *testing.T) {
	svc, repo := setupTestSavedScheduleService()
	ctx := context.Background()
	seedSchedules(t, repo, snapshot("s1", "Morning",
		session("a1", "CS101", "A", []string{"M"}, "08:00", "09:00", "R1")))

	if _, err := svc.Build(ctx, testWorkspace, &dto.BuildScheduleRequest{
		Picks: []dto.CoursePick{{ScheduleID: "s1", Code: "CS101"}},
	}); !errors.Is(err, ErrBuildNoTarget) {
		t.Errorf("期望 ErrBuildNoTarget，实际 %v", err)
	}
	if _, err := svc.Build(ctx, testWorkspace, &dto.BuildScheduleRequest{
		Name:  "X",
		Picks: []dto.CoursePick{{ScheduleID: "missing", Code: "CS101"}},
	}); !errors.Is(err, ErrScheduleNotFound) {
		t.Errorf("期望 ErrScheduleNotFound，实际 %v", err)
	}
	if _, err := svc.Build(ctx, testWorkspace, &dto.BuildScheduleRequest{
		Name:  "X",
		Picks: []dto.CoursePick{{ScheduleID: "s1", Code: "NOPE999"}},
	}); !errors.Is(err, ErrBuildEmpty) {
		t.Errorf("期望 ErrBuildEmpty，实际 %v", err)
	}
	if _, err := svc.Build(ctx, testWorkspace, &dto.BuildScheduleRequest{
		Name:  "morning",
		Picks: []dto.CoursePick{{ScheduleID: "s1", Code: "CS101"}},
	}); !errors.Is(err, ErrScheduleNameExists) {
		t.Errorf("期望 ErrScheduleNameExists，实际 %v", err)
	}
}

// ── Export / Import ──

func TestSavedScheduleService_Export(t *testing.T) {
	svc, repo := setupTestSavedScheduleService()
	ctx := context.Background()

	if _, err := svc.Export(ctx, testWorkspace); !errors.Is(err, ErrScheduleExportEmpty) {
		t.Errorf("无快照时期望 ErrScheduleExportEmpty，实际 %v", err)
	}

	seedSchedules(t, repo, snapshot("s1", "Plan A",
		session("a1", "CS101", "A", []string{"M"}, "08:00", "09:00", "R1")))
	doc, err := svc.Export(ctx, testWorkspace)
	if err != nil {
		t.Fatalf("Export 失败: %v", err)
	}
	if doc.Version != "1.0" || len(doc.Schedules) != 1 {
		t.Errorf("导出文档错误：%+v", doc)
	}

	body, contentType, filename, err := EncodeExport(doc, ExportFormatJSON)
	if err != nil {
		t.Fatalf("EncodeExport 失败: %v", err)
	}
	if contentType != "application/json" || filename != "schedules_export_2025-03-10.json" {
		t.Errorf("期望 application/json 与 schedules_export_2025-03-10.json，实际 %s / %s", contentType, filename)
	}
	var generic map[string]interface{}
	if err := json.Unmarshal(body, &generic); err != nil {
		t.Fatalf("导出内容应为合法 JSON: %v", err)
	}
	for _, key := range []string{"exportedAt", "version", "schedules"} {
		if _, ok := generic[key]; !ok {
			t.Errorf("导出文档缺少字段 %s", key)
		}
	}

	_, contentType, filename, err = EncodeExport(doc, ExportFormatYAML)
	if err != nil || contentType != "application/yaml" || !strings.HasSuffix(filename, ".yaml") {
		t.Errorf("YAML 导出错误：%s / %s / %v", contentType, filename, err)
	}
}

func TestSavedScheduleService_ExportImportRoundTrip(t *testing.T) {
	for _, format := range []string{ExportFormatJSON, ExportFormatYAML} {
		t.Run(format, func(t *testing.T) {
			src, srcRepo := setupTestSavedScheduleService()
			ctx := context.Background()
			seedSchedules(t, srcRepo,
				snapshot("s1", "Plan A",
					session("a1", "CS101", "A", []string{"M", "W"}, "08:00", "09:00", "R1"),
					session("a2", "IT332", "G1", []string{"TH"}, "13:00", "15:00", "Online")),
				snapshot("s2", "Plan B"),
			)

			doc, err := src.Export(ctx, testWorkspace)
			if err != nil {
				t.Fatalf("Export 失败: %v", err)
			}
			body, _, _, err := EncodeExport(doc, format)
			if err != nil {
				t.Fatalf("EncodeExport 失败: %v", err)
			}

			dst, dstRepo := setupTestSavedScheduleService()
			resp, err := dst.Import(ctx, testWorkspace, body)
			if err != nil {
				t.Fatalf("Import 失败: %v", err)
			}
			if resp.Imported != 2 || len(resp.Renamed) != 0 {
				t.Errorf("期望导入 2 个且无重命名，实际 %d / %v", resp.Imported, resp.Renamed)
			}

			got, _ := dstRepo.SavedSchedule.List(ctx, testWorkspace)
			if len(got) != 2 {
				t.Fatalf("期望 2 个快照，实际 %d", len(got))
			}
			for i, want := range doc.Schedules {
				g := got[i]
				if g.Name != want.Name || len(g.Courses) != len(want.Courses) {
					t.Errorf("第 %d 个快照名称或课程数不一致：%s/%d vs %s/%d", i, g.Name, len(g.Courses), want.Name, len(want.Courses))
					continue
				}
				if g.ID == want.ID {
					t.Error("导入应重新生成 ID")
				}
				if g.ImportedAt == nil || !g.ImportedAt.Equal(fixedClock()) {
					t.Errorf("导入应标记 importedAt，实际 %v", g.ImportedAt)
				}
				for j := range want.Courses {
					a, b := g.Courses[j], want.Courses[j]
					if a.Code != b.Code || a.Section != b.Section || a.StartTime != b.StartTime ||
						a.EndTime != b.EndTime || a.Room != b.Room || !slices.Equal(a.Days, b.Days) {
						t.Errorf("课程不一致：%+v vs %+v", a, b)
					}
				}
			}
		})
	}
}

func TestSavedScheduleService_Import_RenamesAndFilters(t *testing.T) {
	svc, repo := setupTestSavedScheduleService()
	ctx := context.Background()
	seedSchedules(t, repo, snapshot("s1", "Plan A"))

	body := []byte(`{
		"schedules": [
			{"id": 1718000000000.123, "name": "Plan A", "courses": [{"id": 1, "code": "CS101", "days": ["M"], "startTime": "08:00", "endTime": "09:00"}]},
			{"name": "plan a", "courses": []},
			{"name": "", "courses": []},
			{"name": "No courses"},
			{"name": "Null courses", "courses": null},
			{"name": "Broken", "courses": "oops"},
			{"name": "Plan A", "courses": []}
		]
	}`)
	resp, err := svc.Import(ctx, testWorkspace, body)
	if err != nil {
		t.Fatalf("Import 失败: %v", err)
	}
	if resp.Imported != 3 {
		t.Fatalf("期望导入 3 个有效快照，实际 %d", resp.Imported)
	}

	list, _ := repo.SavedSchedule.List(ctx, testWorkspace)
	names := make([]string, 0, len(list))
	for _, sc := range list {
		names = append(names, sc.Name)
	}
	want := []string{"Plan A", "Plan A (imported)", "plan a", "Plan A (imported) (imported)"}
	if !slices.Equal(names, want) {
		t.Errorf("重命名规则错误（区分大小写），期望 %v，实际 %v", want, names)
	}
	if len(resp.Renamed) != 2 {
		t.Errorf("期望 2 个重命名，实际 %v", resp.Renamed)
	}
	if list[1].Courses[0].Code != "CS101" {
		t.Errorf("旧版数值 ID 的课程应可导入：%+v", list[1].Courses)
	}
}

func TestSavedScheduleService_Import_InvalidFormat(t *testing.T) {
	svc, _ := setupTestSavedScheduleService()
	ctx := context.Background()

	invalid := []string{
		`not json at all: [`,
		`{"version": "1.0"}`,
		`{"schedules": {"name": "x"}}`,
		`[{"name": "x", "courses": []}]`,
	}
	for _, body := range invalid {
		if _, err := svc.Import(ctx, testWorkspace, []byte(body)); !errors.Is(err, ErrImportInvalidFormat) {
			t.Errorf("%q 期望 ErrImportInvalidFormat，实际 %v", body, err)
		}
	}

	if _, err := svc.Import(ctx, testWorkspace, []byte(`{"schedules": [{"name": ""}]}`)); !errors.Is(err, ErrImportNoValidSchedules) {
		t.Errorf("期望 ErrImportNoValidSchedules，实际 %v", err)
	}
}
