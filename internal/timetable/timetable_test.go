package timetable

import (
	"testing"

	"schedule-visualizer/backend/internal/model"
)

func session(id, code, section string, days []string, start, end, room string) model.CourseSession {
	return model.CourseSession{
		ID: model.ID(id), Code: code, Section: section, Days: days,
		StartTime: start, EndTime: end, Room: room,
	}
}

func TestBuildGrid_PlacesSessions(t *testing.T) {
	sessions := []model.CourseSession{
		session("1", "CS101", "G1", []string{"M", "W"}, "08:15", "09:45", "NGE101"),
		session("2", "IT332", "", []string{"TH"}, "13:30", "15:00", "Online"),
		{ID: "3", Code: "PE101", Days: []string{}, IsTBA: true},
	}
	g := BuildGrid(sessions, DefaultGridOptions())

	if len(g.Days) != 7 || g.Days[0] != "Monday" || g.Days[6] != "Sunday" {
		t.Errorf("期望 7 列（周一~周日），实际 %v", g.Days)
	}
	if len(g.Slots) != 30 {
		t.Errorf("期望 30 个半小时行，实际 %d", len(g.Slots))
	}
	if g.Slots[0].Label != "7:00 AM" || g.Slots[29].Label != "9:30 PM" {
		t.Errorf("行标签错误：%s / %s", g.Slots[0].Label, g.Slots[29].Label)
	}
	if len(g.Placements) != 3 {
		t.Fatalf("期望 3 个放置（待定跳过），实际 %d", len(g.Placements))
	}

	cell := g.Cell("Monday", 8, 0)
	if len(cell) != 1 {
		t.Fatalf("Monday 8:00 应有 1 个放置，实际 %d", len(cell))
	}
	p := cell[0]
	if p.TopOffset != 0.5 || p.HeightSlots != 3 {
		t.Errorf("期望偏移 0.5、高度 3 格，实际 %v / %v", p.TopOffset, p.HeightSlots)
	}

	online := g.Cell("Thursday", 13, 30)
	if len(online) != 1 || !online[0].Online || online[0].ColorIndex != 1 {
		t.Errorf("Thursday 13:30 放置错误：%+v", online)
	}
	if len(g.Unplaced) != 0 {
		t.Errorf("不应有无法放置的记录，实际 %v", g.Unplaced)
	}
}

func TestBuildGrid_UnparsableAndOutOfRange(t *testing.T) {
	sessions := []model.CourseSession{
		session("1", "CS101", "", []string{"M"}, "TBA", "LATER", ""),
		session("2", "CS102", "", []string{"M"}, "06:00", "07:00", ""),
		session("3", "CS103", "", []string{"TBA"}, "08:00", "09:00", ""),
	}
	g := BuildGrid(sessions, DefaultGridOptions())
	if len(g.Placements) != 0 {
		t.Errorf("期望无放置，实际 %d", len(g.Placements))
	}
	if len(g.Unplaced) != 3 {
		t.Errorf("期望 3 条无法放置，实际 %v", g.Unplaced)
	}
}

func TestBuildGrid_InvalidOptionsUseDefault(t *testing.T) {
	g := BuildGrid(nil, GridOptions{StartHour: 10, EndHour: 10})
	if len(g.Slots) != 30 {
		t.Errorf("非法参数应回落默认范围，实际 %d 行", len(g.Slots))
	}
}

func TestColorIndex_FirstSeenOrder(t *testing.T) {
	var sessions []model.CourseSession
	for _, code := range []string{"A101", "B101", "A101", "C101", "D101", "E101", "F101", "G101", "H101", "I101", "J101", "K101"} {
		sessions = append(sessions, model.CourseSession{Code: code})
	}
	idx := ColorIndex(sessions)
	if idx["A101"] != 0 || idx["B101"] != 1 || idx["C101"] != 2 {
		t.Errorf("配色应按首次出现顺序分配：%v", idx)
	}
	if idx["K101"] != 0 {
		t.Errorf("超过调色板长度应循环，实际 %d", idx["K101"])
	}
}

func TestFindConflict(t *testing.T) {
	existing := []model.CourseSession{
		session("1", "CS101", "", []string{"M", "W"}, "08:00", "10:00", ""),
		session("2", "IT332", "", []string{"T"}, "13:00", "14:00", ""),
	}

	c, ok := FindConflict(session("3", "MATH201", "", []string{"W"}, "09:30", "11:00", ""), existing)
	if !ok || c.Day != "W" || c.Other.Code != "CS101" {
		t.Errorf("期望与 CS101 在 W 冲突，实际 %+v / %v", c, ok)
	}

	// 首尾相接不算冲突
	if _, ok := FindConflict(session("4", "MATH202", "", []string{"M"}, "10:00", "11:00", ""), existing); ok {
		t.Error("10:00 开始不应与 08:00-10:00 冲突")
	}
	// 同代码不算冲突
	if _, ok := FindConflict(session("5", "CS101", "G2", []string{"M"}, "08:00", "10:00", ""), existing); ok {
		t.Error("同代码不应视为冲突")
	}
	// 待定不算冲突
	tba := session("6", "PE101", "", []string{"M"}, "08:00", "10:00", "")
	tba.IsTBA = true
	if _, ok := FindConflict(tba, existing); ok {
		t.Error("待定记录不应视为冲突")
	}
}

func TestConflicts(t *testing.T) {
	a := []model.CourseSession{
		session("1", "CS101", "", []string{"M"}, "08:00", "10:00", ""),
		session("2", "CS102", "", []string{"F"}, "08:00", "10:00", ""),
	}
	b := []model.CourseSession{
		session("3", "IT101", "", []string{"M", "F"}, "09:00", "09:30", ""),
	}
	got := Conflicts(a, b)
	if len(got) != 2 {
		t.Fatalf("期望 2 处冲突，实际 %d", len(got))
	}
	if got[0].Day != "M" || got[1].Day != "F" {
		t.Errorf("冲突星期错误：%s / %s", got[0].Day, got[1].Day)
	}
}

func TestLegend(t *testing.T) {
	tba := model.CourseSession{Code: "PE101", IsTBA: true}
	sessions := []model.CourseSession{
		session("1", "CS101", "G1", []string{"M"}, "08:00", "09:00", "NGE101"),
		session("2", "CS101", "G1", []string{"W"}, "08:00", "09:00", "Online"),
		session("3", "CS101", "G2", []string{"F"}, "08:00", "09:00", ""),
		tba,
	}
	got := Legend(sessions)
	if len(got) != 3 {
		t.Fatalf("期望 3 个图例项，实际 %d", len(got))
	}
	if got[0].Section != "G1" || got[1].Section != "G2" || !got[0].Online || !got[1].Online {
		t.Errorf("图例错误：%+v", got)
	}
	if got[2].Code != "PE101" || !got[2].TBA || got[2].ColorIndex != 1 {
		t.Errorf("待定图例错误：%+v", got[2])
	}
}

func TestTotalHours(t *testing.T) {
	tba := session("3", "PE101", "", nil, "08:00", "17:00", "")
	tba.IsTBA = true
	sessions := []model.CourseSession{
		session("1", "CS101", "", []string{"M"}, "08:00", "09:30", ""),
		session("2", "CS102", "", []string{"T"}, "13:00", "13:20", ""),
		tba,
		session("4", "CS103", "", []string{"W"}, "", "", ""),
	}
	if got := TotalHours(sessions); got != 1.8 {
		t.Errorf("期望 1.8 小时，实际 %v", got)
	}
}

func TestMergeAndRemoveCourse(t *testing.T) {
	src1 := []model.CourseSession{
		session("1", "CS101", "G1", []string{"M"}, "08:00", "09:00", ""),
		session("2", "CS101", "G2", []string{"T"}, "08:00", "09:00", ""),
	}
	src2 := []model.CourseSession{
		session("3", "CS101", "G1", []string{"M"}, "08:00", "09:00", ""),
		session("4", "CS101", "G1", []string{"W"}, "08:00", "09:00", ""),
	}

	got := MergeCourse(nil, [][]model.CourseSession{src1, src2}, "CS101", "G1")
	if len(got) != 2 {
		t.Fatalf("期望合并后 2 条（相同记录去重），实际 %d", len(got))
	}

	again := MergeCourse(got, [][]model.CourseSession{src1}, "CS101", "G1")
	if len(again) != 2 {
		t.Errorf("已存在的课程不应重复添加，实际 %d", len(again))
	}

	all := MergeCourse(nil, [][]model.CourseSession{src1}, "CS101", "")
	if len(all) != 2 {
		t.Errorf("不指定班级时应取全部班级，实际 %d", len(all))
	}

	left := RemoveCourse(all, "CS101", "G2")
	if len(left) != 1 || left[0].Section != "G1" {
		t.Errorf("移除 G2 后应只剩 G1，实际 %+v", left)
	}
	if len(RemoveCourse(all, "CS101", "")) != 0 {
		t.Error("不指定班级应移除全部")
	}

	got[0].Days[0] = "X"
	if src1[0].Days[0] != "M" {
		t.Error("合并结果不应与来源共享切片")
	}
}

func TestFormatHelpers(t *testing.T) {
	cases := map[string]string{"14:00": "2:00 PM", "00:30": "12:30 AM", "12:00": "12:00 PM", "09:05": "9:05 AM", "": ""}
	for in, want := range cases {
		if got := FormatTimeDisplay(in); got != want {
			t.Errorf("FormatTimeDisplay(%q) 期望 %q，实际 %q", in, want, got)
		}
	}
	if AbbreviateRoom("Caseroom 2") != "CASE" || AbbreviateRoom("online lec") != "ONLINE" || AbbreviateRoom("NGE207") != "NGE207" {
		t.Error("AbbreviateRoom 结果错误")
	}
}
