package parser

import (
	"slices"
	"testing"

	"schedule-visualizer/backend/internal/model"
)

// ════════════════════════════════════════════════════════════
// 表格版式
// ════════════════════════════════════════════════════════════

func TestParseTabular_SplitsDaysIntoSessions(t *testing.T) {
	got := ParseTabular(SplitLines(tabularSample))
	if len(got) != 2 {
		t.Fatalf("期望 2 条记录，实际 %d", len(got))
	}
	for i, day := range []string{"T", "S"} {
		s := got[i]
		if s.Code != "CS101" || s.Title != "Intro to CS" {
			t.Errorf("[%d] 期望 CS101/Intro to CS，实际 %s/%s", i, s.Code, s.Title)
		}
		if !slices.Equal(s.Days, []string{day}) {
			t.Errorf("[%d] 期望星期 [%s]，实际 %v", i, day, s.Days)
		}
		if s.StartTime != "08:00" || s.EndTime != "10:00" {
			t.Errorf("[%d] 期望 08:00-10:00，实际 %s-%s", i, s.StartTime, s.EndTime)
		}
		if s.Room != "NGE101" {
			t.Errorf("[%d] 期望教室 NGE101，实际 %s", i, s.Room)
		}
		if s.Section != "" || s.IsTBA {
			t.Errorf("[%d] 表格版式不应有班级号或待定标记", i)
		}
	}
}

func TestParseTabular_MultipleSegmentsAndRooms(t *testing.T) {
	text := "Subject Code\nDescription\nSchedule\n" +
		"IT332\nWeb Dev\n2\n1\n3\nNGE207, NGE208\nMon: 8:00AM - 9:00AM Wed: 1:00PM - 2:30PM"
	got := ParseTabular(SplitLines(text))
	if len(got) != 2 {
		t.Fatalf("期望 2 条记录，实际 %d", len(got))
	}
	if got[0].Days[0] != "M" || got[0].StartTime != "08:00" || got[0].Room != "NGE207" {
		t.Errorf("第 1 段解析错误：%+v", got[0])
	}
	if got[1].Days[0] != "W" || got[1].StartTime != "13:00" || got[1].EndTime != "14:30" || got[1].Room != "NGE208" {
		t.Errorf("第 2 段解析错误：%+v", got[1])
	}
}

func TestParseTabular_NoScheduleEmitsTBA(t *testing.T) {
	text := "Subject Code\nDescription\nSchedule\nCS101\nIntro\n3\n0\n3\nNGE101\nTBA"
	got := ParseTabular(SplitLines(text))
	if len(got) != 1 {
		t.Fatalf("期望 1 条记录，实际 %d", len(got))
	}
	if !got[0].IsTBA || len(got[0].Days) != 0 || got[0].Room != "NGE101" {
		t.Errorf("期望待定记录且教室为 NGE101，实际 %+v", got[0])
	}

	// 空行会被 SplitLines 丢弃，这里直接构造行切片
	lines := []string{"Subject Code", "Description", "Schedule", "CS101", "Intro", "3", "0", "3", "", "TBA"}
	got = ParseTabular(lines)
	if len(got) != 1 || got[0].Room != "TBA" {
		t.Errorf("无教室时应回落为 TBA，实际 %+v", got)
	}
}

func TestParseTabular_UnknownDayNamesKeepTimes(t *testing.T) {
	text := "Subject Code\nDescription\nSchedule\nCS101\nIntro\n3\n0\n3\nNGE101\nXyz: 8:00AM - 9:00AM"
	got := ParseTabular(SplitLines(text))
	if len(got) != 1 {
		t.Fatalf("期望 1 条记录，实际 %d", len(got))
	}
	if !slices.Equal(got[0].Days, []string{model.DayTBA}) || got[0].StartTime != "08:00" || got[0].IsTBA {
		t.Errorf("无法识别的星期名应得到 [TBA] 且保留时间，实际 %+v", got[0])
	}
}

func TestParseTabular_SkipsRowWithoutLetterAndDigit(t *testing.T) {
	text := "Subject Code\nDescription\nSchedule\n" +
		"TOTAL\nx\n0\n0\n0\nx\nx\n" +
		"CS101\nIntro\n3\n0\n3\nNGE101\nFri: 1:00PM - 2:00PM"
	got := ParseTabular(SplitLines(text))
	if len(got) != 1 || got[0].Code != "CS101" || got[0].Days[0] != "F" {
		t.Errorf("期望只保留 CS101，实际 %+v", got)
	}
}

// ════════════════════════════════════════════════════════════
// 块版式
// ════════════════════════════════════════════════════════════

func TestParseBlock_Sample(t *testing.T) {
	got := ParseBlock(SplitLines(blockSample))
	if len(got) != 1 {
		t.Fatalf("期望 1 条记录，实际 %d", len(got))
	}
	s := got[0]
	if s.Code != "IT332" || s.Section != "G1" || s.Title != "Web Dev" {
		t.Errorf("期望 IT332/G1/Web Dev，实际 %s/%s/%s", s.Code, s.Section, s.Title)
	}
	if !slices.Equal(s.Days, []string{"TH"}) {
		t.Errorf("期望星期 [TH]，实际 %v", s.Days)
	}
	if s.StartTime != "08:00" || s.EndTime != "10:00" {
		t.Errorf("期望 08:00-10:00，实际 %s-%s", s.StartTime, s.EndTime)
	}
	if s.Room != "NGE207" {
		t.Errorf("期望教室 NGE207，实际 %s", s.Room)
	}
}

func TestParseBlock_MultipleBlocks(t *testing.T) {
	got := ParseBlock(SplitLines(blockMultiSample))
	if len(got) != 5 {
		t.Fatalf("期望 5 条记录，实际 %d: %+v", len(got), got)
	}

	if !slices.Equal(got[0].Days, []string{"T", "TH"}) || got[0].Room != "NGE207" {
		t.Errorf("第 1 条错误：%+v", got[0])
	}
	if !slices.Equal(got[1].Days, []string{"M"}) || got[1].StartTime != "13:00" || got[1].Room != "NGE208" {
		t.Errorf("第 2 条错误：%+v", got[1])
	}

	// 无时间行的块 → 待定记录，保留班级与名称
	if got[2].Code != "IT101" || !got[2].IsTBA || got[2].Section != "G2" || got[2].Title != "Intro to Computing" {
		t.Errorf("第 3 条应为 IT101 待定记录：%+v", got[2])
	}

	// 组合班级号与多个学分行
	if got[3].Code != "CSIT210" || got[3].Section != "CCS-SAT-AM1" || got[3].Room != "RTL301" {
		t.Errorf("第 4 条错误：%+v", got[3])
	}
	if got[3].StartTime != "09:00" || got[3].EndTime != "12:00" {
		t.Errorf("第 4 条时间错误：%s-%s", got[3].StartTime, got[3].EndTime)
	}

	// 下一门课的代码不能被当作教室吞掉
	if got[4].Code != "IT102" || got[4].Section != "D3" {
		t.Errorf("第 5 条应为 IT102/D3：%+v", got[4])
	}
}

func TestParseBlock_RoomFallsBackToFirst(t *testing.T) {
	text := "IT332\nG1\nWeb Dev\nM 08:00 AM - 09:00 AM,\nW 08:00 AM - 09:00 AM,\nNGE207"
	got := ParseBlock(SplitLines(text))
	if len(got) != 2 {
		t.Fatalf("期望 2 条记录，实际 %d", len(got))
	}
	if got[1].Room != "NGE207" {
		t.Errorf("第 2 条应沿用第一个教室，实际 %q", got[1].Room)
	}
}

func TestParseBlock_UnparsableScheduleKeepsCourse(t *testing.T) {
	got := ParseBlock(SplitLines("IT332\nG1\nWeb Dev\nTH 8:00 AM - ,\nNGE207"))
	if len(got) != 1 {
		t.Fatalf("期望 1 条记录，实际 %d", len(got))
	}
	if got[0].Code != "IT332" || got[0].Section != "G1" || !got[0].IsTBA || got[0].StartTime != "" {
		t.Errorf("时间行无法解析时应保留待定记录，实际 %+v", got[0])
	}
}

// ════════════════════════════════════════════════════════════
// 门户版式
// ════════════════════════════════════════════════════════════

func TestParsePortal_ReusesFirstTimeAndRoom(t *testing.T) {
	got := ParsePortal(SplitLines(portalSample))
	if len(got) != 3 {
		t.Fatalf("期望 3 条记录，实际 %d: %+v", len(got), got)
	}

	// TTH 两天只有一个时间与教室：第二天沿用第一个
	for i, day := range []string{"T", "TH"} {
		s := got[i]
		if s.Code != "IT332" || s.Section != "G1" || s.Title != "Web Development" {
			t.Errorf("[%d] 基本字段错误：%+v", i, s)
		}
		if !slices.Equal(s.Days, []string{day}) {
			t.Errorf("[%d] 期望星期 [%s]，实际 %v", i, day, s.Days)
		}
		if s.StartTime != "08:00" || s.EndTime != "10:00" || s.Room != "NGE207" {
			t.Errorf("[%d] 期望 08:00-10:00 @NGE207，实际 %s-%s @%s", i, s.StartTime, s.EndTime, s.Room)
		}
	}

	tba := got[2]
	if tba.Code != "IT101" || !tba.IsTBA || !slices.Equal(tba.Days, []string{"TBA"}) {
		t.Errorf("无星期的记录应为 [TBA] 待定，实际 %+v", tba)
	}
}

func TestParsePortal_AbandonsRecordWithoutCode(t *testing.T) {
	text := "CCS\nBACHELOR OF SCIENCE IN IT\nnot a code\nCCS\nIT332\nWeb Dev\nM\n1:00 PM - 2:00 PM\nOnline"
	got := ParsePortal(SplitLines(text))
	if len(got) != 1 {
		t.Fatalf("期望 1 条记录，实际 %d", len(got))
	}
	if got[0].Code != "IT332" || got[0].Room != "Online" || got[0].StartTime != "13:00" {
		t.Errorf("解析错误：%+v", got[0])
	}
}

func TestParsePortal_CollegeCodeBeforeBachelor(t *testing.T) {
	text := "COE\nBACHELOR OF SCIENCE IN COMPUTER ENGINEERING\nCPE401\nMicroprocessors\nF\n7:30 AM - 9:00 AM\nNGE305"
	got := ParsePortal(SplitLines(text))
	if len(got) != 1 || got[0].Code != "CPE401" || got[0].StartTime != "07:30" {
		t.Errorf("解析错误：%+v", got)
	}
}

// ════════════════════════════════════════════════════════════
// 简单版式
// ════════════════════════════════════════════════════════════

func TestParseSimple(t *testing.T) {
	got := ParseSimple(SplitLines(simpleSample))
	if len(got) != 2 {
		t.Fatalf("期望 2 条记录（表头行跳过），实际 %d", len(got))
	}
	if got[0].Code != "CS101" || !slices.Equal(got[0].Days, []string{"M", "W", "F"}) {
		t.Errorf("第 1 条错误：%+v", got[0])
	}
	if got[0].StartTime != "08:00" || got[0].EndTime != "09:00" || got[0].Room != "NGE101" {
		t.Errorf("第 1 条时间/教室错误：%+v", got[0])
	}
	if got[1].Code != "IT332" || !slices.Equal(got[1].Days, []string{"TH"}) || got[1].Room != "Online" {
		t.Errorf("第 2 条错误：%+v", got[1])
	}
	if got[1].StartTime != "13:00" || got[1].EndTime != "15:00" {
		t.Errorf("第 2 条时间错误：%s-%s", got[1].StartTime, got[1].EndTime)
	}
}

func TestParseSimple_LooseCodeCleanup(t *testing.T) {
	got := ParseSimple([]string{"cs 102 Discrete Structures"})
	if len(got) != 1 || got[0].Code != "CS102" {
		t.Errorf("期望代码 CS102，实际 %+v", got)
	}
}

// 简单版式的星期扫描两条路径优先级不一致，这里固定现有行为
func TestExtractDaysFromText_Precedence(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		// 全称路径
		{"Monday Wednesday", []string{"M", "W"}},
		{"Thursday", []string{"TH"}},
		{"Tue Sat", []string{"T", "S"}},
		// 全称命中后不再看缩写
		{"FRI M W", []string{"F"}},
		// 缩写路径：含 TH 时丢弃 T
		{"T TH", []string{"TH"}},
		{"TTH", []string{"TH"}},
		// 缩写路径：含 SU 时丢弃 S
		{"S SU", []string{"SU"}},
		// 连写的缩写无法逐字识别
		{"MWF", []string{}},
		{"M W F", []string{"M", "W", "F"}},
		{"no days here", []string{}},
	}
	for _, c := range cases {
		if got := extractDaysFromText(c.in); !slices.Equal(got, c.want) {
			t.Errorf("extractDaysFromText(%q) 期望 %v，实际 %v", c.in, c.want, got)
		}
	}
}

// ════════════════════════════════════════════════════════════
// OCR 增量提取
// ════════════════════════════════════════════════════════════

func TestParseOCR_Basic(t *testing.T) {
	text := "COURSE CODE   COURSE TITLE   SCHEDULE\r\nCS101 Intro to Computing\r\nG1 M 8:00 AM - 10:00 AM NGE101\r\n"
	got := ParseOCR(text)
	if len(got) != 1 {
		t.Fatalf("期望 1 条记录，实际 %d: %+v", len(got), got)
	}
	s := got[0]
	if s.Code != "CS101" || s.Section != "G1" || s.Title != "Intro to Computing" {
		t.Errorf("基本字段错误：%+v", s)
	}
	if !slices.Equal(s.Days, []string{"M"}) || s.StartTime != "08:00" || s.EndTime != "10:00" || s.Room != "NGE101" {
		t.Errorf("时间/星期/教室错误：%+v", s)
	}
}

func TestParseOCR_DeduplicatesRepeatedRecords(t *testing.T) {
	block := "CS101 Intro to Computing\nG1 M 8:00 AM - 10:00 AM NGE101\n"
	got := ParseOCR(block + block)
	if len(got) != 1 {
		t.Errorf("相同 (代码, 开始时间, 星期) 只应保留 1 条，实际 %d", len(got))
	}
}

func TestParseOCR_DaysWithoutTimes(t *testing.T) {
	got := ParseOCR("IT 332 Web Dev\nM W F\nIT332 again")
	if len(got) != 1 {
		t.Fatalf("期望 1 条记录，实际 %d: %+v", len(got), got)
	}
	if got[0].Code != "IT332" || !slices.Equal(got[0].Days, []string{"M", "W", "F"}) || got[0].StartTime != "" {
		t.Errorf("解析错误：%+v", got[0])
	}
}

func TestParseOCR_PairsDaysWithRanges(t *testing.T) {
	got := ParseOCR("MATH201 Calculus\nT 8:00 AM - 9:00 AM\nTH 1:00 PM - 2:00 PM")
	if len(got) != 2 {
		t.Fatalf("期望 2 条记录，实际 %d: %+v", len(got), got)
	}
	if got[0].Days[0] != "T" || got[0].StartTime != "08:00" {
		t.Errorf("第 1 条错误：%+v", got[0])
	}
	if got[1].Days[0] != "TH" || got[1].StartTime != "13:00" {
		t.Errorf("第 2 条错误：%+v", got[1])
	}
}

// ════════════════════════════════════════════════════════════
// 兜底
// ════════════════════════════════════════════════════════════

func TestFallback(t *testing.T) {
	got := Fallback(SplitLines("random text CS101 and cs 102\nthen CS101 again, PE 1001"))
	want := []string{"CS101", "CS102", "PE1001"}
	if len(got) != len(want) {
		t.Fatalf("期望 %d 条记录，实际 %d: %+v", len(want), len(got), got)
	}
	for i, code := range want {
		if got[i].Code != code || !got[i].IsTBA || got[i].Days == nil || len(got[i].Days) != 0 {
			t.Errorf("[%d] 期望 %s 待定且星期为空，实际 %+v", i, code, got[i])
		}
	}
}
