package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"schedule-visualizer/backend/config"
	"schedule-visualizer/backend/internal/model"
	"schedule-visualizer/backend/internal/repository"
	"schedule-visualizer/backend/internal/timetable"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoCourses    = errors.New("课表为空，无法导出")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

// icsByDay 星期代码 → RRULE BYDAY
var icsByDay = map[string]string{
	model.DayMonday:    "MO",
	model.DayTuesday:   "TU",
	model.DayWednesday: "WE",
	model.DayThursday:  "TH",
	model.DayFriday:    "FR",
	model.DaySaturday:  "SA",
	model.DaySunday:    "SU",
}

// ExportService 导出业务接口
//
// 设计说明：
//   - 周课表导出为 Excel (.xlsx)：一个周网格 Sheet 加一个课程明细 Sheet
//   - 周课表导出为 iCalendar (.ics)：每条记录一个按周重复的事件
//   - 导出以字节返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportTimetableXLSX 导出周课表为 Excel；source 为 "current" 或快照 ID
	ExportTimetableXLSX(ctx context.Context, workspaceID, source string) (*bytes.Buffer, string, error)
	// ExportICS 导出周课表为 iCalendar；termStart 为零值时从本周一开始
	ExportICS(ctx context.Context, workspaceID, source string, termStart time.Time) ([]byte, string, error)
}

type exportService struct {
	repo   *repository.Repository
	grid   timetable.GridOptions
	weeks  int
	loc    *time.Location
	now    func() time.Time
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, grid timetable.GridOptions, cal config.CalendarConfig, logger *zap.Logger) ExportService {
	loc, err := time.LoadLocation(cal.Timezone)
	if err != nil {
		loc = time.UTC
	}
	weeks := cal.Weeks
	if weeks < 1 {
		weeks = 16
	}
	return &exportService{repo: repo, grid: grid, weeks: weeks, loc: loc, now: time.Now, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportTimetableXLSX：导出周课表为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet "周课表"：行头为 30 分钟时间格，列头为 Monday ~ Sunday，
//     每次上课占据对应单元格并纵向合并，按课程代码着色
//   - Sheet "课程明细"：全部记录（含待定），末行为每周学时
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportTimetableXLSX(ctx context.Context, workspaceID, source string) (*bytes.Buffer, string, error) {
	courses, name, err := loadSource(ctx, s.repo, workspaceID, source)
	if err != nil {
		return nil, "", err
	}
	if len(courses) == 0 {
		return nil, "", ErrExportNoCourses
	}

	grid := timetable.BuildGrid(courses, s.grid)

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "周课表"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	// 删除默认 Sheet1
	f.DeleteSheet("Sheet1")

	// 设置列宽
	f.SetColWidth(sheetName, "A", "A", 12)
	lastCol := colName(len(grid.Days))
	f.SetColWidth(sheetName, "B", lastCol, 22)

	// 样式
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	courseStyles := make(map[int]int)
	courseStyle := func(colorIndex int) int {
		if id, ok := courseStyles[colorIndex]; ok {
			return id
		}
		id, _ := f.NewStyle(&excelize.Style{
			Font:      &excelize.Font{Size: 9, Color: "#FFFFFF"},
			Fill:      excelize.Fill{Type: "pattern", Color: []string{timetable.Palette[colorIndex%len(timetable.Palette)]}, Pattern: 1},
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "top", WrapText: true},
		})
		courseStyles[colorIndex] = id
		return id
	}

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s 周课表", name))
	f.MergeCell(sheetName, "A1", cell(lastCol, 1))
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	f.SetCellValue(sheetName, "A2", "时间")
	for i, day := range grid.Days {
		f.SetCellValue(sheetName, cell(colName(i+1), 2), day)
	}
	f.SetCellStyle(sheetName, "A2", cell(lastCol, 2), headerStyle)

	// 时间格
	const firstRow = 3
	for i, slot := range grid.Slots {
		f.SetCellValue(sheetName, cell("A", firstRow+i), slot.Label)
	}

	// 放置课程；与已占用单元格重叠（冲突）时把文字追加到占用者的起始单元格，不再合并
	owner := make(map[string]string)
	for _, p := range grid.Placements {
		dayIdx := slices.Index(grid.Days, p.DayName)
		slotIdx := (p.Hour-grid.Slots[0].Hour)*2 + p.Minute/timetable.SlotMinutes
		if dayIdx < 0 || slotIdx < 0 || slotIdx >= len(grid.Slots) {
			continue
		}
		col := colName(dayIdx + 1)
		span := max(1, int(math.Ceil(p.TopOffset+p.HeightSlots)))
		span = min(span, len(grid.Slots)-slotIdx)
		top := cell(col, firstRow+slotIdx)
		bottom := cell(col, firstRow+slotIdx+span-1)
		text := placementText(p)

		clashWith := ""
		for r := 0; r < span && clashWith == ""; r++ {
			clashWith = owner[cell(col, firstRow+slotIdx+r)]
		}
		if clashWith != "" {
			existing, _ := f.GetCellValue(sheetName, clashWith)
			f.SetCellValue(sheetName, clashWith, existing+"\n"+text)
			continue
		}

		f.SetCellValue(sheetName, top, text)
		if span > 1 {
			f.MergeCell(sheetName, top, bottom)
		}
		f.SetCellStyle(sheetName, top, bottom, courseStyle(p.ColorIndex))
		for r := 0; r < span; r++ {
			owner[cell(col, firstRow+slotIdx+r)] = top
		}
	}

	s.writeCourseSheet(f, courses, headerStyle)

	// 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	s.logger.Info("周课表已导出为 Excel",
		zap.String("workspace_id", workspaceID),
		zap.String("source", name),
		zap.Int("placements", len(grid.Placements)))
	return buf, fmt.Sprintf("timetable_%s.xlsx", s.now().In(s.loc).Format("2006-01-02")), nil
}

// writeCourseSheet 课程明细 Sheet
func (s *exportService) writeCourseSheet(f *excelize.File, courses []model.CourseSession, headerStyle int) {
	sheetName := "课程明细"
	f.NewSheet(sheetName)

	headers := []string{"课程代码", "班级", "课程名称", "星期", "开始", "结束", "教室"}
	widths := []float64{12, 10, 36, 14, 10, 10, 22}
	for i, h := range headers {
		col := colName(i)
		f.SetColWidth(sheetName, col, col, widths[i])
		f.SetCellValue(sheetName, cell(col, 1), h)
	}
	f.SetCellStyle(sheetName, "A1", cell(colName(len(headers)-1), 1), headerStyle)

	row := 2
	for _, c := range courses {
		days := strings.Join(c.Days, "")
		if c.IsTBA && days == "" {
			days = model.DayTBA
		}
		values := []interface{}{
			c.Code, c.Section, c.Title, days,
			timetable.FormatTimeDisplay(c.StartTime),
			timetable.FormatTimeDisplay(c.EndTime),
			c.Room,
		}
		for i, v := range values {
			f.SetCellValue(sheetName, cell(colName(i), row), v)
		}
		row++
	}

	f.SetCellValue(sheetName, cell("A", row+1), "每周学时")
	f.SetCellValue(sheetName, cell("B", row+1), timetable.TotalHours(courses))
}

// placementText 单元格文本：代码 班级 / 时间 / 教室
func placementText(p timetable.Placement) string {
	lines := []string{strings.TrimSpace(p.Code + " " + p.Section)}
	lines = append(lines, timetable.FormatTimeDisplay(p.StartTime)+" - "+timetable.FormatTimeDisplay(p.EndTime))
	if p.Room != "" {
		lines = append(lines, timetable.AbbreviateRoom(p.Room))
	}
	return strings.Join(lines, "\n")
}

// ═══════════════════════════════════════════════════════════
// ExportICS：导出周课表为 iCalendar
// ═══════════════════════════════════════════════════════════
//
// 每条可放置的记录生成一个 VEVENT：
//   - DTSTART 为学期首周内该记录的第一个上课日
//   - RRULE:FREQ=WEEKLY;COUNT=<周数 × 每周天数>;BYDAY=<上课日>
//   - SUMMARY 为 "代码 班级"，DESCRIPTION 为课程名，LOCATION 为教室
// 待定记录与时间不完整的记录不导出。

func (s *exportService) ExportICS(ctx context.Context, workspaceID, source string, termStart time.Time) ([]byte, string, error) {
	courses, name, err := loadSource(ctx, s.repo, workspaceID, source)
	if err != nil {
		return nil, "", err
	}

	now := s.now()
	if termStart.IsZero() {
		termStart = now.In(s.loc)
	} else {
		// 只取日期部分，按配置时区解释
		termStart = time.Date(termStart.Year(), termStart.Month(), termStart.Day(), 0, 0, 0, 0, s.loc)
	}
	cal, n := buildCalendar(courses, name, weekStart(termStart, s.loc), s.weeks, s.loc, now)
	if n == 0 {
		return nil, "", ErrExportNoCourses
	}

	s.logger.Info("周课表已导出为 iCalendar",
		zap.String("workspace_id", workspaceID),
		zap.String("source", name),
		zap.Int("events", n))
	return []byte(cal.Serialize()), fmt.Sprintf("timetable_%s.ics", now.In(s.loc).Format("2006-01-02")), nil
}

// buildCalendar 生成日历，返回日历与事件数
func buildCalendar(courses []model.CourseSession, name string, monday time.Time, weeks int, loc *time.Location, now time.Time) (*ics.Calendar, int) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//schedule-visualizer//timetable//EN")
	cal.SetXWRCalName(name)
	cal.SetXWRTimezone(loc.String())

	n := 0
	for _, c := range courses {
		days := eventDays(c)
		if !c.Placeable() || len(days) == 0 {
			continue
		}
		startMin, ok1 := timetable.TimeToMinutes(c.StartTime)
		endMin, ok2 := timetable.TimeToMinutes(c.EndTime)
		if !ok1 || !ok2 || endMin <= startMin {
			continue
		}

		first := monday.AddDate(0, 0, slices.Index(model.WeekDays, days[0]))
		start := time.Date(first.Year(), first.Month(), first.Day(), startMin/60, startMin%60, 0, 0, loc)
		end := time.Date(first.Year(), first.Month(), first.Day(), endMin/60, endMin%60, 0, 0, loc)

		byDay := make([]string, 0, len(days))
		for _, d := range days {
			byDay = append(byDay, icsByDay[d])
		}

		evt := cal.AddEvent(fmt.Sprintf("%s@schedule-visualizer", c.ID))
		evt.SetDtStampTime(now)
		setEventTimes(evt, start, end, loc)
		evt.SetSummary(strings.TrimSpace(c.Code + " " + c.Section))
		if c.Title != "" {
			evt.SetDescription(c.Title)
		}
		if c.Room != "" {
			evt.SetLocation(c.Room)
		}
		evt.AddRrule(fmt.Sprintf("FREQ=WEEKLY;COUNT=%d;BYDAY=%s", weeks*len(days), strings.Join(byDay, ",")))
		n++
	}
	return cal, n
}

// setEventTimes 写入 DTSTART/DTEND。
// BYDAY 按 DTSTART 所在时区展开，因此带 TZID 写本地时间，星期与课表一致；UTC 时区直接写 UTC。
func setEventTimes(evt *ics.VEvent, start, end time.Time, loc *time.Location) {
	if loc == time.UTC || loc.String() == "Local" {
		evt.SetStartAt(start)
		evt.SetEndAt(end)
		return
	}
	tzid := &ics.KeyValues{Key: string(ics.ParameterTzid), Value: []string{loc.String()}}
	evt.SetProperty(ics.ComponentPropertyDtStart, start.Format(icsLocalLayout), tzid)
	evt.SetProperty(ics.ComponentPropertyDtEnd, end.Format(icsLocalLayout), tzid)
}

// eventDays 合法星期代码，按周一至周日排序去重
func eventDays(c model.CourseSession) []string {
	days := make([]string, 0, len(c.Days))
	for _, d := range model.WeekDays {
		if slices.Contains(c.Days, d) {
			days = append(days, d)
		}
	}
	return days
}

// weekStart t 所在周的周一零点
func weekStart(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	offset := (int(t.Weekday()) + 6) % 7
	d := t.AddDate(0, 0, -offset)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
