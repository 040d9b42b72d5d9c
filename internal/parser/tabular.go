package parser

import (
	"regexp"
	"strings"

	"schedule-visualizer/backend/internal/model"
)

// ════════════════════════════════════════════════════════════
// ParseTabular：表格版式（每门课 7 个字段，按列展开为行）
// ════════════════════════════════════════════════════════════
//
// 字段顺序：代码、名称、讲授学分、实验学分、计入学分、教室、时间串。
// 表格版式不含班级号，结果由 Parse 标记 MissingSections。

const tabularFieldCount = 7

// tabularHeaderMarkers 用于定位表头结束位置（比分类关键字更宽松）
var tabularHeaderMarkers = []string{
	"subject code", "description", "lec units", "lab units",
	"credited units", "credited", "room #", "room", "schedule",
}

var (
	reHasLetter    = regexp.MustCompile(`[A-Za-z]`)
	reHasDigit     = regexp.MustCompile(`\d`)
	reTableSegment = regexp.MustCompile(`(?i)([A-Za-z,\s]+):\s*(\d{1,2}:\d{2}\s*(?:AM|PM))\s*[-–]\s*(\d{1,2}:\d{2}\s*(?:AM|PM))`)
	reDayNameSplit = regexp.MustCompile(`[,\s]+`)
)

// tableDayNames 表格时间串中的星期名称表（全称与常见缩写）
var tableDayNames = map[string]string{
	"monday": model.DayMonday, "mon": model.DayMonday,
	"tuesday": model.DayTuesday, "tue": model.DayTuesday, "tu": model.DayTuesday,
	"wednesday": model.DayWednesday, "wed": model.DayWednesday,
	"thursday": model.DayThursday, "thu": model.DayThursday, "thur": model.DayThursday, "thurs": model.DayThursday,
	"friday": model.DayFriday, "fri": model.DayFriday,
	"saturday": model.DaySaturday, "sat": model.DaySaturday,
	"sunday": model.DaySunday, "sun": model.DaySunday,
}

// tableSlot 时间串中解析出的一次上课
type tableSlot struct {
	days  []string
	start string
	end   string
}

// ParseTabular 解析表格版式
func ParseTabular(lines []string) []model.CourseSession {
	sessions := make([]model.CourseSession, 0)

	for i := tabularDataStart(lines); i+tabularFieldCount <= len(lines); i += tabularFieldCount {
		row := lines[i : i+tabularFieldCount]
		code := strings.TrimSpace(row[0])
		if !reHasLetter.MatchString(code) || !reHasDigit.MatchString(code) {
			continue
		}
		title := strings.TrimSpace(row[1])
		rooms := splitRooms(row[5])

		slots := parseTableSchedule(row[6])
		if len(slots) == 0 {
			room := "TBA"
			if len(rooms) > 0 && rooms[0] != "" {
				room = rooms[0]
			}
			sessions = append(sessions, model.CourseSession{
				Code:  code,
				Title: title,
				Days:  []string{},
				Room:  room,
				IsTBA: true,
			})
			continue
		}

		n := 0
		for _, slot := range slots {
			for _, day := range slot.days {
				sessions = append(sessions, model.CourseSession{
					Code:      code,
					Title:     title,
					Days:      []string{day},
					StartTime: slot.start,
					EndTime:   slot.end,
					Room:      pickRoom(rooms, n),
				})
				n++
			}
		}
	}
	return sessions
}

// tabularDataStart 返回表头之后第一行的下标
func tabularDataStart(lines []string) int {
	limit := min(len(lines), headerScanLimit)
	last := -1
	for i := 0; i < limit; i++ {
		l := strings.ToLower(lines[i])
		for _, marker := range tabularHeaderMarkers {
			if l == marker || strings.Contains(l, marker) {
				last = i
				break
			}
		}
	}
	return last + 1
}

// parseTableSchedule 解析 "Tue, Sat: 08:00AM - 10:00AM" 形式的时间串，可含多段。
// 某段的星期名全部无法识别时，该段以 ["TBA"] 作为星期保留。
func parseTableSchedule(text string) []tableSlot {
	matches := reTableSegment.FindAllStringSubmatch(text, -1)
	slots := make([]tableSlot, 0, len(matches))
	for _, m := range matches {
		days := make([]string, 0, 2)
		for _, name := range reDayNameSplit.Split(strings.TrimSpace(m[1]), -1) {
			if code, ok := tableDayNames[strings.ToLower(name)]; ok {
				days = append(days, code)
			}
		}
		days = uniqueDays(days)
		if len(days) == 0 {
			// 星期待定但时间已知：保留时间，IsTBA 保持 false，与门户版式一致
			days = []string{model.DayTBA}
		}
		slots = append(slots, tableSlot{
			days:  days,
			start: NormalizeTime(m[2]),
			end:   NormalizeTime(m[3]),
		})
	}
	return slots
}

func splitRooms(field string) []string {
	parts := strings.Split(field, ",")
	rooms := make([]string, 0, len(parts))
	for _, p := range parts {
		rooms = append(rooms, strings.TrimSpace(p))
	}
	return rooms
}

// pickRoom 按位置取教室，缺失时回落到第一个，再回落到 TBA
func pickRoom(rooms []string, n int) string {
	if n < len(rooms) && rooms[n] != "" {
		return rooms[n]
	}
	if len(rooms) > 0 && rooms[0] != "" {
		return rooms[0]
	}
	return "TBA"
}
