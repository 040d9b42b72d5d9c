package parser

import (
	"regexp"
	"strings"

	"schedule-visualizer/backend/internal/model"
)

// ════════════════════════════════════════════════════════════
// ParsePortal：教务门户多行版式
// ════════════════════════════════════════════════════════════
//
// 记录以学院代码行（"CCS"，或后随 BACHELOR 行的 2~4 位字母）开头，
// 之后依次为：[专业描述] → 代码 → 名称 → [G<数字>] → 星期* → 时间* → 教室* → 元数据*。
//
// 配对规则：第 j 个星期取第 j 个时间/教室，缺失时沿用第一个时间/教室。

var (
	reCollegeCode = regexp.MustCompile(`^[A-Z]{2,4}$`)
	rePortalSect  = regexp.MustCompile(`^G\d+$`)
)

// ParsePortal 解析门户多行版式
func ParsePortal(lines []string) []model.CourseSession {
	sessions := make([]model.CourseSession, 0)
	n := len(lines)

	for i := 0; i < n; {
		if !opensPortalRecord(lines, i) {
			i++
			continue
		}
		start := i
		i++

		if i < n && (strings.Contains(lines[i], "BACHELOR") || strings.Contains(lines[i], "SCIENCE")) {
			i++
		}
		if i >= n || !reStrictCode.MatchString(lines[i]) {
			i = start + 1
			continue
		}
		code := lines[i]
		i++

		title := ""
		if i < n {
			title = lines[i]
			i++
		}
		section := ""
		if i < n && rePortalSect.MatchString(lines[i]) {
			section = lines[i]
			i++
		}

		var days, times, rooms []string
		for i < n && IsDay(lines[i]) {
			days = append(days, ParseDayString(lines[i])...)
			i++
		}
		for i < n && IsTime(lines[i]) {
			times = append(times, lines[i])
			i++
		}
		for i < n && IsRoom(lines[i]) {
			rooms = append(rooms, lines[i])
			i++
		}
		for i < n && isPortalMetadata(lines[i]) {
			i++
		}

		if len(days) == 0 {
			sessions = append(sessions, model.CourseSession{
				Code:    code,
				Section: section,
				Title:   title,
				Days:    []string{model.DayTBA},
				IsTBA:   true,
			})
			continue
		}

		for j, day := range days {
			timeLine := ""
			if j < len(times) {
				timeLine = times[j]
			} else if len(times) > 0 {
				timeLine = times[0]
			}
			room := ""
			if j < len(rooms) {
				room = rooms[j]
			} else if len(rooms) > 0 {
				room = rooms[0]
			}
			startTime, endTime := parseRange(timeLine)
			sessions = append(sessions, model.CourseSession{
				Code:      code,
				Section:   section,
				Title:     title,
				Days:      []string{day},
				StartTime: startTime,
				EndTime:   endTime,
				Room:      room,
			})
		}
	}
	return sessions
}

func opensPortalRecord(lines []string, i int) bool {
	if lines[i] == "CCS" {
		return true
	}
	return reCollegeCode.MatchString(lines[i]) && i+1 < len(lines) && strings.Contains(lines[i+1], "BACHELOR")
}

// isPortalMetadata 记录尾部可忽略的元数据行
func isPortalMetadata(line string) bool {
	switch line {
	case "Online", "In-Person", "N", "Y":
		return true
	}
	return reDigits.MatchString(line) || reCreditCode.MatchString(line)
}
