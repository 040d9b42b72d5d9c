package parser

import (
	"regexp"
	"strings"

	"schedule-visualizer/backend/internal/model"
)

// ════════════════════════════════════════════════════════════
// ParseSimple：简单版式（一行一门课）
// ════════════════════════════════════════════════════════════
//
// 宽松匹配找代码，严格匹配决定是否接受。

var simpleHeaderPhrases = []string{"course code", "course title", "program offered"}

var (
	reLooseCode  = regexp.MustCompile(`(?i)\b([A-Z]{2,4}\s?\d{3,4}[A-Z]?)\b`)
	reSimpleRoom = regexp.MustCompile(`(?i)\b(ONLINE|NGE\s?\d+|CASEROOM|FIELD)\s*(LEC|LAB)?`)
	reWhitespace = regexp.MustCompile(`\s+`)
	reAbbrevDays = regexp.MustCompile(`\b((?:TH|SU|[MTWFS])\s*)+\b`)
	reAbbrevM    = regexp.MustCompile(`\bM\b`)
	reAbbrevT    = regexp.MustCompile(`\bT\b`)
	reAbbrevW    = regexp.MustCompile(`\bW\b`)
	reAbbrevF    = regexp.MustCompile(`\bF\b`)
	reAbbrevS    = regexp.MustCompile(`\bS\b`)
)

// fullDayNames 按匹配顺序排列：TH、SU 先于 T、S
var fullDayNames = []struct {
	code  string
	names []string
}{
	{model.DayThursday, []string{"THURSDAY", "THU"}},
	{model.DaySunday, []string{"SUNDAY", "SUN"}},
	{model.DayMonday, []string{"MONDAY", "MON"}},
	{model.DayTuesday, []string{"TUESDAY", "TUE"}},
	{model.DayWednesday, []string{"WEDNESDAY", "WED"}},
	{model.DayFriday, []string{"FRIDAY", "FRI"}},
	{model.DaySaturday, []string{"SATURDAY", "SAT"}},
}

// ParseSimple 解析简单版式
func ParseSimple(lines []string) []model.CourseSession {
	sessions := make([]model.CourseSession, 0)

	for _, line := range lines {
		lower := strings.ToLower(line)
		if containsAny(lower, simpleHeaderPhrases) {
			continue
		}
		m := reLooseCode.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		code := strings.ToUpper(reWhitespace.ReplaceAllString(m[1], ""))
		if !reStrictCode.MatchString(code) {
			continue
		}

		s := model.CourseSession{
			Code: code,
			Days: extractDaysFromText(line),
		}
		if times := reTimeAll.FindAllString(line, -1); len(times) >= 2 {
			s.StartTime = NormalizeTime(times[0])
			s.EndTime = NormalizeTime(times[1])
		}
		if room := reSimpleRoom.FindString(line); room != "" {
			s.Room = strings.TrimSpace(room)
		}
		sessions = append(sessions, s)
	}
	return sessions
}

// extractDaysFromText 从整行文本提取星期。
//
// 先按全称/三字母缩写匹配（子串匹配）；只有一个都没找到时才扫描单字母缩写。
// 缩写扫描中：含 TH 时不再识别 T，含 SU 时不再识别 S。
// 两条路径的优先级并不一致（例如全称路径下 "THURSDAY" 同时包含 "THU"
// 但不会产生 T），由测试固定当前行为。
func extractDaysFromText(text string) []string {
	upper := strings.ToUpper(text)

	days := make([]string, 0, 2)
	for _, d := range fullDayNames {
		if containsAny(upper, d.names) {
			days = append(days, d.code)
		}
	}
	if len(days) > 0 {
		return days
	}

	abbrev := strings.Join(reAbbrevDays.FindAllString(upper, -1), " ")
	hasTH := strings.Contains(abbrev, "TH")
	hasSU := strings.Contains(abbrev, "SU")
	if hasTH {
		days = append(days, model.DayThursday)
	}
	if hasSU {
		days = append(days, model.DaySunday)
	}
	if reAbbrevM.MatchString(abbrev) {
		days = append(days, model.DayMonday)
	}
	if !hasTH && reAbbrevT.MatchString(abbrev) {
		days = append(days, model.DayTuesday)
	}
	if reAbbrevW.MatchString(abbrev) {
		days = append(days, model.DayWednesday)
	}
	if reAbbrevF.MatchString(abbrev) {
		days = append(days, model.DayFriday)
	}
	if !hasSU && reAbbrevS.MatchString(abbrev) {
		days = append(days, model.DaySaturday)
	}
	return days
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
