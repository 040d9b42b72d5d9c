package parser

import (
	"fmt"
	"strconv"
	"strings"

	"schedule-visualizer/backend/internal/model"
)

// ════════════════════════════════════════════════════════════
// NormalizeTime：时间字面量归一化为 HH:MM（24 小时制）
// ════════════════════════════════════════════════════════════
//
// 规则：
//   - 已是 HH:MM 的原样返回（保证幂等）
//   - PM 且小时不为 12 时加 12；AM 且小时为 12 时归零
//   - 无法识别时返回去空白、转大写后的原串，不报错
func NormalizeTime(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	if reTwentyFour.MatchString(s) {
		return s
	}

	hourStr, minute, meridiem := "", "00", ""
	if m := reClockToken.FindStringSubmatch(s); m != nil {
		hourStr, minute, meridiem = m[1], m[2], m[3]
	} else if m := reHourMeridiem.FindStringSubmatch(s); m != nil {
		hourStr, meridiem = m[1], m[2]
	} else {
		return s
	}

	hour, err := strconv.Atoi(hourStr)
	if err != nil {
		return s
	}
	switch {
	case meridiem == "PM" && hour != 12:
		hour += 12
	case meridiem == "AM" && hour == 12:
		hour = 0
	}
	return fmt.Sprintf("%02d:%s", hour, minute)
}

// ── 星期代码 ──

// compoundDays 常见复合星期写法
var compoundDays = map[string][]string{
	"MTWTHF": {model.DayMonday, model.DayTuesday, model.DayWednesday, model.DayThursday, model.DayFriday},
	"MTWTH":  {model.DayMonday, model.DayTuesday, model.DayWednesday, model.DayThursday},
	"MTW":    {model.DayMonday, model.DayTuesday, model.DayWednesday},
	"THS":    {model.DayThursday, model.DaySaturday},
	"TTH":    {model.DayTuesday, model.DayThursday},
	"MWF":    {model.DayMonday, model.DayWednesday, model.DayFriday},
	"MW":     {model.DayMonday, model.DayWednesday},
	"MS":     {model.DayMonday, model.DaySaturday},
	"TS":     {model.DayTuesday, model.DaySaturday},
	"WF":     {model.DayWednesday, model.DayFriday},
	"TH":     {model.DayThursday},
	"SU":     {model.DaySunday},
	"M":      {model.DayMonday},
	"T":      {model.DayTuesday},
	"W":      {model.DayWednesday},
	"F":      {model.DayFriday},
	"S":      {model.DaySaturday},
}

// ParseDayString 将星期记号拆解为有序、去重的星期代码。
// TH 优先于 T，SU 优先于 S；纯数字永远不是星期。
func ParseDayString(token string) []string {
	s := strings.ToUpper(strings.TrimSpace(token))
	if s == "" || reDigits.MatchString(s) {
		return []string{}
	}
	if days, ok := compoundDays[s]; ok {
		return append([]string{}, days...)
	}

	days := make([]string, 0, 4)
	for i := 0; i < len(s); {
		switch {
		case strings.HasPrefix(s[i:], "TH"):
			days = append(days, model.DayThursday)
			i += 2
		case strings.HasPrefix(s[i:], "SU"):
			days = append(days, model.DaySunday)
			i += 2
		default:
			switch s[i] {
			case 'M':
				days = append(days, model.DayMonday)
			case 'T':
				days = append(days, model.DayTuesday)
			case 'W':
				days = append(days, model.DayWednesday)
			case 'F':
				days = append(days, model.DayFriday)
			case 'S':
				days = append(days, model.DaySaturday)
			}
			i++
		}
	}
	return uniqueDays(days)
}

// IsDay 判断整行是否为星期记号
func IsDay(line string) bool {
	s := strings.ToUpper(strings.TrimSpace(line))
	if s == "" || reDigits.MatchString(s) {
		return false
	}
	return reDayToken.MatchString(s)
}

// IsTime 判断行内是否含 12 小时制时间字面量
func IsTime(line string) bool {
	return reTimeLiteral.MatchString(line)
}

// IsRoom 判断行首是否为教室形态（"Online"、"NGE207"、"C0" 等）
func IsRoom(line string) bool {
	return reRoomShape.MatchString(strings.ToUpper(strings.TrimSpace(line)))
}

// uniqueDays 保序去重
func uniqueDays(days []string) []string {
	out := make([]string, 0, len(days))
	seen := make(map[string]struct{}, len(days))
	for _, d := range days {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	return out
}

// parseRange 解析 "8:00 AM - 10:00 AM"，失败返回空串
func parseRange(text string) (start, end string) {
	m := reTimeRange.FindStringSubmatch(text)
	if m == nil {
		return "", ""
	}
	return NormalizeTime(m[1]), NormalizeTime(m[2])
}
