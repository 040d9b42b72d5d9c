package service

import (
	"fmt"
	"io"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"schedule-visualizer/backend/internal/model"
)

// ── ICS 解析器 ──────────────────────────────────────────────
//
// 职责：将标准 iCalendar (RFC 5545) 内容解析为上课记录。
//
// 设计决策：
//   - DTSTART/DTEND 确定时间；RRULE 的 BYDAY 确定星期，缺省取 DTSTART 当天
//   - BYDAY 按 DTSTART 来源时区展开，换算到本地后若跨日，星期同步平移
//   - 全天事件没有时间段，跳过
//   - SUMMARY 拆出课程代码与班级；DESCRIPTION 作为课程名；LOCATION 作为教室
//   - 合并同 代码+班级+时间+教室 的事件（日历常以每天一个事件表示同一课程）
// ─────────────────────────────────────────────────────────────

const icsLocalLayout = "20060102T150405"

var (
	reICSCode     = regexp.MustCompile(`^[A-Za-z]{2,6}-?\d{2,4}[A-Za-z]?$`)
	reICSDuration = regexp.MustCompile(`^P(?:T(?:(\d+)H)?(?:(\d+)M)?)$`)
)

// icsDayCodes RRULE BYDAY → 星期代码
var icsDayCodes = map[string]string{
	"MO": model.DayMonday,
	"TU": model.DayTuesday,
	"WE": model.DayWednesday,
	"TH": model.DayThursday,
	"FR": model.DayFriday,
	"SA": model.DaySaturday,
	"SU": model.DaySunday,
}

// weekdayCodes time.Weekday → 星期代码
var weekdayCodes = map[time.Weekday]string{
	time.Monday:    model.DayMonday,
	time.Tuesday:   model.DayTuesday,
	time.Wednesday: model.DayWednesday,
	time.Thursday:  model.DayThursday,
	time.Friday:    model.DayFriday,
	time.Saturday:  model.DaySaturday,
	time.Sunday:    model.DaySunday,
}

// ParseICS 解析 ICS 内容为上课记录（ID 由调用方分配）
func ParseICS(reader io.Reader, loc *time.Location) ([]model.CourseSession, error) {
	cal, err := ics.ParseCalendar(reader)
	if err != nil {
		return nil, fmt.Errorf("ICS 格式解析失败: %w", err)
	}

	var sessions []model.CourseSession
	for _, evt := range cal.Events() {
		s, ok := parseVEvent(evt, loc)
		if !ok {
			continue
		}
		sessions = append(sessions, s)
	}
	return mergeEvents(sessions), nil
}

// parseVEvent 解析单个 VEVENT 组件
func parseVEvent(evt *ics.VEvent, loc *time.Location) (model.CourseSession, bool) {
	summary := evt.GetProperty(ics.ComponentPropertySummary)
	if summary == nil || strings.TrimSpace(summary.Value) == "" {
		return model.CourseSession{}, false
	}

	srcStart, dateOnly, err := parseICSDateTime(evt, ics.ComponentPropertyDtStart, loc)
	if err != nil || dateOnly {
		return model.CourseSession{}, false
	}
	dtStart := srcStart.In(loc)
	srcEnd, _, err := parseICSDateTime(evt, ics.ComponentPropertyDtEnd, loc)
	dtEnd := srcEnd.In(loc)
	if err != nil {
		// 若无 DTEND，尝试用 DURATION
		durProp := evt.GetProperty(ics.ComponentPropertyDuration)
		if durProp == nil {
			return model.CourseSession{}, false
		}
		d, ok := parseDuration(durProp.Value)
		if !ok {
			return model.CourseSession{}, false
		}
		dtEnd = dtStart.Add(d)
	}
	if !dtEnd.After(dtStart) || dtEnd.Format("15:04") <= dtStart.Format("15:04") {
		return model.CourseSession{}, false
	}

	days := []string{weekdayCodes[dtStart.Weekday()]}
	if rruleProp := evt.GetProperty(ics.ComponentPropertyRrule); rruleProp != nil {
		if rule := parseRRule(rruleProp.Value); rule.freq == "WEEKLY" && len(rule.byDay) > 0 {
			days = shiftDays(rule.byDay, dayShift(srcStart, dtStart))
		}
	}

	code, section, title := splitSummary(unescapeText(summary.Value))
	if title == "" {
		if desc := evt.GetProperty(ics.ComponentPropertyDescription); desc != nil {
			title = strings.TrimSpace(unescapeText(desc.Value))
		}
	}
	room := ""
	if locProp := evt.GetProperty(ics.ComponentPropertyLocation); locProp != nil {
		room = strings.TrimSpace(unescapeText(locProp.Value))
	}

	return model.CourseSession{
		Code:      code,
		Section:   section,
		Title:     title,
		Days:      days,
		StartTime: dtStart.Format("15:04"),
		EndTime:   dtEnd.Format("15:04"),
		Room:      room,
	}, true
}

// splitSummary 拆分 "CS101 G1 Intro" 形式的标题；不以课程代码开头时整段作为代码与课程名
func splitSummary(summary string) (code, section, title string) {
	fields := strings.Fields(summary)
	if len(fields) == 0 {
		return "", "", ""
	}
	if !reICSCode.MatchString(fields[0]) {
		s := strings.Join(fields, " ")
		return s, "", s
	}
	code = strings.ToUpper(strings.ReplaceAll(fields[0], "-", ""))
	rest := fields[1:]
	if len(rest) > 0 && looksLikeSection(rest[0]) {
		section = rest[0]
		rest = rest[1:]
	}
	title = strings.TrimSpace(strings.TrimLeft(strings.Join(rest, " "), "-–:· "))
	return code, section, title
}

// looksLikeSection 班级号：含数字，或不超过 4 个字符的全大写字母
func looksLikeSection(tok string) bool {
	if len(tok) > 12 {
		return false
	}
	if strings.ContainsAny(tok, "0123456789") {
		return true
	}
	return len(tok) <= 4 && strings.ToUpper(tok) == tok && strings.ToLower(tok) != tok
}

// rruleParams RRULE 解析结果
type rruleParams struct {
	freq  string
	byDay []string
}

// parseRRule 解析 RRULE 中与星期相关的部分（如 FREQ=WEEKLY;COUNT=16;BYDAY=MO,WE）
func parseRRule(value string) rruleParams {
	var r rruleParams
	for _, part := range strings.Split(value, ";") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch strings.ToUpper(kv[0]) {
		case "FREQ":
			r.freq = strings.ToUpper(kv[1])
		case "BYDAY":
			for _, d := range strings.Split(strings.ToUpper(kv[1]), ",") {
				// 去掉 "1MO" / "-1FR" 这类序数前缀
				d = strings.TrimLeft(d, "+-0123456789")
				if code, ok := icsDayCodes[d]; ok && !slices.Contains(r.byDay, code) {
					r.byDay = append(r.byDay, code)
				}
			}
		}
	}
	return r
}

// parseDuration 解析 PT1H30M 形式的时长
func parseDuration(value string) (time.Duration, bool) {
	m := reICSDuration.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(value)))
	if m == nil || (m[1] == "" && m[2] == "") {
		return 0, false
	}
	h, _ := strconv.Atoi(m[1])
	mins, _ := strconv.Atoi(m[2])
	return time.Duration(h)*time.Hour + time.Duration(mins)*time.Minute, true
}

// mergeEvents 合并同一课程的多个事件，星期取并集并按周一至周日排序
func mergeEvents(events []model.CourseSession) []model.CourseSession {
	type key struct {
		Code, Section, StartTime, EndTime, Room string
	}
	merged := make(map[key]*model.CourseSession)
	order := []key{}

	for _, e := range events {
		k := key{e.Code, e.Section, e.StartTime, e.EndTime, e.Room}
		if existing, ok := merged[k]; ok {
			for _, d := range e.Days {
				if !slices.Contains(existing.Days, d) {
					existing.Days = append(existing.Days, d)
				}
			}
			if existing.Title == "" {
				existing.Title = e.Title
			}
		} else {
			cp := e.Clone()
			merged[k] = &cp
			order = append(order, k)
		}
	}

	result := make([]model.CourseSession, 0, len(merged))
	for _, k := range order {
		s := *merged[k]
		slices.SortFunc(s.Days, func(a, b string) int {
			return slices.Index(model.WeekDays, a) - slices.Index(model.WeekDays, b)
		})
		result = append(result, s)
	}
	return result
}

// ── 辅助函数 ──

// unescapeText 还原 RFC 5545 TEXT 转义
func unescapeText(s string) string {
	r := strings.NewReplacer(`\,`, ",", `\;`, ";", `\n`, " ", `\N`, " ", `\\`, `\`)
	return r.Replace(s)
}

// dayShift 同一时刻在本地与来源时区的日期差（天）
func dayShift(src, local time.Time) int {
	a := time.Date(src.Year(), src.Month(), src.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// shiftDays BYDAY 按来源时区展开，换算到本地时区后星期随日期平移
func shiftDays(days []string, shift int) []string {
	if shift == 0 {
		return days
	}
	out := make([]string, 0, len(days))
	for _, d := range days {
		i := slices.Index(model.WeekDays, d)
		if i < 0 {
			continue
		}
		code := model.WeekDays[((i+shift)%7+7)%7]
		if !slices.Contains(out, code) {
			out = append(out, code)
		}
	}
	return out
}

// parseICSDateTime 从 VEVENT 中解析日期时间属性，返回值保留来源时区
// （Z 后缀为 UTC，带 TZID 为该时区，浮动时间按 loc 解释）；dateOnly 表示全天值
func parseICSDateTime(evt *ics.VEvent, propName ics.ComponentProperty, loc *time.Location) (t time.Time, dateOnly bool, err error) {
	prop := evt.GetProperty(propName)
	if prop == nil {
		return time.Time{}, false, fmt.Errorf("missing property %s", propName)
	}
	val := strings.TrimSpace(prop.Value)

	// 检查 TZID 参数
	tzid := ""
	for k, v := range prop.ICalParameters {
		if strings.ToUpper(k) == "TZID" && len(v) > 0 {
			tzid = v[0]
		}
	}

	if p, err := time.Parse("20060102T150405Z", val); err == nil {
		return p, false, nil
	}
	if p, err := time.Parse(icsLocalLayout, val); err == nil {
		zone := loc
		if tzid != "" {
			if tzLoc, err := time.LoadLocation(tzid); err == nil {
				zone = tzLoc
			}
		}
		return time.Date(p.Year(), p.Month(), p.Day(), p.Hour(), p.Minute(), p.Second(), 0, zone), false, nil
	}
	if p, err := time.Parse("20060102", val); err == nil {
		return time.Date(p.Year(), p.Month(), p.Day(), 0, 0, 0, 0, loc), true, nil
	}
	return time.Time{}, false, fmt.Errorf("无法解析日期: %s", val)
}
