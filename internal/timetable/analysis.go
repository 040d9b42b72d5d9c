package timetable

import (
	"math"
	"slices"

	"schedule-visualizer/backend/internal/model"
)

// ════════════════════════════════════════════════════════════
// 冲突检测
// ════════════════════════════════════════════════════════════

// Conflict 同一天内时间重叠的两次上课
type Conflict struct {
	Day   string              `json:"day"`
	First model.CourseSession `json:"first"`
	Other model.CourseSession `json:"other"`
}

// overlapDay 返回两次上课首个重叠的星期；待定、同代码或时间无法解析时不视为冲突
func overlapDay(a, b model.CourseSession) (string, bool) {
	if a.IsTBA || b.IsTBA || a.Code == b.Code {
		return "", false
	}
	s1, ok1 := TimeToMinutes(a.StartTime)
	e1, ok2 := TimeToMinutes(a.EndTime)
	s2, ok3 := TimeToMinutes(b.StartTime)
	e2, ok4 := TimeToMinutes(b.EndTime)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return "", false
	}
	if !(s1 < e2 && s2 < e1) {
		return "", false
	}
	for _, d1 := range a.Days {
		for _, d2 := range b.Days {
			if d1 == d2 && model.IsDayCode(d1) {
				return d1, true
			}
		}
	}
	return "", false
}

// FindConflict 检查候选记录与已有列表是否冲突，返回第一处冲突
func FindConflict(candidate model.CourseSession, existing []model.CourseSession) (Conflict, bool) {
	for _, e := range existing {
		if day, ok := overlapDay(candidate, e); ok {
			return Conflict{Day: day, First: candidate, Other: e}, true
		}
	}
	return Conflict{}, false
}

// Conflicts 列出 a 与 b 两组记录之间的全部冲突
func Conflicts(a, b []model.CourseSession) []Conflict {
	out := make([]Conflict, 0)
	for _, x := range a {
		for _, y := range b {
			if day, ok := overlapDay(x, y); ok {
				out = append(out, Conflict{Day: day, First: x, Other: y})
			}
		}
	}
	return out
}

// ════════════════════════════════════════════════════════════
// 图例与统计
// ════════════════════════════════════════════════════════════

// LegendEntry 图例项（代码 + 班级唯一）
type LegendEntry struct {
	Code       string `json:"code"`
	Section    string `json:"section,omitempty"`
	Title      string `json:"title,omitempty"`
	ColorIndex int    `json:"color_index"`
	Online     bool   `json:"online"`
	TBA        bool   `json:"tba"`
}

// Legend 按首次出现顺序生成图例；线上/待定标记按代码汇总
func Legend(sessions []model.CourseSession) []LegendEntry {
	colors := ColorIndex(sessions)
	online := make(map[string]bool)
	tba := make(map[string]bool)
	for _, s := range sessions {
		online[s.Code] = online[s.Code] || IsOnline(s.Room)
		tba[s.Code] = tba[s.Code] || s.IsTBA
	}

	out := make([]LegendEntry, 0)
	seen := make(map[string]struct{})
	for _, s := range sessions {
		key := CourseKey(s.Code, s.Section)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, LegendEntry{
			Code:       s.Code,
			Section:    s.Section,
			Title:      s.Title,
			ColorIndex: colors[s.Code],
			Online:     online[s.Code],
			TBA:        tba[s.Code],
		})
	}
	return out
}

// TotalHours 每条记录计一次时长，保留一位小数
func TotalHours(sessions []model.CourseSession) float64 {
	total := 0
	for _, s := range sessions {
		if s.IsTBA {
			continue
		}
		start, ok1 := TimeToMinutes(s.StartTime)
		end, ok2 := TimeToMinutes(s.EndTime)
		if ok1 && ok2 {
			total += end - start
		}
	}
	return math.Round(float64(total)/60*10) / 10
}

// ════════════════════════════════════════════════════════════
// 课表拼装
// ════════════════════════════════════════════════════════════

// CourseKey 代码与班级组成的键，班级为空时只用代码
func CourseKey(code, section string) string {
	if section == "" {
		return code
	}
	return code + "|" + section
}

func matches(s model.CourseSession, code, section string) bool {
	return s.Code == code && (section == "" || s.Section == section)
}

// MergeCourse 把来源课表中指定代码（及班级）的全部记录追加到 dst。
// dst 已含该课程时原样返回；相同 (代码, 星期, 开始, 结束) 的记录只保留一份。
// 返回新切片，不修改入参。
func MergeCourse(dst []model.CourseSession, sources [][]model.CourseSession, code, section string) []model.CourseSession {
	out := model.CloneSessions(dst)
	for _, s := range dst {
		if matches(s, code, section) {
			return out
		}
	}

	for _, src := range sources {
		for _, s := range src {
			if !matches(s, code, section) || containsIdentical(out, s) {
				continue
			}
			out = append(out, s.Clone())
		}
	}
	return out
}

// RemoveCourse 移除指定代码（及班级）的全部记录
func RemoveCourse(dst []model.CourseSession, code, section string) []model.CourseSession {
	out := make([]model.CourseSession, 0, len(dst))
	for _, s := range dst {
		if matches(s, code, section) {
			continue
		}
		out = append(out, s.Clone())
	}
	return out
}

func containsIdentical(list []model.CourseSession, s model.CourseSession) bool {
	for _, x := range list {
		if x.Code == s.Code && x.StartTime == s.StartTime && x.EndTime == s.EndTime && slices.Equal(x.Days, s.Days) {
			return true
		}
	}
	return false
}
