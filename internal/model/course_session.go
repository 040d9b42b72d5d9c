package model

// ── 星期代码 ──

const (
	DayMonday    = "M"
	DayTuesday   = "T"
	DayWednesday = "W"
	DayThursday  = "TH"
	DayFriday    = "F"
	DaySaturday  = "S"
	DaySunday    = "SU"

	// DayTBA 无法确定星期时的占位值
	DayTBA = "TBA"
)

// WeekDays 网格列顺序（周一 ~ 周日）
var WeekDays = []string{DayMonday, DayTuesday, DayWednesday, DayThursday, DayFriday, DaySaturday, DaySunday}

// DayNames 星期代码 → 英文全称（网格列名）
var DayNames = map[string]string{
	DayMonday:    "Monday",
	DayTuesday:   "Tuesday",
	DayWednesday: "Wednesday",
	DayThursday:  "Thursday",
	DayFriday:    "Friday",
	DaySaturday:  "Saturday",
	DaySunday:    "Sunday",
}

// IsDayCode 判断是否为合法的单日代码（不含 TBA）
func IsDayCode(code string) bool {
	_, ok := DayNames[code]
	return ok
}

// CourseSession 一门课程的一次周期性上课安排
//
// JSON 字段沿用浏览器端 localStorage 的驼峰格式，保证旧数据与导出文件可直接导入。
type CourseSession struct {
	ID        ID       `json:"id" yaml:"id"`
	Code      string   `json:"code" yaml:"code"`
	Section   string   `json:"section" yaml:"section"`
	Title     string   `json:"title" yaml:"title"`
	Days      []string `json:"days" yaml:"days"`
	StartTime string   `json:"startTime" yaml:"startTime"` // HH:MM（24 小时制），与 EndTime 同时为空或同时非空
	EndTime   string   `json:"endTime" yaml:"endTime"`
	Room      string   `json:"room" yaml:"room"`
	IsTBA     bool     `json:"isTBA,omitempty" yaml:"isTBA,omitempty"`
}

// HasTimeRange 是否同时具备开始与结束时间
func (c CourseSession) HasTimeRange() bool {
	return c.StartTime != "" && c.EndTime != ""
}

// Valid 代码非空，且开始/结束时间同时为空或同时非空
func (c CourseSession) Valid() bool {
	return c.Code != "" && (c.StartTime == "") == (c.EndTime == "")
}

// Placeable 能否放置到周网格上
func (c CourseSession) Placeable() bool {
	return !c.IsTBA && len(c.Days) > 0 && c.HasTimeRange()
}

// Clone 深拷贝（Days 切片独立）
func (c CourseSession) Clone() CourseSession {
	cp := c
	cp.Days = append([]string{}, c.Days...)
	return cp
}

// CloneSessions 深拷贝列表
func CloneSessions(src []CourseSession) []CourseSession {
	out := make([]CourseSession, 0, len(src))
	for _, c := range src {
		out = append(out, c.Clone())
	}
	return out
}

// UniqueCodeCount 统计不同课程代码数
func UniqueCodeCount(sessions []CourseSession) int {
	seen := make(map[string]struct{}, len(sessions))
	for _, c := range sessions {
		seen[c.Code] = struct{}{}
	}
	return len(seen)
}
