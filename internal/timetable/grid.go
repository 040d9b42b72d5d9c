// Package timetable 将上课记录排布到周视图网格，并提供冲突检测、图例、
// 学时统计与课表拼装等只读计算。
package timetable

import (
	"regexp"
	"strconv"
	"strings"

	"schedule-visualizer/backend/internal/model"
)

// ── 网格参数 ──

const (
	DefaultStartHour = 7
	DefaultEndHour   = 22
	SlotMinutes      = 30
)

// Palette 课程配色，按代码首次出现顺序循环取用
var Palette = []string{
	"#4F46E5", "#059669", "#D97706", "#DC2626", "#7C3AED",
	"#0891B2", "#DB2777", "#65A30D", "#EA580C", "#475569",
}

// GridOptions 网格时间范围（整点，左闭右开）
type GridOptions struct {
	StartHour int `json:"start_hour"`
	EndHour   int `json:"end_hour"`
}

// DefaultGridOptions 7:00 ~ 22:00
func DefaultGridOptions() GridOptions {
	return GridOptions{StartHour: DefaultStartHour, EndHour: DefaultEndHour}
}

// Slot 网格的一行（30 分钟）
type Slot struct {
	Hour   int    `json:"hour"`
	Minute int    `json:"minute"`
	Label  string `json:"label"`
}

// Placement 一次上课在网格中的位置
//
// 单元格键为 (DayName, Hour, Minute)，Minute 取 0 或 30。
// TopOffset 为在起始单元格内的偏移（单元格高度的比例），HeightSlots 为跨越的单元格数。
type Placement struct {
	SessionID   model.ID `json:"session_id"`
	Code        string   `json:"code"`
	Section     string   `json:"section,omitempty"`
	Title       string   `json:"title,omitempty"`
	Room        string   `json:"room,omitempty"`
	Day         string   `json:"day"`
	DayName     string   `json:"day_name"`
	Hour        int      `json:"hour"`
	Minute      int      `json:"minute"`
	StartTime   string   `json:"start_time"`
	EndTime     string   `json:"end_time"`
	TopOffset   float64  `json:"top_offset"`
	HeightSlots float64  `json:"height_slots"`
	ColorIndex  int      `json:"color_index"`
	Online      bool     `json:"online"`
}

// Grid 周视图
type Grid struct {
	Days       []string    `json:"days"`
	Slots      []Slot      `json:"slots"`
	Placements []Placement `json:"placements"`
	// Unplaced 非待定但无法放置的记录（时间无法解析或超出网格范围），数据仍保留
	Unplaced []model.ID `json:"unplaced"`
}

// BuildGrid 将记录排布到网格上，待定记录直接跳过
func BuildGrid(sessions []model.CourseSession, opts GridOptions) Grid {
	if opts.EndHour <= opts.StartHour {
		opts = DefaultGridOptions()
	}

	g := Grid{
		Days:       make([]string, 0, len(model.WeekDays)),
		Slots:      make([]Slot, 0, (opts.EndHour-opts.StartHour)*2),
		Placements: make([]Placement, 0, len(sessions)),
		Unplaced:   make([]model.ID, 0),
	}
	for _, d := range model.WeekDays {
		g.Days = append(g.Days, model.DayNames[d])
	}
	for h := opts.StartHour; h < opts.EndHour; h++ {
		for _, m := range []int{0, SlotMinutes} {
			g.Slots = append(g.Slots, Slot{Hour: h, Minute: m, Label: SlotLabel(h, m)})
		}
	}

	colors := ColorIndex(sessions)
	for _, s := range sessions {
		if s.IsTBA {
			continue
		}
		start, okStart := TimeToMinutes(s.StartTime)
		end, okEnd := TimeToMinutes(s.EndTime)
		placed := false
		if okStart && okEnd {
			hour := start / 60
			minute := 0
			if start%60 >= SlotMinutes {
				minute = SlotMinutes
			}
			if hour >= opts.StartHour && hour < opts.EndHour {
				for _, day := range s.Days {
					name, ok := model.DayNames[day]
					if !ok {
						continue
					}
					g.Placements = append(g.Placements, Placement{
						SessionID:   s.ID,
						Code:        s.Code,
						Section:     s.Section,
						Title:       s.Title,
						Room:        s.Room,
						Day:         day,
						DayName:     name,
						Hour:        hour,
						Minute:      minute,
						StartTime:   s.StartTime,
						EndTime:     s.EndTime,
						TopOffset:   float64(start%SlotMinutes) / SlotMinutes,
						HeightSlots: float64(end-start) / SlotMinutes,
						ColorIndex:  colors[s.Code],
						Online:      IsOnline(s.Room),
					})
					placed = true
				}
			}
		}
		if !placed {
			g.Unplaced = append(g.Unplaced, s.ID)
		}
	}
	return g
}

// Cell 返回起始于指定单元格的放置
func (g Grid) Cell(dayName string, hour, minute int) []Placement {
	var out []Placement
	for _, p := range g.Placements {
		if p.DayName == dayName && p.Hour == hour && p.Minute == minute {
			out = append(out, p)
		}
	}
	return out
}

// ColorIndex 按代码首次出现顺序分配配色下标
func ColorIndex(sessions []model.CourseSession) map[string]int {
	idx := make(map[string]int)
	n := 0
	for _, s := range sessions {
		if _, ok := idx[s.Code]; ok {
			continue
		}
		idx[s.Code] = n % len(Palette)
		n++
	}
	return idx
}

var reClock = regexp.MustCompile(`(\d{1,2}):(\d{2})`)

// TimeToMinutes "HH:MM" → 当日分钟数
func TimeToMinutes(s string) (int, bool) {
	m := reClock.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	h, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	return h*60 + mm, true
}

// IsOnline 教室是否为线上
func IsOnline(room string) bool {
	return strings.Contains(strings.ToUpper(room), "ONLINE")
}
