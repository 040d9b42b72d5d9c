package parser

import (
	"regexp"
	"strings"

	"schedule-visualizer/backend/internal/model"
)

// ════════════════════════════════════════════════════════════
// ParseBlock：块版式（每门课若干行，可选字段按固定顺序出现）
// ════════════════════════════════════════════════════════════
//
// 块结构：
//   代码 → [班级] → [C<数字>] → 名称 → 学分行* → 时间行* → 教室行* → [授课方式]
//
// 教室行只接受已知前缀或已知名称，其余一律停止收集，
// 以免把下一门课的代码（如 "IT101"）误当作教室。

var (
	reCreditCode   = regexp.MustCompile(`^C\d+$`)
	reNumericLine  = regexp.MustCompile(`^\d+\.?\d*$`)
	reModeLine     = regexp.MustCompile(`^(Online|In-Person|Hybrid)$`)
	reRoomPrefix   = regexp.MustCompile(`(?i)^(NGE|GLE|RTL|SJ|AS|PE-)\d*[A-Z]?`)
	reRoomName     = regexp.MustCompile(`(?i)^(ONLINE|TBA|CASEROOM|FIELD)$`)
	reBlockSlot    = regexp.MustCompile(`(?i)^([A-Z]+)\s+(\d{1,2}:\d{2}\s*(?:AM|PM))\s*[-–]\s*(\d{1,2}:\d{2}\s*(?:AM|PM))`)
	reTrailingComa = regexp.MustCompile(`,\s*$`)
)

// blockRecord 扫描过程中累积的一门课
type blockRecord struct {
	code      string
	section   string
	title     string
	schedules []string
	rooms     []string
}

// ParseBlock 解析块版式
func ParseBlock(lines []string) []model.CourseSession {
	sessions := make([]model.CourseSession, 0)
	n := len(lines)

	for i := 0; i < n; {
		if !reBlockCode.MatchString(lines[i]) {
			i++
			continue
		}
		rec := blockRecord{code: lines[i]}
		i++

		// ── 班级 ──
		if i < n && (reBlockSection.MatchString(lines[i]) || reCompositeSect.MatchString(lines[i])) {
			rec.section = lines[i]
			i++
		}
		// ── C<数字> ──
		if i < n && reCreditCode.MatchString(lines[i]) {
			i++
		}
		// ── 名称 ──
		if i < n && !reNumericLine.MatchString(lines[i]) {
			rec.title = lines[i]
			i++
		}
		// ── 学分 ──
		for i < n && reNumericLine.MatchString(lines[i]) {
			i++
		}
		// ── 时间 ──
		for i < n && reTimeLiteral.MatchString(lines[i]) {
			rec.schedules = append(rec.schedules, stripTrailingComma(lines[i]))
			i++
		}
		// ── 教室 ──
		for i < n {
			candidate := stripTrailingComma(lines[i])
			if reModeLine.MatchString(candidate) || !isBlockRoom(candidate) {
				break
			}
			rec.rooms = append(rec.rooms, candidate)
			i++
		}
		// ── 授课方式 ──
		if i < n && reModeLine.MatchString(lines[i]) {
			i++
		}

		sessions = append(sessions, rec.sessions()...)
	}
	return sessions
}

// isBlockRoom 已知前缀优先，其次已知名称
func isBlockRoom(s string) bool {
	return reRoomPrefix.MatchString(s) || reRoomName.MatchString(s)
}

func stripTrailingComma(s string) string {
	return strings.TrimSpace(reTrailingComa.ReplaceAllString(s, ""))
}

func (r blockRecord) tba() model.CourseSession {
	return model.CourseSession{
		Code:    r.code,
		Section: r.section,
		Title:   r.title,
		Days:    []string{},
		IsTBA:   true,
	}
}

// sessions 每个时间行一条记录；没有可用时间行时返回一条待定记录
func (r blockRecord) sessions() []model.CourseSession {
	out := make([]model.CourseSession, 0, len(r.schedules))
	for idx, line := range r.schedules {
		m := reBlockSlot.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		room := ""
		if idx < len(r.rooms) {
			room = r.rooms[idx]
		} else if len(r.rooms) > 0 {
			room = r.rooms[0]
		}
		out = append(out, model.CourseSession{
			Code:      r.code,
			Section:   r.section,
			Title:     r.title,
			Days:      ParseDayString(m[1]),
			StartTime: NormalizeTime(m[2]),
			EndTime:   NormalizeTime(m[3]),
			Room:      room,
		})
	}
	if len(out) == 0 {
		return []model.CourseSession{r.tba()}
	}
	return out
}
