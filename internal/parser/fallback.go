package parser

import (
	"strings"

	"schedule-visualizer/backend/internal/model"
)

// Fallback 兜底：只识别带院系前缀的课程代码，按首次出现顺序去重，
// 全部标记为待定（IsTBA）且星期为空。
func Fallback(lines []string) []model.CourseSession {
	text := strings.Join(lines, " ")

	sessions := make([]model.CourseSession, 0)
	seen := make(map[string]struct{})
	for _, m := range reDeptCode.FindAllStringSubmatch(text, -1) {
		code := strings.ToUpper(reWhitespace.ReplaceAllString(m[1]+m[2], ""))
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		sessions = append(sessions, model.CourseSession{
			Code:  code,
			Days:  []string{},
			IsTBA: true,
		})
	}
	return sessions
}
