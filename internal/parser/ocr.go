package parser

import (
	"regexp"
	"slices"
	"strings"

	"schedule-visualizer/backend/internal/model"
)

// ════════════════════════════════════════════════════════════
// ParseOCR：面向 OCR 识别文本的增量提取
// ════════════════════════════════════════════════════════════
//
// OCR 输出的列常被打散到相邻行，因此以代码行为锚点，
// 向后取 5 行拼接作为搜索窗口提取班级、时间段、星期与教室。
// 已存在 (代码, 开始时间, 星期序列) 相同的记录时不再重复添加。

const ocrWindow = 5

const ocrTitleMaxLen = 50

var (
	reOCRSection = regexp.MustCompile(`(?i)\b(G\d+)\b`)
	reOCRDay     = regexp.MustCompile(`\b([MTWFS]|TH)\b`)
	reOCRRoom    = regexp.MustCompile(`(?i)\b(ONLINE|NGE\d*|CASEROOM|FIELD)\s*(LEC|LAB)?`)
	reOCRTitle   = regexp.MustCompile(`^\s*([A-Za-z\s&,]+)`)
	reNewlines   = regexp.MustCompile(`\n+`)
)

var ocrHeaderPhrases = []string{"course code", "course title", "schedule"}

// ParseOCR 解析 OCR 识别文本
func ParseOCR(text string) []model.CourseSession {
	clean := reNewlines.ReplaceAllString(strings.ReplaceAll(text, "\r", ""), "\n")

	data := make([]string, 0)
	for _, line := range strings.Split(clean, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if containsAny(strings.ToLower(line), ocrHeaderPhrases) || len(strings.TrimSpace(line)) <= 2 {
			continue
		}
		data = append(data, line)
	}

	sessions := make([]model.CourseSession, 0)
	for i, line := range data {
		loc := reDeptCode.FindStringSubmatchIndex(line)
		if loc == nil {
			continue
		}
		code := strings.ToUpper(reWhitespace.ReplaceAllString(line[loc[2]:loc[3]]+line[loc[4]:loc[5]], ""))

		window := strings.Join(data[i:min(i+ocrWindow, len(data))], " ")

		section := ""
		if m := reOCRSection.FindStringSubmatch(window); m != nil {
			section = strings.ToUpper(m[1])
		}

		days := make([]string, 0, 2)
		for _, m := range reOCRDay.FindAllStringSubmatch(window, -1) {
			days = append(days, strings.ToUpper(m[1]))
		}
		days = uniqueDays(days)

		room := strings.TrimSpace(reOCRRoom.FindString(window))

		title := ""
		if m := reOCRTitle.FindStringSubmatch(line[loc[1]:]); m != nil {
			title = truncate(strings.TrimSpace(m[1]), ocrTitleMaxLen)
		}

		ranges := reTimeRange.FindAllStringSubmatch(window, -1)
		if len(ranges) > 0 {
			for t, r := range ranges {
				startTime, endTime := NormalizeTime(r[1]), NormalizeTime(r[2])
				courseDays := []string{}
				if t < len(days) {
					courseDays = []string{days[t]}
				} else if len(days) > 0 {
					courseDays = []string{days[0]}
				}
				if hasOCRDuplicate(sessions, code, startTime, courseDays) {
					continue
				}
				if len(courseDays) == 0 && startTime == "" {
					continue
				}
				sessions = append(sessions, model.CourseSession{
					Code:      code,
					Section:   section,
					Title:     title,
					Days:      courseDays,
					StartTime: startTime,
					EndTime:   endTime,
					Room:      room,
				})
			}
			continue
		}

		if len(days) > 0 && !slices.ContainsFunc(sessions, func(c model.CourseSession) bool { return c.Code == code }) {
			sessions = append(sessions, model.CourseSession{
				Code:    code,
				Section: section,
				Title:   title,
				Days:    days,
				Room:    room,
			})
		}
	}
	return sessions
}

func hasOCRDuplicate(sessions []model.CourseSession, code, startTime string, days []string) bool {
	for _, c := range sessions {
		if c.Code == code && c.StartTime == startTime && slices.Equal(c.Days, days) {
			return true
		}
	}
	return false
}

// truncate 按字符截断
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
