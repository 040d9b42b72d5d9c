// Package parser 将 OCR 识别或从教务门户复制的课表文本解析为结构化的上课记录。
//
// 处理流程：
//
//	原始文本 → 去空白的非空行 → Classify 选定唯一版式 → 对应提取器 → 兜底 / 归一化
//
// 包内无状态，所有函数可并发调用；任何输入都不会 panic 或返回错误，
// 无法识别的行被静默跳过，调用方只需关心"解析出 N 条记录"。
package parser

import (
	"strings"

	"schedule-visualizer/backend/internal/model"
)

// Result 一次解析的结果
type Result struct {
	Format   Format                `json:"format" yaml:"format"`
	Sessions []model.CourseSession `json:"sessions" yaml:"sessions"`
	// MissingSections 表格版式不含班级号，提示调用方需要手动补充
	MissingSections bool `json:"missingSections" yaml:"missingSections"`
	// UsedFallback 版式提取器一无所获，结果来自兜底的代码扫描
	UsedFallback bool `json:"usedFallback" yaml:"usedFallback"`
}

// Parse 解析粘贴的课表文本
func Parse(text string) Result {
	lines := SplitLines(text)
	format := Classify(lines, text)

	var sessions []model.CourseSession
	switch format {
	case FormatTabular:
		sessions = ParseTabular(lines)
	case FormatBlock:
		sessions = ParseBlock(lines)
	case FormatPortal:
		sessions = ParsePortal(lines)
	default:
		sessions = ParseSimple(lines)
	}

	res := Result{Format: format, MissingSections: format == FormatTabular}
	if len(sessions) == 0 {
		sessions = Fallback(lines)
		res.UsedFallback = true
	}
	res.Sessions = finalize(sessions)
	return res
}

// ParseRecognized 解析 OCR 识别文本：增量提取，失败时兜底
func ParseRecognized(text string) Result {
	res := Result{Format: FormatOCR}
	sessions := ParseOCR(text)
	if len(sessions) == 0 {
		sessions = Fallback(SplitLines(text))
		res.UsedFallback = true
	}
	res.Sessions = finalize(sessions)
	return res
}

// SplitLines 按行切分，去掉首尾空白并丢弃空行
func SplitLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// finalize 统一收尾：
//   - 开始/结束时间只有一个时两者一并清空
//   - 星期去重，nil 统一为空切片
//   - 无星期且无时间的记录标记为待定
//   - 分配 ID
func finalize(sessions []model.CourseSession) []model.CourseSession {
	out := make([]model.CourseSession, 0, len(sessions))
	for _, s := range sessions {
		if (s.StartTime == "") != (s.EndTime == "") {
			s.StartTime, s.EndTime = "", ""
		}
		if s.Days == nil {
			s.Days = []string{}
		} else {
			s.Days = uniqueDays(s.Days)
		}
		if len(s.Days) == 0 && s.StartTime == "" {
			s.IsTBA = true
		}
		if s.ID == "" {
			s.ID = model.NewID()
		}
		out = append(out, s)
	}
	return out
}
