package parser

import (
	"regexp"
	"strings"
)

// Format 源文本版式
type Format string

const (
	FormatTabular Format = "tabular"
	FormatBlock   Format = "block"
	FormatPortal  Format = "portal"
	FormatSimple  Format = "simple"
	FormatOCR     Format = "ocr" // 识别文本走增量提取，不经过版式判定
)

// headerScanLimit 表头只在前 15 行内查找
const headerScanLimit = 15

// tabularHeaderKeywords 判定表格版式所需的表头关键字（命中 ≥3 个）
var tabularHeaderKeywords = []string{
	"subject code", "description", "lec units", "lab units",
	"credited units", "room #", "schedule",
}

var (
	reBlockCode      = regexp.MustCompile(`^[A-Z]{2,6}\d{2,4}[A-Z]?$`)
	reBlockSection   = regexp.MustCompile(`^[GD]\d+$`)
	reCompositeSect  = regexp.MustCompile(`(?i)^[A-Z]{2,4}-[A-Z]{2,4}-[A-Z0-9]+$`)
	portalAnchorText = "BACHELOR OF SCIENCE"
)

// Classify 按严格优先级判定版式：表格 → 块 → 门户 → 简单。
// lines 为去空白后的非空行，raw 为原始全文。
func Classify(lines []string, raw string) Format {
	switch {
	case isTabular(lines):
		return FormatTabular
	case isBlock(lines):
		return FormatBlock
	case isPortal(lines, raw):
		return FormatPortal
	default:
		return FormatSimple
	}
}

func isTabular(lines []string) bool {
	limit := min(len(lines), headerScanLimit)
	hits := 0
	for _, kw := range tabularHeaderKeywords {
		compact := strings.Replace(kw, " ", "", 1)
		for _, line := range lines[:limit] {
			l := strings.ToLower(line)
			if strings.Contains(l, kw) || l == compact {
				hits++
				break
			}
		}
	}
	return hits >= 3
}

func isBlock(lines []string) bool {
	for i := 0; i+1 < len(lines); i++ {
		if !reBlockCode.MatchString(lines[i]) {
			continue
		}
		next := lines[i+1]
		if reBlockSection.MatchString(next) || reCompositeSect.MatchString(next) {
			return true
		}
	}
	return false
}

func isPortal(lines []string, raw string) bool {
	if !strings.Contains(raw, portalAnchorText) {
		return false
	}
	for _, line := range lines {
		if line == "CCS" {
			return true
		}
	}
	return false
}
