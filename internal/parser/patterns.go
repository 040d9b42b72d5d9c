package parser

import "regexp"

// ── 公共正则（包级编译，只读，可并发使用） ──

var (
	// 时间
	reTwentyFour   = regexp.MustCompile(`^\d{2}:\d{2}$`)
	reClockToken   = regexp.MustCompile(`(?i)(\d{1,2}):(\d{2})\s*(AM|PM)?`)
	reHourMeridiem = regexp.MustCompile(`(?i)^(\d{1,2})\s*(AM|PM)$`)
	reTimeLiteral  = regexp.MustCompile(`(?i)\d{1,2}:\d{2}\s*(AM|PM)`)
	reTimeAll      = regexp.MustCompile(`(?i)(\d{1,2}:\d{2}\s*(?:AM|PM))`)
	reTimeRange    = regexp.MustCompile(`(?i)(\d{1,2}:\d{2}\s*(?:AM|PM))\s*[-–—]\s*(\d{1,2}:\d{2}\s*(?:AM|PM))`)

	// 星期
	reDigits   = regexp.MustCompile(`^\d+$`)
	reDayToken = regexp.MustCompile(`^(M|T|W|TH|F|S|SU|THS|MS|MWF|TTH|MW|TS|WF|MTW|MTWTH|MTWTHF)+$`)

	// 教室
	reRoomShape = regexp.MustCompile(`^(ONLINE|NGE|CASEROOM|FIELD|ROOM|[A-Z]+\d+)\s*(LEC|LAB|LECTURE|LABORATORY)?`)

	// 课程代码
	reStrictCode = regexp.MustCompile(`^[A-Z]{2,4}\d{3,4}[A-Z]?$`)
	reDeptCode   = regexp.MustCompile(`(?i)\b(CSIT|IT|CS|MATH|ENG|SCI|PHIL|PE|GE|FIL|NSTP)\s?(\d{3,4}[A-Z]?)\b`)
)
