package timetable

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatTimeDisplay "14:00" → "2:00 PM"，空串原样返回
func FormatTimeDisplay(t string) string {
	if t == "" {
		return ""
	}
	hh, mm, ok := strings.Cut(t, ":")
	if !ok {
		return t
	}
	h, err := strconv.Atoi(hh)
	if err != nil {
		return t
	}
	period := "AM"
	if h >= 12 {
		period = "PM"
	}
	switch {
	case h > 12:
		h -= 12
	case h == 0:
		h = 12
	}
	return fmt.Sprintf("%d:%s %s", h, mm, period)
}

// SlotLabel 网格行标签，如 "7:00 AM"、"12:30 PM"
func SlotLabel(hour, minute int) string {
	return FormatTimeDisplay(fmt.Sprintf("%02d:%02d", hour, minute))
}

// AbbreviateRoom 紧凑视图下的教室简称
func AbbreviateRoom(room string) string {
	upper := strings.ToUpper(room)
	switch {
	case strings.Contains(upper, "CASEROOM"):
		return "CASE"
	case strings.Contains(upper, "ONLINE"):
		return "ONLINE"
	case strings.Contains(upper, "FIELD"):
		return "FIELD"
	}
	return room
}
