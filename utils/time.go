package utils

import (
	"strings"
	"time"
)

// 打卡调度全部基于单一时区的统一时钟，这里集中时间格式

// ClockMinute 返回分钟精度的时刻字符串，如 "09:00"
func ClockMinute(t time.Time) string {
	return t.Format("15:04")
}

// WeekdayName 返回小写的星期名，如 "monday"，与 active_days 中的取值一致
func WeekdayName(t time.Time) string {
	return strings.ToLower(t.Weekday().String())
}

// DateOnly 截断到当天零点，作为 checkin_date
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DateString 返回 "2006-01-02" 格式的日期
func DateString(t time.Time) string {
	return t.Format("2006-01-02")
}
