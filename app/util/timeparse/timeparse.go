// Package timeparse understands the time expressions users put into
// reminders: relative Korean durations ("30분", "2시간 30분", "1일") and
// absolute clock times ("14:00", "14시 30분", "오후 2시"). Absolute times
// already past today roll over to tomorrow.
package timeparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	minutesPattern  = regexp.MustCompile(`^(\d+)\s*분(?:\s*후)?$`)
	hoursPattern    = regexp.MustCompile(`^(\d+)\s*시간(?:\s*후)?$`)
	hourMinPattern  = regexp.MustCompile(`^(\d+)\s*시간\s*(\d+)\s*분(?:\s*후)?$`)
	daysPattern     = regexp.MustCompile(`^(\d+)\s*일(?:\s*후)?$`)
	clockPattern    = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
	koreanPattern   = regexp.MustCompile(`^(\d{1,2})시(?:\s*(\d{1,2})분)?$`)
	meridiemPattern = regexp.MustCompile(`^(오전|오후)\s*(\d{1,2})시(?:\s*(\d{1,2})분)?$`)
)

// Parse resolves a time expression relative to now. The second return value
// is false when the expression is not recognized.
func Parse(s string, now time.Time) (time.Time, bool) {
	s = strings.TrimSpace(s)

	// hour+minute first: "1시간 30분" also matches the plain hours pattern prefix
	if m := hourMinPattern.FindStringSubmatch(s); m != nil {
		return now.Add(time.Duration(atoi(m[1]))*time.Hour + time.Duration(atoi(m[2]))*time.Minute), true
	}
	if m := minutesPattern.FindStringSubmatch(s); m != nil {
		return now.Add(time.Duration(atoi(m[1])) * time.Minute), true
	}
	if m := hoursPattern.FindStringSubmatch(s); m != nil {
		return now.Add(time.Duration(atoi(m[1])) * time.Hour), true
	}
	if m := daysPattern.FindStringSubmatch(s); m != nil {
		return now.AddDate(0, 0, atoi(m[1])), true
	}

	if m := clockPattern.FindStringSubmatch(s); m != nil {
		hour, minute := atoi(m[1]), atoi(m[2])
		if hour > 23 || minute > 59 {
			return time.Time{}, false
		}
		return nextClock(now, hour, minute), true
	}
	if m := koreanPattern.FindStringSubmatch(s); m != nil {
		hour, minute := atoi(m[1]), 0
		if m[2] != "" {
			minute = atoi(m[2])
		}
		if hour > 23 || minute > 59 {
			return time.Time{}, false
		}
		return nextClock(now, hour, minute), true
	}
	if m := meridiemPattern.FindStringSubmatch(s); m != nil {
		hour := atoi(m[2])
		if hour < 1 || hour > 12 {
			return time.Time{}, false
		}
		if m[1] == "오후" && hour != 12 {
			hour += 12
		} else if m[1] == "오전" && hour == 12 {
			hour = 0
		}
		minute := 0
		if m[3] != "" {
			minute = atoi(m[3])
		}
		if minute > 59 {
			return time.Time{}, false
		}
		return nextClock(now, hour, minute), true
	}

	return time.Time{}, false
}

// Format renders a reminder time the way it is shown to the user.
func Format(t time.Time) string {
	return t.Format("01/02 15:04")
}

// longest expressions first, so "2시간 30분" is not split after "2시간"
var leadingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(\d+\s*시간\s*\d+\s*분)\s+`),
	regexp.MustCompile(`^(\d+\s*분)\s+`),
	regexp.MustCompile(`^(\d+\s*시간)\s+`),
	regexp.MustCompile(`^(\d+\s*일)\s+`),
	regexp.MustCompile(`^(\d{1,2}:\d{2})\s+`),
	regexp.MustCompile(`^(오[전후]\s*\d{1,2}시(?:\s*\d{1,2}분)?)\s+`),
	regexp.MustCompile(`^(\d{1,2}시(?:\s*\d{1,2}분)?)\s+`),
}

// ExtractLeading splits a leading time expression off free-form text like
// "30분 회의 시작", returning the expression and the remaining content.
func ExtractLeading(text string) (string, string, bool) {
	text = strings.TrimSpace(text)

	for _, p := range leadingPatterns {
		if m := p.FindStringSubmatchIndex(text); m != nil {
			return text[m[2]:m[3]], strings.TrimSpace(text[m[1]:]), true
		}
	}

	return "", "", false
}

// NormalizeClock parses a bare "HH:MM" clock and returns it zero-padded, so
// stored clock strings compare lexicographically in chronological order.
func NormalizeClock(s string) (string, bool) {
	m := clockPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return "", false
	}

	hour, minute := atoi(m[1]), atoi(m[2])
	if hour > 23 || minute > 59 {
		return "", false
	}

	return fmt.Sprintf("%02d:%02d", hour, minute), true
}

func nextClock(now time.Time, hour, minute int) time.Time {
	target := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !target.After(now) {
		target = target.AddDate(0, 0, 1)
	}
	return target
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
