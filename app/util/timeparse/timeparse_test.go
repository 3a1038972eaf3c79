package timeparse

import (
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	// 10:30 in the morning
	now := time.Date(2026, 3, 5, 10, 30, 0, 0, time.Local)

	tests := []struct {
		input string
		want  time.Time
	}{
		{"30분", now.Add(30 * time.Minute)},
		{"30분 후", now.Add(30 * time.Minute)},
		{"1시간", now.Add(time.Hour)},
		{"2시간 후", now.Add(2 * time.Hour)},
		{"2시간 30분", now.Add(2*time.Hour + 30*time.Minute)},
		{"1일", now.AddDate(0, 0, 1)},
		{"3일 후", now.AddDate(0, 0, 3)},

		// absolute, still ahead today
		{"14:00", time.Date(2026, 3, 5, 14, 0, 0, 0, time.Local)},
		{"14시", time.Date(2026, 3, 5, 14, 0, 0, 0, time.Local)},
		{"14시 30분", time.Date(2026, 3, 5, 14, 30, 0, 0, time.Local)},
		{"오후 2시", time.Date(2026, 3, 5, 14, 0, 0, 0, time.Local)},
		{"오후 2시 15분", time.Date(2026, 3, 5, 14, 15, 0, 0, time.Local)},
		{"오전 11시", time.Date(2026, 3, 5, 11, 0, 0, 0, time.Local)},

		// already past today, rolls to tomorrow
		{"9:00", time.Date(2026, 3, 6, 9, 0, 0, 0, time.Local)},
		{"오전 9시", time.Date(2026, 3, 6, 9, 0, 0, 0, time.Local)},

		// meridiem edge cases
		{"오후 12시", time.Date(2026, 3, 5, 12, 0, 0, 0, time.Local)},
		{"오전 12시", time.Date(2026, 3, 6, 0, 0, 0, 0, time.Local)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := Parse(tt.input, now)
			if !ok {
				t.Fatalf("Parse(%q) not recognized", tt.input)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseUnrecognized(t *testing.T) {
	now := time.Now()

	for _, input := range []string{"", "내일쯤", "soon", "25:99", "분", "시간"} {
		if _, ok := Parse(input, now); ok {
			t.Errorf("Parse(%q) should not be recognized", input)
		}
	}
}

func TestExtractLeading(t *testing.T) {
	tests := []struct {
		input   string
		expr    string
		content string
	}{
		{"30분 회의 시작", "30분", "회의 시작"},
		{"2시간 30분 빨래 널기", "2시간 30분", "빨래 널기"},
		{"1시간 스트레칭", "1시간", "스트레칭"},
		{"3일 택배 확인", "3일", "택배 확인"},
		{"14:00 점심 약속", "14:00", "점심 약속"},
		{"오후 2시 회의", "오후 2시", "회의"},
		{"오전 9시 30분 출근 준비", "오전 9시 30분", "출근 준비"},
		{"18시 퇴근", "18시", "퇴근"},
		{"  30분   여백 많은 입력  ", "30분", "여백 많은 입력"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expr, content, ok := ExtractLeading(tt.input)
			if !ok {
				t.Fatalf("ExtractLeading(%q) not recognized", tt.input)
			}
			if expr != tt.expr || content != tt.content {
				t.Errorf("ExtractLeading(%q) = (%q, %q), want (%q, %q)",
					tt.input, expr, content, tt.expr, tt.content)
			}
		})
	}
}

func TestExtractLeadingUnrecognized(t *testing.T) {
	for _, input := range []string{"", "회의 시작", "언젠가 30분", "30분"} {
		if _, _, ok := ExtractLeading(input); ok {
			t.Errorf("ExtractLeading(%q) should not be recognized", input)
		}
	}
}

func TestNormalizeClock(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"08:00", "08:00"},
		{"8:00", "08:00"},
		{"23:59", "23:59"},
		{"0:05", "00:05"},
		{" 7:30 ", "07:30"},
	}

	for _, tt := range tests {
		got, ok := NormalizeClock(tt.input)
		if !ok {
			t.Fatalf("NormalizeClock(%q) not recognized", tt.input)
		}
		if got != tt.want {
			t.Errorf("NormalizeClock(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}

	for _, input := range []string{"", "24:00", "12:60", "8시", "0800"} {
		if _, ok := NormalizeClock(input); ok {
			t.Errorf("NormalizeClock(%q) should not be recognized", input)
		}
	}
}

func TestFormat(t *testing.T) {
	ts := time.Date(2026, 3, 5, 14, 5, 0, 0, time.Local)
	if got := Format(ts); got != "03/05 14:05" {
		t.Errorf("Format = %q", got)
	}
}
