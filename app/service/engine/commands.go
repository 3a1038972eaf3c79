package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"haru/app/service/tools"
	"haru/app/store"
	"haru/app/util/timeparse"

	"github.com/elliotchance/pie/v2"
)

const reminderHelp = `⏰ 리마인더 사용법
/r <시간> <내용> - 1회 리마인더
/r list - 리마인더 목록
/r del <번호> - 리마인더 삭제

반복 리마인더
/r daily <시간> <내용> - 매일
/r weekday <시간> <내용> - 평일만
/r weekly <요일> <시간> <내용> - 매주
예: /r daily 18:00 퇴근
예: /r weekly 금 17:00 회식

시간 형식
30분, 1시간, 14:00, 14시, 오후 2시`

const briefingHelp = `사용법:
- /briefing - 현재 설정 확인
- /briefing now - 지금 즉시 브리핑 받기
- /briefing on - 브리핑 활성화
- /briefing off - 브리핑 비활성화
- /briefing time 07:00 - 시간 변경
- /briefing city 부산 - 도시 변경`

var dayMap = map[string]int{
	"월": 0, "화": 1, "수": 2, "목": 3, "금": 4, "토": 5, "일": 6,
}

func (s *Service) handleReminderCommand(ctx context.Context, conversationID, rest string) (string, error) {
	if rest == "" {
		return reminderHelp, nil
	}

	fields := strings.Fields(rest)
	cmd := strings.ToLower(fields[0])

	switch {
	case cmd == "list":
		return s.listReminders(ctx, conversationID)

	case cmd == "del":
		if len(fields) < 2 {
			return "삭제할 리마인더 번호를 입력해주세요. 예: /r del 1", nil
		}
		return s.deleteReminder(ctx, conversationID, fields[1])

	case cmd == "daily" || cmd == "weekday" || cmd == "weekly":
		return s.setRecurringReminder(ctx, conversationID, cmd, fields[1:])

	default:
		return s.setReminder(ctx, conversationID, rest)
	}
}

func (s *Service) listReminders(ctx context.Context, conversationID string) (string, error) {
	reminders, err := s.store.ListReminders(ctx, conversationID)
	if err != nil {
		return "", fmt.Errorf("failed to list reminders: %w", err)
	}

	if len(reminders) == 0 {
		return "설정된 리마인더가 없어요.", nil
	}

	lines := pie.Map(reminders, func(r store.Reminder) string {
		label := store.RecurrenceLabel(r.Recurrence)
		if label != "" {
			label = " 🔁" + label
		}
		return fmt.Sprintf("#%d [%s]%s %s", r.ID, timeparse.Format(r.RemindAt.Local()), label, r.Content)
	})

	return "⏰ 리마인더 목록\n" + strings.Join(lines, "\n"), nil
}

func (s *Service) deleteReminder(ctx context.Context, conversationID, arg string) (string, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(arg, "#"), 10, 64)
	if err != nil {
		return "올바른 리마인더 번호를 입력해주세요.", nil
	}

	deleted, err := s.store.DeleteReminder(ctx, conversationID, id)
	if err != nil {
		return "", fmt.Errorf("failed to delete reminder: %w", err)
	}
	if !deleted {
		return fmt.Sprintf("리마인더 #%d를 찾을 수 없어요.", id), nil
	}

	return fmt.Sprintf("리마인더 #%d 삭제 완료!", id), nil
}

func (s *Service) setRecurringReminder(ctx context.Context, conversationID, cmd string, fields []string) (string, error) {
	recurrence := cmd

	if cmd == "weekly" {
		if len(fields) < 3 {
			return "사용법: /r weekly <요일> <시간> <내용>\n예: /r weekly 금 17:00 회식", nil
		}
		day, ok := dayMap[fields[0]]
		if !ok {
			return "요일을 인식하지 못했어요. 사용 가능: 월, 화, 수, 목, 금, 토, 일", nil
		}
		recurrence = fmt.Sprintf("weekly:%d", day)
		fields = fields[1:]
	} else if len(fields) < 2 {
		return fmt.Sprintf("사용법: /r %s <시간> <내용>\n예: /r %s 18:00 퇴근", cmd, cmd), nil
	}

	timeStr, content, ok := timeparse.ExtractLeading(strings.Join(fields, " "))
	if !ok || content == "" {
		return "시간과 내용을 입력해주세요.\n예: /r daily 18:00 퇴근", nil
	}

	remindAt, ok := timeparse.Parse(timeStr, time.Now())
	if !ok {
		return fmt.Sprintf("'%s'을(를) 인식하지 못했어요.", timeStr), nil
	}

	id, err := s.store.AddReminder(ctx, conversationID, content, remindAt, recurrence)
	if err != nil {
		return "", fmt.Errorf("failed to add reminder: %w", err)
	}

	return fmt.Sprintf("🔁 반복 리마인더 설정 완료! (#%d)\n반복: %s\n시간: %s\n내용: %s",
		id, store.RecurrenceLabel(recurrence), timeparse.Format(remindAt), content), nil
}

func (s *Service) setReminder(ctx context.Context, conversationID, rest string) (string, error) {
	timeStr, content, ok := timeparse.ExtractLeading(rest)
	if !ok || content == "" {
		return "시간과 내용을 입력해주세요.\n예: /r 30분 회의 시작\n예: /r 14:00 점심 약속", nil
	}

	remindAt, ok := timeparse.Parse(timeStr, time.Now())
	if !ok {
		return fmt.Sprintf("'%s'을(를) 인식하지 못했어요. 다시 시도해주세요.", timeStr), nil
	}

	id, err := s.store.AddReminder(ctx, conversationID, content, remindAt, "")
	if err != nil {
		return "", fmt.Errorf("failed to add reminder: %w", err)
	}

	return fmt.Sprintf("⏰ 리마인더 설정 완료! (#%d)\n시간: %s\n내용: %s",
		id, timeparse.Format(remindAt), content), nil
}

func (s *Service) handleBriefingCommand(ctx context.Context, conversationID, args string) (string, error) {
	settings, err := s.store.BriefingSettings(ctx, conversationID)
	if err != nil {
		return "", fmt.Errorf("failed to load briefing settings: %w", err)
	}

	switch {
	case args == "":
		return tools.FormatBriefingSettings(settings), nil

	case args == "now":
		return s.briefing.Generate(ctx, conversationID, settings.City), nil

	case args == "on":
		settings.Enabled = true
		if err = s.store.SetBriefingSettings(ctx, settings); err != nil {
			return "", fmt.Errorf("failed to save briefing settings: %w", err)
		}
		return "✅ 브리핑이 활성화되었습니다.", nil

	case args == "off":
		settings.Enabled = false
		if err = s.store.SetBriefingSettings(ctx, settings); err != nil {
			return "", fmt.Errorf("failed to save briefing settings: %w", err)
		}
		return "🔕 브리핑이 비활성화되었습니다.", nil

	case strings.HasPrefix(args, "time "):
		clock, valid := timeparse.NormalizeClock(strings.TrimPrefix(args, "time "))
		if !valid {
			return "시간 형식이 올바르지 않아요. 예: /briefing time 07:00", nil
		}
		settings.Time = clock
		if err = s.store.SetBriefingSettings(ctx, settings); err != nil {
			return "", fmt.Errorf("failed to save briefing settings: %w", err)
		}
		return fmt.Sprintf("⏰ 브리핑 시간이 %s로 설정되었습니다.", clock), nil

	case strings.HasPrefix(args, "city "):
		settings.City = strings.TrimSpace(strings.TrimPrefix(args, "city "))
		if err = s.store.SetBriefingSettings(ctx, settings); err != nil {
			return "", fmt.Errorf("failed to save briefing settings: %w", err)
		}
		return fmt.Sprintf("🌍 브리핑 도시가 %s로 설정되었습니다.", settings.City), nil

	default:
		return briefingHelp, nil
	}
}
