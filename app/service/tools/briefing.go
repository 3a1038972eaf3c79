package tools

import (
	"context"
	"fmt"
	"strings"

	"haru/app/store"
	"haru/app/util/timeparse"
)

type BriefingSetTool struct {
	store *store.Store
}

func (t *BriefingSetTool) Name() string {
	return "BRIEFING_SET"
}

func (t *BriefingSetTool) Description() string {
	return `- Briefing settings: When the user wants to change daily briefing settings, output [BRIEFING_SET:key,value]
  - e.g. [BRIEFING_SET:time,07:00], [BRIEFING_SET:city,부산], [BRIEFING_SET:enabled,true], [BRIEFING_SET:enabled,false]`
}

func (t *BriefingSetTool) UsageRules() string {
	return `- For briefing, detect when the user wants to change settings ("브리핑 7시로 바꿔줘" → [BRIEFING_SET:time,07:00], "브리핑 꺼줘" → [BRIEFING_SET:enabled,false]) or check them ("브리핑 설정 알려줘" → [BRIEFING_GET]).`
}

func (t *BriefingSetTool) Handle(ctx context.Context, arg string, tc *Context) (string, error) {
	key, value, ok := strings.Cut(arg, ",")
	if !ok {
		return "", fmt.Errorf("cannot parse briefing request %q, expected key,value", arg)
	}

	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)

	settings, err := t.store.BriefingSettings(ctx, tc.ConversationID)
	if err != nil {
		return "", fmt.Errorf("failed to load briefing settings: %w", err)
	}

	var confirmation string

	switch key {
	case "time":
		clock, valid := timeparse.NormalizeClock(value)
		if !valid {
			return "", fmt.Errorf("invalid briefing time %q, expected HH:MM", value)
		}
		settings.Time = clock
		confirmation = fmt.Sprintf("브리핑 시간이 %s로 설정되었습니다.", clock)

	case "city":
		if value == "" {
			return "", fmt.Errorf("no briefing city given")
		}
		settings.City = value
		confirmation = fmt.Sprintf("브리핑 도시가 %s로 설정되었습니다.", value)

	case "enabled":
		switch strings.ToLower(value) {
		case "true", "1", "on", "yes":
			settings.Enabled = true
			confirmation = "브리핑이 활성화되었습니다."
		default:
			settings.Enabled = false
			confirmation = "브리핑이 비활성화되었습니다."
		}

	default:
		return "", fmt.Errorf("unknown briefing setting %q", key)
	}

	if err = t.store.SetBriefingSettings(ctx, settings); err != nil {
		return "", fmt.Errorf("failed to save briefing settings: %w", err)
	}

	return confirmation, nil
}

type BriefingGetTool struct {
	store *store.Store
}

func (t *BriefingGetTool) Name() string {
	return "BRIEFING_GET"
}

func (t *BriefingGetTool) Description() string {
	return "- Briefing settings lookup: When the user asks about current briefing settings, output [BRIEFING_GET]"
}

func (t *BriefingGetTool) UsageRules() string {
	return ""
}

func (t *BriefingGetTool) Handle(ctx context.Context, _ string, tc *Context) (string, error) {
	settings, err := t.store.BriefingSettings(ctx, tc.ConversationID)
	if err != nil {
		return "", fmt.Errorf("failed to load briefing settings: %w", err)
	}

	return FormatBriefingSettings(settings), nil
}

// FormatBriefingSettings renders settings for both the tool result and the
// /briefing command reply.
func FormatBriefingSettings(b store.BriefingSettings) string {
	status := "활성화"
	if !b.Enabled {
		status = "비활성화"
	}

	lastSent := b.LastSent
	if lastSent == "" {
		lastSent = "없음"
	}

	return fmt.Sprintf("브리핑 설정:\n- 상태: %s\n- 시간: %s\n- 도시: %s\n- 마지막 발송: %s",
		status, b.Time, b.City, lastSent)
}
