package tools

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"haru/app/store"
	"haru/app/util/timeparse"

	"github.com/elliotchance/pie/v2"
)

type ReminderCreateTool struct {
	store *store.Store

	// overridable clock for tests
	now func() time.Time
}

func (t *ReminderCreateTool) Name() string {
	return "REMINDER"
}

func (t *ReminderCreateTool) Description() string {
	return `- Reminder: When the user wants to set a reminder, output [REMINDER:time,content]
  - time: relative time like "30분", "1시간", "2시간 30분" or absolute time like "14:00", "14시", "오후 2시"
  - content: what to remind about
  - e.g. [REMINDER:30분,회의 시작], [REMINDER:14:00,점심 약속], [REMINDER:오후 3시,발표 준비]`
}

func (t *ReminderCreateTool) UsageRules() string {
	return `- For reminder, extract the time and what to remind. The user may say things like "30분 후에 알려줘", "내일 회의 알려줘", "오후 3시에 약 먹으라고 알려줘".`
}

func (t *ReminderCreateTool) Handle(ctx context.Context, arg string, tc *Context) (string, error) {
	timeStr, content, ok := strings.Cut(arg, ",")
	if !ok || strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("cannot parse reminder request %q, expected time,content", arg)
	}

	timeStr = strings.TrimSpace(timeStr)
	content = strings.TrimSpace(content)

	now := time.Now()
	if t.now != nil {
		now = t.now()
	}

	remindAt, ok := timeparse.Parse(timeStr, now)
	if !ok {
		return "", fmt.Errorf("failed to parse time %q, could not set the reminder", timeStr)
	}

	id, err := t.store.AddReminder(ctx, tc.ConversationID, content, remindAt, "")
	if err != nil {
		return "", fmt.Errorf("failed to save reminder: %w", err)
	}

	return fmt.Sprintf(`Reminder set successfully:
- ID: #%d
- Time: %s
- Content: %s`,
		id, timeparse.Format(remindAt), content), nil
}

type ReminderListTool struct {
	store *store.Store
}

func (t *ReminderListTool) Name() string {
	return "REMINDER_LIST"
}

func (t *ReminderListTool) Description() string {
	return "- Reminder list: When the user asks what reminders are set, output [REMINDER_LIST]"
}

func (t *ReminderListTool) UsageRules() string {
	return ""
}

func (t *ReminderListTool) Handle(ctx context.Context, _ string, tc *Context) (string, error) {
	reminders, err := t.store.ListReminders(ctx, tc.ConversationID)
	if err != nil {
		return "", fmt.Errorf("failed to list reminders: %w", err)
	}

	if len(reminders) == 0 {
		return "No reminders are set.", nil
	}

	lines := pie.Map(reminders, func(r store.Reminder) string {
		label := store.RecurrenceLabel(r.Recurrence)
		if label != "" {
			label = " 🔁" + label
		}
		return fmt.Sprintf("- #%d [%s]%s %s", r.ID, timeparse.Format(r.RemindAt.Local()), label, r.Content)
	})

	return "Current reminders:\n" + strings.Join(lines, "\n"), nil
}

type ReminderDeleteTool struct {
	store *store.Store
}

func (t *ReminderDeleteTool) Name() string {
	return "REMINDER_DEL"
}

func (t *ReminderDeleteTool) Description() string {
	return "- Reminder delete: When the user wants to cancel a reminder, output [REMINDER_DEL:id] with the reminder's #id (e.g. [REMINDER_DEL:3])"
}

func (t *ReminderDeleteTool) UsageRules() string {
	return ""
}

func (t *ReminderDeleteTool) Handle(ctx context.Context, arg string, tc *Context) (string, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(arg), "#")), 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid reminder id %q", arg)
	}

	deleted, err := t.store.DeleteReminder(ctx, tc.ConversationID, id)
	if err != nil {
		return "", fmt.Errorf("failed to delete reminder: %w", err)
	}

	if !deleted {
		return fmt.Sprintf("Reminder #%d was not found.", id), nil
	}

	return fmt.Sprintf("Reminder #%d deleted.", id), nil
}
