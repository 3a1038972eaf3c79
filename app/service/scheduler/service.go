// Package scheduler delivers due reminders, independent of any live
// conversation turn. One background poll loop; at-least-once delivery.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"haru/app/client/telegram"
	"haru/app/config"
	"haru/app/service/briefing"
	"haru/app/store"

	"github.com/samber/do"
)

// Transport is where reminders are sent. Fire-and-forget: the scheduler
// logs failures and retries the row on the next poll.
type Transport interface {
	SendMessage(conversationID, text string) error
}

// BriefingSource renders the daily briefing for one conversation.
type BriefingSource interface {
	Generate(ctx context.Context, conversationID, city string) string
}

type Service struct {
	cfg       *config.Config
	store     *store.Store
	transport Transport
	briefing  BriefingSource
}

func New(di *do.Injector) (*Service, error) {
	return &Service{
		cfg:       do.MustInvoke[*config.Config](di),
		store:     do.MustInvoke[*store.Store](di),
		transport: do.MustInvoke[*telegram.Client](di),
		briefing:  do.MustInvoke[*briefing.Service](di),
	}, nil
}

// Run polls for due reminders until ctx is cancelled. Cancellation is
// honored at poll boundaries only, never mid-delivery.
func (s *Service) Run(ctx context.Context) {
	interval := s.cfg.Scheduler.PollIntervalOrDefault()

	slog.Info("Reminder scheduler started", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Reminder scheduler stopped")
			return
		case <-ticker.C:
			s.poll(ctx, time.Now())
		}
	}
}

// poll delivers every reminder due at now, in due-time order. A single row's
// failure never stops the poll or crashes the process: the row is skipped
// and picked up again next time.
func (s *Service) poll(ctx context.Context, now time.Time) {
	due, err := s.store.DueReminders(ctx, now)
	if err != nil {
		slog.Error("Failed to query due reminders", "error", err)
		return
	}

	for _, r := range due {
		if err := s.deliver(ctx, r); err != nil {
			slog.Error("Failed to deliver reminder",
				"reminder_id", r.ID,
				"conversation_id", r.ConversationID,
				"error", err)
		}
	}

	s.pollBriefings(ctx, now)
}

// pollBriefings sends every daily briefing whose clock time has passed and
// that has not gone out today. Same deliver-then-mark, at-least-once
// semantics as reminders.
func (s *Service) pollBriefings(ctx context.Context, now time.Time) {
	due, err := s.store.DueBriefings(ctx, now)
	if err != nil {
		slog.Error("Failed to query due briefings", "error", err)
		return
	}

	for _, b := range due {
		text := s.briefing.Generate(ctx, b.ConversationID, b.City)

		if err := s.transport.SendMessage(b.ConversationID, text); err != nil {
			slog.Error("Failed to send briefing",
				"conversation_id", b.ConversationID,
				"error", err)
			continue
		}

		marked, err := s.store.MarkBriefingSent(ctx, b.ConversationID, now)
		if err != nil {
			slog.Error("Failed to mark briefing sent",
				"conversation_id", b.ConversationID,
				"error", err)
			continue
		}
		if !marked {
			slog.Debug("Briefing already marked by another poll",
				"conversation_id", b.ConversationID)
			continue
		}

		slog.Info("Delivered briefing", "conversation_id", b.ConversationID)
	}
}

func (s *Service) deliver(ctx context.Context, r store.Reminder) error {
	// Deliver first, then persist. A crash in between means the reminder
	// fires again on restart: at-least-once, accepted.
	if err := s.transport.SendMessage(r.ConversationID, formatReminder(r)); err != nil {
		return fmt.Errorf("failed to send: %w", err)
	}

	if r.Recurrence != "" {
		next := store.NextOccurrence(r.RemindAt, r.Recurrence)

		rescheduled, err := s.store.RescheduleReminder(ctx, r.ID, r.RemindAt, next)
		if err != nil {
			return fmt.Errorf("failed to reschedule: %w", err)
		}
		if !rescheduled {
			slog.Debug("Reminder already rescheduled by another poll", "reminder_id", r.ID)
			return nil
		}

		slog.Info("Delivered recurring reminder",
			"reminder_id", r.ID,
			"next", next)
		return nil
	}

	marked, err := s.store.MarkDelivered(ctx, r.ID)
	if err != nil {
		return fmt.Errorf("failed to mark delivered: %w", err)
	}
	if !marked {
		slog.Debug("Reminder already marked by another poll", "reminder_id", r.ID)
		return nil
	}

	slog.Info("Delivered reminder", "reminder_id", r.ID)
	return nil
}

func formatReminder(r store.Reminder) string {
	tag := ""
	if label := store.RecurrenceLabel(r.Recurrence); label != "" {
		tag = " 🔁" + label
	}

	return fmt.Sprintf("⏰ 리마인더%s\n%s", tag, r.Content)
}
