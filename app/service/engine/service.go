// Package engine drains the inbound queue and turns messages into replies.
// Turns within one conversation are processed strictly in order; different
// conversations run concurrently.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"haru/app/client/telegram"
	"haru/app/config"
	"haru/app/service/briefing"
	"haru/app/service/dispatch"
	"haru/app/service/queue"
	"haru/app/store"

	"github.com/samber/do"
	"golang.org/x/sync/errgroup"
)

const workerBuffer = 16

const errorReply = "죄송해요, 처리 중 오류가 발생했어요. 잠시 후 다시 시도해주세요."

// Dispatcher produces the assistant reply for one user message.
type Dispatcher interface {
	HandleTurn(ctx context.Context, conversationID, text string) (string, error)
}

// Transport is where replies go back out.
type Transport interface {
	SendMessage(conversationID, text string) error
}

// Briefing renders the daily briefing on demand for /briefing now.
type Briefing interface {
	Generate(ctx context.Context, conversationID, city string) string
}

type Service struct {
	cfg        *config.Config
	store      *store.Store
	queueSvc   *queue.Service
	dispatcher Dispatcher
	transport  Transport
	briefing   Briefing
}

func New(di *do.Injector) (*Service, error) {
	return &Service{
		cfg:        do.MustInvoke[*config.Config](di),
		store:      do.MustInvoke[*store.Store](di),
		queueSvc:   do.MustInvoke[*queue.Service](di),
		dispatcher: do.MustInvoke[*dispatch.Service](di),
		transport:  do.MustInvoke[*telegram.Client](di),
		briefing:   do.MustInvoke[*briefing.Service](di),
	}, nil
}

// Run routes queue messages to per-conversation workers until ctx is
// cancelled or the queue is closed. A worker owns its conversation: messages
// for it are never processed out of order or in parallel.
func (s *Service) Run(ctx context.Context) {
	group, workerCtx := errgroup.WithContext(ctx)
	workers := make(map[string]chan queue.Message)

	defer func() {
		for _, ch := range workers {
			close(ch)
		}
		if err := group.Wait(); err != nil {
			slog.Error("Engine worker error", "error", err)
		}

		slog.Info("Engine stopped")
	}()

	slog.Info("Engine started")

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-s.queueSvc.Channel():
			if !ok {
				return
			}

			ch, exists := workers[msg.ConversationID]
			if !exists {
				ch = make(chan queue.Message, workerBuffer)
				workers[msg.ConversationID] = ch

				group.Go(func() error {
					s.runWorker(workerCtx, ch)
					return nil
				})
			}

			select {
			case ch <- msg:
			default:
				slog.Warn("Conversation worker is busy, dropping message",
					"conversation_id", msg.ConversationID)
			}
		}
	}
}

// runWorker processes one conversation's messages in order. The turn in
// flight always completes, but once ctx is cancelled no queued message is
// started.
func (s *Service) runWorker(ctx context.Context, ch <-chan queue.Message) {
	for {
		if ctx.Err() != nil {
			return
		}

		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}

			start := time.Now()

			s.process(ctx, msg)

			slog.Info("Processed message",
				"conversation_id", msg.ConversationID,
				"duration", time.Since(start))
		}
	}
}

func (s *Service) process(ctx context.Context, msg queue.Message) {
	reply, err := s.handle(ctx, msg.ConversationID, strings.TrimSpace(msg.Text))
	if err != nil {
		slog.Error("Failed to handle message",
			"conversation_id", msg.ConversationID,
			"error", err,
			"telegram", true)
		reply = errorReply
	}

	if reply == "" {
		return
	}

	if err = s.transport.SendMessage(msg.ConversationID, reply); err != nil {
		slog.Error("Failed to send reply",
			"conversation_id", msg.ConversationID,
			"error", err)
	}
}

func (s *Service) handle(ctx context.Context, conversationID, text string) (string, error) {
	switch text {
	case "/start":
		persona, err := s.store.Persona(ctx, conversationID)
		if err != nil {
			return "", fmt.Errorf("failed to load persona: %w", err)
		}

		return fmt.Sprintf("안녕하세요! 저는 %s예요. 무엇을 도와드릴까요?", persona.Name), nil

	case "/clear":
		if err := s.store.ClearHistory(ctx, conversationID); err != nil {
			return "", fmt.Errorf("failed to clear history: %w", err)
		}

		return "대화 기록을 모두 지웠어요.", nil

	case "/newme":
		if err := s.store.ClearPersona(ctx, conversationID); err != nil {
			return "", fmt.Errorf("failed to reset persona: %w", err)
		}

		return "페르소나를 기본값으로 되돌렸어요.", nil
	}

	if rest, ok := commandArgs(text, "/r"); ok {
		return s.handleReminderCommand(ctx, conversationID, rest)
	}
	if rest, ok := commandArgs(text, "/briefing"); ok {
		return s.handleBriefingCommand(ctx, conversationID, rest)
	}

	return s.dispatcher.HandleTurn(ctx, conversationID, text)
}

// commandArgs matches "/r" and "/r <args>" but not "/remind": a prefix match
// alone would swallow unrelated slash commands.
func commandArgs(text, cmd string) (string, bool) {
	if text == cmd {
		return "", true
	}
	if strings.HasPrefix(text, cmd+" ") {
		return strings.TrimSpace(text[len(cmd)+1:]), true
	}
	return "", false
}
