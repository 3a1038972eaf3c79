package queue

import (
	"log/slog"

	"github.com/samber/do"
)

const bufferSize = 64

var _ do.Shutdownable = (*Service)(nil)

type Service struct {
	queue chan Message
}

type Message struct {
	ConversationID string
	Text           string
}

func New(_ *do.Injector) (*Service, error) {
	return &Service{
		queue: make(chan Message, bufferSize),
	}, nil
}

// Add enqueues a message. It may race Shutdown closing the channel; the
// recover swallows the send-on-closed panic, dropping the message, which is
// acceptable mid-shutdown.
func (s *Service) Add(conversationID, text string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("message dropped during shutdown")
		}
	}()

	select {
	case s.queue <- Message{conversationID, text}:
	default:
		slog.Warn("message queue is full")
	}
}

func (s *Service) Channel() <-chan Message {
	return s.queue
}

func (s *Service) Shutdown() error {
	close(s.queue)

	return nil
}
