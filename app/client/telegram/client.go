// Package telegram is the chat transport: it long-polls incoming private
// messages into the queue and sends replies back out. Conversation ids are
// telegram chat ids rendered as strings.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"haru/app/config"
	"haru/app/service/queue"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/do"
)

const maxMessageLength = 4000

type Client struct {
	cfg      *config.Config
	bot      *tgbotapi.BotAPI
	queueSvc *queue.Service
	allowed  map[int64]bool
}

func NewClient(di *do.Injector) (*Client, error) {
	cfg := do.MustInvoke[*config.Config](di)

	bot, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	allowed := make(map[int64]bool, len(cfg.Telegram.AllowedChatIDs))
	for _, id := range cfg.Telegram.AllowedChatIDs {
		allowed[id] = true
	}

	return &Client{
		cfg:      cfg,
		bot:      bot,
		queueSvc: do.MustInvoke[*queue.Service](di),
		allowed:  allowed,
	}, nil
}

// RunPolling consumes telegram updates until ctx is cancelled, pushing
// private-chat text messages into the queue.
func (c *Client) RunPolling(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30

	updates := c.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			c.bot.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			if !update.Message.Chat.IsPrivate() {
				continue
			}
			if len(c.allowed) > 0 && !c.allowed[update.Message.Chat.ID] {
				slog.Warn("Ignoring message from unknown chat", "chat_id", update.Message.Chat.ID)
				continue
			}

			c.queueSvc.Add(strconv.FormatInt(update.Message.Chat.ID, 10), update.Message.Text)
		}
	}
}

// SendMessage delivers text to a conversation, splitting messages that
// exceed the telegram limit. Fire-and-forget: failures are the caller's to log.
func (c *Client) SendMessage(conversationID, text string) error {
	chatID, err := strconv.ParseInt(conversationID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid conversation id %q: %w", conversationID, err)
	}

	runes := []rune(text)
	for len(runes) > 0 {
		chunk := runes
		if len(chunk) > maxMessageLength {
			chunk = chunk[:maxMessageLength]
		}
		runes = runes[len(chunk):]

		if _, err = c.bot.Send(tgbotapi.NewMessage(chatID, string(chunk))); err != nil {
			return fmt.Errorf("failed to send telegram message: %w", err)
		}
	}

	return nil
}
