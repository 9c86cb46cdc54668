package scheduler

import (
	"context"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/hray3182/calendar/internal/format"
	"github.com/hray3182/calendar/internal/models"
	"github.com/hray3182/calendar/internal/rrule"
)

// LogNotifier writes fired notifications to the process log.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, n models.Notification) error {
	log.Printf("Notification for event %s: %s", n.EventID, n.Message())
	return nil
}

// MessageSender is the part of *tgbotapi.BotAPI the Telegram notifier uses.
type MessageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier sends fired notifications to one chat.
type TelegramNotifier struct {
	api    MessageSender
	chatID int64
}

func NewTelegramNotifier(api MessageSender, chatID int64) *TelegramNotifier {
	return &TelegramNotifier{api: api, chatID: chatID}
}

func (t *TelegramNotifier) Notify(_ context.Context, n models.Notification) error {
	parsed := format.ParseMarkdown(NotificationText(n))
	msg := tgbotapi.NewMessage(t.chatID, parsed.Text)
	msg.Entities = parsed.Entities

	sent, err := t.api.Send(msg)
	if err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	log.Printf("Sent event notification %s to chat %d (msg_id=%d)", n.EventID, t.chatID, sent.MessageID)
	return nil
}

// NotificationText renders n as markdown for chat delivery.
func NotificationText(n models.Notification) string {
	text := "📅 **" + n.Title + "**\n"
	text += fmt.Sprintf("⏰ %s (in %d minutes)", n.StartsAt.Format("2006-01-02 15:04"), n.MinutesBefore)

	if n.Location != "" {
		text += "\n📍 " + n.Location
	}
	if n.Repeat.Type != models.RepeatNone && n.Repeat.Type != "" {
		text += "\n🔄 " + rrule.HumanReadable(n.Repeat)
	}
	return text
}
