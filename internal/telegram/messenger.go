package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ykvlv/checklist-bot/internal/domain"
)

// BotAPI is the subset of *tgbotapi.BotAPI the bot uses.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Messenger renders replies and checklists onto Telegram.
// It satisfies service.Sender.
type Messenger struct {
	bot BotAPI
	log *zap.Logger
}

// NewMessenger wraps a bot API client.
func NewMessenger(bot BotAPI, log *zap.Logger) *Messenger {
	return &Messenger{bot: bot, log: log}
}

func (m *Messenger) sendText(chatID int64, text string) {
	if _, err := m.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		m.log.Warn("send failed", zap.Int64("chatID", chatID), zap.Error(err))
	}
}

func (m *Messenger) answerCallback(id, text string) {
	if _, err := m.bot.Request(tgbotapi.NewCallback(id, text)); err != nil {
		m.log.Debug("answer callback failed", zap.Error(err))
	}
}

// sendChecklist sends header with one toggle button per item, or an
// explicit empty notice when there are no items.
func (m *Messenger) sendChecklist(chatID int64, header string, opts []domain.Option) error {
	if len(opts) == 0 {
		_, err := m.bot.Send(tgbotapi.NewMessage(chatID, header+"\n\n"+emptyChecklistText))
		return err
	}
	msg := tgbotapi.NewMessage(chatID, header)
	msg.ReplyMarkup = checklistKeyboard(opts)
	_, err := m.bot.Send(msg)
	return err
}

// editChecklist replaces the keyboard of an already displayed checklist.
func (m *Messenger) editChecklist(chatID int64, messageID int, opts []domain.Option) error {
	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, checklistKeyboard(opts))
	_, err := m.bot.Request(edit)
	return err
}

// SendReminder delivers a scheduled reminder.
func (m *Messenger) SendReminder(_ context.Context, chatID int64, opts []domain.Option) error {
	return m.sendChecklist(chatID, reminderHeader, opts)
}
