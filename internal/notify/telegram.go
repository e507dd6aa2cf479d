package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"sitebot/internal/domain"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram delivers workflow notifications to a configured ops chat.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger *slog.Logger
}

type TelegramConfig struct {
	Token  string
	ChatID int64
	Logger *slog.Logger
}

func NewTelegram(cfg TelegramConfig) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	cfg.Logger.Info("telegram notifier connected", "username", bot.Self.UserName)
	return &Telegram{bot: bot, chatID: cfg.ChatID, logger: cfg.Logger}, nil
}

func (t *Telegram) Notify(_ context.Context, recipient string, wc domain.WorkflowContext) error {
	text := fmt.Sprintf("[%s] for %s\nFrom: %s\n%s",
		strings.ToUpper(string(wc.Classification.Category)),
		recipient,
		wc.Message.From,
		wc.Message.Body,
	)

	if _, err := t.bot.Send(tgbotapi.NewMessage(t.chatID, text)); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	t.logger.Info("telegram notification sent", "recipient", recipient, "chat", t.chatID)
	return nil
}
