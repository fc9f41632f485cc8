package api

import (
	"context"
	"time"

	"github.com/ansel1/merry"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramBot handles interactions with the Telegram API
type TelegramBot struct {
	bot    *tgbotapi.BotAPI
	router *Router
	delay  time.Duration
}

// NewTelegramBot creates a new Telegram bot handler. delay is how long a
// calculation result is held back before it is shown.
func NewTelegramBot(botToken string, router *Router, delay time.Duration) (*TelegramBot, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, merry.Append(err, "failed to create bot")
	}

	return &TelegramBot{
		bot:    bot,
		router: router,
		delay:  delay,
	}, nil
}

// Start listens for and handles Telegram messages until ctx is done
func (t *TelegramBot) Start(ctx context.Context) {
	log.Info("authorized on Telegram", "account", t.bot.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := t.bot.GetUpdatesChan(u)
	log.Info("bot is now listening for messages")

	go func() {
		<-ctx.Done()
		t.bot.StopReceivingUpdates()
	}()

	for update := range updates {
		if update.Message == nil {
			continue
		}

		log.Info("received message",
			"user", update.Message.From.UserName,
			"chat", update.Message.Chat.ID,
			"text", update.Message.Text)

		t.handleMessage(ctx, update.Message)
	}
}

// handleMessage processes a Telegram message
func (t *TelegramBot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	var reply Reply
	if message.IsCommand() {
		reply = t.router.HandleCommand(ctx, message.Chat.ID, message.Command(), message.CommandArguments())
	} else {
		reply = t.router.HandleText(ctx, message.Chat.ID, message.Text)
	}

	if reply.Pending == nil {
		t.send(message.Chat.ID, reply.Text)
		return
	}

	if _, err := t.bot.Request(tgbotapi.NewChatAction(message.Chat.ID, tgbotapi.ChatTyping)); err != nil {
		log.PrintErr("failed to send chat action", "err", err)
	}
	go func() {
		select {
		case <-ctx.Done():
			return
		case <-time.After(t.delay):
		}
		text, ok := reply.Pending()
		if !ok {
			log.Info("dropping superseded result", "chat", message.Chat.ID)
			return
		}
		t.send(message.Chat.ID, text)
	}()
}

func (t *TelegramBot) send(chatID int64, text string) {
	if text == "" {
		return
	}
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := t.bot.Send(msg); err != nil {
		log.PrintErr("error sending message", "chat", chatID, "err", err)
	}
}

// Broadcast sends text to every chat in chatIDs
func (t *TelegramBot) Broadcast(chatIDs []int64, text string) {
	for _, chatID := range chatIDs {
		t.send(chatID, text)
	}
}
