package main

import (
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"luchwallet/internal/platform/config"
)

// The pinned library release predates Bot API 6.0, so it has no web app
// button type. Reply markup is serialized to JSON as-is, which lets us send
// the web_app field with local structs.
type webAppInfo struct {
	URL string `json:"url"`
}

type webAppButton struct {
	Text   string     `json:"text"`
	WebApp webAppInfo `json:"web_app"`
}

type webAppKeyboard struct {
	InlineKeyboard [][]webAppButton `json:"inline_keyboard"`
}

func walletKeyboard(frontURL string) webAppKeyboard {
	return webAppKeyboard{
		InlineKeyboard: [][]webAppButton{{
			{Text: "Открыть кошелёк", WebApp: webAppInfo{URL: frontURL}},
		}},
	}
}

// The bot does one thing: reply to any message with a button that opens
// the wallet mini app inside Telegram.
func main() {
	cfg := config.Load()
	if cfg.BotToken == "" {
		log.Fatal("BOT_TOKEN is required")
	}
	if cfg.BotFrontURL == "" {
		log.Fatal("BOT_FRONT_URL is required")
	}

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		log.Fatalf("bot init failed: %v", err)
	}
	log.Printf("bot authorized as @%s", bot.Self.UserName)

	updateCfg := tgbotapi.NewUpdate(0)
	updateCfg.Timeout = 30

	keyboard := walletKeyboard(cfg.BotFrontURL)

	for update := range bot.GetUpdatesChan(updateCfg) {
		if update.Message == nil {
			continue
		}

		msg := tgbotapi.NewMessage(update.Message.Chat.ID, "Нажмите кнопку, чтобы открыть кошелёк:")
		msg.ReplyMarkup = keyboard
		if _, err := bot.Send(msg); err != nil {
			log.Printf("send failed: chat=%d err=%v", update.Message.Chat.ID, err)
		}
	}
}
