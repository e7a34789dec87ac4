package notify

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	TelegramBotToken string        `envconfig:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   string        `envconfig:"TELEGRAM_CHAT_ID"`
	TelegramBaseURL  string        `envconfig:"TELEGRAM_BASE_URL" default:"https://api.telegram.org"`
	Timeout          time.Duration `envconfig:"NOTIFY_TIMEOUT" default:"10s"`
	QueueSize        int           `envconfig:"NOTIFY_QUEUE_SIZE" default:"100"`
	// Events lists the event types forwarded; empty forwards all.
	Events []string `envconfig:"NOTIFY_EVENTS" default:"position_opened,stop_raised,take_profit,position_closed,price_stale"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}

// Enabled reports whether Telegram credentials are configured.
func (c Config) Enabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != ""
}
