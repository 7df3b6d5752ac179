package alert

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/unibalancer/paca-keeper-go/model"
	"go.uber.org/zap"
)

// Telegram sends each message immediately through the Bot API.
type Telegram struct {
	token  string
	chatId string
	client *http.Client
	log    *zap.Logger
}

func NewTelegram(token string, config model.TelegramConfig, log *zap.Logger) *Telegram {
	return &Telegram{
		token:  token,
		chatId: config.ChatId,
		client: &http.Client{Timeout: 10 * time.Second},
		log:    log,
	}
}

func (t *Telegram) Notify(message string) {
	payload, err := json.Marshal(map[string]string{
		"chat_id": t.chatId,
		"text":    message,
	})
	if err != nil {
		t.log.Warn("cannot marshal telegram payload", zap.Error(err))
		return
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", t.token)

	response, err := t.client.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		t.log.Warn("cannot send telegram message", zap.Error(err))
		return
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		t.log.Warn("telegram rejected message", zap.Int("status", response.StatusCode))
	}
}
