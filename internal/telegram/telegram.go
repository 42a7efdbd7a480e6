package telegram

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Service sends dashboard notifications to a Telegram chat.
type Service struct {
	logger   *logrus.Logger
	client   *http.Client
	baseURL  string
	botToken string
	chatID   string
}

func NewService(botToken, chatID string, logger *logrus.Logger) *Service {
	return &Service{
		logger:   logger,
		client:   &http.Client{Timeout: 10 * time.Second},
		baseURL:  "https://api.telegram.org",
		botToken: botToken,
		chatID:   chatID,
	}
}

// SetBaseURL overrides the Telegram API endpoint, for tests.
func (s *Service) SetBaseURL(u string) {
	s.baseURL = u
}

// Enabled reports whether the service has credentials to send with.
func (s *Service) Enabled() bool {
	return s.botToken != "" && s.chatID != ""
}

// SendMessage sends a message to the configured Telegram chat
func (s *Service) SendMessage(message string) error {
	if s.botToken == "" {
		return errors.New("Telegram bot token is not configured")
	}

	if s.chatID == "" {
		return errors.New("Telegram chat ID is not configured")
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.baseURL, s.botToken)
	payload := map[string]interface{}{
		"chat_id":    s.chatID,
		"text":       message,
		"parse_mode": "HTML",
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal message payload: %v", err)
	}

	resp, err := s.client.Post(url, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to send message to Telegram API: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return errors.New("invalid bot token - please check your token from @BotFather")
		case http.StatusBadRequest:
			return fmt.Errorf("invalid chat ID or message format: %s", string(body))
		case http.StatusForbidden:
			return errors.New("bot was blocked by the user or chat")
		case http.StatusNotFound:
			return errors.New("bot not found - please check your token from @BotFather")
		default:
			return fmt.Errorf("Telegram API error (status %d): %s", resp.StatusCode, string(body))
		}
	}

	return nil
}

// NotifyTargetPrice sends a notification when a coin crosses its target price
func (s *Service) NotifyTargetPrice(market string, price, target float64) error {
	message := fmt.Sprintf(
		"<b>🎯 목표가 달성!</b>\n\n"+
			"💰 %s: %s KRW\n"+
			"🎯 목표가: %s KRW",
		market,
		formatPrice(price),
		formatPrice(target),
	)
	return s.SendMessage(message)
}

// formatPrice renders a KRW amount with thousands separators.
func formatPrice(v float64) string {
	n := int64(v)
	s := fmt.Sprintf("%d", n)
	if n < 0 {
		return s
	}
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	return string(out)
}
