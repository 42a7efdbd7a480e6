package telegram

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Enabled(t *testing.T) {
	logger := logrus.New()

	assert.False(t, NewService("", "", logger).Enabled())
	assert.False(t, NewService("token", "", logger).Enabled())
	assert.True(t, NewService("123:abc", "42", logger).Enabled())
}

func TestService_SendMessage(t *testing.T) {
	var payload map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bot123:abc/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	s := NewService("123:abc", "42", logrus.New())
	s.SetBaseURL(server.URL)

	require.NoError(t, s.SendMessage("hello"))
	assert.Equal(t, "42", payload["chat_id"])
	assert.Equal(t, "hello", payload["text"])
	assert.Equal(t, "HTML", payload["parse_mode"])
}

func TestService_SendMessage_ErrorStatuses(t *testing.T) {
	status := http.StatusUnauthorized
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	defer server.Close()

	s := NewService("123:abc", "42", logrus.New())
	s.SetBaseURL(server.URL)

	err := s.SendMessage("hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid bot token")

	status = http.StatusForbidden
	err = s.SendMessage("hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blocked")
}

func TestService_NotifyTargetPrice(t *testing.T) {
	var payload map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	s := NewService("123:abc", "42", logrus.New())
	s.SetBaseURL(server.URL)

	require.NoError(t, s.NotifyTargetPrice("KRW-BTC", 101500000, 100000000))
	text, _ := payload["text"].(string)
	assert.Contains(t, text, "KRW-BTC")
	assert.Contains(t, text, "101,500,000")
	assert.Contains(t, text, "100,000,000")
}
