// Package telegram relays publish outcomes to a chat through the Bot API.
package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"PBNPublisher/internal/ports"
)

const (
	defaultAPIBase = "https://api.telegram.org"
	// Bot API rejects longer texts outright.
	maxMessageRunes = 4096
)

// Notifier posts one plain-text message per publish outcome.
type Notifier struct {
	token  string
	chat   string
	base   string
	client *http.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier targets chatID through the bot identified by botToken.
func NewNotifier(botToken, chatID string) *Notifier {
	return &Notifier{
		token:  strings.TrimSpace(botToken),
		chat:   strings.TrimSpace(chatID),
		base:   defaultAPIBase,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

// WithAPIBase points the notifier at another Bot API host.
func (n *Notifier) WithAPIBase(base string) *Notifier {
	n.base = strings.TrimSuffix(base, "/")
	return n
}

type apiReply struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Notify sends message, truncated to the Bot API limit.
func (n *Notifier) Notify(ctx context.Context, message string) error {
	if n == nil || n.token == "" || n.chat == "" {
		return errors.New("telegram: bot token and chat id are required")
	}

	form := url.Values{
		"chat_id":                  {n.chat},
		"text":                     {truncateRunes(message, maxMessageRunes)},
		"disable_web_page_preview": {"true"},
	}
	endpoint := n.base + "/bot" + n.token + "/sendMessage"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("telegram: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: send: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var reply apiReply
	if jsonErr := json.Unmarshal(raw, &reply); jsonErr != nil {
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("telegram: %s", resp.Status)
		}
		return fmt.Errorf("telegram: decode reply: %w", jsonErr)
	}
	if !reply.OK {
		if reply.Description == "" {
			reply.Description = resp.Status
		}
		return fmt.Errorf("telegram: %s", reply.Description)
	}
	return nil
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
