// Package telegram contains a minimal client for the Telegram Bot API: long-poll
// update fetching and text/photo replies. Only the surface the bot consumes is
// modeled; everything else in the Bot API is ignored.
package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ParseModeMarkdown is the lightweight markup mode used for bold/links in replies.
const ParseModeMarkdown = "Markdown"

// Update is one inbound event from getUpdates.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message"`
}

// Message is an inbound chat message. Only text messages are handled.
type Message struct {
	MessageID int64  `json:"message_id"`
	Text      string `json:"text"`
	Chat      Chat   `json:"chat"`
	From      User   `json:"from"`
}

type Chat struct {
	ID int64 `json:"id"`
}

type User struct {
	ID int64 `json:"id"`
}

// Client calls the Telegram Bot API for a single bot token.
type Client struct {
	Token      string
	APIBase    string // e.g. https://api.telegram.org
	HTTPClient *http.Client
}

func (c *Client) http() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) methodURL(method string) string {
	base := c.APIBase
	if base == "" {
		base = "https://api.telegram.org"
	}
	return base + "/bot" + c.Token + "/" + method
}

// apiResponse is the Bot API envelope.
type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
}

func (c *Client) postForm(ctx context.Context, method string, form url.Values) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL(method), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := c.http().Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Warn("failed to close response body", slog.Any("err", err))
		}
	}()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("telegram %s failed: %s: %s", method, resp.Status, string(b))
	}
	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	if !body.OK {
		return nil, fmt.Errorf("telegram %s: api error: %s", method, body.Description)
	}
	return body.Result, nil
}

// GetUpdates long-polls for updates with ids >= offset. The request blocks server
// side for up to timeout; the HTTP context deadline is padded accordingly.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error) {
	if c.Token == "" {
		return nil, errors.New("telegram token empty")
	}
	form := url.Values{}
	form.Set("offset", strconv.FormatInt(offset, 10))
	form.Set("timeout", strconv.Itoa(int(timeout.Seconds())))
	form.Set("allowed_updates", `["message"]`)

	pollCtx, cancel := context.WithTimeout(ctx, timeout+10*time.Second)
	defer cancel()
	raw, err := c.postForm(pollCtx, "getUpdates", form)
	if err != nil {
		return nil, err
	}
	var updates []Update
	if err := json.Unmarshal(raw, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

// SendMessage delivers a plain text reply.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text, parseMode string) error {
	form := url.Values{}
	form.Set("chat_id", strconv.FormatInt(chatID, 10))
	form.Set("text", text)
	if parseMode != "" {
		form.Set("parse_mode", parseMode)
	}
	_, err := c.postForm(ctx, "sendMessage", form)
	return err
}

// SendPhoto delivers an image by URL with the given caption. The reply is a single
// message; the caption carries the formatted text.
func (c *Client) SendPhoto(ctx context.Context, chatID int64, photoURL, caption, parseMode string) error {
	form := url.Values{}
	form.Set("chat_id", strconv.FormatInt(chatID, 10))
	form.Set("photo", photoURL)
	form.Set("caption", caption)
	if parseMode != "" {
		form.Set("parse_mode", parseMode)
	}
	_, err := c.postForm(ctx, "sendPhoto", form)
	return err
}
