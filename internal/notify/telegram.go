package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/desertthunder/cloudsign/internal/shared"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram sends messages through a Telegram bot.
type Telegram struct {
	token    string
	chatID   string
	endpoint string
	client   *http.Client
}

// NewTelegram creates the Telegram channel. An empty endpoint uses the public Bot API.
func NewTelegram(c shared.TelegramConfig, transport http.RoundTripper) *Telegram {
	endpoint := c.Endpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	return &Telegram{
		token:    c.BotToken,
		chatID:   c.ChatID,
		endpoint: endpoint,
		client:   &http.Client{Timeout: c.Timeout(), Transport: transport},
	}
}

func (t *Telegram) Name() string  { return "telegram" }
func (t *Telegram) Enabled() bool { return t.token != "" && t.chatID != "" }

// Send posts "title\n\nbody" to the configured chat.
func (t *Telegram) Send(ctx context.Context, title, body string) error {
	bot := &tgbotapi.BotAPI{Token: t.token, Client: contextClient{ctx: ctx, client: t.client}, Buffer: 100}
	bot.SetAPIEndpoint(t.endpoint)

	_, err := bot.Request(t.message(title + "\n\n" + body))
	return classifyTelegram(err)
}

// message addresses numeric chat ids directly and anything else (e.g. "@channel") by username.
func (t *Telegram) message(text string) tgbotapi.MessageConfig {
	if id, err := strconv.ParseInt(t.chatID, 10, 64); err == nil {
		return tgbotapi.NewMessage(id, text)
	}
	return tgbotapi.NewMessageToChannel(t.chatID, text)
}

func classifyTelegram(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *tgbotapi.Error
	var urlErr *url.Error
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError

	switch {
	case errors.As(err, &apiErr):
		return fmt.Errorf("%w: telegram error %d: %s", shared.ErrPushPayload, apiErr.Code, apiErr.Message)
	case errors.As(err, &urlErr):
		return transportError(err)
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr),
		errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return fmt.Errorf("%w: telegram: %w", shared.ErrResponseInvalid, err)
	default:
		return fmt.Errorf("%w: %w", shared.ErrPushTransport, err)
	}
}

// contextClient binds requests made by the bot library to ctx.
type contextClient struct {
	ctx    context.Context
	client *http.Client
}

func (c contextClient) Do(req *http.Request) (*http.Response, error) {
	return c.client.Do(req.WithContext(c.ctx))
}

// transportError wraps err as a transport failure, adding [shared.ErrTimeout] when the request timed out.
func transportError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return fmt.Errorf("%w: %w: %w", shared.ErrPushTransport, shared.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %w", shared.ErrPushTransport, err)
}
