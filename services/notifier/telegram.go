package notifier

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"sjsage522/pagewatch/config"
	"sjsage522/pagewatch/helpers"
	"sjsage522/pagewatch/logger"
	apperrors "sjsage522/pagewatch/pkg/errors"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

// ParseMode is the rich-text mode every message is rendered with
const ParseMode = "HTML"

// TelegramNotifier posts messages to the sendMessage method of a bot
type TelegramNotifier struct {
	client   *resty.Client
	endpoint string
	token    string
	chatID   string
	limiter  *rate.Limiter
	log      *logger.Logger
}

// NewTelegramNotifier creates a notifier with a bounded per-attempt timeout
// and at most cfg.NotifyRetries retries on transport errors or 5xx replies
func NewTelegramNotifier(cfg *config.Config) *TelegramNotifier {
	log := logger.ForComponent("notifier")

	client := resty.New().
		SetLogger(&restyLogger{log: log, token: cfg.NotifyToken}).
		SetTimeout(cfg.NotifyTimeout).
		SetRetryCount(cfg.NotifyRetries).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || (r != nil && r.StatusCode() >= 500)
		})

	return &TelegramNotifier{
		client:   client,
		endpoint: fmt.Sprintf("%s/bot%s/sendMessage", cfg.TelegramAPIURL, cfg.NotifyToken),
		token:    cfg.NotifyToken,
		chatID:   cfg.NotifyChatID,
		limiter:  rate.NewLimiter(rate.Limit(cfg.NotifyRatePerSec), 1),
		log:      log,
	}
}

// Notify sends message as form fields chat_id, text and parse_mode
func (n *TelegramNotifier) Notify(ctx context.Context, message string) error {
	if err := n.limiter.Wait(ctx); err != nil {
		return apperrors.NewNotification("telegram", "send cancelled", err)
	}

	resp, err := n.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"chat_id":    n.chatID,
			"text":       message,
			"parse_mode": ParseMode,
		}).
		Post(n.endpoint)
	if err != nil {
		err = n.redact(err)
		n.log.Error().Err(err).Str("chat_id", n.chatID).Msg("Failed to send message")
		return apperrors.NewNotification("telegram", "request failed", err)
	}

	if !resp.IsSuccess() {
		body := helpers.Truncate(resp.String(), 500)
		n.log.Error().
			Int("status", resp.StatusCode()).
			Str("chat_id", n.chatID).
			Str("response", body).
			Msg("Messaging API rejected message")
		return apperrors.NewNotification("telegram", fmt.Sprintf("unexpected status code: %d: %s", resp.StatusCode(), body), nil)
	}

	n.log.Debug().Str("chat_id", n.chatID).Int("length", len(message)).Msg("Message sent")
	return nil
}

// redact removes the bot token from transport errors, which quote the URL
func (n *TelegramNotifier) redact(err error) error {
	if n.token == "" || !strings.Contains(err.Error(), n.token) {
		return err
	}
	return errors.New(redactToken(err.Error(), n.token))
}

func redactToken(s, token string) string {
	if token == "" {
		return s
	}
	return strings.ReplaceAll(s, token, "<redacted>")
}

// restyLogger sends resty's retry and error logs through the component
// logger with the bot token removed
type restyLogger struct {
	log   *logger.Logger
	token string
}

func (l *restyLogger) Errorf(format string, v ...interface{}) {
	l.log.Error().Msg(redactToken(fmt.Sprintf(format, v...), l.token))
}

func (l *restyLogger) Warnf(format string, v ...interface{}) {
	l.log.Warn().Msg(redactToken(fmt.Sprintf(format, v...), l.token))
}

func (l *restyLogger) Debugf(format string, v ...interface{}) {
	l.log.Debug().Msg(redactToken(fmt.Sprintf(format, v...), l.token))
}
