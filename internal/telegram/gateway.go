package telegram

import (
	"context"
	"errors"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ykvlv/pr-reminder-bot/internal/metrics"
)

// Requester is the subset of *tgbotapi.BotAPI the gateway uses.
type Requester interface {
	MakeRequest(endpoint string, params tgbotapi.Params) (*tgbotapi.APIResponse, error)
}

// RetryConfig controls how outbound sends are retried.
type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

var DefaultRetryConfig = RetryConfig{
	MaxAttempts:  3,
	InitialDelay: 500 * time.Millisecond,
	MaxDelay:     10 * time.Second,
	Multiplier:   2.0,
}

// Gateway sends messages into the one configured group topic.
//
// The bot library predates forum topics, so messages are sent through
// MakeRequest with message_thread_id set explicitly.
type Gateway struct {
	api     Requester
	log     *zap.Logger
	chatID  int64
	topicID int
	retry   RetryConfig
	after   func(time.Duration) <-chan time.Time
}

// NewGateway creates a Gateway bound to chatID/topicID.
func NewGateway(api Requester, log *zap.Logger, chatID int64, topicID int) *Gateway {
	return &Gateway{
		api:     api,
		log:     log,
		chatID:  chatID,
		topicID: topicID,
		retry:   DefaultRetryConfig,
		after:   time.After,
	}
}

// WithRetry overrides the retry policy.
func (g *Gateway) WithRetry(cfg RetryConfig) *Gateway {
	g.retry = cfg
	return g
}

// SendMessage posts text to the configured topic. parseMode may be empty.
// This makes Gateway satisfy Sender and scheduler.Sender.
func (g *Gateway) SendMessage(ctx context.Context, text, parseMode string) error {
	params := tgbotapi.Params{}
	params.AddNonZero64("chat_id", g.chatID)
	params.AddNonZero("message_thread_id", g.topicID)
	params["text"] = text
	params.AddNonEmpty("parse_mode", parseMode)
	params.AddBool("disable_web_page_preview", true)

	err := g.withRetry(ctx, func() error {
		_, err := g.api.MakeRequest("sendMessage", params)
		return err
	})
	if err != nil {
		metrics.SendErrorsTotal.Inc()
	}
	return err
}

func (g *Gateway) withRetry(ctx context.Context, op func() error) error {
	attempts := g.retry.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	delay := g.retry.InitialDelay

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := op()
		if err == nil {
			if attempt > 1 {
				g.log.Info("send succeeded after retry", zap.Int("attempt", attempt))
			}
			return nil
		}
		lastErr = err

		backoff := delay
		if g.retry.MaxDelay > 0 && backoff > g.retry.MaxDelay {
			backoff = g.retry.MaxDelay
		}
		// MaxDelay caps our own backoff only; a retry_after from Telegram is waited out in full.
		wait, retryable := retryDelay(err, backoff)
		if !retryable || attempt == attempts {
			break
		}

		g.log.Warn("send failed, retrying",
			zap.Error(err),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
		)

		select {
		case <-ctx.Done():
			return fmt.Errorf("send cancelled during retry: %w", ctx.Err())
		case <-g.after(wait):
		}

		delay = time.Duration(float64(delay) * g.retry.Multiplier)
	}
	return fmt.Errorf("send message: %w", lastErr)
}

// retryDelay classifies err. Telegram flood control (429) tells us how long to wait;
// server errors and transport failures use the backoff delay; other API errors are final.
func retryDelay(err error, backoff time.Duration) (time.Duration, bool) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0, false
	}
	apiErr, ok := asAPIError(err)
	if !ok {
		return backoff, true
	}
	switch {
	case apiErr.Code == 429:
		if apiErr.RetryAfter > 0 {
			return time.Duration(apiErr.RetryAfter) * time.Second, true
		}
		return backoff, true
	case apiErr.Code >= 500:
		return backoff, true
	default:
		return 0, false
	}
}

func asAPIError(err error) (tgbotapi.Error, bool) {
	var ptr *tgbotapi.Error
	if errors.As(err, &ptr) && ptr != nil {
		return *ptr, true
	}
	var val tgbotapi.Error
	if errors.As(err, &val) {
		return val, true
	}
	return tgbotapi.Error{}, false
}
