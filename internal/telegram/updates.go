package telegram

import (
	"context"
	"encoding/json"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Message is a tgbotapi.Message plus the forum topic fields the library does not decode.
type Message struct {
	tgbotapi.Message
	MessageThreadID int  `json:"message_thread_id"`
	IsTopicMessage  bool `json:"is_topic_message"`
}

// Update is the part of a Telegram update the bot consumes.
type Update struct {
	UpdateID int      `json:"update_id"`
	Message  *Message `json:"message"`
}

// Poller long-polls getUpdates and decodes updates with topic information.
type Poller struct {
	api      Requester
	log      *zap.Logger
	timeout  int
	errPause time.Duration
}

// NewPoller creates a Poller with a 30s long-poll timeout.
func NewPoller(api Requester, log *zap.Logger) *Poller {
	return &Poller{api: api, log: log, timeout: 30, errPause: 3 * time.Second}
}

// Run delivers updates on out until ctx is canceled. It never closes out.
func (p *Poller) Run(ctx context.Context, out chan<- Update) {
	offset := 0
	for {
		if ctx.Err() != nil {
			return
		}

		updates, err := p.fetch(offset)
		if err != nil {
			p.log.Warn("getUpdates failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(p.errPause):
			}
			continue
		}

		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			select {
			case <-ctx.Done():
				return
			case out <- u:
			}
		}
	}
}

func (p *Poller) fetch(offset int) ([]Update, error) {
	params := tgbotapi.Params{}
	params.AddNonZero("offset", offset)
	params.AddNonZero("timeout", p.timeout)
	if err := params.AddInterface("allowed_updates", []string{"message"}); err != nil {
		return nil, err
	}

	resp, err := p.api.MakeRequest("getUpdates", params)
	if err != nil {
		return nil, err
	}
	var updates []Update
	if err := json.Unmarshal(resp.Result, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}
