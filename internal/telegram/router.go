package telegram

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ykvlv/pr-reminder-bot/internal/domain"
	"github.com/ykvlv/pr-reminder-bot/internal/metrics"
	"github.com/ykvlv/pr-reminder-bot/internal/store"
)

// Sender posts a message into the bot's topic.
type Sender interface {
	SendMessage(ctx context.Context, text, parseMode string) error
}

// Verifier checks that a pull request actually exists.
type Verifier interface {
	Exists(ctx context.Context, ref domain.PullRequestRef) (bool, error)
}

// Scope is the single chat topic the bot listens to.
type Scope struct {
	ChatID  int64
	TopicID int
}

// Options configures a Router.
type Options struct {
	Scope       Scope
	BotUsername string
	Mention     string
	Verifier    Verifier // optional
}

// Router maps in-scope messages to commands and runs them against the store.
// It is not safe for concurrent use; the app loop calls it from one goroutine.
type Router struct {
	sender   Sender
	repo     store.Repo
	log      *zap.Logger
	verifier Verifier
	scope    Scope
	botName  string
	mention  string
	now      func() time.Time
}

// NewRouter creates a new Telegram router.
func NewRouter(sender Sender, repo store.Repo, log *zap.Logger, opts Options) *Router {
	mention := opts.Mention
	if mention == "" && opts.BotUsername != "" {
		mention = domain.Mention(opts.BotUsername)
	}
	return &Router{
		sender:   sender,
		repo:     repo,
		log:      log,
		verifier: opts.Verifier,
		scope:    opts.Scope,
		botName:  opts.BotUsername,
		mention:  mention,
		now:      time.Now,
	}
}

// InScope reports whether msg was posted in the configured chat topic.
func (r *Router) InScope(msg *Message) bool {
	return msg != nil && msg.Chat != nil &&
		msg.Chat.ID == r.scope.ChatID &&
		msg.MessageThreadID == r.scope.TopicID
}

// HandleUpdate routes a single update to the matching handler.
func (r *Router) HandleUpdate(ctx context.Context, upd Update) {
	msg := upd.Message
	if msg == nil || msg.From == nil {
		return
	}
	if !r.InScope(msg) {
		chatID := int64(0)
		if msg.Chat != nil {
			chatID = msg.Chat.ID
		}
		r.log.Debug("ignoring out-of-scope message",
			zap.Int64("chatID", chatID),
			zap.Int("topicID", msg.MessageThreadID),
		)
		return
	}

	cmd := domain.ParseCommand(msg.Text, r.botName, r.mention)
	if cmd.Kind != domain.KindNone {
		metrics.CommandsTotal.WithLabelValues(cmd.Kind.String()).Inc()
	}

	switch cmd.Kind {
	case domain.KindHelp:
		r.reply(ctx, helpText, "")
	case domain.KindUpdate:
		r.handleSubmission(ctx, msg, cmd.Arg)
	case domain.KindList:
		r.handleList(ctx)
	case domain.KindExempt:
		r.handleExempt(ctx, cmd.Arg)
	case domain.KindAdd:
		r.handleAdd(ctx, cmd.Arg)
	case domain.KindRemoveExempt:
		r.handleRemoveExempt(ctx, cmd.Arg)
	case domain.KindTest:
		r.reply(ctx, healthText, "")
	case domain.KindNone:
		// plain chatter
	}
}
