package scheduler

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ykvlv/pr-reminder-bot/internal/domain"
	"github.com/ykvlv/pr-reminder-bot/internal/metrics"
	"github.com/ykvlv/pr-reminder-bot/internal/store"
)

// Sender is a minimal interface the reconciler needs to post into the topic.
// telegram.Gateway implements it.
type Sender interface {
	SendMessage(ctx context.Context, text, parseMode string) error
}

// State of the reconciler.
type State int32

const (
	StateIdle State = iota
	StateReconciling
)

func (s State) String() string {
	if s == StateReconciling {
		return "reconciling"
	}
	return "idle"
}

// Outcome of a reconciliation run.
type Outcome string

const (
	OutcomeSkipped    Outcome = "skipped"
	OutcomeAllClear   Outcome = "all_clear"
	OutcomeReminded   Outcome = "reminded"
	OutcomeSendFailed Outcome = "send_failed"
	OutcomeStoreError Outcome = "store_error"
)

const (
	reminderHeader = "Reminder: The following users haven't submitted their pull request:"
	allClearText   = "All users have submitted their pull requests today!"
)

// Result describes one reconciliation run.
type Result struct {
	RunID   string
	Outcome Outcome
	Missing []string
	Cleared int
}

// Reconciler compares tracked users against today's submissions, posts the
// reminder and starts a new day.
type Reconciler struct {
	repo   store.Repo
	sender Sender
	log    *zap.Logger
	state  atomic.Int32
}

// NewReconciler creates an idle Reconciler.
func NewReconciler(repo store.Repo, sender Sender, log *zap.Logger) *Reconciler {
	return &Reconciler{repo: repo, sender: sender, log: log}
}

// State reports whether a run is in progress.
func (r *Reconciler) State() State {
	return State(r.state.Load())
}

// Reconcile runs one daily check. Failures are logged and reported in the
// result; they are never returned to the caller's loop.
func (r *Reconciler) Reconcile(ctx context.Context) Result {
	r.state.Store(int32(StateReconciling))
	defer r.state.Store(int32(StateIdle))

	res := Result{RunID: uuid.NewString()}
	log := r.log.With(zap.String("run_id", res.RunID))

	res.Outcome = r.run(ctx, log, &res)
	metrics.ReconciliationsTotal.WithLabelValues(string(res.Outcome)).Inc()
	log.Info("reconciliation finished",
		zap.String("outcome", string(res.Outcome)),
		zap.Strings("missing", res.Missing),
		zap.Int("cleared", res.Cleared),
	)
	return res
}

func (r *Reconciler) run(ctx context.Context, log *zap.Logger, res *Result) Outcome {
	snap, err := r.repo.Snapshot(ctx)
	if err != nil {
		log.Error("Snapshot failed", zap.Error(err))
		return OutcomeStoreError
	}
	if len(snap.Tracked) == 0 {
		return OutcomeSkipped
	}

	res.Missing = domain.Missing(snap)
	metrics.MissingUsers.Set(float64(len(res.Missing)))

	if res.Cleared, err = r.repo.ResetDaily(ctx); err != nil {
		// Still send the reminder; tomorrow's list will carry today's entries.
		log.Error("ResetDaily failed", zap.Error(err))
	}

	if err := r.sender.SendMessage(ctx, ReminderText(res.Missing), ""); err != nil {
		log.Error("send reminder failed", zap.Error(err))
		return OutcomeSendFailed
	}
	if len(res.Missing) == 0 {
		return OutcomeAllClear
	}
	return OutcomeReminded
}

// ReminderText renders the daily message: one mention per missing user, or the all-clear.
func ReminderText(missing []string) string {
	if len(missing) == 0 {
		return allClearText
	}
	var b strings.Builder
	b.WriteString(reminderHeader)
	for _, u := range missing {
		b.WriteByte('\n')
		b.WriteString(domain.Mention(u))
	}
	return b.String()
}
