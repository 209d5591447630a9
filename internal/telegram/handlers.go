package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ykvlv/pr-reminder-bot/internal/domain"
	"github.com/ykvlv/pr-reminder-bot/internal/metrics"
)

// --- Generic helpers ---

func (r *Router) reply(ctx context.Context, text, parseMode string) {
	if err := r.sender.SendMessage(ctx, text, parseMode); err != nil {
		r.log.Error("reply failed", zap.Error(err))
	}
}

func (r *Router) replyf(ctx context.Context, format, handle string) {
	r.reply(ctx, fmt.Sprintf(format, domain.Mention(handle)), "")
}

// --- Submissions ---

func (r *Router) handleSubmission(ctx context.Context, msg *Message, text string) {
	handle := msg.From.UserName
	if handle == "" {
		metrics.SubmissionsTotal.WithLabelValues(metrics.SubmissionNoUsername).Inc()
		r.reply(ctx, fmt.Sprintf(noUsernameFmt, msg.From.FirstName), "")
		return
	}

	exempt, err := r.repo.IsExempt(ctx, handle)
	if err != nil {
		r.storeFailed(ctx, "IsExempt", err)
		return
	}
	if exempt {
		// Exempt users get no answer either way.
		metrics.SubmissionsTotal.WithLabelValues(metrics.SubmissionExempt).Inc()
		r.log.Debug("submission from exempt user ignored", zap.String("user", handle))
		return
	}

	ref, ok := domain.FindPullRequest(text)
	if !ok {
		metrics.SubmissionsTotal.WithLabelValues(metrics.SubmissionRejected).Inc()
		r.replyf(ctx, invalidLinkFmt, handle)
		return
	}

	if r.verifier != nil {
		exists, err := r.verifier.Exists(ctx, ref)
		switch {
		case err != nil:
			r.log.Warn("pull request verification failed, accepting link",
				zap.Error(err), zap.String("url", ref.URL))
		case !exists:
			metrics.SubmissionsTotal.WithLabelValues(metrics.SubmissionNotFound).Inc()
			r.replyf(ctx, notFoundFmt, handle)
			return
		}
	}

	if err := r.repo.RecordSubmission(ctx, handle, ref.URL, r.now()); err != nil {
		metrics.SubmissionsTotal.WithLabelValues(metrics.SubmissionFailed).Inc()
		r.storeFailed(ctx, "RecordSubmission", err)
		return
	}
	metrics.SubmissionsTotal.WithLabelValues(metrics.SubmissionRecorded).Inc()
	r.log.Info("submission recorded", zap.String("user", handle), zap.String("url", ref.URL))
	r.replyf(ctx, recordedFmt, handle)
}

// --- Listing ---

func (r *Router) handleList(ctx context.Context) {
	s, err := r.repo.Snapshot(ctx)
	if err != nil {
		r.storeFailed(ctx, "Snapshot", err)
		return
	}
	r.reply(ctx, listText(s), tgbotapi.ModeMarkdown)
}

// --- Membership management ---

func (r *Router) handleExempt(ctx context.Context, handle string) {
	if _, err := r.repo.AddExempt(ctx, handle); err != nil {
		r.storeFailed(ctx, "AddExempt", err)
		return
	}
	r.log.Info("user exempted", zap.String("user", handle))
	r.replyf(ctx, exemptedFmt, handle)
}

func (r *Router) handleAdd(ctx context.Context, handle string) {
	if _, err := r.repo.AddTracked(ctx, handle); err != nil {
		r.storeFailed(ctx, "AddTracked", err)
		return
	}
	r.log.Info("user added", zap.String("user", handle))
	r.replyf(ctx, addedFmt, handle)
}

func (r *Router) handleRemoveExempt(ctx context.Context, handle string) {
	if _, err := r.repo.RemoveExempt(ctx, handle); err != nil {
		r.storeFailed(ctx, "RemoveExempt", err)
		return
	}
	r.log.Info("user exemption removed", zap.String("user", handle))
	r.replyf(ctx, removedExemptFmt, handle)
}

func (r *Router) storeFailed(ctx context.Context, op string, err error) {
	r.log.Error(op+" failed", zap.Error(err))
	r.reply(ctx, storeErrorText, "")
}
