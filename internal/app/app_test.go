package app

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ykvlv/pr-reminder-bot/internal/scheduler"
	"github.com/ykvlv/pr-reminder-bot/internal/store"
	"github.com/ykvlv/pr-reminder-bot/internal/telegram"
)

const (
	chatID  int64 = -100123
	topicID       = 77
)

type recordingSender struct{ texts []string }

func (s *recordingSender) SendMessage(_ context.Context, text, _ string) error {
	s.texts = append(s.texts, text)
	return nil
}

func newTestApp(t *testing.T) (*App, *recordingSender, store.Repo) {
	t.Helper()
	repo, err := store.OpenSQLite(context.Background(), store.MemoryDSN)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	sender := &recordingSender{}
	log := zap.NewNop()
	opts := telegram.Options{
		Scope:       telegram.Scope{ChatID: chatID, TopicID: topicID},
		BotUsername: "PRReminderBot",
	}
	return &App{
		log:    log,
		repo:   repo,
		router: telegram.NewRouter(sender, repo, log, opts),
		recon:  scheduler.NewReconciler(repo, sender, log),
	}, sender, repo
}

func update(user, text string) telegram.Update {
	return telegram.Update{Message: &telegram.Message{
		Message: tgbotapi.Message{
			Text: text,
			Chat: &tgbotapi.Chat{ID: chatID},
			From: &tgbotapi.User{UserName: user},
		},
		MessageThreadID: topicID,
	}}
}

func TestLoop_EndToEndScenario(t *testing.T) {
	a, sender, repo := newTestApp(t)

	ctx, cancel := context.WithCancel(context.Background())
	updates := make(chan telegram.Update)
	ticks := make(chan time.Time)
	done := make(chan struct{})
	go func() {
		a.loop(ctx, updates, ticks)
		close(done)
	}()

	updates <- update("lead", "/add alice")
	updates <- update("alice", "@PRReminderBot check https://github.com/org/repo/pull/42 please")
	ticks <- time.Now()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop")
	}

	assert.Equal(t, []string{
		"@alice has been added to the list.",
		"@alice, your pull request has been recorded.",
		"All users have submitted their pull requests today!",
	}, sender.texts)

	s, err := repo.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, s.Tracked)
	assert.Empty(t, s.Submitted)
}

func TestLoop_TickWithNobodyTrackedIsSilent(t *testing.T) {
	a, sender, _ := newTestApp(t)

	ctx, cancel := context.WithCancel(context.Background())
	ticks := make(chan time.Time)
	done := make(chan struct{})
	go func() {
		a.loop(ctx, nil, ticks)
		close(done)
	}()

	ticks <- time.Now()
	cancel()
	<-done

	assert.Empty(t, sender.texts)
}

func TestHTTPHandler(t *testing.T) {
	srv := httptest.NewServer(newHTTPHandler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))

	resp, err = http.Post(srv.URL+"/healthz", "text/plain", nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "prbot_missing_users")
}
