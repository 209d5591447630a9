package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ykvlv/pr-reminder-bot/internal/clock"
	"github.com/ykvlv/pr-reminder-bot/internal/config"
	"github.com/ykvlv/pr-reminder-bot/internal/domain"
	"github.com/ykvlv/pr-reminder-bot/internal/github"
	"github.com/ykvlv/pr-reminder-bot/internal/scheduler"
	"github.com/ykvlv/pr-reminder-bot/internal/store"
	"github.com/ykvlv/pr-reminder-bot/internal/telegram"
)

type App struct {
	cfg     config.Config
	log     *zap.Logger
	bot     *tgbotapi.BotAPI
	httpSrv *http.Server
	repo    store.Repo
	router  *telegram.Router
	recon   *scheduler.Reconciler
	sched   *scheduler.Scheduler
}

func New(cfg config.Config, log *zap.Logger) (*App, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, err
	}
	bot.Debug = false

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      newHTTPHandler(),
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}

	return &App{cfg: cfg, log: log, bot: bot, httpSrv: srv}, nil
}

func newHTTPHandler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	return r
}

func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting pr-reminder-bot",
		zap.String("bot", a.bot.Self.UserName),
		zap.Int64("group", a.cfg.GroupID),
		zap.Int("topic", a.cfg.TopicID),
		zap.String("tz", a.cfg.Location.String()),
		zap.String("check_at", domain.FormatMinutes(a.cfg.CheckAtMinute)),
		zap.String("http", a.cfg.HTTPAddr),
	)

	// State lives in memory only and starts empty on every run.
	repo, err := store.OpenSQLite(ctx, store.MemoryDSN)
	if err != nil {
		a.log.Error("open store failed", zap.Error(err))
		return err
	}
	a.repo = repo
	defer func() { _ = a.repo.Close() }()

	gateway := telegram.NewGateway(a.bot, a.log, a.cfg.GroupID, a.cfg.TopicID)

	opts := telegram.Options{
		Scope:       telegram.Scope{ChatID: a.cfg.GroupID, TopicID: a.cfg.TopicID},
		BotUsername: a.bot.Self.UserName,
		Mention:     a.cfg.MentionTrigger,
	}
	if a.cfg.GitHubVerify {
		opts.Verifier = github.NewVerifier(a.cfg.GitHubToken, &http.Client{Timeout: 10 * time.Second})
		a.log.Info("github pull request verification enabled")
	}
	a.router = telegram.NewRouter(gateway, a.repo, a.log, opts)
	a.recon = scheduler.NewReconciler(a.repo, gateway, a.log)
	a.sched = scheduler.New(a.log, clock.NewRealClock(), a.cfg.Location, a.cfg.CheckAtMinute)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("http server error", zap.Error(err))
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		// Create a short-lived shutdown context and cancel it immediately after use.
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.httpSrv.Shutdown(shCtx); err != nil {
			a.log.Warn("http server shutdown error", zap.Error(err))
		}
		return nil
	})
	g.Go(func() error {
		a.sched.Run(gctx)
		return nil
	})

	// The poller may sit in a long-poll request after shutdown starts;
	// it is not waited for.
	updates := make(chan telegram.Update)
	go telegram.NewPoller(a.bot, a.log).Run(gctx, updates)

	a.loop(gctx, updates, a.sched.C())
	a.log.Info("shutdown signal received")

	return g.Wait()
}

// loop is the single consumer of inbound updates and daily ticks, so the
// store is never touched by two handlers at once.
func (a *App) loop(ctx context.Context, updates <-chan telegram.Update, ticks <-chan time.Time) {
	for {
		select {
		case <-ctx.Done():
			return
		case upd := <-updates:
			a.router.HandleUpdate(ctx, upd)
		case at := <-ticks:
			a.log.Info("daily reconciliation triggered", zap.Time("scheduled", at))
			// A started run always completes, even if shutdown begins meanwhile.
			a.recon.Reconcile(context.WithoutCancel(ctx))
		}
	}
}
