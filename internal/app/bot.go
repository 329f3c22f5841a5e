package app

import (
	"context"
	"time"

	"github.com/truptibhosale899-maker/DailyNest/internal/adapters/telegram"
	"github.com/truptibhosale899-maker/DailyNest/internal/bot"
	"github.com/truptibhosale899-maker/DailyNest/internal/config"
	"github.com/truptibhosale899-maker/DailyNest/internal/digest"
	"github.com/truptibhosale899-maker/DailyNest/internal/kit"
	"github.com/truptibhosale899-maker/DailyNest/internal/news"
	"github.com/truptibhosale899-maker/DailyNest/internal/runtime/supervisor"
	"github.com/truptibhosale899-maker/DailyNest/internal/scheduler"
	"github.com/truptibhosale899-maker/DailyNest/internal/store"
	"github.com/truptibhosale899-maker/DailyNest/pkg/logx"
)

// Bot assembles the digest bot: telegram adapter, command dispatch, the
// daily broadcast schedule, and config hot-reload.
type Bot struct {
	cfgm *config.Manager
	sup  *supervisor.Supervisor

	logs *logx.Service
	log  logx.Logger

	st      store.Store
	adapter *telegram.Adapter
	bcast   *digest.Broadcaster
	cmds    *bot.Service
	sched   *scheduler.Service

	updates chan kit.Update
}

func NewBot(cfgPath string) (*Bot, error) {
	config.LoadEnv()

	cfgm := config.NewManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}

	logs, log := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	log = log.With(logx.String("comp", "app"))
	cfgm.SetLogger(log.With(logx.String("comp", "config")))

	busyTimeout, err := config.DurationField("storage.busy_timeout", cfg.Storage.BusyTimeout, 5*time.Second)
	if err != nil {
		return nil, err
	}
	st, err := store.Open(store.Config{
		Path:        cfg.Storage.Path,
		BusyTimeout: busyTimeout,
	}, log.With(logx.String("comp", "store")))
	if err != nil {
		return nil, err
	}

	newsTimeout, err := config.DurationField("news.timeout", cfg.News.Timeout, 10*time.Second)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	gateway := news.NewClient(news.Config{
		APIKey:  cfg.News.APIKey,
		BaseURL: cfg.News.BaseURL,
		Timeout: newsTimeout,
	}, log.With(logx.String("comp", "news")))

	pollTimeout, err := config.DurationField("telegram.poll_timeout", cfg.Telegram.PollTimeout, 10*time.Second)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	adapter, err := telegram.New(telegram.Config{
		Token:       cfg.Telegram.Token,
		PollTimeout: pollTimeout,
	}, log.With(logx.String("comp", "telegram")))
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	articleDelay, err := config.DurationField("digest.article_delay", cfg.Digest.ArticleDelay, 500*time.Millisecond)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	recipientPause, err := config.DurationField("digest.recipient_pause", cfg.Digest.RecipientPause, time.Second)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	bcast := digest.New(digest.Config{
		ArticlesPerCategory: cfg.Digest.ArticlesPerCategory,
		ArticleDelay:        articleDelay,
		RecipientPause:      recipientPause,
	}, st, gateway, adapter, log.With(logx.String("comp", "digest")))

	return &Bot{
		cfgm:    cfgm,
		logs:    logs,
		log:     log,
		st:      st,
		adapter: adapter,
		bcast:   bcast,
		cmds:    bot.New(adapter, st, bcast, log.With(logx.String("comp", "bot"))),
		sched: scheduler.New(scheduler.Config{Timezone: cfg.Digest.Timezone},
			log.With(logx.String("comp", "scheduler"))),
		updates: make(chan kit.Update, 256),
	}, nil
}

// Broadcast runs a single digest fan-out and returns. Used by the -once
// flag; no polling, no scheduler.
func (b *Bot) Broadcast(ctx context.Context) error {
	return b.bcast.Run(ctx)
}

func (b *Bot) Start(ctx context.Context) error {
	b.sup = supervisor.New(ctx, supervisor.WithLogger(b.log), supervisor.WithCancelOnError(true))

	if err := b.adapter.Start(b.sup.Context(), b.updates); err != nil {
		return err
	}

	b.sched.Start(b.sup.Context())
	cfg := b.cfgm.Get()
	if err := b.sched.AddDaily("daily-digest", cfg.Digest.At, b.bcast.Run); err != nil {
		return err
	}
	b.log.Info("daily digest scheduled", logx.String("at", cfg.Digest.At),
		logx.String("timezone", cfg.Digest.Timezone))

	b.sup.Go("bot.dispatch", func(c context.Context) error {
		return b.cmds.DispatchLoop(c, b.updates)
	})
	b.sup.Go("config.watch", b.cfgm.Watch)
	b.sup.Go("config.reload", func(c context.Context) error {
		b.reloadLoop(c)
		return nil
	})

	b.log.Info("bot started")
	return nil
}

// reloadLoop applies the hot-reloadable subset of a new config: logging
// sinks and the digest send time. Token, storage path, and the schedule
// timezone need a restart and are logged as such.
func (b *Bot) reloadLoop(ctx context.Context) {
	sub := b.cfgm.Subscribe(8)
	defer b.cfgm.Unsubscribe(sub)
	last := b.cfgm.Get()
	for {
		select {
		case <-ctx.Done():
			return
		case cfg, ok := <-sub:
			if !ok {
				return
			}
			b.logs.Apply(logx.Config{
				Level:   cfg.Logging.Level,
				Console: cfg.Logging.Console,
				File: logx.FileConfig{
					Enabled: cfg.Logging.File.Enabled,
					Path:    cfg.Logging.File.Path,
				},
			})
			if cfg.Digest.At != last.Digest.At {
				if err := b.sched.AddDaily("daily-digest", cfg.Digest.At, b.bcast.Run); err != nil {
					b.log.Warn("digest reschedule rejected",
						logx.String("at", cfg.Digest.At), logx.Err(err))
				} else {
					b.log.Info("daily digest rescheduled", logx.String("at", cfg.Digest.At))
				}
			}
			if cfg.Digest.Timezone != last.Digest.Timezone {
				b.log.Warn("digest.timezone changed; takes effect after restart")
			}
			last = cfg
			b.log.Info("config changes applied")
		}
	}
}

// Done is closed on the first fatal error or external cancellation.
func (b *Bot) Done() <-chan struct{} {
	if b.sup == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return b.sup.Context().Done()
}

func (b *Bot) Err() error {
	if b.sup == nil {
		return nil
	}
	return b.sup.Err()
}

func (b *Bot) Stop(ctx context.Context) error {
	if b.sup != nil {
		b.sup.Cancel()
	}
	_ = b.adapter.Stop(ctx)
	b.sched.Stop(ctx)
	if b.sup != nil {
		_ = b.sup.Wait(ctx)
	}
	err := b.st.Close()
	b.log.Info("bot stopped")
	_ = b.logs.Close()
	return err
}

// Close releases resources without a prior Start. Used by one-shot mode.
func (b *Bot) Close() error {
	err := b.st.Close()
	_ = b.logs.Close()
	return err
}
