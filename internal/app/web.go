package app

import (
	"context"
	"time"

	"github.com/truptibhosale899-maker/DailyNest/internal/config"
	"github.com/truptibhosale899-maker/DailyNest/internal/news"
	"github.com/truptibhosale899-maker/DailyNest/internal/runtime/supervisor"
	"github.com/truptibhosale899-maker/DailyNest/internal/store"
	"github.com/truptibhosale899-maker/DailyNest/internal/web"
	"github.com/truptibhosale899-maker/DailyNest/pkg/logx"
)

// Web assembles the site: http server, account store, news gateway, and
// config hot-reload.
type Web struct {
	cfgm *config.Manager
	sup  *supervisor.Supervisor

	logs *logx.Service
	log  logx.Logger

	st  store.Store
	srv *web.Server
}

func NewWeb(cfgPath string) (*Web, error) {
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

	srv := web.NewServer(web.Config{
		Addr:          cfg.Web.Addr,
		SessionSecret: cfg.Web.SessionSecret,
	}, st, gateway, log.With(logx.String("comp", "web")))

	return &Web{cfgm: cfgm, logs: logs, log: log, st: st, srv: srv}, nil
}

func (w *Web) Start(ctx context.Context) error {
	w.sup = supervisor.New(ctx, supervisor.WithLogger(w.log), supervisor.WithCancelOnError(true))

	w.sup.Go("http.serve", w.srv.Run)
	w.sup.Go("config.watch", w.cfgm.Watch)
	w.sup.Go("config.reload", func(c context.Context) error {
		w.reloadLoop(c)
		return nil
	})

	w.log.Info("web started")
	return nil
}

func (w *Web) reloadLoop(ctx context.Context) {
	sub := w.cfgm.Subscribe(8)
	defer w.cfgm.Unsubscribe(sub)
	for {
		select {
		case <-ctx.Done():
			return
		case cfg, ok := <-sub:
			if !ok {
				return
			}
			w.logs.Apply(logx.Config{
				Level:   cfg.Logging.Level,
				Console: cfg.Logging.Console,
				File: logx.FileConfig{
					Enabled: cfg.Logging.File.Enabled,
					Path:    cfg.Logging.File.Path,
				},
			})
			w.log.Info("logging config applied; other sections need a restart")
		}
	}
}

func (w *Web) Done() <-chan struct{} {
	if w.sup == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return w.sup.Context().Done()
}

func (w *Web) Err() error {
	if w.sup == nil {
		return nil
	}
	return w.sup.Err()
}

func (w *Web) Stop(ctx context.Context) error {
	if w.sup != nil {
		w.sup.Cancel()
		_ = w.sup.Wait(ctx)
	}
	err := w.st.Close()
	w.log.Info("web stopped")
	_ = w.logs.Close()
	return err
}
