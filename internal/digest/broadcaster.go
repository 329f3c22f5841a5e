package digest

import (
	"context"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/truptibhosale899-maker/DailyNest/internal/kit"
	"github.com/truptibhosale899-maker/DailyNest/internal/news"
	"github.com/truptibhosale899-maker/DailyNest/internal/store"
	"github.com/truptibhosale899-maker/DailyNest/pkg/logx"
)

// Fetcher is the read-only slice of the news gateway the broadcaster uses.
type Fetcher interface {
	TopHeadlines(ctx context.Context, category string, limit int) []news.Article
}

// Recipients is the store slice the broadcaster depends on.
type Recipients interface {
	ListLinked(ctx context.Context) ([]store.Account, error)
}

type Config struct {
	ArticlesPerCategory int
	// ArticleDelay paces article sends within one recipient's digest.
	ArticleDelay time.Duration
	// RecipientPause separates recipients; longer than ArticleDelay.
	RecipientPause time.Duration
}

// Broadcaster fans a personalised digest out to every linked account,
// sequentially. Best-effort: a failed send is isolated to its message or
// recipient, never to the run. No state is carried between runs.
type Broadcaster struct {
	cfg     Config
	store   Recipients
	fetch   Fetcher
	adapter kit.Adapter
	log     logx.Logger

	limiter *rate.Limiter
}

func New(cfg Config, st Recipients, fetch Fetcher, adapter kit.Adapter, log logx.Logger) *Broadcaster {
	if cfg.ArticlesPerCategory <= 0 {
		cfg.ArticlesPerCategory = 3
	}
	if cfg.ArticleDelay <= 0 {
		cfg.ArticleDelay = 500 * time.Millisecond
	}
	if cfg.RecipientPause <= 0 {
		cfg.RecipientPause = time.Second
	}
	return &Broadcaster{
		cfg:     cfg,
		store:   st,
		fetch:   fetch,
		adapter: adapter,
		log:     log,
		limiter: rate.NewLimiter(rate.Every(cfg.ArticleDelay), 1),
	}
}

// Run performs one broadcast: load recipients, send each a digest, done.
// An empty recipient list is a no-op, not an error. Only an infrastructure
// failure (the store read) aborts the run.
func (b *Broadcaster) Run(ctx context.Context) error {
	accounts, err := b.store.ListLinked(ctx)
	if err != nil {
		return err
	}
	if len(accounts) == 0 {
		b.log.Info("no linked recipients; nothing to send")
		return nil
	}

	b.log.Info("broadcast started", logx.Int("recipients", len(accounts)))
	for idx, acct := range accounts {
		if idx > 0 {
			if err := sleepCtx(ctx, b.cfg.RecipientPause); err != nil {
				return err
			}
		}
		b.SendDigest(ctx, acct)
	}
	b.log.Info("broadcast complete", logx.Int("recipients", len(accounts)))
	return nil
}

// SendDigest delivers one recipient's full digest: header, per-category
// blocks, footer. Shared by the scheduled broadcast and the interactive
// /news command.
func (b *Broadcaster) SendDigest(ctx context.Context, acct store.Account) {
	chatID, err := strconv.ParseInt(acct.TelegramChatID, 10, 64)
	if err != nil {
		b.log.Warn("invalid telegram chat id; skipping recipient",
			logx.String("user", acct.Username), logx.String("chat_id", acct.TelegramChatID))
		return
	}
	target := kit.ChatTarget{ChatID: chatID}
	opts := &kit.SendOptions{ParseMode: "HTML"}

	log := b.log.With(logx.String("user", acct.Username), logx.Int64("chat_id", chatID))
	categories := acct.Categories()
	log.Debug("sending digest", logx.Any("categories", categories))

	// Header failure abandons this recipient entirely.
	if _, err := b.adapter.SendText(ctx, target, formatHeader(acct.Username), opts); err != nil {
		log.Warn("digest header failed; skipping recipient", logx.Err(err))
		return
	}

	for _, cat := range categories {
		articles := b.fetch.TopHeadlines(ctx, cat, b.cfg.ArticlesPerCategory)
		if len(articles) == 0 {
			continue
		}

		if _, err := b.adapter.SendText(ctx, target, formatCategoryHeader(cat), opts); err != nil {
			log.Warn("category header failed", logx.String("category", cat), logx.Err(err))
			continue
		}

		for _, a := range articles {
			if err := b.limiter.Wait(ctx); err != nil {
				return
			}
			msg := formatArticle(articleView{
				Title:       a.Title,
				Description: a.Description,
				URL:         a.URL,
				SourceName:  a.SourceName,
			})
			if _, err := b.adapter.SendText(ctx, target, msg, opts); err != nil {
				log.Warn("article send failed", logx.String("category", cat), logx.Err(err))
			}
		}
	}

	// Footer failure does not affect completion.
	if _, err := b.adapter.SendText(ctx, target, formatFooter(), opts); err != nil {
		log.Warn("digest footer failed", logx.Err(err))
	}
	log.Debug("digest done")
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
