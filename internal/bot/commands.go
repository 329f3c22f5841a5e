package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/truptibhosale899-maker/DailyNest/internal/kit"
	"github.com/truptibhosale899-maker/DailyNest/internal/store"
	"github.com/truptibhosale899-maker/DailyNest/pkg/logx"
)

// DigestSender is the slice of the broadcaster the command layer reuses for
// on-demand digests.
type DigestSender interface {
	SendDigest(ctx context.Context, acct store.Account)
}

// Accounts is the store slice used by the command layer.
type Accounts interface {
	GetByChatID(ctx context.Context, chatID string) (store.Account, error)
}

// Service routes interactive commands (/start, /news, /help) coming in on
// the adapter's update channel.
type Service struct {
	adapter kit.Adapter
	store   Accounts
	digest  DigestSender
	log     logx.Logger
}

func New(adapter kit.Adapter, st Accounts, digest DigestSender, log logx.Logger) *Service {
	return &Service{adapter: adapter, store: st, digest: digest, log: log}
}

// DispatchLoop consumes updates until ctx is done. One update is handled at
// a time; an on-demand digest suspends the loop at its send boundaries,
// which is acceptable at this bot's scale.
func (s *Service) DispatchLoop(ctx context.Context, updates <-chan kit.Update) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case up, ok := <-updates:
			if !ok {
				return nil
			}
			if up.Message == nil {
				continue
			}
			s.handleMessage(ctx, up.Message)
		}
	}
}

func (s *Service) handleMessage(ctx context.Context, m *kit.Message) {
	cmd := commandOf(m.Text)
	if cmd == "" {
		return
	}
	target := kit.ChatTarget{ChatID: m.ChatID}
	opts := &kit.SendOptions{ParseMode: "HTML", DisablePreview: true}

	switch cmd {
	case "start":
		text := "🪺 Welcome to <b>DailyNest Bot</b>!\n\n" +
			fmt.Sprintf("Your Telegram Chat ID is: <code>%d</code>\n\n", m.ChatID) +
			"Add this ID to your preferences on the DailyNest website to receive personalised news digests.\n\n" +
			"Use /news to get your latest headlines."
		s.send(ctx, target, text, opts)

	case "news":
		acct, err := s.store.GetByChatID(ctx, strconv.FormatInt(m.ChatID, 10))
		if errors.Is(err, store.ErrNotFound) {
			s.send(ctx, target,
				"⚠️ Your Telegram ID is not linked to any DailyNest account.\n"+
					"Set your Chat ID in the website preferences first (see /start).", opts)
			return
		}
		if err != nil {
			s.log.Error("account lookup failed", logx.Int64("chat_id", m.ChatID), logx.Err(err))
			s.send(ctx, target, "Something went wrong, please try again later.", opts)
			return
		}
		s.send(ctx, target, "📡 Fetching your personalised news…", opts)
		s.digest.SendDigest(ctx, acct)

	case "help":
		s.send(ctx, target,
			"🪺 <b>DailyNest Bot Commands</b>\n\n"+
				"/start – Get your Chat ID\n"+
				"/news – Get your personalised news\n"+
				"/help – Show this message", opts)

	default:
		s.send(ctx, target, "Unknown command. Try /help.", opts)
	}
}

func (s *Service) send(ctx context.Context, to kit.ChatTarget, text string, opts *kit.SendOptions) {
	if _, err := s.adapter.SendText(ctx, to, text, opts); err != nil {
		s.log.Warn("reply failed", logx.Int64("chat_id", to.ChatID), logx.Err(err))
	}
}

// commandOf extracts the command name from "/cmd@BotName args".
// Non-command text yields "".
func commandOf(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	first := strings.Fields(text)[0]
	first = strings.TrimPrefix(first, "/")
	if at := strings.IndexByte(first, '@'); at >= 0 {
		first = first[:at]
	}
	return strings.ToLower(first)
}
