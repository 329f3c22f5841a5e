package bot

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/truptibhosale899-maker/DailyNest/internal/kit"
	"github.com/truptibhosale899-maker/DailyNest/internal/store"
	"github.com/truptibhosale899-maker/DailyNest/pkg/logx"
)

type recordingAdapter struct {
	mu   sync.Mutex
	sent []string
}

func (r *recordingAdapter) Start(ctx context.Context, out chan<- kit.Update) error { return nil }
func (r *recordingAdapter) Stop(ctx context.Context) error                         { return nil }

func (r *recordingAdapter) SendText(ctx context.Context, to kit.ChatTarget, text string, opt *kit.SendOptions) (kit.MessageRef, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, text)
	return kit.MessageRef{ChatID: to.ChatID}, nil
}

func (r *recordingAdapter) messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.sent...)
}

type fakeAccounts struct {
	byChat map[string]store.Account
}

func (f *fakeAccounts) GetByChatID(ctx context.Context, chatID string) (store.Account, error) {
	a, ok := f.byChat[chatID]
	if !ok {
		return store.Account{}, store.ErrNotFound
	}
	return a, nil
}

type fakeSender struct {
	mu    sync.Mutex
	calls []store.Account
}

func (f *fakeSender) SendDigest(ctx context.Context, acct store.Account) {
	f.mu.Lock()
	f.calls = append(f.calls, acct)
	f.mu.Unlock()
}

func dispatchOne(t *testing.T, svc *Service, msg kit.Message) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	updates := make(chan kit.Update, 1)
	updates <- kit.Update{Message: &msg}

	done := make(chan struct{})
	go func() {
		_ = svc.DispatchLoop(ctx, updates)
		close(done)
	}()

	// Let the single queued update drain, then stop the loop.
	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("dispatch loop did not stop")
	}
}

func TestStartRepliesWithChatID(t *testing.T) {
	ad := &recordingAdapter{}
	svc := New(ad, &fakeAccounts{}, &fakeSender{}, logx.Nop())

	dispatchOne(t, svc, kit.Message{ChatID: 4242, Text: "/start"})

	msgs := ad.messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "4242")
}

func TestNewsUnlinked(t *testing.T) {
	ad := &recordingAdapter{}
	sender := &fakeSender{}
	svc := New(ad, &fakeAccounts{}, sender, logx.Nop())

	dispatchOne(t, svc, kit.Message{ChatID: 7, Text: "/news"})

	msgs := ad.messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "not linked")
	assert.Empty(t, sender.calls)
}

func TestNewsLinkedTriggersDigest(t *testing.T) {
	ad := &recordingAdapter{}
	sender := &fakeSender{}
	acct := store.Account{ID: 1, Username: "alice", TelegramChatID: "7", Preferences: "tech"}
	svc := New(ad, &fakeAccounts{byChat: map[string]store.Account{"7": acct}}, sender, logx.Nop())

	dispatchOne(t, svc, kit.Message{ChatID: 7, Text: "/news@DailyNestBot"})

	require.Len(t, sender.calls, 1)
	assert.Equal(t, "alice", sender.calls[0].Username)
}

func TestPlainTextIgnored(t *testing.T) {
	ad := &recordingAdapter{}
	svc := New(ad, &fakeAccounts{}, &fakeSender{}, logx.Nop())

	dispatchOne(t, svc, kit.Message{ChatID: 1, Text: "hello there"})
	assert.Empty(t, ad.messages())
}

func TestCommandOf(t *testing.T) {
	cases := map[string]string{
		"/start":              "start",
		"/news@DailyNestBot":  "news",
		"/HELP":               "help",
		"  /help extra words": "help",
		"no command":          "",
		"":                    "",
	}
	for in, want := range cases {
		assert.Equal(t, want, commandOf(in), "input %q", in)
	}
}
