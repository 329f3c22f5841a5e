package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/truptibhosale899-maker/DailyNest/internal/news"
	"github.com/truptibhosale899-maker/DailyNest/internal/store"
	"github.com/truptibhosale899-maker/DailyNest/pkg/logx"
)

type fakeGateway struct{}

func (fakeGateway) TopHeadlines(_ context.Context, category string, limit int) []news.Article {
	return []news.Article{{
		Title:      strings.ToUpper(category) + " headline",
		URL:        "https://example.com/" + category,
		SourceName: "Example Wire",
	}}
}

func (fakeGateway) Search(_ context.Context, query string, limit int) []news.Article {
	return []news.Article{{Title: "About " + query, URL: "https://example.com/q"}}
}

func newTestServer(t *testing.T) (*httptest.Server, store.Store) {
	t.Helper()
	st, err := store.Open(store.Config{Path: filepath.Join(t.TempDir(), "web.db")}, logx.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	srv := NewServer(Config{Addr: ":0", SessionSecret: "test-secret"}, st, fakeGateway{}, logx.Nop())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, st
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func TestDashboardRequiresLogin(t *testing.T) {
	ts, _ := newTestServer(t)
	client := newClient(t)
	client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	resp, err := client.Get(ts.URL + "/dashboard")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestSignupLoginDashboard(t *testing.T) {
	ts, _ := newTestServer(t)
	client := newClient(t)

	resp, err := client.PostForm(ts.URL+"/signup", url.Values{
		"username":         {"alice"},
		"password":         {"s3cret"},
		"confirm_password": {"s3cret"},
	})
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = client.PostForm(ts.URL+"/login", url.Values{
		"username": {"alice"},
		"password": {"s3cret"},
	})
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	// The redirect chain ends on the dashboard for a valid session.
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "alice")
	assert.Contains(t, string(body), "GENERAL headline")
}

func TestSignupRejectsMismatchedPasswords(t *testing.T) {
	ts, st := newTestServer(t)
	client := newClient(t)

	resp, err := client.PostForm(ts.URL+"/signup", url.Values{
		"username":         {"bob"},
		"password":         {"oneoneone"},
		"confirm_password": {"twotwotwo"},
	})
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	assert.Contains(t, string(body), "Passwords do not match")
	_, err = st.Authenticate(context.Background(), "bob", "oneoneone")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	ts, st := newTestServer(t)
	_, err := st.CreateUser(context.Background(), "carol", "right")
	require.NoError(t, err)

	client := newClient(t)
	resp, err := client.PostForm(ts.URL+"/login", url.Values{
		"username": {"carol"},
		"password": {"wrong"},
	})
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	assert.Contains(t, string(body), "Invalid username or password")
}

func TestPreferencesUpdateRoundTrip(t *testing.T) {
	ts, st := newTestServer(t)
	ctx := context.Background()
	id, err := st.CreateUser(ctx, "dave", "pw")
	require.NoError(t, err)

	client := newClient(t)
	resp, err := client.PostForm(ts.URL+"/login", url.Values{
		"username": {"dave"}, "password": {"pw"},
	})
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = client.PostForm(ts.URL+"/preferences", url.Values{
		"categories":  {"technology", "sports", "not-a-category"},
		"telegram_id": {"123456789"},
	})
	require.NoError(t, err)
	resp.Body.Close()

	acct, err := st.GetUser(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"technology", "sports"}, acct.Categories())
	assert.Equal(t, "123456789", acct.TelegramChatID)
}

func TestAPINews(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/news/technology")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")

	// The payload is a bare array of four-field article objects.
	var payload []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		Source      string `json:"source"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.Len(t, payload, 1)
	assert.Equal(t, "TECHNOLOGY headline", payload[0].Title)
	assert.Equal(t, "https://example.com/technology", payload[0].URL)
	assert.Equal(t, "Example Wire", payload[0].Source)
}

func TestAPINewsUnknownCategory(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/news/gardening")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUnknownCategoryPageRedirectsHome(t *testing.T) {
	ts, _ := newTestServer(t)
	client := newClient(t)
	client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	resp, err := client.Get(ts.URL + "/category/gardening")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
}
