package news

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/truptibhosale899-maker/DailyNest/pkg/logx"
)

// Categories is the fixed label set used both for headline requests and for
// tagging user interest.
var Categories = []string{
	"technology", "sports", "business", "entertainment", "health", "science", "general",
}

func ValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// removedTitle is the tombstone the upstream emits for withdrawn content.
const removedTitle = "[Removed]"

// Article is transient: produced per request, never persisted.
type Article struct {
	Title       string
	Description string
	URL         string
	ImageURL    string
	SourceName  string
	PublishedAt time.Time
}

type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration // fixed per-call timeout; default 10s
}

// Client wraps the upstream headline service. It never surfaces a network
// failure: any transport error, non-success status, or malformed body
// degrades to the fixed fallback set. Availability over correctness.
type Client struct {
	cfg  Config
	http *http.Client
	log  logx.Logger
}

func NewClient(cfg Config, log logx.Logger) *Client {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://newsapi.org/v2"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  log,
	}
}

// TopHeadlines fetches the curated feed scoped to one category.
func (c *Client) TopHeadlines(ctx context.Context, category string, limit int) []Article {
	q := url.Values{}
	q.Set("category", category)
	q.Set("pageSize", strconv.Itoa(limit))
	q.Set("language", "en")
	q.Set("country", "us")
	return c.fetch(ctx, "/top-headlines", q, limit)
}

// Search runs a recency-sorted query across all sources ("everything" mode).
func (c *Client) Search(ctx context.Context, query string, limit int) []Article {
	q := url.Values{}
	q.Set("q", query)
	q.Set("pageSize", strconv.Itoa(limit))
	q.Set("language", "en")
	q.Set("sortBy", "publishedAt")
	return c.fetch(ctx, "/everything", q, limit)
}

type apiResponse struct {
	Status   string `json:"status"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		URLToImage  string `json:"urlToImage"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

func (c *Client) fetch(ctx context.Context, endpoint string, q url.Values, limit int) []Article {
	q.Set("apiKey", c.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return Fallback()
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("news fetch failed; serving fallback", logx.String("endpoint", endpoint), logx.Err(err))
		return Fallback()
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		c.log.Warn("news upstream non-success; serving fallback",
			logx.String("endpoint", endpoint), logx.Int("status", resp.StatusCode))
		return Fallback()
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.log.Warn("news response malformed; serving fallback", logx.Err(err))
		return Fallback()
	}
	if body.Status != "ok" {
		c.log.Warn("news upstream status not ok; serving fallback", logx.String("status", body.Status))
		return Fallback()
	}

	out := make([]Article, 0, len(body.Articles))
	for _, a := range body.Articles {
		if a.Title == "" || a.Title == removedTitle {
			continue
		}
		pub, _ := time.Parse(time.RFC3339, a.PublishedAt)
		out = append(out, Article{
			Title:       a.Title,
			Description: a.Description,
			URL:         a.URL,
			ImageURL:    a.URLToImage,
			SourceName:  a.Source.Name,
			PublishedAt: pub,
		})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}
