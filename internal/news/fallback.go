package news

import "time"

// Fallback returns the fixed placeholder set served when the upstream is
// unavailable. The UI never shows an error page for news-fetch failures.
func Fallback() []Article {
	now := time.Now()
	return []Article{
		{
			Title:       "DailyNest is Ready – Add Your NewsAPI Key!",
			Description: "Set NEWS_API_KEY with a free key from newsapi.org to see live news.",
			URL:         "https://newsapi.org/register",
			ImageURL:    "https://placehold.co/600x400/7c3aed/ffffff?text=DailyNest",
			SourceName:  "DailyNest",
			PublishedAt: now,
		},
		{
			Title:       "Technology is Changing the World Fast",
			Description: "From AI to quantum computing, the pace of technological change is accelerating. Get real articles by adding your API key.",
			URL:         "#",
			ImageURL:    "https://placehold.co/600x400/6d28d9/ffffff?text=Technology",
			SourceName:  "Demo",
			PublishedAt: now,
		},
		{
			Title:       "Business Markets See New Highs",
			Description: "Global markets continue their upward trend as investors remain optimistic. Add a NewsAPI key for live data.",
			URL:         "#",
			ImageURL:    "https://placehold.co/600x400/5b21b6/ffffff?text=Business",
			SourceName:  "Demo",
			PublishedAt: now,
		},
	}
}
