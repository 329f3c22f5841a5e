package digest

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf8"
)

// descriptionLimit is the hard cutoff for article descriptions, in runes.
const descriptionLimit = 120

const divider = "━━━━━━━━━━━━━━━━━"

// truncRunes returns s truncated to at most n runes, appending an ellipsis
// when truncated.
func truncRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	cut := 0
	for i, r := range s {
		count++
		if count == n {
			cut = i + utf8.RuneLen(r)
			continue
		}
		if count > n {
			if cut <= 0 {
				cut = i
			}
			return s[:cut] + "…"
		}
	}
	return s
}

func esc(s string) string { return html.EscapeString(s) }

func b(s string) string { return "<b>" + esc(s) + "</b>" }
func i(s string) string { return "<i>" + esc(s) + "</i>" }

func link(text, url string) string {
	return fmt.Sprintf(`<a href="%s">%s</a>`, esc(url), esc(text))
}

func formatHeader(username string) string {
	return "🪺 " + b("DailyNest – Daily Digest for "+username) + "\n" +
		"Here's your personalised news roundup!"
}

func formatCategoryHeader(category string) string {
	return divider + "\n📂 " + b(strings.ToUpper(category))
}

// formatArticle renders one article message: title, truncated description,
// link, source name.
func formatArticle(a articleView) string {
	var sb strings.Builder
	sb.WriteString("📰 ")
	sb.WriteString(b(a.Title))
	sb.WriteString("\n")
	if a.Description != "" {
		sb.WriteString(i(truncRunes(a.Description, descriptionLimit)))
		sb.WriteString("\n")
	}
	sb.WriteString("🔗 ")
	sb.WriteString(link("Read more", a.URL))
	sb.WriteString("\n🏷️ Source: ")
	sb.WriteString(esc(a.SourceName))
	return sb.String()
}

func formatFooter() string {
	return divider + "\n📲 Update your preferences on the DailyNest website."
}

// articleView is the slice of news.Article the formatter needs.
type articleView struct {
	Title       string
	Description string
	URL         string
	SourceName  string
}
