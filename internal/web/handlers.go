package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/truptibhosale899-maker/DailyNest/internal/news"
	"github.com/truptibhosale899-maker/DailyNest/internal/store"
	"github.com/truptibhosale899-maker/DailyNest/pkg/logx"
)

func (s *Server) home(c *gin.Context) {
	ctx := c.Request.Context()
	c.HTML(http.StatusOK, "home.html", gin.H{
		"Flash":      popFlash(c),
		"Categories": news.Categories,
		"Trending":   s.news.TopHeadlines(ctx, "general", 9),
		"Tech":       s.news.TopHeadlines(ctx, "technology", 3),
	})
}

func (s *Server) signupForm(c *gin.Context) {
	c.HTML(http.StatusOK, "signup.html", gin.H{"Flash": popFlash(c)})
}

func (s *Server) signup(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")
	confirm := c.PostForm("confirm_password")

	switch {
	case username == "" || password == "":
		setFlash(c, "Username and password are required.")
	case len(password) < 6:
		setFlash(c, "Password must be at least 6 characters.")
	case password != confirm:
		setFlash(c, "Passwords do not match.")
	default:
		_, err := s.store.CreateUser(c.Request.Context(), username, password)
		if err == nil {
			setFlash(c, "Account created! Please log in.")
			c.Redirect(http.StatusFound, "/login")
			return
		}
		if errors.Is(err, store.ErrDuplicateUsername) {
			setFlash(c, "That username is already taken.")
		} else {
			s.log.Error("signup failed", logx.String("username", username), logx.Err(err))
			setFlash(c, "Something went wrong, please try again.")
		}
	}
	c.Redirect(http.StatusFound, "/signup")
}

func (s *Server) loginForm(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{"Flash": popFlash(c)})
}

func (s *Server) login(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")

	acct, err := s.store.Authenticate(c.Request.Context(), username, password)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.log.Error("login failed", logx.String("username", username), logx.Err(err))
		}
		setFlash(c, "Invalid username or password.")
		c.Redirect(http.StatusFound, "/login")
		return
	}

	sess := sessions.Default(c)
	sess.Set(sessionUserKey, acct.ID)
	if err := sess.Save(); err != nil {
		s.log.Error("session save failed", logx.Err(err))
		setFlash(c, "Something went wrong, please try again.")
		c.Redirect(http.StatusFound, "/login")
		return
	}
	c.Redirect(http.StatusFound, "/dashboard")
}

func (s *Server) logout(c *gin.Context) {
	sess := sessions.Default(c)
	sess.Clear()
	_ = sess.Save()
	c.Redirect(http.StatusFound, "/")
}

func (s *Server) dashboard(c *gin.Context) {
	acct := account(c)
	ctx := c.Request.Context()

	sections := make([]gin.H, 0, len(acct.Categories()))
	for _, cat := range acct.Categories() {
		sections = append(sections, gin.H{
			"Category": cat,
			"Articles": s.news.TopHeadlines(ctx, cat, 6),
		})
	}
	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"Flash":    popFlash(c),
		"Account":  acct,
		"Sections": sections,
	})
}

func (s *Server) preferencesForm(c *gin.Context) {
	acct := account(c)
	selected := make(map[string]bool, len(acct.Categories()))
	for _, cat := range acct.Categories() {
		selected[cat] = true
	}
	c.HTML(http.StatusOK, "preferences.html", gin.H{
		"Flash":      popFlash(c),
		"Account":    acct,
		"Categories": news.Categories,
		"Selected":   selected,
	})
}

func (s *Server) preferences(c *gin.Context) {
	acct := account(c)

	picked := make([]string, 0, len(news.Categories))
	for _, cat := range c.PostFormArray("categories") {
		if news.ValidCategory(cat) {
			picked = append(picked, cat)
		}
	}
	chatID := strings.TrimSpace(c.PostForm("telegram_id"))

	if err := s.store.UpdatePreferences(c.Request.Context(), acct.ID, picked, chatID); err != nil {
		s.log.Error("preferences update failed", logx.Int64("user_id", acct.ID), logx.Err(err))
		setFlash(c, "Could not save preferences, please try again.")
		c.Redirect(http.StatusFound, "/preferences")
		return
	}
	setFlash(c, "Preferences saved.")
	c.Redirect(http.StatusFound, "/dashboard")
}

func (s *Server) category(c *gin.Context) {
	cat := c.Param("cat")
	if !news.ValidCategory(cat) {
		setFlash(c, "Unknown category.")
		c.Redirect(http.StatusFound, "/")
		return
	}
	c.HTML(http.StatusOK, "category.html", gin.H{
		"Flash":      popFlash(c),
		"Category":   cat,
		"Categories": news.Categories,
		"Articles":   s.news.TopHeadlines(c.Request.Context(), cat, 12),
	})
}

func (s *Server) search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	var articles []news.Article
	if query != "" {
		articles = s.news.Search(c.Request.Context(), query, 12)
	}
	c.HTML(http.StatusOK, "search.html", gin.H{
		"Flash":      popFlash(c),
		"Query":      query,
		"Categories": news.Categories,
		"Articles":   articles,
	})
}

type apiArticle struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Source      string `json:"source"`
}

// apiNews is the small JSON surface used by the landing page ticker.
// The response is a bare array of four-field article objects.
func (s *Server) apiNews(c *gin.Context) {
	cat := c.Param("category")
	if !news.ValidCategory(cat) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category"})
		return
	}
	articles := s.news.TopHeadlines(c.Request.Context(), cat, 5)
	out := make([]apiArticle, 0, len(articles))
	for _, a := range articles {
		out = append(out, apiArticle{
			Title:       a.Title,
			Description: a.Description,
			URL:         a.URL,
			Source:      a.SourceName,
		})
	}
	c.JSON(http.StatusOK, out)
}
