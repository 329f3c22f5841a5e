package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"github.com/truptibhosale899-maker/DailyNest/internal/news"
	"github.com/truptibhosale899-maker/DailyNest/internal/store"
	"github.com/truptibhosale899-maker/DailyNest/pkg/logx"
)

//go:embed templates/*.html
var templatesFS embed.FS

type Config struct {
	Addr          string
	SessionSecret string
}

// Gateway is the slice of the news client the handlers use.
type Gateway interface {
	TopHeadlines(ctx context.Context, category string, limit int) []news.Article
	Search(ctx context.Context, query string, limit int) []news.Article
}

type Server struct {
	cfg    Config
	engine *gin.Engine
	store  store.Store
	news   Gateway
	log    logx.Logger
}

func NewServer(cfg Config, st store.Store, gw Gateway, log logx.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	secret := cfg.SessionSecret
	if secret == "" {
		log.Warn("web.session_secret not set; using an ephemeral dev secret")
		secret = "dailynest-dev-secret"
	}
	engine.Use(sessions.Sessions("dailynest_session", cookie.NewStore([]byte(secret))))

	tmpl := template.Must(template.ParseFS(templatesFS, "templates/*.html"))
	engine.SetHTMLTemplate(tmpl)

	s := &Server{cfg: cfg, engine: engine, store: st, news: gw, log: log}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.engine

	r.GET("/", s.home)
	r.GET("/signup", s.signupForm)
	r.POST("/signup", s.signup)
	r.GET("/login", s.loginForm)
	r.POST("/login", s.login)
	r.GET("/logout", s.logout)
	r.GET("/category/:cat", s.category)
	r.GET("/search", s.search)
	r.GET("/api/news/:category", s.apiNews)

	auth := r.Group("/", s.requireLogin())
	auth.GET("/dashboard", s.dashboard)
	auth.GET("/preferences", s.preferencesForm)
	auth.POST("/preferences", s.preferences)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", logx.String("addr", s.cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutCtx); err != nil {
			s.log.Warn("http shutdown", logx.Err(err))
		}
		<-errCh
		return nil
	}
}
