package web

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/truptibhosale899-maker/DailyNest/internal/store"
	"github.com/truptibhosale899-maker/DailyNest/pkg/logx"
)

const (
	sessionUserKey  = "user_id"
	sessionFlashKey = "flash"
	ctxAccountKey   = "account"
)

// requireLogin loads the signed-in account into the gin context or redirects
// to /login. A stale session (deleted account) is cleared.
func (s *Server) requireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)
		raw := sess.Get(sessionUserKey)
		id, ok := raw.(int64)
		if !ok {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		acct, err := s.store.GetUser(c.Request.Context(), id)
		if err != nil {
			sess.Delete(sessionUserKey)
			_ = sess.Save()
			s.log.Warn("session references missing account", logx.Int64("user_id", id), logx.Err(err))
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Set(ctxAccountKey, acct)
		c.Next()
	}
}

func account(c *gin.Context) store.Account {
	acct, _ := c.MustGet(ctxAccountKey).(store.Account)
	return acct
}

func setFlash(c *gin.Context, msg string) {
	sess := sessions.Default(c)
	sess.Set(sessionFlashKey, msg)
	_ = sess.Save()
}

// popFlash returns and clears the pending flash message, if any.
func popFlash(c *gin.Context) string {
	sess := sessions.Default(c)
	raw := sess.Get(sessionFlashKey)
	if raw == nil {
		return ""
	}
	sess.Delete(sessionFlashKey)
	_ = sess.Save()
	msg, _ := raw.(string)
	return msg
}
