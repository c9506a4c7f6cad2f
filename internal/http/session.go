package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"todo-calendar/internal/auth"
)

// authedHandler receives the verified identity explicitly instead of looking it up.
type authedHandler func(c *gin.Context, who auth.Identity)

// authed rejects requests without a valid session before next, and therefore
// any storage access, runs.
func (h *Handler) authed(next authedHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		who, err := h.issuer.Validate(sessionToken(c, h.cookie.Name))
		if err != nil {
			h.writeError(c, err)
			c.Abort()
			return
		}
		// kept for the request log only
		c.Set(identityKey, who)
		next(c, who)
	}
}

// sessionToken reads the session cookie, falling back to a bearer token.
func sessionToken(c *gin.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
		return cookie
	}
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

func (h *Handler) setSessionCookie(c *gin.Context, sess *auth.Session) {
	cookie := &http.Cookie{
		Name:     h.cookie.Name,
		Value:    sess.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if h.cookie.Persistent {
		cookie.MaxAge = int(h.issuer.TTL() / time.Second)
		cookie.Expires = sess.ExpiresAt.UTC()
	}
	http.SetCookie(c.Writer, cookie)
}

func (h *Handler) clearSessionCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
