package session

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const contextKey = "session"

// CookieOptions controls the session cookie
type CookieOptions struct {
	Name   string
	MaxAge time.Duration
	Secure bool
}

// DefaultCookieName is used when CookieOptions.Name is empty
const DefaultCookieName = "reddit_session"

// Middleware loads the session named by the request cookie and exposes it
// through FromContext. A request without a valid session gets a fresh id; the
// cookie for it is only sent once something is stored in the session.
func Middleware(store Store, opts CookieOptions, logger *slog.Logger) gin.HandlerFunc {
	if opts.Name == "" {
		opts.Name = DefaultCookieName
	}

	return func(c *gin.Context) {
		var sess *Session

		if id, err := c.Cookie(opts.Name); err == nil && id != "" {
			values, err := store.Load(c.Request.Context(), id)
			switch {
			case err == nil:
				sess = newSession(id, store, values)
			case errors.Is(err, ErrNotFound):
			default:
				logger.Warn("failed to load session", "error", err)
			}
		}

		if sess == nil {
			sameSite := http.SameSiteLaxMode
			if opts.Secure {
				// cross-site front-ends only send the cookie with SameSite=None
				sameSite = http.SameSiteNoneMode
			}
			sess = newSession(uuid.NewString(), store, nil)
			sess.onDirty = func() {
				http.SetCookie(c.Writer, &http.Cookie{
					Name:     opts.Name,
					Value:    sess.id,
					Path:     "/",
					MaxAge:   int(opts.MaxAge.Seconds()),
					Secure:   opts.Secure,
					HttpOnly: true,
					SameSite: sameSite,
				})
			}
		}

		c.Set(contextKey, sess)
		c.Next()
	}
}

// FromContext returns the session attached by Middleware
func FromContext(c *gin.Context) (*Session, bool) {
	v, ok := c.Get(contextKey)
	if !ok {
		return nil, false
	}
	sess, ok := v.(*Session)
	return sess, ok
}
