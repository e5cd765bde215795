package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// CookieName is the cookie holding the web client's token
const CookieName = "access_token"

// CookieOptions configure the token cookie
type CookieOptions struct {
	Secure bool
	MaxAge time.Duration // Zero makes a browser-session cookie
}

// CookieStore keeps the token in an HttpOnly cookie of the current request.
// It is bound to one gin context.
type CookieStore struct {
	c       *gin.Context
	opts    CookieOptions
	written bool
	token   string
}

// NewCookieStore binds a store to c
func NewCookieStore(c *gin.Context, opts CookieOptions) *CookieStore {
	return &CookieStore{c: c, opts: opts}
}

// Load returns the token written during this request, or the request cookie
func (s *CookieStore) Load() (string, error) {
	if s.written {
		return s.token, nil
	}
	token, err := s.c.Cookie(CookieName)
	if errors.Is(err, http.ErrNoCookie) {
		return "", nil
	}
	return token, err
}

func (s *CookieStore) Save(token string) error {
	s.set(token, int(s.opts.MaxAge/time.Second))
	return nil
}

func (s *CookieStore) Clear() error {
	s.set("", -1)
	return nil
}

func (s *CookieStore) set(token string, maxAge int) {
	s.written = true
	s.token = token
	s.c.SetSameSite(http.SameSiteLaxMode)
	s.c.SetCookie(CookieName, token, maxAge, "/", "", s.opts.Secure, true)
}
