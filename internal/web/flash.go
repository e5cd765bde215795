package web

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const flashCookie = "flash"

const (
	toastSuccess = "success"
	toastError   = "error"
)

// Toast is a transient notification shown once
type Toast struct {
	Kind    string
	Message string
}

// setFlash stores a toast for the next page render, surviving a redirect.
// gin escapes the cookie value.
func setFlash(c *gin.Context, kind, message string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookie, kind+":"+message, 60, "/", "", false, true)
}

// popFlash reads and clears the pending toast
func popFlash(c *gin.Context) *Toast {
	value, err := c.Cookie(flashCookie)
	if err != nil || value == "" {
		return nil
	}
	c.SetCookie(flashCookie, "", -1, "/", "", false, true)
	kind, message, ok := strings.Cut(value, ":")
	if !ok || message == "" {
		return nil
	}
	return &Toast{Kind: kind, Message: message}
}
