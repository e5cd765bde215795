// Package web is the server-rendered client. Every page is a thin layer over
// the REST API: handlers validate forms, call the API with the request's
// context, and render the response.
package web

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"finance_tracker/internal/client"
	"finance_tracker/internal/datatable"
	"finance_tracker/internal/domain"
	"finance_tracker/internal/middleware"
	"finance_tracker/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

//go:embed templates/*.html
var templatesFS embed.FS

var pageNames = []string{
	"signin",
	"signup",
	"forgot_password",
	"otp_forgot_password",
	"reset_password",
	"dashboard",
	"records",
}

// Options configure the web client
type Options struct {
	API      *client.Client
	Cookie   session.CookieOptions
	PageSize int
	Metrics  *middleware.Metrics // Optional, exposes /metrics when set
}

// Server holds the parsed templates and the API client
type Server struct {
	api      *client.Client
	cookie   session.CookieOptions
	pageSize int
	metrics  *middleware.Metrics
	pages    map[string]*template.Template
}

// New parses the embedded templates
func New(opts Options) (*Server, error) {
	if opts.API == nil {
		return nil, errors.New("web: API client is required")
	}
	pageSize := opts.PageSize
	if pageSize < 1 {
		pageSize = datatable.DefaultPageSize
	}
	s := &Server{
		api:      opts.API,
		cookie:   opts.Cookie,
		pageSize: pageSize,
		metrics:  opts.Metrics,
		pages:    make(map[string]*template.Template, len(pageNames)),
	}
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(templateFuncs).ParseFS(templatesFS,
			"templates/layout.html", "templates/partials.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		s.pages[name] = t
	}
	return s, nil
}

var templateFuncs = template.FuncMap{
	"inr": domain.FormatINR,
	"year": func() int {
		return time.Now().Year()
	},
	"isZero": func(d decimal.Decimal) bool {
		return d.IsZero()
	},
}

// Router builds the web engine
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logrus.StandardLogger()))
	if s.metrics != nil {
		r.Use(s.metrics.Handler())
		r.GET("/metrics", gin.WrapH(s.metrics.Exporter()))
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "success", "message": "ok"})
	})
	r.GET("/", func(c *gin.Context) {
		if s.session(c).Active() {
			c.Redirect(http.StatusFound, "/dashboard")
			return
		}
		c.Redirect(http.StatusFound, "/signin")
	})

	// Auth pages
	r.GET("/signin", s.signinPage)
	r.POST("/signin", s.signin)
	r.GET("/signup", s.signupPage)
	r.POST("/signup", s.signup)
	r.POST("/logout", s.logout)
	r.GET("/forgot-password", s.forgotPasswordPage)
	r.POST("/forgot-password", s.forgotPassword)
	r.GET("/otp-forgot-password", s.otpPage)
	r.POST("/otp-forgot-password", s.otpStep)
	r.GET("/reset-password", s.resetPasswordPage)
	r.POST("/reset-password", s.resetPassword)
	r.POST("/validate/:form/:field", s.validateField)

	// Pages behind the session token
	authed := r.Group("")
	authed.Use(s.requireSession)
	authed.GET("/dashboard", s.dashboard)

	expenses := newRecordPages(s, expenseKind)
	authed.GET("/expenses", expenses.list)
	authed.POST("/expenses", expenses.create)
	authed.POST("/expenses/:id", expenses.update)
	authed.POST("/expenses/:id/delete", expenses.remove)

	incomes := newRecordPages(s, incomeKind)
	authed.GET("/incomes", incomes.list)
	authed.POST("/incomes", incomes.create)
	authed.POST("/incomes/:id", incomes.update)
	authed.POST("/incomes/:id/delete", incomes.remove)

	return r
}

// session is the token of the current request
func (s *Server) session(c *gin.Context) *session.Session {
	return session.New(session.NewCookieStore(c, s.cookie))
}

// requireSession sends visitors without a token to the sign-in page
func (s *Server) requireSession(c *gin.Context) {
	if !s.session(c).Active() {
		s.toSignin(c, session.NoTokenMessage)
		return
	}
	c.Next()
}

// toSignin ends the session and redirects with an error toast
func (s *Server) toSignin(c *gin.Context, message string) {
	_ = s.session(c).End()
	setFlash(c, toastError, message)
	c.Redirect(http.StatusFound, "/signin")
	c.Abort()
}

// apiFailed handles an error from an API call made for a page. It reports
// whether the caller should stop.
func (s *Server) apiFailed(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, session.ErrNoToken) || client.IsUnauthorized(err) {
		s.toSignin(c, client.UserMessage(err))
		return true
	}
	logrus.WithFields(logrus.Fields{"path": c.Request.URL.Path, "error": err.Error()}).Warn("API call failed")
	return false
}

// Page is the data every template receives
type Page struct {
	Title  string
	Nav    bool   // Show the navbar and sidebar
	Active string // Highlighted sidebar link
	Toast  *Toast
	Data   any
}

// SidebarLinks are the links of the signed-in layout
var SidebarLinks = []struct{ Href, Label string }{
	{"/dashboard", "Dashboard"},
	{"/incomes", "Income"},
	{"/expenses", "Expense"},
}

func (p Page) Links() []struct{ Href, Label string } { return SidebarLinks }

func (s *Server) render(c *gin.Context, status int, name string, p Page) {
	if p.Toast == nil {
		p.Toast = popFlash(c)
	}
	c.Render(status, render.HTML{Template: s.pages[name], Name: "layout", Data: p})
}
