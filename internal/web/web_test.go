package web

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"finance_tracker/internal/client"
	"finance_tracker/internal/domain"
	"finance_tracker/internal/form"
	"finance_tracker/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validToken = "tok-123"

type fakeAPI struct {
	calls   atomic.Int32
	creates atomic.Int32
	deletes atomic.Int32
	created atomic.Value
}

var fakeExpenses = []gin.H{
	{"id": 1, "amount": "300", "category": "Food", "description": "", "date": "2024-03-01"},
	{"id": 2, "amount": "100", "category": "Bus", "description": "ticket", "date": "2024-03-02"},
	{"id": 3, "amount": "200", "category": "Rent", "description": "", "date": "2024-03-03"},
	{"id": 4, "amount": "50", "category": "Books", "description": "", "date": "2024-03-04"},
	{"id": 5, "amount": "75", "category": "Gym", "description": "", "date": "2024-03-05"},
	{"id": 6, "amount": "60", "category": "Tea", "description": "", "date": "2024-03-06"},
	{"id": 7, "amount": "40", "category": "Movies", "description": "", "date": "2024-03-07"},
}

func newTestServer(t *testing.T) (*fakeAPI, http.Handler) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	f := &fakeAPI{}
	r := gin.New()
	r.Use(func(c *gin.Context) { f.calls.Add(1) })

	api := r.Group("/api")
	api.POST("/signin", func(c *gin.Context) {
		var req struct{ Email, Password string }
		_ = c.ShouldBindJSON(&req)
		if req.Password != "secret1" {
			c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "Invalid email or password"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":       "success",
			"message":      "Login successful",
			"access_token": validToken,
			"token_type":   "bearer",
			"user":         gin.H{"id": 7, "fullname": "Asha Rao", "email": req.Email, "gender": "Female"},
		})
	})

	authed := api.Group("")
	authed.Use(func(c *gin.Context) {
		if c.GetHeader("Authorization") != "Bearer "+validToken {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "Invalid or expired token"})
		}
	})
	authed.GET("/expenses", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "success", "data": fakeExpenses})
	})
	authed.POST("/expenses", func(c *gin.Context) {
		f.creates.Add(1)
		var e domain.Expense
		if err := c.ShouldBindJSON(&e); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Invalid request"})
			return
		}
		f.created.Store(e)
		e.ID = 8
		c.JSON(http.StatusCreated, gin.H{"status": "success", "message": "Expense added!", "data": e})
	})
	authed.DELETE("/expenses/:id", func(c *gin.Context) {
		f.deletes.Add(1)
		c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Expense deleted!"})
	})
	authed.GET("/incomes", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "success", "data": []gin.H{}})
	})
	authed.GET("/dashboard", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{
			"total_spent":        "825",
			"total_income":       "125000",
			"balance":            "124175",
			"category_breakdown": gin.H{"Food": "300", "Rent": "200", "Bus": "325"},
			"monthly_trend":      []gin.H{{"month": "2024-02", "total": "25"}, {"month": "2024-03", "total": "800"}},
			"monthly_average":    "412.5",
			"recent_expenses":    fakeExpenses[:2],
		}})
	})

	apiSrv := httptest.NewServer(r)
	t.Cleanup(apiSrv.Close)

	s, err := New(Options{
		API:      client.New(client.Config{BaseURL: apiSrv.URL + "/api"}),
		Cookie:   session.CookieOptions{MaxAge: time.Hour},
		PageSize: 5,
	})
	require.NoError(t, err)
	return f, s.Router()
}

func do(h http.Handler, method, target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// responseCookie returns the last Set-Cookie named name
func responseCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	var found *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			found = c
		}
	}
	return found
}

func flashOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	c := responseCookie(rec, flashCookie)
	require.NotNil(t, c, "no flash cookie")
	v, err := url.QueryUnescape(c.Value)
	require.NoError(t, err)
	return v
}

func signedIn() *http.Cookie {
	return &http.Cookie{Name: session.CookieName, Value: validToken}
}

func TestProtectedPageWithoutToken(t *testing.T) {
	f, h := newTestServer(t)

	rec := do(h, http.MethodGet, "/dashboard", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/signin", rec.Header().Get("Location"))
	assert.Equal(t, "error:"+session.NoTokenMessage, flashOf(t, rec))
	assert.Zero(t, f.calls.Load())

	// The toast is shown once on the sign-in page
	page := do(h, http.MethodGet, "/signin", nil, responseCookie(rec, flashCookie))
	assert.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), session.NoTokenMessage)
}

func TestRootRedirect(t *testing.T) {
	_, h := newTestServer(t)

	assert.Equal(t, "/signin", do(h, http.MethodGet, "/", nil).Header().Get("Location"))
	assert.Equal(t, "/dashboard", do(h, http.MethodGet, "/", nil, signedIn()).Header().Get("Location"))
}

func TestSigninInvalidFormSkipsAPI(t *testing.T) {
	f, h := newTestServer(t)

	rec := do(h, http.MethodPost, "/signin", url.Values{"email": {""}, "password": {""}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Email is required")
	assert.Contains(t, rec.Body.String(), "autofocus")
	assert.Zero(t, f.calls.Load())
}

func TestSigninStoresToken(t *testing.T) {
	_, h := newTestServer(t)

	rec := do(h, http.MethodPost, "/signin", url.Values{"email": {"Asha@Example.com"}, "password": {"secret1"}})
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))

	c := responseCookie(rec, session.CookieName)
	require.NotNil(t, c)
	assert.Equal(t, validToken, c.Value)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, 3600, c.MaxAge)
	assert.Equal(t, "success:Login successful", flashOf(t, rec))
}

func TestSigninRejected(t *testing.T) {
	_, h := newTestServer(t)

	rec := do(h, http.MethodPost, "/signin", url.Values{"email": {"asha@example.com"}, "password": {"nope-nope"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid email or password")
	assert.NotContains(t, rec.Body.String(), "nope-nope")
	assert.Nil(t, responseCookie(rec, session.CookieName))
}

func TestLogout(t *testing.T) {
	_, h := newTestServer(t)

	rec := do(h, http.MethodPost, "/logout", nil, signedIn())
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/signin", rec.Header().Get("Location"))
	c := responseCookie(rec, session.CookieName)
	require.NotNil(t, c)
	assert.Empty(t, c.Value)
	assert.Less(t, c.MaxAge, 0)
}

func TestExpiredTokenEndsSession(t *testing.T) {
	_, h := newTestServer(t)

	rec := do(h, http.MethodGet, "/expenses", nil, &http.Cookie{Name: session.CookieName, Value: "stale"})
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/signin", rec.Header().Get("Location"))
	assert.Equal(t, "error:Invalid or expired token", flashOf(t, rec))
	c := responseCookie(rec, session.CookieName)
	require.NotNil(t, c)
	assert.Less(t, c.MaxAge, 0)
}

func TestExpensesSortAndPaginate(t *testing.T) {
	_, h := newTestServer(t)

	rec := do(h, http.MethodGet, "/expenses?sort=amount&dir=desc&page=1", nil, signedIn())
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	order := []string{"₹300.00", "₹200.00", "₹100.00", "₹75.00", "₹60.00"}
	last := -1
	for _, amount := range order {
		i := strings.Index(body, amount)
		require.Greater(t, i, last, amount)
		last = i
	}
	assert.NotContains(t, body, "₹50.00")
	assert.Contains(t, body, "Page 1 of 2")

	rec = do(h, http.MethodGet, "/expenses?sort=amount&dir=desc&page=2", nil, signedIn())
	body = rec.Body.String()
	assert.Contains(t, body, "₹50.00")
	assert.Contains(t, body, "₹40.00")
	assert.NotContains(t, body, "₹300.00")
	assert.Contains(t, body, "Page 2 of 2")
}

func TestExpensesSearch(t *testing.T) {
	_, h := newTestServer(t)

	rec := do(h, http.MethodGet, "/expenses?q=TICKET", nil, signedIn())
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "₹100.00")
	assert.NotContains(t, body, "₹300.00")
	assert.NotContains(t, body, "class=\"pagination\"")

	rec = do(h, http.MethodGet, "/expenses?q=nothing-matches", nil, signedIn())
	assert.Contains(t, rec.Body.String(), "No expense records found")
}

func TestExpenseEditForm(t *testing.T) {
	_, h := newTestServer(t)

	rec := do(h, http.MethodGet, "/expenses?edit=2", nil, signedIn())
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `action="/expenses/2"`)
	assert.Contains(t, body, `value="100.00"`)
	assert.Contains(t, body, "Update Expense")

	rec = do(h, http.MethodGet, "/expenses?edit=99", nil, signedIn())
	assert.Contains(t, rec.Body.String(), "Expense not found")
	assert.Contains(t, rec.Body.String(), "Add Expense")
}

func TestFormGuardsDoubleSubmit(t *testing.T) {
	_, h := newTestServer(t)

	rec := do(h, http.MethodGet, "/expenses", nil, signedIn())
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<button type="submit" data-submitting="Submitting...">Add Expense</button>`)
	assert.Contains(t, body, `document.addEventListener("submit"`)
	assert.Contains(t, body, "b.disabled = true")
}

func TestFormPartialWhileSubmitting(t *testing.T) {
	s, err := New(Options{API: client.New(client.Config{BaseURL: "http://api.test"})})
	require.NoError(t, err)

	var buf strings.Builder
	require.NoError(t, s.pages["records"].ExecuteTemplate(&buf, "form", FormView{
		Name:   "expense",
		Action: "/expenses",
		Submit: "Add Expense",
		Fields: []form.Input{
			{Name: "amount", Label: "Amount", Type: form.Number, Disabled: true},
			{Name: "category", Label: "Category", Type: form.Select, Disabled: true},
			{Name: "description", Label: "Description", Type: form.TextArea, Disabled: true},
		},
		Submitting: true,
	}))
	out := buf.String()
	assert.Contains(t, out, `data-submitting="Submitting..." disabled>Submitting...</button>`)
	assert.NotContains(t, out, "Add Expense")
	assert.Regexp(t, `<input id="f-amount"[^>]* disabled>`, out)
	assert.Regexp(t, `<select id="f-category"[^>]* disabled>`, out)
	assert.Regexp(t, `<textarea id="f-description"[^>]* disabled>`, out)
}

func TestCreateExpenseInvalidSkipsAPI(t *testing.T) {
	f, h := newTestServer(t)

	rec := do(h, http.MethodPost, "/expenses", url.Values{
		"amount":   {"-5"},
		"category": {"Food"},
		"date":     {"2024-03-01"},
	}, signedIn())
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Amount must be &gt; 0")
	assert.Zero(t, f.creates.Load())
}

func TestCreateExpense(t *testing.T) {
	f, h := newTestServer(t)

	rec := do(h, http.MethodPost, "/expenses", url.Values{
		"amount":      {"42.50"},
		"category":    {"groceries"},
		"description": {"weekly shop"},
		"date":        {"2024-03-09"},
		"sort":        {"amount"},
		"dir":         {"desc"},
		"page":        {"2"},
	}, signedIn())
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/expenses?dir=desc&page=2&sort=amount", rec.Header().Get("Location"))
	assert.Equal(t, "success:Expense added!", flashOf(t, rec))
	assert.Equal(t, int32(1), f.creates.Load())

	created := f.created.Load().(domain.Expense)
	assert.Equal(t, "Groceries", created.Category)
	assert.Equal(t, "42.5", created.Amount.String())
	assert.Equal(t, "2024-03-09", created.Date.String())
}

func TestDeleteExpense(t *testing.T) {
	f, h := newTestServer(t)

	rec := do(h, http.MethodPost, "/expenses/2/delete", url.Values{"page": {"1"}}, signedIn())
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "success:Expense deleted!", flashOf(t, rec))
	assert.Equal(t, int32(1), f.deletes.Load())

	rec = do(h, http.MethodPost, "/expenses/99/delete", url.Values{"page": {"1"}}, signedIn())
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "error:Expense not found", flashOf(t, rec))
	assert.Equal(t, int32(1), f.deletes.Load())
}

func TestIncomesEmpty(t *testing.T) {
	_, h := newTestServer(t)

	rec := do(h, http.MethodGet, "/incomes", nil, signedIn())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Income Manager")
	assert.Contains(t, rec.Body.String(), "No income records found")
}

func TestDashboard(t *testing.T) {
	_, h := newTestServer(t)

	rec := do(h, http.MethodGet, "/dashboard", nil, signedIn())
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "₹1,25,000.00")
	assert.Contains(t, body, "₹1,24,175.00")
	assert.Contains(t, body, "₹412.50")
	assert.Contains(t, body, "<svg")
	assert.Contains(t, body, "<polyline")
	assert.Contains(t, body, "ticket")
	assert.Contains(t, body, `class="active"`)
}

func TestValidateField(t *testing.T) {
	_, h := newTestServer(t)

	rec := do(h, http.MethodPost, "/validate/signup/confirm_password", url.Values{
		"password":         {"Secret@123"},
		"confirm_password": {"Other@123"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"confirm_password"`)
	assert.NotContains(t, rec.Body.String(), `"error":""`)

	rec = do(h, http.MethodPost, "/validate/expense/amount", url.Values{"amount": {"12"}})
	assert.Contains(t, rec.Body.String(), `"error":""`)

	assert.Equal(t, http.StatusNotFound, do(h, http.MethodPost, "/validate/nope/email", url.Values{}).Code)
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodPost, "/validate/signin/nope", url.Values{}).Code)
}

func TestResetPasswordPageNeedsToken(t *testing.T) {
	_, h := newTestServer(t)

	rec := do(h, http.MethodGet, "/reset-password", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid or missing reset token.")

	rec = do(h, http.MethodGet, "/reset-password?token=abc", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="token" value="abc"`)
}

func TestPieChart(t *testing.T) {
	chart := NewPieChart(map[string]decimal.Decimal{
		"Food": decimal.NewFromInt(75),
		"Bus":  decimal.NewFromInt(25),
		"Gift": decimal.Zero,
	}, 200)

	require.Len(t, chart.Slices, 2)
	assert.Equal(t, "Food", chart.Slices[0].Label)
	assert.Equal(t, 75.0, chart.Slices[0].Percent)
	assert.Equal(t, 25.0, chart.Slices[1].Percent)
	assert.NotEmpty(t, chart.Slices[0].Path)
	assert.NotEqual(t, chart.Slices[0].Color, chart.Slices[1].Color)
	assert.Equal(t, 100.0, chart.Center())

	single := NewPieChart(map[string]decimal.Decimal{"Food": decimal.NewFromInt(10)}, 200)
	require.Len(t, single.Slices, 1)
	assert.Empty(t, single.Slices[0].Path)
	assert.Equal(t, 100.0, single.Slices[0].Percent)

	assert.Empty(t, NewPieChart(nil, 200).Slices)
}

func TestLineChart(t *testing.T) {
	chart := NewLineChart([]domain.MonthTotal{
		{Month: "2024-01", Total: decimal.NewFromInt(50)},
		{Month: "2024-02", Total: decimal.NewFromInt(100)},
		{Month: "2024-03", Total: decimal.Zero},
	}, 400, 200)

	require.Len(t, chart.Points, 3)
	assert.Equal(t, float64(chartPadding), chart.Points[0].X)
	assert.Equal(t, float64(400-chartPadding), chart.Points[2].X)
	assert.Equal(t, float64(chartPadding), chart.Points[1].Y)
	assert.Equal(t, chart.Baseline(), chart.Points[2].Y)
	assert.Equal(t, "30.00,100.00 200.00,30.00 370.00,170.00", chart.Polyline())

	flat := NewLineChart([]domain.MonthTotal{{Month: "2024-01", Total: decimal.Zero}}, 400, 200)
	assert.Equal(t, 200.0, flat.Points[0].X)
	assert.Equal(t, flat.Baseline(), flat.Points[0].Y)
}
