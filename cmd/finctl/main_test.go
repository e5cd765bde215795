package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"finance_tracker/internal/client"
	"finance_tracker/internal/config"
	"finance_tracker/internal/domain"
	"finance_tracker/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	url     string
	calls   atomic.Int32
	creates atomic.Int32
	deletes atomic.Int32
	created atomic.Value
}

func newFakeAPI(t *testing.T) *fakeAPI {
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
			"access_token": "tok-123",
			"token_type":   "bearer",
			"user":         gin.H{"id": 7, "fullname": "Asha Rao", "email": req.Email, "gender": "Female"},
		})
	})

	authed := api.Group("")
	authed.Use(func(c *gin.Context) {
		if c.GetHeader("Authorization") != "Bearer tok-123" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "Invalid or expired token"})
		}
	})
	authed.GET("/expenses", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "success", "data": []gin.H{
			{"id": 1, "amount": "300", "category": "Food", "description": "", "date": "2024-03-01"},
			{"id": 2, "amount": "100", "category": "Bus", "description": "ticket", "date": "2024-03-02"},
			{"id": 3, "amount": "200", "category": "Rent", "description": "", "date": "2024-03-03"},
			{"id": 4, "amount": "50", "category": "Books", "description": "", "date": "2024-03-04"},
			{"id": 5, "amount": "75", "category": "Gym", "description": "", "date": "2024-03-05"},
			{"id": 6, "amount": "60", "category": "Tea", "description": "", "date": "2024-03-06"},
			{"id": 7, "amount": "40", "category": "Movies", "description": "", "date": "2024-03-07"},
		}})
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
			"category_breakdown": gin.H{"Food": "300", "Bus": "525"},
			"monthly_trend":      []gin.H{{"month": "2024-03", "total": "825"}},
			"monthly_average":    "825",
			"recent_expenses": []gin.H{
				{"id": 2, "amount": "100", "category": "Bus", "description": "ticket", "date": "2024-03-02"},
			},
		}})
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	f.url = srv.URL + "/api"
	return f
}

// tokenFile points the file store at a temp path, optionally holding token
func tokenFile(t *testing.T, token string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "token")
	t.Setenv(session.TokenFileEnv, path)
	if token != "" {
		require.NoError(t, os.WriteFile(path, []byte(token+"\n"), 0o600))
	}
	return path
}

func runCLI(t *testing.T, f *fakeAPI, stdin string, args ...string) (string, error) {
	t.Helper()
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	cfg := &config.Config{APIBaseURL: f.url, PageSize: 5}
	err := run(context.Background(), cfg, args, bytes.NewBufferString(stdin), stdout, stderr)
	return stdout.String(), err
}

func TestRun_SigninStoresToken(t *testing.T) {
	f := newFakeAPI(t)
	path := tokenFile(t, "")

	out, err := runCLI(t, f, "secret1\n", "signin", "-email", "Asha@Example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Password: ")
	assert.Contains(t, out, "Login successful. Welcome, Asha Rao!")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "tok-123", strings.TrimSpace(string(data)))
}

func TestRun_SigninInvalidSkipsAPI(t *testing.T) {
	f := newFakeAPI(t)
	tokenFile(t, "")

	_, err := runCLI(t, f, "secret1\n", "signin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid input")
	assert.Contains(t, err.Error(), "-email: Email is required")
	assert.Zero(t, f.calls.Load())
}

func TestRun_SigninRejected(t *testing.T) {
	f := newFakeAPI(t)
	path := tokenFile(t, "")

	_, err := runCLI(t, f, "wrong-password\n", "signin", "-email", "asha@example.com")
	require.Error(t, err)
	assert.Equal(t, "Invalid email or password", errorMessage(err))
	assert.NoFileExists(t, path)
}

func TestRun_NoTokenSkipsAPI(t *testing.T) {
	f := newFakeAPI(t)
	tokenFile(t, "")

	_, err := runCLI(t, f, "", "expenses")
	require.ErrorIs(t, err, session.ErrNoToken)
	assert.Equal(t, session.NoTokenMessage, errorMessage(err))
	assert.Zero(t, f.calls.Load())
}

func TestRun_StaleTokenIsForgotten(t *testing.T) {
	f := newFakeAPI(t)
	path := tokenFile(t, "stale")

	_, err := runCLI(t, f, "", "dashboard")
	require.Error(t, err)
	assert.True(t, client.IsUnauthorized(err))
	assert.NoFileExists(t, path)
}

func TestRun_Signout(t *testing.T) {
	f := newFakeAPI(t)
	path := tokenFile(t, "tok-123")

	out, err := runCLI(t, f, "", "signout")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed out")
	assert.NoFileExists(t, path)
	assert.Zero(t, f.calls.Load())
}

func TestRun_ExpensesSortedAndPaged(t *testing.T) {
	f := newFakeAPI(t)
	tokenFile(t, "tok-123")

	out, err := runCLI(t, f, "", "expenses", "-sort", "amount", "-desc")
	require.NoError(t, err)
	assert.Contains(t, out, "Amount v")
	last := -1
	for _, amount := range []string{"₹300.00", "₹200.00", "₹100.00", "₹75.00", "₹60.00"} {
		i := strings.Index(out, amount)
		require.Greater(t, i, last, amount)
		last = i
	}
	assert.NotContains(t, out, "₹40.00")
	assert.Contains(t, out, "Page 1 of 2 (7 records)")

	out, err = runCLI(t, f, "", "expenses", "list", "-sort", "amount", "-desc", "-page", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "₹40.00")
	assert.Contains(t, out, "Page 2 of 2 (7 records)")
}

func TestRun_ExpensesSearch(t *testing.T) {
	f := newFakeAPI(t)
	tokenFile(t, "tok-123")

	out, err := runCLI(t, f, "", "expenses", "-q", "TICKET")
	require.NoError(t, err)
	assert.Contains(t, out, "Bus")
	assert.NotContains(t, out, "Food")
	assert.Contains(t, out, "Page 1 of 1 (1 records)")

	out, err = runCLI(t, f, "", "incomes")
	require.NoError(t, err)
	assert.Contains(t, out, "No income records found")
}

func TestRun_ExpensesUnsortableColumn(t *testing.T) {
	f := newFakeAPI(t)
	tokenFile(t, "tok-123")

	_, err := runCLI(t, f, "", "expenses", "-sort", "description")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `cannot sort by "description"`)
	assert.Zero(t, f.calls.Load())
}

func TestRun_ExpensesAdd(t *testing.T) {
	f := newFakeAPI(t)
	tokenFile(t, "tok-123")

	out, err := runCLI(t, f, "", "expenses", "add", "-amount", "12.5", "-category", "groceries", "-date", "2024-03-09")
	require.NoError(t, err)
	assert.Contains(t, out, "Expense added! (id 8)")

	created := f.created.Load().(domain.Expense)
	assert.Equal(t, "Groceries", created.Category)
	assert.Equal(t, "12.5", created.Amount.String())
	assert.Equal(t, "2024-03-09", created.Date.String())
}

func TestRun_ExpensesAddInvalidSkipsAPI(t *testing.T) {
	f := newFakeAPI(t)
	tokenFile(t, "tok-123")

	_, err := runCLI(t, f, "", "expenses", "add", "-amount", "abc", "-category", "Food")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "-amount: Amount must be a number")
	assert.Zero(t, f.creates.Load())
}

func TestRun_ExpensesDelete(t *testing.T) {
	f := newFakeAPI(t)
	tokenFile(t, "tok-123")

	out, err := runCLI(t, f, "", "expenses", "delete", "-id", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Expense deleted!")

	_, err = runCLI(t, f, "", "expenses", "delete", "-id", "99")
	require.Error(t, err)
	assert.Equal(t, "Expense not found", err.Error())
	assert.Equal(t, int32(1), f.deletes.Load())

	_, err = runCLI(t, f, "", "expenses", "delete")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required flag: id")
}

func TestRun_Dashboard(t *testing.T) {
	f := newFakeAPI(t)
	tokenFile(t, "tok-123")

	out, err := runCLI(t, f, "", "dashboard")
	require.NoError(t, err)
	assert.Contains(t, out, "₹1,25,000.00")
	assert.Contains(t, out, "₹1,24,175.00")
	assert.Less(t, strings.Index(out, "Bus"), strings.Index(out, "Food"))
	assert.Contains(t, out, "2024-03")
	assert.Contains(t, out, "Recent expenses")
	assert.Contains(t, out, "ticket")
}

func TestRun_UnknownCommand(t *testing.T) {
	f := newFakeAPI(t)
	tokenFile(t, "")

	_, err := runCLI(t, f, "", "budget")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown command "budget"`)

	_, err = runCLI(t, f, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing command")
}

func TestErrorMessage(t *testing.T) {
	err := &client.APIError{
		Status:  http.StatusBadRequest,
		Message: "Validation failed",
		Fields:  map[string]string{"mobilenumber": "Mobile number already registered", "email": "Email already registered"},
	}
	assert.Equal(t, "Validation failed\n  -email: Email already registered\n  -mobilenumber: Mobile number already registered", errorMessage(err))
	assert.Equal(t, "missing command", errorMessage(errors.New("missing command")))
	assert.Equal(t, "Could not reach the server, please try again", errorMessage(&url.Error{Op: "Get", URL: "http://x", Err: errors.New("refused")}))
}
