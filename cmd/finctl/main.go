// Command finctl is the terminal client of the finance tracker. It keeps the
// access token in a file and issues one API request per command.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"

	"finance_tracker/internal/client"
	"finance_tracker/internal/config"
	"finance_tracker/internal/datatable"
	"finance_tracker/internal/domain"
	"finance_tracker/internal/form"
	"finance_tracker/internal/session"

	"golang.org/x/term"
)

const usage = `finctl is the terminal client of the finance tracker.

Usage:
  finctl [-api <url>] <command> [options]

Commands:
  signin     Sign in and store the access token
    -email <address>  Account email (the password is prompted)

  signout    Forget the stored access token

  dashboard  Show totals, spending by category and the monthly trend

  expenses   List expenses
    -q <text>         Search every column
    -sort <column>    Sort by amount, category or date
    -desc             Sort descending
    -page <n>         Page to show
  expenses add        Add an expense
    -amount, -category, -description, -date (defaults to today)
  expenses delete     Delete an expense
    -id <n>

  incomes    Same as expenses; add takes -amount, -source, -description, -income_date
`

func main() {
	cfg := config.LoadConfig()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, cfg, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %s\n", errorMessage(err))
		os.Exit(1)
	}
}

// app is one invocation of the client
type app struct {
	api      *client.Client
	sess     *session.Session
	pageSize int
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
}

func run(ctx context.Context, cfg *config.Config, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("finctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	apiURL := fs.String("api", cfg.APIBaseURL, "Base URL of the REST API")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("missing command")
	}

	tokenPath, err := session.DefaultTokenPath()
	if err != nil {
		return err
	}
	a := &app{
		api:      client.New(client.Config{BaseURL: *apiURL}),
		sess:     session.New(session.FileStore{Path: tokenPath}),
		pageSize: cfg.PageSize,
		stdin:    stdin,
		stdout:   stdout,
		stderr:   stderr,
	}

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "signin":
		err = a.signin(ctx, rest)
	case "signout":
		err = a.signout()
	case "dashboard":
		err = a.dashboard(ctx)
	case "expenses":
		err = expenseCmd.run(ctx, a, rest)
	case "incomes":
		err = incomeCmd.run(ctx, a, rest)
	case "help":
		fs.Usage()
		return nil
	default:
		fs.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}

	// A rejected token is stale; forget it so the next run asks to sign in
	if cmd != "signin" && client.IsUnauthorized(err) {
		if endErr := a.sess.End(); endErr != nil {
			return errors.Join(err, endErr)
		}
	}
	return err
}

func (a *app) signin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("signin", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	email := fs.String("email", "", "Account email")
	if err := fs.Parse(args); err != nil {
		return err
	}

	fmt.Fprint(a.stdout, "Password: ")
	password, err := readPassword(a.stdin)
	fmt.Fprintln(a.stdout) // Newline after the hidden input
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	values := map[string]string{"email": *email, "password": password}
	return submit(ctx, form.Signin, values, func(ctx context.Context, v form.Values) error {
		res, err := a.api.Signin(ctx, strings.ToLower(v.Get("email")), v["password"])
		if err != nil {
			return err
		}
		if err := a.sess.Begin(res.Token); err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "%s. Welcome, %s!\n", res.Message, res.User.FullName)
		return nil
	})
}

// signout forgets the token locally; the API keeps no server-side session
func (a *app) signout() error {
	if err := a.sess.End(); err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, "Signed out")
	return nil
}

func (a *app) dashboard(ctx context.Context) error {
	s, err := a.api.Dashboard(ctx, a.sess)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Total income\t%s\n", domain.FormatINR(s.TotalIncome))
	fmt.Fprintf(w, "Total spent\t%s\n", domain.FormatINR(s.TotalSpent))
	fmt.Fprintf(w, "Balance\t%s\n", domain.FormatINR(s.Balance))
	fmt.Fprintf(w, "Monthly average\t%s\n", domain.FormatINR(s.MonthlyAverage))

	if len(s.CategoryBreakdown) > 0 {
		categories := make([]string, 0, len(s.CategoryBreakdown))
		for c := range s.CategoryBreakdown {
			categories = append(categories, c)
		}
		sort.Slice(categories, func(i, j int) bool {
			if c := s.CategoryBreakdown[categories[i]].Cmp(s.CategoryBreakdown[categories[j]]); c != 0 {
				return c > 0
			}
			return categories[i] < categories[j]
		})
		fmt.Fprintln(w, "\nBy category\t")
		for _, c := range categories {
			fmt.Fprintf(w, "  %s\t%s\n", c, domain.FormatINR(s.CategoryBreakdown[c]))
		}
	}
	if len(s.MonthlyTrend) > 0 {
		fmt.Fprintln(w, "\nBy month\t")
		for _, m := range s.MonthlyTrend {
			fmt.Fprintf(w, "  %s\t%s\n", m.Month, domain.FormatINR(m.Total))
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(a.stdout, "\nRecent expenses")
	recent := datatable.New(nil, expenseCmd.columns[1:]...)
	return printTable(a.stdout, recent.Render(recent.View(s.RecentExpenses, datatable.Query{Page: 1})), "expense")
}

// submit runs a form over flag values. Field problems are listed one per line.
func submit(ctx context.Context, def form.Definition, values map[string]string, handler form.Handler) error {
	f := def.New()
	f.Fill(values)
	err := f.Submit(ctx, handler)
	if !errors.Is(err, form.ErrInvalid) {
		return err
	}
	errs := f.Errors()
	lines := []string{"invalid input"}
	for _, field := range def.Fields {
		if msg := errs[field.Name]; msg != "" {
			lines = append(lines, fmt.Sprintf("  -%s: %s", field.Name, msg))
		}
	}
	return errors.New(strings.Join(lines, "\n"))
}

// errorMessage renders API and transport errors the way the web client does
func errorMessage(err error) string {
	var (
		apiErr *client.APIError
		urlErr *url.Error
	)
	switch {
	case errors.As(err, &apiErr):
		msg := client.UserMessage(err)
		fields := make([]string, 0, len(apiErr.Fields))
		for name := range apiErr.Fields {
			fields = append(fields, name)
		}
		sort.Strings(fields)
		for _, name := range fields {
			msg += fmt.Sprintf("\n  -%s: %s", name, apiErr.Fields[name])
		}
		return msg
	case errors.As(err, &urlErr), errors.Is(err, session.ErrNoToken), errors.Is(err, context.DeadlineExceeded):
		return client.UserMessage(err)
	default:
		return err.Error()
	}
}

func readPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(password), nil
	}

	// Pipes and tests
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
