package client

import (
	"context"
	"net/http"
	"strconv"

	"finance_tracker/internal/domain"
	"finance_tracker/internal/session"
)

// Records is the CRUD surface for one record kind
type Records[T any] struct {
	c    *Client
	path string
}

// Expenses returns the expense endpoints
func (c *Client) Expenses() Records[domain.Expense] {
	return Records[domain.Expense]{c: c, path: "/expenses"}
}

// Incomes returns the income endpoints
func (c *Client) Incomes() Records[domain.Income] {
	return Records[domain.Income]{c: c, path: "/incomes"}
}

func (r Records[T]) itemPath(id uint) string {
	return r.path + "/" + strconv.FormatUint(uint64(id), 10)
}

// List fetches every record of the signed-in user
func (r Records[T]) List(ctx context.Context, s *session.Session) ([]T, error) {
	envelope, err := r.c.authed(ctx, s, http.MethodGet, r.path, nil)
	if err != nil {
		return nil, err
	}
	var out []T
	if err := decodeData(envelope, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create stores rec and returns the saved record with its server message
func (r Records[T]) Create(ctx context.Context, s *session.Session, rec T) (T, string, error) {
	return r.save(ctx, s, http.MethodPost, r.path, rec)
}

// Update replaces record id
func (r Records[T]) Update(ctx context.Context, s *session.Session, id uint, rec T) (T, string, error) {
	return r.save(ctx, s, http.MethodPut, r.itemPath(id), rec)
}

func (r Records[T]) save(ctx context.Context, s *session.Session, method, path string, rec T) (T, string, error) {
	var saved T
	envelope, err := r.c.authed(ctx, s, method, path, rec)
	if err != nil {
		return saved, "", err
	}
	if err := decodeData(envelope, &saved); err != nil {
		return saved, "", err
	}
	return saved, envelope.Get("message").String(), nil
}

// Delete removes record id
func (r Records[T]) Delete(ctx context.Context, s *session.Session, id uint) (string, error) {
	envelope, err := r.c.authed(ctx, s, http.MethodDelete, r.itemPath(id), nil)
	if err != nil {
		return "", err
	}
	return envelope.Get("message").String(), nil
}

// Dashboard fetches the signed-in user's summary
func (c *Client) Dashboard(ctx context.Context, s *session.Session) (*domain.Summary, error) {
	envelope, err := c.authed(ctx, s, http.MethodGet, "/dashboard", nil)
	if err != nil {
		return nil, err
	}
	var summary domain.Summary
	if err := decodeData(envelope, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}
