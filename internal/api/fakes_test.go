package api

import (
	"context"
	"sort"
	"sync"

	"finance_tracker/internal/domain"
	"finance_tracker/internal/notify"
	"finance_tracker/internal/repository"
)

type memUsers struct {
	mu     sync.Mutex
	users  map[string]*domain.User
	nextID uint
}

func newMemUsers() *memUsers {
	return &memUsers{users: map[string]*domain.User{}}
}

func (m *memUsers) Create(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email || u.MobileNumber == user.MobileNumber {
			return repository.ErrDuplicate
		}
	}
	m.nextID++
	user.ID = m.nextID
	stored := *user
	m.users[user.Email] = &stored
	return nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	found := *u
	return &found, nil
}

func (m *memUsers) FindConflict(_ context.Context, email, mobile string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email || u.MobileNumber == mobile {
			found := *u
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) UpdatePassword(_ context.Context, email, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return repository.ErrNotFound
	}
	u.Password = hash
	return nil
}

type memRecords[T any, P recordPtr[T]] struct {
	mu     sync.Mutex
	rows   map[uint]T
	owners map[uint]uint
	nextID uint
}

func newMemRecords[T any, P recordPtr[T]]() *memRecords[T, P] {
	return &memRecords[T, P]{rows: map[uint]T{}, owners: map[uint]uint{}}
}

func (m *memRecords[T, P]) List(_ context.Context, userID uint) ([]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []uint
	for id, owner := range m.owners {
		if owner == userID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.rows[id])
	}
	return out, nil
}

func (m *memRecords[T, P]) Create(_ context.Context, userID uint, rec P) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	rec.SetRecordID(m.nextID)
	rec.SetOwner(userID)
	m.rows[m.nextID] = *rec
	m.owners[m.nextID] = userID
	return nil
}

func (m *memRecords[T, P]) Update(_ context.Context, userID, id uint, rec P) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if owner, ok := m.owners[id]; !ok || owner != userID {
		return repository.ErrNotFound
	}
	rec.SetRecordID(id)
	rec.SetOwner(userID)
	m.rows[id] = *rec
	return nil
}

func (m *memRecords[T, P]) Delete(_ context.Context, userID, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if owner, ok := m.owners[id]; !ok || owner != userID {
		return repository.ErrNotFound
	}
	delete(m.rows, id)
	delete(m.owners, id)
	return nil
}

type captureNotifier struct {
	mu   sync.Mutex
	sent []notify.Message
}

func (n *captureNotifier) SendOTP(_ context.Context, msg notify.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return nil
}

func (n *captureNotifier) last() (notify.Message, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.sent) == 0 {
		return notify.Message{}, false
	}
	return n.sent[len(n.sent)-1], true
}
