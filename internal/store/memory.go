// internal/store/memory.go
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memUser struct {
	id        string
	name      string
	email     string
	ip        string
	userAgent string
	createdAt time.Time
}

// memStore is the dev fallback used when no DATABASE_URL is configured, and
// the backing store for handler tests.
type memStore struct {
	mu      sync.Mutex
	users   map[string]*memUser // by id
	byEmail map[string]string   // email -> id
	creds   map[string]ShopCredential

	now func() time.Time
}

func NewMemory() Store {
	return &memStore{
		users:   map[string]*memUser{},
		byEmail: map[string]string{},
		creds:   map[string]ShopCredential{},
		now:     time.Now,
	}
}

func (m *memStore) UpsertWaitlistUser(_ context.Context, name, email, ip, userAgent string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.byEmail[email]; ok {
		m.users[id].name = name
		return id, true, nil
	}
	u := &memUser{
		id:        uuid.NewString(),
		name:      name,
		email:     email,
		ip:        ip,
		userAgent: userAgent,
		createdAt: m.now(),
	}
	m.users[u.id] = u
	m.byEmail[email] = u.id
	return u.id, false, nil
}

func (m *memStore) ListUsers(_ context.Context) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	us := make([]*memUser, 0, len(m.users))
	for _, u := range m.users {
		us = append(us, u)
	}
	sort.Slice(us, func(i, j int) bool { return us[i].createdAt.After(us[j].createdAt) })
	out := make([]Record, 0, len(us))
	for _, u := range us {
		out = append(out, userRecord(u.id, u.name, u.email, u.ip, u.userAgent, u.createdAt))
	}
	return out, nil
}

func (m *memStore) DeleteUser(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		delete(m.byEmail, u.email)
		delete(m.users, id)
	}
	return nil
}

func (m *memStore) SaveShopCredential(_ context.Context, ownerID, shop, accessToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds[ownerID+":"+shop] = ShopCredential{
		OwnerID:     ownerID,
		Shop:        shop,
		AccessToken: accessToken,
		CreatedAt:   m.now(),
	}
	return nil
}

func (m *memStore) GetShopCredential(_ context.Context, ownerID, shop string) (ShopCredential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.creds[ownerID+":"+shop]; ok {
		return c, nil
	}
	return ShopCredential{}, ErrNotFound
}

func userRecord(id, name, email, ip, userAgent string, createdAt time.Time) Record {
	rec := Record{
		"id":        id,
		"name":      name,
		"email":     email,
		"createdAt": createdAt.UTC().Format(time.RFC3339),
	}
	if ip != "" {
		rec["ipAddress"] = ip
	}
	if userAgent != "" {
		rec["userAgent"] = userAgent
	}
	return rec
}
