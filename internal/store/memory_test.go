package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newClockedMemory() (*memStore, *time.Time) {
	now := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	m := NewMemory().(*memStore)
	m.now = func() time.Time { return now }
	return m, &now
}

func TestUpsertWaitlistUserDedupesByEmail(t *testing.T) {
	m, _ := newClockedMemory()
	ctx := context.Background()

	id1, existed, err := m.UpsertWaitlistUser(ctx, "Ada", "ada@example.com", "10.0.0.1", "ua")
	if err != nil || existed {
		t.Fatalf("first upsert: id=%s existed=%v err=%v", id1, existed, err)
	}
	id2, existed, err := m.UpsertWaitlistUser(ctx, "Ada L.", "ada@example.com", "10.0.0.2", "ua2")
	if err != nil {
		t.Fatal(err)
	}
	if !existed || id2 != id1 {
		t.Fatalf("repeat upsert: id=%s existed=%v, want id=%s existed=true", id2, existed, id1)
	}

	users, err := m.ListUsers(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 1 {
		t.Fatalf("users = %d, want 1", len(users))
	}
	if users[0]["name"] != "Ada L." {
		t.Fatalf("name = %v, want updated name", users[0]["name"])
	}
}

func TestListUsersNewestFirst(t *testing.T) {
	m, now := newClockedMemory()
	ctx := context.Background()

	if _, _, err := m.UpsertWaitlistUser(ctx, "First", "a@example.com", "", ""); err != nil {
		t.Fatal(err)
	}
	*now = now.Add(time.Minute)
	if _, _, err := m.UpsertWaitlistUser(ctx, "Second", "b@example.com", "", ""); err != nil {
		t.Fatal(err)
	}

	users, err := m.ListUsers(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if users[0]["name"] != "Second" || users[1]["name"] != "First" {
		t.Fatalf("order = [%v, %v], want newest first", users[0]["name"], users[1]["name"])
	}
}

func TestDeleteUserFreesEmail(t *testing.T) {
	m, _ := newClockedMemory()
	ctx := context.Background()

	id, _, err := m.UpsertWaitlistUser(ctx, "Ada", "ada@example.com", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if err := m.DeleteUser(ctx, id); err != nil {
		t.Fatal(err)
	}
	id2, existed, err := m.UpsertWaitlistUser(ctx, "Ada", "ada@example.com", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if existed || id2 == id {
		t.Fatalf("email not freed: id=%s existed=%v", id2, existed)
	}
}

func TestShopCredentialRoundTrip(t *testing.T) {
	m, _ := newClockedMemory()
	ctx := context.Background()

	if _, err := m.GetShopCredential(ctx, "u1", "demo.myshopify.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if err := m.SaveShopCredential(ctx, "u1", "demo.myshopify.com", "tok1"); err != nil {
		t.Fatal(err)
	}
	if err := m.SaveShopCredential(ctx, "u1", "demo.myshopify.com", "tok2"); err != nil {
		t.Fatal(err)
	}
	c, err := m.GetShopCredential(ctx, "u1", "demo.myshopify.com")
	if err != nil {
		t.Fatal(err)
	}
	if c.AccessToken != "tok2" {
		t.Fatalf("token = %q, want latest", c.AccessToken)
	}
	// Other owners never see it.
	if _, err := m.GetShopCredential(ctx, "u2", "demo.myshopify.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cross-owner err = %v, want ErrNotFound", err)
	}
}
