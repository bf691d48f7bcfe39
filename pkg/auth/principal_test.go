package auth

import (
	"context"
	"testing"
)

func TestIsOwner(t *testing.T) {
	userA := Principal{Subject: "user-a"}
	admin := Principal{Subject: "root", Admin: true}

	if !IsOwner(userA, "user-a") {
		t.Error("owner denied own resource")
	}
	if IsOwner(userA, "user-b") {
		t.Error("user allowed on another user's resource")
	}
	if !IsOwner(admin, "user-b") {
		t.Error("admin denied")
	}
	if IsOwner(Principal{}, "") {
		t.Error("empty subject must never match")
	}
}

func TestRole(t *testing.T) {
	if got := Role(Principal{Admin: true}); got != "admin" {
		t.Errorf("admin role = %q", got)
	}
	if got := Role(Principal{Subject: "u"}); got != "user" {
		t.Errorf("user role = %q", got)
	}
}

func TestPrincipalContextRoundTrip(t *testing.T) {
	ctx := context.Background()
	if _, ok := PrincipalFrom(ctx); ok {
		t.Fatal("empty context reported a principal")
	}
	p := Principal{Subject: "u1", Email: "u1@example.com"}
	got, ok := PrincipalFrom(WithPrincipal(ctx, p))
	if !ok || got.Subject != "u1" || got.Email != "u1@example.com" {
		t.Fatalf("got %+v ok=%v", got, ok)
	}
}
