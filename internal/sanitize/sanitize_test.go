package sanitize

import (
	"reflect"
	"testing"
)

var (
	sensitive = []string{"accessToken", "password", "secretKey", "privateKey"}
	adminOnly = []string{"createdAt", "lastLogin", "ipAddress", "userAgent"}
)

func TestSanitizeForUser(t *testing.T) {
	in := Record{"password": "hunter2", "createdAt": "2026-08-01", "name": "Ada"}
	got := Sanitize(in, sensitive, adminOnly, false)
	want := Record{"name": "Ada"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestSanitizeForAdminKeepsAdminFields(t *testing.T) {
	in := Record{"password": "hunter2", "createdAt": "2026-08-01", "name": "Ada"}
	got := Sanitize(in, sensitive, adminOnly, true)
	want := Record{"createdAt": "2026-08-01", "name": "Ada"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestSanitizeDoesNotMutateInput(t *testing.T) {
	in := Record{"password": "hunter2", "name": "Ada"}
	_ = Sanitize(in, sensitive, adminOnly, false)
	if _, ok := in["password"]; !ok {
		t.Fatal("input record was mutated")
	}
}

func TestSanitizeNil(t *testing.T) {
	if got := Sanitize(nil, sensitive, adminOnly, false); got != nil {
		t.Fatalf("got %v, want nil", got)
	}
}

func TestSanitizeList(t *testing.T) {
	in := []Record{
		{"name": "Ada", "ipAddress": "10.0.0.1"},
		{"name": "Grace", "accessToken": "shh"},
	}
	got := SanitizeList(in, sensitive, adminOnly, false)
	if len(got) != 2 {
		t.Fatalf("len = %d", len(got))
	}
	if _, ok := got[0]["ipAddress"]; ok {
		t.Error("admin-only field leaked to user")
	}
	if _, ok := got[1]["accessToken"]; ok {
		t.Error("sensitive field leaked")
	}
}
