package policy

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultsEndpointTiers(t *testing.T) {
	sec := Defaults()

	cases := map[string]Tier{
		"join-waitlist":           TierPublic,
		"list-users":              TierAdmin,
		"delete-user":             TierAdmin,
		"save-shop-credential":    TierUser,
		"fetch-financial-summary": TierUser,
	}
	for name, want := range cases {
		if got := sec.Endpoint(name).Tier; got != want {
			t.Errorf("endpoint %s: tier = %q, want %q", name, got, want)
		}
	}

	if sec.Endpoint("save-shop-credential").OwnerField != "userId" {
		t.Errorf("save-shop-credential owner field = %q, want userId", sec.Endpoint("save-shop-credential").OwnerField)
	}
}

func TestUnknownEndpointFailsClosed(t *testing.T) {
	sec := Defaults()
	if got := sec.Endpoint("no-such-endpoint").Tier; got != TierAdmin {
		t.Fatalf("unknown endpoint tier = %q, want admin", got)
	}
}

func TestQuotaResolution(t *testing.T) {
	sec := Defaults()

	if got := sec.Quota("user", "join-waitlist"); got != 5 {
		t.Errorf("user/join-waitlist = %d, want 5", got)
	}
	if got := sec.Quota("user", "something-else"); got != 20 {
		t.Errorf("user default = %d, want 20", got)
	}
	if got := sec.Quota("admin", "list-users"); got != 100 {
		t.Errorf("admin/list-users = %d, want 100", got)
	}
	if got := sec.Quota("admin", "something-else"); got != 200 {
		t.Errorf("admin default = %d, want 200", got)
	}
	// Unknown roles fall back to the user table.
	if got := sec.Quota("ghost", "join-waitlist"); got != 5 {
		t.Errorf("unknown role = %d, want 5", got)
	}
}

func TestLoadOverridesOnlyPresentSections(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	yaml := `
quotas:
  user:
    join-waitlist: 2
    default: 3
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	sec, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := sec.Quota("user", "join-waitlist"); got != 2 {
		t.Errorf("overridden quota = %d, want 2", got)
	}
	// Sections absent from the file keep their defaults.
	if got := sec.Endpoint("list-users").Tier; got != TierAdmin {
		t.Errorf("endpoint tier after override = %q, want admin", got)
	}
	if len(sec.SensitiveFields) == 0 {
		t.Error("sensitive fields lost after override")
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	sec, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\"): %v", err)
	}
	if got := sec.Quota("user", "fetch-financial-summary"); got != 30 {
		t.Fatalf("default quota = %d, want 30", got)
	}
}

func TestEvalAccessRule(t *testing.T) {
	module := `
package authz

default allow = false

allow {
	input.claims.verified == true
}

message = "email not verified" {
	not allow
}
`
	v, err := EvalAccessRule(context.Background(), module, map[string]any{"verified": true}, nil)
	if err != nil {
		t.Fatalf("eval allow: %v", err)
	}
	if !v.Allow {
		t.Fatal("verified claims should be allowed")
	}

	v, err = EvalAccessRule(context.Background(), module, map[string]any{"verified": false}, nil)
	if err != nil {
		t.Fatalf("eval deny: %v", err)
	}
	if v.Allow {
		t.Fatal("unverified claims should be denied")
	}
	if v.Message != "email not verified" {
		t.Fatalf("message = %q", v.Message)
	}
}
