// pkg/policy/policy.go
package policy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tier is the authentication level required by an endpoint.
type Tier string

const (
	TierPublic Tier = "public"
	TierUser   Tier = "user"
	TierAdmin  Tier = "admin"
)

// Role describes a user role and its permission strings.
type Role struct {
	Permissions []string `yaml:"permissions"`
	Description string   `yaml:"description"`
}

// Endpoint is the declarative security entry for one route.
type Endpoint struct {
	Tier Tier `yaml:"tier"`
	// OwnerField is a JMESPath expression into the decoded request body that
	// yields the id of the resource owner. Empty disables the ownership check.
	OwnerField string `yaml:"owner_field"`
	// AccessRule is optional Rego source evaluated by the guard as
	// data.authz; the rule must yield allow=true to admit the request.
	AccessRule string `yaml:"access_rule"`
}

// CORS holds the cross-origin configuration applied to every route.
type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
	MaxAge         int      `yaml:"max_age"`
}

// Security is the declarative policy table: roles, endpoint tiers, quotas,
// field lists and CORS settings. Loaded once at startup and shared read-only.
type Security struct {
	Roles     map[string]Role     `yaml:"roles"`
	Endpoints map[string]Endpoint `yaml:"endpoints"`
	// Quotas maps role -> endpoint -> requests per minute. The "default"
	// endpoint key is the fallback quota for the role.
	Quotas          map[string]map[string]int `yaml:"quotas"`
	SensitiveFields []string                  `yaml:"sensitive_fields"`
	AdminOnlyFields []string                  `yaml:"admin_only_fields"`
	CORS            CORS                      `yaml:"cors"`
}

// Defaults returns the built-in security policy.
func Defaults() *Security {
	return &Security{
		Roles: map[string]Role{
			"admin": {
				Permissions: []string{"read:all_users", "write:all_users", "delete:all_users", "read:system_metrics"},
				Description: "Full system access",
			},
			"verified_user": {
				Permissions: []string{"read:own_data", "write:own_data", "read:public_leaderboard"},
				Description: "Authenticated user with verified email",
			},
			"unverified_user": {
				Permissions: []string{"read:own_data", "write:own_profile", "read:public_leaderboard"},
				Description: "New user awaiting email verification",
			},
		},
		Endpoints: map[string]Endpoint{
			"join-waitlist":           {Tier: TierPublic},
			"list-users":              {Tier: TierAdmin},
			"delete-user":             {Tier: TierAdmin},
			"save-shop-credential":    {Tier: TierUser, OwnerField: "userId"},
			"fetch-financial-summary": {Tier: TierUser, OwnerField: "userId"},
		},
		Quotas: map[string]map[string]int{
			"user": {
				"join-waitlist":           5,
				"save-shop-credential":    10,
				"fetch-financial-summary": 30,
				"default":                 20,
			},
			"admin": {
				"list-users":  100,
				"delete-user": 50,
				"default":     200,
			},
		},
		SensitiveFields: []string{"accessToken", "password", "secretKey", "privateKey"},
		AdminOnlyFields: []string{"createdAt", "lastLogin", "ipAddress", "userAgent"},
		CORS: CORS{
			AllowedOrigins: []string{
				"https://knotulus-test2.web.app",
				"http://127.0.0.1:5002",
				"http://localhost:3000",
				"https://knotulus.com",
			},
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "Authorization", "X-Requested-With"},
			MaxAge:         3600,
		},
	}
}

// Load returns the defaults overridden by the YAML file at path (when set).
// Any section present in the file replaces the corresponding default section.
func Load(path string) (*Security, error) {
	sec := Defaults()
	if path == "" {
		return sec, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy file: %w", err)
	}
	var override Security
	if err := yaml.Unmarshal(raw, &override); err != nil {
		return nil, fmt.Errorf("parse policy file: %w", err)
	}
	if len(override.Roles) > 0 {
		sec.Roles = override.Roles
	}
	if len(override.Endpoints) > 0 {
		sec.Endpoints = override.Endpoints
	}
	if len(override.Quotas) > 0 {
		sec.Quotas = override.Quotas
	}
	if len(override.SensitiveFields) > 0 {
		sec.SensitiveFields = override.SensitiveFields
	}
	if len(override.AdminOnlyFields) > 0 {
		sec.AdminOnlyFields = override.AdminOnlyFields
	}
	if len(override.CORS.AllowedOrigins) > 0 {
		sec.CORS = override.CORS
	}
	return sec, nil
}

// Endpoint returns the security entry for name; unknown endpoints default to
// admin tier so a missing table entry fails closed.
func (s *Security) Endpoint(name string) Endpoint {
	if e, ok := s.Endpoints[name]; ok {
		return e
	}
	return Endpoint{Tier: TierAdmin}
}

// Quota resolves the per-minute quota for a role and endpoint, falling back
// to the role's default and finally to the user default.
func (s *Security) Quota(role, endpoint string) int {
	rq, ok := s.Quotas[role]
	if !ok {
		rq = s.Quotas["user"]
	}
	if q, ok := rq[endpoint]; ok {
		return q
	}
	return rq["default"]
}
