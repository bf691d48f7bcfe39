// pkg/policy/eval.go
package policy

import (
	"context"

	"github.com/open-policy-agent/opa/rego"
)

// Verdict is the outcome of evaluating an endpoint access rule.
type Verdict struct {
	Allow   bool
	Message string
}

// EvalAccessRule evaluates a Rego access rule against the caller's claims and
// the decoded request body. The rule module lives in package authz and is
// expected to define `allow` (bool) and optionally `message` (string).
// An evaluation error denies access (fail closed).
func EvalAccessRule(ctx context.Context, module string, claims, body map[string]any) (Verdict, error) {
	r := rego.New(
		rego.Query("data.authz"),
		rego.Module("authz.rego", module),
		rego.Input(map[string]any{"claims": claims, "body": body}),
	)
	rs, err := r.Eval(ctx)
	if err != nil {
		return Verdict{}, err
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return Verdict{}, nil
	}
	out, ok := rs[0].Expressions[0].Value.(map[string]any)
	if !ok {
		return Verdict{}, nil
	}
	v := Verdict{}
	if b, ok := out["allow"].(bool); ok {
		v.Allow = b
	}
	if m, ok := out["message"].(string); ok {
		v.Message = m
	}
	return v, nil
}
