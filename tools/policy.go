package tools

import "context"

// ScriptPolicy gates web_execute_js (design note: "arbitrary script
// evaluation surface"). The dispatcher consults it before handing the script
// to the browser controller's evaluator, so a future allow/deny policy slots
// in without changing the wire contract.
type ScriptPolicy interface {
	Permit(ctx context.Context, pageURL, script string) error
}

// permitAllPolicy is the default ScriptPolicy: every script is allowed.
type permitAllPolicy struct{}

func (permitAllPolicy) Permit(ctx context.Context, pageURL, script string) error { return nil }

// PermitAll returns the default permit-all ScriptPolicy.
func PermitAll() ScriptPolicy { return permitAllPolicy{} }
