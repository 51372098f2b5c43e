package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPermitAll_AlwaysPermits(t *testing.T) {
	policy := PermitAll()
	assert.NoError(t, policy.Permit(context.Background(), "http://a.test/", "document.title"))
}

type denyAllPolicy struct{}

func (denyAllPolicy) Permit(ctx context.Context, pageURL, script string) error {
	return assertErr{}
}

type assertErr struct{}

func (assertErr) Error() string { return "denied" }

func TestScriptPolicy_CustomImplementationIsConsultable(t *testing.T) {
	var policy ScriptPolicy = denyAllPolicy{}
	err := policy.Permit(context.Background(), "http://a.test/", "alert(1)")
	assert.Error(t, err)
}
