package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStealthScript_ContainsAllFiveAdjustments(t *testing.T) {
	assert.Contains(t, stealthScript, "webdriver")
	assert.Contains(t, stealthScript, "plugins")
	assert.Contains(t, stealthScript, "languages")
	assert.Contains(t, stealthScript, "window.chrome")
	assert.Contains(t, stealthScript, "permissions.query")
}
