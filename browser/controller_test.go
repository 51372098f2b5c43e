package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shaharia-lab/reasonkit-web/internal/logging"
)

func TestConfig_WithDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	assert.Equal(t, 3, cfg.MaxConsecutiveFailures)
	assert.EqualValues(t, 5, cfg.MaxNavigationsPerSecond)
	assert.NotZero(t, cfg.LaunchTimeout)
	assert.NotZero(t, cfg.NavigationTimeout)
}

func TestConfig_AllowedSchemes(t *testing.T) {
	assert.ElementsMatch(t, []string{"http", "https"}, Config{}.AllowedSchemes())
	assert.ElementsMatch(t, []string{"http", "https", "file"}, Config{AllowFileScheme: true}.AllowedSchemes())
}

func TestValidateURL_RejectsMissingScheme(t *testing.T) {
	c := New(Config{}, logging.NewNullLogger())
	_, err := c.ValidateURL("not-a-url")
	assert.Error(t, err)
}

func TestValidateURL_RejectsDisallowedScheme(t *testing.T) {
	c := New(Config{}, logging.NewNullLogger())
	_, err := c.ValidateURL("file:///etc/passwd")
	assert.Error(t, err)
}

func TestValidateURL_AcceptsFileWhenAllowlisted(t *testing.T) {
	c := New(Config{AllowFileScheme: true}, logging.NewNullLogger())
	u, err := c.ValidateURL("file:///tmp/page.html")
	assert.NoError(t, err)
	assert.Equal(t, "file", u.Scheme)
}

func TestValidateURL_AcceptsHTTPS(t *testing.T) {
	c := New(Config{}, logging.NewNullLogger())
	u, err := c.ValidateURL("https://example.test/path")
	assert.NoError(t, err)
	assert.Equal(t, "example.test", u.Host)
}

func TestLaunchError_Unwraps(t *testing.T) {
	inner := assertErr{}
	err := &LaunchError{Stage: "launch", Err: inner}
	assert.Equal(t, inner, err.Unwrap())
	assert.Contains(t, err.Error(), "launch")
}

type assertErr struct{}

func (assertErr) Error() string { return "boom" }
