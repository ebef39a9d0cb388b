package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAddsScheme(t *testing.T) {
	c := &Config{TargetURL: "example.com", OutputDir: filepath.Join(t.TempDir(), "out")}
	require.NoError(t, c.Validate())
	assert.Equal(t, "https://example.com", c.TargetURL)
	assert.Equal(t, 10, c.Workers)
	assert.Equal(t, []string{"text"}, c.Formats)
}

func TestValidateRequiresTarget(t *testing.T) {
	c := &Config{OutputDir: t.TempDir()}
	assert.Error(t, c.Validate())
}

func TestValidateRejectsBothModes(t *testing.T) {
	c := &Config{TargetURL: "example.com", LocalDir: t.TempDir(), OutputDir: t.TempDir()}
	assert.Error(t, c.Validate())
}

func TestTargetDomainStripsWWW(t *testing.T) {
	c := &Config{TargetURL: "https://www.Example.com/docs"}
	assert.Equal(t, "example.com", c.TargetDomain())
}

func TestResolveUserAgent(t *testing.T) {
	assert.Contains(t, ResolveUserAgent("firefox"), "Firefox")
	assert.Equal(t, ResolveUserAgent("default"), ResolveUserAgent("bogus"))
	assert.NotEmpty(t, ResolveUserAgent("random"))
}
