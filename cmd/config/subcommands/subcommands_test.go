package subcommands

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leefowlercu/analytics-exporter/internal/testutil"
)

func run(t *testing.T, c *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	c.SetOut(&out)
	c.SetArgs(append([]string{}, args...))
	err := c.Execute()
	return out.String(), err
}

func TestShow_EffectiveConfigIncludesDefaults(t *testing.T) {
	testutil.NewTestEnv(t)
	showRaw = false

	out, err := run(t, ShowCmd)
	require.NoError(t, err)

	assert.Contains(t, out, "# Effective configuration (with defaults)")
	assert.Contains(t, out, "page_size: 1000")
	assert.Contains(t, out, "quota_cooldown: 10m0s")
	assert.Contains(t, out, "ga:sourceMedium")
}

func TestShow_RawWithoutFile(t *testing.T) {
	testutil.NewTestEnv(t)
	t.Cleanup(func() { showRaw = false })

	out, err := run(t, ShowCmd, "--raw")
	require.NoError(t, err)
	assert.Contains(t, out, "# No configuration file found")
}

func TestShow_RawWithFile(t *testing.T) {
	env := testutil.NewTestEnv(t)
	path := env.WriteConfig("export:\n  page_size: 250\n")
	t.Cleanup(func() { showRaw = false })

	out, err := run(t, ShowCmd, "--raw")
	require.NoError(t, err)
	assert.Contains(t, out, "# Configuration file: "+path)
	assert.Contains(t, out, "page_size: 250")
}

func TestValidate_ValidConfig(t *testing.T) {
	env := testutil.NewTestEnv(t)
	path := env.WriteConfig("export:\n  overwrite: always\n")

	out, err := run(t, ValidateCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid: "+path)
}

func TestValidate_InvalidConfigListsEveryField(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.WriteConfig("log_level: loud\nexport:\n  page_size: 0\n  on_exhausted: retry\n")

	out, err := run(t, ValidateCmd)
	require.EqualError(t, err, "configuration is invalid")

	assert.Contains(t, out, "Configuration validation failed:")
	assert.Contains(t, out, "log_level")
	assert.Contains(t, out, "export.page_size")
	assert.Contains(t, out, "export.on_exhausted")
}
