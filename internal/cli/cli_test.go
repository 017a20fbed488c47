package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lperrors "github.com/orizon-lang/lalrpop-ide/internal/errors"
)

func TestLoggerGates(t *testing.T) {
	tests := []struct {
		name     string
		verbose  bool
		debug    bool
		expected []string
		missing  []string
	}{
		{"quiet", false, false, []string{"warned", "failed"}, []string{"informed", "debugged"}},
		{"verbose", true, false, []string{"informed", "warned"}, []string{"debugged"}},
		{"debug", false, true, []string{"debugged"}, []string{"informed"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLoggerTo(&buf, tt.verbose, tt.debug, false)
			logger.Info("informed %d", 1)
			logger.Debug("debugged")
			logger.Warn("warned")
			logger.Error("failed")
			for _, s := range tt.expected {
				assert.Contains(t, buf.String(), s)
			}
			for _, s := range tt.missing {
				assert.NotContains(t, buf.String(), s)
			}
		})
	}
}

func TestLoggerJSONWith(t *testing.T) {
	var buf bytes.Buffer
	NewLoggerTo(&buf, true, false, true).With("file", "g.lalrpop").Warn("x")
	assert.Contains(t, buf.String(), `"file":"g.lalrpop"`)
	assert.Contains(t, buf.String(), `"level":"WARN"`)
}

func TestParseConfig(t *testing.T) {
	data := `
verbose: true
concurrency: 2
crate_root: /work/calc
generator_version: 0.20.2
oracle:
  command: rust-oracle
  args: [--stdio]
index:
  calc::ast::Expr: calc::ast::expr::Expr
defaults:
  token: Tok
`
	config, err := ParseConfig([]byte(data))
	require.NoError(t, err)
	assert.True(t, config.Verbose)
	assert.Equal(t, 2, config.Concurrency)
	assert.Equal(t, "/work/calc", config.CrateRoot)
	assert.Equal(t, OracleConfig{Command: "rust-oracle", Args: []string{"--stdio"}}, config.Oracle)
	assert.Equal(t, "calc::ast::expr::Expr", config.Index["calc::ast::Expr"])
	assert.Equal(t, "Tok", config.Defaults.Token)

	config, err = ParseConfig([]byte(`{"debug": true}`))
	require.NoError(t, err)
	assert.True(t, config.Debug)
	assert.Equal(t, DefaultConcurrency, config.Concurrency)

	_, err = ParseConfig([]byte("generator_version: banana"))
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	ctx := context.Background()

	config, err := LoadConfig(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), config)

	dir := t.TempDir()
	config, err = LoadConfig(ctx, filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConcurrency, config.Concurrency)

	path := filepath.Join(dir, "lpcheck.yaml")
	require.NoError(t, os.WriteFile(path, []byte("warnings_as_errors: true\nignore_codes: [LP0001]\n"), 0o644))
	config, err = LoadConfig(ctx, path)
	require.NoError(t, err)
	assert.True(t, config.WarningsAsErrors)
	assert.Equal(t, []string{"LP0001"}, config.IgnoreCodes)
	assert.Equal(t, path, config.URL)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("concurrency: [1"), 0o644))
	_, err = LoadConfig(ctx, bad)
	require.Error(t, err)
	assert.Equal(t, lperrors.CategoryConfig, lperrors.CategoryOf(err))
}

func TestCheckGeneratorVersion(t *testing.T) {
	tests := []struct {
		version string
		ok      bool
		err     bool
	}{
		{"", true, false},
		{"0.19.8", true, false},
		{"0.22.0", true, false},
		{"0.18.1", false, false},
		{"1.0.0", false, false},
		{"not-a-version", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			ok, err := CheckGeneratorVersion(tt.version)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.err, err != nil)
		})
	}
}

func TestPrintVersion(t *testing.T) {
	var buf bytes.Buffer
	PrintVersion(&buf, "lpcheck", false)
	assert.True(t, strings.HasPrefix(buf.String(), "lpcheck v"+Version+"\n"))

	buf.Reset()
	PrintVersion(&buf, "lpcheck", true)
	assert.Contains(t, buf.String(), `"tool": "lpcheck"`)
}
