package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "ubextract v"+Version)
	assert.Contains(t, out, "Union Bank")
}

func TestConfigInitCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	out, err := run(t, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "max_upload_mb: 32")

	_, err = run(t, "config", "init", path)
	assert.Error(t, err, "existing file must not be overwritten")

	_, err = run(t, "config", "init", "--force", path)
	assert.NoError(t, err)
}

func TestConvertCmd_ReportsFailures(t *testing.T) {
	dir := t.TempDir()
	notPDF := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(notPDF, []byte("hello"), 0o644))
	garbage := filepath.Join(dir, "garbage.pdf")
	require.NoError(t, os.WriteFile(garbage, []byte("not really a pdf"), 0o644))
	missing := filepath.Join(dir, "missing.pdf")

	out, err := run(t, "convert", "--output-dir", filepath.Join(dir, "out"), notPDF, garbage, missing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3 of 3 file(s) failed")

	assert.Contains(t, out, notPDF+": FAILED: expected .pdf file")
	assert.Contains(t, out, garbage+": FAILED:")
	assert.Contains(t, out, missing+": FAILED:")

	_, statErr := os.Stat(filepath.Join(dir, "out", "garbage.csv"))
	assert.True(t, os.IsNotExist(statErr), "failed files must not produce output")
}

func TestConvertCmd_RequiresArgs(t *testing.T) {
	_, err := run(t, "convert")
	assert.Error(t, err)
}

func TestConvertCmd_InvalidConfig(t *testing.T) {
	_, err := run(t, "convert", "--log-level", "loud", "a.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")

	_, err = run(t, "convert", "--format", "docx", "a.pdf")
	assert.Error(t, err)
}
