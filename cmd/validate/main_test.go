package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iiasa/ariadne-intern-workflow/internal/domain"
)

func mockFile(name string) string {
	return filepath.Join("..", "..", "data", "mock", name)
}

func testOptions() options {
	return options{definitions: filepath.Join("..", "..", "definitions"), defaultProfile: "ariadne-intern"}
}

func TestRun_AllAccepted(t *testing.T) {
	opts := testOptions()
	opts.outDir = t.TempDir()
	var out bytes.Buffer

	code := run(opts, []string{mockFile("ariadne_yearly.json"), mockFile("kopernikus_subannual.json")}, &out)

	assert.Equal(t, 0, code, out.String())
	assert.Contains(t, out.String(), "All 2 submissions passed.")

	data, err := os.ReadFile(filepath.Join(opts.outDir, "kopernikus_subannual.json"))
	require.NoError(t, err)
	sub, _, err := domain.DecodeSubmission(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"Germany"}, sub.Distinct(domain.DimRegion))
}

func TestRun_ReportsFailures(t *testing.T) {
	var out bytes.Buffer

	code := run(testOptions(), []string{mockFile("ariadne_yearly.json"), mockFile("ariadne_unknown_variable.json")}, &out)

	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "--- ariadne_unknown_variable.json ---")
	assert.Contains(t, out.String(), "Mtoe/yr")
	assert.Contains(t, out.String(), "Validation FAILED.")
}

func TestRun_ProfileOverride(t *testing.T) {
	opts := testOptions()
	opts.profile = "no-such-profile"
	var out bytes.Buffer

	code := run(opts, []string{mockFile("ariadne_yearly.json")}, &out)

	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), `unknown profile: "no-such-profile"`)
}

func TestRun_MissingDefinitions(t *testing.T) {
	opts := testOptions()
	opts.definitions = filepath.Join(t.TempDir(), "missing")
	var out bytes.Buffer

	code := run(opts, []string{mockFile("ariadne_yearly.json")}, &out)

	assert.Equal(t, 2, code)
	assert.Contains(t, out.String(), "FATAL")
}
