package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mercator-hq/underwriter/pkg/cli"
	"mercator-hq/underwriter/pkg/rules"
)

func TestRunLint_Valid(t *testing.T) {
	resetFlags(t)

	var buf bytes.Buffer
	require.NoError(t, runLint(&buf, "testdata/rules.yaml", "testdata/fields.yaml"), buf.String())
	assert.Contains(t, buf.String(), "2 rule(s) valid")
}

func TestRunLint_SampleCatalogs(t *testing.T) {
	resetFlags(t)
	lintFlags.strict = true

	var buf bytes.Buffer
	assert.NoError(t, runLint(&buf, "../../rules.yaml", "../../fields.yaml"), "sample catalogs should lint cleanly:\n%s", buf.String())
}

func TestRunLint_Invalid(t *testing.T) {
	resetFlags(t)

	var buf bytes.Buffer
	err := runLint(&buf, "testdata/invalid-rules.yaml", "")
	require.Error(t, err)
	assert.Equal(t, cli.ExitFindings, cli.ExitCode(err))

	out := buf.String()
	assert.Contains(t, out, "duplicate id")
	assert.Contains(t, out, `validator "NoSuchValidator" is not registered`)
	assert.Contains(t, out, "2 error(s)")
}

func TestRunLint_SchemaViolation(t *testing.T) {
	resetFlags(t)

	var buf bytes.Buffer
	require.Error(t, runLint(&buf, "testdata/schema-invalid-rules.yaml", ""))
	assert.Contains(t, buf.String(), "validator", "schema violation not reported")
}

func TestRunLint_Warnings(t *testing.T) {
	resetFlags(t)

	var buf bytes.Buffer
	require.NoError(t, runLint(&buf, "testdata/warning-rules.yaml", "testdata/fields.yaml"), "warnings alone should not fail")

	lintFlags.strict = true
	buf.Reset()
	err := runLint(&buf, "testdata/warning-rules.yaml", "testdata/fields.yaml")
	assert.Equal(t, cli.ExitFindings, cli.ExitCode(err), "strict mode exit code")
}

func TestRunLint_JSONFormat(t *testing.T) {
	resetFlags(t)
	format = "json"

	var buf bytes.Buffer
	_ = runLint(&buf, "testdata/invalid-rules.yaml", "")

	var result LintResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result), buf.String())
	assert.False(t, result.Valid)
	assert.Equal(t, 2, result.Rules)
	require.Len(t, result.Findings, 2)
	for _, f := range result.Findings {
		assert.Equal(t, rules.SeverityError, f.Severity, "finding %v", f)
	}
}

func TestRunLint_MissingFile(t *testing.T) {
	resetFlags(t)

	var buf bytes.Buffer
	err := runLint(&buf, "testdata/nonexistent.yaml", "")
	require.Error(t, err)
	assert.Equal(t, cli.ExitError, cli.ExitCode(err))
}

func TestLintRules_NoRulesPath(t *testing.T) {
	resetFlags(t)

	var buf bytes.Buffer
	assert.Error(t, runLint(&buf, "", ""), "a rules path is required")
}
